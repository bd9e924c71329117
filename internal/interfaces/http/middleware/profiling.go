package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/logger"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/telemetry"
)

// Profiling tags CPU samples taken while the handler runs with route, method
// and store. Mount it after authentication so the store is known.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return passThrough
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			c.Next()
			return
		}

		labels := telemetry.HTTPRequestLabels(route, c.Request.Method, c.GetString(logger.GinStoreIDKey))
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
