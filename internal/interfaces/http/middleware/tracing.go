// Package middleware provides the gin middleware chain of the commerce API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/logger"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// TracerProvider overrides the global provider
	TracerProvider trace.TracerProvider
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "commerce-core",
		Enabled:     true,
	}
}

// TracingWithConfig returns the otelgin server span middleware followed by
// SpanEnricher. Span names follow "METHOD /route/:param".
func TracingWithConfig(cfg TracingConfig) []gin.HandlerFunc {
	if !cfg.Enabled {
		return nil
	}

	var opts []otelgin.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}
	return []gin.HandlerFunc{
		otelgin.Middleware(cfg.ServiceName, opts...),
		SpanEnricher(),
	}
}

// SpanEnricher annotates the server span once the handler chain has run, so
// the store and actor bound by authentication are visible. Responses of 400
// and above mark the span as failed.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		attrs := make([]attribute.KeyValue, 0, 3)
		if requestID := c.GetString(logger.GinRequestIDKey); requestID != "" {
			attrs = append(attrs, attribute.String("request_id", requestID))
		}
		if storeID := c.GetString(logger.GinStoreIDKey); storeID != "" {
			attrs = append(attrs, attribute.String(telemetry.SpanAttrStoreID, storeID))
		}
		if actorID := c.GetString(logger.GinActorIDKey); actorID != "" {
			attrs = append(attrs, attribute.String("actor_id", actorID))
		}
		span.SetAttributes(attrs...)

		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			span.SetStatus(codes.Error, http.StatusText(status))
			if len(c.Errors) > 0 {
				span.SetAttributes(attribute.StringSlice("http.errors", c.Errors.Errors()))
			}
		}
	}
}
