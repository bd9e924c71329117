package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/auth"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// PermissionConfig configures the permission guards
type PermissionConfig struct {
	Logger *zap.Logger
	// OnDenied replaces the default 403 response
	OnDenied func(c *gin.Context, required []string)
}

// RequirePermission lets a request through only when the actor holds permission
func RequirePermission(permission string) gin.HandlerFunc {
	return RequireAnyPermission(permission)
}

// RequireAnyPermission lets a request through when the actor holds at least one of permissions
func RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return RequireAnyPermissionWithConfig(PermissionConfig{}, permissions...)
}

// RequireAnyPermissionWithConfig is RequireAnyPermission with logging and a custom denial
func RequireAnyPermissionWithConfig(cfg PermissionConfig, permissions ...string) gin.HandlerFunc {
	return permissionGuard(cfg, permissions, (*auth.Claims).HasAnyPermission)
}

// RequireAllPermissions lets a request through only when the actor holds every one of permissions
func RequireAllPermissions(permissions ...string) gin.HandlerFunc {
	return permissionGuard(PermissionConfig{}, permissions, func(claims *auth.Claims, perms ...string) bool {
		for _, p := range perms {
			if !claims.HasPermission(p) {
				return false
			}
		}
		return true
	})
}

func permissionGuard(cfg PermissionConfig, required []string, allowed func(*auth.Claims, ...string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}
		if allowed(claims, required...) {
			c.Next()
			return
		}

		if cfg.Logger != nil {
			cfg.Logger.Warn("Permission denied",
				zap.String("actor_id", claims.ActorID),
				zap.String("store_id", claims.StoreID),
				zap.Strings("required", required),
				zap.Strings("granted", claims.Permissions),
				zap.String("route", c.FullPath()),
			)
		}
		if cfg.OnDenied != nil {
			cfg.OnDenied(c, required)
			c.Abort()
			return
		}
		abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, "Access denied: insufficient permissions")
	}
}

// HasPermission reports whether the authenticated actor holds permission
func HasPermission(c *gin.Context, permission string) bool {
	claims := GetJWTClaims(c)
	return claims != nil && claims.HasPermission(permission)
}
