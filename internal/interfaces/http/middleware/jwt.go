package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apptrade "github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/application/trade"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/auth"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey   = "jwt_claims"
	JWTPermissions = "jwt_permissions"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// TokenBlacklist is optional for checking revoked tokens
	TokenBlacklist auth.TokenBlacklist
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require authentication
	SkipPathPrefixes []string
	// Optional callback if token is invalid (default: return 401)
	OnError func(c *gin.Context, err error)
	Logger  *zap.Logger
}

// DefaultJWTConfig returns default JWT middleware configuration
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/metrics",
			"/api/v1/health",
		},
		SkipPathPrefixes: []string{
			"/swagger",
		},
	}
}

// JWTAuthMiddleware creates JWT authentication middleware
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(jwtService))
}

// JWTAuthMiddlewareWithConfig creates JWT authentication middleware with custom config.
// A valid token binds the store and the acting user to the request context.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if skipAuth(cfg, c.Request.URL.Path) {
			c.Next()
			return
		}

		tokenString, msg := bearerToken(c)
		if msg != "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, msg)
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err, "Token validation failed")
			return
		}

		if cfg.TokenBlacklist != nil {
			if revoked, msg := checkRevocation(c, cfg, claims); revoked {
				handleAuthError(c, cfg, auth.ErrTokenBlacklisted, msg)
				return
			}
		}

		bindClaims(c, claims)

		if cfg.Logger != nil {
			cfg.Logger.Debug("JWT authentication successful",
				zap.String("store_id", claims.StoreID),
				zap.String("actor_id", claims.ActorID),
			)
		}

		c.Next()
	}
}

func skipAuth(cfg JWTMiddlewareConfig, path string) bool {
	for _, skipPath := range cfg.SkipPaths {
		if path == skipPath {
			return true
		}
	}
	for _, prefix := range cfg.SkipPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// bearerToken extracts the token, or returns a message describing what is wrong with the header
func bearerToken(c *gin.Context) (string, string) {
	authHeader := c.GetHeader(AuthHeaderKey)
	if authHeader == "" {
		return "", "Missing authorization header"
	}
	if !strings.HasPrefix(authHeader, BearerPrefix) {
		return "", "Invalid authorization header format"
	}
	tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
	if tokenString == "" {
		return "", "Missing token"
	}
	return tokenString, ""
}

// checkRevocation fails open: a blacklist outage is logged and the token accepted
func checkRevocation(c *gin.Context, cfg JWTMiddlewareConfig, claims *auth.Claims) (bool, string) {
	ctx := c.Request.Context()

	if claims.ID != "" {
		revoked, err := cfg.TokenBlacklist.IsRevoked(ctx, claims.ID)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Error("Failed to check token blacklist",
					zap.String("jti", claims.ID),
					zap.Error(err))
			}
		} else if revoked {
			return true, "Token has been revoked"
		}
	}

	revoked, err := cfg.TokenBlacklist.IsActorRevoked(ctx, claims.ActorID, claims.IssuedAtTime())
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Error("Failed to check actor revocation",
				zap.String("actor_id", claims.ActorID),
				zap.Error(err))
		}
		return false, ""
	}
	if revoked {
		return true, "Actor session has been revoked"
	}
	return false, ""
}

func bindClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(JWTClaimsKey, claims)
	c.Set(JWTPermissions, claims.Permissions)
	c.Set(logger.GinStoreIDKey, claims.StoreID)
	c.Set(logger.GinActorIDKey, claims.ActorID)

	ctx := c.Request.Context()
	log := logger.FromContext(ctx)
	ctx, log = logger.WithStoreID(ctx, log, claims.StoreID)
	ctx, _ = logger.WithActorID(ctx, log, claims.ActorID)
	ctx = apptrade.WithActor(ctx, claims.ActorUUID())
	c.Request = c.Request.WithContext(ctx)
}

// handleAuthError handles authentication errors
func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error, message string) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		c.Abort()
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("JWT authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	errorCode := "UNAUTHORIZED"
	errorMessage := "Authentication required"

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		errorCode = "TOKEN_EXPIRED"
		errorMessage = "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		errorCode = "TOKEN_NOT_VALID"
		errorMessage = "Token is not yet valid"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		errorCode = "TOKEN_REVOKED"
		errorMessage = "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrMissingStoreID),
		errors.Is(err, auth.ErrMissingActorID):
		errorCode = "INVALID_TOKEN"
		errorMessage = "Invalid token"
	}

	abortWithError(c, http.StatusUnauthorized, errorCode, errorMessage)
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetStoreID returns the authenticated store, or uuid.Nil
func GetStoreID(c *gin.Context) uuid.UUID {
	if claims := GetJWTClaims(c); claims != nil {
		return claims.StoreUUID()
	}
	return uuid.Nil
}

// GetActorID returns the authenticated actor, or uuid.Nil
func GetActorID(c *gin.Context) uuid.UUID {
	if claims := GetJWTClaims(c); claims != nil {
		return claims.ActorUUID()
	}
	return uuid.Nil
}

// GetJWTPermissions retrieves the permissions from JWT claims in context
func GetJWTPermissions(c *gin.Context) []string {
	if permissions, exists := c.Get(JWTPermissions); exists {
		if perms, ok := permissions.([]string); ok {
			return perms
		}
	}
	return nil
}
