package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func corsRequest(router *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/test", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCORSWithConfig(t *testing.T) {
	newRouter := func(cfg CORSConfig) *gin.Engine {
		router := gin.New()
		router.Use(CORSWithConfig(cfg))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}

	t.Run("default config adds no CORS headers", func(t *testing.T) {
		rec := corsRequest(newRouter(DefaultCORSConfig()), http.MethodGet, "https://shop.example.com")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("allows listed origin with credentials", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = []string{"https://admin.example.com"}
		rec := corsRequest(newRouter(cfg), http.MethodGet, "https://admin.example.com")

		assert.Equal(t, "https://admin.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "43200", rec.Header().Get("Access-Control-Max-Age"))
		assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), RequestIDHeader)
	})

	t.Run("ignores unlisted origin", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = []string{"https://admin.example.com"}
		rec := corsRequest(newRouter(cfg), http.MethodGet, "https://evil.example.com")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard never sends credentials", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = []string{"*"}
		rec := corsRequest(newRouter(cfg), http.MethodGet, "https://any.example.com")

		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight answers 204", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = []string{"https://admin.example.com"}
		router := newRouter(cfg)

		rec := corsRequest(router, http.MethodOptions, "https://admin.example.com")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")

		rec = corsRequest(router, http.MethodOptions, "https://evil.example.com")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(logger.GinRequestIDKey))
	})

	t.Run("generates a uuid", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

		id := rec.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, rec.Body.String())
	})

	t.Run("propagates the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
		assert.Equal(t, "req-123", rec.Body.String())
	})
}

func TestSecureWithConfig(t *testing.T) {
	serve := func(cfg SecurityConfig) http.Header {
		router := gin.New()
		router.Use(SecureWithConfig(cfg))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
		return rec.Header()
	}

	t.Run("defaults", func(t *testing.T) {
		h := serve(DefaultSecurityConfig())
		assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
		assert.NotEmpty(t, h.Get("Content-Security-Policy"))
		assert.Empty(t, h.Get("Strict-Transport-Security"))
	})

	t.Run("hsts", func(t *testing.T) {
		cfg := DefaultSecurityConfig()
		cfg.HSTSEnabled = true
		assert.Equal(t, "max-age=31536000; includeSubDomains", serve(cfg).Get("Strict-Transport-Security"))
	})
}

func TestTimeout(t *testing.T) {
	t.Run("handler sees a deadline", func(t *testing.T) {
		router := gin.New()
		router.Use(Timeout(time.Second))
		router.GET("/test", func(c *gin.Context) {
			_, ok := c.Request.Context().Deadline()
			assert.True(t, ok)
			c.Status(http.StatusOK)
		})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("expired request without response gets 504", func(t *testing.T) {
		router := gin.New()
		router.Use(Timeout(10 * time.Millisecond))
		router.GET("/test", func(c *gin.Context) {
			<-c.Request.Context().Done()
		})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	})

	t.Run("zero disables", func(t *testing.T) {
		router := gin.New()
		router.Use(Timeout(0))
		router.GET("/test", func(c *gin.Context) {
			_, ok := c.Request.Context().Deadline()
			assert.False(t, ok)
			c.Status(http.StatusOK)
		})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
