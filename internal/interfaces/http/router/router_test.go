package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/auth"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/config"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/interfaces/http/handler"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, "v1", r.apiVersion)
	assert.Equal(t, "/api/v1", r.BasePath())
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	var seen []string
	r.Use(func(c *gin.Context) {
		seen = append(seen, c.FullPath())
		c.Next()
	})

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	engine.GET("/outside", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/outside", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	// router middleware only wraps the API prefix
	assert.Equal(t, []string{"/api/v1/test/ping"}, seen)
}

func TestDomainGroup(t *testing.T) {
	t.Run("creates group with name and prefix", func(t *testing.T) {
		g := NewDomainGroup("orders", "/orders")
		assert.Equal(t, "orders", g.Name())
		assert.Equal(t, "/orders", g.Prefix())
	})

	t.Run("registers every method", func(t *testing.T) {
		engine := gin.New()
		ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }

		g := NewDomainGroup("test", "/test")
		g.GET("/items", ok).
			POST("/items", ok).
			PUT("/items/:id", ok).
			PATCH("/items/:id", ok).
			DELETE("/items/:id", ok)
		g.RegisterRoutes(engine.Group("/api/v1"))

		tests := []struct {
			method string
			path   string
		}{
			{http.MethodGet, "/api/v1/test/items"},
			{http.MethodPost, "/api/v1/test/items"},
			{http.MethodPut, "/api/v1/test/items/1"},
			{http.MethodPatch, "/api/v1/test/items/1"},
			{http.MethodDelete, "/api/v1/test/items/1"},
		}
		for _, tt := range tests {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, http.StatusOK, w.Code, "%s %s", tt.method, tt.path)
			assert.Equal(t, tt.method, w.Body.String())
		}
	})

	t.Run("applies group middleware to subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("admin", "/admin")
		g.Use(func(c *gin.Context) {
			c.AbortWithStatus(http.StatusTeapot)
		})
		g.Group("outbox", "/outbox").GET("/stats", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/outbox/stats", nil))
		assert.Equal(t, http.StatusTeapot, w.Code)
	})
}

type commerceServer struct {
	engine *gin.Engine
	jwt    *auth.JWTService
}

// newCommerceServer mounts the route table over handlers without services;
// requests are expected to stop before any service is reached
func newCommerceServer(t *testing.T, admin middleware.AdminAccessConfig) *commerceServer {
	t.Helper()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "router-test-secret-that-is-long-enough",
		Issuer:                "commerce-core",
		AccessTokenExpiration: time.Hour,
	})

	h := Handlers{
		Checkout:    handler.NewCheckoutHandler(nil),
		Order:       handler.NewOrderHandler(nil),
		Payment:     handler.NewPaymentHandler(nil, nil),
		Fulfillment: handler.NewFulfillmentHandler(nil),
		Return:      handler.NewReturnHandler(nil),
		Claim:       handler.NewClaimHandler(nil),
		Exchange:    handler.NewExchangeHandler(nil),
		OrderEdit:   handler.NewOrderEditHandler(nil),
		Inventory:   handler.NewInventoryHandler(nil),
		Outbox:      handler.NewOutboxHandler(nil),
		System:      handler.NewSystemHandler("commerce-core", "test", nil),
	}

	engine := gin.New()
	RegisterProbes(engine, h.System)

	r := NewRouter(engine)
	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths:  []string{"/api/v1/system/info"},
	}))
	r.Register(CommerceRoutes(h, middleware.AdminAccess(admin))...)
	r.Setup()

	return &commerceServer{engine: engine, jwt: jwtService}
}

func (s *commerceServer) serve(t *testing.T, method, path string, permissions ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if permissions != nil {
		token, _, err := s.jwt.GenerateAccessToken(auth.TokenInput{
			StoreID:     uuid.New(),
			ActorID:     uuid.New(),
			Permissions: permissions,
		})
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func TestCommerceRoutes_Probes(t *testing.T) {
	s := newCommerceServer(t, middleware.AdminAccessConfig{})

	assert.Equal(t, http.StatusOK, s.serve(t, http.MethodGet, "/health").Code)
	assert.Equal(t, http.StatusOK, s.serve(t, http.MethodGet, "/ready").Code)
	assert.Equal(t, http.StatusOK, s.serve(t, http.MethodGet, "/api/v1/system/info").Code)
}

func TestCommerceRoutes_Permissions(t *testing.T) {
	s := newCommerceServer(t, middleware.AdminAccessConfig{Enabled: true})

	tests := []struct {
		name       string
		method     string
		path       string
		granted    []string
		wantStatus int
	}{
		{"no token", http.MethodGet, "/api/v1/orders/x", nil, http.StatusUnauthorized},
		{"read without grant", http.MethodGet, "/api/v1/orders/x", []string{auth.PermissionInventoryRead}, http.StatusForbidden},
		// a malformed id is rejected by the handler once the permission check passes
		{"read with grant", http.MethodGet, "/api/v1/orders/x", []string{auth.PermissionOrdersRead}, http.StatusBadRequest},
		{"wildcard grant", http.MethodGet, "/api/v1/orders/x", []string{auth.PermissionAll}, http.StatusBadRequest},
		{"cancel needs write", http.MethodPost, "/api/v1/orders/x/cancel", []string{auth.PermissionOrdersRead}, http.StatusForbidden},
		{"capture needs payments", http.MethodPost, "/api/v1/orders/x/payments/capture", []string{auth.PermissionOrdersWrite}, http.StatusForbidden},
		{"capture", http.MethodPost, "/api/v1/orders/x/payments/capture", []string{auth.PermissionPaymentsWrite}, http.StatusBadRequest},
		{"refund needs refunds", http.MethodPost, "/api/v1/orders/x/refunds", []string{auth.PermissionPaymentsWrite}, http.StatusForbidden},
		{"fulfill", http.MethodPost, "/api/v1/orders/x/fulfillments", []string{auth.PermissionFulfillWrite}, http.StatusBadRequest},
		{"return needs returns", http.MethodPost, "/api/v1/returns/x/receive", []string{auth.PermissionOrdersWrite}, http.StatusForbidden},
		{"claim approve", http.MethodPost, "/api/v1/claims/x/approve", []string{auth.PermissionReturnsWrite}, http.StatusBadRequest},
		{"exchange pay needs payments", http.MethodPost, "/api/v1/exchanges/x/pay", []string{auth.PermissionReturnsWrite}, http.StatusForbidden},
		{"exchange pay needs both", http.MethodPost, "/api/v1/exchanges/x/pay", []string{auth.PermissionReturnsWrite, auth.PermissionPaymentsWrite}, http.StatusBadRequest},
		{"edit confirm", http.MethodPost, "/api/v1/order-edits/x/confirm", []string{auth.PermissionOrdersWrite}, http.StatusBadRequest},
		{"inventory write", http.MethodPost, "/api/v1/inventory/adjust", []string{auth.PermissionInventoryRead}, http.StatusForbidden},
		{"outbox needs admin", http.MethodGet, "/api/v1/admin/outbox/x", []string{auth.PermissionOrdersRead}, http.StatusForbidden},
		{"outbox", http.MethodGet, "/api/v1/admin/outbox/x", []string{auth.PermissionOutboxAdmin}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.serve(t, tt.method, tt.path, tt.granted...)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestCommerceRoutes_AdminAccess(t *testing.T) {
	t.Run("disabled hides the endpoints", func(t *testing.T) {
		s := newCommerceServer(t, middleware.AdminAccessConfig{Enabled: false})
		w := s.serve(t, http.MethodGet, "/api/v1/admin/outbox/x", auth.PermissionAll)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("client outside the allow list", func(t *testing.T) {
		// httptest requests come from 192.0.2.1
		s := newCommerceServer(t, middleware.AdminAccessConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8"}})
		w := s.serve(t, http.MethodGet, "/api/v1/admin/outbox/x", auth.PermissionAll)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("client inside the allow list", func(t *testing.T) {
		s := newCommerceServer(t, middleware.AdminAccessConfig{Enabled: true, AllowedIPs: []string{"192.0.2.0/24"}})
		w := s.serve(t, http.MethodGet, "/api/v1/admin/outbox/x", auth.PermissionAll)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
