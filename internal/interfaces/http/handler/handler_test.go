package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appevent "github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/application/event"
	appinv "github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/application/inventory"
	apptrade "github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/application/trade"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/auth"
	infraevent "github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/event"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/payment"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/persistence"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/interfaces/http/dto"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
	Meta    *dto.Meta      `json:"meta"`
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, persistence.AutoMigrate(db))
	return db
}

// testApp serves every handler over SQLite with the manual payment provider
type testApp struct {
	db         *gorm.DB
	router     *gin.Engine
	outbox     *infraevent.GormOutboxRepository
	storeID    uuid.UUID
	locationID uuid.UUID
	mug        uuid.UUID
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db := setupTestDB(t)
	log := zap.NewNop()
	settings := apptrade.DefaultSettings()

	outboxRepo := infraevent.NewGormOutboxRepository(db)
	tradeScope := persistence.NewGormTradeTransactionScope(db, nil, persistence.NewOrderNumberGenerator("ORD", nil), log)
	invScope := persistence.NewGormInventoryTransactionScope(db, nil)
	provider := payment.NewManualProvider(log)

	app := &testApp{
		db:         db,
		outbox:     outboxRepo,
		storeID:    uuid.New(),
		locationID: uuid.New(),
		mug:        uuid.New(),
	}

	checkout := NewCheckoutHandler(apptrade.NewCheckoutService(tradeScope, nil, settings, log))
	orders := NewOrderHandler(apptrade.NewOrderService(tradeScope, settings, log))
	payments := NewPaymentHandler(
		apptrade.NewPaymentService(tradeScope, provider, settings, log),
		apptrade.NewRefundService(tradeScope, provider, settings, log),
	)
	fulfillments := NewFulfillmentHandler(apptrade.NewFulfillmentService(tradeScope, settings, log))
	returns := NewReturnHandler(apptrade.NewReturnService(tradeScope, provider, settings, log))
	claims := NewClaimHandler(apptrade.NewClaimService(tradeScope, provider, settings, log))
	exchanges := NewExchangeHandler(apptrade.NewExchangeService(tradeScope, provider, settings, log))
	edits := NewOrderEditHandler(apptrade.NewOrderEditService(tradeScope, settings, log))
	inventory := NewInventoryHandler(appinv.NewInventoryService(invScope, log))
	outbox := NewOutboxHandler(appevent.NewOutboxService(outboxRepo, log))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-Anonymous") == "" {
			c.Set(middleware.JWTClaimsKey, &auth.Claims{StoreID: app.storeID.String(), ActorID: uuid.NewString()})
		}
		c.Next()
	})

	r.POST("/checkout", checkout.PlaceOrder)
	r.GET("/orders", orders.List)
	r.GET("/orders/:id", orders.GetByID)
	r.GET("/order-numbers/:number", orders.GetByOrderNumber)
	r.POST("/orders/:id/confirm", orders.Confirm)
	r.POST("/orders/:id/complete", orders.Complete)
	r.POST("/orders/:id/cancel", orders.Cancel)
	r.PUT("/orders/:id/notes", orders.AddNote)
	r.POST("/orders/:id/payments/authorize", payments.Authorize)
	r.POST("/orders/:id/payments/capture", payments.Capture)
	r.POST("/orders/:id/payments", payments.RecordPayment)
	r.POST("/orders/:id/refunds", payments.Refund)
	r.POST("/orders/:id/fulfillments", fulfillments.Create)
	r.POST("/orders/:id/fulfillments/:fulfillment_id/ship", fulfillments.Ship)
	r.POST("/orders/:id/fulfillments/:fulfillment_id/deliver", fulfillments.Deliver)
	r.POST("/orders/:id/fulfillments/:fulfillment_id/cancel", fulfillments.Cancel)
	r.GET("/orders/:id/returns", returns.ListByOrder)
	r.POST("/orders/:id/returns", returns.Request)
	r.GET("/returns/:id", returns.Get)
	r.POST("/returns/:id/receive", returns.Receive)
	r.POST("/returns/:id/complete", returns.Complete)
	r.POST("/returns/:id/cancel", returns.Cancel)
	r.GET("/orders/:id/claims", claims.ListByOrder)
	r.POST("/orders/:id/claims", claims.Create)
	r.GET("/claims/:id", claims.Get)
	r.POST("/claims/:id/approve", claims.Approve)
	r.POST("/claims/:id/reject", claims.Reject)
	r.GET("/orders/:id/exchanges", exchanges.ListByOrder)
	r.POST("/orders/:id/exchanges", exchanges.Create)
	r.GET("/exchanges/:id", exchanges.Get)
	r.POST("/exchanges/:id/process", exchanges.Process)
	r.POST("/exchanges/:id/cancel", exchanges.Cancel)
	r.GET("/orders/:id/edits", edits.ListByOrder)
	r.POST("/orders/:id/edits", edits.Create)
	r.GET("/order-edits/:id", edits.Get)
	r.POST("/order-edits/:id/request", edits.Request)
	r.POST("/order-edits/:id/confirm", edits.Confirm)
	r.POST("/order-edits/:id/decline", edits.Decline)
	r.GET("/inventory/levels", inventory.GetLevel)
	r.GET("/inventory/variants/:variant_id/levels", inventory.ListLevels)
	r.POST("/inventory/adjust", inventory.Adjust)
	r.POST("/inventory/receive", inventory.Receive)
	r.POST("/inventory/transfer", inventory.Transfer)
	r.GET("/inventory/movements", inventory.ListMovements)
	r.GET("/inventory/movements/by-reference/:type/:id", inventory.MovementsByReference)
	r.GET("/admin/outbox/stats", outbox.GetStats)
	r.GET("/admin/outbox/dead", outbox.GetDeadLetterEntries)
	r.POST("/admin/outbox/dead/retry-all", outbox.RetryAllDeadEntries)
	r.POST("/admin/outbox/sent/purge", outbox.PurgeSent)
	r.GET("/admin/outbox/:id", outbox.GetEntry)
	r.POST("/admin/outbox/:id/retry", outbox.RetryDeadEntry)

	app.router = r
	return app
}

func (a *testApp) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

// stock receives quantity mugs at the test location
func (a *testApp) stock(t *testing.T, quantity int) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/inventory/receive", gin.H{
		"variant_id":  a.mug,
		"location_id": a.locationID,
		"quantity":    quantity,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

// placeOrder checks out mugs at 10.00 each
func (a *testApp) placeOrder(t *testing.T, mugs int) apptrade.OrderResponse {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/checkout", gin.H{
		"cart_id":  uuid.New(),
		"email":    "buyer@example.com",
		"currency": "USD",
		"items": []gin.H{{
			"product_id":  uuid.New(),
			"variant_id":  a.mug,
			"location_id": a.locationID,
			"title":       "Mug",
			"unit_price":  "10.00",
			"quantity":    mugs,
		}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[apptrade.OrderResponse](t, rec).Data
}

// paidOrder places an order and captures its balance
func (a *testApp) paidOrder(t *testing.T, mugs int) apptrade.OrderResponse {
	t.Helper()
	order := a.placeOrder(t, mugs)
	rec := a.do(t, http.MethodPost, "/orders/"+order.ID.String()+"/payments/capture", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[apptrade.PaymentResponse](t, rec).Data.Order
}

// fulfilledOrder pays for and fulfills every unit of a new order
func (a *testApp) fulfilledOrder(t *testing.T, mugs int) apptrade.OrderResponse {
	t.Helper()
	order := a.paidOrder(t, mugs)
	rec := a.do(t, http.MethodPost, "/orders/"+order.ID.String()+"/fulfillments", gin.H{
		"items": []gin.H{{"order_item_id": order.Items[0].ID, "quantity": mugs}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[apptrade.FulfillmentResult](t, rec).Data.Order
}
