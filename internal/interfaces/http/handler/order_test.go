package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appinv "github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/application/inventory"
	apptrade "github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/application/trade"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (a *testApp) level(t *testing.T) appinv.InventoryItemResponse {
	t.Helper()
	rec := a.do(t, http.MethodGet, "/inventory/levels?variant_id="+a.mug.String()+"&location_id="+a.locationID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[appinv.InventoryItemResponse](t, rec).Data
}

func TestCheckoutHandler_PlaceOrder(t *testing.T) {
	t.Run("reserves stock and returns the pending order", func(t *testing.T) {
		app := newTestApp(t)
		app.stock(t, 5)

		order := app.placeOrder(t, 2)
		assert.Equal(t, "pending", order.Status)
		assert.Equal(t, app.storeID, order.StoreID)
		assert.True(t, decimal.NewFromInt(20).Equal(order.GrandTotal))
		assert.Regexp(t, `^ORD-`, order.OrderNumber)

		level := app.level(t)
		assert.Equal(t, 5, level.Quantity)
		assert.Equal(t, 2, level.ReservedQuantity)
		assert.Equal(t, 3, level.Available)
	})

	t.Run("insufficient stock is a 422", func(t *testing.T) {
		app := newTestApp(t)
		app.stock(t, 1)

		rec := app.do(t, http.MethodPost, "/checkout", gin.H{
			"cart_id": uuid.New(),
			"items": []gin.H{{
				"product_id": uuid.New(), "variant_id": app.mug, "location_id": app.locationID,
				"title": "Mug", "unit_price": "10.00", "quantity": 3,
			}},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, shared.CodeInsufficientStock, decode[any](t, rec).Error.Code)
		assert.Zero(t, app.level(t).ReservedQuantity)
	})

	t.Run("validation errors list the offending fields", func(t *testing.T) {
		app := newTestApp(t)

		rec := app.do(t, http.MethodPost, "/checkout", gin.H{
			"cart_id": uuid.New(),
			"items": []gin.H{{
				"product_id": uuid.New(), "variant_id": app.mug, "location_id": app.locationID,
				"title": "Mug", "unit_price": "-1", "quantity": 1,
			}},
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		env := decode[any](t, rec)
		assert.Equal(t, shared.CodeValidation, env.Error.Code)
		require.NotEmpty(t, env.Error.Details)
	})

	t.Run("malformed body", func(t *testing.T) {
		app := newTestApp(t)
		rec := app.do(t, http.MethodPost, "/checkout", `{"cart_id":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestOrderHandler_Reads(t *testing.T) {
	app := newTestApp(t)
	app.stock(t, 10)
	first := app.placeOrder(t, 1)
	app.placeOrder(t, 2)

	t.Run("list with meta", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/orders?page_size=1", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		env := decode[[]apptrade.OrderListItemResponse](t, rec)
		assert.Len(t, env.Data, 1)
		require.NotNil(t, env.Meta)
		assert.Equal(t, int64(2), env.Meta.Total)
		assert.Equal(t, 2, env.Meta.TotalPages)
	})

	t.Run("list rejects an unknown status", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/orders?status=lost", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("get by id", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/orders/"+first.ID.String(), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, first.OrderNumber, decode[apptrade.OrderResponse](t, rec).Data.OrderNumber)
	})

	t.Run("get by order number", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/order-numbers/"+first.OrderNumber, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, first.ID, decode[apptrade.OrderResponse](t, rec).Data.ID)
	})

	t.Run("unknown order", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/orders/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, shared.CodeNotFound, decode[any](t, rec).Error.Code)
	})
}

func TestOrderHandler_StatusChanges(t *testing.T) {
	t.Run("cancel releases reserved stock", func(t *testing.T) {
		app := newTestApp(t)
		app.stock(t, 5)
		order := app.placeOrder(t, 2)

		rec := app.do(t, http.MethodPost, "/orders/"+order.ID.String()+"/cancel", gin.H{"reason": "customer changed their mind"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		cancelled := decode[apptrade.OrderResponse](t, rec).Data
		assert.Equal(t, "cancelled", cancelled.Status)
		assert.Equal(t, "customer changed their mind", cancelled.CancelReason)
		assert.Zero(t, app.level(t).ReservedQuantity)

		rec = app.do(t, http.MethodPost, "/orders/"+order.ID.String()+"/confirm", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("cancel requires a reason", func(t *testing.T) {
		app := newTestApp(t)
		app.stock(t, 5)
		order := app.placeOrder(t, 1)

		rec := app.do(t, http.MethodPost, "/orders/"+order.ID.String()+"/cancel", gin.H{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("confirm then add a note", func(t *testing.T) {
		app := newTestApp(t)
		app.stock(t, 5)
		order := app.placeOrder(t, 1)

		rec := app.do(t, http.MethodPost, "/orders/"+order.ID.String()+"/confirm", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "confirmed", decode[apptrade.OrderResponse](t, rec).Data.Status)

		rec = app.do(t, http.MethodPut, "/orders/"+order.ID.String()+"/notes", gin.H{"note": "gift wrap"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, decode[apptrade.OrderResponse](t, rec).Data.Notes, "gift wrap")
	})
}
