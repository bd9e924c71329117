package event

import (
	"testing"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/inventory"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *trade.Order {
	t.Helper()
	order, err := trade.NewOrderFromCart(trade.CartSnapshot{
		CartID:   uuid.New(),
		StoreID:  uuid.New(),
		Email:    "buyer@example.com",
		Currency: "USD",
		Items: []trade.LineInput{
			{ProductID: uuid.New(), VariantID: uuid.New(), LocationID: uuid.New(), Title: "Mug", SKU: "MUG-1", UnitPrice: decimal.NewFromInt(12), Quantity: 2},
		},
	}, "ORD-20261019-00001", decimal.Zero)
	require.NoError(t, err)
	return order
}

func TestEventSerializer_Register(t *testing.T) {
	serializer := NewEventSerializer()
	serializer.Register("TestEvent", &testEvent{})

	assert.True(t, serializer.IsRegistered("TestEvent"))
	assert.False(t, serializer.IsRegistered("UnknownEvent"))

	t.Run("re-registering the same struct is allowed", func(t *testing.T) {
		assert.NotPanics(t, func() { serializer.Register("TestEvent", &testEvent{}) })
	})

	t.Run("conflicting struct panics", func(t *testing.T) {
		assert.Panics(t, func() { serializer.Register("TestEvent", &trade.PaymentEvent{}) })
	})
}

func TestEventSerializer_RegisteredTypes(t *testing.T) {
	serializer := NewEventSerializer()
	serializer.Register("Zulu", &testEvent{})
	serializer.Register("Alpha", &testEvent{})

	assert.Equal(t, []string{"Alpha", "Zulu"}, serializer.RegisteredTypes())
}

func TestEventSerializer_Serialize(t *testing.T) {
	serializer := NewEventSerializer()

	t.Run("unregistered type is refused", func(t *testing.T) {
		_, err := serializer.Serialize(newTestEvent("TestEvent", uuid.New()))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not registered")
	})

	t.Run("payload carries base and event fields", func(t *testing.T) {
		serializer.Register("TestEvent", &testEvent{})
		storeID := uuid.New()

		data, err := serializer.Serialize(newTestEvent("TestEvent", storeID))
		require.NoError(t, err)
		assert.Contains(t, string(data), `"data":"test data"`)
		assert.Contains(t, string(data), `"store_id":"`+storeID.String()+`"`)
	})
}

func TestEventSerializer_Deserialize(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)

	t.Run("order placed keeps money and lines", func(t *testing.T) {
		order := newTestOrder(t)
		original := trade.NewOrderPlacedEvent(order)

		data, err := serializer.Serialize(original)
		require.NoError(t, err)
		decoded, err := serializer.Deserialize(trade.EventTypeOrderPlaced, data)
		require.NoError(t, err)

		event, ok := decoded.(*trade.OrderPlacedEvent)
		require.True(t, ok)
		assert.Equal(t, original.EventID(), event.EventID())
		assert.Equal(t, order.StoreID, event.StoreID())
		assert.Equal(t, order.ID, event.AggregateID())
		assert.Equal(t, "ORD-20261019-00001", event.OrderNumber)
		assert.True(t, decimal.NewFromInt(24).Equal(event.GrandTotal))
		require.Len(t, event.Items, 1)
		assert.Equal(t, 2, event.Items[0].Quantity)
	})

	t.Run("shared payload struct keeps the event type", func(t *testing.T) {
		movement := &inventory.StockMovement{
			ID:              uuid.New(),
			InventoryItemID: uuid.New(),
			VariantID:       uuid.New(),
			LocationID:      uuid.New(),
			Type:            inventory.MovementTypeConsumption,
			Delta:           -2,
			QuantityAfter:   8,
		}
		data, err := serializer.Serialize(inventory.NewStockMovedEvent(movement))
		require.NoError(t, err)

		decoded, err := serializer.Deserialize(inventory.EventTypeStockConsumed, data)
		require.NoError(t, err)
		event := decoded.(*inventory.StockMovedEvent)
		assert.Equal(t, inventory.EventTypeStockConsumed, event.EventType())
		assert.Equal(t, -2, event.Delta)
		assert.Equal(t, uuid.Nil, event.StoreID())
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := serializer.Deserialize("UnknownEvent", []byte(`{}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown event type")
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := serializer.Deserialize(trade.EventTypeOrderPlaced, []byte(`invalid json`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal")
	})
}

func TestRegisterAllEvents(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)

	for _, eventType := range []string{
		trade.EventTypeOrderPlaced,
		trade.EventTypeOrderCancelled,
		trade.EventTypePaymentCaptured,
		trade.EventTypePaymentRefunded,
		trade.EventTypeFulfillmentShipped,
		trade.EventTypeReturnCompleted,
		trade.EventTypeClaimApproved,
		trade.EventTypeExchangeCompleted,
		trade.EventTypeOrderEditConfirmed,
		inventory.EventTypeStockReserved,
		inventory.EventTypeStockTransferred,
	} {
		assert.True(t, serializer.IsRegistered(eventType), eventType)
	}
	assert.Len(t, serializer.RegisteredTypes(), 23)
}

var _ shared.DomainEvent = (*testEvent)(nil)
