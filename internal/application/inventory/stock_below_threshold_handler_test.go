package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/inventory"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// MockStockAlertNotifier is a mock implementation of StockAlertNotifier
type MockStockAlertNotifier struct {
	mock.Mock
}

func (m *MockStockAlertNotifier) SendAlert(ctx context.Context, alert StockAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func movedEvent(t *testing.T, qty, reserved int, move func(*inventory.InventoryItem) (*inventory.StockMovement, error)) *inventory.StockMovedEvent {
	t.Helper()
	item := stockedItem(t, uuid.New(), uuid.New(), qty, reserved)
	m, err := move(item)
	require.NoError(t, err)
	return inventory.NewStockMovedEvent(m)
}

func TestStockBelowThresholdHandler_EventTypes(t *testing.T) {
	handler := NewStockBelowThresholdHandler(5, zap.NewNop())
	assert.Contains(t, handler.EventTypes(), inventory.EventTypeStockReserved)
	assert.Contains(t, handler.EventTypes(), inventory.EventTypeStockAdjusted)
}

func TestStockBelowThresholdHandler_Handle(t *testing.T) {
	ref := inventory.NewReference(inventory.ReferenceOrder, uuid.New())

	tests := []struct {
		name      string
		event     func(t *testing.T) *inventory.StockMovedEvent
		wantAlert string
	}{
		{
			name: "reservation leaving plenty",
			event: func(t *testing.T) *inventory.StockMovedEvent {
				return movedEvent(t, 50, 0, func(i *inventory.InventoryItem) (*inventory.StockMovement, error) { return i.Reserve(2, ref) })
			},
		},
		{
			name: "reservation down to threshold",
			event: func(t *testing.T) *inventory.StockMovedEvent {
				return movedEvent(t, 10, 2, func(i *inventory.InventoryItem) (*inventory.StockMovement, error) { return i.Reserve(3, ref) })
			},
			wantAlert: AlertTypeLowStock,
		},
		{
			name: "reservation of the last unit",
			event: func(t *testing.T) *inventory.StockMovedEvent {
				return movedEvent(t, 1, 0, func(i *inventory.InventoryItem) (*inventory.StockMovement, error) { return i.Reserve(1, ref) })
			},
			wantAlert: AlertTypeOutOfStock,
		},
		{
			name: "backordered reservation",
			event: func(t *testing.T) *inventory.StockMovedEvent {
				return movedEvent(t, 0, 0, func(i *inventory.InventoryItem) (*inventory.StockMovement, error) {
					i.SetBackorder(true)
					return i.Reserve(2, ref)
				})
			},
			wantAlert: AlertTypeBackordered,
		},
		{
			name: "release never alerts",
			event: func(t *testing.T) *inventory.StockMovedEvent {
				return movedEvent(t, 2, 2, func(i *inventory.InventoryItem) (*inventory.StockMovement, error) { return i.Release(1, ref) })
			},
		},
		{
			name: "incoming stock never alerts",
			event: func(t *testing.T) *inventory.StockMovedEvent {
				return movedEvent(t, 0, 0, func(i *inventory.InventoryItem) (*inventory.StockMovement, error) { return i.Adjust(1, "receive", ref) })
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := new(MockStockAlertNotifier)
			handler := NewStockBelowThresholdHandler(5, zap.NewNop()).WithNotifier(notifier)
			if tt.wantAlert != "" {
				notifier.On("SendAlert", mock.Anything, mock.MatchedBy(func(a StockAlert) bool {
					return a.AlertType == tt.wantAlert && a.Threshold == 5
				})).Return(nil).Once()
			}

			err := handler.Handle(context.Background(), tt.event(t))

			require.NoError(t, err)
			notifier.AssertExpectations(t)
			if tt.wantAlert == "" {
				notifier.AssertNotCalled(t, "SendAlert", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestStockBelowThresholdHandler_ClampedReleaseIsReported(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	handler := NewStockBelowThresholdHandler(5, zap.New(core))
	event := movedEvent(t, 10, 1, func(i *inventory.InventoryItem) (*inventory.StockMovement, error) {
		return i.Release(3, inventory.NewReference(inventory.ReferenceOrder, uuid.New()))
	})

	require.NoError(t, handler.Handle(context.Background(), event))
	assert.Equal(t, 1, logs.FilterMessage("ledger recorded a clamped movement").Len())
}

func TestStockBelowThresholdHandler_NotifierFailureIsSwallowed(t *testing.T) {
	notifier := new(MockStockAlertNotifier)
	notifier.On("SendAlert", mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	handler := NewStockBelowThresholdHandler(5, zap.NewNop()).WithNotifier(notifier)
	event := movedEvent(t, 1, 0, func(i *inventory.InventoryItem) (*inventory.StockMovement, error) {
		return i.Reserve(1, inventory.NewReference(inventory.ReferenceOrder, uuid.New()))
	})

	assert.NoError(t, handler.Handle(context.Background(), event))
}

func TestStockBelowThresholdHandler_WrongEvent(t *testing.T) {
	handler := NewStockBelowThresholdHandler(5, zap.NewNop())
	base := shared.NewBaseDomainEvent("Other", "Other", uuid.New(), uuid.New())

	err := handler.Handle(context.Background(), &base)

	assert.Error(t, err)
}
