package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/inventory"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	// ReasonReceive is recorded on movements that book incoming goods
	ReasonReceive = "receive"
	// ReasonCount is recorded on movements produced by a stock count
	ReasonCount = "stock count"
)

// InventoryService handles the back-office side of the inventory ledger:
// stock levels, manual corrections, transfers and the movement log.
// Reservations are posted by the order orchestrators, never here.
type InventoryService struct {
	scope  TransactionScope
	logger *zap.Logger
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(scope TransactionScope, logger *zap.Logger) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{scope: scope, logger: logger}
}

// GetLevel returns the stock of a variant at a location
func (s *InventoryService) GetLevel(ctx context.Context, variantID, locationID uuid.UUID) (*InventoryItemResponse, error) {
	var item *inventory.InventoryItem
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		item, err = repos.InventoryRepo().FindByVariantAndLocation(ctx, variantID, locationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToInventoryItemResponse(item)
	return &resp, nil
}

// ListLevels returns the stock of a variant at every location
func (s *InventoryService) ListLevels(ctx context.Context, variantID uuid.UUID) ([]InventoryItemResponse, error) {
	var items []inventory.InventoryItem
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		items, err = repos.InventoryRepo().FindByVariant(ctx, variantID)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]InventoryItemResponse, len(items))
	for i := range items {
		out[i] = ToInventoryItemResponse(&items[i])
	}
	return out, nil
}

// Adjust applies a signed manual correction to on-hand stock
func (s *InventoryService) Adjust(ctx context.Context, req AdjustStockRequest) (*MovementResponse, error) {
	return s.adjust(ctx, req.VariantID, req.LocationID, req.Delta, req.Reason)
}

// Receive books incoming goods. It is an adjustment with a positive delta.
func (s *InventoryService) Receive(ctx context.Context, req ReceiveStockRequest) (*MovementResponse, error) {
	if req.Quantity <= 0 {
		return nil, shared.NewDomainError(shared.CodeValidation, "Received quantity must be positive")
	}
	return s.adjust(ctx, req.VariantID, req.LocationID, req.Quantity, ReasonReceive)
}

func (s *InventoryService) adjust(ctx context.Context, variantID, locationID uuid.UUID, delta int, reason string) (*MovementResponse, error) {
	var movement *inventory.StockMovement
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.InventoryRepo().GetOrCreate(ctx, variantID, locationID); err != nil {
			return err
		}
		m, err := repos.Ledger().Adjust(ctx, variantID, locationID, delta, reason, manualRef())
		if err != nil {
			return err
		}
		movement = m
		return repos.Events().Record(ctx, inventory.NewStockMovedEvent(m))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock adjusted",
		zap.String("variant_id", variantID.String()),
		zap.String("location_id", locationID.String()),
		zap.Int("delta", delta),
		zap.Int("quantity_after", movement.QuantityAfter),
		zap.String("reason", reason),
	)
	resp := ToMovementResponse(movement)
	return &resp, nil
}

// Count sets on-hand stock to a physically counted quantity by posting the
// difference as an adjustment. A count that matches changes nothing.
func (s *InventoryService) Count(ctx context.Context, req CountStockRequest) (*InventoryItemResponse, error) {
	if req.Counted < 0 {
		return nil, shared.NewDomainError(shared.CodeValidation, "Counted quantity cannot be negative")
	}
	reason := ReasonCount
	if req.Note != "" {
		reason = fmt.Sprintf("%s: %s", ReasonCount, req.Note)
	}

	var item *inventory.InventoryItem
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		current, err := repos.InventoryRepo().GetOrCreate(ctx, req.VariantID, req.LocationID)
		if err != nil {
			return err
		}
		delta := req.Counted - current.Quantity
		if delta == 0 {
			item = current
			return nil
		}
		m, err := repos.Ledger().Adjust(ctx, req.VariantID, req.LocationID, delta, reason, manualRef())
		if err != nil {
			return err
		}
		if err := repos.Events().Record(ctx, inventory.NewStockMovedEvent(m)); err != nil {
			return err
		}
		item, err = repos.InventoryRepo().FindByVariantAndLocation(ctx, req.VariantID, req.LocationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToInventoryItemResponse(item)
	return &resp, nil
}

// Transfer moves on-hand units between two locations. Both legs post in
// one transaction.
func (s *InventoryService) Transfer(ctx context.Context, req TransferStockRequest) ([]MovementResponse, error) {
	if req.FromLocationID == req.ToLocationID {
		return nil, shared.NewDomainError(shared.CodeValidation, "Transfer source and destination must differ")
	}

	var movements []*inventory.StockMovement
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.InventoryRepo().GetOrCreate(ctx, req.VariantID, req.ToLocationID); err != nil {
			return err
		}
		ms, err := repos.Ledger().Transfer(ctx, req.VariantID, req.FromLocationID, req.ToLocationID, req.Quantity, req.Reason)
		if err != nil {
			return err
		}
		events := make([]shared.DomainEvent, len(ms))
		for i, m := range ms {
			events[i] = inventory.NewStockMovedEvent(m)
		}
		movements = ms
		return repos.Events().Record(ctx, events...)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock transferred",
		zap.String("variant_id", req.VariantID.String()),
		zap.String("from_location_id", req.FromLocationID.String()),
		zap.String("to_location_id", req.ToLocationID.String()),
		zap.Int("quantity", req.Quantity),
	)
	out := make([]MovementResponse, len(movements))
	for i, m := range movements {
		out[i] = ToMovementResponse(m)
	}
	return out, nil
}

// SetBackorder toggles whether a variant can be reserved beyond its stock
// at a location
func (s *InventoryService) SetBackorder(ctx context.Context, req SetBackorderRequest) (*InventoryItemResponse, error) {
	var item *inventory.InventoryItem
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		current, err := repos.InventoryRepo().GetOrCreate(ctx, req.VariantID, req.LocationID)
		if err != nil {
			return err
		}
		if current.AllowBackorder == req.AllowBackorder {
			item = current
			return nil
		}
		current.SetBackorder(req.AllowBackorder)
		if err := repos.InventoryRepo().Save(ctx, current); err != nil {
			return err
		}
		item = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToInventoryItemResponse(item)
	return &resp, nil
}

// ListMovements lists the movement log, newest first
func (s *InventoryService) ListMovements(ctx context.Context, filter MovementListFilter) ([]MovementResponse, int64, error) {
	domainFilter := inventory.MovementFilter{
		Filter:        shared.DefaultFilter(),
		VariantID:     filter.VariantID,
		LocationID:    filter.LocationID,
		ReferenceType: filter.ReferenceType,
		ReferenceID:   filter.ReferenceID,
		From:          filter.From,
		To:            filter.To,
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Type != "" {
		t := inventory.MovementType(filter.Type)
		if !t.IsValid() {
			return nil, 0, shared.NewDomainErrorf(shared.CodeValidation, "Unknown movement type %q", filter.Type)
		}
		domainFilter.Type = &t
	}

	var (
		movements []inventory.StockMovement
		total     int64
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		movements, total, err = repos.MovementRepo().FindAll(ctx, domainFilter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return ToMovementResponses(movements), total, nil
}

// MovementsByReference lists the movements posted for one business document,
// e.g. every reservation and release of an order
func (s *InventoryService) MovementsByReference(ctx context.Context, refType string, refID uuid.UUID) ([]MovementResponse, error) {
	var movements []inventory.StockMovement
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		movements, err = repos.MovementRepo().FindByReference(ctx, refType, refID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToMovementResponses(movements), nil
}

func manualRef() inventory.Reference {
	return inventory.NewReference(inventory.ReferenceManual, uuid.Nil)
}
