package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/inventory"
)

// InventoryItemResponse represents the stock of a variant at a location
type InventoryItemResponse struct {
	ID               uuid.UUID `json:"id"`
	VariantID        uuid.UUID `json:"variant_id"`
	LocationID       uuid.UUID `json:"location_id"`
	Quantity         int       `json:"quantity"`
	ReservedQuantity int       `json:"reserved_quantity"`
	Available        int       `json:"available"`
	AllowBackorder   bool      `json:"allow_backorder"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Version          int       `json:"version"`
}

// MovementResponse represents one entry of the movement log
type MovementResponse struct {
	ID             uuid.UUID `json:"id"`
	VariantID      uuid.UUID `json:"variant_id"`
	LocationID     uuid.UUID `json:"location_id"`
	Type           string    `json:"type"`
	Delta          int       `json:"delta"`
	QuantityBefore int       `json:"quantity_before"`
	QuantityAfter  int       `json:"quantity_after"`
	ReservedBefore int       `json:"reserved_before"`
	ReservedAfter  int       `json:"reserved_after"`
	Reason         string    `json:"reason,omitempty"`
	Level          string    `json:"level"`
	ReferenceType  string    `json:"reference_type,omitempty"`
	ReferenceID    uuid.UUID `json:"reference_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// MovementListFilter represents filter options for the movement log
type MovementListFilter struct {
	VariantID     *uuid.UUID `form:"-"`
	LocationID    *uuid.UUID `form:"-"`
	Type          string     `form:"type" binding:"omitempty,oneof=reservation release consumption adjustment transfer_in transfer_out"`
	ReferenceType string     `form:"reference_type"`
	ReferenceID   *uuid.UUID `form:"-"`
	From          *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To            *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// AdjustStockRequest is a manual correction of on-hand stock
type AdjustStockRequest struct {
	VariantID  uuid.UUID `json:"variant_id" binding:"required"`
	LocationID uuid.UUID `json:"location_id" binding:"required"`
	Delta      int       `json:"delta" binding:"required"`
	Reason     string    `json:"reason" binding:"required,max=255"`
}

// ReceiveStockRequest books incoming goods
type ReceiveStockRequest struct {
	VariantID  uuid.UUID `json:"variant_id" binding:"required"`
	LocationID uuid.UUID `json:"location_id" binding:"required"`
	Quantity   int       `json:"quantity" binding:"required,gt=0"`
}

// CountStockRequest sets on-hand stock to a physically counted quantity
type CountStockRequest struct {
	VariantID  uuid.UUID `json:"variant_id" binding:"required"`
	LocationID uuid.UUID `json:"location_id" binding:"required"`
	Counted    int       `json:"counted" binding:"min=0"`
	Note       string    `json:"note" binding:"max=255"`
}

// TransferStockRequest moves units between two locations
type TransferStockRequest struct {
	VariantID      uuid.UUID `json:"variant_id" binding:"required"`
	FromLocationID uuid.UUID `json:"from_location_id" binding:"required"`
	ToLocationID   uuid.UUID `json:"to_location_id" binding:"required"`
	Quantity       int       `json:"quantity" binding:"required,gt=0"`
	Reason         string    `json:"reason" binding:"max=255"`
}

// SetBackorderRequest toggles backorder for a variant at a location
type SetBackorderRequest struct {
	VariantID      uuid.UUID `json:"variant_id" binding:"required"`
	LocationID     uuid.UUID `json:"location_id" binding:"required"`
	AllowBackorder bool      `json:"allow_backorder"`
}

// ToInventoryItemResponse converts a domain InventoryItem to a response DTO
func ToInventoryItemResponse(item *inventory.InventoryItem) InventoryItemResponse {
	return InventoryItemResponse{
		ID:               item.ID,
		VariantID:        item.VariantID,
		LocationID:       item.LocationID,
		Quantity:         item.Quantity,
		ReservedQuantity: item.ReservedQuantity,
		Available:        item.Available(),
		AllowBackorder:   item.AllowBackorder,
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
		Version:          item.Version,
	}
}

// ToMovementResponse converts a movement to a response DTO
func ToMovementResponse(m *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		VariantID:      m.VariantID,
		LocationID:     m.LocationID,
		Type:           string(m.Type),
		Delta:          m.Delta,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		ReservedBefore: m.ReservedBefore,
		ReservedAfter:  m.ReservedAfter,
		Reason:         m.Reason,
		Level:          string(m.Level),
		ReferenceType:  m.ReferenceType,
		ReferenceID:    m.ReferenceID,
		CreatedAt:      m.CreatedAt,
	}
}

// ToMovementResponses converts a slice of movements
func ToMovementResponses(movements []inventory.StockMovement) []MovementResponse {
	out := make([]MovementResponse, len(movements))
	for i := range movements {
		out[i] = ToMovementResponse(&movements[i])
	}
	return out
}
