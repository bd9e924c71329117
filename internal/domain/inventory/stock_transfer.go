package inventory

import (
	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
)

// Transfer moves qty on-hand units of the same variant from one location to
// another. Either both legs apply or neither does: the source is validated
// before any mutation, and only unreserved stock may leave it.
func Transfer(from, to *InventoryItem, qty int, reason string) (out, in *StockMovement, err error) {
	if err := validateQuantity(qty); err != nil {
		return nil, nil, err
	}
	if from.VariantID != to.VariantID {
		return nil, nil, shared.NewDomainError(shared.CodeValidation, "Transfer requires the same variant on both sides")
	}
	if from.LocationID == to.LocationID {
		return nil, nil, shared.NewDomainError(shared.CodeValidation, "Transfer source and destination must differ")
	}
	if from.Available() < qty {
		return nil, nil, shared.NewDomainErrorf(shared.CodeInsufficientStock,
			"Cannot transfer %d units of variant %s: only %d available at source", qty, from.VariantID, from.Available())
	}

	transferID := uuid.New()
	ref := NewReference(ReferenceTransfer, transferID)
	out, err = from.adjust(MovementTypeTransferOut, -qty, reason, ref)
	if err != nil {
		return nil, nil, err
	}
	in, err = to.adjust(MovementTypeTransferIn, qty, reason, ref)
	if err != nil {
		// undo the source leg
		from.Quantity += qty
		return nil, nil, err
	}
	return out, in, nil
}
