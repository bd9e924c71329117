package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RecordReturn adds qty received units to an item's returned quantity.
// Returned units can never exceed fulfilled units.
func (o *Order) RecordReturn(itemID uuid.UUID, qty int) error {
	item := o.GetItem(itemID)
	if item == nil {
		return shared.NewDomainErrorf(shared.CodeNotFound, "Order item %s not found", itemID)
	}
	if qty <= 0 {
		return shared.NewDomainError(shared.CodeValidation, "Return quantity must be positive")
	}
	if item.ReturnedQuantity+qty > item.FulfilledQuantity {
		return shared.NewDomainErrorf(shared.CodeOverReturn,
			"Cannot return %d units of %s: %d fulfilled, %d already returned",
			qty, item.Title, item.FulfilledQuantity, item.ReturnedQuantity)
	}
	item.ReturnedQuantity += qty
	item.UpdatedAt = time.Now()
	o.refreshFulfillmentStatus("return received")
	o.UpdatedAt = item.UpdatedAt
	return nil
}

// UnitCredit returns what one unit of an item was sold for, after discount and tax
func (o *Order) UnitCredit(itemID uuid.UUID) decimal.Decimal {
	item := o.GetItem(itemID)
	if item == nil || item.Quantity == 0 {
		return decimal.Zero
	}
	return item.TotalPrice.Div(decimal.NewFromInt(int64(item.Quantity)))
}

// AppendItems adds new lines to an editable order and recomputes totals.
// With reserved set the lines are recorded as already holding their stock.
func (o *Order) AppendItems(lines []LineInput, reserved bool) ([]uuid.UUID, error) {
	if !o.IsEditable() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot add items to a %s order", o.Status)
	}
	for _, line := range lines {
		if err := line.Validate(); err != nil {
			return nil, err
		}
	}

	snapshot := o.Clone()
	o.dropTaxOverride()
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		item := newOrderItem(o.ID, line)
		if reserved {
			item.ReservedQuantity = item.Quantity
		}
		o.Items = append(o.Items, item)
		ids = append(ids, item.ID)
	}
	if err := o.RecomputeTotals(); err != nil {
		o.restore(snapshot)
		return nil, err
	}
	o.refreshFulfillmentStatus("items added")
	return ids, nil
}

// ApplyEdit applies a set of edit changes to the order's lines and
// recomputes totals. It returns the stock to reserve and to release so the
// ledger mirrors the new lines. Only unfulfilled units can change.
func (o *Order) ApplyEdit(changes []EditChange) (reserves, releases []StockRequest, err error) {
	if !o.IsEditable() {
		return nil, nil, shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot edit a %s order", o.Status)
	}
	if len(changes) == 0 {
		return nil, nil, shared.NewDomainError(shared.CodeValidation, "Order edit has no changes")
	}

	snapshot := o.Clone()
	o.dropTaxOverride()
	now := time.Now()
	for _, change := range changes {
		var reserve, release *StockRequest
		switch c := change.(type) {
		case ItemAdd:
			reserve, err = o.applyItemAdd(c)
		case ItemRemove:
			release, err = o.applyItemRemove(c)
		case ItemUpdate:
			reserve, release, err = o.applyItemUpdate(c, now)
		default:
			err = shared.NewDomainErrorf(shared.CodeValidation, "Unknown edit change %T", change)
		}
		if err != nil {
			o.restore(snapshot)
			return nil, nil, err
		}
		if reserve != nil {
			reserves = append(reserves, *reserve)
		}
		if release != nil {
			releases = append(releases, *release)
		}
	}
	if len(o.Items) == 0 {
		o.restore(snapshot)
		return nil, nil, shared.NewDomainError(shared.CodeValidation, "An order edit cannot remove every item")
	}
	if err = o.RecomputeTotals(); err != nil {
		o.restore(snapshot)
		return nil, nil, err
	}
	o.refreshFulfillmentStatus("order edited")
	return reserves, releases, nil
}

func (o *Order) applyItemAdd(c ItemAdd) (*StockRequest, error) {
	line := LineInput(c)
	if err := line.Validate(); err != nil {
		return nil, err
	}
	item := newOrderItem(o.ID, line)
	item.ReservedQuantity = item.Quantity
	o.Items = append(o.Items, item)
	return &StockRequest{
		OrderItemID: item.ID,
		VariantID:   item.VariantID,
		LocationID:  item.LocationID,
		Quantity:    item.Quantity,
	}, nil
}

func (o *Order) applyItemRemove(c ItemRemove) (*StockRequest, error) {
	for i := range o.Items {
		item := o.Items[i]
		if item.ID != c.OrderItemID {
			continue
		}
		if item.FulfilledQuantity > 0 {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidState,
				"Cannot remove %s: %d units already fulfilled", item.Title, item.FulfilledQuantity)
		}
		o.Items = append(o.Items[:i], o.Items[i+1:]...)
		if item.ReservedQuantity == 0 {
			return nil, nil
		}
		return &StockRequest{
			OrderItemID: item.ID,
			VariantID:   item.VariantID,
			LocationID:  item.LocationID,
			Quantity:    item.ReservedQuantity,
		}, nil
	}
	return nil, shared.NewDomainErrorf(shared.CodeNotFound, "Order item %s not found", c.OrderItemID)
}

func (o *Order) applyItemUpdate(c ItemUpdate, now time.Time) (reserve, release *StockRequest, err error) {
	item := o.GetItem(c.OrderItemID)
	if item == nil {
		return nil, nil, shared.NewDomainErrorf(shared.CodeNotFound, "Order item %s not found", c.OrderItemID)
	}
	if c.Quantity <= 0 {
		return nil, nil, shared.NewDomainError(shared.CodeValidation, "Quantity must be positive; remove the item instead")
	}
	if c.Quantity < item.FulfilledQuantity {
		return nil, nil, shared.NewDomainErrorf(shared.CodeInvalidState,
			"Cannot reduce %s below its %d fulfilled units", item.Title, item.FulfilledQuantity)
	}

	desired := c.Quantity - item.FulfilledQuantity
	delta := desired - item.ReservedQuantity
	item.Quantity = c.Quantity
	item.ReservedQuantity = desired
	item.UpdatedAt = now

	req := &StockRequest{
		OrderItemID: item.ID,
		VariantID:   item.VariantID,
		LocationID:  item.LocationID,
	}
	switch {
	case delta > 0:
		req.Quantity = delta
		return req, nil, nil
	case delta < 0:
		req.Quantity = -delta
		return nil, req, nil
	}
	return nil, nil, nil
}

// restore rolls the order's mutable state back to a snapshot taken with Clone
func (o *Order) restore(snapshot *Order) {
	events := o.GetDomainEvents()
	*o = *snapshot
	for _, e := range events {
		o.AddDomainEvent(e)
	}
}
