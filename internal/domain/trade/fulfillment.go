package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ShipmentStatus is the status of one fulfillment
type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "pending"
	ShipmentStatusShipped   ShipmentStatus = "shipped"
	ShipmentStatusDelivered ShipmentStatus = "delivered"
	ShipmentStatusCancelled ShipmentStatus = "cancelled"
)

// IsValid checks if the status is valid
func (s ShipmentStatus) IsValid() bool {
	switch s {
	case ShipmentStatusPending, ShipmentStatusShipped, ShipmentStatusDelivered, ShipmentStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if the shipment can move to target.
// Only a pending shipment can be cancelled; stock that left cannot be un-shipped.
func (s ShipmentStatus) CanTransitionTo(target ShipmentStatus) bool {
	switch s {
	case ShipmentStatusPending:
		return target == ShipmentStatusShipped || target == ShipmentStatusCancelled
	case ShipmentStatusShipped:
		return target == ShipmentStatusDelivered
	}
	return false
}

// FulfillmentItem is the quantity of one order item in a fulfillment
type FulfillmentItem struct {
	ID            uuid.UUID
	FulfillmentID uuid.UUID
	OrderItemID   uuid.UUID
	Quantity      int
}

// Tracking describes where a shipment can be followed
type Tracking struct {
	Company string
	Number  string
	URL     string
}

// Fulfillment is one shipment of a subset of an order's items
type Fulfillment struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	LocationID  *uuid.UUID
	Status      ShipmentStatus
	Tracking    Tracking
	Items       []FulfillmentItem
	ShippedAt   *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive returns true unless the fulfillment was cancelled
func (f *Fulfillment) IsActive() bool {
	return f.Status != ShipmentStatusCancelled
}

// FulfillmentLine requests qty units of an order item
type FulfillmentLine struct {
	OrderItemID uuid.UUID
	Quantity    int
}

// CreateFulfillment records a shipment for the given lines and returns the
// stock the orchestrator must consume from the ledger. A confirmed order
// moves to processing with its first fulfillment.
func (o *Order) CreateFulfillment(lines []FulfillmentLine, tracking Tracking) (*Fulfillment, []StockRequest, error) {
	if o.Status != OrderStatusConfirmed && o.Status != OrderStatusProcessing {
		return nil, nil, shared.NewDomainErrorf(shared.CodeInvalidState,
			"Cannot fulfill order %s in %s status", o.OrderNumber, o.Status)
	}
	if o.Status == OrderStatusConfirmed && !o.Status.CanTransitionTo(OrderStatusProcessing) {
		return nil, nil, shared.NewTransitionError(FieldStatus, o.Status.String(), OrderStatusProcessing.String())
	}
	if len(lines) == 0 {
		return nil, nil, shared.NewDomainError(shared.CodeValidation, "Fulfillment requires at least one item")
	}

	seen := make(map[uuid.UUID]bool, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, nil, shared.NewDomainError(shared.CodeValidation, "Fulfillment quantity must be positive")
		}
		if seen[line.OrderItemID] {
			return nil, nil, shared.NewDomainErrorf(shared.CodeValidation, "Order item %s listed twice", line.OrderItemID)
		}
		seen[line.OrderItemID] = true

		item := o.GetItem(line.OrderItemID)
		if item == nil {
			return nil, nil, shared.NewDomainErrorf(shared.CodeNotFound, "Order item %s not found", line.OrderItemID)
		}
		if line.Quantity > item.UnfulfilledQuantity() {
			return nil, nil, shared.NewDomainErrorf(shared.CodeValidation,
				"Cannot fulfill %d units of %s: only %d unfulfilled", line.Quantity, item.Title, item.UnfulfilledQuantity())
		}
		if line.Quantity > item.ReservedQuantity {
			return nil, nil, shared.NewDomainErrorf(shared.CodeInsufficientReservation,
				"Cannot fulfill %d units of %s: only %d reserved", line.Quantity, item.Title, item.ReservedQuantity)
		}
	}

	now := time.Now()
	f := Fulfillment{
		ID:        uuid.New(),
		OrderID:   o.ID,
		Status:    ShipmentStatusPending,
		Tracking:  tracking,
		Items:     make([]FulfillmentItem, 0, len(lines)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	consumes := make([]StockRequest, 0, len(lines))
	for _, line := range lines {
		item := o.GetItem(line.OrderItemID)
		item.FulfilledQuantity += line.Quantity
		item.ReservedQuantity -= line.Quantity
		item.UpdatedAt = now
		f.Items = append(f.Items, FulfillmentItem{
			ID:            uuid.New(),
			FulfillmentID: f.ID,
			OrderItemID:   item.ID,
			Quantity:      line.Quantity,
		})
		consumes = append(consumes, StockRequest{
			OrderItemID: item.ID,
			VariantID:   item.VariantID,
			LocationID:  item.LocationID,
			Quantity:    line.Quantity,
		})
	}
	if loc := singleLocation(consumes); loc != nil {
		f.LocationID = loc
	}
	if o.Status == OrderStatusConfirmed {
		if err := o.transitionStatus(OrderStatusProcessing, "first fulfillment created"); err != nil {
			return nil, nil, err
		}
	}
	o.Fulfillments = append(o.Fulfillments, f)

	o.refreshFulfillmentStatus("fulfillment created")
	o.UpdatedAt = now

	created := &o.Fulfillments[len(o.Fulfillments)-1]
	o.AddDomainEvent(NewFulfillmentCreatedEvent(o, created))
	return created, consumes, nil
}

// ShipFulfillment marks a pending fulfillment as shipped
func (o *Order) ShipFulfillment(fulfillmentID uuid.UUID, tracking *Tracking) error {
	f, err := o.fulfillmentFor(fulfillmentID, ShipmentStatusShipped)
	if err != nil {
		return err
	}
	now := time.Now()
	if tracking != nil {
		f.Tracking = *tracking
	}
	f.Status = ShipmentStatusShipped
	f.ShippedAt = &now
	f.UpdatedAt = now
	o.UpdatedAt = now
	o.AddDomainEvent(NewFulfillmentShippedEvent(o, f))
	return nil
}

// DeliverFulfillment marks a shipped fulfillment as delivered
func (o *Order) DeliverFulfillment(fulfillmentID uuid.UUID) error {
	f, err := o.fulfillmentFor(fulfillmentID, ShipmentStatusDelivered)
	if err != nil {
		return err
	}
	now := time.Now()
	f.Status = ShipmentStatusDelivered
	f.DeliveredAt = &now
	f.UpdatedAt = now
	o.UpdatedAt = now
	o.AddDomainEvent(NewFulfillmentDeliveredEvent(o, f))
	return nil
}

// CancelFulfillment cancels a pending fulfillment. The consumed stock goes
// back on hand and is reserved again for the order, so the caller must
// restock and re-reserve the returned requests.
func (o *Order) CancelFulfillment(fulfillmentID uuid.UUID) ([]StockRequest, error) {
	if o.Status.IsTerminal() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidState,
			"Cannot cancel a fulfillment of a %s order", o.Status)
	}
	f, err := o.fulfillmentFor(fulfillmentID, ShipmentStatusCancelled)
	if err != nil {
		return nil, err
	}
	for _, fi := range f.Items {
		item := o.GetItem(fi.OrderItemID)
		if item == nil {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidState, "Fulfillment references unknown item %s", fi.OrderItemID)
		}
		if item.FulfilledQuantity-fi.Quantity < item.ReturnedQuantity {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidState,
				"Cannot cancel fulfillment %s: units of %s were already returned", f.ID, item.Title)
		}
	}

	now := time.Now()
	restocks := make([]StockRequest, 0, len(f.Items))
	for _, fi := range f.Items {
		item := o.GetItem(fi.OrderItemID)
		item.FulfilledQuantity -= fi.Quantity
		item.ReservedQuantity += fi.Quantity
		item.UpdatedAt = now
		restocks = append(restocks, StockRequest{
			OrderItemID: item.ID,
			VariantID:   item.VariantID,
			LocationID:  item.LocationID,
			Quantity:    fi.Quantity,
		})
	}
	f.Status = ShipmentStatusCancelled
	f.CancelledAt = &now
	f.UpdatedAt = now
	o.refreshFulfillmentStatus("fulfillment cancelled")
	o.UpdatedAt = now

	o.AddDomainEvent(NewFulfillmentCancelledEvent(o, f))
	return restocks, nil
}

func (o *Order) fulfillmentFor(id uuid.UUID, target ShipmentStatus) (*Fulfillment, error) {
	f := o.GetFulfillment(id)
	if f == nil {
		return nil, shared.NewDomainErrorf(shared.CodeNotFound, "Fulfillment %s not found", id)
	}
	if !f.Status.CanTransitionTo(target) {
		return nil, shared.NewTransitionError("fulfillment_status", string(f.Status), string(target))
	}
	return f, nil
}

// deriveFulfillmentStatus maps fulfilled/ordered units to the order axis.
// Returns never lower it; returned is reported only once every unit was
// fulfilled and every fulfilled unit came back.
func deriveFulfillmentStatus(items []OrderItem) FulfillmentStatus {
	ordered, fulfilled, returned := 0, 0, 0
	for _, item := range items {
		ordered += item.Quantity
		fulfilled += item.FulfilledQuantity
		returned += item.ReturnedQuantity
	}
	switch {
	case fulfilled == 0 || ordered == 0:
		return FulfillmentStatusUnfulfilled
	case fulfilled < ordered:
		return FulfillmentStatusPartiallyFulfilled
	case returned == fulfilled:
		return FulfillmentStatusReturned
	default:
		return FulfillmentStatusFulfilled
	}
}

// FulfilledRatio returns Σ fulfilled / Σ ordered
func (o *Order) FulfilledRatio() decimal.Decimal {
	ordered, fulfilled := 0, 0
	for _, item := range o.Items {
		ordered += item.Quantity
		fulfilled += item.FulfilledQuantity
	}
	if ordered == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(fulfilled)).DivRound(decimal.NewFromInt(int64(ordered)), 4)
}

func (o *Order) refreshFulfillmentStatus(reason string) {
	derived := deriveFulfillmentStatus(o.Items)
	if derived == o.FulfillmentStatus {
		return
	}
	o.recordHistory(FieldFulfillmentStatus, o.FulfillmentStatus.String(), derived.String(), reason)
	o.FulfillmentStatus = derived
}

func singleLocation(reqs []StockRequest) *uuid.UUID {
	if len(reqs) == 0 {
		return nil
	}
	loc := reqs[0].LocationID
	for _, r := range reqs[1:] {
		if r.LocationID != loc {
			return nil
		}
	}
	return &loc
}
