package trade

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true for completed and cancelled orders
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusProcessing || target == OrderStatusCancelled
	case OrderStatusProcessing:
		return target == OrderStatusCompleted || target == OrderStatusCancelled
	case OrderStatusCompleted, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// PaymentStatus represents the payment axis of an order.
// It is derived from the order's transactions and never set directly.
type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusAuthorized        PaymentStatus = "authorized"
	PaymentStatusPaid              PaymentStatus = "paid"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusFailed            PaymentStatus = "failed"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusAuthorized, PaymentStatusPaid,
		PaymentStatusPartiallyRefunded, PaymentStatusRefunded, PaymentStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the payment status can move to target.
// failed can be left again when the customer retries with another method.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	if s == target {
		return true
	}
	switch s {
	case PaymentStatusPending:
		return target == PaymentStatusAuthorized || target == PaymentStatusPaid || target == PaymentStatusFailed
	case PaymentStatusAuthorized:
		return target == PaymentStatusPaid || target == PaymentStatusFailed
	case PaymentStatusPaid:
		return target == PaymentStatusPartiallyRefunded || target == PaymentStatusRefunded
	case PaymentStatusPartiallyRefunded:
		return target == PaymentStatusRefunded
	case PaymentStatusFailed:
		return target == PaymentStatusAuthorized || target == PaymentStatusPaid
	case PaymentStatusRefunded:
		return false
	}
	return false
}

// IsCollected returns true once money has been captured
func (s PaymentStatus) IsCollected() bool {
	return s == PaymentStatusPaid || s == PaymentStatusPartiallyRefunded || s == PaymentStatusRefunded
}

// FulfillmentStatus represents the fulfillment axis of an order.
// It is derived from fulfilled quantities and never set directly.
type FulfillmentStatus string

const (
	FulfillmentStatusUnfulfilled        FulfillmentStatus = "unfulfilled"
	FulfillmentStatusPartiallyFulfilled FulfillmentStatus = "partially_fulfilled"
	FulfillmentStatusFulfilled          FulfillmentStatus = "fulfilled"
	FulfillmentStatusReturned           FulfillmentStatus = "returned"
)

// IsValid checks if the status is a valid FulfillmentStatus
func (s FulfillmentStatus) IsValid() bool {
	switch s {
	case FulfillmentStatusUnfulfilled, FulfillmentStatusPartiallyFulfilled,
		FulfillmentStatusFulfilled, FulfillmentStatusReturned:
		return true
	}
	return false
}

// String returns the string representation of FulfillmentStatus
func (s FulfillmentStatus) String() string {
	return string(s)
}

// IsFullyFulfilled returns true when every ordered unit has been fulfilled
func (s FulfillmentStatus) IsFullyFulfilled() bool {
	return s == FulfillmentStatusFulfilled || s == FulfillmentStatusReturned
}

// Status history fields
const (
	FieldStatus            = "status"
	FieldPaymentStatus     = "payment_status"
	FieldFulfillmentStatus = "fulfillment_status"
)
