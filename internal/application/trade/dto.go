package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared/valueobject"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// ==================== Checkout DTOs ====================

// CheckoutRequest is the cart snapshot handed over at checkout.
// Discount and shipping are already resolved by the cart.
type CheckoutRequest struct {
	CartID          uuid.UUID        `json:"cart_id" binding:"required"`
	StoreID         uuid.UUID        `json:"-"`
	CustomerID      *uuid.UUID       `json:"customer_id"`
	Email           string           `json:"email" binding:"omitempty,email"`
	Currency        string           `json:"currency" binding:"omitempty,len=3"`
	Items           []LineItemInput  `json:"items" binding:"required,min=1,dive"`
	DiscountTotal   decimal.Decimal  `json:"discount_total" binding:"gte=0"`
	ShippingTotal   decimal.Decimal  `json:"shipping_total" binding:"gte=0"`
	ShippingMethod  string           `json:"shipping_method"`
	ShippingAddress *AddressInput    `json:"shipping_address"`
	TaxTotal        *decimal.Decimal `json:"tax_total"`
}

// LineItemInput is one priced line of a cart, an exchange or an edit
type LineItemInput struct {
	ProductID  uuid.UUID       `json:"product_id" binding:"required"`
	VariantID  uuid.UUID       `json:"variant_id" binding:"required"`
	LocationID uuid.UUID       `json:"location_id" binding:"required"`
	Title      string          `json:"title" binding:"required,max=255"`
	SKU        string          `json:"sku" binding:"max=100"`
	UnitPrice  decimal.Decimal `json:"unit_price" binding:"gte=0"`
	Quantity   int             `json:"quantity" binding:"required,gt=0"`
}

func (l LineItemInput) toDomain() trade.LineInput {
	return trade.LineInput{
		ProductID:  l.ProductID,
		VariantID:  l.VariantID,
		LocationID: l.LocationID,
		Title:      l.Title,
		SKU:        l.SKU,
		UnitPrice:  l.UnitPrice,
		Quantity:   l.Quantity,
	}
}

func toLineInputs(items []LineItemInput) []trade.LineInput {
	lines := make([]trade.LineInput, len(items))
	for i, item := range items {
		lines[i] = item.toDomain()
	}
	return lines
}

// AddressInput is a shipping address
type AddressInput struct {
	Name        string `json:"name" binding:"max=200"`
	Line1       string `json:"line1" binding:"required,max=255"`
	Line2       string `json:"line2" binding:"max=255"`
	City        string `json:"city" binding:"required,max=100"`
	Province    string `json:"province" binding:"max=100"`
	PostalCode  string `json:"postal_code" binding:"max=20"`
	CountryCode string `json:"country_code" binding:"required,len=2"`
	Phone       string `json:"phone" binding:"max=50"`
}

func (a *AddressInput) toDomain() *trade.Address {
	if a == nil {
		return nil
	}
	return &trade.Address{
		Name:        a.Name,
		Line1:       a.Line1,
		Line2:       a.Line2,
		City:        a.City,
		Province:    a.Province,
		PostalCode:  a.PostalCode,
		CountryCode: a.CountryCode,
		Phone:       a.Phone,
	}
}

func (r CheckoutRequest) toSnapshot() trade.CartSnapshot {
	return trade.CartSnapshot{
		CartID:          r.CartID,
		StoreID:         r.StoreID,
		CustomerID:      r.CustomerID,
		Email:           r.Email,
		Currency:        valueobject.Currency(r.Currency),
		Items:           toLineInputs(r.Items),
		DiscountTotal:   r.DiscountTotal,
		ShippingTotal:   r.ShippingTotal,
		ShippingMethod:  r.ShippingMethod,
		ShippingAddress: r.ShippingAddress.toDomain(),
		TaxTotal:        r.TaxTotal,
	}
}

// ==================== Order DTOs ====================

// OrderListFilter represents filter options for listing orders
type OrderListFilter struct {
	Search            string     `form:"search"`
	Status            string     `form:"status" binding:"omitempty,oneof=pending confirmed processing completed cancelled"`
	PaymentStatus     string     `form:"payment_status"`
	FulfillmentStatus string     `form:"fulfillment_status"`
	CustomerID        *uuid.UUID `form:"-"`
	From              *time.Time `form:"from" time_format:"2006-01-02"`
	To                *time.Time `form:"to" time_format:"2006-01-02"`
	Page              int        `form:"page" binding:"min=0"`
	PageSize          int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy           string     `form:"order_by"`
	OrderDir          string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CancelOrderRequest represents a request to cancel an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// AddNoteRequest replaces the internal note of an order
type AddNoteRequest struct {
	Note string `json:"note" binding:"max=2000"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                uuid.UUID             `json:"id"`
	StoreID           uuid.UUID             `json:"store_id"`
	OrderNumber       string                `json:"order_number"`
	CartID            *uuid.UUID            `json:"cart_id,omitempty"`
	CustomerID        *uuid.UUID            `json:"customer_id,omitempty"`
	Email             string                `json:"email,omitempty"`
	Currency          string                `json:"currency"`
	Status            string                `json:"status"`
	PaymentStatus     string                `json:"payment_status"`
	FulfillmentStatus string                `json:"fulfillment_status"`
	Subtotal          decimal.Decimal       `json:"subtotal"`
	DiscountTotal     decimal.Decimal       `json:"discount_total"`
	ShippingTotal     decimal.Decimal       `json:"shipping_total"`
	TaxTotal          decimal.Decimal       `json:"tax_total"`
	GrandTotal        decimal.Decimal       `json:"grand_total"`
	TotalPaid         decimal.Decimal       `json:"total_paid"`
	TotalRefunded     decimal.Decimal       `json:"total_refunded"`
	BalanceDue        decimal.Decimal       `json:"balance_due"`
	ShippingMethod    string                `json:"shipping_method,omitempty"`
	ShippingAddress   *trade.Address        `json:"shipping_address,omitempty"`
	Notes             string                `json:"notes,omitempty"`
	CancelReason      string                `json:"cancel_reason,omitempty"`
	Items             []OrderItemResponse   `json:"items"`
	Transactions      []TransactionResponse `json:"transactions"`
	Fulfillments      []FulfillmentResponse `json:"fulfillments"`
	Refunds           []RefundResponse      `json:"refunds"`
	History           []HistoryResponse     `json:"history"`
	ConfirmedAt       *time.Time            `json:"confirmed_at,omitempty"`
	CompletedAt       *time.Time            `json:"completed_at,omitempty"`
	CancelledAt       *time.Time            `json:"cancelled_at,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
	Version           int                   `json:"version"`
}

// OrderListItemResponse represents an order in list responses
type OrderListItemResponse struct {
	ID                uuid.UUID       `json:"id"`
	OrderNumber       string          `json:"order_number"`
	CustomerID        *uuid.UUID      `json:"customer_id,omitempty"`
	Email             string          `json:"email,omitempty"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	PaymentStatus     string          `json:"payment_status"`
	FulfillmentStatus string          `json:"fulfillment_status"`
	ItemCount         int             `json:"item_count"`
	GrandTotal        decimal.Decimal `json:"grand_total"`
	TotalPaid         decimal.Decimal `json:"total_paid"`
	CreatedAt         time.Time       `json:"created_at"`
}

// OrderItemResponse represents an order line
type OrderItemResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	VariantID         uuid.UUID       `json:"variant_id"`
	LocationID        uuid.UUID       `json:"location_id"`
	Title             string          `json:"title"`
	SKU               string          `json:"sku,omitempty"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	FulfilledQuantity int             `json:"fulfilled_quantity"`
	ReturnedQuantity  int             `json:"returned_quantity"`
	ReservedQuantity  int             `json:"reserved_quantity"`
}

// TransactionResponse represents a payment gateway event
type TransactionResponse struct {
	ID               uuid.UUID       `json:"id"`
	Type             string          `json:"type"`
	Status           string          `json:"status"`
	Amount           decimal.Decimal `json:"amount"`
	GatewayReference string          `json:"gateway_reference,omitempty"`
	ErrorMessage     string          `json:"error_message,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// FulfillmentResponse represents a shipment
type FulfillmentResponse struct {
	ID              uuid.UUID                 `json:"id"`
	Status          string                    `json:"status"`
	LocationID      *uuid.UUID                `json:"location_id,omitempty"`
	TrackingCompany string                    `json:"tracking_company,omitempty"`
	TrackingNumber  string                    `json:"tracking_number,omitempty"`
	TrackingURL     string                    `json:"tracking_url,omitempty"`
	Items           []FulfillmentItemResponse `json:"items"`
	ShippedAt       *time.Time                `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time                `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time                `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time                 `json:"created_at"`
}

// FulfillmentItemResponse is one line of a shipment
type FulfillmentItemResponse struct {
	OrderItemID uuid.UUID `json:"order_item_id"`
	Quantity    int       `json:"quantity"`
}

// RefundResponse represents a refund
type RefundResponse struct {
	ID            uuid.UUID       `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	Reason        string          `json:"reason,omitempty"`
	Note          string          `json:"note,omitempty"`
	Goodwill      bool            `json:"goodwill"`
	SourceType    string          `json:"source_type"`
	SourceID      *uuid.UUID      `json:"source_id,omitempty"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// HistoryResponse is one status history entry
type HistoryResponse struct {
	Field     string     `json:"field"`
	From      string     `json:"from"`
	To        string     `json:"to"`
	Reason    string     `json:"reason,omitempty"`
	ActorID   *uuid.UUID `json:"actor_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToOrderResponse converts a domain Order to a response DTO
func ToOrderResponse(o *trade.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:                item.ID,
			ProductID:         item.ProductID,
			VariantID:         item.VariantID,
			LocationID:        item.LocationID,
			Title:             item.Title,
			SKU:               item.SKU,
			Quantity:          item.Quantity,
			UnitPrice:         item.UnitPrice,
			DiscountAmount:    item.DiscountAmount,
			TaxAmount:         item.TaxAmount,
			TotalPrice:        item.TotalPrice,
			FulfilledQuantity: item.FulfilledQuantity,
			ReturnedQuantity:  item.ReturnedQuantity,
			ReservedQuantity:  item.ReservedQuantity,
		}
	}
	txs := make([]TransactionResponse, len(o.Transactions))
	for i, tx := range o.Transactions {
		txs[i] = TransactionResponse{
			ID:               tx.ID,
			Type:             string(tx.Type),
			Status:           string(tx.Status),
			Amount:           tx.Amount,
			GatewayReference: tx.GatewayReference,
			ErrorMessage:     tx.ErrorMessage,
			CreatedAt:        tx.CreatedAt,
		}
	}
	fulfillments := make([]FulfillmentResponse, len(o.Fulfillments))
	for i := range o.Fulfillments {
		fulfillments[i] = ToFulfillmentResponse(&o.Fulfillments[i])
	}
	refunds := make([]RefundResponse, len(o.Refunds))
	for i := range o.Refunds {
		refunds[i] = ToRefundResponse(&o.Refunds[i])
	}
	history := make([]HistoryResponse, len(o.History))
	for i, h := range o.History {
		history[i] = HistoryResponse{
			Field:     h.Field,
			From:      h.From,
			To:        h.To,
			Reason:    h.Reason,
			ActorID:   h.ActorID,
			CreatedAt: h.CreatedAt,
		}
	}

	return OrderResponse{
		ID:                o.ID,
		StoreID:           o.StoreID,
		OrderNumber:       o.OrderNumber,
		CartID:            o.CartID,
		CustomerID:        o.CustomerID,
		Email:             o.Email,
		Currency:          string(o.Currency),
		Status:            o.Status.String(),
		PaymentStatus:     o.PaymentStatus.String(),
		FulfillmentStatus: o.FulfillmentStatus.String(),
		Subtotal:          o.Subtotal,
		DiscountTotal:     o.DiscountTotal,
		ShippingTotal:     o.ShippingTotal,
		TaxTotal:          o.TaxTotal,
		GrandTotal:        o.GrandTotal,
		TotalPaid:         o.TotalPaid,
		TotalRefunded:     o.TotalRefunded,
		BalanceDue:        o.BalanceDue(),
		ShippingMethod:    o.ShippingMethod,
		ShippingAddress:   o.ShippingAddress,
		Notes:             o.Notes,
		CancelReason:      o.CancelReason,
		Items:             items,
		Transactions:      txs,
		Fulfillments:      fulfillments,
		Refunds:           refunds,
		History:           history,
		ConfirmedAt:       o.ConfirmedAt,
		CompletedAt:       o.CompletedAt,
		CancelledAt:       o.CancelledAt,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		Version:           o.Version,
	}
}

// ToOrderListItemResponses converts orders to list response DTOs
func ToOrderListItemResponses(orders []trade.Order) []OrderListItemResponse {
	out := make([]OrderListItemResponse, len(orders))
	for i, o := range orders {
		out[i] = OrderListItemResponse{
			ID:                o.ID,
			OrderNumber:       o.OrderNumber,
			CustomerID:        o.CustomerID,
			Email:             o.Email,
			Currency:          string(o.Currency),
			Status:            o.Status.String(),
			PaymentStatus:     o.PaymentStatus.String(),
			FulfillmentStatus: o.FulfillmentStatus.String(),
			ItemCount:         len(o.Items),
			GrandTotal:        o.GrandTotal,
			TotalPaid:         o.TotalPaid,
			CreatedAt:         o.CreatedAt,
		}
	}
	return out
}

// ToFulfillmentResponse converts a fulfillment to a response DTO
func ToFulfillmentResponse(f *trade.Fulfillment) FulfillmentResponse {
	items := make([]FulfillmentItemResponse, len(f.Items))
	for i, fi := range f.Items {
		items[i] = FulfillmentItemResponse{OrderItemID: fi.OrderItemID, Quantity: fi.Quantity}
	}
	return FulfillmentResponse{
		ID:              f.ID,
		Status:          string(f.Status),
		LocationID:      f.LocationID,
		TrackingCompany: f.Tracking.Company,
		TrackingNumber:  f.Tracking.Number,
		TrackingURL:     f.Tracking.URL,
		Items:           items,
		ShippedAt:       f.ShippedAt,
		DeliveredAt:     f.DeliveredAt,
		CancelledAt:     f.CancelledAt,
		CreatedAt:       f.CreatedAt,
	}
}

// ToRefundResponse converts a refund to a response DTO
func ToRefundResponse(r *trade.Refund) RefundResponse {
	return RefundResponse{
		ID:            r.ID,
		Amount:        r.Amount,
		Status:        string(r.Status),
		Reason:        r.Reason,
		Note:          r.Note,
		Goodwill:      r.Goodwill,
		SourceType:    r.SourceType,
		SourceID:      r.SourceID,
		TransactionID: r.TransactionID,
		CreatedAt:     r.CreatedAt,
	}
}

// ==================== Payment DTOs ====================

// AuthorizePaymentRequest asks the gateway to authorize the order's balance
type AuthorizePaymentRequest struct {
	ReturnURL string `json:"return_url" binding:"omitempty,url"`
}

// CapturePaymentRequest captures an authorized payment. A nil amount
// captures the balance due.
type CapturePaymentRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

// RecordPaymentRequest records a gateway notification received out of band
type RecordPaymentRequest struct {
	Type             string          `json:"type" binding:"required,oneof=authorization capture"`
	Status           string          `json:"status" binding:"required,oneof=pending success failed"`
	Amount           decimal.Decimal `json:"amount" binding:"gt=0"`
	GatewayReference string          `json:"gateway_reference" binding:"max=255"`
	ErrorMessage     string          `json:"error_message" binding:"max=1000"`
}

// PaymentResponse is the order after a payment step, plus what the gateway said
type PaymentResponse struct {
	Order       OrderResponse `json:"order"`
	Succeeded   bool          `json:"succeeded"`
	RedirectURL string        `json:"redirect_url,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// ==================== Fulfillment DTOs ====================

// FulfillmentLineInput requests qty units of an order item
type FulfillmentLineInput struct {
	OrderItemID uuid.UUID `json:"order_item_id" binding:"required"`
	Quantity    int       `json:"quantity" binding:"required,gt=0"`
}

// TrackingInput describes where a shipment can be followed
type TrackingInput struct {
	Company string `json:"tracking_company" binding:"max=100"`
	Number  string `json:"tracking_number" binding:"max=100"`
	URL     string `json:"tracking_url" binding:"omitempty,url"`
}

func (t TrackingInput) toDomain() trade.Tracking {
	return trade.Tracking{Company: t.Company, Number: t.Number, URL: t.URL}
}

// CreateFulfillmentRequest represents a request to ship part of an order
type CreateFulfillmentRequest struct {
	Items    []FulfillmentLineInput `json:"items" binding:"required,min=1,dive"`
	Tracking TrackingInput          `json:"tracking"`
}

// ShipFulfillmentRequest marks a fulfillment shipped, optionally with tracking
type ShipFulfillmentRequest struct {
	Tracking *TrackingInput `json:"tracking"`
}

// ==================== Refund DTOs ====================

// RefundItemInput attributes part of a refund to an order item
type RefundItemInput struct {
	OrderItemID uuid.UUID       `json:"order_item_id" binding:"required"`
	Quantity    int             `json:"quantity" binding:"min=0"`
	Amount      decimal.Decimal `json:"amount" binding:"gte=0"`
}

// RefundOrderRequest represents a request to refund an order
type RefundOrderRequest struct {
	Amount   decimal.Decimal   `json:"amount" binding:"gt=0"`
	Reason   string            `json:"reason" binding:"max=255"`
	Note     string            `json:"note" binding:"max=2000"`
	Goodwill bool              `json:"goodwill"`
	Items    []RefundItemInput `json:"items" binding:"dive"`
}

func (r RefundOrderRequest) toDomain() trade.RefundRequest {
	items := make([]trade.RefundItem, len(r.Items))
	for i, it := range r.Items {
		items[i] = trade.RefundItem{OrderItemID: it.OrderItemID, Quantity: it.Quantity, Amount: it.Amount}
	}
	return trade.RefundRequest{
		Amount:     r.Amount,
		Reason:     r.Reason,
		Note:       r.Note,
		Goodwill:   r.Goodwill,
		Items:      items,
		SourceType: trade.RefundSourceOrder,
	}
}

// RefundResultResponse is the order after a refund attempt
type RefundResultResponse struct {
	Order  OrderResponse  `json:"order"`
	Refund RefundResponse `json:"refund"`
}

// ==================== Return DTOs ====================

// ReturnItemInput requests the return of units of an order item
type ReturnItemInput struct {
	OrderItemID uuid.UUID  `json:"order_item_id" binding:"required"`
	Quantity    int        `json:"quantity" binding:"required,gt=0"`
	Reason      string     `json:"reason" binding:"max=100"`
	Note        string     `json:"note" binding:"max=1000"`
	Restock     bool       `json:"restock"`
	LocationID  *uuid.UUID `json:"location_id"`
}

// CreateReturnRequest represents a request to return fulfilled items
type CreateReturnRequest struct {
	Items        []ReturnItemInput `json:"items" binding:"required,min=1,dive"`
	RefundAmount decimal.Decimal   `json:"refund_amount" binding:"gte=0"`
	Note         string            `json:"note" binding:"max=2000"`
}

func (r CreateReturnRequest) inputs() []trade.ReturnItemInput {
	out := make([]trade.ReturnItemInput, len(r.Items))
	for i, it := range r.Items {
		out[i] = trade.ReturnItemInput{
			OrderItemID: it.OrderItemID,
			Quantity:    it.Quantity,
			Reason:      it.Reason,
			Note:        it.Note,
			Restock:     it.Restock,
			LocationID:  it.LocationID,
		}
	}
	return out
}

// ReturnResponse represents a return
type ReturnResponse struct {
	ID           uuid.UUID            `json:"id"`
	OrderID      uuid.UUID            `json:"order_id"`
	Status       string               `json:"status"`
	Items        []ReturnItemResponse `json:"items"`
	RefundAmount decimal.Decimal      `json:"refund_amount"`
	Note         string               `json:"note,omitempty"`
	ExchangeID   *uuid.UUID           `json:"exchange_id,omitempty"`
	ClaimID      *uuid.UUID           `json:"claim_id,omitempty"`
	RefundID     *uuid.UUID           `json:"refund_id,omitempty"`
	ReceivedAt   *time.Time           `json:"received_at,omitempty"`
	CompletedAt  *time.Time           `json:"completed_at,omitempty"`
	CancelledAt  *time.Time           `json:"cancelled_at,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	Version      int                  `json:"version"`
}

// ReturnItemResponse is one returned line
type ReturnItemResponse struct {
	ID          uuid.UUID  `json:"id"`
	OrderItemID uuid.UUID  `json:"order_item_id"`
	Quantity    int        `json:"quantity"`
	Reason      string     `json:"reason,omitempty"`
	Note        string     `json:"note,omitempty"`
	Restock     bool       `json:"restock"`
	LocationID  *uuid.UUID `json:"location_id,omitempty"`
}

// ToReturnResponse converts a return to a response DTO
func ToReturnResponse(r *trade.Return) ReturnResponse {
	items := make([]ReturnItemResponse, len(r.Items))
	for i, it := range r.Items {
		items[i] = ReturnItemResponse{
			ID:          it.ID,
			OrderItemID: it.OrderItemID,
			Quantity:    it.Quantity,
			Reason:      it.Reason,
			Note:        it.Note,
			Restock:     it.Restock,
			LocationID:  it.LocationID,
		}
	}
	return ReturnResponse{
		ID:           r.ID,
		OrderID:      r.OrderID,
		Status:       string(r.Status),
		Items:        items,
		RefundAmount: r.RefundAmount,
		Note:         r.Note,
		ExchangeID:   r.ExchangeID,
		ClaimID:      r.ClaimID,
		RefundID:     r.RefundID,
		ReceivedAt:   r.ReceivedAt,
		CompletedAt:  r.CompletedAt,
		CancelledAt:  r.CancelledAt,
		CreatedAt:    r.CreatedAt,
		Version:      r.Version,
	}
}

// ==================== Claim DTOs ====================

// ClaimItemInput describes a claimed line
type ClaimItemInput struct {
	OrderItemID uuid.UUID `json:"order_item_id" binding:"required"`
	Quantity    int       `json:"quantity" binding:"required,gt=0"`
	Reason      string    `json:"reason" binding:"max=100"`
	Note        string    `json:"note" binding:"max=1000"`
}

// CreateClaimRequest represents a complaint about delivered goods
type CreateClaimRequest struct {
	Type         string           `json:"type" binding:"required,oneof=refund replace"`
	Items        []ClaimItemInput `json:"items" binding:"required,min=1,dive"`
	RefundAmount decimal.Decimal  `json:"refund_amount" binding:"gte=0"`
	Note         string           `json:"note" binding:"max=2000"`
}

// RejectClaimRequest carries the reason a claim is turned down
type RejectClaimRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ClaimResponse represents a claim
type ClaimResponse struct {
	ID           uuid.UUID           `json:"id"`
	OrderID      uuid.UUID           `json:"order_id"`
	Type         string              `json:"type"`
	Status       string              `json:"status"`
	Items        []ClaimItemResponse `json:"items"`
	RefundAmount decimal.Decimal     `json:"refund_amount"`
	Note         string              `json:"note,omitempty"`
	RejectReason string              `json:"reject_reason,omitempty"`
	RefundID     *uuid.UUID          `json:"refund_id,omitempty"`
	DecidedBy    *uuid.UUID          `json:"decided_by,omitempty"`
	DecidedAt    *time.Time          `json:"decided_at,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	Version      int                 `json:"version"`
}

// ClaimItemResponse is one claimed line
type ClaimItemResponse struct {
	ID          uuid.UUID `json:"id"`
	OrderItemID uuid.UUID `json:"order_item_id"`
	Quantity    int       `json:"quantity"`
	Reason      string    `json:"reason,omitempty"`
	Note        string    `json:"note,omitempty"`
}

// ToClaimResponse converts a claim to a response DTO
func ToClaimResponse(c *trade.Claim) ClaimResponse {
	items := make([]ClaimItemResponse, len(c.Items))
	for i, it := range c.Items {
		items[i] = ClaimItemResponse{
			ID:          it.ID,
			OrderItemID: it.OrderItemID,
			Quantity:    it.Quantity,
			Reason:      it.Reason,
			Note:        it.Note,
		}
	}
	return ClaimResponse{
		ID:           c.ID,
		OrderID:      c.OrderID,
		Type:         string(c.Type),
		Status:       string(c.Status),
		Items:        items,
		RefundAmount: c.RefundAmount,
		Note:         c.Note,
		RejectReason: c.RejectReason,
		RefundID:     c.RefundID,
		DecidedBy:    c.DecidedBy,
		DecidedAt:    c.DecidedAt,
		CreatedAt:    c.CreatedAt,
		Version:      c.Version,
	}
}

// ==================== Exchange DTOs ====================

// CreateExchangeRequest swaps returned goods for new ones
type CreateExchangeRequest struct {
	ReturnID        *uuid.UUID      `json:"return_id"`
	AdditionalItems []LineItemInput `json:"additional_items" binding:"dive"`
	Note            string          `json:"note" binding:"max=2000"`
}

// ExchangeResponse represents an exchange
type ExchangeResponse struct {
	ID               uuid.UUID              `json:"id"`
	OrderID          uuid.UUID              `json:"order_id"`
	ReturnID         *uuid.UUID             `json:"return_id,omitempty"`
	Status           string                 `json:"status"`
	PaymentStatus    string                 `json:"payment_status"`
	AdditionalItems  []ExchangeItemResponse `json:"additional_items"`
	AdditionalTotal  decimal.Decimal        `json:"additional_total"`
	ReturnCredit     decimal.Decimal        `json:"return_credit"`
	DifferenceAmount decimal.Decimal        `json:"difference_amount"`
	Note             string                 `json:"note,omitempty"`
	TransactionID    *uuid.UUID             `json:"transaction_id,omitempty"`
	RefundID         *uuid.UUID             `json:"refund_id,omitempty"`
	CompletedAt      *time.Time             `json:"completed_at,omitempty"`
	CancelledAt      *time.Time             `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	Version          int                    `json:"version"`
}

// ExchangeItemResponse is one new line sent in exchange
type ExchangeItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	VariantID   uuid.UUID       `json:"variant_id"`
	LocationID  uuid.UUID       `json:"location_id"`
	Title       string          `json:"title"`
	SKU         string          `json:"sku,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Reserved    bool            `json:"reserved"`
	OrderItemID *uuid.UUID      `json:"order_item_id,omitempty"`
}

// ToExchangeResponse converts an exchange to a response DTO
func ToExchangeResponse(e *trade.Exchange) ExchangeResponse {
	items := make([]ExchangeItemResponse, len(e.AdditionalItems))
	for i, it := range e.AdditionalItems {
		items[i] = ExchangeItemResponse{
			ID:          it.ID,
			VariantID:   it.VariantID,
			LocationID:  it.LocationID,
			Title:       it.Title,
			SKU:         it.SKU,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Reserved:    it.Reserved,
			OrderItemID: it.OrderItemID,
		}
	}
	return ExchangeResponse{
		ID:               e.ID,
		OrderID:          e.OrderID,
		ReturnID:         e.ReturnID,
		Status:           string(e.Status),
		PaymentStatus:    string(e.PaymentStatus),
		AdditionalItems:  items,
		AdditionalTotal:  e.AdditionalTotal,
		ReturnCredit:     e.ReturnCredit,
		DifferenceAmount: e.DifferenceAmount,
		Note:             e.Note,
		TransactionID:    e.TransactionID,
		RefundID:         e.RefundID,
		CompletedAt:      e.CompletedAt,
		CancelledAt:      e.CancelledAt,
		CreatedAt:        e.CreatedAt,
		Version:          e.Version,
	}
}

// ==================== Order Edit DTOs ====================

// EditChangeInput is one change of an order edit. Kind selects which fields apply:
// item_add uses Item, item_remove uses OrderItemID, item_update uses OrderItemID and Quantity.
type EditChangeInput struct {
	Kind        string         `json:"kind" binding:"required,oneof=item_add item_remove item_update"`
	OrderItemID *uuid.UUID     `json:"order_item_id"`
	Quantity    int            `json:"quantity" binding:"min=0"`
	Item        *LineItemInput `json:"item"`
}

// CreateOrderEditRequest stages a set of line changes
type CreateOrderEditRequest struct {
	Changes []EditChangeInput `json:"changes" binding:"required,min=1,dive"`
	Note    string            `json:"note" binding:"max=2000"`
}

func (c EditChangeInput) toDomain() (trade.EditChange, error) {
	switch c.Kind {
	case trade.EditChangeItemAdd:
		if c.Item == nil {
			return nil, shared.NewDomainError(shared.CodeValidation, "item_add requires an item")
		}
		return trade.ItemAdd{
			ProductID:  c.Item.ProductID,
			VariantID:  c.Item.VariantID,
			LocationID: c.Item.LocationID,
			Title:      c.Item.Title,
			SKU:        c.Item.SKU,
			UnitPrice:  c.Item.UnitPrice,
			Quantity:   c.Item.Quantity,
		}, nil
	case trade.EditChangeItemRemove:
		if c.OrderItemID == nil {
			return nil, shared.NewDomainError(shared.CodeValidation, "item_remove requires an order_item_id")
		}
		return trade.ItemRemove{OrderItemID: *c.OrderItemID}, nil
	case trade.EditChangeItemUpdate:
		if c.OrderItemID == nil {
			return nil, shared.NewDomainError(shared.CodeValidation, "item_update requires an order_item_id")
		}
		return trade.ItemUpdate{OrderItemID: *c.OrderItemID, Quantity: c.Quantity}, nil
	}
	return nil, shared.NewDomainErrorf(shared.CodeValidation, "Unknown edit change %q", c.Kind)
}

// DeclineOrderEditRequest carries the reason an edit is declined
type DeclineOrderEditRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// OrderEditResponse represents an order edit
type OrderEditResponse struct {
	ID               uuid.UUID            `json:"id"`
	OrderID          uuid.UUID            `json:"order_id"`
	Status           string               `json:"status"`
	Changes          []EditChangeResponse `json:"changes"`
	Note             string               `json:"note,omitempty"`
	DifferenceAmount decimal.Decimal      `json:"difference_amount"`
	CreatedBy        *uuid.UUID           `json:"created_by,omitempty"`
	DeclineReason    string               `json:"decline_reason,omitempty"`
	RequestedAt      *time.Time           `json:"requested_at,omitempty"`
	ConfirmedAt      *time.Time           `json:"confirmed_at,omitempty"`
	DeclinedAt       *time.Time           `json:"declined_at,omitempty"`
	CancelledAt      *time.Time           `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	Version          int                  `json:"version"`
}

// EditChangeResponse is one change of an order edit
type EditChangeResponse struct {
	Kind        string          `json:"kind"`
	OrderItemID *uuid.UUID      `json:"order_item_id,omitempty"`
	Quantity    int             `json:"quantity,omitempty"`
	VariantID   *uuid.UUID      `json:"variant_id,omitempty"`
	Title       string          `json:"title,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price,omitempty"`
}

// ToOrderEditResponse converts an order edit to a response DTO
func ToOrderEditResponse(e *trade.OrderEdit) OrderEditResponse {
	changes := make([]EditChangeResponse, len(e.Changes))
	for i, c := range e.Changes {
		r := EditChangeResponse{Kind: c.Kind()}
		switch ch := c.(type) {
		case trade.ItemAdd:
			variantID := ch.VariantID
			r.VariantID = &variantID
			r.Title = ch.Title
			r.UnitPrice = ch.UnitPrice
			r.Quantity = ch.Quantity
		case trade.ItemRemove:
			id := ch.OrderItemID
			r.OrderItemID = &id
		case trade.ItemUpdate:
			id := ch.OrderItemID
			r.OrderItemID = &id
			r.Quantity = ch.Quantity
		}
		changes[i] = r
	}
	return OrderEditResponse{
		ID:               e.ID,
		OrderID:          e.OrderID,
		Status:           string(e.Status),
		Changes:          changes,
		Note:             e.Note,
		DifferenceAmount: e.DifferenceAmount,
		CreatedBy:        e.CreatedBy,
		DeclineReason:    e.DeclineReason,
		RequestedAt:      e.RequestedAt,
		ConfirmedAt:      e.ConfirmedAt,
		DeclinedAt:       e.DeclinedAt,
		CancelledAt:      e.CancelledAt,
		CreatedAt:        e.CreatedAt,
		Version:          e.Version,
	}
}
