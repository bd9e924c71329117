package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared/valueobject"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// AddressModel is the JSON snapshot of a shipping address
type AddressModel struct {
	Name        string `json:"name"`
	Line1       string `json:"line1"`
	Line2       string `json:"line2,omitempty"`
	City        string `json:"city"`
	Province    string `json:"province,omitempty"`
	PostalCode  string `json:"postal_code"`
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone,omitempty"`
}

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	StoreAggregateModel
	OrderNumber       string                  `gorm:"type:varchar(50);not null;index"`
	CartID            *uuid.UUID              `gorm:"type:uuid;index"`
	CustomerID        *uuid.UUID              `gorm:"type:uuid;index"`
	Email             string                  `gorm:"type:varchar(255)"`
	Currency          string                  `gorm:"type:varchar(3);not null"`
	Status            trade.OrderStatus       `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentStatus     trade.PaymentStatus     `gorm:"type:varchar(30);not null;default:'pending';index"`
	FulfillmentStatus trade.FulfillmentStatus `gorm:"type:varchar(30);not null;default:'unfulfilled';index"`
	OrderDiscount     decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	ShippingTotal     decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate           decimal.Decimal         `gorm:"type:decimal(9,6);not null;default:0"`
	TaxOverride       *decimal.Decimal        `gorm:"type:decimal(18,4)"`
	Subtotal          decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountTotal     decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	TaxTotal          decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	GrandTotal        decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	TotalPaid         decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	TotalRefunded     decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	ShippingMethod    string                  `gorm:"type:varchar(100)"`
	ShippingAddress   *AddressModel           `gorm:"type:jsonb;serializer:json"`
	Notes             string                  `gorm:"type:text"`
	CancelReason      string                  `gorm:"type:varchar(500)"`
	ConfirmedAt       *time.Time
	CancelledAt       *time.Time
	CompletedAt       *time.Time

	Items        []OrderItemModel     `gorm:"foreignKey:OrderID;references:ID"`
	Transactions []TransactionModel   `gorm:"foreignKey:OrderID;references:ID"`
	Fulfillments []FulfillmentModel   `gorm:"foreignKey:OrderID;references:ID"`
	Refunds      []RefundModel        `gorm:"foreignKey:OrderID;references:ID"`
	History      []StatusHistoryModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order.
func (m *OrderModel) ToDomain() *trade.Order {
	o := &trade.Order{
		StoreAggregateRoot: m.ToStoreAggregateRoot(),
		OrderNumber:        m.OrderNumber,
		CartID:             m.CartID,
		CustomerID:         m.CustomerID,
		Email:              m.Email,
		Currency:           valueobject.Currency(m.Currency),
		Status:             m.Status,
		PaymentStatus:      m.PaymentStatus,
		FulfillmentStatus:  m.FulfillmentStatus,
		OrderDiscount:      m.OrderDiscount,
		ShippingTotal:      m.ShippingTotal,
		TaxRate:            m.TaxRate,
		TaxOverride:        m.TaxOverride,
		Subtotal:           m.Subtotal,
		DiscountTotal:      m.DiscountTotal,
		TaxTotal:           m.TaxTotal,
		GrandTotal:         m.GrandTotal,
		TotalPaid:          m.TotalPaid,
		TotalRefunded:      m.TotalRefunded,
		ShippingMethod:     m.ShippingMethod,
		Notes:              m.Notes,
		CancelReason:       m.CancelReason,
		ConfirmedAt:        m.ConfirmedAt,
		CancelledAt:        m.CancelledAt,
		CompletedAt:        m.CompletedAt,
		Items:              make([]trade.OrderItem, len(m.Items)),
		Transactions:       make([]trade.Transaction, len(m.Transactions)),
		Fulfillments:       make([]trade.Fulfillment, len(m.Fulfillments)),
		Refunds:            make([]trade.Refund, len(m.Refunds)),
		History:            make([]trade.StatusHistory, len(m.History)),
	}
	if m.ShippingAddress != nil {
		a := trade.Address(*m.ShippingAddress)
		o.ShippingAddress = &a
	}
	for i := range m.Items {
		o.Items[i] = m.Items[i].ToDomain()
	}
	for i := range m.Transactions {
		o.Transactions[i] = m.Transactions[i].ToDomain()
	}
	for i := range m.Fulfillments {
		o.Fulfillments[i] = m.Fulfillments[i].ToDomain()
	}
	for i := range m.Refunds {
		o.Refunds[i] = m.Refunds[i].ToDomain()
	}
	for i := range m.History {
		o.History[i] = m.History[i].ToDomain()
	}
	return o
}

// FromDomain populates the order row from a domain Order. Children are
// converted separately by the repository so they can be upserted flat.
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.FromDomainStoreAggregateRoot(o.StoreAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.CartID = o.CartID
	m.CustomerID = o.CustomerID
	m.Email = o.Email
	m.Currency = string(o.Currency)
	m.Status = o.Status
	m.PaymentStatus = o.PaymentStatus
	m.FulfillmentStatus = o.FulfillmentStatus
	m.OrderDiscount = o.OrderDiscount
	m.ShippingTotal = o.ShippingTotal
	m.TaxRate = o.TaxRate
	m.TaxOverride = o.TaxOverride
	m.Subtotal = o.Subtotal
	m.DiscountTotal = o.DiscountTotal
	m.TaxTotal = o.TaxTotal
	m.GrandTotal = o.GrandTotal
	m.TotalPaid = o.TotalPaid
	m.TotalRefunded = o.TotalRefunded
	m.ShippingMethod = o.ShippingMethod
	m.ShippingAddress = nil
	if o.ShippingAddress != nil {
		a := AddressModel(*o.ShippingAddress)
		m.ShippingAddress = &a
	}
	m.Notes = o.Notes
	m.CancelReason = o.CancelReason
	m.ConfirmedAt = o.ConfirmedAt
	m.CancelledAt = o.CancelledAt
	m.CompletedAt = o.CompletedAt
}

// OrderModelFromDomain creates a new persistence model from a domain Order.
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderChildren holds the flat child rows of an order
type OrderChildren struct {
	Items            []OrderItemModel
	Transactions     []TransactionModel
	Fulfillments     []FulfillmentModel
	FulfillmentItems []FulfillmentItemModel
	Refunds          []RefundModel
	RefundItems      []RefundItemModel
	History          []StatusHistoryModel
}

// OrderChildrenFromDomain flattens the children of an order
func OrderChildrenFromDomain(o *trade.Order) OrderChildren {
	c := OrderChildren{
		Items:        make([]OrderItemModel, len(o.Items)),
		Transactions: make([]TransactionModel, len(o.Transactions)),
		Fulfillments: make([]FulfillmentModel, len(o.Fulfillments)),
		Refunds:      make([]RefundModel, len(o.Refunds)),
		History:      make([]StatusHistoryModel, len(o.History)),
	}
	for i := range o.Items {
		c.Items[i].FromDomain(&o.Items[i])
		c.Items[i].OrderID = o.ID
	}
	for i := range o.Transactions {
		c.Transactions[i].FromDomain(&o.Transactions[i])
	}
	for i := range o.Fulfillments {
		c.Fulfillments[i].FromDomain(&o.Fulfillments[i])
		for j := range o.Fulfillments[i].Items {
			var fi FulfillmentItemModel
			fi.FromDomain(&o.Fulfillments[i].Items[j])
			c.FulfillmentItems = append(c.FulfillmentItems, fi)
		}
	}
	for i := range o.Refunds {
		c.Refunds[i].FromDomain(&o.Refunds[i])
		for j := range o.Refunds[i].Items {
			var ri RefundItemModel
			ri.FromDomain(&o.Refunds[i].Items[j])
			c.RefundItems = append(c.RefundItems, ri)
		}
	}
	for i := range o.History {
		c.History[i].FromDomain(&o.History[i])
	}
	return c
}

// OrderItemModel is the persistence model for an order line.
type OrderItemModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID         uuid.UUID       `gorm:"type:uuid"`
	VariantID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	LocationID        uuid.UUID       `gorm:"type:uuid;not null"`
	Title             string          `gorm:"type:varchar(255);not null"`
	SKU               string          `gorm:"type:varchar(100)"`
	Quantity          int             `gorm:"not null"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	FulfilledQuantity int             `gorm:"not null;default:0"`
	ReturnedQuantity  int             `gorm:"not null;default:0"`
	ReservedQuantity  int             `gorm:"not null;default:0"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem.
func (m *OrderItemModel) ToDomain() trade.OrderItem {
	return trade.OrderItem{
		ID:                m.ID,
		OrderID:           m.OrderID,
		ProductID:         m.ProductID,
		VariantID:         m.VariantID,
		LocationID:        m.LocationID,
		Title:             m.Title,
		SKU:               m.SKU,
		Quantity:          m.Quantity,
		UnitPrice:         m.UnitPrice,
		DiscountAmount:    m.DiscountAmount,
		TaxAmount:         m.TaxAmount,
		TotalPrice:        m.TotalPrice,
		FulfilledQuantity: m.FulfilledQuantity,
		ReturnedQuantity:  m.ReturnedQuantity,
		ReservedQuantity:  m.ReservedQuantity,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain OrderItem.
func (m *OrderItemModel) FromDomain(i *trade.OrderItem) {
	m.ID = i.ID
	m.OrderID = i.OrderID
	m.ProductID = i.ProductID
	m.VariantID = i.VariantID
	m.LocationID = i.LocationID
	m.Title = i.Title
	m.SKU = i.SKU
	m.Quantity = i.Quantity
	m.UnitPrice = i.UnitPrice
	m.DiscountAmount = i.DiscountAmount
	m.TaxAmount = i.TaxAmount
	m.TotalPrice = i.TotalPrice
	m.FulfilledQuantity = i.FulfilledQuantity
	m.ReturnedQuantity = i.ReturnedQuantity
	m.ReservedQuantity = i.ReservedQuantity
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt
}

// TransactionModel is the persistence model for a payment-gateway event. Rows are never updated.
type TransactionModel struct {
	ID               uuid.UUID               `gorm:"type:uuid;primary_key"`
	OrderID          uuid.UUID               `gorm:"type:uuid;not null;index"`
	Type             trade.TransactionType   `gorm:"type:varchar(20);not null"`
	Status           trade.TransactionStatus `gorm:"type:varchar(20);not null"`
	Amount           decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Currency         string                  `gorm:"type:varchar(3);not null"`
	GatewayReference string                  `gorm:"type:varchar(255)"`
	ErrorMessage     string                  `gorm:"type:text"`
	CreatedAt        time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "order_transactions"
}

// ToDomain converts the persistence model to a domain Transaction.
func (m *TransactionModel) ToDomain() trade.Transaction {
	return trade.Transaction{
		ID:               m.ID,
		OrderID:          m.OrderID,
		Type:             m.Type,
		Status:           m.Status,
		Amount:           m.Amount,
		Currency:         m.Currency,
		GatewayReference: m.GatewayReference,
		ErrorMessage:     m.ErrorMessage,
		CreatedAt:        m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain Transaction.
func (m *TransactionModel) FromDomain(t *trade.Transaction) {
	m.ID = t.ID
	m.OrderID = t.OrderID
	m.Type = t.Type
	m.Status = t.Status
	m.Amount = t.Amount
	m.Currency = t.Currency
	m.GatewayReference = t.GatewayReference
	m.ErrorMessage = t.ErrorMessage
	m.CreatedAt = t.CreatedAt
}

// FulfillmentModel is the persistence model for one shipment.
type FulfillmentModel struct {
	ID              uuid.UUID              `gorm:"type:uuid;primary_key"`
	OrderID         uuid.UUID              `gorm:"type:uuid;not null;index"`
	LocationID      *uuid.UUID             `gorm:"type:uuid"`
	Status          trade.ShipmentStatus   `gorm:"type:varchar(20);not null"`
	TrackingCompany string                 `gorm:"type:varchar(100)"`
	TrackingNumber  string                 `gorm:"type:varchar(100)"`
	TrackingURL     string                 `gorm:"type:varchar(500)"`
	Items           []FulfillmentItemModel `gorm:"foreignKey:FulfillmentID;references:ID"`
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FulfillmentModel) TableName() string {
	return "fulfillments"
}

// ToDomain converts the persistence model to a domain Fulfillment.
func (m *FulfillmentModel) ToDomain() trade.Fulfillment {
	f := trade.Fulfillment{
		ID:         m.ID,
		OrderID:    m.OrderID,
		LocationID: m.LocationID,
		Status:     m.Status,
		Tracking: trade.Tracking{
			Company: m.TrackingCompany,
			Number:  m.TrackingNumber,
			URL:     m.TrackingURL,
		},
		Items:       make([]trade.FulfillmentItem, len(m.Items)),
		ShippedAt:   m.ShippedAt,
		DeliveredAt: m.DeliveredAt,
		CancelledAt: m.CancelledAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	for i, item := range m.Items {
		f.Items[i] = trade.FulfillmentItem{
			ID:            item.ID,
			FulfillmentID: item.FulfillmentID,
			OrderItemID:   item.OrderItemID,
			Quantity:      item.Quantity,
		}
	}
	return f
}

// FromDomain populates the fulfillment row from a domain Fulfillment, without items.
func (m *FulfillmentModel) FromDomain(f *trade.Fulfillment) {
	m.ID = f.ID
	m.OrderID = f.OrderID
	m.LocationID = f.LocationID
	m.Status = f.Status
	m.TrackingCompany = f.Tracking.Company
	m.TrackingNumber = f.Tracking.Number
	m.TrackingURL = f.Tracking.URL
	m.ShippedAt = f.ShippedAt
	m.DeliveredAt = f.DeliveredAt
	m.CancelledAt = f.CancelledAt
	m.CreatedAt = f.CreatedAt
	m.UpdatedAt = f.UpdatedAt
}

// FulfillmentItemModel is the quantity of one order item in a fulfillment.
type FulfillmentItemModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	FulfillmentID uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderItemID   uuid.UUID `gorm:"type:uuid;not null"`
	Quantity      int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FulfillmentItemModel) TableName() string {
	return "fulfillment_items"
}

// FromDomain populates the persistence model from a domain FulfillmentItem.
func (m *FulfillmentItemModel) FromDomain(i *trade.FulfillmentItem) {
	m.ID = i.ID
	m.FulfillmentID = i.FulfillmentID
	m.OrderItemID = i.OrderItemID
	m.Quantity = i.Quantity
}

// RefundModel is the persistence model for a refund. Rows are never updated.
type RefundModel struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key"`
	OrderID       uuid.UUID          `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Reason        string             `gorm:"type:varchar(100)"`
	Note          string             `gorm:"type:text"`
	Status        trade.RefundStatus `gorm:"type:varchar(20);not null"`
	Goodwill      bool               `gorm:"not null;default:false"`
	SourceType    string             `gorm:"type:varchar(20);not null"`
	SourceID      *uuid.UUID         `gorm:"type:uuid;index"`
	TransactionID uuid.UUID          `gorm:"type:uuid;not null"`
	Items         []RefundItemModel  `gorm:"foreignKey:RefundID;references:ID"`
	CreatedAt     time.Time          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RefundModel) TableName() string {
	return "refunds"
}

// ToDomain converts the persistence model to a domain Refund.
func (m *RefundModel) ToDomain() trade.Refund {
	r := trade.Refund{
		ID:            m.ID,
		OrderID:       m.OrderID,
		Amount:        m.Amount,
		Reason:        m.Reason,
		Note:          m.Note,
		Status:        m.Status,
		Goodwill:      m.Goodwill,
		SourceType:    m.SourceType,
		SourceID:      m.SourceID,
		TransactionID: m.TransactionID,
		Items:         make([]trade.RefundItem, len(m.Items)),
		CreatedAt:     m.CreatedAt,
	}
	for i, item := range m.Items {
		r.Items[i] = trade.RefundItem{
			ID:          item.ID,
			RefundID:    item.RefundID,
			OrderItemID: item.OrderItemID,
			Quantity:    item.Quantity,
			Amount:      item.Amount,
		}
	}
	return r
}

// FromDomain populates the refund row from a domain Refund, without items.
func (m *RefundModel) FromDomain(r *trade.Refund) {
	m.ID = r.ID
	m.OrderID = r.OrderID
	m.Amount = r.Amount
	m.Reason = r.Reason
	m.Note = r.Note
	m.Status = r.Status
	m.Goodwill = r.Goodwill
	m.SourceType = r.SourceType
	m.SourceID = r.SourceID
	m.TransactionID = r.TransactionID
	m.CreatedAt = r.CreatedAt
}

// RefundItemModel attributes part of a refund to an order item.
type RefundItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	RefundID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderItemID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity    int             `gorm:"not null;default:0"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (RefundItemModel) TableName() string {
	return "refund_items"
}

// FromDomain populates the persistence model from a domain RefundItem.
func (m *RefundItemModel) FromDomain(i *trade.RefundItem) {
	m.ID = i.ID
	m.RefundID = i.RefundID
	m.OrderItemID = i.OrderItemID
	m.Quantity = i.Quantity
	m.Amount = i.Amount
}

// StatusHistoryModel is one append-only audit entry.
type StatusHistoryModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Field     string     `gorm:"type:varchar(30);not null"`
	FromValue string     `gorm:"column:from_value;type:varchar(30)"`
	ToValue   string     `gorm:"column:to_value;type:varchar(30);not null"`
	Reason    string     `gorm:"type:varchar(500)"`
	ActorID   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time  `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StatusHistoryModel) TableName() string {
	return "order_status_history"
}

// ToDomain converts the persistence model to a domain StatusHistory.
func (m *StatusHistoryModel) ToDomain() trade.StatusHistory {
	return trade.StatusHistory{
		ID:        m.ID,
		OrderID:   m.OrderID,
		Field:     m.Field,
		From:      m.FromValue,
		To:        m.ToValue,
		Reason:    m.Reason,
		ActorID:   m.ActorID,
		CreatedAt: m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain StatusHistory.
func (m *StatusHistoryModel) FromDomain(h *trade.StatusHistory) {
	m.ID = h.ID
	m.OrderID = h.OrderID
	m.Field = h.Field
	m.FromValue = h.From
	m.ToValue = h.To
	m.Reason = h.Reason
	m.ActorID = h.ActorID
	m.CreatedAt = h.CreatedAt
}
