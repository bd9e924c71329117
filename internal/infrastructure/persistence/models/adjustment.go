package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// ReturnModel is the persistence model for the Return aggregate root.
type ReturnModel struct {
	StoreAggregateModel
	OrderID      uuid.UUID          `gorm:"type:uuid;not null;index"`
	Status       trade.ReturnStatus `gorm:"type:varchar(20);not null;index"`
	Items        []ReturnItemModel  `gorm:"foreignKey:ReturnID;references:ID"`
	RefundAmount decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	Note         string             `gorm:"type:text"`
	ExchangeID   *uuid.UUID         `gorm:"type:uuid"`
	ClaimID      *uuid.UUID         `gorm:"type:uuid"`
	RefundID     *uuid.UUID         `gorm:"type:uuid"`
	ReceivedAt   *time.Time
	CompletedAt  *time.Time
	CancelledAt  *time.Time
}

// TableName returns the table name for GORM
func (ReturnModel) TableName() string {
	return "returns"
}

// ToDomain converts the persistence model to a domain Return.
func (m *ReturnModel) ToDomain() *trade.Return {
	r := &trade.Return{
		StoreAggregateRoot: m.ToStoreAggregateRoot(),
		OrderID:            m.OrderID,
		Status:             m.Status,
		Items:              make([]trade.ReturnItem, len(m.Items)),
		RefundAmount:       m.RefundAmount,
		Note:               m.Note,
		ExchangeID:         m.ExchangeID,
		ClaimID:            m.ClaimID,
		RefundID:           m.RefundID,
		ReceivedAt:         m.ReceivedAt,
		CompletedAt:        m.CompletedAt,
		CancelledAt:        m.CancelledAt,
	}
	for i, item := range m.Items {
		r.Items[i] = trade.ReturnItem{
			ID:          item.ID,
			ReturnID:    item.ReturnID,
			OrderItemID: item.OrderItemID,
			Quantity:    item.Quantity,
			Reason:      item.Reason,
			Note:        item.Note,
			Restock:     item.Restock,
			LocationID:  item.LocationID,
		}
	}
	return r
}

// FromDomain populates the persistence model from a domain Return.
func (m *ReturnModel) FromDomain(r *trade.Return) {
	m.FromDomainStoreAggregateRoot(r.StoreAggregateRoot)
	m.OrderID = r.OrderID
	m.Status = r.Status
	m.RefundAmount = r.RefundAmount
	m.Note = r.Note
	m.ExchangeID = r.ExchangeID
	m.ClaimID = r.ClaimID
	m.RefundID = r.RefundID
	m.ReceivedAt = r.ReceivedAt
	m.CompletedAt = r.CompletedAt
	m.CancelledAt = r.CancelledAt
	m.Items = make([]ReturnItemModel, len(r.Items))
	for i, item := range r.Items {
		m.Items[i] = ReturnItemModel{
			ID:          item.ID,
			ReturnID:    r.ID,
			OrderItemID: item.OrderItemID,
			Quantity:    item.Quantity,
			Reason:      item.Reason,
			Note:        item.Note,
			Restock:     item.Restock,
			LocationID:  item.LocationID,
		}
	}
}

// ReturnItemModel is one returned line.
type ReturnItemModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key"`
	ReturnID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	OrderItemID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Quantity    int        `gorm:"not null"`
	Reason      string     `gorm:"type:varchar(100)"`
	Note        string     `gorm:"type:text"`
	Restock     bool       `gorm:"not null;default:false"`
	LocationID  *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ReturnItemModel) TableName() string {
	return "return_items"
}

// ClaimModel is the persistence model for the Claim aggregate root.
type ClaimModel struct {
	StoreAggregateModel
	OrderID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	Type         trade.ClaimType   `gorm:"type:varchar(20);not null"`
	Status       trade.ClaimStatus `gorm:"type:varchar(20);not null;index"`
	Items        []ClaimItemModel  `gorm:"foreignKey:ClaimID;references:ID"`
	RefundAmount decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	Note         string            `gorm:"type:text"`
	RejectReason string            `gorm:"type:varchar(500)"`
	RefundID     *uuid.UUID        `gorm:"type:uuid"`
	DecidedBy    *uuid.UUID        `gorm:"type:uuid"`
	DecidedAt    *time.Time
}

// TableName returns the table name for GORM
func (ClaimModel) TableName() string {
	return "claims"
}

// ToDomain converts the persistence model to a domain Claim.
func (m *ClaimModel) ToDomain() *trade.Claim {
	c := &trade.Claim{
		StoreAggregateRoot: m.ToStoreAggregateRoot(),
		OrderID:            m.OrderID,
		Type:               m.Type,
		Status:             m.Status,
		Items:              make([]trade.ClaimItem, len(m.Items)),
		RefundAmount:       m.RefundAmount,
		Note:               m.Note,
		RejectReason:       m.RejectReason,
		RefundID:           m.RefundID,
		DecidedBy:          m.DecidedBy,
		DecidedAt:          m.DecidedAt,
	}
	for i, item := range m.Items {
		c.Items[i] = trade.ClaimItem{
			ID:          item.ID,
			ClaimID:     item.ClaimID,
			OrderItemID: item.OrderItemID,
			Quantity:    item.Quantity,
			Reason:      item.Reason,
			Note:        item.Note,
		}
	}
	return c
}

// FromDomain populates the persistence model from a domain Claim.
func (m *ClaimModel) FromDomain(c *trade.Claim) {
	m.FromDomainStoreAggregateRoot(c.StoreAggregateRoot)
	m.OrderID = c.OrderID
	m.Type = c.Type
	m.Status = c.Status
	m.RefundAmount = c.RefundAmount
	m.Note = c.Note
	m.RejectReason = c.RejectReason
	m.RefundID = c.RefundID
	m.DecidedBy = c.DecidedBy
	m.DecidedAt = c.DecidedAt
	m.Items = make([]ClaimItemModel, len(c.Items))
	for i, item := range c.Items {
		m.Items[i] = ClaimItemModel{
			ID:          item.ID,
			ClaimID:     c.ID,
			OrderItemID: item.OrderItemID,
			Quantity:    item.Quantity,
			Reason:      item.Reason,
			Note:        item.Note,
		}
	}
}

// ClaimItemModel is one claimed line.
type ClaimItemModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	ClaimID     uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderItemID uuid.UUID `gorm:"type:uuid;not null"`
	Quantity    int       `gorm:"not null"`
	Reason      string    `gorm:"type:varchar(100)"`
	Note        string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ClaimItemModel) TableName() string {
	return "claim_items"
}

// ExchangeModel is the persistence model for the Exchange aggregate root.
type ExchangeModel struct {
	StoreAggregateModel
	OrderID          uuid.UUID                   `gorm:"type:uuid;not null;index"`
	ReturnID         *uuid.UUID                  `gorm:"type:uuid;index"`
	Status           trade.ExchangeStatus        `gorm:"type:varchar(20);not null;index"`
	PaymentStatus    trade.ExchangePaymentStatus `gorm:"type:varchar(20);not null"`
	AdditionalItems  []ExchangeItemModel         `gorm:"foreignKey:ExchangeID;references:ID"`
	AdditionalTotal  decimal.Decimal             `gorm:"type:decimal(18,4);not null;default:0"`
	ReturnCredit     decimal.Decimal             `gorm:"type:decimal(18,4);not null;default:0"`
	DifferenceAmount decimal.Decimal             `gorm:"type:decimal(18,4);not null;default:0"`
	Note             string                      `gorm:"type:text"`
	TransactionID    *uuid.UUID                  `gorm:"type:uuid"`
	RefundID         *uuid.UUID                  `gorm:"type:uuid"`
	CompletedAt      *time.Time
	CancelledAt      *time.Time
}

// TableName returns the table name for GORM
func (ExchangeModel) TableName() string {
	return "exchanges"
}

// ToDomain converts the persistence model to a domain Exchange.
func (m *ExchangeModel) ToDomain() *trade.Exchange {
	e := &trade.Exchange{
		StoreAggregateRoot: m.ToStoreAggregateRoot(),
		OrderID:            m.OrderID,
		ReturnID:           m.ReturnID,
		Status:             m.Status,
		PaymentStatus:      m.PaymentStatus,
		AdditionalItems:    make([]trade.ExchangeItem, len(m.AdditionalItems)),
		AdditionalTotal:    m.AdditionalTotal,
		ReturnCredit:       m.ReturnCredit,
		DifferenceAmount:   m.DifferenceAmount,
		Note:               m.Note,
		TransactionID:      m.TransactionID,
		RefundID:           m.RefundID,
		CompletedAt:        m.CompletedAt,
		CancelledAt:        m.CancelledAt,
	}
	for i, item := range m.AdditionalItems {
		e.AdditionalItems[i] = trade.ExchangeItem{
			ID:          item.ID,
			ExchangeID:  item.ExchangeID,
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			LocationID:  item.LocationID,
			Title:       item.Title,
			SKU:         item.SKU,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Reserved:    item.Reserved,
			OrderItemID: item.OrderItemID,
		}
	}
	return e
}

// FromDomain populates the persistence model from a domain Exchange.
func (m *ExchangeModel) FromDomain(e *trade.Exchange) {
	m.FromDomainStoreAggregateRoot(e.StoreAggregateRoot)
	m.OrderID = e.OrderID
	m.ReturnID = e.ReturnID
	m.Status = e.Status
	m.PaymentStatus = e.PaymentStatus
	m.AdditionalTotal = e.AdditionalTotal
	m.ReturnCredit = e.ReturnCredit
	m.DifferenceAmount = e.DifferenceAmount
	m.Note = e.Note
	m.TransactionID = e.TransactionID
	m.RefundID = e.RefundID
	m.CompletedAt = e.CompletedAt
	m.CancelledAt = e.CancelledAt
	m.AdditionalItems = make([]ExchangeItemModel, len(e.AdditionalItems))
	for i, item := range e.AdditionalItems {
		m.AdditionalItems[i] = ExchangeItemModel{
			ID:          item.ID,
			ExchangeID:  e.ID,
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			LocationID:  item.LocationID,
			Title:       item.Title,
			SKU:         item.SKU,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Reserved:    item.Reserved,
			OrderItemID: item.OrderItemID,
		}
	}
}

// ExchangeItemModel is a new line sent out in an exchange.
type ExchangeItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	ExchangeID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid"`
	VariantID   uuid.UUID       `gorm:"type:uuid;not null"`
	LocationID  uuid.UUID       `gorm:"type:uuid;not null"`
	Title       string          `gorm:"type:varchar(255);not null"`
	SKU         string          `gorm:"type:varchar(100)"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity    int             `gorm:"not null"`
	Reserved    bool            `gorm:"not null;default:false"`
	OrderItemID *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ExchangeItemModel) TableName() string {
	return "exchange_items"
}

// EditChangeModel is the JSON form of one order edit change.
// Kind selects which of the remaining fields are meaningful.
type EditChangeModel struct {
	Kind        string          `json:"kind"`
	OrderItemID uuid.UUID       `json:"order_item_id,omitempty"`
	ProductID   uuid.UUID       `json:"product_id,omitempty"`
	VariantID   uuid.UUID       `json:"variant_id,omitempty"`
	LocationID  uuid.UUID       `json:"location_id,omitempty"`
	Title       string          `json:"title,omitempty"`
	SKU         string          `json:"sku,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity,omitempty"`
}

// EditChangeModelFromDomain converts a typed change to its JSON form
func EditChangeModelFromDomain(c trade.EditChange) EditChangeModel {
	switch v := c.(type) {
	case trade.ItemAdd:
		return EditChangeModel{
			Kind:       v.Kind(),
			ProductID:  v.ProductID,
			VariantID:  v.VariantID,
			LocationID: v.LocationID,
			Title:      v.Title,
			SKU:        v.SKU,
			UnitPrice:  v.UnitPrice,
			Quantity:   v.Quantity,
		}
	case trade.ItemRemove:
		return EditChangeModel{Kind: v.Kind(), OrderItemID: v.OrderItemID}
	case trade.ItemUpdate:
		return EditChangeModel{Kind: v.Kind(), OrderItemID: v.OrderItemID, Quantity: v.Quantity}
	}
	return EditChangeModel{Kind: c.Kind()}
}

// ToDomain converts the JSON form back to a typed change
func (m EditChangeModel) ToDomain() (trade.EditChange, error) {
	switch m.Kind {
	case trade.EditChangeItemAdd:
		return trade.ItemAdd{
			ProductID:  m.ProductID,
			VariantID:  m.VariantID,
			LocationID: m.LocationID,
			Title:      m.Title,
			SKU:        m.SKU,
			UnitPrice:  m.UnitPrice,
			Quantity:   m.Quantity,
		}, nil
	case trade.EditChangeItemRemove:
		return trade.ItemRemove{OrderItemID: m.OrderItemID}, nil
	case trade.EditChangeItemUpdate:
		return trade.ItemUpdate{OrderItemID: m.OrderItemID, Quantity: m.Quantity}, nil
	}
	return nil, fmt.Errorf("unknown order edit change kind %q", m.Kind)
}

// OrderEditModel is the persistence model for the OrderEdit aggregate root.
type OrderEditModel struct {
	StoreAggregateModel
	OrderID          uuid.UUID             `gorm:"type:uuid;not null;index"`
	Status           trade.OrderEditStatus `gorm:"type:varchar(20);not null;index"`
	Changes          []EditChangeModel     `gorm:"type:jsonb;serializer:json;not null"`
	Note             string                `gorm:"type:text"`
	DifferenceAmount decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedBy        *uuid.UUID            `gorm:"type:uuid"`
	DeclineReason    string                `gorm:"type:varchar(500)"`
	RequestedAt      *time.Time
	ConfirmedAt      *time.Time
	DeclinedAt       *time.Time
	CancelledAt      *time.Time
}

// TableName returns the table name for GORM
func (OrderEditModel) TableName() string {
	return "order_edits"
}

// ToDomain converts the persistence model to a domain OrderEdit.
func (m *OrderEditModel) ToDomain() (*trade.OrderEdit, error) {
	changes := make([]trade.EditChange, len(m.Changes))
	for i, c := range m.Changes {
		change, err := c.ToDomain()
		if err != nil {
			return nil, err
		}
		changes[i] = change
	}
	return &trade.OrderEdit{
		StoreAggregateRoot: m.ToStoreAggregateRoot(),
		OrderID:            m.OrderID,
		Status:             m.Status,
		Changes:            changes,
		Note:               m.Note,
		DifferenceAmount:   m.DifferenceAmount,
		CreatedBy:          m.CreatedBy,
		DeclineReason:      m.DeclineReason,
		RequestedAt:        m.RequestedAt,
		ConfirmedAt:        m.ConfirmedAt,
		DeclinedAt:         m.DeclinedAt,
		CancelledAt:        m.CancelledAt,
	}, nil
}

// FromDomain populates the persistence model from a domain OrderEdit.
func (m *OrderEditModel) FromDomain(e *trade.OrderEdit) {
	m.FromDomainStoreAggregateRoot(e.StoreAggregateRoot)
	m.OrderID = e.OrderID
	m.Status = e.Status
	m.Changes = make([]EditChangeModel, len(e.Changes))
	for i, c := range e.Changes {
		m.Changes[i] = EditChangeModelFromDomain(c)
	}
	m.Note = e.Note
	m.DifferenceAmount = e.DifferenceAmount
	m.CreatedBy = e.CreatedBy
	m.DeclineReason = e.DeclineReason
	m.RequestedAt = e.RequestedAt
	m.ConfirmedAt = e.ConfirmedAt
	m.DeclinedAt = e.DeclinedAt
	m.CancelledAt = e.CancelledAt
}
