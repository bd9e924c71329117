package trade

import (
	"context"
	"maps"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRequest is what the core asks of a payment gateway
type PaymentRequest struct {
	OrderID     uuid.UUID
	OrderNumber string
	Amount      decimal.Decimal
	Currency    string
	// Reference is the gateway reference of an earlier authorization or capture
	Reference      string
	IdempotencyKey string
	ReturnURL      string
}

// PaymentResult is what a gateway reports back. The core only records it.
type PaymentResult struct {
	Success       bool
	Status        string
	TransactionID string
	RedirectURL   string
	Error         string
}

// PaymentProvider is the payment gateway port. Calls happen outside the
// order transaction and must honor the context deadline.
type PaymentProvider interface {
	CreatePayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
	Capture(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
	Refund(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
}

// Package is one parcel to rate
type Package struct {
	WeightGrams int
	Items       int
}

// ShippingRate is one service offered by a carrier
type ShippingRate struct {
	ServiceCode   string
	Price         decimal.Decimal
	EstimatedDays int
}

// ShippingRateProvider quotes shipping at checkout. It is read only.
type ShippingRateProvider interface {
	GetRates(ctx context.Context, destination Address, packages []Package) ([]ShippingRate, error)
}

// FlatShippingRates quotes the same configured price per service code
// whatever the destination or parcel
type FlatShippingRates struct {
	prices map[string]decimal.Decimal
}

// NewFlatShippingRates creates a flat rate table keyed by service code
func NewFlatShippingRates(prices map[string]decimal.Decimal) *FlatShippingRates {
	return &FlatShippingRates{prices: maps.Clone(prices)}
}

// GetRates implements ShippingRateProvider. Rates come back sorted by code.
func (r *FlatShippingRates) GetRates(_ context.Context, _ Address, _ []Package) ([]ShippingRate, error) {
	rates := make([]ShippingRate, 0, len(r.prices))
	for _, code := range slices.Sorted(maps.Keys(r.prices)) {
		rates = append(rates, ShippingRate{ServiceCode: code, Price: r.prices[code]})
	}
	return rates, nil
}
