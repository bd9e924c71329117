package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// taxRatePrecision is the number of decimal places kept when an externally
// resolved tax total is turned into a rate.
const taxRatePrecision = 8

// TaxCalculator resolves the tax rate applied to an order's lines at checkout.
// Jurisdiction rules live behind this port.
type TaxCalculator interface {
	TaxRate(ctx context.Context, storeID uuid.UUID, address *Address) (decimal.Decimal, error)
}

// FlatRateTaxCalculator applies one configured rate everywhere
type FlatRateTaxCalculator struct {
	Rate decimal.Decimal
}

// NewFlatRateTaxCalculator creates a flat rate calculator
func NewFlatRateTaxCalculator(rate decimal.Decimal) *FlatRateTaxCalculator {
	return &FlatRateTaxCalculator{Rate: rate}
}

// TaxRate implements TaxCalculator
func (c *FlatRateTaxCalculator) TaxRate(_ context.Context, _ uuid.UUID, _ *Address) (decimal.Decimal, error) {
	return c.Rate, nil
}

// RecomputeTotals is the single authority for the order's derived amounts.
//
//	subtotal      = Σ unitPrice * quantity
//	discountTotal = Σ line discounts (order discount allocated by line subtotal)
//	taxTotal      = Σ line taxes (rate on line net, or the override allocated by line net)
//	grandTotal    = subtotal - discountTotal + shippingTotal + taxTotal
//
// It only reads stored inputs, so calling it twice yields identical totals.
// Any negative input fails with INVALID_STATE and leaves the order untouched.
func (o *Order) RecomputeTotals() error {
	if err := o.validateTotalsInputs(); err != nil {
		return err
	}

	currency := o.Currency
	places := currency.Exponent()
	n := len(o.Items)

	lineSubtotals := make([]decimal.Decimal, n)
	subtotal := decimal.Zero
	for i := range o.Items {
		lineSubtotals[i] = currency.Round(o.Items[i].LineSubtotal())
		subtotal = subtotal.Add(lineSubtotals[i])
	}

	// A cart discount never makes merchandise negative.
	discount := decimal.Min(o.OrderDiscount, subtotal)
	lineDiscounts, err := allocate(discount, lineSubtotals, places)
	if err != nil {
		return err
	}

	nets := make([]decimal.Decimal, n)
	for i := range nets {
		nets[i] = lineSubtotals[i].Sub(lineDiscounts[i])
	}

	lineTaxes := make([]decimal.Decimal, n)
	if o.TaxOverride != nil {
		lineTaxes, err = allocate(*o.TaxOverride, nets, places)
		if err != nil {
			return err
		}
	} else {
		for i := range nets {
			lineTaxes[i] = currency.Round(nets[i].Mul(o.TaxRate))
		}
	}

	discountTotal := decimal.Zero
	taxTotal := decimal.Zero
	now := time.Now()
	for i := range o.Items {
		item := &o.Items[i]
		item.DiscountAmount = lineDiscounts[i]
		item.TaxAmount = lineTaxes[i]
		item.TotalPrice = lineSubtotals[i].Sub(lineDiscounts[i]).Add(lineTaxes[i])
		item.UpdatedAt = now
		discountTotal = discountTotal.Add(lineDiscounts[i])
		taxTotal = taxTotal.Add(lineTaxes[i])
	}

	o.Subtotal = subtotal
	o.DiscountTotal = discountTotal
	o.TaxTotal = taxTotal
	o.GrandTotal = subtotal.Sub(discountTotal).Add(o.ShippingTotal).Add(taxTotal)
	o.UpdatedAt = now
	return nil
}

func (o *Order) validateTotalsInputs() error {
	if o.OrderDiscount.IsNegative() {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Order discount cannot be negative: %s", o.OrderDiscount)
	}
	if o.ShippingTotal.IsNegative() {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Shipping total cannot be negative: %s", o.ShippingTotal)
	}
	if o.TaxRate.IsNegative() {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Tax rate cannot be negative: %s", o.TaxRate)
	}
	if o.TaxOverride != nil && o.TaxOverride.IsNegative() {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Tax total cannot be negative: %s", *o.TaxOverride)
	}
	for _, item := range o.Items {
		if item.UnitPrice.IsNegative() {
			return shared.NewDomainErrorf(shared.CodeInvalidState, "Item %s has a negative unit price", item.ID)
		}
		if item.Quantity < 0 {
			return shared.NewDomainErrorf(shared.CodeInvalidState, "Item %s has a negative quantity", item.ID)
		}
	}
	return nil
}

// allocate spreads amount over weights; all-zero weights split evenly
func allocate(amount decimal.Decimal, weights []decimal.Decimal, places int32) ([]decimal.Decimal, error) {
	if len(weights) == 0 {
		return []decimal.Decimal{}, nil
	}
	allZero := true
	for _, w := range weights {
		if !w.IsZero() {
			allZero = false
			break
		}
	}
	if allZero && !amount.IsZero() {
		even := make([]decimal.Decimal, len(weights))
		for i := range even {
			even[i] = decimal.NewFromInt(1)
		}
		weights = even
	}
	shares, err := valueobject.AllocateAmount(amount, weights, places)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidState, err.Error())
	}
	return shares, nil
}

// effectiveTaxRate turns the current tax total into a rate on net merchandise
func effectiveTaxRate(o *Order) decimal.Decimal {
	net := o.Subtotal.Sub(o.DiscountTotal)
	if !net.IsPositive() {
		return decimal.Zero
	}
	return o.TaxTotal.DivRound(net, taxRatePrecision)
}

// dropTaxOverride switches the order to rate-based tax before its lines change,
// so a fixed tax total is not smeared over a different set of lines.
func (o *Order) dropTaxOverride() {
	if o.TaxOverride == nil {
		return
	}
	o.TaxRate = effectiveTaxRate(o)
	o.TaxOverride = nil
}

// SetShipping replaces the shipping cost and recomputes totals
func (o *Order) SetShipping(method string, amount decimal.Decimal) error {
	if !o.IsEditable() {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot change shipping of a %s order", o.Status)
	}
	previous := o.ShippingTotal
	o.ShippingTotal = o.Currency.Round(amount)
	if err := o.RecomputeTotals(); err != nil {
		o.ShippingTotal = previous
		return err
	}
	o.ShippingMethod = method
	return nil
}
