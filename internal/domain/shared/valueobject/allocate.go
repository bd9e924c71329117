package valueobject

import (
	"errors"

	"github.com/shopspring/decimal"
)

// AllocateAmount splits total across weights, rounding each share to places.
// The shares always sum exactly to the rounded total: leftover minor units go
// to the shares with the largest rounding remainders, ties broken by position.
func AllocateAmount(total decimal.Decimal, weights []decimal.Decimal, places int32) ([]decimal.Decimal, error) {
	if len(weights) == 0 {
		return nil, errors.New("weights cannot be empty")
	}
	sum := decimal.Zero
	for _, w := range weights {
		if w.IsNegative() {
			return nil, errors.New("weights cannot be negative")
		}
		sum = sum.Add(w)
	}

	total = total.Round(places)
	if total.IsNegative() {
		return nil, errors.New("cannot allocate a negative amount")
	}
	shares := make([]decimal.Decimal, len(weights))
	if total.IsZero() {
		for i := range shares {
			shares[i] = decimal.Zero
		}
		return shares, nil
	}
	if sum.IsZero() {
		return nil, errors.New("cannot allocate a non-zero amount over zero weights")
	}

	unit := decimal.New(1, -places)
	remainders := make([]decimal.Decimal, len(weights))
	allocated := decimal.Zero
	for i, w := range weights {
		exact := total.Mul(w).Div(sum)
		shares[i] = exact.Truncate(places)
		remainders[i] = exact.Sub(shares[i])
		allocated = allocated.Add(shares[i])
	}

	leftover := total.Sub(allocated).Div(unit).IntPart()
	for leftover > 0 {
		best := -1
		for i := range remainders {
			if best == -1 || remainders[i].GreaterThan(remainders[best]) {
				best = i
			}
		}
		shares[best] = shares[best].Add(unit)
		remainders[best] = decimal.NewFromInt(-1)
		leftover--
	}
	return shares, nil
}
