package valueobject

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	USD Currency = "USD" // US Dollar (default)
	EUR Currency = "EUR" // Euro
	GBP Currency = "GBP" // British Pound
	JPY Currency = "JPY" // Japanese Yen
	CNY Currency = "CNY" // Chinese Yuan
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = USD

// zeroDecimalCurrencies have no minor unit.
var zeroDecimalCurrencies = map[Currency]bool{
	JPY: true,
}

// ParseCurrency normalizes a currency code
func ParseCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", fmt.Errorf("invalid currency code %q", code)
	}
	return Currency(code), nil
}

// Exponent returns the number of minor-unit digits of the currency
func (c Currency) Exponent() int32 {
	if zeroDecimalCurrencies[c] {
		return 0
	}
	return 2
}

// Round rounds an amount half-up (away from zero) to the currency's minor unit
func (c Currency) Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(c.Exponent())
}
