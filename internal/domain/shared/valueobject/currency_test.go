package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParseCurrency(t *testing.T) {
	c, err := ParseCurrency(" usd ")
	require.NoError(t, err)
	assert.Equal(t, USD, c)

	_, err = ParseCurrency("dollars")
	assert.Error(t, err)
}

func TestCurrencyRound(t *testing.T) {
	tests := []struct {
		currency Currency
		in       string
		want     string
	}{
		{USD, "4.505", "4.51"},
		{USD, "4.504", "4.5"},
		{USD, "-1.005", "-1.01"},
		{JPY, "100.5", "101"},
	}
	for _, tt := range tests {
		t.Run(string(tt.currency)+" "+tt.in, func(t *testing.T) {
			assert.True(t, tt.currency.Round(d(tt.in)).Equal(d(tt.want)))
		})
	}
}
