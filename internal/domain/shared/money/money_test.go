package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbol(t *testing.T) {
	tests := []struct {
		currency string
		want     string
	}{
		{"USD", "$"},
		{"usd", "$"},
		{"EUR", "€"},
		{"gbp", "£"},
		{"LKR", "Rs."},
		{"JPY", "JPY"},
		{"", ""},
		{"₹", "₹"},
	}
	for _, tt := range tests {
		t.Run(tt.currency, func(t *testing.T) {
			assert.Equal(t, tt.want, Symbol(tt.currency))
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$300", Format("USD", decimal.NewFromInt(300)))
	assert.Equal(t, "$1250", Format("USD", decimal.NewFromInt(1250)))
	assert.Equal(t, "€99.5", Format("EUR", decimal.RequireFromString("99.50")))
	assert.Equal(t, "CHF12", Format("CHF", decimal.NewFromInt(12)))
}

func TestFormatRounded(t *testing.T) {
	avg := decimal.NewFromInt(350).Div(decimal.NewFromInt(3))
	assert.Equal(t, "$117", FormatRounded("USD", avg))
	assert.Equal(t, "$101", FormatRounded("USD", decimal.RequireFromString("100.5")))
	assert.Equal(t, "$100", FormatRounded("USD", decimal.RequireFromString("100.49")))
}

func TestMoneyArithmetic(t *testing.T) {
	a := Must(100, "usd")
	b := Must(50.5, "USD")
	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "$150.5", sum.String())
	assert.Equal(t, "$300", a.Multiply(3).String())

	_, err = a.Add(Must(1, "EUR"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
	_, err = a.Add(Money{Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrInvalidCurrency)

	_, err = New(decimal.NewFromInt(-1), "USD")
	assert.ErrorIs(t, err, ErrNegativeAmount)
	_, err = New(decimal.NewFromInt(1), " ")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
	assert.True(t, Zero("USD").IsZero())
}
