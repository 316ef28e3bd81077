package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const DefaultCurrency = "USD"

var (
	ErrInvalidCurrency  = errors.New("money: invalid currency code")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
	ErrNegativeAmount   = errors.New("money: amount must be non-negative")
)

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"LKR": "Rs.",
}

// Symbol maps a known currency code to its display symbol. Unknown values are
// returned unchanged and used literally.
func Symbol(currency string) string {
	if s, ok := symbols[strings.ToUpper(strings.TrimSpace(currency))]; ok {
		return s
	}
	return currency
}

// Format renders {symbol}{amount} with the amount as a plain number: no
// thousands separators and no trailing zeros.
func Format(currency string, amount decimal.Decimal) string {
	return Symbol(currency) + amount.String()
}

// FormatRounded rounds to a whole amount (half away from zero) before formatting.
func FormatRounded(currency string, amount decimal.Decimal) string {
	return Format(currency, amount.Round(0))
}

// Money pairs an amount with its currency code.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// New constructs a Money value validating minimal invariants.
func New(amount decimal.Decimal, currency string) (Money, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return Money{}, ErrInvalidCurrency
	}
	if amount.IsNegative() {
		return Money{}, ErrNegativeAmount
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// Must creates Money and panics if validation fails; useful in tests and fixtures.
func Must(amount float64, currency string) Money {
	m, err := New(decimal.NewFromFloat(amount), currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero is an empty amount in the given currency.
func Zero(currency string) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// Add adds two money values ensuring currencies match.
func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Multiply multiplies the amount by the provided factor.
func (m Money) Multiply(times int64) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(times)), Currency: m.Currency}
}

// IsZero returns true if the amount equals zero.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

func (m Money) String() string {
	return Format(m.Currency, m.Amount)
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.Currency == "" || other.Currency == "" {
		return ErrInvalidCurrency
	}
	if !strings.EqualFold(m.Currency, other.Currency) {
		return ErrCurrencyMismatch
	}
	return nil
}
