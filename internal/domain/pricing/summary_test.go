package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceDisplay(t *testing.T) {
	tests := []struct {
		name string
		card *PropertyPricing
		want string
	}{
		{name: "no pricing", card: nil, want: "$0/night"},
		{name: "no rules", card: &PropertyPricing{Currency: "USD", DefaultPrice: price(100)}, want: "$100/night"},
		{
			name: "rule above default",
			card: &PropertyPricing{Currency: "USD", DefaultPrice: price(100), Rules: []Rule{rule("r", 150, "2024-01-01", "2024-01-02")}},
			want: "$100–150/night",
		},
		{
			name: "rules on both sides",
			card: &PropertyPricing{Currency: "EUR", DefaultPrice: price(100), Rules: []Rule{
				rule("low", 80, "2024-01-01", "2024-01-02"),
				rule("high", 120, "2024-02-01", "2024-02-02"),
			}},
			want: "€80–120/night",
		},
		{
			name: "rules equal default",
			card: &PropertyPricing{Currency: "GBP", DefaultPrice: price(90), Rules: []Rule{rule("same", 90, "2024-01-01", "2024-01-02")}},
			want: "£90/night",
		},
		{name: "unknown currency", card: &PropertyPricing{Currency: "AUD", DefaultPrice: price(210)}, want: "AUD210/night"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PriceDisplay(tt.card))
		})
	}
}

func TestHasSpecialPricing(t *testing.T) {
	assert.False(t, HasSpecialPricing(nil))
	assert.False(t, HasSpecialPricing(&PropertyPricing{}))
	assert.True(t, HasSpecialPricing(&PropertyPricing{Rules: []Rule{rule("r", 1, "2024-01-01", "2024-01-01")}}))
}

func TestNextSpecialPricing(t *testing.T) {
	card := &PropertyPricing{
		Currency:     "USD",
		DefaultPrice: price(100),
		Rules: []Rule{
			rule("past", 90, "2024-01-01", "2024-01-10"),
			rule("later", 200, "2024-12-20", "2024-12-31"),
			rule("soon-a", 140, "2024-06-01", "2024-06-05"),
			rule("soon-b", 160, "2024-06-01", "2024-06-03"),
		},
	}

	next := NextSpecialPricing(card, d("2024-03-01"))
	require.NotNil(t, next)
	assert.Equal(t, "soon-a", next.ID)

	next = NextSpecialPricing(card, d("2024-06-01"))
	require.NotNil(t, next)
	assert.Equal(t, "soon-a", next.ID)

	next = NextSpecialPricing(card, d("2024-06-02"))
	require.NotNil(t, next)
	assert.Equal(t, "later", next.ID)

	assert.Nil(t, NextSpecialPricing(card, d("2025-01-01")))
	assert.Nil(t, NextSpecialPricing(nil, d("2024-01-01")))
}
