package dto

import (
	"github.com/shopspring/decimal"

	"coastalstay/internal/domain/pricing"
	"coastalstay/internal/domain/shared/money"
)

// Quote is the price of a stay as rendered next to the date picker.
type Quote struct {
	PropertyID          string       `json:"property_id"`
	CheckIn             string       `json:"check_in"`
	CheckOut            string       `json:"check_out"`
	Currency            string       `json:"currency"`
	Nights              int          `json:"nights"`
	TotalPrice          float64      `json:"total_price"`
	FormattedTotalPrice string       `json:"formatted_total_price"`
	AvgPricePerNight    float64      `json:"avg_price_per_night"`
	FormattedAvgPrice   string       `json:"formatted_avg_price"`
	HasSpecialPricing   bool         `json:"has_special_pricing"`
	Breakdown           []QuoteNight `json:"breakdown"`
}

type QuoteNight struct {
	Date           string  `json:"date"`
	Price          float64 `json:"price"`
	Formatted      string  `json:"formatted"`
	IsSpecialPrice bool    `json:"is_special_price"`
	RuleID         string  `json:"rule_id,omitempty"`
}

func MapQuote(propertyID, checkIn, checkOut string, r pricing.DateRangeResult) Quote {
	nights := make([]QuoteNight, 0, len(r.Breakdown))
	for _, n := range r.Breakdown {
		night := QuoteNight{
			Date:           n.Date.String(),
			Price:          n.Price.InexactFloat64(),
			Formatted:      formatPrice(r.Currency, n.Price),
			IsSpecialPrice: n.IsSpecialPrice,
		}
		if n.AppliedRule != nil {
			night.RuleID = n.AppliedRule.ID
		}
		nights = append(nights, night)
	}
	return Quote{
		PropertyID:          propertyID,
		CheckIn:             checkIn,
		CheckOut:            checkOut,
		Currency:            r.Currency,
		Nights:              r.Nights,
		TotalPrice:          r.TotalPrice.InexactFloat64(),
		FormattedTotalPrice: r.FormattedTotalPrice,
		AvgPricePerNight:    r.AvgPricePerNight.InexactFloat64(),
		FormattedAvgPrice:   r.FormattedAvgPrice,
		HasSpecialPricing:   r.HasSpecialPricing,
		Breakdown:           nights,
	}
}

func formatPrice(currency string, amount decimal.Decimal) string {
	return money.Format(currency, amount)
}
