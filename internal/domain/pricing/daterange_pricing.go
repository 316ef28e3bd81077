package pricing

import (
	"github.com/shopspring/decimal"

	"coastalstay/internal/domain/shared/daterange"
	"coastalstay/internal/domain/shared/money"
)

// NightPrice is one line of a stay breakdown.
type NightPrice struct {
	Date           daterange.CalendarDate
	Price          decimal.Decimal
	AppliedRule    *Rule
	IsSpecialPrice bool
}

// DateRangeResult is the derived price of a stay. It is recomputed on every
// date change and never stored.
type DateRangeResult struct {
	TotalPrice          decimal.Decimal
	Currency            string
	FormattedTotalPrice string
	Nights              int
	Breakdown           []NightPrice
	HasSpecialPricing   bool
	AvgPricePerNight    decimal.Decimal
	FormattedAvgPrice   string
}

// CalculateDateRange prices the nights between two ISO dates. Unparseable or
// inverted dates yield the zero result; callers are expected to stop those
// before they get here.
func CalculateDateRange(p *PropertyPricing, checkIn, checkOut string) DateRangeResult {
	in, errIn := daterange.ParseDate(checkIn)
	out, errOut := daterange.ParseDate(checkOut)
	if errIn != nil || errOut != nil {
		return zeroResult(PricingOrDefault(p).Currency)
	}
	return CalculateStay(p, daterange.Stay{CheckIn: in, CheckOut: out})
}

// CalculateStay prices each night of stay in ascending date order.
func CalculateStay(p *PropertyPricing, stay daterange.Stay) DateRangeResult {
	card := PricingOrDefault(p)
	nights := stay.Nights()
	if nights <= 0 {
		return zeroResult(card.Currency)
	}

	total := decimal.Zero
	breakdown := make([]NightPrice, 0, nights)
	special := false
	for _, date := range stay.Dates() {
		n := Resolve(card.DefaultPrice, card.Rules, date)
		breakdown = append(breakdown, NightPrice{
			Date:           date,
			Price:          n.Price,
			AppliedRule:    n.Rule,
			IsSpecialPrice: n.Rule != nil,
		})
		total = total.Add(n.Price)
		if n.Rule != nil {
			special = true
		}
	}

	avg := total.Div(decimal.NewFromInt(int64(nights)))
	return DateRangeResult{
		TotalPrice:          total,
		Currency:            card.Currency,
		FormattedTotalPrice: money.Format(card.Currency, total),
		Nights:              nights,
		Breakdown:           breakdown,
		HasSpecialPricing:   special,
		AvgPricePerNight:    avg,
		FormattedAvgPrice:   money.FormatRounded(card.Currency, avg),
	}
}

func zeroResult(currency string) DateRangeResult {
	return DateRangeResult{
		TotalPrice:          decimal.Zero,
		Currency:            currency,
		FormattedTotalPrice: money.Format(currency, decimal.Zero),
		Breakdown:           []NightPrice{},
		AvgPricePerNight:    decimal.Zero,
		FormattedAvgPrice:   money.FormatRounded(currency, decimal.Zero),
	}
}
