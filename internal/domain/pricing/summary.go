package pricing

import (
	"sort"

	"coastalstay/internal/domain/shared/daterange"
	"coastalstay/internal/domain/shared/money"
)

// PriceDisplay is the at-a-glance rate shown on cards when no dates are picked,
// e.g. "$100/night" or "$80–120/night".
func PriceDisplay(p *PropertyPricing) string {
	card := PricingOrDefault(p)
	lo, hi := card.DefaultPrice, card.DefaultPrice
	for _, r := range card.Rules {
		if r.Price.LessThan(lo) {
			lo = r.Price
		}
		if r.Price.GreaterThan(hi) {
			hi = r.Price
		}
	}
	if lo.Equal(hi) {
		return money.Format(card.Currency, card.DefaultPrice) + "/night"
	}
	return money.Format(card.Currency, lo) + "–" + hi.String() + "/night"
}

func HasSpecialPricing(p *PropertyPricing) bool {
	return p != nil && len(p.Rules) > 0
}

// NextSpecialPricing returns the earliest rule starting on or after today, or nil.
// Rules starting on the same day keep their list order.
func NextSpecialPricing(p *PropertyPricing, today daterange.CalendarDate) *Rule {
	card := PricingOrDefault(p)
	upcoming := make([]Rule, 0, len(card.Rules))
	for _, r := range card.Rules {
		if r.StartDate.IsZero() || r.StartDate.Before(today) {
			continue
		}
		upcoming = append(upcoming, r)
	}
	if len(upcoming) == 0 {
		return nil
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].StartDate.Before(upcoming[j].StartDate)
	})
	next := upcoming[0]
	return &next
}
