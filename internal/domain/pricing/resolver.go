package pricing

import (
	"github.com/shopspring/decimal"

	"coastalstay/internal/domain/shared/daterange"
)

// Nightly is the rate that applies to one night and the rule that produced it.
type Nightly struct {
	Price decimal.Decimal
	Rule  *Rule
}

// Resolve returns the price for date: the first rule in list order whose closed
// range covers it, otherwise defaultPrice. A negative default resolves to 0.
func Resolve(defaultPrice decimal.Decimal, rules []Rule, date daterange.CalendarDate) Nightly {
	if defaultPrice.IsNegative() {
		defaultPrice = decimal.Zero
	}
	for i := range rules {
		if rules[i].Applies(date) {
			matched := rules[i]
			return Nightly{Price: matched.Price, Rule: &matched}
		}
	}
	return Nightly{Price: defaultPrice}
}

// ResolveFor is Resolve over a property's rate card with the default policy applied.
func ResolveFor(p *PropertyPricing, date daterange.CalendarDate) Nightly {
	card := PricingOrDefault(p)
	return Resolve(card.DefaultPrice, card.Rules, date)
}
