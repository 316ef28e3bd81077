package pricing

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"coastalstay/internal/domain/shared/daterange"
	"coastalstay/internal/domain/shared/money"
)

var (
	ErrRuleIDRequired   = errors.New("pricing: rule id is required")
	ErrDuplicateRuleID  = errors.New("pricing: rule id must be unique")
	ErrNegativePrice    = errors.New("pricing: price must be non-negative")
	ErrRuleRange        = errors.New("pricing: rule start date must be on or before its end date")
	ErrOverlappingRules = errors.New("pricing: rules must not overlap")
	ErrCurrencyRequired = errors.New("pricing: currency is required")
)

// Rule overrides the nightly rate for every date in [StartDate, EndDate].
type Rule struct {
	ID        string                 `json:"id"`
	Price     decimal.Decimal        `json:"price"`
	StartDate daterange.CalendarDate `json:"startDate"`
	EndDate   daterange.CalendarDate `json:"endDate"`
}

// Span is the closed date interval the rule applies to.
func (r Rule) Span() daterange.Span {
	return daterange.Span{Start: r.StartDate, End: r.EndDate}
}

// Applies reports whether the rule covers d. Rules with missing dates never apply.
func (r Rule) Applies(d daterange.CalendarDate) bool {
	if r.StartDate.IsZero() || r.EndDate.IsZero() || d.IsZero() {
		return false
	}
	return r.Span().Contains(d)
}

// PropertyPricing is the rate card attached to a property.
type PropertyPricing struct {
	Currency     string          `json:"currency"`
	DefaultPrice decimal.Decimal `json:"defaultPrice"`
	Rules        []Rule          `json:"rules"`
}

// PricingOrDefault is the single place that decides what missing or malformed
// pricing means: no pricing is USD at 0, an empty currency is USD and a
// negative default price is 0.
func PricingOrDefault(p *PropertyPricing) PropertyPricing {
	if p == nil {
		return PropertyPricing{Currency: money.DefaultCurrency, DefaultPrice: decimal.Zero}
	}
	out := PropertyPricing{
		Currency:     strings.ToUpper(strings.TrimSpace(p.Currency)),
		DefaultPrice: p.DefaultPrice,
		Rules:        append([]Rule(nil), p.Rules...),
	}
	if out.Currency == "" {
		out.Currency = money.DefaultCurrency
	}
	if out.DefaultPrice.IsNegative() {
		out.DefaultPrice = decimal.Zero
	}
	return out
}

// PriceFromFloat converts a stored number into a price, mapping NaN, infinities
// and negatives to 0.
func PriceFromFloat(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// Validate checks a rate card before it is written. Overlapping rules are
// rejected so that date resolution never depends on list order.
func (p PropertyPricing) Validate() error {
	if strings.TrimSpace(p.Currency) == "" {
		return ErrCurrencyRequired
	}
	if p.DefaultPrice.IsNegative() {
		return ErrNegativePrice
	}
	return ValidateRules(p.Rules)
}

// ValidateRules checks ids, prices and ranges, then pairwise overlap.
func ValidateRules(rules []Rule) error {
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			return ErrRuleIDRequired
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateRuleID, id)
		}
		seen[id] = struct{}{}
		if r.Price.IsNegative() {
			return fmt.Errorf("%w: rule %s", ErrNegativePrice, id)
		}
		if r.StartDate.IsZero() || r.EndDate.IsZero() || r.StartDate.After(r.EndDate) {
			return fmt.Errorf("%w: rule %s", ErrRuleRange, id)
		}
	}
	for i := 0; i < len(rules); i++ {
		for j := i + 1; j < len(rules); j++ {
			if rules[i].Span().Intersects(rules[j].Span()) {
				return fmt.Errorf("%w: %s and %s", ErrOverlappingRules, rules[i].ID, rules[j].ID)
			}
		}
	}
	return nil
}
