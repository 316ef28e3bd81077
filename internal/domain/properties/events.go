package properties

import "time"

type PropertyCreated struct {
	PropertyID PropertyID `json:"propertyId"`
	Slug       string     `json:"slug"`
	At         time.Time  `json:"at"`
}

func (e PropertyCreated) EventName() string     { return "property.created" }
func (e PropertyCreated) AggregateID() string   { return string(e.PropertyID) }
func (e PropertyCreated) OccurredAt() time.Time { return e.At }

type PropertyUpdated struct {
	PropertyID PropertyID `json:"propertyId"`
	At         time.Time  `json:"at"`
}

func (e PropertyUpdated) EventName() string     { return "property.updated" }
func (e PropertyUpdated) AggregateID() string   { return string(e.PropertyID) }
func (e PropertyUpdated) OccurredAt() time.Time { return e.At }

type PricingUpdated struct {
	PropertyID PropertyID `json:"propertyId"`
	Currency   string     `json:"currency"`
	Rules      int        `json:"rules"`
	At         time.Time  `json:"at"`
}

func (e PricingUpdated) EventName() string     { return "property.pricing_updated" }
func (e PricingUpdated) AggregateID() string   { return string(e.PropertyID) }
func (e PricingUpdated) OccurredAt() time.Time { return e.At }

// BookingsReplaced fires on every change to the booking list.
type BookingsReplaced struct {
	PropertyID PropertyID `json:"propertyId"`
	Name       string     `json:"name"`
	Bookings   int        `json:"bookings"`
	At         time.Time  `json:"at"`
}

func (e BookingsReplaced) EventName() string     { return "property.bookings_replaced" }
func (e BookingsReplaced) AggregateID() string   { return string(e.PropertyID) }
func (e BookingsReplaced) OccurredAt() time.Time { return e.At }

type PropertyPublished struct {
	PropertyID PropertyID `json:"propertyId"`
	At         time.Time  `json:"at"`
}

func (e PropertyPublished) EventName() string     { return "property.published" }
func (e PropertyPublished) AggregateID() string   { return string(e.PropertyID) }
func (e PropertyPublished) OccurredAt() time.Time { return e.At }

type PropertyUnpublished struct {
	PropertyID PropertyID `json:"propertyId"`
	At         time.Time  `json:"at"`
}

func (e PropertyUnpublished) EventName() string     { return "property.unpublished" }
func (e PropertyUnpublished) AggregateID() string   { return string(e.PropertyID) }
func (e PropertyUnpublished) OccurredAt() time.Time { return e.At }
