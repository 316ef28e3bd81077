package dto

import (
	"time"

	"coastalstay/internal/domain/booking"
	"coastalstay/internal/domain/pricing"
	domainproperties "coastalstay/internal/domain/properties"
	"coastalstay/internal/domain/shared/daterange"
)

// PropertyCatalog is a page of property cards.
type PropertyCatalog struct {
	Items []PropertyCard  `json:"items"`
	Meta  CatalogMetadata `json:"meta"`
}

type CatalogMetadata struct {
	Total  int    `json:"total"`
	Count  int    `json:"count"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Sort   string `json:"sort"`
}

// PropertyCard is what the catalog grid renders before any dates are picked.
type PropertyCard struct {
	ID                string       `json:"id"`
	Slug              string       `json:"slug"`
	Name              string       `json:"name"`
	Summary           string       `json:"summary"`
	City              string       `json:"city"`
	Country           string       `json:"country"`
	Bedrooms          int          `json:"bedrooms"`
	Bathrooms         int          `json:"bathrooms"`
	MaxGuests         int          `json:"max_guests"`
	ThumbnailURL      string       `json:"thumbnail_url,omitempty"`
	Featured          bool         `json:"featured"`
	Currency          string       `json:"currency"`
	DefaultPrice      float64      `json:"default_price"`
	PriceDisplay      string       `json:"price_display"`
	HasSpecialPricing bool         `json:"has_special_pricing"`
	NextSpecialRate   *SpecialRate `json:"next_special_rate,omitempty"`
}

type SpecialRate struct {
	ID        string  `json:"id"`
	Price     float64 `json:"price"`
	Formatted string  `json:"formatted"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
}

type Location struct {
	Address string  `json:"address,omitempty"`
	City    string  `json:"city"`
	Region  string  `json:"region,omitempty"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat,omitempty"`
	Lon     float64 `json:"lon,omitempty"`
}

// PropertyDetail is the full property page, including the rate card and the
// booked blocks the date picker greys out.
type PropertyDetail struct {
	PropertyCard
	Description string        `json:"description"`
	Location    Location      `json:"location"`
	Amenities   []string      `json:"amenities"`
	Images      []string      `json:"images"`
	Active      bool          `json:"active"`
	Rules       []SpecialRate `json:"rules"`
	Bookings    []BookedBlock `json:"bookings"`
	Version     int64         `json:"version"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// BookedBlock is a booking as visitors see it: dates only.
type BookedBlock struct {
	ID       string `json:"id"`
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

// AdminBooking carries the guest fields staff enter.
type AdminBooking struct {
	BookedBlock
	GuestName string `json:"guest_name,omitempty"`
	Notes     string `json:"notes,omitempty"`
	Nights    int    `json:"nights"`
}

type AdminPropertyDetail struct {
	PropertyDetail
	AdminBookings []AdminBooking `json:"admin_bookings"`
}

func MapPropertyCard(p *domainproperties.Property, today daterange.CalendarDate) PropertyCard {
	card := p.PricingCard()
	out := PropertyCard{
		ID:                string(p.ID),
		Slug:              p.Slug,
		Name:              p.Name,
		Summary:           p.Summary,
		City:              p.Location.City,
		Country:           p.Location.Country,
		Bedrooms:          p.Bedrooms,
		Bathrooms:         p.Bathrooms,
		MaxGuests:         p.MaxGuests,
		Featured:          p.Featured,
		Currency:          card.Currency,
		DefaultPrice:      card.DefaultPrice.InexactFloat64(),
		PriceDisplay:      pricing.PriceDisplay(p.Pricing),
		HasSpecialPricing: pricing.HasSpecialPricing(p.Pricing),
	}
	if len(p.Images) > 0 {
		out.ThumbnailURL = p.Images[0]
	}
	if next := pricing.NextSpecialPricing(p.Pricing, today); next != nil {
		rate := mapRule(card.Currency, *next)
		out.NextSpecialRate = &rate
	}
	return out
}

func MapPropertyDetail(p *domainproperties.Property, today daterange.CalendarDate) PropertyDetail {
	card := p.PricingCard()
	rules := make([]SpecialRate, 0, len(card.Rules))
	for _, r := range card.Rules {
		rules = append(rules, mapRule(card.Currency, r))
	}
	blocks := make([]BookedBlock, 0, len(p.Bookings))
	for _, b := range p.Bookings {
		blocks = append(blocks, mapBlock(b))
	}
	return PropertyDetail{
		PropertyCard: MapPropertyCard(p, today),
		Description:  p.Description,
		Location: Location{
			Address: p.Location.Address,
			City:    p.Location.City,
			Region:  p.Location.Region,
			Country: p.Location.Country,
			Lat:     p.Location.Lat,
			Lon:     p.Location.Lon,
		},
		Amenities: append([]string{}, p.Amenities...),
		Images:    append([]string{}, p.Images...),
		Active:    p.Active,
		Rules:     rules,
		Bookings:  blocks,
		Version:   p.Version,
		UpdatedAt: p.UpdatedAt,
	}
}

func MapAdminPropertyDetail(p *domainproperties.Property, today daterange.CalendarDate) AdminPropertyDetail {
	list := make([]AdminBooking, 0, len(p.Bookings))
	for _, b := range p.Bookings {
		list = append(list, AdminBooking{
			BookedBlock: mapBlock(b),
			GuestName:   b.GuestName,
			Notes:       b.Notes,
			Nights:      b.Nights(),
		})
	}
	return AdminPropertyDetail{PropertyDetail: MapPropertyDetail(p, today), AdminBookings: list}
}

func mapRule(currency string, r pricing.Rule) SpecialRate {
	return SpecialRate{
		ID:        r.ID,
		Price:     r.Price.InexactFloat64(),
		Formatted: formatPrice(currency, r.Price),
		StartDate: r.StartDate.String(),
		EndDate:   r.EndDate.String(),
	}
}

func mapBlock(b booking.BookingDate) BookedBlock {
	return BookedBlock{ID: b.ID, CheckIn: b.CheckIn.String(), CheckOut: b.CheckOut.String()}
}

func MapCatalog(result domainproperties.ListResult, params domainproperties.ListParams, today daterange.CalendarDate) PropertyCatalog {
	normalized := params.Normalized()
	items := make([]PropertyCard, 0, len(result.Items))
	for _, p := range result.Items {
		items = append(items, MapPropertyCard(p, today))
	}
	return PropertyCatalog{
		Items: items,
		Meta: CatalogMetadata{
			Total:  result.Total,
			Count:  len(items),
			Limit:  normalized.Limit,
			Offset: normalized.Offset,
			Sort:   string(normalized.Sort),
		},
	}
}
