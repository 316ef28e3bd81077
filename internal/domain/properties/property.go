package properties

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"coastalstay/internal/domain/booking"
	"coastalstay/internal/domain/pricing"
	"coastalstay/internal/domain/shared/daterange"
	"coastalstay/internal/domain/shared/events"
)

var (
	ErrNameRequired    = errors.New("properties: name is required")
	ErrSlugInvalid     = errors.New("properties: slug must be lowercase letters, digits and dashes")
	ErrGuestsLimit     = errors.New("properties: max guests must be at least 1")
	ErrRoomsNegative   = errors.New("properties: bedrooms and bathrooms must be non-negative")
	ErrNotFound        = errors.New("properties: property not found")
	ErrSlugTaken       = errors.New("properties: slug already used")
	ErrConcurrentWrite = errors.New("properties: property was modified concurrently")
	ErrImageRequired   = errors.New("properties: image url is required")

	// ErrVersionMismatch means the caller edited an older version. It is an
	// ErrConcurrentWrite that retrying will not fix.
	ErrVersionMismatch = fmt.Errorf("%w: expected version is stale", ErrConcurrentWrite)
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type PropertyID string

type Location struct {
	Address string  `json:"address"`
	City    string  `json:"city"`
	Region  string  `json:"region"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Property is a listed vacation home with its rate card and booked dates.
type Property struct {
	ID          PropertyID
	Slug        string
	Name        string
	Summary     string
	Description string
	Location    Location
	Bedrooms    int
	Bathrooms   int
	MaxGuests   int
	Amenities   []string
	Images      []string
	Featured    bool
	Active      bool
	Pricing     *pricing.PropertyPricing
	Bookings    []booking.BookingDate
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	events.EventRecorder
}

// Repository loads and stores properties. Save fails with
// ErrConcurrentWrite when the stored version moved on.
type Repository interface {
	ByID(ctx context.Context, id PropertyID) (*Property, error)
	BySlug(ctx context.Context, slug string) (*Property, error)
	List(ctx context.Context, params ListParams) (ListResult, error)
	Save(ctx context.Context, property *Property) error
}

type CreateParams struct {
	ID          PropertyID
	Slug        string
	Name        string
	Summary     string
	Description string
	Location    Location
	Bedrooms    int
	Bathrooms   int
	MaxGuests   int
	Amenities   []string
	Images      []string
	Featured    bool
	Pricing     *pricing.PropertyPricing
	Now         time.Time
}

// NewProperty validates params and records PropertyCreated.
func NewProperty(params CreateParams) (*Property, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("properties: id is required")
	}
	details := DetailsParams{
		Slug:        params.Slug,
		Name:        params.Name,
		Summary:     params.Summary,
		Description: params.Description,
		Location:    params.Location,
		Bedrooms:    params.Bedrooms,
		Bathrooms:   params.Bathrooms,
		MaxGuests:   params.MaxGuests,
		Amenities:   params.Amenities,
		Featured:    params.Featured,
	}
	if details.Slug == "" {
		details.Slug = Slugify(params.Name)
	}
	if err := details.validate(); err != nil {
		return nil, err
	}
	if params.Pricing != nil {
		if err := params.Pricing.Validate(); err != nil {
			return nil, err
		}
	}
	now := params.Now.UTC()
	p := &Property{
		ID:        params.ID,
		Images:    append([]string(nil), params.Images...),
		CreatedAt: now,
	}
	p.applyDetails(details, now)
	if params.Pricing != nil {
		card := pricing.PricingOrDefault(params.Pricing)
		p.Pricing = &card
	}
	p.Record(PropertyCreated{PropertyID: p.ID, Slug: p.Slug, At: now})
	return p, nil
}

// DetailsParams carries the editable descriptive fields.
type DetailsParams struct {
	Slug        string
	Name        string
	Summary     string
	Description string
	Location    Location
	Bedrooms    int
	Bathrooms   int
	MaxGuests   int
	Amenities   []string
	Featured    bool
}

func (d DetailsParams) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrNameRequired
	}
	if !slugPattern.MatchString(strings.TrimSpace(d.Slug)) {
		return ErrSlugInvalid
	}
	if d.MaxGuests < 1 {
		return ErrGuestsLimit
	}
	if d.Bedrooms < 0 || d.Bathrooms < 0 {
		return ErrRoomsNegative
	}
	return nil
}

func (p *Property) UpdateDetails(params DetailsParams, now time.Time) error {
	if params.Slug == "" {
		params.Slug = p.Slug
	}
	if err := params.validate(); err != nil {
		return err
	}
	p.applyDetails(params, now.UTC())
	p.Record(PropertyUpdated{PropertyID: p.ID, At: p.UpdatedAt})
	return nil
}

func (p *Property) applyDetails(d DetailsParams, now time.Time) {
	p.Slug = strings.TrimSpace(d.Slug)
	p.Name = strings.TrimSpace(d.Name)
	p.Summary = strings.TrimSpace(d.Summary)
	p.Description = strings.TrimSpace(d.Description)
	p.Location = d.Location
	p.Bedrooms = d.Bedrooms
	p.Bathrooms = d.Bathrooms
	p.MaxGuests = d.MaxGuests
	p.Amenities = normalizeTokens(d.Amenities)
	p.Featured = d.Featured
	p.UpdatedAt = now
}

// SetPricing replaces the rate card after validating it.
func (p *Property) SetPricing(card pricing.PropertyPricing, now time.Time) error {
	if err := card.Validate(); err != nil {
		return err
	}
	normalized := pricing.PricingOrDefault(&card)
	p.Pricing = &normalized
	p.UpdatedAt = now.UTC()
	p.Record(PricingUpdated{PropertyID: p.ID, Currency: normalized.Currency, Rules: len(normalized.Rules), At: p.UpdatedAt})
	return nil
}

// PricingCard returns the rate card with the default policy applied.
func (p *Property) PricingCard() pricing.PropertyPricing {
	return pricing.PricingOrDefault(p.Pricing)
}

// AddBooking appends a block if it does not touch any existing one.
func (p *Property) AddBooking(b booking.BookingDate, now time.Time) error {
	if err := b.Validate(); err != nil {
		return err
	}
	for _, existing := range p.Bookings {
		if existing.ID == b.ID {
			return fmt.Errorf("%w: %s", booking.ErrDuplicateBookingID, b.ID)
		}
	}
	if other, ok := booking.Conflict(p.Bookings, b.Span()); ok {
		return fmt.Errorf("%w: %s", booking.ErrOverlappingBooking, other.ID)
	}
	next := append(append([]booking.BookingDate(nil), p.Bookings...), b)
	p.setBookings(next, now)
	return nil
}

// RemoveBooking drops the booking with id or returns ErrBookingNotFound.
func (p *Property) RemoveBooking(id string, now time.Time) error {
	idx := -1
	for i, b := range p.Bookings {
		if b.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return booking.ErrBookingNotFound
	}
	next := append(append([]booking.BookingDate(nil), p.Bookings[:idx]...), p.Bookings[idx+1:]...)
	p.setBookings(next, now)
	return nil
}

// ReplaceBookings swaps the whole booking list, the way the admin panel saves it.
func (p *Property) ReplaceBookings(list []booking.BookingDate, now time.Time) error {
	if err := booking.ValidateSet(list); err != nil {
		return err
	}
	p.setBookings(append([]booking.BookingDate(nil), list...), now)
	return nil
}

func (p *Property) setBookings(list []booking.BookingDate, now time.Time) {
	p.Bookings = list
	p.UpdatedAt = now.UTC()
	p.Record(BookingsReplaced{PropertyID: p.ID, Name: p.Name, Bookings: len(list), At: p.UpdatedAt})
}

// DatePicker returns the booking-aware picker state for visitors, starting at today.
func (p *Property) DatePicker(today daterange.CalendarDate) booking.DatePicker {
	return booking.DatePicker{
		MinDate:  today,
		Bookings: append([]booking.BookingDate(nil), p.Bookings...),
	}
}

func (p *Property) AddImage(url string, now time.Time) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return ErrImageRequired
	}
	p.Images = append(p.Images, url)
	p.UpdatedAt = now.UTC()
	p.Record(PropertyUpdated{PropertyID: p.ID, At: p.UpdatedAt})
	return nil
}

// Publish makes the property visible on the public site.
func (p *Property) Publish(now time.Time) {
	if p.Active {
		return
	}
	p.Active = true
	p.UpdatedAt = now.UTC()
	p.Record(PropertyPublished{PropertyID: p.ID, At: p.UpdatedAt})
}

func (p *Property) Unpublish(now time.Time) {
	if !p.Active {
		return
	}
	p.Active = false
	p.UpdatedAt = now.UTC()
	p.Record(PropertyUnpublished{PropertyID: p.ID, At: p.UpdatedAt})
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a display name.
func Slugify(name string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(s, "-")
}

func normalizeTokens(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	out := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		key := strings.ToLower(token)
		if token == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, token)
	}
	return out
}
