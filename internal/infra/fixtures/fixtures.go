// Package fixtures seeds properties from a JSON or YAML file so a fresh
// install has something to show.
package fixtures

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"coastalstay/internal/domain/booking"
	"coastalstay/internal/domain/pricing"
	domainproperties "coastalstay/internal/domain/properties"
	"coastalstay/internal/domain/shared/daterange"
)

// DefaultPath is tried when PROPERTIES_FIXTURES is empty.
const DefaultPath = "data/properties.yaml"

type Property struct {
	ID          string    `json:"id" yaml:"id"`
	Slug        string    `json:"slug" yaml:"slug"`
	Name        string    `json:"name" yaml:"name"`
	Summary     string    `json:"summary" yaml:"summary"`
	Description string    `json:"description" yaml:"description"`
	Location    Location  `json:"location" yaml:"location"`
	Bedrooms    int       `json:"bedrooms" yaml:"bedrooms"`
	Bathrooms   int       `json:"bathrooms" yaml:"bathrooms"`
	MaxGuests   int       `json:"max_guests" yaml:"max_guests"`
	Amenities   []string  `json:"amenities" yaml:"amenities"`
	Images      []string  `json:"images" yaml:"images"`
	Featured    bool      `json:"featured" yaml:"featured"`
	Active      bool      `json:"active" yaml:"active"`
	Pricing     *Pricing  `json:"pricing" yaml:"pricing"`
	Bookings    []Booking `json:"bookings" yaml:"bookings"`
}

type Location struct {
	Address string  `json:"address" yaml:"address"`
	City    string  `json:"city" yaml:"city"`
	Region  string  `json:"region" yaml:"region"`
	Country string  `json:"country" yaml:"country"`
	Lat     float64 `json:"lat" yaml:"lat"`
	Lon     float64 `json:"lon" yaml:"lon"`
}

type Pricing struct {
	Currency     string  `json:"currency" yaml:"currency"`
	DefaultPrice float64 `json:"default_price" yaml:"default_price"`
	Rules        []Rule  `json:"rules" yaml:"rules"`
}

type Rule struct {
	ID        string  `json:"id" yaml:"id"`
	Price     float64 `json:"price" yaml:"price"`
	StartDate string  `json:"start_date" yaml:"start_date"`
	EndDate   string  `json:"end_date" yaml:"end_date"`
}

type Booking struct {
	ID        string `json:"id" yaml:"id"`
	CheckIn   string `json:"check_in" yaml:"check_in"`
	CheckOut  string `json:"check_out" yaml:"check_out"`
	GuestName string `json:"guest_name" yaml:"guest_name"`
	Notes     string `json:"notes" yaml:"notes"`
}

// Load reads path, choosing the decoder from the extension. Anything other
// than .json is read as YAML.
func Load(path string) ([]Property, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixtures: read %s: %w", path, err)
	}
	return Decode(data, strings.EqualFold(filepath.Ext(path), ".json"))
}

func Decode(data []byte, isJSON bool) ([]Property, error) {
	var out []Property
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	if isJSON {
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("fixtures: decode json: %w", err)
		}
		return out, nil
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("fixtures: decode yaml: %w", err)
	}
	return out, nil
}

// Build turns a fixture into a property aggregate, running the same
// validation as the admin API.
func (f Property) Build(now time.Time) (*domainproperties.Property, error) {
	var card *pricing.PropertyPricing
	if f.Pricing != nil {
		card = &pricing.PropertyPricing{
			Currency:     f.Pricing.Currency,
			DefaultPrice: pricing.PriceFromFloat(f.Pricing.DefaultPrice),
		}
		for _, r := range f.Pricing.Rules {
			start, err := daterange.ParseDate(r.StartDate)
			if err != nil {
				return nil, fmt.Errorf("fixtures: rule %s: %w", r.ID, err)
			}
			end, err := daterange.ParseDate(r.EndDate)
			if err != nil {
				return nil, fmt.Errorf("fixtures: rule %s: %w", r.ID, err)
			}
			card.Rules = append(card.Rules, pricing.Rule{ID: r.ID, Price: pricing.PriceFromFloat(r.Price), StartDate: start, EndDate: end})
		}
	}
	p, err := domainproperties.NewProperty(domainproperties.CreateParams{
		ID:          domainproperties.PropertyID(f.ID),
		Slug:        f.Slug,
		Name:        f.Name,
		Summary:     f.Summary,
		Description: f.Description,
		Location: domainproperties.Location{
			Address: f.Location.Address,
			City:    f.Location.City,
			Region:  f.Location.Region,
			Country: f.Location.Country,
			Lat:     f.Location.Lat,
			Lon:     f.Location.Lon,
		},
		Bedrooms:  f.Bedrooms,
		Bathrooms: f.Bathrooms,
		MaxGuests: f.MaxGuests,
		Amenities: f.Amenities,
		Images:    f.Images,
		Featured:  f.Featured,
		Pricing:   card,
		Now:       now,
	})
	if err != nil {
		return nil, err
	}
	list := make([]booking.BookingDate, 0, len(f.Bookings))
	for _, b := range f.Bookings {
		in, err := daterange.ParseDate(b.CheckIn)
		if err != nil {
			return nil, fmt.Errorf("fixtures: booking %s: %w", b.ID, err)
		}
		out, err := daterange.ParseDate(b.CheckOut)
		if err != nil {
			return nil, fmt.Errorf("fixtures: booking %s: %w", b.ID, err)
		}
		bd, err := booking.NewBookingDate(booking.CreateParams{ID: b.ID, CheckIn: in, CheckOut: out, GuestName: b.GuestName, Notes: b.Notes})
		if err != nil {
			return nil, fmt.Errorf("fixtures: booking %s: %w", b.ID, err)
		}
		list = append(list, bd)
	}
	if len(list) > 0 {
		if err := p.ReplaceBookings(list, now); err != nil {
			return nil, err
		}
	}
	if f.Active {
		p.Publish(now)
	}
	p.ClearEvents()
	return p, nil
}

// Seed stores every fixture whose id is not in repo yet. Invalid fixtures are
// logged and skipped.
func Seed(ctx context.Context, repo domainproperties.Repository, items []Property, logger *slog.Logger, now time.Time) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	imported := 0
	for _, fx := range items {
		if _, err := repo.ByID(ctx, domainproperties.PropertyID(fx.ID)); err == nil {
			continue
		} else if !errors.Is(err, domainproperties.ErrNotFound) {
			return imported, err
		}
		property, err := fx.Build(now)
		if err != nil {
			logger.WarnContext(ctx, "fixture invalid", "property_id", fx.ID, "error", err)
			continue
		}
		if err := repo.Save(ctx, property); err != nil {
			logger.WarnContext(ctx, "cannot store fixture property", "property_id", fx.ID, "error", err)
			continue
		}
		imported++
	}
	return imported, nil
}
