package mongo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"coastalstay/internal/domain/booking"
	"coastalstay/internal/domain/pricing"
	domainproperties "coastalstay/internal/domain/properties"
	"coastalstay/internal/domain/shared/daterange"
)

// PropertyRepository stores each property as one document. Bookings and the
// rate card are embedded and rewritten as a whole on every save.
type PropertyRepository struct {
	col *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{col: db.Collection(propertiesCollection)}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperties.PropertyID) (*domainproperties.Property, error) {
	return r.findOne(ctx, bson.M{"_id": string(id)})
}

func (r *PropertyRepository) BySlug(ctx context.Context, slug string) (*domainproperties.Property, error) {
	return r.findOne(ctx, bson.M{"slug": strings.ToLower(strings.TrimSpace(slug))})
}

func (r *PropertyRepository) findOne(ctx context.Context, filter bson.M) (*domainproperties.Property, error) {
	var doc propertyDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainproperties.ErrNotFound
		}
		return nil, fmt.Errorf("mongo: find property: %w", err)
	}
	return doc.toAggregate()
}

// List pushes the exact-match filters down to mongo. Free-text search,
// amenities and ordering run in process so results match the memory store.
func (r *PropertyRepository) List(ctx context.Context, params domainproperties.ListParams) (domainproperties.ListResult, error) {
	opts := params.Normalized()
	cur, err := r.col.Find(ctx, listFilter(opts))
	if err != nil {
		return domainproperties.ListResult{}, fmt.Errorf("mongo: list properties: %w", err)
	}
	defer cur.Close(ctx)

	var matches []*domainproperties.Property
	for cur.Next(ctx) {
		var doc propertyDocument
		if err := cur.Decode(&doc); err != nil {
			return domainproperties.ListResult{}, fmt.Errorf("mongo: decode property: %w", err)
		}
		property, err := doc.toAggregate()
		if err != nil {
			return domainproperties.ListResult{}, err
		}
		if opts.Matches(property) {
			matches = append(matches, property)
		}
	}
	if err := cur.Err(); err != nil {
		return domainproperties.ListResult{}, fmt.Errorf("mongo: list properties: %w", err)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return opts.Less(matches[i], matches[j])
	})

	total := len(matches)
	start := min(opts.Offset, total)
	end := min(start+opts.Limit, total)
	return domainproperties.ListResult{Items: matches[start:end], Total: total}, nil
}

func listFilter(opts domainproperties.ListParams) bson.M {
	filter := bson.M{}
	if opts.OnlyActive {
		filter["active"] = true
	}
	if opts.OnlyFeatured {
		filter["featured"] = true
	}
	if opts.City != "" {
		filter["location.city_key"] = opts.City
	}
	if opts.Country != "" {
		filter["location.country_key"] = opts.Country
	}
	if opts.MinGuests > 0 {
		filter["max_guests"] = bson.M{"$gte": opts.MinGuests}
	}
	if opts.MinBedrooms > 0 {
		filter["bedrooms"] = bson.M{"$gte": opts.MinBedrooms}
	}
	return filter
}

// Save inserts new properties and updates existing ones only when the stored
// version still matches. The version is bumped on success.
func (r *PropertyRepository) Save(ctx context.Context, property *domainproperties.Property) error {
	if property == nil || strings.TrimSpace(string(property.ID)) == "" {
		return domainproperties.ErrNotFound
	}
	doc := newPropertyDocument(property)
	doc.Version = property.Version + 1

	if property.Version == 0 {
		if _, err := r.col.InsertOne(ctx, doc); err != nil {
			return mapWriteError(err)
		}
		property.Version = doc.Version
		return nil
	}
	filter := bson.M{"_id": doc.ID, "version": property.Version}
	res, err := r.col.ReplaceOne(ctx, filter, doc, options.Replace())
	if err != nil {
		return mapWriteError(err)
	}
	if res.MatchedCount == 0 {
		return domainproperties.ErrConcurrentWrite
	}
	property.Version = doc.Version
	return nil
}

func mapWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		if strings.Contains(err.Error(), "slug") {
			return domainproperties.ErrSlugTaken
		}
		return domainproperties.ErrConcurrentWrite
	}
	return fmt.Errorf("mongo: save property: %w", err)
}

type propertyDocument struct {
	ID          string            `bson:"_id"`
	Slug        string            `bson:"slug"`
	Name        string            `bson:"name"`
	Summary     string            `bson:"summary,omitempty"`
	Description string            `bson:"description,omitempty"`
	Location    locationDocument  `bson:"location"`
	Bedrooms    int               `bson:"bedrooms"`
	Bathrooms   int               `bson:"bathrooms"`
	MaxGuests   int               `bson:"max_guests"`
	Amenities   []string          `bson:"amenities,omitempty"`
	Images      []string          `bson:"images,omitempty"`
	Featured    bool              `bson:"featured"`
	Active      bool              `bson:"active"`
	Pricing     *pricingDocument  `bson:"pricing,omitempty"`
	Bookings    []bookingDocument `bson:"bookings"`
	Version     int64             `bson:"version"`
	CreatedAt   time.Time         `bson:"created_at"`
	UpdatedAt   time.Time         `bson:"updated_at"`
}

type locationDocument struct {
	Address    string  `bson:"address,omitempty"`
	City       string  `bson:"city,omitempty"`
	CityKey    string  `bson:"city_key,omitempty"`
	Region     string  `bson:"region,omitempty"`
	Country    string  `bson:"country,omitempty"`
	CountryKey string  `bson:"country_key,omitempty"`
	Lat        float64 `bson:"lat"`
	Lon        float64 `bson:"lon"`
}

// Prices are kept as decimal strings so no precision is lost.
type pricingDocument struct {
	Currency     string         `bson:"currency"`
	DefaultPrice string         `bson:"default_price"`
	Rules        []ruleDocument `bson:"rules,omitempty"`
}

type ruleDocument struct {
	ID        string `bson:"id"`
	Price     string `bson:"price"`
	StartDate string `bson:"start_date"`
	EndDate   string `bson:"end_date"`
}

// Dates are ISO strings, which sort the same way the calendar does.
type bookingDocument struct {
	ID        string `bson:"id"`
	CheckIn   string `bson:"check_in"`
	CheckOut  string `bson:"check_out"`
	GuestName string `bson:"guest_name,omitempty"`
	Notes     string `bson:"notes,omitempty"`
}

func newPropertyDocument(p *domainproperties.Property) propertyDocument {
	doc := propertyDocument{
		ID:          string(p.ID),
		Slug:        strings.ToLower(p.Slug),
		Name:        p.Name,
		Summary:     p.Summary,
		Description: p.Description,
		Location: locationDocument{
			Address:    p.Location.Address,
			City:       p.Location.City,
			CityKey:    strings.ToLower(strings.TrimSpace(p.Location.City)),
			Region:     p.Location.Region,
			Country:    p.Location.Country,
			CountryKey: strings.ToLower(strings.TrimSpace(p.Location.Country)),
			Lat:        p.Location.Lat,
			Lon:        p.Location.Lon,
		},
		Bedrooms:  p.Bedrooms,
		Bathrooms: p.Bathrooms,
		MaxGuests: p.MaxGuests,
		Amenities: p.Amenities,
		Images:    p.Images,
		Featured:  p.Featured,
		Active:    p.Active,
		Bookings:  make([]bookingDocument, 0, len(p.Bookings)),
		Version:   p.Version,
		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: p.UpdatedAt.UTC(),
	}
	if p.Pricing != nil {
		pd := &pricingDocument{
			Currency:     p.Pricing.Currency,
			DefaultPrice: p.Pricing.DefaultPrice.String(),
		}
		for _, rule := range p.Pricing.Rules {
			pd.Rules = append(pd.Rules, ruleDocument{
				ID:        rule.ID,
				Price:     rule.Price.String(),
				StartDate: rule.StartDate.String(),
				EndDate:   rule.EndDate.String(),
			})
		}
		doc.Pricing = pd
	}
	for _, b := range p.Bookings {
		doc.Bookings = append(doc.Bookings, bookingDocument{
			ID:        b.ID,
			CheckIn:   b.CheckIn.String(),
			CheckOut:  b.CheckOut.String(),
			GuestName: b.GuestName,
			Notes:     b.Notes,
		})
	}
	return doc
}

func (d propertyDocument) toAggregate() (*domainproperties.Property, error) {
	p := &domainproperties.Property{
		ID:          domainproperties.PropertyID(d.ID),
		Slug:        d.Slug,
		Name:        d.Name,
		Summary:     d.Summary,
		Description: d.Description,
		Location: domainproperties.Location{
			Address: d.Location.Address,
			City:    d.Location.City,
			Region:  d.Location.Region,
			Country: d.Location.Country,
			Lat:     d.Location.Lat,
			Lon:     d.Location.Lon,
		},
		Bedrooms:  d.Bedrooms,
		Bathrooms: d.Bathrooms,
		MaxGuests: d.MaxGuests,
		Amenities: d.Amenities,
		Images:    d.Images,
		Featured:  d.Featured,
		Active:    d.Active,
		Version:   d.Version,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
	if d.Pricing != nil {
		card := pricing.PropertyPricing{
			Currency:     d.Pricing.Currency,
			DefaultPrice: storedPrice(d.Pricing.DefaultPrice),
		}
		for _, rd := range d.Pricing.Rules {
			// A rule with an unreadable date is kept with a zero date and never applies.
			start, _ := daterange.ParseDate(rd.StartDate)
			end, _ := daterange.ParseDate(rd.EndDate)
			card.Rules = append(card.Rules, pricing.Rule{
				ID:        rd.ID,
				Price:     storedPrice(rd.Price),
				StartDate: start,
				EndDate:   end,
			})
		}
		p.Pricing = &card
	}
	for _, bd := range d.Bookings {
		in, err := daterange.ParseDate(bd.CheckIn)
		if err != nil {
			return nil, fmt.Errorf("mongo: property %s booking %s: %w", d.ID, bd.ID, err)
		}
		out, err := daterange.ParseDate(bd.CheckOut)
		if err != nil {
			return nil, fmt.Errorf("mongo: property %s booking %s: %w", d.ID, bd.ID, err)
		}
		p.Bookings = append(p.Bookings, booking.BookingDate{
			ID:        bd.ID,
			CheckIn:   in,
			CheckOut:  out,
			GuestName: bd.GuestName,
			Notes:     bd.Notes,
		})
	}
	return p, nil
}

// storedPrice maps unreadable or negative amounts to 0.
func storedPrice(raw string) decimal.Decimal {
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || v.IsNegative() {
		return decimal.Zero
	}
	return v
}

var _ domainproperties.Repository = (*PropertyRepository)(nil)
