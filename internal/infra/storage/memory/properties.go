package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"coastalstay/internal/domain/booking"
	domainproperties "coastalstay/internal/domain/properties"
	"coastalstay/internal/domain/pricing"
	"coastalstay/internal/domain/shared/events"
)

// PropertyRepository keeps properties in memory. Save enforces the same
// optimistic version check as the mongo repository.
type PropertyRepository struct {
	mu     sync.RWMutex
	items  map[domainproperties.PropertyID]*domainproperties.Property
	bySlug map[string]domainproperties.PropertyID
}

func NewPropertyRepository() *PropertyRepository {
	return &PropertyRepository{
		items:  make(map[domainproperties.PropertyID]*domainproperties.Property),
		bySlug: make(map[string]domainproperties.PropertyID),
	}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperties.PropertyID) (*domainproperties.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	property, ok := r.items[id]
	if !ok {
		return nil, domainproperties.ErrNotFound
	}
	return cloneProperty(property), nil
}

func (r *PropertyRepository) BySlug(ctx context.Context, slug string) (*domainproperties.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.bySlug[strings.ToLower(strings.TrimSpace(slug))]
	if !ok {
		return nil, domainproperties.ErrNotFound
	}
	return cloneProperty(r.items[id]), nil
}

func (r *PropertyRepository) List(ctx context.Context, params domainproperties.ListParams) (domainproperties.ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := params.Normalized()
	matches := make([]*domainproperties.Property, 0, len(r.items))
	for _, property := range r.items {
		if err := ctx.Err(); err != nil {
			return domainproperties.ListResult{}, err
		}
		if opts.Matches(property) {
			matches = append(matches, property)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return opts.Less(matches[i], matches[j])
	})

	total := len(matches)
	start := min(opts.Offset, total)
	end := min(start+opts.Limit, total)
	items := make([]*domainproperties.Property, 0, end-start)
	for _, property := range matches[start:end] {
		items = append(items, cloneProperty(property))
	}
	return domainproperties.ListResult{Items: items, Total: total}, nil
}

// Save stores the property and bumps its version. A stale version returns
// ErrConcurrentWrite.
func (r *PropertyRepository) Save(ctx context.Context, property *domainproperties.Property) error {
	if property == nil || strings.TrimSpace(string(property.ID)) == "" {
		return domainproperties.ErrNotFound
	}
	slug := strings.ToLower(property.Slug)

	r.mu.Lock()
	defer r.mu.Unlock()
	var stored int64
	if existing, ok := r.items[property.ID]; ok {
		stored = existing.Version
	}
	if stored != property.Version {
		return domainproperties.ErrConcurrentWrite
	}
	if owner, ok := r.bySlug[slug]; ok && owner != property.ID {
		return domainproperties.ErrSlugTaken
	}
	if existing, ok := r.items[property.ID]; ok && existing.Slug != property.Slug {
		delete(r.bySlug, strings.ToLower(existing.Slug))
	}
	property.Version++
	r.items[property.ID] = cloneProperty(property)
	r.bySlug[slug] = property.ID
	return nil
}

func cloneProperty(p *domainproperties.Property) *domainproperties.Property {
	if p == nil {
		return nil
	}
	cp := *p
	cp.EventRecorder = events.EventRecorder{}
	cp.Amenities = append([]string(nil), p.Amenities...)
	cp.Images = append([]string(nil), p.Images...)
	cp.Bookings = append([]booking.BookingDate(nil), p.Bookings...)
	if p.Pricing != nil {
		card := *p.Pricing
		card.Rules = append([]pricing.Rule(nil), p.Pricing.Rules...)
		cp.Pricing = &card
	}
	return &cp
}

var _ domainproperties.Repository = (*PropertyRepository)(nil)
