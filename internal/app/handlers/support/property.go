package support

import (
	"context"
	"errors"
	"strings"
	"time"

	domainproperties "coastalstay/internal/domain/properties"
	"coastalstay/internal/domain/shared/daterange"
)

// LoadProperty resolves a property by id, then by slug.
func LoadProperty(ctx context.Context, repo domainproperties.Repository, ref string) (*domainproperties.Property, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domainproperties.ErrNotFound
	}
	property, err := repo.ByID(ctx, domainproperties.PropertyID(ref))
	if errors.Is(err, domainproperties.ErrNotFound) {
		return repo.BySlug(ctx, strings.ToLower(ref))
	}
	return property, err
}

// Clock returns the current time. A nil Clock reads the wall clock.
type Clock func() time.Time

// Now is the current instant in UTC, for timestamps.
func (c Clock) Now() time.Time {
	return c.local().UTC()
}

// Today is the calendar date in the clock's own location, so a guest's
// "today" turns over at local midnight.
func (c Clock) Today() daterange.CalendarDate {
	return daterange.DateOf(c.local())
}

func (c Clock) local() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
