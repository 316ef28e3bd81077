package properties

import "strings"

// ListSort defines a supported catalog ordering.
type ListSort string

const (
	SortFeatured  ListSort = "featured"
	SortPriceAsc  ListSort = "price_asc"
	SortPriceDesc ListSort = "price_desc"
	SortNewest    ListSort = "newest"
	SortName      ListSort = "name"

	defaultListLimit = 24
	maxListLimit     = 100
)

// ListParams describe catalog filters and paging options.
type ListParams struct {
	City         string
	Country      string
	Query        string
	Amenities    []string
	MinGuests    int
	MinBedrooms  int
	OnlyActive   bool
	OnlyFeatured bool
	Sort         ListSort
	Limit        int
	Offset       int
}

// Normalized returns a sanitized copy of params.
func (p ListParams) Normalized() ListParams {
	n := p
	n.City = strings.TrimSpace(strings.ToLower(n.City))
	n.Country = strings.TrimSpace(strings.ToLower(n.Country))
	n.Query = strings.TrimSpace(strings.ToLower(n.Query))
	lowered := make([]string, 0, len(n.Amenities))
	for _, a := range normalizeTokens(n.Amenities) {
		lowered = append(lowered, strings.ToLower(a))
	}
	n.Amenities = lowered
	if n.MinGuests < 0 {
		n.MinGuests = 0
	}
	if n.MinBedrooms < 0 {
		n.MinBedrooms = 0
	}
	if n.Limit <= 0 {
		n.Limit = defaultListLimit
	}
	if n.Limit > maxListLimit {
		n.Limit = maxListLimit
	}
	if n.Offset < 0 {
		n.Offset = 0
	}
	switch n.Sort {
	case SortFeatured, SortPriceAsc, SortPriceDesc, SortNewest, SortName:
	default:
		n.Sort = SortFeatured
	}
	return n
}

// Matches applies the non-paging filters to a single property.
func (p ListParams) Matches(prop *Property) bool {
	if prop == nil {
		return false
	}
	if p.OnlyActive && !prop.Active {
		return false
	}
	if p.OnlyFeatured && !prop.Featured {
		return false
	}
	if p.City != "" && !strings.EqualFold(prop.Location.City, p.City) {
		return false
	}
	if p.Country != "" && !strings.EqualFold(prop.Location.Country, p.Country) {
		return false
	}
	if p.MinGuests > 0 && prop.MaxGuests < p.MinGuests {
		return false
	}
	if p.MinBedrooms > 0 && prop.Bedrooms < p.MinBedrooms {
		return false
	}
	if p.Query != "" {
		haystack := strings.ToLower(strings.Join([]string{prop.Name, prop.Summary, prop.Location.City, prop.Location.Region, prop.Location.Country}, " "))
		if !strings.Contains(haystack, p.Query) {
			return false
		}
	}
	if len(p.Amenities) > 0 {
		have := make(map[string]struct{}, len(prop.Amenities))
		for _, a := range prop.Amenities {
			have[strings.ToLower(strings.TrimSpace(a))] = struct{}{}
		}
		for _, want := range p.Amenities {
			if _, ok := have[want]; !ok {
				return false
			}
		}
	}
	return true
}

// Less orders two properties by the requested sort, falling back to name.
func (p ListParams) Less(a, b *Property) bool {
	switch p.Sort {
	case SortPriceAsc, SortPriceDesc:
		pa, pb := a.PricingCard().DefaultPrice, b.PricingCard().DefaultPrice
		if !pa.Equal(pb) {
			if p.Sort == SortPriceAsc {
				return pa.LessThan(pb)
			}
			return pa.GreaterThan(pb)
		}
	case SortNewest:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
	case SortFeatured:
		if a.Featured != b.Featured {
			return a.Featured
		}
	}
	return strings.ToLower(a.Name) < strings.ToLower(b.Name)
}

// ListResult wraps catalog hits with the total before paging.
type ListResult struct {
	Items []*Property
	Total int
}
