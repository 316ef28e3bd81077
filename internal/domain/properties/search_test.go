package properties

import (
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"coastalstay/internal/domain/pricing"
)

func TestListParams_Normalized(t *testing.T) {
	n := ListParams{City: " Galle ", Amenities: []string{"Pool", "pool"}, Limit: 500, Offset: -3, Sort: "random"}.Normalized()
	assert.Equal(t, "galle", n.City)
	assert.Equal(t, []string{"pool"}, n.Amenities)
	assert.Equal(t, maxListLimit, n.Limit)
	assert.Equal(t, 0, n.Offset)
	assert.Equal(t, SortFeatured, n.Sort)

	assert.Equal(t, defaultListLimit, ListParams{}.Normalized().Limit)
}

func TestListParams_Matches(t *testing.T) {
	p := &Property{
		Name:      "Villa Lagoon View",
		Location:  Location{City: "Galle", Country: "Sri Lanka"},
		MaxGuests: 6,
		Bedrooms:  3,
		Amenities: []string{"Pool", "WiFi"},
		Active:    true,
	}
	tests := []struct {
		name   string
		params ListParams
		want   bool
	}{
		{name: "empty", params: ListParams{}, want: true},
		{name: "city", params: ListParams{City: "galle"}, want: true},
		{name: "other city", params: ListParams{City: "colombo"}, want: false},
		{name: "guests", params: ListParams{MinGuests: 8}, want: false},
		{name: "query", params: ListParams{Query: "lagoon"}, want: true},
		{name: "amenity", params: ListParams{Amenities: []string{"pool"}}, want: true},
		{name: "missing amenity", params: ListParams{Amenities: []string{"sauna"}}, want: false},
		{name: "featured only", params: ListParams{OnlyFeatured: true}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.params.Normalized().Matches(p))
		})
	}
	assert.False(t, ListParams{OnlyActive: true}.Matches(&Property{}))
	assert.False(t, ListParams{}.Matches(nil))
}

func TestListParams_Less(t *testing.T) {
	cheap := &Property{Name: "B", Pricing: &pricing.PropertyPricing{DefaultPrice: decimal.NewFromInt(80)}, CreatedAt: time.Unix(100, 0)}
	pricey := &Property{Name: "A", Featured: true, Pricing: &pricing.PropertyPricing{DefaultPrice: decimal.NewFromInt(300)}, CreatedAt: time.Unix(50, 0)}
	unpriced := &Property{Name: "C", CreatedAt: time.Unix(200, 0)}

	order := func(sortBy ListSort) []string {
		items := []*Property{cheap, pricey, unpriced}
		params := ListParams{Sort: sortBy}
		sort.SliceStable(items, func(i, j int) bool { return params.Less(items[i], items[j]) })
		names := make([]string, len(items))
		for i, p := range items {
			names[i] = p.Name
		}
		return names
	}

	assert.Equal(t, []string{"C", "B", "A"}, order(SortPriceAsc))
	assert.Equal(t, []string{"A", "B", "C"}, order(SortPriceDesc))
	assert.Equal(t, []string{"C", "B", "A"}, order(SortNewest))
	assert.Equal(t, []string{"A", "B", "C"}, order(SortFeatured))
	assert.Equal(t, []string{"A", "B", "C"}, order(SortName))
}
