package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"coastalstay/internal/app/uow"
	"coastalstay/internal/domain/booking"
	"coastalstay/internal/domain/pricing"
	domainproperties "coastalstay/internal/domain/properties"
	"coastalstay/internal/domain/shared/daterange"
)

var now = time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC)

func sampleProperty(t *testing.T, id, name string) *domainproperties.Property {
	t.Helper()
	p, err := domainproperties.NewProperty(domainproperties.CreateParams{
		ID:        domainproperties.PropertyID(id),
		Name:      name,
		Location:  domainproperties.Location{City: "Galle", Country: "Sri Lanka"},
		MaxGuests: 6,
		Bedrooms:  3,
		Pricing: &pricing.PropertyPricing{
			Currency:     "usd",
			DefaultPrice: decimal.RequireFromString("120.50"),
			Rules: []pricing.Rule{{
				ID:        "peak",
				Price:     decimal.NewFromInt(200),
				StartDate: daterange.MustParse("2030-12-20"),
				EndDate:   daterange.MustParse("2031-01-05"),
			}},
		},
		Now: now,
	})
	require.NoError(t, err)
	require.NoError(t, p.AddBooking(booking.BookingDate{
		ID:       "b1",
		CheckIn:  daterange.MustParse("2030-07-01"),
		CheckOut: daterange.MustParse("2030-07-05"),
	}, now))
	p.ClearEvents()
	return p
}

func TestPropertyDocument_Mapping(t *testing.T) {
	p := sampleProperty(t, "p1", "Fort Villa")
	doc := newPropertyDocument(p)
	assert.Equal(t, "galle", doc.Location.CityKey)
	assert.Equal(t, "sri lanka", doc.Location.CountryKey)
	assert.Equal(t, "120.5", doc.Pricing.DefaultPrice)
	require.Len(t, doc.Bookings, 1)
	assert.Equal(t, "2030-07-01", doc.Bookings[0].CheckIn)

	back, err := doc.toAggregate()
	require.NoError(t, err)
	assert.Equal(t, p.Bookings, back.Bookings)
	assert.True(t, p.Pricing.DefaultPrice.Equal(back.Pricing.DefaultPrice))
	assert.Equal(t, "USD", back.Pricing.Currency)
	require.Len(t, back.Pricing.Rules, 1)
	assert.True(t, back.Pricing.Rules[0].Applies(daterange.MustParse("2031-01-01")))
}

func TestPropertyDocument_MalformedValues(t *testing.T) {
	doc := newPropertyDocument(sampleProperty(t, "p1", "Fort Villa"))
	doc.Pricing.DefaultPrice = "-10"
	doc.Pricing.Rules[0].Price = "lots"
	doc.Pricing.Rules[0].StartDate = "someday"

	back, err := doc.toAggregate()
	require.NoError(t, err)
	assert.True(t, back.Pricing.DefaultPrice.IsZero())
	assert.True(t, back.Pricing.Rules[0].Price.IsZero())
	assert.False(t, back.Pricing.Rules[0].Applies(daterange.MustParse("2030-12-25")))

	doc.Bookings[0].CheckOut = "07/05/2030"
	_, err = doc.toAggregate()
	assert.Error(t, err)
}

func TestListFilter(t *testing.T) {
	filter := listFilter(domainproperties.ListParams{City: "Galle", OnlyActive: true, MinGuests: 4}.Normalized())
	assert.Equal(t, bson.M{
		"active":            true,
		"location.city_key": "galle",
		"max_guests":        bson.M{"$gte": 4},
	}, filter)
	assert.Empty(t, listFilter(domainproperties.ListParams{}.Normalized()))
}

// Runs against a replica set when MONGO_TEST_URI is set, since transactions
// need one.
func TestRepositories_Mongo(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx := context.Background()
	client, err := New(ctx, uri, "coastalstay_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.DB.Drop(context.Background())
		_ = client.Close(context.Background())
	})
	require.NoError(t, client.EnsureIndexes(ctx))

	repo := NewPropertyRepository(client.DB)
	p := sampleProperty(t, "p1", "Fort Villa")
	require.NoError(t, repo.Save(ctx, p))
	assert.Equal(t, int64(1), p.Version)

	first, err := repo.BySlug(ctx, "FORT-VILLA")
	require.NoError(t, err)
	second, err := repo.ByID(ctx, "p1")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))
	assert.ErrorIs(t, repo.Save(ctx, second), domainproperties.ErrConcurrentWrite)
	assert.ErrorIs(t, repo.Save(ctx, sampleProperty(t, "p2", "Fort Villa")), domainproperties.ErrSlugTaken)

	factory := NewFactory(client.DB)
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	txCtx := unit.(*Unit).InjectContext(ctx)
	stored, err := unit.Properties().ByID(txCtx, "p1")
	require.NoError(t, err)
	stored.Publish(now)
	require.NoError(t, unit.Properties().Save(txCtx, stored))
	require.NoError(t, unit.Rollback(txCtx))

	reloaded, err := repo.ByID(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, reloaded.Active)
	assert.Equal(t, int64(2), reloaded.Version)
}
