package properties

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	handlersupport "coastalstay/internal/app/handlers/support"
	"coastalstay/internal/app/uow"
	"coastalstay/internal/domain/booking"
	"coastalstay/internal/domain/pricing"
	domainproperties "coastalstay/internal/domain/properties"
	"coastalstay/internal/domain/shared/daterange"
	"coastalstay/internal/infra/storage/memory"
)

var fixedNow = time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)

func clock() handlersupport.Clock {
	return func() time.Time { return fixedNow }
}

type fixture struct {
	factory memory.Factory
	outbox  *memory.Outbox
	writer  Writer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{factory: memory.NewFactory(), outbox: memory.NewOutbox(nil)}
	f.writer = Writer{Outbox: f.outbox, Clock: clock()}

	p, err := domainproperties.NewProperty(domainproperties.CreateParams{
		ID:        "villa-1",
		Name:      "Palm Villa",
		MaxGuests: 6,
		Bedrooms:  3,
		Pricing: &pricing.PropertyPricing{
			Currency:     "USD",
			DefaultPrice: decimal.NewFromInt(100),
			Rules: []pricing.Rule{{
				ID:        "peak",
				Price:     decimal.NewFromInt(150),
				StartDate: daterange.MustParse("2030-06-10"),
				EndDate:   daterange.MustParse("2030-06-11"),
			}},
		},
		Now: fixedNow,
	})
	require.NoError(t, err)
	b, err := booking.NewBookingDate(booking.CreateParams{
		ID:       "b1",
		CheckIn:  daterange.MustParse("2030-06-20"),
		CheckOut: daterange.MustParse("2030-06-25"),
	})
	require.NoError(t, err)
	require.NoError(t, p.AddBooking(b, fixedNow))
	p.Publish(fixedNow)
	require.NoError(t, f.factory.PropertiesRepo.Save(context.Background(), p))
	return f
}

// writeCtx opens a unit the way the transaction middleware does.
func (f *fixture) writeCtx(t *testing.T) context.Context {
	t.Helper()
	unit, err := f.factory.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	return uow.Bind(context.Background(), unit)
}

func TestQueryHandler_PricesStay(t *testing.T) {
	f := newFixture(t)
	h := &QuoteHandler{UoWFactory: f.factory}

	res, err := h.Handle(context.Background(), QuoteQuery{Ref: "palm-villa", CheckIn: "2030-06-09", CheckOut: "2030-06-12"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Nights)
	assert.Equal(t, 400.0, res.TotalPrice)
	assert.True(t, res.HasSpecialPricing)
	assert.True(t, res.Available)
	require.Len(t, res.Breakdown, 3)
	assert.Equal(t, "peak", res.Breakdown[1].RuleID)
}

func TestQueryHandler_ReportsConflict(t *testing.T) {
	f := newFixture(t)
	h := &QuoteHandler{UoWFactory: f.factory}

	tests := []struct {
		name      string
		checkIn   string
		checkOut  string
		available bool
	}{
		{name: "before booking", checkIn: "2030-06-15", checkOut: "2030-06-19", available: true},
		{name: "checkout on booked check-in", checkIn: "2030-06-18", checkOut: "2030-06-20", available: false},
		{name: "check-in on booked checkout", checkIn: "2030-06-25", checkOut: "2030-06-27", available: false},
		{name: "spans booking", checkIn: "2030-06-19", checkOut: "2030-06-26", available: false},
		{name: "after booking", checkIn: "2030-06-26", checkOut: "2030-06-28", available: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.Handle(context.Background(), QuoteQuery{Ref: "villa-1", CheckIn: tt.checkIn, CheckOut: tt.checkOut})
			require.NoError(t, err)
			assert.Equal(t, tt.available, res.Available)
			if !tt.available {
				assert.Equal(t, "2030-06-20/2030-06-25", res.Conflict)
			}
		})
	}
}

func TestQueryHandler_InvalidStay(t *testing.T) {
	f := newFixture(t)
	h := &QuoteHandler{UoWFactory: f.factory}
	_, err := h.Handle(context.Background(), QuoteQuery{Ref: "villa-1", CheckIn: "2030-06-12", CheckOut: "2030-06-12"})
	assert.ErrorIs(t, err, ErrInvalidStay)
	_, err = h.Handle(context.Background(), QuoteQuery{Ref: "villa-1", CheckIn: "2000-01-01", CheckOut: "2400-01-01"})
	assert.ErrorIs(t, err, ErrInvalidStay)
	assert.ErrorContains(t, err, "at most 366 nights")
	res, err := h.Handle(context.Background(), QuoteQuery{Ref: "villa-1", CheckIn: "2030-01-01", CheckOut: "2031-01-02"})
	require.NoError(t, err)
	assert.Equal(t, 366, res.Nights)
	_, err = h.Handle(context.Background(), QuoteQuery{Ref: "nope", CheckIn: "2030-06-12", CheckOut: "2030-06-13"})
	assert.ErrorIs(t, err, domainproperties.ErrNotFound)
}

func TestCalendarHandler_CheckOutMonth(t *testing.T) {
	f := newFixture(t)
	h := &CalendarHandler{UoWFactory: f.factory, Clock: clock()}

	month, err := h.Handle(context.Background(), CalendarQuery{Ref: "villa-1", Month: "2030-06", Role: "check_out", Other: "2030-06-15"})
	require.NoError(t, err)
	require.Len(t, month.Days, 30)
	assert.Equal(t, "check_out", month.Role)
	assert.Equal(t, "2030-06-01", month.MinDate)

	day := func(n int) bool { return month.Days[n-1].Selectable }
	assert.False(t, day(15), "same day as check-in")
	assert.True(t, day(16))
	assert.True(t, day(19))
	assert.True(t, month.Days[19].Booked, "booked check-in day")
	assert.True(t, month.Days[26].UnavailableForRange, "stay would run across the booking")
	assert.False(t, day(27))
}

func TestCalendarHandler_Validation(t *testing.T) {
	f := newFixture(t)
	h := &CalendarHandler{UoWFactory: f.factory, Clock: clock()}

	_, err := h.Handle(context.Background(), CalendarQuery{Ref: "villa-1", Month: "June"})
	assert.ErrorIs(t, err, ErrInvalidMonth)
	_, err = h.Handle(context.Background(), CalendarQuery{Ref: "villa-1", Role: "middle"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	month, err := h.Handle(context.Background(), CalendarQuery{Ref: "villa-1", Month: "2030-06", Min: "2029-01-01"})
	require.NoError(t, err)
	assert.Equal(t, "2030-06-01", month.MinDate, "min never moves before today")
}

func TestCalendarHandler_TodayFollowsLocalMidnight(t *testing.T) {
	f := newFixture(t)
	colombo := time.FixedZone("Asia/Colombo", 5*60*60+30*60)
	h := &CalendarHandler{UoWFactory: f.factory, Clock: func() time.Time {
		return time.Date(2030, 6, 2, 0, 30, 0, 0, colombo)
	}}

	month, err := h.Handle(context.Background(), CalendarQuery{Ref: "villa-1", Month: "2030-06"})
	require.NoError(t, err)
	assert.Equal(t, "2030-06-02", month.MinDate)
	assert.True(t, month.Days[0].Disabled, "yesterday in Colombo")
	assert.True(t, month.Days[1].Selectable)
}

func TestCatalogHandler_HidesDrafts(t *testing.T) {
	f := newFixture(t)
	draft, err := domainproperties.NewProperty(domainproperties.CreateParams{ID: "draft", Name: "Draft Cottage", MaxGuests: 2, Now: fixedNow})
	require.NoError(t, err)
	require.NoError(t, f.factory.PropertiesRepo.Save(context.Background(), draft))

	h := &CatalogHandler{UoWFactory: f.factory, Clock: clock()}
	public, err := h.Handle(context.Background(), CatalogQuery{})
	require.NoError(t, err)
	require.Len(t, public.Items, 1)
	assert.Equal(t, "palm-villa", public.Items[0].Slug)

	admin, err := h.HandleAdmin(context.Background(), AdminCatalogQuery{})
	require.NoError(t, err)
	assert.Len(t, admin.Items, 2)

	detail := &DetailHandler{UoWFactory: f.factory, Clock: clock()}
	_, err = detail.Handle(context.Background(), DetailQuery{Ref: "draft"})
	assert.ErrorIs(t, err, domainproperties.ErrNotFound)
	_, err = detail.HandleAdmin(context.Background(), AdminDetailQuery{Ref: "draft-cottage"})
	assert.NoError(t, err)
}

func TestCreatePropertyHandler(t *testing.T) {
	f := newFixture(t)
	h := &CreatePropertyHandler{Writer: f.writer}

	res, err := h.Handle(f.writeCtx(t), CreatePropertyCommand{Payload: PropertyPayload{Name: "Reef House", MaxGuests: 4}})
	require.NoError(t, err)
	assert.Equal(t, "reef-house", res.Slug)
	assert.Equal(t, int64(1), res.Version)

	pending := f.outbox.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "property.created", pending[0].Name)

	_, err = h.Handle(f.writeCtx(t), CreatePropertyCommand{Payload: PropertyPayload{Name: "Reef House", MaxGuests: 4}})
	assert.ErrorIs(t, err, domainproperties.ErrSlugTaken)
}

func TestUpdatePropertyHandler_StaleVersion(t *testing.T) {
	f := newFixture(t)
	h := &UpdatePropertyHandler{Writer: f.writer}

	_, err := h.Handle(f.writeCtx(t), UpdatePropertyCommand{Ref: "villa-1", ExpectedVersion: 7, Payload: PropertyPayload{Name: "Palm Villa", MaxGuests: 6}})
	assert.ErrorIs(t, err, domainproperties.ErrConcurrentWrite)

	res, err := h.Handle(f.writeCtx(t), UpdatePropertyCommand{Ref: "villa-1", ExpectedVersion: 1, Payload: PropertyPayload{Name: "Palm Villa Deluxe", MaxGuests: 8}})
	require.NoError(t, err)
	assert.Equal(t, "palm-villa", res.Slug)
	assert.Equal(t, 8, res.MaxGuests)
	assert.Equal(t, int64(2), res.Version)
}

func TestBookingHandlers(t *testing.T) {
	f := newFixture(t)
	add := &AddBookingHandler{Writer: f.writer}

	_, err := add.Handle(f.writeCtx(t), AddBookingCommand{Ref: "villa-1", Booking: BookingPayload{
		CheckIn:  daterange.MustParse("2030-06-25"),
		CheckOut: daterange.MustParse("2030-06-28"),
	}})
	assert.ErrorIs(t, err, booking.ErrOverlappingBooking)

	res, err := add.Handle(f.writeCtx(t), AddBookingCommand{Ref: "villa-1", Booking: BookingPayload{
		ID:        "b2",
		CheckIn:   daterange.MustParse("2030-06-26"),
		CheckOut:  daterange.MustParse("2030-06-28"),
		GuestName: "Nimal",
	}})
	require.NoError(t, err)
	assert.Len(t, res.Bookings, 2)

	remove := &RemoveBookingHandler{Writer: f.writer}
	res, err = remove.Handle(f.writeCtx(t), RemoveBookingCommand{Ref: "villa-1", BookingID: "b1"})
	require.NoError(t, err)
	require.Len(t, res.Bookings, 1)
	assert.Equal(t, "b2", res.Bookings[0].ID)

	_, err = remove.Handle(f.writeCtx(t), RemoveBookingCommand{Ref: "villa-1", BookingID: "b1"})
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)
}

func TestReplaceBookingsHandler(t *testing.T) {
	f := newFixture(t)
	h := &ReplaceBookingsHandler{Writer: f.writer}

	_, err := h.Handle(f.writeCtx(t), ReplaceBookingsCommand{Ref: "villa-1", Bookings: []BookingPayload{
		{ID: "x", CheckIn: daterange.MustParse("2030-07-01"), CheckOut: daterange.MustParse("2030-07-05")},
		{ID: "y", CheckIn: daterange.MustParse("2030-07-05"), CheckOut: daterange.MustParse("2030-07-08")},
	}})
	assert.ErrorIs(t, err, booking.ErrOverlappingBooking)

	res, err := h.Handle(f.writeCtx(t), ReplaceBookingsCommand{Ref: "villa-1", Bookings: []BookingPayload{
		{ID: "x", CheckIn: daterange.MustParse("2030-07-01"), CheckOut: daterange.MustParse("2030-07-05")},
	}})
	require.NoError(t, err)
	require.Len(t, res.Bookings, 1)
	assert.Equal(t, "x", res.Bookings[0].ID)

	var names []string
	for _, rec := range f.outbox.Pending() {
		names = append(names, rec.Name)
	}
	assert.Equal(t, []string{"property.bookings_replaced"}, names)
}

func TestBookingsExportHandler(t *testing.T) {
	f := newFixture(t)
	h := &BookingsExportHandler{UoWFactory: f.factory}

	file, err := h.Handle(context.Background(), BookingsExportQuery{Ref: "villa-1"})
	require.NoError(t, err)
	assert.Equal(t, "palm-villa-bookings.xlsx", file.Filename)

	xl, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer xl.Close()
	rows, err := xl.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "check_in", rows[0][1])
	assert.Equal(t, []string{"b1", "2030-06-20", "2030-06-25", "5"}, rows[1][:4])
	assert.Equal(t, "500", rows[1][7])
}

type stubStorage struct {
	key  string
	size int64
}

func (s *stubStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	s.key = key
	s.size = size
	return "https://cdn.example/" + key, nil
}

func TestUploadPhotoHandler(t *testing.T) {
	f := newFixture(t)
	storage := &stubStorage{}
	h := &UploadPhotoHandler{Writer: f.writer, Storage: storage}

	_, err := h.Handle(f.writeCtx(t), UploadPhotoCommand{Ref: "villa-1", ContentType: "image/gif", Reader: strings.NewReader("x"), Size: 1})
	assert.ErrorIs(t, err, ErrPhotoType)
	_, err = h.Handle(f.writeCtx(t), UploadPhotoCommand{Ref: "villa-1", ContentType: "image/png", Reader: strings.NewReader("x"), Size: maxPhotoBytes + 1})
	assert.ErrorIs(t, err, ErrPhotoTooLarge)

	res, err := h.Handle(f.writeCtx(t), UploadPhotoCommand{Ref: "villa-1", ContentType: "image/png", Reader: strings.NewReader("png"), Size: 3})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(storage.key, "properties/villa-1/"))
	assert.True(t, strings.HasSuffix(storage.key, ".png"))
	assert.Equal(t, int64(3), storage.size)
	require.NotEmpty(t, res.Images)
	assert.Equal(t, "https://cdn.example/"+storage.key, res.Images[len(res.Images)-1])
}
