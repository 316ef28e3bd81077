package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coastalstay/internal/domain/shared/daterange"
)

func d(raw string) daterange.CalendarDate { return daterange.MustParse(raw) }

func block(id, in, out string) BookingDate {
	return BookingDate{ID: id, CheckIn: d(in), CheckOut: d(out)}
}

func TestNewBookingDate(t *testing.T) {
	b, err := NewBookingDate(CreateParams{ID: "b1", CheckIn: d("2024-02-10"), CheckOut: d("2024-02-15"), GuestName: "  Ana  "})
	require.NoError(t, err)
	assert.Equal(t, "Ana", b.GuestName)
	assert.Equal(t, 5, b.Nights())

	_, err = NewBookingDate(CreateParams{ID: "b2", CheckIn: d("2024-02-10"), CheckOut: d("2024-02-10")})
	assert.ErrorIs(t, err, ErrInvalidBookingRange)
	_, err = NewBookingDate(CreateParams{ID: "b3", CheckIn: d("2024-02-11"), CheckOut: d("2024-02-10")})
	assert.ErrorIs(t, err, ErrInvalidBookingRange)
	_, err = NewBookingDate(CreateParams{CheckIn: d("2024-02-10"), CheckOut: d("2024-02-11")})
	assert.ErrorIs(t, err, ErrBookingIDRequired)
}

func TestValidateSet(t *testing.T) {
	assert.NoError(t, ValidateSet(nil))
	assert.NoError(t, ValidateSet([]BookingDate{block("a", "2024-02-10", "2024-02-15"), block("b", "2024-02-16", "2024-02-18")}))
	assert.ErrorIs(t, ValidateSet([]BookingDate{block("a", "2024-02-10", "2024-02-15"), block("b", "2024-02-15", "2024-02-18")}), ErrOverlappingBooking)
	assert.ErrorIs(t, ValidateSet([]BookingDate{block("a", "2024-02-10", "2024-02-15"), block("a", "2024-03-10", "2024-03-15")}), ErrDuplicateBookingID)
	assert.ErrorIs(t, ValidateSet([]BookingDate{block("a", "2024-02-10", "2024-02-10")}), ErrInvalidBookingRange)
}

func TestPicker_IsDateBooked(t *testing.T) {
	p := Picker{Role: RoleCheckIn, Bookings: []BookingDate{block("b1", "2024-02-10", "2024-02-15")}}

	assert.True(t, p.IsDateBooked(d("2024-02-10")))
	assert.True(t, p.IsDateBooked(d("2024-02-12")))
	assert.True(t, p.IsDateBooked(d("2024-02-15")), "checkout day stays unavailable")
	assert.False(t, p.IsDateBooked(d("2024-02-16")))
	assert.False(t, p.IsDateBooked(d("2024-02-09")))
}

func TestPicker_IsDateDisabled(t *testing.T) {
	tests := []struct {
		name   string
		picker Picker
		day    string
		want   bool
	}{
		{name: "before min", picker: Picker{Role: RoleCheckIn, MinDate: d("2024-02-01")}, day: "2024-01-31", want: true},
		{name: "on min", picker: Picker{Role: RoleCheckIn, MinDate: d("2024-02-01")}, day: "2024-02-01", want: false},
		{name: "no min no other", picker: Picker{Role: RoleCheckOut}, day: "1999-01-01", want: false},
		{name: "check-in after check-out", picker: Picker{Role: RoleCheckIn, OtherDate: d("2024-02-20")}, day: "2024-02-21", want: true},
		{name: "check-in on check-out", picker: Picker{Role: RoleCheckIn, OtherDate: d("2024-02-20")}, day: "2024-02-20", want: false},
		{name: "check-in before check-out", picker: Picker{Role: RoleCheckIn, OtherDate: d("2024-02-20")}, day: "2024-02-19", want: false},
		{name: "check-out on check-in", picker: Picker{Role: RoleCheckOut, OtherDate: d("2024-02-20")}, day: "2024-02-20", want: true},
		{name: "check-out before check-in", picker: Picker{Role: RoleCheckOut, OtherDate: d("2024-02-20")}, day: "2024-02-19", want: true},
		{name: "check-out after check-in", picker: Picker{Role: RoleCheckOut, OtherDate: d("2024-02-20")}, day: "2024-02-21", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.picker.IsDateDisabled(d(tt.day)))
		})
	}
}

func TestPicker_IsDateUnavailableForRange(t *testing.T) {
	bookings := []BookingDate{block("b1", "2024-02-10", "2024-02-15")}

	checkOut := Picker{Role: RoleCheckOut, OtherDate: d("2024-02-05"), Bookings: bookings}
	assert.False(t, checkOut.IsDateUnavailableForRange(d("2024-02-09")))
	assert.True(t, checkOut.IsDateUnavailableForRange(d("2024-02-20")), "stay would jump over the booking")
	assert.False(t, checkOut.IsDateBooked(d("2024-02-20")))

	checkIn := Picker{Role: RoleCheckIn, OtherDate: d("2024-02-20"), Bookings: bookings}
	assert.True(t, checkIn.IsDateUnavailableForRange(d("2024-02-01")))
	assert.False(t, checkIn.IsDateUnavailableForRange(d("2024-02-16")))

	noOther := Picker{Role: RoleCheckIn, Bookings: bookings}
	assert.False(t, noOther.IsDateUnavailableForRange(d("2024-02-01")))
}

func TestPicker_Month(t *testing.T) {
	p := Picker{
		Role:      RoleCheckOut,
		MinDate:   d("2024-02-03"),
		OtherDate: d("2024-02-05"),
		Bookings:  []BookingDate{block("b1", "2024-02-10", "2024-02-15")},
	}
	cells := p.Month(2024, time.February)
	require.Len(t, cells, 29)
	assert.Equal(t, "2024-02-01", cells[0].Date.String())
	assert.Equal(t, "2024-02-29", cells[28].Date.String())

	byDay := func(day int) DayCell { return cells[day-1] }
	assert.True(t, byDay(2).Disabled)
	assert.True(t, byDay(5).Disabled)
	assert.True(t, byDay(6).Selectable)
	assert.True(t, byDay(9).Selectable)
	assert.True(t, byDay(10).Booked)
	assert.False(t, byDay(10).Selectable)
	assert.True(t, byDay(20).UnavailableForRange)
	assert.False(t, byDay(20).Booked)

	assert.Len(t, Picker{}.Month(2023, time.December), 31)
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("check-in")
	assert.True(t, ok)
	assert.Equal(t, RoleCheckIn, r)
	r, ok = ParseRole("check_out")
	assert.True(t, ok)
	assert.Equal(t, RoleCheckOut, r)
	_, ok = ParseRole("both")
	assert.False(t, ok)
}
