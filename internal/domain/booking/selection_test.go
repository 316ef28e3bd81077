package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelection_CheckInClearsStaleCheckOut(t *testing.T) {
	s := Selection{CheckOut: d("2024-02-18")}
	s.SelectCheckIn(d("2024-02-20"))
	assert.Equal(t, "2024-02-20", s.CheckIn.String())
	assert.True(t, s.CheckOut.IsZero())

	s = Selection{CheckOut: d("2024-02-20")}
	s.SelectCheckIn(d("2024-02-20"))
	assert.True(t, s.CheckOut.IsZero(), "same-day check-out is cleared too")

	s = Selection{CheckOut: d("2024-02-25")}
	s.SelectCheckIn(d("2024-02-20"))
	assert.Equal(t, "2024-02-25", s.CheckOut.String())
}

func TestSelection_CheckOutClearsStaleCheckIn(t *testing.T) {
	s := Selection{CheckIn: d("2024-02-20")}
	s.SelectCheckOut(d("2024-02-18"))
	assert.True(t, s.CheckIn.IsZero())
	assert.Equal(t, "2024-02-18", s.CheckOut.String())

	s = Selection{CheckIn: d("2024-02-20")}
	s.SelectCheckOut(d("2024-02-22"))
	stay, ok := s.Stay()
	require.True(t, ok)
	assert.Equal(t, 2, stay.Nights())
}

func TestDatePicker_Select(t *testing.T) {
	dp := DatePicker{
		MinDate:  d("2024-02-01"),
		Bookings: []BookingDate{block("b1", "2024-02-10", "2024-02-15")},
	}

	assert.False(t, dp.Select(RoleCheckIn, d("2024-01-31")), "before min date")
	assert.False(t, dp.Select(RoleCheckIn, d("2024-02-12")), "booked")
	assert.True(t, dp.Select(RoleCheckIn, d("2024-02-05")))

	assert.False(t, dp.Select(RoleCheckOut, d("2024-02-05")), "same day as check-in")
	assert.False(t, dp.Select(RoleCheckOut, d("2024-02-18")), "runs across the booking")
	assert.True(t, dp.Select(RoleCheckOut, d("2024-02-09")))

	stay, ok := dp.Selection.Stay()
	require.True(t, ok)
	assert.Equal(t, 4, stay.Nights())

	assert.False(t, dp.Select(Role("sideways"), d("2024-02-06")))
	_, ok = Selection{}.Stay()
	assert.False(t, ok)
}
