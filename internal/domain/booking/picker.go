package booking

import (
	"time"

	"coastalstay/internal/domain/shared/daterange"
)

// Role tells a picker which end of the stay it is choosing.
type Role string

const (
	RoleCheckIn  Role = "check_in"
	RoleCheckOut Role = "check_out"
)

// ParseRole accepts check_in/check_out and their common spellings.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleCheckIn, "checkin", "check-in":
		return RoleCheckIn, true
	case RoleCheckOut, "checkout", "check-out":
		return RoleCheckOut, true
	default:
		return "", false
	}
}

// Picker decides which days one side of a two-sided date picker may offer.
// OtherDate is the date already chosen on the opposite side, if any.
type Picker struct {
	Role      Role
	MinDate   daterange.CalendarDate
	OtherDate daterange.CalendarDate
	Bookings  []BookingDate
}

// IsDateDisabled covers the minimum date and ordering against the other side.
func (p Picker) IsDateDisabled(day daterange.CalendarDate) bool {
	if !p.MinDate.IsZero() && day.Before(p.MinDate) {
		return true
	}
	if p.OtherDate.IsZero() {
		return false
	}
	switch p.Role {
	case RoleCheckIn:
		return day.After(p.OtherDate)
	case RoleCheckOut:
		return !day.After(p.OtherDate)
	}
	return false
}

// IsDateBooked reports whether day falls in [CheckIn, CheckOut] of any booking.
func (p Picker) IsDateBooked(day daterange.CalendarDate) bool {
	_, ok := Conflict(p.Bookings, daterange.Span{Start: day, End: day})
	return ok
}

// IsDateUnavailableForRange blocks days that would make the whole stay run
// across a booking, even when neither end lands on a booked day.
func (p Picker) IsDateUnavailableForRange(day daterange.CalendarDate) bool {
	if p.OtherDate.IsZero() {
		return false
	}
	candidate := daterange.Span{Start: day, End: p.OtherDate}
	if p.Role == RoleCheckOut {
		candidate = daterange.Span{Start: p.OtherDate, End: day}
	}
	_, ok := Conflict(p.Bookings, candidate)
	return ok
}

// IsSelectable reports whether day passes every picker rule.
func (p Picker) IsSelectable(day daterange.CalendarDate) bool {
	if day.IsZero() {
		return false
	}
	return !p.IsDateDisabled(day) && !p.IsDateBooked(day) && !p.IsDateUnavailableForRange(day)
}

// DayCell is one rendered day of a month view.
type DayCell struct {
	Date                daterange.CalendarDate
	Disabled            bool
	Booked              bool
	UnavailableForRange bool
	Selectable          bool
}

// Month renders every day of the given month.
func (p Picker) Month(year int, month time.Month) []DayCell {
	first := daterange.NewDate(year, month, 1)
	days := first.DaysUntil(daterange.NewDate(year, month+1, 1))
	cells := make([]DayCell, 0, days)
	for i := 0; i < days; i++ {
		day := first.AddDays(i)
		cell := DayCell{
			Date:                day,
			Disabled:            p.IsDateDisabled(day),
			Booked:              p.IsDateBooked(day),
			UnavailableForRange: p.IsDateUnavailableForRange(day),
		}
		cell.Selectable = !cell.Disabled && !cell.Booked && !cell.UnavailableForRange
		cells = append(cells, cell)
	}
	return cells
}
