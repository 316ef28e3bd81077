package booking

import "coastalstay/internal/domain/shared/daterange"

// Selection is the pair of dates a visitor has picked so far.
type Selection struct {
	CheckIn  daterange.CalendarDate
	CheckOut daterange.CalendarDate
}

// SelectCheckIn sets the check-in and drops a check-out that is no longer after it.
func (s *Selection) SelectCheckIn(day daterange.CalendarDate) {
	s.CheckIn = day
	if !s.CheckOut.IsZero() && !s.CheckOut.After(day) {
		s.CheckOut = daterange.CalendarDate{}
	}
}

// SelectCheckOut sets the check-out and drops a check-in that is no longer before it.
func (s *Selection) SelectCheckOut(day daterange.CalendarDate) {
	s.CheckOut = day
	if !s.CheckIn.IsZero() && !s.CheckIn.Before(day) {
		s.CheckIn = daterange.CalendarDate{}
	}
}

// Stay returns the selected stay when both ends are set and form a valid range.
func (s Selection) Stay() (daterange.Stay, bool) {
	stay, err := daterange.NewStay(s.CheckIn, s.CheckOut)
	if err != nil {
		return daterange.Stay{}, false
	}
	return stay, true
}

// DatePicker ties a selection to the bookings and minimum date it must respect.
type DatePicker struct {
	MinDate   daterange.CalendarDate
	Bookings  []BookingDate
	Selection Selection
}

// Picker builds the evaluator for one side, using the other side as OtherDate.
func (d DatePicker) Picker(role Role) Picker {
	other := d.Selection.CheckOut
	if role == RoleCheckOut {
		other = d.Selection.CheckIn
	}
	return Picker{Role: role, MinDate: d.MinDate, OtherDate: other, Bookings: d.Bookings}
}

// Select applies day to the given side if that side may offer it. Days the
// picker would render disabled are ignored and false is returned.
func (d *DatePicker) Select(role Role, day daterange.CalendarDate) bool {
	if !d.Picker(role).IsSelectable(day) {
		return false
	}
	switch role {
	case RoleCheckIn:
		d.Selection.SelectCheckIn(day)
	case RoleCheckOut:
		d.Selection.SelectCheckOut(day)
	default:
		return false
	}
	return true
}
