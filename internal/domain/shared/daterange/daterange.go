package daterange

import "errors"

var (
	ErrInvalidRange = errors.New("daterange: checkout must be after checkin")
)

// Stay represents the nights of a visit: a half-open interval [CheckIn, CheckOut).
type Stay struct {
	CheckIn  CalendarDate
	CheckOut CalendarDate
}

// NewStay builds a validated stay.
func NewStay(checkIn, checkOut CalendarDate) (Stay, error) {
	s := Stay{CheckIn: checkIn, CheckOut: checkOut}
	if err := s.Validate(); err != nil {
		return Stay{}, err
	}
	return s, nil
}

// ParseStay parses both ends and validates the result.
func ParseStay(checkIn, checkOut string) (Stay, error) {
	in, err := ParseDate(checkIn)
	if err != nil {
		return Stay{}, err
	}
	out, err := ParseDate(checkOut)
	if err != nil {
		return Stay{}, err
	}
	return NewStay(in, out)
}

// Validate requires both dates and a checkout after checkin.
func (s Stay) Validate() error {
	if s.CheckIn.IsZero() || s.CheckOut.IsZero() {
		return ErrInvalidRange
	}
	if !s.CheckOut.After(s.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

// Nights is the whole-day difference; zero or negative for inverted stays.
func (s Stay) Nights() int {
	if s.CheckIn.IsZero() || s.CheckOut.IsZero() {
		return 0
	}
	return s.CheckIn.DaysUntil(s.CheckOut)
}

// Dates lists every night of the stay in ascending order.
func (s Stay) Dates() []CalendarDate {
	n := s.Nights()
	if n <= 0 {
		return nil
	}
	out := make([]CalendarDate, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, s.CheckIn.AddDays(i))
	}
	return out
}

// Overlaps reports whether the two stays share a night.
func (s Stay) Overlaps(other Stay) bool {
	return s.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(s.CheckOut)
}

// Span returns the closed interval [CheckIn, CheckOut], checkout day included.
func (s Stay) Span() Span {
	return Span{Start: s.CheckIn, End: s.CheckOut}
}

// Span is a closed interval of calendar dates, both ends inclusive.
type Span struct {
	Start CalendarDate
	End   CalendarDate
}

// Contains reports whether d lies within the span, ends included.
func (s Span) Contains(d CalendarDate) bool {
	return !d.Before(s.Start) && !d.After(s.End)
}

// Intersects reports whether the spans share at least one day.
func (s Span) Intersects(other Span) bool {
	return !s.Start.After(other.End) && !s.End.Before(other.Start)
}

// Merge joins overlapping or adjacent spans; ok is false otherwise.
func (s Span) Merge(other Span) (Span, bool) {
	if !(s.Intersects(other) || s.End.AddDays(1).Equal(other.Start) || other.End.AddDays(1).Equal(s.Start)) {
		return Span{}, false
	}
	start := s.Start
	if other.Start.Before(start) {
		start = other.Start
	}
	end := s.End
	if other.End.After(end) {
		end = other.End
	}
	return Span{Start: start, End: end}, true
}
