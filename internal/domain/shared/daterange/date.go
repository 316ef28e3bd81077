package daterange

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const layout = "2006-01-02"

var ErrInvalidDate = errors.New("daterange: date must be formatted as YYYY-MM-DD")

// CalendarDate is a day on the calendar with no time of day and no zone.
// The zero value means "unset".
type CalendarDate struct {
	t time.Time
}

// NewDate builds a date from its components; out-of-range values normalize like time.Date.
func NewDate(year int, month time.Month, day int) CalendarDate {
	return CalendarDate{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf takes the calendar date of t as seen in t's own location.
func DateOf(t time.Time) CalendarDate {
	if t.IsZero() {
		return CalendarDate{}
	}
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// Today returns the current local calendar date.
func Today() CalendarDate {
	return DateOf(time.Now())
}

// ParseDate accepts YYYY-MM-DD and timestamps that start with it (RFC3339);
// the time of day and any offset are dropped.
func ParseDate(raw string) (CalendarDate, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) > len(layout) && (raw[len(layout)] == 'T' || raw[len(layout)] == ' ') {
		raw = raw[:len(layout)]
	}
	t, err := time.Parse(layout, raw)
	if err != nil {
		return CalendarDate{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return CalendarDate{t: t}, nil
}

// MustParse panics on malformed input; meant for fixtures and tests.
func MustParse(raw string) CalendarDate {
	d, err := ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return d
}

func (d CalendarDate) IsZero() bool { return d.t.IsZero() }

func (d CalendarDate) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(layout)
}

func (d CalendarDate) Year() int             { return d.t.Year() }
func (d CalendarDate) Month() time.Month     { return d.t.Month() }
func (d CalendarDate) Day() int              { return d.t.Day() }
func (d CalendarDate) Weekday() time.Weekday { return d.t.Weekday() }

// Time returns midnight UTC of the date.
func (d CalendarDate) Time() time.Time { return d.t }

// AddDays moves d by n days. The zero date stays zero.
func (d CalendarDate) AddDays(n int) CalendarDate {
	if d.IsZero() {
		return d
	}
	return CalendarDate{t: d.t.AddDate(0, 0, n)}
}

const secondsPerDay = 24 * 60 * 60

// DaysUntil counts whole days from d to other; negative when other is earlier.
// Both sides are UTC midnights, so Unix seconds divide evenly and spans past
// the range of time.Duration still count correctly.
func (d CalendarDate) DaysUntil(other CalendarDate) int {
	return int((other.t.Unix() - d.t.Unix()) / secondsPerDay)
}

// Compare returns -1, 0 or +1 like time.Time.Compare.
func (d CalendarDate) Compare(other CalendarDate) int { return d.t.Compare(other.t) }
func (d CalendarDate) Before(other CalendarDate) bool { return d.t.Before(other.t) }
func (d CalendarDate) After(other CalendarDate) bool  { return d.t.After(other.t) }
func (d CalendarDate) Equal(other CalendarDate) bool  { return d.t.Equal(other.t) }

func (d CalendarDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *CalendarDate) UnmarshalText(text []byte) error {
	if len(strings.TrimSpace(string(text))) == 0 {
		*d = CalendarDate{}
		return nil
	}
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
