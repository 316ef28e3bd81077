package dto

import (
	"coastalstay/internal/domain/booking"
)

// CalendarMonth is one month of the date picker for one side of the stay.
type CalendarMonth struct {
	PropertyID string        `json:"property_id"`
	Month      string        `json:"month"`
	Role       string        `json:"role"`
	MinDate    string        `json:"min_date,omitempty"`
	OtherDate  string        `json:"other_date,omitempty"`
	Days       []CalendarDay `json:"days"`
}

type CalendarDay struct {
	Date                string `json:"date"`
	Disabled            bool   `json:"disabled"`
	Booked              bool   `json:"booked"`
	UnavailableForRange bool   `json:"unavailable_for_range"`
	Selectable          bool   `json:"selectable"`
}

func MapCalendarMonth(propertyID, month string, picker booking.Picker, cells []booking.DayCell) CalendarMonth {
	days := make([]CalendarDay, 0, len(cells))
	for _, c := range cells {
		days = append(days, CalendarDay{
			Date:                c.Date.String(),
			Disabled:            c.Disabled,
			Booked:              c.Booked,
			UnavailableForRange: c.UnavailableForRange,
			Selectable:          c.Selectable,
		})
	}
	out := CalendarMonth{
		PropertyID: propertyID,
		Month:      month,
		Role:       string(picker.Role),
		Days:       days,
	}
	if !picker.MinDate.IsZero() {
		out.MinDate = picker.MinDate.String()
	}
	if !picker.OtherDate.IsZero() {
		out.OtherDate = picker.OtherDate.String()
	}
	return out
}
