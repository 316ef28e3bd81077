package booking

import (
	"errors"
	"fmt"
	"strings"

	"coastalstay/internal/domain/shared/daterange"
)

var (
	ErrInvalidBookingRange = errors.New("booking: check-out must be after check-in")
	ErrBookingIDRequired   = errors.New("booking: id is required")
	ErrOverlappingBooking  = errors.New("booking: dates overlap an existing booking")
	ErrBookingNotFound     = errors.New("booking: not found")
	ErrDuplicateBookingID  = errors.New("booking: id must be unique")
)

// BookingDate is a block of dates already taken on a property.
type BookingDate struct {
	ID        string                 `json:"id"`
	CheckIn   daterange.CalendarDate `json:"checkIn"`
	CheckOut  daterange.CalendarDate `json:"checkOut"`
	GuestName string                 `json:"guestName,omitempty"`
	Notes     string                 `json:"notes,omitempty"`
}

type CreateParams struct {
	ID        string
	CheckIn   daterange.CalendarDate
	CheckOut  daterange.CalendarDate
	GuestName string
	Notes     string
}

// NewBookingDate validates a new block. Zero-night blocks are rejected.
func NewBookingDate(params CreateParams) (BookingDate, error) {
	id := strings.TrimSpace(params.ID)
	if id == "" {
		return BookingDate{}, ErrBookingIDRequired
	}
	if _, err := daterange.NewStay(params.CheckIn, params.CheckOut); err != nil {
		return BookingDate{}, ErrInvalidBookingRange
	}
	return BookingDate{
		ID:        id,
		CheckIn:   params.CheckIn,
		CheckOut:  params.CheckOut,
		GuestName: strings.TrimSpace(params.GuestName),
		Notes:     strings.TrimSpace(params.Notes),
	}, nil
}

// Validate rejects bookings whose checkout is not after checkin.
func (b BookingDate) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return ErrBookingIDRequired
	}
	if _, err := daterange.NewStay(b.CheckIn, b.CheckOut); err != nil {
		return ErrInvalidBookingRange
	}
	return nil
}

// Span is the closed interval the booking makes unavailable. The checkout day
// is included: there is no same-day turnover.
func (b BookingDate) Span() daterange.Span {
	return daterange.Span{Start: b.CheckIn, End: b.CheckOut}
}

func (b BookingDate) known() bool {
	return !b.CheckIn.IsZero() && !b.CheckOut.IsZero()
}

// Nights is the number of nights the booking blocks.
func (b BookingDate) Nights() int {
	return daterange.Stay{CheckIn: b.CheckIn, CheckOut: b.CheckOut}.Nights()
}

// Conflict returns the first booking whose span intersects span.
func Conflict(bookings []BookingDate, span daterange.Span) (BookingDate, bool) {
	for _, b := range bookings {
		if b.known() && b.Span().Intersects(span) {
			return b, true
		}
	}
	return BookingDate{}, false
}

// ValidateSet checks every booking and that no two of them share a day.
func ValidateSet(bookings []BookingDate) error {
	seen := make(map[string]struct{}, len(bookings))
	for i, b := range bookings {
		if err := b.Validate(); err != nil {
			return err
		}
		if _, dup := seen[b.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateBookingID, b.ID)
		}
		seen[b.ID] = struct{}{}
		if other, ok := Conflict(bookings[i+1:], b.Span()); ok {
			return fmt.Errorf("%w: %s and %s", ErrOverlappingBooking, b.ID, other.ID)
		}
	}
	return nil
}
