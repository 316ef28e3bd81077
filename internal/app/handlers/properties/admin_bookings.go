package properties

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"coastalstay/internal/app/commands"
	"coastalstay/internal/app/dto"
	"coastalstay/internal/app/middleware"
	"coastalstay/internal/domain/booking"
	domainproperties "coastalstay/internal/domain/properties"
	"coastalstay/internal/domain/shared/daterange"
	domainuser "coastalstay/internal/domain/user"
)

const (
	addBookingKey      = "admin.properties.bookings.add"
	removeBookingKey   = "admin.properties.bookings.remove"
	replaceBookingsKey = "admin.properties.bookings.replace"
)

// BookingPayload is a booking as the admin panel submits it. An empty ID gets
// a generated one.
type BookingPayload struct {
	ID        string                 `json:"id"`
	CheckIn   daterange.CalendarDate `json:"check_in"`
	CheckOut  daterange.CalendarDate `json:"check_out"`
	GuestName string                 `json:"guest_name" validate:"max=120"`
	Notes     string                 `json:"notes" validate:"max=1000"`
}

func (p BookingPayload) toDomain() (booking.BookingDate, error) {
	id := strings.TrimSpace(p.ID)
	if id == "" {
		id = uuid.NewString()
	}
	return booking.NewBookingDate(booking.CreateParams{
		ID:        id,
		CheckIn:   p.CheckIn,
		CheckOut:  p.CheckOut,
		GuestName: p.GuestName,
		Notes:     p.Notes,
	})
}

type AddBookingCommand struct {
	Ref             string `validate:"required"`
	Booking         BookingPayload
	IdempotencyKeyV string
}

func (c AddBookingCommand) Key() string                   { return addBookingKey }
func (c AddBookingCommand) RequiredRole() domainuser.Role { return domainuser.RoleEditor }
func (c AddBookingCommand) IdempotencyKey() string        { return c.IdempotencyKeyV }
func (c AddBookingCommand) ResultPrototype() any          { return &dto.AdminPropertyDetail{} }

type AddBookingHandler struct {
	Writer
}

func (h *AddBookingHandler) Handle(ctx context.Context, cmd AddBookingCommand) (*dto.AdminPropertyDetail, error) {
	b, err := cmd.Booking.toDomain()
	if err != nil {
		return nil, err
	}
	result, err := h.apply(ctx, cmd.Ref, 0, func(p *domainproperties.Property) error {
		return p.AddBooking(b, h.Clock.Now())
	})
	if err != nil {
		return nil, err
	}
	h.log("booking added", "property_id", result.ID, "booking_id", b.ID, "check_in", b.CheckIn, "check_out", b.CheckOut)
	return result, nil
}

type RemoveBookingCommand struct {
	Ref       string `validate:"required"`
	BookingID string `validate:"required"`
}

func (c RemoveBookingCommand) Key() string                   { return removeBookingKey }
func (c RemoveBookingCommand) RequiredRole() domainuser.Role { return domainuser.RoleEditor }

type RemoveBookingHandler struct {
	Writer
}

func (h *RemoveBookingHandler) Handle(ctx context.Context, cmd RemoveBookingCommand) (*dto.AdminPropertyDetail, error) {
	return h.apply(ctx, cmd.Ref, 0, func(p *domainproperties.Property) error {
		return p.RemoveBooking(cmd.BookingID, h.Clock.Now())
	})
}

// ReplaceBookingsCommand swaps the full booking list in one write.
type ReplaceBookingsCommand struct {
	Ref             string `validate:"required"`
	ExpectedVersion int64
	Bookings        []BookingPayload `validate:"dive"`
}

func (c ReplaceBookingsCommand) Key() string                   { return replaceBookingsKey }
func (c ReplaceBookingsCommand) RequiredRole() domainuser.Role { return domainuser.RoleEditor }

type ReplaceBookingsHandler struct {
	Writer
}

func (h *ReplaceBookingsHandler) Handle(ctx context.Context, cmd ReplaceBookingsCommand) (*dto.AdminPropertyDetail, error) {
	list := make([]booking.BookingDate, 0, len(cmd.Bookings))
	for _, payload := range cmd.Bookings {
		b, err := payload.toDomain()
		if err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	result, err := h.apply(ctx, cmd.Ref, cmd.ExpectedVersion, func(p *domainproperties.Property) error {
		return p.ReplaceBookings(list, h.Clock.Now())
	})
	if err != nil {
		return nil, err
	}
	h.log("bookings replaced", "property_id", result.ID, "count", len(list))
	return result, nil
}

var (
	_ commands.Handler[AddBookingCommand, *dto.AdminPropertyDetail]      = (*AddBookingHandler)(nil)
	_ commands.Handler[RemoveBookingCommand, *dto.AdminPropertyDetail]   = (*RemoveBookingHandler)(nil)
	_ commands.Handler[ReplaceBookingsCommand, *dto.AdminPropertyDetail] = (*ReplaceBookingsHandler)(nil)
	_ middleware.IdempotentCommand                                       = AddBookingCommand{}
)
