package inquiries

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"coastalstay/internal/app/commands"
	"coastalstay/internal/app/dto"
	handlersupport "coastalstay/internal/app/handlers/support"
	"coastalstay/internal/app/middleware"
	"coastalstay/internal/app/outbox"
	"coastalstay/internal/app/uow"
	"coastalstay/internal/domain/booking"
	domaininquiries "coastalstay/internal/domain/inquiries"
	domainproperties "coastalstay/internal/domain/properties"
	"coastalstay/internal/domain/shared/daterange"
)

const submitInquiryKey = "inquiries.submit"

// SubmitInquiryCommand carries one of the public forms. Booking inquiries name
// a property and a stay; partner inquiries name a company.
type SubmitInquiryCommand struct {
	Kind            string `json:"kind" validate:"omitempty,oneof=contact booking partner"`
	Name            string `json:"name" validate:"required,max=120"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"max=32"`
	Property        string `json:"property_id"`
	CheckIn         string `json:"check_in"`
	CheckOut        string `json:"check_out"`
	Guests          int    `json:"guests" validate:"gte=0,lte=50"`
	Message         string `json:"message" validate:"max=4000"`
	Company         string `json:"company" validate:"max=120"`
	IdempotencyKeyV string `json:"-"`
}

func (c SubmitInquiryCommand) Key() string            { return submitInquiryKey }
func (c SubmitInquiryCommand) IdempotencyKey() string { return c.IdempotencyKeyV }
func (c SubmitInquiryCommand) ResultPrototype() any   { return &dto.InquiryReceipt{} }

type SubmitInquiryHandler struct {
	Logger      *slog.Logger
	Outbox      outbox.Outbox
	Encoder     outbox.EventEncoder
	Clock       handlersupport.Clock
	PhoneRegion string
}

func (h *SubmitInquiryHandler) Handle(ctx context.Context, cmd SubmitInquiryCommand) (*dto.InquiryReceipt, error) {
	unit, err := uow.Require(ctx)
	if err != nil {
		return nil, err
	}
	params := domaininquiries.SubmitParams{
		ID:          domaininquiries.ID(uuid.NewString()),
		Kind:        cmd.Kind,
		Name:        cmd.Name,
		Email:       cmd.Email,
		Phone:       cmd.Phone,
		PhoneRegion: h.PhoneRegion,
		Guests:      cmd.Guests,
		Message:     cmd.Message,
		Company:     cmd.Company,
		Now:         h.Clock.Now(),
	}
	if cmd.CheckIn != "" || cmd.CheckOut != "" {
		stay, err := daterange.ParseStay(cmd.CheckIn, cmd.CheckOut)
		if err != nil {
			return nil, err
		}
		params.CheckIn, params.CheckOut = stay.CheckIn, stay.CheckOut
	}
	if cmd.Property != "" {
		property, err := handlersupport.LoadProperty(ctx, unit.Properties(), cmd.Property)
		if err != nil {
			return nil, err
		}
		if !property.Active {
			return nil, domainproperties.ErrNotFound
		}
		params.PropertyID = property.ID
		if !params.CheckIn.IsZero() {
			span := daterange.Stay{CheckIn: params.CheckIn, CheckOut: params.CheckOut}.Span()
			if other, ok := booking.Conflict(property.Bookings, span); ok {
				return nil, fmt.Errorf("%w: %s", booking.ErrOverlappingBooking, other.CheckIn)
			}
		}
	}

	inquiry, err := domaininquiries.NewInquiry(params)
	if err != nil {
		return nil, err
	}
	if err := unit.Inquiries().Save(ctx, inquiry); err != nil {
		return nil, err
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, inquiry); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("inquiry submitted", "inquiry_id", inquiry.ID, "kind", inquiry.Kind, "property_id", inquiry.PropertyID)
	}
	return &dto.InquiryReceipt{ID: string(inquiry.ID), Kind: string(inquiry.Kind), CreatedAt: inquiry.CreatedAt}, nil
}

var (
	_ commands.Handler[SubmitInquiryCommand, *dto.InquiryReceipt] = (*SubmitInquiryHandler)(nil)
	_ middleware.IdempotentCommand                                = SubmitInquiryCommand{}
)
