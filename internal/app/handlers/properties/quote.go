package properties

import (
	"context"
	"errors"
	"fmt"

	"coastalstay/internal/app/dto"
	handlersupport "coastalstay/internal/app/handlers/support"
	"coastalstay/internal/app/queries"
	"coastalstay/internal/app/uow"
	"coastalstay/internal/domain/booking"
	"coastalstay/internal/domain/pricing"
	domainproperties "coastalstay/internal/domain/properties"
	"coastalstay/internal/domain/shared/daterange"
)

const quoteKey = "properties.quote"

var ErrInvalidStay = errors.New("properties: check_in and check_out must be YYYY-MM-DD with check_out after check_in")

// MaxQuoteNights bounds one quote's breakdown.
const MaxQuoteNights = 366

type QuoteQuery struct {
	Ref      string
	CheckIn  string `validate:"required"`
	CheckOut string `validate:"required"`
}

func (q QuoteQuery) Key() string { return quoteKey }

type QuoteResult struct {
	dto.Quote
	Available bool   `json:"available"`
	Conflict  string `json:"conflict,omitempty"`
}

// QuoteHandler prices a stay against the property's rate card and reports
// whether the stay runs into an existing booking.
type QuoteHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *QuoteHandler) Handle(ctx context.Context, q QuoteQuery) (QuoteResult, error) {
	stay, err := daterange.ParseStay(q.CheckIn, q.CheckOut)
	if err != nil {
		return QuoteResult{}, fmt.Errorf("%w: %v", ErrInvalidStay, err)
	}
	if stay.Nights() > MaxQuoteNights {
		return QuoteResult{}, fmt.Errorf("%w: at most %d nights", ErrInvalidStay, MaxQuoteNights)
	}
	unit, execCtx, done, err := handlersupport.ReadUnit(ctx, h.UoWFactory)
	if err != nil {
		return QuoteResult{}, err
	}
	defer done()
	property, err := handlersupport.LoadProperty(execCtx, unit.Properties(), q.Ref)
	if err != nil {
		return QuoteResult{}, err
	}
	if !property.Active {
		return QuoteResult{}, domainproperties.ErrNotFound
	}

	result := pricing.CalculateStay(property.Pricing, stay)
	out := QuoteResult{
		Quote:     dto.MapQuote(string(property.ID), stay.CheckIn.String(), stay.CheckOut.String(), result),
		Available: true,
	}
	if other, ok := booking.Conflict(property.Bookings, stay.Span()); ok {
		out.Available = false
		out.Conflict = other.CheckIn.String() + "/" + other.CheckOut.String()
	}
	return out, nil
}

var _ queries.Handler[QuoteQuery, QuoteResult] = (*QuoteHandler)(nil)
