package properties

import (
	"context"
	"errors"
	"strings"
	"time"

	"coastalstay/internal/app/dto"
	handlersupport "coastalstay/internal/app/handlers/support"
	"coastalstay/internal/app/queries"
	"coastalstay/internal/app/uow"
	"coastalstay/internal/domain/booking"
	domainproperties "coastalstay/internal/domain/properties"
	"coastalstay/internal/domain/shared/daterange"
)

const calendarKey = "properties.calendar"

var (
	ErrInvalidMonth = errors.New("properties: month must be YYYY-MM")
	ErrInvalidRole  = errors.New("properties: role must be check_in or check_out")
)

// CalendarQuery asks for one month of one side of the date picker. Other is the
// date already chosen on the opposite side; Min defaults to today.
type CalendarQuery struct {
	Ref   string
	Month string
	Role  string
	Other string
	Min   string
}

func (q CalendarQuery) Key() string { return calendarKey }

type CalendarHandler struct {
	UoWFactory uow.UoWFactory
	Clock      handlersupport.Clock
}

func (h *CalendarHandler) Handle(ctx context.Context, q CalendarQuery) (dto.CalendarMonth, error) {
	today := h.Clock.Today()
	month := today.Time()
	if raw := strings.TrimSpace(q.Month); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			return dto.CalendarMonth{}, ErrInvalidMonth
		}
		month = parsed
	}
	role := booking.RoleCheckIn
	if strings.TrimSpace(q.Role) != "" {
		parsed, ok := booking.ParseRole(strings.ToLower(strings.TrimSpace(q.Role)))
		if !ok {
			return dto.CalendarMonth{}, ErrInvalidRole
		}
		role = parsed
	}
	other, err := daterange.ParseDate(q.Other)
	if err != nil && strings.TrimSpace(q.Other) != "" {
		return dto.CalendarMonth{}, err
	}
	minDate := today
	if strings.TrimSpace(q.Min) != "" {
		parsed, err := daterange.ParseDate(q.Min)
		if err != nil {
			return dto.CalendarMonth{}, err
		}
		if parsed.After(today) {
			minDate = parsed
		}
	}

	unit, execCtx, done, err := handlersupport.ReadUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.CalendarMonth{}, err
	}
	defer done()
	property, err := handlersupport.LoadProperty(execCtx, unit.Properties(), q.Ref)
	if err != nil {
		return dto.CalendarMonth{}, err
	}
	if !property.Active {
		return dto.CalendarMonth{}, domainproperties.ErrNotFound
	}

	picker := property.DatePicker(minDate).Picker(role)
	picker.OtherDate = other
	cells := picker.Month(month.Year(), month.Month())
	return dto.MapCalendarMonth(string(property.ID), month.Format("2006-01"), picker, cells), nil
}

var _ queries.Handler[CalendarQuery, dto.CalendarMonth] = (*CalendarHandler)(nil)
