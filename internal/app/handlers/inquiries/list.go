package inquiries

import (
	"context"
	"time"

	"coastalstay/internal/app/dto"
	handlersupport "coastalstay/internal/app/handlers/support"
	"coastalstay/internal/app/queries"
	"coastalstay/internal/app/uow"
	domaininquiries "coastalstay/internal/domain/inquiries"
	domainproperties "coastalstay/internal/domain/properties"
	domainuser "coastalstay/internal/domain/user"
)

const listInquiriesKey = "admin.inquiries.list"

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type ListInquiriesQuery struct {
	Kind       string
	PropertyID string
	Since      time.Time
	Limit      int
}

func (q ListInquiriesQuery) Key() string                   { return listInquiriesKey }
func (q ListInquiriesQuery) RequiredRole() domainuser.Role { return domainuser.RoleAdmin }

type ListInquiriesHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListInquiriesHandler) Handle(ctx context.Context, q ListInquiriesQuery) ([]dto.Inquiry, error) {
	filter := domaininquiries.ListFilter{
		PropertyID: domainproperties.PropertyID(q.PropertyID),
		Since:      q.Since,
		Limit:      q.Limit,
	}
	if q.Kind != "" {
		kind, err := domaininquiries.ParseKind(q.Kind)
		if err != nil {
			return nil, err
		}
		filter.Kind = kind
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	unit, execCtx, done, err := handlersupport.ReadUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer done()
	list, err := unit.Inquiries().List(execCtx, filter)
	if err != nil {
		return nil, err
	}
	return dto.MapInquiries(list), nil
}

var _ queries.Handler[ListInquiriesQuery, []dto.Inquiry] = (*ListInquiriesHandler)(nil)
