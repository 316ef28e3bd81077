package properties

import (
	"context"

	"coastalstay/internal/app/dto"
	handlersupport "coastalstay/internal/app/handlers/support"
	"coastalstay/internal/app/queries"
	"coastalstay/internal/app/uow"
	domainproperties "coastalstay/internal/domain/properties"
	domainuser "coastalstay/internal/domain/user"
)

const (
	detailKey      = "properties.detail"
	adminDetailKey = "admin.properties.detail"
)

// DetailQuery looks a property up by id or slug.
type DetailQuery struct {
	Ref string
}

func (q DetailQuery) Key() string { return detailKey }

type AdminDetailQuery struct {
	Ref string
}

func (q AdminDetailQuery) Key() string                   { return adminDetailKey }
func (q AdminDetailQuery) RequiredRole() domainuser.Role { return domainuser.RoleEditor }

type DetailHandler struct {
	UoWFactory uow.UoWFactory
	Clock      handlersupport.Clock
}

// Handle hides unpublished properties from visitors.
func (h *DetailHandler) Handle(ctx context.Context, q DetailQuery) (dto.PropertyDetail, error) {
	property, err := h.load(ctx, q.Ref)
	if err != nil {
		return dto.PropertyDetail{}, err
	}
	if !property.Active {
		return dto.PropertyDetail{}, domainproperties.ErrNotFound
	}
	return dto.MapPropertyDetail(property, h.Clock.Today()), nil
}

func (h *DetailHandler) HandleAdmin(ctx context.Context, q AdminDetailQuery) (dto.AdminPropertyDetail, error) {
	property, err := h.load(ctx, q.Ref)
	if err != nil {
		return dto.AdminPropertyDetail{}, err
	}
	return dto.MapAdminPropertyDetail(property, h.Clock.Today()), nil
}

func (h *DetailHandler) load(ctx context.Context, ref string) (*domainproperties.Property, error) {
	unit, execCtx, done, err := handlersupport.ReadUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer done()
	return handlersupport.LoadProperty(execCtx, unit.Properties(), ref)
}

func AdminDetailHandler(h *DetailHandler) queries.HandlerFunc[AdminDetailQuery, dto.AdminPropertyDetail] {
	return h.HandleAdmin
}

var _ queries.Handler[DetailQuery, dto.PropertyDetail] = (*DetailHandler)(nil)
