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
	catalogKey      = "properties.catalog"
	adminCatalogKey = "admin.properties.list"
)

type CatalogQuery struct {
	Params domainproperties.ListParams
}

func (q CatalogQuery) Key() string { return catalogKey }

// AdminCatalogQuery lists drafts as well as published properties.
type AdminCatalogQuery struct {
	Params domainproperties.ListParams
}

func (q AdminCatalogQuery) Key() string                   { return adminCatalogKey }
func (q AdminCatalogQuery) RequiredRole() domainuser.Role { return domainuser.RoleEditor }

type CatalogHandler struct {
	UoWFactory uow.UoWFactory
	Clock      handlersupport.Clock
}

func (h *CatalogHandler) Handle(ctx context.Context, q CatalogQuery) (dto.PropertyCatalog, error) {
	params := q.Params
	params.OnlyActive = true
	return h.list(ctx, params)
}

func (h *CatalogHandler) HandleAdmin(ctx context.Context, q AdminCatalogQuery) (dto.PropertyCatalog, error) {
	return h.list(ctx, q.Params)
}

func (h *CatalogHandler) list(ctx context.Context, params domainproperties.ListParams) (dto.PropertyCatalog, error) {
	unit, execCtx, done, err := handlersupport.ReadUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PropertyCatalog{}, err
	}
	defer done()
	normalized := params.Normalized()
	result, err := unit.Properties().List(execCtx, normalized)
	if err != nil {
		return dto.PropertyCatalog{}, err
	}
	return dto.MapCatalog(result, normalized, h.Clock.Today()), nil
}

// AdminCatalogHandler adapts CatalogHandler to the admin query.
func AdminCatalogHandler(h *CatalogHandler) queries.HandlerFunc[AdminCatalogQuery, dto.PropertyCatalog] {
	return h.HandleAdmin
}

var _ queries.Handler[CatalogQuery, dto.PropertyCatalog] = (*CatalogHandler)(nil)
