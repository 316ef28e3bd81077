package properties

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"coastalstay/internal/app/commands"
	"coastalstay/internal/app/dto"
	"coastalstay/internal/app/middleware"
	"coastalstay/internal/domain/pricing"
	domainproperties "coastalstay/internal/domain/properties"
	domainuser "coastalstay/internal/domain/user"
)

const (
	createPropertyKey  = "admin.properties.create"
	updatePropertyKey  = "admin.properties.update"
	setPricingKey      = "admin.properties.pricing"
	publishPropertyKey = "admin.properties.publish"
)

type PropertyPayload struct {
	Slug        string                    `json:"slug"`
	Name        string                    `json:"name" validate:"required,max=120"`
	Summary     string                    `json:"summary" validate:"max=280"`
	Description string                    `json:"description"`
	Location    domainproperties.Location `json:"location"`
	Bedrooms    int                       `json:"bedrooms" validate:"gte=0"`
	Bathrooms   int                       `json:"bathrooms" validate:"gte=0"`
	MaxGuests   int                       `json:"max_guests" validate:"gte=1"`
	Amenities   []string                  `json:"amenities"`
	Featured    bool                      `json:"featured"`
}

func (p PropertyPayload) details() domainproperties.DetailsParams {
	return domainproperties.DetailsParams{
		Slug:        strings.ToLower(strings.TrimSpace(p.Slug)),
		Name:        p.Name,
		Summary:     p.Summary,
		Description: p.Description,
		Location:    p.Location,
		Bedrooms:    p.Bedrooms,
		Bathrooms:   p.Bathrooms,
		MaxGuests:   p.MaxGuests,
		Amenities:   p.Amenities,
		Featured:    p.Featured,
	}
}

type CreatePropertyCommand struct {
	Payload         PropertyPayload
	Pricing         *pricing.PropertyPricing
	IdempotencyKeyV string
}

func (c CreatePropertyCommand) Key() string                   { return createPropertyKey }
func (c CreatePropertyCommand) RequiredRole() domainuser.Role { return domainuser.RoleEditor }
func (c CreatePropertyCommand) IdempotencyKey() string        { return c.IdempotencyKeyV }
func (c CreatePropertyCommand) ResultPrototype() any          { return &dto.AdminPropertyDetail{} }

type CreatePropertyHandler struct {
	Writer
}

func (h *CreatePropertyHandler) Handle(ctx context.Context, cmd CreatePropertyCommand) (*dto.AdminPropertyDetail, error) {
	d := cmd.Payload.details()
	property, err := domainproperties.NewProperty(domainproperties.CreateParams{
		ID:          domainproperties.PropertyID(uuid.NewString()),
		Slug:        d.Slug,
		Name:        d.Name,
		Summary:     d.Summary,
		Description: d.Description,
		Location:    d.Location,
		Bedrooms:    d.Bedrooms,
		Bathrooms:   d.Bathrooms,
		MaxGuests:   d.MaxGuests,
		Amenities:   d.Amenities,
		Featured:    d.Featured,
		Pricing:     cmd.Pricing,
		Now:         h.Clock.Now(),
	})
	if err != nil {
		return nil, err
	}
	result, err := h.save(ctx, property)
	if err != nil {
		return nil, err
	}
	h.log("property created", "property_id", property.ID, "slug", property.Slug)
	return result, nil
}

type UpdatePropertyCommand struct {
	Ref             string `validate:"required"`
	ExpectedVersion int64
	Payload         PropertyPayload
}

func (c UpdatePropertyCommand) Key() string                   { return updatePropertyKey }
func (c UpdatePropertyCommand) RequiredRole() domainuser.Role { return domainuser.RoleEditor }

type UpdatePropertyHandler struct {
	Writer
}

func (h *UpdatePropertyHandler) Handle(ctx context.Context, cmd UpdatePropertyCommand) (*dto.AdminPropertyDetail, error) {
	return h.apply(ctx, cmd.Ref, cmd.ExpectedVersion, func(p *domainproperties.Property) error {
		return p.UpdateDetails(cmd.Payload.details(), h.Clock.Now())
	})
}

// SetPricingCommand replaces the whole rate card. Only admins may change rates.
type SetPricingCommand struct {
	Ref             string `validate:"required"`
	ExpectedVersion int64
	Pricing         pricing.PropertyPricing
}

func (c SetPricingCommand) Key() string                   { return setPricingKey }
func (c SetPricingCommand) RequiredRole() domainuser.Role { return domainuser.RoleAdmin }

type SetPricingHandler struct {
	Writer
}

func (h *SetPricingHandler) Handle(ctx context.Context, cmd SetPricingCommand) (*dto.AdminPropertyDetail, error) {
	result, err := h.apply(ctx, cmd.Ref, cmd.ExpectedVersion, func(p *domainproperties.Property) error {
		return p.SetPricing(cmd.Pricing, h.Clock.Now())
	})
	if err != nil {
		return nil, err
	}
	h.log("property pricing updated", "property_id", result.ID, "rules", len(cmd.Pricing.Rules))
	return result, nil
}

type PublishPropertyCommand struct {
	Ref     string `validate:"required"`
	Publish bool
}

func (c PublishPropertyCommand) Key() string                   { return publishPropertyKey }
func (c PublishPropertyCommand) RequiredRole() domainuser.Role { return domainuser.RoleAdmin }

type PublishPropertyHandler struct {
	Writer
}

func (h *PublishPropertyHandler) Handle(ctx context.Context, cmd PublishPropertyCommand) (*dto.AdminPropertyDetail, error) {
	return h.apply(ctx, cmd.Ref, 0, func(p *domainproperties.Property) error {
		if cmd.Publish {
			p.Publish(h.Clock.Now())
		} else {
			p.Unpublish(h.Clock.Now())
		}
		return nil
	})
}

var (
	_ commands.Handler[CreatePropertyCommand, *dto.AdminPropertyDetail]  = (*CreatePropertyHandler)(nil)
	_ commands.Handler[UpdatePropertyCommand, *dto.AdminPropertyDetail]  = (*UpdatePropertyHandler)(nil)
	_ commands.Handler[SetPricingCommand, *dto.AdminPropertyDetail]      = (*SetPricingHandler)(nil)
	_ commands.Handler[PublishPropertyCommand, *dto.AdminPropertyDetail] = (*PublishPropertyHandler)(nil)
	_ middleware.IdempotentCommand                                       = CreatePropertyCommand{}
)
