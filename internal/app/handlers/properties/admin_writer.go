package properties

import (
	"context"
	"log/slog"

	"coastalstay/internal/app/dto"
	handlersupport "coastalstay/internal/app/handlers/support"
	"coastalstay/internal/app/outbox"
	"coastalstay/internal/app/uow"
	domainproperties "coastalstay/internal/domain/properties"
)

// Writer holds what every admin property command needs: the outbox that
// receives domain events and a clock.
type Writer struct {
	Logger  *slog.Logger
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Clock   handlersupport.Clock
}

// apply loads the property inside the open unit, runs change and saves it.
// expectedVersion of 0 skips the optimistic check.
func (w Writer) apply(ctx context.Context, ref string, expectedVersion int64, change func(p *domainproperties.Property) error) (*dto.AdminPropertyDetail, error) {
	unit, err := uow.Require(ctx)
	if err != nil {
		return nil, err
	}
	property, err := handlersupport.LoadProperty(ctx, unit.Properties(), ref)
	if err != nil {
		return nil, err
	}
	if expectedVersion > 0 && property.Version != expectedVersion {
		return nil, domainproperties.ErrVersionMismatch
	}
	if err := change(property); err != nil {
		return nil, err
	}
	return w.save(ctx, property)
}

func (w Writer) save(ctx context.Context, property *domainproperties.Property) (*dto.AdminPropertyDetail, error) {
	unit, err := uow.Require(ctx)
	if err != nil {
		return nil, err
	}
	if err := unit.Properties().Save(ctx, property); err != nil {
		return nil, err
	}
	if err := outbox.Drain(ctx, w.Outbox, w.Encoder, property); err != nil {
		return nil, err
	}
	result := dto.MapAdminPropertyDetail(property, w.Clock.Today())
	return &result, nil
}

func (w Writer) log(msg string, args ...any) {
	if w.Logger != nil {
		w.Logger.Info(msg, args...)
	}
}
