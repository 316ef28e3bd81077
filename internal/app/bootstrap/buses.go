// Package bootstrap registers every command and query handler on the buses
// and wraps them in the middleware chain.
package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"coastalstay/internal/app/actor"
	"coastalstay/internal/app/commands"
	"coastalstay/internal/app/dto"
	inquiryapp "coastalstay/internal/app/handlers/inquiries"
	propertyapp "coastalstay/internal/app/handlers/properties"
	handlersupport "coastalstay/internal/app/handlers/support"
	"coastalstay/internal/app/middleware"
	"coastalstay/internal/app/outbox"
	"coastalstay/internal/app/policies"
	"coastalstay/internal/app/queries"
	"coastalstay/internal/app/uow"
	"coastalstay/internal/domain/booking"
	domaininquiries "coastalstay/internal/domain/inquiries"
	domainproperties "coastalstay/internal/domain/properties"
)

// replayableErrors are the failures of idempotent commands that keep their
// meaning when replayed from the idempotency store.
var replayableErrors = []error{
	booking.ErrOverlappingBooking,
	booking.ErrDuplicateBookingID,
	booking.ErrInvalidBookingRange,
	domainproperties.ErrNotFound,
	domainproperties.ErrSlugTaken,
	domainproperties.ErrNameRequired,
	domainproperties.ErrSlugInvalid,
	domaininquiries.ErrInvalidKind,
	domaininquiries.ErrInvalidPhone,
	domaininquiries.ErrPropertyRequired,
	domaininquiries.ErrGuestsRequired,
	domaininquiries.ErrCompanyRequired,
}

// Deps are the adapters the handlers are built from.
type Deps struct {
	UoW            uow.UoWFactory
	Outbox         outbox.Outbox
	Idempotency    middleware.IdempotencyStore
	IdempotencyTTL time.Duration
	Photos         policies.PhotoStorage
	Validator      middleware.Validator
	Observer       middleware.Observer
	Logger         *slog.Logger
	Clock          handlersupport.Clock
	PhoneRegion    string
	// EventHeaders stamps request metadata onto outgoing events.
	EventHeaders func(ctx context.Context) map[string]string
}

// Buses are the wired command and query buses.
type Buses struct {
	Commands commands.Bus
	Queries  queries.Bus
	// CommandKeys and QueryKeys list the registered handlers, for startup logs.
	CommandKeys []string
	QueryKeys   []string
}

// NewBuses registers every handler and wraps both buses in their middleware.
func NewBuses(d Deps) Buses {
	encoder := outbox.JSONEventEncoder{Headers: d.EventHeaders}
	writer := propertyapp.Writer{Logger: d.Logger, Outbox: d.Outbox, Encoder: encoder, Clock: d.Clock}

	commandBus := commands.NewInMemoryBus()
	commands.Register[propertyapp.CreatePropertyCommand, *dto.AdminPropertyDetail](commandBus, &propertyapp.CreatePropertyHandler{Writer: writer})
	commands.Register[propertyapp.UpdatePropertyCommand, *dto.AdminPropertyDetail](commandBus, &propertyapp.UpdatePropertyHandler{Writer: writer})
	commands.Register[propertyapp.SetPricingCommand, *dto.AdminPropertyDetail](commandBus, &propertyapp.SetPricingHandler{Writer: writer})
	commands.Register[propertyapp.PublishPropertyCommand, *dto.AdminPropertyDetail](commandBus, &propertyapp.PublishPropertyHandler{Writer: writer})
	commands.Register[propertyapp.AddBookingCommand, *dto.AdminPropertyDetail](commandBus, &propertyapp.AddBookingHandler{Writer: writer})
	commands.Register[propertyapp.RemoveBookingCommand, *dto.AdminPropertyDetail](commandBus, &propertyapp.RemoveBookingHandler{Writer: writer})
	commands.Register[propertyapp.ReplaceBookingsCommand, *dto.AdminPropertyDetail](commandBus, &propertyapp.ReplaceBookingsHandler{Writer: writer})
	commands.Register[propertyapp.UploadPhotoCommand, *dto.AdminPropertyDetail](commandBus, &propertyapp.UploadPhotoHandler{Writer: writer, Storage: d.Photos})
	commands.Register[inquiryapp.SubmitInquiryCommand, *dto.InquiryReceipt](commandBus, &inquiryapp.SubmitInquiryHandler{
		Logger:      d.Logger,
		Outbox:      d.Outbox,
		Encoder:     encoder,
		Clock:       d.Clock,
		PhoneRegion: d.PhoneRegion,
	})

	queryBus := queries.NewInMemoryBus()
	catalog := &propertyapp.CatalogHandler{UoWFactory: d.UoW, Clock: d.Clock}
	detail := &propertyapp.DetailHandler{UoWFactory: d.UoW, Clock: d.Clock}
	queries.Register[propertyapp.CatalogQuery, dto.PropertyCatalog](queryBus, catalog)
	queries.Register[propertyapp.AdminCatalogQuery, dto.PropertyCatalog](queryBus, propertyapp.AdminCatalogHandler(catalog))
	queries.Register[propertyapp.DetailQuery, dto.PropertyDetail](queryBus, detail)
	queries.Register[propertyapp.AdminDetailQuery, dto.AdminPropertyDetail](queryBus, propertyapp.AdminDetailHandler(detail))
	queries.Register[propertyapp.QuoteQuery, propertyapp.QuoteResult](queryBus, &propertyapp.QuoteHandler{UoWFactory: d.UoW})
	queries.Register[propertyapp.CalendarQuery, dto.CalendarMonth](queryBus, &propertyapp.CalendarHandler{UoWFactory: d.UoW, Clock: d.Clock})
	queries.Register[propertyapp.BookingsExportQuery, propertyapp.FileExport](queryBus, &propertyapp.BookingsExportHandler{UoWFactory: d.UoW})
	queries.Register[inquiryapp.ListInquiriesQuery, []dto.Inquiry](queryBus, &inquiryapp.ListInquiriesHandler{UoWFactory: d.UoW})

	authorizer := actor.RoleAuthorizer{}
	commandMW := []middleware.CommandMiddleware{middleware.Logging(d.Logger, d.Observer)}
	queryMW := []middleware.QueryMiddleware{middleware.QueryLogging(d.Logger, d.Observer)}
	if d.Validator != nil {
		commandMW = append(commandMW, middleware.Validation(d.Validator))
		queryMW = append(queryMW, middleware.QueryValidation(d.Validator))
	}
	commandMW = append(commandMW, middleware.Authorization(authorizer))
	queryMW = append(queryMW, middleware.QueryAuthorization(authorizer))
	if d.Idempotency != nil {
		commandMW = append(commandMW, middleware.Idempotency(d.Idempotency, middleware.IdempotencyOptions{
			TTL:   d.IdempotencyTTL,
			Known: replayableErrors,
		}))
	}
	commandMW = append(commandMW,
		middleware.OutboxFlush(d.Outbox, d.Logger),
		middleware.Transaction(d.UoW, nil, 0),
	)

	return Buses{
		Commands:    middleware.ChainCommands(commandBus, commandMW...),
		Queries:     middleware.ChainQueries(queryBus, queryMW...),
		CommandKeys: commandBus.Keys(),
		QueryKeys:   queryBus.Keys(),
	}
}
