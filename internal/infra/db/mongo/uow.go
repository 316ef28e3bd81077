package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"coastalstay/internal/app/uow"
	domaininquiries "coastalstay/internal/domain/inquiries"
	domainproperties "coastalstay/internal/domain/properties"
	domainuser "coastalstay/internal/domain/user"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	PropertiesRepo domainproperties.Repository
	InquiriesRepo  domaininquiries.Repository
	StaffRepo      domainuser.Repository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// NewFactory builds a factory over the mongo repositories of db.
func NewFactory(db *mongo.Database) Factory {
	return Factory{
		DB:             db,
		PropertiesRepo: NewPropertyRepository(db),
		InquiriesRepo:  NewInquiryRepository(db),
		StaffRepo:      NewStaffRepository(db),
	}
}

// Begin starts a MongoDB session and transaction. Read-only units skip the
// transaction and read with the collection defaults.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	unit := &Unit{
		properties: f.PropertiesRepo,
		inquiries:  f.InquiriesRepo,
		staff:      f.StaffRepo,
	}
	if opts.ReadOnly {
		return unit, nil
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	unit.session = session
	return unit, nil
}

// Unit is one mongo session transaction and the repositories bound to it.
type Unit struct {
	session mongo.Session

	properties domainproperties.Repository
	inquiries  domaininquiries.Repository
	staff      domainuser.Repository
}

func (u *Unit) Properties() domainproperties.Repository {
	return u.properties
}

func (u *Unit) Inquiries() domaininquiries.Repository {
	return u.inquiries
}

func (u *Unit) Staff() domainuser.Repository {
	return u.staff
}

func (u *Unit) Commit(ctx context.Context) error {
	if u.session == nil {
		return nil
	}
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	if u.session == nil {
		return nil
	}
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures the Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	if u.session == nil {
		return ctx
	}
	return mongo.NewSessionContext(ctx, u.session)
}

var _ uow.UoWFactory = Factory{}
