package memory

import (
	"context"
	"errors"

	"coastalstay/internal/app/uow"
	domaininquiries "coastalstay/internal/domain/inquiries"
	domainproperties "coastalstay/internal/domain/properties"
	domainuser "coastalstay/internal/domain/user"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	PropertiesRepo domainproperties.Repository
	InquiriesRepo  domaininquiries.Repository
	StaffRepo      domainuser.Repository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// NewFactory builds a factory over fresh empty repositories.
func NewFactory() Factory {
	return Factory{
		PropertiesRepo: NewPropertyRepository(),
		InquiriesRepo:  NewInquiryRepository(),
		StaffRepo:      NewStaffRepository(),
	}
}

// Begin starts a lightweight transaction boundary. No isolation is provided;
// writes land immediately and Rollback does not undo them.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.PropertiesRepo == nil || f.InquiriesRepo == nil || f.StaffRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		properties: f.PropertiesRepo,
		inquiries:  f.InquiriesRepo,
		staff:      f.StaffRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
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
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}
