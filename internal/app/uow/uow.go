package uow

import (
	"context"

	domaininquiries "coastalstay/internal/domain/inquiries"
	domainproperties "coastalstay/internal/domain/properties"
	domainuser "coastalstay/internal/domain/user"
)

// UnitOfWork groups the repositories touched by one command.
type UnitOfWork interface {
	Properties() domainproperties.Repository
	Inquiries() domaininquiries.Repository
	Staff() domainuser.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts units of work.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions tunes one unit of work.
type TxOptions struct {
	ReadOnly bool
}
