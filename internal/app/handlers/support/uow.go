package support

import (
	"context"

	"coastalstay/internal/app/uow"
)

// ReadUnit reuses the unit already bound to ctx or opens a read-only one.
// done is never nil; it releases only a unit ReadUnit opened itself.
func ReadUnit(ctx context.Context, factory uow.UoWFactory) (unit uow.UnitOfWork, execCtx context.Context, done func(), err error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, func() {}, nil
	}
	if factory == nil {
		return nil, ctx, func() {}, uow.ErrUnitOfWorkMissing
	}
	unit, err = factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, func() {}, err
	}
	execCtx = uow.Bind(ctx, unit)
	return unit, execCtx, func() { _ = unit.Rollback(execCtx) }, nil
}
