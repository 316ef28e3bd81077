package uow

import (
	"context"
	"errors"
)

var ErrUnitOfWorkMissing = errors.New("uow: no unit of work in context")

type ctxKey struct{}

// sessionCarrier is implemented by units whose repositories read a driver
// session from ctx, such as the mongo unit.
type sessionCarrier interface {
	InjectContext(ctx context.Context) context.Context
}

// Bind returns ctx carrying unit and, when the unit has one, its session.
func Bind(ctx context.Context, unit UnitOfWork) context.Context {
	if carrier, ok := unit.(sessionCarrier); ok {
		ctx = carrier.InjectContext(ctx)
	}
	return context.WithValue(ctx, ctxKey{}, unit)
}

// FromContext returns the unit bound by Bind, if any.
func FromContext(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(ctxKey{}).(UnitOfWork)
	return unit, ok && unit != nil
}

// Require is FromContext for code that only runs under the transaction
// middleware.
func Require(ctx context.Context) (UnitOfWork, error) {
	unit, ok := FromContext(ctx)
	if !ok {
		return nil, ErrUnitOfWorkMissing
	}
	return unit, nil
}
