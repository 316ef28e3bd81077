// Package queries mirrors commands for reads. Query handlers never write and
// run outside the transaction middleware.
package queries

import (
	"context"
	"errors"
	"fmt"
)

// Query is a read request routed through the bus.
type Query interface {
	Key() string
}

// Handler handles a query and returns its result.
type Handler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

// HandlerFunc adapts a function, typically a thin wrapper that reuses a
// public handler for an admin query.
type HandlerFunc[Q Query, R any] func(ctx context.Context, query Q) (R, error)

// Handle calls f(ctx, query).
func (f HandlerFunc[Q, R]) Handle(ctx context.Context, query Q) (R, error) {
	return f(ctx, query)
}

// Bus answers queries, usually through a middleware chain.
type Bus interface {
	Ask(ctx context.Context, query Query) (any, error)
}

var (
	ErrHandlerNotFound = errors.New("queries: handler not found")
	ErrInvalidQuery    = errors.New("queries: invalid query for handler")
	ErrResultType      = errors.New("queries: result type mismatch")
)

// Ask sends query through bus and asserts the result type. A nil result
// comes back as the zero R.
func Ask[Q Query, R any](ctx context.Context, bus Bus, query Q) (R, error) {
	var zero R
	res, err := bus.Ask(ctx, query)
	if err != nil || res == nil {
		return zero, err
	}
	value, ok := res.(R)
	if !ok {
		return zero, fmt.Errorf("%w: %s returned %T, want %T", ErrResultType, query.Key(), res, zero)
	}
	return value, nil
}
