package queries

import (
	"context"
	"fmt"
	"maps"
	"slices"
)

type route func(ctx context.Context, query Query) (any, error)

// InMemoryBus is filled during bootstrap and read-only afterwards.
type InMemoryBus struct {
	routes map[string]route
}

// NewInMemoryBus creates an empty bus.
func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{routes: make(map[string]route)}
}

// Ask runs the handler registered under query.Key().
func (b *InMemoryBus) Ask(ctx context.Context, query Query) (any, error) {
	if query == nil {
		return nil, ErrInvalidQuery
	}
	r, ok := b.routes[query.Key()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, query.Key())
	}
	return r(ctx, query)
}

// Keys lists registered query keys in sorted order.
func (b *InMemoryBus) Keys() []string {
	return slices.Sorted(maps.Keys(b.routes))
}

// Register attaches handler under the key of Q. Registering a key twice
// panics.
func Register[Q Query, R any](bus *InMemoryBus, handler Handler[Q, R]) {
	var zero Q
	key := zero.Key()
	if key == "" {
		panic(fmt.Sprintf("queries: %T has an empty key", zero))
	}
	if _, dup := bus.routes[key]; dup {
		panic("queries: duplicate registration for " + key)
	}
	bus.routes[key] = func(ctx context.Context, raw Query) (any, error) {
		query, ok := raw.(Q)
		if !ok {
			return nil, fmt.Errorf("%w: %s got %T", ErrInvalidQuery, key, raw)
		}
		return handler.Handle(ctx, query)
	}
}
