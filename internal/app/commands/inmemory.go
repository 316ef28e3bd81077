package commands

import (
	"context"
	"fmt"
	"maps"
	"slices"
)

type route func(ctx context.Context, cmd Command) (any, error)

// InMemoryBus routes commands to handlers in process. Handlers are
// registered during bootstrap, before the bus is shared, so routing holds no
// lock.
type InMemoryBus struct {
	routes map[string]route
}

// NewInMemoryBus creates an empty bus.
func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{routes: make(map[string]route)}
}

// Dispatch runs the handler registered under cmd.Key().
func (b *InMemoryBus) Dispatch(ctx context.Context, cmd Command) (any, error) {
	if cmd == nil {
		return nil, ErrInvalidCommand
	}
	r, ok := b.routes[cmd.Key()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, cmd.Key())
	}
	return r(ctx, cmd)
}

// Keys lists registered command keys in sorted order.
func (b *InMemoryBus) Keys() []string {
	return slices.Sorted(maps.Keys(b.routes))
}

// Register attaches handler under the key of C. Registering a key twice
// panics.
func Register[C Command, R any](bus *InMemoryBus, handler Handler[C, R]) {
	var zero C
	key := zero.Key()
	if key == "" {
		panic(fmt.Sprintf("commands: %T has an empty key", zero))
	}
	if _, dup := bus.routes[key]; dup {
		panic("commands: duplicate registration for " + key)
	}
	bus.routes[key] = func(ctx context.Context, raw Command) (any, error) {
		cmd, ok := raw.(C)
		if !ok {
			return nil, fmt.Errorf("%w: %s got %T", ErrInvalidCommand, key, raw)
		}
		return handler.Handle(ctx, cmd)
	}
}
