package middleware

import (
	"context"
	"errors"

	"coastalstay/internal/app/commands"
	"coastalstay/internal/app/uow"
	domainproperties "coastalstay/internal/domain/properties"
)

const defaultTxAttempts = 3

// TxOptionsProvider picks transaction options per command.
type TxOptionsProvider func(cmd commands.Command) uow.TxOptions

// ReadOnlyCommand lets a command skip the write transaction.
type ReadOnlyCommand interface {
	ReadOnly() bool
}

// Transaction runs each command in its own unit of work. A command that loses
// an optimistic-concurrency race is retried on a fresh unit, so handlers
// reload the property and re-apply their change. Attempts below 1 mean 3.
func Transaction(factory uow.UoWFactory, optsProvider TxOptionsProvider, attempts int) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	if attempts < 1 {
		attempts = defaultTxAttempts
	}
	if optsProvider == nil {
		optsProvider = defaultTxOptions
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			var (
				res any
				err error
			)
			for range attempts {
				res, err = runInUnit(ctx, factory, optsProvider(cmd), next, cmd)
				if !retryable(err) || ctx.Err() != nil {
					break
				}
			}
			return res, err
		})
	}
}

func runInUnit(ctx context.Context, factory uow.UoWFactory, opts uow.TxOptions, next commands.Bus, cmd commands.Command) (any, error) {
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return nil, err
	}
	execCtx := uow.Bind(ctx, unit)

	res, err := next.Dispatch(execCtx, cmd)
	if err == nil {
		err = unit.Commit(execCtx)
	}
	if err != nil {
		_ = unit.Rollback(execCtx)
		return nil, err
	}
	return res, nil
}

func retryable(err error) bool {
	return errors.Is(err, domainproperties.ErrConcurrentWrite) && !errors.Is(err, domainproperties.ErrVersionMismatch)
}

func defaultTxOptions(cmd commands.Command) uow.TxOptions {
	ro, ok := cmd.(ReadOnlyCommand)
	return uow.TxOptions{ReadOnly: ok && ro.ReadOnly()}
}
