package middleware

import (
	"context"

	"coastalstay/internal/app/commands"
	"coastalstay/internal/app/queries"
)

// Authorizer decides whether the actor in ctx may send message.
type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

// Validator checks struct tags on commands and queries before they reach a
// handler.
type Validator interface {
	Validate(ctx context.Context, message any) error
}

type guard func(ctx context.Context, message any) error

// Authorization rejects commands the actor in ctx may not run.
func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return commandGuard(a.Authorize)
}

// QueryAuthorization is Authorization for queries.
func QueryAuthorization(a Authorizer) QueryMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return queryGuard(a.Authorize)
}

// Validation rejects malformed commands before any handler runs.
func Validation(v Validator) CommandMiddleware {
	if v == nil {
		panic("middleware: validator required")
	}
	return commandGuard(v.Validate)
}

func QueryValidation(v Validator) QueryMiddleware {
	if v == nil {
		panic("middleware: validator required")
	}
	return queryGuard(v.Validate)
}

func commandGuard(check guard) CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := check(ctx, cmd); err != nil {
				return nil, err
			}
			return next.Dispatch(ctx, cmd)
		})
	}
}

func queryGuard(check guard) QueryMiddleware {
	return func(next queries.Bus) queries.Bus {
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := check(ctx, q); err != nil {
				return nil, err
			}
			return next.Ask(ctx, q)
		})
	}
}
