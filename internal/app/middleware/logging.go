package middleware

import (
	"context"
	"log/slog"
	"time"

	"coastalstay/internal/app/commands"
	"coastalstay/internal/app/queries"
)

// Observer receives one call per handled message.
type Observer interface {
	ObserveMessage(kind, key string, elapsed time.Duration, err error)
}

// Logging logs each command with its duration. Failures log at warn level.
func Logging(logger *slog.Logger, observer Observer) CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			start := time.Now()
			res, err := next.Dispatch(ctx, cmd)
			report(ctx, logger, observer, "command", cmd.Key(), time.Since(start), err)
			return res, err
		})
	}
}

func QueryLogging(logger *slog.Logger, observer Observer) QueryMiddleware {
	return func(next queries.Bus) queries.Bus {
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			start := time.Now()
			res, err := next.Ask(ctx, q)
			report(ctx, logger, observer, "query", q.Key(), time.Since(start), err)
			return res, err
		})
	}
}

func report(ctx context.Context, logger *slog.Logger, observer Observer, kind, key string, elapsed time.Duration, err error) {
	if observer != nil {
		observer.ObserveMessage(kind, key, elapsed, err)
	}
	if logger == nil {
		return
	}
	if err != nil {
		logger.WarnContext(ctx, kind+" failed", "key", key, "duration_ms", elapsed.Milliseconds(), "error", err)
		return
	}
	logger.DebugContext(ctx, kind+" handled", "key", key, "duration_ms", elapsed.Milliseconds())
}
