package middleware

import (
	"context"
	"log/slog"

	"coastalstay/internal/app/commands"
	"coastalstay/internal/app/outbox"
)

// discarder is implemented by outboxes that buffer records until Flush.
type discarder interface {
	Discard(ctx context.Context)
}

// batcher is implemented by outboxes that buffer records per command.
type batcher interface {
	Begin(ctx context.Context) context.Context
}

// OutboxFlush hands a successful command's events to the outbox. The change
// itself is already written, so a failed flush is logged and the command
// still succeeds. Records buffered by a failed command are discarded.
func OutboxFlush(box outbox.Outbox, logger *slog.Logger) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if b, ok := box.(batcher); ok {
				ctx = b.Begin(ctx)
			}
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				if d, ok := box.(discarder); ok {
					d.Discard(ctx)
				}
				return nil, err
			}
			if err := box.Flush(ctx); err != nil && logger != nil {
				logger.WarnContext(ctx, "outbox flush failed", "command", cmd.Key(), "error", err)
			}
			return res, nil
		})
	}
}
