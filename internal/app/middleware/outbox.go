package middleware

import (
	"context"
	"log/slog"

	"stayhub/internal/app/commands"
)

// Flusher publishes outbox records that are already committed.
type Flusher interface {
	Flush(ctx context.Context) error
}

// OutboxFlush pushes committed events out right after a successful command.
// The command result stands even if the flush fails; the background worker retries.
func OutboxFlush(f Flusher, logger *slog.Logger) CommandMiddleware {
	if f == nil {
		panic("middleware: outbox flusher required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := f.Flush(ctx); err != nil {
				logger.Warn("outbox flush failed", "command", cmd.Key(), "error", err)
			}
			return res, nil
		})
	}
}
