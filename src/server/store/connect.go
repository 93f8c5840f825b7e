package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy controls how Connect waits for the backing store at startup.
type RetryPolicy struct {
	Delay       time.Duration // fixed wait between attempts
	MaxAttempts uint          // 0 retries until ctx is cancelled
}

// Connect calls open until it succeeds, waiting p.Delay between failed
// attempts. Every failure is logged. It gives up when ctx is done or after
// p.MaxAttempts attempts.
func Connect[T any](ctx context.Context, name string, p RetryPolicy, open func(context.Context) (T, error)) (T, error) {
	attempt := 0
	op := func() (T, error) {
		attempt++
		v, err := open(ctx)
		if err != nil {
			return v, err
		}
		if attempt > 1 {
			slog.Info("Connected after retry", "store", name, "attempts", attempt)
		}
		return v, nil
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(p.Delay)),
		backoff.WithMaxTries(p.MaxAttempts),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			slog.Warn("Store connection failed, retrying", "store", name, "attempt", attempt, "retry_in", next, "error", err)
		}),
	)
}
