package storage

import (
	"context"
	"errors"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const maxLoadAttempts = 5

// isBusy reports whether err is a transient lock held by another writer.
func isBusy(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return errors.Is(err, syscall.EBUSY) || errors.Is(err, syscall.EAGAIN)
}

func newLoadBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second
	return b
}

// withRetry runs op until it succeeds, fails with a non-transient error,
// or maxLoadAttempts is reached.
func withRetry[T any](ctx context.Context, log *zap.Logger, what string, op func() (T, error)) (T, error) {
	return backoff.Retry(ctx, func() (T, error) {
		v, err := op()
		if err != nil && !isBusy(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(newLoadBackOff()),
		backoff.WithMaxTries(maxLoadAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn("storage busy, retrying",
				zap.String("op", what),
				zap.Duration("backoff", next),
				zap.Error(err),
			)
		}),
	)
}
