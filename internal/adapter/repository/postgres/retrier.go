package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// SQLSTATE codes that are safe to retry: the whole transaction is re-run.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrLockNotAvailable     = "55P03"
)

// RetrierConfig tunes the backoff of a Retrier.
type RetrierConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetrierConfig suits short case write transactions.
var DefaultRetrierConfig = RetrierConfig{
	MaxRetries:      3,
	InitialInterval: 50 * time.Millisecond,
	MaxInterval:     time.Second,
	MaxElapsedTime:  10 * time.Second,
}

// Retrier implements usecase.Retrier. It re-runs a transaction body when
// Postgres aborts it with a deadlock, serialization or lock timeout error.
type Retrier struct {
	cfg     RetrierConfig
	onRetry func(code string)
}

// NewRetrier creates a Retrier with DefaultRetrierConfig.
func NewRetrier() *Retrier {
	return NewRetrierWithConfig(DefaultRetrierConfig)
}

// NewRetrierWithConfig creates a Retrier with cfg.
func NewRetrierWithConfig(cfg RetrierConfig) *Retrier {
	return &Retrier{cfg: cfg, onRetry: func(string) {}}
}

// OnRetry registers fn to be called with the SQLSTATE of every retried error.
func (r *Retrier) OnRetry(fn func(code string)) *Retrier {
	if fn != nil {
		r.onRetry = fn
	}
	return r
}

// Retry runs operation until it succeeds, fails with a non-retryable error
// or the retry budget is spent.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.InitialInterval
	b.MaxInterval = r.cfg.MaxInterval
	b.MaxElapsedTime = r.cfg.MaxElapsedTime

	policy := backoff.WithContext(backoff.WithMaxRetries(b, r.cfg.MaxRetries), ctx)

	attempt := 0
	return backoff.RetryNotify(func() error {
		err := operation()
		if err == nil {
			return nil
		}
		if _, ok := retryableCode(err); !ok {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, wait time.Duration) {
		attempt++
		code, _ := retryableCode(err)
		r.onRetry(code)
		zerolog.Ctx(ctx).Warn().
			Err(err).
			Str("sqlstate", code).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("transaction aborted, retrying")
	})
}

// retryableCode returns the SQLSTATE of err when it warrants a retry.
func retryableCode(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	switch pgErr.Code {
	case pgErrDeadlock, pgErrSerializationFailure, pgErrLockNotAvailable:
		return pgErr.Code, true
	}
	return "", false
}
