package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

var fastRetries = RetrierConfig{
	MaxRetries:      2,
	InitialInterval: time.Millisecond,
	MaxInterval:     2 * time.Millisecond,
	MaxElapsedTime:  time.Second,
}

func TestRetrier_RetriesSerializationFailure(t *testing.T) {
	var codes []string
	r := NewRetrierWithConfig(fastRetries).OnRetry(func(code string) { codes = append(codes, code) })

	attempts := 0
	err := r.Retry(context.Background(), func() error {
		attempts++
		if attempts == 1 {
			return fmt.Errorf("update case: %w", &pgconn.PgError{Code: pgErrSerializationFailure})
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	if len(codes) != 1 || codes[0] != pgErrSerializationFailure {
		t.Fatalf("expected one retry notification for 40001, got %v", codes)
	}
}

func TestRetrier_DoesNotRetryDomainErrors(t *testing.T) {
	locked := errors.New("case locked")
	attempts := 0

	err := NewRetrierWithConfig(fastRetries).Retry(context.Background(), func() error {
		attempts++
		return locked
	})
	if !errors.Is(err, locked) {
		t.Fatalf("expected the original error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestRetrier_GivesUpAfterMaxRetries(t *testing.T) {
	attempts := 0
	err := NewRetrierWithConfig(fastRetries).Retry(context.Background(), func() error {
		attempts++
		return &pgconn.PgError{Code: pgErrDeadlock}
	})

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgErrDeadlock {
		t.Fatalf("expected deadlock error, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetrier_StopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := NewRetrier().Retry(ctx, func() error {
		attempts++
		return &pgconn.PgError{Code: pgErrLockNotAvailable}
	})
	if err == nil {
		t.Fatalf("expected an error")
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestRetryableCode(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{&pgconn.PgError{Code: pgErrDeadlock}, true},
		{&pgconn.PgError{Code: pgErrSerializationFailure}, true},
		{&pgconn.PgError{Code: pgErrLockNotAvailable}, true},
		{&pgconn.PgError{Code: "23505"}, false},
		{errors.New("other"), false},
	}

	for _, tt := range tests {
		if _, got := retryableCode(tt.err); got != tt.want {
			t.Errorf("retryableCode(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
