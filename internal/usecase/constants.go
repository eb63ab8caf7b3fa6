package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyPending is stored under a key while the request holding it
	// is still running.
	IdempotencyPending = "processing"
)

// RemoveMode selects how a case is removed.
type RemoveMode string

const (
	// RemoveVoid keeps the case and its movements but marks it void.
	RemoveVoid RemoveMode = "void"
	// RemoveDelete deletes the case with its payments and expenses.
	RemoveDelete RemoveMode = "delete"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}
