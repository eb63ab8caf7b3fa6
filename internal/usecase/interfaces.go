package usecase

import (
	"context"
	"time"

	"github.com/iho/caseledger/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// CaseFilter narrows a case listing.
type CaseFilter struct {
	PatientID   string
	Status      domain.CaseStatus
	IncludeVoid bool
	Limit       int
}

// CaseRepository defines data access for cases.
type CaseRepository interface {
	Create(ctx context.Context, tx Transaction, c *domain.Case) error
	GetByID(ctx context.Context, id string) (*domain.Case, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Case, error)
	Update(ctx context.Context, tx Transaction, c *domain.Case) error
	Delete(ctx context.Context, tx Transaction, id string) error
	List(ctx context.Context, filter CaseFilter) ([]*domain.Case, error)
	// ListStartedBefore returns every case whose start precedes cutoff, any status.
	ListStartedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Case, error)
	// ListLegacyCandidates returns cases not stored as manual that carry a positive fixed amount.
	ListLegacyCandidates(ctx context.Context) ([]*domain.Case, error)
	SetMode(ctx context.Context, tx Transaction, ids []string, mode domain.DistributionMode, updatedAt time.Time) (int64, error)
}

// PaymentRepository defines data access for payments.
// List methods return payments ordered by date, then creation time, then id.
type PaymentRepository interface {
	Create(ctx context.Context, tx Transaction, p *domain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	Delete(ctx context.Context, tx Transaction, id string) error
	ExistsForCase(ctx context.Context, tx Transaction, caseID string) (bool, error)
	ListByCase(ctx context.Context, caseID string) ([]*domain.Payment, error)
	// ListByCasesBefore returns the payments of caseIDs dated before cutoff.
	ListByCasesBefore(ctx context.Context, caseIDs []string, cutoff time.Time) ([]*domain.Payment, error)
	// ListInRange returns every payment dated in [from, to).
	ListInRange(ctx context.Context, from, to time.Time) ([]*domain.Payment, error)
}

// ExpenseRepository defines data access for expenses.
type ExpenseRepository interface {
	Create(ctx context.Context, tx Transaction, e *domain.Expense) error
	GetByID(ctx context.Context, id string) (*domain.Expense, error)
	Delete(ctx context.Context, tx Transaction, id string) error
	ListByCase(ctx context.Context, caseID string) ([]*domain.Expense, error)
	ListByCasesBefore(ctx context.Context, caseIDs []string, cutoff time.Time) ([]*domain.Expense, error)
	ListInRange(ctx context.Context, from, to time.Time) ([]*domain.Expense, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so the request can be retried.
	Release(ctx context.Context, key string) error
}

// ReportRecorder receives report outcomes for monitoring.
type ReportRecorder interface {
	ObserveReport(kind domain.PeriodKind, cases int, skipped int, duration time.Duration)
	RecordInconsistency(caseID string)
	SetClosingBalances(payer, a, b int64)
}
