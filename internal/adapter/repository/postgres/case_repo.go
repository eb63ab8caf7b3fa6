package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/caseledger/internal/domain"
	"github.com/iho/caseledger/internal/infrastructure/postgres/generated"
	"github.com/iho/caseledger/internal/usecase"
)

// maxListLimit caps unbounded listings.
const maxListLimit = 1000

// CaseRepository implements usecase.CaseRepository.
type CaseRepository struct {
	queries *generated.Queries
}

// NewCaseRepository creates a new CaseRepository.
func NewCaseRepository(pool *pgxpool.Pool) *CaseRepository {
	return newCaseRepository(pool)
}

func newCaseRepository(db generated.DBTX) *CaseRepository {
	return &CaseRepository{queries: generated.New(db)}
}

// Create inserts a new case.
func (r *CaseRepository) Create(ctx context.Context, tx usecase.Transaction, c *domain.Case) error {
	return queriesFor(tx, r.queries).CreateCase(ctx, generated.CreateCaseParams{
		ID:               c.ID,
		PatientID:        c.PatientID,
		Kind:             c.Kind,
		Description:      c.Description,
		GrossPrice:       c.GrossPrice,
		FixedAmountA:     c.FixedAmountA,
		FixedAmountB:     c.FixedAmountB,
		DistributionMode: string(c.DistributionMode),
		FrozenPercentA:   nullDecimalToNumeric(c.FrozenPercentA),
		FrozenPercentB:   nullDecimalToNumeric(c.FrozenPercentB),
		Status:           string(c.Status),
		StartedAt:        timeToPgTimestamptz(c.StartedAt),
		ClosedAt:         timePtrToPgTimestamptz(c.ClosedAt),
		CreatedAt:        timeToPgTimestamptz(c.CreatedAt),
		UpdatedAt:        timeToPgTimestamptz(c.UpdatedAt),
	})
}

// GetByID retrieves a case by ID.
func (r *CaseRepository) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	row, err := r.queries.GetCaseByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCaseNotFound
		}

		return nil, err
	}

	return rowToCase(row), nil
}

// GetByIDForUpdate retrieves a case by ID with a FOR UPDATE lock.
func (r *CaseRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Case, error) {
	row, err := queriesFor(tx, r.queries).GetCaseByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCaseNotFound
		}

		return nil, err
	}

	return rowToCase(row), nil
}

// Update writes every mutable column of c.
func (r *CaseRepository) Update(ctx context.Context, tx usecase.Transaction, c *domain.Case) error {
	n, err := queriesFor(tx, r.queries).UpdateCase(ctx, generated.UpdateCaseParams{
		ID:               c.ID,
		PatientID:        c.PatientID,
		Kind:             c.Kind,
		Description:      c.Description,
		GrossPrice:       c.GrossPrice,
		FixedAmountA:     c.FixedAmountA,
		FixedAmountB:     c.FixedAmountB,
		DistributionMode: string(c.DistributionMode),
		FrozenPercentA:   nullDecimalToNumeric(c.FrozenPercentA),
		FrozenPercentB:   nullDecimalToNumeric(c.FrozenPercentB),
		Status:           string(c.Status),
		StartedAt:        timeToPgTimestamptz(c.StartedAt),
		ClosedAt:         timePtrToPgTimestamptz(c.ClosedAt),
		UpdatedAt:        timeToPgTimestamptz(c.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrCaseNotFound
	}

	return nil
}

// Delete removes a case together with its payments and expenses.
func (r *CaseRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	q := queriesFor(tx, r.queries)

	if err := q.DeletePaymentsByCase(ctx, id); err != nil {
		return err
	}
	if err := q.DeleteExpensesByCase(ctx, id); err != nil {
		return err
	}

	n, err := q.DeleteCase(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrCaseNotFound
	}

	return nil
}

// List lists cases newest first.
func (r *CaseRepository) List(ctx context.Context, filter usecase.CaseFilter) ([]*domain.Case, error) {
	limit := filter.Limit
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := r.queries.ListCases(ctx, generated.ListCasesParams{
		PatientID:   filter.PatientID,
		Status:      string(filter.Status),
		IncludeVoid: filter.IncludeVoid,
		Limit:       int32(limit),
	})
	if err != nil {
		return nil, err
	}

	return rowsToCases(rows), nil
}

// ListStartedBefore lists every case started before cutoff.
func (r *CaseRepository) ListStartedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Case, error) {
	rows, err := r.queries.ListCasesStartedBefore(ctx, timeToPgTimestamptz(cutoff))
	if err != nil {
		return nil, err
	}

	return rowsToCases(rows), nil
}

// ListLegacyCandidates lists cases not stored as manual that carry fixed amounts.
func (r *CaseRepository) ListLegacyCandidates(ctx context.Context) ([]*domain.Case, error) {
	rows, err := r.queries.ListLegacyManualCandidates(ctx)
	if err != nil {
		return nil, err
	}

	return rowsToCases(rows), nil
}

// SetMode stores mode on every case in ids.
func (r *CaseRepository) SetMode(ctx context.Context, tx usecase.Transaction, ids []string, mode domain.DistributionMode, updatedAt time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	return queriesFor(tx, r.queries).SetCasesMode(ctx, generated.SetCasesModeParams{
		Ids:              ids,
		DistributionMode: string(mode),
		UpdatedAt:        timeToPgTimestamptz(updatedAt),
	})
}

func rowsToCases(rows []generated.Case) []*domain.Case {
	cases := make([]*domain.Case, 0, len(rows))
	for _, row := range rows {
		cases = append(cases, rowToCase(row))
	}
	return cases
}

func rowToCase(row generated.Case) *domain.Case {
	return &domain.Case{
		ID:               row.ID,
		PatientID:        row.PatientID,
		Kind:             row.Kind,
		Description:      row.Description,
		GrossPrice:       row.GrossPrice,
		FixedAmountA:     row.FixedAmountA,
		FixedAmountB:     row.FixedAmountB,
		DistributionMode: domain.DistributionMode(row.DistributionMode),
		FrozenPercentA:   numericToNullDecimal(row.FrozenPercentA),
		FrozenPercentB:   numericToNullDecimal(row.FrozenPercentB),
		Status:           domain.CaseStatus(row.Status),
		StartedAt:        row.StartedAt.Time,
		ClosedAt:         pgTimestamptzToTimePtr(row.ClosedAt),
		CreatedAt:        row.CreatedAt.Time,
		UpdatedAt:        row.UpdatedAt.Time,
	}
}
