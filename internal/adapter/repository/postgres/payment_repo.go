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

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	queries *generated.Queries
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return newPaymentRepository(pool)
}

func newPaymentRepository(db generated.DBTX) *PaymentRepository {
	return &PaymentRepository{queries: generated.New(db)}
}

// Create inserts a payment.
func (r *PaymentRepository) Create(ctx context.Context, tx usecase.Transaction, p *domain.Payment) error {
	return queriesFor(tx, r.queries).CreatePayment(ctx, generated.CreatePaymentParams{
		ID:        p.ID,
		CaseID:    p.CaseID,
		Amount:    p.Amount,
		PaidAt:    timeToPgTimestamptz(p.Date),
		Method:    string(p.Method),
		Reference: p.Reference,
		Notes:     p.Notes,
		CreatedAt: timeToPgTimestamptz(p.CreatedAt),
	})
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	row, err := r.queries.GetPaymentByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}

		return nil, err
	}

	return rowToPayment(row), nil
}

// Delete removes a payment.
func (r *PaymentRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	n, err := queriesFor(tx, r.queries).DeletePayment(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrPaymentNotFound
	}

	return nil
}

// ExistsForCase reports whether any payment references caseID.
func (r *PaymentRepository) ExistsForCase(ctx context.Context, tx usecase.Transaction, caseID string) (bool, error) {
	return queriesFor(tx, r.queries).PaymentExistsForCase(ctx, caseID)
}

// ListByCase lists the payments of a case in date order.
func (r *PaymentRepository) ListByCase(ctx context.Context, caseID string) ([]*domain.Payment, error) {
	rows, err := r.queries.ListPaymentsByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	return rowsToPayments(rows), nil
}

// ListByCasesBefore lists the payments of caseIDs dated before cutoff.
func (r *PaymentRepository) ListByCasesBefore(ctx context.Context, caseIDs []string, cutoff time.Time) ([]*domain.Payment, error) {
	if len(caseIDs) == 0 {
		return nil, nil
	}

	rows, err := r.queries.ListPaymentsByCasesBefore(ctx, generated.ListPaymentsByCasesBeforeParams{
		CaseIds: caseIDs,
		Cutoff:  timeToPgTimestamptz(cutoff),
	})
	if err != nil {
		return nil, err
	}

	return rowsToPayments(rows), nil
}

// ListInRange lists every payment dated in [from, to).
func (r *PaymentRepository) ListInRange(ctx context.Context, from, to time.Time) ([]*domain.Payment, error) {
	rows, err := r.queries.ListPaymentsInRange(ctx, generated.ListPaymentsInRangeParams{
		FromAt: timeToPgTimestamptz(from),
		ToAt:   timeToPgTimestamptz(to),
	})
	if err != nil {
		return nil, err
	}

	return rowsToPayments(rows), nil
}

func rowsToPayments(rows []generated.Payment) []*domain.Payment {
	payments := make([]*domain.Payment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, rowToPayment(row))
	}
	return payments
}

func rowToPayment(row generated.Payment) *domain.Payment {
	return &domain.Payment{
		ID:        row.ID,
		CaseID:    row.CaseID,
		Amount:    row.Amount,
		Date:      row.PaidAt.Time,
		Method:    domain.PaymentMethod(row.Method),
		Reference: row.Reference,
		Notes:     row.Notes,
		CreatedAt: row.CreatedAt.Time,
	}
}
