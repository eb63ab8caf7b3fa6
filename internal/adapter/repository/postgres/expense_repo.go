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

// ExpenseRepository implements usecase.ExpenseRepository.
type ExpenseRepository struct {
	queries *generated.Queries
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return newExpenseRepository(pool)
}

func newExpenseRepository(db generated.DBTX) *ExpenseRepository {
	return &ExpenseRepository{queries: generated.New(db)}
}

// Create inserts an expense.
func (r *ExpenseRepository) Create(ctx context.Context, tx usecase.Transaction, e *domain.Expense) error {
	return queriesFor(tx, r.queries).CreateExpense(ctx, generated.CreateExpenseParams{
		ID:          e.ID,
		CaseID:      e.CaseID,
		Kind:        string(e.Kind),
		Description: e.Description,
		Amount:      e.Amount,
		SpentAt:     timeToPgTimestamptz(e.Date),
		Settled:     e.Settled,
		CreatedAt:   timeToPgTimestamptz(e.CreatedAt),
	})
}

// GetByID retrieves an expense by ID.
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	row, err := r.queries.GetExpenseByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExpenseNotFound
		}

		return nil, err
	}

	return rowToExpense(row), nil
}

// Delete removes an expense.
func (r *ExpenseRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	n, err := queriesFor(tx, r.queries).DeleteExpense(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrExpenseNotFound
	}

	return nil
}

// ListByCase lists the expenses of a case in date order.
func (r *ExpenseRepository) ListByCase(ctx context.Context, caseID string) ([]*domain.Expense, error) {
	rows, err := r.queries.ListExpensesByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	return rowsToExpenses(rows), nil
}

// ListByCasesBefore lists the expenses of caseIDs dated before cutoff.
func (r *ExpenseRepository) ListByCasesBefore(ctx context.Context, caseIDs []string, cutoff time.Time) ([]*domain.Expense, error) {
	if len(caseIDs) == 0 {
		return nil, nil
	}

	rows, err := r.queries.ListExpensesByCasesBefore(ctx, generated.ListExpensesByCasesBeforeParams{
		CaseIds: caseIDs,
		Cutoff:  timeToPgTimestamptz(cutoff),
	})
	if err != nil {
		return nil, err
	}

	return rowsToExpenses(rows), nil
}

// ListInRange lists every expense dated in [from, to).
func (r *ExpenseRepository) ListInRange(ctx context.Context, from, to time.Time) ([]*domain.Expense, error) {
	rows, err := r.queries.ListExpensesInRange(ctx, generated.ListExpensesInRangeParams{
		FromAt: timeToPgTimestamptz(from),
		ToAt:   timeToPgTimestamptz(to),
	})
	if err != nil {
		return nil, err
	}

	return rowsToExpenses(rows), nil
}

func rowsToExpenses(rows []generated.Expense) []*domain.Expense {
	expenses := make([]*domain.Expense, 0, len(rows))
	for _, row := range rows {
		expenses = append(expenses, rowToExpense(row))
	}
	return expenses
}

func rowToExpense(row generated.Expense) *domain.Expense {
	return &domain.Expense{
		ID:          row.ID,
		CaseID:      row.CaseID,
		Kind:        domain.ExpenseKind(row.Kind),
		Description: row.Description,
		Amount:      row.Amount,
		Date:        row.SpentAt.Time,
		Settled:     row.Settled,
		CreatedAt:   row.CreatedAt.Time,
	}
}
