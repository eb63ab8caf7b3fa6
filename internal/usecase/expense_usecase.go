package usecase

import (
	"context"
	"time"

	"github.com/iho/caseledger/internal/domain"
)

// ExpenseUseCase records and removes expenses.
type ExpenseUseCase struct {
	txManager   TransactionManager
	caseRepo    CaseRepository
	expenseRepo ExpenseRepository
	idGen       IDGenerator
	clock       Clock
}

// NewExpenseUseCase creates a new ExpenseUseCase.
func NewExpenseUseCase(
	txManager TransactionManager,
	caseRepo CaseRepository,
	expenseRepo ExpenseRepository,
	idGen IDGenerator,
) *ExpenseUseCase {
	return &ExpenseUseCase{
		txManager:   txManager,
		caseRepo:    caseRepo,
		expenseRepo: expenseRepo,
		idGen:       idGen,
		clock:       SystemClock,
	}
}

// WithClock replaces the clock used for default dates.
func (uc *ExpenseUseCase) WithClock(clock Clock) *ExpenseUseCase {
	uc.clock = clock
	return uc
}

// RecordExpenseInput represents input for recording an expense.
type RecordExpenseInput struct {
	Date        *time.Time
	CaseID      string
	Kind        domain.ExpenseKind
	Description string
	Amount      int64
	Settled     bool
}

// RecordExpense records an expense against an existing case. Kind defaults
// to reimbursable.
func (uc *ExpenseUseCase) RecordExpense(ctx context.Context, input RecordExpenseInput) (*domain.Expense, error) {
	description, err := domain.ValidateText("description", input.Description, domain.MaxExpenseDescriptionLength)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now().UTC()
	expense := &domain.Expense{
		ID:          uc.idGen.Generate(),
		CaseID:      input.CaseID,
		Kind:        input.Kind,
		Description: description,
		Amount:      input.Amount,
		Date:        now,
		Settled:     input.Settled,
		CreatedAt:   now,
	}
	if expense.Kind == "" {
		expense.Kind = domain.ExpenseReimbursable
	}
	if input.Date != nil {
		expense.Date = input.Date.UTC()
	}
	if err := expense.Validate(); err != nil {
		return nil, err
	}

	if _, err := uc.caseRepo.GetByID(ctx, input.CaseID); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.expenseRepo.Create(ctx, tx, expense); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return expense, nil
}

// DeleteExpense removes an expense.
func (uc *ExpenseUseCase) DeleteExpense(ctx context.Context, id string) error {
	if _, err := uc.expenseRepo.GetByID(ctx, id); err != nil {
		return err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.expenseRepo.Delete(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
