package usecase

import (
	"context"
	"time"

	"github.com/iho/caseledger/internal/domain"
)

// PaymentUseCase records and removes payments.
type PaymentUseCase struct {
	txManager   TransactionManager
	caseRepo    CaseRepository
	paymentRepo PaymentRepository
	idGen       IDGenerator
	clock       Clock
}

// NewPaymentUseCase creates a new PaymentUseCase.
func NewPaymentUseCase(
	txManager TransactionManager,
	caseRepo CaseRepository,
	paymentRepo PaymentRepository,
	idGen IDGenerator,
) *PaymentUseCase {
	return &PaymentUseCase{
		txManager:   txManager,
		caseRepo:    caseRepo,
		paymentRepo: paymentRepo,
		idGen:       idGen,
		clock:       SystemClock,
	}
}

// WithClock replaces the clock used for default dates.
func (uc *PaymentUseCase) WithClock(clock Clock) *PaymentUseCase {
	uc.clock = clock
	return uc
}

// RecordPaymentInput represents input for recording a payment.
type RecordPaymentInput struct {
	Date      *time.Time
	CaseID    string
	Method    domain.PaymentMethod
	Reference string
	Notes     string
	Amount    int64
}

// RecordPayment records a payment against an existing, non-void case.
func (uc *PaymentUseCase) RecordPayment(ctx context.Context, input RecordPaymentInput) (*domain.Payment, error) {
	if !input.Method.IsValid() {
		return nil, domain.NewValidationError("method", "must be cash, transfer, card or other")
	}
	reference, err := domain.ValidateText("reference", input.Reference, domain.MaxReferenceLength)
	if err != nil {
		return nil, err
	}
	notes, err := domain.ValidateText("notes", input.Notes, domain.MaxNotesLength)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now().UTC()
	payment := &domain.Payment{
		ID:        uc.idGen.Generate(),
		CaseID:    input.CaseID,
		Amount:    input.Amount,
		Date:      now,
		Method:    input.Method,
		Reference: reference,
		Notes:     notes,
		CreatedAt: now,
	}
	if input.Date != nil {
		payment.Date = input.Date.UTC()
	}
	if err := payment.Validate(); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// The case row lock orders this insert against RemoveCase voiding the
	// case and UpdateCase checking the financial lock.
	c, err := uc.caseRepo.GetByIDForUpdate(ctx, tx, input.CaseID)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.CaseStatusVoid {
		return nil, domain.NewValidationError("case_id", "refers to a void case")
	}

	if err := uc.paymentRepo.Create(ctx, tx, payment); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return payment, nil
}

// DeletePayment removes a payment.
func (uc *PaymentUseCase) DeletePayment(ctx context.Context, id string) error {
	if _, err := uc.paymentRepo.GetByID(ctx, id); err != nil {
		return err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.paymentRepo.Delete(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
