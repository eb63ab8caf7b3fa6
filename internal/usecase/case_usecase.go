package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/iho/caseledger/internal/domain"
)

// CaseUseCase handles the case write path and single-case summaries.
type CaseUseCase struct {
	txManager       TransactionManager
	caseRepo        CaseRepository
	paymentRepo     PaymentRepository
	expenseRepo     ExpenseRepository
	idGen           IDGenerator
	retrier         Retrier
	engine          *domain.AllocationEngine
	allowHardDelete bool
	clock           Clock
}

// NewCaseUseCase creates a new CaseUseCase.
func NewCaseUseCase(
	txManager TransactionManager,
	caseRepo CaseRepository,
	paymentRepo PaymentRepository,
	expenseRepo ExpenseRepository,
	idGen IDGenerator,
	retrier Retrier,
	engine *domain.AllocationEngine,
	allowHardDelete bool,
) *CaseUseCase {
	return &CaseUseCase{
		txManager:       txManager,
		caseRepo:        caseRepo,
		paymentRepo:     paymentRepo,
		expenseRepo:     expenseRepo,
		idGen:           idGen,
		retrier:         retrier,
		engine:          engine,
		allowHardDelete: allowHardDelete,
		clock:           SystemClock,
	}
}

// WithClock replaces the clock used for timestamps.
func (uc *CaseUseCase) WithClock(clock Clock) *CaseUseCase {
	uc.clock = clock
	return uc
}

// CreateCaseInput represents input for creating a case.
type CreateCaseInput struct {
	StartedAt    *time.Time
	FixedAmountA *int64
	FixedAmountB *int64
	PatientID    string
	Kind         string
	Description  string
	GrossPrice   int64
}

// CreateCase creates a case. Supplying either fixed amount makes it manual;
// otherwise the default split is frozen onto the case.
func (uc *CaseUseCase) CreateCase(ctx context.Context, input CreateCaseInput) (*domain.Case, error) {
	patientID := strings.TrimSpace(input.PatientID)
	if patientID == "" {
		return nil, domain.NewValidationError("patient_id", "is required")
	}
	description, err := domain.ValidateText("description", input.Description, domain.MaxDescriptionLength)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now().UTC()
	c := &domain.Case{
		ID:          uc.idGen.Generate(),
		PatientID:   patientID,
		Kind:        strings.TrimSpace(input.Kind),
		Description: description,
		GrossPrice:  input.GrossPrice,
		Status:      domain.CaseStatusActive,
		StartedAt:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.StartedAt != nil {
		c.StartedAt = input.StartedAt.UTC()
	}

	if input.FixedAmountA != nil || input.FixedAmountB != nil {
		c.DistributionMode = domain.DistributionManual
		if input.FixedAmountA != nil {
			c.FixedAmountA = *input.FixedAmountA
		}
		if input.FixedAmountB != nil {
			c.FixedAmountB = *input.FixedAmountB
		}
	} else {
		c.DistributionMode = domain.DistributionAuto
		uc.freezeDefaults(c)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.caseRepo.Create(ctx, tx, c); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

// GetCase retrieves a case by ID.
func (uc *CaseUseCase) GetCase(ctx context.Context, id string) (*domain.Case, error) {
	return uc.caseRepo.GetByID(ctx, id)
}

// ListCasesInput represents input for listing cases.
type ListCasesInput struct {
	PatientID   string
	Status      domain.CaseStatus
	IncludeVoid bool
	Limit       int
}

// ListCases lists cases newest first. Void cases are hidden unless asked for
// or selected by the status filter.
func (uc *CaseUseCase) ListCases(ctx context.Context, input ListCasesInput) ([]*domain.Case, error) {
	if input.Status != "" && !input.Status.IsValid() {
		return nil, domain.NewValidationError("status", "must be active, closed or void")
	}
	return uc.caseRepo.List(ctx, CaseFilter{
		PatientID:   strings.TrimSpace(input.PatientID),
		Status:      input.Status,
		IncludeVoid: input.IncludeVoid || input.Status == domain.CaseStatusVoid,
		Limit:       domain.ValidatePagination(input.Limit),
	})
}

// UpdateCaseInput carries the fields to change. Nil fields are left as they are.
type UpdateCaseInput struct {
	Kind             *string
	Description      *string
	GrossPrice       *int64
	FixedAmountA     *int64
	FixedAmountB     *int64
	DistributionMode *domain.DistributionMode
	FrozenPercentA   *decimal.Decimal
	FrozenPercentB   *decimal.Decimal
	Status           *domain.CaseStatus
	StartedAt        *time.Time
	ClosedAt         *time.Time
}

func (in UpdateCaseInput) financialChange() bool {
	return in.GrossPrice != nil || in.FixedAmountA != nil || in.FixedAmountB != nil ||
		in.DistributionMode != nil || in.FrozenPercentA != nil || in.FrozenPercentB != nil
}

// UpdateCase applies input to the case. Financial fields are rejected with
// ErrCaseLocked once the case has a payment; the check and the write share
// one transaction.
func (uc *CaseUseCase) UpdateCase(ctx context.Context, id string, input UpdateCaseInput) (*domain.Case, error) {
	var updated *domain.Case

	err := uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		c, err := uc.caseRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if input.financialChange() {
			hasPayments, err := uc.paymentRepo.ExistsForCase(ctx, tx, id)
			if err != nil {
				return err
			}
			if err := (domain.FinancialLock{HasPayments: hasPayments}).Check(true); err != nil {
				return err
			}
			if err := uc.applyFinancial(c, input); err != nil {
				return err
			}
		}

		if err := applyDescriptive(c, input); err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}
		c.UpdatedAt = uc.clock.Now().UTC()

		if err := uc.caseRepo.Update(ctx, tx, c); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}

		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (uc *CaseUseCase) applyFinancial(c *domain.Case, input UpdateCaseInput) error {
	if input.GrossPrice != nil {
		c.GrossPrice = *input.GrossPrice
	}

	fixedSent := input.FixedAmountA != nil || input.FixedAmountB != nil
	pctSent := input.FrozenPercentA != nil || input.FrozenPercentB != nil

	mode := c.DistributionMode
	switch {
	case input.DistributionMode != nil:
		mode = *input.DistributionMode
	case fixedSent:
		mode = domain.DistributionManual
	case pctSent:
		mode = domain.DistributionAuto
	}
	if !mode.IsValid() {
		return domain.NewValidationError("distribution_mode", "must be auto or manual")
	}
	if mode == "" {
		mode = domain.DistributionAuto
	}

	if mode == domain.DistributionAuto && fixedSent {
		return domain.NewValidationError("fixed_amount_a", "requires manual distribution mode")
	}
	if mode == domain.DistributionManual && pctSent {
		return domain.NewValidationError("frozen_percent_a", "requires auto distribution mode")
	}

	if input.FixedAmountA != nil {
		c.FixedAmountA = *input.FixedAmountA
	}
	if input.FixedAmountB != nil {
		c.FixedAmountB = *input.FixedAmountB
	}
	if input.FrozenPercentA != nil {
		c.FrozenPercentA = decimal.NewNullDecimal(*input.FrozenPercentA)
	}
	if input.FrozenPercentB != nil {
		c.FrozenPercentB = decimal.NewNullDecimal(*input.FrozenPercentB)
	}

	// Keep exactly one source of targets on the row.
	switch mode {
	case domain.DistributionManual:
		c.FrozenPercentA = decimal.NullDecimal{}
		c.FrozenPercentB = decimal.NullDecimal{}
	case domain.DistributionAuto:
		c.FixedAmountA, c.FixedAmountB = 0, 0
		if !c.HasFrozenPercentages() {
			uc.freezeDefaults(c)
		}
	}
	c.DistributionMode = mode

	return nil
}

func applyDescriptive(c *domain.Case, input UpdateCaseInput) error {
	if input.Kind != nil {
		c.Kind = strings.TrimSpace(*input.Kind)
	}
	if input.Description != nil {
		description, err := domain.ValidateText("description", *input.Description, domain.MaxDescriptionLength)
		if err != nil {
			return err
		}
		c.Description = description
	}
	if input.StartedAt != nil {
		c.StartedAt = input.StartedAt.UTC()
	}
	if input.ClosedAt != nil {
		closedAt := input.ClosedAt.UTC()
		c.ClosedAt = &closedAt
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return domain.NewValidationError("status", "must be active, closed or void")
		}
		c.Status = *input.Status
	}
	return nil
}

func (uc *CaseUseCase) freezeDefaults(c *domain.Case) {
	pctA, pctB := uc.engine.DefaultPercentages()
	c.FrozenPercentA = decimal.NewNullDecimal(pctA)
	c.FrozenPercentB = decimal.NewNullDecimal(pctB)
}

// SetStatus moves the case to status. Closing or voiding stamps ClosedAt
// unless it is already set; reactivating clears it.
func (uc *CaseUseCase) SetStatus(ctx context.Context, id string, status domain.CaseStatus) (*domain.Case, error) {
	if !status.IsValid() {
		return nil, domain.NewValidationError("status", "must be active, closed or void")
	}

	var updated *domain.Case
	err := uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		c, err := uc.caseRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		now := uc.clock.Now().UTC()
		c.Status = status
		switch status {
		case domain.CaseStatusActive:
			c.ClosedAt = nil
		default:
			if c.ClosedAt == nil {
				c.ClosedAt = &now
			}
		}
		c.UpdatedAt = now

		if err := uc.caseRepo.Update(ctx, tx, c); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// RemoveResult describes the outcome of RemoveCase.
type RemoveResult struct {
	Mode        RemoveMode
	AlreadyVoid bool
}

// RemoveCase voids the case, or deletes it with its payments and expenses
// when mode is RemoveDelete and hard deletes are allowed.
func (uc *CaseUseCase) RemoveCase(ctx context.Context, id string, mode RemoveMode) (*RemoveResult, error) {
	switch mode {
	case "", RemoveVoid:
		mode = RemoveVoid
	case RemoveDelete:
		if !uc.allowHardDelete {
			return nil, domain.ErrHardDeleteDisabled
		}
	default:
		return nil, domain.NewValidationError("mode", "must be void or delete")
	}

	result := &RemoveResult{Mode: mode}
	err := uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		c, err := uc.caseRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if mode == RemoveDelete {
			if err := uc.caseRepo.Delete(ctx, tx, id); err != nil {
				return err
			}
			return tx.Commit(ctx)
		}

		if c.Status == domain.CaseStatusVoid {
			result.AlreadyVoid = true
			return nil
		}

		now := uc.clock.Now().UTC()
		c.Status = domain.CaseStatusVoid
		c.ClosedAt = &now
		c.UpdatedAt = now
		if err := uc.caseRepo.Update(ctx, tx, c); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// CaseSummary is the full financial picture of one case.
type CaseSummary struct {
	Case       *domain.Case
	Payments   []*domain.Payment
	Expenses   []*domain.Expense
	Allocation *domain.Allocation
	Replay     *domain.WaterfallReplay
}

// GetCaseSummary loads a case with its movements and computes its allocation
// and the per-payment attribution over its full payment history.
func (uc *CaseUseCase) GetCaseSummary(ctx context.Context, id string) (*CaseSummary, error) {
	c, err := uc.caseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		payments []*domain.Payment
		expenses []*domain.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		payments, err = uc.paymentRepo.ListByCase(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = uc.expenseRepo.ListByCase(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	payments = domain.SortPaymentsByDate(payments)
	expenses = domain.SortExpensesByDate(expenses)

	alloc, replay, err := allocateAndReplay(ctx, uc.engine, c, expenses, payments)
	if err != nil {
		return nil, err
	}

	return &CaseSummary{
		Case:       c,
		Payments:   payments,
		Expenses:   expenses,
		Allocation: alloc,
		Replay:     replay,
	}, nil
}

// BackfillResult lists the cases touched by BackfillLegacyManual.
type BackfillResult struct {
	Marked      []string
	NeedsReview []string
	DryRun      bool
}

// BackfillLegacyManual stores mode manual on cases that only resolve to
// manual through the legacy fixed-amount fallback. Computed allocations do
// not change. Cases with both fixed amounts and frozen percentages are
// reported and left alone.
func (uc *CaseUseCase) BackfillLegacyManual(ctx context.Context, dryRun bool) (*BackfillResult, error) {
	candidates, err := uc.caseRepo.ListLegacyCandidates(ctx)
	if err != nil {
		return nil, err
	}

	result := &BackfillResult{DryRun: dryRun, Marked: []string{}, NeedsReview: []string{}}
	for _, c := range candidates {
		dist := domain.ClassifyDistribution(c)
		switch {
		case dist.LegacyFallback:
			result.Marked = append(result.Marked, c.ID)
		case dist.NeedsReview:
			result.NeedsReview = append(result.NeedsReview, c.ID)
		}
	}

	if dryRun || len(result.Marked) == 0 {
		return result, nil
	}

	err = uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		n, err := uc.caseRepo.SetMode(ctx, tx, result.Marked, domain.DistributionManual, uc.clock.Now().UTC())
		if err != nil {
			return err
		}
		if n != int64(len(result.Marked)) {
			return fmt.Errorf("backfill updated %d of %d cases", n, len(result.Marked))
		}
		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Int("marked", len(result.Marked)).
		Int("needs_review", len(result.NeedsReview)).
		Msg("legacy cases marked manual")

	return result, nil
}

// allocateAndReplay runs the engine and the full-history replay for one case
// and cross-checks them. payments must already be sorted by date.
func allocateAndReplay(
	ctx context.Context,
	engine *domain.AllocationEngine,
	c *domain.Case,
	expenses []*domain.Expense,
	payments []*domain.Payment,
) (*domain.Allocation, *domain.WaterfallReplay, error) {
	alloc, err := engine.Compute(c, expenses, payments)
	if err != nil {
		return nil, nil, err
	}

	replay, err := domain.ReplayWaterfall(payments, alloc.Targets)
	if err != nil {
		return nil, nil, err
	}

	if err := domain.VerifyReplay(alloc, replay); err != nil {
		zerolog.Ctx(ctx).Error().
			Err(err).
			Str("case_id", c.ID).
			Int64("engine_covered", alloc.Covered.Total()).
			Int64("replay_covered", replay.Covered.Total()).
			Msg("allocation replay mismatch")
		return nil, nil, err
	}

	return alloc, replay, nil
}

// isSkippable reports whether a per-case failure may be skipped in best-effort mode.
func isSkippable(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) && !errors.Is(err, domain.ErrInconsistentAllocation)
}

func isInconsistency(err error) bool {
	return errors.Is(err, domain.ErrInconsistentAllocation)
}
