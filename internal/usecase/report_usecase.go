package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iho/caseledger/internal/domain"
)

// ReportUseCase builds period reports from the allocation engine and the
// per-payment replay.
type ReportUseCase struct {
	caseRepo    CaseRepository
	paymentRepo PaymentRepository
	expenseRepo ExpenseRepository
	engine      *domain.AllocationEngine
	recorder    ReportRecorder
	loc         *time.Location
	clock       Clock
}

// NewReportUseCase creates a new ReportUseCase. Periods are computed in loc.
func NewReportUseCase(
	caseRepo CaseRepository,
	paymentRepo PaymentRepository,
	expenseRepo ExpenseRepository,
	engine *domain.AllocationEngine,
	recorder ReportRecorder,
	loc *time.Location,
) *ReportUseCase {
	if loc == nil {
		loc = time.UTC
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &ReportUseCase{
		caseRepo:    caseRepo,
		paymentRepo: paymentRepo,
		expenseRepo: expenseRepo,
		engine:      engine,
		recorder:    recorder,
		loc:         loc,
		clock:       SystemClock,
	}
}

// WithClock replaces the clock used to resolve "today".
func (uc *ReportUseCase) WithClock(clock Clock) *ReportUseCase {
	uc.clock = clock
	return uc
}

// Location returns the report time zone.
func (uc *ReportUseCase) Location() *time.Location {
	return uc.loc
}

// ReportOptions tunes a report query.
type ReportOptions struct {
	// BestEffort skips cases whose stored data fails validation instead of
	// failing the whole query.
	BestEffort bool
}

// CashFlow sums the movements dated inside the window, whatever their case.
type CashFlow struct {
	Collected      int64
	PaymentCount   int
	ByMethod       map[domain.PaymentMethod]int64
	Expenses       int64
	Reimbursable   int64
	OtherExpenses  int64
	ExpenseCount   int
	NetOfExpenses  int64
	OrphanPayments int
}

// Distribution sums the replay attributions of payments dated inside the window.
type Distribution struct {
	ToLab   int64
	ToA     int64
	ToB     int64
	Surplus int64
	// LabCommitment is the reimbursable expense dated inside the window.
	LabCommitment int64
	LabPending    int64
}

// ClosingSnapshot sums the allocation of every case as of the window end.
type ClosingSnapshot struct {
	Cases       int
	GrossPrice  int64
	Collected   int64
	Targets     domain.Targets
	Covered     domain.Buckets
	Balances    domain.Balances
	Delta       int64
	NeedsReview []string
}

// PaymentAttribution pairs a payment with its share of each bucket.
type PaymentAttribution struct {
	Payment     *domain.Payment
	Attribution domain.Attribution
}

// CaseDetail is the daily view of a case with activity inside the window.
type CaseDetail struct {
	Case       *domain.Case
	Allocation *domain.Allocation
	Payments   []PaymentAttribution
	Expenses   []*domain.Expense
}

// SkippedCase names a case left out of a best-effort report.
type SkippedCase struct {
	CaseID string
	Reason string
}

// PeriodReport is the result of a monthly or daily query.
type PeriodReport struct {
	Period       domain.Period
	CashFlow     CashFlow
	Distribution Distribution
	Closing      ClosingSnapshot
	PerCase      []CaseDetail
	Skipped      []SkippedCase
}

// PendingEntry is one case with an outstanding A or B balance.
type PendingEntry struct {
	Case       *domain.Case
	Allocation *domain.Allocation
}

// PendingTotals counts and sums each pending partition.
type PendingTotals struct {
	CountA int
	CountB int
	SumA   int64
	SumB   int64
}

// PendingReport partitions cases by the bucket still owed.
type PendingReport struct {
	Period   domain.Period
	PendingA []PendingEntry
	PendingB []PendingEntry
	Settled  int
	Totals   PendingTotals
	Skipped  []SkippedCase
}

// MonthlyReport builds the report of the given calendar month.
func (uc *ReportUseCase) MonthlyReport(ctx context.Context, year, month int, opts ReportOptions) (*PeriodReport, error) {
	period, err := domain.MonthlyPeriod(year, month, uc.loc)
	if err != nil {
		return nil, err
	}
	return uc.periodReport(ctx, period, opts)
}

// DailyReport builds the report of date (YYYY-MM-DD), or of today when date is empty.
func (uc *ReportUseCase) DailyReport(ctx context.Context, date string, opts ReportOptions) (*PeriodReport, error) {
	period, err := domain.DailyPeriod(date, uc.clock.Now(), uc.loc)
	if err != nil {
		return nil, err
	}
	return uc.periodReport(ctx, period, opts)
}

// PendingBalances partitions the cases started before the end of the month
// into pending-A and pending-B, each sorted by outstanding balance, largest
// first. A case still owing A is pending-A whatever it owes B.
func (uc *ReportUseCase) PendingBalances(ctx context.Context, year, month int, opts ReportOptions) (*PendingReport, error) {
	period, err := domain.MonthlyPeriod(year, month, uc.loc)
	if err != nil {
		return nil, err
	}

	snap, err := uc.loadSnapshot(ctx, period, opts)
	if err != nil {
		return nil, err
	}

	report := &PendingReport{
		Period:   period,
		PendingA: []PendingEntry{},
		PendingB: []PendingEntry{},
		Skipped:  snap.skipped,
	}
	if report.Skipped == nil {
		report.Skipped = []SkippedCase{}
	}

	for _, cs := range snap.cases {
		bal := cs.alloc.Balances
		entry := PendingEntry{Case: cs.c, Allocation: cs.alloc}
		switch {
		case bal.A > 0:
			report.PendingA = append(report.PendingA, entry)
			report.Totals.SumA += bal.A
		case bal.A == 0 && bal.B > 0:
			report.PendingB = append(report.PendingB, entry)
			report.Totals.SumB += bal.B
		default:
			report.Settled++
		}
	}
	report.Totals.CountA = len(report.PendingA)
	report.Totals.CountB = len(report.PendingB)

	sortPending(report.PendingA, func(a *domain.Allocation) int64 { return a.Balances.A })
	sortPending(report.PendingB, func(a *domain.Allocation) int64 { return a.Balances.B })

	return report, nil
}

func sortPending(entries []PendingEntry, key func(*domain.Allocation) int64) {
	sort.SliceStable(entries, func(i, j int) bool {
		ki, kj := key(entries[i].Allocation), key(entries[j].Allocation)
		if ki != kj {
			return ki > kj
		}
		return entries[i].Case.ID < entries[j].Case.ID
	})
}

// caseState is one case of the closing universe with its movements up to the
// cutoff, in date order.
type caseState struct {
	c        *domain.Case
	payments []*domain.Payment
	expenses []*domain.Expense
	alloc    *domain.Allocation
	replay   *domain.WaterfallReplay
}

type snapshot struct {
	cases   []*caseState
	skipped []SkippedCase
	// in-window movements fetched by date, independent of case
	windowPayments []*domain.Payment
	windowExpenses []*domain.Expense
}

// loadSnapshot fetches the closing universe of period and computes every
// case as of period.End. Replays always run over the full history before
// the cutoff.
func (uc *ReportUseCase) loadSnapshot(ctx context.Context, period domain.Period, opts ReportOptions) (*snapshot, error) {
	var (
		cases    []*domain.Case
		payments []*domain.Payment
		expenses []*domain.Expense
		snap     snapshot
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cases, err = uc.caseRepo.ListStartedBefore(gctx, period.End)
		if err != nil || len(cases) == 0 {
			return err
		}

		ids := make([]string, len(cases))
		for i, c := range cases {
			ids[i] = c.ID
		}

		inner, ictx := errgroup.WithContext(gctx)
		inner.Go(func() error {
			var err error
			payments, err = uc.paymentRepo.ListByCasesBefore(ictx, ids, period.End)
			return err
		})
		inner.Go(func() error {
			var err error
			expenses, err = uc.expenseRepo.ListByCasesBefore(ictx, ids, period.End)
			return err
		})
		return inner.Wait()
	})
	g.Go(func() error {
		var err error
		snap.windowPayments, err = uc.paymentRepo.ListInRange(gctx, period.Start, period.End)
		return err
	})
	g.Go(func() error {
		var err error
		snap.windowExpenses, err = uc.expenseRepo.ListInRange(gctx, period.Start, period.End)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load %s report data: %w", period.Label(), err)
	}

	states := make(map[string]*caseState, len(cases))
	for _, c := range cases {
		cs := &caseState{c: c}
		states[c.ID] = cs
		snap.cases = append(snap.cases, cs)
	}
	for _, p := range payments {
		if cs, ok := states[p.CaseID]; ok {
			cs.payments = append(cs.payments, p)
		}
	}
	for _, e := range expenses {
		if cs, ok := states[e.CaseID]; ok {
			cs.expenses = append(cs.expenses, e)
		}
	}

	kept := snap.cases[:0]
	for _, cs := range snap.cases {
		cs.payments = domain.SortPaymentsByDate(cs.payments)
		cs.expenses = domain.SortExpensesByDate(cs.expenses)

		alloc, replay, err := allocateAndReplay(ctx, uc.engine, cs.c, cs.expenses, cs.payments)
		if err != nil {
			if opts.BestEffort && isSkippable(err) {
				zerolog.Ctx(ctx).Warn().Err(err).Str("case_id", cs.c.ID).Msg("case skipped in best-effort report")
				snap.skipped = append(snap.skipped, SkippedCase{CaseID: cs.c.ID, Reason: err.Error()})
				continue
			}
			if isInconsistency(err) {
				uc.recorder.RecordInconsistency(cs.c.ID)
			}
			return nil, err
		}
		cs.alloc = alloc
		cs.replay = replay
		kept = append(kept, cs)
	}
	snap.cases = kept

	return &snap, nil
}

func (uc *ReportUseCase) periodReport(ctx context.Context, period domain.Period, opts ReportOptions) (*PeriodReport, error) {
	started := time.Now()

	snap, err := uc.loadSnapshot(ctx, period, opts)
	if err != nil {
		return nil, err
	}

	report := &PeriodReport{
		Period:   period,
		CashFlow: foldCashFlow(snap, period),
		Closing:  foldClosing(snap),
		Skipped:  snap.skipped,
	}
	report.Distribution = foldDistribution(snap, period)
	if period.Kind == domain.PeriodDaily {
		report.PerCase = caseDetails(snap, period)
	}
	if report.Skipped == nil {
		report.Skipped = []SkippedCase{}
	}

	uc.recorder.ObserveReport(period.Kind, len(snap.cases), len(snap.skipped), time.Since(started))

	return report, nil
}

func foldCashFlow(snap *snapshot, period domain.Period) CashFlow {
	flow := CashFlow{ByMethod: make(map[domain.PaymentMethod]int64, len(domain.PaymentMethods))}
	for _, m := range domain.PaymentMethods {
		flow.ByMethod[m] = 0
	}

	known := make(map[string]bool, len(snap.cases))
	for _, cs := range snap.cases {
		known[cs.c.ID] = true
	}

	for _, p := range snap.windowPayments {
		if !period.Contains(p.Date) {
			continue
		}
		flow.Collected += p.Amount
		flow.PaymentCount++
		flow.ByMethod[p.Method] += p.Amount
		if !known[p.CaseID] {
			flow.OrphanPayments++
		}
	}
	for _, e := range snap.windowExpenses {
		if !period.Contains(e.Date) {
			continue
		}
		flow.Expenses += e.Amount
		flow.ExpenseCount++
		if e.IsReimbursable() {
			flow.Reimbursable += e.Amount
		} else {
			flow.OtherExpenses += e.Amount
		}
	}
	flow.NetOfExpenses = flow.Collected - flow.Expenses

	return flow
}

func foldClosing(snap *snapshot) ClosingSnapshot {
	closing := ClosingSnapshot{NeedsReview: []string{}}
	for _, cs := range snap.cases {
		a := cs.alloc
		closing.Cases++
		closing.GrossPrice += a.Control.GrossPrice
		closing.Collected += a.TotalCollected
		closing.Targets.Lab += a.Targets.Lab
		closing.Targets.A += a.Targets.A
		closing.Targets.B += a.Targets.B
		closing.Targets.Sum += a.Targets.Sum
		closing.Covered.Lab += a.Covered.Lab
		closing.Covered.A += a.Covered.A
		closing.Covered.B += a.Covered.B
		closing.Balances.Payer += a.Balances.Payer
		closing.Balances.Lab += a.Balances.Lab
		closing.Balances.A += a.Balances.A
		closing.Balances.B += a.Balances.B
		closing.Delta += a.Control.Delta
		if a.Control.NeedsReview {
			closing.NeedsReview = append(closing.NeedsReview, cs.c.ID)
		}
	}
	return closing
}

func foldDistribution(snap *snapshot, period domain.Period) Distribution {
	var dist Distribution
	for _, cs := range snap.cases {
		for _, p := range cs.payments {
			if !period.Contains(p.Date) {
				continue
			}
			attr, _ := cs.replay.Get(p.ID)
			dist.ToLab += attr.ToLab
			dist.ToA += attr.ToA
			dist.ToB += attr.ToB
			dist.Surplus += attr.Surplus
		}
		for _, e := range cs.expenses {
			if period.Contains(e.Date) && e.IsReimbursable() {
				dist.LabCommitment += e.Amount
			}
		}
	}
	dist.LabPending = dist.LabCommitment - dist.ToLab
	return dist
}

func caseDetails(snap *snapshot, period domain.Period) []CaseDetail {
	details := []CaseDetail{}
	for _, cs := range snap.cases {
		detail := CaseDetail{
			Case:       cs.c,
			Allocation: cs.alloc,
			Payments:   []PaymentAttribution{},
			Expenses:   []*domain.Expense{},
		}
		for _, p := range cs.payments {
			if period.Contains(p.Date) {
				attr, _ := cs.replay.Get(p.ID)
				detail.Payments = append(detail.Payments, PaymentAttribution{Payment: p, Attribution: attr})
			}
		}
		for _, e := range cs.expenses {
			if period.Contains(e.Date) {
				detail.Expenses = append(detail.Expenses, e)
			}
		}
		if len(detail.Payments) > 0 || len(detail.Expenses) > 0 {
			details = append(details, detail)
		}
	}
	return details
}

type nopRecorder struct{}

func (nopRecorder) ObserveReport(domain.PeriodKind, int, int, time.Duration) {}
func (nopRecorder) RecordInconsistency(string)                               {}
func (nopRecorder) SetClosingBalances(int64, int64, int64)                   {}
