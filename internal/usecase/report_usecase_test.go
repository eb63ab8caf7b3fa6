package usecase_test

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/caseledger/internal/domain"
	"github.com/iho/caseledger/internal/usecase"
	"github.com/iho/caseledger/internal/usecase/mocks"
)

// memStore is an in-memory stand-in for the three repositories, returning
// rows in the same order the Postgres queries do.
type memStore struct {
	cases    []*domain.Case
	payments []*domain.Payment
	expenses []*domain.Expense
	fail     error
}

type memCases struct{ *memStore }
type memPayments struct{ *memStore }
type memExpenses struct{ *memStore }

func (s memCases) Create(context.Context, usecase.Transaction, *domain.Case) error { return nil }
func (s memCases) Update(context.Context, usecase.Transaction, *domain.Case) error { return nil }
func (s memCases) Delete(context.Context, usecase.Transaction, string) error       { return nil }
func (s memCases) List(context.Context, usecase.CaseFilter) ([]*domain.Case, error) {
	return s.cases, nil
}
func (s memCases) ListLegacyCandidates(context.Context) ([]*domain.Case, error) { return nil, nil }
func (s memCases) SetMode(context.Context, usecase.Transaction, []string, domain.DistributionMode, time.Time) (int64, error) {
	return 0, nil
}

func (s memCases) GetByID(_ context.Context, id string) (*domain.Case, error) {
	for _, c := range s.cases {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, domain.ErrCaseNotFound
}

func (s memCases) GetByIDForUpdate(ctx context.Context, _ usecase.Transaction, id string) (*domain.Case, error) {
	return s.GetByID(ctx, id)
}

func (s memCases) ListStartedBefore(_ context.Context, cutoff time.Time) ([]*domain.Case, error) {
	if s.fail != nil {
		return nil, s.fail
	}
	var out []*domain.Case
	for _, c := range s.cases {
		if c.StartedAt.Before(cutoff) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s memPayments) Create(context.Context, usecase.Transaction, *domain.Payment) error { return nil }
func (s memPayments) Delete(context.Context, usecase.Transaction, string) error          { return nil }
func (s memPayments) GetByID(context.Context, string) (*domain.Payment, error) {
	return nil, domain.ErrPaymentNotFound
}

func (s memPayments) ExistsForCase(_ context.Context, _ usecase.Transaction, caseID string) (bool, error) {
	for _, p := range s.payments {
		if p.CaseID == caseID {
			return true, nil
		}
	}
	return false, nil
}

func (s memPayments) ListByCase(_ context.Context, caseID string) ([]*domain.Payment, error) {
	return s.filter(func(p *domain.Payment) bool { return p.CaseID == caseID }), nil
}

func (s memPayments) ListByCasesBefore(_ context.Context, ids []string, cutoff time.Time) ([]*domain.Payment, error) {
	set := toSet(ids)
	return s.filter(func(p *domain.Payment) bool { return set[p.CaseID] && p.Date.Before(cutoff) }), nil
}

func (s memPayments) ListInRange(_ context.Context, from, to time.Time) ([]*domain.Payment, error) {
	return s.filter(func(p *domain.Payment) bool { return !p.Date.Before(from) && p.Date.Before(to) }), nil
}

func (s memPayments) filter(keep func(*domain.Payment) bool) []*domain.Payment {
	var out []*domain.Payment
	for _, p := range s.payments {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (s memExpenses) Create(context.Context, usecase.Transaction, *domain.Expense) error { return nil }
func (s memExpenses) Delete(context.Context, usecase.Transaction, string) error          { return nil }
func (s memExpenses) GetByID(context.Context, string) (*domain.Expense, error) {
	return nil, domain.ErrExpenseNotFound
}

func (s memExpenses) ListByCase(_ context.Context, caseID string) ([]*domain.Expense, error) {
	return s.filter(func(e *domain.Expense) bool { return e.CaseID == caseID }), nil
}

func (s memExpenses) ListByCasesBefore(_ context.Context, ids []string, cutoff time.Time) ([]*domain.Expense, error) {
	set := toSet(ids)
	return s.filter(func(e *domain.Expense) bool { return set[e.CaseID] && e.Date.Before(cutoff) }), nil
}

func (s memExpenses) ListInRange(_ context.Context, from, to time.Time) ([]*domain.Expense, error) {
	return s.filter(func(e *domain.Expense) bool { return !e.Date.Before(from) && e.Date.Before(to) }), nil
}

func (s memExpenses) filter(keep func(*domain.Expense) bool) []*domain.Expense {
	var out []*domain.Expense
	for _, e := range s.expenses {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func at(month time.Month, day int) time.Time {
	return time.Date(2025, month, day, 10, 0, 0, 0, time.UTC)
}

func autoCase(id string, gross int64, pctA int64, started time.Time) *domain.Case {
	return &domain.Case{
		ID:               id,
		PatientID:        "pat-" + id,
		GrossPrice:       gross,
		DistributionMode: domain.DistributionAuto,
		FrozenPercentA:   decimal.NewNullDecimal(decimal.NewFromInt(pctA)),
		Status:           domain.CaseStatusActive,
		StartedAt:        started,
	}
}

// workedStore holds the reference case: price 10000, lab 2000, A 70%,
// paid 3000 in February and 5000 in March.
func workedStore() *memStore {
	return &memStore{
		cases: []*domain.Case{
			autoCase("c1", 10000, 70, at(time.February, 10)),
			autoCase("late", 5000, 50, at(time.April, 2)),
		},
		payments: []*domain.Payment{
			{ID: "p1", CaseID: "c1", Amount: 3000, Date: at(time.February, 20), Method: domain.PaymentCash},
			{ID: "p2", CaseID: "c1", Amount: 5000, Date: at(time.March, 5), Method: domain.PaymentCard},
			{ID: "p3", CaseID: "c1", Amount: 1000, Date: at(time.April, 1), Method: domain.PaymentCash},
			{ID: "p4", CaseID: "late", Amount: 700, Date: at(time.April, 3), Method: domain.PaymentTransfer},
		},
		expenses: []*domain.Expense{
			{ID: "e1", CaseID: "c1", Kind: domain.ExpenseReimbursable, Amount: 2000, Date: at(time.February, 10)},
			{ID: "e2", CaseID: "c1", Kind: domain.ExpenseOther, Amount: 150, Date: at(time.March, 5)},
		},
	}
}

func newReportUseCase(store *memStore, recorder usecase.ReportRecorder) *usecase.ReportUseCase {
	return usecase.NewReportUseCase(
		memCases{store}, memPayments{store}, memExpenses{store},
		domain.NewDefaultAllocationEngine(), recorder, time.UTC,
	).WithClock(fixedClock(at(time.March, 5)))
}

func TestReportUseCase_Monthly_ReplaysFullHistory(t *testing.T) {
	uc := newReportUseCase(workedStore(), nil)

	report, err := uc.MonthlyReport(context.Background(), 2025, 3, usecase.ReportOptions{})
	require.NoError(t, err)

	assert.Equal(t, "2025-03", report.Period.Label())

	// Cash flow only sees movements dated in March.
	assert.Equal(t, int64(5000), report.CashFlow.Collected)
	assert.Equal(t, 1, report.CashFlow.PaymentCount)
	assert.Equal(t, int64(5000), report.CashFlow.ByMethod[domain.PaymentCard])
	assert.Equal(t, int64(0), report.CashFlow.ByMethod[domain.PaymentCash])
	assert.Equal(t, int64(150), report.CashFlow.OtherExpenses)
	assert.Equal(t, int64(4850), report.CashFlow.NetOfExpenses)

	// The March payment lands after February filled the lab bucket.
	assert.Equal(t, usecase.Distribution{ToA: 4600, ToB: 400}, report.Distribution)

	// The closing snapshot is as of April 1st, exclusive.
	assert.Equal(t, 1, report.Closing.Cases)
	assert.Equal(t, domain.Buckets{Lab: 2000, A: 5600, B: 400}, report.Closing.Covered)
	assert.Equal(t, domain.Balances{Payer: 2000, Lab: 0, A: 0, B: 2000}, report.Closing.Balances)
	assert.Equal(t, int64(8000), report.Closing.Collected)

	assert.Nil(t, report.PerCase)
	assert.Empty(t, report.Skipped)
}

func TestReportUseCase_Monthly_SubsetReplayWouldDiffer(t *testing.T) {
	store := workedStore()
	uc := newReportUseCase(store, nil)

	report, err := uc.MonthlyReport(context.Background(), 2025, 3, usecase.ReportOptions{})
	require.NoError(t, err)

	// Replaying only March's payment attributes it to lab first.
	subset, err := domain.ReplayWaterfall(store.payments[1:2], domain.Targets{Lab: 2000, A: 5600, B: 2400, Sum: 10000})
	require.NoError(t, err)
	fromSubset, _ := subset.Get("p2")

	assert.Equal(t, int64(2000), fromSubset.ToLab)
	assert.NotEqual(t, fromSubset.ToLab, report.Distribution.ToLab)
}

func TestReportUseCase_Monthly_February(t *testing.T) {
	uc := newReportUseCase(workedStore(), nil)

	report, err := uc.MonthlyReport(context.Background(), 2025, 2, usecase.ReportOptions{})
	require.NoError(t, err)

	assert.Equal(t, int64(2000), report.Distribution.ToLab)
	assert.Equal(t, int64(1000), report.Distribution.ToA)
	assert.Equal(t, int64(2000), report.Distribution.LabCommitment)
	assert.Equal(t, int64(0), report.Distribution.LabPending)
	assert.Equal(t, domain.Balances{Payer: 7000, Lab: 0, A: 4600, B: 2400}, report.Closing.Balances)
}

func TestReportUseCase_Monthly_OrphanPaymentsStayInCashFlow(t *testing.T) {
	uc := newReportUseCase(workedStore(), nil)

	report, err := uc.MonthlyReport(context.Background(), 2025, 4, usecase.ReportOptions{})
	require.NoError(t, err)

	assert.Equal(t, int64(1700), report.CashFlow.Collected)
	assert.Equal(t, 2, report.Closing.Cases)
	assert.Equal(t, 0, report.CashFlow.OrphanPayments)
	assert.Equal(t, int64(1000+700), report.Distribution.ToA+report.Distribution.ToB+report.Distribution.ToLab+report.Distribution.Surplus)
}

func TestReportUseCase_Daily(t *testing.T) {
	uc := newReportUseCase(workedStore(), nil)

	report, err := uc.DailyReport(context.Background(), "", usecase.ReportOptions{})
	require.NoError(t, err)

	assert.Equal(t, "2025-03-05", report.Period.Label())
	assert.Equal(t, int64(5000), report.CashFlow.ByMethod[domain.PaymentCard])
	assert.Len(t, report.CashFlow.ByMethod, len(domain.PaymentMethods))

	require.Len(t, report.PerCase, 1)
	detail := report.PerCase[0]
	assert.Equal(t, "c1", detail.Case.ID)
	require.Len(t, detail.Payments, 1)
	assert.Equal(t, domain.Attribution{ToA: 4600, ToB: 400}, detail.Payments[0].Attribution)
	require.Len(t, detail.Expenses, 1)
	assert.Equal(t, "e2", detail.Expenses[0].ID)
}

func TestReportUseCase_Daily_LabCommitment(t *testing.T) {
	store := &memStore{
		cases: []*domain.Case{autoCase("c1", 5000, 50, at(time.June, 1))},
		payments: []*domain.Payment{
			{ID: "p1", CaseID: "c1", Amount: 800, Date: at(time.June, 1), Method: domain.PaymentCash},
		},
		expenses: []*domain.Expense{
			{ID: "e1", CaseID: "c1", Amount: 1200, Date: at(time.June, 1)},
		},
	}
	uc := newReportUseCase(store, nil)

	report, err := uc.DailyReport(context.Background(), "2025-06-01", usecase.ReportOptions{})
	require.NoError(t, err)

	assert.Equal(t, int64(1200), report.Distribution.LabCommitment)
	assert.Equal(t, int64(800), report.Distribution.ToLab)
	assert.Equal(t, int64(400), report.Distribution.LabPending)
	assert.Equal(t, int64(1200), report.CashFlow.Reimbursable)
}

func TestReportUseCase_InvalidPeriod(t *testing.T) {
	uc := newReportUseCase(workedStore(), nil)

	_, err := uc.MonthlyReport(context.Background(), 2025, 13, usecase.ReportOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.DailyReport(context.Background(), "2025-02-30", usecase.ReportOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.PendingBalances(context.Background(), 2025, 0, usecase.ReportOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReportUseCase_FetchErrorFailsQuery(t *testing.T) {
	store := workedStore()
	store.fail = errors.New("connection reset")
	uc := newReportUseCase(store, nil)

	_, err := uc.MonthlyReport(context.Background(), 2025, 3, usecase.ReportOptions{BestEffort: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestReportUseCase_BestEffort(t *testing.T) {
	store := workedStore()
	broken := autoCase("broken", -10, 50, at(time.March, 1))
	store.cases = append(store.cases, broken)

	uc := newReportUseCase(store, nil)

	_, err := uc.MonthlyReport(context.Background(), 2025, 3, usecase.ReportOptions{})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	report, err := uc.MonthlyReport(context.Background(), 2025, 3, usecase.ReportOptions{BestEffort: true})
	require.NoError(t, err)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "broken", report.Skipped[0].CaseID)
	assert.Equal(t, 1, report.Closing.Cases)
}

func TestReportUseCase_PendingBalances(t *testing.T) {
	store := &memStore{
		cases: []*domain.Case{
			autoCase("owes-a-small", 1000, 50, at(time.May, 1)),
			autoCase("owes-a-big", 4000, 50, at(time.May, 1)),
			autoCase("owes-b", 1000, 50, at(time.May, 1)),
			autoCase("settled", 1000, 50, at(time.May, 1)),
		},
		payments: []*domain.Payment{
			{ID: "p1", CaseID: "owes-b", Amount: 600, Date: at(time.May, 2), Method: domain.PaymentCash},
			{ID: "p2", CaseID: "settled", Amount: 1000, Date: at(time.May, 2), Method: domain.PaymentCash},
		},
	}
	uc := newReportUseCase(store, nil)

	report, err := uc.PendingBalances(context.Background(), 2025, 5, usecase.ReportOptions{})
	require.NoError(t, err)

	require.Len(t, report.PendingA, 2)
	assert.Equal(t, "owes-a-big", report.PendingA[0].Case.ID)
	assert.Equal(t, "owes-a-small", report.PendingA[1].Case.ID)
	require.Len(t, report.PendingB, 1)
	assert.Equal(t, "owes-b", report.PendingB[0].Case.ID)
	assert.Equal(t, 1, report.Settled)

	assert.Equal(t, usecase.PendingTotals{CountA: 2, CountB: 1, SumA: 2500, SumB: 400}, report.Totals)
}

func TestReportUseCase_RecordsMetrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	recorder := mocks.NewMockReportRecorder(ctrl)
	recorder.EXPECT().ObserveReport(domain.PeriodMonthly, 1, 0, gomock.Any())

	uc := newReportUseCase(workedStore(), recorder)

	_, err := uc.MonthlyReport(context.Background(), 2025, 3, usecase.ReportOptions{})
	require.NoError(t, err)
}
