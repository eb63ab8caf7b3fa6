package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/caseledger/internal/domain"
	"github.com/iho/caseledger/internal/usecase"
)

func TestCaseFromDomain(t *testing.T) {
	now := time.Now()
	c := &domain.Case{
		ID:               "c1",
		PatientID:        "p1",
		GrossPrice:       10000,
		DistributionMode: domain.DistributionAuto,
		FrozenPercentA:   decimal.NullDecimal{Decimal: decimal.NewFromInt(70), Valid: true},
		Status:           domain.CaseStatusActive,
		StartedAt:        now,
	}

	resp := CaseFromDomain(c)
	if resp.ID != "c1" || resp.DistributionMode != "auto" || resp.GrossPrice != 10000 {
		t.Fatalf("unexpected case response: %+v", resp)
	}
	if resp.FrozenPercentA == nil || !resp.FrozenPercentA.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected frozen percent A 70, got %v", resp.FrozenPercentA)
	}
	if resp.FrozenPercentB != nil {
		t.Fatalf("expected null frozen percent B, got %v", resp.FrozenPercentB)
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(raw), `"frozen_percent_b":null`) {
		t.Fatalf("expected explicit null percent, got %s", raw)
	}

	list := CasesFromDomain([]*domain.Case{c})
	if len(list) != 1 || list[0].ID != "c1" {
		t.Fatalf("CasesFromDomain returned %+v", list)
	}
}

func TestExpenseFromDomainDefaultsKind(t *testing.T) {
	resp := ExpenseFromDomain(&domain.Expense{ID: "e1", Amount: 200})
	if resp.Kind != string(domain.ExpenseReimbursable) {
		t.Fatalf("expected legacy expense to read as reimbursable, got %s", resp.Kind)
	}
}

func TestCaseSummaryFromUseCaseKeepsReplayOrder(t *testing.T) {
	summary := &usecase.CaseSummary{
		Case: &domain.Case{ID: "c1"},
		Payments: []*domain.Payment{
			{ID: "p1", Amount: 3000},
			{ID: "p2", Amount: 5000},
		},
		Allocation: &domain.Allocation{CaseID: "c1", TotalCollected: 8000},
		Replay: &domain.WaterfallReplay{
			ByPayment: map[string]domain.Attribution{
				"p1": {ToLab: 2000, ToA: 1000},
				"p2": {ToA: 4600, ToB: 400},
			},
			Order: []string{"p1", "p2"},
		},
	}

	resp := CaseSummaryFromUseCase(summary)
	if len(resp.Waterfall) != 2 || resp.Waterfall[0].PaymentID != "p1" || resp.Waterfall[1].ToB != 400 {
		t.Fatalf("unexpected waterfall: %+v", resp.Waterfall)
	}
	if resp.Allocation.TotalCollected != 8000 {
		t.Fatalf("expected allocation to be converted, got %+v", resp.Allocation)
	}
	if len(resp.Expenses) != 0 || resp.Expenses == nil {
		t.Fatalf("expected empty expense list, got %v", resp.Expenses)
	}
}

func TestPeriodReportFromUseCase(t *testing.T) {
	monthly, err := domain.MonthlyPeriod(2025, 3, time.UTC)
	if err != nil {
		t.Fatalf("period: %v", err)
	}

	report := &usecase.PeriodReport{
		Period: monthly,
		CashFlow: usecase.CashFlow{
			Collected: 5000,
			ByMethod:  map[domain.PaymentMethod]int64{domain.PaymentCash: 5000},
		},
		Distribution: usecase.Distribution{ToA: 4600, ToB: 400},
	}

	resp := PeriodReportFromUseCase(report)
	if resp.Period.Label != "2025-03" || resp.CashFlow.ByMethod["cash"] != 5000 {
		t.Fatalf("unexpected report response: %+v", resp)
	}
	if resp.PerCaseDetail != nil {
		t.Fatalf("expected no per-case detail on monthly report")
	}
	if resp.SkippedCases == nil || resp.Closing.NeedsReview == nil {
		t.Fatalf("expected empty lists instead of null")
	}
}

func TestPeriodReportFromUseCaseDaily(t *testing.T) {
	daily, err := domain.DailyPeriod("2025-03-05", time.Now(), time.UTC)
	if err != nil {
		t.Fatalf("period: %v", err)
	}

	payment := &domain.Payment{ID: "p2", CaseID: "c1", Amount: 5000}
	report := &usecase.PeriodReport{
		Period: daily,
		PerCase: []usecase.CaseDetail{{
			Case:       &domain.Case{ID: "c1"},
			Allocation: &domain.Allocation{CaseID: "c1"},
			Payments:   []usecase.PaymentAttribution{{Payment: payment, Attribution: domain.Attribution{ToA: 4600, ToB: 400}}},
		}},
	}

	resp := PeriodReportFromUseCase(report)
	if len(resp.PerCaseDetail) != 1 {
		t.Fatalf("expected one case detail, got %d", len(resp.PerCaseDetail))
	}
	got := resp.PerCaseDetail[0].Payments[0]
	if got.Payment.ID != "p2" || got.Attribution.ToA != 4600 || got.Attribution.PaymentID != "p2" {
		t.Fatalf("unexpected payment detail: %+v", got)
	}
}

func TestPendingReportFromUseCase(t *testing.T) {
	monthly, _ := domain.MonthlyPeriod(2025, 3, time.UTC)

	report := &usecase.PendingReport{
		Period: monthly,
		PendingA: []usecase.PendingEntry{{
			Case:       &domain.Case{ID: "c1"},
			Allocation: &domain.Allocation{Balances: domain.Balances{A: 600}},
		}},
		Totals: usecase.PendingTotals{CountA: 1, SumA: 600},
	}

	resp := PendingReportFromUseCase(report)
	if len(resp.PendingA) != 1 || resp.PendingA[0].Allocation.Balances.A != 600 {
		t.Fatalf("unexpected pending A: %+v", resp.PendingA)
	}
	if resp.PendingB == nil || len(resp.PendingB) != 0 {
		t.Fatalf("expected empty pending B list, got %v", resp.PendingB)
	}
	if resp.Totals.SumA != 600 || resp.Totals.CountA != 1 {
		t.Fatalf("unexpected totals: %+v", resp.Totals)
	}
}

func TestBackfillFromUseCase(t *testing.T) {
	resp := BackfillFromUseCase(&usecase.BackfillResult{Marked: []string{"c1"}, DryRun: true})
	if len(resp.Marked) != 1 || resp.NeedsReview == nil || !resp.DryRun {
		t.Fatalf("unexpected backfill response: %+v", resp)
	}
}
