package dto

import (
	"time"

	"github.com/iho/caseledger/internal/domain"
	"github.com/iho/caseledger/internal/usecase"
)

// PeriodResponse describes a report window [start, end).
type PeriodResponse struct {
	Kind  string    `json:"kind"`
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CashFlowResponse sums the movements dated inside the window.
type CashFlowResponse struct {
	Collected      int64            `json:"collected"`
	PaymentCount   int              `json:"payment_count"`
	ByMethod       map[string]int64 `json:"by_method"`
	Expenses       int64            `json:"expenses"`
	Reimbursable   int64            `json:"reimbursable"`
	OtherExpenses  int64            `json:"other_expenses"`
	ExpenseCount   int              `json:"expense_count"`
	NetOfExpenses  int64            `json:"net_of_expenses"`
	OrphanPayments int              `json:"orphan_payments"`
}

// DistributionResponse sums what the window's payments paid to each bucket.
type DistributionResponse struct {
	ToLab         int64 `json:"to_lab"`
	ToA           int64 `json:"to_a"`
	ToB           int64 `json:"to_b"`
	Surplus       int64 `json:"surplus"`
	LabCommitment int64 `json:"lab_commitment"`
	LabPending    int64 `json:"lab_pending"`
}

// ClosingResponse sums every case's allocation as of the window end.
type ClosingResponse struct {
	Cases       int              `json:"cases"`
	GrossPrice  int64            `json:"gross_price"`
	Collected   int64            `json:"collected"`
	Targets     TargetsResponse  `json:"targets"`
	Covered     BucketsResponse  `json:"covered"`
	Balances    BalancesResponse `json:"balances"`
	Delta       int64            `json:"delta"`
	NeedsReview []string         `json:"needs_review"`
}

// CaseDetailResponse is one case with activity inside a daily window.
type CaseDetailResponse struct {
	Case       *CaseResponse           `json:"case"`
	Allocation *AllocationResponse     `json:"allocation"`
	Payments   []PaymentDetailResponse `json:"payments"`
	Expenses   []*ExpenseResponse      `json:"expenses"`
}

// PaymentDetailResponse pairs a payment with its attribution.
type PaymentDetailResponse struct {
	Payment     *PaymentResponse    `json:"payment"`
	Attribution AttributionResponse `json:"attribution"`
}

// SkippedCaseResponse names a case left out of a best-effort report.
type SkippedCaseResponse struct {
	CaseID string `json:"case_id"`
	Reason string `json:"reason"`
}

// PeriodReportResponse represents a monthly or daily report.
type PeriodReportResponse struct {
	Period        PeriodResponse        `json:"period"`
	CashFlow      CashFlowResponse      `json:"cash_flow"`
	Distribution  DistributionResponse  `json:"distribution"`
	Closing       ClosingResponse       `json:"closing"`
	PerCaseDetail []CaseDetailResponse  `json:"per_case_detail,omitempty"`
	SkippedCases  []SkippedCaseResponse `json:"skipped_cases"`
}

// PeriodReportFromUseCase converts a period report to response.
func PeriodReportFromUseCase(r *usecase.PeriodReport) *PeriodReportResponse {
	byMethod := make(map[string]int64, len(r.CashFlow.ByMethod))
	for method, amount := range r.CashFlow.ByMethod {
		byMethod[string(method)] = amount
	}

	resp := &PeriodReportResponse{
		Period: periodFromDomain(r.Period),
		CashFlow: CashFlowResponse{
			Collected:      r.CashFlow.Collected,
			PaymentCount:   r.CashFlow.PaymentCount,
			ByMethod:       byMethod,
			Expenses:       r.CashFlow.Expenses,
			Reimbursable:   r.CashFlow.Reimbursable,
			OtherExpenses:  r.CashFlow.OtherExpenses,
			ExpenseCount:   r.CashFlow.ExpenseCount,
			NetOfExpenses:  r.CashFlow.NetOfExpenses,
			OrphanPayments: r.CashFlow.OrphanPayments,
		},
		Distribution: DistributionResponse{
			ToLab:         r.Distribution.ToLab,
			ToA:           r.Distribution.ToA,
			ToB:           r.Distribution.ToB,
			Surplus:       r.Distribution.Surplus,
			LabCommitment: r.Distribution.LabCommitment,
			LabPending:    r.Distribution.LabPending,
		},
		Closing: ClosingResponse{
			Cases:       r.Closing.Cases,
			GrossPrice:  r.Closing.GrossPrice,
			Collected:   r.Closing.Collected,
			Targets:     targetsFromDomain(r.Closing.Targets),
			Covered:     bucketsFromDomain(r.Closing.Covered),
			Balances:    balancesFromDomain(r.Closing.Balances),
			Delta:       r.Closing.Delta,
			NeedsReview: nonNil(r.Closing.NeedsReview),
		},
		SkippedCases: skippedFromUseCase(r.Skipped),
	}

	if r.Period.Kind == domain.PeriodDaily {
		resp.PerCaseDetail = make([]CaseDetailResponse, 0, len(r.PerCase))
		for _, detail := range r.PerCase {
			resp.PerCaseDetail = append(resp.PerCaseDetail, caseDetailFromUseCase(detail))
		}
	}

	return resp
}

// PendingEntryResponse is one case still owed A or B.
type PendingEntryResponse struct {
	Case       *CaseResponse       `json:"case"`
	Allocation *AllocationResponse `json:"allocation"`
}

// PendingTotalsResponse counts and sums each partition.
type PendingTotalsResponse struct {
	CountA int   `json:"count_a"`
	CountB int   `json:"count_b"`
	SumA   int64 `json:"sum_a"`
	SumB   int64 `json:"sum_b"`
}

// PendingReportResponse represents the pending balances partition.
type PendingReportResponse struct {
	Period       PeriodResponse         `json:"period"`
	PendingA     []PendingEntryResponse `json:"pending_a"`
	PendingB     []PendingEntryResponse `json:"pending_b"`
	Settled      int                    `json:"settled"`
	Totals       PendingTotalsResponse  `json:"totals"`
	SkippedCases []SkippedCaseResponse  `json:"skipped_cases"`
}

// PendingReportFromUseCase converts a pending report to response.
func PendingReportFromUseCase(r *usecase.PendingReport) *PendingReportResponse {
	return &PendingReportResponse{
		Period:   periodFromDomain(r.Period),
		PendingA: pendingEntries(r.PendingA),
		PendingB: pendingEntries(r.PendingB),
		Settled:  r.Settled,
		Totals: PendingTotalsResponse{
			CountA: r.Totals.CountA,
			CountB: r.Totals.CountB,
			SumA:   r.Totals.SumA,
			SumB:   r.Totals.SumB,
		},
		SkippedCases: skippedFromUseCase(r.Skipped),
	}
}

func periodFromDomain(p domain.Period) PeriodResponse {
	return PeriodResponse{
		Kind:  string(p.Kind),
		Label: p.Label(),
		Start: p.Start,
		End:   p.End,
	}
}

func pendingEntries(entries []usecase.PendingEntry) []PendingEntryResponse {
	result := make([]PendingEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = PendingEntryResponse{
			Case:       CaseFromDomain(e.Case),
			Allocation: AllocationFromDomain(e.Allocation),
		}
	}
	return result
}

func caseDetailFromUseCase(d usecase.CaseDetail) CaseDetailResponse {
	payments := make([]PaymentDetailResponse, len(d.Payments))
	for i, pa := range d.Payments {
		payments[i] = PaymentDetailResponse{
			Payment:     PaymentFromDomain(pa.Payment),
			Attribution: attributionFromDomain(pa.Payment.ID, pa.Attribution),
		}
	}
	return CaseDetailResponse{
		Case:       CaseFromDomain(d.Case),
		Allocation: AllocationFromDomain(d.Allocation),
		Payments:   payments,
		Expenses:   ExpensesFromDomain(d.Expenses),
	}
}

func skippedFromUseCase(skipped []usecase.SkippedCase) []SkippedCaseResponse {
	result := make([]SkippedCaseResponse, len(skipped))
	for i, s := range skipped {
		result[i] = SkippedCaseResponse{CaseID: s.CaseID, Reason: s.Reason}
	}
	return result
}
