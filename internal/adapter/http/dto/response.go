package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/caseledger/internal/domain"
	"github.com/iho/caseledger/internal/usecase"
)

// CaseResponse represents a case in API responses.
type CaseResponse struct {
	ID               string           `json:"id"`
	PatientID        string           `json:"patient_id"`
	Kind             string           `json:"kind"`
	Description      string           `json:"description"`
	GrossPrice       int64            `json:"gross_price"`
	FixedAmountA     int64            `json:"fixed_amount_a"`
	FixedAmountB     int64            `json:"fixed_amount_b"`
	DistributionMode string           `json:"distribution_mode"`
	FrozenPercentA   *decimal.Decimal `json:"frozen_percent_a"`
	FrozenPercentB   *decimal.Decimal `json:"frozen_percent_b"`
	Status           string           `json:"status"`
	StartedAt        time.Time        `json:"started_at"`
	ClosedAt         *time.Time       `json:"closed_at"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// CaseFromDomain converts a domain case to response.
func CaseFromDomain(c *domain.Case) *CaseResponse {
	return &CaseResponse{
		ID:               c.ID,
		PatientID:        c.PatientID,
		Kind:             c.Kind,
		Description:      c.Description,
		GrossPrice:       c.GrossPrice,
		FixedAmountA:     c.FixedAmountA,
		FixedAmountB:     c.FixedAmountB,
		DistributionMode: string(c.DistributionMode),
		FrozenPercentA:   nullDecimal(c.FrozenPercentA),
		FrozenPercentB:   nullDecimal(c.FrozenPercentB),
		Status:           string(c.Status),
		StartedAt:        c.StartedAt,
		ClosedAt:         c.ClosedAt,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

// CasesFromDomain converts domain cases to responses.
func CasesFromDomain(cases []*domain.Case) []*CaseResponse {
	result := make([]*CaseResponse, len(cases))
	for i, c := range cases {
		result[i] = CaseFromDomain(c)
	}
	return result
}

// ListCasesResponse represents a page of cases.
type ListCasesResponse struct {
	Cases []*CaseResponse `json:"cases"`
	Total int64           `json:"total"`
}

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	ID        string    `json:"id"`
	CaseID    string    `json:"case_id"`
	Amount    int64     `json:"amount"`
	Date      time.Time `json:"date"`
	Method    string    `json:"method"`
	Reference string    `json:"reference,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PaymentFromDomain converts a domain payment to response.
func PaymentFromDomain(p *domain.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:        p.ID,
		CaseID:    p.CaseID,
		Amount:    p.Amount,
		Date:      p.Date,
		Method:    string(p.Method),
		Reference: p.Reference,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt,
	}
}

// PaymentsFromDomain converts domain payments to responses.
func PaymentsFromDomain(payments []*domain.Payment) []*PaymentResponse {
	result := make([]*PaymentResponse, len(payments))
	for i, p := range payments {
		result[i] = PaymentFromDomain(p)
	}
	return result
}

// ExpenseResponse represents an expense in API responses.
type ExpenseResponse struct {
	ID          string    `json:"id"`
	CaseID      string    `json:"case_id"`
	Kind        string    `json:"kind"`
	Description string    `json:"description,omitempty"`
	Amount      int64     `json:"amount"`
	Date        time.Time `json:"date"`
	Settled     bool      `json:"settled"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExpenseFromDomain converts a domain expense to response.
func ExpenseFromDomain(e *domain.Expense) *ExpenseResponse {
	kind := e.Kind
	if kind == "" {
		kind = domain.ExpenseReimbursable
	}
	return &ExpenseResponse{
		ID:          e.ID,
		CaseID:      e.CaseID,
		Kind:        string(kind),
		Description: e.Description,
		Amount:      e.Amount,
		Date:        e.Date,
		Settled:     e.Settled,
		CreatedAt:   e.CreatedAt,
	}
}

// ExpensesFromDomain converts domain expenses to responses.
func ExpensesFromDomain(expenses []*domain.Expense) []*ExpenseResponse {
	result := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		result[i] = ExpenseFromDomain(e)
	}
	return result
}

// TargetsResponse holds the amounts owed to each bucket.
type TargetsResponse struct {
	Lab int64 `json:"lab"`
	A   int64 `json:"a"`
	B   int64 `json:"b"`
	Sum int64 `json:"sum"`
}

// BucketsResponse holds an amount per bucket.
type BucketsResponse struct {
	Lab int64 `json:"lab"`
	A   int64 `json:"a"`
	B   int64 `json:"b"`
}

// BalancesResponse holds the outstanding amounts.
type BalancesResponse struct {
	Payer int64 `json:"payer"`
	Lab   int64 `json:"lab"`
	A     int64 `json:"a"`
	B     int64 `json:"b"`
}

// ControlResponse exposes how targets were derived.
type ControlResponse struct {
	GrossPrice     int64            `json:"gross_price"`
	NetProfit      int64            `json:"net_profit"`
	NetBase        int64            `json:"net_base"`
	Mode           string           `json:"mode"`
	LegacyFallback bool             `json:"legacy_fallback"`
	NeedsReview    bool             `json:"needs_review"`
	PercentA       *decimal.Decimal `json:"percent_a"`
	PercentB       *decimal.Decimal `json:"percent_b"`
	Delta          int64            `json:"delta"`
}

// AllocationResponse represents the financial picture of a case.
type AllocationResponse struct {
	CaseID         string           `json:"case_id"`
	TotalCollected int64            `json:"total_collected"`
	Targets        TargetsResponse  `json:"targets"`
	Covered        BucketsResponse  `json:"covered"`
	Balances       BalancesResponse `json:"balances"`
	Control        ControlResponse  `json:"control"`
}

// AllocationFromDomain converts an allocation to response.
func AllocationFromDomain(a *domain.Allocation) *AllocationResponse {
	if a == nil {
		return nil
	}
	return &AllocationResponse{
		CaseID:         a.CaseID,
		TotalCollected: a.TotalCollected,
		Targets:        targetsFromDomain(a.Targets),
		Covered:        bucketsFromDomain(a.Covered),
		Balances:       balancesFromDomain(a.Balances),
		Control: ControlResponse{
			GrossPrice:     a.Control.GrossPrice,
			NetProfit:      a.Control.NetProfit,
			NetBase:        a.Control.NetBase,
			Mode:           string(a.Control.Mode),
			LegacyFallback: a.Control.LegacyFallback,
			NeedsReview:    a.Control.NeedsReview,
			PercentA:       nullDecimal(a.Control.PercentA),
			PercentB:       nullDecimal(a.Control.PercentB),
			Delta:          a.Control.Delta,
		},
	}
}

// AttributionResponse is one payment's share of each bucket.
type AttributionResponse struct {
	PaymentID string `json:"payment_id"`
	ToLab     int64  `json:"to_lab"`
	ToA       int64  `json:"to_a"`
	ToB       int64  `json:"to_b"`
	Surplus   int64  `json:"surplus"`
}

func attributionFromDomain(paymentID string, a domain.Attribution) AttributionResponse {
	return AttributionResponse{
		PaymentID: paymentID,
		ToLab:     a.ToLab,
		ToA:       a.ToA,
		ToB:       a.ToB,
		Surplus:   a.Surplus,
	}
}

// CaseSummaryResponse represents a case with its movements and allocation.
type CaseSummaryResponse struct {
	Case       *CaseResponse         `json:"case"`
	Payments   []*PaymentResponse    `json:"payments"`
	Expenses   []*ExpenseResponse    `json:"expenses"`
	Allocation *AllocationResponse   `json:"allocation"`
	Waterfall  []AttributionResponse `json:"waterfall"`
}

// CaseSummaryFromUseCase converts a case summary to response.
func CaseSummaryFromUseCase(s *usecase.CaseSummary) *CaseSummaryResponse {
	resp := &CaseSummaryResponse{
		Case:       CaseFromDomain(s.Case),
		Payments:   PaymentsFromDomain(s.Payments),
		Expenses:   ExpensesFromDomain(s.Expenses),
		Allocation: AllocationFromDomain(s.Allocation),
		Waterfall:  []AttributionResponse{},
	}
	if s.Replay != nil {
		for _, id := range s.Replay.Order {
			resp.Waterfall = append(resp.Waterfall, attributionFromDomain(id, s.Replay.ByPayment[id]))
		}
	}
	return resp
}

// RemoveCaseResponse reports the outcome of a removal.
type RemoveCaseResponse struct {
	ID          string `json:"id"`
	Mode        string `json:"mode"`
	AlreadyVoid bool   `json:"already_void,omitempty"`
}

// BackfillResponse reports the outcome of the legacy backfill.
type BackfillResponse struct {
	Marked      []string `json:"marked"`
	NeedsReview []string `json:"needs_review"`
	DryRun      bool     `json:"dry_run"`
}

// BackfillFromUseCase converts a backfill result to response.
func BackfillFromUseCase(r *usecase.BackfillResult) *BackfillResponse {
	return &BackfillResponse{
		Marked:      nonNil(r.Marked),
		NeedsReview: nonNil(r.NeedsReview),
		DryRun:      r.DryRun,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}

func targetsFromDomain(t domain.Targets) TargetsResponse {
	return TargetsResponse{Lab: t.Lab, A: t.A, B: t.B, Sum: t.Sum}
}

func bucketsFromDomain(b domain.Buckets) BucketsResponse {
	return BucketsResponse{Lab: b.Lab, A: b.A, B: b.B}
}

func balancesFromDomain(b domain.Balances) BalancesResponse {
	return BalancesResponse{Payer: b.Payer, Lab: b.Lab, A: b.A, B: b.B}
}

func nullDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
