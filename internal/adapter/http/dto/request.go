package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/caseledger/internal/domain"
	"github.com/iho/caseledger/internal/usecase"
)

// CreateCaseRequest represents a request to open a case. Sending either fixed
// amount, even 0, makes the case manual.
type CreateCaseRequest struct {
	PatientID    string     `json:"patient_id"`
	Kind         string     `json:"kind"`
	Description  string     `json:"description"`
	GrossPrice   int64      `json:"gross_price"`
	FixedAmountA *int64     `json:"fixed_amount_a,omitempty"`
	FixedAmountB *int64     `json:"fixed_amount_b,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateCaseRequest) ToUseCaseInput() usecase.CreateCaseInput {
	return usecase.CreateCaseInput{
		PatientID:    r.PatientID,
		Kind:         r.Kind,
		Description:  r.Description,
		GrossPrice:   r.GrossPrice,
		FixedAmountA: r.FixedAmountA,
		FixedAmountB: r.FixedAmountB,
		StartedAt:    r.StartedAt,
	}
}

// UpdateCaseRequest carries the fields to change; absent fields are kept.
type UpdateCaseRequest struct {
	Kind             *string          `json:"kind,omitempty"`
	Description      *string          `json:"description,omitempty"`
	GrossPrice       *int64           `json:"gross_price,omitempty"`
	FixedAmountA     *int64           `json:"fixed_amount_a,omitempty"`
	FixedAmountB     *int64           `json:"fixed_amount_b,omitempty"`
	DistributionMode *string          `json:"distribution_mode,omitempty"`
	FrozenPercentA   *decimal.Decimal `json:"frozen_percent_a,omitempty"`
	FrozenPercentB   *decimal.Decimal `json:"frozen_percent_b,omitempty"`
	Status           *string          `json:"status,omitempty"`
	StartedAt        *time.Time       `json:"started_at,omitempty"`
	ClosedAt         *time.Time       `json:"closed_at,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateCaseRequest) ToUseCaseInput() usecase.UpdateCaseInput {
	input := usecase.UpdateCaseInput{
		Kind:           r.Kind,
		Description:    r.Description,
		GrossPrice:     r.GrossPrice,
		FixedAmountA:   r.FixedAmountA,
		FixedAmountB:   r.FixedAmountB,
		FrozenPercentA: r.FrozenPercentA,
		FrozenPercentB: r.FrozenPercentB,
		StartedAt:      r.StartedAt,
		ClosedAt:       r.ClosedAt,
	}
	if r.DistributionMode != nil {
		mode := domain.DistributionMode(*r.DistributionMode)
		input.DistributionMode = &mode
	}
	if r.Status != nil {
		status := domain.CaseStatus(*r.Status)
		input.Status = &status
	}
	return input
}

// SetStatusRequest represents a lifecycle change.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// RecordPaymentRequest represents a payment collected for a case.
type RecordPaymentRequest struct {
	CaseID    string     `json:"case_id"`
	Amount    int64      `json:"amount"`
	Method    string     `json:"method"`
	Date      *time.Time `json:"date,omitempty"`
	Reference string     `json:"reference,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordPaymentRequest) ToUseCaseInput() usecase.RecordPaymentInput {
	return usecase.RecordPaymentInput{
		CaseID:    r.CaseID,
		Amount:    r.Amount,
		Method:    domain.PaymentMethod(r.Method),
		Date:      r.Date,
		Reference: r.Reference,
		Notes:     r.Notes,
	}
}

// RecordExpenseRequest represents a cost recorded against a case.
type RecordExpenseRequest struct {
	CaseID      string     `json:"case_id"`
	Kind        string     `json:"kind,omitempty"`
	Description string     `json:"description,omitempty"`
	Amount      int64      `json:"amount"`
	Date        *time.Time `json:"date,omitempty"`
	Settled     bool       `json:"settled,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordExpenseRequest) ToUseCaseInput() usecase.RecordExpenseInput {
	return usecase.RecordExpenseInput{
		CaseID:      r.CaseID,
		Kind:        domain.ExpenseKind(r.Kind),
		Description: r.Description,
		Amount:      r.Amount,
		Date:        r.Date,
		Settled:     r.Settled,
	}
}
