package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DistributionMode selects how the A/B targets of a case are derived.
type DistributionMode string

const (
	// DistributionAuto splits the net base using the percentages frozen on the case.
	DistributionAuto DistributionMode = "auto"
	// DistributionManual uses the fixed amounts stored on the case as-is.
	DistributionManual DistributionMode = "manual"
)

// IsValid reports whether m is a known mode. The empty mode is accepted and
// read as auto, which is what rows written before the column existed carry.
func (m DistributionMode) IsValid() bool {
	return m == "" || m == DistributionAuto || m == DistributionManual
}

// CaseStatus is the lifecycle state of a case.
type CaseStatus string

const (
	CaseStatusActive CaseStatus = "active"
	CaseStatusClosed CaseStatus = "closed"
	CaseStatusVoid   CaseStatus = "void"
)

var validCaseStatuses = map[CaseStatus]bool{
	CaseStatusActive: true,
	CaseStatusClosed: true,
	CaseStatusVoid:   true,
}

// IsValid checks if the status is a known lifecycle state.
func (s CaseStatus) IsValid() bool {
	return validCaseStatuses[s]
}

// Case is a billable treatment accumulating expenses and payments.
//
// Amounts are integers in minor currency units. FrozenPercentA/B are captured
// once at creation in auto mode and never recomputed, so the allocation of a
// case can always be reproduced from the row alone.
type Case struct {
	ID               string
	PatientID        string
	Kind             string
	Description      string
	GrossPrice       int64
	FixedAmountA     int64
	FixedAmountB     int64
	DistributionMode DistributionMode
	FrozenPercentA   decimal.NullDecimal
	FrozenPercentB   decimal.NullDecimal
	Status           CaseStatus
	StartedAt        time.Time
	ClosedAt         *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Validate checks the numeric and enum fields the allocation engine relies on.
func (c *Case) Validate() error {
	if c.GrossPrice < 0 {
		return NewValidationError("gross_price", "must be an integer >= 0")
	}
	if c.FixedAmountA < 0 {
		return NewValidationError("fixed_amount_a", "must be an integer >= 0")
	}
	if c.FixedAmountB < 0 {
		return NewValidationError("fixed_amount_b", "must be an integer >= 0")
	}
	if !c.DistributionMode.IsValid() {
		return NewValidationError("distribution_mode", "must be auto or manual")
	}
	if err := ValidatePercent("frozen_percent_a", c.FrozenPercentA); err != nil {
		return err
	}
	if err := ValidatePercent("frozen_percent_b", c.FrozenPercentB); err != nil {
		return err
	}
	if c.Status != "" && !c.Status.IsValid() {
		return NewValidationError("status", "must be active, closed or void")
	}
	return nil
}

// HasFrozenPercentages reports whether either split percentage was captured.
func (c *Case) HasFrozenPercentages() bool {
	return c.FrozenPercentA.Valid || c.FrozenPercentB.Valid
}

// HasFixedAmounts reports whether either fixed amount is positive.
func (c *Case) HasFixedAmounts() bool {
	return c.FixedAmountA > 0 || c.FixedAmountB > 0
}

// FinancialLock is the capability check the write path evaluates before
// mutating the financial fields of a case: once a payment references the
// case, those fields are frozen.
type FinancialLock struct {
	HasPayments bool
}

// Check returns ErrCaseLocked when a financial change is attempted on a locked case.
func (l FinancialLock) Check(financialChange bool) error {
	if financialChange && l.HasPayments {
		return ErrCaseLocked
	}
	return nil
}
