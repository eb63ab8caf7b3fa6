package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Targets are the amounts owed to each bucket of a case.
type Targets struct {
	Lab int64
	A   int64
	B   int64
	Sum int64
}

// Buckets holds one amount per waterfall bucket.
type Buckets struct {
	Lab int64
	A   int64
	B   int64
}

// Total returns Lab + A + B.
func (b Buckets) Total() int64 {
	return b.Lab + b.A + b.B
}

// Balances are the outstanding amounts of a case. Payer is negative when the
// payer has overpaid.
type Balances struct {
	Payer int64
	Lab   int64
	A     int64
	B     int64
}

// AllocationControl exposes how the targets were derived.
type AllocationControl struct {
	GrossPrice int64
	// NetProfit is GrossPrice minus the lab target and may be negative.
	NetProfit      int64
	NetBase        int64
	Mode           DistributionMode
	LegacyFallback bool
	NeedsReview    bool
	// PercentA and PercentB are only set in auto mode.
	PercentA decimal.NullDecimal
	PercentB decimal.NullDecimal
	// Delta is GrossPrice minus the sum of the three targets.
	Delta int64
}

// Allocation is the point-in-time financial picture of one case.
type Allocation struct {
	CaseID         string
	TotalCollected int64
	Targets        Targets
	Covered        Buckets
	Balances       Balances
	Control        AllocationControl
}

// AllocationEngine computes case allocations. It holds no mutable state and is
// safe for concurrent use.
type AllocationEngine struct {
	defaultPercentA decimal.Decimal
}

// NewAllocationEngine creates an engine falling back to defaultPercentA for
// cases that carry neither fixed amounts nor frozen percentages.
func NewAllocationEngine(defaultPercentA decimal.Decimal) *AllocationEngine {
	return &AllocationEngine{defaultPercentA: clampPercent(defaultPercentA)}
}

// NewDefaultAllocationEngine creates an engine using DefaultPercentA.
func NewDefaultAllocationEngine() *AllocationEngine {
	return NewAllocationEngine(decimal.RequireFromString(DefaultPercentA))
}

// DefaultPercentages returns the fallback A/B pair, used to freeze the split
// of newly created auto cases.
func (e *AllocationEngine) DefaultPercentages() (pctA, pctB decimal.Decimal) {
	return e.defaultPercentA, hundred.Sub(e.defaultPercentA)
}

// Compute derives targets, covered amounts and balances for c from its
// expenses and payments, in any order. The result is all-or-nothing: any
// malformed amount rejects the whole case.
func (e *AllocationEngine) Compute(c *Case, expenses []*Expense, payments []*Payment) (*Allocation, error) {
	if c == nil {
		return nil, NewValidationError("case", "is required")
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("case %s: %w", c.ID, err)
	}

	labTarget, err := reimbursableTotal(c, expenses)
	if err != nil {
		return nil, err
	}

	totalCollected, err := collectedTotal(c, payments)
	if err != nil {
		return nil, err
	}

	dist := ClassifyDistribution(c)
	netProfit := c.GrossPrice - labTarget

	control := AllocationControl{
		GrossPrice:     c.GrossPrice,
		NetProfit:      netProfit,
		NetBase:        max(netProfit, 0),
		Mode:           dist.Mode,
		LegacyFallback: dist.LegacyFallback,
		NeedsReview:    dist.NeedsReview,
	}

	var targetA, targetB int64
	if dist.Mode == DistributionManual {
		targetA = max(c.FixedAmountA, 0)
		targetB = max(c.FixedAmountB, 0)
	} else {
		pctA, pctB := SplitPercentages(c, e.defaultPercentA)
		control.PercentA = decimal.NewNullDecimal(pctA)
		control.PercentB = decimal.NewNullDecimal(pctB)
		targetA, targetB = SplitNetBase(control.NetBase, pctA)
	}

	targets := Targets{Lab: labTarget, A: targetA, B: targetB}
	targets.Sum = targets.Lab + targets.A + targets.B
	control.Delta = c.GrossPrice - targets.Sum

	covered, _ := applyWaterfall(totalCollected, targets, Buckets{})

	return &Allocation{
		CaseID:         c.ID,
		TotalCollected: totalCollected,
		Targets:        targets,
		Covered:        covered,
		Balances: Balances{
			Payer: c.GrossPrice - totalCollected,
			Lab:   targets.Lab - covered.Lab,
			A:     targets.A - covered.A,
			B:     targets.B - covered.B,
		},
		Control: control,
	}, nil
}

func reimbursableTotal(c *Case, expenses []*Expense) (int64, error) {
	var total int64
	for _, exp := range expenses {
		if err := exp.Validate(); err != nil {
			return 0, fmt.Errorf("case %s expense %s: %w", c.ID, exp.ID, err)
		}
		if exp.CaseID != "" && c.ID != "" && exp.CaseID != c.ID {
			return 0, fmt.Errorf("expense %s: %w", exp.ID, NewValidationError("case_id", "does not match case "+c.ID))
		}
		if exp.IsReimbursable() {
			total += exp.Amount
		}
	}
	return max(total, 0), nil
}

func collectedTotal(c *Case, payments []*Payment) (int64, error) {
	var total int64
	for _, p := range payments {
		if err := p.Validate(); err != nil {
			return 0, fmt.Errorf("case %s payment %s: %w", c.ID, p.ID, err)
		}
		if p.CaseID != "" && c.ID != "" && p.CaseID != c.ID {
			return 0, fmt.Errorf("payment %s: %w", p.ID, NewValidationError("case_id", "does not match case "+c.ID))
		}
		total += p.Amount
	}
	return total, nil
}

// applyWaterfall pours amount into lab, A and B in that order, each bucket
// taking at most what its target still lacks given covered. It returns the
// part assigned to each bucket and the surplus left over.
func applyWaterfall(amount int64, targets Targets, covered Buckets) (Buckets, int64) {
	remaining := amount
	var out Buckets
	out.Lab = take(&remaining, targets.Lab-covered.Lab)
	out.A = take(&remaining, targets.A-covered.A)
	out.B = take(&remaining, targets.B-covered.B)
	return out, max(remaining, 0)
}

func take(remaining *int64, room int64) int64 {
	n := min(*remaining, max(room, 0))
	*remaining -= n
	return n
}
