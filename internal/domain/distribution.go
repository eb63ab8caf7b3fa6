package domain

import "github.com/shopspring/decimal"

// DefaultPercentA is the share of the net base owed to A when a case carries
// no frozen percentages. B receives the complement.
const DefaultPercentA = "68.42105"

var hundred = decimal.NewFromInt(100)

// Distribution is the resolved way a case's A/B targets are computed. It is
// derived once, here, so the single-case view and the period reports can
// never disagree on the mode of a case.
type Distribution struct {
	Mode DistributionMode
	// LegacyFallback is set when the stored mode says auto but the case has
	// positive fixed amounts and no frozen percentages, i.e. it predates
	// percentage freezing and resolves to its fixed amounts.
	LegacyFallback bool
	// NeedsReview is set when both fixed amounts and frozen percentages are
	// present. The stored mode wins; the case is flagged instead of guessed.
	NeedsReview bool
}

// ClassifyDistribution resolves the distribution mode of c from its stored fields.
func ClassifyDistribution(c *Case) Distribution {
	frozen := c.HasFrozenPercentages()
	fixed := c.HasFixedAmounts()

	if c.DistributionMode == DistributionManual {
		return Distribution{Mode: DistributionManual, NeedsReview: frozen}
	}

	if !frozen && fixed {
		return Distribution{Mode: DistributionManual, LegacyFallback: true}
	}

	return Distribution{Mode: DistributionAuto, NeedsReview: frozen && fixed}
}

// SplitPercentages returns the working percentages for an auto-mode case.
// Each side is clamped to [0,100] on its own; a stored pair that does not sum
// to 100 is kept as-is.
func SplitPercentages(c *Case, defaultPercentA decimal.Decimal) (pctA, pctB decimal.Decimal) {
	switch {
	case c.FrozenPercentA.Valid:
		pctA = c.FrozenPercentA.Decimal
		if c.FrozenPercentB.Valid {
			pctB = c.FrozenPercentB.Decimal
		} else {
			pctB = hundred.Sub(pctA)
		}
	case c.FrozenPercentB.Valid:
		pctB = c.FrozenPercentB.Decimal
		pctA = hundred.Sub(pctB)
	default:
		pctA = defaultPercentA
		pctB = hundred.Sub(defaultPercentA)
	}

	return clampPercent(pctA), clampPercent(pctB)
}

// SplitNetBase divides netBase into A and B. A is rounded half-up and B takes
// the remainder, so targetA + targetB == netBase exactly.
func SplitNetBase(netBase int64, pctA decimal.Decimal) (targetA, targetB int64) {
	if netBase <= 0 {
		return 0, 0
	}
	targetA = decimal.NewFromInt(netBase).Mul(pctA).Shift(-2).Round(0).IntPart()
	return targetA, netBase - targetA
}

func clampPercent(p decimal.Decimal) decimal.Decimal {
	if p.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}
