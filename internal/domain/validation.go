package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxDescriptionLength        = 300
	MaxExpenseDescriptionLength = 200
	MaxReferenceLength          = 80
	MaxNotesLength              = 300
	MaxCaseListSize             = 300

	// PercentScale is the number of decimal places a stored percentage keeps.
	PercentScale int32 = 5
)

var (
	percentMin = decimal.Zero
	percentMax = decimal.NewFromInt(100)
)

// ValidatePercent checks that an optional percentage lies in [0,100] and
// has at most PercentScale decimal places.
func ValidatePercent(field string, pct decimal.NullDecimal) error {
	if !pct.Valid {
		return nil
	}
	if pct.Decimal.LessThan(percentMin) || pct.Decimal.GreaterThan(percentMax) {
		return NewValidationError(field, "must be between 0 and 100")
	}
	if !PercentFitsScale(pct.Decimal) {
		return NewValidationError(field, fmt.Sprintf("must have at most %d decimal places", PercentScale))
	}
	return nil
}

// PercentFitsScale reports whether pct is stored without rounding.
func PercentFitsScale(pct decimal.Decimal) bool {
	return pct.Equal(pct.Truncate(PercentScale))
}

// ValidateNonNegative checks an integer amount field is >= 0.
func ValidateNonNegative(field string, amount int64) error {
	if amount < 0 {
		return NewValidationError(field, "must be an integer >= 0")
	}
	return nil
}

// ValidateText trims s and checks it does not exceed max characters.
func ValidateText(field, s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	if len([]rune(s)) > max {
		return "", NewValidationError(field, fmt.Sprintf("exceeds %d characters", max))
	}
	return s, nil
}

// ValidatePagination clamps a list limit to (0, MaxCaseListSize].
func ValidatePagination(limit int) int {
	if limit <= 0 || limit > MaxCaseListSize {
		return MaxCaseListSize
	}
	return limit
}
