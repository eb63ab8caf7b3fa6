package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/iho/caseledger/internal/domain"
)

func TestClassifyDistribution(t *testing.T) {
	tests := []struct {
		name string
		c    domain.Case
		want domain.Distribution
	}{
		{
			name: "empty case is auto",
			c:    domain.Case{},
			want: domain.Distribution{Mode: domain.DistributionAuto},
		},
		{
			name: "frozen percentages are auto",
			c:    domain.Case{DistributionMode: domain.DistributionAuto, FrozenPercentA: pct("60")},
			want: domain.Distribution{Mode: domain.DistributionAuto},
		},
		{
			name: "positive fixed amounts without percentages are legacy manual",
			c:    domain.Case{DistributionMode: domain.DistributionAuto, FixedAmountB: 10},
			want: domain.Distribution{Mode: domain.DistributionManual, LegacyFallback: true},
		},
		{
			name: "explicit manual",
			c:    domain.Case{DistributionMode: domain.DistributionManual},
			want: domain.Distribution{Mode: domain.DistributionManual},
		},
		{
			name: "manual with percentages needs review",
			c:    domain.Case{DistributionMode: domain.DistributionManual, FixedAmountA: 5, FrozenPercentB: pct("40")},
			want: domain.Distribution{Mode: domain.DistributionManual, NeedsReview: true},
		},
		{
			name: "auto with both needs review",
			c:    domain.Case{DistributionMode: domain.DistributionAuto, FixedAmountA: 5, FrozenPercentA: pct("40")},
			want: domain.Distribution{Mode: domain.DistributionAuto, NeedsReview: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ClassifyDistribution(&tt.c))
		})
	}
}

func TestSplitPercentages_Clamps(t *testing.T) {
	c := &domain.Case{FrozenPercentB: decimal.NewNullDecimal(decimal.NewFromInt(-10))}
	a, b := domain.SplitPercentages(c, decimal.NewFromInt(50))
	assert.True(t, a.Equal(decimal.NewFromInt(100)))
	assert.True(t, b.Equal(decimal.Zero))
}

func TestSplitNetBase_NonPositive(t *testing.T) {
	a, b := domain.SplitNetBase(0, decimal.NewFromInt(50))
	assert.Zero(t, a)
	assert.Zero(t, b)

	a, b = domain.SplitNetBase(-40, decimal.NewFromInt(50))
	assert.Zero(t, a)
	assert.Zero(t, b)
}
