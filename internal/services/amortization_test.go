package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMonthlyInstallment(t *testing.T) {
	t.Run("standard amortization", func(t *testing.T) {
		installment := MonthlyInstallment(decimal.NewFromInt(10000), decimal.NewFromInt(12), 12)

		// P=10000 at 12% over 12 months
		diff := installment.Sub(decimal.NewFromFloat(888.49)).Abs()
		assert.True(t, diff.LessThanOrEqual(decimal.NewFromFloat(0.01)),
			"installment = %s", installment)
	})

	t.Run("zero rate divides principal evenly", func(t *testing.T) {
		installment := MonthlyInstallment(decimal.NewFromInt(12000), decimal.Zero, 12)
		assert.True(t, installment.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("single month term", func(t *testing.T) {
		installment := MonthlyInstallment(decimal.NewFromInt(1000), decimal.NewFromInt(12), 1)

		// one month of interest at 1%
		assert.True(t, installment.Equal(decimal.NewFromInt(1010)))
	})
}

func TestTotalAmountDue(t *testing.T) {
	total := TotalAmountDue(decimal.NewFromFloat(888.49), 12,
		decimal.NewFromInt(100), decimal.NewFromInt(50))

	assert.True(t, total.Equal(decimal.NewFromFloat(10811.88)), "total = %s", total)
}

func TestAddMonthsClamped(t *testing.T) {
	cases := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{
			"january 31 clamps into february",
			time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
			1,
			time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			"leap year february",
			time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			1,
			time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			"mid-month needs no clamp",
			time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			12,
			time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			"december rolls into next year",
			time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
			2,
			time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, addMonthsClamped(tc.start, tc.months))
		})
	}
}
