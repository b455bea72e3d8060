package eligibility

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func baseInput() Input {
	return Input{
		RequestedAmount:   decimal.NewFromInt(30000),
		TotalSavings:      decimal.NewFromInt(15000),
		SavingsMultiplier: decimal.NewFromInt(3),
		ActiveLoans:       nil,
		JoinDate:          time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
		RequiredMonths:    6,
		Now:               time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestEvaluate(t *testing.T) {
	t.Run("passes when all checks pass", func(t *testing.T) {
		result := Evaluate(baseInput())

		assert.True(t, result.Passed)
		assert.True(t, result.SavingsRatio.Passed)
		assert.True(t, result.ActiveLoan.Passed)
		assert.True(t, result.MembershipDuration.Passed)
	})

	t.Run("fails on insufficient savings", func(t *testing.T) {
		in := baseInput()
		in.RequestedAmount = decimal.NewFromInt(50000)

		result := Evaluate(in)

		assert.False(t, result.Passed)
		assert.False(t, result.SavingsRatio.Passed)
		assert.Contains(t, result.SavingsRatio.Details, "Insufficient savings")
		assert.True(t, result.SavingsRatio.MaxLoanAmount.Equal(decimal.NewFromInt(45000)))
	})

	t.Run("boundary amount passes", func(t *testing.T) {
		in := baseInput()
		in.RequestedAmount = decimal.NewFromInt(45000)

		result := Evaluate(in)
		assert.True(t, result.SavingsRatio.Passed)
	})

	t.Run("zero multiplier fails without dividing", func(t *testing.T) {
		in := baseInput()
		in.SavingsMultiplier = decimal.Zero

		result := Evaluate(in)

		assert.False(t, result.SavingsRatio.Passed)
		assert.True(t, result.SavingsRatio.MaxLoanAmount.IsZero())
		assert.True(t, result.SavingsRatio.RequiredSavings.IsZero())
	})

	t.Run("fails with an active loan", func(t *testing.T) {
		in := baseInput()
		in.ActiveLoans = []ActiveLoan{
			{LoanNumber: "LN-20250101-010101", OutstandingBalance: decimal.NewFromInt(5000)},
		}

		result := Evaluate(in)

		assert.False(t, result.Passed)
		assert.False(t, result.ActiveLoan.Passed)
		assert.Equal(t, 1, result.ActiveLoan.ActiveLoansCount)
		assert.Contains(t, result.ActiveLoan.Details, "1 active loan(s)")
	})

	t.Run("fails on short membership", func(t *testing.T) {
		in := baseInput()
		in.JoinDate = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

		result := Evaluate(in)

		assert.False(t, result.Passed)
		assert.False(t, result.MembershipDuration.Passed)
		assert.Equal(t, 3, result.MembershipDuration.MonthsAsMember)
	})

	t.Run("is deterministic for the same input", func(t *testing.T) {
		in := baseInput()
		first := Evaluate(in)
		second := Evaluate(in)
		assert.Equal(t, first, second)
	})
}

func TestMonthsBetween(t *testing.T) {
	cases := []struct {
		name string
		from time.Time
		to   time.Time
		want int
	}{
		{"same month", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 28, 0, 0, 0, 0, time.UTC), 0},
		{"across year boundary", time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC), time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), 3},
		{"exactly six months", time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), 6},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, monthsBetween(tc.from, tc.to))
		})
	}
}
