package deductions

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"saccos-core/internal/models"
)

func testMember() *models.Member {
	return &models.Member{
		ID:               "m-1",
		MemberNumber:     "M-0001",
		NationalID:       "19850101",
		FullName:         "Neo Kgosi",
		MonthlyNetSalary: decimal.NewFromInt(8000),
		JoinDate:         time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestComputeBreakdown(t *testing.T) {
	member := testMember()
	savings := []models.MemberSavings{
		{MonthlyContribution: decimal.NewFromInt(500), IsActive: true},
		{MonthlyContribution: decimal.NewFromInt(200), IsActive: true},
		{MonthlyContribution: decimal.NewFromInt(999), IsActive: false},
	}
	loans := []models.Loan{
		{MonthlyInstallment: decimal.NewFromInt(1200), Status: models.LoanStatusActive},
		{MonthlyInstallment: decimal.NewFromInt(800), Status: models.LoanStatusDisbursed},
		{MonthlyInstallment: decimal.NewFromInt(400), Status: models.LoanStatusPaidOff},
	}
	policies := []models.InsurancePolicy{
		{MonthlyPremium: decimal.NewFromInt(150), Status: models.PolicyActive},
		{MonthlyPremium: decimal.NewFromInt(90), Status: models.PolicyLapsed},
	}

	b := ComputeBreakdown(member, savings, loans, policies)

	assert.True(t, b.Savings.Equal(decimal.NewFromInt(700)))
	assert.True(t, b.LoanInstallment.Equal(decimal.NewFromInt(2000)))
	assert.True(t, b.InsurancePremium.Equal(decimal.NewFromInt(150)))
	assert.True(t, b.Total.Equal(decimal.NewFromInt(2850)))
	assert.Equal(t, "M-0001", b.MemberNumber)
}

func TestComputeBreakdownEmpty(t *testing.T) {
	b := ComputeBreakdown(testMember(), nil, nil, nil)
	assert.True(t, b.Total.IsZero())
}

func TestCheckLimit(t *testing.T) {
	maxPercent := decimal.NewFromInt(40)

	t.Run("within limit", func(t *testing.T) {
		b := &Breakdown{Total: decimal.NewFromInt(2850)}

		CheckLimit(b, decimal.NewFromInt(8000), maxPercent)

		assert.False(t, b.IsOverLimit)
		assert.Contains(t, b.LimitNotes, "Within limit")
	})

	t.Run("over limit", func(t *testing.T) {
		b := &Breakdown{Total: decimal.NewFromInt(3500)}

		CheckLimit(b, decimal.NewFromInt(8000), maxPercent)

		assert.True(t, b.IsOverLimit)
		assert.Contains(t, b.LimitNotes, "EXCEEDED")
	})

	t.Run("exactly at limit passes", func(t *testing.T) {
		b := &Breakdown{Total: decimal.NewFromInt(3200)}

		CheckLimit(b, decimal.NewFromInt(8000), maxPercent)

		assert.False(t, b.IsOverLimit)
	})

	t.Run("zero salary flags any deduction", func(t *testing.T) {
		b := &Breakdown{Total: decimal.NewFromInt(100)}

		CheckLimit(b, decimal.Zero, maxPercent)

		assert.True(t, b.IsOverLimit)
		assert.Contains(t, b.LimitNotes, "not recorded")
	})
}

func TestBatchNumber(t *testing.T) {
	assert.Equal(t, "a1b2c3d4-202508", BatchNumber("a1b2c3d4-9999-8888", 8, 2025))
	assert.Equal(t, "short-202512", BatchNumber("short", 12, 2025))
}
