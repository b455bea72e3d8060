// Package deductions computes a member's expected monthly payroll deduction
// and renders the batch CSV submitted to the payroll authority. The
// computation is pure; the deduction service feeds it repository data.
package deductions

import (
	"fmt"

	"github.com/shopspring/decimal"

	"saccos-core/internal/models"
)

// Breakdown is one member's expected deduction split by product category.
type Breakdown struct {
	MemberID         string
	MemberNumber     string
	NationalID       string
	EmployeeNumber   string
	FullName         string
	Savings          decimal.Decimal
	LoanInstallment  decimal.Decimal
	InsurancePremium decimal.Decimal
	Total            decimal.Decimal
	IsOverLimit      bool
	LimitNotes       string
}

// ComputeBreakdown sums the member's active savings contributions, loan
// installments on disbursed or active loans, and active policy premiums.
func ComputeBreakdown(member *models.Member, savings []models.MemberSavings, loans []models.Loan, policies []models.InsurancePolicy) Breakdown {
	b := Breakdown{
		MemberID:         member.ID,
		MemberNumber:     member.MemberNumber,
		NationalID:       member.NationalID,
		EmployeeNumber:   member.EmployeeNumber,
		FullName:         member.FullName,
		Savings:          decimal.Zero,
		LoanInstallment:  decimal.Zero,
		InsurancePremium: decimal.Zero,
	}

	for _, s := range savings {
		if s.IsActive {
			b.Savings = b.Savings.Add(s.MonthlyContribution)
		}
	}

	for _, l := range loans {
		if l.Status == models.LoanStatusActive || l.Status == models.LoanStatusDisbursed {
			b.LoanInstallment = b.LoanInstallment.Add(l.MonthlyInstallment)
		}
	}

	for _, p := range policies {
		if p.Status == models.PolicyActive {
			b.InsurancePremium = b.InsurancePremium.Add(p.MonthlyPremium)
		}
	}

	b.Total = b.Savings.Add(b.LoanInstallment).Add(b.InsurancePremium)
	return b
}

// CheckLimit flags a breakdown exceeding maxPercent of the member's net
// salary. A missing salary flags any nonzero deduction.
func CheckLimit(b *Breakdown, netSalary decimal.Decimal, maxPercent decimal.Decimal) {
	if netSalary.IsZero() {
		b.IsOverLimit = b.Total.GreaterThan(decimal.Zero)
		b.LimitNotes = "Member net salary is not recorded (P 0.00). Any deduction is flagged as over limit."
		return
	}

	maxDeduction := netSalary.Mul(maxPercent).Div(decimal.NewFromInt(100))
	b.IsOverLimit = b.Total.GreaterThan(maxDeduction)

	verdict := "Within limit."
	if b.IsOverLimit {
		verdict = "EXCEEDED."
	}
	b.LimitNotes = fmt.Sprintf("Limit: P %s (%s%% of P %s). Total: P %s. %s",
		maxDeduction.StringFixed(2), maxPercent.StringFixed(0), netSalary.StringFixed(2),
		b.Total.StringFixed(2), verdict)
}

// BatchNumber derives the tenant-scoped period identifier, e.g.
// "a1b2c3d4-202508".
func BatchNumber(tenantID string, month, year int) string {
	prefix := tenantID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return fmt.Sprintf("%s-%d%02d", prefix, year, month)
}
