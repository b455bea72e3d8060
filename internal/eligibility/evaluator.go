// Package eligibility implements the automated screening a loan application
// must pass before entering the guarantor stage. The evaluator is pure: the
// caller gathers the member's savings, loans, and join date, and the same
// inputs always produce the same result.
package eligibility

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ActiveLoan is a summary of an outstanding loan counted against the
// one-loan-at-a-time policy.
type ActiveLoan struct {
	LoanNumber         string          `json:"loan_number"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
}

// Input carries everything the three checks need.
type Input struct {
	RequestedAmount   decimal.Decimal
	TotalSavings      decimal.Decimal
	SavingsMultiplier decimal.Decimal
	ActiveLoans       []ActiveLoan
	JoinDate          time.Time
	RequiredMonths    int
	Now               time.Time
}

// SavingsRatioCheck is the savings-backed lending limit check.
type SavingsRatioCheck struct {
	Passed          bool            `json:"passed"`
	Details         string          `json:"details"`
	MemberSavings   decimal.Decimal `json:"member_savings"`
	RequiredSavings decimal.Decimal `json:"required_savings"`
	MaxLoanAmount   decimal.Decimal `json:"max_loan_amount"`
}

// ActiveLoanCheck enforces the one-outstanding-loan policy.
type ActiveLoanCheck struct {
	Passed           bool         `json:"passed"`
	Details          string       `json:"details"`
	ActiveLoansCount int          `json:"active_loans_count"`
	ActiveLoans      []ActiveLoan `json:"active_loans,omitempty"`
}

// MembershipDurationCheck enforces the minimum tenure rule.
type MembershipDurationCheck struct {
	Passed         bool      `json:"passed"`
	Details        string    `json:"details"`
	JoinDate       time.Time `json:"join_date"`
	MonthsAsMember int       `json:"months_as_member"`
	RequiredMonths int       `json:"required_months"`
}

// Result is the full evaluation snapshot persisted on the loan for audit.
type Result struct {
	Passed             bool                    `json:"passed"`
	SavingsRatio       SavingsRatioCheck       `json:"savings_ratio"`
	ActiveLoan         ActiveLoanCheck         `json:"active_loan"`
	MembershipDuration MembershipDurationCheck `json:"membership_duration"`
	Timestamp          time.Time               `json:"timestamp"`
}

// Evaluate runs the three independent checks and passes only when all pass.
func Evaluate(in Input) Result {
	savings := checkSavingsRatio(in)
	active := checkActiveLoans(in)
	duration := checkMembershipDuration(in)

	return Result{
		Passed:             savings.Passed && active.Passed && duration.Passed,
		SavingsRatio:       savings,
		ActiveLoan:         active,
		MembershipDuration: duration,
		Timestamp:          in.Now,
	}
}

func checkSavingsRatio(in Input) SavingsRatioCheck {
	maxLoanAmount := in.TotalSavings.Mul(in.SavingsMultiplier)
	// A non-positive multiplier caps the lendable amount at zero; skip the
	// division so the check still returns a result.
	requiredSavings := decimal.Zero
	if in.SavingsMultiplier.IsPositive() {
		requiredSavings = in.RequestedAmount.Div(in.SavingsMultiplier)
	}
	passed := in.RequestedAmount.LessThanOrEqual(maxLoanAmount)

	details := fmt.Sprintf("Member has sufficient savings (P %s) for loan of P %s",
		in.TotalSavings.StringFixed(2), in.RequestedAmount.StringFixed(2))
	if !passed {
		details = fmt.Sprintf("Insufficient savings. Member has P %s but needs P %s for a loan of P %s",
			in.TotalSavings.StringFixed(2), requiredSavings.StringFixed(2), in.RequestedAmount.StringFixed(2))
	}

	return SavingsRatioCheck{
		Passed:          passed,
		Details:         details,
		MemberSavings:   in.TotalSavings,
		RequiredSavings: requiredSavings,
		MaxLoanAmount:   maxLoanAmount,
	}
}

func checkActiveLoans(in Input) ActiveLoanCheck {
	passed := len(in.ActiveLoans) == 0

	details := "No active loans found"
	if !passed {
		details = fmt.Sprintf("Member has %d active loan(s)", len(in.ActiveLoans))
	}

	return ActiveLoanCheck{
		Passed:           passed,
		Details:          details,
		ActiveLoansCount: len(in.ActiveLoans),
		ActiveLoans:      in.ActiveLoans,
	}
}

func checkMembershipDuration(in Input) MembershipDurationCheck {
	months := monthsBetween(in.JoinDate, in.Now)
	passed := months >= in.RequiredMonths

	details := fmt.Sprintf("Member has been active for %d months", months)
	if !passed {
		details = fmt.Sprintf("Member has only been active for %d months, requires %d months",
			months, in.RequiredMonths)
	}

	return MembershipDurationCheck{
		Passed:         passed,
		Details:        details,
		JoinDate:       in.JoinDate,
		MonthsAsMember: months,
		RequiredMonths: in.RequiredMonths,
	}
}

// monthsBetween is the calendar-month difference, ignoring the day of month.
func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}
