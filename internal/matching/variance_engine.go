// Package matching classifies expected-vs-actual payroll deductions for a
// reconciliation batch. The engine diffs both sides: every actual row is
// matched against the expected batch, and expected rows absent from the
// actual file surface as missing rather than being silently dropped.
package matching

import (
	"github.com/shopspring/decimal"

	"saccos-core/internal/models"
)

// ExpectedDeduction is one member's expected amount from the deduction
// request baseline.
type ExpectedDeduction struct {
	MemberID     string
	MemberNumber string
	NationalID   string
	Amount       decimal.Decimal
}

// ActualDeduction is one row from the payroll authority's file.
type ActualDeduction struct {
	MemberNumber string
	Amount       decimal.Decimal
}

// ItemResult is the classification of one member-period comparison.
type ItemResult struct {
	MemberID       string
	MemberNumber   string
	NationalID     string
	ExpectedAmount decimal.Decimal
	ActualAmount   decimal.Decimal
	Variance       decimal.Decimal
	MatchStatus    models.MatchStatus
	VarianceReason models.VarianceReason
}

// Summary aggregates a full run. TotalVariance always equals the sum of the
// item variances, and the three counters always add up to TotalRecords.
type Summary struct {
	TotalRecords     int
	MatchedRecords   int
	VarianceRecords  int
	UnmatchedRecords int
	TotalExpected    decimal.Decimal
	TotalActual      decimal.Decimal
	TotalVariance    decimal.Decimal
}

type VarianceEngine struct {
	expected []ExpectedDeduction
	actual   []ActualDeduction
}

func NewVarianceEngine() *VarianceEngine {
	return &VarianceEngine{}
}

func (e *VarianceEngine) SetData(expected []ExpectedDeduction, actual []ActualDeduction) {
	e.expected = expected
	e.actual = actual
}

// Process runs the two-sided comparison and returns one item per member
// seen on either side, plus the batch summary.
func (e *VarianceEngine) Process() ([]ItemResult, Summary) {
	var results []ItemResult

	expectedByNumber := make(map[string]ExpectedDeduction, len(e.expected))
	for _, exp := range e.expected {
		expectedByNumber[exp.MemberNumber] = exp
	}

	processedExpected := make(map[string]bool)

	for _, act := range e.actual {
		exp, known := expectedByNumber[act.MemberNumber]
		if !known {
			results = append(results, ItemResult{
				MemberNumber:   act.MemberNumber,
				ExpectedAmount: decimal.Zero,
				ActualAmount:   act.Amount,
				Variance:       act.Amount,
				MatchStatus:    models.StatusOrphanInMoF,
			})
			continue
		}

		processedExpected[act.MemberNumber] = true
		results = append(results, classify(exp, act.Amount))
	}

	for _, exp := range e.expected {
		if processedExpected[exp.MemberNumber] {
			continue
		}
		results = append(results, ItemResult{
			MemberID:       exp.MemberID,
			MemberNumber:   exp.MemberNumber,
			NationalID:     exp.NationalID,
			ExpectedAmount: exp.Amount,
			ActualAmount:   decimal.Zero,
			Variance:       exp.Amount.Neg(),
			MatchStatus:    models.StatusMissingInMoF,
		})
	}

	return results, summarize(results)
}

// classify compares one expected row against its actual amount.
// variance = actual - expected.
func classify(exp ExpectedDeduction, actual decimal.Decimal) ItemResult {
	variance := actual.Sub(exp.Amount)

	item := ItemResult{
		MemberID:       exp.MemberID,
		MemberNumber:   exp.MemberNumber,
		NationalID:     exp.NationalID,
		ExpectedAmount: exp.Amount,
		ActualAmount:   actual,
		Variance:       variance,
	}

	if variance.IsZero() {
		item.MatchStatus = models.StatusMatched
		return item
	}

	item.MatchStatus = models.StatusVariance
	switch {
	case actual.IsZero():
		item.VarianceReason = models.ReasonInsufficientFunds
	case actual.LessThan(exp.Amount):
		item.VarianceReason = models.ReasonNetPayTooLow
	default:
		item.VarianceReason = models.ReasonAmountMismatch
	}
	return item
}

func summarize(items []ItemResult) Summary {
	s := Summary{
		TotalExpected: decimal.Zero,
		TotalActual:   decimal.Zero,
		TotalVariance: decimal.Zero,
	}

	for _, it := range items {
		s.TotalRecords++
		s.TotalExpected = s.TotalExpected.Add(it.ExpectedAmount)
		s.TotalActual = s.TotalActual.Add(it.ActualAmount)
		s.TotalVariance = s.TotalVariance.Add(it.Variance)

		switch it.MatchStatus {
		case models.StatusMatched:
			s.MatchedRecords++
		case models.StatusVariance:
			s.VarianceRecords++
		default:
			s.UnmatchedRecords++
		}
	}

	return s
}
