package services

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// MonthlyInstallment computes the level payment for a principal at an
// annual percentage rate over termMonths. A zero rate degenerates to a
// straight division of the principal.
func MonthlyInstallment(principal, annualRate decimal.Decimal, termMonths int) decimal.Decimal {
	n := decimal.NewFromInt(int64(termMonths))
	if annualRate.IsZero() {
		return principal.Div(n).Round(2)
	}

	i := annualRate.Div(hundred).Div(twelve)
	compound := one.Add(i).Pow(n)
	installment := principal.Mul(i).Mul(compound).Div(compound.Sub(one))
	return installment.Round(2)
}

// TotalAmountDue is the installment times the term, plus one-off fees.
func TotalAmountDue(installment decimal.Decimal, termMonths int, processingFee, insuranceFee decimal.Decimal) decimal.Decimal {
	return installment.Mul(decimal.NewFromInt(int64(termMonths))).Add(processingFee).Add(insuranceFee)
}

// addMonthsClamped advances by calendar months, clamping to the last day of
// the target month so 31 January plus one month lands in February.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
