package deductions

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"saccos-core/internal/models"
)

// csvHeader is the payroll authority's expected column layout.
var csvHeader = []string{
	"Member Number",
	"National ID",
	"Full Name",
	"Savings",
	"Loan Installment",
	"Insurance Premium",
	"Deduction Amount",
	"Effective Month",
}

// WriteCSV renders a deduction request's items in the submission format:
// header row plus one row per member.
func WriteCSV(w io.Writer, request *models.DeductionRequest, items []models.DeductionItem) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	period := fmt.Sprintf("%d-%02d", request.Year, request.Month)
	for _, item := range items {
		row := []string{
			item.MemberNumber,
			item.NationalID,
			item.FullName,
			item.Savings.StringFixed(2),
			item.LoanInstallment.StringFixed(2),
			item.InsurancePremium.StringFixed(2),
			item.CurrentAmount.StringFixed(2),
			period,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for member %s: %w", item.MemberNumber, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ActualRecord is one parsed row from the payroll authority's returned file.
type ActualRecord struct {
	MemberNumber string
	Amount       decimal.Decimal
}

// ParseActualCSV reads the returned deductions file. The file must carry a
// header row containing at least "Member Number" and "Deducted Amount"
// columns; unknown columns are ignored.
func ParseActualCSV(r io.Reader) ([]ActualRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	memberCol, amountCol := -1, -1
	for i, name := range header {
		switch name {
		case "Member Number":
			memberCol = i
		case "Deducted Amount", "Actual Amount":
			amountCol = i
		}
	}
	if memberCol < 0 || amountCol < 0 {
		return nil, fmt.Errorf("CSV is missing required columns (have: %v)", header)
	}

	var records []ActualRecord
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", line, err)
		}
		line++

		if row[memberCol] == "" {
			continue
		}

		raw := row[amountCol]
		if raw == "" {
			raw = "0"
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q on row %d", row[amountCol], line)
		}

		records = append(records, ActualRecord{
			MemberNumber: row[memberCol],
			Amount:       amount,
		})
	}

	return records, nil
}
