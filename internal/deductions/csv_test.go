package deductions

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saccos-core/internal/models"
)

func TestWriteCSV(t *testing.T) {
	request := &models.DeductionRequest{Month: 8, Year: 2025}
	items := []models.DeductionItem{
		{
			MemberNumber:     "M-0001",
			NationalID:       "19850101",
			FullName:         "Neo Kgosi",
			Savings:          decimal.NewFromInt(700),
			LoanInstallment:  decimal.NewFromInt(2000),
			InsurancePremium: decimal.NewFromInt(150),
			CurrentAmount:    decimal.NewFromInt(2850),
		},
	}

	var buf bytes.Buffer
	err := WriteCSV(&buf, request, items)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Member Number,National ID,Full Name,Savings,Loan Installment,Insurance Premium,Deduction Amount,Effective Month", lines[0])
	assert.Equal(t, "M-0001,19850101,Neo Kgosi,700.00,2000.00,150.00,2850.00,2025-08", lines[1])
}

func TestParseActualCSV(t *testing.T) {
	t.Run("parses valid file", func(t *testing.T) {
		input := "Member Number,Full Name,Deducted Amount\nM-0001,Neo Kgosi,2850.00\nM-0002,Pule Seane,0\n"

		records, err := ParseActualCSV(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, records, 2)

		assert.Equal(t, "M-0001", records[0].MemberNumber)
		assert.True(t, records[0].Amount.Equal(decimal.NewFromFloat(2850.00)))
		assert.True(t, records[1].Amount.IsZero())
	})

	t.Run("accepts the alternate amount header", func(t *testing.T) {
		input := "Member Number,Actual Amount\nM-0001,100.50\n"

		records, err := ParseActualCSV(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.True(t, records[0].Amount.Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("skips rows with empty member number", func(t *testing.T) {
		input := "Member Number,Deducted Amount\n,500\nM-0001,100\n"

		records, err := ParseActualCSV(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, records, 1)
	})

	t.Run("empty amount becomes zero", func(t *testing.T) {
		input := "Member Number,Deducted Amount\nM-0001,\n"

		records, err := ParseActualCSV(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.True(t, records[0].Amount.IsZero())
	})

	t.Run("rejects missing columns", func(t *testing.T) {
		input := "Name,Amount\nNeo,500\n"

		_, err := ParseActualCSV(strings.NewReader(input))
		assert.Error(t, err)
	})

	t.Run("rejects malformed amounts", func(t *testing.T) {
		input := "Member Number,Deducted Amount\nM-0001,abc\n"

		_, err := ParseActualCSV(strings.NewReader(input))
		assert.Error(t, err)
	})
}
