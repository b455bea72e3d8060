package repositories

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saccos-core/internal/apperrors"
	"saccos-core/internal/models"
)

var loanColumnNames = []string{
	"id", "tenant_id", "loan_number", "member_id", "product_id", "principal_amount",
	"interest_rate", "term_months", "monthly_installment", "processing_fee",
	"insurance_fee", "total_amount_due", "amount_paid", "outstanding_balance",
	"status", "workflow_stage", "purpose", "rejection_reason",
	"eligibility_check_passed", "eligibility_check_notes",
	"loan_officer_id", "loan_officer_notes", "loan_officer_review_date",
	"committee_approval_date", "application_date", "approval_date",
	"disbursement_date", "maturity_date", "approved_by", "disbursed_by",
	"created_at", "updated_at",
}

func loanRow(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(loanColumnNames).AddRow(
		"loan-1", "tenant-1", "LN-20250801-120000", "member-1", "product-1", "10000.00",
		"12.00", 12, "888.49", "100.00",
		"50.00", "10811.88", "0.00", "0.00",
		"pending", "eligibility_check", "Working capital", "",
		false, nil,
		nil, "", nil,
		nil, now, nil,
		nil, nil, nil, nil,
		now, now,
	)
}

func TestLoanRepositoryGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewLoanRepository(db)

	t.Run("scans the full row", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery("FROM loans WHERE id = \\? AND tenant_id = \\?").
			WithArgs("loan-1", "tenant-1").
			WillReturnRows(loanRow(now))

		loan, err := repo.GetByID("loan-1", "tenant-1")
		require.NoError(t, err)

		assert.Equal(t, "LN-20250801-120000", loan.LoanNumber)
		assert.Equal(t, models.LoanStatusPending, loan.Status)
		assert.Equal(t, models.StageEligibilityCheck, loan.WorkflowStage)
		assert.Equal(t, "888.49", loan.MonthlyInstallment.StringFixed(2))
		assert.False(t, loan.LoanOfficerID.Valid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown loan maps to not found", func(t *testing.T) {
		mock.ExpectQuery("FROM loans WHERE id = \\? AND tenant_id = \\?").
			WithArgs("missing", "tenant-1").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID("missing", "tenant-1")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLoanRepositoryUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewLoanRepository(db)

	loan := &models.Loan{ID: "loan-1", TenantID: "tenant-1", Status: models.LoanStatusDraft}

	t.Run("updates the matched row", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE loans SET").
			WillReturnResult(sqlmock.NewResult(0, 1))

		tx, err := db.Begin()
		require.NoError(t, err)
		require.NoError(t, repo.Update(tx, loan))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero rows affected is not found", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE loans SET").
			WillReturnResult(sqlmock.NewResult(0, 0))

		tx, err := db.Begin()
		require.NoError(t, err)
		err = repo.Update(tx, loan)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLoanRepositoryAppendWorkflowLog(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewLoanRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO loan_workflow_logs").
		WillReturnResult(sqlmock.NewResult(42, 1))

	tx, err := db.Begin()
	require.NoError(t, err)

	entry := &models.LoanWorkflowLog{
		LoanID:     "loan-1",
		ActionType: models.ActionStatusChange,
		ActionBy:   "admin-1",
		FromStatus: models.LoanStatusPending,
		ToStatus:   models.LoanStatusDraft,
	}
	require.NoError(t, repo.AppendWorkflowLog(tx, entry))

	assert.Equal(t, int64(42), entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
