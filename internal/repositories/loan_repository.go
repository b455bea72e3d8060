package repositories

import (
	"database/sql"
	"fmt"

	"saccos-core/internal/apperrors"
	"saccos-core/internal/models"
)

type LoanRepository interface {
	Create(tx *sql.Tx, loan *models.Loan) error
	GetByID(id, tenantID string) (*models.Loan, error)
	// GetByIDForUpdate locks the loan row for the duration of tx so
	// concurrent transitions on the same loan serialize.
	GetByIDForUpdate(tx *sql.Tx, id, tenantID string) (*models.Loan, error)
	Update(tx *sql.Tx, loan *models.Loan) error
	ListActiveByMember(memberID, tenantID string) ([]models.Loan, error)
	ListByTenant(tenantID string) ([]models.Loan, error)
	AppendWorkflowLog(tx *sql.Tx, entry *models.LoanWorkflowLog) error
	ListWorkflowLogs(loanID string) ([]models.LoanWorkflowLog, error)
}

type loanRepository struct {
	db *sql.DB
}

func NewLoanRepository(db *sql.DB) LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `
	id, tenant_id, loan_number, member_id, product_id, principal_amount,
	interest_rate, term_months, monthly_installment, processing_fee,
	insurance_fee, total_amount_due, amount_paid, outstanding_balance,
	status, workflow_stage, purpose, rejection_reason,
	eligibility_check_passed, eligibility_check_notes,
	loan_officer_id, loan_officer_notes, loan_officer_review_date,
	committee_approval_date, application_date, approval_date,
	disbursement_date, maturity_date, approved_by, disbursed_by,
	created_at, updated_at
`

func (r *loanRepository) Create(tx *sql.Tx, loan *models.Loan) error {
	query := `
		INSERT INTO loans (
			id, tenant_id, loan_number, member_id, product_id, principal_amount,
			interest_rate, term_months, monthly_installment, processing_fee,
			insurance_fee, total_amount_due, amount_paid, outstanding_balance,
			status, workflow_stage, purpose, rejection_reason,
			loan_officer_notes, application_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.Exec(query,
		loan.ID,
		loan.TenantID,
		loan.LoanNumber,
		loan.MemberID,
		loan.ProductID,
		loan.PrincipalAmount,
		loan.InterestRate,
		loan.TermMonths,
		loan.MonthlyInstallment,
		loan.ProcessingFee,
		loan.InsuranceFee,
		loan.TotalAmountDue,
		loan.AmountPaid,
		loan.OutstandingBalance,
		loan.Status,
		loan.WorkflowStage,
		loan.Purpose,
		loan.RejectionReason,
		loan.LoanOfficerNotes,
		loan.ApplicationDate,
	)
	return err
}

func scanLoan(row *sql.Row) (*models.Loan, error) {
	loan := &models.Loan{}
	err := row.Scan(
		&loan.ID,
		&loan.TenantID,
		&loan.LoanNumber,
		&loan.MemberID,
		&loan.ProductID,
		&loan.PrincipalAmount,
		&loan.InterestRate,
		&loan.TermMonths,
		&loan.MonthlyInstallment,
		&loan.ProcessingFee,
		&loan.InsuranceFee,
		&loan.TotalAmountDue,
		&loan.AmountPaid,
		&loan.OutstandingBalance,
		&loan.Status,
		&loan.WorkflowStage,
		&loan.Purpose,
		&loan.RejectionReason,
		&loan.EligibilityCheckPassed,
		&loan.EligibilityCheckNotes,
		&loan.LoanOfficerID,
		&loan.LoanOfficerNotes,
		&loan.LoanOfficerReviewDate,
		&loan.CommitteeApprovalDate,
		&loan.ApplicationDate,
		&loan.ApprovalDate,
		&loan.DisbursementDate,
		&loan.MaturityDate,
		&loan.ApprovedBy,
		&loan.DisbursedBy,
		&loan.CreatedAt,
		&loan.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("loan")
	}
	if err != nil {
		return nil, err
	}
	return loan, nil
}

func (r *loanRepository) GetByID(id, tenantID string) (*models.Loan, error) {
	query := fmt.Sprintf(`SELECT %s FROM loans WHERE id = ? AND tenant_id = ?`, loanColumns)
	return scanLoan(r.db.QueryRow(query, id, tenantID))
}

func (r *loanRepository) GetByIDForUpdate(tx *sql.Tx, id, tenantID string) (*models.Loan, error) {
	query := fmt.Sprintf(`SELECT %s FROM loans WHERE id = ? AND tenant_id = ? FOR UPDATE`, loanColumns)
	return scanLoan(tx.QueryRow(query, id, tenantID))
}

func (r *loanRepository) Update(tx *sql.Tx, loan *models.Loan) error {
	query := `
		UPDATE loans SET
			status = ?,
			workflow_stage = ?,
			rejection_reason = ?,
			eligibility_check_passed = ?,
			eligibility_check_notes = ?,
			loan_officer_id = ?,
			loan_officer_notes = ?,
			loan_officer_review_date = ?,
			committee_approval_date = ?,
			approval_date = ?,
			disbursement_date = ?,
			maturity_date = ?,
			outstanding_balance = ?,
			amount_paid = ?,
			approved_by = ?,
			disbursed_by = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND tenant_id = ?
	`
	result, err := tx.Exec(query,
		loan.Status,
		loan.WorkflowStage,
		loan.RejectionReason,
		loan.EligibilityCheckPassed,
		loan.EligibilityCheckNotes,
		loan.LoanOfficerID,
		loan.LoanOfficerNotes,
		loan.LoanOfficerReviewDate,
		loan.CommitteeApprovalDate,
		loan.ApprovalDate,
		loan.DisbursementDate,
		loan.MaturityDate,
		loan.OutstandingBalance,
		loan.AmountPaid,
		loan.ApprovedBy,
		loan.DisbursedBy,
		loan.ID,
		loan.TenantID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("loan")
	}
	return nil
}

func (r *loanRepository) ListActiveByMember(memberID, tenantID string) ([]models.Loan, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM loans
		WHERE member_id = ? AND tenant_id = ? AND status IN (?, ?)
	`, loanColumns)
	return r.queryLoans(query, memberID, tenantID, models.LoanStatusActive, models.LoanStatusDisbursed)
}

func (r *loanRepository) ListByTenant(tenantID string) ([]models.Loan, error) {
	query := fmt.Sprintf(`SELECT %s FROM loans WHERE tenant_id = ? ORDER BY application_date DESC`, loanColumns)
	return r.queryLoans(query, tenantID)
}

func (r *loanRepository) queryLoans(query string, args ...interface{}) ([]models.Loan, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []models.Loan
	for rows.Next() {
		loan := models.Loan{}
		err := rows.Scan(
			&loan.ID,
			&loan.TenantID,
			&loan.LoanNumber,
			&loan.MemberID,
			&loan.ProductID,
			&loan.PrincipalAmount,
			&loan.InterestRate,
			&loan.TermMonths,
			&loan.MonthlyInstallment,
			&loan.ProcessingFee,
			&loan.InsuranceFee,
			&loan.TotalAmountDue,
			&loan.AmountPaid,
			&loan.OutstandingBalance,
			&loan.Status,
			&loan.WorkflowStage,
			&loan.Purpose,
			&loan.RejectionReason,
			&loan.EligibilityCheckPassed,
			&loan.EligibilityCheckNotes,
			&loan.LoanOfficerID,
			&loan.LoanOfficerNotes,
			&loan.LoanOfficerReviewDate,
			&loan.CommitteeApprovalDate,
			&loan.ApplicationDate,
			&loan.ApprovalDate,
			&loan.DisbursementDate,
			&loan.MaturityDate,
			&loan.ApprovedBy,
			&loan.DisbursedBy,
			&loan.CreatedAt,
			&loan.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

func (r *loanRepository) AppendWorkflowLog(tx *sql.Tx, entry *models.LoanWorkflowLog) error {
	query := `
		INSERT INTO loan_workflow_logs (
			loan_id, action_type, action_by, from_status, to_status, notes, metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := tx.Exec(query,
		entry.LoanID,
		entry.ActionType,
		entry.ActionBy,
		entry.FromStatus,
		entry.ToStatus,
		entry.Notes,
		entry.Metadata,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	entry.ID = id
	return nil
}

func (r *loanRepository) ListWorkflowLogs(loanID string) ([]models.LoanWorkflowLog, error) {
	query := `
		SELECT id, loan_id, action_type, action_by, from_status, to_status,
		       notes, metadata, created_at
		FROM loan_workflow_logs
		WHERE loan_id = ?
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.Query(query, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LoanWorkflowLog
	for rows.Next() {
		entry := models.LoanWorkflowLog{}
		err := rows.Scan(
			&entry.ID,
			&entry.LoanID,
			&entry.ActionType,
			&entry.ActionBy,
			&entry.FromStatus,
			&entry.ToStatus,
			&entry.Notes,
			&entry.Metadata,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
