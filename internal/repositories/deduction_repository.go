package repositories

import (
	"database/sql"

	"saccos-core/internal/apperrors"
	"saccos-core/internal/models"
)

type DeductionRepository interface {
	CreateRequest(tx *sql.Tx, req *models.DeductionRequest) error
	CreateItem(tx *sql.Tx, item *models.DeductionItem) error
	GetRequest(id, tenantID string) (*models.DeductionRequest, error)
	// GetSubmittedForPeriod returns the batch submitted for the tenant's
	// month/year, or apperrors.ErrNotFound when none exists.
	GetSubmittedForPeriod(tenantID string, month, year int) (*models.DeductionRequest, error)
	ExistsForPeriod(tenantID string, month, year int) (bool, error)
	UpdateRequestStatus(tx *sql.Tx, req *models.DeductionRequest) error
	ListItems(requestID string) ([]models.DeductionItem, error)
	// PreviousAmounts maps member ID to that member's expected amount in the
	// most recent earlier batch for the tenant.
	PreviousAmounts(tenantID string, month, year int) (map[string]string, error)
}

type deductionRepository struct {
	db *sql.DB
}

func NewDeductionRepository(db *sql.DB) DeductionRepository {
	return &deductionRepository{db: db}
}

const deductionRequestColumns = `
	id, tenant_id, batch_number, month, year, total_members, total_amount,
	status, submitted_by, submitted_at, created_at, updated_at
`

func (r *deductionRepository) CreateRequest(tx *sql.Tx, req *models.DeductionRequest) error {
	query := `
		INSERT INTO deduction_requests (
			id, tenant_id, batch_number, month, year, total_members,
			total_amount, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.Exec(query,
		req.ID,
		req.TenantID,
		req.BatchNumber,
		req.Month,
		req.Year,
		req.TotalMembers,
		req.TotalAmount,
		req.Status,
	)
	return err
}

func (r *deductionRepository) CreateItem(tx *sql.Tx, item *models.DeductionItem) error {
	query := `
		INSERT INTO deduction_items (
			id, request_id, member_id, member_number, national_id,
			employee_number, full_name, savings, loan_installment,
			insurance_premium, current_amount, previous_amount,
			is_over_limit, limit_notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.Exec(query,
		item.ID,
		item.RequestID,
		item.MemberID,
		item.MemberNumber,
		item.NationalID,
		item.EmployeeNumber,
		item.FullName,
		item.Savings,
		item.LoanInstallment,
		item.InsurancePremium,
		item.CurrentAmount,
		item.PreviousAmount,
		item.IsOverLimit,
		item.LimitNotes,
	)
	return err
}

func scanDeductionRequest(row *sql.Row) (*models.DeductionRequest, error) {
	req := &models.DeductionRequest{}
	err := row.Scan(
		&req.ID,
		&req.TenantID,
		&req.BatchNumber,
		&req.Month,
		&req.Year,
		&req.TotalMembers,
		&req.TotalAmount,
		&req.Status,
		&req.SubmittedBy,
		&req.SubmittedAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("deduction request")
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *deductionRepository) GetRequest(id, tenantID string) (*models.DeductionRequest, error) {
	query := `SELECT ` + deductionRequestColumns + ` FROM deduction_requests WHERE id = ? AND tenant_id = ?`
	return scanDeductionRequest(r.db.QueryRow(query, id, tenantID))
}

func (r *deductionRepository) GetSubmittedForPeriod(tenantID string, month, year int) (*models.DeductionRequest, error) {
	query := `
		SELECT ` + deductionRequestColumns + `
		FROM deduction_requests
		WHERE tenant_id = ? AND month = ? AND year = ? AND status = ?
	`
	return scanDeductionRequest(r.db.QueryRow(query, tenantID, month, year, models.DeductionSubmitted))
}

func (r *deductionRepository) ExistsForPeriod(tenantID string, month, year int) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM deduction_requests
		WHERE tenant_id = ? AND month = ? AND year = ? AND status IN (?, ?)
	`
	var count int
	err := r.db.QueryRow(query, tenantID, month, year,
		models.DeductionDraft, models.DeductionSubmitted).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *deductionRepository) UpdateRequestStatus(tx *sql.Tx, req *models.DeductionRequest) error {
	query := `
		UPDATE deduction_requests SET
			status = ?,
			submitted_by = ?,
			submitted_at = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND tenant_id = ?
	`
	result, err := tx.Exec(query,
		req.Status,
		req.SubmittedBy,
		req.SubmittedAt,
		req.ID,
		req.TenantID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("deduction request")
	}
	return nil
}

func (r *deductionRepository) ListItems(requestID string) ([]models.DeductionItem, error) {
	query := `
		SELECT id, request_id, member_id, member_number, national_id,
		       employee_number, full_name, savings, loan_installment,
		       insurance_premium, current_amount, previous_amount,
		       is_over_limit, limit_notes, created_at
		FROM deduction_items
		WHERE request_id = ?
		ORDER BY member_number ASC
	`
	rows, err := r.db.Query(query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.DeductionItem
	for rows.Next() {
		item := models.DeductionItem{}
		err := rows.Scan(
			&item.ID,
			&item.RequestID,
			&item.MemberID,
			&item.MemberNumber,
			&item.NationalID,
			&item.EmployeeNumber,
			&item.FullName,
			&item.Savings,
			&item.LoanInstallment,
			&item.InsurancePremium,
			&item.CurrentAmount,
			&item.PreviousAmount,
			&item.IsOverLimit,
			&item.LimitNotes,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *deductionRepository) PreviousAmounts(tenantID string, month, year int) (map[string]string, error) {
	query := `
		SELECT di.member_id, di.current_amount
		FROM deduction_items di
		JOIN deduction_requests dr ON dr.id = di.request_id
		WHERE dr.tenant_id = ?
		  AND (dr.year < ? OR (dr.year = ? AND dr.month < ?))
		ORDER BY dr.year DESC, dr.month DESC
	`
	rows, err := r.db.Query(query, tenantID, year, year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	amounts := make(map[string]string)
	for rows.Next() {
		var memberID, amount string
		if err := rows.Scan(&memberID, &amount); err != nil {
			return nil, err
		}
		// Rows arrive newest first; keep only the most recent per member.
		if _, seen := amounts[memberID]; !seen {
			amounts[memberID] = amount
		}
	}
	return amounts, rows.Err()
}
