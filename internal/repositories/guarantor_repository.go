package repositories

import (
	"database/sql"

	"saccos-core/internal/apperrors"
	"saccos-core/internal/models"
)

type GuarantorRepository interface {
	Create(tx *sql.Tx, g *models.LoanGuarantor) error
	GetByID(id string) (*models.LoanGuarantor, error)
	Update(tx *sql.Tx, g *models.LoanGuarantor) error
	ListByLoan(loanID string) ([]models.LoanGuarantor, error)
}

type guarantorRepository struct {
	db *sql.DB
}

func NewGuarantorRepository(db *sql.DB) GuarantorRepository {
	return &guarantorRepository{db: db}
}

const guarantorColumns = `
	id, loan_id, guarantor_member_id, guaranteed_amount, status,
	accepted_at, rejected_at, rejection_reason, notification_sent_at,
	response_deadline, notification_attempts, created_at
`

func (r *guarantorRepository) Create(tx *sql.Tx, g *models.LoanGuarantor) error {
	query := `
		INSERT INTO loan_guarantors (
			id, loan_id, guarantor_member_id, guaranteed_amount, status,
			rejection_reason, notification_sent_at, response_deadline,
			notification_attempts
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.Exec(query,
		g.ID,
		g.LoanID,
		g.GuarantorMemberID,
		g.GuaranteedAmount,
		g.Status,
		g.RejectionReason,
		g.NotificationSentAt,
		g.ResponseDeadline,
		g.NotificationAttempts,
	)
	return err
}

func (r *guarantorRepository) GetByID(id string) (*models.LoanGuarantor, error) {
	query := `SELECT ` + guarantorColumns + ` FROM loan_guarantors WHERE id = ?`
	g := &models.LoanGuarantor{}
	err := r.db.QueryRow(query, id).Scan(
		&g.ID,
		&g.LoanID,
		&g.GuarantorMemberID,
		&g.GuaranteedAmount,
		&g.Status,
		&g.AcceptedAt,
		&g.RejectedAt,
		&g.RejectionReason,
		&g.NotificationSentAt,
		&g.ResponseDeadline,
		&g.NotificationAttempts,
		&g.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("guarantor pledge")
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *guarantorRepository) Update(tx *sql.Tx, g *models.LoanGuarantor) error {
	query := `
		UPDATE loan_guarantors SET
			status = ?,
			accepted_at = ?,
			rejected_at = ?,
			rejection_reason = ?,
			notification_sent_at = ?,
			notification_attempts = ?
		WHERE id = ?
	`
	result, err := tx.Exec(query,
		g.Status,
		g.AcceptedAt,
		g.RejectedAt,
		g.RejectionReason,
		g.NotificationSentAt,
		g.NotificationAttempts,
		g.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("guarantor pledge")
	}
	return nil
}

func (r *guarantorRepository) ListByLoan(loanID string) ([]models.LoanGuarantor, error) {
	query := `SELECT ` + guarantorColumns + ` FROM loan_guarantors WHERE loan_id = ? ORDER BY created_at ASC`
	rows, err := r.db.Query(query, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var guarantors []models.LoanGuarantor
	for rows.Next() {
		g := models.LoanGuarantor{}
		err := rows.Scan(
			&g.ID,
			&g.LoanID,
			&g.GuarantorMemberID,
			&g.GuaranteedAmount,
			&g.Status,
			&g.AcceptedAt,
			&g.RejectedAt,
			&g.RejectionReason,
			&g.NotificationSentAt,
			&g.ResponseDeadline,
			&g.NotificationAttempts,
			&g.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		guarantors = append(guarantors, g)
	}
	return guarantors, rows.Err()
}
