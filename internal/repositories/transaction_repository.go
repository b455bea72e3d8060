package repositories

import (
	"database/sql"

	"saccos-core/internal/models"
)

type TransactionRepository interface {
	Create(tx *sql.Tx, t *models.Transaction) error
	ListByReference(referenceID, referenceType string) ([]models.Transaction, error)
}

type transactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(tx *sql.Tx, t *models.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, tenant_id, member_id, transaction_number, transaction_type,
			amount, transaction_date, description, status,
			reference_id, reference_type, created_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.Exec(query,
		t.ID,
		t.TenantID,
		t.MemberID,
		t.TransactionNumber,
		t.TransactionType,
		t.Amount,
		t.TransactionDate,
		t.Description,
		t.Status,
		t.ReferenceID,
		t.ReferenceType,
		t.CreatedBy,
	)
	return err
}

func (r *transactionRepository) ListByReference(referenceID, referenceType string) ([]models.Transaction, error) {
	query := `
		SELECT id, tenant_id, member_id, transaction_number, transaction_type,
		       amount, transaction_date, description, status,
		       reference_id, reference_type, created_by, created_at
		FROM transactions
		WHERE reference_id = ? AND reference_type = ?
		ORDER BY transaction_date ASC
	`
	rows, err := r.db.Query(query, referenceID, referenceType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		t := models.Transaction{}
		err := rows.Scan(
			&t.ID,
			&t.TenantID,
			&t.MemberID,
			&t.TransactionNumber,
			&t.TransactionType,
			&t.Amount,
			&t.TransactionDate,
			&t.Description,
			&t.Status,
			&t.ReferenceID,
			&t.ReferenceType,
			&t.CreatedBy,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}
