package repositories

import (
	"database/sql"

	"saccos-core/internal/apperrors"
	"saccos-core/internal/models"
)

type ProductRepository interface {
	GetByID(id, tenantID string) (*models.LoanProduct, error)
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetByID(id, tenantID string) (*models.LoanProduct, error) {
	query := `
		SELECT id, tenant_id, name, interest_rate, processing_fee,
		       insurance_fee, savings_multiplier, max_term_months, created_at
		FROM loan_products
		WHERE id = ? AND tenant_id = ?
	`
	p := &models.LoanProduct{}
	err := r.db.QueryRow(query, id, tenantID).Scan(
		&p.ID,
		&p.TenantID,
		&p.Name,
		&p.InterestRate,
		&p.ProcessingFee,
		&p.InsuranceFee,
		&p.SavingsMultiplier,
		&p.MaxTermMonths,
		&p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("loan product")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
