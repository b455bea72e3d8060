package repositories

import (
	"database/sql"

	"saccos-core/internal/apperrors"
	"saccos-core/internal/models"
)

type ReconciliationRepository interface {
	CreateBatch(tx *sql.Tx, batch *models.ReconciliationBatch) error
	CreateItem(tx *sql.Tx, item *models.ReconciliationItem) error
	CreateSuspenseEntry(tx *sql.Tx, entry *models.SuspenseEntry) error
	UpdateBatchTotals(tx *sql.Tx, batch *models.ReconciliationBatch) error
	GetBatch(id, tenantID string) (*models.ReconciliationBatch, error)
	ListItems(batchID string) ([]models.ReconciliationItem, error)
	ListSuspenseEntries(batchID string) ([]models.SuspenseEntry, error)
}

type reconciliationRepository struct {
	db *sql.DB
}

func NewReconciliationRepository(db *sql.DB) ReconciliationRepository {
	return &reconciliationRepository{db: db}
}

func (r *reconciliationRepository) CreateBatch(tx *sql.Tx, batch *models.ReconciliationBatch) error {
	query := `
		INSERT INTO reconciliation_batches (
			id, tenant_id, batch_number, month, year, deduction_request_id,
			total_records, matched_records, variance_records, unmatched_records,
			total_expected, total_actual, total_variance, status, processed_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.Exec(query,
		batch.ID,
		batch.TenantID,
		batch.BatchNumber,
		batch.Month,
		batch.Year,
		batch.DeductionRequestID,
		batch.TotalRecords,
		batch.MatchedRecords,
		batch.VarianceRecords,
		batch.UnmatchedRecords,
		batch.TotalExpected,
		batch.TotalActual,
		batch.TotalVariance,
		batch.Status,
		batch.ProcessedBy,
	)
	return err
}

func (r *reconciliationRepository) CreateItem(tx *sql.Tx, item *models.ReconciliationItem) error {
	query := `
		INSERT INTO reconciliation_items (
			id, batch_id, member_id, member_number, national_id,
			expected_amount, actual_amount, variance, match_status,
			variance_reason, notes, requires_manual_review
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	reason := sql.NullString{String: string(item.VarianceReason), Valid: item.VarianceReason != ""}
	_, err := tx.Exec(query,
		item.ID,
		item.BatchID,
		item.MemberID,
		item.MemberNumber,
		item.NationalID,
		item.ExpectedAmount,
		item.ActualAmount,
		item.Variance,
		item.MatchStatus,
		reason,
		item.Notes,
		item.RequiresManualReview,
	)
	return err
}

func (r *reconciliationRepository) CreateSuspenseEntry(tx *sql.Tx, entry *models.SuspenseEntry) error {
	query := `
		INSERT INTO suspense_entries (
			id, tenant_id, reference_number, batch_id, member_number,
			national_id, amount, month, year, status, reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.Exec(query,
		entry.ID,
		entry.TenantID,
		entry.ReferenceNumber,
		entry.BatchID,
		entry.MemberNumber,
		entry.NationalID,
		entry.Amount,
		entry.Month,
		entry.Year,
		entry.Status,
		entry.Reason,
	)
	return err
}

func (r *reconciliationRepository) UpdateBatchTotals(tx *sql.Tx, batch *models.ReconciliationBatch) error {
	query := `
		UPDATE reconciliation_batches SET
			total_records = ?,
			matched_records = ?,
			variance_records = ?,
			unmatched_records = ?,
			total_expected = ?,
			total_actual = ?,
			total_variance = ?,
			status = ?,
			processed_at = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND tenant_id = ?
	`
	result, err := tx.Exec(query,
		batch.TotalRecords,
		batch.MatchedRecords,
		batch.VarianceRecords,
		batch.UnmatchedRecords,
		batch.TotalExpected,
		batch.TotalActual,
		batch.TotalVariance,
		batch.Status,
		batch.ProcessedAt,
		batch.ID,
		batch.TenantID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("reconciliation batch")
	}
	return nil
}

func (r *reconciliationRepository) GetBatch(id, tenantID string) (*models.ReconciliationBatch, error) {
	query := `
		SELECT id, tenant_id, batch_number, month, year, deduction_request_id,
		       total_records, matched_records, variance_records, unmatched_records,
		       total_expected, total_actual, total_variance, status,
		       processed_by, processed_at, created_at, updated_at
		FROM reconciliation_batches
		WHERE id = ? AND tenant_id = ?
	`
	batch := &models.ReconciliationBatch{}
	err := r.db.QueryRow(query, id, tenantID).Scan(
		&batch.ID,
		&batch.TenantID,
		&batch.BatchNumber,
		&batch.Month,
		&batch.Year,
		&batch.DeductionRequestID,
		&batch.TotalRecords,
		&batch.MatchedRecords,
		&batch.VarianceRecords,
		&batch.UnmatchedRecords,
		&batch.TotalExpected,
		&batch.TotalActual,
		&batch.TotalVariance,
		&batch.Status,
		&batch.ProcessedBy,
		&batch.ProcessedAt,
		&batch.CreatedAt,
		&batch.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("reconciliation batch")
	}
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (r *reconciliationRepository) ListItems(batchID string) ([]models.ReconciliationItem, error) {
	query := `
		SELECT id, batch_id, member_id, member_number, national_id,
		       expected_amount, actual_amount, variance, match_status,
		       variance_reason, notes, requires_manual_review, created_at
		FROM reconciliation_items
		WHERE batch_id = ?
		ORDER BY member_number ASC
	`
	rows, err := r.db.Query(query, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.ReconciliationItem
	for rows.Next() {
		item := models.ReconciliationItem{}
		var reason sql.NullString
		err := rows.Scan(
			&item.ID,
			&item.BatchID,
			&item.MemberID,
			&item.MemberNumber,
			&item.NationalID,
			&item.ExpectedAmount,
			&item.ActualAmount,
			&item.Variance,
			&item.MatchStatus,
			&reason,
			&item.Notes,
			&item.RequiresManualReview,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		item.VarianceReason = models.VarianceReason(reason.String)
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *reconciliationRepository) ListSuspenseEntries(batchID string) ([]models.SuspenseEntry, error) {
	query := `
		SELECT id, tenant_id, reference_number, batch_id, member_number,
		       national_id, amount, month, year, status, reason, created_at
		FROM suspense_entries
		WHERE batch_id = ?
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(query, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.SuspenseEntry
	for rows.Next() {
		entry := models.SuspenseEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.TenantID,
			&entry.ReferenceNumber,
			&entry.BatchID,
			&entry.MemberNumber,
			&entry.NationalID,
			&entry.Amount,
			&entry.Month,
			&entry.Year,
			&entry.Status,
			&entry.Reason,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
