package services

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"saccos-core/internal/apperrors"
	"saccos-core/internal/auth"
	"saccos-core/internal/deductions"
	"saccos-core/internal/matching"
	"saccos-core/internal/models"
	"saccos-core/internal/repositories"
)

// ReconciliationService diffs the payroll authority's actual deduction file
// against the submitted expected batch for the same period.
type ReconciliationService struct {
	db                 *sql.DB
	engine             *matching.VarianceEngine
	memberRepo         repositories.MemberRepository
	deductionRepo      repositories.DeductionRepository
	reconciliationRepo repositories.ReconciliationRepository
	log                *zap.Logger
}

func NewReconciliationService(
	db *sql.DB,
	memberRepo repositories.MemberRepository,
	deductionRepo repositories.DeductionRepository,
	reconciliationRepo repositories.ReconciliationRepository,
	log *zap.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		db:                 db,
		engine:             matching.NewVarianceEngine(),
		memberRepo:         memberRepo,
		deductionRepo:      deductionRepo,
		reconciliationRepo: reconciliationRepo,
		log:                log,
	}
}

// ReconcileResult is the completed batch with its classified items and any
// suspense entries raised for orphan deductions.
type ReconcileResult struct {
	Batch           *models.ReconciliationBatch `json:"batch"`
	Items           []models.ReconciliationItem `json:"items"`
	SuspenseEntries []models.SuspenseEntry      `json:"suspense_entries,omitempty"`
}

// Reconcile parses the actual deductions file, runs the two-sided diff
// against the period's submitted batch, and persists the frozen result.
func (s *ReconciliationService) Reconcile(actor auth.Actor, month, year int, actualCSV io.Reader) (*ReconcileResult, error) {
	if err := actor.Require(auth.ActionReconcile); err != nil {
		return nil, err
	}
	if month < 1 || month > 12 {
		return nil, apperrors.Validation("month", "must be between 1 and 12")
	}

	request, err := s.deductionRepo.GetSubmittedForPeriod(actor.TenantID, month, year)
	if err != nil {
		return nil, err
	}
	expectedItems, err := s.deductionRepo.ListItems(request.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expected items: %v", err)
	}

	actualRecords, err := deductions.ParseActualCSV(actualCSV)
	if err != nil {
		return nil, apperrors.Validation("file", err.Error())
	}

	expected := make([]matching.ExpectedDeduction, 0, len(expectedItems))
	for _, item := range expectedItems {
		expected = append(expected, matching.ExpectedDeduction{
			MemberID:     item.MemberID,
			MemberNumber: item.MemberNumber,
			NationalID:   item.NationalID,
			Amount:       item.CurrentAmount,
		})
	}
	actual := make([]matching.ActualDeduction, 0, len(actualRecords))
	for _, rec := range actualRecords {
		actual = append(actual, matching.ActualDeduction{
			MemberNumber: rec.MemberNumber,
			Amount:       rec.Amount,
		})
	}

	s.engine.SetData(expected, actual)
	results, summary := s.engine.Process()

	now := time.Now()
	batch := &models.ReconciliationBatch{
		ID:                 uuid.NewString(),
		TenantID:           actor.TenantID,
		BatchNumber:        referenceNumber("REC", now),
		Month:              month,
		Year:               year,
		DeductionRequestID: sql.NullString{String: request.ID, Valid: true},
		Status:             models.ReconciliationInProgress,
		ProcessedBy:        actor.ID,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if err := s.reconciliationRepo.CreateBatch(tx, batch); err != nil {
		return nil, fmt.Errorf("failed to create reconciliation batch: %v", err)
	}

	items := make([]models.ReconciliationItem, 0, len(results))
	var suspense []models.SuspenseEntry
	for _, res := range results {
		item := models.ReconciliationItem{
			ID:                   uuid.NewString(),
			BatchID:              batch.ID,
			MemberNumber:         res.MemberNumber,
			NationalID:           res.NationalID,
			ExpectedAmount:       res.ExpectedAmount,
			ActualAmount:         res.ActualAmount,
			Variance:             res.Variance,
			MatchStatus:          res.MatchStatus,
			VarianceReason:       res.VarianceReason,
			RequiresManualReview: res.MatchStatus != models.StatusMatched,
		}
		if res.MemberID != "" {
			item.MemberID = sql.NullString{String: res.MemberID, Valid: true}
		}

		// An orphan row may still belong to a registered member who was
		// simply absent from the expected batch. Resolve by member number;
		// an unknown number stays recorded with a null member id.
		if res.MatchStatus == models.StatusOrphanInMoF {
			member, err := s.memberRepo.GetByMemberNumber(res.MemberNumber, actor.TenantID)
			switch {
			case err == nil:
				item.MemberID = sql.NullString{String: member.ID, Valid: true}
				item.NationalID = member.NationalID
			case !errors.Is(err, apperrors.ErrNotFound):
				return nil, fmt.Errorf("failed to resolve member %s: %v", res.MemberNumber, err)
			}
		}

		if err := s.reconciliationRepo.CreateItem(tx, &item); err != nil {
			return nil, fmt.Errorf("failed to create reconciliation item: %v", err)
		}
		items = append(items, item)

		if res.MatchStatus == models.StatusOrphanInMoF {
			entry := models.SuspenseEntry{
				ID:              uuid.NewString(),
				TenantID:        actor.TenantID,
				ReferenceNumber: fmt.Sprintf("SUSP-%d%02d-%s", year, month, res.MemberNumber),
				BatchID:         batch.ID,
				MemberNumber:    res.MemberNumber,
				NationalID:      item.NationalID,
				Amount:          res.ActualAmount,
				Month:           month,
				Year:            year,
				Status:          models.SuspensePending,
				Reason:          "Deduction received for a member not in the expected batch",
			}
			if err := s.reconciliationRepo.CreateSuspenseEntry(tx, &entry); err != nil {
				return nil, fmt.Errorf("failed to create suspense entry: %v", err)
			}
			suspense = append(suspense, entry)
		}
	}

	batch.TotalRecords = summary.TotalRecords
	batch.MatchedRecords = summary.MatchedRecords
	batch.VarianceRecords = summary.VarianceRecords
	batch.UnmatchedRecords = summary.UnmatchedRecords
	batch.TotalExpected = summary.TotalExpected
	batch.TotalActual = summary.TotalActual
	batch.TotalVariance = summary.TotalVariance
	batch.Status = models.ReconciliationCompleted
	batch.ProcessedAt = sql.NullTime{Time: now, Valid: true}

	if err := s.reconciliationRepo.UpdateBatchTotals(tx, batch); err != nil {
		return nil, fmt.Errorf("failed to update batch totals: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}

	s.log.Info("reconciliation completed",
		zap.String("batch_number", batch.BatchNumber),
		zap.Int("total_records", batch.TotalRecords),
		zap.Int("matched", batch.MatchedRecords),
		zap.Int("variance", batch.VarianceRecords),
		zap.Int("unmatched", batch.UnmatchedRecords),
		zap.String("total_variance", batch.TotalVariance.StringFixed(2)))

	return &ReconcileResult{Batch: batch, Items: items, SuspenseEntries: suspense}, nil
}

// GetBatch returns a stored batch with its items and suspense entries.
func (s *ReconciliationService) GetBatch(actor auth.Actor, batchID string) (*ReconcileResult, error) {
	if err := actor.Require(auth.ActionViewReports); err != nil {
		return nil, err
	}

	batch, err := s.reconciliationRepo.GetBatch(batchID, actor.TenantID)
	if err != nil {
		return nil, err
	}
	items, err := s.reconciliationRepo.ListItems(batch.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reconciliation items: %v", err)
	}
	suspense, err := s.reconciliationRepo.ListSuspenseEntries(batch.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list suspense entries: %v", err)
	}
	return &ReconcileResult{Batch: batch, Items: items, SuspenseEntries: suspense}, nil
}
