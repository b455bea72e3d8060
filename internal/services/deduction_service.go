package services

import (
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"saccos-core/internal/apperrors"
	"saccos-core/internal/auth"
	"saccos-core/internal/config"
	"saccos-core/internal/deductions"
	"saccos-core/internal/models"
	"saccos-core/internal/repositories"
)

// DeductionService generates, exports, and submits the monthly expected
// deduction batch.
type DeductionService struct {
	db            *sql.DB
	cfg           config.WorkflowConfig
	memberRepo    repositories.MemberRepository
	loanRepo      repositories.LoanRepository
	deductionRepo repositories.DeductionRepository
	log           *zap.Logger
}

func NewDeductionService(
	db *sql.DB,
	cfg config.WorkflowConfig,
	memberRepo repositories.MemberRepository,
	loanRepo repositories.LoanRepository,
	deductionRepo repositories.DeductionRepository,
	log *zap.Logger,
) *DeductionService {
	return &DeductionService{
		db:            db,
		cfg:           cfg,
		memberRepo:    memberRepo,
		loanRepo:      loanRepo,
		deductionRepo: deductionRepo,
		log:           log,
	}
}

// GenerateBatch builds the expected deduction batch for a period: one item
// per active employed member with a nonzero breakdown, flagged when the
// total breaches the salary cap.
func (s *DeductionService) GenerateBatch(actor auth.Actor, month, year int) (*models.DeductionRequest, []models.DeductionItem, error) {
	if err := actor.Require(auth.ActionManageDeductions); err != nil {
		return nil, nil, err
	}
	if month < 1 || month > 12 {
		return nil, nil, apperrors.Validation("month", "must be between 1 and 12")
	}
	if year < 2000 {
		return nil, nil, apperrors.Validation("year", "is out of range")
	}

	exists, err := s.deductionRepo.ExistsForPeriod(actor.TenantID, month, year)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check existing batches: %v", err)
	}
	if exists {
		return nil, nil, apperrors.Validation("period",
			fmt.Sprintf("a deduction batch already exists for %d-%02d", year, month))
	}

	members, err := s.memberRepo.ListActiveEmployed(actor.TenantID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list members: %v", err)
	}

	previous, err := s.deductionRepo.PreviousAmounts(actor.TenantID, month, year)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load previous amounts: %v", err)
	}

	maxPercent := decimal.NewFromFloat(s.cfg.MaxDeductionPercent)
	request := &models.DeductionRequest{
		ID:          uuid.NewString(),
		TenantID:    actor.TenantID,
		BatchNumber: deductions.BatchNumber(actor.TenantID, month, year),
		Month:       month,
		Year:        year,
		TotalAmount: decimal.Zero,
		Status:      models.DeductionDraft,
	}

	var items []models.DeductionItem
	for i := range members {
		m := &members[i]

		savings, err := s.memberRepo.ListActiveSavings(m.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list savings for member %s: %v", m.MemberNumber, err)
		}
		loans, err := s.loanRepo.ListActiveByMember(m.ID, actor.TenantID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list loans for member %s: %v", m.MemberNumber, err)
		}
		policies, err := s.memberRepo.ListActivePolicies(m.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list policies for member %s: %v", m.MemberNumber, err)
		}

		breakdown := deductions.ComputeBreakdown(m, savings, loans, policies)
		if breakdown.Total.IsZero() {
			continue
		}
		deductions.CheckLimit(&breakdown, m.MonthlyNetSalary, maxPercent)

		prevAmount := decimal.Zero
		if raw, ok := previous[m.ID]; ok {
			if parsed, err := decimal.NewFromString(raw); err == nil {
				prevAmount = parsed
			}
		}

		items = append(items, models.DeductionItem{
			ID:               uuid.NewString(),
			RequestID:        request.ID,
			MemberID:         breakdown.MemberID,
			MemberNumber:     breakdown.MemberNumber,
			NationalID:       breakdown.NationalID,
			EmployeeNumber:   breakdown.EmployeeNumber,
			FullName:         breakdown.FullName,
			Savings:          breakdown.Savings,
			LoanInstallment:  breakdown.LoanInstallment,
			InsurancePremium: breakdown.InsurancePremium,
			CurrentAmount:    breakdown.Total,
			PreviousAmount:   prevAmount,
			IsOverLimit:      breakdown.IsOverLimit,
			LimitNotes:       breakdown.LimitNotes,
		})
		request.TotalAmount = request.TotalAmount.Add(breakdown.Total)
	}
	request.TotalMembers = len(items)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if err := s.deductionRepo.CreateRequest(tx, request); err != nil {
		return nil, nil, fmt.Errorf("failed to create deduction request: %v", err)
	}
	for i := range items {
		if err := s.deductionRepo.CreateItem(tx, &items[i]); err != nil {
			return nil, nil, fmt.Errorf("failed to create deduction item: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %v", err)
	}

	s.log.Info("deduction batch generated",
		zap.String("batch_number", request.BatchNumber),
		zap.Int("total_members", request.TotalMembers),
		zap.String("total_amount", request.TotalAmount.StringFixed(2)))
	return request, items, nil
}

// ExportCSV streams the batch in the payroll authority's submission format.
func (s *DeductionService) ExportCSV(actor auth.Actor, requestID string, w io.Writer) error {
	if err := actor.Require(auth.ActionManageDeductions); err != nil {
		return err
	}

	request, err := s.deductionRepo.GetRequest(requestID, actor.TenantID)
	if err != nil {
		return err
	}
	items, err := s.deductionRepo.ListItems(request.ID)
	if err != nil {
		return fmt.Errorf("failed to list deduction items: %v", err)
	}
	return deductions.WriteCSV(w, request, items)
}

// Submit marks a DRAFT batch as sent to the payroll authority.
func (s *DeductionService) Submit(actor auth.Actor, requestID string) (*models.DeductionRequest, error) {
	if err := actor.Require(auth.ActionManageDeductions); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	request, err := s.deductionRepo.GetRequest(requestID, actor.TenantID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.DeductionDraft {
		return nil, apperrors.StateConflict("submit", string(request.Status))
	}

	request.Status = models.DeductionSubmitted
	request.SubmittedBy = sql.NullString{String: actor.ID, Valid: true}
	request.SubmittedAt = sql.NullTime{Time: time.Now(), Valid: true}

	if err := s.deductionRepo.UpdateRequestStatus(tx, request); err != nil {
		return nil, fmt.Errorf("failed to update deduction request: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}

	s.log.Info("deduction batch submitted",
		zap.String("batch_number", request.BatchNumber),
		zap.String("submitted_by", actor.ID))
	return request, nil
}
