package services

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"saccos-core/internal/apperrors"
	"saccos-core/internal/auth"
	"saccos-core/internal/models"
	"saccos-core/internal/notify"
	"saccos-core/internal/repositories"
)

// GuarantorService handles the guarantor's side of the staking stage.
type GuarantorService struct {
	db            *sql.DB
	loanRepo      repositories.LoanRepository
	guarantorRepo repositories.GuarantorRepository
	notifier      notify.Notifier
	log           *zap.Logger
}

func NewGuarantorService(
	db *sql.DB,
	loanRepo repositories.LoanRepository,
	guarantorRepo repositories.GuarantorRepository,
	notifier notify.Notifier,
	log *zap.Logger,
) *GuarantorService {
	return &GuarantorService{
		db:            db,
		loanRepo:      loanRepo,
		guarantorRepo: guarantorRepo,
		notifier:      notifier,
		log:           log,
	}
}

// RespondToPledge records the guarantor's accept or reject decision. A
// pledge is terminal once answered; only the named guarantor may respond.
func (s *GuarantorService) RespondToPledge(actor auth.Actor, pledgeID string, accept bool, reason string) (*models.LoanGuarantor, error) {
	if err := actor.Require(auth.ActionRespondToPledge); err != nil {
		return nil, err
	}
	if !accept && reason == "" {
		return nil, apperrors.Validation("reason", "a reason is required when rejecting a pledge")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	pledge, err := s.guarantorRepo.GetByID(pledgeID)
	if err != nil {
		return nil, err
	}
	if pledge.GuarantorMemberID != actor.ID {
		return nil, &apperrors.AuthorizationError{Action: "respond to another member's pledge"}
	}
	if pledge.Status != models.GuarantorPending {
		return nil, apperrors.GuardFailed("respond to", string(pledge.Status),
			fmt.Sprintf("pledge has already been %s", pledge.Status))
	}

	loan, err := s.loanRepo.GetByIDForUpdate(tx, pledge.LoanID, actor.TenantID)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusPendingGuarantors {
		return nil, apperrors.StateConflict("respond to a pledge on", string(loan.Status))
	}

	now := time.Now()
	event := notify.EventGuarantorAccepted
	body := fmt.Sprintf("A guarantor has accepted their pledge on loan %s", loan.LoanNumber)
	if accept {
		pledge.Status = models.GuarantorAccepted
		pledge.AcceptedAt = sql.NullTime{Time: now, Valid: true}
	} else {
		pledge.Status = models.GuarantorRejected
		pledge.RejectedAt = sql.NullTime{Time: now, Valid: true}
		pledge.RejectionReason = reason
		event = notify.EventGuarantorRejected
		body = fmt.Sprintf("A guarantor has declined their pledge on loan %s", loan.LoanNumber)
	}

	if err := s.guarantorRepo.Update(tx, pledge); err != nil {
		return nil, fmt.Errorf("failed to update pledge: %v", err)
	}

	entry := &models.LoanWorkflowLog{
		LoanID:     loan.ID,
		ActionType: models.ActionStatusChange,
		ActionBy:   actor.ID,
		FromStatus: loan.Status,
		ToStatus:   loan.Status,
		Notes:      fmt.Sprintf("Guarantor %s %s the pledge", actor.ID, pledge.Status),
	}
	if err := s.loanRepo.AppendWorkflowLog(tx, entry); err != nil {
		return nil, fmt.Errorf("failed to append workflow log: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}

	s.notifier.Notify(notify.Message{
		Event:       event,
		RecipientID: loan.MemberID,
		LoanID:      loan.ID,
		Body:        body,
	})
	return pledge, nil
}

// ListPledges returns the pledges on a loan.
func (s *GuarantorService) ListPledges(actor auth.Actor, loanID string) ([]models.LoanGuarantor, error) {
	if _, err := s.loanRepo.GetByID(loanID, actor.TenantID); err != nil {
		return nil, err
	}
	return s.guarantorRepo.ListByLoan(loanID)
}
