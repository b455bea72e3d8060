package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"saccos-core/internal/apperrors"
	"saccos-core/internal/auth"
	"saccos-core/internal/committee"
	"saccos-core/internal/config"
	"saccos-core/internal/eligibility"
	"saccos-core/internal/models"
	"saccos-core/internal/notify"
	"saccos-core/internal/repositories"
)

// LoanWorkflowService owns every state transition on a loan. Each operation
// runs in one database transaction, locks the loan row, validates the guard,
// mutates, appends one workflow log row, then commits.
type LoanWorkflowService struct {
	db              *sql.DB
	cfg             config.WorkflowConfig
	loanRepo        repositories.LoanRepository
	memberRepo      repositories.MemberRepository
	productRepo     repositories.ProductRepository
	guarantorRepo   repositories.GuarantorRepository
	voteRepo        repositories.VoteRepository
	transactionRepo repositories.TransactionRepository
	notifier        notify.Notifier
	log             *zap.Logger
}

func NewLoanWorkflowService(
	db *sql.DB,
	cfg config.WorkflowConfig,
	loanRepo repositories.LoanRepository,
	memberRepo repositories.MemberRepository,
	productRepo repositories.ProductRepository,
	guarantorRepo repositories.GuarantorRepository,
	voteRepo repositories.VoteRepository,
	transactionRepo repositories.TransactionRepository,
	notifier notify.Notifier,
	log *zap.Logger,
) *LoanWorkflowService {
	return &LoanWorkflowService{
		db:              db,
		cfg:             cfg,
		loanRepo:        loanRepo,
		memberRepo:      memberRepo,
		productRepo:     productRepo,
		guarantorRepo:   guarantorRepo,
		voteRepo:        voteRepo,
		transactionRepo: transactionRepo,
		notifier:        notifier,
		log:             log,
	}
}

// ApplyInput carries a member's loan application.
type ApplyInput struct {
	MemberID        string
	ProductID       string
	PrincipalAmount decimal.Decimal
	TermMonths      int
	Purpose         string
}

// Apply creates a PENDING loan with the amortized installment and fee-laden
// total already computed from the product terms.
func (s *LoanWorkflowService) Apply(actor auth.Actor, in ApplyInput) (*models.Loan, error) {
	if err := actor.Require(auth.ActionApplyLoan); err != nil {
		return nil, err
	}
	if in.PrincipalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.Validation("principal_amount", "must be greater than zero")
	}
	if in.TermMonths <= 0 {
		return nil, apperrors.Validation("term_months", "must be greater than zero")
	}

	member, err := s.memberRepo.GetByID(in.MemberID, actor.TenantID)
	if err != nil {
		return nil, err
	}
	if member.Status != models.MemberActive {
		return nil, apperrors.Validation("member_id", "member is not active")
	}

	product, err := s.productRepo.GetByID(in.ProductID, actor.TenantID)
	if err != nil {
		return nil, err
	}
	if in.TermMonths > product.MaxTermMonths {
		return nil, apperrors.Validation("term_months",
			fmt.Sprintf("exceeds product maximum of %d months", product.MaxTermMonths))
	}

	installment := MonthlyInstallment(in.PrincipalAmount, product.InterestRate, in.TermMonths)
	totalDue := TotalAmountDue(installment, in.TermMonths, product.ProcessingFee, product.InsuranceFee)
	now := time.Now()

	loan := &models.Loan{
		ID:                 uuid.NewString(),
		TenantID:           actor.TenantID,
		LoanNumber:         referenceNumber("LN", now),
		MemberID:           member.ID,
		ProductID:          product.ID,
		PrincipalAmount:    in.PrincipalAmount,
		InterestRate:       product.InterestRate,
		TermMonths:         in.TermMonths,
		MonthlyInstallment: installment,
		ProcessingFee:      product.ProcessingFee,
		InsuranceFee:       product.InsuranceFee,
		TotalAmountDue:     totalDue,
		AmountPaid:         decimal.Zero,
		OutstandingBalance: decimal.Zero,
		Status:             models.LoanStatusPending,
		WorkflowStage:      models.StageEligibilityCheck,
		Purpose:            in.Purpose,
		ApplicationDate:    now,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if err := s.loanRepo.Create(tx, loan); err != nil {
		return nil, fmt.Errorf("failed to create loan: %v", err)
	}

	entry := &models.LoanWorkflowLog{
		LoanID:     loan.ID,
		ActionType: models.ActionStatusChange,
		ActionBy:   actor.ID,
		ToStatus:   models.LoanStatusPending,
		Notes:      "Loan application received",
	}
	if err := s.loanRepo.AppendWorkflowLog(tx, entry); err != nil {
		return nil, fmt.Errorf("failed to append workflow log: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}

	s.log.Info("loan application created",
		zap.String("loan_id", loan.ID),
		zap.String("loan_number", loan.LoanNumber),
		zap.String("member_id", member.ID))
	return loan, nil
}

// RunEligibilityCheck evaluates the three screening rules, persists the full
// result snapshot on the loan, and moves it to DRAFT or REJECTED.
func (s *LoanWorkflowService) RunEligibilityCheck(actor auth.Actor, loanID string) (*eligibility.Result, error) {
	if err := actor.Require(auth.ActionRunEligibility); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	loan, err := s.loanRepo.GetByIDForUpdate(tx, loanID, actor.TenantID)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusPending {
		return nil, apperrors.StateConflict("run eligibility check on", string(loan.Status))
	}

	member, err := s.memberRepo.GetByID(loan.MemberID, actor.TenantID)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.GetByID(loan.ProductID, actor.TenantID)
	if err != nil {
		return nil, err
	}
	totalSavings, err := s.memberRepo.TotalSavings(member.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum member savings: %v", err)
	}
	activeLoans, err := s.loanRepo.ListActiveByMember(member.ID, actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active loans: %v", err)
	}

	active := make([]eligibility.ActiveLoan, 0, len(activeLoans))
	for _, l := range activeLoans {
		active = append(active, eligibility.ActiveLoan{
			LoanNumber:         l.LoanNumber,
			OutstandingBalance: l.OutstandingBalance,
		})
	}

	multiplier := product.SavingsMultiplier
	if !multiplier.IsPositive() {
		multiplier = decimal.NewFromInt(int64(s.cfg.DefaultSavingsMultiple))
	}

	result := eligibility.Evaluate(eligibility.Input{
		RequestedAmount:   loan.PrincipalAmount,
		TotalSavings:      totalSavings,
		SavingsMultiplier: multiplier,
		ActiveLoans:       active,
		JoinDate:          member.JoinDate,
		RequiredMonths:    s.cfg.MinMembershipMonths,
		Now:               time.Now(),
	})

	snapshot, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal eligibility snapshot: %v", err)
	}

	fromStatus := loan.Status
	loan.EligibilityCheckPassed = result.Passed
	loan.EligibilityCheckNotes = snapshot
	if result.Passed {
		loan.Status = models.LoanStatusDraft
		loan.WorkflowStage = models.StageGuarantorStaking
	} else {
		loan.Status = models.LoanStatusRejected
		loan.RejectionReason = "Failed automated eligibility check"
	}

	if err := s.loanRepo.Update(tx, loan); err != nil {
		return nil, fmt.Errorf("failed to update loan: %v", err)
	}

	entry := &models.LoanWorkflowLog{
		LoanID:     loan.ID,
		ActionType: models.ActionEligibilityCheck,
		ActionBy:   actor.ID,
		FromStatus: fromStatus,
		ToStatus:   loan.Status,
		Metadata:   snapshot,
	}
	if err := s.loanRepo.AppendWorkflowLog(tx, entry); err != nil {
		return nil, fmt.Errorf("failed to append workflow log: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}

	if !result.Passed {
		s.notifier.Notify(notify.Message{
			Event:       notify.EventLoanRejected,
			RecipientID: loan.MemberID,
			LoanID:      loan.ID,
			Body:        "Your loan application did not pass the eligibility check",
		})
	}
	return &result, nil
}

// GuarantorInput names one member asked to stake part of the loan.
type GuarantorInput struct {
	GuarantorMemberID string
	GuaranteedAmount  decimal.Decimal
}

// RequestGuarantors moves a DRAFT loan into the guarantor stage, creating a
// pending pledge row per guarantor and notifying each of them.
func (s *LoanWorkflowService) RequestGuarantors(actor auth.Actor, loanID string, guarantors []GuarantorInput) (*models.Loan, error) {
	if err := actor.Require(auth.ActionRequestGuarantors); err != nil {
		return nil, err
	}
	if len(guarantors) == 0 {
		return nil, apperrors.Validation("guarantors", "at least one guarantor is required")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	loan, err := s.loanRepo.GetByIDForUpdate(tx, loanID, actor.TenantID)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusDraft {
		return nil, apperrors.StateConflict("request guarantors for", string(loan.Status))
	}

	now := time.Now()
	deadline := now.AddDate(0, 0, s.cfg.GuarantorResponseDays)
	created := make([]*models.LoanGuarantor, 0, len(guarantors))
	for _, g := range guarantors {
		if g.GuaranteedAmount.LessThanOrEqual(decimal.Zero) {
			return nil, apperrors.Validation("guaranteed_amount", "must be greater than zero")
		}
		if _, err := s.memberRepo.GetByID(g.GuarantorMemberID, actor.TenantID); err != nil {
			return nil, err
		}

		row := &models.LoanGuarantor{
			ID:                   uuid.NewString(),
			LoanID:               loan.ID,
			GuarantorMemberID:    g.GuarantorMemberID,
			GuaranteedAmount:     g.GuaranteedAmount,
			Status:               models.GuarantorPending,
			NotificationSentAt:   sql.NullTime{Time: now, Valid: true},
			ResponseDeadline:     sql.NullTime{Time: deadline, Valid: true},
			NotificationAttempts: 1,
		}
		if err := s.guarantorRepo.Create(tx, row); err != nil {
			return nil, fmt.Errorf("failed to create guarantor pledge: %v", err)
		}
		created = append(created, row)
	}

	fromStatus := loan.Status
	loan.Status = models.LoanStatusPendingGuarantors
	loan.WorkflowStage = models.StageGuarantorStaking
	if err := s.loanRepo.Update(tx, loan); err != nil {
		return nil, fmt.Errorf("failed to update loan: %v", err)
	}

	entry := &models.LoanWorkflowLog{
		LoanID:     loan.ID,
		ActionType: models.ActionStatusChange,
		ActionBy:   actor.ID,
		FromStatus: fromStatus,
		ToStatus:   loan.Status,
		Notes:      fmt.Sprintf("Guarantor requests sent to %d member(s)", len(created)),
	}
	if err := s.loanRepo.AppendWorkflowLog(tx, entry); err != nil {
		return nil, fmt.Errorf("failed to append workflow log: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}

	for _, g := range created {
		s.notifier.Notify(notify.Message{
			Event:       notify.EventGuarantorRequested,
			RecipientID: g.GuarantorMemberID,
			LoanID:      loan.ID,
			Body:        fmt.Sprintf("You have been asked to guarantee P %s on loan %s", g.GuaranteedAmount.StringFixed(2), loan.LoanNumber),
		})
	}
	return loan, nil
}

// AssignOfficer moves the loan into technical appraisal. Blocked while any
// guarantor pledge is still pending or rejected.
func (s *LoanWorkflowService) AssignOfficer(actor auth.Actor, loanID, officerID string) (*models.Loan, error) {
	if err := actor.Require(auth.ActionAssignOfficer); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	loan, err := s.loanRepo.GetByIDForUpdate(tx, loanID, actor.TenantID)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusPendingGuarantors {
		return nil, apperrors.StateConflict("assign an officer to", string(loan.Status))
	}

	guarantors, err := s.guarantorRepo.ListByLoan(loan.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guarantors: %v", err)
	}
	pending := 0
	for _, g := range guarantors {
		if g.Status != models.GuarantorAccepted {
			pending++
		}
	}
	if pending > 0 {
		return nil, apperrors.GuardFailed("assign an officer to", string(loan.Status),
			fmt.Sprintf("%d guarantor(s) have not yet accepted", pending))
	}

	fromStatus := loan.Status
	loan.Status = models.LoanStatusUnderAppraisal
	loan.WorkflowStage = models.StageTechnicalAppraisal
	loan.LoanOfficerID = sql.NullString{String: officerID, Valid: true}
	if err := s.loanRepo.Update(tx, loan); err != nil {
		return nil, fmt.Errorf("failed to update loan: %v", err)
	}

	entry := &models.LoanWorkflowLog{
		LoanID:     loan.ID,
		ActionType: models.ActionOfficerAssign,
		ActionBy:   actor.ID,
		FromStatus: fromStatus,
		ToStatus:   loan.Status,
		Notes:      fmt.Sprintf("Assigned to loan officer %s", officerID),
	}
	if err := s.loanRepo.AppendWorkflowLog(tx, entry); err != nil {
		return nil, fmt.Errorf("failed to append workflow log: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}
	return loan, nil
}

// Recommendation constants for the officer's appraisal outcome.
const (
	RecommendationForward = "forward"
	RecommendationQuery   = "query"
	RecommendationReject  = "reject"
)

// SubmitOfficerRecommendation records the appraisal outcome: forward to the
// committee, query back to the member, or reject outright.
func (s *LoanWorkflowService) SubmitOfficerRecommendation(actor auth.Actor, loanID, notes, recommendation string) (*models.Loan, error) {
	if err := actor.Require(auth.ActionOfficerRecommend); err != nil {
		return nil, err
	}
	if notes == "" {
		return nil, apperrors.Validation("notes", "appraisal notes are required")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	loan, err := s.loanRepo.GetByIDForUpdate(tx, loanID, actor.TenantID)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusUnderAppraisal {
		return nil, apperrors.StateConflict("submit a recommendation for", string(loan.Status))
	}

	fromStatus := loan.Status
	now := time.Now()
	loan.LoanOfficerNotes = notes
	loan.LoanOfficerReviewDate = sql.NullTime{Time: now, Valid: true}

	switch recommendation {
	case RecommendationForward:
		loan.Status = models.LoanStatusAwaitingCommittee
		loan.WorkflowStage = models.StageCommitteeApproval
	case RecommendationQuery:
		loan.Status = models.LoanStatusQueried
	case RecommendationReject:
		loan.Status = models.LoanStatusRejected
		loan.RejectionReason = notes
	default:
		return nil, apperrors.Validation("recommendation", "must be forward, query, or reject")
	}

	if err := s.loanRepo.Update(tx, loan); err != nil {
		return nil, fmt.Errorf("failed to update loan: %v", err)
	}

	entry := &models.LoanWorkflowLog{
		LoanID:     loan.ID,
		ActionType: models.ActionOfficerReview,
		ActionBy:   actor.ID,
		FromStatus: fromStatus,
		ToStatus:   loan.Status,
		Notes:      notes,
	}
	if err := s.loanRepo.AppendWorkflowLog(tx, entry); err != nil {
		return nil, fmt.Errorf("failed to append workflow log: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}

	if loan.Status == models.LoanStatusQueried {
		s.notifier.Notify(notify.Message{
			Event:       notify.EventLoanQueried,
			RecipientID: loan.MemberID,
			LoanID:      loan.ID,
			Body:        "Your loan application has been queried by the loan officer",
		})
	}
	return loan, nil
}

// RecordCommitteeVote upserts the voter's ballot and returns the running
// tally. The decision is not applied here; FinalizeCommitteeDecision does
// that once the quorum is reached.
func (s *LoanWorkflowService) RecordCommitteeVote(actor auth.Actor, loanID string, vote models.VoteChoice, notes string) (*committee.VoteResult, error) {
	if err := actor.Require(auth.ActionCommitteeVote); err != nil {
		return nil, err
	}
	if vote != models.VoteApprove && vote != models.VoteReject {
		return nil, apperrors.Validation("vote", "must be approve or reject")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	loan, err := s.loanRepo.GetByIDForUpdate(tx, loanID, actor.TenantID)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusAwaitingCommittee {
		return nil, apperrors.StateConflict("vote on", string(loan.Status))
	}

	existing, err := s.voteRepo.ListByLoan(loan.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %v", err)
	}

	ballot := models.CommitteeVote{
		ID:      uuid.NewString(),
		LoanID:  loan.ID,
		VoterID: actor.ID,
		Vote:    vote,
		Notes:   notes,
		CastAt:  time.Now(),
	}
	updated, replaced := committee.Upsert(existing, ballot)
	if err := s.voteRepo.Upsert(tx, &ballot); err != nil {
		return nil, fmt.Errorf("failed to record vote: %v", err)
	}

	noteText := "Vote recorded"
	if replaced {
		noteText = "Vote updated"
	}
	entry := &models.LoanWorkflowLog{
		LoanID:     loan.ID,
		ActionType: models.ActionCommitteeVote,
		ActionBy:   actor.ID,
		FromStatus: loan.Status,
		ToStatus:   loan.Status,
		Notes:      fmt.Sprintf("%s: %s", noteText, vote),
	}
	if err := s.loanRepo.AppendWorkflowLog(tx, entry); err != nil {
		return nil, fmt.Errorf("failed to append workflow log: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}

	if loan.LoanOfficerID.Valid {
		s.notifier.Notify(notify.Message{
			Event:       notify.EventVoteRecorded,
			RecipientID: loan.LoanOfficerID.String,
			LoanID:      loan.ID,
			Body:        fmt.Sprintf("A committee vote was recorded on loan %s", loan.LoanNumber),
		})
	}

	result := committee.Tally(updated, s.cfg.RequiredQuorum)
	return &result, nil
}

// DecisionResult reports a finalization attempt. Applied is false while the
// quorum has not been reached.
type DecisionResult struct {
	Applied bool                 `json:"applied"`
	Message string               `json:"message,omitempty"`
	Tally   committee.VoteResult `json:"tally"`
	Loan    *models.Loan         `json:"loan,omitempty"`
}

// FinalizeCommitteeDecision applies the committee outcome once the quorum is
// reached: strict majority approves, anything else rejects with the tally in
// the rejection reason.
func (s *LoanWorkflowService) FinalizeCommitteeDecision(actor auth.Actor, loanID string) (*DecisionResult, error) {
	if err := actor.Require(auth.ActionCommitteeVote); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	loan, err := s.loanRepo.GetByIDForUpdate(tx, loanID, actor.TenantID)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusAwaitingCommittee {
		return nil, apperrors.StateConflict("finalize the committee decision for", string(loan.Status))
	}

	votes, err := s.voteRepo.ListByLoan(loan.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %v", err)
	}
	tally := committee.Tally(votes, s.cfg.RequiredQuorum)
	if !tally.QuorumMet {
		return &DecisionResult{
			Applied: false,
			Message: fmt.Sprintf("quorum not reached: %d of %d votes cast", tally.TotalVotes, tally.RequiredQuorum),
			Tally:   tally,
		}, nil
	}

	fromStatus := loan.Status
	now := time.Now()
	if tally.Approved {
		loan.Status = models.LoanStatusCommitteeApproved
		loan.WorkflowStage = models.StageDisbursement
		loan.CommitteeApprovalDate = sql.NullTime{Time: now, Valid: true}
		loan.ApprovalDate = sql.NullTime{Time: now, Valid: true}
		loan.ApprovedBy = sql.NullString{String: actor.ID, Valid: true}
	} else {
		loan.Status = models.LoanStatusRejected
		loan.RejectionReason = fmt.Sprintf("Rejected by committee: %d approve, %d reject",
			tally.ApproveVotes, tally.RejectVotes)
	}

	if err := s.loanRepo.Update(tx, loan); err != nil {
		return nil, fmt.Errorf("failed to update loan: %v", err)
	}

	tallyJSON, err := json.Marshal(tally)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tally: %v", err)
	}
	entry := &models.LoanWorkflowLog{
		LoanID:     loan.ID,
		ActionType: models.ActionStatusChange,
		ActionBy:   actor.ID,
		FromStatus: fromStatus,
		ToStatus:   loan.Status,
		Notes:      "Committee decision finalized",
		Metadata:   tallyJSON,
	}
	if err := s.loanRepo.AppendWorkflowLog(tx, entry); err != nil {
		return nil, fmt.Errorf("failed to append workflow log: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}

	event := notify.EventLoanRejected
	body := "Your loan application was rejected by the credit committee"
	if tally.Approved {
		event = notify.EventLoanApproved
		body = "Your loan application was approved by the credit committee"
	}
	s.notifier.Notify(notify.Message{
		Event:       event,
		RecipientID: loan.MemberID,
		LoanID:      loan.ID,
		Body:        body,
	})

	return &DecisionResult{Applied: true, Tally: tally, Loan: loan}, nil
}

// GenerateMinutes renders the committee minutes for a loan. Read-only.
func (s *LoanWorkflowService) GenerateMinutes(actor auth.Actor, loanID string) (*committee.Minutes, error) {
	if err := actor.Require(auth.ActionViewReports); err != nil {
		return nil, err
	}

	loan, err := s.loanRepo.GetByID(loanID, actor.TenantID)
	if err != nil {
		return nil, err
	}
	member, err := s.memberRepo.GetByID(loan.MemberID, actor.TenantID)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.GetByID(loan.ProductID, actor.TenantID)
	if err != nil {
		return nil, err
	}
	votes, err := s.voteRepo.ListByLoan(loan.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %v", err)
	}

	minutes := committee.RenderMinutes(loan, member, product, votes, s.cfg.RequiredQuorum, time.Now())
	return &minutes, nil
}

// DisburseInput carries the payout details.
type DisburseInput struct {
	Method  string
	Account string
	Notes   string
}

// Disburse pays the loan out. All effects are atomic: status and stage,
// dates, outstanding balance, the minted transaction, and the workflow log
// commit together or not at all. A retried disbursement observes the
// DISBURSED status under the row lock and fails with a state conflict.
func (s *LoanWorkflowService) Disburse(actor auth.Actor, loanID string, in DisburseInput) (*models.Loan, error) {
	if err := actor.Require(auth.ActionDisburse); err != nil {
		return nil, err
	}
	if in.Method == "" {
		return nil, apperrors.Validation("method", "disbursement method is required")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	loan, err := s.loanRepo.GetByIDForUpdate(tx, loanID, actor.TenantID)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusCommitteeApproved && loan.Status != models.LoanStatusApproved {
		return nil, apperrors.StateConflict("disburse", string(loan.Status))
	}

	fromStatus := loan.Status
	now := time.Now()
	loan.Status = models.LoanStatusDisbursed
	loan.WorkflowStage = models.StageDisbursement
	loan.DisbursementDate = sql.NullTime{Time: now, Valid: true}
	loan.MaturityDate = sql.NullTime{Time: addMonthsClamped(now, loan.TermMonths), Valid: true}
	loan.OutstandingBalance = loan.TotalAmountDue
	loan.DisbursedBy = sql.NullString{String: actor.ID, Valid: true}

	if err := s.loanRepo.Update(tx, loan); err != nil {
		return nil, fmt.Errorf("failed to update loan: %v", err)
	}

	transaction := &models.Transaction{
		ID:                uuid.NewString(),
		TenantID:          loan.TenantID,
		MemberID:          loan.MemberID,
		TransactionNumber: referenceNumber("TXN", now),
		TransactionType:   models.TransactionLoanDisbursement,
		Amount:            loan.PrincipalAmount,
		TransactionDate:   now,
		Description:       fmt.Sprintf("Disbursement of loan %s via %s", loan.LoanNumber, in.Method),
		Status:            models.TransactionCompleted,
		ReferenceID:       loan.ID,
		ReferenceType:     "loan",
		CreatedBy:         actor.ID,
	}
	if err := s.transactionRepo.Create(tx, transaction); err != nil {
		return nil, fmt.Errorf("failed to create disbursement transaction: %v", err)
	}

	metadata, err := json.Marshal(map[string]interface{}{
		"method":             in.Method,
		"account":            in.Account,
		"transaction_number": transaction.TransactionNumber,
		"amount":             loan.PrincipalAmount.StringFixed(2),
		"maturity_date":      loan.MaturityDate.Time.Format("2006-01-02"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal disbursement metadata: %v", err)
	}
	entry := &models.LoanWorkflowLog{
		LoanID:     loan.ID,
		ActionType: models.ActionDisbursement,
		ActionBy:   actor.ID,
		FromStatus: fromStatus,
		ToStatus:   loan.Status,
		Notes:      in.Notes,
		Metadata:   metadata,
	}
	if err := s.loanRepo.AppendWorkflowLog(tx, entry); err != nil {
		return nil, fmt.Errorf("failed to append workflow log: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}

	s.log.Info("loan disbursed",
		zap.String("loan_id", loan.ID),
		zap.String("loan_number", loan.LoanNumber),
		zap.String("transaction_number", transaction.TransactionNumber))

	s.notifier.Notify(notify.Message{
		Event:       notify.EventLoanDisbursed,
		RecipientID: loan.MemberID,
		LoanID:      loan.ID,
		Body:        fmt.Sprintf("Loan %s has been disbursed", loan.LoanNumber),
	})
	return loan, nil
}

// PortfolioReport is the portfolio-at-risk summary for a tenant.
type PortfolioReport struct {
	AsOf               time.Time       `json:"as_of"`
	TotalLoans         int             `json:"total_loans"`
	OverdueLoans       int             `json:"overdue_loans"`
	TotalOutstanding   decimal.Decimal `json:"total_outstanding"`
	OverdueOutstanding decimal.Decimal `json:"overdue_outstanding"`
	PARRatio           decimal.Decimal `json:"par_ratio"`
}

// PortfolioAtRisk computes the PAR ratio over ACTIVE and DISBURSED loans: a
// loan is overdue when its maturity date has passed with a balance still
// outstanding.
func (s *LoanWorkflowService) PortfolioAtRisk(actor auth.Actor, asOf time.Time) (*PortfolioReport, error) {
	if err := actor.Require(auth.ActionViewReports); err != nil {
		return nil, err
	}

	loans, err := s.loanRepo.ListByTenant(actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %v", err)
	}

	report := &PortfolioReport{
		AsOf:               asOf,
		TotalOutstanding:   decimal.Zero,
		OverdueOutstanding: decimal.Zero,
		PARRatio:           decimal.Zero,
	}
	for _, l := range loans {
		if l.Status != models.LoanStatusActive && l.Status != models.LoanStatusDisbursed {
			continue
		}
		report.TotalLoans++
		report.TotalOutstanding = report.TotalOutstanding.Add(l.OutstandingBalance)

		if l.MaturityDate.Valid && l.MaturityDate.Time.Before(asOf) && l.OutstandingBalance.GreaterThan(decimal.Zero) {
			report.OverdueLoans++
			report.OverdueOutstanding = report.OverdueOutstanding.Add(l.OutstandingBalance)
		}
	}

	if report.TotalOutstanding.GreaterThan(decimal.Zero) {
		report.PARRatio = report.OverdueOutstanding.Div(report.TotalOutstanding).Round(4)
	}
	return report, nil
}

// GetLoan returns a loan with its guarantors and workflow history.
func (s *LoanWorkflowService) GetLoan(actor auth.Actor, loanID string) (*models.Loan, []models.LoanGuarantor, []models.LoanWorkflowLog, error) {
	loan, err := s.loanRepo.GetByID(loanID, actor.TenantID)
	if err != nil {
		return nil, nil, nil, err
	}
	guarantors, err := s.guarantorRepo.ListByLoan(loan.ID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list guarantors: %v", err)
	}
	logs, err := s.loanRepo.ListWorkflowLogs(loan.ID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list workflow logs: %v", err)
	}
	return loan, guarantors, logs, nil
}
