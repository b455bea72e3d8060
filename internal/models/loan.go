package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the fine-grained workflow status of a loan.
type LoanStatus string

const (
	LoanStatusPending           LoanStatus = "pending"
	LoanStatusDraft             LoanStatus = "draft"
	LoanStatusPendingGuarantors LoanStatus = "pending_guarantors"
	LoanStatusUnderAppraisal    LoanStatus = "under_appraisal"
	LoanStatusAwaitingCommittee LoanStatus = "awaiting_committee"
	LoanStatusCommitteeApproved LoanStatus = "committee_approved"
	LoanStatusApproved          LoanStatus = "approved"
	LoanStatusDisbursed         LoanStatus = "disbursed"
	LoanStatusActive            LoanStatus = "active"
	LoanStatusPaidOff           LoanStatus = "paid_off"
	LoanStatusRejected          LoanStatus = "rejected"
	LoanStatusQueried           LoanStatus = "queried"
)

// WorkflowStage is the coarse-grained stage tag tracked alongside the status.
type WorkflowStage string

const (
	StageEligibilityCheck   WorkflowStage = "eligibility_check"
	StageGuarantorStaking   WorkflowStage = "guarantor_staking"
	StageTechnicalAppraisal WorkflowStage = "technical_appraisal"
	StageCommitteeApproval  WorkflowStage = "committee_approval"
	StageDisbursement       WorkflowStage = "disbursement"
)

// Loan is the central aggregate. It is mutated exclusively through the
// workflow service and is never physically deleted.
type Loan struct {
	ID                 string          `db:"id" json:"id"`
	TenantID           string          `db:"tenant_id" json:"tenant_id"`
	LoanNumber         string          `db:"loan_number" json:"loan_number"`
	MemberID           string          `db:"member_id" json:"member_id"`
	ProductID          string          `db:"product_id" json:"product_id"`
	PrincipalAmount    decimal.Decimal `db:"principal_amount" json:"principal_amount"`
	InterestRate       decimal.Decimal `db:"interest_rate" json:"interest_rate"`
	TermMonths         int             `db:"term_months" json:"term_months"`
	MonthlyInstallment decimal.Decimal `db:"monthly_installment" json:"monthly_installment"`
	ProcessingFee      decimal.Decimal `db:"processing_fee" json:"processing_fee"`
	InsuranceFee       decimal.Decimal `db:"insurance_fee" json:"insurance_fee"`
	TotalAmountDue     decimal.Decimal `db:"total_amount_due" json:"total_amount_due"`
	AmountPaid         decimal.Decimal `db:"amount_paid" json:"amount_paid"`
	OutstandingBalance decimal.Decimal `db:"outstanding_balance" json:"outstanding_balance"`
	Status             LoanStatus      `db:"status" json:"status"`
	WorkflowStage      WorkflowStage   `db:"workflow_stage" json:"workflow_stage"`
	Purpose            string          `db:"purpose" json:"purpose,omitempty"`
	RejectionReason    string          `db:"rejection_reason" json:"rejection_reason,omitempty"`

	EligibilityCheckPassed bool            `db:"eligibility_check_passed" json:"eligibility_check_passed"`
	EligibilityCheckNotes  json.RawMessage `db:"eligibility_check_notes" json:"eligibility_check_notes,omitempty"`

	LoanOfficerID         sql.NullString `db:"loan_officer_id" json:"loan_officer_id,omitempty"`
	LoanOfficerNotes      string         `db:"loan_officer_notes" json:"loan_officer_notes,omitempty"`
	LoanOfficerReviewDate sql.NullTime   `db:"loan_officer_review_date" json:"loan_officer_review_date,omitempty"`
	CommitteeApprovalDate sql.NullTime   `db:"committee_approval_date" json:"committee_approval_date,omitempty"`

	ApplicationDate  time.Time      `db:"application_date" json:"application_date"`
	ApprovalDate     sql.NullTime   `db:"approval_date" json:"approval_date,omitempty"`
	DisbursementDate sql.NullTime   `db:"disbursement_date" json:"disbursement_date,omitempty"`
	MaturityDate     sql.NullTime   `db:"maturity_date" json:"maturity_date,omitempty"`
	ApprovedBy       sql.NullString `db:"approved_by" json:"approved_by,omitempty"`
	DisbursedBy      sql.NullString `db:"disbursed_by" json:"disbursed_by,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"-"`
}

// GuarantorStatus constants. A guarantor row is terminal once accepted or
// rejected.
type GuarantorStatus string

const (
	GuarantorPending  GuarantorStatus = "pending"
	GuarantorAccepted GuarantorStatus = "accepted"
	GuarantorRejected GuarantorStatus = "rejected"
)

// LoanGuarantor is a pledge record for one guarantor against one loan.
type LoanGuarantor struct {
	ID                   string          `db:"id" json:"id"`
	LoanID               string          `db:"loan_id" json:"loan_id"`
	GuarantorMemberID    string          `db:"guarantor_member_id" json:"guarantor_member_id"`
	GuaranteedAmount     decimal.Decimal `db:"guaranteed_amount" json:"guaranteed_amount"`
	Status               GuarantorStatus `db:"status" json:"status"`
	AcceptedAt           sql.NullTime    `db:"accepted_at" json:"accepted_at,omitempty"`
	RejectedAt           sql.NullTime    `db:"rejected_at" json:"rejected_at,omitempty"`
	RejectionReason      string          `db:"rejection_reason" json:"rejection_reason,omitempty"`
	NotificationSentAt   sql.NullTime    `db:"notification_sent_at" json:"notification_sent_at,omitempty"`
	ResponseDeadline     sql.NullTime    `db:"response_deadline" json:"response_deadline,omitempty"`
	NotificationAttempts int             `db:"notification_attempts" json:"notification_attempts"`
	CreatedAt            time.Time       `db:"created_at" json:"-"`
}

// VoteChoice is a committee member's ballot.
type VoteChoice string

const (
	VoteApprove VoteChoice = "approve"
	VoteReject  VoteChoice = "reject"
)

// CommitteeVote is one committee member's vote on one loan. Votes are
// normalized child rows; a re-vote by the same voter overwrites the prior
// row rather than double-counting.
type CommitteeVote struct {
	ID      string     `db:"id" json:"id"`
	LoanID  string     `db:"loan_id" json:"loan_id"`
	VoterID string     `db:"voter_id" json:"voter_id"`
	Vote    VoteChoice `db:"vote" json:"vote"`
	Notes   string     `db:"notes" json:"notes,omitempty"`
	CastAt  time.Time  `db:"cast_at" json:"cast_at"`
}

// WorkflowActionType constants for the audit trail.
const (
	ActionOfficerAssign    = "officer_assign"
	ActionOfficerReview    = "officer_review"
	ActionEligibilityCheck = "eligibility_check"
	ActionCommitteeVote    = "committee_vote"
	ActionStatusChange     = "status_change"
	ActionDisbursement     = "disbursement"
)

// LoanWorkflowLog is an append-only audit row. Every state-changing
// operation on a loan writes exactly one row in the same transaction.
type LoanWorkflowLog struct {
	ID         int64           `db:"id" json:"id"`
	LoanID     string          `db:"loan_id" json:"loan_id"`
	ActionType string          `db:"action_type" json:"action_type"`
	ActionBy   string          `db:"action_by" json:"action_by"`
	FromStatus LoanStatus      `db:"from_status" json:"from_status,omitempty"`
	ToStatus   LoanStatus      `db:"to_status" json:"to_status,omitempty"`
	Notes      string          `db:"notes" json:"notes,omitempty"`
	Metadata   json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// LoanProduct is the terms template a loan is created from.
type LoanProduct struct {
	ID                string          `db:"id" json:"id"`
	TenantID          string          `db:"tenant_id" json:"tenant_id"`
	Name              string          `db:"name" json:"name"`
	InterestRate      decimal.Decimal `db:"interest_rate" json:"interest_rate"`
	ProcessingFee     decimal.Decimal `db:"processing_fee" json:"processing_fee"`
	InsuranceFee      decimal.Decimal `db:"insurance_fee" json:"insurance_fee"`
	SavingsMultiplier decimal.Decimal `db:"savings_multiplier" json:"savings_multiplier"`
	MaxTermMonths     int             `db:"max_term_months" json:"max_term_months"`
	CreatedAt         time.Time       `db:"created_at" json:"-"`
}
