package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// DeductionRequestStatus constants.
type DeductionRequestStatus string

const (
	DeductionDraft     DeductionRequestStatus = "draft"
	DeductionSubmitted DeductionRequestStatus = "submitted"
	DeductionCompleted DeductionRequestStatus = "completed"
	DeductionFailed    DeductionRequestStatus = "failed"
)

// DeductionRequest is the monthly expected-deduction batch submitted to the
// payroll authority.
type DeductionRequest struct {
	ID           string                 `db:"id" json:"id"`
	TenantID     string                 `db:"tenant_id" json:"tenant_id"`
	BatchNumber  string                 `db:"batch_number" json:"batch_number"`
	Month        int                    `db:"month" json:"month"`
	Year         int                    `db:"year" json:"year"`
	TotalMembers int                    `db:"total_members" json:"total_members"`
	TotalAmount  decimal.Decimal        `db:"total_amount" json:"total_amount"`
	Status       DeductionRequestStatus `db:"status" json:"status"`
	SubmittedBy  sql.NullString         `db:"submitted_by" json:"submitted_by,omitempty"`
	SubmittedAt  sql.NullTime           `db:"submitted_at" json:"submitted_at,omitempty"`
	CreatedAt    time.Time              `db:"created_at" json:"-"`
	UpdatedAt    time.Time              `db:"updated_at" json:"-"`
}

// DeductionItem is one member's expected deduction within a request, with
// its per-product breakdown.
type DeductionItem struct {
	ID               string          `db:"id" json:"id"`
	RequestID        string          `db:"request_id" json:"request_id"`
	MemberID         string          `db:"member_id" json:"member_id"`
	MemberNumber     string          `db:"member_number" json:"member_number"`
	NationalID       string          `db:"national_id" json:"national_id"`
	EmployeeNumber   string          `db:"employee_number" json:"employee_number,omitempty"`
	FullName         string          `db:"full_name" json:"full_name"`
	Savings          decimal.Decimal `db:"savings" json:"savings"`
	LoanInstallment  decimal.Decimal `db:"loan_installment" json:"loan_installment"`
	InsurancePremium decimal.Decimal `db:"insurance_premium" json:"insurance_premium"`
	CurrentAmount    decimal.Decimal `db:"current_amount" json:"current_amount"`
	PreviousAmount   decimal.Decimal `db:"previous_amount" json:"previous_amount"`
	IsOverLimit      bool            `db:"is_over_limit" json:"is_over_limit"`
	LimitNotes       string          `db:"limit_notes" json:"limit_notes,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"-"`
}
