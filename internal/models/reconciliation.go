package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationStatus constants. A COMPLETED batch is frozen.
type ReconciliationStatus string

const (
	ReconciliationPending    ReconciliationStatus = "pending"
	ReconciliationInProgress ReconciliationStatus = "in_progress"
	ReconciliationCompleted  ReconciliationStatus = "completed"
)

// MatchStatus constants for reconciliation items.
type MatchStatus string

const (
	StatusMatched      MatchStatus = "matched"
	StatusVariance     MatchStatus = "variance"
	StatusMissingInMoF MatchStatus = "missing_in_mof"
	StatusOrphanInMoF  MatchStatus = "orphan_in_mof"
)

// VarianceReason constants.
type VarianceReason string

const (
	ReasonInsufficientFunds VarianceReason = "insufficient_funds"
	ReasonNetPayTooLow      VarianceReason = "net_pay_too_low"
	ReasonAmountMismatch    VarianceReason = "amount_mismatch"
)

// ReconciliationBatch summarizes one expected-vs-actual matching run.
// Summary fields are derived from the items and frozen once the batch
// reaches COMPLETED.
type ReconciliationBatch struct {
	ID                 string               `db:"id" json:"id"`
	TenantID           string               `db:"tenant_id" json:"tenant_id"`
	BatchNumber        string               `db:"batch_number" json:"batch_number"`
	Month              int                  `db:"month" json:"month"`
	Year               int                  `db:"year" json:"year"`
	DeductionRequestID sql.NullString       `db:"deduction_request_id" json:"deduction_request_id,omitempty"`
	TotalRecords       int                  `db:"total_records" json:"total_records"`
	MatchedRecords     int                  `db:"matched_records" json:"matched_records"`
	VarianceRecords    int                  `db:"variance_records" json:"variance_records"`
	UnmatchedRecords   int                  `db:"unmatched_records" json:"unmatched_records"`
	TotalExpected      decimal.Decimal      `db:"total_expected" json:"total_expected"`
	TotalActual        decimal.Decimal      `db:"total_actual" json:"total_actual"`
	TotalVariance      decimal.Decimal      `db:"total_variance" json:"total_variance"`
	Status             ReconciliationStatus `db:"status" json:"status"`
	ProcessedBy        string               `db:"processed_by" json:"processed_by"`
	ProcessedAt        sql.NullTime         `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt          time.Time            `db:"created_at" json:"-"`
	UpdatedAt          time.Time            `db:"updated_at" json:"-"`
}

// ReconciliationItem is one member-period comparison within a batch.
// MemberID is empty when the member number could not be resolved.
type ReconciliationItem struct {
	ID                   string          `db:"id" json:"id"`
	BatchID              string          `db:"batch_id" json:"batch_id"`
	MemberID             sql.NullString  `db:"member_id" json:"member_id,omitempty"`
	MemberNumber         string          `db:"member_number" json:"member_number"`
	NationalID           string          `db:"national_id" json:"national_id,omitempty"`
	ExpectedAmount       decimal.Decimal `db:"expected_amount" json:"expected_amount"`
	ActualAmount         decimal.Decimal `db:"actual_amount" json:"actual_amount"`
	Variance             decimal.Decimal `db:"variance" json:"variance"`
	MatchStatus          MatchStatus     `db:"match_status" json:"match_status"`
	VarianceReason       VarianceReason  `db:"variance_reason" json:"variance_reason,omitempty"`
	Notes                string          `db:"notes" json:"notes,omitempty"`
	RequiresManualReview bool            `db:"requires_manual_review" json:"requires_manual_review"`
	CreatedAt            time.Time       `db:"created_at" json:"-"`
}

// SuspenseStatus constants.
type SuspenseStatus string

const (
	SuspensePending   SuspenseStatus = "pending"
	SuspenseAllocated SuspenseStatus = "allocated"
	SuspenseRefunded  SuspenseStatus = "refunded"
)

// SuspenseEntry holds an orphan deduction (present in the payroll file,
// absent from the expected batch) until it is manually allocated.
type SuspenseEntry struct {
	ID              string          `db:"id" json:"id"`
	TenantID        string          `db:"tenant_id" json:"tenant_id"`
	ReferenceNumber string          `db:"reference_number" json:"reference_number"`
	BatchID         string          `db:"batch_id" json:"batch_id"`
	MemberNumber    string          `db:"member_number" json:"member_number"`
	NationalID      string          `db:"national_id" json:"national_id,omitempty"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	Month           int             `db:"month" json:"month"`
	Year            int             `db:"year" json:"year"`
	Status          SuspenseStatus  `db:"status" json:"status"`
	Reason          string          `db:"reason" json:"reason"`
	CreatedAt       time.Time       `db:"created_at" json:"-"`
}
