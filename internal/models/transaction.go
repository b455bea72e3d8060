package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType constants.
type TransactionType string

const (
	TransactionLoanDisbursement TransactionType = "loan_disbursement"
	TransactionDeduction        TransactionType = "deduction"
)

// TransactionStatus constants.
type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "completed"
	TransactionReversed  TransactionStatus = "reversed"
)

// Transaction is a financial movement record. Disbursement transactions are
// linked back to their loan through ReferenceID/ReferenceType.
type Transaction struct {
	ID                string            `db:"id" json:"id"`
	TenantID          string            `db:"tenant_id" json:"tenant_id"`
	MemberID          string            `db:"member_id" json:"member_id"`
	TransactionNumber string            `db:"transaction_number" json:"transaction_number"`
	TransactionType   TransactionType   `db:"transaction_type" json:"transaction_type"`
	Amount            decimal.Decimal   `db:"amount" json:"amount"`
	TransactionDate   time.Time         `db:"transaction_date" json:"transaction_date"`
	Description       string            `db:"description" json:"description"`
	Status            TransactionStatus `db:"status" json:"status"`
	ReferenceID       string            `db:"reference_id" json:"reference_id,omitempty"`
	ReferenceType     string            `db:"reference_type" json:"reference_type,omitempty"`
	CreatedBy         string            `db:"created_by" json:"created_by"`
	CreatedAt         time.Time         `db:"created_at" json:"-"`
}
