package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MemberStatus constants.
type MemberStatus string

const (
	MemberActive     MemberStatus = "active"
	MemberSuspended  MemberStatus = "suspended"
	MemberTerminated MemberStatus = "terminated"
)

// EmploymentStatus constants. Only employed members appear in payroll
// deduction batches.
type EmploymentStatus string

const (
	EmploymentEmployed   EmploymentStatus = "employed"
	EmploymentRetired    EmploymentStatus = "retired"
	EmploymentUnemployed EmploymentStatus = "unemployed"
)

// Member is a cooperative member, scoped to a tenant.
type Member struct {
	ID               string           `db:"id" json:"id"`
	TenantID         string           `db:"tenant_id" json:"tenant_id"`
	MemberNumber     string           `db:"member_number" json:"member_number"`
	NationalID       string           `db:"national_id" json:"national_id"`
	EmployeeNumber   string           `db:"employee_number" json:"employee_number,omitempty"`
	FullName         string           `db:"full_name" json:"full_name"`
	Phone            string           `db:"phone" json:"phone,omitempty"`
	Status           MemberStatus     `db:"status" json:"status"`
	EmploymentStatus EmploymentStatus `db:"employment_status" json:"employment_status"`
	MonthlyNetSalary decimal.Decimal  `db:"monthly_net_salary" json:"monthly_net_salary"`
	JoinDate         time.Time        `db:"join_date" json:"join_date"`
	CreatedAt        time.Time        `db:"created_at" json:"-"`
	UpdatedAt        time.Time        `db:"updated_at" json:"-"`
}

// MemberSavings is one savings product subscription for a member.
type MemberSavings struct {
	ID                  string          `db:"id" json:"id"`
	MemberID            string          `db:"member_id" json:"member_id"`
	ProductName         string          `db:"product_name" json:"product_name"`
	MonthlyContribution decimal.Decimal `db:"monthly_contribution" json:"monthly_contribution"`
	CurrentBalance      decimal.Decimal `db:"current_balance" json:"current_balance"`
	IsActive            bool            `db:"is_active" json:"is_active"`
	CreatedAt           time.Time       `db:"created_at" json:"-"`
}

// PolicyStatus constants.
type PolicyStatus string

const (
	PolicyActive PolicyStatus = "active"
	PolicyLapsed PolicyStatus = "lapsed"
)

// InsurancePolicy contributes its monthly premium to the payroll deduction.
type InsurancePolicy struct {
	ID             string          `db:"id" json:"id"`
	MemberID       string          `db:"member_id" json:"member_id"`
	PolicyNumber   string          `db:"policy_number" json:"policy_number"`
	MonthlyPremium decimal.Decimal `db:"monthly_premium" json:"monthly_premium"`
	Status         PolicyStatus    `db:"status" json:"status"`
	CreatedAt      time.Time       `db:"created_at" json:"-"`
}
