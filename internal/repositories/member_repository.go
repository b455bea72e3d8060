package repositories

import (
	"database/sql"

	"github.com/shopspring/decimal"

	"saccos-core/internal/apperrors"
	"saccos-core/internal/models"
)

type MemberRepository interface {
	GetByID(id, tenantID string) (*models.Member, error)
	GetByMemberNumber(memberNumber, tenantID string) (*models.Member, error)
	ListActiveEmployed(tenantID string) ([]models.Member, error)
	TotalSavings(memberID string) (decimal.Decimal, error)
	ListActiveSavings(memberID string) ([]models.MemberSavings, error)
	ListActivePolicies(memberID string) ([]models.InsurancePolicy, error)
}

type memberRepository struct {
	db *sql.DB
}

func NewMemberRepository(db *sql.DB) MemberRepository {
	return &memberRepository{db: db}
}

const memberColumns = `
	id, tenant_id, member_number, national_id, employee_number, full_name,
	phone, status, employment_status, monthly_net_salary, join_date,
	created_at, updated_at
`

func scanMember(row *sql.Row) (*models.Member, error) {
	m := &models.Member{}
	err := row.Scan(
		&m.ID,
		&m.TenantID,
		&m.MemberNumber,
		&m.NationalID,
		&m.EmployeeNumber,
		&m.FullName,
		&m.Phone,
		&m.Status,
		&m.EmploymentStatus,
		&m.MonthlyNetSalary,
		&m.JoinDate,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("member")
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *memberRepository) GetByID(id, tenantID string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = ? AND tenant_id = ?`
	return scanMember(r.db.QueryRow(query, id, tenantID))
}

func (r *memberRepository) GetByMemberNumber(memberNumber, tenantID string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE member_number = ? AND tenant_id = ?`
	return scanMember(r.db.QueryRow(query, memberNumber, tenantID))
}

func (r *memberRepository) ListActiveEmployed(tenantID string) ([]models.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM members
		WHERE tenant_id = ? AND status = ? AND employment_status = ?
		ORDER BY member_number ASC
	`
	rows, err := r.db.Query(query, tenantID, models.MemberActive, models.EmploymentEmployed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		m := models.Member{}
		err := rows.Scan(
			&m.ID,
			&m.TenantID,
			&m.MemberNumber,
			&m.NationalID,
			&m.EmployeeNumber,
			&m.FullName,
			&m.Phone,
			&m.Status,
			&m.EmploymentStatus,
			&m.MonthlyNetSalary,
			&m.JoinDate,
			&m.CreatedAt,
			&m.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *memberRepository) TotalSavings(memberID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(current_balance), 0)
		FROM member_savings
		WHERE member_id = ? AND is_active = 1
	`
	var total decimal.Decimal
	if err := r.db.QueryRow(query, memberID).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (r *memberRepository) ListActiveSavings(memberID string) ([]models.MemberSavings, error) {
	query := `
		SELECT id, member_id, product_name, monthly_contribution,
		       current_balance, is_active, created_at
		FROM member_savings
		WHERE member_id = ? AND is_active = 1
	`
	rows, err := r.db.Query(query, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var savings []models.MemberSavings
	for rows.Next() {
		s := models.MemberSavings{}
		err := rows.Scan(
			&s.ID,
			&s.MemberID,
			&s.ProductName,
			&s.MonthlyContribution,
			&s.CurrentBalance,
			&s.IsActive,
			&s.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		savings = append(savings, s)
	}
	return savings, rows.Err()
}

func (r *memberRepository) ListActivePolicies(memberID string) ([]models.InsurancePolicy, error) {
	query := `
		SELECT id, member_id, policy_number, monthly_premium, status, created_at
		FROM insurance_policies
		WHERE member_id = ? AND status = ?
	`
	rows, err := r.db.Query(query, memberID, models.PolicyActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []models.InsurancePolicy
	for rows.Next() {
		p := models.InsurancePolicy{}
		err := rows.Scan(
			&p.ID,
			&p.MemberID,
			&p.PolicyNumber,
			&p.MonthlyPremium,
			&p.Status,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}
