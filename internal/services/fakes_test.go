package services

import (
	"database/sql"

	"github.com/shopspring/decimal"

	"saccos-core/internal/apperrors"
	"saccos-core/internal/models"
	"saccos-core/internal/notify"
)

// In-memory repository fakes. The *sql.Tx handles come from sqlmock so the
// Begin/Commit/Rollback protocol is still asserted; the fakes only hold
// state.

type fakeLoanRepo struct {
	loans map[string]*models.Loan
	logs  []models.LoanWorkflowLog
}

func newFakeLoanRepo() *fakeLoanRepo {
	return &fakeLoanRepo{loans: make(map[string]*models.Loan)}
}

func (r *fakeLoanRepo) Create(_ *sql.Tx, loan *models.Loan) error {
	cp := *loan
	r.loans[loan.ID] = &cp
	return nil
}

func (r *fakeLoanRepo) get(id, tenantID string) (*models.Loan, error) {
	loan, ok := r.loans[id]
	if !ok || loan.TenantID != tenantID {
		return nil, apperrors.NotFound("loan")
	}
	cp := *loan
	return &cp, nil
}

func (r *fakeLoanRepo) GetByID(id, tenantID string) (*models.Loan, error) {
	return r.get(id, tenantID)
}

func (r *fakeLoanRepo) GetByIDForUpdate(_ *sql.Tx, id, tenantID string) (*models.Loan, error) {
	return r.get(id, tenantID)
}

func (r *fakeLoanRepo) Update(_ *sql.Tx, loan *models.Loan) error {
	if _, ok := r.loans[loan.ID]; !ok {
		return apperrors.NotFound("loan")
	}
	cp := *loan
	r.loans[loan.ID] = &cp
	return nil
}

func (r *fakeLoanRepo) ListActiveByMember(memberID, tenantID string) ([]models.Loan, error) {
	var out []models.Loan
	for _, l := range r.loans {
		if l.MemberID == memberID && l.TenantID == tenantID &&
			(l.Status == models.LoanStatusActive || l.Status == models.LoanStatusDisbursed) {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeLoanRepo) ListByTenant(tenantID string) ([]models.Loan, error) {
	var out []models.Loan
	for _, l := range r.loans {
		if l.TenantID == tenantID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeLoanRepo) AppendWorkflowLog(_ *sql.Tx, entry *models.LoanWorkflowLog) error {
	entry.ID = int64(len(r.logs) + 1)
	r.logs = append(r.logs, *entry)
	return nil
}

func (r *fakeLoanRepo) ListWorkflowLogs(loanID string) ([]models.LoanWorkflowLog, error) {
	var out []models.LoanWorkflowLog
	for _, e := range r.logs {
		if e.LoanID == loanID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeMemberRepo struct {
	members  map[string]*models.Member
	savings  map[string][]models.MemberSavings
	policies map[string][]models.InsurancePolicy
	totals   map[string]decimal.Decimal
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{
		members:  make(map[string]*models.Member),
		savings:  make(map[string][]models.MemberSavings),
		policies: make(map[string][]models.InsurancePolicy),
		totals:   make(map[string]decimal.Decimal),
	}
}

func (r *fakeMemberRepo) GetByID(id, tenantID string) (*models.Member, error) {
	m, ok := r.members[id]
	if !ok || m.TenantID != tenantID {
		return nil, apperrors.NotFound("member")
	}
	return m, nil
}

func (r *fakeMemberRepo) GetByMemberNumber(memberNumber, tenantID string) (*models.Member, error) {
	for _, m := range r.members {
		if m.MemberNumber == memberNumber && m.TenantID == tenantID {
			return m, nil
		}
	}
	return nil, apperrors.NotFound("member")
}

func (r *fakeMemberRepo) ListActiveEmployed(tenantID string) ([]models.Member, error) {
	var out []models.Member
	for _, m := range r.members {
		if m.TenantID == tenantID && m.Status == models.MemberActive &&
			m.EmploymentStatus == models.EmploymentEmployed {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMemberRepo) TotalSavings(memberID string) (decimal.Decimal, error) {
	return r.totals[memberID], nil
}

func (r *fakeMemberRepo) ListActiveSavings(memberID string) ([]models.MemberSavings, error) {
	return r.savings[memberID], nil
}

func (r *fakeMemberRepo) ListActivePolicies(memberID string) ([]models.InsurancePolicy, error) {
	return r.policies[memberID], nil
}

type fakeProductRepo struct {
	products map[string]*models.LoanProduct
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]*models.LoanProduct)}
}

func (r *fakeProductRepo) GetByID(id, tenantID string) (*models.LoanProduct, error) {
	p, ok := r.products[id]
	if !ok || p.TenantID != tenantID {
		return nil, apperrors.NotFound("loan product")
	}
	return p, nil
}

type fakeGuarantorRepo struct {
	pledges map[string]*models.LoanGuarantor
}

func newFakeGuarantorRepo() *fakeGuarantorRepo {
	return &fakeGuarantorRepo{pledges: make(map[string]*models.LoanGuarantor)}
}

func (r *fakeGuarantorRepo) Create(_ *sql.Tx, g *models.LoanGuarantor) error {
	cp := *g
	r.pledges[g.ID] = &cp
	return nil
}

func (r *fakeGuarantorRepo) GetByID(id string) (*models.LoanGuarantor, error) {
	g, ok := r.pledges[id]
	if !ok {
		return nil, apperrors.NotFound("guarantor pledge")
	}
	cp := *g
	return &cp, nil
}

func (r *fakeGuarantorRepo) Update(_ *sql.Tx, g *models.LoanGuarantor) error {
	if _, ok := r.pledges[g.ID]; !ok {
		return apperrors.NotFound("guarantor pledge")
	}
	cp := *g
	r.pledges[g.ID] = &cp
	return nil
}

func (r *fakeGuarantorRepo) ListByLoan(loanID string) ([]models.LoanGuarantor, error) {
	var out []models.LoanGuarantor
	for _, g := range r.pledges {
		if g.LoanID == loanID {
			out = append(out, *g)
		}
	}
	return out, nil
}

type fakeVoteRepo struct {
	votes map[string]map[string]models.CommitteeVote
}

func newFakeVoteRepo() *fakeVoteRepo {
	return &fakeVoteRepo{votes: make(map[string]map[string]models.CommitteeVote)}
}

func (r *fakeVoteRepo) Upsert(_ *sql.Tx, vote *models.CommitteeVote) error {
	if r.votes[vote.LoanID] == nil {
		r.votes[vote.LoanID] = make(map[string]models.CommitteeVote)
	}
	r.votes[vote.LoanID][vote.VoterID] = *vote
	return nil
}

func (r *fakeVoteRepo) ListByLoan(loanID string) ([]models.CommitteeVote, error) {
	var out []models.CommitteeVote
	for _, v := range r.votes[loanID] {
		out = append(out, v)
	}
	return out, nil
}

type fakeTransactionRepo struct {
	transactions []models.Transaction
}

func (r *fakeTransactionRepo) Create(_ *sql.Tx, t *models.Transaction) error {
	r.transactions = append(r.transactions, *t)
	return nil
}

func (r *fakeTransactionRepo) ListByReference(referenceID, referenceType string) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, t := range r.transactions {
		if t.ReferenceID == referenceID && t.ReferenceType == referenceType {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeDeductionRepo struct {
	requests map[string]*models.DeductionRequest
	items    map[string][]models.DeductionItem
}

func newFakeDeductionRepo() *fakeDeductionRepo {
	return &fakeDeductionRepo{
		requests: make(map[string]*models.DeductionRequest),
		items:    make(map[string][]models.DeductionItem),
	}
}

func (r *fakeDeductionRepo) CreateRequest(_ *sql.Tx, req *models.DeductionRequest) error {
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *fakeDeductionRepo) CreateItem(_ *sql.Tx, item *models.DeductionItem) error {
	r.items[item.RequestID] = append(r.items[item.RequestID], *item)
	return nil
}

func (r *fakeDeductionRepo) GetRequest(id, tenantID string) (*models.DeductionRequest, error) {
	req, ok := r.requests[id]
	if !ok || req.TenantID != tenantID {
		return nil, apperrors.NotFound("deduction request")
	}
	cp := *req
	return &cp, nil
}

func (r *fakeDeductionRepo) GetSubmittedForPeriod(tenantID string, month, year int) (*models.DeductionRequest, error) {
	for _, req := range r.requests {
		if req.TenantID == tenantID && req.Month == month && req.Year == year &&
			req.Status == models.DeductionSubmitted {
			cp := *req
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("deduction request")
}

func (r *fakeDeductionRepo) ExistsForPeriod(tenantID string, month, year int) (bool, error) {
	for _, req := range r.requests {
		if req.TenantID == tenantID && req.Month == month && req.Year == year &&
			(req.Status == models.DeductionDraft || req.Status == models.DeductionSubmitted) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeDeductionRepo) UpdateRequestStatus(_ *sql.Tx, req *models.DeductionRequest) error {
	if _, ok := r.requests[req.ID]; !ok {
		return apperrors.NotFound("deduction request")
	}
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *fakeDeductionRepo) ListItems(requestID string) ([]models.DeductionItem, error) {
	return r.items[requestID], nil
}

func (r *fakeDeductionRepo) PreviousAmounts(tenantID string, month, year int) (map[string]string, error) {
	return map[string]string{}, nil
}

type fakeReconciliationRepo struct {
	batches  map[string]*models.ReconciliationBatch
	items    map[string][]models.ReconciliationItem
	suspense map[string][]models.SuspenseEntry
}

func newFakeReconciliationRepo() *fakeReconciliationRepo {
	return &fakeReconciliationRepo{
		batches:  make(map[string]*models.ReconciliationBatch),
		items:    make(map[string][]models.ReconciliationItem),
		suspense: make(map[string][]models.SuspenseEntry),
	}
}

func (r *fakeReconciliationRepo) CreateBatch(_ *sql.Tx, batch *models.ReconciliationBatch) error {
	cp := *batch
	r.batches[batch.ID] = &cp
	return nil
}

func (r *fakeReconciliationRepo) CreateItem(_ *sql.Tx, item *models.ReconciliationItem) error {
	r.items[item.BatchID] = append(r.items[item.BatchID], *item)
	return nil
}

func (r *fakeReconciliationRepo) CreateSuspenseEntry(_ *sql.Tx, entry *models.SuspenseEntry) error {
	r.suspense[entry.BatchID] = append(r.suspense[entry.BatchID], *entry)
	return nil
}

func (r *fakeReconciliationRepo) UpdateBatchTotals(_ *sql.Tx, batch *models.ReconciliationBatch) error {
	if _, ok := r.batches[batch.ID]; !ok {
		return apperrors.NotFound("reconciliation batch")
	}
	cp := *batch
	r.batches[batch.ID] = &cp
	return nil
}

func (r *fakeReconciliationRepo) GetBatch(id, tenantID string) (*models.ReconciliationBatch, error) {
	batch, ok := r.batches[id]
	if !ok || batch.TenantID != tenantID {
		return nil, apperrors.NotFound("reconciliation batch")
	}
	cp := *batch
	return &cp, nil
}

func (r *fakeReconciliationRepo) ListItems(batchID string) ([]models.ReconciliationItem, error) {
	return r.items[batchID], nil
}

func (r *fakeReconciliationRepo) ListSuspenseEntries(batchID string) ([]models.SuspenseEntry, error) {
	return r.suspense[batchID], nil
}

type fakeNotifier struct {
	messages []notify.Message
}

func (n *fakeNotifier) Notify(msg notify.Message) {
	n.messages = append(n.messages, msg)
}
