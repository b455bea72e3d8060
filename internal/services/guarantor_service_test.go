package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"saccos-core/internal/apperrors"
	"saccos-core/internal/auth"
	"saccos-core/internal/models"
	"saccos-core/internal/notify"
)

type guarantorFixture struct {
	svc           *GuarantorService
	mock          sqlmock.Sqlmock
	loanRepo      *fakeLoanRepo
	guarantorRepo *fakeGuarantorRepo
	notifier      *fakeNotifier
}

func newGuarantorFixture(t *testing.T) *guarantorFixture {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &guarantorFixture{
		mock:          mock,
		loanRepo:      newFakeLoanRepo(),
		guarantorRepo: newFakeGuarantorRepo(),
		notifier:      &fakeNotifier{},
	}
	f.svc = NewGuarantorService(db, f.loanRepo, f.guarantorRepo, f.notifier, zap.NewNop())
	return f
}

func (f *guarantorFixture) seed(pledgeStatus models.GuarantorStatus) {
	f.loanRepo.loans["loan-1"] = &models.Loan{
		ID:         "loan-1",
		TenantID:   testTenant,
		LoanNumber: "LN-loan-1",
		MemberID:   "member-1",
		Status:     models.LoanStatusPendingGuarantors,
	}
	f.guarantorRepo.pledges["g-1"] = &models.LoanGuarantor{
		ID:                "g-1",
		LoanID:            "loan-1",
		GuarantorMemberID: "member-2",
		Status:            pledgeStatus,
	}
}

func TestRespondToPledge(t *testing.T) {
	guarantorActor := auth.Actor{ID: "member-2", TenantID: testTenant, Role: auth.RoleMember}

	t.Run("accept stamps the pledge", func(t *testing.T) {
		f := newGuarantorFixture(t)
		f.seed(models.GuarantorPending)
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		pledge, err := f.svc.RespondToPledge(guarantorActor, "g-1", true, "")
		require.NoError(t, err)

		assert.Equal(t, models.GuarantorAccepted, pledge.Status)
		assert.True(t, pledge.AcceptedAt.Valid)
		require.Len(t, f.notifier.messages, 1)
		assert.Equal(t, notify.EventGuarantorAccepted, f.notifier.messages[0].Event)
	})

	t.Run("reject requires a reason", func(t *testing.T) {
		f := newGuarantorFixture(t)
		f.seed(models.GuarantorPending)

		_, err := f.svc.RespondToPledge(guarantorActor, "g-1", false, "")
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("reject stores the reason", func(t *testing.T) {
		f := newGuarantorFixture(t)
		f.seed(models.GuarantorPending)
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		pledge, err := f.svc.RespondToPledge(guarantorActor, "g-1", false, "Overcommitted this year")
		require.NoError(t, err)

		assert.Equal(t, models.GuarantorRejected, pledge.Status)
		assert.True(t, pledge.RejectedAt.Valid)
		assert.Equal(t, "Overcommitted this year", pledge.RejectionReason)
	})

	t.Run("only the named guarantor may respond", func(t *testing.T) {
		f := newGuarantorFixture(t)
		f.seed(models.GuarantorPending)
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		impostor := auth.Actor{ID: "member-9", TenantID: testTenant, Role: auth.RoleMember}
		_, err := f.svc.RespondToPledge(impostor, "g-1", true, "")
		assert.True(t, apperrors.IsAuthorization(err))
	})

	t.Run("answered pledge is terminal", func(t *testing.T) {
		f := newGuarantorFixture(t)
		f.seed(models.GuarantorAccepted)
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		_, err := f.svc.RespondToPledge(guarantorActor, "g-1", false, "changed my mind")
		assert.True(t, apperrors.IsStateConflict(err))
	})
}
