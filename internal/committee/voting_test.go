package committee

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"saccos-core/internal/models"
)

func vote(voterID string, choice models.VoteChoice) models.CommitteeVote {
	return models.CommitteeVote{
		ID:      voterID + "-vote",
		LoanID:  "loan-1",
		VoterID: voterID,
		Vote:    choice,
		CastAt:  time.Now(),
	}
}

func TestTally(t *testing.T) {
	t.Run("below quorum is not approved", func(t *testing.T) {
		votes := []models.CommitteeVote{
			vote("v1", models.VoteApprove),
			vote("v2", models.VoteApprove),
		}

		result := Tally(votes, 3)

		assert.False(t, result.QuorumMet)
		assert.False(t, result.Approved)
		assert.Equal(t, 2, result.TotalVotes)
	})

	t.Run("majority at quorum approves", func(t *testing.T) {
		votes := []models.CommitteeVote{
			vote("v1", models.VoteApprove),
			vote("v2", models.VoteApprove),
			vote("v3", models.VoteReject),
		}

		result := Tally(votes, 3)

		assert.True(t, result.QuorumMet)
		assert.True(t, result.Approved)
		assert.Equal(t, 2, result.ApproveVotes)
		assert.Equal(t, 1, result.RejectVotes)
	})

	t.Run("tie rejects", func(t *testing.T) {
		votes := []models.CommitteeVote{
			vote("v1", models.VoteApprove),
			vote("v2", models.VoteReject),
		}

		result := Tally(votes, 2)

		assert.True(t, result.QuorumMet)
		assert.False(t, result.Approved)
	})

	t.Run("majority reject rejects", func(t *testing.T) {
		votes := []models.CommitteeVote{
			vote("v1", models.VoteReject),
			vote("v2", models.VoteReject),
			vote("v3", models.VoteApprove),
		}

		result := Tally(votes, 3)

		assert.True(t, result.QuorumMet)
		assert.False(t, result.Approved)
	})
}

func TestUpsert(t *testing.T) {
	t.Run("appends a new voter", func(t *testing.T) {
		votes := []models.CommitteeVote{vote("v1", models.VoteApprove)}

		updated, replaced := Upsert(votes, vote("v2", models.VoteReject))

		assert.False(t, replaced)
		assert.Len(t, updated, 2)
	})

	t.Run("re-vote overwrites without double counting", func(t *testing.T) {
		votes := []models.CommitteeVote{
			vote("v1", models.VoteApprove),
			vote("v2", models.VoteApprove),
		}

		updated, replaced := Upsert(votes, vote("v1", models.VoteReject))

		assert.True(t, replaced)
		assert.Len(t, updated, 2)

		result := Tally(updated, 2)
		assert.Equal(t, 1, result.ApproveVotes)
		assert.Equal(t, 1, result.RejectVotes)
	})
}

func TestRenderMinutes(t *testing.T) {
	loan := &models.Loan{
		LoanNumber:      "LN-20250101-090000",
		PrincipalAmount: decimal.NewFromInt(10000),
		TermMonths:      12,
		InterestRate:    decimal.NewFromInt(12),
	}
	member := &models.Member{FullName: "Thabo Mokoena", MemberNumber: "M-0001"}
	product := &models.LoanProduct{Name: "Short Term Loan"}
	votes := []models.CommitteeVote{
		vote("v1", models.VoteApprove),
		vote("v2", models.VoteApprove),
		vote("v3", models.VoteReject),
	}
	now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	minutes := RenderMinutes(loan, member, product, votes, 3, now)

	assert.Equal(t, "APPROVED", minutes.Decision)
	assert.Equal(t, "Thabo Mokoena", minutes.MemberName)
	assert.Equal(t, 3, minutes.TotalVotes)
	assert.Len(t, minutes.Votes, 3)
	assert.Equal(t, now, minutes.GeneratedAt)
}
