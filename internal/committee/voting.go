// Package committee implements the credit committee's vote tally, quorum
// decision, and minutes rendering. All functions are pure over the
// normalized vote rows; persistence is the workflow service's concern.
package committee

import (
	"time"

	"saccos-core/internal/models"
)

// VoteResult is the aggregate computed on read from the vote rows.
type VoteResult struct {
	Approved       bool `json:"approved"`
	TotalVotes     int  `json:"total_votes"`
	ApproveVotes   int  `json:"approve_votes"`
	RejectVotes    int  `json:"reject_votes"`
	QuorumMet      bool `json:"quorum_met"`
	RequiredQuorum int  `json:"required_quorum"`
}

// Tally counts the votes against the required quorum. A tie at quorum is a
// rejection: approval requires strictly more approve than reject votes.
func Tally(votes []models.CommitteeVote, requiredQuorum int) VoteResult {
	var approve, reject int
	for _, v := range votes {
		if v.Vote == models.VoteApprove {
			approve++
		} else {
			reject++
		}
	}

	quorumMet := len(votes) >= requiredQuorum

	return VoteResult{
		Approved:       quorumMet && approve > reject,
		TotalVotes:     len(votes),
		ApproveVotes:   approve,
		RejectVotes:    reject,
		QuorumMet:      quorumMet,
		RequiredQuorum: requiredQuorum,
	}
}

// Upsert replaces an existing vote by the same voter, or appends a new one.
// It returns the updated slice and whether the voter had voted before.
func Upsert(votes []models.CommitteeVote, vote models.CommitteeVote) ([]models.CommitteeVote, bool) {
	for i, v := range votes {
		if v.VoterID == vote.VoterID {
			votes[i] = vote
			return votes, true
		}
	}
	return append(votes, vote), false
}

// MinuteVote is one ballot as it appears in the minutes.
type MinuteVote struct {
	VoterID   string    `json:"voter_id"`
	Vote      string    `json:"vote"`
	Notes     string    `json:"notes,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Minutes is the structured committee-meeting record for one loan.
type Minutes struct {
	LoanNumber   string       `json:"loan_number"`
	MemberName   string       `json:"member_name"`
	MemberNumber string       `json:"member_number"`
	Product      string       `json:"product"`
	Principal    string       `json:"principal_amount"`
	TermMonths   int          `json:"term_months"`
	InterestRate string       `json:"interest_rate"`
	MeetingDate  time.Time    `json:"meeting_date"`
	TotalVotes   int          `json:"total_votes"`
	ApproveVotes int          `json:"approve_votes"`
	RejectVotes  int          `json:"reject_votes"`
	QuorumMet    bool         `json:"quorum_met"`
	Decision     string       `json:"decision"`
	Votes        []MinuteVote `json:"votes"`
	GeneratedAt  time.Time    `json:"generated_at"`
}

// RenderMinutes produces the minutes document. Read-only: no state changes.
func RenderMinutes(loan *models.Loan, member *models.Member, product *models.LoanProduct, votes []models.CommitteeVote, requiredQuorum int, now time.Time) Minutes {
	result := Tally(votes, requiredQuorum)

	decision := "REJECTED"
	if result.Approved {
		decision = "APPROVED"
	}

	meetingDate := now
	if loan.CommitteeApprovalDate.Valid {
		meetingDate = loan.CommitteeApprovalDate.Time
	}

	minuteVotes := make([]MinuteVote, 0, len(votes))
	for _, v := range votes {
		minuteVotes = append(minuteVotes, MinuteVote{
			VoterID:   v.VoterID,
			Vote:      string(v.Vote),
			Notes:     v.Notes,
			Timestamp: v.CastAt,
		})
	}

	return Minutes{
		LoanNumber:   loan.LoanNumber,
		MemberName:   member.FullName,
		MemberNumber: member.MemberNumber,
		Product:      product.Name,
		Principal:    loan.PrincipalAmount.StringFixed(2),
		TermMonths:   loan.TermMonths,
		InterestRate: loan.InterestRate.StringFixed(2),
		MeetingDate:  meetingDate,
		TotalVotes:   result.TotalVotes,
		ApproveVotes: result.ApproveVotes,
		RejectVotes:  result.RejectVotes,
		QuorumMet:    result.QuorumMet,
		Decision:     decision,
		Votes:        minuteVotes,
		GeneratedAt:  now,
	}
}
