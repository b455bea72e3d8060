package repositories

import (
	"database/sql"

	"saccos-core/internal/models"
)

type VoteRepository interface {
	// Upsert inserts the voter's ballot or overwrites their previous one.
	Upsert(tx *sql.Tx, vote *models.CommitteeVote) error
	ListByLoan(loanID string) ([]models.CommitteeVote, error)
}

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) Upsert(tx *sql.Tx, vote *models.CommitteeVote) error {
	query := `
		INSERT INTO committee_votes (id, loan_id, voter_id, vote, notes, cast_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE vote = VALUES(vote), notes = VALUES(notes), cast_at = VALUES(cast_at)
	`
	_, err := tx.Exec(query,
		vote.ID,
		vote.LoanID,
		vote.VoterID,
		vote.Vote,
		vote.Notes,
		vote.CastAt,
	)
	return err
}

func (r *voteRepository) ListByLoan(loanID string) ([]models.CommitteeVote, error) {
	query := `
		SELECT id, loan_id, voter_id, vote, notes, cast_at
		FROM committee_votes
		WHERE loan_id = ?
		ORDER BY cast_at ASC
	`
	rows, err := r.db.Query(query, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []models.CommitteeVote
	for rows.Next() {
		v := models.CommitteeVote{}
		err := rows.Scan(&v.ID, &v.LoanID, &v.VoterID, &v.Vote, &v.Notes, &v.CastAt)
		if err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}
