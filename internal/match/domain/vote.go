package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrEmptyVoterRef indicates a vote without a voter identity.
	ErrEmptyVoterRef = errors.New("vote voter reference is required")
	// ErrEmptyCompetitorID indicates a vote without a chosen competitor.
	ErrEmptyCompetitorID = errors.New("vote competitor id is required")
)

// Vote is one voter's current choice within a match. Votes are keyed by
// (VoterRef, MatchID): casting again replaces the previous choice.
type Vote struct {
	VoterRef     string
	MatchID      int64
	CompetitorID int64
	CastAt       time.Time
}

// NewVoteInput describes the data needed to cast a vote.
type NewVoteInput struct {
	VoterRef     string
	MatchID      int64
	CompetitorID int64
}

// NewVote creates a vote with a cast timestamp.
func NewVote(input NewVoteInput, now func() time.Time) (Vote, error) {
	if now == nil {
		now = time.Now
	}
	voterRef := strings.TrimSpace(input.VoterRef)
	if voterRef == "" {
		return Vote{}, ErrEmptyVoterRef
	}
	if input.MatchID == 0 {
		return Vote{}, ErrEmptyMatchID
	}
	if input.CompetitorID == 0 {
		return Vote{}, ErrEmptyCompetitorID
	}

	return Vote{
		VoterRef:     voterRef,
		MatchID:      input.MatchID,
		CompetitorID: input.CompetitorID,
		CastAt:       now().UTC(),
	}, nil
}
