// Package tally aggregates the votes of a match per competitor.
package tally

import (
	"errors"
	"fmt"
	"sort"

	"github.com/louisbranch/matchpoint/internal/match/domain"
)

// ErrOrphanVote indicates a stored vote referencing a competitor that does
// not belong to the match. This is data corruption, not user error.
var ErrOrphanVote = errors.New("vote references unknown competitor")

// Entry is the vote breakdown for one competitor. Competitors with no votes
// still appear with an empty Votes slice.
type Entry struct {
	Competitor domain.Competitor
	Votes      []domain.Vote
}

// Count returns the number of votes for the entry.
func (e Entry) Count() int {
	return len(e.Votes)
}

// Aggregate groups votes by competitor in a single pass. Entries are ordered
// by competitor creation (id order); votes within an entry by cast time, then
// voter for a stable result. Aggregation is deterministic given its inputs.
func Aggregate(competitors []domain.Competitor, votes []domain.Vote) ([]Entry, error) {
	ordered := make([]domain.Competitor, len(competitors))
	copy(ordered, competitors)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ID < ordered[j].ID
	})

	byCompetitor := make(map[int64]int, len(ordered))
	entries := make([]Entry, len(ordered))
	for i, competitor := range ordered {
		entries[i] = Entry{Competitor: competitor, Votes: []domain.Vote{}}
		byCompetitor[competitor.ID] = i
	}

	for _, vote := range votes {
		i, ok := byCompetitor[vote.CompetitorID]
		if !ok {
			return nil, fmt.Errorf("%w: competitor %d in match %d", ErrOrphanVote, vote.CompetitorID, vote.MatchID)
		}
		entries[i].Votes = append(entries[i].Votes, vote)
	}

	for i := range entries {
		sort.Slice(entries[i].Votes, func(a, b int) bool {
			va, vb := entries[i].Votes[a], entries[i].Votes[b]
			if !va.CastAt.Equal(vb.CastAt) {
				return va.CastAt.Before(vb.CastAt)
			}
			return va.VoterRef < vb.VoterRef
		})
	}

	return entries, nil
}
