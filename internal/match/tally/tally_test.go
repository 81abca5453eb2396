package tally

import (
	"errors"
	"testing"
	"time"

	"github.com/louisbranch/matchpoint/internal/match/domain"
)

func TestAggregateGroupsVotesPerCompetitor(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	competitors := []domain.Competitor{
		{ID: 20, MatchID: 1, UserRef: "u2", CreatedAt: base.Add(time.Minute)},
		{ID: 10, MatchID: 1, UserRef: "u1", CreatedAt: base},
	}
	votes := []domain.Vote{
		{VoterRef: "v1", MatchID: 1, CompetitorID: 10, CastAt: base.Add(3 * time.Minute)},
		{VoterRef: "v2", MatchID: 1, CompetitorID: 10, CastAt: base.Add(2 * time.Minute)},
		{VoterRef: "v3", MatchID: 1, CompetitorID: 20, CastAt: base.Add(4 * time.Minute)},
	}

	entries, err := Aggregate(competitors, votes)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Competitor.ID != 10 || entries[1].Competitor.ID != 20 {
		t.Fatalf("entries out of order: %d, %d", entries[0].Competitor.ID, entries[1].Competitor.ID)
	}
	if entries[0].Count() != 2 || entries[1].Count() != 1 {
		t.Fatalf("counts = %d, %d", entries[0].Count(), entries[1].Count())
	}
	// Votes ordered by cast time.
	if entries[0].Votes[0].VoterRef != "v2" || entries[0].Votes[1].VoterRef != "v1" {
		t.Fatalf("vote order = %q, %q", entries[0].Votes[0].VoterRef, entries[0].Votes[1].VoterRef)
	}
}

func TestAggregateKeepsZeroVoteCompetitors(t *testing.T) {
	t.Parallel()

	competitors := []domain.Competitor{
		{ID: 10, MatchID: 1, UserRef: "u1"},
		{ID: 20, MatchID: 1, UserRef: "u2"},
	}
	votes := []domain.Vote{
		{VoterRef: "v1", MatchID: 1, CompetitorID: 20},
	}

	entries, err := Aggregate(competitors, votes)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if entries[0].Count() != 0 {
		t.Fatalf("count = %d, want 0", entries[0].Count())
	}
	if entries[0].Votes == nil {
		t.Fatal("zero-vote entry should carry an empty slice, not nil")
	}
}

func TestAggregateEmptyMatch(t *testing.T) {
	t.Parallel()

	entries, err := Aggregate(nil, nil)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries = %d, want 0", len(entries))
	}
}

func TestAggregateRejectsOrphanVotes(t *testing.T) {
	t.Parallel()

	competitors := []domain.Competitor{{ID: 10, MatchID: 1, UserRef: "u1"}}
	votes := []domain.Vote{{VoterRef: "v1", MatchID: 1, CompetitorID: 999}}

	if _, err := Aggregate(competitors, votes); !errors.Is(err, ErrOrphanVote) {
		t.Fatalf("err = %v, want %v", err, ErrOrphanVote)
	}
}

func TestAggregateIsDeterministic(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	competitors := []domain.Competitor{
		{ID: 10, MatchID: 1, UserRef: "u1"},
		{ID: 20, MatchID: 1, UserRef: "u2"},
	}
	votes := []domain.Vote{
		{VoterRef: "v2", MatchID: 1, CompetitorID: 10, CastAt: base},
		{VoterRef: "v1", MatchID: 1, CompetitorID: 10, CastAt: base},
	}

	first, err := Aggregate(competitors, votes)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	second, err := Aggregate([]domain.Competitor{competitors[1], competitors[0]}, []domain.Vote{votes[1], votes[0]})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	for i := range first {
		if first[i].Competitor.ID != second[i].Competitor.ID {
			t.Fatalf("entry order differs at %d", i)
		}
		for j := range first[i].Votes {
			if first[i].Votes[j].VoterRef != second[i].Votes[j].VoterRef {
				t.Fatalf("vote order differs at %d/%d", i, j)
			}
		}
	}
}
