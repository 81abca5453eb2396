// Package storage defines persistence contracts for match voting state.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// MatchRecord stores one match row.
type MatchRecord struct {
	ID        int64
	Title     string
	CreatedAt time.Time
	DueAt     time.Time
}

// CompetitorRecord stores one competitor row, keyed by (MatchID, ID).
type CompetitorRecord struct {
	MatchID   int64
	ID        int64
	UserRef   string
	CreatedAt time.Time
	Data      string
}

// VoteRecord stores one vote row, keyed by (VoterRef, MatchID).
type VoteRecord struct {
	VoterRef     string
	MatchID      int64
	CompetitorID int64
	CastAt       time.Time
}

// MatchStore persists matches, competitors, and votes. Implementations must
// be safe for concurrent use by simultaneous command invocations.
type MatchStore interface {
	// CreateMatch inserts one match. Returns ErrAlreadyExists on id collision.
	CreateMatch(ctx context.Context, match MatchRecord) error
	// GetMatch returns one match by id.
	GetMatch(ctx context.Context, id int64) (MatchRecord, error)
	// DeleteMatch removes a match along with its competitors and their votes.
	// The cascade is part of the contract, not an accident of the backend.
	DeleteMatch(ctx context.Context, id int64) error

	// CreateCompetitor inserts one competitor. Returns ErrNotFound when the
	// parent match does not exist.
	CreateCompetitor(ctx context.Context, competitor CompetitorRecord) error
	// GetCompetitor returns one competitor of a match.
	GetCompetitor(ctx context.Context, matchID, competitorID int64) (CompetitorRecord, error)
	// ListCompetitors returns every competitor of a match in creation order.
	ListCompetitors(ctx context.Context, matchID int64) ([]CompetitorRecord, error)

	// PutVote inserts or replaces the vote keyed by (VoterRef, MatchID) in a
	// single atomic write. Returns ErrNotFound when the referenced competitor
	// does not belong to the match.
	PutVote(ctx context.Context, vote VoteRecord) error
	// ListVotes returns every vote of a match in cast order.
	ListVotes(ctx context.Context, matchID int64) ([]VoteRecord, error)
}
