// Package domain holds the match voting entities and their lifecycle rules.
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/matchpoint/internal/platform/snowflake"
)

var (
	// ErrDueBeforeCreated indicates a deadline earlier than the creation time.
	ErrDueBeforeCreated = errors.New("due date precedes creation time")
	// ErrMissingIDGenerator indicates entity creation without an id source.
	ErrMissingIDGenerator = errors.New("id generator is required")
)

// State describes whether a match currently accepts votes.
type State int

const (
	// StateOpen means the deadline has not passed and votes are accepted.
	StateOpen State = iota
	// StateExpired means the deadline has passed and votes are rejected.
	StateExpired
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Match is a single time-boxed voting event. A match is immutable once
// created; its state is purely a function of wall-clock time against DueAt.
type Match struct {
	ID        int64
	Title     string
	CreatedAt time.Time
	DueAt     time.Time
}

// Key returns the compact base-36 key used for the match in commands.
func (m Match) Key() string {
	return snowflake.Format(m.ID)
}

// StateAt returns the lifecycle state at the given instant. A match whose
// deadline equals the instant is already expired.
func (m Match) StateAt(now time.Time) State {
	if now.Before(m.DueAt) {
		return StateOpen
	}
	return StateExpired
}

// OpenAt reports whether the match accepts votes at the given instant.
func (m Match) OpenAt(now time.Time) bool {
	return m.StateAt(now) == StateOpen
}

// NewMatchInput describes the data needed to create a match.
type NewMatchInput struct {
	Title string
	DueAt time.Time
}

// NewMatch creates a match with a generated id and creation timestamp.
// An empty title defaults to "#<key>" of the new match.
func NewMatch(input NewMatchInput, now func() time.Time, nextID func() int64) (Match, error) {
	if now == nil {
		now = time.Now
	}
	if nextID == nil {
		return Match{}, ErrMissingIDGenerator
	}

	createdAt := now().UTC()
	dueAt := input.DueAt.UTC()
	if dueAt.Before(createdAt) {
		return Match{}, ErrDueBeforeCreated
	}

	match := Match{
		ID:        nextID(),
		CreatedAt: createdAt,
		DueAt:     dueAt,
	}
	match.Title = strings.TrimSpace(input.Title)
	if match.Title == "" {
		match.Title = fmt.Sprintf("#%s", match.Key())
	}
	return match, nil
}
