package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/louisbranch/matchpoint/internal/platform/snowflake"
)

var (
	// ErrEmptyUserRef indicates a competitor without an underlying user.
	ErrEmptyUserRef = errors.New("competitor user reference is required")
	// ErrEmptyMatchID indicates a competitor without a parent match.
	ErrEmptyMatchID = errors.New("competitor match id is required")
)

// Competitor is an entry within a match that can receive votes. It belongs to
// exactly one match and represents one chat-platform user, with optional
// free-text data such as a submission payload.
type Competitor struct {
	ID        int64
	MatchID   int64
	UserRef   string
	CreatedAt time.Time
	Data      string
}

// Key returns the compact base-36 key used for the competitor in commands.
func (c Competitor) Key() string {
	return snowflake.Format(c.ID)
}

// NewCompetitorInput describes the data needed to register a competitor.
type NewCompetitorInput struct {
	MatchID int64
	UserRef string
	Data    string
}

// NewCompetitor creates a competitor with a generated id and creation timestamp.
func NewCompetitor(input NewCompetitorInput, now func() time.Time, nextID func() int64) (Competitor, error) {
	if now == nil {
		now = time.Now
	}
	if nextID == nil {
		return Competitor{}, ErrMissingIDGenerator
	}
	if input.MatchID == 0 {
		return Competitor{}, ErrEmptyMatchID
	}
	userRef := strings.TrimSpace(input.UserRef)
	if userRef == "" {
		return Competitor{}, ErrEmptyUserRef
	}

	return Competitor{
		ID:        nextID(),
		MatchID:   input.MatchID,
		UserRef:   userRef,
		CreatedAt: now().UTC(),
		Data:      strings.TrimSpace(input.Data),
	}, nil
}
