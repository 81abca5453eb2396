package service

import "time"

// CreateResult confirms a newly created match.
type CreateResult struct {
	MatchID      int64
	MatchKey     string
	Title        string
	DueAt        time.Time
	TimeUntilDue string
}

// AddCompetitorResult confirms a newly registered competitor.
type AddCompetitorResult struct {
	MatchKey      string
	CompetitorID  int64
	CompetitorKey string
	Display       string
	Data          string
}

// VoteStatus describes the outcome of a vote command.
type VoteStatus int

const (
	// VoteRecorded means the vote was stored, replacing any prior vote by
	// the same voter on the same match.
	VoteRecorded VoteStatus = iota
	// VoteClosed means the match deadline has passed and nothing was stored.
	// This is a normal response, not an error.
	VoteClosed
)

// VoteResult confirms or declines a vote.
type VoteResult struct {
	Status       VoteStatus
	MatchKey     string
	VoterDisplay string

	// DeleteInvocation recommends that the caller delete the invoking
	// message to keep the vote private. The core never touches transport.
	DeleteInvocation bool
}

// AnnounceEntry is one competitor line of an announcement.
type AnnounceEntry struct {
	CompetitorKey string
	Data          string

	// Display is the competitor's display identity. Empty when the
	// announcement is anonymized or the identity cannot be resolved.
	Display string

	// VoteCommand is the hint users follow to vote for this entry.
	VoteCommand string
}

// AnnounceResult is the structured announcement payload. The presentation
// layer renders it; nothing here is platform markup.
type AnnounceResult struct {
	Room       Room
	MatchKey   string
	Title      string
	DueAt      time.Time
	Timezone   string
	Anonymized bool
	CC         []string
	Entries    []AnnounceEntry
}

// TallyVote is one counted vote. VoterRef and VoterDisplay are empty in
// anonymized tallies.
type TallyVote struct {
	VoterRef     string
	VoterDisplay string
	CastAt       time.Time
}

// TallyEntry is the vote breakdown for one competitor. Competitors without
// votes appear with Count zero and an empty Votes slice.
type TallyEntry struct {
	CompetitorKey string
	Data          string
	Display       string
	Count         int
	Votes         []TallyVote
}

// TallyResult is the structured per-competitor breakdown of a match.
type TallyResult struct {
	MatchKey   string
	Title      string
	Anonymized bool
	Entries    []TallyEntry
}
