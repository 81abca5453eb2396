// Package service orchestrates match commands against the storage boundary.
package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"log"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/matchpoint/internal/errors"
	"github.com/louisbranch/matchpoint/internal/match/domain"
	"github.com/louisbranch/matchpoint/internal/match/duration"
	"github.com/louisbranch/matchpoint/internal/match/storage"
	"github.com/louisbranch/matchpoint/internal/match/tally"
	"github.com/louisbranch/matchpoint/internal/platform/snowflake"
)

const defaultPeriod = "24h"

// Service implements the five match commands. All state lives in the store;
// a Service is safe for concurrent use.
type Service struct {
	store  storage.MatchStore
	ids    *snowflake.Generator
	clock  func() time.Time
	tracer trace.Tracer

	// forbidLateEntry rejects addcompetitor on expired matches. Off by
	// default: the legacy behavior allows late registration.
	forbidLateEntry bool
}

// Options adjusts optional Service behavior.
type Options struct {
	Clock           func() time.Time
	ForbidLateEntry bool
}

// New creates a Service backed by the given store and id generator.
func New(store storage.MatchStore, ids *snowflake.Generator, opts Options) *Service {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		store:           store,
		ids:             ids,
		clock:           clock,
		tracer:          otel.Tracer("matchpoint/match"),
		forbidLateEntry: opts.ForbidLateEntry,
	}
}

// Create resolves the voting period, persists a new match, and returns its
// key along with a human-readable time until the deadline.
func (s *Service) Create(ctx context.Context, caller Caller, title, period string) (CreateResult, error) {
	ctx, span := s.tracer.Start(ctx, "match.create")
	defer span.End()

	if err := s.requireManage(caller); err != nil {
		return CreateResult{}, err
	}

	if strings.TrimSpace(period) == "" {
		period = defaultPeriod
	}
	now := s.clock().UTC()
	dueAt, err := duration.Resolve(period, now)
	if err != nil {
		return CreateResult{}, errors.Wrap(errors.CodeDurationParse,
			fmt.Sprintf("could not read voting period %q", period), err)
	}

	match, err := domain.NewMatch(domain.NewMatchInput{Title: title, DueAt: dueAt}, s.clock, s.ids.Next)
	if err != nil {
		if stderrors.Is(err, domain.ErrDueBeforeCreated) {
			return CreateResult{}, errors.Wrap(errors.CodeDurationParse,
				fmt.Sprintf("voting period %q ends in the past", period), err)
		}
		return CreateResult{}, errors.Wrap(errors.CodeUnknown, "create match", err)
	}

	record := storage.MatchRecord{
		ID:        match.ID,
		Title:     match.Title,
		CreatedAt: match.CreatedAt,
		DueAt:     match.DueAt,
	}
	if err := s.store.CreateMatch(ctx, record); err != nil {
		span.RecordError(err)
		return CreateResult{}, storageFailure("create match", err)
	}

	span.SetAttributes(attribute.String("match.key", match.Key()))
	return CreateResult{
		MatchID:      match.ID,
		MatchKey:     match.Key(),
		Title:        match.Title,
		DueAt:        match.DueAt,
		TimeUntilDue: humanize.RelTime(match.DueAt, now, "ago", "from now"),
	}, nil
}

// AddCompetitor resolves the referenced user and registers a competitor on
// the match.
func (s *Service) AddCompetitor(ctx context.Context, caller Caller, matchKey, userRef, data string) (AddCompetitorResult, error) {
	ctx, span := s.tracer.Start(ctx, "match.addcompetitor")
	defer span.End()

	if err := s.requireManage(caller); err != nil {
		return AddCompetitorResult{}, err
	}

	matchID, err := parseKey("match", matchKey)
	if err != nil {
		return AddCompetitorResult{}, err
	}
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return AddCompetitorResult{}, err
	}
	if s.forbidLateEntry && !match.OpenAt(s.clock().UTC()) {
		return AddCompetitorResult{}, errors.WithMetadata(errors.CodeRegistrationClosed,
			fmt.Sprintf("match %s no longer accepts competitors", match.Key()),
			map[string]string{"match": match.Key()})
	}

	member, err := s.resolveMember(caller, userRef)
	if err != nil {
		return AddCompetitorResult{}, err
	}

	competitor, err := domain.NewCompetitor(domain.NewCompetitorInput{
		MatchID: match.ID,
		UserRef: member.Ref,
		Data:    data,
	}, s.clock, s.ids.Next)
	if err != nil {
		return AddCompetitorResult{}, errors.Wrap(errors.CodeUnknown, "create competitor", err)
	}

	record := storage.CompetitorRecord{
		MatchID:   competitor.MatchID,
		ID:        competitor.ID,
		UserRef:   competitor.UserRef,
		CreatedAt: competitor.CreatedAt,
		Data:      competitor.Data,
	}
	if err := s.store.CreateCompetitor(ctx, record); err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return AddCompetitorResult{}, matchNotFound(match.Key())
		}
		span.RecordError(err)
		return AddCompetitorResult{}, storageFailure("create competitor", err)
	}

	span.SetAttributes(
		attribute.String("match.key", match.Key()),
		attribute.String("competitor.key", competitor.Key()),
	)
	return AddCompetitorResult{
		MatchKey:      match.Key(),
		CompetitorID:  competitor.ID,
		CompetitorKey: competitor.Key(),
		Display:       member.DisplayName,
		Data:          competitor.Data,
	}, nil
}

// Vote records the caller's vote for an entry. A second vote by the same
// voter replaces the first. Voting on an expired match returns VoteClosed
// without touching the vote table.
func (s *Service) Vote(ctx context.Context, caller Caller, matchKey, entryKey string) (VoteResult, error) {
	ctx, span := s.tracer.Start(ctx, "match.vote")
	defer span.End()

	matchID, err := parseKey("match", matchKey)
	if err != nil {
		return VoteResult{}, err
	}
	entryID, err := parseKey("entry", entryKey)
	if err != nil {
		return VoteResult{}, err
	}

	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return VoteResult{}, err
	}
	if !match.OpenAt(s.clock().UTC()) {
		span.SetAttributes(attribute.String("vote.status", "closed"))
		return VoteResult{
			Status:       VoteClosed,
			MatchKey:     match.Key(),
			VoterDisplay: caller.Member.DisplayName,
		}, nil
	}

	competitor, err := s.store.GetCompetitor(ctx, match.ID, entryID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return VoteResult{}, errors.WithMetadata(errors.CodeCompetitorNotFound,
				fmt.Sprintf("entry %s doesn't exist in match %s", entryKey, match.Key()),
				map[string]string{"match": match.Key(), "entry": entryKey})
		}
		span.RecordError(err)
		return VoteResult{}, storageFailure("load competitor", err)
	}

	vote, err := domain.NewVote(domain.NewVoteInput{
		VoterRef:     caller.Member.Ref,
		MatchID:      match.ID,
		CompetitorID: competitor.ID,
	}, s.clock)
	if err != nil {
		return VoteResult{}, errors.Wrap(errors.CodeUnknown, "create vote", err)
	}

	record := storage.VoteRecord{
		VoterRef:     vote.VoterRef,
		MatchID:      vote.MatchID,
		CompetitorID: vote.CompetitorID,
		CastAt:       vote.CastAt,
	}
	if err := s.store.PutVote(ctx, record); err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return VoteResult{}, matchNotFound(match.Key())
		}
		span.RecordError(err)
		return VoteResult{}, storageFailure("put vote", err)
	}

	span.SetAttributes(
		attribute.String("match.key", match.Key()),
		attribute.String("vote.status", "recorded"),
	)
	return VoteResult{
		Status:           VoteRecorded,
		MatchKey:         match.Key(),
		VoterDisplay:     caller.Member.DisplayName,
		DeleteInvocation: true,
	}, nil
}

// AnnounceOptions adjusts announcement rendering.
type AnnounceOptions struct {
	Attributed bool
	CC         []string
	Timezone   string
}

// Announce builds the structured announcement payload for a match.
func (s *Service) Announce(ctx context.Context, caller Caller, roomRef, matchKey string, opts AnnounceOptions) (AnnounceResult, error) {
	ctx, span := s.tracer.Start(ctx, "match.announce")
	defer span.End()

	if err := s.requireManage(caller); err != nil {
		return AnnounceResult{}, err
	}

	room, err := s.resolveRoom(caller, roomRef)
	if err != nil {
		return AnnounceResult{}, err
	}

	tz := strings.TrimSpace(opts.Timezone)
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return AnnounceResult{}, errors.WithMetadata(errors.CodeUsage,
			fmt.Sprintf("unknown timezone %q", tz),
			map[string]string{"timezone": tz})
	}

	matchID, err := parseKey("match", matchKey)
	if err != nil {
		return AnnounceResult{}, err
	}
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return AnnounceResult{}, err
	}
	competitors, err := s.store.ListCompetitors(ctx, match.ID)
	if err != nil {
		span.RecordError(err)
		return AnnounceResult{}, storageFailure("list competitors", err)
	}

	entries := make([]AnnounceEntry, 0, len(competitors))
	for _, competitor := range competitors {
		key := snowflake.Format(competitor.ID)
		entry := AnnounceEntry{
			CompetitorKey: key,
			Data:          competitor.Data,
			VoteCommand:   fmt.Sprintf("vote %s %s", match.Key(), key),
		}
		if opts.Attributed {
			if member, err := s.lookupMember(caller, competitor.UserRef); err == nil {
				entry.Display = member.DisplayName
			}
		}
		entries = append(entries, entry)
	}

	span.SetAttributes(attribute.String("match.key", match.Key()))
	return AnnounceResult{
		Room:       room,
		MatchKey:   match.Key(),
		Title:      match.Title,
		DueAt:      match.DueAt.In(loc),
		Timezone:   tz,
		Anonymized: !opts.Attributed,
		CC:         opts.CC,
		Entries:    entries,
	}, nil
}

// Tally aggregates votes per competitor and projects them in the requested
// render mode. Tallying never mutates lifecycle state.
func (s *Service) Tally(ctx context.Context, caller Caller, matchKey string, attributed bool) (TallyResult, error) {
	ctx, span := s.tracer.Start(ctx, "match.tally")
	defer span.End()

	if err := s.requireManage(caller); err != nil {
		return TallyResult{}, err
	}

	matchID, err := parseKey("match", matchKey)
	if err != nil {
		return TallyResult{}, err
	}
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return TallyResult{}, err
	}
	competitorRecords, err := s.store.ListCompetitors(ctx, match.ID)
	if err != nil {
		span.RecordError(err)
		return TallyResult{}, storageFailure("list competitors", err)
	}
	voteRecords, err := s.store.ListVotes(ctx, match.ID)
	if err != nil {
		span.RecordError(err)
		return TallyResult{}, storageFailure("list votes", err)
	}

	competitors := make([]domain.Competitor, 0, len(competitorRecords))
	for _, record := range competitorRecords {
		competitors = append(competitors, domain.Competitor{
			ID:        record.ID,
			MatchID:   record.MatchID,
			UserRef:   record.UserRef,
			CreatedAt: record.CreatedAt,
			Data:      record.Data,
		})
	}
	votes := make([]domain.Vote, 0, len(voteRecords))
	for _, record := range voteRecords {
		votes = append(votes, domain.Vote{
			VoterRef:     record.VoterRef,
			MatchID:      record.MatchID,
			CompetitorID: record.CompetitorID,
			CastAt:       record.CastAt,
		})
	}

	aggregated, err := tally.Aggregate(competitors, votes)
	if err != nil {
		// A vote pointing at a competitor outside the match means the
		// stored data violates its own invariants.
		log.Printf("tally match %s: %v", match.Key(), err)
		span.RecordError(err)
		return TallyResult{}, errors.Wrap(errors.CodeDataCorruption,
			fmt.Sprintf("stored votes for match %s are inconsistent", match.Key()), err)
	}

	result := TallyResult{
		MatchKey:   match.Key(),
		Title:      match.Title,
		Anonymized: !attributed,
		Entries:    make([]TallyEntry, 0, len(aggregated)),
	}
	for _, entry := range aggregated {
		tallyEntry := TallyEntry{
			CompetitorKey: entry.Competitor.Key(),
			Data:          entry.Competitor.Data,
			Votes:         []TallyVote{},
		}
		if attributed {
			if member, err := s.lookupMember(caller, entry.Competitor.UserRef); err == nil {
				tallyEntry.Display = member.DisplayName
			}
			for _, vote := range entry.Votes {
				member, err := s.lookupMember(caller, vote.VoterRef)
				if err != nil {
					// Voters who left the context are dropped from
					// attributed tallies.
					continue
				}
				tallyEntry.Votes = append(tallyEntry.Votes, TallyVote{
					VoterRef:     vote.VoterRef,
					VoterDisplay: member.DisplayName,
					CastAt:       vote.CastAt,
				})
			}
		} else {
			for _, vote := range entry.Votes {
				tallyEntry.Votes = append(tallyEntry.Votes, TallyVote{CastAt: vote.CastAt})
			}
		}
		tallyEntry.Count = len(tallyEntry.Votes)
		result.Entries = append(result.Entries, tallyEntry)
	}

	span.SetAttributes(attribute.String("match.key", match.Key()))
	return result, nil
}

func (s *Service) requireManage(caller Caller) error {
	if !caller.CanManage {
		return errors.New(errors.CodeUnauthorized, "caller lacks the manage capability")
	}
	return nil
}

func (s *Service) loadMatch(ctx context.Context, id int64) (domain.Match, error) {
	record, err := s.store.GetMatch(ctx, id)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return domain.Match{}, matchNotFound(snowflake.Format(id))
		}
		return domain.Match{}, storageFailure("load match", err)
	}
	return domain.Match{
		ID:        record.ID,
		Title:     record.Title,
		CreatedAt: record.CreatedAt,
		DueAt:     record.DueAt,
	}, nil
}

func (s *Service) resolveMember(caller Caller, ref string) (Member, error) {
	member, err := s.lookupMember(caller, ref)
	if err != nil {
		return Member{}, errors.WithMetadata(errors.CodeUserResolution,
			fmt.Sprintf("could not resolve user %q; try a username, @-mention, or their Tag#0000", ref),
			map[string]string{"user": ref})
	}
	return member, nil
}

func (s *Service) lookupMember(caller Caller, ref string) (Member, error) {
	if caller.ResolveMember == nil {
		return Member{}, fmt.Errorf("no member resolver in context")
	}
	member, err := caller.ResolveMember(ref)
	if err != nil {
		return Member{}, err
	}
	if strings.TrimSpace(member.Ref) == "" {
		return Member{}, fmt.Errorf("resolver returned empty member for %q", ref)
	}
	return member, nil
}

func (s *Service) resolveRoom(caller Caller, ref string) (Room, error) {
	invalid := func() error {
		return errors.WithMetadata(errors.CodeInvalidTarget,
			fmt.Sprintf("%s is not a valid announcement channel here", ref),
			map[string]string{"room": ref})
	}
	if caller.ResolveRoom == nil {
		return Room{}, invalid()
	}
	room, err := caller.ResolveRoom(ref)
	if err != nil || !room.Postable {
		return Room{}, invalid()
	}
	return room, nil
}

func parseKey(kind, key string) (int64, error) {
	id, err := snowflake.Parse(key)
	if err != nil {
		return 0, errors.WithMetadata(errors.CodeMalformedKey,
			fmt.Sprintf("malformed %s id %q", kind, key),
			map[string]string{kind: key})
	}
	return id, nil
}

func matchNotFound(key string) error {
	return errors.WithMetadata(errors.CodeMatchNotFound,
		fmt.Sprintf("match %s doesn't exist", key),
		map[string]string{"match": key})
}

func storageFailure(op string, err error) error {
	return errors.Wrap(errors.CodeStorage, op, err)
}
