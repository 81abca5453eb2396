// Package sqlite provides a SQLite-backed match storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/matchpoint/internal/match/storage"
	"github.com/louisbranch/matchpoint/internal/match/storage/sqlite/migrations"
	"github.com/louisbranch/matchpoint/internal/platform/storage/sqlitemigrate"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists match voting state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite match store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	// _pragma parameters run on every pooled connection the driver opens, so
	// busy_timeout and foreign_keys hold for all of them.
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateMatch inserts one match row.
func (s *Store) CreateMatch(ctx context.Context, match storage.MatchRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if match.ID == 0 {
		return fmt.Errorf("match id is required")
	}
	if match.DueAt.Before(match.CreatedAt) {
		return fmt.Errorf("due date precedes creation time")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO matches (id, title, created_at, due_at) VALUES (?, ?, ?, ?)`,
		match.ID,
		nullableText(match.Title),
		toMillis(match.CreatedAt),
		toMillis(match.DueAt),
	)
	if err != nil {
		if isConstraintViolation(err, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create match: %w", err)
	}
	return nil
}

// GetMatch returns one match by id.
func (s *Store) GetMatch(ctx context.Context, id int64) (storage.MatchRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.MatchRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.MatchRecord{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, title, created_at, due_at FROM matches WHERE id = ?`,
		id,
	)

	var match storage.MatchRecord
	var title sql.NullString
	var createdAt int64
	var dueAt int64
	if err := row.Scan(&match.ID, &title, &createdAt, &dueAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.MatchRecord{}, storage.ErrNotFound
		}
		return storage.MatchRecord{}, fmt.Errorf("get match: %w", err)
	}
	match.Title = title.String
	match.CreatedAt = fromMillis(createdAt)
	match.DueAt = fromMillis(dueAt)
	return match, nil
}

// DeleteMatch removes one match; competitors and votes go with it.
func (s *Store) DeleteMatch(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM matches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CreateCompetitor inserts one competitor row.
func (s *Store) CreateCompetitor(ctx context.Context, competitor storage.CompetitorRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if competitor.ID == 0 || competitor.MatchID == 0 {
		return fmt.Errorf("competitor id and match id are required")
	}
	userRef := strings.TrimSpace(competitor.UserRef)
	if userRef == "" {
		return fmt.Errorf("competitor user ref is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO competitors (match_id, id, user_ref, created_at, data) VALUES (?, ?, ?, ?, ?)`,
		competitor.MatchID,
		competitor.ID,
		userRef,
		toMillis(competitor.CreatedAt),
		nullableText(competitor.Data),
	)
	if err != nil {
		if isConstraintViolation(err, sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY) {
			return storage.ErrNotFound
		}
		if isConstraintViolation(err, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create competitor: %w", err)
	}
	return nil
}

// GetCompetitor returns one competitor of a match.
func (s *Store) GetCompetitor(ctx context.Context, matchID, competitorID int64) (storage.CompetitorRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.CompetitorRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.CompetitorRecord{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT match_id, id, user_ref, created_at, data
		   FROM competitors
		  WHERE match_id = ? AND id = ?`,
		matchID,
		competitorID,
	)

	competitor, err := scanCompetitor(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.CompetitorRecord{}, storage.ErrNotFound
		}
		return storage.CompetitorRecord{}, fmt.Errorf("get competitor: %w", err)
	}
	return competitor, nil
}

// ListCompetitors returns every competitor of a match in creation order.
func (s *Store) ListCompetitors(ctx context.Context, matchID int64) ([]storage.CompetitorRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT match_id, id, user_ref, created_at, data
		   FROM competitors
		  WHERE match_id = ?
		  ORDER BY id ASC`,
		matchID,
	)
	if err != nil {
		return nil, fmt.Errorf("list competitors: %w", err)
	}
	defer rows.Close()

	var competitors []storage.CompetitorRecord
	for rows.Next() {
		competitor, err := scanCompetitor(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list competitors: %w", err)
		}
		competitors = append(competitors, competitor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list competitors: %w", err)
	}
	return competitors, nil
}

// PutVote inserts or replaces the vote keyed by (voter_ref, match_id). The
// conditional upsert keeps last-write-wins atomic under concurrent casts.
func (s *Store) PutVote(ctx context.Context, vote storage.VoteRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	voterRef := strings.TrimSpace(vote.VoterRef)
	if voterRef == "" {
		return fmt.Errorf("vote voter ref is required")
	}
	if vote.MatchID == 0 || vote.CompetitorID == 0 {
		return fmt.Errorf("vote match id and competitor id are required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO votes (voter_ref, match_id, competitor_id, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (voter_ref, match_id) DO UPDATE SET
		     competitor_id = excluded.competitor_id,
		     created_at = excluded.created_at`,
		voterRef,
		vote.MatchID,
		vote.CompetitorID,
		toMillis(vote.CastAt),
	)
	if err != nil {
		if isConstraintViolation(err, sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("put vote: %w", err)
	}
	return nil
}

// ListVotes returns every vote of a match in cast order.
func (s *Store) ListVotes(ctx context.Context, matchID int64) ([]storage.VoteRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT voter_ref, match_id, competitor_id, created_at
		   FROM votes
		  WHERE match_id = ?
		  ORDER BY created_at ASC, voter_ref ASC`,
		matchID,
	)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	defer rows.Close()

	var votes []storage.VoteRecord
	for rows.Next() {
		var vote storage.VoteRecord
		var castAt int64
		if err := rows.Scan(&vote.VoterRef, &vote.MatchID, &vote.CompetitorID, &castAt); err != nil {
			return nil, fmt.Errorf("list votes: %w", err)
		}
		vote.CastAt = fromMillis(castAt)
		votes = append(votes, vote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	return votes, nil
}

func scanCompetitor(scan func(...any) error) (storage.CompetitorRecord, error) {
	var competitor storage.CompetitorRecord
	var data sql.NullString
	var createdAt int64
	if err := scan(&competitor.MatchID, &competitor.ID, &competitor.UserRef, &createdAt, &data); err != nil {
		return storage.CompetitorRecord{}, err
	}
	competitor.CreatedAt = fromMillis(createdAt)
	competitor.Data = data.String
	return competitor, nil
}

func nullableText(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func isConstraintViolation(err error, codes ...int) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		for _, code := range codes {
			if sqliteErr.Code() == code {
				return true
			}
		}
	}
	message := strings.ToLower(err.Error())
	for _, code := range codes {
		switch code {
		case sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY:
			if strings.Contains(message, "foreign key constraint failed") {
				return true
			}
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			if strings.Contains(message, "unique constraint failed") {
				return true
			}
		}
	}
	return false
}

var _ storage.MatchStore = (*Store)(nil)
