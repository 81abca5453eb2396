// Package app wires the match command stack together from configuration.
package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/louisbranch/matchpoint/internal/match/command"
	"github.com/louisbranch/matchpoint/internal/match/service"
	"github.com/louisbranch/matchpoint/internal/match/storage/sqlite"
	"github.com/louisbranch/matchpoint/internal/platform/snowflake"
)

// Config holds the environment-driven settings for the match stack.
type Config struct {
	// DBPath locates the sqlite database file. Parent directories are
	// created on startup.
	DBPath string `env:"MATCHPOINT_DB_PATH" envDefault:"data/matchpoint.db"`
	// NodeID distinguishes id generators across concurrently running
	// instances sharing a database.
	NodeID int64 `env:"MATCHPOINT_NODE_ID" envDefault:"1"`
	// ForbidLateEntry rejects addcompetitor once a match has expired.
	ForbidLateEntry bool `env:"MATCHPOINT_FORBID_LATE_ENTRY"`
}

// App owns the storage handle and the command router built on top of it.
type App struct {
	Router *command.Router

	store *sqlite.Store
}

// New opens storage and assembles the service and router.
func New(cfg Config) (*App, error) {
	if dir := filepath.Dir(cfg.DBPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	ids, err := snowflake.NewGenerator(cfg.NodeID)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("id generator: %w", err)
	}

	svc := service.New(store, ids, service.Options{ForbidLateEntry: cfg.ForbidLateEntry})
	return &App{
		Router: command.NewRouter(svc),
		store:  store,
	}, nil
}

// Close releases the storage handle.
func (a *App) Close() error {
	return a.store.Close()
}
