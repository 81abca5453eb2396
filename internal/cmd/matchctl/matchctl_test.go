package matchctl

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"path/filepath"
	"testing"
)

func TestParseConfigJoinsCommandArgs(t *testing.T) {
	fs := flag.NewFlagSet("matchctl", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{
		"-actor", "alice",
		"-db-path", "custom.db",
		"create", "Best soup", "3d",
	})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Actor != "alice" {
		t.Fatalf("actor = %q", cfg.Actor)
	}
	if cfg.Display != "alice" {
		t.Fatalf("display = %q, want actor fallback", cfg.Display)
	}
	if cfg.DBPath != "custom.db" {
		t.Fatalf("db path = %q", cfg.DBPath)
	}
	want := `create 'Best soup' 3d`
	if cfg.Command != want {
		t.Fatalf("command = %q, want %q", cfg.Command, want)
	}
}

func TestRunWritesJSONResponse(t *testing.T) {
	cfg := Config{
		Actor:   "operator",
		Display: "Operator",
		Guild:   "local",
		Channel: "console",
		Manage:  true,
		Command: `create "Best soup" 24h`,
	}
	cfg.DBPath = filepath.Join(t.TempDir(), "match.db")
	cfg.NodeID = 1

	var out bytes.Buffer
	if err := Run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	var response map[string]any
	if err := json.Unmarshal(out.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v\n%s", err, out.String())
	}
	created, ok := response["Create"].(map[string]any)
	if !ok {
		t.Fatalf("response missing create payload:\n%s", out.String())
	}
	if created["Title"] != "Best soup" {
		t.Fatalf("title = %v", created["Title"])
	}
}
