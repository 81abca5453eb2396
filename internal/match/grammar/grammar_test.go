package grammar

import (
	"errors"
	"strings"
	"testing"
)

func mustParse(t *testing.T, raw string) Invocation {
	t.Helper()

	invocation, err := New().Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return invocation
}

func usageErr(t *testing.T, raw string) *UsageError {
	t.Helper()

	_, err := New().Parse(raw)
	var usage *UsageError
	if !errors.As(err, &usage) {
		t.Fatalf("parse %q err = %v, want *UsageError", raw, err)
	}
	if usage.Help == "" {
		t.Fatalf("parse %q produced usage error with empty help", raw)
	}
	return usage
}

func TestParseCreateWithQuotedTitle(t *testing.T) {
	t.Parallel()

	invocation := mustParse(t, `create "Best Cape 2026" 3d2h`)
	if invocation.Command != "create" {
		t.Fatalf("command = %q", invocation.Command)
	}
	if invocation.Operands["title"] != "Best Cape 2026" {
		t.Fatalf("title = %q", invocation.Operands["title"])
	}
	if invocation.Operands["period"] != "3d2h" {
		t.Fatalf("period = %q", invocation.Operands["period"])
	}
}

func TestParseCreateDefaultsPeriod(t *testing.T) {
	t.Parallel()

	invocation := mustParse(t, `create Showdown`)
	if invocation.Operands["period"] != "24h" {
		t.Fatalf("period = %q, want 24h", invocation.Operands["period"])
	}
}

func TestParseAddCompetitorOptionalData(t *testing.T) {
	t.Parallel()

	invocation := mustParse(t, `addcompetitor 1z7 @keira "chapter 3"`)
	if invocation.Operands["match"] != "1z7" {
		t.Fatalf("match = %q", invocation.Operands["match"])
	}
	if invocation.Operands["user"] != "@keira" {
		t.Fatalf("user = %q", invocation.Operands["user"])
	}
	if invocation.Operands["data"] != "chapter 3" {
		t.Fatalf("data = %q", invocation.Operands["data"])
	}

	invocation = mustParse(t, `addcompetitor 1z7 @keira`)
	if invocation.Operands["data"] != "" {
		t.Fatalf("data = %q, want empty", invocation.Operands["data"])
	}
}

func TestParseAnnounceOptions(t *testing.T) {
	t.Parallel()

	invocation := mustParse(t, `announce "#voting" 1z7 --no-anonymous --cc @staff --cc @judges -t America/New_York`)
	if invocation.Operands["room"] != "#voting" {
		t.Fatalf("room = %q", invocation.Operands["room"])
	}
	if invocation.Operands["match"] != "1z7" {
		t.Fatalf("match = %q", invocation.Operands["match"])
	}
	if !invocation.Flags["no-anonymous"] {
		t.Fatal("expected no-anonymous flag set")
	}
	cc := invocation.Repeated["cc"]
	if len(cc) != 2 || cc[0] != "@staff" || cc[1] != "@judges" {
		t.Fatalf("cc = %v", cc)
	}
	if invocation.Values["timezone"] != "America/New_York" {
		t.Fatalf("timezone = %q", invocation.Values["timezone"])
	}
}

func TestParseAnnounceTimezoneDefault(t *testing.T) {
	t.Parallel()

	invocation := mustParse(t, `announce "#voting" 1z7`)
	if invocation.Values["timezone"] != "UTC" {
		t.Fatalf("timezone = %q, want UTC", invocation.Values["timezone"])
	}
	if invocation.Flags["no-anonymous"] {
		t.Fatal("no-anonymous should default to false")
	}
	if len(invocation.Repeated["cc"]) != 0 {
		t.Fatalf("cc = %v, want empty", invocation.Repeated["cc"])
	}
}

func TestParseTally(t *testing.T) {
	t.Parallel()

	invocation := mustParse(t, `tally 1z7 --no-anonymous`)
	if invocation.Operands["match"] != "1z7" {
		t.Fatalf("match = %q", invocation.Operands["match"])
	}
	if !invocation.Flags["no-anonymous"] {
		t.Fatal("expected no-anonymous flag set")
	}
}

func TestParseUnknownSubCommandListsCommands(t *testing.T) {
	t.Parallel()

	usage := usageErr(t, "destroy everything")
	if !strings.Contains(usage.Help, "create") || !strings.Contains(usage.Help, "tally") {
		t.Fatalf("help missing command list:\n%s", usage.Help)
	}
}

func TestParseEmptyInput(t *testing.T) {
	t.Parallel()

	usageErr(t, "")
	usageErr(t, "   ")
}

func TestParseMissingRequiredOperand(t *testing.T) {
	t.Parallel()

	usage := usageErr(t, "vote 1z7")
	if !strings.Contains(usage.Help, "vote") || !strings.Contains(usage.Help, "<entry>") {
		t.Fatalf("help missing vote usage:\n%s", usage.Help)
	}
}

func TestParseRejectsExtraOperands(t *testing.T) {
	t.Parallel()

	usage := usageErr(t, "vote 1z7 2b8 extra")
	if !strings.Contains(usage.Error(), "too many operands") {
		t.Fatalf("error = %v", usage)
	}
}

func TestParseRejectsUnknownOption(t *testing.T) {
	t.Parallel()

	usageErr(t, "tally 1z7 --loud")
}

func TestParseRejectsUnbalancedQuotes(t *testing.T) {
	t.Parallel()

	usageErr(t, `create "half open`)
}
