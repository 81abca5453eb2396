// Package duration resolves the relative-time expressions accepted by match
// commands, such as "24h" or "3d2h", as well as absolute timestamps.
package duration

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ErrUnparseable indicates input that is neither a relative duration nor a
// recognizable absolute timestamp.
var ErrUnparseable = errors.New("unparseable time expression")

// tokenPattern matches one <digits><unit> token of the relative mini-language.
var tokenPattern = regexp.MustCompile(`(?i)(\d+)([ywdhms])`)

// IsRelative reports whether the expression is a relative duration: after
// removing every <digits><unit> token, nothing but whitespace may remain, and
// at least one token must have matched.
func IsRelative(expr string) bool {
	tokens := tokenPattern.FindAllStringSubmatch(expr, -1)
	remainder := strings.TrimSpace(tokenPattern.ReplaceAllString(expr, ""))
	return len(tokens) > 0 && remainder == ""
}

// Resolve converts the expression to an absolute point in time. Relative
// expressions are applied to now token by token with calendar-aware addition;
// anything else is parsed as an absolute timestamp and normalized to UTC.
func Resolve(expr string, now time.Time) (time.Time, error) {
	if IsRelative(expr) {
		return resolveRelative(expr, now)
	}

	at, err := dateparse.ParseIn(strings.TrimSpace(expr), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseable, expr)
	}
	return at.UTC(), nil
}

// resolveRelative applies each token as an additive offset, in input order.
// Years, weeks, and days use calendar addition so month and DST boundaries
// behave like a calendar, not elapsed seconds.
func resolveRelative(expr string, now time.Time) (time.Time, error) {
	tokens := tokenPattern.FindAllStringSubmatch(expr, -1)
	if len(tokens) == 0 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseable, expr)
	}

	at := now
	for _, token := range tokens {
		// A token with no digits counts as 1; one with no unit counts as
		// minutes. Inherited legacy behavior, kept on purpose.
		magnitude := token[1]
		if magnitude == "" {
			magnitude = "1"
		}
		n, err := strconv.Atoi(magnitude)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseable, expr)
		}
		unit := strings.ToLower(token[2])
		if unit == "" {
			unit = "m"
		}
		switch unit {
		case "y":
			at = at.AddDate(n, 0, 0)
		case "w":
			at = at.AddDate(0, 0, 7*n)
		case "d":
			at = at.AddDate(0, 0, n)
		case "h":
			at = at.Add(time.Duration(n) * time.Hour)
		case "m":
			at = at.Add(time.Duration(n) * time.Minute)
		case "s":
			at = at.Add(time.Duration(n) * time.Second)
		}
	}
	return at, nil
}
