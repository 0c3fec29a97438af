package handlers

import (
	"fmt"
	"strings"
	"time"
)

// summaryTimeLayout parses the /summary date-time pairs, interpreted as UTC.
const summaryTimeLayout = "02.01.2006 15:04"

// parseSummaryRange derives the [start, end) window from the text following
// the /summary command. No arguments default to the current UTC calendar
// day; four arguments form two date-time pairs. Any other argument count or
// an unparsable pair is a format error.
func parseSummaryRange(argsText string, now time.Time) (start, end time.Time, err error) {
	args := strings.Fields(argsText)

	switch len(args) {
	case 0:
		day := now.UTC().Truncate(24 * time.Hour)
		return day, day.Add(24 * time.Hour), nil
	case 4:
		start, err = time.ParseInLocation(summaryTimeLayout, args[0]+" "+args[1], time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start date-time %q %q: %w", args[0], args[1], err)
		}
		end, err = time.ParseInLocation(summaryTimeLayout, args[2]+" "+args[3], time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date-time %q %q: %w", args[2], args[3], err)
		}
		return start, end, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("expected 0 or 4 arguments, got %d", len(args))
	}
}

// commandArgs strips the leading /command (with optional @botname suffix)
// from a message's text and returns the remainder.
func commandArgs(text string) string {
	if !strings.HasPrefix(text, "/") {
		return strings.TrimSpace(text)
	}
	_, rest, _ := strings.Cut(text, " ")
	return strings.TrimSpace(rest)
}
