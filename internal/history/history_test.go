package history_test

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/iromess/chatmixbot/internal/database"
	"github.com/iromess/chatmixbot/internal/history"
)

type stubSource struct {
	ranged []database.HistoryEntry
	recent []database.HistoryEntry
	err    error
}

func (s *stubSource) GetMessagesInRange(_ context.Context, _ int64, _, _ time.Time) ([]database.HistoryEntry, error) {
	return s.ranged, s.err
}

func (s *stubSource) GetLastMessages(_ context.Context, _ int64, _ int) ([]database.HistoryEntry, error) {
	return s.recent, s.err
}

func ns(v string) sql.NullString {
	return sql.NullString{String: v, Valid: true}
}

func entry(text string) database.HistoryEntry {
	return database.HistoryEntry{
		Text:      text,
		Date:      time.Date(2025, 7, 1, 12, 30, 0, 0, time.UTC),
		Username:  ns("ivan"),
		FirstName: ns("Ivan"),
		LastName:  ns("Petrov"),
	}
}

func TestBuildTranscript(t *testing.T) {
	t.Parallel()

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		if got := history.BuildTranscript(nil); got != "" {
			t.Errorf("BuildTranscript(nil) = %q, want empty", got)
		}
	})

	t.Run("basic line format", func(t *testing.T) {
		t.Parallel()

		got := history.BuildTranscript([]database.HistoryEntry{entry("hello there")})
		want := "01-07-2025 12:30 ivan Petrov Ivan:\nhello there\n"
		if got != want {
			t.Errorf("BuildTranscript() = %q, want %q", got, want)
		}
	})

	t.Run("username fallback", func(t *testing.T) {
		t.Parallel()

		e := entry("hi")
		e.Username = sql.NullString{}
		e.FirstName = sql.NullString{}
		e.LastName = sql.NullString{}

		got := history.BuildTranscript([]database.HistoryEntry{e})
		if !strings.HasPrefix(got, "01-07-2025 12:30 no_username:\n") {
			t.Errorf("BuildTranscript() = %q, want no_username author line", got)
		}
	})

	t.Run("blocks separated by blank line", func(t *testing.T) {
		t.Parallel()

		got := history.BuildTranscript([]database.HistoryEntry{entry("first"), entry("second")})
		if !strings.Contains(got, "first\n\n01-07-2025") {
			t.Errorf("BuildTranscript() = %q, want blank line between messages", got)
		}
	})

	t.Run("reply excerpt", func(t *testing.T) {
		t.Parallel()

		e := entry("agreed")
		e.IsReply = true
		e.ReplyText = ns("the original point")

		got := history.BuildTranscript([]database.HistoryEntry{e})
		if !strings.Contains(got, "*in reply to:* 'the original point':\nagreed") {
			t.Errorf("BuildTranscript() = %q, want reply excerpt line", got)
		}
	})

	t.Run("reply excerpt truncated to 300 runes", func(t *testing.T) {
		t.Parallel()

		long := strings.Repeat("ж", 350)
		e := entry("ok")
		e.IsReply = true
		e.ReplyText = ns(long)

		got := history.BuildTranscript([]database.HistoryEntry{e})
		wantExcerpt := strings.Repeat("ж", 300) + "..."
		if !strings.Contains(got, "'"+wantExcerpt+"'") {
			t.Errorf("BuildTranscript() excerpt not truncated to 300 runes plus ellipsis")
		}
		if strings.Contains(got, strings.Repeat("ж", 301)) {
			t.Errorf("BuildTranscript() excerpt exceeds 300 runes")
		}
	})

	t.Run("reply with unavailable target", func(t *testing.T) {
		t.Parallel()

		e := entry("what?")
		e.IsReply = true

		got := history.BuildTranscript([]database.HistoryEntry{e})
		if !strings.Contains(got, "*in reply to a message that could not be loaded*\nwhat?") {
			t.Errorf("BuildTranscript() = %q, want placeholder reply line", got)
		}
	})
}

func TestAssemblerRecent(t *testing.T) {
	t.Parallel()

	older := entry("older message")
	older.Date = time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	newer := entry("newer message")
	newer.Date = time.Date(2025, 7, 1, 11, 0, 0, 0, time.UTC)

	// The store hands back newest first.
	source := &stubSource{recent: []database.HistoryEntry{newer, older}}
	assembler := history.NewAssembler(source, nil)

	transcript, count, err := assembler.Recent(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("Recent() unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("Recent() count = %d, want 2", count)
	}
	if strings.Index(transcript, "older message") > strings.Index(transcript, "newer message") {
		t.Errorf("Recent() transcript not in chronological order:\n%s", transcript)
	}
}

func TestAssemblerRangeError(t *testing.T) {
	t.Parallel()

	source := &stubSource{err: errors.New("boom")}
	assembler := history.NewAssembler(source, nil)

	_, _, err := assembler.Range(context.Background(), 1, time.Now().Add(-time.Hour), time.Now())
	if err == nil {
		t.Fatal("Range() expected error, got nil")
	}
}
