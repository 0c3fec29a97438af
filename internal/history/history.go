// Package history turns stored chat messages into plain-text transcripts
// suitable for model prompts.
package history

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/iromess/chatmixbot/internal/database"
)

// replyExcerptLimit caps the quoted reply text embedded in a transcript line.
const replyExcerptLimit = 300

// timeLayout is the timestamp format used for transcript lines.
const timeLayout = "02-01-2006 15:04"

// MessageSource is the subset of the store the assembler reads from.
type MessageSource interface {
	GetMessagesInRange(ctx context.Context, chatID int64, start, end time.Time) ([]database.HistoryEntry, error)
	GetLastMessages(ctx context.Context, chatID int64, limit int) ([]database.HistoryEntry, error)
}

// Assembler fetches message history and renders it as a transcript.
type Assembler struct {
	source MessageSource
	logger *slog.Logger
}

// NewAssembler creates an Assembler reading from source.
func NewAssembler(source MessageSource, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Assembler{
		source: source,
		logger: logger.With("component", "history"),
	}
}

// Range renders the chat's messages with start <= date < end in
// chronological order. It returns the transcript and the number of
// messages it covers; an empty range yields ("", 0, nil).
func (a *Assembler) Range(ctx context.Context, chatID int64, start, end time.Time) (string, int, error) {
	entries, err := a.source.GetMessagesInRange(ctx, chatID, start, end)
	if err != nil {
		return "", 0, fmt.Errorf("failed to load history for chat %d: %w", chatID, err)
	}
	return BuildTranscript(entries), len(entries), nil
}

// Recent renders the chat's most recent messages, oldest first, covering
// at most limit messages.
func (a *Assembler) Recent(ctx context.Context, chatID int64, limit int) (string, int, error) {
	entries, err := a.source.GetLastMessages(ctx, chatID, limit)
	if err != nil {
		return "", 0, fmt.Errorf("failed to load recent history for chat %d: %w", chatID, err)
	}

	// The store returns newest first, the transcript reads top to bottom.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return BuildTranscript(entries), len(entries), nil
}

// BuildTranscript renders entries into a transcript, one block per message:
//
//	02-01-2006 15:04 username Last First:
//	*in reply to:* 'quoted text':
//	message text
//
// The reply line appears only for replies; its quote is truncated to
// 300 runes. Blocks are separated by blank lines.
func BuildTranscript(entries []database.HistoryEntry) string {
	if len(entries) == 0 {
		return ""
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		var b strings.Builder

		b.WriteString(entry.Date.UTC().Format(timeLayout))
		b.WriteByte(' ')
		b.WriteString(authorLabel(entry))
		b.WriteString(":\n")

		if entry.IsReply {
			if entry.ReplyText.Valid {
				b.WriteString("*in reply to:* '")
				b.WriteString(truncateRunes(strings.TrimSpace(entry.ReplyText.String), replyExcerptLimit))
				b.WriteString("':\n")
			} else {
				b.WriteString("*in reply to a message that could not be loaded*\n")
			}
		}

		b.WriteString(strings.TrimSpace(entry.Text))
		b.WriteByte('\n')
		lines = append(lines, b.String())
	}

	return strings.Join(lines, "\n")
}

func authorLabel(entry database.HistoryEntry) string {
	username := "no_username"
	if entry.Username.Valid && entry.Username.String != "" {
		username = entry.Username.String
	}

	fullName := ""
	if entry.LastName.Valid {
		fullName = entry.LastName.String
	}
	if entry.FirstName.Valid && entry.FirstName.String != "" {
		if fullName != "" {
			fullName += " "
		}
		fullName += entry.FirstName.String
	}

	if fullName == "" {
		return username
	}
	return username + " " + fullName
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
