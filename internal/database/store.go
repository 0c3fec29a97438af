package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the data access operations used by the bot. All methods
// accept a context for cancellation and timeouts. Lookup methods return
// (nil, nil) when no row matches.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// GetOrCreateUser returns the user with the given Telegram ID, creating
	// the row on first observation.
	GetOrCreateUser(ctx context.Context, tgID int64, username, firstName, lastName string) (*User, error)

	// GetUserByTGID returns the user with the given Telegram ID, or nil.
	GetUserByTGID(ctx context.Context, tgID int64) (*User, error)

	// SaveMessage inserts a new message row.
	SaveMessage(ctx context.Context, message *Message) error

	// GetMessageByTGID returns the earliest stored message matching the
	// chat and Telegram message ID, or nil.
	GetMessageByTGID(ctx context.Context, chatID, tgMessageID int64) (*Message, error)

	// GetMessagesInRange returns the chat's messages with start <= date < end
	// in chronological order, authors and reply texts eagerly joined.
	GetMessagesInRange(ctx context.Context, chatID int64, start, end time.Time) ([]HistoryEntry, error)

	// GetLastMessages returns up to limit of the chat's most recent messages,
	// newest first.
	GetLastMessages(ctx context.Context, chatID int64, limit int) ([]HistoryEntry, error)

	// SavePoll inserts a poll row.
	SavePoll(ctx context.Context, poll *Poll) error

	// GetPollByPollID returns the poll with the given platform poll ID, or nil.
	GetPollByPollID(ctx context.Context, pollID string) (*Poll, error)

	// SaveSummary inserts a summary row.
	SaveSummary(ctx context.Context, summary *Summary) error

	// GetLastSummary returns the chat's most recent summary, or nil.
	GetLastSummary(ctx context.Context, chatID int64) (*Summary, error)

	// GetStatistics returns user, message, and summary counts.
	GetStatistics(ctx context.Context) (Stats, error)

	// RunSQLMaintenance performs database maintenance (VACUUM).
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore implements Store using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by the given sqlx connection.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) GetOrCreateUser(ctx context.Context, tgID int64, username, firstName, lastName string) (*User, error) {
	user, err := s.GetUserByTGID(ctx, tgID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	s.logger.InfoContext(ctx, "User not found, creating", "tg_id", tgID, "username", username)

	user = &User{
		TGID:      tgID,
		Username:  nullString(username),
		FirstName: nullString(firstName),
		LastName:  nullString(lastName),
		CreatedAt: time.Now().UTC(),
	}

	query := `
        INSERT INTO users (tg_id, username, first_name, last_name, created_at)
        VALUES (:tg_id, :username, :first_name, :last_name, :created_at);
    `
	result, err := s.db.NamedExecContext(ctx, query, user)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error creating user", "tg_id", tgID, "error", err)
		return nil, fmt.Errorf("failed to create user %d: %w", tgID, err)
	}

	if id, idErr := result.LastInsertId(); idErr == nil {
		user.ID = id
	} else {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID for user", "tg_id", tgID, "error", idErr)
	}

	return user, nil
}

func (s *sqlxStore) GetUserByTGID(ctx context.Context, tgID int64) (*User, error) {
	var user User
	query := `SELECT id, tg_id, username, first_name, last_name, created_at FROM users WHERE tg_id = ?`

	err := s.db.GetContext(ctx, &user, query, tgID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting user", "tg_id", tgID, "error", err)
		return nil, fmt.Errorf("failed to get user %d: %w", tgID, err)
	}
	return &user, nil
}

func (s *sqlxStore) SaveMessage(ctx context.Context, message *Message) error {
	if message == nil {
		return fmt.Errorf("cannot save nil message")
	}
	if message.FromUserID == 0 {
		return fmt.Errorf("message must have a non-zero from_user_id")
	}
	if message.Date.IsZero() {
		message.Date = time.Now().UTC()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for saving message",
			"chat_id", message.ChatID, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	query := `
        INSERT INTO messages (from_user_id, chat_id, text, date, tg_message_id, reply_to_message_id)
        VALUES (:from_user_id, :chat_id, :text, :date, :tg_message_id, :reply_to_message_id);
    `
	result, err := tx.NamedExecContext(ctx, query, message)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving message", "chat_id", message.ChatID, "user_id", message.FromUserID, "error", err)
		return fmt.Errorf("failed to save message (chat %d): %w", message.ChatID, err)
	}

	if id, idErr := result.LastInsertId(); idErr == nil {
		message.ID = id
	} else {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after saving message",
			"chat_id", message.ChatID, "error", idErr)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction", "chat_id", message.ChatID, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Message saved", "chat_id", message.ChatID, "message_id", message.ID)
	return nil
}

func (s *sqlxStore) GetMessageByTGID(ctx context.Context, chatID, tgMessageID int64) (*Message, error) {
	var message Message
	query := `
        SELECT id, from_user_id, chat_id, text, date, tg_message_id, reply_to_message_id
        FROM messages
        WHERE chat_id = ? AND tg_message_id = ?
        ORDER BY id ASC
        LIMIT 1;
    `

	err := s.db.GetContext(ctx, &message, query, chatID, tgMessageID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting message by telegram ID",
			"chat_id", chatID, "tg_message_id", tgMessageID, "error", err)
		return nil, fmt.Errorf("failed to get message %d in chat %d: %w", tgMessageID, chatID, err)
	}
	return &message, nil
}

const historySelect = `
    SELECT m.id, m.chat_id, m.text, m.date,
           u.username, u.first_name, u.last_name,
           m.reply_to_message_id IS NOT NULL AS is_reply,
           r.text AS reply_text
    FROM messages m
    JOIN users u ON u.id = m.from_user_id
    LEFT JOIN messages r ON r.id = m.reply_to_message_id
`

func (s *sqlxStore) GetMessagesInRange(ctx context.Context, chatID int64, start, end time.Time) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	query := historySelect + `
    WHERE m.chat_id = ? AND m.date >= ? AND m.date < ?
    ORDER BY m.date ASC, m.id ASC;
    `

	err := s.db.SelectContext(ctx, &entries, query, chatID, start, end)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting messages in range",
			"chat_id", chatID, "start", start, "end", end, "error", err)
		return nil, fmt.Errorf("failed to get messages for chat %d: %w", chatID, err)
	}

	s.logger.DebugContext(ctx, "Fetched messages in range", "chat_id", chatID, "count", len(entries))
	return entries, nil
}

func (s *sqlxStore) GetLastMessages(ctx context.Context, chatID int64, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	var entries []HistoryEntry
	query := historySelect + `
    WHERE m.chat_id = ?
    ORDER BY m.date DESC, m.id DESC
    LIMIT ?;
    `

	err := s.db.SelectContext(ctx, &entries, query, chatID, limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting last messages", "chat_id", chatID, "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to get last messages for chat %d: %w", chatID, err)
	}

	return entries, nil
}

func (s *sqlxStore) SavePoll(ctx context.Context, poll *Poll) error {
	if poll == nil {
		return fmt.Errorf("cannot save nil poll")
	}
	if poll.PollID == "" {
		return fmt.Errorf("poll must have a non-empty poll_id")
	}

	query := `
        INSERT INTO polls (poll_id, chat_id, question, options)
        VALUES (:poll_id, :chat_id, :question, :options);
    `
	result, err := s.db.NamedExecContext(ctx, query, poll)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving poll", "poll_id", poll.PollID, "chat_id", poll.ChatID, "error", err)
		return fmt.Errorf("failed to save poll %s: %w", poll.PollID, err)
	}

	if id, idErr := result.LastInsertId(); idErr == nil {
		poll.ID = id
	}

	s.logger.DebugContext(ctx, "Poll saved", "poll_id", poll.PollID, "chat_id", poll.ChatID)
	return nil
}

func (s *sqlxStore) GetPollByPollID(ctx context.Context, pollID string) (*Poll, error) {
	var poll Poll
	query := `SELECT id, poll_id, chat_id, question, options FROM polls WHERE poll_id = ?`

	err := s.db.GetContext(ctx, &poll, query, pollID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting poll", "poll_id", pollID, "error", err)
		return nil, fmt.Errorf("failed to get poll %s: %w", pollID, err)
	}
	return &poll, nil
}

func (s *sqlxStore) SaveSummary(ctx context.Context, summary *Summary) error {
	if summary == nil {
		return fmt.Errorf("cannot save nil summary")
	}
	if summary.RangeEnd.Before(summary.RangeStart) {
		return fmt.Errorf("summary range_start must not be after range_end")
	}
	if summary.CreatedAt.IsZero() {
		summary.CreatedAt = time.Now().UTC()
	}

	query := `
        INSERT INTO summaries (chat_id, author, text, created_at, range_start, range_end, style)
        VALUES (:chat_id, :author, :text, :created_at, :range_start, :range_end, :style);
    `
	result, err := s.db.NamedExecContext(ctx, query, summary)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving summary", "chat_id", summary.ChatID, "error", err)
		return fmt.Errorf("failed to save summary for chat %d: %w", summary.ChatID, err)
	}

	if id, idErr := result.LastInsertId(); idErr == nil {
		summary.ID = id
	}

	s.logger.DebugContext(ctx, "Summary saved", "chat_id", summary.ChatID, "summary_id", summary.ID)
	return nil
}

func (s *sqlxStore) GetLastSummary(ctx context.Context, chatID int64) (*Summary, error) {
	var summary Summary
	query := `
        SELECT id, chat_id, author, text, created_at, range_start, range_end, style
        FROM summaries
        WHERE chat_id = ?
        ORDER BY created_at DESC, id DESC
        LIMIT 1;
    `

	err := s.db.GetContext(ctx, &summary, query, chatID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting last summary", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to get last summary for chat %d: %w", chatID, err)
	}
	return &summary, nil
}

func (s *sqlxStore) GetStatistics(ctx context.Context) (Stats, error) {
	var stats Stats
	query := `
        SELECT
            (SELECT COUNT(*) FROM users) AS users,
            (SELECT COUNT(*) FROM messages) AS messages,
            (SELECT COUNT(*) FROM summaries) AS summaries;
    `

	if err := s.db.GetContext(ctx, &stats, query); err != nil {
		s.logger.ErrorContext(ctx, "Error getting statistics", "error", err)
		return Stats{}, fmt.Errorf("failed to get statistics: %w", err)
	}
	return stats, nil
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed")
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
