package database

import (
	"database/sql"
	"time"
)

// User represents a chat participant, including the bot itself.
// Users are created lazily on first observation and never updated.
type User struct {
	ID        int64          `db:"id"`
	TGID      int64          `db:"tg_id"`
	Username  sql.NullString `db:"username"`
	FirstName sql.NullString `db:"first_name"`
	LastName  sql.NullString `db:"last_name"`
	CreatedAt time.Time      `db:"created_at"`
}

// DisplayName returns the user's first name, falling back to the username
// and finally to a generic label.
func (u *User) DisplayName() string {
	if u.FirstName.Valid && u.FirstName.String != "" {
		return u.FirstName.String
	}
	if u.Username.Valid && u.Username.String != "" {
		return u.Username.String
	}
	return "a user"
}

// Label returns "username (first last)" for vote attribution lines.
func (u *User) Label() string {
	name := ""
	if u.FirstName.Valid {
		name = u.FirstName.String
	}
	if u.LastName.Valid && u.LastName.String != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName.String
	}
	username := "no_username"
	if u.Username.Valid && u.Username.String != "" {
		username = u.Username.String
	}
	if name == "" {
		return username
	}
	return username + " (" + name + ")"
}

// Message is one logged chat event: a text message, a poll notice, or a
// reaction notice. The messages table is an append-only log.
type Message struct {
	ID               int64         `db:"id"`
	FromUserID       int64         `db:"from_user_id"`
	ChatID           int64         `db:"chat_id"`
	Text             string        `db:"text"`
	Date             time.Time     `db:"date"`
	TGMessageID      sql.NullInt64 `db:"tg_message_id"`
	ReplyToMessageID sql.NullInt64 `db:"reply_to_message_id"`
}

// Poll is a poll reposted by the bot, tracked for vote attribution.
// Options holds the serialized question and option list.
type Poll struct {
	ID       int64  `db:"id"`
	PollID   string `db:"poll_id"`
	ChatID   int64  `db:"chat_id"`
	Question string `db:"question"`
	Options  string `db:"options"`
}

// Summary is a generated narrative over a time window of one chat.
type Summary struct {
	ID         int64          `db:"id"`
	ChatID     int64          `db:"chat_id"`
	Author     string         `db:"author"`
	Text       string         `db:"text"`
	CreatedAt  time.Time      `db:"created_at"`
	RangeStart time.Time      `db:"range_start"`
	RangeEnd   time.Time      `db:"range_end"`
	Style      sql.NullString `db:"style"`
}

// HistoryEntry is a flat message row with the author and any reply-target
// text joined in at query time. Nothing here is lazily resolved, so
// rendering cannot fail after the query returns.
type HistoryEntry struct {
	ID        int64          `db:"id"`
	ChatID    int64          `db:"chat_id"`
	Text      string         `db:"text"`
	Date      time.Time      `db:"date"`
	Username  sql.NullString `db:"username"`
	FirstName sql.NullString `db:"first_name"`
	LastName  sql.NullString `db:"last_name"`
	IsReply   bool           `db:"is_reply"`
	ReplyText sql.NullString `db:"reply_text"`
}

// Stats holds the row counts reported by the /statistic command.
type Stats struct {
	Users     int64 `db:"users"`
	Messages  int64 `db:"messages"`
	Summaries int64 `db:"summaries"`
}
