package database_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/iromess/chatmixbot/internal/database"
)

func newTestStore(t *testing.T) database.Store {
	t.Helper()

	db, err := database.NewDB(":memory:")
	if err != nil {
		t.Fatalf("NewDB() failed: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	return database.NewStore(db, nil)
}

func mustUser(t *testing.T, store database.Store, tgID int64, username string) *database.User {
	t.Helper()

	user, err := store.GetOrCreateUser(context.Background(), tgID, username, "First", "Last")
	if err != nil {
		t.Fatalf("GetOrCreateUser(%d) failed: %v", tgID, err)
	}
	return user
}

func mustSave(t *testing.T, store database.Store, msg *database.Message) {
	t.Helper()

	if err := store.SaveMessage(context.Background(), msg); err != nil {
		t.Fatalf("SaveMessage() failed: %v", err)
	}
}

func TestGetOrCreateUser(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.GetOrCreateUser(ctx, 42, "ivan", "Ivan", "Petrov")
	if err != nil {
		t.Fatalf("GetOrCreateUser() failed: %v", err)
	}
	if user.ID == 0 {
		t.Error("created user has zero ID")
	}
	if user.TGID != 42 || user.Username.String != "ivan" || user.FirstName.String != "Ivan" || user.LastName.String != "Petrov" {
		t.Errorf("created user has wrong fields: %+v", user)
	}

	again, err := store.GetOrCreateUser(ctx, 42, "ivan", "Ivan", "Petrov")
	if err != nil {
		t.Fatalf("second GetOrCreateUser() failed: %v", err)
	}
	if again.ID != user.ID {
		t.Errorf("second GetOrCreateUser() returned ID %d, want %d", again.ID, user.ID)
	}

	stats, err := store.GetStatistics(ctx)
	if err != nil {
		t.Fatalf("GetStatistics() failed: %v", err)
	}
	if stats.Users != 1 {
		t.Errorf("user count = %d, want 1 after repeated GetOrCreateUser", stats.Users)
	}
}

func TestGetUserByTGIDAbsent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	user, err := store.GetUserByTGID(context.Background(), 999)
	if err != nil {
		t.Fatalf("GetUserByTGID() failed: %v", err)
	}
	if user != nil {
		t.Errorf("GetUserByTGID() = %+v, want nil for absent user", user)
	}
}

func TestSaveMessageAndLookupByTGID(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	user := mustUser(t, store, 1, "ivan")

	msg := &database.Message{
		FromUserID:  user.ID,
		ChatID:      -100,
		Text:        "hello",
		Date:        time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
		TGMessageID: sql.NullInt64{Int64: 555, Valid: true},
	}
	mustSave(t, store, msg)
	if msg.ID == 0 {
		t.Error("saved message has zero ID")
	}

	got, err := store.GetMessageByTGID(ctx, -100, 555)
	if err != nil {
		t.Fatalf("GetMessageByTGID() failed: %v", err)
	}
	if got == nil || got.ID != msg.ID || got.Text != "hello" {
		t.Errorf("GetMessageByTGID() = %+v, want saved message", got)
	}

	absent, err := store.GetMessageByTGID(ctx, -100, 556)
	if err != nil {
		t.Fatalf("GetMessageByTGID() for absent failed: %v", err)
	}
	if absent != nil {
		t.Errorf("GetMessageByTGID() = %+v, want nil for absent message", absent)
	}
}

func TestDuplicateIngestionKeepsBothRows(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	user := mustUser(t, store, 1, "ivan")

	for range 2 {
		mustSave(t, store, &database.Message{
			FromUserID:  user.ID,
			ChatID:      -100,
			Text:        "redelivered",
			Date:        time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
			TGMessageID: sql.NullInt64{Int64: 777, Valid: true},
		})
	}

	stats, err := store.GetStatistics(ctx)
	if err != nil {
		t.Fatalf("GetStatistics() failed: %v", err)
	}
	if stats.Messages != 2 {
		t.Errorf("message count = %d, want 2 rows for redelivered event", stats.Messages)
	}

	// Lookup by platform ID resolves to the earliest stored row.
	first, err := store.GetMessageByTGID(ctx, -100, 777)
	if err != nil {
		t.Fatalf("GetMessageByTGID() failed: %v", err)
	}
	if first == nil {
		t.Fatal("GetMessageByTGID() = nil, want earliest duplicate")
	}
}

func TestGetMessagesInRangeBoundaries(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	user := mustUser(t, store, 1, "ivan")

	base := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	for i, text := range []string{"before", "at start", "middle", "at end"} {
		mustSave(t, store, &database.Message{
			FromUserID: user.ID,
			ChatID:     -100,
			Text:       text,
			Date:       base.Add(time.Duration(i-1) * time.Hour),
		})
	}

	entries, err := store.GetMessagesInRange(ctx, -100, base, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("GetMessagesInRange() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("GetMessagesInRange() returned %d entries, want 2: %+v", len(entries), entries)
	}
	if entries[0].Text != "at start" || entries[1].Text != "middle" {
		t.Errorf("GetMessagesInRange() order = [%q, %q], want chronological [at start, middle]",
			entries[0].Text, entries[1].Text)
	}
}

func TestGetMessagesInRangeReplyJoin(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	user := mustUser(t, store, 1, "ivan")

	base := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	original := &database.Message{
		FromUserID:  user.ID,
		ChatID:      -100,
		Text:        "original point",
		Date:        base,
		TGMessageID: sql.NullInt64{Int64: 1, Valid: true},
	}
	mustSave(t, store, original)

	mustSave(t, store, &database.Message{
		FromUserID:       user.ID,
		ChatID:           -100,
		Text:             "agreed",
		Date:             base.Add(time.Minute),
		ReplyToMessageID: sql.NullInt64{Int64: original.ID, Valid: true},
	})

	mustSave(t, store, &database.Message{
		FromUserID: user.ID,
		ChatID:     -100,
		Text:       "standalone",
		Date:       base.Add(2 * time.Minute),
	})

	entries, err := store.GetMessagesInRange(ctx, -100, base, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetMessagesInRange() failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("GetMessagesInRange() returned %d entries, want 3", len(entries))
	}

	reply := entries[1]
	if !reply.IsReply {
		t.Error("reply entry not flagged as reply")
	}
	if !reply.ReplyText.Valid || reply.ReplyText.String != "original point" {
		t.Errorf("reply entry ReplyText = %+v, want original text", reply.ReplyText)
	}
	if reply.Username.String != "ivan" {
		t.Errorf("reply entry Username = %q, want joined author", reply.Username.String)
	}

	if entries[2].IsReply {
		t.Error("standalone entry flagged as reply")
	}
}

func TestGetLastMessages(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	user := mustUser(t, store, 1, "ivan")

	base := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	for i := range 5 {
		mustSave(t, store, &database.Message{
			FromUserID: user.ID,
			ChatID:     -100,
			Text:       string(rune('a' + i)),
			Date:       base.Add(time.Duration(i) * time.Minute),
		})
	}

	entries, err := store.GetLastMessages(ctx, -100, 3)
	if err != nil {
		t.Fatalf("GetLastMessages() failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("GetLastMessages() returned %d entries, want 3", len(entries))
	}
	if entries[0].Text != "e" || entries[1].Text != "d" || entries[2].Text != "c" {
		t.Errorf("GetLastMessages() order = [%q, %q, %q], want newest first [e, d, c]",
			entries[0].Text, entries[1].Text, entries[2].Text)
	}
}

func TestPollRoundtrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	poll := &database.Poll{
		PollID:   "poll-abc",
		ChatID:   -100,
		Question: "Tea or coffee?",
		Options:  `{"question":"Tea or coffee?","options":[{"text":"Tea"},{"text":"Coffee"}]}`,
	}
	if err := store.SavePoll(ctx, poll); err != nil {
		t.Fatalf("SavePoll() failed: %v", err)
	}

	got, err := store.GetPollByPollID(ctx, "poll-abc")
	if err != nil {
		t.Fatalf("GetPollByPollID() failed: %v", err)
	}
	if got == nil || got.Question != "Tea or coffee?" || got.ChatID != -100 {
		t.Errorf("GetPollByPollID() = %+v, want saved poll", got)
	}

	absent, err := store.GetPollByPollID(ctx, "poll-xyz")
	if err != nil {
		t.Fatalf("GetPollByPollID() for absent failed: %v", err)
	}
	if absent != nil {
		t.Errorf("GetPollByPollID() = %+v, want nil for absent poll", absent)
	}
}

func TestSummaries(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	older := &database.Summary{
		ChatID:     -100,
		Author:     "gemini-2.0-flash",
		Text:       "first summary",
		CreatedAt:  base,
		RangeStart: base.Add(-24 * time.Hour),
		RangeEnd:   base,
	}
	newer := &database.Summary{
		ChatID:     -100,
		Author:     "gemini-2.0-flash",
		Text:       "second summary",
		CreatedAt:  base.Add(time.Hour),
		RangeStart: base,
		RangeEnd:   base.Add(time.Hour),
		Style:      sql.NullString{String: "with humor", Valid: true},
	}
	for _, s := range []*database.Summary{older, newer} {
		if err := store.SaveSummary(ctx, s); err != nil {
			t.Fatalf("SaveSummary() failed: %v", err)
		}
	}

	got, err := store.GetLastSummary(ctx, -100)
	if err != nil {
		t.Fatalf("GetLastSummary() failed: %v", err)
	}
	if got == nil || got.Text != "second summary" {
		t.Errorf("GetLastSummary() = %+v, want the most recent summary", got)
	}
	if !got.Style.Valid || got.Style.String != "with humor" {
		t.Errorf("GetLastSummary() Style = %+v, want stored style", got.Style)
	}

	otherChat, err := store.GetLastSummary(ctx, -200)
	if err != nil {
		t.Fatalf("GetLastSummary() for other chat failed: %v", err)
	}
	if otherChat != nil {
		t.Errorf("GetLastSummary() = %+v, want nil for chat without summaries", otherChat)
	}

	invalid := &database.Summary{
		ChatID:     -100,
		Author:     "gemini-2.0-flash",
		Text:       "backwards range",
		RangeStart: base.Add(time.Hour),
		RangeEnd:   base,
	}
	if err := store.SaveSummary(ctx, invalid); err == nil {
		t.Error("SaveSummary() accepted range_end before range_start")
	}
}

func TestGetStatistics(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	user := mustUser(t, store, 1, "ivan")
	mustUser(t, store, 2, "anna")
	mustSave(t, store, &database.Message{
		FromUserID: user.ID,
		ChatID:     -100,
		Text:       "hello",
		Date:       time.Now().UTC(),
	})

	stats, err := store.GetStatistics(ctx)
	if err != nil {
		t.Fatalf("GetStatistics() failed: %v", err)
	}
	if stats.Users != 2 || stats.Messages != 1 || stats.Summaries != 0 {
		t.Errorf("GetStatistics() = %+v, want {2 1 0}", stats)
	}
}

func TestRunSQLMaintenance(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	if err := store.RunSQLMaintenance(context.Background()); err != nil {
		t.Errorf("RunSQLMaintenance() failed: %v", err)
	}
}
