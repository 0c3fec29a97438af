package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/iromess/chatmixbot/internal/database"
)

// unknownOption is rendered when a vote references an option index the
// stored poll document does not have.
const unknownOption = "<unknown option>"

// pollDocument is the serialized form of a tracked poll, stored in the
// polls table.
type pollDocument struct {
	Question string               `json:"question"`
	Options  []pollDocumentOption `json:"options"`
}

type pollDocumentOption struct {
	Text string `json:"text"`
}

// pollHandler reposts user-created polls under the bot's name and logs the
// votes they receive.
type pollHandler struct {
	deps HandlerDeps
}

// HandlePollMessage replaces a user-created poll with a bot-owned repost so
// vote updates are delivered to the bot, and logs the poll as a message.
func (h pollHandler) HandlePollMessage(ctx context.Context, b *bot.Bot, msg *models.Message) {
	deps := h.deps
	log := deps.Logger.With("handler", "poll")

	poll := msg.Poll
	chatID := msg.Chat.ID

	if msg.From == nil {
		log.WarnContext(ctx, "Poll message has no sender, dropping", "chat_id", chatID)
		return
	}

	log.InfoContext(ctx, "Handling poll message", "chat_id", chatID, "question", poll.Question)

	user, err := deps.Store.GetOrCreateUser(ctx, msg.From.ID, msg.From.Username, msg.From.FirstName, msg.From.LastName)
	if err != nil {
		log.ErrorContext(ctx, "Failed to resolve poll creator, dropping poll", "error", err, "chat_id", chatID)
		return
	}

	// The original is replaced by the repost; a failed delete is tolerable.
	if _, err := b.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: msg.ID}); err != nil {
		log.WarnContext(ctx, "Failed to delete original poll message", "error", err, "chat_id", chatID)
	}

	var sb strings.Builder
	sb.WriteString("Poll: ")
	sb.WriteString(poll.Question)
	sb.WriteString("\nOptions:\n")
	for _, opt := range poll.Options {
		sb.WriteString("- ")
		sb.WriteString(opt.Text)
		sb.WriteString("\n")
	}

	message := &database.Message{
		FromUserID:  user.ID,
		ChatID:      chatID,
		Text:        strings.TrimSpace(sb.String()),
		Date:        time.Unix(int64(msg.Date), 0).UTC(),
		TGMessageID: sql.NullInt64{Int64: int64(msg.ID), Valid: true},
	}
	if err := deps.Store.SaveMessage(ctx, message); err != nil {
		log.ErrorContext(ctx, "Failed to save poll message", "error", err, "chat_id", chatID)
	}

	options := make([]models.InputPollOption, 0, len(poll.Options))
	for _, opt := range poll.Options {
		options = append(options, models.InputPollOption{Text: opt.Text})
	}

	isAnonymous := poll.IsAnonymous
	sent, err := b.SendPoll(ctx, &bot.SendPollParams{
		ChatID:                chatID,
		Question:              fmt.Sprintf("Poll from %s\n\n%s", user.DisplayName(), poll.Question),
		Options:               options,
		IsAnonymous:           &isAnonymous,
		AllowsMultipleAnswers: poll.AllowsMultipleAnswers,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to repost poll", "error", err, "chat_id", chatID)
		return
	}
	if sent.Poll == nil {
		log.WarnContext(ctx, "Reposted poll message carries no poll payload", "chat_id", chatID)
		return
	}

	doc := pollDocument{Question: poll.Question}
	for _, opt := range poll.Options {
		doc.Options = append(doc.Options, pollDocumentOption{Text: opt.Text})
	}
	encoded, err := json.Marshal(doc)
	if err != nil {
		log.ErrorContext(ctx, "Failed to serialize poll document", "error", err, "chat_id", chatID)
		return
	}

	err = deps.Store.SavePoll(ctx, &database.Poll{
		PollID:   sent.Poll.ID,
		ChatID:   chatID,
		Question: poll.Question,
		Options:  string(encoded),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to save reposted poll", "error", err, "chat_id", chatID, "poll_id", sent.Poll.ID)
	}
}

// HandleAnswer logs one vote-notice message per selected option of a
// tracked poll.
func (h pollHandler) HandleAnswer(ctx context.Context, answer *models.PollAnswer) {
	deps := h.deps
	log := deps.Logger.With("handler", "poll_answer")

	log.InfoContext(ctx, "Received poll answer", "poll_id", answer.PollID)

	if answer.User == nil {
		log.WarnContext(ctx, "Poll answer without a user, dropping", "poll_id", answer.PollID)
		return
	}

	user, err := deps.Store.GetUserByTGID(ctx, answer.User.ID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to look up voter", "error", err, "tg_user_id", answer.User.ID)
		return
	}
	if user == nil {
		log.WarnContext(ctx, "Voter not found in database, dropping vote", "tg_user_id", answer.User.ID)
		return
	}

	poll, err := deps.Store.GetPollByPollID(ctx, answer.PollID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to look up poll", "error", err, "poll_id", answer.PollID)
		return
	}
	if poll == nil {
		log.WarnContext(ctx, "Poll not found in database, dropping vote", "poll_id", answer.PollID)
		return
	}

	var doc pollDocument
	if err := json.Unmarshal([]byte(poll.Options), &doc); err != nil {
		log.ErrorContext(ctx, "Failed to parse stored poll document", "error", err, "poll_id", answer.PollID)
		return
	}

	var optionLines strings.Builder
	for _, opt := range doc.Options {
		optionLines.WriteString("- ")
		optionLines.WriteString(opt.Text)
		optionLines.WriteString("\n")
	}

	for _, idx := range answer.OptionIDs {
		optionText := unknownOption
		if idx >= 0 && idx < len(doc.Options) {
			optionText = doc.Options[idx].Text
		}

		text := fmt.Sprintf("Poll: %s\nOptions:\n%s%s voted for: '%s'",
			doc.Question, optionLines.String(), user.Label(), optionText)

		message := &database.Message{
			FromUserID: user.ID,
			ChatID:     poll.ChatID,
			Text:       text,
			Date:       time.Now().UTC(),
		}
		if err := deps.Store.SaveMessage(ctx, message); err != nil {
			log.ErrorContext(ctx, "Failed to save vote notice", "error", err, "poll_id", answer.PollID)
			continue
		}
		log.InfoContext(ctx, "Vote recorded", "poll_id", answer.PollID, "voter", user.Label(), "option", optionText)
	}
}
