package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/iromess/chatmixbot/internal/gemini"
)

// NewSummaryHandler returns a handler for the /summary command.
func NewSummaryHandler(deps HandlerDeps) bot.HandlerFunc {
	return summaryHandler{deps}.Handle
}

type summaryHandler struct {
	deps HandlerDeps
}

func (h summaryHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	deps := h.deps
	log := deps.Logger.With("handler", "summary")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /summary command", "chat_id", chatID, "user_id", update.Message.From.ID)

	start, end, err := parseSummaryRange(commandArgs(update.Message.Text), time.Now())
	if err != nil {
		log.InfoContext(ctx, "Malformed /summary arguments", "chat_id", chatID, "reason", err)
		if _, sendErr := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: deps.Config.Messages.SummaryUsage}); sendErr != nil {
			log.ErrorContext(ctx, "Failed to send usage message", "error", sendErr, "chat_id", chatID)
		}
		return
	}

	transcript, count, err := deps.Assembler.Range(ctx, chatID, start, end)
	if err != nil {
		log.ErrorContext(ctx, "Failed to assemble history", "error", err, "chat_id", chatID)
		return
	}
	if count == 0 {
		log.InfoContext(ctx, "No messages in requested range", "chat_id", chatID, "start", start, "end", end)
		if _, sendErr := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: deps.Config.Messages.NoMessages}); sendErr != nil {
			log.ErrorContext(ctx, "Failed to send empty-range message", "error", sendErr, "chat_id", chatID)
		}
		return
	}

	if _, sendErr := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: deps.Config.Messages.SummaryProgress}); sendErr != nil {
		log.ErrorContext(ctx, "Failed to send progress message", "error", sendErr, "chat_id", chatID)
	}
	_, _ = b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping})

	result := deps.GeminiClient.Summarize(ctx, gemini.SummaryRequest{
		ChatID:     chatID,
		Transcript: transcript,
		Style:      deps.Config.Gemini.RoastStyle,
		RangeStart: start,
		RangeEnd:   end,
	})
	if !result.Ok() {
		log.WarnContext(ctx, "Summary generation failed", "chat_id", chatID, "kind", result.Err.Kind, "message", result.Err.Message)
		errText := fmt.Sprintf(deps.Config.Messages.ModelError, result.Err.Message)
		if _, sendErr := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: errText}); sendErr != nil {
			log.ErrorContext(ctx, "Failed to send model error message", "error", sendErr, "chat_id", chatID)
		}
		return
	}

	log.InfoContext(ctx, "Summary generated", "chat_id", chatID, "messages", count, "summary_len", len(result.Text))
	sendChunked(ctx, b, log, chatID, result.Text)
}
