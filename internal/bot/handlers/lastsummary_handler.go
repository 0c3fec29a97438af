package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// lastSummaryTimeLayout formats the timestamps in the /lastsummary header.
const lastSummaryTimeLayout = "02.01.2006 15:04"

// NewLastSummaryHandler returns a handler for the /lastsummary command.
func NewLastSummaryHandler(deps HandlerDeps) bot.HandlerFunc {
	return lastSummaryHandler{deps}.Handle
}

type lastSummaryHandler struct {
	deps HandlerDeps
}

func (h lastSummaryHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	deps := h.deps
	log := deps.Logger.With("handler", "lastsummary")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /lastsummary command", "chat_id", chatID, "user_id", update.Message.From.ID)

	summary, err := deps.Store.GetLastSummary(ctx, chatID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to get last summary", "error", err, "chat_id", chatID)
		return
	}
	if summary == nil {
		if _, sendErr := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: deps.Config.Messages.NoSummaries}); sendErr != nil {
			log.ErrorContext(ctx, "Failed to send no-summaries message", "error", sendErr, "chat_id", chatID)
		}
		return
	}

	header := fmt.Sprintf(deps.Config.Messages.LastSummaryHeader,
		summary.CreatedAt.UTC().Format(lastSummaryTimeLayout),
		summary.Author,
		summary.RangeStart.UTC().Format(lastSummaryTimeLayout),
		summary.RangeEnd.UTC().Format(lastSummaryTimeLayout))
	if summary.Style.Valid && summary.Style.String != "" {
		header += "\nStyle: " + summary.Style.String
	}

	sendChunked(ctx, b, log, chatID, header+"\n\n"+summary.Text)
}
