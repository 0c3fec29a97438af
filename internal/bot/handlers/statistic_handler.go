package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStatisticHandler returns a handler for the /statistic command.
func NewStatisticHandler(deps HandlerDeps) bot.HandlerFunc {
	return statisticHandler{deps}.Handle
}

type statisticHandler struct {
	deps HandlerDeps
}

func (h statisticHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "statistic")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /statistic command", "chat_id", chatID, "user_id", update.Message.From.ID)

	stats, err := h.deps.Store.GetStatistics(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to get statistics", "error", err)
		return
	}

	reply := fmt.Sprintf(h.deps.Config.Messages.Statistic, stats.Users, stats.Messages, stats.Summaries)
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: reply}); err != nil {
		log.ErrorContext(ctx, "Failed to send statistics message", "error", err, "chat_id", chatID)
	}
}
