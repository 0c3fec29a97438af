package handlers

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"

	"github.com/iromess/chatmixbot/internal/text"
)

// maxMessageLength is the transport's message-size ceiling. Longer texts
// are sent as consecutive chunks.
const maxMessageLength = 4000

// sendChunked sends body to the chat in chunks of at most maxMessageLength
// runes. Each send's error is logged; later chunks are still attempted.
func sendChunked(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, body string) {
	for i, part := range text.Chunk(body, maxMessageLength) {
		_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: part})
		if err != nil {
			log.ErrorContext(ctx, "Failed to send message chunk", "error", err, "chat_id", chatID, "chunk", i)
		}
	}
}
