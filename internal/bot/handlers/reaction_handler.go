package handlers

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-telegram/bot/models"

	"github.com/iromess/chatmixbot/internal/database"
)

// reactionHandler logs emoji reactions as messages linked to their target.
type reactionHandler struct {
	deps HandlerDeps
}

func (h reactionHandler) Handle(ctx context.Context, reaction *models.MessageReactionUpdated) {
	deps := h.deps
	log := deps.Logger.With("handler", "reaction")

	chatID := reaction.Chat.ID

	if reaction.User == nil {
		log.DebugContext(ctx, "Anonymous reaction, dropping", "chat_id", chatID, "message_id", reaction.MessageID)
		return
	}

	target, err := deps.Store.GetMessageByTGID(ctx, chatID, int64(reaction.MessageID))
	if err != nil {
		log.ErrorContext(ctx, "Failed to look up reaction target", "error", err, "chat_id", chatID, "message_id", reaction.MessageID)
		return
	}
	if target == nil {
		log.WarnContext(ctx, "Reaction target not found in database, dropping",
			"chat_id", chatID, "message_id", reaction.MessageID)
		return
	}

	var emojis []string
	for _, r := range reaction.NewReaction {
		if r.ReactionTypeEmoji != nil && r.ReactionTypeEmoji.Emoji != "" {
			emojis = append(emojis, r.ReactionTypeEmoji.Emoji)
		}
	}
	if len(emojis) == 0 {
		log.DebugContext(ctx, "Reaction update carries no emoji, dropping",
			"chat_id", chatID, "message_id", reaction.MessageID)
		return
	}

	user, err := deps.Store.GetOrCreateUser(ctx, reaction.User.ID,
		reaction.User.Username, reaction.User.FirstName, reaction.User.LastName)
	if err != nil {
		log.ErrorContext(ctx, "Failed to resolve reacting user, dropping reaction",
			"error", err, "chat_id", chatID, "tg_user_id", reaction.User.ID)
		return
	}

	message := &database.Message{
		FromUserID:       user.ID,
		ChatID:           chatID,
		Text:             "Reaction: " + strings.Join(emojis, ""),
		Date:             time.Unix(int64(reaction.Date), 0).UTC(),
		ReplyToMessageID: sql.NullInt64{Int64: target.ID, Valid: true},
	}
	if err := deps.Store.SaveMessage(ctx, message); err != nil {
		log.ErrorContext(ctx, "Failed to save reaction", "error", err, "chat_id", chatID)
	}
}
