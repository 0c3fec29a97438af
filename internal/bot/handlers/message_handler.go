package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/iromess/chatmixbot/internal/database"
)

// mentionContextLimit is how many recent messages accompany a mention prompt.
const mentionContextLimit = 10

// messageHandler logs plain chat messages and answers @-mentions.
type messageHandler struct {
	deps HandlerDeps
}

// Handle routes a non-command message: mentions of the bot get an
// in-persona reply, everything else is logged.
func (h messageHandler) Handle(ctx context.Context, b *bot.Bot, msg *models.Message) {
	if h.isMention(msg) {
		h.HandleMention(ctx, b, msg)
		return
	}
	h.Ingest(ctx, msg)
}

// Ingest writes one message to the log. Failures are logged and the event
// is dropped; nothing is reported back to the chat.
func (h messageHandler) Ingest(ctx context.Context, msg *models.Message) {
	log := h.deps.Logger.With("handler", "message")

	if msg.From == nil {
		log.DebugContext(ctx, "Skipping message with nil sender", "chat_id", msg.Chat.ID)
		return
	}

	text := textForMessage(msg)
	if text == "" {
		log.DebugContext(ctx, "Skipping message with no textual representation",
			"chat_id", msg.Chat.ID, "message_id", msg.ID)
		return
	}

	user, err := h.deps.Store.GetOrCreateUser(ctx, msg.From.ID, msg.From.Username, msg.From.FirstName, msg.From.LastName)
	if err != nil {
		log.ErrorContext(ctx, "Failed to resolve message author, dropping message",
			"error", err, "chat_id", msg.Chat.ID, "tg_user_id", msg.From.ID)
		return
	}

	message := &database.Message{
		FromUserID:  user.ID,
		ChatID:      msg.Chat.ID,
		Text:        text,
		Date:        time.Unix(int64(msg.Date), 0).UTC(),
		TGMessageID: sql.NullInt64{Int64: int64(msg.ID), Valid: true},
	}

	if msg.ReplyToMessage != nil {
		target, err := h.deps.Store.GetMessageByTGID(ctx, msg.Chat.ID, int64(msg.ReplyToMessage.ID))
		if err != nil {
			log.WarnContext(ctx, "Failed to resolve reply target, storing without link",
				"error", err, "chat_id", msg.Chat.ID, "reply_to", msg.ReplyToMessage.ID)
		} else if target != nil {
			message.ReplyToMessageID = sql.NullInt64{Int64: target.ID, Valid: true}
		}
	}

	if err := h.deps.Store.SaveMessage(ctx, message); err != nil {
		log.ErrorContext(ctx, "Failed to save message, dropping",
			"error", err, "chat_id", msg.Chat.ID, "message_id", msg.ID)
	}
}

// HandleMention answers a message that @-mentions the bot.
func (h messageHandler) HandleMention(ctx context.Context, b *bot.Bot, msg *models.Message) {
	deps := h.deps
	log := deps.Logger.With("handler", "mention")

	chatID := msg.Chat.ID
	username := deps.Config.Telegram.BotInfo.Username

	prompt := stripMention(msg.Text, "@"+username)
	if prompt == "" {
		log.InfoContext(ctx, "Mention with empty prompt", "chat_id", chatID)
		h.reply(ctx, b, chatID, msg.ID, deps.Config.Messages.MentionEmptyPrompt)
		return
	}

	log.InfoContext(ctx, "Handling mention", "chat_id", chatID, "message_id", msg.ID)

	thinking, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          chatID,
		Text:            deps.Config.Messages.MentionThinking,
		ReplyParameters: &models.ReplyParameters{MessageID: msg.ID},
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send thinking message", "error", err, "chat_id", chatID)
	}

	historyText, _, err := deps.Assembler.Recent(ctx, chatID, mentionContextLimit)
	if err != nil {
		log.ErrorContext(ctx, "Failed to assemble mention context", "error", err, "chat_id", chatID)
		h.deleteThinking(ctx, b, chatID, thinking)
		h.reply(ctx, b, chatID, msg.ID, deps.Config.Messages.MentionApology)
		return
	}

	_, _ = b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping})

	result := deps.GeminiClient.Reply(ctx, prompt+"\nContext:\n"+historyText)
	h.deleteThinking(ctx, b, chatID, thinking)

	if !result.Ok() {
		log.WarnContext(ctx, "Persona reply generation failed",
			"chat_id", chatID, "kind", result.Err.Kind, "message", result.Err.Message)
		h.reply(ctx, b, chatID, msg.ID, fmt.Sprintf(deps.Config.Messages.ModelError, result.Err.Message))
		return
	}

	sent, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          chatID,
		Text:            result.Text,
		ReplyParameters: &models.ReplyParameters{MessageID: msg.ID},
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send persona reply", "error", err, "chat_id", chatID)
		return
	}

	h.saveBotReply(ctx, chatID, sent.ID, result.Text)
}

func (h messageHandler) isMention(msg *models.Message) bool {
	botInfo := h.deps.Config.Telegram.BotInfo
	if botInfo == nil || botInfo.Username == "" || msg.Text == "" {
		return false
	}
	if strings.HasPrefix(msg.Text, "/") {
		return false
	}
	return strings.Contains(strings.ToLower(msg.Text), "@"+strings.ToLower(botInfo.Username))
}

// saveBotReply logs the bot's own reply so later transcripts include it.
func (h messageHandler) saveBotReply(ctx context.Context, chatID int64, sentID int, text string) {
	log := h.deps.Logger.With("handler", "mention")

	botInfo := h.deps.Config.Telegram.BotInfo
	botUser, err := h.deps.Store.GetUserByTGID(ctx, botInfo.ID)
	if err != nil || botUser == nil {
		log.WarnContext(ctx, "Bot user not available, skipping reply persistence",
			"error", err, "chat_id", chatID)
		return
	}

	message := &database.Message{
		FromUserID:  botUser.ID,
		ChatID:      chatID,
		Text:        text,
		Date:        time.Now().UTC(),
		TGMessageID: sql.NullInt64{Int64: int64(sentID), Valid: true},
	}
	if err := h.deps.Store.SaveMessage(ctx, message); err != nil {
		log.ErrorContext(ctx, "Failed to save bot reply", "error", err, "chat_id", chatID)
	}
}

func (h messageHandler) reply(ctx context.Context, b *bot.Bot, chatID int64, replyTo int, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          chatID,
		Text:            text,
		ReplyParameters: &models.ReplyParameters{MessageID: replyTo},
	})
	if err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
	}
}

func (h messageHandler) deleteThinking(ctx context.Context, b *bot.Bot, chatID int64, thinking *models.Message) {
	if thinking == nil {
		return
	}
	if _, err := b.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: thinking.ID}); err != nil {
		h.deps.Logger.DebugContext(ctx, "Failed to delete thinking message", "error", err, "chat_id", chatID)
	}
}

// stripMention removes every case-insensitive occurrence of mention from
// text and trims the remainder.
func stripMention(text, mention string) string {
	lowerMention := strings.ToLower(mention)
	var b strings.Builder
	for {
		idx := strings.Index(strings.ToLower(text), lowerMention)
		if idx < 0 {
			b.WriteString(text)
			break
		}
		b.WriteString(text[:idx])
		text = text[idx+len(mention):]
	}
	return strings.TrimSpace(b.String())
}

// textForMessage derives the stored textual representation of a message:
// the literal text, or a media-type label plus any caption.
func textForMessage(msg *models.Message) string {
	if msg.Text != "" {
		return msg.Text
	}

	label := ""
	switch {
	case len(msg.Photo) > 0:
		label = "*photo*"
	case msg.Video != nil:
		label = "*video*"
	case msg.Sticker != nil:
		label = "*sticker*"
	case msg.Voice != nil:
		label = "*voice*"
	case msg.VideoNote != nil:
		label = "*video note*"
	case msg.Animation != nil:
		label = "*animation*"
	case msg.Audio != nil:
		label = "*audio*"
	case msg.Document != nil:
		label = "*document*"
	}

	switch {
	case label == "":
		return strings.TrimSpace(msg.Caption)
	case msg.Caption != "":
		return label + " " + msg.Caption
	default:
		return label
	}
}
