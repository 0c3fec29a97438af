package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewDispatchHandler returns the default handler for all updates no command
// handler matched: poll votes, reactions, new polls, and plain messages.
func NewDispatchHandler(deps HandlerDeps) bot.HandlerFunc {
	d := dispatchHandler{
		deps:      deps,
		messages:  messageHandler{deps},
		polls:     pollHandler{deps},
		reactions: reactionHandler{deps},
	}
	return d.Handle
}

type dispatchHandler struct {
	deps      HandlerDeps
	messages  messageHandler
	polls     pollHandler
	reactions reactionHandler
}

func (d dispatchHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	switch {
	case update.PollAnswer != nil:
		d.polls.HandleAnswer(ctx, update.PollAnswer)
	case update.MessageReaction != nil:
		d.reactions.Handle(ctx, update.MessageReaction)
	case update.Message != nil && update.Message.Poll != nil:
		d.polls.HandlePollMessage(ctx, b, update.Message)
	case update.EditedMessage != nil:
		// Edits are logged as fresh rows, the original stays untouched.
		d.messages.Ingest(ctx, update.EditedMessage)
	case update.Message != nil:
		d.messages.Handle(ctx, b, update.Message)
	default:
		d.deps.Logger.DebugContext(ctx, "Ignoring update with no handled payload", "update_id", update.ID)
	}
}
