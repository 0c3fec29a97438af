package handlers

import (
	"log/slog"

	"github.com/iromess/chatmixbot/internal/config"
	"github.com/iromess/chatmixbot/internal/database"
	"github.com/iromess/chatmixbot/internal/gemini"
	"github.com/iromess/chatmixbot/internal/history"
)

// HandlerDeps provides dependencies for Telegram handlers.
type HandlerDeps struct {
	Logger       *slog.Logger
	Config       *config.Config
	Store        database.Store
	GeminiClient gemini.Client
	Assembler    *history.Assembler
}
