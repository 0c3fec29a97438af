package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values for optional configuration parameters.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false

	DefaultDBPath = "storage.db"

	DefaultGeminiModel              = "gemini-2.0-flash"
	DefaultGeminiSummaryTemperature = 0.9
	DefaultGeminiReplyTemperature   = 0.8
	DefaultGeminiSummaryMaxTokens   = 2000
	DefaultGeminiReplyMaxTokens     = 256
	DefaultGeminiTimeout            = 30 * time.Second

	DefaultMaintenanceSchedule = "0 4 * * *"
)

// DefaultSummaryInstruction is the fixed task description for summaries.
const DefaultSummaryInstruction = "You are a model that summarizes Telegram chat logs. " +
	"Pull together the gist of the discussion from the message history. " +
	"Do not list everything point by point; write a flowing text, " +
	"as if you were telling a friend what the chat was talking about."

// DefaultPersona conditions the model's tone for in-character replies.
const DefaultPersona = "You are Gennady, a slightly cocky, pedantic guy from the chat (a bot). " +
	"Reply in an engaging way, with snark, mild rudeness and a touch of arrogance, but without malice. " +
	"Go easier on the ladies. Do not write long texts."

// DefaultRoastStyle is the style directive applied to /summary output.
const DefaultRoastStyle = "write it with humor, poking fun at some of the chat members. " +
	"Don't be afraid to be cheeky, it makes it funnier"

// DefaultHelp is the /help and /start reply. The @botname placeholder is
// replaced with the bot's username at send time.
const DefaultHelp = `This bot (@botname) logs chat messages, tracks polls and reactions, and can build a summary for a given period.

Available commands:

/help - show this help
/start - show this help
/statistic - show logging statistics
/summary <date1> <time1> <date2> <time2> - summarize messages for the period (UTC); without arguments, covers the current day
/lastsummary - show the most recent summary for this chat

Example:
  /summary 01.07.2025 10:00 01.07.2025 15:00

Regular messages, reactions, polls and replies are stored so they can be reviewed or analyzed later. Replies keep a link to their target message, and summaries take into account who answered whom. When a poll is created, the bot reposts it under its own name to track the votes.`

func setDefaults() {
	viper.SetDefault("log.level", DefaultLogLevel)
	viper.SetDefault("log.json", DefaultLogJSON)

	viper.SetDefault("database.path", DefaultDBPath)

	viper.SetDefault("gemini.model_name", DefaultGeminiModel)
	viper.SetDefault("gemini.summary_temperature", DefaultGeminiSummaryTemperature)
	viper.SetDefault("gemini.reply_temperature", DefaultGeminiReplyTemperature)
	viper.SetDefault("gemini.summary_max_tokens", DefaultGeminiSummaryMaxTokens)
	viper.SetDefault("gemini.reply_max_tokens", DefaultGeminiReplyMaxTokens)
	viper.SetDefault("gemini.timeout", DefaultGeminiTimeout)
	viper.SetDefault("gemini.persona", DefaultPersona)
	viper.SetDefault("gemini.summary_instruction", DefaultSummaryInstruction)
	viper.SetDefault("gemini.roast_style", DefaultRoastStyle)

	viper.SetDefault("scheduler.tasks.sql_maintenance.enabled", true)
	viper.SetDefault("scheduler.tasks.sql_maintenance.schedule", DefaultMaintenanceSchedule)

	viper.SetDefault("messages.help", DefaultHelp)
	viper.SetDefault("messages.statistic", "Logged so far:\nUsers: %d\nMessages: %d\nSummaries: %d")
	viper.SetDefault("messages.summary_usage", "Usage: /summary [DD.MM.YYYY HH:MM DD.MM.YYYY HH:MM]\nExample: /summary 01.07.2025 10:00 01.07.2025 15:00\nWithout arguments the summary covers the current UTC day.")
	viper.SetDefault("messages.summary_progress", "Give me a moment, putting the summary together...")
	viper.SetDefault("messages.no_messages", "No messages found for this period.")
	viper.SetDefault("messages.no_summaries", "No summaries for this chat yet.")
	viper.SetDefault("messages.last_summary_header", "Last summary from %s (model %s), covering %s to %s UTC:")
	viper.SetDefault("messages.mention_empty_prompt", "You tagged me but didn't say anything. What do you want?")
	viper.SetDefault("messages.mention_thinking", "Let me think...")
	viper.SetDefault("messages.mention_apology", "Sorry, something went wrong on my side. Try again later.")
	viper.SetDefault("messages.model_error", "Error contacting model: %s")
}
