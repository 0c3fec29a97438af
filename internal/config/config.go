// Package config manages application configuration from default values,
// config.yaml, and BOT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-telegram/bot/models"
	"github.com/spf13/viper"
)

// Config defines the application configuration. Values can be set via
// config.yaml or environment variables prefixed with BOT_
// (e.g. BOT_TELEGRAM_TOKEN).
type Config struct {
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// TelegramConfig holds Telegram transport settings.
type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`

	// BotInfo is filled at startup from GetMe, never from config files.
	BotInfo *models.User `mapstructure:"-"`
}

// GeminiConfig holds generative model settings.
type GeminiConfig struct {
	APIKey             string        `mapstructure:"api_key"             validate:"required"`
	ModelName          string        `mapstructure:"model_name"          validate:"required"`
	SummaryTemperature float32       `mapstructure:"summary_temperature" validate:"min=0,max=2"`
	ReplyTemperature   float32       `mapstructure:"reply_temperature"   validate:"min=0,max=2"`
	SummaryMaxTokens   int32         `mapstructure:"summary_max_tokens"  validate:"min=1"`
	ReplyMaxTokens     int32         `mapstructure:"reply_max_tokens"    validate:"min=1"`
	Timeout            time.Duration `mapstructure:"timeout"             validate:"min=1s,max=10m"`
	Persona            string        `mapstructure:"persona"`
	SummaryInstruction string        `mapstructure:"summary_instruction" validate:"required"`
	RoastStyle         string        `mapstructure:"roast_style"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// SchedulerConfig holds the background task schedules, keyed by task name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a named background task with a cron schedule.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// MessagesConfig holds all user-facing reply strings.
type MessagesConfig struct {
	Help               string `mapstructure:"help"                 validate:"required"`
	Statistic          string `mapstructure:"statistic"            validate:"required"`
	SummaryUsage       string `mapstructure:"summary_usage"        validate:"required"`
	SummaryProgress    string `mapstructure:"summary_progress"     validate:"required"`
	NoMessages         string `mapstructure:"no_messages"          validate:"required"`
	NoSummaries        string `mapstructure:"no_summaries"         validate:"required"`
	LastSummaryHeader  string `mapstructure:"last_summary_header"  validate:"required"`
	MentionEmptyPrompt string `mapstructure:"mention_empty_prompt" validate:"required"`
	MentionThinking    string `mapstructure:"mention_thinking"     validate:"required"`
	MentionApology     string `mapstructure:"mention_apology"      validate:"required"`
	ModelError         string `mapstructure:"model_error"          validate:"required"`
}

// Load reads configuration in order of precedence: defaults, the config
// file at path (or config.yaml in the working directory when path is
// empty), BOT_* environment variables. A missing config file is not an
// error.
func Load(path string) (*Config, error) {
	setDefaults()

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("BOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}
