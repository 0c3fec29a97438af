// Package gemini implements the generative model integration used for chat
// summaries and in-character replies.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/iromess/chatmixbot/internal/config"
	"github.com/iromess/chatmixbot/internal/database"
)

// Client defines the model operations used by the command layer. Both
// methods report failure through the returned Result rather than an error
// value, so callers always have something to present to the chat.
type Client interface {
	// Summarize generates a summary of the request's transcript and, on
	// success, persists it as a Summary row.
	Summarize(ctx context.Context, req SummaryRequest) Result

	// Reply generates a short in-persona reply to an arbitrary prompt.
	// Nothing is persisted.
	Reply(ctx context.Context, prompt string) Result
}

// SummaryRequest carries one summarization call.
type SummaryRequest struct {
	ChatID     int64
	Transcript string
	Style      string
	RangeStart time.Time
	RangeEnd   time.Time
}

// SummarySink persists generated summaries.
type SummarySink interface {
	SaveSummary(ctx context.Context, summary *database.Summary) error
}

type sdkClient struct {
	genaiClient *genai.Client
	sink        SummarySink
	log         *slog.Logger

	modelName          string
	timeout            time.Duration
	persona            string
	summaryInstruction string

	summaryTemperature float32
	replyTemperature   float32
	summaryMaxTokens   int32
	replyMaxTokens     int32
}

// NewClient creates a Gemini-backed Client with the provided configuration.
func NewClient(ctx context.Context, cfg config.GeminiConfig, sink SummarySink, log *slog.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized successfully", "model", cfg.ModelName)
	return &sdkClient{
		genaiClient:        gi,
		sink:               sink,
		log:                logger,
		modelName:          cfg.ModelName,
		timeout:            cfg.Timeout,
		persona:            cfg.Persona,
		summaryInstruction: cfg.SummaryInstruction,
		summaryTemperature: cfg.SummaryTemperature,
		replyTemperature:   cfg.ReplyTemperature,
		summaryMaxTokens:   cfg.SummaryMaxTokens,
		replyMaxTokens:     cfg.ReplyMaxTokens,
	}, nil
}

func (c *sdkClient) Summarize(ctx context.Context, req SummaryRequest) Result {
	c.log.DebugContext(ctx, "Generating summary",
		"chat_id", req.ChatID, "transcript_len", len(req.Transcript),
		"range_start", req.RangeStart, "range_end", req.RangeEnd)

	cfg := c.contentConfig(c.summaryTemperature, c.summaryMaxTokens,
		buildSummaryInstruction(c.summaryInstruction, req.Style, c.persona))

	result := c.generate(ctx, "summary", req.Transcript, cfg)
	if !result.Ok() {
		return result
	}

	summary := &database.Summary{
		ChatID:     req.ChatID,
		Author:     c.modelName,
		Text:       result.Text,
		CreatedAt:  time.Now().UTC(),
		RangeStart: req.RangeStart,
		RangeEnd:   req.RangeEnd,
	}
	if req.Style != "" {
		summary.Style.String = req.Style
		summary.Style.Valid = true
	}

	// A summary that was generated but not saved is still worth returning.
	if err := c.sink.SaveSummary(ctx, summary); err != nil {
		c.log.ErrorContext(ctx, "Failed to persist generated summary",
			"chat_id", req.ChatID, "error", err)
	}

	return result
}

func (c *sdkClient) Reply(ctx context.Context, prompt string) Result {
	c.log.DebugContext(ctx, "Generating persona reply", "prompt_len", len(prompt))

	cfg := c.contentConfig(c.replyTemperature, c.replyMaxTokens, c.persona)
	return c.generate(ctx, "reply", prompt, cfg)
}

func (c *sdkClient) contentConfig(temperature float32, maxTokens int32, systemInstruction string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: maxTokens,

		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
		},
	}
	if systemInstruction != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}}
	}
	return cfg
}

// generate performs one model call with a fixed overall timeout. Failures
// are classified into a GenError; no retries are attempted.
func (c *sdkClient) generate(ctx context.Context, op, userText string, cfg *genai.GenerateContentConfig) Result {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := []*genai.Content{genai.NewContentFromText(userText, genai.RoleUser)}

	resp, err := c.genaiClient.Models.GenerateContent(callCtx, c.modelName, contents, cfg)
	if err != nil {
		return c.classifyError(ctx, op, err)
	}

	return c.extractText(ctx, op, resp)
}

func (c *sdkClient) classifyError(ctx context.Context, op string, err error) Result {
	if errors.Is(err, context.DeadlineExceeded) {
		c.log.WarnContext(ctx, "Gemini call timed out", "operation", op, "timeout", c.timeout)
		return failure(KindTimeout, "request timed out after %s", c.timeout)
	}

	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		c.log.ErrorContext(ctx, "Gemini API call failed", "operation", op, "code", apiErr.Code, "error", err)
		return failure(KindAPI, "API error %d: %s", apiErr.Code, apiErr.Message)
	}

	c.log.ErrorContext(ctx, "Gemini call failed", "operation", op, "error", err)
	return failure(KindAPI, "%v", err)
}

func (c *sdkClient) extractText(ctx context.Context, op string, resp *genai.GenerateContentResponse) Result {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reasonMsg := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reasonMsg = resp.PromptFeedback.BlockReasonMessage
		}
		c.log.WarnContext(ctx, "Gemini request blocked", "operation", op, "reason", reasonMsg)
		return failure(KindBlocked, "blocked by safety filter: %s", reasonMsg)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		c.log.WarnContext(ctx, "Gemini response missing candidates or content", "operation", op, "finish_reason", finishReason)
		return failure(KindEmpty, "no content returned, finish reason: %s", finishReason)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		c.log.WarnContext(ctx, "Gemini response text is empty", "operation", op)
		return failure(KindEmpty, "empty response text")
	}

	return Result{Text: text}
}
