// Package genai generates the narrative call-prep summary from an
// aggregated patient record using the OpenAI API.
//
// The generated summary is advisory: callers keep the deterministic
// snapshot as the source of truth and fall back to it when generation
// fails.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/BTreeMap/CallPrep/internal/models"
)

// DefaultModel is used when no model is configured.
const DefaultModel = openai.ChatModelGPT4oMini

// summarySystemPrompt instructs the model to restate record facts only,
// never to infer or invent clinical details.
const summarySystemPrompt = `You are a clinical call-preparation assistant for care managers.
You will receive an aggregated patient record as JSON. Write a short,
professional briefing a care manager can read before calling the patient.
Use ONLY facts present in the record. If a field is missing, say it is
not on record; never guess or invent clinical information. Do not give
medical advice. Keep the briefing under 200 words.`

// ErrNoChoicesReturned indicates the API responded without any choices.
var ErrNoChoicesReturned = errors.New("no choices returned")

// chatService defines minimal interface for chat completions.
type chatService interface {
	Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error)
}

// openaiChatAdapter adapts the OpenAI SDK chat service to chatService.
type openaiChatAdapter struct {
	client openai.Client
}

func (a openaiChatAdapter) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return openai.ChatCompletion{}, err
	}
	return *resp, nil
}

// Opts holds configuration options for the GenAI client.
type Opts struct {
	APIKey string
	Model  string
}

// Option defines a configuration option for the GenAI client.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel sets the chat model used for summaries.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// Client wraps the OpenAI chat completion service.
type Client struct {
	chat  chatService
	model string
}

// NewClient creates a GenAI client. The API key falls back to the
// OPENAI_API_KEY environment variable.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key must be provided")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	slog.Debug("GenAI client config loaded", "model", cfg.Model)

	cli := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	return &Client{chat: openaiChatAdapter{client: cli}, model: cfg.Model}, nil
}

// GenerateSummary sends system and user prompts and returns the first
// choice's content.
func (c *Client) GenerateSummary(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	}
	resp, err := c.chat.Create(ctx, params)
	if err != nil {
		slog.Error("GenAI.GenerateSummary: API call failed", "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoicesReturned
	}
	return resp.Choices[0].Message.Content, nil
}

// ClinicalSummary generates the call-prep briefing for one patient
// record.
func (c *Client) ClinicalSummary(ctx context.Context, record *models.PatientRecord) (string, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to encode patient record: %w", err)
	}
	slog.Debug("GenAI.ClinicalSummary: generating summary", "model", c.model)
	return c.GenerateSummary(ctx, summarySystemPrompt, string(payload))
}
