// Package genai provides free-text generation backed by the OpenAI chat
// completions API.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Error variables for client construction and generation.
var (
	ErrMissingAPIKey     = errors.New("OpenAI API key not set")
	ErrNoChoicesReturned = errors.New("no choices returned")
)

// Defaults used when no option overrides them.
const (
	DefaultModel       = string(openai.ChatModelGPT4oMini)
	DefaultTemperature = 0.7
	DefaultTopP        = 0.9
	DefaultMaxTokens   = 80
)

// chatService defines minimal interface for chat completions.
type chatService interface {
	Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error)
}

// completionsAdapter adapts the SDK completions service to chatService.
type completionsAdapter struct {
	svc *openai.ChatCompletionService
}

func (a completionsAdapter) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	resp, err := a.svc.New(ctx, params)
	if err != nil {
		return openai.ChatCompletion{}, err
	}
	return *resp, nil
}

// Client wraps the OpenAI chat completion service for short replies.
type Client struct {
	chat        chatService
	apiKey      string
	model       string
	temperature float64
	topP        float64
	maxTokens   int64
	debugMode   bool
	stateDir    string
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the API key. Without it the OPENAI_API_KEY environment
// variable is used.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithModel sets the chat model.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *Client) { c.temperature = t }
}

// WithTopP sets nucleus sampling.
func WithTopP(p float64) Option {
	return func(c *Client) { c.topP = p }
}

// WithMaxTokens caps the completion length.
func WithMaxTokens(n int64) Option {
	return func(c *Client) { c.maxTokens = n }
}

// WithDebug writes every request and response as JSON under stateDir/debug.
func WithDebug(stateDir string) Option {
	return func(c *Client) {
		c.debugMode = stateDir != ""
		c.stateDir = stateDir
	}
}

// NewClient initializes a client. It fails with ErrMissingAPIKey when neither
// WithAPIKey nor OPENAI_API_KEY provides a key.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		model:       DefaultModel,
		temperature: DefaultTemperature,
		topP:        DefaultTopP,
		maxTokens:   DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.apiKey == "" {
		c.apiKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	}
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	cli := openai.NewClient(option.WithAPIKey(c.apiKey))
	c.chat = completionsAdapter{svc: &cli.Chat.Completions}
	slog.Debug("NewClient: GenAI client created", "model", c.model, "maxTokens", c.maxTokens)
	return c, nil
}

// GeneratePrompt generates a reply with a background context.
func (c *Client) GeneratePrompt(systemPrompt, userPrompt string) (string, error) {
	return c.GeneratePromptWithContext(context.Background(), systemPrompt, userPrompt)
}

// GeneratePromptWithContext generates a reply to userPrompt under systemPrompt.
func (c *Client) GeneratePromptWithContext(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature:         openai.Float(c.temperature),
		TopP:                openai.Float(c.topP),
		MaxCompletionTokens: openai.Int(c.maxTokens),
	}

	start := time.Now()
	resp, err := c.chat.Create(ctx, params)
	if err != nil {
		slog.Error("Client.GeneratePromptWithContext: completion failed", "model", c.model, "error", err)
		return "", fmt.Errorf("chat completion: %w", err)
	}
	c.writeDebugLog("GeneratePromptWithContext", params, resp)

	if len(resp.Choices) == 0 {
		slog.Warn("Client.GeneratePromptWithContext: empty choices", "model", c.model)
		return "", ErrNoChoicesReturned
	}
	content := resp.Choices[0].Message.Content
	slog.Debug("Client.GeneratePromptWithContext: completion received", "model", c.model, "length", len(content), "elapsed", time.Since(start))
	return content, nil
}

// writeDebugLog records one exchange when debug mode is on. Failures are
// logged and otherwise ignored.
func (c *Client) writeDebugLog(method string, params openai.ChatCompletionNewParams, resp openai.ChatCompletion) {
	if !c.debugMode || c.stateDir == "" {
		return
	}
	dir := filepath.Join(c.stateDir, "debug")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Warn("Client.writeDebugLog: cannot create debug directory", "dir", dir, "error", err)
		return
	}

	now := time.Now()
	entry := map[string]any{
		"timestamp": now.Format(time.RFC3339Nano),
		"method":    method,
		"model":     c.model,
		"params":    params,
		"response":  resp,
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		slog.Warn("Client.writeDebugLog: marshal failed", "error", err)
		return
	}
	name := fmt.Sprintf("%s_%s.json", now.Format("20060102T150405.000000000"), method)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		slog.Warn("Client.writeDebugLog: write failed", "error", err)
	}
}
