// Package completion adapts the OpenAI chat-completions API into the single
// request/response call the bot core needs.
package completion

import (
	"context"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/solacelabs/solace/internal/history"
)

// Model and Temperature are process-wide constants, not per-request settings.
const (
	Model       = openai.GPT3Dot5Turbo
	Temperature = 0.7
)

// DefaultTimeout bounds a single completion attempt.
const DefaultTimeout = 60 * time.Second

// Completer produces one generated reply for a persona plus history.
type Completer interface {
	Complete(ctx context.Context, persona history.Turn, h history.History) (string, error)
}

// Client is an OpenAI-backed Completer. It performs exactly one attempt per
// call and knows nothing about sessions.
type Client struct {
	api     *openai.Client
	timeout time.Duration
}

// NewClient creates a completion client. baseURL may be empty to use the
// public OpenAI endpoint; timeout <= 0 falls back to DefaultTimeout.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		api:     openai.NewClientWithConfig(cfg),
		timeout: timeout,
	}
}

// Complete sends [persona, history...] to the chat-completions API and
// returns the first generated choice. Any failure, including an empty choice
// list, is reported as a *completion.Error.
func (c *Client) Complete(ctx context.Context, persona history.Turn, h history.History) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 1+len(h))
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: persona.Content,
	})
	for _, turn := range h {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       Model,
		Messages:    messages,
		Temperature: Temperature,
	})
	if err != nil {
		return "", &Error{Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Err: errEmptyChoices}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
