// Package llm wraps the OpenAI chat-completion API for answer generation.
package llm

import (
	"context"

	"github.com/RoamlyAI/roamly-mvp/engine/domain"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = "gpt-4.1-mini"

// DefaultSystemPrompt is the single system instruction sent with every turn.
const DefaultSystemPrompt = "You are a helpful assistant."

// Config holds the generation provider settings.
type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	SystemPrompt string
}

// Client performs single-turn chat completions. Safe for concurrent use.
type Client struct {
	api    *openai.Client
	config Config
}

// New creates a generation client. An empty API key is accepted here and
// reported as a configuration error on first use.
func New(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:    openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}
}

// Complete sends the prompt as the sole user turn and returns the first
// completion's text. A response with no choices yields an empty string, not
// an error; an empty answer is a valid terminal state.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.config.APIKey == "" {
		return "", domain.ConfigErrorf("llm: OPENAI_API_KEY is not set")
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.config.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", domain.GenerationErrorf("llm: chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
