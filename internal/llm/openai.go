// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const defaultModelTimeout = 120 * time.Second

// OpenAIConfig configures an OpenAI-compatible chat completion model.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAIModel calls the chat completions API with a single user message.
type OpenAIModel struct {
	client *openai.Client
	model  string
}

// NewOpenAI builds a model client. BaseURL may point at any
// OpenAI-compatible server; it defaults to the public API.
func NewOpenAI(cfg OpenAIConfig) (*OpenAIModel, error) {
	if cfg.Model == "" {
		return nil, errors.New("model name is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key for model %s is missing", cfg.Model)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultModelTimeout
	}

	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	c.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIModel{
		client: openai.NewClientWithConfig(c),
		model:  cfg.Model,
	}, nil
}

// Name returns the configured model identifier.
func (m *OpenAIModel) Name() string { return m.model }

// Complete sends req as one user message and returns the first choice.
func (m *OpenAIModel) Complete(ctx context.Context, req Request) (string, error) {
	creq := openai.ChatCompletionRequest{
		Model: m.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	}
	if req.JSON {
		creq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := m.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		return "", fmt.Errorf("calling model %s: %w", m.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model %s returned no choices", m.model)
	}
	return resp.Choices[0].Message.Content, nil
}
