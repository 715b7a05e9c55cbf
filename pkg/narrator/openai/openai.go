// Package openai implements the narration provider over the OpenAI
// chat completion API.
package openai

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o-mini"

	systemPrompt = "You are a friendly computer science teaching assistant. " +
		"You narrate graph traversals for students in plain language, briefly and accurately."
)

// Provider narrates via OpenAI chat completions.
type Provider struct {
	client *openai.Client
	model  string
}

// New creates a provider. An empty model falls back to DefaultModel.
func New(apiKey, model string) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key not set")
	}
	if model == "" {
		model = DefaultModel
		slog.Debug("narration model not set, using default", "model", model)
	}
	return &Provider{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// Narrate sends the prompt as a single-turn chat completion.
func (p *Provider) Narrate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
