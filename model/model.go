// Package model abstracts LLM providers behind a minimal generation
// interface that always surfaces token usage, so every call can be fed into
// the cost estimator. Provider adapters live in the openai and anthropic
// subpackages; MockModel serves tests and examples.
package model

import (
	"context"
	"fmt"
)

// TokenUsage captures token counts reported by a provider for one call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Info contains metadata about a model implementation. Provider and Name are
// the pricing lookup pair used by the cost estimator.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// Request is the normalized model input produced by agents.
type Request struct {
	// Instructions is the system prompt, empty for none.
	Instructions string `json:"instructions,omitempty"`
	// Prompt is the user turn.
	Prompt string `json:"prompt"`
}

// Response is the completed generation with provider-reported usage.
type Response struct {
	Text         string     `json:"text"`
	FinishReason string     `json:"finish_reason"`
	Usage        TokenUsage `json:"usage"`
}

// Model is the minimal interface agents use to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Usage numbers are derived from text lengths (chars/4) so accounting paths
// exercise realistic non-zero values.
type MockModel struct {
	info      Info
	responses map[string]string
}

// NewMockModel constructs a MockModel identifying as name/provider.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for a prompt.
func (m *MockModel) AddResponse(prompt, response string) { m.responses[prompt] = response }

// Generate implements Model.
func (m *MockModel) Generate(_ context.Context, req Request) (*Response, error) {
	if req.Prompt == "" {
		return nil, fmt.Errorf("no prompt provided")
	}
	text, ok := m.responses[req.Prompt]
	if !ok {
		text = "mock response for: " + req.Prompt
	}
	prompt := (len(req.Instructions) + len(req.Prompt)) / 4
	completion := len(text) / 4
	return &Response{
		Text:         text,
		FinishReason: "stop",
		Usage: TokenUsage{
			PromptTokens:     prompt,
			CompletionTokens: completion,
			TotalTokens:      prompt + completion,
		},
	}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
