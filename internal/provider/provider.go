// Package provider implements LLM provider interfaces and clients.
package provider

import (
	"context"
	"errors"
)

// Common errors returned by LLM providers.
var (
	ErrProviderNotFound  = errors.New("provider not found")
	ErrModelNotAvailable = errors.New("model not available")
	ErrInvalidResponse   = errors.New("invalid response from provider")
)

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`    // "system", "user", or "assistant"
	Content string `json:"content"` // The message content
}

// ChatRequest contains the parameters for a chat completion request.
// Temperature is a pointer so an explicit zero is sent to the provider
// instead of falling back to the model default.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// ChatResponse contains the response from a chat completion request.
type ChatResponse struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	FinishReason string `json:"finish_reason"`
	Usage        Usage  `json:"usage"`
}

// Usage contains token usage information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Provider is the interface for LLM API clients.
type Provider interface {
	// ID returns the unique identifier for this provider.
	ID() string
	// Chat sends a completion request and returns the response.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	// ListModels returns all available models on this provider.
	ListModels(ctx context.Context) ([]string, error)
	// DefaultModel returns the configured default model.
	DefaultModel() string
}

// EstimateTokens approximates a token count for content when the
// provider reports no usage. Four characters per token is the usual
// rough cut for English text and code.
func EstimateTokens(content string) int {
	n := len(content) / 4
	if n == 0 && content != "" {
		n = 1
	}
	return n
}
