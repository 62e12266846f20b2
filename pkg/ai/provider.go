// Package ai wraps the completion providers used to post-process
// transcriptions.
package ai

import (
	"context"
	"fmt"
)

// CompletionProvider performs a single-turn completion call.
type CompletionProvider interface {
	// Provider returns the provider name.
	Provider() string

	// Complete sends a system prompt and a user message and returns the
	// model's text response.
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// NewProvider creates the completion provider named by provider
// ("openai" or "anthropic").
func NewProvider(provider, apiKey, model string) (CompletionProvider, error) {
	switch provider {
	case "openai":
		return NewOpenAIProvider(apiKey, model), nil
	case "anthropic":
		return NewAnthropicProvider(apiKey, model), nil
	default:
		return nil, fmt.Errorf("unknown completion provider: %s", provider)
	}
}
