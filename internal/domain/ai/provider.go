// Package ai defines the contract every layout generation backend
// satisfies. The companion treats backends as interchangeable: the
// deterministic stub, a local Ollama instance and remote APIs all
// answer the same completion call.
package ai

import (
	"context"
)

// CompletionRequest is one prompt to the backend. For layout work the
// system prompt pins the JSON output contract and Prompt carries the
// structured requirements.
type CompletionRequest struct {
	Prompt      string
	System      string
	Temperature float32
	MaxTokens   int
}

// CompletionResponse is the backend's answer.
type CompletionResponse struct {
	Text  string
	Usage TokenUsage
	Model string
}

// TokenUsage tracks per-call token consumption.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}

// Provider is implemented by every AI backend.
type Provider interface {
	ID() string
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
