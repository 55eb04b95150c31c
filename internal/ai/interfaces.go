package ai

import "context"

// CompletionRequest carries one free-text completion call. Model,
// temperature and token limits come from the agent's configuration, not the
// request.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// Provider interface for different AI implementations. Complete returns the
// raw model text; callers own parsing. Token usage can be ignored if not
// needed.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	GetCircuitBreakerStats() map[string]any
	Close() error
}
