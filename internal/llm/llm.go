package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recipe-planner/internal/config"
)

var (
	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("no content generated")
	// ErrQuotaExceeded is returned when the provider rejects the call for rate or quota reasons.
	ErrQuotaExceeded = errors.New("quota exceeded")
	// ErrInvalidAPIKey is returned when the provider rejects the credentials.
	ErrInvalidAPIKey = errors.New("API key is invalid or missing")
)

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// AgentMeta holds operational metadata for an agent execution.
type AgentMeta struct {
	AgentName string
	Usage     TokenUsage
	Latency   time.Duration
}

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
// Implementations ask the model for a JSON-only answer.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// Client is a TextGenerator holding resources that must be released.
type Client interface {
	TextGenerator
	Close() error
}

// NewFromConfig returns the client for the configured provider.
func NewFromConfig(ctx context.Context, cfg *config.Config) (Client, error) {
	if err := cfg.ValidateLLM(); err != nil {
		return nil, err
	}
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg)
	case config.ProviderGroq:
		return NewGroqClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLMProvider)
	}
}
