package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"recipe-planner/internal/config"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const groqAPIURL = "https://api.groq.com/openai/v1/"

// groqClient talks to Groq through its OpenAI-compatible endpoint.
type groqClient struct {
	client openai.Client
	model  string
}

// NewGroqClient creates a new Groq API client.
func NewGroqClient(cfg *config.Config) Client {
	return newGroqClient(groqAPIURL, cfg.GroqAPIKey, cfg.GroqModel)
}

func newGroqClient(baseURL, apiKey, model string) *groqClient {
	return &groqClient{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
			option.WithMaxRetries(0),
			option.WithRequestTimeout(30*time.Second),
		),
		model: model,
	}
}

// GenerateContent sends a prompt to the Groq model and returns the generated text.
func (c *groqClient) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.8),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return ContentResponse{}, classifyGroqError(err)
	}

	model := resp.Model
	if model == "" {
		model = c.model
	}
	usage := TokenUsage{
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
		Model:            model,
	}

	// Usage is returned with ErrEmptyResponse too.
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return ContentResponse{Usage: usage}, ErrEmptyResponse
	}
	return ContentResponse{Content: resp.Choices[0].Message.Content, Usage: usage}, nil
}

// Close is a no-op; the HTTP client holds no resources.
func (c *groqClient) Close() error {
	return nil
}

func classifyGroqError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrInvalidAPIKey, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
	}
	return fmt.Errorf("groq api error: %w", err)
}
