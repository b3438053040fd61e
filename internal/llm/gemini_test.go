package llm

import (
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestGeminiResponseText(t *testing.T) {
	t.Run("JoinsTextParts", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"name":`), genai.Text(`"Soup"}`)}}},
			},
		}
		if got := geminiResponseText(resp); got != `{"name":"Soup"}` {
			t.Errorf("Unexpected text '%s'", got)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if got := geminiResponseText(&genai.GenerateContentResponse{}); got != "" {
			t.Errorf("Expected empty text, got '%s'", got)
		}
		if got := geminiResponseText(nil); got != "" {
			t.Errorf("Expected empty text for nil response, got '%s'", got)
		}
	})
}

func TestClassifyGeminiError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"InvalidKey", errors.New("googleapi: Error 400: API key not valid. Please pass a valid API key."), ErrInvalidAPIKey},
		{"Quota", errors.New("googleapi: Error 429: You exceeded your current quota"), ErrQuotaExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyGeminiError(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}

	other := classifyGeminiError(errors.New("connection reset"))
	if errors.Is(other, ErrInvalidAPIKey) || errors.Is(other, ErrQuotaExceeded) {
		t.Errorf("Unexpected classification for generic error: %v", other)
	}
}
