package llm

import (
	"context"
	"testing"

	"recipe-planner/internal/config"
)

func TestNewFromConfigRequiresKey(t *testing.T) {
	for _, provider := range []string{config.ProviderGemini, config.ProviderGroq} {
		t.Run(provider, func(t *testing.T) {
			client, err := NewFromConfig(context.Background(), &config.Config{LLMProvider: provider})
			if err == nil {
				client.Close()
				t.Fatal("Expected an error for a missing API key, got nil")
			}
		})
	}

	client, err := NewFromConfig(context.Background(), &config.Config{LLMProvider: config.ProviderGroq, GroqAPIKey: "k"})
	if err != nil {
		t.Fatalf("Expected groq client, got %v", err)
	}
	client.Close()
}
