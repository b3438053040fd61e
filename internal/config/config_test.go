package config

import (
	"testing"
	"time"
)

func TestNewFromEnv(t *testing.T) {
	// Helper function to set environment variables for a test
	setEnv := func(t *testing.T, env map[string]string) {
		t.Helper()
		for _, key := range []string{
			"LLM_PROVIDER", "GEMINI_API_KEY", "GROQ_API_KEY", "PORT",
			"DATABASE_PATH", "CACHE_TTL_SECONDS", "CORS_ALLOWED_ORIGINS", "AUTH_JWT_SECRET",
		} {
			t.Setenv(key, "")
		}
		for k, v := range env {
			t.Setenv(k, v)
		}
	}

	t.Run("Defaults", func(t *testing.T) {
		setEnv(t, map[string]string{"GEMINI_API_KEY": "gemini_key"})

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.LLMProvider != ProviderGemini {
			t.Errorf("Expected provider '%s', got '%s'", ProviderGemini, cfg.LLMProvider)
		}
		if cfg.GeminiAPIKey != "gemini_key" {
			t.Errorf("Expected GeminiAPIKey to be 'gemini_key', got '%s'", cfg.GeminiAPIKey)
		}
		if cfg.Port != "8080" {
			t.Errorf("Expected default port 8080, got '%s'", cfg.Port)
		}
		if cfg.DatabasePath != "data/recipe-planner.db" {
			t.Errorf("Unexpected default DatabasePath '%s'", cfg.DatabasePath)
		}
		if cfg.CacheTTL != 30*time.Second {
			t.Errorf("Expected default CacheTTL 30s, got %v", cfg.CacheTTL)
		}
		if cfg.AuthJWTAudience != "authenticated" {
			t.Errorf("Expected default audience 'authenticated', got '%s'", cfg.AuthJWTAudience)
		}
	})

	t.Run("GroqProvider", func(t *testing.T) {
		setEnv(t, map[string]string{
			"LLM_PROVIDER":         "groq",
			"GROQ_API_KEY":         "groq_key",
			"CACHE_TTL_SECONDS":    "0",
			"CORS_ALLOWED_ORIGINS": "http://a.test, http://b.test,",
		})

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.GroqAPIKey != "groq_key" {
			t.Errorf("Expected GroqAPIKey to be 'groq_key', got '%s'", cfg.GroqAPIKey)
		}
		if cfg.CacheTTL != 0 {
			t.Errorf("Expected CacheTTL 0, got %v", cfg.CacheTTL)
		}
		if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://b.test" {
			t.Errorf("Unexpected CORS origins: %v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("NoAPIKeyLoads", func(t *testing.T) {
		setEnv(t, nil)

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected commands without a model to load config, got %v", err)
		}
		if cfg.GeminiAPIKey != "" {
			t.Errorf("Expected empty GeminiAPIKey, got '%s'", cfg.GeminiAPIKey)
		}
	})

	t.Run("UnknownProvider", func(t *testing.T) {
		setEnv(t, map[string]string{"LLM_PROVIDER": "mystery"})

		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for unknown provider, got nil")
		}
	})

	t.Run("InvalidCacheTTL", func(t *testing.T) {
		setEnv(t, map[string]string{"GEMINI_API_KEY": "k", "CACHE_TTL_SECONDS": "soon"})

		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for invalid CACHE_TTL_SECONDS, got nil")
		}
	})
}

func TestValidateServer(t *testing.T) {
	cfg := &Config{}
	err := cfg.ValidateServer()
	if err == nil || err.Error() != "AUTH_JWT_SECRET environment variable not set" {
		t.Errorf("Expected missing secret error, got %v", err)
	}

	cfg.AuthJWTSecret = "s3cret"
	if err := cfg.ValidateServer(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestValidateLLM(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"MissingGeminiAPIKey", Config{LLMProvider: ProviderGemini}, "GEMINI_API_KEY environment variable not set"},
		{"MissingGroqAPIKey", Config{LLMProvider: ProviderGroq, GeminiAPIKey: "gemini_key"}, "GROQ_API_KEY environment variable not set"},
		{"Gemini", Config{LLMProvider: ProviderGemini, GeminiAPIKey: "gemini_key"}, ""},
		{"Groq", Config{LLMProvider: ProviderGroq, GroqAPIKey: "groq_key"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidateLLM()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("Expected error '%s', got %v", tt.wantErr, err)
			}
		})
	}
}
