package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported inference providers.
const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
)

// Config holds the configuration for the application.
type Config struct {
	Env          string
	Port         string
	DatabasePath string

	LLMProvider  string
	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string
	GroqModel    string

	// Session boundary (hosted auth provider)
	AuthJWTSecret   string
	AuthJWTAudience string

	CORSAllowedOrigins []string
	CacheTTL           time.Duration
}

// NewFromEnv creates a new Config object from environment variables.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment win.
func NewFromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	provider := strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini))

	if provider != ProviderGemini && provider != ProviderGroq {
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", provider)
	}

	cacheTTL := 30 * time.Second
	if raw := os.Getenv("CACHE_TTL_SECONDS"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid CACHE_TTL_SECONDS %q: %w", raw, err)
		}
		cacheTTL = time.Duration(secs) * time.Second
	}

	return &Config{
		Env:                getEnv("ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DatabasePath:       getEnv("DATABASE_PATH", "data/recipe-planner.db"),
		LLMProvider:        provider,
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GroqAPIKey:         os.Getenv("GROQ_API_KEY"),
		GroqModel:          getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		AuthJWTSecret:      os.Getenv("AUTH_JWT_SECRET"),
		AuthJWTAudience:    getEnv("AUTH_JWT_AUDIENCE", "authenticated"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		CacheTTL:           cacheTTL,
	}, nil
}

// ValidateServer checks the settings only the HTTP server needs.
func (c *Config) ValidateServer() error {
	if c.AuthJWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET environment variable not set")
	}
	return nil
}

// ValidateLLM checks that the selected provider has an API key. Only commands
// that call a model need it.
func (c *Config) ValidateLLM() error {
	switch c.LLMProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	case ProviderGroq:
		if c.GroqAPIKey == "" {
			return fmt.Errorf("GROQ_API_KEY environment variable not set")
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLMProvider)
	}
	return nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
