package app

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"recipe-planner/internal/auth"
	"recipe-planner/internal/cache"
	"recipe-planner/internal/database"
	"recipe-planner/internal/llm"

	"go.uber.org/zap"
)

type MockTextGenerator struct {
	mu       sync.Mutex
	Response llm.ContentResponse
	Err      error
	Prompts  []string
}

func (m *MockTextGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)
	return m.Response, m.Err
}

func (m *MockTextGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

const generatedRecipeJSON = `{
  "name": "Chicken Fried Rice",
  "description": "Weeknight fried rice",
  "cuisine_type": "Chinese",
  "difficulty": "easy",
  "prep_time": 10,
  "cooking_time": 15,
  "servings": 2,
  "ingredients": [
    {"name": "Chicken", "quantity": "200g", "isOptional": false},
    {"name": "Rice", "quantity": "2 cups", "isOptional": false},
    {"name": "rice", "quantity": "extra", "isOptional": true},
    {"name": "Scallions", "quantity": "2", "isOptional": true}
  ],
  "instructions": [{"step": 1, "instruction": "Fry everything", "duration": "15 minutes"}],
  "nutritional_info": {"calories": 600, "protein": "35g"},
  "tips": ["Use day-old rice"]
}`

func newTestApp(t *testing.T, textGen llm.TextGenerator) (*App, *database.DB) {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if textGen == nil {
		textGen = &MockTextGenerator{Response: llm.ContentResponse{Content: generatedRecipeJSON}}
	}
	a := NewApp(db, textGen, cache.New(cache.TTLs(time.Minute)), zap.NewNop())
	a.now = func() time.Time { return time.Date(2024, 6, 5, 9, 30, 0, 0, time.UTC) }
	return a, db
}

func userCtx(userID string) context.Context {
	return auth.WithUserID(context.Background(), userID)
}
