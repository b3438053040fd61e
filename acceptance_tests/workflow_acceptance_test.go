package acceptance_tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"recipe-planner/internal/app"
	"recipe-planner/internal/auth"
	"recipe-planner/internal/cache"
	"recipe-planner/internal/database"
	"recipe-planner/internal/llm"
	"recipe-planner/internal/server"

	"go.uber.org/zap"
)

// --- Mock LLM Client ---
type mockLLMClient struct {
	mu                   sync.Mutex
	generateContentCalls int
}

func (m *mockLLMClient) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generateContentCalls++

	// Imports carry the page text; generation carries the ingredient list.
	if strings.Contains(prompt, "Page Content:") {
		return llm.ContentResponse{Content: `{
			"name": "Clipped Shakshuka",
			"cuisine_type": "Middle Eastern",
			"difficulty": "easy",
			"ingredients": [{"name": "Eggs", "quantity": "4"}, {"name": "Tomatoes", "quantity": "400g"}]
		}`, Usage: llm.TokenUsage{TotalTokens: 90, Model: "mock"}}, nil
	}

	return llm.ContentResponse{Content: `{
		"name": "Tomato Omelette",
		"cuisine_type": "French",
		"difficulty": "easy",
		"prep_time": 5,
		"cooking_time": 10,
		"ingredients": [{"name": "Eggs", "quantity": "3"}, {"name": "Tomatoes", "quantity": "1"}],
		"instructions": [{"step": 1, "instruction": "Whisk and cook."}]
	}`, Usage: llm.TokenUsage{TotalTokens: 120, Model: "mock"}}, nil
}

func (m *mockLLMClient) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generateContentCalls
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) call(method, path, body string, out any) int {
	c.t.Helper()
	req, err := http.NewRequest(method, c.base+path, strings.NewReader(body))
	if err != nil {
		c.t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.t.Fatalf("decode %s failed: %v", path, err)
		}
	}
	return resp.StatusCode
}

// --- Acceptance Test ---
func TestFullWorkflow(t *testing.T) {
	// 1. Set up a temporary directory for storage
	tempDir, err := os.MkdirTemp("", "acceptance_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	db, err := database.NewDB(filepath.Join(tempDir, "recipes.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// 2. Wire the real stack around a mock model
	llmClient := &mockLLMClient{}
	verifier := auth.NewVerifier("acceptance-secret", "authenticated")
	application := app.NewApp(db, llmClient, cache.New(cache.TTLs(30*time.Second)), zap.NewNop())
	srv := server.New(application, db.SQL, verifier, zap.NewNop(), server.Options{DataPath: tempDir})

	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><h1>Shakshuka</h1><p>Simmer tomatoes, crack in eggs.</p></body></html>`))
	}))
	defer page.Close()

	api := httptest.NewServer(srv.Handler())
	defer api.Close()

	token, err := verifier.Issue("cook-1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	c := &client{t: t, base: api.URL, token: token}

	// --- Step 1: Generate a recipe ---
	t.Log("--- Step 1: Generating Recipe ---")
	var generated struct {
		Recipe struct {
			ID          string `json:"id"`
			Ingredients []any  `json:"ingredients"`
		} `json:"recipe"`
	}
	if status := c.call(http.MethodPost, "/api/recipes/generate", `{"ingredients":["eggs","tomatoes"]}`, &generated); status != http.StatusCreated {
		t.Fatalf("Generation failed with status %d", status)
	}
	if llmClient.calls() != 1 {
		t.Errorf("Expected 1 call to LLM for generation, got %d", llmClient.calls())
	}

	// --- Step 2: Import a recipe from a page ---
	t.Log("--- Step 2: Importing Recipe ---")
	if status := c.call(http.MethodPost, "/api/recipes/import", `{"url":"`+page.URL+`"}`, nil); status != http.StatusCreated {
		t.Fatalf("Import failed with status %d", status)
	}

	var list struct {
		TotalCount int `json:"total_count"`
	}
	c.call(http.MethodGet, "/api/recipes", "", &list)
	if list.TotalCount != 2 {
		t.Errorf("Expected 2 recipes, got %d", list.TotalCount)
	}

	// Eggs and Tomatoes are shared between both recipes.
	var ingredients int
	if err := db.SQL.QueryRow(`SELECT COUNT(*) FROM ingredients`).Scan(&ingredients); err != nil {
		t.Fatal(err)
	}
	if ingredients != 2 {
		t.Errorf("Expected 2 deduplicated ingredients, got %d", ingredients)
	}

	// --- Step 3: Plan the week and copy it forward ---
	t.Log("--- Step 3: Planning Week ---")
	c.call(http.MethodPost, "/api/meal-plans",
		`{"recipe_id":"`+generated.Recipe.ID+`","planned_date":"2024-06-05","meal_type":"dinner"}`, nil)
	c.call(http.MethodPost, "/api/meal-plans",
		`{"custom_meal_name":"Leftovers","planned_date":"2024-06-06","meal_type":"lunch"}`, nil)

	var copied struct {
		Copied int `json:"copied"`
	}
	if status := c.call(http.MethodPost, "/api/meal-plans/copy-week",
		`{"source_week":"2024-06-03","target_week":"2024-06-17"}`, &copied); status != http.StatusOK {
		t.Fatalf("Copy week failed with status %d", status)
	}
	if copied.Copied != 2 {
		t.Errorf("Expected 2 copied meals, got %d", copied.Copied)
	}

	var week struct {
		Meals []struct {
			PlannedDate string `json:"planned_date"`
			RecipeID    string `json:"recipe_id"`
		} `json:"meals"`
	}
	c.call(http.MethodGet, "/api/weeks?start=2024-06-17", "", &week)
	if len(week.Meals) != 2 || week.Meals[0].PlannedDate != "2024-06-19" || week.Meals[0].RecipeID != generated.Recipe.ID {
		t.Errorf("Unexpected copied week: %+v", week.Meals)
	}

	// --- Step 4: Deleting the recipe clears its meals ---
	t.Log("--- Step 4: Deleting Recipe ---")
	c.call(http.MethodDelete, "/api/recipes/"+generated.Recipe.ID, "", nil)
	c.call(http.MethodGet, "/api/weeks?start=2024-06-17", "", &week)
	if len(week.Meals) != 1 {
		t.Errorf("Expected only the custom meal to remain, got %d", len(week.Meals))
	}

	var usage int
	if err := db.SQL.QueryRow(`SELECT COUNT(*) FROM execution_metrics`).Scan(&usage); err != nil {
		t.Fatal(err)
	}
	if usage != 2 {
		t.Errorf("Expected 2 metric records, got %d", usage)
	}
}
