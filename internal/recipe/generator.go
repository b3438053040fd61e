package recipe

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"recipe-planner/internal/llm"
)

// DefaultServings is used when a request does not name a serving count.
const DefaultServings = 4

// ErrParseResponse is returned when the model output is not the expected JSON.
var ErrParseResponse = errors.New("failed to parse JSON recipe response")

//go:embed generator_prompt.md schema.md
var promptFS embed.FS

var prompts = template.Must(
	template.New("prompts").Funcs(template.FuncMap{"join": strings.Join}).ParseFS(promptFS, "*.md"),
)

// GenerationRequest describes the recipe a user asks for.
type GenerationRequest struct {
	Ingredients         []string
	Cuisine             string
	DietaryRestrictions []string
	CookingTime         int
	Difficulty          Difficulty
	Servings            int
}

// GeneratedIngredient is one ingredient line of a model answer.
type GeneratedIngredient struct {
	Name       string `json:"name"`
	Quantity   string `json:"quantity"`
	IsOptional bool   `json:"isOptional"`
}

// GeneratedRecipe is the JSON document the model is asked to return.
type GeneratedRecipe struct {
	Name         string                `json:"name"`
	Description  string                `json:"description"`
	CuisineType  string                `json:"cuisine_type"`
	Difficulty   string                `json:"difficulty"`
	PrepTime     int                   `json:"prep_time"`
	CookingTime  int                   `json:"cooking_time"`
	Servings     int                   `json:"servings"`
	Ingredients  []GeneratedIngredient `json:"ingredients"`
	Instructions []Step                `json:"instructions"`
	Nutrition    *Nutrition            `json:"nutritional_info"`
	Tips         []string              `json:"tips"`
}

// GenerationResult carries the parsed recipe and the call's metadata.
type GenerationResult struct {
	Recipe *GeneratedRecipe
	Meta   llm.AgentMeta
}

// Generator asks a language model for a recipe.
type Generator struct {
	textGen llm.TextGenerator
}

// NewGenerator creates a new Generator.
func NewGenerator(textGen llm.TextGenerator) *Generator {
	return &Generator{textGen: textGen}
}

// Generate makes exactly one inference call. Meta is filled whenever the model
// was reached, including when it answers empty or unparseable text.
func (g *Generator) Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error) {
	start := time.Now()
	prompt, err := BuildPrompt(req)
	if err != nil {
		return GenerationResult{}, err
	}

	resp, err := g.textGen.GenerateContent(ctx, prompt)
	meta := llm.AgentMeta{
		AgentName: "RecipeGenerator",
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}
	if err != nil {
		return GenerationResult{Meta: meta}, err
	}
	if strings.TrimSpace(resp.Content) == "" {
		return GenerationResult{Meta: meta}, llm.ErrEmptyResponse
	}

	rec, err := ParseGeneratedRecipe(resp.Content)
	if err != nil {
		return GenerationResult{Meta: meta}, err
	}
	return GenerationResult{Recipe: rec, Meta: meta}, nil
}

// BuildPrompt renders the generation prompt. Servings defaults to DefaultServings.
func BuildPrompt(req GenerationRequest) (string, error) {
	if req.Servings <= 0 {
		req.Servings = DefaultServings
	}

	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, "generator_prompt.md", req); err != nil {
		return "", fmt.Errorf("failed to render recipe prompt: %w", err)
	}
	return buf.String(), nil
}

// Schema returns the JSON shape every recipe answer must follow.
func Schema() string {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, "schema", nil); err != nil {
		panic(err)
	}
	return buf.String()
}

// ParseGeneratedRecipe decodes a model answer, tolerating markdown code fences.
func ParseGeneratedRecipe(content string) (*GeneratedRecipe, error) {
	content = stripCodeFence(content)

	var rec GeneratedRecipe
	if err := json.Unmarshal([]byte(content), &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseResponse, err)
	}
	if strings.TrimSpace(rec.Name) == "" {
		return nil, fmt.Errorf("%w: recipe has no name", ErrParseResponse)
	}
	return &rec, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ToRecipe converts a model answer into an unsaved Recipe. Ingredient links
// carry names only; IDs are resolved on save.
func (g *GeneratedRecipe) ToRecipe(userID string, aiGenerated bool) *Recipe {
	difficulty, ok := ParseDifficulty(g.Difficulty)
	if !ok {
		difficulty = ""
	}
	servings := g.Servings
	if servings <= 0 {
		servings = DefaultServings
	}

	rec := &Recipe{
		UserID:       userID,
		Name:         strings.TrimSpace(g.Name),
		Description:  g.Description,
		CuisineType:  g.CuisineType,
		Difficulty:   difficulty,
		PrepTime:     g.PrepTime,
		CookingTime:  g.CookingTime,
		Servings:     servings,
		Instructions: g.Instructions,
		Nutrition:    g.Nutrition,
		Tips:         g.Tips,
		AIGenerated:  aiGenerated,
	}
	for _, ing := range g.Ingredients {
		rec.Ingredients = append(rec.Ingredients, RecipeIngredient{
			Name:       ing.Name,
			Quantity:   ing.Quantity,
			IsOptional: ing.IsOptional,
		})
	}
	return rec
}
