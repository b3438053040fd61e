package recipe

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a recipe does not exist or belongs to another user.
var ErrNotFound = errors.New("recipe not found")

// Difficulty is the effort level of a recipe.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty normalizes s. Blank input yields "" with ok=true.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case "", DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, true
	default:
		return "", false
	}
}

// Step is one numbered instruction.
type Step struct {
	Step        int    `json:"step"`
	Instruction string `json:"instruction"`
	Duration    string `json:"duration,omitempty"`
}

// Nutrition holds per-serving nutrition facts.
type Nutrition struct {
	Calories float64 `json:"calories,omitempty"`
	Protein  string  `json:"protein,omitempty"`
	Carbs    string  `json:"carbs,omitempty"`
	Fat      string  `json:"fat,omitempty"`
	Fiber    string  `json:"fiber,omitempty"`
}

// Ingredient is a deduplicated ingredient name shared by all users.
type Ingredient struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// RecipeIngredient links a recipe to an ingredient.
type RecipeIngredient struct {
	IngredientID string `json:"ingredient_id"`
	Name         string `json:"name"`
	Quantity     string `json:"quantity"`
	IsOptional   bool   `json:"is_optional"`
	Notes        string `json:"notes,omitempty"`
}

// Recipe is a stored recipe owned by a user.
type Recipe struct {
	ID           string             `json:"id"`
	UserID       string             `json:"user_id"`
	Name         string             `json:"name"`
	Description  string             `json:"description,omitempty"`
	CuisineType  string             `json:"cuisine_type,omitempty"`
	Difficulty   Difficulty         `json:"difficulty,omitempty"`
	PrepTime     int                `json:"prep_time"`
	CookingTime  int                `json:"cooking_time"`
	Servings     int                `json:"servings"`
	Instructions []Step             `json:"instructions"`
	Nutrition    *Nutrition         `json:"nutritional_info,omitempty"`
	Tips         []string           `json:"tips,omitempty"`
	ImageURL     string             `json:"image_url,omitempty"`
	IsFavorite   bool               `json:"is_favorite"`
	AIGenerated  bool               `json:"ai_generated"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	Ingredients  []RecipeIngredient `json:"ingredients,omitempty"`
}

// TotalTime is prep plus cooking time in minutes.
func (r Recipe) TotalTime() int {
	return r.PrepTime + r.CookingTime
}

// NormalizeIngredientName is the canonical form used for ingredient dedupe.
func NormalizeIngredientName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
