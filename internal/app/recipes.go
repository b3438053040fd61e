package app

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"strings"

	"recipe-planner/internal/cache"
	"recipe-planner/internal/recipe"

	"go.uber.org/zap"
)

// GenerateInput is a recipe generation request as sent by the user.
type GenerateInput struct {
	Ingredients         []string `json:"ingredients"`
	Cuisine             string   `json:"cuisine"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	CookingTime         int      `json:"cooking_time"`
	Difficulty          string   `json:"difficulty"`
	Servings            int      `json:"servings"`
	UsePantry           bool     `json:"use_pantry"`
}

// RecipeList is a filtered view of the user's recipes.
type RecipeList struct {
	Recipes       []recipe.Recipe `json:"recipes"`
	TotalCount    int             `json:"total_count"`
	FilteredCount int             `json:"filtered_count"`
	Cuisines      []string        `json:"cuisines"`
}

func cleanStrings(in []string) []string {
	out := []string{}
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func appendMissing(list []string, extra ...string) []string {
	seen := make(map[string]bool, len(list))
	for _, s := range list {
		seen[recipe.NormalizeIngredientName(s)] = true
	}
	for _, s := range extra {
		if k := recipe.NormalizeIngredientName(s); k != "" && !seen[k] {
			seen[k] = true
			list = append(list, s)
		}
	}
	return list
}

// GenerateRecipe asks the model for a recipe and saves it to the user's collection.
func (a *App) GenerateRecipe(ctx context.Context, in GenerateInput) (*recipe.Recipe, error) {
	userID, err := a.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	req, err := a.buildGenerationRequest(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	res, err := a.generator.Generate(ctx, req)
	a.recordMeta(ctx, res.Meta)
	if err != nil {
		a.log.Error("recipe generation failed", zap.String("user_id", userID), zap.Error(err))
		return nil, inferenceError("Failed to generate recipe", err)
	}

	rec := res.Recipe.ToRecipe(userID, true)
	if err := a.saveRecipe(ctx, rec); err != nil {
		return nil, a.fail(userID, "Failed to save recipe", err)
	}

	a.cache.Invalidate(userID, cache.Recipes, cache.Dashboard)
	a.log.Info("generated recipe",
		zap.String("user_id", userID),
		zap.String("recipe_id", rec.ID),
		zap.Int("total_tokens", res.Meta.Usage.TotalTokens),
	)
	return rec, nil
}

func (a *App) buildGenerationRequest(ctx context.Context, userID string, in GenerateInput) (recipe.GenerationRequest, error) {
	ingredients := cleanStrings(in.Ingredients)
	if in.UsePantry {
		names, err := a.pantry.Names(ctx, userID)
		if err != nil {
			return recipe.GenerationRequest{}, a.fail(userID, "Failed to load pantry", err)
		}
		ingredients = appendMissing(ingredients, names...)
	}
	if len(ingredients) == 0 {
		return recipe.GenerationRequest{}, invalid("ingredients", "Please add at least one ingredient")
	}

	difficulty, ok := recipe.ParseDifficulty(in.Difficulty)
	if !ok {
		return recipe.GenerationRequest{}, invalid("difficulty", "Difficulty must be easy, medium or hard")
	}
	if in.CookingTime < 0 {
		return recipe.GenerationRequest{}, invalid("cooking_time", "Cooking time must not be negative")
	}
	if in.Servings < 0 {
		return recipe.GenerationRequest{}, invalid("servings", "Servings must be at least 1")
	}

	dietary := cleanStrings(in.DietaryRestrictions)
	if len(dietary) == 0 {
		p, err := a.profiles.Get(ctx, userID)
		if err != nil {
			return recipe.GenerationRequest{}, a.fail(userID, "Failed to load profile", err)
		}
		dietary = p.DietaryPreferences
	}

	return recipe.GenerationRequest{
		Ingredients:         ingredients,
		Cuisine:             strings.TrimSpace(in.Cuisine),
		DietaryRestrictions: dietary,
		CookingTime:         in.CookingTime,
		Difficulty:          difficulty,
		Servings:            in.Servings,
	}, nil
}

func (a *App) saveRecipe(ctx context.Context, rec *recipe.Recipe) error {
	return a.db.InTx(ctx, func(tx *sql.Tx) error {
		return a.recipes.WithTx(tx).Create(ctx, rec)
	})
}

// ImportRecipe extracts a recipe from a web page and saves it to the user's collection.
func (a *App) ImportRecipe(ctx context.Context, pageURL string) (*recipe.Recipe, error) {
	userID, err := a.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, invalid("url", "Please enter a valid http(s) URL")
	}

	res, err := a.clipper.ClipURL(ctx, u.String())
	a.recordMeta(ctx, res.Meta)
	if err != nil {
		a.log.Error("recipe import failed", zap.String("user_id", userID), zap.String("url", u.String()), zap.Error(err))
		return nil, inferenceError("Failed to import recipe", err)
	}

	rec := res.Recipe.ToRecipe(userID, false)
	rec.ImageURL = res.ImageURL
	if rec.Description == "" {
		rec.Description = "Imported from " + res.SourceURL
	}
	if err := a.saveRecipe(ctx, rec); err != nil {
		return nil, a.fail(userID, "Failed to save recipe", err)
	}

	a.cache.Invalidate(userID, cache.Recipes, cache.Dashboard)
	return rec, nil
}

// ListRecipes returns the user's recipes filtered and sorted by q.
func (a *App) ListRecipes(ctx context.Context, q recipe.Query) (*RecipeList, error) {
	userID, err := a.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	all, err := cache.Get(ctx, a.cache, cache.Recipes, userID, "", func(ctx context.Context) ([]recipe.Recipe, error) {
		return a.recipes.ListByUser(ctx, userID)
	})
	if err != nil {
		return nil, a.fail(userID, "Failed to fetch recipes", err)
	}

	filtered := recipe.Filter(all, q)
	return &RecipeList{
		Recipes:       filtered,
		TotalCount:    len(all),
		FilteredCount: len(filtered),
		Cuisines:      recipe.Cuisines(all),
	}, nil
}

// GetRecipe returns one of the user's recipes with its ingredients.
func (a *App) GetRecipe(ctx context.Context, id string) (*recipe.Recipe, error) {
	userID, err := a.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := a.recipes.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, recipe.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, a.fail(userID, "Failed to fetch recipe", err)
	}
	return rec, nil
}

// ToggleFavorite flips a recipe's favorite flag and returns the new value.
func (a *App) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	userID, err := a.currentUser(ctx)
	if err != nil {
		return false, err
	}

	fav, err := a.recipes.ToggleFavorite(ctx, userID, id)
	if err != nil {
		if errors.Is(err, recipe.ErrNotFound) {
			return false, ErrNotFound
		}
		return false, a.fail(userID, "Failed to update favorite status", err)
	}
	a.cache.Invalidate(userID, cache.Recipes, cache.Dashboard)
	return fav, nil
}

// DeleteRecipe removes one of the user's recipes and the meals that use it.
func (a *App) DeleteRecipe(ctx context.Context, id string) error {
	userID, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	if err := a.recipes.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, recipe.ErrNotFound) {
			return ErrNotFound
		}
		return a.fail(userID, "Failed to delete recipe", err)
	}
	a.cache.Invalidate(userID, cache.Recipes, cache.Weeks, cache.Dashboard)
	return nil
}
