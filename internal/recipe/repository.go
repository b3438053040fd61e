package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"recipe-planner/internal/database"

	"github.com/google/uuid"
)

const recipeColumns = `id, user_id, name, description, cuisine_type, difficulty, prep_time, cooking_time,
	servings, instructions, nutritional_info, tips, image_url, is_favorite, ai_generated, created_at, updated_at`

// Repository is a database-backed repository for recipes and ingredients.
type Repository struct {
	db database.DBTX
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// WithTx returns a new Repository that uses the provided transaction.
func (r *Repository) WithTx(tx *sql.Tx) *Repository {
	return &Repository{db: tx}
}

// FindOrCreateIngredient returns the ingredient matching name case-insensitively,
// creating it first when absent.
func (r *Repository) FindOrCreateIngredient(ctx context.Context, name string) (Ingredient, error) {
	normalized := NormalizeIngredientName(name)
	if normalized == "" {
		return Ingredient{}, fmt.Errorf("ingredient name is empty")
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ingredients (id, name, created_at) VALUES (?, ?, ?) ON CONFLICT (name) DO NOTHING`,
		uuid.NewString(), normalized, time.Now().UTC(),
	)
	if err != nil {
		return Ingredient{}, fmt.Errorf("failed to create ingredient %q: %w", normalized, err)
	}

	var (
		ing      Ingredient
		category sql.NullString
	)
	err = r.db.QueryRowContext(ctx,
		`SELECT id, name, category FROM ingredients WHERE name = ? COLLATE NOCASE`, normalized,
	).Scan(&ing.ID, &ing.Name, &category)
	if err != nil {
		return Ingredient{}, fmt.Errorf("failed to look up ingredient %q: %w", normalized, err)
	}
	ing.Category = category.String
	return ing, nil
}

// Create inserts rec and its ingredient links. rec.ID and timestamps are
// assigned when empty. Links without an IngredientID are resolved by name and
// an ingredient is linked at most once per recipe. Run it on a WithTx
// repository to make the whole save atomic.
func (r *Repository) Create(ctx context.Context, rec *Recipe) error {
	links, err := r.resolveIngredients(ctx, rec.Ingredients)
	if err != nil {
		return err
	}
	rec.Ingredients = links

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	if rec.Instructions == nil {
		rec.Instructions = []Step{}
	}

	instructions, err := json.Marshal(rec.Instructions)
	if err != nil {
		return fmt.Errorf("failed to marshal instructions: %w", err)
	}
	tips, err := json.Marshal(nonNilStrings(rec.Tips))
	if err != nil {
		return fmt.Errorf("failed to marshal tips: %w", err)
	}
	var nutrition sql.NullString
	if rec.Nutrition != nil {
		b, err := json.Marshal(rec.Nutrition)
		if err != nil {
			return fmt.Errorf("failed to marshal nutritional info: %w", err)
		}
		nutrition = sql.NullString{String: string(b), Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO recipes (`+recipeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Name, nullString(rec.Description), nullString(rec.CuisineType),
		nullString(string(rec.Difficulty)), nullInt(rec.PrepTime), nullInt(rec.CookingTime),
		rec.Servings, string(instructions), nutrition, string(tips), nullString(rec.ImageURL),
		rec.IsFavorite, rec.AIGenerated, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert recipe: %w", err)
	}

	for _, link := range rec.Ingredients {
		_, err := r.db.ExecContext(ctx, `INSERT INTO recipe_ingredients (id, recipe_id, ingredient_id, quantity, is_optional, notes)
			VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), rec.ID, link.IngredientID, link.Quantity, link.IsOptional, nullString(link.Notes),
		)
		if err != nil {
			return fmt.Errorf("failed to link ingredient %q: %w", link.Name, err)
		}
	}
	return nil
}

func (r *Repository) resolveIngredients(ctx context.Context, links []RecipeIngredient) ([]RecipeIngredient, error) {
	seen := make(map[string]bool, len(links))
	resolved := make([]RecipeIngredient, 0, len(links))
	for _, link := range links {
		if link.IngredientID == "" {
			if NormalizeIngredientName(link.Name) == "" {
				continue
			}
			ing, err := r.FindOrCreateIngredient(ctx, link.Name)
			if err != nil {
				return nil, err
			}
			link.IngredientID = ing.ID
			link.Name = ing.Name
		}
		if seen[link.IngredientID] {
			continue
		}
		seen[link.IngredientID] = true
		resolved = append(resolved, link)
	}
	return resolved, nil
}

// Get retrieves a user's recipe by ID together with its ingredients.
func (r *Repository) Get(ctx context.Context, userID, id string) (*Recipe, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE id = ? AND user_id = ?`, id, userID)
	rec, err := scanRecipe(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get recipe by ID: %w", err)
	}

	rec.Ingredients, err = r.Ingredients(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Ingredients lists the ingredient links of a recipe.
func (r *Repository) Ingredients(ctx context.Context, recipeID string) ([]RecipeIngredient, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT ri.ingredient_id, i.name, ri.quantity, ri.is_optional, ri.notes
		FROM recipe_ingredients ri
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE ri.recipe_id = ?
		ORDER BY ri.rowid`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipe ingredients: %w", err)
	}
	defer rows.Close()

	links := []RecipeIngredient{}
	for rows.Next() {
		var (
			link  RecipeIngredient
			notes sql.NullString
		)
		if err := rows.Scan(&link.IngredientID, &link.Name, &link.Quantity, &link.IsOptional, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan recipe ingredient: %w", err)
		}
		link.Notes = notes.String
		links = append(links, link)
	}
	return links, rows.Err()
}

// ListByUser retrieves all recipes of a user, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Recipe, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	recipes := []Recipe{}
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, rec)
	}
	return recipes, rows.Err()
}

// Exists reports whether the user owns a recipe with the given ID.
func (r *Repository) Exists(ctx context.Context, userID, id string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recipes WHERE id = ? AND user_id = ?`, id, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check recipe: %w", err)
	}
	return n > 0, nil
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (r *Repository) ToggleFavorite(ctx context.Context, userID, id string) (bool, error) {
	var fav bool
	err := r.db.QueryRowContext(ctx, `UPDATE recipes SET is_favorite = NOT is_favorite, updated_at = ?
		WHERE id = ? AND user_id = ?
		RETURNING is_favorite`, time.Now().UTC(), id, userID).Scan(&fav)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("failed to toggle favorite: %w", err)
	}
	return fav, nil
}

// Delete removes a user's recipe. Ingredient links and meal-plan entries
// referencing it cascade.
func (r *Repository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of recipes a user owns.
func (r *Repository) Count(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return n, nil
}

// CountFavorites returns the number of a user's favorite recipes.
func (r *Repository) CountFavorites(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recipes WHERE user_id = ? AND is_favorite = 1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count favorite recipes: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(s rowScanner) (Recipe, error) {
	var rec Recipe
	var description, cuisine, difficulty, image, nutrition sql.NullString
	var prepTime, cookingTime sql.NullInt64
	var instructions, tips string
	err := s.Scan(&rec.ID, &rec.UserID, &rec.Name, &description, &cuisine, &difficulty,
		&prepTime, &cookingTime, &rec.Servings, &instructions, &nutrition, &tips, &image,
		&rec.IsFavorite, &rec.AIGenerated, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return Recipe{}, err
	}

	rec.Description = description.String
	rec.CuisineType = cuisine.String
	rec.Difficulty = Difficulty(difficulty.String)
	rec.ImageURL = image.String
	rec.PrepTime = int(prepTime.Int64)
	rec.CookingTime = int(cookingTime.Int64)

	if err := json.Unmarshal([]byte(instructions), &rec.Instructions); err != nil {
		return Recipe{}, fmt.Errorf("failed to unmarshal instructions for recipe %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(tips), &rec.Tips); err != nil {
		return Recipe{}, fmt.Errorf("failed to unmarshal tips for recipe %s: %w", rec.ID, err)
	}
	if nutrition.Valid {
		rec.Nutrition = &Nutrition{}
		if err := json.Unmarshal([]byte(nutrition.String), rec.Nutrition); err != nil {
			return Recipe{}, fmt.Errorf("failed to unmarshal nutritional info for recipe %s: %w", rec.ID, err)
		}
	}
	return rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n > 0}
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
