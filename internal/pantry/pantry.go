package pantry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"recipe-planner/internal/recipe"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a pantry item does not exist or belongs to another user.
var ErrNotFound = errors.New("pantry item not found")

// Item is an ingredient a user has at home.
type Item struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	IngredientID string    `json:"ingredient_id"`
	Name         string    `json:"name"`
	Quantity     string    `json:"quantity,omitempty"`
	ExpiryDate   string    `json:"expiry_date,omitempty"`
	AddedAt      time.Time `json:"added_at"`
}

// IngredientFinder resolves an ingredient name to its shared row.
type IngredientFinder interface {
	FindOrCreateIngredient(ctx context.Context, name string) (recipe.Ingredient, error)
}

// Repository is a database-backed repository for pantry items.
type Repository struct {
	db          *sql.DB
	ingredients IngredientFinder
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB, ingredients IngredientFinder) *Repository {
	return &Repository{db: d, ingredients: ingredients}
}

const itemSelect = `SELECT p.id, p.user_id, p.ingredient_id, i.name, p.quantity, p.expiry_date, p.added_at
	FROM user_pantry p
	JOIN ingredients i ON i.id = p.ingredient_id`

// List retrieves a user's pantry sorted by ingredient name.
func (r *Repository) List(ctx context.Context, userID string) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, itemSelect+` WHERE p.user_id = ? ORDER BY i.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pantry: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pantry item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(s rowScanner) (Item, error) {
	var it Item
	var quantity, expiry sql.NullString
	if err := s.Scan(&it.ID, &it.UserID, &it.IngredientID, &it.Name, &quantity, &expiry, &it.AddedAt); err != nil {
		return Item{}, err
	}
	it.Quantity = quantity.String
	it.ExpiryDate = expiry.String
	return it, nil
}

// Names returns the ingredient names in a user's pantry.
func (r *Repository) Names(ctx context.Context, userID string) ([]string, error) {
	items, err := r.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return names, nil
}

// Upsert adds an ingredient to the pantry or updates its quantity and expiry.
func (r *Repository) Upsert(ctx context.Context, userID, name, quantity, expiryDate string) (*Item, error) {
	ing, err := r.ingredients.FindOrCreateIngredient(ctx, name)
	if err != nil {
		return nil, err
	}

	var id string
	err = r.db.QueryRowContext(ctx, `INSERT INTO user_pantry (id, user_id, ingredient_id, quantity, expiry_date, added_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, ingredient_id) DO UPDATE SET
			quantity = excluded.quantity,
			expiry_date = excluded.expiry_date
		RETURNING id`,
		uuid.NewString(), userID, ing.ID, nullString(quantity), nullString(expiryDate), time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to save pantry item: %w", err)
	}

	it, err := scanItem(r.db.QueryRowContext(ctx, itemSelect+` WHERE p.id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to load pantry item: %w", err)
	}
	return &it, nil
}

// Remove deletes a pantry item owned by the user.
func (r *Repository) Remove(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_pantry WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to remove pantry item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to remove pantry item: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
