package shopping

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"recipe-planner/internal/planner"
)

// Repository reads the ingredients of planned recipes.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new shopping list repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// WeekLines returns one line per ingredient per planned recipe meal in the
// user's week starting at weekStart. Custom meals have no ingredients.
func (r *Repository) WeekLines(ctx context.Context, userID string, weekStart time.Time) ([]Line, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT r.name, i.name, COALESCE(ri.quantity, ''), ri.is_optional
		FROM meal_plans mp
		JOIN recipes r ON r.id = mp.recipe_id
		JOIN recipe_ingredients ri ON ri.recipe_id = r.id
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE mp.user_id = ? AND mp.planned_date BETWEEN ? AND ?
		ORDER BY mp.planned_date, r.name, ri.rowid`,
		userID, planner.FormatDate(weekStart), planner.FormatDate(planner.WeekEnd(weekStart)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query shopping lines: %w", err)
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.RecipeName, &l.Ingredient, &l.Quantity, &l.IsOptional); err != nil {
			return nil, fmt.Errorf("failed to scan shopping line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
