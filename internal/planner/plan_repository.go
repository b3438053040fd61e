package planner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"recipe-planner/internal/database"

	"github.com/google/uuid"
)

const mealSelect = `SELECT mp.id, mp.user_id, mp.recipe_id, mp.custom_meal_name, mp.planned_date, mp.meal_type,
		mp.is_completed, mp.notes, mp.created_at,
		r.id, r.name, r.cuisine_type, r.difficulty, r.prep_time, r.cooking_time, r.servings
	FROM meal_plans mp
	LEFT JOIN recipes r ON r.id = mp.recipe_id`

const mealOrder = ` ORDER BY mp.planned_date,
	CASE mp.meal_type WHEN 'breakfast' THEN 0 WHEN 'lunch' THEN 1 WHEN 'dinner' THEN 2 ELSE 3 END`

// PlanRepository is a database-backed repository for meal plans.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{db: d}
}

// ListRange retrieves a user's meals planned between from and to, both inclusive.
func (r *PlanRepository) ListRange(ctx context.Context, userID string, from, to time.Time) ([]Meal, error) {
	return listRange(ctx, r.db, userID, from, to)
}

// LoadWeek retrieves the week of meals starting at the Monday of weekStart.
func (r *PlanRepository) LoadWeek(ctx context.Context, userID string, weekStart time.Time) (*Week, error) {
	start := WeekStart(weekStart)
	meals, err := r.ListRange(ctx, userID, start, WeekEnd(start))
	if err != nil {
		return nil, err
	}
	return &Week{Start: start, Meals: meals}, nil
}

// Get retrieves a single meal owned by the user.
func (r *PlanRepository) Get(ctx context.Context, userID, id string) (*Meal, error) {
	row := r.db.QueryRowContext(ctx, mealSelect+` WHERE mp.id = ? AND mp.user_id = ?`, id, userID)
	m, err := scanMeal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get meal plan: %w", err)
	}
	return &m, nil
}

// UpsertRecipe puts a recipe into the (date, mealType) slot, replacing
// whatever the slot held before.
func (r *PlanRepository) UpsertRecipe(ctx context.Context, userID, recipeID string, date time.Time, mealType MealType) (*Meal, error) {
	return r.upsert(ctx, userID, sql.NullString{String: recipeID, Valid: true}, sql.NullString{}, date, mealType)
}

// UpsertCustom puts a free-text meal into the (date, mealType) slot.
func (r *PlanRepository) UpsertCustom(ctx context.Context, userID, name string, date time.Time, mealType MealType) (*Meal, error) {
	return r.upsert(ctx, userID, sql.NullString{}, sql.NullString{String: name, Valid: true}, date, mealType)
}

func (r *PlanRepository) upsert(
	ctx context.Context,
	userID string,
	recipeID, customName sql.NullString,
	date time.Time,
	mealType MealType,
) (*Meal, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `INSERT INTO meal_plans
			(id, user_id, recipe_id, custom_meal_name, planned_date, meal_type, is_completed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?)
		ON CONFLICT (user_id, planned_date, meal_type) DO UPDATE SET
			recipe_id = excluded.recipe_id,
			custom_meal_name = excluded.custom_meal_name
		RETURNING id`,
		uuid.NewString(), userID, recipeID, customName, FormatDate(date), string(mealType), time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert meal plan: %w", err)
	}
	return r.Get(ctx, userID, id)
}

// Delete removes a meal owned by the user.
func (r *PlanRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM meal_plans WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete meal plan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete meal plan: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleComplete flips the completed flag and returns the new value.
func (r *PlanRepository) ToggleComplete(ctx context.Context, userID, id string) (bool, error) {
	var done bool
	err := r.db.QueryRowContext(ctx, `UPDATE meal_plans SET is_completed = NOT is_completed
		WHERE id = ? AND user_id = ?
		RETURNING is_completed`, id, userID).Scan(&done)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("failed to toggle completion: %w", err)
	}
	return done, nil
}

// CountUpcoming counts the user's meals planned on or after today.
func (r *PlanRepository) CountUpcoming(ctx context.Context, userID string, today time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM meal_plans WHERE user_id = ? AND planned_date >= ?`,
		userID, FormatDate(today),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count upcoming meal plans: %w", err)
	}
	return n, nil
}

// CopyWeek replaces the target week with the meals of the source week, each
// shifted by the distance between the two week starts and marked not
// completed. Both dates are normalized to their Monday. The read, delete and
// insert run in one transaction, so on failure the target week is untouched.
func (r *PlanRepository) CopyWeek(ctx context.Context, userID string, source, target time.Time) (int, error) {
	src, dst := WeekStart(source), WeekStart(target)
	if src.Equal(dst) {
		return 0, ErrSameWeek
	}
	offset := DayOffset(src, dst)

	var copied int
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		meals, err := listRange(ctx, tx, userID, src, WeekEnd(src))
		if err != nil {
			return fmt.Errorf("failed to fetch source meals: %w", err)
		}
		if len(meals) == 0 {
			return ErrEmptySourceWeek
		}

		_, err = tx.ExecContext(ctx,
			`DELETE FROM meal_plans WHERE user_id = ? AND planned_date BETWEEN ? AND ?`,
			userID, FormatDate(dst), FormatDate(WeekEnd(dst)),
		)
		if err != nil {
			return fmt.Errorf("failed to clear target week: %w", err)
		}

		now := time.Now().UTC()
		for _, m := range meals {
			day, err := ParseDate(m.PlannedDate)
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, `INSERT INTO meal_plans
					(id, user_id, recipe_id, custom_meal_name, planned_date, meal_type, is_completed, notes, created_at)
				VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`,
				uuid.NewString(), userID, nullString(m.RecipeID), nullString(m.CustomMealName),
				FormatDate(day.AddDate(0, 0, offset)), string(m.MealType), nullString(m.Notes), now,
			)
			if err != nil {
				return fmt.Errorf("failed to copy meals: %w", err)
			}
		}
		copied = len(meals)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return copied, nil
}

func listRange(ctx context.Context, q database.DBTX, userID string, from, to time.Time) ([]Meal, error) {
	rows, err := q.QueryContext(ctx, mealSelect+` WHERE mp.user_id = ? AND mp.planned_date BETWEEN ? AND ?`+mealOrder,
		userID, FormatDate(from), FormatDate(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list meal plans: %w", err)
	}
	defer rows.Close()

	meals := []Meal{}
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal plan: %w", err)
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeal(s rowScanner) (Meal, error) {
	var m Meal
	var mealType string
	var recipeID, customName, notes sql.NullString
	var rID, rName, rCuisine, rDifficulty sql.NullString
	var rPrep, rCook, rServings sql.NullInt64

	err := s.Scan(&m.ID, &m.UserID, &recipeID, &customName, &m.PlannedDate, &mealType,
		&m.IsCompleted, &notes, &m.CreatedAt,
		&rID, &rName, &rCuisine, &rDifficulty, &rPrep, &rCook, &rServings)
	if err != nil {
		return Meal{}, err
	}

	m.MealType = MealType(mealType)
	m.RecipeID = recipeID.String
	m.CustomMealName = customName.String
	m.Notes = notes.String
	if rID.Valid {
		m.Recipe = &RecipeSummary{
			ID:          rID.String,
			Name:        rName.String,
			CuisineType: rCuisine.String,
			Difficulty:  rDifficulty.String,
			PrepTime:    int(rPrep.Int64),
			CookingTime: int(rCook.Int64),
			Servings:    int(rServings.Int64),
		}
	}
	return m, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
