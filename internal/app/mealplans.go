package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"recipe-planner/internal/cache"
	"recipe-planner/internal/planner"

	"go.uber.org/zap"
)

// WeekView is the calendar grid for one week.
type WeekView struct {
	WeekStart string             `json:"week_start"`
	PrevWeek  string             `json:"prev_week"`
	NextWeek  string             `json:"next_week"`
	Days      []string           `json:"days"`
	MealTypes []planner.MealType `json:"meal_types"`
	Meals     []planner.Meal     `json:"meals"`
	Completed int                `json:"completed"`
}

func parseDate(field, s string) (time.Time, error) {
	d, err := planner.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, invalid(field, "Invalid date, expected YYYY-MM-DD")
	}
	return d, nil
}

func parseMealType(s string) (planner.MealType, error) {
	mt, ok := planner.ParseMealType(s)
	if !ok {
		return "", invalid("meal_type", "Meal type must be breakfast, lunch, dinner or snack")
	}
	return mt, nil
}

// resolveWeek returns the Monday of the week containing s, or of the current
// week when s is empty.
func (a *App) resolveWeek(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return planner.CurrentWeek(a.now()), nil
	}
	d, err := parseDate("week_start", s)
	if err != nil {
		return time.Time{}, err
	}
	return planner.WeekStart(d), nil
}

// GetWeek loads the week containing weekStart, or the current week when it is empty.
func (a *App) GetWeek(ctx context.Context, weekStart string) (*WeekView, error) {
	userID, err := a.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	start, err := a.resolveWeek(weekStart)
	if err != nil {
		return nil, err
	}

	week, err := cache.Get(ctx, a.cache, cache.Weeks, userID, planner.FormatDate(start), func(ctx context.Context) (*planner.Week, error) {
		return a.plans.LoadWeek(ctx, userID, start)
	})
	if err != nil {
		return nil, a.fail(userID, "Failed to fetch meal plans", err)
	}

	days := make([]string, 0, planner.DaysPerWeek)
	for _, d := range week.Days() {
		days = append(days, planner.FormatDate(d))
	}
	return &WeekView{
		WeekStart: planner.FormatDate(week.Start),
		PrevWeek:  planner.FormatDate(planner.ShiftWeek(week.Start, -1)),
		NextWeek:  planner.FormatDate(planner.ShiftWeek(week.Start, 1)),
		Days:      days,
		MealTypes: planner.MealTypes,
		Meals:     week.Meals,
		Completed: week.Completed(),
	}, nil
}

// GetMealPlans lists the meals planned between start and end, both inclusive.
func (a *App) GetMealPlans(ctx context.Context, start, end string) ([]planner.Meal, error) {
	userID, err := a.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	from, err := parseDate("start", start)
	if err != nil {
		return nil, err
	}
	to, err := parseDate("end", end)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, invalid("end", "End date must not be before start date")
	}

	meals, err := a.plans.ListRange(ctx, userID, from, to)
	if err != nil {
		return nil, a.fail(userID, "Failed to fetch meal plans", err)
	}
	return meals, nil
}

// AddMeal puts one of the user's recipes into a slot, replacing what was there.
func (a *App) AddMeal(ctx context.Context, recipeID, date, mealType string) (*planner.Meal, error) {
	userID, err := a.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	day, err := parseDate("date", date)
	if err != nil {
		return nil, err
	}
	mt, err := parseMealType(mealType)
	if err != nil {
		return nil, err
	}
	recipeID = strings.TrimSpace(recipeID)
	if recipeID == "" {
		return nil, invalid("recipe_id", "Please select a recipe")
	}

	owned, err := a.recipes.Exists(ctx, userID, recipeID)
	if err != nil {
		return nil, a.fail(userID, "Failed to add meal plan", err)
	}
	if !owned {
		return nil, invalid("recipe_id", "Recipe not found")
	}

	meal, err := a.plans.UpsertRecipe(ctx, userID, recipeID, day, mt)
	if err != nil {
		return nil, a.fail(userID, "Failed to add meal plan", err)
	}
	a.cache.Invalidate(userID, cache.Weeks, cache.Dashboard)
	return meal, nil
}

// AddCustomMeal puts a free-text meal into a slot, replacing what was there.
func (a *App) AddCustomMeal(ctx context.Context, name, date, mealType string) (*planner.Meal, error) {
	userID, err := a.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("custom_meal_name", "Please enter a meal name")
	}
	day, err := parseDate("date", date)
	if err != nil {
		return nil, err
	}
	mt, err := parseMealType(mealType)
	if err != nil {
		return nil, err
	}

	meal, err := a.plans.UpsertCustom(ctx, userID, name, day, mt)
	if err != nil {
		return nil, a.fail(userID, "Failed to add meal", err)
	}
	a.cache.Invalidate(userID, cache.Weeks, cache.Dashboard)
	return meal, nil
}

// RemoveMeal deletes one of the user's meals.
func (a *App) RemoveMeal(ctx context.Context, id string) error {
	userID, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	if err := a.plans.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, planner.ErrNotFound) {
			return ErrNotFound
		}
		return a.fail(userID, "Failed to delete meal plan", err)
	}
	a.cache.Invalidate(userID, cache.Weeks, cache.Dashboard)
	return nil
}

// ToggleMealComplete flips a meal's completed flag and returns the new value.
func (a *App) ToggleMealComplete(ctx context.Context, id string) (bool, error) {
	userID, err := a.currentUser(ctx)
	if err != nil {
		return false, err
	}

	done, err := a.plans.ToggleComplete(ctx, userID, id)
	if err != nil {
		if errors.Is(err, planner.ErrNotFound) {
			return false, ErrNotFound
		}
		return false, a.fail(userID, "Failed to toggle completion", err)
	}
	a.cache.Invalidate(userID, cache.Weeks)
	return done, nil
}

// CopyWeek replaces the target week with a copy of the source week and
// returns the number of meals copied.
func (a *App) CopyWeek(ctx context.Context, sourceWeek, targetWeek string) (int, error) {
	userID, err := a.currentUser(ctx)
	if err != nil {
		return 0, err
	}
	source, err := parseDate("source_week", sourceWeek)
	if err != nil {
		return 0, err
	}
	target, err := parseDate("target_week", targetWeek)
	if err != nil {
		return 0, err
	}

	n, err := a.plans.CopyWeek(ctx, userID, source, target)
	switch {
	case errors.Is(err, planner.ErrSameWeek):
		return 0, invalid("target_week", "Target week must differ from source week")
	case errors.Is(err, planner.ErrEmptySourceWeek):
		return 0, invalid("source_week", "No meals found in source week")
	case err != nil:
		return 0, a.fail(userID, "Failed to copy week", err)
	}

	a.cache.Invalidate(userID, cache.Weeks, cache.Dashboard)
	a.log.Info("copied week",
		zap.String("user_id", userID),
		zap.String("source", planner.FormatDate(planner.WeekStart(source))),
		zap.String("target", planner.FormatDate(planner.WeekStart(target))),
		zap.Int("count", n),
	)
	return n, nil
}
