package planner

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a meal does not exist or belongs to another user.
	ErrNotFound = errors.New("meal plan not found")
	// ErrSameWeek is returned when a week is copied onto itself.
	ErrSameWeek = errors.New("target week must differ from source week")
	// ErrEmptySourceWeek is returned when the week to copy has no meals.
	ErrEmptySourceWeek = errors.New("no meals found in source week")
)

// MealType is one of the four daily slots.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snack     MealType = "snack"
)

// MealTypes lists the slots in display order.
var MealTypes = []MealType{Breakfast, Lunch, Dinner, Snack}

// ParseMealType validates s.
func ParseMealType(s string) (MealType, bool) {
	mt := MealType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range MealTypes {
		if mt == known {
			return mt, true
		}
	}
	return "", false
}

// RecipeSummary is the part of a recipe shown on the calendar.
type RecipeSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CuisineType string `json:"cuisine_type,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
	PrepTime    int    `json:"prep_time"`
	CookingTime int    `json:"cooking_time"`
	Servings    int    `json:"servings"`
}

// Meal is one scheduled slot. Exactly one of RecipeID and CustomMealName is set.
type Meal struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	RecipeID       string         `json:"recipe_id,omitempty"`
	CustomMealName string         `json:"custom_meal_name,omitempty"`
	PlannedDate    string         `json:"planned_date"`
	MealType       MealType       `json:"meal_type"`
	IsCompleted    bool           `json:"is_completed"`
	Notes          string         `json:"notes,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	Recipe         *RecipeSummary `json:"recipe,omitempty"`
}

// Title is the recipe name or the custom meal name.
func (m Meal) Title() string {
	if m.Recipe != nil {
		return m.Recipe.Name
	}
	return m.CustomMealName
}

// Week is the meal grid of seven days starting on a Monday.
type Week struct {
	Start time.Time
	Meals []Meal
}

// Days lists the dates of the week.
func (w *Week) Days() []time.Time {
	return WeekDays(w.Start)
}

// Slot returns the meal planned for date and mealType, or nil.
func (w *Week) Slot(date time.Time, mealType MealType) *Meal {
	want := FormatDate(date)
	for i := range w.Meals {
		if w.Meals[i].PlannedDate == want && w.Meals[i].MealType == mealType {
			return &w.Meals[i]
		}
	}
	return nil
}

// Completed counts the meals marked done.
func (w *Week) Completed() int {
	n := 0
	for _, m := range w.Meals {
		if m.IsCompleted {
			n++
		}
	}
	return n
}
