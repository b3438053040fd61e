package app

import (
	"context"
	"errors"
	"testing"

	"recipe-planner/internal/recipe"
)

func TestShoppingList(t *testing.T) {
	a, _ := newTestApp(t, nil)
	ctx := userCtx("u1")

	if _, err := a.ShoppingList(context.Background(), ""); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated, got %v", err)
	}

	rec := &recipe.Recipe{UserID: "u1", Name: "Omelette", Servings: 1, Ingredients: []recipe.RecipeIngredient{
		{Name: "Eggs", Quantity: "3"},
		{Name: "Butter", Quantity: "1 tbsp"},
	}}
	if err := a.recipes.Create(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
	if _, err := a.AddMeal(ctx, rec.ID, "2024-06-04", "breakfast"); err != nil {
		t.Fatal(err)
	}
	if _, err := a.AddPantryItem(ctx, "butter", "", ""); err != nil {
		t.Fatal(err)
	}

	// Empty week start means the current week (2024-06-03).
	list, err := a.ShoppingList(ctx, "")
	if err != nil {
		t.Fatalf("ShoppingList failed: %v", err)
	}
	if list.WeekStart != "2024-06-03" {
		t.Errorf("Expected current week, got %s", list.WeekStart)
	}
	if len(list.Items) != 1 || list.Items[0].Name != "eggs" {
		t.Errorf("Expected only eggs to buy, got %+v", list.Items)
	}
	if len(list.InPantry) != 1 {
		t.Errorf("Expected butter in pantry, got %v", list.InPantry)
	}

	next, err := a.ShoppingList(ctx, "2024-06-12")
	if err != nil {
		t.Fatal(err)
	}
	if next.WeekStart != "2024-06-10" || len(next.Items) != 0 {
		t.Errorf("Expected empty list for next week, got %+v", next)
	}
}
