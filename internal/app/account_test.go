package app

import (
	"errors"
	"strings"
	"testing"

	"recipe-planner/internal/profile"
)

func TestDashboard(t *testing.T) {
	a, _ := newTestApp(t, nil)
	ctx := userCtx("u1")

	first := createRecipe(t, a, "u1", "Soup")
	createRecipe(t, a, "u1", "Salad")
	createRecipe(t, a, "u2", "Stew")
	if _, err := a.ToggleFavorite(ctx, first); err != nil {
		t.Fatal(err)
	}
	for _, d := range []string{"2024-06-04", "2024-06-05", "2024-06-12"} {
		if _, err := a.AddCustomMeal(ctx, "Meal", d, "dinner"); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := a.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	want := DashboardStats{TotalRecipes: 2, Favorites: 1, UpcomingMeals: 2}
	if *stats != want {
		t.Errorf("Expected %+v, got %+v", want, *stats)
	}

	if _, err := a.AddCustomMeal(ctx, "Meal", "2024-06-20", "lunch"); err != nil {
		t.Fatal(err)
	}
	stats, err = a.Dashboard(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.UpcomingMeals != 3 {
		t.Errorf("Expected cached dashboard to be invalidated, got %d upcoming", stats.UpcomingMeals)
	}
}

func TestProfileActions(t *testing.T) {
	a, _ := newTestApp(t, nil)
	ctx := userCtx("u1")

	p, err := a.GetProfile(ctx)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if p.ID != "u1" || len(p.DietaryPreferences) != 0 {
		t.Errorf("Expected empty profile, got %+v", p)
	}

	name := " chef_u1 "
	p, err = a.UpdateProfile(ctx, profile.Update{Username: &name, DietaryPreferences: []string{"vegetarian", " "}})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if p.Username != "chef_u1" || len(p.DietaryPreferences) != 1 {
		t.Errorf("Unexpected profile: %+v", p)
	}

	long := strings.Repeat("x", 51)
	var ve *ValidationError
	if _, err := a.UpdateProfile(ctx, profile.Update{Username: &long}); !errors.As(err, &ve) || ve.Field != "username" {
		t.Errorf("Expected username validation error, got %v", err)
	}
}

func TestPantryActions(t *testing.T) {
	a, _ := newTestApp(t, nil)
	ctx := userCtx("u1")

	item, err := a.AddPantryItem(ctx, "Flour", "1kg", "2024-07-01")
	if err != nil {
		t.Fatalf("AddPantryItem failed: %v", err)
	}
	if _, err := a.AddPantryItem(ctx, "flour", "2kg", ""); err != nil {
		t.Fatalf("AddPantryItem update failed: %v", err)
	}

	items, err := a.ListPantry(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Quantity != "2kg" {
		t.Errorf("Expected a single updated item, got %+v", items)
	}

	var ve *ValidationError
	if _, err := a.AddPantryItem(ctx, " ", "", ""); !errors.As(err, &ve) || ve.Field != "name" {
		t.Errorf("Expected name validation error, got %v", err)
	}
	if _, err := a.AddPantryItem(ctx, "Milk", "", "tomorrow"); !errors.As(err, &ve) || ve.Field != "expiry_date" {
		t.Errorf("Expected expiry validation error, got %v", err)
	}

	if err := a.RemovePantryItem(userCtx("u2"), item.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for another user, got %v", err)
	}
	if err := a.RemovePantryItem(ctx, item.ID); err != nil {
		t.Fatalf("RemovePantryItem failed: %v", err)
	}
	items, _ = a.ListPantry(ctx)
	if len(items) != 0 {
		t.Errorf("Expected empty pantry, got %d", len(items))
	}
}
