package app

import (
	"context"
	"errors"
	"strings"

	"recipe-planner/internal/cache"
	"recipe-planner/internal/pantry"
	"recipe-planner/internal/planner"
	"recipe-planner/internal/profile"

	"golang.org/x/sync/errgroup"
)

// DashboardStats are the counters on the user's home page.
type DashboardStats struct {
	TotalRecipes  int `json:"total_recipes"`
	Favorites     int `json:"favorites"`
	UpcomingMeals int `json:"upcoming_meals"`
}

// Dashboard counts the user's recipes, favorites and upcoming meals.
func (a *App) Dashboard(ctx context.Context) (*DashboardStats, error) {
	userID, err := a.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	today := a.today()
	stats, err := cache.Get(ctx, a.cache, cache.Dashboard, userID, planner.FormatDate(today), func(ctx context.Context) (*DashboardStats, error) {
		var s DashboardStats
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			s.TotalRecipes, err = a.recipes.Count(gctx, userID)
			return err
		})
		g.Go(func() (err error) {
			s.Favorites, err = a.recipes.CountFavorites(gctx, userID)
			return err
		})
		g.Go(func() (err error) {
			s.UpcomingMeals, err = a.plans.CountUpcoming(gctx, userID, today)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return &s, nil
	})
	if err != nil {
		return nil, a.fail(userID, "Failed to load dashboard", err)
	}
	return stats, nil
}

// GetProfile returns the user's profile.
func (a *App) GetProfile(ctx context.Context) (*profile.Profile, error) {
	userID, err := a.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	p, err := a.profiles.Get(ctx, userID)
	if err != nil {
		return nil, a.fail(userID, "Failed to fetch profile", err)
	}
	return p, nil
}

// UpdateProfile applies the set fields of u.
func (a *App) UpdateProfile(ctx context.Context, u profile.Update) (*profile.Profile, error) {
	userID, err := a.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if u.Username != nil && len(strings.TrimSpace(*u.Username)) > 50 {
		return nil, invalid("username", "Username must be at most 50 characters")
	}

	p, err := a.profiles.Apply(ctx, userID, u)
	if err != nil {
		return nil, a.fail(userID, "Failed to update profile", err)
	}
	return p, nil
}

// ListPantry returns the user's pantry.
func (a *App) ListPantry(ctx context.Context) ([]pantry.Item, error) {
	userID, err := a.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	items, err := a.pantry.List(ctx, userID)
	if err != nil {
		return nil, a.fail(userID, "Failed to fetch pantry", err)
	}
	return items, nil
}

// AddPantryItem adds an ingredient to the pantry or updates it.
func (a *App) AddPantryItem(ctx context.Context, name, quantity, expiryDate string) (*pantry.Item, error) {
	userID, err := a.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, invalid("name", "Please enter an ingredient")
	}
	expiryDate = strings.TrimSpace(expiryDate)
	if expiryDate != "" {
		if _, err := parseDate("expiry_date", expiryDate); err != nil {
			return nil, err
		}
	}

	item, err := a.pantry.Upsert(ctx, userID, name, strings.TrimSpace(quantity), expiryDate)
	if err != nil {
		return nil, a.fail(userID, "Failed to update pantry", err)
	}
	return item, nil
}

// RemovePantryItem deletes an item from the user's pantry.
func (a *App) RemovePantryItem(ctx context.Context, id string) error {
	userID, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	if err := a.pantry.Remove(ctx, userID, id); err != nil {
		if errors.Is(err, pantry.ErrNotFound) {
			return ErrNotFound
		}
		return a.fail(userID, "Failed to update pantry", err)
	}
	return nil
}
