package app

import (
	"context"

	"recipe-planner/internal/planner"
	"recipe-planner/internal/shopping"

	"golang.org/x/sync/errgroup"
)

// ShoppingList gathers the ingredients of the recipes planned in a week,
// setting aside what the pantry already holds.
func (a *App) ShoppingList(ctx context.Context, weekStart string) (*shopping.List, error) {
	userID, err := a.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	start, err := a.resolveWeek(weekStart)
	if err != nil {
		return nil, err
	}

	var lines []shopping.Line
	var have []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		lines, err = a.shopping.WeekLines(gctx, userID, start)
		return err
	})
	g.Go(func() (err error) {
		have, err = a.pantry.Names(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, a.fail(userID, "Failed to build shopping list", err)
	}

	list := shopping.Build(planner.FormatDate(start), lines, have)
	return &list, nil
}
