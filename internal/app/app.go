package app

import (
	"context"
	"time"

	"recipe-planner/internal/auth"
	"recipe-planner/internal/cache"
	"recipe-planner/internal/clipper"
	"recipe-planner/internal/database"
	"recipe-planner/internal/llm"
	"recipe-planner/internal/metrics"
	"recipe-planner/internal/pantry"
	"recipe-planner/internal/planner"
	"recipe-planner/internal/profile"
	"recipe-planner/internal/recipe"
	"recipe-planner/internal/shopping"

	"go.uber.org/zap"
)

// App holds the application's dependencies and exposes one method per
// user action. Every action resolves the user from the context first.
type App struct {
	db           *database.DB
	recipes      *recipe.Repository
	plans        *planner.PlanRepository
	pantry       *pantry.Repository
	profiles     *profile.Repository
	shopping     *shopping.Repository
	metricsStore *metrics.Store
	generator    *recipe.Generator
	clipper      *clipper.Clipper
	cache        *cache.Cache
	log          *zap.Logger
	now          func() time.Time
}

// NewApp wires the repositories and model clients around db. A nil cache
// disables caching.
func NewApp(db *database.DB, textGen llm.TextGenerator, c *cache.Cache, log *zap.Logger) *App {
	recipes := recipe.NewRepository(db.SQL)
	return &App{
		db:           db,
		recipes:      recipes,
		plans:        planner.NewPlanRepository(db.SQL),
		pantry:       pantry.NewRepository(db.SQL, recipes),
		profiles:     profile.NewRepository(db.SQL),
		shopping:     shopping.NewRepository(db.SQL),
		metricsStore: metrics.NewStore(db.SQL),
		generator:    recipe.NewGenerator(textGen),
		clipper:      clipper.NewClipper(textGen),
		cache:        c,
		log:          log,
		now:          time.Now,
	}
}

func (a *App) currentUser(ctx context.Context) (string, error) {
	userID, ok := auth.UserID(ctx)
	if !ok {
		return "", ErrUnauthenticated
	}
	return userID, nil
}

// fail logs err and returns the storage error reported to the user.
func (a *App) fail(userID, message string, err error) error {
	a.log.Error(message, zap.String("user_id", userID), zap.Error(err))
	return storageError(message, err)
}

func (a *App) recordMeta(ctx context.Context, meta llm.AgentMeta) {
	if meta.AgentName == "" {
		return
	}
	if err := a.metricsStore.RecordMeta(ctx, meta); err != nil {
		a.log.Warn("failed to record execution metrics", zap.String("agent", meta.AgentName), zap.Error(err))
	}
}

func (a *App) today() time.Time {
	return planner.Day(a.now())
}
