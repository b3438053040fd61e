package server

import (
	"database/sql"
	"net/http"
	"time"

	"recipe-planner/internal/app"
	"recipe-planner/internal/auth"
	"recipe-planner/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Options configures the HTTP transport.
type Options struct {
	AllowedOrigins []string
	// DataPath is the directory reported on by /health.
	DataPath string
}

// Server exposes the App actions over HTTP.
type Server struct {
	app      *app.App
	db       *sql.DB
	verifier *auth.Verifier
	log      *zap.Logger
	opts     Options
}

// New creates a new Server.
func New(application *app.App, db *sql.DB, verifier *auth.Verifier, log *zap.Logger, opts Options) *Server {
	return &Server{
		app:      application,
		db:       db,
		verifier: verifier,
		log:      log,
		opts:     opts,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.verifier.Middleware)

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/weeks", s.handleGetWeek)
		r.Get("/shopping-list", s.handleShoppingList)

		r.Route("/meal-plans", func(r chi.Router) {
			r.Get("/", s.handleListMealPlans)
			r.Post("/", s.handleAddMeal)
			r.Post("/copy-week", s.handleCopyWeek)
			r.Delete("/{id}", s.handleRemoveMeal)
			r.Post("/{id}/toggle", s.handleToggleMeal)
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", s.handleListRecipes)
			r.Post("/generate", s.handleGenerateRecipe)
			r.Post("/import", s.handleImportRecipe)
			r.Get("/{id}", s.handleGetRecipe)
			r.Delete("/{id}", s.handleDeleteRecipe)
			r.Post("/{id}/favorite", s.handleToggleFavorite)
		})

		r.Get("/profile", s.handleGetProfile)
		r.Patch("/profile", s.handleUpdateProfile)

		r.Route("/pantry", func(r chi.Router) {
			r.Get("/", s.handleListPantry)
			r.Post("/", s.handleAddPantryItem)
			r.Delete("/{id}", s.handleRemovePantryItem)
		})
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := metrics.CheckHealth(r.Context(), s.db, s.opts.DataPath)
	status := http.StatusOK
	if h.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, h)
}
