package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"recipe-planner/internal/app"
	"recipe-planner/internal/auth"
	"recipe-planner/internal/cache"
	"recipe-planner/internal/config"
	"recipe-planner/internal/database"
	"recipe-planner/internal/llm"
	"recipe-planner/internal/logger"
	"recipe-planner/internal/metrics"
	"recipe-planner/internal/server"

	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.IsProduction())
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync(zlog)

	ctx := context.Background()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "serve":
		serve(ctx, cfg, db, zlog)
	case "generate":
		generate(ctx, cfg, db, zlog, os.Args[2:])
	case "metrics-report":
		reportCmd := flag.NewFlagSet("metrics-report", flag.ExitOnError)
		days := reportCmd.Int("days", 7, "Report the last N days")
		reportCmd.Parse(os.Args[2:])

		usage, err := metrics.NewStore(db.SQL).GetDailyUsage(ctx, *days)
		if err != nil {
			log.Fatalf("Failed to fetch metrics: %v", err)
		}
		fmt.Print(metrics.FormatReport(usage, metrics.GetSysHealth(filepath.Dir(cfg.DatabasePath))))
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := metrics.NewStore(db.SQL).Cleanup(ctx, *days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
	case "issue-token":
		tokenCmd := flag.NewFlagSet("issue-token", flag.ExitOnError)
		user := tokenCmd.String("user", "", "User ID to put in the token subject")
		ttl := tokenCmd.Duration("ttl", 24*time.Hour, "Token lifetime")
		tokenCmd.Parse(os.Args[2:])

		if err := cfg.ValidateServer(); err != nil {
			log.Fatalf("Invalid configuration: %v", err)
		}
		if *user == "" {
			log.Fatalf("-user is required")
		}
		token, err := auth.NewVerifier(cfg.AuthJWTSecret, cfg.AuthJWTAudience).Issue(*user, *ttl)
		if err != nil {
			log.Fatalf("Failed to issue token: %v", err)
		}
		fmt.Println(token)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func newApp(ctx context.Context, cfg *config.Config, db *database.DB, zlog *zap.Logger) (*app.App, llm.Client) {
	client, err := llm.NewFromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize %s client: %v", cfg.LLMProvider, err)
	}
	return app.NewApp(db, client, cache.New(cache.TTLs(cfg.CacheTTL)), zlog), client
}

func serve(ctx context.Context, cfg *config.Config, db *database.DB, zlog *zap.Logger) {
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	application, client := newApp(ctx, cfg, db, zlog)
	defer client.Close()

	verifier := auth.NewVerifier(cfg.AuthJWTSecret, cfg.AuthJWTAudience)
	api := server.New(application, db.SQL, verifier, zlog, server.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		DataPath:       filepath.Dir(cfg.DatabasePath),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("server listening", zap.String("port", cfg.Port), zap.String("llm_provider", cfg.LLMProvider))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	zlog.Info("server exiting")
}

func generate(ctx context.Context, cfg *config.Config, db *database.DB, zlog *zap.Logger, args []string) {
	genCmd := flag.NewFlagSet("generate", flag.ExitOnError)
	user := genCmd.String("user", "", "User ID that owns the recipe")
	cuisine := genCmd.String("cuisine", "", "Preferred cuisine")
	difficulty := genCmd.String("difficulty", "", "easy, medium or hard")
	cookingTime := genCmd.Int("time", 0, "Maximum cooking time in minutes")
	servings := genCmd.Int("servings", 0, "Number of servings")
	usePantry := genCmd.Bool("pantry", false, "Also use the ingredients in the user's pantry")
	genCmd.Parse(args)

	if *user == "" {
		log.Fatalf("-user is required")
	}

	application, client := newApp(ctx, cfg, db, zlog)
	defer client.Close()

	rec, err := application.GenerateRecipe(auth.WithUserID(ctx, *user), app.GenerateInput{
		Ingredients: genCmd.Args(),
		Cuisine:     *cuisine,
		Difficulty:  *difficulty,
		CookingTime: *cookingTime,
		Servings:    *servings,
		UsePantry:   *usePantry,
	})
	if err != nil {
		log.Fatalf("Generation failed: %s", app.Message(err))
	}

	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode recipe: %v", err)
	}
	fmt.Println(string(out))
}

func printUsage() {
	fmt.Println("Usage: recipe-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  serve              Run the HTTP API")
	fmt.Println("  generate           Generate a recipe: generate -user <id> [flags] <ingredient>...")
	fmt.Println("  metrics-report     Show recent LLM usage and system health")
	fmt.Println("  metrics-cleanup    Remove old metric records")
	fmt.Println("  issue-token        Sign a session token for local testing")
}
