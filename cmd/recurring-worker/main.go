package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentWorker})
	log.SetDefault(logger)

	logger.Info("Starting recurring-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	recurring := services.NewRecurringService(repo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Recurring materializer configured",
		"interval", cfg.RecurringInterval, "sqlite_db", cfg.SQLiteDBPath)

	// Materialize once on startup, then on every tick. Generate is idempotent
	// so overlapping runs are harmless.
	runAll(ctx, logger, repo, recurring)

	ticker := time.NewTicker(cfg.RecurringInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Recurring-worker shutdown complete")
			return
		case <-ticker.C:
			runAll(ctx, logger, repo, recurring)
		}
	}
}

// runAll materializes the current month for every user with active rules.
func runAll(ctx context.Context, logger *log.Logger, repo *storage.Repository, recurring *services.RecurringService) {
	users, err := repo.Queries().ListUsersWithActiveRules(ctx)
	if err != nil {
		logger.Error("Failed to list users with active rules", log.FieldError, err)
		return
	}

	now := time.Now().UTC()
	year, month := now.Year(), now.Month()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, uid := range users {
		g.Go(func() error {
			result, err := recurring.Generate(gctx, uid, year, month)
			if err != nil {
				logger.Error("Materialization failed", log.FieldUserID, uid, log.FieldError, err)
				return nil // keep going for other users
			}
			if result.Created > 0 {
				logger.Info("Materialized recurring transactions",
					log.FieldUserID, uid, log.FieldYear, year, log.FieldMonth, int(month),
					"created", result.Created, "skipped", result.Skipped)
			}
			return nil
		})
	}
	_ = g.Wait()
}
