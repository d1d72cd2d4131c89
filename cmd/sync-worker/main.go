package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/export/google"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentSheets})
	log.SetDefault(logger)

	logger.Info("Starting sync-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for the sync worker")
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sheets, err := google.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	eventsClient, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer eventsClient.Close()

	handler := func(event *events.TransactionEvent) error {
		// Only created rows are exported; the sheet is an append-only journal,
		// updates and deletes stay local.
		if event.Kind != events.KindCreated {
			return nil
		}

		t, err := repo.Queries().GetTransaction(ctx, event.UserID, event.TransactionID)
		if errors.Is(err, core.ErrNotFound) {
			logger.Warn("Transaction gone before sync, dropping event",
				log.FieldTransactionID, event.TransactionID, log.FieldUserID, event.UserID)
			return nil
		}
		if err != nil {
			return err
		}

		ref, err := sheets.AppendTransaction(ctx, t)
		if err != nil {
			return err
		}
		logger.Info("Transaction synced to sheet",
			log.FieldTransactionID, t.ID, log.FieldUserID, t.UserID, log.FieldSheetsRef, ref)
		return nil
	}

	logger.Info("Consuming transaction events", "queue", cfg.AMQPQueue)
	if err := eventsClient.ConsumeTransactionEvents(ctx, handler); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Event consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Sync-worker shutdown complete")
}
