// Package cli holds the start-up steps shared by cmd/walletnote and
// cmd/walletnote-worker.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"walletnote/internal/config"
	"walletnote/internal/log"
	"walletnote/internal/ocr"
	"walletnote/internal/storage"
	"walletnote/internal/uploads"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it. It exits the
// process on validation failure, before any logger exists.
func LoadAndValidateConfig() *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}

// SetupLogger installs a text logger at the configured level as the
// process default.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	level, _ := log.ParseLevel(cfg.LogLevel)
	logger := log.New(log.Config{Level: level, Component: component, Output: os.Stdout})
	log.SetDefault(logger)
	return logger
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// Components are the pieces both binaries build from configuration.
type Components struct {
	DB         *sql.DB
	Repo       *storage.SQLiteRepository
	Uploads    *uploads.LocalStorage
	Recognizer ocr.Recognizer
}

// Close releases the recognizer and the database.
func (c *Components) Close() {
	if c.Recognizer != nil {
		_ = c.Recognizer.Close()
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
}

// InitComponents opens the database (running migrations), the upload
// directory and the configured OCR engine.
func InitComponents(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Components, error) {
	db, err := storage.Open(ctx, cfg.SQLiteDBPath)
	if err != nil {
		return nil, err
	}
	c := &Components{DB: db, Repo: storage.NewSQLiteRepository(db)}

	c.Uploads, err = uploads.NewLocalStorage(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		c.Close()
		return nil, err
	}

	c.Recognizer, err = ocr.New(ctx, ocr.Options{
		Engine:      cfg.OCREngine,
		GeminiKey:   cfg.GeminiAPIKey,
		GeminiModel: cfg.GeminiModel,
	})
	if err != nil {
		c.Close()
		return nil, err
	}

	logger.Info("Components initialized",
		"db_path", cfg.SQLiteDBPath,
		"upload_dir", cfg.UploadDir,
		log.FieldEngine, cfg.OCREngine)
	return c, nil
}
