package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"walletnote/internal/amqp"
	"walletnote/internal/cache"
	"walletnote/internal/cli"
	"walletnote/internal/config"
	apphttp "walletnote/internal/http"
	"walletnote/internal/log"
	"walletnote/internal/services"
	"walletnote/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	ctx, stop := cli.SignalContext()
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.LogError(ctx, "Server exited with error", err, log.OpStartup, log.ErrorTypeInternal)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	c, err := cli.InitComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	var publisher services.ScanPublisher
	if cfg.Queued() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return fmt.Errorf("connect amqp: %w", err)
		}
		defer client.Close()
		publisher = client
	}

	manager := cache.NewManager()
	manager.StartCleanup(10 * time.Minute)
	defer manager.Stop()

	auth := services.NewAuthService(c.Repo, cfg.SessionTTL)
	reports := services.NewReportService(c.Repo, c.Repo, cfg.CacheTTL, manager)
	records := services.NewRecordService(c.Repo, reports)

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		CookieSecure:       cfg.CookieSecure,
		MaxUploadBytes:     cfg.MaxUploadBytes,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	}, apphttp.Deps{
		Auth:     auth,
		Records:  records,
		Reports:  reports,
		Settings: services.NewSettingService(c.Repo),
		Receipts: services.NewReceiptService(c.Uploads, c.Recognizer, records, publisher),
		DB:       c.Repo,
	})
	if err != nil {
		return err
	}

	janitor := worker.NewJanitor(auth, worker.DefaultJanitorConfig())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting walletnote server", "port", cfg.Port, "queued", cfg.Queued())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return janitor.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := janitor.Stop(shutdownCtx); err != nil {
			logger.Warn("Janitor stop failed", log.FieldError, err)
		}
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
