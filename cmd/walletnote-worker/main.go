package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"walletnote/internal/amqp"
	"walletnote/internal/cli"
	"walletnote/internal/config"
	"walletnote/internal/log"
	"walletnote/internal/services"
	"walletnote/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	if !cfg.Queued() {
		fmt.Fprintln(os.Stderr, "AMQP_URL is required to run the receipt worker")
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, log.ComponentWorker)

	ctx, stop := cli.SignalContext()
	defer stop()

	logger.Info("Starting walletnote-worker", log.FieldQueue, cfg.AMQPQueue)
	if err := run(ctx, cfg, logger); err != nil {
		logger.LogError(ctx, "Worker exited with error", err, log.OpConsume, log.ErrorTypeInternal)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	c, err := cli.InitComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("connect amqp: %w", err)
	}
	defer client.Close()

	// The web process owns the report caches; the worker only writes records.
	records := services.NewRecordService(c.Repo)
	receipts := services.NewReceiptService(c.Uploads, c.Recognizer, records, nil)
	handler := worker.NewReceiptWorker(receipts)

	done := make(chan error, 1)
	go func() {
		done <- client.ConsumeReceiptScans(ctx, handler.HandleReceiptScan)
	}()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received, draining consumer")
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	case <-time.After(30 * time.Second):
		logger.Warn("Shutdown timeout reached")
	}
	return nil
}
