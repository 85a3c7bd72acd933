package main

import (
	"context"
	"errors"
	"os"

	"agenda/internal/amqp"
	"agenda/internal/backend"
	"agenda/internal/cli"
	"agenda/internal/log"
	"agenda/internal/services"
	gsheet "agenda/internal/sheets/google"
	"agenda/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentWorker)

	if err := cfg.ValidateExport(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	if backendCfg.Type == backend.MemoryBackend {
		logger.Warn("Worker uses the memory backend; only seeded records will be exported")
	}
	store, err := backend.NewStore(ctx, backendCfg, logger)
	if err != nil {
		logger.Error("Failed to initialize record store", log.FieldError, err)
		os.Exit(1)
	}
	defer store.Close()

	sheet, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleCredentialsJSON,
		CredentialsFile: cfg.GoogleCredentialsFile,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	ledgerSvc := services.NewLedgerService(store, logger, nil)
	exporter := worker.NewExportWorker(ledgerSvc, sheet, logger)

	// Catch up on changes made while the worker was down.
	if err := exporter.Export(ctx); err != nil {
		logger.Error("Startup export failed", log.FieldError, err)
	}

	logger.Info("Starting agenda-worker", log.FieldOperation, log.OpStartup, "queue", cfg.AMQPQueue, "sheet", cfg.GoogleSheetName)
	if err := client.ConsumeLedgerChanged(ctx, exporter.HandleLedgerChanged); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
