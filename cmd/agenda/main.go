package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"agenda/internal/amqp"
	"agenda/internal/backend"
	"agenda/internal/cli"
	apphttp "agenda/internal/http"
	"agenda/internal/intent"
	"agenda/internal/log"
	"agenda/internal/observability"
	"agenda/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	ctx, stop := cli.SignalContext()
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	metrics := observability.NewMetrics()
	backendCfg.Skips = metrics
	store, err := backend.NewStore(ctx, backendCfg, logger)
	if err != nil {
		logger.Error("Failed to initialize record store", log.FieldError, err, "backend", backendCfg.Type.String())
		os.Exit(1)
	}
	defer store.Close()

	// Change notifications are optional; the API works without a broker.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, ledger changes will not be announced", log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	resolver, closeResolver, err := backend.NewResolver(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize intent resolver", log.FieldError, err)
		os.Exit(1)
	}
	defer closeResolver()

	money, err := apphttp.NewMoneyFormatter(cfg.Currency, cfg.Locale)
	if err != nil {
		logger.Error("Invalid money display settings", log.FieldError, err)
		os.Exit(1)
	}

	guard := intent.NewGuard(resolver, cfg.IntentTimeout, logger, metrics)

	srv := apphttp.NewServer(cfg, apphttp.Dependencies{
		Records: services.NewRecordService(store, store, publisher, cfg.AllowStatusRevert, logger),
		Ledger:  services.NewLedgerService(store, logger, metrics),
		Search:  services.NewSearchService(store, guard, logger),
		Store:   store,
		Metrics: metrics,
		Money:   money,
		Logger:  logger,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting agenda server", log.FieldOperation, log.OpStartup,
			"port", cfg.Port, "backend", backendCfg.Type.String(), "smart_search", cfg.IntentEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", log.FieldError, err)
	}
	logger.Info("Server stopped gracefully")
}
