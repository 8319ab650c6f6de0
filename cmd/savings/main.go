package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"savings/internal/amqp"
	"savings/internal/backend"
	"savings/internal/cli"
	"savings/internal/config"
	apphttp "savings/internal/http"
	applog "savings/internal/log"
	"savings/internal/services"
	"savings/internal/sheets"
)

func main() {
	cli.LoadEnvFile()

	cfg, cfgErr := cli.LoadAndValidateConfig()
	logLevel := "info"
	if cfg != nil {
		logLevel = cfg.LogLevel
	}
	logger := cli.SetupLogger(logLevel)
	if cfgErr != nil {
		logger.Error("Configuration validation failed", applog.FieldError, cfgErr,
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	svc, err := buildService(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("Ledger cleanup failed", applog.FieldError, err)
		}
	}()

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting savings server", applog.FieldOperation, applog.OpStartup,
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"amqp_enabled", cfg.AMQPEnabled(),
			"sheets_enabled", svc.SheetsEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received", applog.FieldOperation, applog.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// buildService wires the configured backend and the optional event publisher
// and spreadsheet exporter into a ledger service.
func buildService(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*services.LedgerService, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	opts := []services.Option{services.WithLogger(logger)}
	if res.Cleanup != nil {
		opts = append(opts, services.WithCleanup(res.Cleanup))
	}

	if cfg.AMQPEnabled() {
		amqpLog := logger.WithComponent(applog.ComponentAMQP)
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			amqpLog.Warn("Failed to initialize AMQP client, continuing without ledger events",
				applog.FieldError, err,
				applog.FieldErrorType, applog.ErrorTypeNetwork)
		} else {
			amqpLog.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
			opts = append(opts, services.WithPublisher(client))
		}
	}

	svc := services.NewLedgerService(res.Backend, opts...)

	if cfg.SheetsEnabled() {
		exporter, err := newSheetsExporter(ctx, cfg)
		if err != nil {
			_ = svc.Close()
			return nil, err
		}
		services.WithSheetExporter(exporter)(svc)
	}

	return svc, nil
}

func newSheetsExporter(ctx context.Context, cfg *config.Config) (*sheets.Exporter, error) {
	creds, err := sheets.Credentials(cfg.GoogleServiceAccountJSON, cfg.GoogleServiceAccountFile)
	if err != nil {
		return nil, err
	}
	return sheets.NewExporter(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, creds)
}
