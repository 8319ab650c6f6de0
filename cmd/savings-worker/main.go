package main

import (
	"context"
	"errors"
	"os"

	"savings/internal/amqp"
	"savings/internal/cli"
	"savings/internal/config"
	applog "savings/internal/log"
	"savings/internal/sheets"
	"savings/internal/worker"
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
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully", applog.FieldOperation, applog.OpShutdown)
}

func run(cfg *config.Config, logger *applog.Logger) error {
	if !cfg.AMQPEnabled() {
		return errors.New("AMQP_URL is required to consume ledger events")
	}
	if !cfg.SheetsEnabled() {
		return errors.New("GOOGLE_SPREADSHEET_ID is required to mirror ledger events")
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	logger.Info("Starting savings-worker", applog.FieldOperation, applog.OpStartup,
		"queue", cfg.AMQPQueue,
		"spreadsheet_id", cfg.GoogleSpreadsheetID)

	creds, err := sheets.Credentials(cfg.GoogleServiceAccountJSON, cfg.GoogleServiceAccountFile)
	if err != nil {
		return err
	}
	exporter, err := sheets.NewExporter(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, creds)
	if err != nil {
		return err
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer client.Close()

	w := worker.NewLedgerWorker(exporter, logger)
	if err := client.ConsumeLedgerEvents(ctx, w.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
