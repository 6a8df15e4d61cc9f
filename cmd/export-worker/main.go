package main

import (
	"context"
	"os"
	"time"

	"singil/internal/amqp"
	"singil/internal/backend"
	"singil/internal/cli"
	exportgoogle "singil/internal/export/google"
	"singil/internal/log"
	"singil/internal/services"
	"singil/internal/storage"
	"singil/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentExport)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting export-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required: the export worker consumes queued requests")
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() { _ = result.Cleanup() }()
	}
	repo, _ := result.Storage.(*storage.SQLiteRepository)

	// Google Sheets is optional; without it artifacts only land on disk.
	var sheets worker.SheetsDestination
	if cfg.GoogleSpreadsheetID != "" {
		dest, err := exportgoogle.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets destination", "error", err)
			os.Exit(1)
		}
		sheets = dest
		logger.Info("Google Sheets destination initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPExportQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	reports := services.NewReportService(result.Backend, repo)
	exportWorker := worker.NewExportWorker(reports, repo, sheets, cfg.ExportOutputDir)

	// Snapshot refresh rides along in this process: the same fetches that
	// serve exports keep the offline cache warm.
	var snapshots *services.SnapshotProcessor
	if repo != nil {
		snapCfg := services.DefaultSnapshotProcessorConfig()
		snapCfg.RefreshInterval = cfg.SnapshotInterval
		snapshots = services.NewSnapshotProcessor(reports, snapCfg)
		if err := snapshots.Start(context.Background()); err != nil {
			logger.Warn("Snapshot processor failed to start", "error", err)
			snapshots = nil
		}
	}

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		if snapshots != nil {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer stopCancel()
			_ = snapshots.Stop(stopCtx)
		}
	})

	logger.Info("Consuming export requests",
		"queue", cfg.AMQPExportQueue,
		"output_dir", cfg.ExportOutputDir,
		"sheets", sheets != nil)

	err = amqpClient.ConsumeExportRequests(shutdownCtx, func(msg *amqp.ExportRequest) error {
		return exportWorker.HandleExportRequest(shutdownCtx, msg)
	})
	if err != nil && err != context.Canceled {
		logger.Error("Export consumption stopped", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Export-worker stopped gracefully")
}
