package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"singil/internal/amqp"
	"singil/internal/backend"
	"singil/internal/cli"
	apphttp "singil/internal/http"
	"singil/internal/log"
	"singil/internal/services"
	"singil/internal/session"
	"singil/internal/storage"
	"singil/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() { _ = result.Cleanup() }()
	}

	// The persistent backends hand back the concrete repository; memory
	// has none and falls back to in-process stores.
	repo, _ := result.Storage.(*storage.SQLiteRepository)
	var sessions session.Store
	if repo != nil {
		sessions = repo
	} else {
		sessions = session.NewMemoryStore()
	}

	// AMQP is optional: without it the export queue endpoint reports 503
	// and downloads still stream synchronously.
	var exportQueue apphttp.ExportQueue
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPExportQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, export queue disabled", "error", err)
		} else {
			defer amqpClient.Close()
			exportQueue = amqpClient
		}
	}

	reports := services.NewReportService(result.Backend, repo)
	approvals := services.NewApprovalService(result.Backend, result.Backend, result.Backend, result.Backend)
	notifier := worker.NewNotifier(result.Backend, result.Backend, repo, nil, cfg.PollInterval, nil)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Reports:       reports,
		Approvals:     approvals,
		Sections:      result.Backend,
		Stats:         result.Backend,
		Notifications: result.Backend,
		Auth:          result.Backend,
		Notifier:      notifier,
		Sessions:      sessions,
		Exports:       exportQueue,
		Logger:        logger.WithComponent(log.ComponentHTTP),
	})
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	// Keep snapshots warm in the background when local storage exists.
	var snapshots *services.SnapshotProcessor
	if repo != nil {
		snapCfg := services.DefaultSnapshotProcessorConfig()
		snapCfg.RefreshInterval = cfg.SnapshotInterval
		snapshots = services.NewSnapshotProcessor(reports, snapCfg)
		if err := snapshots.Start(ctx); err != nil {
			logger.Warn("Snapshot processor failed to start", "error", err)
			snapshots = nil
		}
	}

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		if snapshots != nil {
			_ = snapshots.Stop(stopCtx)
		}
		if err := srv.Shutdown(stopCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting singil server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
