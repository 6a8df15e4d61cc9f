package main

import (
	"context"
	"os"
	"time"

	"singil/internal/amqp"
	"singil/internal/backend"
	"singil/internal/cli"
	"singil/internal/log"
	"singil/internal/services"
	"singil/internal/storage"
	"singil/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentNotify)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting notify-worker")

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

	// Without AMQP the poller still tracks seen notifications locally;
	// events simply are not fanned out.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPNotifyQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without fan-out", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
		}
	}

	cadence, err := services.GetCadence(cfg.PollCadence)
	if err != nil {
		logger.Error("Unknown poll cadence", "cadence", cfg.PollCadence, "error", err)
		os.Exit(1)
	}

	notifier := worker.NewNotifier(result.Backend, result.Backend, repo, amqpClient, cfg.PollInterval, cadence)

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	logger.Info("Notification poller configured",
		"interval", cfg.PollInterval,
		"cadence", cfg.PollCadence,
		"amqp", amqpClient != nil)

	if err := notifier.Run(shutdownCtx); err != nil && err != context.Canceled {
		logger.Error("Notification poller stopped", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Notify-worker stopped gracefully")
}
