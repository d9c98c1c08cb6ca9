package main

import (
	"context"
	"errors"
	"os"
	"time"

	"wrapped/internal/amqp"
	"wrapped/internal/cli"
	"wrapped/internal/log"
	"wrapped/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	bootstrap := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(bootstrap)
	logger := cli.SetupLogger(cfg.LogLevel).WithComponent(log.ComponentWorker)

	logger.Info("Starting wrapped-worker")

	if cfg.SQLiteDBPath == "" {
		logger.Error("SQLITE_DB_PATH is required for the worker")
		os.Exit(1)
	}

	result := cli.InitSource(context.Background(), logger, cfg)
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	refresher := worker.NewRefreshWorker(result.Source, repo, cfg.SnapshotsKept, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
			os.Exit(1)
		}
		defer amqpClient.Close()

		go func() {
			if err := amqpClient.ConsumeRefresh(ctx, refresher.HandleRefreshMessage); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", log.FieldError, err.Error())
			}
		}()
	} else {
		logger.Info("AMQP disabled - only scheduled refreshes will run")
	}

	q := cfg.DefaultQuery()
	logger.Info("Scheduled refresh configured",
		log.FieldQueryKey, q.Key(),
		"interval", cfg.RefreshInterval.String(),
		"snapshots_kept", cfg.SnapshotsKept)
	go refresher.Run(ctx, q, cfg.RefreshInterval)

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
