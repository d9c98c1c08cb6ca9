package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"wrapped/internal/amqp"
	"wrapped/internal/cli"
	apphttp "wrapped/internal/http"
	"wrapped/internal/log"
	"wrapped/internal/view"
)

func main() {
	cli.LoadEnvFile()

	bootstrap := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(bootstrap)
	logger := cli.SetupLogger(cfg.LogLevel)

	result := cli.InitSource(context.Background(), logger, cfg)
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	renderer, err := view.NewRenderer()
	if err != nil {
		logger.Error("Failed to parse templates", log.FieldError, err.Error())
		os.Exit(1)
	}

	opts := apphttp.Options{
		Addr:      ":" + cfg.Port,
		Source:    result.Source,
		Defaults:  cfg.DefaultQuery(),
		Renderer:  renderer,
		CacheSize: cfg.CacheSize,
		CacheTTL:  cfg.CacheTTL,
		Logger:    logger,
	}

	// The archive and the refresh queue are optional.
	if cfg.SQLiteDBPath != "" {
		repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
		defer repo.Close()
		opts.Archive = repo
		logger.Info("Snapshot archive enabled", "path", cfg.SQLiteDBPath)
	}

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, refresh requests disabled", log.FieldError, err.Error())
		} else {
			defer amqpClient.Close()
			opts.Publisher = amqpClient
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	srv := apphttp.NewServer(opts)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = cfg.RequestTimeout*2 + 5*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
	})

	q := cfg.DefaultQuery()
	logger.Info("Starting wrapped server",
		"port", cfg.Port,
		"source", cfg.Source,
		log.FieldQueryKey, q.Key())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
