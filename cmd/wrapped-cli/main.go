package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"wrapped/internal/backend"
	"wrapped/internal/cli"
	"wrapped/internal/config"
	"wrapped/internal/core"
	"wrapped/internal/fetcher"
	"wrapped/internal/log"
	"wrapped/internal/view"
)

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()

	desde := flag.String("desde", cfg.Desde, "first day of the report (YYYY-MM-DD)")
	hasta := flag.String("hasta", cfg.Hasta, "last day of the report (YYYY-MM-DD)")
	modo := flag.String("modo", cfg.Modo, "grouping mode: comercio or giro_comercio")
	plain := flag.Bool("plain", false, "print unstyled text")
	flag.Parse()

	cfg.Desde, cfg.Hasta, cfg.Modo = *desde, *hasta, *modo

	// Logs go to stderr so stdout carries only the report.
	logCfg := log.DefaultConfig()
	logCfg.Level = log.ParseLevel(cfg.LogLevel)
	logCfg.Output = os.Stderr
	logger := log.New(logCfg)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result := cli.InitSource(ctx, logger, cfg)
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	if err := run(ctx, result.Source, cfg.DefaultQuery(), *plain, logger); err != nil {
		logger.Error("Report failed", log.FieldError, err.Error())
		os.Exit(1)
	}
}

// run mounts one session, waits for its fetch chain and prints whatever
// state it reached.
func run(ctx context.Context, src backend.Source, q core.Query, plain bool, logger *log.Logger) error {
	session := fetcher.NewSourceSession(src, q, logger)
	if err := session.Load(ctx); err != nil {
		logger.Warn("Fetch chain ended early", log.FieldError, err.Error(), log.FieldState, session.State().String())
	}

	m := view.Build(session.Snapshot())
	if plain {
		return view.WriteText(os.Stdout, m)
	}
	_, err := fmt.Fprint(os.Stdout, cli.Render(m, cli.DefaultStyles()))
	return err
}
