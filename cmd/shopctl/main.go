package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"souvenir-shop/internal/cli"
	"souvenir-shop/internal/config"
	"souvenir-shop/internal/logging"
)

func main() {
	cfg := config.FromEnv()

	// Terminal output belongs to the commands; only warnings and above are logged.
	level := logging.ParseLevel(cfg.LogLevel)
	if level < zapcore.WarnLevel {
		level = zapcore.WarnLevel
	}
	logger, err := logging.New(level.String())
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, cli.Options{
		StatePath: cfg.SQLitePath,
		Currency:  cfg.CurrencyLabel,
		Logger:    logger.With(zap.String("component", "shopctl")),
	})
	stop()
	if code != 0 {
		_ = logger.Sync()
		os.Exit(code)
	}
}
