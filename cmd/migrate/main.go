package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"souvenir-shop/internal/config"
	"souvenir-shop/internal/db"
	"souvenir-shop/internal/logging"
	"souvenir-shop/internal/migrate"
)

func main() {
	var sqliteOnly bool
	flag.BoolVar(&sqliteOnly, "sqlite", false, "migrate the SQLite snapshot file at SQLITE_PATH instead of postgres")
	flag.Parse()

	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	if sqliteOnly {
		sqlDB, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal("open sqlite", zap.Error(err))
		}
		defer sqlDB.Close()
		if err := migrate.ApplySQLite(ctx, sqlDB); err != nil {
			logger.Fatal("apply migrations", zap.Error(err))
		}
		logger.Info("migrations applied", zap.String("sqlite", cfg.SQLitePath))
		return
	}

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	logger.Info("migrations applied")
}
