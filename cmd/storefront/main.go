package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"souvenir-shop/internal/catalogfile"
	"souvenir-shop/internal/config"
	"souvenir-shop/internal/db"
	"souvenir-shop/internal/httpserver"
	"souvenir-shop/internal/logging"
	"souvenir-shop/internal/markup"
	"souvenir-shop/internal/migrate"
	categoryrepo "souvenir-shop/internal/repository/category"
	productrepo "souvenir-shop/internal/repository/product"
	"souvenir-shop/internal/repository/snapshot"
	"souvenir-shop/internal/schedule"
	"souvenir-shop/internal/seed"
	"souvenir-shop/internal/service/catalog"
	"souvenir-shop/internal/service/visitor"
)

const redisPrefix = "shop:"

func main() {
	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	deps := &backends{cfg: cfg, logger: logger}
	defer deps.close()

	cat, err := deps.catalog(ctx)
	if err != nil {
		logger.Fatal("load catalog", zap.String("source", cfg.CatalogSource), zap.Error(err))
	}
	store, err := deps.store(ctx)
	if err != nil {
		logger.Fatal("open snapshot store", zap.String("store", cfg.SnapshotStore), zap.Error(err))
	}
	logger.Info("storefront: catalog loaded",
		zap.Int("products", cat.Len()),
		zap.String("source", cfg.CatalogSource),
		zap.String("store", cfg.SnapshotStore),
	)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Catalog:   cat,
		Store:     store,
		Visitors:  visitor.New(0),
		Markup:    markup.New(),
		Scheduler: schedule.Real{},
		Checks:    deps.checks,
		Options: httpserver.Options{
			RenderDelay: cfg.RenderDelay,
			ToastTTL:    cfg.ToastTTL,
			IdleTTL:     cfg.SessionIdleTTL,
			CORSOrigins: cfg.CORSOrigins,
			Currency:    cfg.CurrencyLabel,
		},
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}

// backends opens the catalog source and snapshot store named by the config and keeps
// the connections for readiness checks and shutdown.
type backends struct {
	cfg     config.Config
	logger  *zap.Logger
	pool    *pgxpool.Pool
	checks  []httpserver.ReadyCheck
	closers []func()
}

func (b *backends) postgres(ctx context.Context) (*pgxpool.Pool, error) {
	if b.pool != nil {
		return b.pool, nil
	}
	pool, err := db.Connect(ctx, b.cfg.DBConnString)
	if err != nil {
		return nil, err
	}
	b.pool = pool
	b.checks = append(b.checks, httpserver.ReadyCheck{Name: "postgres", Ping: pool.Ping})
	b.closers = append(b.closers, pool.Close)
	return pool, nil
}

func (b *backends) catalog(ctx context.Context) (*catalog.Catalog, error) {
	var src catalog.Source
	switch b.cfg.CatalogSource {
	case config.CatalogSeed:
		doc, err := seed.Catalog()
		if err != nil {
			return nil, err
		}
		src = doc
	case config.CatalogFile:
		doc, err := catalogfile.Load(b.cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
		src = doc
	case config.CatalogPostgres:
		pool, err := b.postgres(ctx)
		if err != nil {
			return nil, err
		}
		src = catalog.RepositorySource{
			ProductRepo:  productrepo.NewPostgres(pool, b.logger),
			CategoryRepo: categoryrepo.NewPostgres(pool),
		}
	default:
		return nil, fmt.Errorf("unknown catalog source %q", b.cfg.CatalogSource)
	}
	return catalog.Load(ctx, src)
}

func (b *backends) store(ctx context.Context) (snapshot.Repository, error) {
	switch b.cfg.SnapshotStore {
	case config.StoreMemory:
		return snapshot.NewMemory(), nil
	case config.StoreSQLite:
		sqlDB, err := db.OpenSQLite(ctx, b.cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = sqlDB.Close() })
		if err := migrate.ApplySQLite(ctx, sqlDB); err != nil {
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		b.checks = append(b.checks, httpserver.ReadyCheck{Name: "sqlite", Ping: sqlDB.PingContext})
		return snapshot.NewSQLite(sqlDB), nil
	case config.StorePostgres:
		pool, err := b.postgres(ctx)
		if err != nil {
			return nil, err
		}
		return snapshot.NewPostgres(pool), nil
	case config.StoreRedis:
		client, err := db.ConnectRedis(ctx, b.cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = client.Close() })
		b.checks = append(b.checks, httpserver.ReadyCheck{Name: "redis", Ping: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}})
		return snapshot.NewRedis(client, redisPrefix, 0), nil
	default:
		return nil, fmt.Errorf("unknown snapshot store %q", b.cfg.SnapshotStore)
	}
}

func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}
