// Package cli drives the storefront from a terminal. Each invocation opens the catalog and
// the visitor profile's saved state, runs one command and prints the affected regions.
package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"souvenir-shop/internal/catalogfile"
	"souvenir-shop/internal/db"
	"souvenir-shop/internal/markup"
	"souvenir-shop/internal/migrate"
	"souvenir-shop/internal/repository/snapshot"
	"souvenir-shop/internal/seed"
	"souvenir-shop/internal/service/catalog"
	"souvenir-shop/internal/service/shop"
)

const defaultProfile = "default"

// Options configures the command tree.
type Options struct {
	// StatePath is the default SQLite file for saved carts and wishlists. Empty keeps
	// state in memory for the single invocation.
	StatePath string
	Currency  string
	Logger    *zap.Logger
}

type app struct {
	logger    *zap.Logger
	currency  string
	md        *markup.Renderer
	statePath string
	catalog   string
	profile   string

	out     io.Writer
	text    *textRenderer
	shop    *shop.Shop
	stateDB *sql.DB
}

// NewRootCommand builds the shopctl command tree.
func NewRootCommand(opts Options) *cobra.Command {
	a := &app{
		logger:    opts.Logger,
		currency:  opts.Currency,
		md:        markup.New(),
		statePath: opts.StatePath,
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	if a.currency == "" {
		a.currency = "Rs."
	}

	root := &cobra.Command{
		Use:           "shopctl",
		Short:         "Browse the souvenir catalog and manage a cart from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.catalog, "catalog", "", "catalog YAML file (defaults to the built-in souvenir catalog)")
	root.PersistentFlags().StringVar(&a.statePath, "state", a.statePath, "SQLite file holding saved carts and wishlists")
	root.PersistentFlags().StringVar(&a.profile, "profile", defaultProfile, "name of the saved cart and wishlist to use")

	root.AddCommand(
		a.productsCmd(),
		a.categoriesCmd(),
		a.cartCmd(),
		a.wishlistCmd(),
		a.checkoutCmd(),
		a.catalogCmd(),
	)
	return root
}

// action wraps a command body with opening and closing the shop.
func (a *app) action(fn func(ctx context.Context, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a.out = cmd.OutOrStdout()
		if err := a.open(ctx); err != nil {
			return err
		}
		defer a.close()
		return fn(ctx, args)
	}
}

func (a *app) open(ctx context.Context) error {
	cat, err := a.loadCatalog(ctx)
	if err != nil {
		return err
	}
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}

	a.text = newTextRenderer(a.out, cat, a.currency, a.md)
	a.shop = shop.New(shop.Options{
		Catalog:   cat,
		Store:     store,
		Namespace: a.profile,
		Renderer:  a.text,
		Notifier:  &printNotifier{out: a.out},
		Currency:  a.currency,
		Logger:    a.logger,
	})
	a.shop.Open(ctx)
	return nil
}

func (a *app) loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	var (
		doc *catalogfile.Document
		err error
	)
	if a.catalog != "" {
		doc, err = catalogfile.Load(a.catalog)
	} else {
		doc, err = seed.Catalog()
	}
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Load(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

func (a *app) openStore(ctx context.Context) (snapshot.Repository, error) {
	if a.statePath == "" {
		return snapshot.NewMemory(), nil
	}
	sqlDB, err := db.OpenSQLite(ctx, a.statePath)
	if err != nil {
		return nil, fmt.Errorf("open state: %w", err)
	}
	if err := migrate.ApplySQLite(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate state: %w", err)
	}
	a.stateDB = sqlDB
	return snapshot.NewSQLite(sqlDB), nil
}

func (a *app) close() {
	if a.shop != nil {
		a.shop.Close()
	}
	if a.stateDB != nil {
		if err := a.stateDB.Close(); err != nil {
			a.logger.Warn("cli: close state", zap.Error(err))
		}
		a.stateDB = nil
	}
}

// Execute runs the command tree with the process arguments and returns the exit code.
func Execute(ctx context.Context, opts Options) int {
	root := NewRootCommand(opts)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

var errUnknownProduct = errors.New("unknown product")
