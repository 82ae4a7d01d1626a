package main

import (
	"context"
	"fmt"

	"github.com/nikolayk812/gomarket-cart/internal/cart"
	"github.com/nikolayk812/gomarket-cart/internal/config"
	"github.com/nikolayk812/gomarket-cart/internal/logger"
	"github.com/nikolayk812/gomarket-cart/internal/repository"
	"github.com/nikolayk812/gomarket-cart/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	configPath string
	driver     string
	dsn        string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and edit the locally persisted GoMarket cart",
		Long: `cart loads the cart persisted in local storage, applies one operation
and writes the result back before exiting.

Examples:
  cart add --id a --title Widget --image-url https://img/a.png --price 9.99
  cart inc a
  cart dec a
  cart list`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "cart.yaml", "path to YAML config; missing file means defaults")
	flags.StringVar(&opts.driver, "driver", "", "storage driver override: sqlite, postgres, redis, memory")
	flags.StringVar(&opts.dsn, "dsn", "", "storage DSN override")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(
		newListCmd(opts),
		newAddCmd(opts),
		newIncCmd(opts),
		newDecCmd(opts),
	)

	return cmd
}

// runWithStore opens storage, loads the cart and runs fn with the store in ctx.
// The store is flushed and closed before returning.
func runWithStore(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context) error) (err error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}
	if opts.driver != "" {
		cfg.Storage.Driver = opts.driver
	}
	if opts.dsn != "" {
		cfg.Storage.DSN = opts.dsn
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("cfg.Validate: %w", err)
	}

	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("logger.New: %w", err)
	}
	defer func() { _ = log.Sync() }()

	writeTimeout, err := cfg.Cart.WriteTimeoutDuration()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	kv, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage.Open: %w", err)
	}
	defer func() {
		if closeErr := kv.Close(); closeErr != nil {
			log.Warn("storage close failed", zap.Error(closeErr))
		}
	}()

	store := cart.New(repository.NewCart(kv),
		cart.WithLogger(log),
		cart.WithWriteTimeout(writeTimeout),
	)
	defer func() {
		if closeErr := store.Close(ctx); closeErr != nil && err == nil {
			err = fmt.Errorf("cart not saved: %w", closeErr)
		}
	}()

	store.Load(ctx)
	log.Debug("cart ready",
		zap.String("driver", cfg.Storage.Driver),
		zap.Int("items", len(store.Products())))

	return fn(cart.NewContext(ctx, store))
}
