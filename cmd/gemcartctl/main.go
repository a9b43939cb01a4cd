package main

// gemcartctl runs operator tasks against a gemcart deployment.

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v3"

	"github.com/gitshopapp/gemcart/app"
	"github.com/gitshopapp/gemcart/internal/cache"
	"github.com/gitshopapp/gemcart/internal/config"
	"github.com/gitshopapp/gemcart/internal/db"
	"github.com/gitshopapp/gemcart/internal/handlers"
	"github.com/gitshopapp/gemcart/internal/services"
	"github.com/gitshopapp/gemcart/internal/variant"
)

func main() {
	cmd := &cli.Command{
		Name:  "gemcartctl",
		Usage: "Operator commands for gemcart",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply the database schema",
				Action: migrate,
			},
			{
				Name:  "import-catalog",
				Usage: "Load an attribute catalog YAML file into the database",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Usage: "path to the catalog YAML", Required: true},
				},
				Action: importCatalog,
			},
			{
				Name:  "seller-token",
				Usage: "Issue a seller bearer token signed with SELLER_JWT_SECRET",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "seller", Usage: "seller ID to put in the subject", Required: true},
					&cli.DurationFlag{Name: "ttl", Usage: "token lifetime", Value: 24 * time.Hour},
				},
				Action: sellerToken,
			},
			{
				Name:  "price",
				Usage: "Preview a selling price",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "mrp", Required: true},
					&cli.StringFlag{Name: "type", Value: string(variant.DiscountPercent)},
					&cli.StringFlag{Name: "value", Value: "0"},
				},
				Action: previewPrice,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, app.NewLogger(cfg), nil
}

func migrate(ctx context.Context, _ *cli.Command) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		return err
	}
	logger.Info("schema applied")
	return nil
}

func importCatalog(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		return err
	}

	provider, err := cache.NewProvider(cache.Config{
		Provider:              cfg.CacheProvider,
		RedisConnectionString: cfg.RedisConnectionString,
	})
	if err != nil {
		return err
	}
	defer provider.Close()

	store := db.NewAttributeStore(pool)
	cached := services.NewCachedCatalog(store, provider, cfg.CatalogCacheTTL, logger)
	return app.ImportCatalog(ctx, cmd.String("file"), store, cached, logger)
}

func sellerToken(_ context.Context, cmd *cli.Command) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	token, err := handlers.IssueSellerToken(app.SellerAuth(cfg), cmd.String("seller"), cmd.Duration("ttl"))
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func previewPrice(_ context.Context, cmd *cli.Command) error {
	mrp, err := decimal.NewFromString(cmd.String("mrp"))
	if err != nil {
		return fmt.Errorf("invalid mrp: %w", err)
	}
	if err := variant.ValidateAmount(mrp); err != nil {
		return fmt.Errorf("mrp: %w", err)
	}
	value, err := decimal.NewFromString(cmd.String("value"))
	if err != nil {
		return fmt.Errorf("invalid discount value: %w", err)
	}

	rule := variant.DiscountRule{Type: variant.DiscountType(cmd.String("type")), Value: value}
	if err := rule.Validate(); err != nil {
		return err
	}

	result := variant.ResolvePrice(mrp, rule)
	fmt.Printf("mrp=%s selling_price=%s discount_percent=%s clamped=%t\n",
		variant.FormatPrice(mrp), variant.FormatPrice(result.SellingPrice), result.DiscountPercent, result.Clamped)
	return nil
}
