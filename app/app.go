package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gitshopapp/gemcart/internal/cache"
	"github.com/gitshopapp/gemcart/internal/catalog"
	"github.com/gitshopapp/gemcart/internal/config"
	"github.com/gitshopapp/gemcart/internal/db"
	"github.com/gitshopapp/gemcart/internal/handlers"
	"github.com/gitshopapp/gemcart/internal/services"
	"github.com/gitshopapp/gemcart/internal/variant"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	DB            *pgxpool.Pool
	CacheProvider cache.Provider
	Catalog       *services.CachedCatalog
	Handlers      *handlers.Handlers
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := NewLogger(cfg)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	database, err := db.Connect(startupCtx, cfg.DatabaseURL, logger.With("component", "db"))
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(startupCtx, database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	cacheProvider, err := cache.NewProvider(cache.Config{
		Provider:              cfg.CacheProvider,
		RedisConnectionString: cfg.RedisConnectionString,
	})
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize cache provider: %w", err)
	}

	attributeStore := db.NewAttributeStore(database)
	cachedCatalog := services.NewCachedCatalog(attributeStore, cacheProvider, cfg.CatalogCacheTTL, logger.With("component", "catalog"))

	if cfg.CatalogFile != "" {
		if err := ImportCatalog(startupCtx, cfg.CatalogFile, attributeStore, cachedCatalog, logger); err != nil {
			closeCacheProvider(logger, cacheProvider)
			database.Close()
			return nil, err
		}
	}

	productStore := db.NewProductStore(database)
	variantStore := db.NewVariantStore(database)
	builder := variant.NewBuilder(variant.NewSKUGenerator(cfg.SKUPrefixLength))

	variantService := services.NewVariantService(
		cachedCatalog,
		productStore,
		variantStore,
		catalog.NewValidator(),
		builder,
		logger.With("component", "variant_service"),
	)
	wizard := services.NewProductWizard(productStore, variantStore, logger.With("component", "product_wizard"))

	h, err := handlers.New(handlers.Dependencies{
		DB:             database,
		Catalog:        cachedCatalog,
		VariantService: variantService,
		ProductWizard:  wizard,
		SellerAuth:     SellerAuth(cfg),
		Logger:         logger,
	})
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return &App{
		Config:        cfg,
		Logger:        logger,
		DB:            database,
		CacheProvider: cacheProvider,
		Catalog:       cachedCatalog,
		Handlers:      h,
	}, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.CacheProvider != nil {
		closeCacheProvider(a.Logger, a.CacheProvider)
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

type catalogImporter interface {
	Import(ctx context.Context, catalog variant.Catalog) error
}

type catalogInvalidator interface {
	Invalidate(ctx context.Context) error
}

// ImportCatalog loads the YAML catalog at path into the database and drops
// the cached snapshot so readers see it immediately.
func ImportCatalog(ctx context.Context, path string, store catalogImporter, cached catalogInvalidator, logger *slog.Logger) error {
	snapshot, err := catalog.NewFileSource(path).Catalog(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog file: %w", err)
	}
	if err := store.Import(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to import catalog: %w", err)
	}
	if cached != nil {
		if err := cached.Invalidate(ctx); err != nil {
			logger.Warn("failed to invalidate catalog cache", "error", err)
		}
	}

	logger.Info("imported attribute catalog", "path", path, "attributes", len(snapshot.Attributes))
	return nil
}

func SellerAuth(cfg *config.Config) handlers.SellerAuthConfig {
	return handlers.SellerAuthConfig{
		Secret: []byte(cfg.SellerJWTSecret),
		Issuer: cfg.SellerJWTIssuer,
	}
}

func NewLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	format := strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      cfg.LogLevel,
		TimeFormat: time.Kitchen,
	}))
}

func closeCacheProvider(logger *slog.Logger, provider cache.Provider) {
	if provider == nil {
		return
	}
	if err := provider.Close(); err != nil && logger != nil {
		logger.Warn("failed to close cache provider", "error", err)
	}
}
