package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	CatalogFile     string        `env:"CATALOG_FILE"`
	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"5m" validate:"min=0"`
	SKUPrefixLength int           `env:"SKU_PREFIX_LENGTH" envDefault:"3" validate:"min=1,max=8"`

	SellerJWTSecret string `env:"SELLER_JWT_SECRET,required" validate:"required,min=32"`
	SellerJWTIssuer string `env:"SELLER_JWT_ISSUER"`

	CacheProvider         string `env:"CACHE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	RedisConnectionString string `env:"REDIS_CONNECTION_STRING" envDefault:"redis://localhost:6379/0" validate:"required_if=CacheProvider redis"`

	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text" validate:"omitempty,oneof=text json"`
	Port      string     `env:"PORT" envDefault:"8080"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s" validate:"min=0"`
}

var configValidator = validator.New()

func Load() (*Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}

	if path := strings.TrimSpace(c.CatalogFile); path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("CATALOG_FILE is not readable: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("CATALOG_FILE must point to a file")
		}
	}

	if strings.HasPrefix(strings.ToLower(c.CacheProvider), "redis") && !strings.HasPrefix(c.RedisConnectionString, "redis") {
		return fmt.Errorf("REDIS_CONNECTION_STRING must be a redis:// or rediss:// URL")
	}

	return nil
}
