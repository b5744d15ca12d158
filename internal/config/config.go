package config

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Asset sources.
const (
	AssetsEmbedded = "embedded"
	AssetsDir      = "dir"
	AssetsHTTP     = "http"
)

type Config struct {
	Env           string `mapstructure:"ENV"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	AppID         string `mapstructure:"APP_ID"`
	AppVersion    string `mapstructure:"APP_VERSION"`
	DefaultLocale string `mapstructure:"DEFAULT_LOCALE"`

	StoreDriver        string `mapstructure:"STORE_DRIVER"`
	SQLitePath         string `mapstructure:"SQLITE_PATH"`
	DatabaseURL        string `mapstructure:"DATABASE_URL"`
	DBMaxConns         int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns         int32  `mapstructure:"DB_MIN_CONNS"`
	StoreEncryptionKey string `mapstructure:"STORE_ENCRYPTION_KEY"`

	AssetSource  string        `mapstructure:"ASSET_SOURCE"`
	AssetDir     string        `mapstructure:"ASSET_DIR"`
	AssetBaseURL string        `mapstructure:"ASSET_BASE_URL"`
	AssetMaxAge  time.Duration `mapstructure:"ASSET_MAX_AGE"`

	AssetHostPort  string  `mapstructure:"ASSET_HOST_PORT"`
	// AssetRateLimit is requests per second per client on the asset host.
	// 0 disables limiting.
	AssetRateLimit float64 `mapstructure:"ASSET_RATE_LIMIT"`

	OutputDir string `mapstructure:"OUTPUT_DIR"`
}

var keys = []string{
	"ENV", "LOG_LEVEL", "APP_ID", "APP_VERSION", "DEFAULT_LOCALE",
	"STORE_DRIVER", "SQLITE_PATH", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "STORE_ENCRYPTION_KEY",
	"ASSET_SOURCE", "ASSET_DIR", "ASSET_BASE_URL", "ASSET_MAX_AGE", "ASSET_HOST_PORT", "ASSET_RATE_LIMIT",
	"OUTPUT_DIR",
}

// Load reads configuration from the environment and an optional .env file,
// then validates it.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_ID", "paperwork")
	v.SetDefault("APP_VERSION", "dev")
	v.SetDefault("DEFAULT_LOCALE", "de")
	v.SetDefault("STORE_DRIVER", StoreSQLite)
	v.SetDefault("SQLITE_PATH", "data/paperwork.db")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("ASSET_SOURCE", AssetsEmbedded)
	v.SetDefault("ASSET_MAX_AGE", "0s")
	v.SetDefault("ASSET_HOST_PORT", "8090")
	v.SetDefault("ASSET_RATE_LIMIT", 50)
	v.SetDefault("OUTPUT_DIR", "out")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.AssetSource = strings.ToLower(strings.TrimSpace(cfg.AssetSource))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// EncryptionKey decodes STORE_ENCRYPTION_KEY. It returns nil when unset.
func (c *Config) EncryptionKey() ([]byte, error) {
	if c.StoreEncryptionKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.StoreEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("STORE_ENCRYPTION_KEY is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("STORE_ENCRYPTION_KEY must be 32 bytes (64 hex chars), got %d bytes", len(key))
	}
	return key, nil
}

// Validate checks that the selected store and asset source have what they
// need.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORE_DRIVER is %q", StoreSQLite)
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER is %q", StorePostgres)
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be %q, %q, or %q, got %q", StoreMemory, StoreSQLite, StorePostgres, c.StoreDriver)
	}

	switch c.AssetSource {
	case AssetsEmbedded:
	case AssetsDir:
		if c.AssetDir == "" {
			return fmt.Errorf("ASSET_DIR is required when ASSET_SOURCE is %q", AssetsDir)
		}
	case AssetsHTTP:
		if c.AssetBaseURL == "" {
			return fmt.Errorf("ASSET_BASE_URL is required when ASSET_SOURCE is %q", AssetsHTTP)
		}
	default:
		return fmt.Errorf("ASSET_SOURCE must be %q, %q, or %q, got %q", AssetsEmbedded, AssetsDir, AssetsHTTP, c.AssetSource)
	}

	if c.AssetMaxAge < 0 {
		return fmt.Errorf("ASSET_MAX_AGE must not be negative, got %s", c.AssetMaxAge)
	}
	if c.AssetRateLimit < 0 {
		return fmt.Errorf("ASSET_RATE_LIMIT must not be negative, got %g", c.AssetRateLimit)
	}
	if _, err := c.EncryptionKey(); err != nil {
		return err
	}
	return nil
}
