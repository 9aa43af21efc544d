// Package config loads the sitebot configuration: the shared core sections
// plus the shop, deploy and store settings.
package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"

	coreconfig "github.com/m3rciful/sitebot/core/config"
	coredatabase "github.com/m3rciful/sitebot/core/database"
	"github.com/m3rciful/sitebot/internal/deploy"
	"github.com/m3rciful/sitebot/internal/store"
)

// ShopConfig describes the storefront.
type ShopConfig struct {
	// OwnerID reviews payments; falls back to telegram.admin_id.
	OwnerID    int64  `yaml:"owner_id" envconfig:"OWNER_ID"`
	SourceDir  string `yaml:"source_dir" envconfig:"SOURCE_DIR"`
	PriceLabel string `yaml:"price_label" envconfig:"PRICE_LABEL"`
	PaymentURL string `yaml:"payment_url" envconfig:"PAYMENT_URL"`
}

// DeployConfig configures the packaging and publish pipeline.
type DeployConfig struct {
	Endpoint      string        `yaml:"endpoint" envconfig:"DEPLOY_ENDPOINT"`
	Token         string        `yaml:"token" envconfig:"VERCEL_TOKEN"`
	WorkDir       string        `yaml:"work_dir" envconfig:"DEPLOY_WORK_DIR"`
	Timeout       time.Duration `yaml:"timeout" envconfig:"DEPLOY_TIMEOUT"`
	MaxConcurrent int           `yaml:"max_concurrent" envconfig:"DEPLOY_MAX_CONCURRENT"`
}

// StoreConfig selects the transaction store backend.
type StoreConfig struct {
	Driver     string              `yaml:"driver" envconfig:"STORE_DRIVER"`
	Path       string              `yaml:"path" envconfig:"STORE_PATH"`
	SQLitePath string              `yaml:"sqlite_path" envconfig:"STORE_SQLITE_PATH"`
	Database   coredatabase.Config `yaml:"database"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Shop   ShopConfig   `yaml:"shop"`
	Deploy DeployConfig `yaml:"deploy"`
	Store  StoreConfig  `yaml:"store"`
}

// CoreConfig exposes the shared sections to core packages.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// Defaults.
const (
	DefaultStorePath     = "data/transactions.json"
	DefaultSQLitePath    = "data/sitebot.db"
	DefaultDeployTimeout = 2 * time.Minute
	DefaultMaxConcurrent = 2
)

// Load reads an optional .env file, then the YAML file at path (which may
// be missing), then the environment, and validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env")
	}
	var cfg Config
	if err := coreconfig.LoadFile(path, &cfg, true); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required fields and fills defaults in place.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}

	if cfg.Shop.OwnerID == 0 {
		cfg.Shop.OwnerID = cfg.Telegram.AdminID
	}
	if cfg.Shop.OwnerID == 0 {
		return errors.New("shop.owner_id (OWNER_ID) or telegram.admin_id is required")
	}
	if cfg.Telegram.AdminID == 0 {
		cfg.Telegram.AdminID = cfg.Shop.OwnerID
	}
	cfg.Shop.SourceDir = strings.TrimSpace(cfg.Shop.SourceDir)
	if cfg.Shop.SourceDir == "" {
		return errors.New("shop.source_dir is required")
	}

	if strings.TrimSpace(cfg.Deploy.Token) == "" {
		return errors.New("deploy.token (VERCEL_TOKEN) is required")
	}
	if cfg.Deploy.Endpoint == "" {
		cfg.Deploy.Endpoint = deploy.DefaultEndpoint
	}
	if cfg.Deploy.WorkDir == "" {
		cfg.Deploy.WorkDir = filepath.Join(os.TempDir(), "sitebot")
	}
	switch {
	case cfg.Deploy.Timeout < 0:
		return errors.New("deploy.timeout must be >= 0")
	case cfg.Deploy.Timeout == 0:
		cfg.Deploy.Timeout = DefaultDeployTimeout
	}
	switch {
	case cfg.Deploy.MaxConcurrent < 0:
		return errors.New("deploy.max_concurrent must be >= 0")
	case cfg.Deploy.MaxConcurrent == 0:
		cfg.Deploy.MaxConcurrent = DefaultMaxConcurrent
	}

	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = store.DriverJSON
	}
	if !store.Supported(cfg.Store.Driver) {
		return errors.Newf("invalid store.driver %q; allowed: %s", cfg.Store.Driver, strings.Join(store.Drivers(), ", "))
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultStorePath
	}
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = DefaultSQLitePath
	}
	if cfg.Store.Driver == store.DriverPostgres {
		if cfg.Store.Database.Host == "" || cfg.Store.Database.Name == "" {
			return errors.New("store.database.host and store.database.name are required for the postgres driver")
		}
	}
	return nil
}
