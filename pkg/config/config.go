package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "INVENTORY"

const (
	StoreMemory   = "memory"
	StoreMySQL    = "mysql"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

type Config struct {
	App     AppConfig
	Auth    AuthConfig
	Catalog CatalogConfig
	Store   StoreConfig
	Redis   RedisConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MigrateConfig is the subset needed by the schema migration command.
type MigrateConfig struct {
	App   AppConfig
	Store StoreConfig
}

func LoadMigrate() (*MigrateConfig, error) {
	var cfg MigrateConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Store.MySQLDSN == "" {
		return nil, errors.New("migrations require INVENTORY_MYSQL_DSN")
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	switch c.Store.Driver {
	case StoreMemory:
	case StoreMySQL:
		if c.Store.MySQLDSN == "" {
			return errors.New("mysql store requires INVENTORY_MYSQL_DSN")
		}
	case StorePostgres:
		if c.Store.PostgresDSN == "" {
			return errors.New("postgres store requires INVENTORY_POSTGRES_DSN")
		}
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("sqlite store requires INVENTORY_SQLITE_PATH")
		}
	case StoreRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return errors.New("redis store requires INVENTORY_REDIS_URL or INVENTORY_REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unsupported store driver %q", c.Store.Driver)
	}
	if c.Catalog.MaxRetries < 0 {
		return errors.New("catalog max retries must not be negative")
	}
	return nil
}

type AppConfig struct {
	Env             string        `envconfig:"INVENTORY_APP_ENV" required:"true"`
	HTTPPort        string        `envconfig:"INVENTORY_HTTP_PORT" default:"8080"`
	GRPCPort        string        `envconfig:"INVENTORY_GRPC_PORT" default:"50051"`
	LogLevel        string        `envconfig:"INVENTORY_LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"INVENTORY_LOG_FORMAT" default:"json"`
	LogWarnStack    bool          `envconfig:"INVENTORY_LOG_WARN_STACK" default:"false"`
	ShutdownTimeout time.Duration `envconfig:"INVENTORY_SHUTDOWN_TIMEOUT" default:"5s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, "dev")
}

// AuthConfig holds the key callers must present to this service.
type AuthConfig struct {
	APIKey string `envconfig:"INVENTORY_API_KEY" required:"true"`
}

// CatalogConfig points at the product service and carries the credential
// this service presents to it.
type CatalogConfig struct {
	URL          string        `envconfig:"INVENTORY_CATALOG_URL" required:"true"`
	APIKey       string        `envconfig:"INVENTORY_CATALOG_API_KEY" required:"true"`
	Timeout      time.Duration `envconfig:"INVENTORY_CATALOG_TIMEOUT" default:"5s"`
	MaxRetries   int           `envconfig:"INVENTORY_CATALOG_MAX_RETRIES" default:"2"`
	RetryBackoff time.Duration `envconfig:"INVENTORY_CATALOG_RETRY_BACKOFF" default:"100ms"`
}

type StoreConfig struct {
	Driver      string `envconfig:"INVENTORY_STORE_DRIVER" default:"memory"`
	MySQLDSN    string `envconfig:"INVENTORY_MYSQL_DSN"`
	PostgresDSN string `envconfig:"INVENTORY_POSTGRES_DSN"`
	SQLitePath  string `envconfig:"INVENTORY_SQLITE_PATH"`
	AutoMigrate bool   `envconfig:"INVENTORY_AUTO_MIGRATE" default:"false"`

	MaxOpenConns    int           `envconfig:"INVENTORY_DB_MAX_OPEN_CONNS" default:"50"`
	MaxIdleConns    int           `envconfig:"INVENTORY_DB_MAX_IDLE_CONNS" default:"25"`
	ConnMaxLifetime time.Duration `envconfig:"INVENTORY_DB_CONN_MAX_LIFETIME" default:"5m"`
}

type RedisConfig struct {
	URL      string `envconfig:"INVENTORY_REDIS_URL"`
	Address  string `envconfig:"INVENTORY_REDIS_ADDR"`
	Password string `envconfig:"INVENTORY_REDIS_PASSWORD"`
	DB       int    `envconfig:"INVENTORY_REDIS_DB" default:"0"`
	PoolSize int    `envconfig:"INVENTORY_REDIS_POOL_SIZE" default:"100"`
}
