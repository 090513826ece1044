package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Catalog  CatalogConfig
	Cart     CartConfig
	DB       DBConfig
	Redis    RedisConfig
	GCP      GCPConfig
	PubSub   PubSubConfig
	Fixture  FixtureConfig
	Shutdown ShutdownConfig
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

type AppConfig struct {
	Env          string   `envconfig:"ROCKETCART_APP_ENV" required:"true"`
	Port         string   `envconfig:"ROCKETCART_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"ROCKETCART_LOG_LEVEL" default:"info"`
	LogFormat    string   `envconfig:"ROCKETCART_LOG_FORMAT" default:"json"`
	LogWarnStack bool     `envconfig:"ROCKETCART_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"ROCKETCART_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// CatalogConfig points at the remote stock/product service.
type CatalogConfig struct {
	BaseURL        string        `envconfig:"ROCKETCART_CATALOG_BASE_URL" required:"true"`
	Timeout        time.Duration `envconfig:"ROCKETCART_CATALOG_TIMEOUT" default:"3s"`
	MaxRetries     uint64        `envconfig:"ROCKETCART_CATALOG_MAX_RETRIES" default:"2"`
	RetryBase      time.Duration `envconfig:"ROCKETCART_CATALOG_RETRY_BASE" default:"100ms"`
	BreakerTimeout time.Duration `envconfig:"ROCKETCART_CATALOG_BREAKER_TIMEOUT" default:"30s"`
	BreakerTrips   uint32        `envconfig:"ROCKETCART_CATALOG_BREAKER_TRIPS" default:"5"`
}

// CartConfig controls snapshot storage and how long an idle session stays in
// memory. Evicted sessions rehydrate from their snapshot on the next request.
type CartConfig struct {
	SnapshotDriver       string        `envconfig:"ROCKETCART_CART_SNAPSHOT_DRIVER" default:"memory"`
	KeyPrefix            string        `envconfig:"ROCKETCART_CART_KEY_PREFIX" default:"rocketcart"`
	SnapshotTTL          time.Duration `envconfig:"ROCKETCART_CART_SNAPSHOT_TTL" default:"0"`
	AutoMigrate          bool          `envconfig:"ROCKETCART_CART_AUTO_MIGRATE" default:"false"`
	SessionIdleTTL       time.Duration `envconfig:"ROCKETCART_CART_SESSION_IDLE_TTL" default:"30m"`
	SessionSweepInterval time.Duration `envconfig:"ROCKETCART_CART_SESSION_SWEEP_INTERVAL" default:"1m"`
}

type DBConfig struct {
	DSN             string        `envconfig:"ROCKETCART_DB_DSN"`
	Driver          string        `envconfig:"ROCKETCART_DB_DRIVER" default:"postgres"`
	MaxOpenConns    int           `envconfig:"ROCKETCART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ROCKETCART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ROCKETCART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ROCKETCART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ROCKETCART_REDIS_URL"`
	Address      string        `envconfig:"ROCKETCART_REDIS_ADDR"`
	Password     string        `envconfig:"ROCKETCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"ROCKETCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ROCKETCART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ROCKETCART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ROCKETCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ROCKETCART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ROCKETCART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"ROCKETCART_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"ROCKETCART_GCP_CREDENTIALS_JSON"`
}

// PubSubConfig enables the optional notification fan-out. Leaving the topic
// empty keeps notifications local to the process.
type PubSubConfig struct {
	NotificationTopic string `envconfig:"ROCKETCART_PUBSUB_NOTIFICATION_TOPIC"`
}

func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.NotificationTopic) != ""
}

type FixtureConfig struct {
	Path     string `envconfig:"ROCKETCART_FIXTURE_PATH" default:"fixtures/catalog.json"`
	Port     string `envconfig:"ROCKETCART_FIXTURE_PORT" default:"3333"`
	LogLevel string `envconfig:"ROCKETCART_LOG_LEVEL" default:"info"`
}

// LoadFixture reads only the settings of the development catalog server.
func LoadFixture() (*FixtureConfig, error) {
	var cfg FixtureConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing fixture config: %w", err)
	}
	return &cfg, nil
}

type ShutdownConfig struct {
	Timeout time.Duration `envconfig:"ROCKETCART_SHUTDOWN_TIMEOUT" default:"10s"`
}

func (c *Config) validate() error {
	driver := strings.ToLower(strings.TrimSpace(c.Cart.SnapshotDriver))
	switch driver {
	case SnapshotDriverMemory:
	case SnapshotDriverRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("%s or %s is required for the redis snapshot driver", EnvRedisURL, EnvRedisAddr)
		}
	case SnapshotDriverPostgres, SnapshotDriverSQLite:
		if c.DB.DSN == "" {
			return fmt.Errorf("%s is required for the %s snapshot driver", EnvDBDSN, driver)
		}
		c.DB.Driver = driver
	default:
		return fmt.Errorf("unsupported snapshot driver %q", c.Cart.SnapshotDriver)
	}
	c.Cart.SnapshotDriver = driver

	if c.Cart.SessionIdleTTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvSessionIdleTTL)
	}

	if c.PubSub.Enabled() && strings.TrimSpace(c.GCP.ProjectID) == "" {
		return fmt.Errorf("%s is required when %s is set", EnvGCPProjectID, EnvPubSubNotificationTopic)
	}
	return nil
}
