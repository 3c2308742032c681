// Package config loads service settings from MES_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	RateLimit    RateLimitConfig
	Idempotency  IdempotencyConfig
	Cron         CronConfig
}

// Load reads the environment, fills the DSN from its parts when MES_DB_DSN
// is unset, and rejects values the services cannot run with.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.DB.DSN == "" {
		dsn, err := cfg.DB.buildDSN()
		if err != nil {
			return nil, err
		}
		cfg.DB.DSN = dsn
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs error
	if c.RateLimit.WriteLimit <= 0 || c.RateLimit.WriteWindow <= 0 {
		errs = multierr.Append(errs, errors.New("MES_RATE_LIMIT_WRITE_LIMIT and MES_RATE_LIMIT_WRITE_WINDOW must be positive"))
	}
	if c.Cron.Interval <= 0 {
		errs = multierr.Append(errs, errors.New("MES_CRON_INTERVAL must be positive"))
	}
	if c.Cron.PartitionMonthsAhead < 0 {
		errs = multierr.Append(errs, errors.New("MES_CRON_PARTITION_MONTHS_AHEAD cannot be negative"))
	}
	if c.Idempotency.TTL < 0 {
		errs = multierr.Append(errs, errors.New("MES_IDEMPOTENCY_TTL cannot be negative"))
	}
	return errs
}

type AppConfig struct {
	Env          string `envconfig:"MES_APP_ENV" required:"true"`
	Port         string `envconfig:"MES_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MES_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"MES_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"MES_LOG_WARN_STACK" default:"false"`

	// CORSOrigins is a comma separated allow-list; empty keeps the local defaults.
	CORSOrigins []string `envconfig:"MES_CORS_ALLOWED_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"MES_SERVICE_KIND" default:"api"`
}

// DBConfig takes either a full DSN or its parts.
type DBConfig struct {
	DSN string `envconfig:"MES_DB_DSN"`

	Host     string `envconfig:"MES_DB_HOST"`
	Port     int    `envconfig:"MES_DB_PORT" default:"5432"`
	User     string `envconfig:"MES_DB_USER"`
	Password string `envconfig:"MES_DB_PASSWORD"`
	Name     string `envconfig:"MES_DB_NAME"`
	SSLMode  string `envconfig:"MES_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MES_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MES_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MES_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MES_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	// SlowQuery logs statements slower than this at warn. Zero disables it.
	SlowQuery time.Duration `envconfig:"MES_DB_SLOW_QUERY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MES_REDIS_URL"`
	Address      string        `envconfig:"MES_REDIS_ADDR"`
	Password     string        `envconfig:"MES_REDIS_PASSWORD"`
	DB           int           `envconfig:"MES_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MES_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MES_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MES_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MES_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MES_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MES_AUTO_MIGRATE" default:"false"`
	// StrictStockCheck turns the inventory decrement into a conditional update
	// that refuses to go below zero.
	StrictStockCheck bool `envconfig:"MES_STRICT_STOCK_CHECK" default:"false"`
}

type RateLimitConfig struct {
	WriteWindow time.Duration `envconfig:"MES_RATE_LIMIT_WRITE_WINDOW" default:"1m"`
	WriteLimit  int           `envconfig:"MES_RATE_LIMIT_WRITE_LIMIT" default:"60"`
}

type IdempotencyConfig struct {
	// TTL overrides every route's retention when set.
	TTL time.Duration `envconfig:"MES_IDEMPOTENCY_TTL"`
}

type CronConfig struct {
	Interval             time.Duration `envconfig:"MES_CRON_INTERVAL" default:"1h"`
	ConcurrentRefresh    bool          `envconfig:"MES_CRON_CONCURRENT_REFRESH" default:"true"`
	PartitionMonthsAhead int           `envconfig:"MES_CRON_PARTITION_MONTHS_AHEAD" default:"3"`
	JobTimeout           time.Duration `envconfig:"MES_CRON_JOB_TIMEOUT" default:"10m"`
}

func (db DBConfig) buildDSN() (string, error) {
	var missing []string
	for env, value := range map[string]string{EnvDBHost: db.Host, EnvDBUser: db.User, EnvDBName: db.Name} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	user := url.User(db.User)
	if db.Password != "" {
		user = url.UserPassword(db.User, db.Password)
	}
	u := url.URL{
		Scheme: "postgres",
		User:   user,
		Host:   net.JoinHostPort(db.Host, strconv.Itoa(db.Port)),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {db.SSLMode}}.Encode()
	}
	return u.String(), nil
}
