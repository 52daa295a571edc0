package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override, e.g. SURFACEFLOW_HTTP_ADDR.
const EnvPrefix = "SURFACEFLOW"

const (
	BackendCSV      = "csv"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"

	QueueMemory = "memory"
	QueueRedis  = "redis"
)

type Config struct {
	HTTP       HTTPConfig       `mapstructure:"http"`
	Log        LogConfig        `mapstructure:"log"`
	Ledger     LedgerConfig     `mapstructure:"ledger"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Automation AutomationConfig `mapstructure:"automation"`
	Fixtures   FixturesConfig   `mapstructure:"fixtures"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// RateLimit is requests per second across the API; 0 disables limiting.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

type LogConfig struct {
	JSON  bool   `mapstructure:"json"`
	Level string `mapstructure:"level"`
}

type LedgerConfig struct {
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr   string `mapstructure:"addr"`
	Prefix string `mapstructure:"prefix"`
}

type AutomationConfig struct {
	Workers      int           `mapstructure:"workers"`
	StepInterval time.Duration `mapstructure:"step_interval"`
	// Queue is memory or redis; redis reuses redis.addr.
	Queue    string `mapstructure:"queue"`
	QueueKey string `mapstructure:"queue_key"`
}

type FixturesConfig struct {
	// Seed for the fixture generator; 0 seeds from the clock.
	Seed uint64 `mapstructure:"seed"`
}

// SetDefaults registers the default for every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8000")
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("http.rate_limit", 0)
	v.SetDefault("http.rate_burst", 20)

	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "info")

	v.SetDefault("ledger.backend", BackendCSV)
	v.SetDefault("ledger.dir", "data")

	// no defaults for connection strings, but the keys must exist for
	// AutomaticEnv to reach them through Unmarshal
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.prefix", "surfaceflow:ledger")

	v.SetDefault("automation.workers", 2)
	v.SetDefault("automation.step_interval", 2*time.Second)
	v.SetDefault("automation.queue", QueueMemory)
	v.SetDefault("automation.queue_key", "surfaceflow:automations")

	v.SetDefault("fixtures.seed", 0)
}

// New returns a viper instance with defaults and environment binding. When
// path is non-empty that file is read as well; its format follows the
// extension.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}
	return v, nil
}

// Load builds the configuration from defaults, the optional file at path and
// the environment, then validates it.
func Load(path string) (*Config, error) {
	v, err := New(path)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Ledger.Backend {
	case BackendCSV:
		if c.Ledger.Dir == "" {
			return errors.New("ledger.dir is required for the csv backend")
		}
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("postgres.dsn is required for the postgres backend")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required for the redis backend")
		}
	default:
		return errors.Newf("unknown ledger.backend %q (want csv, postgres or redis)", c.Ledger.Backend)
	}

	if c.Automation.Workers < 0 {
		return errors.New("automation.workers must not be negative")
	}
	if c.Automation.Workers > 0 && c.Automation.StepInterval <= 0 {
		return errors.New("automation.step_interval must be positive")
	}
	switch c.Automation.Queue {
	case QueueMemory:
	case QueueRedis:
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required for the redis automation queue")
		}
	default:
		return errors.Newf("unknown automation.queue %q (want memory or redis)", c.Automation.Queue)
	}
	if c.HTTP.RateLimit < 0 {
		return errors.New("http.rate_limit must not be negative")
	}
	return nil
}
