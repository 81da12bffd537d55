package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// App holds the runtime configuration loaded from defaults, an optional YAML
// file and ATTENDANCE_* environment variables.
type App struct {
	Env      string         `mapstructure:"env"`
	Database DatabaseConfig `mapstructure:"db"`
	Log      LogConfig      `mapstructure:"log"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// DatabaseConfig selects and addresses the relational store.
type DatabaseConfig struct {
	Driver         string        `mapstructure:"driver"` // "postgres" or "sqlite"
	URL            string        `mapstructure:"url"`    // full DSN, wins over the fields below; file: URI for sqlite
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Name           string        `mapstructure:"name"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	SSLMode        string        `mapstructure:"sslmode"`
	Path           string        `mapstructure:"path"` // sqlite file
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// DSN returns the connection string for the configured driver.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	if c.Driver == DriverSQLite {
		return c.Path
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// FeedConfig controls where change events are published.
type FeedConfig struct {
	Backend   string `mapstructure:"backend"` // "none" or "redis"
	RedisAddr string `mapstructure:"redis_addr"`
	Key       string `mapstructure:"key"`
}

// MetricsConfig enables the Prometheus listener when Addr is set.
type MetricsConfig struct {
	Addr            string `mapstructure:"addr"`
	HealthPerMinute int    `mapstructure:"health_per_minute"` // 0 disables the limit
}

// Supported values.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	FeedNone  = "none"
	FeedRedis = "redis"
)

// Load returns configuration with precedence env > file > defaults.
// An empty path looks for config.yaml in ./ and ./config and tolerates its absence.
func Load(path string) (App, error) {
	v := viper.New()

	v.SetDefault("env", "dev")

	v.SetDefault("db.driver", DriverPostgres)
	v.SetDefault("db.url", "")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "attendance_system")
	v.SetDefault("db.user", "attendance")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.path", "./data/attendance.db")
	v.SetDefault("db.connect_timeout", "5s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("feed.backend", FeedNone)
	v.SetDefault("feed.redis_addr", "localhost:6379")
	v.SetDefault("feed.key", "attendance:changes")

	v.SetDefault("metrics.addr", "")
	v.SetDefault("metrics.health_per_minute", 60)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("ATTENDANCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("db.url", "ATTENDANCE_DB_URL", "DATABASE_URL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return App{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg App
	if err := v.Unmarshal(&cfg); err != nil {
		return App{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return App{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c App) Validate() error {
	var errs []string

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.URL == "" && (c.Database.Host == "" || c.Database.Name == "") {
			errs = append(errs, "db.host and db.name are required for postgres")
		}
	case DriverSQLite:
		if c.Database.URL == "" && c.Database.Path == "" {
			errs = append(errs, "db.path is required for sqlite")
		}
		if c.Database.URL != "" && !strings.HasPrefix(c.Database.URL, "file:") {
			errs = append(errs, "db.url must be a file: URI for sqlite (is DATABASE_URL set for postgres?)")
		}
	default:
		errs = append(errs, fmt.Sprintf("db.driver %q is not one of postgres, sqlite", c.Database.Driver))
	}
	if c.Database.ConnectTimeout <= 0 {
		errs = append(errs, "db.connect_timeout must be positive")
	}

	switch c.Feed.Backend {
	case FeedNone:
	case FeedRedis:
		if c.Feed.RedisAddr == "" {
			errs = append(errs, "feed.redis_addr is required for the redis backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("feed.backend %q is not one of none, redis", c.Feed.Backend))
	}

	if c.Metrics.HealthPerMinute < 0 {
		errs = append(errs, "metrics.health_per_minute must not be negative")
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format %q is not one of console, json", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
