// Package config loads server settings from an optional YAML file,
// BLAZE_* environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. BLAZE_SERVER_PORT
const EnvPrefix = "BLAZE"

// Storage backends
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config is the complete server configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Match   MatchConfig   `mapstructure:"match"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigin      string        `mapstructure:"cors_origin"`
}

// StorageConfig selects and configures the persistence backend
type StorageConfig struct {
	Type     string         `mapstructure:"type"`
	File     FileConfig     `mapstructure:"file"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// FileConfig locates the JSON documents of the file backend
type FileConfig struct {
	StatsPath   string `mapstructure:"stats_path"`
	CounterPath string `mapstructure:"counter_path"`
}

// RedisConfig configures the redis backend
type RedisConfig struct {
	URL          string `mapstructure:"url"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	KeyPrefix    string `mapstructure:"key_prefix"`
}

// PostgresConfig configures the postgres backend
type PostgresConfig struct {
	DSN          string `mapstructure:"dsn"`
	Table        string `mapstructure:"table"`
	Sequence     string `mapstructure:"sequence"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// MatchConfig holds match store behaviour
type MatchConfig struct {
	ScoringPolicy   string        `mapstructure:"scoring_policy"`
	PersistAttempts int           `mapstructure:"persist_attempts"`
	PersistBackoff  time.Duration `mapstructure:"persist_backoff"`
}

// LogConfig controls the process logger
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.cors_origin", "*")

	v.SetDefault("storage.type", StorageFile)
	v.SetDefault("storage.file.stats_path", "game_stats.json")
	v.SetDefault("storage.file.counter_path", "external_counter.json")
	v.SetDefault("storage.redis.url", "redis://localhost:6379")
	v.SetDefault("storage.redis.pool_size", 10)
	v.SetDefault("storage.redis.min_idle_conns", 2)
	v.SetDefault("storage.redis.key_prefix", "blaze")
	v.SetDefault("storage.postgres.dsn", "postgres://localhost:5432/blaze?sslmode=disable")
	v.SetDefault("storage.postgres.table", "match_state")
	v.SetDefault("storage.postgres.sequence", "external_player_seq")
	v.SetDefault("storage.postgres.max_open_conns", 5)

	v.SetDefault("match.scoring_policy", "open")
	v.SetDefault("match.persist_attempts", 3)
	v.SetDefault("match.persist_backoff", 50*time.Millisecond)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Load reads configuration. An explicit path must exist; with an empty path
// blaze.yaml is looked up in the working directory and /etc/blaze, and its
// absence is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("blaze")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/blaze")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StorageMemory, StorageFile, StorageRedis, StoragePostgres:
	default:
		return fmt.Errorf("invalid storage.type %q: must be memory, file, redis or postgres", c.Storage.Type)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	switch c.Match.ScoringPolicy {
	case "open", "locked":
	default:
		return fmt.Errorf("invalid match.scoring_policy %q: must be open or locked", c.Match.ScoringPolicy)
	}
	if c.Match.PersistAttempts <= 0 {
		return fmt.Errorf("invalid match.persist_attempts %d: must be positive", c.Match.PersistAttempts)
	}
	return nil
}
