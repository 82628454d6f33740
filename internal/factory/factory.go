package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/blazeboard/internal/config"
	"github.com/mcoot/blazeboard/internal/dependencies/clock"
	"github.com/mcoot/blazeboard/internal/metrics"
	"github.com/mcoot/blazeboard/internal/services/match"
	"github.com/mcoot/blazeboard/internal/storage"
	filestorage "github.com/mcoot/blazeboard/internal/storage/file"
	"github.com/mcoot/blazeboard/internal/storage/memory"
	pgstorage "github.com/mcoot/blazeboard/internal/storage/postgres"
	redisstorage "github.com/mcoot/blazeboard/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = config.StorageMemory
	StorageTypeFile     = config.StorageFile
	StorageTypeRedis    = config.StorageRedis
	StorageTypePostgres = config.StoragePostgres
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock   clock.Clock
	Metrics *metrics.Recorder

	// Services
	MatchStore *match.Store
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend
	// If empty, defaults to "memory"
	StorageType string
	// Backend settings, required for the matching StorageType
	FileConfig     *filestorage.Config
	RedisConfig    *redisstorage.Config
	PostgresConfig *pgstorage.Config
	// Match holds store behaviour; zero values take the defaults
	Match match.Config
	// Metrics is optional; nil disables instrumentation
	Metrics *metrics.Recorder
}

// ConfigFromSettings maps loaded settings onto a factory Config
func ConfigFromSettings(s *config.Config, logger *slog.Logger, recorder *metrics.Recorder) (Config, error) {
	policy, err := match.ParseScoringPolicy(s.Match.ScoringPolicy)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Logger:      logger,
		StorageType: s.Storage.Type,
		Match: match.Config{
			ScoringPolicy:   policy,
			PersistAttempts: s.Match.PersistAttempts,
			PersistBackoff:  s.Match.PersistBackoff,
		},
		Metrics: recorder,
	}

	switch s.Storage.Type {
	case StorageTypeFile:
		cfg.FileConfig = &filestorage.Config{
			StatsPath:   s.Storage.File.StatsPath,
			CounterPath: s.Storage.File.CounterPath,
		}
	case StorageTypeRedis:
		cfg.RedisConfig = &redisstorage.Config{
			URL:          s.Storage.Redis.URL,
			PoolSize:     s.Storage.Redis.PoolSize,
			MinIdleConns: s.Storage.Redis.MinIdleConns,
			KeyPrefix:    s.Storage.Redis.KeyPrefix,
		}
	case StorageTypePostgres:
		cfg.PostgresConfig = &pgstorage.Config{
			DSN:          s.Storage.Postgres.DSN,
			Table:        s.Storage.Postgres.Table,
			Sequence:     s.Storage.Postgres.Sequence,
			MaxOpenConns: s.Storage.Postgres.MaxOpenConns,
		}
	}
	return cfg, nil
}

// New creates a new application with all dependencies wired and the
// persisted match loaded
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	app, err := newWithDependencies(ctx, store, clock.New(), cfg.Metrics, cfg.Match, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	logger.Info("storage ready", slog.String("type", storageTypeOrDefault(cfg.StorageType)))
	return app, nil
}

func storageTypeOrDefault(t string) string {
	if t == "" {
		return StorageTypeMemory
	}
	return t
}

func newStorage(cfg Config) (storage.Storage, error) {
	switch storageTypeOrDefault(cfg.StorageType) {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeFile:
		fileCfg := filestorage.DefaultConfig()
		if cfg.FileConfig != nil {
			fileCfg = *cfg.FileConfig
		}
		return filestorage.New(fileCfg)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		return pgstorage.New(*cfg.PostgresConfig)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be memory, file, redis or postgres", cfg.StorageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	ctx context.Context,
	store storage.Storage,
	clk clock.Clock,
	recorder *metrics.Recorder,
	matchCfg match.Config,
	logger *slog.Logger,
) (*App, error) {
	matchStore, err := match.Open(ctx, store, clk, recorder, logger, matchCfg)
	if err != nil {
		return nil, err
	}

	return &App{
		Storage:    store,
		Clock:      clk,
		Metrics:    recorder,
		MatchStore: matchStore,
	}, nil
}
