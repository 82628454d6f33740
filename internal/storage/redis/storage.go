package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/blazeboard/internal/model"
	"github.com/mcoot/blazeboard/internal/storage"
	"github.com/mcoot/blazeboard/internal/storage/document"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultConfig().KeyPrefix
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) LoadMatch(ctx context.Context) (*model.Match, error) {
	data, err := s.client.Get(ctx, matchKey(s.cfg.KeyPrefix)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.NewMatch(), nil
		}
		return nil, err
	}
	return document.Decode(data)
}

func (s *Storage) SaveMatch(ctx context.Context, match *model.Match) error {
	data, err := document.Encode(match, time.Now().UTC())
	if err != nil {
		return err
	}

	// Single SET replaces the whole document atomically, no TTL
	return s.client.Set(ctx, matchKey(s.cfg.KeyPrefix), data, 0).Err()
}

func (s *Storage) NextExternalID(ctx context.Context) (int64, error) {
	return s.client.Incr(ctx, externalCounterKey(s.cfg.KeyPrefix)).Result()
}
