package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mcoot/blazeboard/internal/model"
	"github.com/mcoot/blazeboard/internal/storage"
	"github.com/mcoot/blazeboard/internal/storage/document"
)

// Config holds file locations for the file backend
type Config struct {
	// StatsPath is the match document (game_stats.json)
	StatsPath string
	// CounterPath holds the external registration counter
	CounterPath string
}

// DefaultConfig returns the file names the venue deployment has always used
func DefaultConfig() Config {
	return Config{
		StatsPath:   "game_stats.json",
		CounterPath: "external_counter.json",
	}
}

type counterFile struct {
	Counter int64 `json:"counter"`
}

// Storage persists the match as a JSON document on the local filesystem
type Storage struct {
	mu  sync.Mutex
	cfg Config
}

// New creates a file storage, creating parent directories as needed
func New(cfg Config) (*Storage, error) {
	if cfg.StatsPath == "" || cfg.CounterPath == "" {
		return nil, errors.New("file storage requires stats and counter paths")
	}
	for _, p := range []string{cfg.StatsPath, cfg.CounterPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return nil, err
		}
	}
	return &Storage{cfg: cfg}, nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) LoadMatch(ctx context.Context) (*model.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.cfg.StatsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
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

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeAtomic(s.cfg.StatsPath, data)
}

func (s *Storage) NextExternalID(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var c counterFile
	data, err := os.ReadFile(s.cfg.CounterPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &c); err != nil {
			return 0, fmt.Errorf("decode counter file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return 0, err
	}

	c.Counter++
	data, err = json.Marshal(c)
	if err != nil {
		return 0, err
	}
	if err := writeAtomic(s.cfg.CounterPath, data); err != nil {
		return 0, err
	}
	return c.Counter, nil
}

func (s *Storage) Close() error {
	return nil
}

// writeAtomic writes to a sibling temp file and renames it over target, so
// a crash mid-write leaves the previous document intact
func writeAtomic(target string, data []byte) error {
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
