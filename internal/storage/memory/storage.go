package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/blazeboard/internal/model"
	"github.com/mcoot/blazeboard/internal/storage"
	"github.com/mcoot/blazeboard/internal/storage/document"
)

// Storage is an in-memory implementation of the storage interface.
// Matches are kept in encoded form so callers never share state with it.
type Storage struct {
	mu sync.RWMutex

	data          []byte
	externalCount int64
	saves         int
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) LoadMatch(ctx context.Context) (*model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return document.Decode(s.data)
}

func (s *Storage) SaveMatch(ctx context.Context, match *model.Match) error {
	data, err := document.Encode(match, time.Now().UTC())
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.saves++
	return nil
}

func (s *Storage) NextExternalID(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.externalCount++
	return s.externalCount, nil
}

// Seed replaces the stored document with raw bytes, in any supported layout
func (s *Storage) Seed(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
}

// Raw returns a copy of the stored document bytes
func (s *Storage) Raw() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.data...)
}

// Saves returns the number of successful SaveMatch calls
func (s *Storage) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func (s *Storage) Close() error {
	return nil
}
