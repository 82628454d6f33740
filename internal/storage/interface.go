package storage

import (
	"context"

	"github.com/mcoot/blazeboard/internal/model"
)

// Storage defines the interface for durable match state
type Storage interface {
	// LoadMatch returns the stored match, or an empty match if nothing has been saved
	LoadMatch(ctx context.Context) (*model.Match, error)
	// SaveMatch replaces the stored match document
	SaveMatch(ctx context.Context, match *model.Match) error

	// NextExternalID issues the next value of the durable external registration counter
	NextExternalID(ctx context.Context) (int64, error)

	Close() error
}
