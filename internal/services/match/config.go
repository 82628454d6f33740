package match

import (
	"fmt"
	"time"

	"github.com/mcoot/blazeboard/internal/model"
)

// ScoringPolicy decides whether kills and deaths are accepted once a match has ended
type ScoringPolicy string

const (
	// ScoringOpen keeps scoring after end; the next EndMatch reflects the new counters
	ScoringOpen ScoringPolicy = "open"
	// ScoringLocked rejects kills and deaths until the match is reset
	ScoringLocked ScoringPolicy = "locked"
)

// ParseScoringPolicy converts a config value to a ScoringPolicy
func ParseScoringPolicy(s string) (ScoringPolicy, error) {
	switch ScoringPolicy(s) {
	case "", ScoringOpen:
		return ScoringOpen, nil
	case ScoringLocked:
		return ScoringLocked, nil
	default:
		return "", fmt.Errorf("%w: unknown scoring policy %q", model.ErrValidation, s)
	}
}

const (
	defaultPersistAttempts = 3
	defaultPersistBackoff  = 50 * time.Millisecond
)

// Config holds Store settings
type Config struct {
	ScoringPolicy ScoringPolicy

	// PersistAttempts bounds the writes tried per mutation; backoff grows
	// linearly with the attempt number.
	PersistAttempts int
	PersistBackoff  time.Duration
}

// DefaultConfig returns the default Store settings
func DefaultConfig() Config {
	return Config{
		ScoringPolicy:   ScoringOpen,
		PersistAttempts: defaultPersistAttempts,
		PersistBackoff:  defaultPersistBackoff,
	}
}

func (c Config) withDefaults() Config {
	if c.ScoringPolicy == "" {
		c.ScoringPolicy = ScoringOpen
	}
	if c.PersistAttempts <= 0 {
		c.PersistAttempts = defaultPersistAttempts
	}
	if c.PersistBackoff < 0 {
		c.PersistBackoff = defaultPersistBackoff
	}
	return c
}
