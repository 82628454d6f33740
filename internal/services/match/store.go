// Package match owns the state of the running match: the roster, the
// per-player counters and the lifecycle flags.
package match

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/blazeboard/internal/dependencies/clock"
	"github.com/mcoot/blazeboard/internal/logging"
	"github.com/mcoot/blazeboard/internal/metrics"
	"github.com/mcoot/blazeboard/internal/model"
	"github.com/mcoot/blazeboard/internal/storage"
)

const (
	// ExternalIDPrefix marks ids issued to externally registered players
	ExternalIDPrefix = "EXT"
	// DefaultCollege is recorded when an external sign-up leaves college empty
	DefaultCollege = "External"
)

var mobilePattern = regexp.MustCompile(`^[0-9]{10}$`)

// Store serialises every operation on the match. Mutations run on a clone
// which replaces the live match only once it has been saved.
type Store struct {
	mu    sync.RWMutex
	match *model.Match

	storage storage.Storage
	clock   clock.Clock
	metrics *metrics.Recorder
	logger  *slog.Logger
	cfg     Config
}

// Open loads the persisted match and returns a Store serving it
func Open(
	ctx context.Context,
	store storage.Storage,
	clk clock.Clock,
	recorder *metrics.Recorder,
	logger *slog.Logger,
	cfg Config,
) (*Store, error) {
	m, err := store.LoadMatch(ctx)
	if err != nil {
		return nil, fmt.Errorf("load match: %w", err)
	}

	s := &Store{
		match:   m,
		storage: store,
		clock:   clk,
		metrics: recorder,
		logger:  logger,
		cfg:     cfg.withDefaults(),
	}
	s.recordRoster()

	logger.Info("match loaded",
		slog.Int("players", len(m.Players)),
		slog.Bool("ended", m.Ended),
		slog.String("scoring_policy", string(s.cfg.ScoringPolicy)),
	)
	return s, nil
}

type registration struct {
	player  *model.Player
	created bool
}

// Register adds a player, or updates the name and team of an existing one
// without touching its counters. Legal in any lifecycle state.
func (s *Store) Register(ctx context.Context, id model.PlayerID, displayName string, team model.Team) (*model.Player, error) {
	id = model.PlayerID(strings.TrimSpace(string(id)))
	displayName = strings.TrimSpace(displayName)

	if err := validateRegistration(id, displayName, team); err != nil {
		s.metrics.Rejected(metrics.EventRegister)
		return nil, err
	}

	r, err := mutate(ctx, s, metrics.EventRegister, func(m *model.Match) (registration, error) {
		if existing := m.Get(id); existing != nil {
			existing.DisplayName = displayName
			existing.Team = team
			return registration{player: existing.Clone()}, nil
		}
		p := &model.Player{ID: id, Team: team, DisplayName: displayName}
		m.Add(p)
		return registration{player: p.Clone(), created: true}, nil
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx, s.logger).Info("player registered",
		slog.String(logging.FieldPlayerID, string(r.player.ID)),
		slog.String(logging.FieldTeam, r.player.Team.String()),
		slog.Bool("created", r.created),
	)
	return r.player, nil
}

// RegisterExternal adds a player signed up outside the venue terminal,
// issuing it the next id from the durable external counter.
func (s *Store) RegisterExternal(ctx context.Context, reg model.ExternalRegistration) (*model.Player, error) {
	reg.DisplayName = strings.TrimSpace(reg.DisplayName)
	reg.Contact.Email = strings.TrimSpace(reg.Contact.Email)
	reg.Contact.Mobile = strings.TrimSpace(reg.Contact.Mobile)
	reg.Contact.College = strings.TrimSpace(reg.Contact.College)
	if reg.Contact.College == "" {
		reg.Contact.College = DefaultCollege
	}

	if err := validateExternal(reg); err != nil {
		s.metrics.Rejected(metrics.EventRegisterExternal)
		return nil, err
	}

	p, err := mutate(ctx, s, metrics.EventRegisterExternal, func(m *model.Match) (*model.Player, error) {
		id, err := s.nextExternalID(ctx, m)
		if err != nil {
			return nil, err
		}
		contact := reg.Contact
		p := &model.Player{
			ID:          id,
			Team:        reg.Team,
			DisplayName: reg.DisplayName,
			External:    true,
			Contact:     &contact,
		}
		m.Add(p)
		return p.Clone(), nil
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx, s.logger).Info("external player registered",
		slog.String(logging.FieldPlayerID, string(p.ID)),
		slog.String(logging.FieldTeam, p.Team.String()),
	)
	return p, nil
}

// nextExternalID draws counter values until one is free on the roster
func (s *Store) nextExternalID(ctx context.Context, m *model.Match) (model.PlayerID, error) {
	for {
		n, err := s.storage.NextExternalID(ctx)
		if err != nil {
			return "", fmt.Errorf("%w: external counter: %w", model.ErrPersistence, err)
		}
		id := model.PlayerID(fmt.Sprintf("%s%04d", ExternalIDPrefix, n))
		if m.Get(id) == nil {
			return id, nil
		}
	}
}

// RecordKill increments the player's kill counter and stamps the event time
func (s *Store) RecordKill(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return s.record(ctx, id, metrics.EventKill, func(p *model.Player, now time.Time) {
		p.Kills++
		p.KillTimestamps = append(p.KillTimestamps, now)
	})
}

// RecordDeath increments the player's death counter and stamps the event time
func (s *Store) RecordDeath(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return s.record(ctx, id, metrics.EventDeath, func(p *model.Player, now time.Time) {
		p.Deaths++
		p.DeathTimestamps = append(p.DeathTimestamps, now)
	})
}

func (s *Store) record(ctx context.Context, id model.PlayerID, event string, apply func(*model.Player, time.Time)) (*model.Player, error) {
	p, err := mutate(ctx, s, event, func(m *model.Match) (*model.Player, error) {
		if m.Ended && s.cfg.ScoringPolicy == ScoringLocked {
			return nil, fmt.Errorf("%w: reset the match before recording a %s", model.ErrMatchEnded, event)
		}
		p := m.Get(id)
		if p == nil {
			return nil, fmt.Errorf("%w: %s", model.ErrPlayerNotFound, id)
		}
		apply(p, s.clock.Now())
		if !m.Ended {
			m.Active = true
		}
		return p.Clone(), nil
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx, s.logger).Debug("match event recorded",
		slog.String(logging.FieldEvent, event),
		slog.String(logging.FieldPlayerID, string(p.ID)),
		slog.Int("kills", p.Kills),
		slog.Int("deaths", p.Deaths),
	)
	return p, nil
}

// Leaderboard returns the roster partitioned by team, in registration order
func (s *Store) Leaderboard(ctx context.Context) model.Leaderboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.match.Leaderboard()
}

// EndMatch computes and stores the victory summary and marks the match
// ended. Calling it again recomputes from the current counters.
func (s *Store) EndMatch(ctx context.Context) (*model.VictorySummary, error) {
	v, err := mutate(ctx, s, metrics.EventEndMatch, func(m *model.Match) (*model.VictorySummary, error) {
		m.Victory = m.ComputeVictory(s.clock.Now())
		m.Ended = true
		m.Active = false
		return m.Victory.Clone(), nil
	})
	if err != nil {
		return nil, err
	}

	attrs := []any{
		slog.String("winning_team", v.WinningTeam),
		slog.Int("team1_score", v.Team1Score),
		slog.Int("team2_score", v.Team2Score),
	}
	if v.MVP != nil {
		attrs = append(attrs, slog.String("mvp", string(v.MVP.ID)))
	}
	logging.FromContext(ctx, s.logger).Info("match ended", attrs...)
	return v, nil
}

// ResetMatch zeroes every counter and history and clears the lifecycle
// flags. The roster is kept.
func (s *Store) ResetMatch(ctx context.Context) error {
	_, err := mutate(ctx, s, metrics.EventReset, func(m *model.Match) (struct{}, error) {
		m.Reset()
		return struct{}{}, nil
	})
	if err != nil {
		return err
	}

	logging.FromContext(ctx, s.logger).Info("match reset")
	return nil
}

// RemovePlayer deletes a player and its history from the roster
func (s *Store) RemovePlayer(ctx context.Context, id model.PlayerID) error {
	_, err := mutate(ctx, s, metrics.EventRemovePlayer, func(m *model.Match) (struct{}, error) {
		if !m.Remove(id) {
			return struct{}{}, fmt.Errorf("%w: %s", model.ErrPlayerNotFound, id)
		}
		return struct{}{}, nil
	})
	if err != nil {
		return err
	}

	logging.FromContext(ctx, s.logger).Info("player removed", slog.String(logging.FieldPlayerID, string(id)))
	return nil
}

// ClearTeam removes every player on the team. An empty team is not an error.
func (s *Store) ClearTeam(ctx context.Context, team model.Team) error {
	if !team.Valid() {
		s.metrics.Rejected(metrics.EventClearTeam)
		return fmt.Errorf("%w: team must be 1 or 2", model.ErrValidation)
	}

	removed, err := mutate(ctx, s, metrics.EventClearTeam, func(m *model.Match) (int, error) {
		return m.RemoveTeam(team), nil
	})
	if err != nil {
		return err
	}

	logging.FromContext(ctx, s.logger).Info("team cleared",
		slog.String(logging.FieldTeam, team.String()),
		slog.Int("removed", removed),
	)
	return nil
}

// Status returns the lifecycle flags
func (s *Store) Status(ctx context.Context) model.MatchStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.MatchStatus{Ended: s.match.Ended, Active: s.match.Active}
}

// VictorySummary returns the summary stored by the last EndMatch
func (s *Store) VictorySummary(ctx context.Context) (*model.VictorySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.match.Victory == nil {
		return nil, model.ErrVictoryNotAvailable
	}
	return s.match.Victory.Clone(), nil
}

// Registry maps every player id to its name and team
func (s *Store) Registry(ctx context.Context) map[model.PlayerID]model.RegistryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[model.PlayerID]model.RegistryEntry, len(s.match.Players))
	for _, p := range s.match.Players {
		out[p.ID] = model.RegistryEntry{DisplayName: p.DisplayName, Team: p.Team}
	}
	return out
}

// Player returns a copy of one player's full record
func (s *Store) Player(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.match.Get(id)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", model.ErrPlayerNotFound, id)
	}
	return p.Clone(), nil
}

// Candidates returns copies of the externally registered players in roster order
func (s *Store) Candidates(ctx context.Context) []*model.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*model.Player{}
	for _, p := range s.match.Players {
		if p.External {
			out = append(out, p.Clone())
		}
	}
	return out
}

// mutate applies fn to a clone of the match, saves the clone and swaps it
// in. When fn or the save fails the live match is left as it was.
func mutate[T any](ctx context.Context, s *Store, event string, fn func(*model.Match) (T, error)) (T, error) {
	var zero T

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.match.Clone()
	result, err := fn(next)
	if err != nil {
		s.metrics.Rejected(event)
		return zero, err
	}

	if err := s.persist(ctx, next, event); err != nil {
		return zero, err
	}

	s.match = next
	s.metrics.Event(event)
	s.recordRoster()
	return result, nil
}

// persist saves m with bounded retries and linear backoff. The save is not
// cancelled with the caller's context so an accepted event is not lost to
// a dropped connection.
func (s *Store) persist(ctx context.Context, m *model.Match, event string) error {
	ctx = context.WithoutCancel(ctx)
	logger := logging.FromContext(ctx, s.logger)
	start := time.Now()

	var lastErr error
	for attempt := 1; attempt <= s.cfg.PersistAttempts; attempt++ {
		lastErr = s.storage.SaveMatch(ctx, m)
		if lastErr == nil {
			s.metrics.PersistResult(time.Since(start), nil)
			return nil
		}
		if attempt == s.cfg.PersistAttempts {
			break
		}

		s.metrics.PersistRetry()
		logger.Warn("match save retry",
			slog.String(logging.FieldEvent, event),
			slog.Int(logging.FieldAttempt, attempt),
			slog.Int("max_attempts", s.cfg.PersistAttempts),
			slog.String("error", lastErr.Error()),
		)
		time.Sleep(time.Duration(attempt) * s.cfg.PersistBackoff)
	}

	s.metrics.PersistResult(time.Since(start), lastErr)
	logger.Error("match save failed, change rolled back",
		slog.String(logging.FieldEvent, event),
		slog.Int("attempts", s.cfg.PersistAttempts),
		slog.String("error", lastErr.Error()),
	)
	return fmt.Errorf("%w: %w", model.ErrPersistence, lastErr)
}

// recordRoster updates the roster gauges; callers hold the lock
func (s *Store) recordRoster() {
	var team1, team2 int
	for _, p := range s.match.Players {
		switch p.Team {
		case model.TeamOne:
			team1++
		case model.TeamTwo:
			team2++
		}
	}
	s.metrics.Roster(team1, team2)
}

func validateRegistration(id model.PlayerID, displayName string, team model.Team) error {
	switch {
	case id == "":
		return fmt.Errorf("%w: player id is required", model.ErrValidation)
	case displayName == "":
		return fmt.Errorf("%w: display name is required", model.ErrValidation)
	case !team.Valid():
		return fmt.Errorf("%w: team must be team1 or team2", model.ErrValidation)
	}
	return nil
}

func validateExternal(reg model.ExternalRegistration) error {
	if reg.DisplayName == "" {
		return fmt.Errorf("%w: name is required", model.ErrValidation)
	}
	if !reg.Team.Valid() {
		return fmt.Errorf("%w: team must be team1 or team2", model.ErrValidation)
	}
	if addr, err := mail.ParseAddress(reg.Contact.Email); err != nil || addr.Address != reg.Contact.Email {
		return fmt.Errorf("%w: a valid email is required", model.ErrValidation)
	}
	if !mobilePattern.MatchString(reg.Contact.Mobile) {
		return fmt.Errorf("%w: mobile must be a 10-digit number", model.ErrValidation)
	}
	return nil
}
