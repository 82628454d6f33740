package model

import (
	"fmt"
	"math"
	"time"
)

// PlayerID uniquely identifies a player within the roster (RFID or badge code)
type PlayerID string

// Team is one of the two team slots in a match
type Team int

const (
	TeamOne Team = 1
	TeamTwo Team = 2
)

// ParseTeam converts a wire team name ("team1", "team2") to a Team
func ParseTeam(s string) (Team, error) {
	switch s {
	case "team1":
		return TeamOne, nil
	case "team2":
		return TeamTwo, nil
	default:
		return 0, fmt.Errorf("%w: team must be team1 or team2", ErrValidation)
	}
}

// Valid returns true if t is one of the two team slots
func (t Team) Valid() bool {
	return t == TeamOne || t == TeamTwo
}

// String returns the wire name of the team
func (t Team) String() string {
	switch t {
	case TeamOne:
		return "team1"
	case TeamTwo:
		return "team2"
	default:
		return fmt.Sprintf("team(%d)", int(t))
	}
}

// Label returns the display label used on the venue screens
func (t Team) Label() string {
	if t == TeamOne {
		return "Team Hearts"
	}
	return "Team Spades"
}

// Contact holds sign-up details for externally registered players
type Contact struct {
	Email   string
	Mobile  string
	College string
}

// Player is one participant in the current match
type Player struct {
	ID          PlayerID
	Team        Team
	DisplayName string
	Kills       int
	Deaths      int

	// Append-only event times, cleared only by a match reset
	KillTimestamps  []time.Time
	DeathTimestamps []time.Time

	External bool     // registered through the out-of-band sign-up flow
	Contact  *Contact // nil unless External
}

// KDRatio returns kills/deaths rounded to two decimals, or kills when there are no deaths
func (p *Player) KDRatio() float64 {
	if p.Deaths == 0 {
		return float64(p.Kills)
	}
	return math.Round(float64(p.Kills)/float64(p.Deaths)*100) / 100
}

// Summary projects the player to its leaderboard form
func (p *Player) Summary() PlayerSummary {
	return PlayerSummary{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Kills:       p.Kills,
		Deaths:      p.Deaths,
	}
}

// ResetStats zeroes counters and clears event history
func (p *Player) ResetStats() {
	p.Kills = 0
	p.Deaths = 0
	p.KillTimestamps = nil
	p.DeathTimestamps = nil
}

// Clone returns a deep copy of the player
func (p *Player) Clone() *Player {
	c := *p
	c.KillTimestamps = cloneTimes(p.KillTimestamps)
	c.DeathTimestamps = cloneTimes(p.DeathTimestamps)
	if p.Contact != nil {
		contact := *p.Contact
		c.Contact = &contact
	}
	return &c
}

func cloneTimes(ts []time.Time) []time.Time {
	if ts == nil {
		return nil
	}
	out := make([]time.Time, len(ts))
	copy(out, ts)
	return out
}

// PlayerSummary is the leaderboard projection of a player
type PlayerSummary struct {
	ID          PlayerID
	DisplayName string
	Kills       int
	Deaths      int
}

// ExternalRegistration is a sign-up submitted outside the venue terminal
type ExternalRegistration struct {
	DisplayName string
	Team        Team
	Contact     Contact
}

// RegistryEntry is the identity part of a roster entry
type RegistryEntry struct {
	DisplayName string
	Team        Team
}
