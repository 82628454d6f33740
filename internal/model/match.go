package model

import "time"

// Winning team values reported in a victory summary
const (
	WinnerTeamOne = "team1"
	WinnerTeamTwo = "team2"
	WinnerTie     = "tie"
)

// VictorySummary is the outcome computed when a match is ended
type VictorySummary struct {
	WinningTeam string
	Team1Score  int
	Team2Score  int
	MVP         *PlayerSummary // nil when the roster was empty
	DecidedAt   time.Time
}

// Clone returns a deep copy of the summary
func (v *VictorySummary) Clone() *VictorySummary {
	if v == nil {
		return nil
	}
	c := *v
	if v.MVP != nil {
		mvp := *v.MVP
		c.MVP = &mvp
	}
	return &c
}

// Leaderboard is the roster partitioned by team, in roster order
type Leaderboard struct {
	Team1 []PlayerSummary
	Team2 []PlayerSummary
}

// MatchStatus reports the lifecycle flags of the match
type MatchStatus struct {
	Ended  bool
	Active bool
}

// Match is the aggregate state of the single running match
type Match struct {
	// Roster in registration order; index maps IDs to positions in Players
	Players []*Player
	index   map[PlayerID]int

	Active  bool
	Ended   bool
	Victory *VictorySummary // set when the match is ended, cleared by Reset
}

// NewMatch creates an empty match
func NewMatch() *Match {
	return &Match{index: make(map[PlayerID]int)}
}

// NewMatchFromPlayers creates a match with the given roster. Later
// duplicates of an ID are dropped.
func NewMatchFromPlayers(players []*Player) *Match {
	m := NewMatch()
	for _, p := range players {
		if _, exists := m.index[p.ID]; exists {
			continue
		}
		m.Add(p)
	}
	return m
}

// Get returns the player with the given ID, or nil if not on the roster
func (m *Match) Get(id PlayerID) *Player {
	i, ok := m.index[id]
	if !ok {
		return nil
	}
	return m.Players[i]
}

// Add appends a player to the roster. The caller ensures the ID is new.
func (m *Match) Add(p *Player) {
	if m.index == nil {
		m.reindex()
	}
	m.index[p.ID] = len(m.Players)
	m.Players = append(m.Players, p)
}

// Remove deletes a player from the roster, returning false if absent
func (m *Match) Remove(id PlayerID) bool {
	if _, ok := m.index[id]; !ok {
		return false
	}
	m.filter(func(p *Player) bool { return p.ID != id })
	return true
}

// RemoveTeam deletes every player on the given team and returns how many were removed
func (m *Match) RemoveTeam(team Team) int {
	before := len(m.Players)
	m.filter(func(p *Player) bool { return p.Team != team })
	return before - len(m.Players)
}

// filter keeps players for which keep returns true and rebuilds the index
func (m *Match) filter(keep func(*Player) bool) {
	kept := m.Players[:0]
	for _, p := range m.Players {
		if keep(p) {
			kept = append(kept, p)
		}
	}
	for i := len(kept); i < len(m.Players); i++ {
		m.Players[i] = nil
	}
	m.Players = kept
	m.reindex()
}

func (m *Match) reindex() {
	m.index = make(map[PlayerID]int, len(m.Players))
	for i, p := range m.Players {
		m.index[p.ID] = i
	}
}

// Leaderboard partitions the roster by team
func (m *Match) Leaderboard() Leaderboard {
	lb := Leaderboard{
		Team1: []PlayerSummary{},
		Team2: []PlayerSummary{},
	}
	for _, p := range m.Players {
		switch p.Team {
		case TeamOne:
			lb.Team1 = append(lb.Team1, p.Summary())
		case TeamTwo:
			lb.Team2 = append(lb.Team2, p.Summary())
		}
	}
	return lb
}

// ComputeVictory sums kills per team and picks the MVP. Ties for MVP go to
// the player encountered first (team 1 before team 2, then roster order).
func (m *Match) ComputeVictory(now time.Time) *VictorySummary {
	lb := m.Leaderboard()
	summary := &VictorySummary{DecidedAt: now}

	for _, p := range lb.Team1 {
		summary.Team1Score += p.Kills
	}
	for _, p := range lb.Team2 {
		summary.Team2Score += p.Kills
	}

	switch {
	case summary.Team1Score > summary.Team2Score:
		summary.WinningTeam = WinnerTeamOne
	case summary.Team2Score > summary.Team1Score:
		summary.WinningTeam = WinnerTeamTwo
	default:
		summary.WinningTeam = WinnerTie
	}

	for _, p := range append(lb.Team1, lb.Team2...) {
		if summary.MVP == nil || p.Kills > summary.MVP.Kills {
			mvp := p
			summary.MVP = &mvp
		}
	}

	return summary
}

// Reset zeroes every player's stats and clears the lifecycle flags.
// Roster membership is unchanged.
func (m *Match) Reset() {
	for _, p := range m.Players {
		p.ResetStats()
	}
	m.Active = false
	m.Ended = false
	m.Victory = nil
}

// Clone returns a deep copy of the match
func (m *Match) Clone() *Match {
	c := &Match{
		Players: make([]*Player, len(m.Players)),
		Active:  m.Active,
		Ended:   m.Ended,
		Victory: m.Victory.Clone(),
	}
	for i, p := range m.Players {
		c.Players[i] = p.Clone()
	}
	c.reindex()
	return c
}
