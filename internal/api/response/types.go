package response

import (
	"time"

	"github.com/mcoot/blazeboard/internal/model"
)

// Success acknowledges a mutation
type Success struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// OK builds a Success with an optional message
func OK(message string) Success {
	return Success{Success: true, Message: message}
}

// ExternalRegistered is returned after an external sign-up
type ExternalRegistered struct {
	Success bool   `json:"success"`
	RFID    string `json:"rfid"`
	Message string `json:"message"`
}

// PlayerSummary is a leaderboard row
type PlayerSummary struct {
	RFID   string `json:"rfid"`
	Name   string `json:"name"`
	Kills  int    `json:"kills"`
	Deaths int    `json:"deaths"`
}

// PlayerSummaryFromModel converts model.PlayerSummary
func PlayerSummaryFromModel(p model.PlayerSummary) PlayerSummary {
	return PlayerSummary{
		RFID:   string(p.ID),
		Name:   p.DisplayName,
		Kills:  p.Kills,
		Deaths: p.Deaths,
	}
}

// Leaderboard is the roster split by team
type Leaderboard struct {
	Team1 []PlayerSummary `json:"team1"`
	Team2 []PlayerSummary `json:"team2"`
}

// LeaderboardFromModel converts model.Leaderboard
func LeaderboardFromModel(lb model.Leaderboard) Leaderboard {
	return Leaderboard{
		Team1: summaries(lb.Team1),
		Team2: summaries(lb.Team2),
	}
}

func summaries(in []model.PlayerSummary) []PlayerSummary {
	out := make([]PlayerSummary, len(in))
	for i, p := range in {
		out[i] = PlayerSummaryFromModel(p)
	}
	return out
}

// PlayerDetail is the full record of one player
type PlayerDetail struct {
	RFID            string      `json:"rfid"`
	Name            string      `json:"name"`
	Team            string      `json:"team"`
	TeamID          int         `json:"teamId"`
	Kills           int         `json:"kills"`
	Deaths          int         `json:"deaths"`
	KDRatio         float64     `json:"kdRatio"`
	KillTimestamps  []time.Time `json:"killTimestamps"`
	DeathTimestamps []time.Time `json:"deathTimestamps"`
	External        bool        `json:"external"`
	Email           string      `json:"email,omitempty"`
	Mobile          string      `json:"mobile,omitempty"`
	College         string      `json:"college,omitempty"`
}

// PlayerDetailFromModel converts model.Player
func PlayerDetailFromModel(p *model.Player) PlayerDetail {
	d := PlayerDetail{
		RFID:            string(p.ID),
		Name:            p.DisplayName,
		Team:            p.Team.String(),
		TeamID:          int(p.Team),
		Kills:           p.Kills,
		Deaths:          p.Deaths,
		KDRatio:         p.KDRatio(),
		KillTimestamps:  nonNil(p.KillTimestamps),
		DeathTimestamps: nonNil(p.DeathTimestamps),
		External:        p.External,
	}
	if p.Contact != nil {
		d.Email = p.Contact.Email
		d.Mobile = p.Contact.Mobile
		d.College = p.Contact.College
	}
	return d
}

func nonNil(ts []time.Time) []time.Time {
	if ts == nil {
		return []time.Time{}
	}
	return ts
}

// MatchStatus reports the lifecycle flags
type MatchStatus struct {
	Ended  bool `json:"ended"`
	Active bool `json:"active"`
}

// MVP is the best player of an ended match. RFID is empty when nobody played.
type MVP struct {
	RFID   string `json:"rfid,omitempty"`
	Name   string `json:"name"`
	Kills  int    `json:"kills"`
	Deaths int    `json:"deaths"`
}

// NoMVPName is shown when the roster was empty at match end
const NoMVPName = "N/A"

// Victory is the victory screen payload
type Victory struct {
	WinningTeam string    `json:"winningTeam"`
	Team1Score  int       `json:"team1Score"`
	Team2Score  int       `json:"team2Score"`
	MVP         MVP       `json:"mvp"`
	DecidedAt   time.Time `json:"decidedAt"`
}

// VictoryFromModel converts model.VictorySummary
func VictoryFromModel(v *model.VictorySummary) Victory {
	out := Victory{
		WinningTeam: v.WinningTeam,
		Team1Score:  v.Team1Score,
		Team2Score:  v.Team2Score,
		MVP:         MVP{Name: NoMVPName},
		DecidedAt:   v.DecidedAt,
	}
	if v.MVP != nil {
		out.MVP = MVP{
			RFID:   string(v.MVP.ID),
			Name:   v.MVP.DisplayName,
			Kills:  v.MVP.Kills,
			Deaths: v.MVP.Deaths,
		}
	}
	return out
}

// RegistryEntry is one value of the registry mapping
type RegistryEntry struct {
	Name string `json:"name"`
	Team int    `json:"team"`
}

// RegistryFromModel converts the id -> entry mapping
func RegistryFromModel(reg map[model.PlayerID]model.RegistryEntry) map[string]RegistryEntry {
	out := make(map[string]RegistryEntry, len(reg))
	for id, e := range reg {
		out[string(id)] = RegistryEntry{Name: e.DisplayName, Team: int(e.Team)}
	}
	return out
}

// Candidate is an externally registered player
type Candidate struct {
	RFID    string `json:"rfid"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Mobile  string `json:"mobile"`
	College string `json:"college"`
	Team    string `json:"team"`
}

// Candidates lists the external sign-ups
type Candidates struct {
	Success    bool        `json:"success"`
	Count      int         `json:"count"`
	Candidates []Candidate `json:"candidates"`
}

// CandidatesFromModel converts externally registered players
func CandidatesFromModel(players []*model.Player) Candidates {
	out := Candidates{Success: true, Count: len(players), Candidates: make([]Candidate, len(players))}
	for i, p := range players {
		c := Candidate{
			RFID: string(p.ID),
			Name: p.DisplayName,
			Team: p.Team.Label(),
		}
		if p.Contact != nil {
			c.Email = p.Contact.Email
			c.Mobile = p.Contact.Mobile
			c.College = p.Contact.College
		}
		out.Candidates[i] = c
	}
	return out
}

// Health is the health check payload
type Health struct {
	Status string `json:"status"`
}
