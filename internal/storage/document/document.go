// Package document defines the canonical persisted form of a match and the
// one-time migration from the legacy flat layout.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mcoot/blazeboard/internal/model"
)

// CurrentVersion is written into every encoded document
const CurrentVersion = 2

// Document is the persisted match: a top-level player list plus lifecycle flags
type Document struct {
	Version      int       `json:"version"`
	Players      []Player  `json:"players"`
	GameIsActive bool      `json:"gameIsActive"`
	Team1Score   int       `json:"team1Score"`
	Team2Score   int       `json:"team2Score"`
	Ended        bool      `json:"ended"`
	Victory      *Victory  `json:"victory"`
	SavedAt      time.Time `json:"savedAt,omitzero"`
}

// Player is the persisted form of a roster entry
type Player struct {
	ID              string      `json:"id"`
	TeamID          int         `json:"teamId"`
	Name            string      `json:"name"`
	Kills           int         `json:"kills"`
	Deaths          int         `json:"deaths"`
	KillTimestamps  []time.Time `json:"killTimestamps"`
	DeathTimestamps []time.Time `json:"deathTimestamps"`
	External        bool        `json:"external,omitempty"`
	Email           string      `json:"email,omitempty"`
	Mobile          string      `json:"mobile,omitempty"`
	College         string      `json:"college,omitempty"`
}

// Victory is the persisted victory summary
type Victory struct {
	WinningTeam string    `json:"winningTeam"`
	Team1Score  int       `json:"team1Score"`
	Team2Score  int       `json:"team2Score"`
	MVP         *MVP      `json:"mvp"`
	DecidedAt   time.Time `json:"decidedAt"`
}

// MVP is the persisted MVP projection
type MVP struct {
	ID     string `json:"rfid"`
	Name   string `json:"name"`
	Kills  int    `json:"kills"`
	Deaths int    `json:"deaths"`
}

// legacyPlayer is one value of the old id -> stats layout
type legacyPlayer struct {
	Team   int    `json:"team"`
	Name   string `json:"name"`
	Kills  int    `json:"kills"`
	Deaths int    `json:"deaths"`
}

// Encode serialises a match into the canonical document
func Encode(m *model.Match, savedAt time.Time) ([]byte, error) {
	return json.MarshalIndent(FromMatch(m, savedAt), "", "    ")
}

// Decode parses stored bytes into a match. Empty input yields an empty
// match. Legacy flat documents are migrated here and nowhere else.
func Decode(data []byte) (*model.Match, error) {
	if len(data) == 0 {
		return model.NewMatch(), nil
	}

	members, err := objectMembers(data)
	if err != nil {
		return nil, fmt.Errorf("decode match document: %w", err)
	}

	if isLegacy(members) {
		return migrateLegacy(members), nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode match document: %w", err)
	}
	return doc.ToMatch(), nil
}

// member is one key/value pair of a JSON object
type member struct {
	key   string
	value json.RawMessage
}

// objectMembers returns the members of a top-level JSON object in document
// order. A repeated key keeps its first position and its last value.
func objectMembers(data []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("document is not a JSON object")
	}

	var members []member
	seen := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		if i, ok := seen[key]; ok {
			members[i].value = value
			continue
		}
		seen[key] = len(members)
		members = append(members, member{key: key, value: value})
	}

	// closing brace, then nothing else
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after document")
	}
	return members, nil
}

// isLegacy reports whether the members use the old flat layout. The current
// layout has a players list, which older writers left as null when empty.
func isLegacy(members []member) bool {
	for _, m := range members {
		if m.key == "players" {
			switch firstByte(m.value) {
			case '[', 'n':
				return false
			}
			return true
		}
	}
	return true
}

// firstByte returns the first non-whitespace byte of raw, or 0
func firstByte(raw json.RawMessage) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return b
		}
	}
	return 0
}

// migrateLegacy converts the old id -> stats map, keeping document order.
// Values that are not objects are skipped; the old layout kept no
// timestamps or lifecycle flags.
func migrateLegacy(members []member) *model.Match {
	m := model.NewMatch()
	for _, mb := range members {
		if firstByte(mb.value) != '{' {
			continue
		}
		var lp legacyPlayer
		if err := json.Unmarshal(mb.value, &lp); err != nil {
			continue
		}
		team := model.Team(lp.Team)
		if !team.Valid() {
			team = model.TeamOne
		}
		name := lp.Name
		if name == "" {
			name = mb.key
		}
		m.Add(&model.Player{
			ID:          model.PlayerID(mb.key),
			Team:        team,
			DisplayName: name,
			Kills:       nonNegative(lp.Kills),
			Deaths:      nonNegative(lp.Deaths),
		})
	}
	return m
}

// FromMatch builds the document for a match
func FromMatch(m *model.Match, savedAt time.Time) *Document {
	doc := &Document{
		Version:      CurrentVersion,
		Players:      make([]Player, 0, len(m.Players)),
		GameIsActive: m.Active,
		Ended:        m.Ended,
		SavedAt:      savedAt,
	}

	for _, p := range m.Players {
		dp := Player{
			ID:              string(p.ID),
			TeamID:          int(p.Team),
			Name:            p.DisplayName,
			Kills:           p.Kills,
			Deaths:          p.Deaths,
			KillTimestamps:  nonNil(p.KillTimestamps),
			DeathTimestamps: nonNil(p.DeathTimestamps),
			External:        p.External,
		}
		if p.Contact != nil {
			dp.Email = p.Contact.Email
			dp.Mobile = p.Contact.Mobile
			dp.College = p.Contact.College
		}
		doc.Players = append(doc.Players, dp)

		switch p.Team {
		case model.TeamOne:
			doc.Team1Score += p.Kills
		case model.TeamTwo:
			doc.Team2Score += p.Kills
		}
	}

	if v := m.Victory; v != nil {
		doc.Victory = &Victory{
			WinningTeam: v.WinningTeam,
			Team1Score:  v.Team1Score,
			Team2Score:  v.Team2Score,
			DecidedAt:   v.DecidedAt,
		}
		if v.MVP != nil {
			doc.Victory.MVP = &MVP{
				ID:     string(v.MVP.ID),
				Name:   v.MVP.DisplayName,
				Kills:  v.MVP.Kills,
				Deaths: v.MVP.Deaths,
			}
		}
	}

	return doc
}

// ToMatch rebuilds the in-memory match from the document
func (d *Document) ToMatch() *model.Match {
	players := make([]*model.Player, 0, len(d.Players))
	for _, dp := range d.Players {
		team := model.Team(dp.TeamID)
		if !team.Valid() {
			team = model.TeamOne
		}
		p := &model.Player{
			ID:              model.PlayerID(dp.ID),
			Team:            team,
			DisplayName:     dp.Name,
			Kills:           nonNegative(dp.Kills),
			Deaths:          nonNegative(dp.Deaths),
			KillTimestamps:  dp.KillTimestamps,
			DeathTimestamps: dp.DeathTimestamps,
			External:        dp.External,
		}
		if dp.External {
			p.Contact = &model.Contact{
				Email:   dp.Email,
				Mobile:  dp.Mobile,
				College: dp.College,
			}
		}
		players = append(players, p)
	}

	m := model.NewMatchFromPlayers(players)
	m.Active = d.GameIsActive
	m.Ended = d.Ended

	if v := d.Victory; v != nil {
		m.Victory = &model.VictorySummary{
			WinningTeam: v.WinningTeam,
			Team1Score:  v.Team1Score,
			Team2Score:  v.Team2Score,
			DecidedAt:   v.DecidedAt,
		}
		if v.MVP != nil {
			m.Victory.MVP = &model.PlayerSummary{
				ID:          model.PlayerID(v.MVP.ID),
				DisplayName: v.MVP.Name,
				Kills:       v.MVP.Kills,
				Deaths:      v.MVP.Deaths,
			}
		}
	}

	return m
}

// nonNegative clamps counters from hand-edited or corrupt documents
func nonNegative(n int) int {
	return max(n, 0)
}

func nonNil(ts []time.Time) []time.Time {
	if ts == nil {
		return []time.Time{}
	}
	return ts
}
