package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mcoot/blazeboard/internal/model"
)

// Token is a string field that tag readers may also send as a JSON number
type Token string

// UnmarshalJSON accepts a string, a number or null
func (t *Token) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Token(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number: %w", err)
		}
		*t = Token(n.String())
		return nil
	}
}

// PlayerRef identifies a player by "rfid", or by "id" when rfid is absent
type PlayerRef struct {
	RFID Token `json:"rfid"`
	ID   Token `json:"id"`
}

// PlayerID returns the referenced id, trimmed
func (r PlayerRef) PlayerID() model.PlayerID {
	if s := strings.TrimSpace(string(r.RFID)); s != "" {
		return model.PlayerID(s)
	}
	return model.PlayerID(strings.TrimSpace(string(r.ID)))
}

// RegisterRequest is the body for POST /api/register
type RegisterRequest struct {
	PlayerRef
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Team        Token  `json:"team"`
}

// Display returns the display name from either accepted field
func (r RegisterRequest) Display() string {
	if s := strings.TrimSpace(r.Name); s != "" {
		return s
	}
	return strings.TrimSpace(r.DisplayName)
}

// ExternalRegisterRequest is the body for POST /api/register_external
type ExternalRegisterRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Mobile  Token  `json:"mobile"`
	College string `json:"college"`
	Team    Token  `json:"team"`
}

// ClearTeamRequest is the body for POST /api/clear_team
type ClearTeamRequest struct {
	Team Token `json:"team"`
}

// ParseTeam accepts "team1"/"team2" as well as the bare team numbers
func ParseTeam(t Token) (model.Team, error) {
	s := strings.ToLower(strings.TrimSpace(string(t)))
	switch s {
	case "1":
		return model.TeamOne, nil
	case "2":
		return model.TeamTwo, nil
	}
	return model.ParseTeam(s)
}
