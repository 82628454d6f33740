package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTeam(t *testing.T) {
	team, err := ParseTeam("team1")
	require.NoError(t, err)
	assert.Equal(t, TeamOne, team)

	team, err = ParseTeam("team2")
	require.NoError(t, err)
	assert.Equal(t, TeamTwo, team)

	for _, bad := range []string{"", "team3", "TEAM1", "1"} {
		_, err := ParseTeam(bad)
		assert.ErrorIs(t, err, ErrValidation, "input %q", bad)
	}
}

func TestTeamString(t *testing.T) {
	assert.Equal(t, "team1", TeamOne.String())
	assert.Equal(t, "team2", TeamTwo.String())
	assert.False(t, Team(3).Valid())
	assert.Equal(t, "Team Hearts", TeamOne.Label())
	assert.Equal(t, "Team Spades", TeamTwo.Label())
}

func TestKDRatio(t *testing.T) {
	tests := []struct {
		name   string
		kills  int
		deaths int
		want   float64
	}{
		{"no deaths uses kills", 5, 0, 5},
		{"no kills no deaths", 0, 0, 0},
		{"even split", 4, 2, 2},
		{"rounded to two decimals", 2, 3, 0.67},
		{"zero kills", 0, 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Player{Kills: tt.kills, Deaths: tt.deaths}
			assert.InDelta(t, tt.want, p.KDRatio(), 1e-9)
		})
	}
}

func TestPlayerCloneIsDeep(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	p := &Player{
		ID:             "RFID001",
		KillTimestamps: []time.Time{now},
		External:       true,
		Contact:        &Contact{Email: "a@example.com"},
	}

	c := p.Clone()
	c.KillTimestamps[0] = now.Add(time.Hour)
	c.Contact.Email = "b@example.com"

	assert.Equal(t, now, p.KillTimestamps[0])
	assert.Equal(t, "a@example.com", p.Contact.Email)
}

func TestResetStats(t *testing.T) {
	p := &Player{
		ID:              "RFID001",
		DisplayName:     "Alice",
		Kills:           3,
		Deaths:          1,
		KillTimestamps:  []time.Time{time.Now()},
		DeathTimestamps: []time.Time{time.Now()},
	}

	p.ResetStats()

	assert.Zero(t, p.Kills)
	assert.Zero(t, p.Deaths)
	assert.Empty(t, p.KillTimestamps)
	assert.Empty(t, p.DeathTimestamps)
	assert.Equal(t, "Alice", p.DisplayName)
}
