package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/blazeboard/internal/model"
)

func TestDecodeEmptyInput(t *testing.T) {
	m, err := Decode(nil)
	require.NoError(t, err)
	assert.Empty(t, m.Players)
	assert.False(t, m.Ended)
}

func TestDecodeInvalidJSON(t *testing.T) {
	_, err := Decode([]byte("{not json"))
	assert.Error(t, err)
}

func TestEncodeDecodePreservesMatch(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := model.NewMatch()
	m.Add(&model.Player{
		ID:              "RFID001",
		Team:            model.TeamOne,
		DisplayName:     "H1",
		Kills:           2,
		Deaths:          1,
		KillTimestamps:  []time.Time{now, now.Add(time.Second)},
		DeathTimestamps: []time.Time{now.Add(2 * time.Second)},
	})
	m.Add(&model.Player{
		ID:          "EXT0001",
		Team:        model.TeamTwo,
		DisplayName: "Guest",
		External:    true,
		Contact:     &model.Contact{Email: "g@example.com", Mobile: "9876543210", College: "MIT"},
	})
	m.Active = true
	m.Ended = true
	m.Victory = m.ComputeVictory(now)

	data, err := Encode(m, now)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	require.Len(t, decoded.Players, 2)
	h1 := decoded.Get("RFID001")
	require.NotNil(t, h1)
	assert.Equal(t, 2, h1.Kills)
	assert.Len(t, h1.KillTimestamps, 2)
	assert.True(t, h1.KillTimestamps[0].Equal(now))

	ext := decoded.Get("EXT0001")
	require.NotNil(t, ext)
	assert.True(t, ext.External)
	require.NotNil(t, ext.Contact)
	assert.Equal(t, "MIT", ext.Contact.College)

	assert.True(t, decoded.Active)
	assert.True(t, decoded.Ended)
	require.NotNil(t, decoded.Victory)
	assert.Equal(t, model.WinnerTeamOne, decoded.Victory.WinningTeam)
	require.NotNil(t, decoded.Victory.MVP)
	assert.Equal(t, "H1", decoded.Victory.MVP.DisplayName)
}

func TestFromMatchComputesTeamScores(t *testing.T) {
	m := model.NewMatch()
	m.Add(&model.Player{ID: "a", Team: model.TeamOne, Kills: 3})
	m.Add(&model.Player{ID: "b", Team: model.TeamTwo, Kills: 4})
	m.Add(&model.Player{ID: "c", Team: model.TeamTwo, Kills: 1})

	doc := FromMatch(m, time.Time{})
	assert.Equal(t, CurrentVersion, doc.Version)
	assert.Equal(t, 3, doc.Team1Score)
	assert.Equal(t, 5, doc.Team2Score)
	// timestamps are always lists on disk
	assert.NotNil(t, doc.Players[0].KillTimestamps)
}

func TestDecodeListLayoutFromOriginalServer(t *testing.T) {
	data := []byte(`{
		"players": [
			{"id": "RFID001", "teamId": 1, "name": "H1", "kills": 4, "deaths": 2, "killTimestamps": [], "deathTimestamps": []},
			{"id": "RFID005", "teamId": 2, "name": "S1", "kills": 1, "deaths": 0}
		],
		"gameIsActive": false,
		"team1Score": 0,
		"team2Score": 0
	}`)

	m, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, m.Players, 2)
	assert.Equal(t, model.TeamTwo, m.Get("RFID005").Team)
	assert.False(t, m.Ended)
	assert.Nil(t, m.Victory)
}

func TestDecodeMigratesLegacyLayout(t *testing.T) {
	data := []byte(`{
		"zeta_tag": {"team": 2, "name": "Zeta", "kills": 5, "deaths": 1},
		"alpha_tag": {"team": 1, "kills": 2, "deaths": 3},
		"not_a_player": 12
	}`)

	m, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, m.Players, 2)

	// roster follows the order of the stored keys
	assert.Equal(t, model.PlayerID("zeta_tag"), m.Players[0].ID)
	assert.Equal(t, model.PlayerID("alpha_tag"), m.Players[1].ID)

	alpha := m.Get("alpha_tag")
	require.NotNil(t, alpha)
	assert.Equal(t, "alpha_tag", alpha.DisplayName)
	assert.Equal(t, model.TeamOne, alpha.Team)

	zeta := m.Get("zeta_tag")
	require.NotNil(t, zeta)
	assert.Equal(t, "Zeta", zeta.DisplayName)
	assert.Equal(t, model.TeamTwo, zeta.Team)
	assert.Equal(t, 5, zeta.Kills)
	assert.Empty(t, zeta.KillTimestamps)
}

func TestDecodeLegacyKeepsKeyOrderForMVPTieBreak(t *testing.T) {
	data := []byte(`{
		"zed": {"team": 1, "name": "Zed", "kills": 3, "deaths": 0},
		"amy": {"team": 1, "name": "Amy", "kills": 3, "deaths": 0},
		"bob": {"team": 2, "name": "Bob", "kills": 1, "deaths": 2}
	}`)

	m, err := Decode(data)
	require.NoError(t, err)

	lb := m.Leaderboard()
	require.Len(t, lb.Team1, 2)
	assert.Equal(t, model.PlayerID("zed"), lb.Team1[0].ID)
	assert.Equal(t, model.PlayerID("amy"), lb.Team1[1].ID)

	v := m.ComputeVictory(time.Time{})
	require.NotNil(t, v.MVP)
	assert.Equal(t, model.PlayerID("zed"), v.MVP.ID)
}

func TestDecodeLegacySkipsNonObjectValues(t *testing.T) {
	data := []byte(`{
		"a": null,
		"b": [1, 2],
		"c": "text",
		"d": 4,
		"e": true,
		"f": {"team": 2, "name": "F"}
	}`)

	m, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, m.Players, 1)
	assert.Equal(t, model.PlayerID("f"), m.Players[0].ID)
}

func TestDecodeLegacyRepeatedKeyKeepsFirstPosition(t *testing.T) {
	data := []byte(`{
		"a": {"team": 1, "kills": 1},
		"b": {"team": 2},
		"a": {"team": 1, "kills": 7}
	}`)

	m, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, m.Players, 2)
	assert.Equal(t, model.PlayerID("a"), m.Players[0].ID)
	assert.Equal(t, 7, m.Players[0].Kills)
}

func TestDecodeNullPlayersIsEmptyRoster(t *testing.T) {
	data := []byte(`{"players": null, "gameIsActive": false, "team1Score": 0, "team2Score": 0, "ended": true}`)

	m, err := Decode(data)
	require.NoError(t, err)
	assert.Empty(t, m.Players)
	assert.Nil(t, m.Get("players"))
	assert.True(t, m.Ended)
}

func TestDecodeClampsNegativeCounters(t *testing.T) {
	tests := map[string]string{
		"legacy":  `{"a": {"team": 1, "name": "A", "kills": -4, "deaths": -1}}`,
		"current": `{"players": [{"id": "a", "teamId": 1, "name": "A", "kills": -4, "deaths": -1}]}`,
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			m, err := Decode([]byte(data))
			require.NoError(t, err)
			require.Len(t, m.Players, 1)
			assert.Zero(t, m.Players[0].Kills)
			assert.Zero(t, m.Players[0].Deaths)
		})
	}
}

func TestDecodeRejectsNonObjectDocuments(t *testing.T) {
	for _, data := range []string{`[]`, `"players"`, `12`, `{"a": {}} trailing`} {
		_, err := Decode([]byte(data))
		assert.Error(t, err, data)
	}
}

func TestDecodeLegacyInvalidTeamDefaultsToTeamOne(t *testing.T) {
	m, err := Decode([]byte(`{"x": {"team": 7, "name": "X"}}`))
	require.NoError(t, err)
	require.Len(t, m.Players, 1)
	assert.Equal(t, model.TeamOne, m.Players[0].Team)
}
