package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/blazeboard/internal/api/request"
	"github.com/mcoot/blazeboard/internal/api/response"
	"github.com/mcoot/blazeboard/internal/model"
)

// maxBodyBytes caps request bodies; every payload is a handful of fields
const maxBodyBytes = 64 << 10

// MatchStore is the subset of the match store the handlers drive
type MatchStore interface {
	Register(ctx context.Context, id model.PlayerID, displayName string, team model.Team) (*model.Player, error)
	RegisterExternal(ctx context.Context, reg model.ExternalRegistration) (*model.Player, error)
	RecordKill(ctx context.Context, id model.PlayerID) (*model.Player, error)
	RecordDeath(ctx context.Context, id model.PlayerID) (*model.Player, error)
	Leaderboard(ctx context.Context) model.Leaderboard
	EndMatch(ctx context.Context) (*model.VictorySummary, error)
	ResetMatch(ctx context.Context) error
	RemovePlayer(ctx context.Context, id model.PlayerID) error
	ClearTeam(ctx context.Context, team model.Team) error
	Status(ctx context.Context) model.MatchStatus
	VictorySummary(ctx context.Context) (*model.VictorySummary, error)
	Registry(ctx context.Context) map[model.PlayerID]model.RegistryEntry
	Player(ctx context.Context, id model.PlayerID) (*model.Player, error)
	Candidates(ctx context.Context) []*model.Player
}

// MatchHandler handles the scoreboard endpoints
type MatchHandler struct {
	store MatchStore
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(store MatchStore) *MatchHandler {
	return &MatchHandler{store: store}
}

// Register handles POST /api/register
func (h *MatchHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	id, name := req.PlayerID(), req.Display()
	if id == "" || name == "" || req.Team == "" {
		WriteError(w, NewInvalidRequestError("Missing data: rfid, name and team are required"))
		return
	}
	team, err := request.ParseTeam(req.Team)
	if err != nil {
		WriteError(w, err)
		return
	}

	p, err := h.store.Register(r.Context(), id, name, team)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OK(fmt.Sprintf("%s registered to team %d", p.DisplayName, int(p.Team))))
}

// RegisterExternal handles POST /api/register_external
func (h *MatchHandler) RegisterExternal(w http.ResponseWriter, r *http.Request) {
	var req request.ExternalRegisterRequest
	if !decode(w, r, &req) {
		return
	}

	team, err := request.ParseTeam(req.Team)
	if err != nil {
		WriteError(w, err)
		return
	}

	p, err := h.store.RegisterExternal(r.Context(), model.ExternalRegistration{
		DisplayName: req.Name,
		Team:        team,
		Contact: model.Contact{
			Email:   req.Email,
			Mobile:  string(req.Mobile),
			College: req.College,
		},
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.ExternalRegistered{
		Success: true,
		RFID:    string(p.ID),
		Message: fmt.Sprintf("%s registered to %s", p.DisplayName, p.Team.Label()),
	})
}

// Kill handles POST /api/kill
func (h *MatchHandler) Kill(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, h.store.RecordKill)
}

// Death handles POST /api/death
func (h *MatchHandler) Death(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, h.store.RecordDeath)
}

func (h *MatchHandler) record(w http.ResponseWriter, r *http.Request, fn func(context.Context, model.PlayerID) (*model.Player, error)) {
	id, ok := playerRef(w, r)
	if !ok {
		return
	}
	if _, err := fn(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.OK(""))
}

// Leaderboard handles GET /api/players
func (h *MatchHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(h.store.Leaderboard(r.Context())))
}

// Player handles GET /api/players/{id}
func (h *MatchHandler) Player(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Player(r.Context(), model.PlayerID(mux.Vars(r)["id"]))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerDetailFromModel(p))
}

// EndMatch handles POST /api/end_match
func (h *MatchHandler) EndMatch(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.EndMatch(r.Context()); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.OK("Match ended"))
}

// Status handles GET /api/match_status
func (h *MatchHandler) Status(w http.ResponseWriter, r *http.Request) {
	st := h.store.Status(r.Context())
	response.JSON(w, http.StatusOK, response.MatchStatus{Ended: st.Ended, Active: st.Active})
}

// Victory handles GET /api/victory_data
func (h *MatchHandler) Victory(w http.ResponseWriter, r *http.Request) {
	v, err := h.store.VictorySummary(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.VictoryFromModel(v))
}

// Reset handles POST /api/reset
func (h *MatchHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ResetMatch(r.Context()); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.OK("Match reset"))
}

// ClearTeam handles POST /api/clear_team
func (h *MatchHandler) ClearTeam(w http.ResponseWriter, r *http.Request) {
	var req request.ClearTeamRequest
	if !decode(w, r, &req) {
		return
	}
	team, err := request.ParseTeam(req.Team)
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := h.store.ClearTeam(r.Context(), team); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.OK(""))
}

// RemovePlayer handles POST /api/remove_player
func (h *MatchHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := playerRef(w, r)
	if !ok {
		return
	}
	if err := h.store.RemovePlayer(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.OK(""))
}

// Registry handles GET /api/registry
func (h *MatchHandler) Registry(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.RegistryFromModel(h.store.Registry(r.Context())))
}

// Candidates handles GET /api/registered_candidates
func (h *MatchHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.CandidatesFromModel(h.store.Candidates(r.Context())))
}

// decode reads a JSON body into dst, writing a 400 on failure
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return false
	}
	return true
}

// playerRef decodes a {rfid|id} body and requires a non-empty id
func playerRef(w http.ResponseWriter, r *http.Request) (model.PlayerID, bool) {
	var ref request.PlayerRef
	if !decode(w, r, &ref) {
		return "", false
	}
	id := ref.PlayerID()
	if id == "" {
		WriteError(w, NewInvalidRequestError("rfid is required"))
		return "", false
	}
	return id, true
}
