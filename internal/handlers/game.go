// internal/handlers/game.go
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/auth"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/sirupsen/logrus"
)

const maxPlayers = 10

// CreateGameRequest is the body of POST /games. Either Players or
// PlayerCount must be given; missing player ids are generated.
type CreateGameRequest struct {
	Players     []uuid.UUID            `json:"players,omitempty"`
	PlayerCount int                    `json:"player_count,omitempty"`
	Variant     string                 `json:"variant,omitempty"`
	HouseRules  map[string]interface{} `json:"house_rules,omitempty"`
	Seed        *int64                 `json:"seed,omitempty"`
}

// SeatToken hands each seat the token it acts with.
type SeatToken struct {
	PlayerID uuid.UUID `json:"player_id"`
	Token    string    `json:"token"`
}

type CreateGameResponse struct {
	GameID      uuid.UUID         `json:"game_id"`
	TurnVersion int64             `json:"turn_version"`
	Variant     string            `json:"variant"`
	HouseRules  models.HouseRules `json:"house_rules"`
	Seats       []SeatToken       `json:"seats"`
}

func (s *GameServer) handleListVariants(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"variants": game.VariantNames()})
}

func (s *GameServer) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	players := req.Players
	if len(players) == 0 {
		n := req.PlayerCount
		if n == 0 {
			n = 2
		}
		if n < 2 || n > maxPlayers {
			http.Error(w, fmt.Sprintf("player_count must be between 2 and %d", maxPlayers), http.StatusBadRequest)
			return
		}
		for i := 0; i < n; i++ {
			players = append(players, uuid.New())
		}
	}
	if len(players) > maxPlayers {
		http.Error(w, fmt.Sprintf("at most %d players", maxPlayers), http.StatusBadRequest)
		return
	}

	rules, err := models.ParseRules(req.HouseRules, models.DefaultHouseRules())
	if err != nil {
		http.Error(w, "invalid house_rules: "+err.Error(), http.StatusBadRequest)
		return
	}

	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}

	st, err := s.Committer.StartGame(r.Context(), players, req.Variant, rules, seed)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := CreateGameResponse{
		GameID:      st.ID,
		TurnVersion: st.TurnVersion,
		Variant:     st.Variant,
		HouseRules:  st.HouseRules,
	}
	for _, p := range st.Players {
		tok, err := auth.IssuePlayerToken(st.ID, p)
		if err != nil {
			s.Logger.WithError(err).WithField("game_id", st.ID).Error("failed to issue player token")
			writeError(w, err)
			return
		}
		resp.Seats = append(resp.Seats, SeatToken{PlayerID: p, Token: tok})
	}
	writeJSON(w, http.StatusCreated, resp)
}

// gameID reads the {gameID} path parameter.
func gameID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "gameID"))
}

// authorize resolves the request's token to a player of gameID. A missing
// token yields uuid.Nil with no error so reads can fall back to a spectator view.
func authorize(r *http.Request, gid uuid.UUID) (uuid.UUID, error) {
	tok := requestToken(r)
	if tok == "" {
		return uuid.Nil, nil
	}
	tokGame, player, err := auth.ParsePlayerToken(tok)
	if err != nil {
		return uuid.Nil, err
	}
	if tokGame != gid {
		return uuid.Nil, fmt.Errorf("%w: token is for another game", auth.ErrInvalidToken)
	}
	return player, nil
}

func (s *GameServer) handleGetGame(w http.ResponseWriter, r *http.Request) {
	gid, err := gameID(r)
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}
	viewer, err := authorize(r, gid)
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := s.Committer.View(r.Context(), gid, viewer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *GameServer) handleSubmitAction(w http.ResponseWriter, r *http.Request) {
	gid, err := gameID(r)
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}
	player, err := authorize(r, gid)
	if err != nil {
		writeError(w, err)
		return
	}
	if player == uuid.Nil {
		writeError(w, auth.ErrInvalidToken)
		return
	}

	var action models.Action
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		http.Error(w, "invalid action body", http.StatusBadRequest)
		return
	}

	next, err := s.Committer.SubmitAction(r.Context(), gid, player, action)
	if err != nil {
		s.Logger.WithFields(logrus.Fields{
			"game_id":   gid,
			"player_id": player,
			"action":    action.Type,
		}).WithError(err).Debug("action refused")

		body, status := newErrorBody(err)
		if next != nil {
			// committed rejection: the caller still needs the new state
			body.View = game.ProjectFor(next, player)
		}
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, game.ProjectFor(next, player))
}

func (s *GameServer) handleGetResult(w http.ResponseWriter, r *http.Request) {
	gid, err := gameID(r)
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}
	res, err := s.Committer.Result(r.Context(), gid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
