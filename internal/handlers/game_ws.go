// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/middleware"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// wsSubprotocol is the only subprotocol the game socket speaks.
const wsSubprotocol = "uno"

const wsWriteTimeout = 5 * time.Second

// GameMessage is an incoming WebSocket frame. Action frames carry the same
// fields as POST /games/{id}/actions.
type GameMessage struct {
	Type string `json:"type"`
	models.Action
	ActionType models.ActionType `json:"action"`
}

// stateMessage is pushed to a player after every commit.
type stateMessage struct {
	Type string         `json:"type"`
	View game.PlayerView `json:"view"`
}

// GameWSHandler upgrades the connection for one seat. The player's redacted
// view is pushed after every commit; frames read from the client are
// submitted as actions.
func (s *GameServer) GameWSHandler(w http.ResponseWriter, r *http.Request) {
	gid, err := gameID(r)
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}
	player, err := authorize(r, gid)
	if err != nil || player == uuid.Nil {
		http.Error(w, "invalid or missing player token", http.StatusUnauthorized)
		return
	}

	st, err := s.Committer.Load(r.Context(), gid)
	if err != nil {
		writeError(w, err)
		return
	}
	if st.GameOver {
		http.Error(w, "game has already ended", http.StatusGone)
		return
	}
	if st.PlayerIndex(player) < 0 {
		http.Error(w, "you are not a player in this game", http.StatusForbidden)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{wsSubprotocol},
		OriginPatterns: s.AllowedOrigins,
	})
	if err != nil {
		s.Logger.WithError(err).WithField("game_id", gid).Warn("websocket accept error")
		return
	}
	defer c.Close(websocket.StatusInternalError, "internal server error during handler exit")

	if c.Subprotocol() != wsSubprotocol {
		c.Close(BadSubprotocolError, "client must use the 'uno' subprotocol")
		return
	}

	middleware.LogWebSocketConnect(s.Logger, r.RemoteAddr, gid, player)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	views, err := s.Committer.Watch(ctx, gid, player)
	if err != nil {
		c.Close(InvalidGameIDError, "game not found")
		return
	}
	go s.pushViews(ctx, c, views, gid, player)

	limiter := rate.NewLimiter(s.ActionRate, s.ActionBurst)
	err = s.readGameMessages(ctx, c, limiter, gid, player)
	middleware.LogWebSocketDisconnect(s.Logger, r.RemoteAddr, gid, player, err)

	c.Close(websocket.StatusNormalClosure, "")
}

// pushViews forwards every view from the committer to the client.
func (s *GameServer) pushViews(ctx context.Context, c *websocket.Conn, views <-chan game.PlayerView, gid, player uuid.UUID) {
	for view := range views {
		if err := sendWsMessage(ctx, c, stateMessage{Type: "state", View: view}); err != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"game_id": gid, "player_id": player}).
				Debug("stopping state push")
			return
		}
	}
}

// readGameMessages reads frames until the connection closes. Actions are
// throttled by limiter and refusals are answered with an error frame. It
// returns the error that ended the loop, or nil on a normal close.
func (s *GameServer) readGameMessages(ctx context.Context, c *websocket.Conn, limiter *rate.Limiter, gid, player uuid.UUID) error {
	log := s.Logger.WithFields(logrus.Fields{"game_id": gid, "player_id": player})
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg GameMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sendWsMessage(ctx, c, errorBody{Type: "error", Code: "invalid_json", Message: "invalid JSON format"})
			continue
		}

		switch msg.Type {
		case "ping":
			sendWsMessage(ctx, c, map[string]string{"type": "pong"})

		case "action":
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
			action := msg.Action
			action.Type = msg.ActionType
			log.WithField("action", action.Type).Debug("ws action received")

			_, err := s.Committer.SubmitAction(ctx, gid, player, action)
			if err == nil {
				continue
			}
			body, _ := newErrorBody(err)
			body.Type = "error"
			sendWsMessage(ctx, c, body)

		default:
			sendWsMessage(ctx, c, errorBody{Type: "error", Code: "unknown_message", Message: "unknown message type: " + msg.Type})
		}
	}
}

// sendWsMessage marshals a message and writes it with a timeout.
func sendWsMessage(ctx context.Context, c *websocket.Conn, message interface{}) error {
	msgBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return c.Write(writeCtx, websocket.MessageText, msgBytes)
}
