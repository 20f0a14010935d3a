package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jason-s-yu/uno/internal/auth"
	"github.com/jason-s-yu/uno/internal/commit"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/store"
)

// tokenCookie is the cookie a browser client may carry its player token in.
const tokenCookie = "uno_token"

// extractCookieToken extracts a named cookie value from "Cookie" header, or returns empty if not found.
func extractCookieToken(cookieHeader, cookieName string) string {
	parts := strings.Split(cookieHeader, cookieName+"=")
	if len(parts) < 2 {
		return ""
	}
	token := parts[1]
	if idx := strings.Index(token, ";"); idx != -1 {
		token = token[:idx]
	}
	return token
}

// requestToken finds a player token in the Authorization header, the token
// query parameter or the uno_token cookie, in that order.
func requestToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	return extractCookieToken(r.Header.Get("Cookie"), tokenCookie)
}

// errorCodes maps rule and protocol errors onto stable codes for clients.
// Order matters: wrapped stale errors must match ErrStaleAction first.
var errorCodes = []struct {
	err    error
	code   string
	status int
}{
	{game.ErrStaleAction, "stale_action", http.StatusConflict},
	{store.ErrGameNotFound, "game_not_found", http.StatusNotFound},
	{commit.ErrGameInProgress, "game_in_progress", http.StatusConflict},
	{auth.ErrInvalidToken, "invalid_token", http.StatusUnauthorized},
	{game.ErrNotYourTurn, "not_your_turn", http.StatusForbidden},
	{game.ErrUnknownPlayer, "unknown_player", http.StatusForbidden},
	{game.ErrGameOver, "game_over", http.StatusGone},
	{game.ErrCardNotInHand, "card_not_in_hand", http.StatusUnprocessableEntity},
	{game.ErrIllegalPlay, "illegal_play", http.StatusUnprocessableEntity},
	{game.ErrMissingColorChoice, "missing_color_choice", http.StatusUnprocessableEntity},
	{game.ErrInvalidColor, "invalid_color", http.StatusUnprocessableEntity},
	{game.ErrInvalidUnoCall, "invalid_uno_call", http.StatusUnprocessableEntity},
	{game.ErrFalseUnoCall, "false_uno_call", http.StatusUnprocessableEntity},
	{game.ErrDeckExhausted, "deck_exhausted", http.StatusUnprocessableEntity},
	{game.ErrMissingTradeTarget, "missing_trade_target", http.StatusUnprocessableEntity},
	{game.ErrChallengeWindowClosed, "challenge_window_closed", http.StatusUnprocessableEntity},
	{game.ErrInvalidTarget, "invalid_target", http.StatusUnprocessableEntity},
	{game.ErrMustPlayDrawnCard, "must_play_drawn_card", http.StatusUnprocessableEntity},
	{game.ErrUnknownAction, "unknown_action", http.StatusBadRequest},
	{game.ErrUnknownVariant, "unknown_variant", http.StatusBadRequest},
	{game.ErrNotEnoughPlayers, "not_enough_players", http.StatusBadRequest},
}

// classify returns the client code and HTTP status for err.
func classify(err error) (string, int) {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.code, e.status
		}
	}
	return "internal", http.StatusInternalServerError
}

// errorBody is the JSON shape of every error response and WebSocket error frame.
type errorBody struct {
	Type      string      `json:"type,omitempty"`
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Retryable bool        `json:"retryable"`
	View      interface{} `json:"view,omitempty"`
}

func newErrorBody(err error) (errorBody, int) {
	code, status := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	return errorBody{Code: code, Message: msg, Retryable: commit.IsRetryable(err)}, status
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	body, status := newErrorBody(err)
	writeJSON(w, status, body)
}
