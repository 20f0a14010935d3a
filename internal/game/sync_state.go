// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/models"
)

// ObfPlayerState is what anyone may know about a seat: never the cards,
// except in the viewer's own entry.
type ObfPlayerState struct {
	PlayerID      uuid.UUID     `json:"player_id"`
	HandSize      int           `json:"hand_size"`
	HasCalledUno  bool          `json:"hasCalledUno"`
	IsCurrentTurn bool          `json:"isCurrentTurn"`
	Hand          []models.Card `json:"hand,omitempty"` // only for the viewer
}

// PlayerView is the redacted projection of a GameState for one audience.
type PlayerView struct {
	GameID           uuid.UUID         `json:"game_id"`
	TurnVersion      int64             `json:"turn_version"`
	Viewer           uuid.UUID         `json:"viewer,omitempty"`
	CurrentPlayerID  uuid.UUID         `json:"currentPlayerId"`
	Direction        int               `json:"direction"`
	CurrentColor     models.Color      `json:"currentColor"`
	PendingDrawCount int               `json:"pendingDrawCount"`
	DrawPileSize     int               `json:"drawPileSize"`
	DiscardSize      int               `json:"discardSize"`
	DiscardTop       models.Card       `json:"discardTop"`
	Players          []ObfPlayerState  `json:"players"`
	LastAction       *LastAction       `json:"lastAction,omitempty"`
	HouseRules       models.HouseRules `json:"houseRules"`
	Variant          string            `json:"variant"`
	MustPlayCardID   uuid.UUID         `json:"mustPlayCardId,omitempty"`
	Playable         []uuid.UUID       `json:"playable,omitempty"`
	GameOver         bool              `json:"gameOver"`
	Result           *GameResult       `json:"result,omitempty"`
}

// ProjectFor builds the view of s that viewer is allowed to see. Only the
// viewer's own hand is included; uuid.Nil yields a spectator view with no hands.
func ProjectFor(s *GameState, viewer uuid.UUID) PlayerView {
	v := PlayerView{
		GameID:           s.ID,
		TurnVersion:      s.TurnVersion,
		Viewer:           viewer,
		CurrentPlayerID:  s.CurrentPlayer(),
		Direction:        s.Direction,
		CurrentColor:     s.CurrentColor,
		PendingDrawCount: s.PendingDrawCount,
		DrawPileSize:     len(s.DrawPile),
		DiscardSize:      len(s.DiscardPile),
		DiscardTop:       s.TopDiscard(),
		HouseRules:       s.HouseRules,
		Variant:          s.Variant,
		GameOver:         s.GameOver,
		Players:          make([]ObfPlayerState, 0, len(s.Players)),
	}
	if s.LastAction != nil {
		la := *s.LastAction
		// a drawn card stays private; the discard already shows played cards
		if la.Type != models.ActionPlayCard {
			la.Card = nil
		}
		v.LastAction = &la
	}
	if s.Result != nil {
		r := s.Result.clone()
		v.Result = &r
	}

	for i, p := range s.Players {
		h := s.Hands[p]
		ps := ObfPlayerState{
			PlayerID:      p,
			HandSize:      h.Size(),
			HasCalledUno:  h.HasCalledUno,
			IsCurrentTurn: i == s.CurrentPlayerIndex,
		}
		if viewer != uuid.Nil && p == viewer {
			ps.Hand = append([]models.Card(nil), h.Cards...)
		}
		v.Players = append(v.Players, ps)
	}

	if viewer != uuid.Nil && viewer == s.CurrentPlayer() {
		v.MustPlayCardID = s.MustPlayCardID
		v.Playable = PlayableCards(s, viewer)
	}
	return v
}
