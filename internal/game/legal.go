package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/models"
)

// IsPlayable reports whether card may be placed on top given the active
// color and any open draw chain.
func IsPlayable(card, top models.Card, currentColor models.Color, pendingDrawCount int, pendingKind models.Kind, rules models.HouseRules) bool {
	if pendingDrawCount > 0 {
		// only the same draw kind continues a chain, and only when stacking is on
		return rules.Stacking && card.Kind == pendingKind
	}
	if card.IsWild() {
		return true
	}
	if card.Color == currentColor {
		return true
	}
	if card.Kind == models.KindNumber {
		return top.Kind == models.KindNumber && top.Number == card.Number
	}
	return card.Kind == top.Kind
}

// PlayableCards returns the IDs of the cards the player could legally play right now.
func PlayableCards(s *GameState, player uuid.UUID) []uuid.UUID {
	hand, ok := s.Hands[player]
	if !ok || s.GameOver || s.CurrentPlayer() != player {
		return nil
	}
	if s.MustPlayCardID != uuid.Nil {
		return []uuid.UUID{s.MustPlayCardID}
	}
	top := s.TopDiscard()
	var out []uuid.UUID
	for _, c := range hand.Cards {
		if IsPlayable(c, top, s.CurrentColor, s.PendingDrawCount, s.PendingDrawKind, s.HouseRules) {
			out = append(out, c.ID)
		}
	}
	return out
}

// CheckTurn rejects actions from unknown players, actions after the game
// ended, and out-of-turn actions other than UNO calls and challenges.
func CheckTurn(s *GameState, actor uuid.UUID, action models.Action) error {
	if s.GameOver {
		return ErrGameOver
	}
	if _, ok := s.Hands[actor]; !ok {
		return ErrUnknownPlayer
	}
	if !action.TurnExempt() && s.CurrentPlayer() != actor {
		return ErrNotYourTurn
	}
	return nil
}
