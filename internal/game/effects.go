package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/models"
)

// tradeTarget resolves who a seven is traded with. Two-player games always
// trade with the opponent; larger games must name the target.
func (s *GameState) tradeTarget(actor, requested uuid.UUID) (uuid.UUID, error) {
	if requested == uuid.Nil {
		if len(s.Players) == 2 {
			for _, p := range s.Players {
				if p != actor {
					return p, nil
				}
			}
		}
		return uuid.Nil, ErrMissingTradeTarget
	}
	if requested == actor {
		return uuid.Nil, ErrInvalidTarget
	}
	if _, ok := s.Hands[requested]; !ok {
		return uuid.Nil, ErrInvalidTarget
	}
	return requested, nil
}

func (s *GameState) tradeHands(a, b uuid.UUID) {
	s.Hands[a], s.Hands[b] = s.Hands[b], s.Hands[a]
	s.Hands[a].HasCalledUno = false
	s.Hands[b].HasCalledUno = false
}

// rotateHands passes every hand one seat along the direction of play.
func (s *GameState) rotateHands() {
	n := len(s.Players)
	rotated := make(map[uuid.UUID]*models.Hand, n)
	for i, p := range s.Players {
		to := s.Players[((i+s.Direction)%n+n)%n]
		h := s.Hands[p]
		h.HasCalledUno = false
		rotated[to] = h
	}
	s.Hands = rotated
}
