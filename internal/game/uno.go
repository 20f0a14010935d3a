package game

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/models"
)

// ErrChallengeWindowClosed is returned when the challenged player's turn has already started.
var ErrChallengeWindowClosed = fmt.Errorf("%w: challenge window closed", ErrInvalidTarget)

// callUno registers an UNO call. Calling with more than one card costs
// FalseUnoPenalty cards; the turn never moves.
func (s *GameState) callUno(actor uuid.UUID) error {
	hand := s.Hands[actor]
	switch {
	case hand.Size() == 0:
		return ErrInvalidUnoCall
	case hand.Size() == 1:
		hand.HasCalledUno = true
		s.LastAction = &LastAction{PlayerID: actor, Type: models.ActionCallUno}
		return nil
	}

	penalty := s.HouseRules.FalseUnoPenalty
	if _, err := s.draw(actor, penalty); err != nil {
		return err
	}
	s.LastAction = &LastAction{PlayerID: actor, Type: models.ActionCallUno, Drawn: penalty, PenalizedID: actor}
	return ErrFalseUnoCall
}

// challengeUno catches a player holding one card without having called UNO.
// A challenge that does not hold costs the challenger instead.
func (s *GameState) challengeUno(actor, target uuid.UUID) error {
	if target == uuid.Nil || target == actor {
		return ErrInvalidTarget
	}
	targetHand, ok := s.Hands[target]
	if !ok {
		return ErrInvalidTarget
	}
	if s.CurrentPlayer() == target {
		return ErrChallengeWindowClosed
	}

	la := &LastAction{PlayerID: actor, Type: models.ActionChallengeUno, TargetID: target}
	if targetHand.Size() == 1 && !targetHand.HasCalledUno {
		if _, err := s.draw(target, s.HouseRules.ChallengePenalty); err != nil {
			return err
		}
		la.PenalizedID = target
		la.Drawn = s.HouseRules.ChallengePenalty
	} else {
		if _, err := s.draw(actor, s.HouseRules.FailedChallengePenalty); err != nil {
			return err
		}
		la.PenalizedID = actor
		la.Drawn = s.HouseRules.FailedChallengePenalty
	}
	s.LastAction = la
	return nil
}
