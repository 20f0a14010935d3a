// internal/game/apply.go
package game

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/models"
)

// Apply computes the state that results from actor performing action on s.
// s is never modified. On rejection the returned state is nil, with one
// exception: a false UNO call returns the penalised state together with an
// error wrapping ErrFalseUnoCall, because the penalty itself must be committed.
func Apply(s *GameState, action models.Action, actor uuid.UUID) (*GameState, error) {
	if err := CheckTurn(s, actor, action); err != nil {
		return nil, reject(action.Type, err)
	}

	next := s.Clone()
	var err error
	switch action.Type {
	case models.ActionPlayCard:
		err = next.playCard(actor, action)
	case models.ActionDrawCard:
		err = next.drawForTurn(actor)
	case models.ActionCallUno:
		err = next.callUno(actor)
	case models.ActionChallengeUno:
		err = next.challengeUno(actor, action.TargetPlayerID)
	default:
		err = ErrUnknownAction
	}

	if err != nil {
		if errors.Is(err, ErrFalseUnoCall) {
			return next, reject(action.Type, err)
		}
		return nil, reject(action.Type, err)
	}
	return next, nil
}

func (s *GameState) playCard(actor uuid.UUID, action models.Action) error {
	if s.MustPlayCardID != uuid.Nil && action.CardID != s.MustPlayCardID {
		return ErrMustPlayDrawnCard
	}

	hand := s.Hands[actor]
	idx := hand.Find(action.CardID)
	if idx < 0 {
		return ErrCardNotInHand
	}
	card := hand.Cards[idx]

	if !IsPlayable(card, s.TopDiscard(), s.CurrentColor, s.PendingDrawCount, s.PendingDrawKind, s.HouseRules) {
		return ErrIllegalPlay
	}

	color := card.Color
	if card.IsWild() {
		if action.ChosenColor == models.ColorNone {
			return ErrMissingColorChoice
		}
		if !action.ChosenColor.IsBase() {
			return ErrInvalidColor
		}
		color = action.ChosenColor
	}

	winning := hand.Size() == 1
	trade := uuid.Nil
	if !winning && s.HouseRules.SevenTrade && card.Kind == models.KindNumber && card.Number == 7 {
		target, err := s.tradeTarget(actor, action.TargetPlayerID)
		if err != nil {
			return err
		}
		trade = target
	}

	hand.Remove(card.ID)
	s.DiscardPile = append(s.DiscardPile, card)
	s.CurrentColor = color
	s.MustPlayCardID = uuid.Nil
	s.LastAction = &LastAction{
		PlayerID:    actor,
		Type:        models.ActionPlayCard,
		Card:        &card,
		ChosenColor: action.ChosenColor,
		TargetID:    trade,
	}

	if winning {
		s.finish()
		return nil
	}
	return s.resolveEffect(actor, card, trade)
}

// resolveEffect applies what the played card does and moves the turn on.
func (s *GameState) resolveEffect(actor uuid.UUID, card models.Card, tradeTarget uuid.UUID) error {
	switch card.Kind {
	case models.KindNumber:
		switch {
		case tradeTarget != uuid.Nil:
			s.tradeHands(actor, tradeTarget)
		case card.Number == 0 && s.HouseRules.ZeroRotate:
			s.rotateHands()
		}
		s.advance(1)

	case models.KindSkip:
		s.advance(2)

	case models.KindReverse:
		s.Direction = -s.Direction
		if len(s.Players) == 2 {
			// with two players a reverse hands the turn straight back, exactly like a skip
			s.advance(2)
		} else {
			s.advance(1)
		}

	case models.KindDrawTwo, models.KindWildDrawFour:
		penalty := card.DrawPenalty()
		if s.HouseRules.Stacking {
			s.PendingDrawCount += penalty
			s.PendingDrawKind = card.Kind
			s.advance(1)
			return nil
		}
		victim := s.Players[s.seat(1)]
		if _, err := s.draw(victim, penalty); err != nil {
			return err
		}
		s.LastAction.PenalizedID = victim
		s.LastAction.Drawn = penalty
		s.advance(2)

	case models.KindWild, models.KindSpecial:
		s.advance(1)
	}
	return nil
}

// drawForTurn resolves a draw_card action: either paying off an open draw
// chain or taking a single card.
func (s *GameState) drawForTurn(actor uuid.UUID) error {
	if s.MustPlayCardID != uuid.Nil {
		return ErrMustPlayDrawnCard
	}

	if s.PendingDrawCount > 0 {
		owed := s.PendingDrawCount
		if _, err := s.draw(actor, owed); err != nil {
			return err
		}
		s.PendingDrawCount = 0
		s.PendingDrawKind = ""
		s.LastAction = &LastAction{PlayerID: actor, Type: models.ActionDrawCard, Drawn: owed, PenalizedID: actor}
		s.advance(1)
		return nil
	}

	drawn, err := s.draw(actor, 1)
	if err != nil {
		return err
	}
	s.LastAction = &LastAction{PlayerID: actor, Type: models.ActionDrawCard, Drawn: 1}

	card := drawn[0]
	if s.HouseRules.ForcePlay && IsPlayable(card, s.TopDiscard(), s.CurrentColor, 0, "", s.HouseRules) {
		s.MustPlayCardID = card.ID
		s.LastAction.MustPlay = true
		return nil
	}
	s.advance(1)
	return nil
}

// finish freezes the state once the last card has left a hand.
func (s *GameState) finish() {
	s.GameOver = true
	s.PendingDrawCount = 0
	s.PendingDrawKind = ""
	s.MustPlayCardID = uuid.Nil
	result := ComputeResult(s)
	s.Result = &result
}
