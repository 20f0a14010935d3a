package game

import (
	"errors"
	"fmt"

	"github.com/jason-s-yu/uno/internal/models"
)

// Rejections returned by Apply and the commit protocol. None of them is fatal;
// each one means the submitted action was not accepted.
var (
	ErrNotYourTurn        = errors.New("not your turn")
	ErrCardNotInHand      = errors.New("card not in hand")
	ErrIllegalPlay        = errors.New("illegal play")
	ErrMissingColorChoice = errors.New("wild card played without a chosen color")
	ErrInvalidColor       = errors.New("chosen color is not a base color")
	ErrInvalidUnoCall     = errors.New("cannot call uno with an empty hand")
	ErrFalseUnoCall       = errors.New("false uno call")
	ErrDeckExhausted      = errors.New("draw and discard piles are exhausted")
	ErrStaleAction        = errors.New("stale action")

	ErrGameOver           = errors.New("game is over")
	ErrUnknownPlayer      = errors.New("unknown player")
	ErrUnknownAction      = errors.New("unknown action")
	ErrMissingTradeTarget = errors.New("seven-trade needs a target player")
	ErrInvalidTarget      = errors.New("invalid target player")
	ErrMustPlayDrawnCard  = errors.New("the drawn card must be played")
	ErrUnknownVariant     = errors.New("unknown game variant")
	ErrNotEnoughPlayers   = errors.New("at least two players are required")
)

// RuleError ties a rejection to the action that caused it.
type RuleError struct {
	Action models.ActionType
	Err    error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s: %v", e.Action, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

func reject(action models.ActionType, err error) error {
	return &RuleError{Action: action, Err: err}
}
