package models

import "github.com/google/uuid"

// ActionType names one of the moves a player can submit.
type ActionType string

const (
	ActionPlayCard     ActionType = "play_card"
	ActionDrawCard     ActionType = "draw_card"
	ActionCallUno      ActionType = "call_uno"
	ActionChallengeUno ActionType = "challenge_uno"
)

// Action captures a player's in-game move.
type Action struct {
	Type ActionType `json:"type"`

	// CardID is the card to play (play_card).
	CardID uuid.UUID `json:"card_id,omitempty"`

	// ChosenColor is required when playing a wild-colored card.
	ChosenColor Color `json:"chosen_color,omitempty"`

	// TargetPlayerID is the hand to trade with on a seven (seven-trade)
	// or the player being challenged (challenge_uno).
	TargetPlayerID uuid.UUID `json:"target_player_id,omitempty"`

	// ExpectedVersion, when nonzero, is the turn version the client acted on.
	ExpectedVersion int64 `json:"expected_version,omitempty"`
}

// TurnExempt reports whether the action may be submitted outside the actor's turn.
// Challenges are exempt, and so are UNO calls: a player who plays down to one
// card has passed the turn by the time the call arrives.
func (a Action) TurnExempt() bool {
	return a.Type == ActionChallengeUno || a.Type == ActionCallUno
}
