// internal/game/state.go
package game

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/models"
)

// LastAction records the most recently accepted action so clients can animate it.
type LastAction struct {
	PlayerID    uuid.UUID         `json:"player_id"`
	Type        models.ActionType `json:"type"`
	Card        *models.Card      `json:"card,omitempty"`
	ChosenColor models.Color      `json:"chosen_color,omitempty"`
	TargetID    uuid.UUID         `json:"target_id,omitempty"`
	Drawn       int               `json:"drawn,omitempty"`

	// PenalizedID is the player who drew penalty cards, if any.
	PenalizedID uuid.UUID `json:"penalized_id,omitempty"`

	// MustPlay is set when force play left the actor holding a playable drawn card.
	MustPlay bool `json:"must_play,omitempty"`
}

// GameState is the single source of truth for one game. It is only ever
// changed by Apply, which works on a clone, so a *GameState read from the
// store can be shared freely.
type GameState struct {
	ID      uuid.UUID   `json:"id"`
	Players []uuid.UUID `json:"players"`

	CurrentPlayerIndex int          `json:"current_player_index"`
	Direction          int          `json:"direction"`
	CurrentColor       models.Color `json:"current_color"`

	// PendingDrawCount is nonzero only while a stacked draw chain is open.
	PendingDrawCount int         `json:"pending_draw_count"`
	PendingDrawKind  models.Kind `json:"pending_draw_kind,omitempty"`

	// DrawPile[0] is the next card drawn; the last DiscardPile element is the active card.
	DrawPile    []models.Card                `json:"draw_pile"`
	DiscardPile []models.Card                `json:"discard_pile"`
	Hands       map[uuid.UUID]*models.Hand `json:"hands"`

	TurnVersion int64       `json:"turn_version"`
	LastAction  *LastAction `json:"last_action,omitempty"`

	HouseRules models.HouseRules `json:"house_rules"`
	Variant    string            `json:"variant"`
	TotalCards int               `json:"total_cards"`

	// Seed and Reshuffles derive the randomness for discard recycling, keeping Apply deterministic.
	Seed       int64 `json:"seed"`
	Reshuffles int   `json:"reshuffles"`

	// MustPlayCardID is the drawn card the current player is obliged to play (force play).
	MustPlayCardID uuid.UUID `json:"must_play_card_id,omitempty"`

	GameOver bool        `json:"game_over"`
	Result   *GameResult `json:"result,omitempty"`
}

// NewGame shuffles a fresh deck for the variant, deals a hand to every
// player and flips the first discard. Wild-colored cards are never left as
// the first discard; they go to the bottom of the draw pile and the next
// card is flipped instead.
func NewGame(id uuid.UUID, players []uuid.UUID, variant Variant, rules models.HouseRules, seed int64) (*GameState, error) {
	if len(players) < 2 {
		return nil, ErrNotEnoughPlayers
	}
	seen := make(map[uuid.UUID]bool, len(players))
	for _, p := range players {
		if p == uuid.Nil || seen[p] {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTarget, p)
		}
		seen[p] = true
	}
	if rules.HandSize <= 0 {
		rules.HandSize = models.DefaultHouseRules().HandSize
	}

	rng := rand.New(rand.NewSource(seed))
	deck := Shuffle(BuildDeck(variant, rng), rng)
	if len(players)*rules.HandSize+1 > len(deck) {
		return nil, ErrDeckExhausted
	}

	s := &GameState{
		ID:         id,
		Players:    append([]uuid.UUID(nil), players...),
		Direction:  1,
		Hands:      make(map[uuid.UUID]*models.Hand, len(players)),
		HouseRules: rules,
		Variant:    variant.Name,
		TotalCards: len(deck),
		Seed:       seed,
	}

	for _, p := range players {
		hand := &models.Hand{Cards: make([]models.Card, rules.HandSize)}
		copy(hand.Cards, deck[:rules.HandSize])
		deck = deck[rules.HandSize:]
		s.Hands[p] = hand
	}

	for flips := 0; flips < len(deck); flips++ {
		top := deck[0]
		deck = deck[1:]
		if top.IsWild() {
			deck = append(deck, top)
			continue
		}
		s.DiscardPile = []models.Card{top}
		s.CurrentColor = top.Color
		break
	}
	if len(s.DiscardPile) == 0 {
		return nil, ErrDeckExhausted
	}
	s.DrawPile = deck
	return s, nil
}

// Clone returns a deep copy of the state.
func (s *GameState) Clone() *GameState {
	out := *s
	out.Players = append([]uuid.UUID(nil), s.Players...)
	out.DrawPile = append([]models.Card(nil), s.DrawPile...)
	out.DiscardPile = append([]models.Card(nil), s.DiscardPile...)
	out.Hands = make(map[uuid.UUID]*models.Hand, len(s.Hands))
	for id, h := range s.Hands {
		out.Hands[id] = h.Clone()
	}
	if s.LastAction != nil {
		la := *s.LastAction
		if la.Card != nil {
			c := *la.Card
			la.Card = &c
		}
		out.LastAction = &la
	}
	if s.Result != nil {
		r := s.Result.clone()
		out.Result = &r
	}
	return &out
}

// CurrentPlayer returns the ID of the player whose turn it is.
func (s *GameState) CurrentPlayer() uuid.UUID {
	return s.Players[s.CurrentPlayerIndex]
}

// PlayerIndex returns the seat of the player, or -1.
func (s *GameState) PlayerIndex(id uuid.UUID) int {
	for i, p := range s.Players {
		if p == id {
			return i
		}
	}
	return -1
}

// TopDiscard returns the active card.
func (s *GameState) TopDiscard() models.Card {
	return s.DiscardPile[len(s.DiscardPile)-1]
}

// CardCount counts every card across the draw pile, discard pile and hands.
func (s *GameState) CardCount() int {
	n := len(s.DrawPile) + len(s.DiscardPile)
	for _, h := range s.Hands {
		n += h.Size()
	}
	return n
}

// Validate checks the structural invariants of the state.
func (s *GameState) Validate() error {
	if len(s.Players) < 2 {
		return ErrNotEnoughPlayers
	}
	if s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
		return fmt.Errorf("current player index %d out of range", s.CurrentPlayerIndex)
	}
	if s.Direction != 1 && s.Direction != -1 {
		return fmt.Errorf("invalid direction %d", s.Direction)
	}
	if !s.CurrentColor.IsBase() {
		return fmt.Errorf("current color %q is not a base color", s.CurrentColor)
	}
	if s.PendingDrawCount < 0 {
		return fmt.Errorf("negative pending draw count %d", s.PendingDrawCount)
	}
	if s.PendingDrawCount > 0 && s.PendingDrawKind == "" {
		return fmt.Errorf("pending draw count %d without an open chain", s.PendingDrawCount)
	}
	if len(s.DiscardPile) == 0 {
		return fmt.Errorf("empty discard pile")
	}
	if len(s.Hands) != len(s.Players) {
		return fmt.Errorf("%d hands for %d players", len(s.Hands), len(s.Players))
	}

	ids := make(map[uuid.UUID]bool, s.TotalCards)
	check := func(cards []models.Card) error {
		for _, c := range cards {
			if ids[c.ID] {
				return fmt.Errorf("duplicate card %s", c.ID)
			}
			ids[c.ID] = true
		}
		return nil
	}
	if err := check(s.DrawPile); err != nil {
		return err
	}
	if err := check(s.DiscardPile); err != nil {
		return err
	}
	for _, p := range s.Players {
		h, ok := s.Hands[p]
		if !ok {
			return fmt.Errorf("%w: no hand for %s", ErrUnknownPlayer, p)
		}
		if h.HasCalledUno && h.Size() != 1 {
			return fmt.Errorf("player %s called uno holding %d cards", p, h.Size())
		}
		if err := check(h.Cards); err != nil {
			return err
		}
	}
	if len(ids) != s.TotalCards {
		return fmt.Errorf("card conservation violated: %d cards, expected %d", len(ids), s.TotalCards)
	}
	return nil
}

// seat returns the index steps seats away in the current direction.
func (s *GameState) seat(steps int) int {
	n := len(s.Players)
	return ((s.CurrentPlayerIndex+s.Direction*steps)%n + n) % n
}

// advance moves the turn; any force-play obligation ends with the turn.
func (s *GameState) advance(steps int) {
	s.CurrentPlayerIndex = s.seat(steps)
	s.MustPlayCardID = uuid.Nil
}

// draw moves n cards from the draw pile into the player's hand, recycling
// the discard pile when the draw pile runs dry.
func (s *GameState) draw(player uuid.UUID, n int) ([]models.Card, error) {
	hand := s.Hands[player]
	drawn := make([]models.Card, 0, n)
	for i := 0; i < n; i++ {
		if len(s.DrawPile) == 0 {
			if _, err := RecycleDiscardIntoDraw(s); err != nil {
				return nil, err
			}
		}
		c := s.DrawPile[0]
		s.DrawPile = s.DrawPile[1:]
		drawn = append(drawn, c)
	}
	hand.Add(drawn...)
	return drawn, nil
}
