package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/stretchr/testify/require"
)

func num(color models.Color, n int) models.Card {
	return models.Card{ID: uuid.New(), Kind: models.KindNumber, Color: color, Number: n}
}

func action(kind models.Kind, color models.Color) models.Card {
	return models.Card{ID: uuid.New(), Kind: kind, Color: color}
}

func wild(kind models.Kind) models.Card {
	return models.Card{ID: uuid.New(), Kind: kind}
}

// filler returns n number cards that match nothing the tests play on purpose.
func filler(n int) []models.Card {
	out := make([]models.Card, n)
	for i := range out {
		out[i] = num(models.ColorGreen, 1+i%9)
	}
	return out
}

func newPlayers(n int) []uuid.UUID {
	out := make([]uuid.UUID, n)
	for i := range out {
		out[i] = uuid.New()
	}
	return out
}

// setupState hand-builds a state with exact hands, an active card and a
// draw pile. Player 0 is to act, direction is clockwise.
func setupState(t *testing.T, players []uuid.UUID, hands [][]models.Card, top models.Card, color models.Color, draw []models.Card, rules models.HouseRules) *GameState {
	t.Helper()
	require.Equal(t, len(players), len(hands), "one hand per player")

	s := &GameState{
		ID:           uuid.New(),
		Players:      players,
		Direction:    1,
		CurrentColor: color,
		DrawPile:     append([]models.Card(nil), draw...),
		DiscardPile:  []models.Card{top},
		Hands:        make(map[uuid.UUID]*models.Hand, len(players)),
		TurnVersion:  1,
		HouseRules:   rules,
		Variant:      "base",
		Seed:         42,
	}
	for i, p := range players {
		s.Hands[p] = &models.Hand{Cards: append([]models.Card(nil), hands[i]...)}
	}
	s.TotalCards = s.CardCount()
	require.NoError(t, s.Validate())
	return s
}

func mustApply(t *testing.T, s *GameState, a models.Action, actor uuid.UUID) *GameState {
	t.Helper()
	next, err := Apply(s, a, actor)
	require.NoError(t, err)
	require.NoError(t, next.Validate())
	return next
}

func play(c models.Card) models.Action {
	return models.Action{Type: models.ActionPlayCard, CardID: c.ID}
}

func playWild(c models.Card, color models.Color) models.Action {
	return models.Action{Type: models.ActionPlayCard, CardID: c.ID, ChosenColor: color}
}

var drawAction = models.Action{Type: models.ActionDrawCard}
