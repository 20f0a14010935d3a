package game

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/stretchr/testify/require"
)

// pickAction chooses a legal-looking move for the current player, with the
// occasional UNO call or challenge from someone else.
func pickAction(s *GameState, rng *rand.Rand) (models.Action, uuid.UUID) {
	if rng.Intn(10) == 0 {
		actor := s.Players[rng.Intn(len(s.Players))]
		target := s.Players[rng.Intn(len(s.Players))]
		if rng.Intn(2) == 0 {
			return models.Action{Type: models.ActionCallUno}, actor
		}
		return models.Action{Type: models.ActionChallengeUno, TargetPlayerID: target}, actor
	}

	actor := s.CurrentPlayer()
	playable := PlayableCards(s, actor)
	if len(playable) == 0 {
		return models.Action{Type: models.ActionDrawCard}, actor
	}
	a := models.Action{
		Type:           models.ActionPlayCard,
		CardID:         playable[rng.Intn(len(playable))],
		ChosenColor:    models.BaseColors[rng.Intn(4)],
		TargetPlayerID: s.Players[s.seat(1)],
	}
	return a, actor
}

func TestRandomGamesPreserveInvariants(t *testing.T) {
	rules := models.HouseRules{
		Stacking:               true,
		ForcePlay:              true,
		SevenTrade:             true,
		ZeroRotate:             true,
		FalseUnoPenalty:        2,
		ChallengePenalty:       2,
		FailedChallengePenalty: 1,
		HandSize:               7,
	}

	for seed := int64(1); seed <= 40; seed++ {
		variant, _ := LookupVariant(VariantNames()[seed%4])
		players := newPlayers(2 + int(seed%5))
		s, err := NewGame(uuid.New(), players, variant.WithSpecialChance(0.5), rules, seed)
		require.NoError(t, err)
		rng := rand.New(rand.NewSource(seed))

		for step := 0; step < 3000 && !s.GameOver; step++ {
			a, actor := pickAction(s, rng)
			next, err := Apply(s, a, actor)
			switch {
			case err == nil:
			case errors.Is(err, ErrFalseUnoCall):
				require.NotNil(t, next)
			case errors.Is(err, ErrDeckExhausted):
				// every card is in someone's hand; nothing left to exercise
				step = 3000
				continue
			default:
				// out-of-turn probes and bad targets are expected rejections
				require.Nil(t, next)
				continue
			}
			require.NoError(t, next.Validate(), "seed %d step %d", seed, step)
			require.Equal(t, next.TotalCards, next.CardCount())
			s = next
		}
	}
}
