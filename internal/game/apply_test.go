package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A plays Red-5 on Blue-5: matched by number, color follows the card.
func TestPlayMatchingNumberChangesColor(t *testing.T) {
	players := newPlayers(2)
	a, b := players[0], players[1]
	red5 := num(models.ColorRed, 5)
	s := setupState(t, players,
		[][]models.Card{{red5, num(models.ColorGreen, 2)}, {num(models.ColorRed, 5), num(models.ColorYellow, 1)}},
		num(models.ColorBlue, 5), models.ColorBlue, filler(10), models.DefaultHouseRules())

	next := mustApply(t, s, play(red5), a)
	assert.Equal(t, red5, next.TopDiscard())
	assert.Equal(t, models.ColorRed, next.CurrentColor)
	assert.Equal(t, b, next.CurrentPlayer())
	assert.Equal(t, 1, next.Hands[a].Size())
	require.NotNil(t, next.LastAction)
	assert.Equal(t, a, next.LastAction.PlayerID)
}

// Skip with three players lands on the third seat.
func TestSkipSkipsExactlyOnePlayer(t *testing.T) {
	players := newPlayers(3)
	skip := action(models.KindSkip, models.ColorYellow)
	s := setupState(t, players,
		[][]models.Card{{skip, num(models.ColorRed, 1)}, filler(2), filler(2)},
		action(models.KindSkip, models.ColorYellow), models.ColorYellow, filler(10), models.DefaultHouseRules())

	next := mustApply(t, s, play(skip), players[0])
	assert.Equal(t, players[2], next.CurrentPlayer())
}

func TestStackingAccumulatesAndDrains(t *testing.T) {
	players := newPlayers(3)
	rules := models.DefaultHouseRules()
	rules.Stacking = true

	d1 := action(models.KindDrawTwo, models.ColorRed)
	d2 := action(models.KindDrawTwo, models.ColorBlue)
	d3 := action(models.KindDrawTwo, models.ColorGreen)
	s := setupState(t, players,
		[][]models.Card{{d1, num(models.ColorRed, 1)}, {d2, num(models.ColorRed, 2)}, {d3, num(models.ColorRed, 3)}},
		num(models.ColorRed, 9), models.ColorRed, filler(20), rules)

	s = mustApply(t, s, play(d1), players[0])
	assert.Equal(t, 2, s.PendingDrawCount)
	assert.Equal(t, players[1], s.CurrentPlayer())

	s = mustApply(t, s, play(d2), players[1])
	assert.Equal(t, 4, s.PendingDrawCount)
	assert.Equal(t, players[2], s.CurrentPlayer())

	s = mustApply(t, s, play(d3), players[2])
	assert.Equal(t, 6, s.PendingDrawCount)
	assert.Equal(t, players[0], s.CurrentPlayer())

	before := s.Hands[players[0]].Size()
	s = mustApply(t, s, drawAction, players[0])
	assert.Equal(t, 0, s.PendingDrawCount)
	assert.Empty(t, s.PendingDrawKind)
	assert.Equal(t, before+6, s.Hands[players[0]].Size())
	assert.Equal(t, players[1], s.CurrentPlayer(), "drawing the stack loses the turn")
}

// pending=2 with stacking on: another DrawTwo raises it to 4 and passes the turn.
func TestStackOnPendingDrawTwo(t *testing.T) {
	players := newPlayers(2)
	rules := models.DefaultHouseRules()
	rules.Stacking = true
	d := action(models.KindDrawTwo, models.ColorYellow)
	s := setupState(t, players,
		[][]models.Card{{d, num(models.ColorBlue, 4)}, filler(3)},
		action(models.KindDrawTwo, models.ColorRed), models.ColorRed, filler(10), rules)
	s.PendingDrawCount = 2
	s.PendingDrawKind = models.KindDrawTwo

	next := mustApply(t, s, play(d), players[0])
	assert.Equal(t, 4, next.PendingDrawCount)
	assert.Equal(t, players[1], next.CurrentPlayer())
	assert.Equal(t, models.ColorYellow, next.CurrentColor)
}

func TestPendingChainOnlyAcceptsSameKind(t *testing.T) {
	players := newPlayers(2)
	rules := models.DefaultHouseRules()
	rules.Stacking = true
	wd4 := wild(models.KindWildDrawFour)
	red := num(models.ColorRed, 3)
	s := setupState(t, players,
		[][]models.Card{{wd4, red}, filler(3)},
		action(models.KindDrawTwo, models.ColorRed), models.ColorRed, filler(10), rules)
	s.PendingDrawCount = 2
	s.PendingDrawKind = models.KindDrawTwo

	_, err := Apply(s, playWild(wd4, models.ColorBlue), players[0])
	assert.ErrorIs(t, err, ErrIllegalPlay)
	_, err = Apply(s, play(red), players[0])
	assert.ErrorIs(t, err, ErrIllegalPlay, "a matching color cannot dodge the chain")

	s.HouseRules.Stacking = false
	d := action(models.KindDrawTwo, models.ColorRed)
	s.Hands[players[0]].Add(d)
	s.DrawPile = s.DrawPile[1:]
	s.TotalCards = s.CardCount()
	_, err = Apply(s, play(d), players[0])
	assert.ErrorIs(t, err, ErrIllegalPlay, "without stacking nothing answers a pending draw")
}

func TestDrawTwoWithoutStackingPenalizesNextPlayer(t *testing.T) {
	players := newPlayers(3)
	d := action(models.KindDrawTwo, models.ColorRed)
	s := setupState(t, players,
		[][]models.Card{{d, num(models.ColorRed, 1)}, filler(2), filler(2)},
		num(models.ColorRed, 8), models.ColorRed, filler(10), models.DefaultHouseRules())

	next := mustApply(t, s, play(d), players[0])
	assert.Equal(t, 4, next.Hands[players[1]].Size())
	assert.Equal(t, players[2], next.CurrentPlayer())
	assert.Zero(t, next.PendingDrawCount)
	assert.Equal(t, players[1], next.LastAction.PenalizedID)
}

func TestWildDrawFourWithoutStacking(t *testing.T) {
	players := newPlayers(2)
	wd4 := wild(models.KindWildDrawFour)
	s := setupState(t, players,
		[][]models.Card{{wd4, num(models.ColorRed, 1)}, filler(2)},
		num(models.ColorBlue, 8), models.ColorBlue, filler(10), models.DefaultHouseRules())

	next := mustApply(t, s, playWild(wd4, models.ColorGreen), players[0])
	assert.Equal(t, 6, next.Hands[players[1]].Size())
	assert.Equal(t, players[0], next.CurrentPlayer(), "two players: the victim is skipped back to the actor")
	assert.Equal(t, models.ColorGreen, next.CurrentColor)
}

func TestReverseEqualsSkipWithTwoPlayers(t *testing.T) {
	players := newPlayers(2)
	rev := action(models.KindReverse, models.ColorRed)
	skip := action(models.KindSkip, models.ColorRed)
	s := setupState(t, players,
		[][]models.Card{{rev, skip, num(models.ColorBlue, 1)}, filler(3)},
		num(models.ColorRed, 2), models.ColorRed, filler(10), models.DefaultHouseRules())

	afterReverse := mustApply(t, s, play(rev), players[0])
	afterSkip := mustApply(t, s, play(skip), players[0])
	assert.Equal(t, afterSkip.CurrentPlayerIndex, afterReverse.CurrentPlayerIndex)
	assert.Equal(t, players[0], afterReverse.CurrentPlayer())
	assert.Equal(t, -1, afterReverse.Direction)
}

func TestReverseWithThreePlayers(t *testing.T) {
	players := newPlayers(3)
	rev := action(models.KindReverse, models.ColorRed)
	s := setupState(t, players,
		[][]models.Card{{rev, num(models.ColorBlue, 1)}, filler(2), filler(2)},
		num(models.ColorRed, 2), models.ColorRed, filler(10), models.DefaultHouseRules())

	next := mustApply(t, s, play(rev), players[0])
	assert.Equal(t, -1, next.Direction)
	assert.Equal(t, players[2], next.CurrentPlayer())
}

func TestWildRequiresBaseColor(t *testing.T) {
	players := newPlayers(2)
	w := wild(models.KindWild)
	s := setupState(t, players,
		[][]models.Card{{w, num(models.ColorRed, 1)}, filler(2)},
		num(models.ColorBlue, 8), models.ColorBlue, filler(10), models.DefaultHouseRules())

	_, err := Apply(s, play(w), players[0])
	assert.ErrorIs(t, err, ErrMissingColorChoice)
	_, err = Apply(s, playWild(w, "purple"), players[0])
	assert.ErrorIs(t, err, ErrInvalidColor)

	next := mustApply(t, s, playWild(w, models.ColorYellow), players[0])
	assert.Equal(t, models.ColorYellow, next.CurrentColor)
	assert.Equal(t, players[1], next.CurrentPlayer())
}

func TestRejections(t *testing.T) {
	players := newPlayers(2)
	green := num(models.ColorGreen, 4)
	s := setupState(t, players,
		[][]models.Card{{green, num(models.ColorRed, 1)}, filler(2)},
		num(models.ColorBlue, 8), models.ColorBlue, filler(10), models.DefaultHouseRules())

	_, err := Apply(s, play(green), players[1])
	assert.ErrorIs(t, err, ErrNotYourTurn)

	_, err = Apply(s, play(green), players[0])
	assert.ErrorIs(t, err, ErrIllegalPlay)

	_, err = Apply(s, play(num(models.ColorBlue, 1)), players[0])
	assert.ErrorIs(t, err, ErrCardNotInHand)

	_, err = Apply(s, drawAction, uuid.New())
	assert.ErrorIs(t, err, ErrUnknownPlayer)

	_, err = Apply(s, models.Action{Type: "shuffle"}, players[0])
	assert.ErrorIs(t, err, ErrUnknownAction)

	var ruleErr *RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, models.ActionType("shuffle"), ruleErr.Action)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	players := newPlayers(3)
	rules := models.DefaultHouseRules()
	rules.ZeroRotate = true
	zero := num(models.ColorRed, 0)
	s := setupState(t, players,
		[][]models.Card{{zero, num(models.ColorBlue, 1)}, filler(2), filler(3)},
		num(models.ColorRed, 2), models.ColorRed, filler(10), rules)
	snapshot := s.Clone()

	mustApply(t, s, play(zero), players[0])
	assert.Equal(t, snapshot, s)
}

func TestDrawCardAdvances(t *testing.T) {
	players := newPlayers(2)
	s := setupState(t, players,
		[][]models.Card{filler(2), filler(2)},
		num(models.ColorBlue, 8), models.ColorBlue, []models.Card{num(models.ColorBlue, 3)}, models.DefaultHouseRules())

	next := mustApply(t, s, drawAction, players[0])
	assert.Equal(t, 3, next.Hands[players[0]].Size())
	assert.Equal(t, players[1], next.CurrentPlayer())
	assert.False(t, next.LastAction.MustPlay)
}

func TestDrawRecyclesDiscardPile(t *testing.T) {
	players := newPlayers(2)
	s := setupState(t, players,
		[][]models.Card{filler(2), filler(2)},
		num(models.ColorBlue, 8), models.ColorBlue, nil, models.DefaultHouseRules())
	top := s.TopDiscard()
	s.DiscardPile = append(filler(3), top)
	s.TotalCards = s.CardCount()

	next := mustApply(t, s, drawAction, players[0])
	assert.Equal(t, []models.Card{top}, next.DiscardPile)
	assert.Len(t, next.DrawPile, 2)
	assert.Equal(t, 1, next.Reshuffles)

	drained := next.Clone()
	drained.DrawPile = nil
	drained.TotalCards = drained.CardCount()
	drained.CurrentPlayerIndex = 0
	_, err := Apply(drained, drawAction, players[0])
	assert.ErrorIs(t, err, ErrDeckExhausted)
}

func TestForcePlayFlagsAndWaits(t *testing.T) {
	players := newPlayers(2)
	rules := models.DefaultHouseRules()
	rules.ForcePlay = true
	drawn := num(models.ColorBlue, 3)
	other := num(models.ColorBlue, 6)
	s := setupState(t, players,
		[][]models.Card{{other, num(models.ColorGreen, 2)}, filler(2)},
		num(models.ColorBlue, 8), models.ColorBlue, []models.Card{drawn, num(models.ColorRed, 1)}, rules)

	next := mustApply(t, s, drawAction, players[0])
	assert.True(t, next.LastAction.MustPlay)
	assert.Equal(t, drawn.ID, next.MustPlayCardID)
	assert.Equal(t, players[0], next.CurrentPlayer(), "turn holds until the drawn card is played")
	assert.Equal(t, []uuid.UUID{drawn.ID}, PlayableCards(next, players[0]))

	_, err := Apply(next, drawAction, players[0])
	assert.ErrorIs(t, err, ErrMustPlayDrawnCard)
	_, err = Apply(next, play(other), players[0])
	assert.ErrorIs(t, err, ErrMustPlayDrawnCard)

	after := mustApply(t, next, play(drawn), players[0])
	assert.Equal(t, players[1], after.CurrentPlayer())
	assert.Equal(t, uuid.Nil, after.MustPlayCardID)
}

func TestForcePlayUnplayableDrawAdvances(t *testing.T) {
	players := newPlayers(2)
	rules := models.DefaultHouseRules()
	rules.ForcePlay = true
	s := setupState(t, players,
		[][]models.Card{filler(2), filler(2)},
		num(models.ColorBlue, 8), models.ColorBlue, []models.Card{num(models.ColorRed, 1)}, rules)

	next := mustApply(t, s, drawAction, players[0])
	assert.False(t, next.LastAction.MustPlay)
	assert.Equal(t, players[1], next.CurrentPlayer())
}

func TestSevenTrade(t *testing.T) {
	rules := models.DefaultHouseRules()
	rules.SevenTrade = true

	t.Run("two players trade with the opponent", func(t *testing.T) {
		players := newPlayers(2)
		seven := num(models.ColorRed, 7)
		keep := num(models.ColorBlue, 1)
		opp := filler(4)
		s := setupState(t, players, [][]models.Card{{seven, keep}, opp}, num(models.ColorRed, 2), models.ColorRed, filler(5), rules)

		next := mustApply(t, s, play(seven), players[0])
		assert.ElementsMatch(t, opp, next.Hands[players[0]].Cards)
		assert.ElementsMatch(t, []models.Card{keep}, next.Hands[players[1]].Cards)
		assert.Equal(t, players[1], next.LastAction.TargetID)
		assert.Equal(t, players[1], next.CurrentPlayer())
	})

	t.Run("more players need an explicit target", func(t *testing.T) {
		players := newPlayers(3)
		seven := num(models.ColorRed, 7)
		s := setupState(t, players, [][]models.Card{{seven, num(models.ColorBlue, 1)}, filler(2), filler(5)}, num(models.ColorRed, 2), models.ColorRed, filler(5), rules)

		_, err := Apply(s, play(seven), players[0])
		assert.ErrorIs(t, err, ErrMissingTradeTarget)

		self := play(seven)
		self.TargetPlayerID = players[0]
		_, err = Apply(s, self, players[0])
		assert.ErrorIs(t, err, ErrInvalidTarget)

		target := play(seven)
		target.TargetPlayerID = players[2]
		next := mustApply(t, s, target, players[0])
		assert.Equal(t, 5, next.Hands[players[0]].Size())
		assert.Equal(t, 1, next.Hands[players[2]].Size())
		assert.Equal(t, 2, next.Hands[players[1]].Size())
	})

	t.Run("rule off plays a plain seven", func(t *testing.T) {
		players := newPlayers(2)
		seven := num(models.ColorRed, 7)
		off := models.DefaultHouseRules()
		s := setupState(t, players, [][]models.Card{{seven, num(models.ColorBlue, 1)}, filler(4)}, num(models.ColorRed, 2), models.ColorRed, filler(5), off)
		next := mustApply(t, s, play(seven), players[0])
		assert.Equal(t, 1, next.Hands[players[0]].Size())
	})
}

func TestZeroRotateFollowsDirection(t *testing.T) {
	rules := models.DefaultHouseRules()
	rules.ZeroRotate = true
	players := newPlayers(3)
	zero := num(models.ColorRed, 0)
	aRest := num(models.ColorBlue, 1)
	bHand := filler(2)
	cHand := filler(3)
	s := setupState(t, players, [][]models.Card{{zero, aRest}, bHand, cHand}, num(models.ColorRed, 2), models.ColorRed, filler(5), rules)

	next := mustApply(t, s, play(zero), players[0])
	assert.ElementsMatch(t, []models.Card{aRest}, next.Hands[players[1]].Cards, "A's hand moves to B")
	assert.ElementsMatch(t, bHand, next.Hands[players[2]].Cards, "B's hand moves to C")
	assert.ElementsMatch(t, cHand, next.Hands[players[0]].Cards, "C's hand moves to A")

	s.Direction = -1
	next = mustApply(t, s, play(zero), players[0])
	assert.ElementsMatch(t, []models.Card{aRest}, next.Hands[players[2]].Cards)
	assert.ElementsMatch(t, cHand, next.Hands[players[1]].Cards)
	assert.ElementsMatch(t, bHand, next.Hands[players[0]].Cards)
}

func TestPlayingLastCardEndsGame(t *testing.T) {
	players := newPlayers(3)
	last := wild(models.KindWildDrawFour)
	b := []models.Card{num(models.ColorRed, 7), action(models.KindSkip, models.ColorBlue)}
	c := []models.Card{wild(models.KindWild), num(models.ColorYellow, 3)}
	s := setupState(t, players, [][]models.Card{{last}, b, c}, num(models.ColorRed, 2), models.ColorRed, filler(5), models.DefaultHouseRules())

	next := mustApply(t, s, playWild(last, models.ColorGreen), players[0])
	require.True(t, next.GameOver)
	require.NotNil(t, next.Result)
	assert.Equal(t, players[0], next.Result.WinnerID)
	assert.Equal(t, 7+20+50+3, next.Result.ScoresByPlayer[players[0]])
	assert.Equal(t, 0, next.Result.ScoresByPlayer[players[1]])
	assert.Equal(t, 27, next.Result.HandPoints[players[1]])
	assert.Equal(t, models.ColorGreen, next.CurrentColor)
	assert.Equal(t, 2, next.Hands[players[1]].Size(), "no draw-four penalty after the winning card")
	assert.Equal(t, players[0], next.CurrentPlayer())

	_, err := Apply(next, drawAction, players[1])
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestComputeResultWithSpecialCard(t *testing.T) {
	players := newPlayers(2)
	special := models.Card{ID: uuid.New(), Kind: models.KindSpecial, Points: 99}
	s := setupState(t, players, [][]models.Card{{}, {special, num(models.ColorRed, 4)}}, num(models.ColorRed, 2), models.ColorRed, nil, models.DefaultHouseRules())

	res := ComputeResult(s)
	assert.Equal(t, players[0], res.WinnerID)
	assert.Equal(t, 103, res.ScoresByPlayer[players[0]])
}
