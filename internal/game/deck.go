// internal/game/deck.go
package game

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/models"
)

// CardSpec describes Count copies of one card face appended by a variant.
// A zero Color on a colored kind means "one set per base color".
type CardSpec struct {
	Kind   models.Kind  `json:"kind"`
	Color  models.Color `json:"color,omitempty"`
	Number int          `json:"number,omitempty"`
	Count  int          `json:"count"`
}

// Variant is the deck configuration for a game mode. Variants only ever add
// cards on top of the standard 108-card deck.
type Variant struct {
	Name   string     `json:"name"`
	Extras []CardSpec `json:"extras,omitempty"`

	// SpecialChance is the probability that the ultra-rare Special card is
	// shuffled into a freshly built deck.
	SpecialChance float64 `json:"specialChance"`

	// SpecialPoints is what the Special card scores when left in a hand.
	SpecialPoints int `json:"specialPoints"`
}

// StandardDeckSize is the card count of the base deck.
const StandardDeckSize = 108

// DefaultSpecialPoints is the score of the Special card unless a variant overrides it.
const DefaultSpecialPoints = 99

var variants = map[string]Variant{
	"base": {
		Name:          "base",
		SpecialPoints: DefaultSpecialPoints,
	},
	"wild": {
		Name: "wild",
		Extras: []CardSpec{
			{Kind: models.KindWild, Count: 4},
			{Kind: models.KindWildDrawFour, Count: 2},
		},
		SpecialChance: 0.01,
		SpecialPoints: DefaultSpecialPoints,
	},
	"extreme": {
		Name: "extreme",
		Extras: []CardSpec{
			{Kind: models.KindSkip, Count: 1},
			{Kind: models.KindDrawTwo, Count: 1},
			{Kind: models.KindWildDrawFour, Count: 2},
		},
		SpecialChance: 0.02,
		SpecialPoints: DefaultSpecialPoints,
	},
	"chaos": {
		Name: "chaos",
		Extras: []CardSpec{
			{Kind: models.KindSkip, Count: 1},
			{Kind: models.KindReverse, Count: 1},
			{Kind: models.KindDrawTwo, Count: 1},
			{Kind: models.KindWild, Count: 4},
			{Kind: models.KindWildDrawFour, Count: 4},
		},
		SpecialChance: 0.1,
		SpecialPoints: DefaultSpecialPoints,
	},
}

// LookupVariant returns the named variant. An empty name selects "base".
func LookupVariant(name string) (Variant, error) {
	if name == "" {
		name = "base"
	}
	v, ok := variants[name]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
	}
	return v, nil
}

// VariantNames lists the registered variants in sorted order.
func VariantNames() []string {
	names := make([]string, 0, len(variants))
	for n := range variants {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// WithSpecialChance returns a copy of v using p as the Special card probability.
func (v Variant) WithSpecialChance(p float64) Variant {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	v.SpecialChance = p
	return v
}

// BuildDeck constructs the full, unshuffled card set for a variant. Card IDs
// and the Special card roll come from rng, so the same seed always yields
// the same deck.
func BuildDeck(variant Variant, rng *rand.Rand) []models.Card {
	deck := make([]models.Card, 0, StandardDeckSize+len(variant.Extras)*4+1)
	add := func(kind models.Kind, color models.Color, number int) {
		deck = append(deck, models.Card{ID: newCardID(rng), Kind: kind, Color: color, Number: number})
	}

	for _, color := range models.BaseColors {
		add(models.KindNumber, color, 0)
		for n := 1; n <= 9; n++ {
			add(models.KindNumber, color, n)
			add(models.KindNumber, color, n)
		}
		for _, kind := range []models.Kind{models.KindSkip, models.KindReverse, models.KindDrawTwo} {
			add(kind, color, 0)
			add(kind, color, 0)
		}
	}
	for i := 0; i < 4; i++ {
		add(models.KindWild, models.ColorNone, 0)
		add(models.KindWildDrawFour, models.ColorNone, 0)
	}

	for _, extra := range variant.Extras {
		for i := 0; i < extra.Count; i++ {
			switch {
			case extra.Kind == models.KindWild || extra.Kind == models.KindWildDrawFour:
				add(extra.Kind, models.ColorNone, 0)
			case extra.Color != models.ColorNone:
				add(extra.Kind, extra.Color, extra.Number)
			default:
				for _, color := range models.BaseColors {
					add(extra.Kind, color, extra.Number)
				}
			}
		}
	}

	if variant.SpecialChance > 0 && rng.Float64() < variant.SpecialChance {
		points := variant.SpecialPoints
		if points == 0 {
			points = DefaultSpecialPoints
		}
		deck = append(deck, models.Card{ID: newCardID(rng), Kind: models.KindSpecial, Points: points})
	}
	return deck
}

// Shuffle returns a Fisher-Yates shuffled copy of cards.
func Shuffle(cards []models.Card, rng *rand.Rand) []models.Card {
	out := make([]models.Card, len(cards))
	copy(out, cards)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// RecycleDiscardIntoDraw keeps the active discard and shuffles the rest of the
// discard pile into a new draw pile. It mutates and returns s.
func RecycleDiscardIntoDraw(s *GameState) (*GameState, error) {
	if len(s.DiscardPile) <= 1 {
		return s, ErrDeckExhausted
	}
	top := s.DiscardPile[len(s.DiscardPile)-1]
	rest := s.DiscardPile[:len(s.DiscardPile)-1]

	s.Reshuffles++
	rng := rand.New(rand.NewSource(s.Seed + int64(s.Reshuffles)))
	s.DrawPile = append(s.DrawPile, Shuffle(rest, rng)...)
	s.DiscardPile = []models.Card{top}
	return s, nil
}

func newCardID(rng *rand.Rand) uuid.UUID {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		// unreachable with math/rand; keep ids unique regardless
		return uuid.New()
	}
	return id
}
