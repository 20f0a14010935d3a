// internal/models/card.go
package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Color is the color of a card, or the color a wild card resolved to.
type Color string

const (
	ColorNone   Color = ""
	ColorRed    Color = "red"
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
)

// BaseColors lists the four playable colors in deck construction order.
var BaseColors = []Color{ColorRed, ColorBlue, ColorGreen, ColorYellow}

// IsBase reports whether c is one of the four playable colors.
func (c Color) IsBase() bool {
	switch c {
	case ColorRed, ColorBlue, ColorGreen, ColorYellow:
		return true
	}
	return false
}

// ParseColor accepts any casing of a base color name.
func ParseColor(s string) (Color, error) {
	c := Color(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsBase() {
		return ColorNone, fmt.Errorf("invalid color %q", s)
	}
	return c, nil
}

// Kind identifies what a card does when played.
type Kind string

const (
	KindNumber       Kind = "number"
	KindSkip         Kind = "skip"
	KindReverse      Kind = "reverse"
	KindDrawTwo      Kind = "draw_two"
	KindWild         Kind = "wild"
	KindWildDrawFour Kind = "wild_draw_four"
	KindSpecial      Kind = "special" // ultra-rare variant card, plays like a Wild
)

// Card is a single physical card. Cards are never mutated once dealt;
// moving a card between piles copies the value.
type Card struct {
	ID     uuid.UUID `json:"id"`
	Color  Color     `json:"color,omitempty"`
	Kind   Kind      `json:"kind"`
	Number int       `json:"number,omitempty"` // 0..9, only meaningful for KindNumber
	Points int       `json:"points,omitempty"` // only set for KindSpecial
}

// IsWild reports whether the card carries no color of its own and needs a
// chosen color when played.
func (c Card) IsWild() bool {
	return c.Kind == KindWild || c.Kind == KindWildDrawFour || c.Kind == KindSpecial
}

// IsAction reports whether the card is a colored action card.
func (c Card) IsAction() bool {
	return c.Kind == KindSkip || c.Kind == KindReverse || c.Kind == KindDrawTwo
}

// DrawPenalty is the number of cards the next player owes when this card is played.
func (c Card) DrawPenalty() int {
	switch c.Kind {
	case KindDrawTwo:
		return 2
	case KindWildDrawFour:
		return 4
	}
	return 0
}

// Value is the card's worth when left in a losing hand.
func (c Card) Value() int {
	switch c.Kind {
	case KindNumber:
		return c.Number
	case KindSkip, KindReverse, KindDrawTwo:
		return 20
	case KindWild, KindWildDrawFour:
		return 50
	case KindSpecial:
		return c.Points
	}
	return 0
}

func (c Card) String() string {
	switch {
	case c.Kind == KindNumber:
		return fmt.Sprintf("%s-%d", c.Color, c.Number)
	case c.IsWild():
		return string(c.Kind)
	default:
		return fmt.Sprintf("%s-%s", c.Color, c.Kind)
	}
}
