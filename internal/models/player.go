package models

import "github.com/google/uuid"

// Hand is the multiset of cards a player holds plus their UNO-call status.
type Hand struct {
	Cards []Card `json:"cards"`

	// HasCalledUno is only ever true while the hand holds exactly one card.
	HasCalledUno bool `json:"hasCalledUno"`
}

// Size returns the number of cards in the hand.
func (h *Hand) Size() int {
	return len(h.Cards)
}

// Find returns the index of the card with the given ID, or -1.
func (h *Hand) Find(cardID uuid.UUID) int {
	for i, c := range h.Cards {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}

// Add appends cards and clears a stale UNO call.
func (h *Hand) Add(cards ...Card) {
	h.Cards = append(h.Cards, cards...)
	h.settleUno()
}

// Remove takes the card with the given ID out of the hand.
func (h *Hand) Remove(cardID uuid.UUID) (Card, bool) {
	idx := h.Find(cardID)
	if idx < 0 {
		return Card{}, false
	}
	c := h.Cards[idx]
	h.Cards = append(h.Cards[:idx:idx], h.Cards[idx+1:]...)
	h.settleUno()
	return c, true
}

// Clone returns a deep copy of the hand.
func (h *Hand) Clone() *Hand {
	out := &Hand{HasCalledUno: h.HasCalledUno, Cards: make([]Card, len(h.Cards))}
	copy(out.Cards, h.Cards)
	return out
}

// Points sums the scoring value of every card in the hand.
func (h *Hand) Points() int {
	sum := 0
	for _, c := range h.Cards {
		sum += c.Value()
	}
	return sum
}

func (h *Hand) settleUno() {
	if len(h.Cards) != 1 {
		h.HasCalledUno = false
	}
}
