package engine

import "fmt"

const HandSize = 5

// Hand tracks one draw cycle: the cards dealt, the cards held, and the resulting final hand.
// Final always holds exactly HandSize cards.
type Hand struct {
	Dealt []Card
	Held  []Card
	Final []Card
}

func NewHand(cards []Card) (*Hand, error) {
	if err := ValidateHand(cards); err != nil {
		return nil, err
	}
	return &Hand{
		Dealt: append([]Card(nil), cards...),
		Final: append([]Card(nil), cards...),
	}, nil
}

// ValidateHand checks for exactly five distinct, well-formed cards.
func ValidateHand(cards []Card) error {
	if len(cards) != HandSize {
		return fmt.Errorf("%w: %d cards", ErrBadHand, len(cards))
	}
	seen := make(map[Card]bool, HandSize)
	for _, c := range cards {
		if !c.Valid() {
			return fmt.Errorf("%w: %v", ErrMalformedCard, c)
		}
		if seen[c] {
			return fmt.Errorf("%w: duplicate %s", ErrBadHand, c)
		}
		seen[c] = true
	}
	return nil
}

// Draw removes discards from the dealt cards and returns what is held.
func (h *Hand) Draw(discards []Card) ([]Card, error) {
	if len(discards) > HandSize {
		return nil, fmt.Errorf("%w: %d discards", ErrBadHand, len(discards))
	}
	out := make(map[Card]bool, len(discards))
	for _, c := range discards {
		if out[c] {
			return nil, fmt.Errorf("%w: %s discarded twice", ErrBadHand, c)
		}
		if !contains(h.Dealt, c) {
			return nil, fmt.Errorf("%w: %s not in hand %s", ErrBadHand, c, FormatCards(h.Dealt))
		}
		out[c] = true
	}
	held := make([]Card, 0, HandSize-len(discards))
	for _, c := range h.Dealt {
		if !out[c] {
			held = append(held, c)
		}
	}
	h.Held = held
	return append([]Card(nil), held...), nil
}

// Complete fills the final hand from the held cards plus replacements.
func (h *Hand) Complete(replacements []Card) error {
	final := append(append([]Card(nil), h.Held...), replacements...)
	if err := ValidateHand(final); err != nil {
		return invariantf("final hand %s: %v", FormatCards(final), err)
	}
	h.Final = final
	return nil
}

// NextCycle starts the next draw from the current final hand.
func (h *Hand) NextCycle() {
	h.Dealt = append([]Card(nil), h.Final...)
	h.Held = nil
}

func contains(cs []Card, c Card) bool {
	for _, x := range cs {
		if x == c {
			return true
		}
	}
	return false
}
