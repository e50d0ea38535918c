package engine

import (
	"fmt"
	"math/rand"
	"strings"
)

const (
	rankChars = "  23456789TJQKA"
	suitChars = "cdhs"
)

type Card struct {
	Rank int  // 2..14, ace high
	Suit byte // one of c d h s
}

func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return fmt.Sprintf("%c%c", rankChars[c.Rank], c.Suit)
}

func (c Card) Valid() bool {
	return c.Rank >= 2 && c.Rank <= 14 && strings.IndexByte(suitChars, c.Suit) >= 0
}

func (c Card) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d/%q", ErrMalformedCard, c.Rank, c.Suit)
	}
	return []byte(c.String()), nil
}

func (c *Card) UnmarshalText(b []byte) error {
	parsed, err := ParseCard(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCard reads "As", "td", "7H".
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if len(s) != 2 {
		return Card{}, fmt.Errorf("%w: %q", ErrMalformedCard, s)
	}
	r := strings.IndexByte(rankChars[2:], strings.ToUpper(s[:1])[0])
	suit := strings.ToLower(s[1:])[0]
	if r < 0 || strings.IndexByte(suitChars, suit) < 0 {
		return Card{}, fmt.Errorf("%w: %q", ErrMalformedCard, s)
	}
	return Card{Rank: r + 2, Suit: suit}, nil
}

// ParseCards accepts "[As,Kd,7h]", "As Kd 7h" or "AsKd7h".
func ParseCards(s string) ([]Card, error) {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) == 1 && len(fields[0]) > 2 {
		f := fields[0]
		if len(f)%2 != 0 {
			return nil, fmt.Errorf("%w: %q", ErrMalformedCard, s)
		}
		fields = fields[:0]
		for i := 0; i < len(f); i += 2 {
			fields = append(fields, f[i:i+2])
		}
	}
	out := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// FormatCards renders cards as "[As,Kd,7h]".
func FormatCards(cs []Card) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// CardStrings is the JSON-friendly form used by observations and storage.
func CardStrings(cs []Card) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out
}

// FullDeck returns the 52 cards in a fixed order.
func FullDeck() []Card {
	deck := make([]Card, 0, 52)
	for s := 0; s < 4; s++ {
		for rnk := 2; rnk <= 14; rnk++ {
			deck = append(deck, Card{Rank: rnk, Suit: suitChars[s]})
		}
	}
	return deck
}

// Deck deals from the front and collects discards. Discards are never reshuffled.
type Deck struct {
	cards    []Card
	next     int
	discards []Card
}

// NewDeck shuffles a full deck with r.
func NewDeck(r *rand.Rand) *Deck {
	deck := FullDeck()
	for i := len(deck) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return &Deck{cards: deck}
}

// NewStackedDeck deals cards in the given order; used for replays.
func NewStackedDeck(cards []Card) (*Deck, error) {
	seen := make(map[Card]bool, len(cards))
	for _, c := range cards {
		if !c.Valid() {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCard, c)
		}
		if seen[c] {
			return nil, fmt.Errorf("%w: duplicate %s in deck", ErrBadHand, c)
		}
		seen[c] = true
	}
	return &Deck{cards: append([]Card(nil), cards...)}, nil
}

func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 || d.next+n > len(d.cards) {
		return nil, invariantf("deck exhausted: want %d, have %d", n, d.Remaining())
	}
	out := append([]Card(nil), d.cards[d.next:d.next+n]...)
	d.next += n
	return out, nil
}

func (d *Deck) TakeDiscards(cs []Card) {
	d.discards = append(d.discards, cs...)
}

func (d *Deck) Remaining() int { return len(d.cards) - d.next }

func (d *Deck) Discards() []Card { return append([]Card(nil), d.discards...) }
