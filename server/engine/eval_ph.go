package engine

import (
	"fmt"
	"math/bits"
	"sort"
	"strings"
	"sync"

	poker "github.com/paulhankin/poker"
)

// Cashier ranks final hands.
type Cashier interface {
	// Payout is a value in [0,1] that increases with hand strength.
	Payout(hand []Card) (float64, error)
	// Showdown returns the index of the winning hand, or ErrUnresolvedTie.
	Showdown(hands ...[]Card) (int, error)
}

// DeuceLowball ranks hands under 2-7 rules: the lowest hand wins, aces are
// always high, and straights and flushes count against the hand.
type DeuceLowball struct{}

var _ Cashier = DeuceLowball{}

// Convert our engine.Card -> library card.
func toPH(c Card) poker.Card {
	var s poker.Suit
	switch c.Suit {
	case 'c':
		s = poker.Club
	case 'd':
		s = poker.Diamond
	case 'h':
		s = poker.Heart
	default:
		s = poker.Spade
	}
	// Our ranks: 2..14 (Ace=14). Library: 1..13 (Ace=1).
	r := poker.Rank(c.Rank)
	if c.Rank == 14 {
		r = poker.Rank(1)
	}
	card, _ := poker.MakeCard(s, r)
	return card
}

const wheelMask = 1<<14 | 1<<5 | 1<<4 | 1<<3 | 1<<2

// lowKey orders hands for 2-7: smaller is better. The library scores high
// hands (bigger is better) and reads A-5-4-3-2 as a straight, so the wheel is
// re-scored as just below A-6-4-3-2 of the same suits.
func lowKey(cards *[5]Card) int32 {
	mask := 0
	for _, c := range cards {
		mask |= 1 << c.Rank
	}
	var five [5]poker.Card
	for i, c := range cards {
		if mask == wheelMask && c.Rank == 5 {
			c.Rank = 6
		}
		five[i] = toPH(c)
	}
	key := 2 * int32(poker.Eval5(&five))
	if mask == wheelMask {
		key--
	}
	return key
}

func handKey(hand []Card) (int32, error) {
	if err := ValidateHand(hand); err != nil {
		return 0, err
	}
	var five [5]Card
	copy(five[:], hand)
	return lowKey(&five), nil
}

// Showdown returns the index of the single lowest hand.
func (DeuceLowball) Showdown(hands ...[]Card) (int, error) {
	if len(hands) == 0 {
		return 0, fmt.Errorf("%w: no hands at showdown", ErrBadHand)
	}
	best, bestKey, tied := -1, int32(0), false
	for i, h := range hands {
		k, err := handKey(h)
		if err != nil {
			return 0, fmt.Errorf("showdown hand %d: %w", i, err)
		}
		switch {
		case best < 0 || k < bestKey:
			best, bestKey, tied = i, k, false
		case k == bestKey:
			tied = true
		}
	}
	if tied {
		return 0, ErrUnresolvedTie
	}
	return best, nil
}

// Payout is the share of all five-card hands this hand beats, ties counted half.
func (DeuceLowball) Payout(hand []Card) (float64, error) {
	k, err := handKey(hand)
	if err != nil {
		return 0, err
	}
	t := loadLowTable()
	i := sort.Search(len(t.keys), func(i int) bool { return t.keys[i] >= k })
	if i == len(t.keys) || t.keys[i] != k {
		return 0, invariantf("key %d missing from payout table", k)
	}
	worse := t.total - t.cum[i]
	return (float64(worse) + 0.5*float64(t.counts[i])) / float64(t.total), nil
}

// Compare returns <0 when a beats b, >0 when b beats a, 0 on a tie.
func (DeuceLowball) Compare(a, b []Card) (int, error) {
	ka, err := handKey(a)
	if err != nil {
		return 0, err
	}
	kb, err := handKey(b)
	if err != nil {
		return 0, err
	}
	switch {
	case ka < kb:
		return -1, nil
	case ka > kb:
		return 1, nil
	}
	return 0, nil
}

// lowTable holds every distinct key with its hand count, sorted best first.
// cum[i] counts hands with key <= keys[i].
type lowTable struct {
	keys   []int32
	counts []int64
	cum    []int64
	total  int64
}

var (
	lowOnce sync.Once
	lowTab  *lowTable
)

func loadLowTable() *lowTable {
	lowOnce.Do(func() { lowTab = buildLowTable() })
	return lowTab
}

func buildLowTable() *lowTable {
	deck := FullDeck()
	counts := make(map[int32]int64, 8192)
	var five [5]Card
	n := len(deck)
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			for c := b + 1; c < n; c++ {
				for d := c + 1; d < n; d++ {
					for e := d + 1; e < n; e++ {
						five = [5]Card{deck[a], deck[b], deck[c], deck[d], deck[e]}
						counts[lowKey(&five)]++
					}
				}
			}
		}
	}
	t := &lowTable{keys: make([]int32, 0, len(counts))}
	for k := range counts {
		t.keys = append(t.keys, k)
	}
	sort.Slice(t.keys, func(i, j int) bool { return t.keys[i] < t.keys[j] })
	t.counts = make([]int64, len(t.keys))
	t.cum = make([]int64, len(t.keys))
	for i, k := range t.keys {
		t.counts[i] = counts[k]
		t.total += counts[k]
		t.cum[i] = t.total
	}
	return t
}

// StraightOrFlush reports whether a hand is made by a straight or a flush.
// The ace only plays high, so A-5-4-3-2 is not a straight.
func StraightOrFlush(hand []Card) bool {
	if len(hand) != HandSize {
		return false
	}
	mask := 0
	flush := true
	lo, hi := 15, 0
	for _, c := range hand {
		mask |= 1 << c.Rank
		flush = flush && c.Suit == hand[0].Suit
		lo = min(lo, c.Rank)
		hi = max(hi, c.Rank)
	}
	return flush || (bits.OnesCount(uint(mask)) == HandSize && hi-lo == 4)
}

// Describe renders a hand the way lowball players read it, e.g. "7-5-4-3-2".
// Made hands carry the library's description.
func Describe(hand []Card) string {
	if err := ValidateHand(hand); err != nil {
		return FormatCards(hand)
	}
	ranks := make([]int, len(hand))
	mask := 0
	flush := true
	for i, c := range hand {
		ranks[i] = c.Rank
		mask |= 1 << c.Rank
		flush = flush && c.Suit == hand[0].Suit
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))
	parts := make([]string, len(ranks))
	for i, r := range ranks {
		parts[i] = string(rankChars[r])
	}
	low := strings.Join(parts, "-")

	paired := bits.OnesCount(uint(mask)) < HandSize
	straight := !paired && ranks[0]-ranks[4] == 4
	switch {
	case mask == wheelMask && flush:
		return low + " flush"
	case !paired && !straight && !flush:
		return low
	}
	pcs := make([]poker.Card, len(hand))
	for i, c := range hand {
		pcs[i] = toPH(c)
	}
	desc, err := poker.Describe(pcs)
	if err != nil {
		return low
	}
	return low + " (" + desc + ")"
}
