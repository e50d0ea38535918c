package judge

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"strings"

	"drawbench/server/engine"
)

const (
	DefaultSamples = 48

	// Assumed fold equity when betting into an unopened street, and when raising.
	betFoldEquity   = 0.35
	raiseFoldEquity = 0.25
)

// Oracle estimates 2-7 hand values by Monte Carlo over the remaining draws.
// It is safe for concurrent use; results are deterministic per hand.
type Oracle struct {
	cashier engine.DeuceLowball
	samples int
	draws   *cache[string, drawResult]
}

type drawResult struct {
	discards []engine.Card
	value    float64
}

var _ engine.ValueOracle = (*Oracle)(nil)

func NewOracle(samples int) *Oracle {
	if samples <= 0 {
		samples = DefaultSamples
	}
	return &Oracle{samples: samples, draws: newCache[string, drawResult](1 << 16)}
}

// EstimateHandValue is the expected payout of the hand after drawing optimally.
func (o *Oracle) EstimateHandValue(ctx context.Context, hand []engine.Card, drawsLeft int) (float64, error) {
	_, v, err := o.BestDraw(ctx, hand, drawsLeft)
	return v, err
}

// BestDraw picks the discard pattern with the highest expected payout.
func (o *Oracle) BestDraw(ctx context.Context, hand []engine.Card, drawsLeft int) ([]engine.Card, float64, error) {
	if err := engine.ValidateHand(hand); err != nil {
		return nil, 0, err
	}
	if drawsLeft < 0 || drawsLeft > 3 {
		return nil, 0, fmt.Errorf("%w: %d draws left", engine.ErrBadHand, drawsLeft)
	}
	if drawsLeft == 0 {
		v, err := o.cashier.Payout(hand)
		return nil, v, err
	}

	sorted := canonical(hand)
	key := fmt.Sprintf("%s/%d", engine.FormatCards(sorted), drawsLeft)
	if r, ok := o.draws.Get(key); ok {
		return append([]engine.Card(nil), r.discards...), r.value, nil
	}

	h := fnv.New64a()
	h.Write([]byte(key))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))
	stub := remaining(sorted)

	best := drawResult{value: -1}
	// mask bit i set means sorted[i] is discarded; 0 stands pat.
	for mask := 0; mask < 1<<engine.HandSize; mask++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		var held, discards []engine.Card
		for i, c := range sorted {
			if mask&(1<<i) != 0 {
				discards = append(discards, c)
			} else {
				held = append(held, c)
			}
		}
		v := o.simulate(held, stub, drawsLeft, rng)
		if v > best.value {
			best = drawResult{discards: discards, value: v}
		}
	}
	o.draws.Set(key, best)
	return append([]engine.Card(nil), best.discards...), best.value, nil
}

// simulate deals replacements for held, plays out later draws with a fixed
// rule, and averages the final payout.
func (o *Oracle) simulate(held, stub []engine.Card, drawsLeft int, rng *rand.Rand) float64 {
	pool := make([]engine.Card, len(stub))
	cur := make([]engine.Card, 0, engine.HandSize)
	total := 0.0
	for s := 0; s < o.samples; s++ {
		copy(pool, stub)
		next := 0
		deal := func() engine.Card {
			j := next + rng.Intn(len(pool)-next)
			pool[next], pool[j] = pool[j], pool[next]
			next++
			return pool[next-1]
		}
		cur = append(cur[:0], held...)
		for len(cur) < engine.HandSize {
			cur = append(cur, deal())
		}
		for d := drawsLeft - 1; d > 0; d-- {
			keep := append([]engine.Card(nil), RuleOfThumb(cur)...)
			for len(keep) < engine.HandSize {
				keep = append(keep, deal())
			}
			cur = append(cur[:0], keep...)
		}
		p, err := o.cashier.Payout(cur)
		if err == nil {
			total += p
		}
	}
	return total / float64(o.samples)
}

// RuleOfThumb keeps one card of each rank eight or lower, or stands pat on a
// nine-low or better.
func RuleOfThumb(hand []engine.Card) []engine.Card {
	seen := map[int]bool{}
	pat := true
	for _, c := range hand {
		if seen[c.Rank] || c.Rank > 9 {
			pat = false
		}
		seen[c.Rank] = true
	}
	if pat && !engine.StraightOrFlush(hand) {
		return hand
	}
	seen = map[int]bool{}
	var keep []engine.Card
	for _, c := range hand {
		if c.Rank <= 8 && !seen[c.Rank] {
			keep = append(keep, c)
			seen[c.Rank] = true
		}
	}
	return keep
}

// EstimateActionValues scores each voluntary kind in chips, treating the hand
// value as showdown equity.
func (o *Oracle) EstimateActionValues(ctx context.Context, hand []engine.Card, drawsLeft int, sc engine.SeatContext) (map[engine.ActionKind]float64, error) {
	eq, err := o.EstimateHandValue(ctx, hand, drawsLeft)
	if err != nil {
		return nil, err
	}
	unit := float64(sc.Round.Unit(engine.SmallBet, engine.BigBet))
	P := float64(sc.PotSize)
	out := map[engine.ActionKind]float64{engine.Fold: 0}

	if sc.ToCall > 0 {
		b := float64(sc.ToCall)
		out[engine.CallKind(sc.Round)] = eq*(P+b) - (1.0-eq)*b
		r := b + unit
		out[engine.RaiseKind(sc.Round)] = raiseFoldEquity*P + (1.0-raiseFoldEquity)*(eq*(P+2*r)-(1.0-eq)*r)
		return out, nil
	}
	out[engine.Check] = eq * P
	evBet := betFoldEquity*P + (1.0-betFoldEquity)*(eq*(P+2*unit)-(1.0-eq)*unit)
	if sc.BetsThisRound == 0 {
		out[engine.BetKind(sc.Round)] = evBet
	} else {
		out[engine.RaiseKind(sc.Round)] = evBet
	}
	return out, nil
}

func canonical(hand []engine.Card) []engine.Card {
	out := append([]engine.Card(nil), hand...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].Suit < out[j].Suit
	})
	return out
}

func remaining(hand []engine.Card) []engine.Card {
	out := make([]engine.Card, 0, 52-len(hand))
	for _, c := range engine.FullDeck() {
		in := false
		for _, h := range hand {
			if h == c {
				in = true
				break
			}
		}
		if !in {
			out = append(out, c)
		}
	}
	return out
}

// ParseHand validates an external hand encoding at the oracle boundary.
func ParseHand(s string) ([]engine.Card, error) {
	cards, err := engine.ParseCards(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	if err := engine.ValidateHand(cards); err != nil {
		return nil, err
	}
	return cards, nil
}
