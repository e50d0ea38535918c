package agent

import (
	"context"
	"errors"
	"math/rand"

	"drawbench/server/engine"
	"drawbench/server/judge"
)

// reChooseFold is how often a randomly drawn FOLD is thrown back.
const reChooseFold = 0.50

type Random struct {
	rng *rand.Rand
}

func NewRandom(rng *rand.Rand) *Random { return &Random{rng: rng} }

func (r *Random) Decide(_ context.Context, d engine.Decision) (engine.ActionKind, error) {
	if len(d.Legal) == 0 {
		return "", errors.New("no legal actions")
	}
	for {
		k := d.Legal[r.rng.Intn(len(d.Legal))]
		if k == engine.Fold && len(d.Legal) > 1 && r.rng.Float64() <= reChooseFold {
			continue
		}
		return k, nil
	}
}

// RandomDrawer throws each card away with even odds.
type RandomDrawer struct {
	rng *rand.Rand
}

func NewRandomDrawer(rng *rand.Rand) *RandomDrawer { return &RandomDrawer{rng: rng} }

func (r *RandomDrawer) Discard(_ context.Context, req engine.DrawRequest) ([]engine.Card, error) {
	var out []engine.Card
	for _, c := range req.Hand {
		if r.rng.Float64() > 0.50 {
			out = append(out, c)
		}
	}
	return out, nil
}

// RuleDrawer keeps distinct cards eight or lower and stands pat on a made nine.
type RuleDrawer struct{}

func (RuleDrawer) Discard(_ context.Context, req engine.DrawRequest) ([]engine.Card, error) {
	return without(req.Hand, judge.RuleOfThumb(req.Hand)), nil
}

func without(hand, keep []engine.Card) []engine.Card {
	var out []engine.Card
	for _, c := range hand {
		kept := false
		for _, k := range keep {
			if k == c {
				kept = true
				break
			}
		}
		if !kept {
			out = append(out, c)
		}
	}
	return out
}
