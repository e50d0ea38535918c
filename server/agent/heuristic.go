package agent

import (
	"context"
	"errors"
	"math"
	"math/rand"

	"drawbench/server/engine"
)

// Heuristic samples bet/check/fold against the value an average opponent hand
// holds at this point of the hand.
type Heuristic struct {
	rng *rand.Rand
}

func NewHeuristic(rng *rand.Rand) *Heuristic { return &Heuristic{rng: rng} }

// baseline is the value of a typical opponent hand for the round, raised as
// bets go in.
func baseline(r engine.Round, bets int) float64 {
	b := engine.BaselineValue
	switch r {
	case engine.Draw1:
		b += 0.10
	case engine.Draw2:
		b += 0.15
	case engine.Draw3:
		b += 0.20
	}
	if bets >= 1 {
		b += 0.05 * float64(bets)
		b += 0.05 * float64(bets-1)
	}
	return b
}

// Weights is the unnormalised (bet/raise, check/call, fold) preference.
func Weights(value float64, r engine.Round, bets int, button bool) (bet, call, fold float64) {
	bet, call, fold = 2.0, 2.0, 0.5
	if button {
		call = 1.0
	}

	diff := value - baseline(r, bets)
	switch {
	case diff > 0:
		bet += 3.0 / 0.10 * diff
		fold -= 0.5 / 0.10 * diff
	case diff < 0:
		bet += 1.0 / 0.10 * diff
		fold -= 0.5 / 0.10 * diff
	}

	// shift folds to calls as the street gets expensive
	if bets > 1 {
		shrink := 0.5 / 2 * float64(bets-1)
		fold -= shrink
		call += 2 * shrink
	}

	aggro := 0.0
	if bets == 0 {
		aggro += 0.5
		if button && r >= engine.Draw2 {
			aggro += 0.5
		}
	}
	if button && bets < 2 {
		aggro += 0.5
	}
	return math.Max(bet+aggro, aggro), call, math.Max(fold, 0)
}

// Distribution maps the weights onto the legal kinds. CALL takes the bet
// credit when the street is capped, CHECK takes the fold credit.
func Distribution(legal []engine.ActionKind, bet, call, fold float64) []float64 {
	sum := bet + call + fold
	if sum <= 0 {
		sum = 1
	}
	bet, call, fold = bet/sum, call/sum, fold/sum

	canAggress, canFold := false, false
	for _, k := range legal {
		canAggress = canAggress || k.Aggressive()
		canFold = canFold || k == engine.Fold
	}

	probs := make([]float64, len(legal))
	for i, k := range legal {
		switch {
		case k.IsCall():
			probs[i] = call
			if !canAggress {
				probs[i] += bet
			}
		case k.Aggressive():
			probs[i] = bet
		case k == engine.Fold:
			probs[i] = fold
		case k == engine.Check:
			probs[i] = call
			if !canFold {
				probs[i] += fold
			}
		}
	}
	return probs
}

func (h *Heuristic) Decide(_ context.Context, d engine.Decision) (engine.ActionKind, error) {
	if len(d.Legal) == 0 {
		return "", errors.New("no legal actions")
	}
	bet, call, fold := Weights(d.Value, d.Round, d.BetsThisRound, d.HasButton)
	return sample(h.rng, d.Legal, Distribution(d.Legal, bet, call, fold)), nil
}

func sample(rng *rand.Rand, kinds []engine.ActionKind, probs []float64) engine.ActionKind {
	x := rng.Float64()
	acc := 0.0
	for i, p := range probs {
		acc += p
		if x < acc {
			return kinds[i]
		}
	}
	for i := len(probs) - 1; i >= 0; i-- {
		if probs[i] > 0 {
			return kinds[i]
		}
	}
	return kinds[len(kinds)-1]
}
