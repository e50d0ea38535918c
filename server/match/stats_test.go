package match

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"drawbench/server/engine"
)

func TestSeedStreamIsDeterministic(t *testing.T) {
	a, b := NewSeedStream(7), NewSeedStream(7)
	seen := map[uint64]bool{}
	for i := 0; i < 100; i++ {
		x := a.Next()
		assert.Equal(t, x, b.Next())
		assert.False(t, seen[x])
		seen[x] = true
	}
}

func TestMeanStdev(t *testing.T) {
	m, s := MeanStdev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, m, 1e-9)
	assert.InDelta(t, 2.138, s, 1e-3)

	m, s = MeanStdev(nil)
	assert.Zero(t, m)
	assert.Zero(t, s)
}

func TestWilsonCI95(t *testing.T) {
	lo, hi := WilsonCI95(50, 0, 100)
	assert.InDelta(t, 0.404, lo, 1e-3)
	assert.InDelta(t, 0.596, hi, 1e-3)

	lo, hi = WilsonCI95(0, 0, 0)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)
}

func TestBootstrapCI95(t *testing.T) {
	vals := []float64{-2, -1, 0, 1, 2, 3}
	lo, hi := BootstrapCI95(vals, 500, rand.New(rand.NewSource(1)))
	assert.Less(t, lo, 0.5)
	assert.Greater(t, hi, 0.5)
	lo2, hi2 := BootstrapCI95(vals, 500, rand.New(rand.NewSource(1)))
	assert.Equal(t, lo, lo2)
	assert.Equal(t, hi, hi2)
}

func TestEloUpdateHand(t *testing.T) {
	e := NewElo(1500, 24)
	dA, dB := e.UpdateHand(1, 0, 200, engine.BigBlind, true)
	assert.InDelta(t, 12.0, dA, 1e-9)
	assert.InDelta(t, -12.0, dB, 1e-9)

	// a big pot counts up to three times as much
	e = NewElo(1500, 24)
	dA, _ = e.UpdateHand(1, 0, 5000, engine.BigBlind, true)
	assert.InDelta(t, 36.0, dA, 1e-9)

	e = NewElo(1500, 24)
	dA, _ = e.UpdateHand(0.5, 0.5, 400, engine.BigBlind, false)
	assert.Zero(t, dA)
	assert.Equal(t, 1, e.Hands)
}

func TestHandScore(t *testing.T) {
	sa, sb := handScore(engine.Button, true)
	assert.Equal(t, [2]float64{1, 0}, [2]float64{sa, sb})
	sa, sb = handScore(engine.Button, false)
	assert.Equal(t, [2]float64{0, 1}, [2]float64{sa, sb})
	sa, sb = handScore(engine.Blind, false)
	assert.Equal(t, [2]float64{1, 0}, [2]float64{sa, sb})
	sa, sb = handScore(engine.NoWinner, true)
	assert.Equal(t, [2]float64{0.5, 0.5}, [2]float64{sa, sb})
}

func TestActionTally(t *testing.T) {
	var tl ActionTally
	for _, a := range []engine.Action{
		{Kind: engine.PostSmallBlind},
		{Kind: engine.CallSmall},
		{Kind: engine.Check},
		{Kind: engine.BetBig},
		{Kind: engine.RaiseSmall},
		{Kind: engine.Draw, CardsKept: 3},
		{Kind: engine.Fold},
	} {
		tl.add(a)
	}
	assert.Equal(t, 5, tl.Total())
	assert.Equal(t, 1, tl.Draws)
	assert.Equal(t, 2, tl.CardsDrawn)
	assert.InDelta(t, 2.0, tl.AF(), 1e-9)
}
