package agent

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drawbench/server/engine"
	"drawbench/server/judge"
)

func cards(t *testing.T, s string) []engine.Card {
	t.Helper()
	cs, err := engine.ParseCards(s)
	require.NoError(t, err)
	return cs
}

func TestBaseline(t *testing.T) {
	assert.InDelta(t, 0.30, baseline(engine.PreDraw, 0), 1e-9)
	assert.InDelta(t, 0.40, baseline(engine.Draw1, 0), 1e-9)
	assert.InDelta(t, 0.45, baseline(engine.Draw2, 0), 1e-9)
	assert.InDelta(t, 0.50, baseline(engine.Draw3, 0), 1e-9)
	assert.InDelta(t, 0.35, baseline(engine.PreDraw, 1), 1e-9)
	assert.InDelta(t, 0.45, baseline(engine.PreDraw, 2), 1e-9)
	assert.InDelta(t, 0.65, baseline(engine.Draw3, 2), 1e-9)
}

func TestWeights(t *testing.T) {
	// at baseline: only the aggression floor moves
	bet, call, fold := Weights(0.30, engine.PreDraw, 0, false)
	assert.InDelta(t, 2.5, bet, 1e-9)
	assert.InDelta(t, 2.0, call, 1e-9)
	assert.InDelta(t, 0.5, fold, 1e-9)

	bet, call, fold = Weights(0.40, engine.Draw1, 0, true)
	assert.InDelta(t, 3.0, bet, 1e-9)
	assert.InDelta(t, 1.0, call, 1e-9)
	assert.InDelta(t, 0.5, fold, 1e-9)

	// far behind facing one bet: no raising, folding dominant
	bet, call, fold = Weights(0.05, engine.Draw3, 1, false)
	assert.Zero(t, bet)
	assert.InDelta(t, 2.0, call, 1e-9)
	assert.InDelta(t, 3.0, fold, 1e-9)

	// capped pressure moves folds into calls
	_, call, fold = Weights(0.55, engine.PreDraw, 3, false)
	assert.InDelta(t, 3.0, call, 1e-9)
	assert.InDelta(t, 0.0, fold, 1e-9)
}

func TestDistributionCoversEveryLegalSet(t *testing.T) {
	for _, r := range []engine.Round{engine.PreDraw, engine.Draw1, engine.Draw2, engine.Draw3} {
		unit := r.Unit(engine.SmallBet, engine.BigBet)
		for on := 0; on <= engine.BetCap*unit; on += unit {
			for off := on; off <= engine.BetCap*unit; off += unit {
				legal, err := engine.LegalActions(r, on, off, engine.SmallBet, engine.BigBet, engine.BetCap)
				require.NoError(t, err)
				if len(legal) == 0 {
					continue
				}
				for _, v := range []float64{0, 0.3, 0.7, 1} {
					bet, call, fold := Weights(v, r, off/unit, on == 0)
					probs := Distribution(legal, bet, call, fold)
					sum := 0.0
					for _, p := range probs {
						assert.GreaterOrEqual(t, p, 0.0)
						sum += p
					}
					assert.InDelta(t, 1.0, sum, 1e-9, "%s on=%d off=%d legal=%v", r, on, off, legal)
				}
			}
		}
	}
}

func TestHeuristicBetsTheNuts(t *testing.T) {
	h := NewHeuristic(rand.New(rand.NewSource(7)))
	d := engine.Decision{
		Legal: []engine.ActionKind{engine.Check, engine.BetSmall},
		Round: engine.Draw1, Value: 0.99,
	}
	bets := 0
	for i := 0; i < 1000; i++ {
		k, err := h.Decide(context.Background(), d)
		require.NoError(t, err)
		require.Contains(t, d.Legal, k)
		if k == engine.BetSmall {
			bets++
		}
	}
	assert.Greater(t, bets, 800)
}

func TestHeuristicNeverRaisesTrash(t *testing.T) {
	h := NewHeuristic(rand.New(rand.NewSource(3)))
	d := engine.Decision{
		Legal:         []engine.ActionKind{engine.Fold, engine.CallBig, engine.RaiseBig},
		Round:         engine.Draw3,
		BetsThisRound: 1,
		Value:         0.05,
	}
	folds := 0
	for i := 0; i < 500; i++ {
		k, err := h.Decide(context.Background(), d)
		require.NoError(t, err)
		assert.NotEqual(t, engine.RaiseBig, k)
		if k == engine.Fold {
			folds++
		}
	}
	assert.Greater(t, folds, 200)
}

func TestRandomReChoosesFolds(t *testing.T) {
	r := NewRandom(rand.New(rand.NewSource(11)))
	d := engine.Decision{Legal: []engine.ActionKind{engine.Fold, engine.CallSmall, engine.RaiseSmall}}
	folds := 0
	const n = 4000
	for i := 0; i < n; i++ {
		k, err := r.Decide(context.Background(), d)
		require.NoError(t, err)
		require.Contains(t, d.Legal, k)
		if k == engine.Fold {
			folds++
		}
	}
	// 1/3 drawn, half thrown back: one in five
	assert.InDelta(t, 0.20, float64(folds)/n, 0.04)

	_, err := r.Decide(context.Background(), engine.Decision{})
	assert.Error(t, err)
}

func TestDrawers(t *testing.T) {
	hand := cards(t, "Kd 7c 4s Qd 2h")
	req := engine.DrawRequest{Hand: hand, DrawsLeft: 2}

	got, err := RuleDrawer{}.Discard(context.Background(), req)
	require.NoError(t, err)
	assert.ElementsMatch(t, cards(t, "Kd Qd"), got)

	rd := NewRandomDrawer(rand.New(rand.NewSource(5)))
	for i := 0; i < 50; i++ {
		got, err := rd.Discard(context.Background(), req)
		require.NoError(t, err)
		assert.Subset(t, hand, got)
	}

	od := NewOracleDrawer(judge.NewOracle(8))
	got, err = od.Discard(context.Background(), engine.DrawRequest{Hand: cards(t, "7h 5d 4c 3s 2h"), DrawsLeft: 1})
	require.NoError(t, err)
	assert.Empty(t, got)
}

type fixedOracle map[engine.ActionKind]float64

func (f fixedOracle) EstimateHandValue(context.Context, []engine.Card, int) (float64, error) {
	return 0.5, nil
}

func (f fixedOracle) EstimateActionValues(context.Context, []engine.Card, int, engine.SeatContext) (map[engine.ActionKind]float64, error) {
	return f, nil
}

func TestModelPicksBestLegalValue(t *testing.T) {
	m := NewModel(fixedOracle{engine.Fold: 0, engine.CallBig: 40, engine.RaiseBig: 25, engine.BetBig: 900})
	k, err := m.Decide(context.Background(), engine.Decision{
		Legal: []engine.ActionKind{engine.Fold, engine.CallBig, engine.RaiseBig},
		Round: engine.Draw2,
	})
	require.NoError(t, err)
	assert.Equal(t, engine.CallBig, k)

	m = NewModel(fixedOracle{engine.Fold: 0, engine.CallBig: -60, engine.RaiseBig: -10})
	k, err = m.Decide(context.Background(), engine.Decision{
		Legal: []engine.ActionKind{engine.Fold, engine.CallBig, engine.RaiseBig},
	})
	require.NoError(t, err)
	assert.Equal(t, engine.Fold, k)
}

func TestParseFactory(t *testing.T) {
	f, err := ParseFactory("heuristic", Deps{})
	require.NoError(t, err)
	p := f(1)
	assert.Equal(t, "heuristic", p.Name())

	f, err = ParseFactory("random", Deps{})
	require.NoError(t, err)
	assert.Equal(t, "random", f(2).Name())

	_, err = ParseFactory("model", Deps{})
	assert.Error(t, err)

	f, err = ParseFactory("model", Deps{Oracle: judge.NewOracle(8)})
	require.NoError(t, err)
	assert.Equal(t, "model", f(3).Name())

	_, err = ParseFactory("gto-solver", Deps{})
	assert.Error(t, err)
}
