package judge

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drawbench/server/engine"
)

func hand(t *testing.T, s string) []engine.Card {
	t.Helper()
	cs, err := ParseHand(s)
	require.NoError(t, err)
	return cs
}

func TestBestDrawStandsPatOnTheNuts(t *testing.T) {
	o := NewOracle(16)
	discards, v, err := o.BestDraw(context.Background(), hand(t, "7h 5d 4c 3s 2h"), 1)
	require.NoError(t, err)
	assert.Empty(t, discards)
	assert.Greater(t, v, 0.99)
}

func TestBestDrawBreaksAPair(t *testing.T) {
	o := NewOracle(16)
	discards, v, err := o.BestDraw(context.Background(), hand(t, "Kh Kd 7c 4s 2h"), 2)
	require.NoError(t, err)
	kings := 0
	for _, c := range discards {
		if c.Rank == 13 {
			kings++
		}
	}
	assert.Positive(t, kings)
	assert.Greater(t, v, 0.0)
	assert.Less(t, v, 1.0)
}

func TestEstimateIsDeterministicAndReentrant(t *testing.T) {
	h := hand(t, "9s 8d 6c 3h 2h")
	want, err := NewOracle(16).EstimateHandValue(context.Background(), h, 3)
	require.NoError(t, err)

	o := NewOracle(16)
	var wg sync.WaitGroup
	got := make([]float64, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := o.EstimateHandValue(context.Background(), h, 3)
			assert.NoError(t, err)
			got[i] = v
		}(i)
	}
	wg.Wait()
	for _, v := range got {
		assert.Equal(t, want, v)
	}
	assert.Equal(t, 1, o.draws.Count())
}

func TestFinalValueIsPayout(t *testing.T) {
	h := hand(t, "8c 6s 5h 3d 2c")
	v, err := NewOracle(16).EstimateHandValue(context.Background(), h, 0)
	require.NoError(t, err)
	p, err := engine.DeuceLowball{}.Payout(h)
	require.NoError(t, err)
	assert.Equal(t, p, v)
}

func TestOracleRejectsMalformedInput(t *testing.T) {
	o := NewOracle(16)
	_, err := o.EstimateHandValue(context.Background(), hand(t, "8c 6s 5h 3d 2c")[:4], 1)
	assert.ErrorIs(t, err, engine.ErrBadHand)

	_, err = o.EstimateHandValue(context.Background(), hand(t, "8c 6s 5h 3d 2c"), 4)
	assert.ErrorIs(t, err, engine.ErrBadHand)

	_, err = ParseHand("8c 6s 5h 3d 1c")
	assert.ErrorIs(t, err, engine.ErrMalformedCard)
	_, err = ParseHand("8c 8c 5h 3d 2c")
	assert.ErrorIs(t, err, engine.ErrBadHand)
}

func TestActionValues(t *testing.T) {
	o := NewOracle(16)
	facing := engine.SeatContext{Round: engine.Draw3, PotSize: 600, ToCall: 200, BetsThisRound: 1}

	nuts, err := o.EstimateActionValues(context.Background(), hand(t, "7h 5d 4c 3s 2h"), 0, facing)
	require.NoError(t, err)
	assert.Greater(t, nuts[engine.CallBig], nuts[engine.Fold])
	assert.Greater(t, nuts[engine.RaiseBig], nuts[engine.CallBig])
	assert.NotContains(t, nuts, engine.Check)

	trips, err := o.EstimateActionValues(context.Background(), hand(t, "Ks Kd Kc 7h 9c"), 0, facing)
	require.NoError(t, err)
	assert.Greater(t, trips[engine.Fold], trips[engine.CallBig])

	open, err := o.EstimateActionValues(context.Background(), hand(t, "7h 5d 4c 3s 2h"), 2,
		engine.SeatContext{Round: engine.Draw1, PotSize: 200})
	require.NoError(t, err)
	assert.Contains(t, open, engine.Check)
	assert.Contains(t, open, engine.BetSmall)
	assert.NotContains(t, open, engine.CallSmall)
}

func TestRuleOfThumb(t *testing.T) {
	assert.Len(t, RuleOfThumb(hand(t, "9s 8d 6c 3h 2h")), 5)
	assert.ElementsMatch(t, hand(t, "7c 4s 2h Kd Qd")[:3], RuleOfThumb(hand(t, "Kd 7c 4s Qd 2h")))
	assert.Len(t, RuleOfThumb(hand(t, "7c 7s 4s 3d 2h")), 4)
	// a nine-low straight is not a pat hand
	assert.Len(t, RuleOfThumb(hand(t, "9s 8d 7c 6h 5h")), 4)
}
