package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegalActions(t *testing.T) {
	cases := []struct {
		name   string
		round  Round
		on     int
		off    int
		expect []ActionKind
	}{
		{"unopened small street", Draw1, 0, 0, []ActionKind{Check, BetSmall}},
		{"unopened big street", Draw2, 0, 0, []ActionKind{Check, BetBig}},
		{"button facing big blind", PreDraw, 50, 100, []ActionKind{Fold, CallSmall, RaiseSmall}},
		{"blind option after limp", PreDraw, 100, 100, []ActionKind{Check, RaiseSmall}},
		{"facing bet on draw 1", Draw1, 0, 100, []ActionKind{Fold, CallSmall, RaiseSmall}},
		{"facing cap pre draw", PreDraw, 300, 400, []ActionKind{Fold, CallSmall}},
		{"facing cap on draw 3", Draw3, 600, 800, []ActionKind{Fold, CallBig}},
		{"capped and matched", Draw3, 800, 800, nil},
		{"facing raise on big street", Draw2, 200, 400, []ActionKind{Fold, CallBig, RaiseBig}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := LegalActions(tc.round, tc.on, tc.off, SmallBet, BigBet, BetCap)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, got)
		})
	}
}

func TestLegalActionsRejectsOutbetActor(t *testing.T) {
	_, err := LegalActions(Draw1, 200, 100, SmallBet, BigBet, BetCap)
	require.ErrorIs(t, err, ErrInvariantViolation)

	_, err = LegalActions(Draw1, 400, 500, SmallBet, BigBet, BetCap)
	require.ErrorIs(t, err, ErrInvariantViolation)
}

// Every legal kind from every reachable street state keeps the bet within the cap.
func TestLegalActionsNeverExceedCap(t *testing.T) {
	for r := PreDraw; r <= Draw3; r++ {
		unit := r.Unit(SmallBet, BigBet)
		max := BetCap * unit
		for off := 0; off <= max; off += unit {
			for on := 0; on <= off; on += unit / 2 {
				legal, err := LegalActions(r, on, off, SmallBet, BigBet, BetCap)
				require.NoError(t, err)
				for _, k := range legal {
					size, err := BetSize(k, r, on, off)
					if k == Check || k == Fold {
						assert.Zero(t, size)
						continue
					}
					require.NoError(t, err, "%s %s on=%d off=%d", r, k, on, off)
					assert.LessOrEqual(t, on+size, max, "%s %s on=%d off=%d", r, k, on, off)
				}
			}
		}
	}
}

func TestBetSize(t *testing.T) {
	size, err := BetSize(CallSmall, PreDraw, 50, 100)
	require.NoError(t, err)
	assert.Equal(t, 50, size)

	size, err = BetSize(RaiseSmall, PreDraw, 50, 100)
	require.NoError(t, err)
	assert.Equal(t, 150, size)

	size, err = BetSize(BetBig, Draw2, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 200, size)

	size, err = BetSize(PostSmallBlind, PreDraw, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, SmallBlind, size)

	_, err = BetSize(CallBig, Draw3, 200, 200)
	require.ErrorIs(t, err, ErrProtocolViolation)
}

func TestBetsThisRound(t *testing.T) {
	assert.Equal(t, 1, BetsThisRound(PreDraw, 50, 100))
	assert.Equal(t, 0, BetsThisRound(Draw1, 0, 0))
	assert.Equal(t, 3, BetsThisRound(Draw2, 400, 600))
}

func TestBetPattern(t *testing.T) {
	h := []Action{
		{Kind: PostBigBlind}, {Kind: PostSmallBlind},
		{Kind: CallSmall}, {Kind: RaiseSmall}, {Kind: CallSmall},
		{Kind: Draw}, {Kind: Draw},
		{Kind: Check}, {Kind: BetSmall}, {Kind: Fold},
	}
	assert.Equal(t, "01001", BetPattern(h))
	assert.Equal(t, "", BetPattern(nil))
}
