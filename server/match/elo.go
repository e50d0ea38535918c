package match

import (
	"math"

	"drawbench/server/engine"
)

// Elo rates player A against player B, one update per settled hand.
type Elo struct {
	A, B  float64
	K     float64
	Hands int
}

func NewElo(start, k float64) Elo { return Elo{A: start, B: start, K: k} }

func (e Elo) expect() (ea, eb float64) {
	ea = 1.0 / (1.0 + math.Pow(10, (e.B-e.A)/400.0))
	return ea, 1.0 - ea
}

// UpdateHand applies scores sa+sb=1 and returns the deltas.
func (e *Elo) UpdateHand(sa, sb float64, pot, bb int, weightByPot bool) (dA, dB float64) {
	ea, eb := e.expect()
	k := e.K
	if weightByPot {
		k *= potScale(pot, bb)
	}
	dA = k * (sa - ea)
	dB = k * (sb - eb)
	e.A += dA
	e.B += dB
	e.Hands++
	return dA, dB
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// potScale is 1 for a pot of two big blinds.
func potScale(pot, bb int) float64 {
	if bb <= 0 || pot <= 0 {
		return 1.0
	}
	return clamp(float64(pot)/(2.0*float64(bb)), 0.5, 3.0)
}

// handScore turns a winner seat into scores for A and B.
func handScore(w engine.Position, aButton bool) (sa, sb float64) {
	switch w {
	case engine.NoWinner:
		return 0.5, 0.5
	case engine.Button:
		if aButton {
			return 1, 0
		}
		return 0, 1
	default:
		if aButton {
			return 0, 1
		}
		return 1, 0
	}
}
