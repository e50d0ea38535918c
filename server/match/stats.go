package match

import (
	"math"
	"math/rand"
	"sort"

	"drawbench/server/engine"
)

type SeatStats struct {
	Hands    int
	Wins     int
	NetChips int
}

func (s *SeatStats) BBPer100(bb int) float64 {
	h := s.Hands
	if h == 0 || bb <= 0 {
		return 0
	}
	return (float64(s.NetChips) / float64(bb)) / (float64(h) / 100.0)
}

// ActionTally counts voluntary actions and cards drawn.
type ActionTally struct {
	Check int
	Call  int
	Bet   int
	Raise int
	Fold  int

	Draws      int
	CardsDrawn int
}

func (t *ActionTally) add(a engine.Action) {
	switch {
	case a.Kind == engine.Check:
		t.Check++
	case a.Kind.IsCall():
		t.Call++
	case a.Kind.IsBet():
		t.Bet++
	case a.Kind.IsRaise():
		t.Raise++
	case a.Kind == engine.Fold:
		t.Fold++
	case a.Kind == engine.Draw:
		t.Draws++
		t.CardsDrawn += engine.HandSize - a.CardsKept
	}
}

func (t *ActionTally) Total() int { return t.Check + t.Call + t.Bet + t.Raise + t.Fold }

// AF is aggression factor: bets and raises per call.
func (t *ActionTally) AF() float64 {
	aggr := t.Bet + t.Raise
	if t.Call == 0 {
		return float64(aggr)
	}
	return float64(aggr) / float64(t.Call)
}

type PlayerStats struct {
	Name    string
	Overall SeatStats
	Button  SeatStats
	Blind   SeatStats
	Actions ActionTally
}

func (p *PlayerStats) seatBucket(pos engine.Position) *SeatStats {
	if pos == engine.Button {
		return &p.Button
	}
	return &p.Blind
}

func (p *PlayerStats) addHand(pos engine.Position, net int, won bool) {
	for _, s := range []*SeatStats{&p.Overall, p.seatBucket(pos)} {
		s.Hands++
		s.NetChips += net
		if won {
			s.Wins++
		}
	}
}

// MeanStdev is the sample mean and standard deviation.
func MeanStdev(vals []float64) (mean, stdev float64) {
	n := len(vals)
	if n == 0 {
		return 0, 0
	}
	for _, v := range vals {
		mean += v
	}
	mean /= float64(n)
	if n == 1 {
		return mean, 0
	}
	ss := 0.0
	for _, v := range vals {
		ss += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(ss / float64(n-1))
}

// WilsonCI95 for A's win rate, counting ties as half a win.
func WilsonCI95(wins, ties, total int) (low, hi float64) {
	if total <= 0 {
		return 0, 1
	}
	z := 1.96
	n := float64(total)
	p := (float64(wins) + 0.5*float64(ties)) / n
	den := 1 + (z*z)/n
	center := p + (z*z)/(2*n)
	half := z * math.Sqrt((p*(1-p))/n+(z*z)/(4*n*n))
	return (center - half) / den, (center + half) / den
}

// BootstrapCI95 for the mean of vals, resampled B times.
func BootstrapCI95(vals []float64, B int, rng *rand.Rand) (low, hi float64) {
	n := len(vals)
	if n == 0 || B <= 1 {
		return 0, 0
	}
	res := make([]float64, B)
	for b := 0; b < B; b++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += vals[rng.Intn(n)]
		}
		res[b] = sum / float64(n)
	}
	sort.Float64s(res)
	l := int(0.025 * float64(B-1))
	h := int(0.975 * float64(B-1))
	return res[l], res[h]
}
