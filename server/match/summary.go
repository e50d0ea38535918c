package match

import (
	"math/rand"

	"drawbench/server/engine"
)

// Summary aggregates settled hands. Players[0] is A, Players[1] is B.
type Summary struct {
	MatchID  string
	SeedBase uint64

	Planned    int
	Played     int
	Aborted    int // protocol violations, no settlement record
	Voided     int // ties under the abort policy
	SinkErrors int
	Stopped    bool

	Showdowns int
	Folds     int
	Ties      int

	Players [2]PlayerStats
	Elo     Elo

	// Per-hand net chips.
	ButtonResults []float64
	BlindResults  []float64
	AResults      []float64

	eloWeightByPot bool
}

func newSummary(cfg Config) *Summary {
	return &Summary{
		MatchID:        cfg.MatchID,
		SeedBase:       cfg.SeedBase,
		Planned:        cfg.Hands,
		Elo:            NewElo(cfg.EloStart, cfg.EloK),
		eloWeightByPot: cfg.EloWeightByPot,
	}
}

func (s *Summary) record(h engine.HandSummary, aButton bool) {
	s.Played++
	if h.Showdown {
		s.Showdowns++
	} else {
		s.Folds++
	}
	if h.Tie {
		s.Ties++
	}

	aPos := engine.Blind
	if aButton {
		aPos = engine.Button
	}
	for i, pos := range []engine.Position{aPos, aPos.Other()} {
		p := &s.Players[i]
		p.Name = h.Players[pos]
		p.addHand(pos, h.Results[pos], h.Winner == pos)
	}
	for _, a := range h.Actions {
		i := 0
		if a.Actor != aPos {
			i = 1
		}
		s.Players[i].Actions.add(a)
	}

	s.ButtonResults = append(s.ButtonResults, float64(h.Results[engine.Button]))
	s.BlindResults = append(s.BlindResults, float64(h.Results[engine.Blind]))
	s.AResults = append(s.AResults, float64(h.Results[aPos]))

	sa, sb := handScore(h.Winner, aButton)
	s.Elo.UpdateHand(sa, sb, h.Pot, engine.BigBlind, s.eloWeightByPot)
}

// WinCI is the Wilson interval on A's per-hand win rate.
func (s *Summary) WinCI() (low, hi float64) {
	return WilsonCI95(s.Players[0].Overall.Wins, s.Ties, s.Played)
}

// MarginCI is a bootstrap interval on A's mean result in big blinds.
func (s *Summary) MarginCI(B int) (low, hi float64) {
	bbs := make([]float64, len(s.AResults))
	for i, v := range s.AResults {
		bbs[i] = v / engine.BigBlind
	}
	return BootstrapCI95(bbs, B, rand.New(rand.NewSource(int64(s.SeedBase))))
}
