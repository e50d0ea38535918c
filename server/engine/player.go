package engine

import "context"

// Decision is everything a decision function sees when it is on action.
type Decision struct {
	HandID        string
	Legal         []ActionKind
	Round         Round
	BetsThisRound int
	HasButton     bool
	PotSize       int
	ToCall        int
	History       []Action // this round only
	CardsKept     int
	OpponentKept  int
	Hand          []Card
	DrawsLeft     int
	Value         float64
}

// DrawRequest is what a draw function sees before it discards.
type DrawRequest struct {
	HandID       string
	Hand         []Card
	DrawsLeft    int // including this draw
	HasButton    bool
	PotSize      int
	OpponentKept int
	Value        float64
}

// Player drives one seat. Implementations must be safe to discard after a hand.
type Player interface {
	Name() string
	ChooseAction(ctx context.Context, d Decision) (ActionKind, error)
	ChooseDiscards(ctx context.Context, r DrawRequest) ([]Card, error)
}

// SeatContext is the betting picture an action-value estimate is conditioned on.
type SeatContext struct {
	Round         Round
	HasButton     bool
	PotSize       int
	ToCall        int
	BetsThisRound int
	CardsKept     int
	OpponentKept  int
}

// SeatContextOf is the oracle's view of a decision.
func SeatContextOf(d Decision) SeatContext {
	return SeatContext{
		Round:         d.Round,
		HasButton:     d.HasButton,
		PotSize:       d.PotSize,
		ToCall:        d.ToCall,
		BetsThisRound: d.BetsThisRound,
		CardsKept:     d.CardsKept,
		OpponentKept:  d.OpponentKept,
	}
}

// ValueOracle estimates hand and action values. Implementations must be reentrant.
type ValueOracle interface {
	EstimateHandValue(ctx context.Context, hand []Card, drawsLeft int) (float64, error)
	EstimateActionValues(ctx context.Context, hand []Card, drawsLeft int, sc SeatContext) (map[ActionKind]float64, error)
}
