package agent

import (
	"context"
	"errors"
	"fmt"

	"drawbench/server/engine"
)

// Model plays the legal kind with the highest estimated chip value.
type Model struct {
	oracle engine.ValueOracle
}

func NewModel(oracle engine.ValueOracle) *Model { return &Model{oracle: oracle} }

func (m *Model) Decide(ctx context.Context, d engine.Decision) (engine.ActionKind, error) {
	if len(d.Legal) == 0 {
		return "", errors.New("no legal actions")
	}
	values, err := m.oracle.EstimateActionValues(ctx, d.Hand, d.DrawsLeft, engine.SeatContextOf(d))
	if err != nil {
		return "", fmt.Errorf("action values: %w", err)
	}
	best := d.Legal[0]
	bestV, seen := 0.0, false
	for _, k := range d.Legal {
		v, ok := values[k]
		if !ok {
			continue
		}
		if !seen || v > bestV {
			best, bestV, seen = k, v, true
		}
	}
	return best, nil
}

// BestDrawer searches keep patterns for the best expected payout.
type BestDrawer interface {
	BestDraw(ctx context.Context, hand []engine.Card, drawsLeft int) ([]engine.Card, float64, error)
}

type OracleDrawer struct {
	oracle BestDrawer
}

func NewOracleDrawer(oracle BestDrawer) *OracleDrawer { return &OracleDrawer{oracle: oracle} }

func (o *OracleDrawer) Discard(ctx context.Context, r engine.DrawRequest) ([]engine.Card, error) {
	discards, _, err := o.oracle.BestDraw(ctx, r.Hand, r.DrawsLeft)
	if err != nil {
		return nil, fmt.Errorf("best draw: %w", err)
	}
	return discards, nil
}
