// Package sink receives settled hands, in hand order, for storage and
// training data.
package sink

import (
	"context"
	"errors"
	"sync"

	"drawbench/server/engine"
)

// Hand is one settled hand of a match.
type Hand struct {
	MatchID string `json:"match_id"`
	Index   int    `json:"hand_index"`
	engine.HandSummary
}

// Sink is append-only. The match loop calls WriteHand from one goroutine, in
// hand order.
type Sink interface {
	WriteHand(ctx context.Context, h Hand) error
	Close() error
}

// Multi fans a hand out to every sink. A failing sink does not stop the rest.
type Multi []Sink

func (m Multi) WriteHand(ctx context.Context, h Hand) error {
	var errs []error
	for _, s := range m {
		if err := s.WriteHand(ctx, h); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Memory keeps hands in memory; used by tests and the CLI summary.
type Memory struct {
	mu    sync.Mutex
	hands []Hand
}

func (m *Memory) WriteHand(_ context.Context, h Hand) error {
	m.mu.Lock()
	m.hands = append(m.hands, h)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }

func (m *Memory) Hands() []Hand {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Hand(nil), m.hands...)
}
