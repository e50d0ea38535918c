// Package match plays a sequence of independent hands between two players
// and streams the settled hands to a sink in hand order.
package match

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"drawbench/server/agent"
	"drawbench/server/engine"
	"drawbench/server/sink"
)

type TiePolicy string

const (
	// TieSplit halves a tied pot, odd chip to the button.
	TieSplit TiePolicy = "split"
	// TieAbort voids a tied hand; nothing is written for it.
	TieAbort TiePolicy = "abort"
)

type Config struct {
	MatchID   string
	Hands     int
	Workers   int
	SeedBase  uint64
	TiePolicy TiePolicy

	Oracle  engine.ValueOracle // may be nil
	Cashier engine.Cashier     // defaults to DeuceLowball

	EloStart       float64
	EloK           float64
	EloWeightByPot bool

	// Stop is polled before each hand is dealt.
	Stop func() bool
	// OnHand is called from the collector, in hand order, after the sink write.
	OnHand func(h sink.Hand)
}

type Runner struct {
	cfg  Config
	a, b agent.Factory
	sink sink.Sink
	log  *zap.Logger
}

type outcome struct {
	index   int
	aButton bool
	hand    engine.HandSummary
	err     error
}

func NewRunner(cfg Config, a, b agent.Factory, s sink.Sink, log *zap.Logger) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Cashier == nil {
		cfg.Cashier = engine.DeuceLowball{}
	}
	if cfg.TiePolicy == "" {
		cfg.TiePolicy = TieSplit
	}
	if cfg.MatchID == "" {
		cfg.MatchID = uuid.NewString()
	}
	if cfg.EloK == 0 {
		cfg.EloStart, cfg.EloK = 1500, 24
	}
	if s == nil {
		s = &sink.Memory{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{cfg: cfg, a: a, b: b, sink: s, log: log}
}

func (r *Runner) MatchID() string { return r.cfg.MatchID }

// Run plays up to cfg.Hands hands. A cancelled ctx or Stop stops dealing new
// hands; hands already dealt are played out and recorded. The error is
// non-nil only when the dealer itself failed.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	sum := newSummary(r.cfg)
	seeds := NewSeedStream(r.cfg.SeedBase)
	out := make(chan outcome, r.cfg.Workers)

	var failed atomic.Bool
	collected := make(chan error, 1)
	go func() { collected <- r.collect(context.WithoutCancel(ctx), out, sum, &failed) }()

	r.log.Info("match started",
		zap.String("match_id", r.cfg.MatchID),
		zap.Uint64("seed_base", r.cfg.SeedBase),
		zap.Int("hands", r.cfg.Hands),
		zap.Int("workers", r.cfg.Workers))

	hctx := context.WithoutCancel(ctx)
	g := new(errgroup.Group)
	g.SetLimit(r.cfg.Workers)
	for i := 0; i < r.cfg.Hands; i++ {
		if ctx.Err() != nil || failed.Load() || (r.cfg.Stop != nil && r.cfg.Stop()) {
			sum.Stopped = true
			r.log.Info("stop requested; finishing hands in flight", zap.Int("dealt", i))
			break
		}
		i, seed := i, seeds.Next()
		g.Go(func() error {
			out <- r.playHand(hctx, i, seed)
			return nil
		})
	}
	_ = g.Wait()
	close(out)
	err := <-collected

	r.log.Info("match finished",
		zap.String("match_id", r.cfg.MatchID),
		zap.Int("played", sum.Played),
		zap.Int("aborted", sum.Aborted),
		zap.Int("voided", sum.Voided))
	return sum, err
}

// playHand deals hand index from its own seed: deck, then player A, then player B.
func (r *Runner) playHand(ctx context.Context, index int, seed uint64) outcome {
	o := outcome{index: index, aButton: index%2 == 0}
	ss := NewSeedStream(seed)
	deck := engine.NewDeck(rand.New(rand.NewSource(int64(ss.Next()))))
	pa, pb := r.a(ss.Next()), r.b(ss.Next())
	button, blind := pa, pb
	if !o.aButton {
		button, blind = pb, pa
	}
	d := engine.NewDealer(uuid.NewString(), deck, button, blind, r.cfg.Oracle)
	if o.err = d.Play(ctx); o.err != nil {
		return o
	}
	o.hand, o.err = d.Resolve(r.cfg.Cashier, r.cfg.TiePolicy != TieAbort)
	return o
}

// collect re-orders outcomes by index and settles them one at a time.
func (r *Runner) collect(ctx context.Context, out <-chan outcome, sum *Summary, failed *atomic.Bool) error {
	pending := map[int]outcome{}
	next := 0
	var first error
	for o := range out {
		pending[o.index] = o
		for {
			o, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if err := r.settle(ctx, o, sum); err != nil && first == nil {
				first = err
				failed.Store(true)
			}
		}
	}
	return first
}

func (r *Runner) settle(ctx context.Context, o outcome, sum *Summary) error {
	var pe *engine.ProtocolError
	switch {
	case o.err == nil:
	case errors.As(o.err, &pe):
		sum.Aborted++
		r.log.Warn("hand skipped",
			zap.String("hand_id", pe.HandID),
			zap.Int("hand_index", o.index),
			zap.Stringer("round", pe.Round),
			zap.Stringer("actor", pe.Actor),
			zap.String("reason", pe.Reason),
			zap.Strings("history", historyStrings(pe.History)),
			zap.Error(pe.Err))
		return nil
	case errors.Is(o.err, engine.ErrUnresolvedTie):
		sum.Voided++
		r.log.Info("tied hand voided", zap.Int("hand_index", o.index), zap.Error(o.err))
		return nil
	default:
		sum.Aborted++
		r.log.Error("hand failed", zap.Int("hand_index", o.index), zap.Error(o.err))
		return fmt.Errorf("hand %d: %w", o.index, o.err)
	}

	sum.record(o.hand, o.aButton)
	h := sink.Hand{MatchID: r.cfg.MatchID, Index: o.index, HandSummary: o.hand}
	if err := r.sink.WriteHand(ctx, h); err != nil {
		sum.SinkErrors++
		r.log.Error("sink write failed", zap.String("hand_id", h.ID), zap.Error(err))
	}
	if r.cfg.OnHand != nil {
		r.cfg.OnHand(h)
	}
	return nil
}

func historyStrings(hist []engine.Action) []string {
	out := make([]string, len(hist))
	for i, a := range hist {
		out[i] = a.Actor.String() + ":" + string(a.Kind)
	}
	return out
}
