package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sync"

	"drawbench/server/engine"
)

// Sampler thins the training rows. Rate applies to betting actions,
// DrawRate to draws; 1 keeps everything.
type Sampler struct {
	Rate     float64
	DrawRate float64
	Seed     int64
}

// CSV writes one row per action.
type CSV struct {
	mu      sync.Mutex
	w       *csv.Writer
	closer  io.Closer
	sampler Sampler
	rng     *rand.Rand
}

// NewCSVFile creates path and writes the header.
func NewCSVFile(path string, s Sampler) (*CSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	c, err := NewCSV(f, s)
	if err != nil {
		f.Close()
		return nil, err
	}
	c.closer = f
	return c, nil
}

func NewCSV(w io.Writer, s Sampler) (*CSV, error) {
	c := &CSV{w: csv.NewWriter(w), sampler: s, rng: rand.New(rand.NewSource(s.Seed))}
	if err := c.w.Write(Header); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *CSV) keep(a engine.Action) bool {
	rate := c.sampler.Rate
	if a.Kind == engine.Draw {
		rate = c.sampler.DrawRate
	}
	if rate >= 1 {
		return true
	}
	return c.rng.Float64() < rate
}

func (c *CSV) WriteHand(_ context.Context, h Hand) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, a := range h.Actions {
		if !c.keep(a) {
			continue
		}
		if err := c.w.Write(Row(h.MatchID, h.ID, i, a)); err != nil {
			return fmt.Errorf("csv hand %s: %w", h.ID, err)
		}
	}
	c.w.Flush()
	return c.w.Error()
}

func (c *CSV) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.w.Flush()
	err := c.w.Error()
	if c.closer != nil {
		if cerr := c.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
