package sink

import (
	"context"

	"github.com/google/uuid"

	"drawbench/server/engine"
)

// HandStore is the part of store.DB the Postgres sink writes through.
type HandStore interface {
	InsertHand(ctx context.Context, matchID uuid.UUID, index int, h engine.HandSummary) error
}

type Postgres struct {
	db      HandStore
	matchID uuid.UUID
}

func NewPostgres(db HandStore, matchID uuid.UUID) *Postgres {
	return &Postgres{db: db, matchID: matchID}
}

func (p *Postgres) WriteHand(ctx context.Context, h Hand) error {
	return p.db.InsertHand(ctx, p.matchID, h.Index, h.HandSummary)
}

// Close leaves the pool open; its owner closes it.
func (p *Postgres) Close() error { return nil }
