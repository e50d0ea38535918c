package agent

import (
	"context"

	"drawbench/server/engine"
)

// Decider picks a betting action from the legal kinds.
type Decider interface {
	Decide(ctx context.Context, d engine.Decision) (engine.ActionKind, error)
}

// Drawer picks the cards to throw away.
type Drawer interface {
	Discard(ctx context.Context, r engine.DrawRequest) ([]engine.Card, error)
}

// Player pairs a decision function with a draw function under one name.
// The name is recorded as the bet model on every action the seat takes.
type Player struct {
	name    string
	decider Decider
	drawer  Drawer
}

var _ engine.Player = (*Player)(nil)

func NewPlayer(name string, d Decider, dr Drawer) *Player {
	return &Player{name: name, decider: d, drawer: dr}
}

func (p *Player) Name() string { return p.name }

func (p *Player) ChooseAction(ctx context.Context, d engine.Decision) (engine.ActionKind, error) {
	return p.decider.Decide(ctx, d)
}

func (p *Player) ChooseDiscards(ctx context.Context, r engine.DrawRequest) ([]engine.Card, error) {
	return p.drawer.Discard(ctx, r)
}
