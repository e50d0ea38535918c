package agent

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"drawbench/server/engine"
	"drawbench/server/judge"
	"drawbench/server/llm"
)

// Factory builds a fresh player for one hand.
type Factory func(seed uint64) engine.Player

type Deps struct {
	Oracle     *judge.Oracle
	LLMTimeout time.Duration
	Logger     *zap.Logger
}

// ParseFactory turns a player spec into a factory. Specs:
//
//	heuristic     weighted bet/check/fold sampling on the hand value
//	model         best oracle action value
//	random        uniform over legal kinds, half of folds re-chosen
//	llm:<model>   chat model with heuristic fallback
func ParseFactory(spec string, deps Deps) (Factory, error) {
	spec = strings.TrimSpace(spec)
	name := spec
	kind, arg, _ := strings.Cut(spec, ":")

	drawer := func() Drawer {
		if deps.Oracle != nil {
			return NewOracleDrawer(deps.Oracle)
		}
		return RuleDrawer{}
	}

	switch strings.ToLower(kind) {
	case "heuristic", "":
		if name == "" {
			name = "heuristic"
		}
		return func(seed uint64) engine.Player {
			rng := rand.New(rand.NewSource(int64(seed)))
			return NewPlayer(name, NewHeuristic(rng), drawer())
		}, nil
	case "model":
		if deps.Oracle == nil {
			return nil, fmt.Errorf("player %q needs the value oracle", spec)
		}
		return func(seed uint64) engine.Player {
			return NewPlayer(name, NewModel(deps.Oracle), NewOracleDrawer(deps.Oracle))
		}, nil
	case "random":
		return func(seed uint64) engine.Player {
			rng := rand.New(rand.NewSource(int64(seed)))
			return NewPlayer(name, NewRandom(rng), NewRandomDrawer(rng))
		}, nil
	case "llm":
		client, err := llm.NewClient(arg, deps.LLMTimeout)
		if err != nil {
			return nil, fmt.Errorf("player %q: %w", spec, err)
		}
		name = "llm:" + client.Model()
		return func(seed uint64) engine.Player {
			rng := rand.New(rand.NewSource(int64(seed)))
			l := NewLLM(client, NewHeuristic(rng), drawer(), deps.LLMTimeout, deps.Logger)
			return NewPlayer(name, l, l)
		}, nil
	}
	return nil, fmt.Errorf("unknown player %q (want heuristic, model, random or llm:<model>)", spec)
}
