package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"drawbench/server/engine"
	"drawbench/server/llm"
)

const benchSystem = `
You are an objective poker engine playing heads-up 2-7 triple draw lowball, fixed limit.

Rules of the game:
- The lowest five-card hand wins. Aces are high, straights and flushes count against you; 7-5-4-3-2 unsuited is the best hand.
- There are three draws. Before each draw you may throw away 0 to 5 cards and receive replacements.
- Blinds are 50/100. Bets are 100 before the second draw and 200 after it, capped at four bets a street.

Fundamental directives:
- Base every action on your hand's value, the draws left, position and how many cards your opponent kept.
- Keep reasoning clinical; no narrative.
- Return exactly one option from legal_actions. Do not add commentary.
`

// chooser is the part of llm.Client the LLM player needs.
type chooser interface {
	ChooseKind(ctx context.Context, system, user string, legal []string) (string, string, error)
	ChooseDiscards(ctx context.Context, system, user string, hand []string) ([]string, string, error)
	Complete(ctx context.Context, system, user string) (string, error)
}

var _ chooser = (*llm.Client)(nil)

// LLM asks a chat model for actions and discards. A reply that cannot be
// turned into a legal choice goes to the fallback.
type LLM struct {
	client       chooser
	fallback     Decider
	drawFallback Drawer
	timeout      time.Duration
	log          *zap.Logger
}

func NewLLM(client chooser, fallback Decider, drawFallback Drawer, timeout time.Duration, log *zap.Logger) *LLM {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 40 * time.Second
	}
	return &LLM{client: client, fallback: fallback, drawFallback: drawFallback, timeout: timeout, log: log}
}

func (l *LLM) Decide(ctx context.Context, d engine.Decision) (engine.ActionKind, error) {
	obs := BuildObservation(d)
	obsRaw, err := json.Marshal(obs)
	if err != nil {
		return "", err
	}
	user := fmt.Sprintf(`Given this observation JSON:
%s

Respond ONLY with a single compact JSON object:
{"action":"%s"}
Rules:
- Allowed actions are exactly %v (nothing else).
- No extra keys. No prose. No markdown.
- Do not be afraid to raise or fold; avoid extreme passivity or aggression.`,
		string(obsRaw), strings.Join(obs.Legal, `"|"`), obs.Legal)

	ctx2, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	// 1) structured output restricted to the legal enum
	kind, raw, err := l.client.ChooseKind(ctx2, benchSystem, user, obs.Legal)
	if err == nil {
		var k engine.ActionKind
		if k, err = Validate(obs, ActionOut{Action: kind}); err == nil {
			return k, nil
		}
	}
	l.log.Debug("structured action failed", zap.String("hand_id", d.HandID), zap.String("raw", raw), zap.Error(err))

	// 2) plain JSON mode with tolerant parsing
	text, err := l.client.Complete(ctx2, benchSystem+"\n\nRespond ONLY with a minimal JSON object as specified. No prose, no markdown.", user)
	if err == nil {
		if s, ok := llm.ParseKind(text, obs.Legal); ok {
			if k, verr := Validate(obs, ActionOut{Action: s}); verr == nil {
				return k, nil
			}
		}
		err = fmt.Errorf("no legal action in %q", truncate(text, 200))
	}
	l.log.Warn("llm action fallback", zap.String("hand_id", d.HandID), zap.String("round", d.Round.String()), zap.Error(err))

	// 3) fallback policy, else the safe default
	if l.fallback != nil {
		return l.fallback.Decide(ctx, d)
	}
	for _, k := range []engine.ActionKind{engine.Check, engine.Fold} {
		for _, la := range d.Legal {
			if la == k {
				return k, nil
			}
		}
	}
	return "", fmt.Errorf("could not derive a legal action from model output: %w", err)
}

func (l *LLM) Discard(ctx context.Context, r engine.DrawRequest) ([]engine.Card, error) {
	obs := BuildDrawObservation(r)
	obsRaw, err := json.Marshal(obs)
	if err != nil {
		return nil, err
	}
	user := fmt.Sprintf(`Given this observation JSON:
%s

Respond ONLY with a single compact JSON object:
{"discard":[<cards from hand>]}
Rules:
- Only cards from %v may be discarded; an empty list stands pat.
- No extra keys. No prose. No markdown.`, string(obsRaw), obs.Hand)

	ctx2, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	cards, raw, err := l.client.ChooseDiscards(ctx2, benchSystem, user, obs.Hand)
	if err == nil {
		out, verr := ValidateDraw(obs, DrawOut{Discard: cards})
		if verr == nil {
			return out, nil
		}
		err = verr
	}
	l.log.Warn("llm draw fallback", zap.String("hand_id", r.HandID), zap.String("raw", truncate(raw, 200)), zap.Error(err))
	if l.drawFallback != nil {
		return l.drawFallback.Discard(ctx, r)
	}
	return nil, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
