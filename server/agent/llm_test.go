package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drawbench/server/engine"
)

type fakeChooser struct {
	kind     string
	kindErr  error
	text     string
	textErr  error
	discards []string
	drawErr  error
	calls    int
}

func (f *fakeChooser) ChooseKind(context.Context, string, string, []string) (string, string, error) {
	f.calls++
	return f.kind, f.kind, f.kindErr
}

func (f *fakeChooser) ChooseDiscards(context.Context, string, string, []string) ([]string, string, error) {
	return f.discards, "", f.drawErr
}

func (f *fakeChooser) Complete(context.Context, string, string) (string, error) {
	f.calls++
	return f.text, f.textErr
}

type constDecider engine.ActionKind

func (c constDecider) Decide(context.Context, engine.Decision) (engine.ActionKind, error) {
	return engine.ActionKind(c), nil
}

func facingDecision(t *testing.T) engine.Decision {
	return engine.Decision{
		HandID: "h1",
		Legal:  []engine.ActionKind{engine.Fold, engine.CallSmall, engine.RaiseSmall},
		Round:  engine.PreDraw, PotSize: 150, ToCall: 50, BetsThisRound: 1,
		HasButton: true,
		Hand:      cards(t, "7h 5d 4c 3s Kh"), DrawsLeft: 3,
	}
}

func TestLLMStructuredReply(t *testing.T) {
	fc := &fakeChooser{kind: "raise_small"}
	l := NewLLM(fc, nil, nil, 0, nil)
	k, err := l.Decide(context.Background(), facingDecision(t))
	require.NoError(t, err)
	assert.Equal(t, engine.RaiseSmall, k)
	assert.Equal(t, 1, fc.calls)
}

func TestLLMFallsBackToPlainJSON(t *testing.T) {
	fc := &fakeChooser{kindErr: errors.New("schema unsupported"), text: "Sure!\n```json\n{\"action\":\"call\"}\n```"}
	l := NewLLM(fc, constDecider(engine.Fold), nil, 0, nil)
	k, err := l.Decide(context.Background(), facingDecision(t))
	require.NoError(t, err)
	assert.Equal(t, engine.CallSmall, k)
	assert.Equal(t, 2, fc.calls)
}

func TestLLMFallsBackToPolicy(t *testing.T) {
	fc := &fakeChooser{kind: "check", text: "no idea"}
	l := NewLLM(fc, constDecider(engine.RaiseSmall), nil, 0, nil)
	k, err := l.Decide(context.Background(), facingDecision(t))
	require.NoError(t, err)
	assert.Equal(t, engine.RaiseSmall, k)

	// without a policy the safe default is check, else fold
	l = NewLLM(fc, nil, nil, 0, nil)
	k, err = l.Decide(context.Background(), facingDecision(t))
	require.NoError(t, err)
	assert.Equal(t, engine.Fold, k)

	d := facingDecision(t)
	d.Legal = []engine.ActionKind{engine.Check, engine.BetSmall}
	d.ToCall = 0
	k, err = l.Decide(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, engine.Check, k)
}

func TestLLMDiscards(t *testing.T) {
	req := engine.DrawRequest{HandID: "h1", Hand: cards(t, "7h 5d 4c 3s Kh"), DrawsLeft: 3}

	l := NewLLM(&fakeChooser{discards: []string{"Kh"}}, nil, RuleDrawer{}, 0, nil)
	got, err := l.Discard(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, cards(t, "Kh"), got)

	// a card the seat does not hold goes to the fallback drawer
	l = NewLLM(&fakeChooser{discards: []string{"As"}}, nil, RuleDrawer{}, 0, nil)
	got, err = l.Discard(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, cards(t, "Kh"), got)

	// no fallback stands pat
	l = NewLLM(&fakeChooser{drawErr: errors.New("timeout")}, nil, nil, 0, nil)
	got, err = l.Discard(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, got)
}
