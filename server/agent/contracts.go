package agent

import (
	"fmt"
	"strings"

	"drawbench/server/engine"
)

// Observation is the JSON an external agent sees when it is on action.
type Observation struct {
	HandID        string         `json:"hand_id"`
	Position      string         `json:"position"` // "button" | "blind"
	Round         string         `json:"round"`    // pre_draw|draw_1|draw_2|draw_3
	DrawsLeft     int            `json:"draws_left"`
	Hand          []string       `json:"hand"` // e.g. ["7s","5d","4c","3h","2d"]
	Description   string         `json:"description"`
	Blinds        map[string]int `json:"blinds"` // {sb, bb}
	BetUnit       int            `json:"bet_unit"`
	Pot           int            `json:"pot"`
	ToCall        int            `json:"to_call"`
	BetsThisRound int            `json:"bets_this_round"`
	CardsKept     int            `json:"cards_kept"`
	OpponentKept  int            `json:"opponent_kept"`
	History       []string       `json:"history"` // this round, "button:bet_small"
	Legal         []string       `json:"legal_actions"`
}

type ActionOut struct {
	Action  string `json:"action"`
	Comment string `json:"comment,omitempty"` // <=120 chars
}

// DrawObservation is what an external agent sees before it discards.
type DrawObservation struct {
	HandID       string   `json:"hand_id"`
	Position     string   `json:"position"`
	DrawsLeft    int      `json:"draws_left"`
	Hand         []string `json:"hand"`
	Description  string   `json:"description"`
	Pot          int      `json:"pot"`
	OpponentKept int      `json:"opponent_kept"`
}

type DrawOut struct {
	Discard []string `json:"discard"`
	Comment string   `json:"comment,omitempty"`
}

// BuildObservation converts a dealer decision into the JSON we send the model.
func BuildObservation(d engine.Decision) Observation {
	pos := engine.Blind
	if d.HasButton {
		pos = engine.Button
	}
	legal := make([]string, len(d.Legal))
	for i, k := range d.Legal {
		legal[i] = string(k)
	}
	history := make([]string, 0, len(d.History))
	for _, a := range d.History {
		history = append(history, a.Actor.String()+":"+string(a.Kind))
	}
	return Observation{
		HandID:        d.HandID,
		Position:      pos.String(),
		Round:         d.Round.String(),
		DrawsLeft:     d.DrawsLeft,
		Hand:          engine.CardStrings(d.Hand),
		Description:   engine.Describe(d.Hand),
		Blinds:        map[string]int{"sb": engine.SmallBlind, "bb": engine.BigBlind},
		BetUnit:       d.Round.Unit(engine.SmallBet, engine.BigBet),
		Pot:           d.PotSize,
		ToCall:        d.ToCall,
		BetsThisRound: d.BetsThisRound,
		CardsKept:     d.CardsKept,
		OpponentKept:  d.OpponentKept,
		History:       history,
		Legal:         legal,
	}
}

func BuildDrawObservation(r engine.DrawRequest) DrawObservation {
	pos := engine.Blind
	if r.HasButton {
		pos = engine.Button
	}
	return DrawObservation{
		HandID:       r.HandID,
		Position:     pos.String(),
		DrawsLeft:    r.DrawsLeft,
		Hand:         engine.CardStrings(r.Hand),
		Description:  engine.Describe(r.Hand),
		Pot:          r.PotSize,
		OpponentKept: r.OpponentKept,
	}
}

// Validate checks the model's action against the observation and returns the kind.
func Validate(o Observation, a ActionOut) (engine.ActionKind, error) {
	act := strings.ToLower(strings.TrimSpace(a.Action))
	// nothing to call: treat call as check
	if o.ToCall == 0 && strings.HasPrefix(act, "call") {
		act = string(engine.Check)
	}
	for _, la := range o.Legal {
		if la == act {
			return engine.ParseActionKind(act)
		}
	}
	return "", fmt.Errorf("illegal action %q (legals: %v)", a.Action, o.Legal)
}

// ValidateDraw resolves the discard list against the hand shown.
func ValidateDraw(o DrawObservation, out DrawOut) ([]engine.Card, error) {
	if len(out.Discard) > len(o.Hand) {
		return nil, fmt.Errorf("%w: %d discards from %d cards", engine.ErrBadHand, len(out.Discard), len(o.Hand))
	}
	cards := make([]engine.Card, 0, len(out.Discard))
	for _, s := range out.Discard {
		c, err := engine.ParseCard(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		held := false
		for _, h := range o.Hand {
			if h == c.String() {
				held = true
				break
			}
		}
		if !held {
			return nil, fmt.Errorf("%w: %s not in hand %v", engine.ErrBadHand, c, o.Hand)
		}
		for _, prev := range cards {
			if prev == c {
				return nil, fmt.Errorf("%w: %s discarded twice", engine.ErrBadHand, c)
			}
		}
		cards = append(cards, c)
	}
	return cards, nil
}
