package engine

import "strings"

// Action is one entry in a hand's history. Context fields are filled when the
// action is made; the settlement fields are written once, after resolution.
type Action struct {
	Kind    ActionKind `json:"action"`
	Actor   Position   `json:"actor"`
	PotSize int        `json:"pot_size"` // before the action
	BetSize int        `json:"bet_size"`
	PotOdds float64    `json:"pot_odds"`

	Hand         []Card  `json:"hand"`
	BestDraw     []Card  `json:"best_draw,omitempty"`  // held cards, draws only
	HandAfter    []Card  `json:"hand_after,omitempty"` // draws only
	DrawsLeft    int     `json:"draws_left"`
	CardsKept    int     `json:"num_cards_kept"`
	OpponentKept int     `json:"num_opponent_kept"`
	BetModel     string  `json:"bet_model"`
	Value        float64 `json:"value_heuristic"`
	BetThisHand  int     `json:"bet_this_hand"` // committed before the action
	RoundPattern string  `json:"actions_this_round"`
	HandPattern  string  `json:"actions_full_hand"`

	Settled      bool `json:"settled"`
	TotalBet     int  `json:"total_bet"`
	Result       int  `json:"result"`
	MarginBet    int  `json:"margin_bet"`
	MarginResult int  `json:"margin_result"`
}

func (p Position) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Position) UnmarshalText(b []byte) error {
	switch string(b) {
	case "button":
		*p = Button
	case "blind":
		*p = Blind
	case "none":
		*p = NoWinner
	default:
		return invariantf("unknown position %q", string(b))
	}
	return nil
}

func newAction(kind ActionKind, actor Position, pot, bet int) Action {
	a := Action{Kind: kind, Actor: actor, PotSize: pot, BetSize: bet}
	if bet > 0 {
		a.PotOdds = float64(pot) / float64(bet)
	}
	return a
}

// BetPattern encodes aggression: '1' for a bet or raise, '0' for a check or call.
// Blinds, draws and folds are skipped.
func BetPattern(history []Action) string {
	var b strings.Builder
	for _, a := range history {
		switch {
		case a.Kind.Aggressive():
			b.WriteByte('1')
		case a.Kind == Check || a.Kind.IsCall():
			b.WriteByte('0')
		}
	}
	return b.String()
}

func (a *Action) settle(totalBet, result int) {
	a.TotalBet = totalBet
	a.Result = result
	a.MarginBet = totalBet - a.BetThisHand
	a.MarginResult = result - a.MarginBet
	a.Settled = true
}
