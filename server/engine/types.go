package engine

import "fmt"

// Fixed limit structure.
const (
	SmallBlind = 50
	BigBlind   = 100
	SmallBet   = 100
	BigBet     = 200
	BetCap     = 4 // bet units per street

	// BaselineValue is the value estimate used when no oracle is configured.
	BaselineValue = 0.300
)

// Position is a seat index into the dealer's two-element seat array.
type Position int

const (
	Button Position = 0
	Blind  Position = 1

	NoWinner Position = -1
)

func (p Position) Other() Position { return 1 - p }

func (p Position) String() string {
	switch p {
	case Button:
		return "button"
	case Blind:
		return "blind"
	case NoWinner:
		return "none"
	}
	return fmt.Sprintf("Position(%d)", int(p))
}

// Round is a betting street. Draws happen between consecutive rounds.
type Round int

const (
	PreDraw Round = iota
	Draw1
	Draw2
	Draw3
)

func (r Round) String() string {
	switch r {
	case PreDraw:
		return "pre_draw"
	case Draw1:
		return "draw_1"
	case Draw2:
		return "draw_2"
	case Draw3:
		return "draw_3"
	}
	return fmt.Sprintf("Round(%d)", int(r))
}

func (r Round) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// DrawsLeft is how many draws remain after this round's betting.
func (r Round) DrawsLeft() int { return int(Draw3 - r) }

// SmallStreet reports whether the round is bet in small units.
func (r Round) SmallStreet() bool { return r == PreDraw || r == Draw1 }

// Unit is the bet unit for the round.
func (r Round) Unit(smallUnit, bigUnit int) int {
	if r.SmallStreet() {
		return smallUnit
	}
	return bigUnit
}

type ActionKind string

const (
	PostBigBlind   ActionKind = "post_big_blind"
	PostSmallBlind ActionKind = "post_small_blind"
	BetSmall       ActionKind = "bet_small"
	BetBig         ActionKind = "bet_big"
	RaiseSmall     ActionKind = "raise_small"
	RaiseBig       ActionKind = "raise_big"
	CallSmall      ActionKind = "call_small"
	CallBig        ActionKind = "call_big"
	Check          ActionKind = "check"
	Fold           ActionKind = "fold"
	Draw           ActionKind = "draw"
)

// ParseActionKind maps an external name to a kind.
func ParseActionKind(s string) (ActionKind, error) {
	k := ActionKind(s)
	switch k {
	case PostBigBlind, PostSmallBlind, BetSmall, BetBig, RaiseSmall, RaiseBig,
		CallSmall, CallBig, Check, Fold, Draw:
		return k, nil
	}
	return "", fmt.Errorf("unknown action kind %q", s)
}

func (k ActionKind) IsBet() bool {
	return k == BetSmall || k == BetBig
}

func (k ActionKind) IsRaise() bool {
	return k == RaiseSmall || k == RaiseBig
}

// Aggressive is a bet or a raise.
func (k ActionKind) Aggressive() bool { return k.IsBet() || k.IsRaise() }

func (k ActionKind) IsCall() bool {
	return k == CallSmall || k == CallBig
}

func (k ActionKind) IsBlind() bool {
	return k == PostBigBlind || k == PostSmallBlind
}

// Voluntary kinds are the ones a decision function can return.
func (k ActionKind) Voluntary() bool {
	return k.Aggressive() || k.IsCall() || k == Check || k == Fold
}

// BetKind is the opening bet for the round.
func BetKind(r Round) ActionKind {
	if r.SmallStreet() {
		return BetSmall
	}
	return BetBig
}

func RaiseKind(r Round) ActionKind {
	if r.SmallStreet() {
		return RaiseSmall
	}
	return RaiseBig
}

func CallKind(r Round) ActionKind {
	if r.SmallStreet() {
		return CallSmall
	}
	return CallBig
}
