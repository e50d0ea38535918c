package engine

import "fmt"

// LegalActions lists the voluntary kinds open to the seat on action.
// betOn is what that seat has put in this street, betOff what its opponent has.
// An empty result means the street is capped and closes without a prompt.
func LegalActions(round Round, betOn, betOff, smallUnit, bigUnit, cap int) ([]ActionKind, error) {
	unit := round.Unit(smallUnit, bigUnit)
	max := cap * unit
	if betOn > betOff {
		return nil, invariantf("on-action bet %d exceeds off-action bet %d", betOn, betOff)
	}
	if betOff > max {
		return nil, invariantf("street bet %d above cap %d", betOff, max)
	}

	var out []ActionKind
	if betOn == betOff {
		if betOn < max {
			out = append(out, Check)
			if betOn == 0 {
				out = append(out, BetKind(round))
			} else {
				out = append(out, RaiseKind(round))
			}
		}
		return out, nil
	}
	out = append(out, Fold, CallKind(round))
	if betOff < max {
		out = append(out, RaiseKind(round))
	}
	return out, nil
}

// BetSize is the chips a kind puts in given this street's bets.
func BetSize(kind ActionKind, round Round, betOn, betOff int) (int, error) {
	unit := round.Unit(SmallBet, BigBet)
	top := betOff
	if betOn > top {
		top = betOn
	}
	var target int
	switch {
	case kind == PostSmallBlind:
		return SmallBlind, nil
	case kind == PostBigBlind:
		return BigBlind, nil
	case kind == Check, kind == Fold, kind == Draw:
		return 0, nil
	case kind.IsCall():
		target = top
	case kind.Aggressive():
		target = top + unit
	default:
		return 0, fmt.Errorf("%w: unknown kind %q", ErrProtocolViolation, kind)
	}
	size := target - betOn
	if size <= 0 {
		return 0, fmt.Errorf("%w: %s computes non-positive bet %d (on %d, off %d)", ErrProtocolViolation, kind, size, betOn, betOff)
	}
	return size, nil
}

// BetsThisRound counts bet units already in on the street.
func BetsThisRound(round Round, betOn, betOff int) int {
	top := betOff
	if betOn > top {
		top = betOn
	}
	return top / round.Unit(SmallBet, BigBet)
}

func containsKind(ks []ActionKind, k ActionKind) bool {
	for _, x := range ks {
		if x == k {
			return true
		}
	}
	return false
}
