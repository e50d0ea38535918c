package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvariantViolation marks a dealer bug: state that legal play can never reach.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrProtocolViolation marks a decision or draw function breaking its contract.
	ErrProtocolViolation = errors.New("protocol violation")
	// ErrUnresolvedTie is returned when two hands rank exactly equal at showdown.
	ErrUnresolvedTie = errors.New("unresolved showdown tie")
	ErrMalformedCard = errors.New("malformed card")
	ErrBadHand       = errors.New("bad hand")
)

func invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...))
}

// ProtocolError carries enough of the hand to log and skip it.
type ProtocolError struct {
	HandID  string
	Round   Round
	Actor   Position
	Reason  string
	History []Action
	Err     error
}

func (e *ProtocolError) Error() string {
	msg := fmt.Sprintf("protocol violation in hand %s (%s, %s): %s", e.HandID, e.Round, e.Actor, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProtocolError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrProtocolViolation, e.Err}
	}
	return []error{ErrProtocolViolation}
}
