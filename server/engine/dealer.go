package engine

import (
	"context"
	"errors"
	"fmt"
)

// State is the dealer's phase within a hand.
type State int

// Hands only move forward through these states. Resolved and Aborted are terminal.
const (
	NotStarted State = iota
	BlindsPosted
	Betting
	Drawing
	ShowdownPending
	HandOverByFold
	Resolved
	Aborted
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case BlindsPosted:
		return "blinds_posted"
	case Betting:
		return "betting"
	case Drawing:
		return "drawing"
	case ShowdownPending:
		return "showdown_pending"
	case HandOverByFold:
		return "hand_over_by_fold"
	case Resolved:
		return "resolved"
	case Aborted:
		return "aborted"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type seat struct {
	player        Player
	hand          *Hand
	live          bool
	betThisHand   int
	betThisStreet int
	cardsKept     int
	value         float64
}

// Dealer runs one hand between a button seat and a blind seat.
type Dealer struct {
	ID     string
	deck   *Deck
	oracle ValueOracle

	seats [2]seat // indexed by Position
	on    Position
	round Round
	state State
	pot   int

	history []Action
	street  []Action
}

// HandSummary is a settled hand.
type HandSummary struct {
	ID       string    `json:"hand_id"`
	Players  [2]string `json:"players"` // button, blind
	Actions  []Action  `json:"actions"`
	Pot      int       `json:"pot"`
	Hands    [2][]Card `json:"hands"`
	Winnings [2]int    `json:"winnings"`
	Results  [2]int    `json:"results"` // net chips, button then blind
	Showdown bool      `json:"showdown"`
	Tie      bool      `json:"tie"`
	Winner   Position  `json:"winner"`
	Rounds   Round     `json:"last_round"`
}

// NewDealer seats two players. oracle may be nil.
func NewDealer(id string, deck *Deck, button, blind Player, oracle ValueOracle) *Dealer {
	d := &Dealer{ID: id, deck: deck, oracle: oracle}
	d.seats[Button].player = button
	d.seats[Blind].player = blind
	return d
}

// State is the current phase.
func (d *Dealer) State() State { return d.state }

// Round is the street being played.
func (d *Dealer) Round() Round { return d.round }

// Pot is every chip committed so far, blinds included.
func (d *Dealer) Pot() int { return d.pot }

// ActionOn is the seat to act.
func (d *Dealer) ActionOn() Position { return d.on }

// Live reports whether the seat has not folded.
func (d *Dealer) Live(p Position) bool { return d.seats[p].live }

// Committed is what the seat has put in this hand.
func (d *Dealer) Committed(p Position) int {
	return d.seats[p].betThisHand
}

// StreetBet is what the seat has put in on the current street.
func (d *Dealer) StreetBet(p Position) int { return d.seats[p].betThisStreet }

// CardsKept is how many cards the seat held at its last draw.
func (d *Dealer) CardsKept(p Position) int { return d.seats[p].cardsKept }

// Hand returns the seat's current five cards.
func (d *Dealer) Hand(p Position) []Card {
	if d.seats[p].hand == nil {
		return nil
	}
	return append([]Card(nil), d.seats[p].hand.Final...)
}

// History returns the hand's actions so far.
func (d *Dealer) History() []Action { return append([]Action(nil), d.history...) }

func (d *Dealer) bothLive() bool { return d.seats[Button].live && d.seats[Blind].live }

// Deal gives five cards to the blind, then five to the button.
func (d *Dealer) Deal() error {
	if d.state != NotStarted {
		return invariantf("deal in state %s", d.state)
	}
	for _, p := range []Position{Blind, Button} {
		cards, err := d.deck.Deal(HandSize)
		if err != nil {
			return err
		}
		h, err := NewHand(cards)
		if err != nil {
			return invariantf("dealt hand: %v", err)
		}
		d.seats[p] = seat{player: d.seats[p].player, hand: h, live: true, value: BaselineValue}
	}
	return nil
}

// PostBlinds has the blind post and pass, then the button post and keep the action.
func (d *Dealer) PostBlinds() error {
	if d.state != NotStarted || d.seats[Blind].hand == nil {
		return invariantf("post blinds in state %s", d.state)
	}
	d.round = PreDraw
	d.on = Blind
	d.apply(d.record(newAction(PostBigBlind, Blind, d.pot, BigBlind)))
	d.on = Button
	d.apply(d.record(newAction(PostSmallBlind, Button, d.pot, SmallBlind)))
	d.state = BlindsPosted
	return nil
}

func (d *Dealer) record(a Action) Action {
	s, o := &d.seats[a.Actor], &d.seats[a.Actor.Other()]
	a.Hand = append([]Card(nil), s.hand.Final...)
	a.DrawsLeft = d.round.DrawsLeft()
	a.CardsKept = s.cardsKept
	a.OpponentKept = o.cardsKept
	a.BetModel = s.player.Name()
	a.Value = s.value
	a.BetThisHand = s.betThisHand
	a.RoundPattern = BetPattern(d.street)
	a.HandPattern = BetPattern(d.history)
	return a
}

func (d *Dealer) apply(a Action) {
	s := &d.seats[a.Actor]
	d.pot += a.BetSize
	s.betThisHand += a.BetSize
	s.betThisStreet += a.BetSize
	if a.Kind == Fold {
		s.live = false
	}
	d.history = append(d.history, a)
	d.street = append(d.street, a)
}

func (d *Dealer) protocol(reason string, err error) *ProtocolError {
	return &ProtocolError{
		HandID:  d.ID,
		Round:   d.round,
		Actor:   d.on,
		Reason:  reason,
		History: d.History(),
		Err:     err,
	}
}

// refreshValues asks the oracle for both seats' values at the start of a street.
func (d *Dealer) refreshValues(ctx context.Context) error {
	if d.oracle == nil {
		return nil
	}
	for _, p := range []Position{Blind, Button} {
		s := &d.seats[p]
		v, err := d.oracle.EstimateHandValue(ctx, s.hand.Final, d.round.DrawsLeft())
		if err != nil {
			return d.protocol("value oracle", err)
		}
		s.value = v
	}
	return nil
}

// maxStreetActions bounds a street: call, then a bet and three raises each answered.
const maxStreetActions = 2*BetCap + 2

// PlayBettingRound runs the current street until it closes.
func (d *Dealer) PlayBettingRound(ctx context.Context) error {
	if d.state != BlindsPosted && d.state != Betting {
		return invariantf("betting in state %s", d.state)
	}
	d.state = Betting
	for n := 0; ; n++ {
		if !d.bothLive() {
			return nil
		}
		if n > maxStreetActions {
			return invariantf("street %s did not close after %d actions", d.round, n)
		}
		me, opp := &d.seats[d.on], &d.seats[d.on.Other()]
		legal, err := LegalActions(d.round, me.betThisStreet, opp.betThisStreet, SmallBet, BigBet, BetCap)
		if err != nil {
			return err
		}
		if len(legal) == 0 {
			return nil
		}

		kind, err := me.player.ChooseAction(ctx, Decision{
			HandID:        d.ID,
			Legal:         legal,
			Round:         d.round,
			BetsThisRound: BetsThisRound(d.round, me.betThisStreet, opp.betThisStreet),
			HasButton:     d.on == Button,
			PotSize:       d.pot,
			ToCall:        opp.betThisStreet - me.betThisStreet,
			History:       append([]Action(nil), d.street...),
			CardsKept:     me.cardsKept,
			OpponentKept:  opp.cardsKept,
			Hand:          append([]Card(nil), me.hand.Final...),
			DrawsLeft:     d.round.DrawsLeft(),
			Value:         me.value,
		})
		if err != nil {
			return d.protocol("decision function failed", err)
		}
		if !containsKind(legal, kind) {
			return d.protocol(fmt.Sprintf("chose %q, legal %v", kind, legal), nil)
		}
		size, err := BetSize(kind, d.round, me.betThisStreet, opp.betThisStreet)
		if err != nil {
			return d.protocol("bet size", err)
		}

		var closes bool
		switch {
		case kind == Fold:
			closes = true
		case kind.IsCall():
			// The button completing the big blind leaves the blind its option.
			closes = !(d.round == PreDraw && opp.betThisStreet == BigBlind)
		case kind == Check:
			closes = (d.round == PreDraw && d.on == Blind) || (d.round != PreDraw && d.on == Button)
		}

		d.apply(d.record(newAction(kind, d.on, d.pot, size)))
		d.on = d.on.Other()
		if closes {
			return nil
		}
	}
}

// DrawPhase lets the blind, then the button, discard and draw.
func (d *Dealer) DrawPhase(ctx context.Context) error {
	if d.state != Betting || d.round == Draw3 {
		return invariantf("draw in state %s round %s", d.state, d.round)
	}
	if !d.bothLive() {
		return invariantf("draw with a folded seat")
	}
	d.state = Drawing
	order := []Position{Blind, Button}
	for _, p := range order {
		d.on = p
		s, o := &d.seats[p], &d.seats[p.Other()]
		discards, err := s.player.ChooseDiscards(ctx, DrawRequest{
			HandID:       d.ID,
			Hand:         append([]Card(nil), s.hand.Dealt...),
			DrawsLeft:    d.round.DrawsLeft(),
			HasButton:    p == Button,
			PotSize:      d.pot,
			OpponentKept: o.cardsKept,
			Value:        s.value,
		})
		if err != nil {
			return d.protocol("draw function failed", err)
		}
		held, err := s.hand.Draw(discards)
		if err != nil {
			return d.protocol("bad discards", err)
		}
		d.deck.TakeDiscards(discards)
		fresh, err := d.deck.Deal(len(discards))
		if err != nil {
			return err
		}
		if err := s.hand.Complete(fresh); err != nil {
			return err
		}
		s.cardsKept = len(held)
	}
	for _, p := range order {
		s, o := &d.seats[p], &d.seats[p.Other()]
		a := newAction(Draw, p, d.pot, 0)
		a.Hand = append([]Card(nil), s.hand.Dealt...)
		a.BestDraw = append([]Card(nil), s.hand.Held...)
		a.HandAfter = append([]Card(nil), s.hand.Final...)
		a.DrawsLeft = d.round.DrawsLeft()
		a.CardsKept = s.cardsKept
		a.OpponentKept = o.cardsKept
		a.BetModel = s.player.Name()
		a.Value = s.value
		a.BetThisHand = s.betThisHand
		a.HandPattern = BetPattern(d.history)
		d.history = append(d.history, a)
	}
	for p := range d.seats {
		d.seats[p].hand.NextCycle()
		d.seats[p].betThisStreet = 0
	}
	d.street = nil
	d.round++
	d.on = Blind
	d.state = Betting
	return nil
}

// Play runs the hand from the deal to the point where it can be resolved.
func (d *Dealer) Play(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			d.state = Aborted
		}
	}()
	if err := d.Deal(); err != nil {
		return err
	}
	if err := d.PostBlinds(); err != nil {
		return err
	}
	for {
		if err := d.refreshValues(ctx); err != nil {
			return err
		}
		if err := d.PlayBettingRound(ctx); err != nil {
			return err
		}
		if !d.bothLive() {
			d.state = HandOverByFold
			return nil
		}
		if d.round == Draw3 {
			d.state = ShowdownPending
			return nil
		}
		if err := d.DrawPhase(ctx); err != nil {
			return err
		}
	}
}

// Winnings splits the pot by seat. A showdown tie surfaces as ErrUnresolvedTie.
func (d *Dealer) Winnings(c Cashier) ([2]int, error) {
	var w [2]int
	if d.state != HandOverByFold && d.state != ShowdownPending {
		return w, invariantf("resolve in state %s", d.state)
	}
	btn, bld := d.seats[Button].live, d.seats[Blind].live
	switch {
	case btn && !bld:
		w[Button] = d.pot
	case bld && !btn:
		w[Blind] = d.pot
	case !btn && !bld:
		return w, invariantf("both seats folded")
	default:
		i, err := c.Showdown(d.seats[Button].hand.Final, d.seats[Blind].hand.Final)
		if err != nil {
			return w, fmt.Errorf("hand %s: %w", d.ID, err)
		}
		w[i] = d.pot
	}
	return w, nil
}

// SplitPot halves the pot; an odd chip goes to the button.
func SplitPot(pot int) [2]int {
	half := pot / 2
	var w [2]int
	w[Button] = half + pot%2
	w[Blind] = half
	return w
}

// Settle back-fills every action and closes the hand.
func (d *Dealer) Settle(w [2]int) (HandSummary, error) {
	if d.state != HandOverByFold && d.state != ShowdownPending {
		return HandSummary{}, invariantf("settle in state %s", d.state)
	}
	if w[Button] < 0 || w[Blind] < 0 || w[Button]+w[Blind] != d.pot {
		return HandSummary{}, invariantf("winnings %v do not sum to pot %d", w, d.pot)
	}
	if d.seats[Button].betThisHand+d.seats[Blind].betThisHand != d.pot {
		return HandSummary{}, invariantf("pot %d does not match committed chips", d.pot)
	}

	sum := HandSummary{
		ID:       d.ID,
		Pot:      d.pot,
		Winnings: w,
		Showdown: d.state == ShowdownPending,
		Tie:      w[Button] > 0 && w[Blind] > 0,
		Rounds:   d.round,
	}
	var seen [2]bool
	for i := range d.history {
		a := &d.history[i]
		s := d.seats[a.Actor]
		a.settle(s.betThisHand, w[a.Actor])
		if !seen[a.Actor] {
			sum.Results[a.Actor] = a.MarginResult
			seen[a.Actor] = true
		}
	}
	if sum.Results[Button]+sum.Results[Blind] != 0 {
		return HandSummary{}, invariantf("results %v are not zero-sum", sum.Results)
	}
	for p := range d.seats {
		sum.Players[p] = d.seats[p].player.Name()
		sum.Hands[p] = append([]Card(nil), d.seats[p].hand.Final...)
	}
	switch {
	case sum.Tie:
		sum.Winner = NoWinner
	case w[Button] > 0:
		sum.Winner = Button
	default:
		sum.Winner = Blind
	}
	sum.Actions = d.History()
	d.state = Resolved
	return sum, nil
}

// Resolve settles the hand, splitting a tied pot when split is true.
func (d *Dealer) Resolve(c Cashier, split bool) (HandSummary, error) {
	w, err := d.Winnings(c)
	if errors.Is(err, ErrUnresolvedTie) && split {
		w, err = SplitPot(d.pot), nil
	}
	if err != nil {
		return HandSummary{}, err
	}
	return d.Settle(w)
}
