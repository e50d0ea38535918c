package sink

import (
	"strconv"

	"drawbench/server/engine"
)

// Header is the flattened action row layout.
var Header = []string{
	"match_id", "hand_id", "seq",
	"hand", "draws_left", "best_draw", "hand_after",
	"bet_model", "value_heuristic", "position", "num_cards_kept", "num_opponent_kept",
	"action", "pot_size", "bet_size", "pot_odds", "bet_this_hand",
	"actions_this_round", "actions_full_hand",
	"total_bet", "result", "margin_bet", "margin_result",
}

// Row flattens one action. Card lists are "[As,Kd]"; empty draw fields stay blank.
func Row(matchID, handID string, seq int, a engine.Action) []string {
	cards := func(cs []engine.Card) string {
		if len(cs) == 0 {
			return ""
		}
		return engine.FormatCards(cs)
	}
	itoa := strconv.Itoa
	ftoa := func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
	return []string{
		matchID, handID, itoa(seq),
		cards(a.Hand), itoa(a.DrawsLeft), cards(a.BestDraw), cards(a.HandAfter),
		a.BetModel, ftoa(a.Value), a.Actor.String(), itoa(a.CardsKept), itoa(a.OpponentKept),
		string(a.Kind), itoa(a.PotSize), itoa(a.BetSize), ftoa(a.PotOdds), itoa(a.BetThisHand),
		a.RoundPattern, a.HandPattern,
		itoa(a.TotalBet), itoa(a.Result), itoa(a.MarginBet), itoa(a.MarginResult),
	}
}

// Rows flattens every action of a hand.
func Rows(h Hand) [][]string {
	out := make([][]string, len(h.Actions))
	for i, a := range h.Actions {
		out[i] = Row(h.MatchID, h.ID, i, a)
	}
	return out
}
