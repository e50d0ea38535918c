package main

import (
	"fmt"

	"github.com/pterm/pterm"

	"drawbench/server/engine"
	"drawbench/server/match"
	"drawbench/server/store"
)

func participants(sum *match.Summary) []store.Participant {
	elo := [2]float64{sum.Elo.A, sum.Elo.B}
	out := make([]store.Participant, 0, 2)
	for i, label := range []string{"A", "B"} {
		p := sum.Players[i]
		out = append(out, store.Participant{
			Label:       label,
			Name:        p.Name,
			HandsButton: p.Button.Hands,
			HandsBlind:  p.Blind.Hands,
			Wins:        p.Overall.Wins,
			NetChips:    p.Overall.NetChips,
			Checks:      p.Actions.Check,
			Calls:       p.Actions.Call,
			Bets:        p.Actions.Bet,
			Raises:      p.Actions.Raise,
			Folds:       p.Actions.Fold,
			Elo:         elo[i],
		})
	}
	return out
}

func pct(n, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", 100.0*float64(n)/float64(total))
}

func printSummary(sum *match.Summary) {
	pterm.DefaultSection.Println("Results")
	if sum.Stopped {
		pterm.Warning.Printfln("stopped early after %d of %d hands", sum.Played+sum.Aborted+sum.Voided, sum.Planned)
	}

	elo := [2]float64{sum.Elo.A, sum.Elo.B}
	players := pterm.TableData{{"", "player", "hands", "net", "bb/100", "button net", "blind net", "wins", "elo"}}
	for i, label := range []string{"A", "B"} {
		p := sum.Players[i]
		players = append(players, []string{
			label, p.Name,
			fmt.Sprint(p.Overall.Hands),
			fmt.Sprintf("%+d", p.Overall.NetChips),
			fmt.Sprintf("%+.1f", p.Overall.BBPer100(engine.BigBlind)),
			fmt.Sprintf("%+d", p.Button.NetChips),
			fmt.Sprintf("%+d", p.Blind.NetChips),
			fmt.Sprint(p.Overall.Wins),
			fmt.Sprintf("%.1f", elo[i]),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(players).Render()

	pterm.DefaultSection.WithLevel(2).Println("Action mix")
	mix := pterm.TableData{{"", "check", "call", "bet", "raise", "fold", "AF", "draws", "cards drawn"}}
	for i, label := range []string{"A", "B"} {
		t := sum.Players[i].Actions
		n := t.Total()
		mix = append(mix, []string{
			label,
			fmt.Sprintf("%d (%s)", t.Check, pct(t.Check, n)),
			fmt.Sprintf("%d (%s)", t.Call, pct(t.Call, n)),
			fmt.Sprintf("%d (%s)", t.Bet, pct(t.Bet, n)),
			fmt.Sprintf("%d (%s)", t.Raise, pct(t.Raise, n)),
			fmt.Sprintf("%d (%s)", t.Fold, pct(t.Fold, n)),
			fmt.Sprintf("%.2f", t.AF()),
			fmt.Sprint(t.Draws),
			fmt.Sprint(t.CardsDrawn),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(mix).Render()

	pterm.DefaultSection.WithLevel(2).Println("Seats")
	bm, bs := match.MeanStdev(sum.ButtonResults)
	lm, ls := match.MeanStdev(sum.BlindResults)
	am, as := match.MeanStdev(sum.AResults)
	seats := pterm.TableData{
		{"", "mean", "stdev"},
		{"button", fmt.Sprintf("%+.2f", bm), fmt.Sprintf("%.2f", bs)},
		{"blind", fmt.Sprintf("%+.2f", lm), fmt.Sprintf("%.2f", ls)},
		{"A", fmt.Sprintf("%+.2f", am), fmt.Sprintf("%.2f", as)},
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(seats).Render()

	wlo, whi := sum.WinCI()
	blo, bhi := sum.MarginCI(1000)
	pterm.Info.Printfln("hands=%d showdowns=%d folds=%d ties=%d aborted=%d voided=%d sink errors=%d",
		sum.Played, sum.Showdowns, sum.Folds, sum.Ties, sum.Aborted, sum.Voided, sum.SinkErrors)
	pterm.Info.Printfln("A win rate 95%% CI (Wilson) = [%.3f, %.3f]", wlo, whi)
	pterm.Info.Printfln("A bb/hand 95%% CI (bootstrap) = [%+.3f, %+.3f]", blo, bhi)
}
