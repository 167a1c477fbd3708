package main

import (
	"strings"

	"github.com/jason-s-yu/suitmatch/internal/game"
	"github.com/jason-s-yu/suitmatch/internal/models"
	"github.com/pterm/pterm"
)

// cardLabel renders a card in its suit colour.
func cardLabel(c models.Card) string {
	if c.Suit.IsRed() {
		return pterm.LightRed(c.String())
	}
	return pterm.LightWhite(c.String())
}

// printState prints the base card, the hand and the counters, followed by any extra panels.
func printState(s game.Session, additionalPanel ...pterm.Panel) {
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)

	base := pterm.Panel{Data: pbox.WithTitle(pterm.LightYellow("|BASE|")).WithTitleTopCenter().Sprint(cardLabel(s.Base))}

	var hand []string
	for _, c := range s.Hand {
		label := cardLabel(c)
		if !s.IsOver() && game.IsPlayable(c, s.Base) {
			label = pterm.BgGreen.Sprint(" " + c.String() + " ")
		}
		hand = append(hand, label)
	}
	handBox := pterm.Panel{Data: pbox.WithTitle(pterm.LightCyan("|HAND|")).WithTitleTopLeft().Sprint(strings.Join(hand, "  "))}

	counters := pterm.Sprintfln("Deck: %d", s.DeckSize()) +
		pterm.Sprintfln("Discarded: %d", s.DiscardedCount) +
		pterm.Sprintf("Reshuffles: %d", s.ReshufflesRemaining)
	stats := pterm.Panel{Data: pbox.WithTitle("|TABLE|").WithTitleTopLeft().Sprint(counters)}

	dashboard := []pterm.Panel{handBox}
	dashboard = append(dashboard, additionalPanel...)

	pterm.DefaultPanel.WithPanels([][]pterm.Panel{
		{base, stats},
		dashboard,
	}).Render()
}

// actionPanel reports the result of the last move.
func actionPanel(applied bool, msg string) pterm.Panel {
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	if !applied {
		msg = pterm.LightRed("That move is not allowed.")
	}
	return pterm.Panel{Data: pbox.WithTitle(pterm.LightYellow("|LAST ACTION|")).WithTitleTopCenter().Sprint(msg)}
}

// printTracker shows where every card is: in the deck, in hand or on the pile.
func printTracker(tr game.Tracker) {
	header := []string{""}
	for rank := models.MinRank; rank <= models.MaxRank; rank++ {
		header = append(header, models.RankName(rank))
	}
	data := [][]string{header}
	for _, row := range tr.Rows {
		symbol := row.Symbol
		if row.Target {
			symbol = pterm.BgGreen.Sprint(symbol)
		}
		line := []string{symbol}
		for i, loc := range row.Ranks {
			var cell string
			switch loc {
			case game.LocationDiscarded:
				cell = pterm.Gray("x")
			case game.LocationHand:
				cell = pterm.LightCyan("H")
			default:
				cell = "."
			}
			if loc != game.LocationDiscarded && row.Matches[i] {
				cell = pterm.LightGreen(cell)
			}
			line = append(line, cell)
		}
		data = append(data, line)
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	pterm.Info.Println("x discarded, H in hand, . unseen; green cards would match the base card")
}

// printGameOver explains how the session ended.
func printGameOver(s game.Session) {
	switch s.EndReason {
	case game.EndReasonCleared:
		pterm.Success.Printfln("Every card played! %d discards.", s.DiscardedCount)
	case game.EndReasonStuck:
		pterm.Error.Printfln("No playable card and no way to recover. %d discards, %d cards left in the deck.", s.DiscardedCount, s.DeckSize())
	case game.EndReasonConceded:
		pterm.Warning.Printfln("Game conceded after %d discards.", s.DiscardedCount)
	}
}
