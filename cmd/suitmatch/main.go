// cmd/suitmatch is a terminal client that plays sessions locally.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/jason-s-yu/suitmatch/internal/game"
	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	"github.com/sirupsen/logrus"
)

func main() {
	seedFlag := flag.Int64("seed", 0, "random seed, 0 for time-seeded")
	reshufflesFlag := flag.Int("reshuffles", game.DefaultHouseRules().Reshuffles, "reshuffles per game")
	logFlag := flag.String("log", "", "write the session log to this file")
	flag.Parse()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	if *logFlag != "" {
		f, err := os.OpenFile(*logFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			pterm.Error.Printfln("could not open log file: %v", err)
			os.Exit(1)
		}
		defer f.Close()
		logger.SetOutput(f)
		logger.SetLevel(logrus.DebugLevel)
	}

	rules := game.DefaultHouseRules()
	rules.Reshuffles = *reshufflesFlag
	if err := rules.Validate(); err != nil {
		pterm.Error.Printfln("invalid rules: %v", err)
		os.Exit(1)
	}

	title, err := pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("Suit", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("match", pterm.FgDarkGray.ToStyle()),
	).Srender()
	if err != nil {
		logger.WithError(err).Warn("failed to render title")
	}
	pterm.Print(title)

	rng := game.NewRand(*seedFlag)
	player := uuid.New()
	for {
		t, err := game.NewTable(player, rules, rng, logger)
		if err != nil {
			if errors.Is(err, game.ErrDealExhausted) {
				pterm.Error.Println("No playable deal could be found.")
			} else {
				pterm.Error.Printfln("Could not deal: %v", err)
			}
			os.Exit(1)
		}
		t.CheckInvariants = true
		t.Open()

		if n := t.Session().DealAttempts; n > 0 {
			pterm.Info.Printfln("Redealt %d time(s) to find a playable opening hand.", n)
		}

		playSession(t)

		again, _ := pterm.DefaultInteractiveConfirm.WithDefaultText("Play again?").WithDefaultValue(true).Show()
		if !again {
			break
		}
	}
	pterm.Println("Thank you for playing...")
}

// playSession runs the prompt loop until the session is over.
func playSession(t *game.Table) {
	var last []pterm.Panel
	for {
		s := t.Session()
		printState(s, last...)
		if s.IsOver() {
			printGameOver(s)
			return
		}

		options, moves := actionOptions(s)
		selected, err := pterm.DefaultInteractiveSelect.
			WithDefaultText("Select your next action").
			WithOptions(options).
			Show()
		if err != nil {
			pterm.Error.Printfln("input error: %v", err)
			t.Concede()
			return
		}

		last = nil
		switch idx := moves[selected]; idx {
		case moveReshuffle:
			_, ok := t.Reshuffle()
			last = append(last, actionPanel(ok, "Hand reshuffled."))
		case moveTracker:
			printTracker(s.Tracker())
		case moveEnd:
			if confirm, _ := pterm.DefaultInteractiveConfirm.WithDefaultText("Concede this game?").Show(); confirm {
				t.Concede()
			}
		default:
			card := s.Hand[idx]
			_, ok := t.Play(idx)
			last = append(last, actionPanel(ok, fmt.Sprintf("Played %s.", cardLabel(card))))
		}
	}
}

const (
	moveReshuffle = -1 - iota
	moveTracker
	moveEnd
)

// actionOptions lists the moves available in s. moves maps each option to a hand index or one of
// the move constants.
func actionOptions(s game.Session) ([]string, map[string]int) {
	var options []string
	moves := make(map[string]int)
	add := func(label string, move int) {
		options = append(options, label)
		moves[label] = move
	}
	for _, idx := range s.PlayableIndices() {
		add(fmt.Sprintf("Play %s (slot %d)", s.Hand[idx], idx+1), idx)
	}
	if s.CanReshuffle() {
		add(fmt.Sprintf("Reshuffle hand (%d left)", s.ReshufflesRemaining), moveReshuffle)
	}
	add("Show card tracker", moveTracker)
	add("End game", moveEnd)
	return options, moves
}
