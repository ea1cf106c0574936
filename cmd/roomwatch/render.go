package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/playperu/arcaderooms/internal/game/blackjack"
	"github.com/playperu/arcaderooms/internal/game/cards"
	"github.com/playperu/arcaderooms/internal/game/shedding"
	"github.com/playperu/arcaderooms/internal/room"
)

func render(v *room.View) (string, error) {
	if v == nil {
		return "", fmt.Errorf("state frame without a room")
	}
	title := fmt.Sprintf("|%s %s v%d|", strings.ToUpper(string(v.Game)), v.Code, v.Version)

	var body string
	var err error
	switch {
	case v.Blackjack != nil:
		body, err = renderBlackjack(v.Blackjack, v.HostID)
	case v.Vandtia != nil:
		body, err = renderVandtia(v.Vandtia, v.HostID)
	default:
		return "", fmt.Errorf("room %s has no table", v.Code)
	}
	if err != nil {
		return "", err
	}
	box := pterm.DefaultBox.WithHorizontalPadding(2).WithTitle(pterm.LightYellow(title)).WithTitleTopCenter()
	return box.Sprint(body), nil
}

func renderBlackjack(t *blackjack.View, host string) (string, error) {
	data := pterm.TableData{{"", "Player", "Status", "Hand", "Total", "Result"}}
	for _, p := range t.Players {
		result := string(p.Outcome)
		if p.Outcome != blackjack.OutcomeNone {
			result = fmt.Sprintf("%s (drink %d, give %d)", p.Outcome, p.Drink, p.Give)
		}
		data = append(data, []string{
			marker(p.ID, t.Turn, host),
			p.Name,
			string(p.Status),
			hand(p.Hand),
			strconv.Itoa(p.Total),
			result,
		})
	}
	players, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", err
	}
	header := pterm.Sprintfln("Phase: %s   Shoe: %d", pterm.LightCyan(t.Phase), t.DeckCount)
	bank := pterm.Sprintfln("Bank: %s (%d)", hand(t.Bank), t.BankTotal)
	return header + bank + "\n" + players, nil
}

func renderVandtia(t *shedding.View, host string) (string, error) {
	data := pterm.TableData{{"", "Player", "Hand", "Face up", "Face down", "State"}}
	for _, p := range t.Players {
		state := "waiting"
		switch {
		case p.Out:
			state = "out"
		case p.InRound && p.Ready:
			state = "ready"
		case p.InRound:
			state = "setting up"
		}
		data = append(data, []string{
			marker(p.ID, t.Turn, host),
			p.Name,
			hand(p.Hand),
			hand(p.FaceUp),
			strconv.Itoa(len(p.FaceDown)),
			state,
		})
	}
	players, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(pterm.Sprintfln("Phase: %s   Stock: %d   Burned: %d", pterm.LightCyan(t.Phase), t.DeckCount, t.BurnedCount))
	b.WriteString(pterm.Sprintfln("Pile: %s", top(t.Pile, 4)))
	if t.LastAction != "" {
		b.WriteString(pterm.Sprintfln("Last: %s", t.LastAction))
	}
	if t.WinnerName != "" {
		b.WriteString(pterm.Sprintfln("Winner: %s", pterm.LightGreen(t.WinnerName)))
	}
	b.WriteString("\n")
	b.WriteString(players)
	return b.String(), nil
}

// marker flags the turn holder with > and the host with *.
func marker(id, turn, host string) string {
	var m string
	if id == turn {
		m += ">"
	}
	if id == host {
		m += "*"
	}
	return m
}

func hand(cs []cards.View) string {
	if len(cs) == 0 {
		return "-"
	}
	labels := make([]string, len(cs))
	for i, c := range cs {
		labels[i] = label(c)
	}
	return strings.Join(labels, " ")
}

// top shows the last n cards of a pile, newest last.
func top(pile []cards.View, n int) string {
	if len(pile) <= n {
		return hand(pile)
	}
	return fmt.Sprintf("(+%d) %s", len(pile)-n, hand(pile[len(pile)-n:]))
}

func label(c cards.View) string {
	if c.Hidden {
		return "##"
	}
	return c.Label + c.Suit.Symbol()
}
