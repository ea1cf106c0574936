package blackjack

import "github.com/playperu/arcaderooms/internal/game/cards"

type Outcome string

const (
	OutcomeNone      Outcome = ""
	OutcomeBust      Outcome = "bust"
	OutcomeLoss      Outcome = "loss"
	OutcomePush      Outcome = "push"
	OutcomeWin       Outcome = "win"
	OutcomeBlackjack Outcome = "blackjack"
)

// Settle compares a finished hand with the bank.
func Settle(hand, bank []cards.Card) Outcome {
	p, b := Score(hand), Score(bank)
	switch {
	case p > 21:
		return OutcomeBust
	case IsNatural(hand) && IsNatural(bank):
		return OutcomePush
	case IsNatural(hand):
		return OutcomeBlackjack
	case b > 21, p > b:
		return OutcomeWin
	case p == b:
		return OutcomePush
	default:
		return OutcomeLoss
	}
}

// Lost reports whether the outcome counts against the player.
func (o Outcome) Lost() bool {
	return o == OutcomeBust || o == OutcomeLoss
}

// Shots is the drinking penalty for an outcome: how many the player drinks
// and how many they hand out.
func (o Outcome) Shots() (drink, give int) {
	switch o {
	case OutcomeBust:
		return 5, 0
	case OutcomeLoss:
		return 3, 0
	case OutcomeWin, OutcomeBlackjack:
		return 0, 3
	}
	return 0, 0
}

// Outcome returns the settled result for a player once the round is done.
func (t *Table) Outcome(id string) Outcome {
	p, ok := t.Player(id)
	if !ok || t.Phase != PhaseDone || p.Status == StatusWaiting {
		return OutcomeNone
	}
	return Settle(p.Hand, t.Bank)
}
