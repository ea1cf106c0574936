package blackjack

import "github.com/playperu/arcaderooms/internal/game/cards"

type PlayerView struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Status  Status       `json:"status"`
	Hand    []cards.View `json:"hand"`
	Total   int          `json:"total"`
	Outcome Outcome      `json:"outcome,omitempty"`
	Drink   int          `json:"drink,omitempty"`
	Give    int          `json:"give,omitempty"`
}

type View struct {
	Phase     Phase        `json:"phase"`
	Turn      string       `json:"currentTurnPlayerId,omitempty"`
	Players   []PlayerView `json:"players"`
	Bank      []cards.View `json:"bank"`
	BankTotal int          `json:"bankTotal"`
	DeckCount int          `json:"deckCount"`
}

// View projects the table for one viewer. Blackjack hands are dealt face
// up, so only the bank's hole card is ever concealed.
func (t *Table) View(viewer string) View {
	v := View{
		Phase:     t.Phase,
		Turn:      t.Turn,
		Players:   make([]PlayerView, len(t.Players)),
		DeckCount: len(t.Deck),
	}
	for i, p := range t.Players {
		pv := PlayerView{
			ID:     p.ID,
			Name:   p.Name,
			Status: p.Status,
			Hand:   cards.Show(p.Hand),
			Total:  Score(p.Hand),
		}
		if o := t.Outcome(p.ID); o != OutcomeNone {
			pv.Outcome = o
			pv.Drink, pv.Give = o.Shots()
		}
		v.Players[i] = pv
	}

	visible := t.Bank
	v.Bank = cards.Show(t.Bank)
	if t.BankHidden && len(t.Bank) > 1 {
		visible = t.Bank[:1]
		v.Bank = append(cards.Show(t.Bank[:1]), cards.Conceal(t.Bank[1:2])...)
		v.Bank = append(v.Bank, cards.Show(t.Bank[2:])...)
	}
	v.BankTotal = Score(visible)
	return v
}
