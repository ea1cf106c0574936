package shedding

import "github.com/playperu/arcaderooms/internal/game/cards"

type PlayerView struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Hand      []cards.View `json:"hand"`
	HandCount int          `json:"handCount"`
	FaceUp    []cards.View `json:"faceUp"`
	FaceDown  []cards.View `json:"faceDown"`
	Ready     bool         `json:"ready"`
	InRound   bool         `json:"inRound"`
	Out       bool         `json:"out,omitempty"`
}

type View struct {
	Phase       Phase        `json:"phase"`
	Turn        string       `json:"currentTurnPlayerId,omitempty"`
	Players     []PlayerView `json:"players"`
	Pile        []cards.View `json:"pile"`
	DeckCount   int          `json:"deckCount"`
	BurnedCount int          `json:"burnedCount"`
	Winner      string       `json:"winnerId,omitempty"`
	WinnerName  string       `json:"winnerName,omitempty"`
	LastAction  string       `json:"lastAction,omitempty"`
}

// View projects the table for viewer: their own hand in full, everyone
// else's as backs. Face-down cards stay hidden from their owner too.
func (t *Table) View(viewer string) View {
	v := View{
		Phase:       t.Phase,
		Turn:        t.Turn,
		Players:     make([]PlayerView, len(t.Players)),
		Pile:        cards.Show(t.Pile),
		DeckCount:   len(t.Deck),
		BurnedCount: len(t.Burned),
		Winner:      t.Winner,
		WinnerName:  t.WinnerName,
		LastAction:  t.LastAction,
	}
	for i, p := range t.Players {
		hand := cards.Conceal(p.Hand)
		if p.ID == viewer {
			hand = cards.Show(p.Hand)
		}
		v.Players[i] = PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			Hand:      hand,
			HandCount: len(p.Hand),
			FaceUp:    cards.Show(p.FaceUp),
			FaceDown:  cards.Conceal(p.FaceDown),
			Ready:     p.Ready,
			InRound:   p.InRound,
			Out:       p.Out(),
		}
	}
	return v
}
