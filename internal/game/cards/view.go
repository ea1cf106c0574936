package cards

// View is a card as one particular viewer is allowed to see it. Hidden
// cards keep their instance id so clients can animate them, nothing else.
type View struct {
	ID     string `json:"id"`
	Suit   Suit   `json:"suit,omitempty"`
	Rank   int    `json:"rank,omitempty"`
	Label  string `json:"label,omitempty"`
	Hidden bool   `json:"hidden,omitempty"`
}

func Show(cs []Card) []View {
	out := make([]View, len(cs))
	for i, c := range cs {
		out[i] = View{ID: c.ID, Suit: c.Suit, Rank: c.Rank, Label: c.Label}
	}
	return out
}

func Conceal(cs []Card) []View {
	out := make([]View, len(cs))
	for i, c := range cs {
		out[i] = View{ID: c.ID, Hidden: true}
	}
	return out
}
