// Package cards models playing cards and the ordered zones (deck, pile,
// hands) they move between.
package cards

import (
	"math/rand/v2"
	"slices"
	"sort"

	"github.com/google/uuid"
)

type Suit string

const (
	Spade   Suit = "SPADE"
	Heart   Suit = "HEART"
	Club    Suit = "CLUB"
	Diamond Suit = "DIAMOND"
)

// Suits lists the four suits in deck-building order.
var Suits = []Suit{Spade, Heart, Club, Diamond}

func (s Suit) Symbol() string {
	switch s {
	case Spade:
		return "♠"
	case Heart:
		return "♥"
	case Club:
		return "♣"
	case Diamond:
		return "♦"
	}
	return "?"
}

// Face is one of the thirteen faces of a suit and the rank a game assigns it.
type Face struct {
	Rank  int
	Label string
}

// Card is a single physical card. ID is unique per instance so identical
// cards from different decks of a shoe stay distinguishable.
type Card struct {
	ID    string `json:"id"`
	Suit  Suit   `json:"suit"`
	Rank  int    `json:"rank"`
	Label string `json:"label"`
}

func (c Card) String() string {
	return c.Label + c.Suit.Symbol()
}

// New creates a card with a fresh instance id.
func New(s Suit, f Face) Card {
	return Card{ID: uuid.NewString(), Suit: s, Rank: f.Rank, Label: f.Label}
}

// NewDeck returns an unshuffled 52-card deck ranked by faces.
func NewDeck(faces []Face) []Card {
	deck := make([]Card, 0, len(Suits)*len(faces))
	for _, s := range Suits {
		for _, f := range faces {
			deck = append(deck, New(s, f))
		}
	}
	return deck
}

// NewShoe returns n decks shuffled together.
func NewShoe(n int, faces []Face, rng *rand.Rand) []Card {
	if n < 1 {
		n = 1
	}
	shoe := make([]Card, 0, n*len(Suits)*len(faces))
	for range n {
		shoe = append(shoe, NewDeck(faces)...)
	}
	Shuffle(shoe, rng)
	return shoe
}

// Shuffle permutes cs in place. A nil rng uses the global source.
func Shuffle(cs []Card, rng *rand.Rand) {
	swap := func(i, j int) { cs[i], cs[j] = cs[j], cs[i] }
	if rng == nil {
		rand.Shuffle(len(cs), swap)
		return
	}
	rng.Shuffle(len(cs), swap)
}

// Zone is an ordered run of cards. Index 0 is the top of a deck; the last
// element is the top of a pile.
type Zone []Card

// Draw removes and returns the first card.
func (z *Zone) Draw() (Card, bool) {
	if len(*z) == 0 {
		return Card{}, false
	}
	c := (*z)[0]
	*z = slices.Clone((*z)[1:])
	return c, true
}

// Push appends cards to the end of the zone.
func (z *Zone) Push(cs ...Card) {
	*z = append(*z, cs...)
}

// Top returns the last card.
func (z Zone) Top() (Card, bool) {
	if len(z) == 0 {
		return Card{}, false
	}
	return z[len(z)-1], true
}

// Index returns the position of the card with id, or -1.
func (z Zone) Index(id string) int {
	return slices.IndexFunc(z, func(c Card) bool { return c.ID == id })
}

// Has reports whether every id is present in the zone.
func (z Zone) Has(ids []string) bool {
	for _, id := range ids {
		if z.Index(id) < 0 {
			return false
		}
	}
	return true
}

// Take removes the cards with the given ids and returns them in the order
// requested. Nothing is removed unless all ids are present and distinct.
func (z *Zone) Take(ids []string) ([]Card, bool) {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] || z.Index(id) < 0 {
			return nil, false
		}
		seen[id] = true
	}
	taken := make([]Card, 0, len(ids))
	for _, id := range ids {
		taken = append(taken, (*z)[z.Index(id)])
	}
	*z = slices.DeleteFunc(slices.Clone(*z), func(c Card) bool { return seen[c.ID] })
	return taken, true
}

// RemoveAt removes and returns the card at i.
func (z *Zone) RemoveAt(i int) (Card, bool) {
	if i < 0 || i >= len(*z) {
		return Card{}, false
	}
	c := (*z)[i]
	*z = slices.Delete(slices.Clone(*z), i, i+1)
	return c, true
}

// Clear empties the zone and returns what it held.
func (z *Zone) Clear() []Card {
	out := *z
	*z = Zone{}
	return out
}

// SortByRank orders the zone ascending by rank, keeping suit order stable.
func (z Zone) SortByRank() {
	sort.SliceStable(z, func(i, j int) bool { return z[i].Rank < z[j].Rank })
}

// Clone returns an independent copy; a nil zone clones to an empty one.
func (z Zone) Clone() Zone {
	if z == nil {
		return Zone{}
	}
	return slices.Clone(z)
}

// IDs returns the instance ids in zone order.
func IDs(cs []Card) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}
	return ids
}
