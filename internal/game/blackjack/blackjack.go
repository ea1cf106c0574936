// Package blackjack is the multiplayer blackjack engine. A Table is the
// whole game document; every exported method either applies one action or
// returns an error and leaves the table untouched.
package blackjack

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/playperu/arcaderooms/internal/game"
	"github.com/playperu/arcaderooms/internal/game/cards"
)

// Phase is the lifecycle stage of a table.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseShuffling  Phase = "shuffling"
	PhaseDealing    Phase = "dealing"
	PhasePlaying    Phase = "playing"
	PhaseDealerTurn Phase = "dealer_turn"
	PhaseDone       Phase = "done"
)

type Status string

const (
	// StatusWaiting marks a player seated after the current round was dealt.
	StatusWaiting   Status = "waiting"
	StatusPlaying   Status = "playing"
	StatusStand     Status = "stand"
	StatusBust      Status = "bust"
	StatusBlackjack Status = "blackjack"
)

// Faces ranks the thirteen faces for blackjack: ace 11, court cards 10.
var Faces = []cards.Face{
	{Rank: 11, Label: "A"},
	{Rank: 2, Label: "2"},
	{Rank: 3, Label: "3"},
	{Rank: 4, Label: "4"},
	{Rank: 5, Label: "5"},
	{Rank: 6, Label: "6"},
	{Rank: 7, Label: "7"},
	{Rank: 8, Label: "8"},
	{Rank: 9, Label: "9"},
	{Rank: 10, Label: "10"},
	{Rank: 10, Label: "J"},
	{Rank: 10, Label: "Q"},
	{Rank: 10, Label: "K"},
}

// ReshufflePolicy decides what happens when the shoe runs dry mid-round.
type ReshufflePolicy string

const (
	// RefillShoe appends a freshly shuffled shoe and keeps going.
	RefillShoe ReshufflePolicy = "refill"
	// ExhaustShoe refuses the draw; the dealer stops drawing.
	ExhaustShoe ReshufflePolicy = "exhaust"
)

type Rules struct {
	Decks          int             `json:"decks"`
	Reshuffle      ReshufflePolicy `json:"reshuffle"`
	DealerStandsOn int             `json:"dealerStandsOn"`
	MaxPlayers     int             `json:"maxPlayers"`
}

func DefaultRules() Rules {
	return Rules{
		Decks:          1,
		Reshuffle:      RefillShoe,
		DealerStandsOn: 17,
		MaxPlayers:     game.MaxPlayers,
	}
}

type Player struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Hand   cards.Zone `json:"hand"`
	Status Status     `json:"status"`
}

type Table struct {
	Rules   Rules      `json:"rules"`
	Phase   Phase      `json:"phase"`
	Players []Player   `json:"players"`
	Deck    cards.Zone `json:"deck"`
	Bank    cards.Zone `json:"bank"`
	// BankHidden conceals the bank's second card until the dealer plays.
	BankHidden bool `json:"bankHidden"`
	// Discards holds hands of players who left mid-round.
	Discards cards.Zone `json:"discards"`
	// ShoeSize is the number of cards put into play this round.
	ShoeSize int    `json:"shoeSize"`
	Turn     string `json:"currentTurnPlayerId,omitempty"`

	rng *rand.Rand
}

func New(rules Rules) *Table {
	if rules.Decks < 1 {
		rules.Decks = 1
	}
	if rules.DealerStandsOn == 0 {
		rules.DealerStandsOn = 17
	}
	if rules.MaxPlayers == 0 {
		rules.MaxPlayers = game.MaxPlayers
	}
	if rules.Reshuffle == "" {
		rules.Reshuffle = RefillShoe
	}
	return &Table{Rules: rules, Phase: PhaseIdle}
}

// UseRand sets the source used for shuffling. Nil means the global source.
func (t *Table) UseRand(r *rand.Rand) { t.rng = r }

// Score totals a hand, counting each ace as 1 instead of 11 while the
// total would otherwise bust.
func Score(hand []cards.Card) int {
	total, aces := 0, 0
	for _, c := range hand {
		total += c.Rank
		if c.Label == "A" {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// IsNatural reports a two-card 21.
func IsNatural(hand []cards.Card) bool {
	return len(hand) == 2 && Score(hand) == 21
}

func (t *Table) PlayerIDs() []string {
	ids := make([]string, len(t.Players))
	for i, p := range t.Players {
		ids[i] = p.ID
	}
	return ids
}

func (t *Table) Player(id string) (Player, bool) {
	i := t.index(id)
	if i < 0 {
		return Player{}, false
	}
	return t.Players[i], true
}

func (t *Table) index(id string) int {
	return slices.IndexFunc(t.Players, func(p Player) bool { return p.ID == id })
}

// Join seats a new player. Players joining mid-round wait for the next deal.
func (t *Table) Join(id, name string) error {
	if t.index(id) >= 0 {
		return game.ErrAlreadySeated
	}
	if len(t.Players) >= t.Rules.MaxPlayers {
		return game.ErrRoomFull
	}
	t.Players = append(t.Players, Player{ID: id, Name: name, Hand: cards.Zone{}, Status: StatusWaiting})
	return nil
}

// Leave removes a player. Their cards go to the discards, and if they held
// the turn it passes on, possibly to the dealer.
func (t *Table) Leave(id string) error {
	i := t.index(id)
	if i < 0 {
		return game.ErrUnknownPlayer
	}
	t.Discards.Push(t.Players[i].Hand...)
	t.Players = slices.Delete(t.Players, i, i+1)
	if t.Phase == PhasePlaying && (t.Turn == id || t.Turn == "") {
		t.advance()
	}
	return nil
}

// StartRound builds and shuffles a fresh shoe and deals a new round.
func (t *Table) StartRound() error {
	if t.Phase != PhaseIdle && t.Phase != PhaseDone {
		return game.ErrRoundInProgress
	}
	if len(t.Players) == 0 {
		return game.ErrNotEnoughPlayer
	}
	t.Phase = PhaseShuffling
	t.Deal(cards.NewShoe(t.Rules.Decks, Faces, t.rng))
	return nil
}

// Deal starts a round from a prepared shoe, top card first: two cards to
// each player in seat order, then two to the bank with the second hidden.
func (t *Table) Deal(shoe []cards.Card) {
	t.Phase = PhaseDealing
	t.Deck = cards.Zone(shoe).Clone()
	t.ShoeSize = len(shoe)
	t.Bank = cards.Zone{}
	t.Discards = cards.Zone{}
	t.Turn = ""

	for i := range t.Players {
		p := &t.Players[i]
		p.Hand = cards.Zone{}
		for range 2 {
			if c, err := t.draw(); err == nil {
				p.Hand.Push(c)
			}
		}
		p.Status = StatusPlaying
		if IsNatural(p.Hand) {
			p.Status = StatusBlackjack
		}
	}
	for range 2 {
		if c, err := t.draw(); err == nil {
			t.Bank.Push(c)
		}
	}
	t.BankHidden = true

	t.Phase = PhasePlaying
	t.advance()
}

// Hit draws one card for the player holding the turn.
func (t *Table) Hit(id string) error {
	i, err := t.actor(id)
	if err != nil {
		return err
	}
	c, err := t.draw()
	if err != nil {
		return err
	}
	p := &t.Players[i]
	p.Hand.Push(c)
	switch score := Score(p.Hand); {
	case score > 21:
		p.Status = StatusBust
	case score == 21:
		p.Status = StatusStand
	}
	if p.Status != StatusPlaying {
		t.advance()
	}
	return nil
}

// Stand ends the player's turn.
func (t *Table) Stand(id string) error {
	i, err := t.actor(id)
	if err != nil {
		return err
	}
	t.Players[i].Status = StatusStand
	t.advance()
	return nil
}

// ResolveDealer reveals the hidden bank card, draws to the stand threshold
// and finishes the round. The bank does not draw when every player busted.
func (t *Table) ResolveDealer() error {
	if t.Phase != PhaseDealerTurn {
		return fmt.Errorf("%w: dealer cannot play in phase %s", game.ErrInvalidAction, t.Phase)
	}
	t.BankHidden = false

	contested := slices.ContainsFunc(t.Players, func(p Player) bool {
		return p.Status == StatusStand || p.Status == StatusBlackjack
	})
	for contested && Score(t.Bank) < t.Rules.DealerStandsOn {
		c, err := t.draw()
		if err != nil {
			break
		}
		t.Bank.Push(c)
	}

	t.Phase = PhaseDone
	t.Turn = ""
	return nil
}

// actor validates that id may act now and returns its seat index.
func (t *Table) actor(id string) (int, error) {
	switch t.Phase {
	case PhasePlaying:
	case PhaseDone:
		return -1, game.ErrRoundOver
	default:
		return -1, fmt.Errorf("%w: no player turn in phase %s", game.ErrInvalidAction, t.Phase)
	}
	i := t.index(id)
	if i < 0 {
		return -1, game.ErrUnknownPlayer
	}
	if t.Turn != id || t.Players[i].Status != StatusPlaying {
		return -1, game.ErrNotYourTurn
	}
	return i, nil
}

// advance hands the turn to the first player still playing. Statuses only
// ever move away from playing, so seat order is preserved.
func (t *Table) advance() {
	for _, p := range t.Players {
		if p.Status == StatusPlaying {
			t.Turn = p.ID
			return
		}
	}
	t.Turn = ""
	t.Phase = PhaseDealerTurn
}

func (t *Table) draw() (cards.Card, error) {
	if len(t.Deck) == 0 {
		if t.Rules.Reshuffle != RefillShoe {
			return cards.Card{}, game.ErrDeckExhausted
		}
		fresh := cards.NewShoe(t.Rules.Decks, Faces, t.rng)
		t.Deck.Push(fresh...)
		t.ShoeSize += len(fresh)
	}
	c, _ := t.Deck.Draw()
	return c, nil
}

// Clone returns a deep copy that shares nothing mutable with t.
func (t *Table) Clone() *Table {
	c := *t
	c.Players = make([]Player, len(t.Players))
	for i, p := range t.Players {
		p.Hand = p.Hand.Clone()
		c.Players[i] = p
	}
	c.Deck = t.Deck.Clone()
	c.Bank = t.Bank.Clone()
	c.Discards = t.Discards.Clone()
	return &c
}

// Validate checks card conservation and turn validity.
func (t *Table) Validate() error {
	zones := [][]cards.Card{t.Deck, t.Bank, t.Discards}
	for _, p := range t.Players {
		zones = append(zones, p.Hand)
	}
	if err := cards.Audit(t.ShoeSize, zones...); err != nil {
		return err
	}
	if t.Turn != "" {
		p, ok := t.Player(t.Turn)
		if !ok || p.Status != StatusPlaying || t.Phase != PhasePlaying {
			return fmt.Errorf("%w: turn held by %q in phase %s", game.ErrInvalidAction, t.Turn, t.Phase)
		}
	}
	if t.Phase == PhasePlaying && t.Turn == "" {
		return fmt.Errorf("%w: playing phase without a turn", game.ErrInvalidAction)
	}
	return nil
}
