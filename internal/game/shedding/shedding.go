// Package shedding implements Vändtia, a shithead-style shedding game.
// Each player holds a hand, three face-up and three face-down cards and
// tries to get rid of all of them; the first to do so wins the round.
package shedding

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/playperu/arcaderooms/internal/game"
	"github.com/playperu/arcaderooms/internal/game/cards"
)

type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseSetup    Phase = "setup"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

const (
	// TableSize is the number of face-up and face-down cards per player,
	// and the size a hand is topped back up to from the stock.
	TableSize = 3
	// DealtHand is the hand size dealt before face-up cards are chosen.
	DealtHand = 6
	// MinPlayers is the smallest table that can start a round.
	MinPlayers = 2
)

// Faces ranks 2 through king at face value and the ace high at 14.
var Faces = []cards.Face{
	{Rank: 2, Label: "2"},
	{Rank: 3, Label: "3"},
	{Rank: 4, Label: "4"},
	{Rank: 5, Label: "5"},
	{Rank: 6, Label: "6"},
	{Rank: 7, Label: "7"},
	{Rank: 8, Label: "8"},
	{Rank: 9, Label: "9"},
	{Rank: 10, Label: "10"},
	{Rank: 11, Label: "J"},
	{Rank: 12, Label: "Q"},
	{Rank: 13, Label: "K"},
	{Rank: 14, Label: "A"},
}

type Rules struct {
	MaxPlayers int `json:"maxPlayers"`
}

type Player struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Hand     cards.Zone `json:"hand"`
	FaceUp   cards.Zone `json:"faceUp"`
	FaceDown cards.Zone `json:"faceDown"`
	Ready    bool       `json:"ready"`
	// InRound is false for players seated after the round was dealt.
	InRound bool `json:"inRound"`
}

// Out reports whether the player has shed every card.
func (p Player) Out() bool {
	return p.InRound && len(p.Hand) == 0 && len(p.FaceUp) == 0 && len(p.FaceDown) == 0
}

type Table struct {
	Rules   Rules      `json:"rules"`
	Phase   Phase      `json:"phase"`
	Players []Player   `json:"players"`
	Deck    cards.Zone `json:"deck"`
	Pile    cards.Zone `json:"pile"`
	Burned  cards.Zone `json:"burned"`
	// Removed holds the cards of players who left mid-round.
	Removed    cards.Zone `json:"removed"`
	ShoeSize   int        `json:"shoeSize"`
	Turn       string     `json:"currentTurnPlayerId,omitempty"`
	Winner     string     `json:"winnerId,omitempty"`
	WinnerName string     `json:"winnerName,omitempty"`
	LastAction string     `json:"lastAction,omitempty"`

	rng *rand.Rand
}

func New(rules Rules) *Table {
	if rules.MaxPlayers == 0 {
		rules.MaxPlayers = game.MaxPlayers
	}
	return &Table{Rules: rules, Phase: PhaseIdle}
}

func (t *Table) UseRand(r *rand.Rand) { t.rng = r }

// CanPlay reports whether card may be laid on pile. Twos and tens always
// go; otherwise the card must match or beat the top card, and a two on top
// resets the pile.
func CanPlay(card cards.Card, pile []cards.Card) bool {
	if card.Rank == 2 || card.Rank == 10 {
		return true
	}
	top, ok := cards.Zone(pile).Top()
	if !ok || top.Rank == 2 {
		return true
	}
	return card.Rank >= top.Rank
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

func (t *Table) inRound() int {
	n := 0
	for _, p := range t.Players {
		if p.InRound {
			n++
		}
	}
	return n
}

func (t *Table) Join(id, name string) error {
	if t.index(id) >= 0 {
		return game.ErrAlreadySeated
	}
	if len(t.Players) >= t.Rules.MaxPlayers {
		return game.ErrRoomFull
	}
	t.Players = append(t.Players, Player{
		ID:       id,
		Name:     name,
		Hand:     cards.Zone{},
		FaceUp:   cards.Zone{},
		FaceDown: cards.Zone{},
	})
	return nil
}

// Leave removes a player and sets their cards aside. A round left with a
// single player ends with that player as the winner.
func (t *Table) Leave(id string) error {
	i := t.index(id)
	if i < 0 {
		return game.ErrUnknownPlayer
	}
	p := t.Players[i]
	next := ""
	if t.Turn == id {
		next = t.nextAfter(i)
	}
	t.Removed.Push(p.Hand...)
	t.Removed.Push(p.FaceUp...)
	t.Removed.Push(p.FaceDown...)
	t.Players = slices.Delete(t.Players, i, i+1)

	if t.Phase != PhaseSetup && t.Phase != PhasePlaying {
		return nil
	}
	if t.inRound() < MinPlayers {
		t.Turn = ""
		for _, q := range t.Players {
			if q.InRound {
				t.finish(q, q.Name+" vann på walkover")
				return nil
			}
		}
		t.Phase = PhaseFinished
		return nil
	}
	if t.Phase == PhaseSetup {
		t.beginIfReady()
		return nil
	}
	if next != "" {
		t.Turn = next
	}
	return nil
}

// StartRound shuffles a fresh deck and deals every seated player in.
func (t *Table) StartRound() error {
	if t.Phase != PhaseIdle && t.Phase != PhaseFinished {
		return game.ErrRoundInProgress
	}
	if len(t.Players) < MinPlayers {
		return game.ErrNotEnoughPlayer
	}
	deck := cards.NewDeck(Faces)
	if need := len(t.Players) * (TableSize + DealtHand); need > len(deck) {
		return fmt.Errorf("%w: %d players need %d cards, the deck has %d", game.ErrRoomFull, len(t.Players), need, len(deck))
	}
	cards.Shuffle(deck, t.rng)
	t.Deal(deck)
	return nil
}

// Deal starts the setup phase from a prepared deck, top card first: three
// face-down then six hand cards per player in seat order.
func (t *Table) Deal(deck []cards.Card) {
	t.Deck = cards.Zone(deck).Clone()
	t.ShoeSize = len(deck)
	t.Pile = cards.Zone{}
	t.Burned = cards.Zone{}
	t.Removed = cards.Zone{}
	t.Turn = ""
	t.Winner, t.WinnerName, t.LastAction = "", "", ""

	for i := range t.Players {
		p := &t.Players[i]
		p.FaceDown = t.take(TableSize)
		p.Hand = t.take(DealtHand)
		p.FaceUp = cards.Zone{}
		p.Ready = false
		p.InRound = true
	}
	t.Phase = PhaseSetup
}

func (t *Table) take(n int) cards.Zone {
	z := cards.Zone{}
	for range n {
		c, ok := t.Deck.Draw()
		if !ok {
			break
		}
		z.Push(c)
	}
	return z
}

// ConfirmSetup moves the three chosen hand cards face up. The round starts
// once every dealt-in player has confirmed.
func (t *Table) ConfirmSetup(id string, chosen []string) error {
	switch t.Phase {
	case PhaseSetup:
	case PhaseFinished:
		return game.ErrRoundOver
	default:
		return fmt.Errorf("%w: not in setup", game.ErrInvalidAction)
	}
	i := t.index(id)
	if i < 0 {
		return game.ErrUnknownPlayer
	}
	p := &t.Players[i]
	if !p.InRound || p.Ready {
		return fmt.Errorf("%w: setup already confirmed", game.ErrInvalidAction)
	}
	if len(chosen) != TableSize {
		return fmt.Errorf("%w: choose exactly %d cards", game.ErrInvalidAction, TableSize)
	}
	hand := p.Hand.Clone()
	up, ok := hand.Take(chosen)
	if !ok {
		return fmt.Errorf("%w: chosen cards are not in hand", game.ErrInvalidAction)
	}
	hand.SortByRank()
	p.Hand, p.FaceUp, p.Ready = hand, cards.Zone(up), true
	t.beginIfReady()
	return nil
}

func (t *Table) beginIfReady() {
	first := ""
	for _, p := range t.Players {
		if !p.InRound {
			continue
		}
		if !p.Ready {
			return
		}
		if first == "" {
			first = p.ID
		}
	}
	t.Phase = PhasePlaying
	t.Turn = first
}

// PlayCards lays one or more same-rank cards from the player's active
// zone: the hand while it holds cards, then the face-up cards.
func (t *Table) PlayCards(id string, ids []string) error {
	i, err := t.actor(id)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: no cards selected", game.ErrInvalidAction)
	}
	p := &t.Players[i]
	var zone *cards.Zone
	switch {
	case len(p.Hand) > 0:
		zone = &p.Hand
	case len(p.FaceUp) > 0:
		zone = &p.FaceUp
	default:
		return fmt.Errorf("%w: only face-down cards left", game.ErrInvalidAction)
	}
	if !zone.Has(ids) {
		return fmt.Errorf("%w: cards must come from the %s first", game.ErrInvalidAction, zoneName(p))
	}
	rest := zone.Clone()
	played, ok := rest.Take(ids)
	if !ok {
		return fmt.Errorf("%w: duplicate card selected", game.ErrInvalidAction)
	}
	rank := played[0].Rank
	for _, c := range played[1:] {
		if c.Rank != rank {
			return fmt.Errorf("%w: cards must share one rank", game.ErrInvalidAction)
		}
	}
	if !CanPlay(played[0], t.Pile) {
		return fmt.Errorf("%w: %s cannot go on the pile", game.ErrInvalidAction, played[0])
	}
	*zone = rest
	t.land(i, played)
	return nil
}

// PlayFaceDown turns over a face-down card blind. It is only allowed once
// hand and face-up cards are gone; a card that cannot be played picks up
// the pile.
func (t *Table) PlayFaceDown(id string, index int) error {
	i, err := t.actor(id)
	if err != nil {
		return err
	}
	p := &t.Players[i]
	if len(p.Hand) > 0 || len(p.FaceUp) > 0 {
		return fmt.Errorf("%w: cards must come from the %s first", game.ErrInvalidAction, zoneName(p))
	}
	c, ok := p.FaceDown.RemoveAt(index)
	if !ok {
		return fmt.Errorf("%w: no face-down card at %d", game.ErrInvalidAction, index)
	}
	if !CanPlay(c, t.Pile) {
		t.pickUp(i, c)
		t.LastAction = "Misslyckat dolt kort: " + c.String()
		return nil
	}
	if t.land(i, []cards.Card{c}) {
		t.LastAction = "Dolt kort lyckades: " + c.String()
	}
	return nil
}

// DrawChance gambles on the top card of the stock.
func (t *Table) DrawChance(id string) error {
	i, err := t.actor(id)
	if err != nil {
		return err
	}
	c, ok := t.Deck.Draw()
	if !ok {
		return fmt.Errorf("%w: the stock is empty", game.ErrInvalidAction)
	}
	if !CanPlay(c, t.Pile) {
		t.pickUp(i, c)
		t.LastAction = "Chansen misslyckades: " + c.String()
		return nil
	}
	if t.land(i, []cards.Card{c}) {
		t.LastAction = "Lyckad chans: " + c.String()
	}
	return nil
}

// PickUp takes the whole pile into the player's hand and passes the turn.
func (t *Table) PickUp(id string) error {
	i, err := t.actor(id)
	if err != nil {
		return err
	}
	if len(t.Pile) == 0 {
		return fmt.Errorf("%w: the pile is empty", game.ErrInvalidAction)
	}
	t.pickUp(i)
	t.LastAction = t.Players[i].Name + " plockade upp högen"
	return nil
}

// land resolves cards that were legally laid by seat i. It reports
// whether they simply went onto the pile: no burn, stupstock or win.
func (t *Table) land(i int, played []cards.Card) bool {
	p := &t.Players[i]
	rank := played[0].Rank

	// Going out on a two or a ten is not allowed: the pile comes back.
	if p.Out() && (rank == 2 || rank == 10) {
		t.pickUp(i, played...)
		t.LastAction = fmt.Sprintf("Stupstock! %s försökte gå ut på %s och plockar upp högen", p.Name, played[0])
		return false
	}

	t.Pile.Push(played...)
	burn := rank == 10 || fourOfAKind(t.Pile)
	if burn {
		t.Burned.Push(t.Pile.Clear()...)
		t.LastAction = "Högen vändes!"
	} else {
		t.LastAction = fmt.Sprintf("%s lade %d × %s", p.Name, len(played), played[0].Label)
	}
	for len(p.Hand) < TableSize {
		c, ok := t.Deck.Draw()
		if !ok {
			break
		}
		p.Hand.Push(c)
	}
	p.Hand.SortByRank()

	if p.Out() {
		t.finish(*p, p.Name+" vann rundan!")
		return false
	}
	if burn || rank == 2 {
		t.Turn = p.ID
		return !burn
	}
	t.Turn = t.nextAfter(i)
	return true
}

// pickUp moves the pile plus any extra cards into seat i's hand and
// passes the turn.
func (t *Table) pickUp(i int, extra ...cards.Card) {
	p := &t.Players[i]
	p.Hand.Push(t.Pile.Clear()...)
	p.Hand.Push(extra...)
	p.Hand.SortByRank()
	t.Turn = t.nextAfter(i)
}

func (t *Table) finish(winner Player, msg string) {
	t.Phase = PhaseFinished
	t.Turn = ""
	t.Winner = winner.ID
	t.WinnerName = winner.Name
	t.LastAction = msg
}

func fourOfAKind(pile cards.Zone) bool {
	if len(pile) < 4 {
		return false
	}
	top := pile[len(pile)-4:]
	for _, c := range top[1:] {
		if c.Rank != top[0].Rank {
			return false
		}
	}
	return true
}

// nextAfter returns the next dealt-in player after seat i, wrapping.
func (t *Table) nextAfter(i int) string {
	n := len(t.Players)
	for step := 1; step < n; step++ {
		if q := t.Players[(i+step)%n]; q.InRound {
			return q.ID
		}
	}
	return t.Players[i].ID
}

func (t *Table) actor(id string) (int, error) {
	switch t.Phase {
	case PhasePlaying:
	case PhaseFinished:
		return -1, game.ErrRoundOver
	default:
		return -1, fmt.Errorf("%w: no player turn in phase %s", game.ErrInvalidAction, t.Phase)
	}
	i := t.index(id)
	if i < 0 {
		return -1, game.ErrUnknownPlayer
	}
	if t.Turn != id {
		return -1, game.ErrNotYourTurn
	}
	return i, nil
}

func zoneName(p *Player) string {
	switch {
	case len(p.Hand) > 0:
		return "hand"
	case len(p.FaceUp) > 0:
		return "face-up cards"
	}
	return "face-down cards"
}

func (t *Table) Clone() *Table {
	c := *t
	c.Players = make([]Player, len(t.Players))
	for i, p := range t.Players {
		p.Hand = p.Hand.Clone()
		p.FaceUp = p.FaceUp.Clone()
		p.FaceDown = p.FaceDown.Clone()
		c.Players[i] = p
	}
	c.Deck = t.Deck.Clone()
	c.Pile = t.Pile.Clone()
	c.Burned = t.Burned.Clone()
	c.Removed = t.Removed.Clone()
	return &c
}

// Validate checks card conservation, zone sizes and turn validity.
func (t *Table) Validate() error {
	zones := [][]cards.Card{t.Deck, t.Pile, t.Burned, t.Removed}
	for _, p := range t.Players {
		zones = append(zones, p.Hand, p.FaceUp, p.FaceDown)
		if len(p.FaceUp) > TableSize || len(p.FaceDown) > TableSize {
			return fmt.Errorf("%w: %s holds too many table cards", game.ErrInvalidAction, p.ID)
		}
	}
	if err := cards.Audit(t.ShoeSize, zones...); err != nil {
		return err
	}
	if t.Turn != "" {
		p, ok := t.Player(t.Turn)
		if !ok || !p.InRound || p.Out() || t.Phase != PhasePlaying {
			return fmt.Errorf("%w: turn held by %q in phase %s", game.ErrInvalidAction, t.Turn, t.Phase)
		}
	}
	if t.Phase == PhasePlaying && t.Turn == "" {
		return fmt.Errorf("%w: playing phase without a turn", game.ErrInvalidAction)
	}
	return nil
}
