package room

import (
	"fmt"
	"slices"

	"github.com/playperu/arcaderooms/internal/game"
	"github.com/playperu/arcaderooms/internal/game/blackjack"
)

type ActionType string

const (
	ActionHit          ActionType = "hit"
	ActionStand        ActionType = "stand"
	ActionConfirmSetup ActionType = "confirm_setup"
	ActionPlayCards    ActionType = "play_cards"
	ActionPlayFaceDown ActionType = "play_face_down"
	ActionDrawChance   ActionType = "draw_chance"
	ActionPickUp       ActionType = "pick_up"
)

// Action is a move submitted by a seated player. CardIDs is used by
// confirm_setup and play_cards, Index by play_face_down.
type Action struct {
	Type    ActionType `json:"type"`
	CardIDs []string   `json:"cardIds,omitempty"`
	Index   int        `json:"index,omitempty"`
}

func (r *Room) apply(player string, a Action) error {
	var err error
	switch r.Game {
	case Blackjack:
		switch a.Type {
		case ActionHit:
			err = r.Blackjack.Hit(player)
		case ActionStand:
			err = r.Blackjack.Stand(player)
		default:
			return fmt.Errorf("%w: %q is not a blackjack move", game.ErrInvalidAction, a.Type)
		}
	case Vandtia:
		t := r.Shedding
		switch a.Type {
		case ActionConfirmSetup:
			err = t.ConfirmSetup(player, a.CardIDs)
		case ActionPlayCards:
			err = t.PlayCards(player, a.CardIDs)
		case ActionPlayFaceDown:
			err = t.PlayFaceDown(player, a.Index)
		case ActionDrawChance:
			err = t.DrawChance(player)
		case ActionPickUp:
			err = t.PickUp(player)
		default:
			return fmt.Errorf("%w: %q is not a vändtia move", game.ErrInvalidAction, a.Type)
		}
	}
	if err != nil {
		return err
	}
	return r.settle()
}

func (r *Room) join(id, name string) error {
	if err := r.table().Join(id, name); err != nil {
		return err
	}
	if r.HostID == "" {
		r.HostID = id
	}
	return nil
}

// leave unseats id. A departing host hands over to the next player in
// seat order.
func (r *Room) leave(id string) error {
	t := r.table()
	seat := slices.Index(t.PlayerIDs(), id)
	if err := t.Leave(id); err != nil {
		return err
	}
	if r.HostID == id {
		r.HostID = ""
		if rest := t.PlayerIDs(); len(rest) > 0 {
			r.HostID = rest[seat%len(rest)]
		}
	}
	return r.settle()
}

func (r *Room) start(id string) error {
	t := r.table()
	if !slices.Contains(t.PlayerIDs(), id) {
		return game.ErrUnknownPlayer
	}
	if r.HostID != id {
		return ErrNotHost
	}
	if err := t.StartRound(); err != nil {
		return err
	}
	return r.settle()
}

// settle plays out the bank in the same commit that hands it the turn.
func (r *Room) settle() error {
	if r.Blackjack != nil && r.Blackjack.Phase == blackjack.PhaseDealerTurn {
		return r.Blackjack.ResolveDealer()
	}
	return nil
}
