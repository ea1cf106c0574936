// Package room holds the shared room aggregate and the controller that
// serializes every change to it.
package room

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/playperu/arcaderooms/internal/game/blackjack"
	"github.com/playperu/arcaderooms/internal/game/shedding"
)

var (
	ErrNotFound        = errors.New("room not found")
	ErrExists          = errors.New("room already exists")
	ErrVersionConflict = errors.New("room was changed concurrently")
	ErrNotHost         = errors.New("only the host can do that")
	ErrInvalidCode     = errors.New("invalid room code")
	ErrUnknownGame     = errors.New("unknown game")
	ErrCorrupt         = errors.New("stored room is inconsistent")
)

// Game names the card game a room is playing.
type Game string

const (
	Blackjack Game = "blackjack"
	Vandtia   Game = "vandtia"
)

func ParseGame(s string) (Game, error) {
	switch g := Game(strings.ToLower(s)); g {
	case Blackjack, Vandtia:
		return g, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGame, s)
}

const maxCodeLen = 32

// NormalizeCode trims and upper-cases a room code and checks that it is
// 1 to 32 letters, digits or dashes.
func NormalizeCode(s string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if code == "" || len(code) > maxCodeLen {
		return "", fmt.Errorf("%w: %q", ErrInvalidCode, s)
	}
	for _, r := range code {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' {
			return "", fmt.Errorf("%w: %q", ErrInvalidCode, s)
		}
	}
	return code, nil
}

// Room is the unit of persistence and subscription. Exactly one of the
// table variants is set, matching Game.
type Room struct {
	Game      Game      `json:"game"`
	Code      string    `json:"code"`
	HostID    string    `json:"hostId"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Blackjack *blackjack.Table `json:"blackjack,omitempty"`
	Shedding  *shedding.Table  `json:"vandtia,omitempty"`
}

// table is what the controller needs from either engine.
type table interface {
	Join(id, name string) error
	Leave(id string) error
	StartRound() error
	PlayerIDs() []string
	Validate() error
}

func (r *Room) table() table {
	switch r.Game {
	case Blackjack:
		if r.Blackjack != nil {
			return r.Blackjack
		}
	case Vandtia:
		if r.Shedding != nil {
			return r.Shedding
		}
	}
	return nil
}

// PlayerIDs lists the seated players in seat order.
func (r *Room) PlayerIDs() []string {
	if t := r.table(); t != nil {
		return t.PlayerIDs()
	}
	return nil
}

// Key identifies a room across games.
func (r *Room) Key() string { return Key(r.Game, r.Code) }

func Key(g Game, code string) string { return string(g) + ":" + code }

func (r *Room) Clone() *Room {
	c := *r
	if r.Blackjack != nil {
		c.Blackjack = r.Blackjack.Clone()
	}
	if r.Shedding != nil {
		c.Shedding = r.Shedding.Clone()
	}
	return &c
}

// Validate checks the variant tag, host presence and the table's own
// card and turn invariants.
func (r *Room) Validate() error {
	switch {
	case r.Game == Blackjack && (r.Blackjack == nil || r.Shedding != nil),
		r.Game == Vandtia && (r.Shedding == nil || r.Blackjack != nil):
		return fmt.Errorf("%w: %s room carries the wrong table", ErrCorrupt, r.Game)
	case r.Game != Blackjack && r.Game != Vandtia:
		return fmt.Errorf("%w: %q", ErrUnknownGame, r.Game)
	}
	t := r.table()
	ids := t.PlayerIDs()
	if len(ids) > 0 && !slices.Contains(ids, r.HostID) {
		return fmt.Errorf("%w: host %q is not seated", ErrCorrupt, r.HostID)
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return nil
}

// UnmarshalJSON decodes a stored room and rejects it unless it validates.
func (r *Room) UnmarshalJSON(data []byte) error {
	type plain Room
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if err := (*Room)(&p).Validate(); err != nil {
		return err
	}
	*r = Room(p)
	return nil
}

// Decode parses a stored room document.
func Decode(data []byte) (*Room, error) {
	var r Room
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding room: %w", err)
	}
	return &r, nil
}
