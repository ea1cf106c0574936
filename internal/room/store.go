package room

import "context"

// Store persists rooms keyed by game and code. Update and Delete compare
// the stored version against prev and fail with ErrVersionConflict when
// another writer committed first.
type Store interface {
	Get(ctx context.Context, game Game, code string) (*Room, error)
	Create(ctx context.Context, r *Room) error
	Update(ctx context.Context, r *Room, prev int64) error
	Delete(ctx context.Context, game Game, code string, prev int64) error
}

type EventType string

const (
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// Event is a committed change. Update events carry the full room so a
// subscriber never has to read back from the store.
type Event struct {
	Type EventType `json:"type"`
	Game Game      `json:"game"`
	Code string    `json:"code"`
	Room *Room     `json:"room,omitempty"`
}

func (e Event) Key() string { return Key(e.Game, e.Code) }

// Publisher fans committed changes out to subscribers.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}
