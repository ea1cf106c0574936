package server

import (
	"context"
	"time"

	"github.com/playperu/arcaderooms/internal/feed"
	"github.com/playperu/arcaderooms/internal/room"
)

const pingInterval = 30 * time.Second

// Frame is one message on a room stream: "state" with the viewer's
// projection, or "deleted" once the last player has left.
type Frame struct {
	Type string     `json:"type"`
	Room *room.View `json:"room,omitempty"`
}

type roomStream struct {
	ch      chan room.Event
	unsub   func()
	current *room.Room
}

// openStream subscribes before reading the room so that no commit between
// the read and the subscription is missed.
func openStream(ctx context.Context, rooms *room.Service, broker *feed.Broker, ref roomRef) (*roomStream, error) {
	ch := broker.Subscribe(ref.Game, ref.Code)
	unsub := func() { broker.Unsubscribe(ref.Game, ref.Code, ch) }

	rm, err := rooms.Get(ctx, ref.Game, ref.Code)
	if err != nil {
		unsub()
		return nil, err
	}
	return &roomStream{ch: ch, unsub: unsub, current: rm}, nil
}

// run sends the current state and then every newer version until the room
// is deleted, ctx ends or a send fails.
func (s *roomStream) run(ctx context.Context, viewer string, send func(Frame) error, keepalive func() error) error {
	defer s.unsub()

	last := s.current.Version
	v := s.current.View(viewer)
	if err := send(Frame{Type: "state", Room: &v}); err != nil {
		return err
	}

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-s.ch:
			switch ev.Type {
			case room.EventDelete:
				return send(Frame{Type: "deleted"})
			case room.EventUpdate:
				if ev.Room.Version <= last {
					continue
				}
				last = ev.Room.Version
				v := ev.Room.View(viewer)
				if err := send(Frame{Type: "state", Room: &v}); err != nil {
					return err
				}
			}
		case <-ping.C:
			if err := keepalive(); err != nil {
				return err
			}
		}
	}
}

// viewerFromQuery resolves the optional ?token= seat. Browsers cannot set
// headers on EventSource or WebSocket requests.
func viewerFromQuery(seats *Seats, token string, ref roomRef) (string, error) {
	if token == "" {
		return "", nil
	}
	seat, err := seats.For(token, ref.Game, ref.Code)
	if err != nil {
		return "", err
	}
	return seat.PlayerID, nil
}
