// Package feed fans committed room changes out to subscribers, within the
// process and, through Redis, across server instances.
package feed

import (
	"context"
	"sync"

	"github.com/playperu/arcaderooms/internal/room"
)

const bufferSize = 8

// Broker is an in-process pub/sub for room events, keyed by room.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan room.Event]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan room.Event]struct{}),
	}
}

// Subscribe returns a channel that receives events for the room.
func (b *Broker) Subscribe(g room.Game, code string) chan room.Event {
	key := room.Key(g, code)
	ch := make(chan room.Event, bufferSize)
	b.mu.Lock()
	if b.subs[key] == nil {
		b.subs[key] = make(map[chan room.Event]struct{})
	}
	b.subs[key][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the room's subscribers.
func (b *Broker) Unsubscribe(g room.Game, code string, ch chan room.Event) {
	key := room.Key(g, code)
	b.mu.Lock()
	delete(b.subs[key], ch)
	if len(b.subs[key]) == 0 {
		delete(b.subs, key)
	}
	b.mu.Unlock()
}

// Publish delivers ev to every subscriber of its room. A subscriber that
// has fallen behind drops its oldest queued event, never the newest.
func (b *Broker) Publish(_ context.Context, ev room.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[ev.Key()] {
		select {
		case ch <- ev:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribers returns how many subscribers the room has.
func (b *Broker) Subscribers(g room.Game, code string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[room.Key(g, code)])
}

// Watch calls onChange with every committed version of the room and
// onDelete once when it is deleted, until stop is called.
func (b *Broker) Watch(g room.Game, code string, onChange func(*room.Room), onDelete func()) (stop func()) {
	ch := b.Subscribe(g, code)
	done := make(chan struct{})
	var once sync.Once
	stop = func() {
		once.Do(func() {
			close(done)
			b.Unsubscribe(g, code, ch)
		})
	}

	go func() {
		var last int64
		for {
			select {
			case <-done:
				return
			case ev := <-ch:
				switch ev.Type {
				case room.EventDelete:
					onDelete()
					last = 0
				case room.EventUpdate:
					// Relayed events may arrive out of order.
					if ev.Room.Version <= last {
						continue
					}
					last = ev.Room.Version
					onChange(ev.Room)
				}
			}
		}
	}()
	return stop
}
