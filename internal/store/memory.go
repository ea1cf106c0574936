package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/playperu/arcaderooms/internal/room"
)

type memRow struct {
	version int64
	data    []byte
}

// Memory implements room.Store in process memory. Rooms are stored
// encoded so callers never share state with the store.
type Memory struct {
	mu    sync.Mutex
	rooms map[string]memRow
}

func NewMemory() *Memory {
	return &Memory{rooms: make(map[string]memRow)}
}

func (m *Memory) Get(_ context.Context, g room.Game, code string) (*room.Room, error) {
	m.mu.Lock()
	row, ok := m.rooms[room.Key(g, code)]
	m.mu.Unlock()
	if !ok {
		return nil, room.ErrNotFound
	}
	return room.Decode(row.data)
}

func (m *Memory) Create(_ context.Context, r *room.Room) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[r.Key()]; ok {
		return room.ErrExists
	}
	m.rooms[r.Key()] = memRow{version: r.Version, data: data}
	return nil
}

func (m *Memory) Update(_ context.Context, r *room.Room, prev int64) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(r.Key(), prev); err != nil {
		return err
	}
	m.rooms[r.Key()] = memRow{version: r.Version, data: data}
	return nil
}

func (m *Memory) Delete(_ context.Context, g room.Game, code string, prev int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := room.Key(g, code)
	if err := m.check(key, prev); err != nil {
		return err
	}
	delete(m.rooms, key)
	return nil
}

func (m *Memory) check(key string, prev int64) error {
	row, ok := m.rooms[key]
	if !ok {
		return room.ErrNotFound
	}
	if row.version != prev {
		return room.ErrVersionConflict
	}
	return nil
}

// Len returns the number of stored rooms.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}
