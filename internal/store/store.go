// Package store persists rooms. SQL keeps one JSON document per room in
// the rooms table of a libSQL or Postgres database; Memory keeps them in a
// map for tests and single-node development.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/playperu/arcaderooms/internal/database"
	"github.com/playperu/arcaderooms/internal/room"
)

// SQL implements room.Store over database/sql.
type SQL struct {
	db     *sql.DB
	driver database.Driver
}

func NewSQL(db *sql.DB, driver database.Driver) *SQL {
	return &SQL{db: db, driver: driver}
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *SQL) rebind(query string) string {
	if s.driver != database.Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQL) Get(ctx context.Context, g room.Game, code string) (*room.Room, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT data FROM rooms WHERE game = ? AND code = ?`), string(g), code,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, room.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return room.Decode([]byte(data))
}

func (s *SQL) Create(ctx context.Context, r *room.Room) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO rooms (game, code, version, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (game, code) DO NOTHING`),
		string(r.Game), r.Code, r.Version, string(data), stamp(r.CreatedAt), stamp(r.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return room.ErrExists
	}
	return nil
}

func (s *SQL) Update(ctx context.Context, r *room.Room, prev int64) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE rooms SET version = ?, data = ?, updated_at = ?
		 WHERE game = ? AND code = ? AND version = ?`),
		r.Version, string(data), stamp(r.UpdatedAt), string(r.Game), r.Code, prev,
	)
	if err != nil {
		return err
	}
	return s.checkWritten(ctx, result, r.Game, r.Code)
}

func (s *SQL) Delete(ctx context.Context, g room.Game, code string, prev int64) error {
	result, err := s.db.ExecContext(ctx,
		s.rebind(`DELETE FROM rooms WHERE game = ? AND code = ? AND version = ?`),
		string(g), code, prev,
	)
	if err != nil {
		return err
	}
	return s.checkWritten(ctx, result, g, code)
}

// checkWritten tells a missing room apart from a stale version when a
// guarded write matched no row.
func (s *SQL) checkWritten(ctx context.Context, result sql.Result, g room.Game, code string) error {
	if n, _ := result.RowsAffected(); n > 0 {
		return nil
	}
	var one int
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT 1 FROM rooms WHERE game = ? AND code = ?`), string(g), code,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return room.ErrNotFound
	}
	if err != nil {
		return err
	}
	return room.ErrVersionConflict
}

// Ping reports whether the database is reachable.
func (s *SQL) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: %w", s.driver, err)
	}
	return nil
}

func stamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
