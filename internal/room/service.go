package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/playperu/arcaderooms/internal/game"
	"github.com/playperu/arcaderooms/internal/game/blackjack"
	"github.com/playperu/arcaderooms/internal/game/shedding"
)

var ErrInvalidName = errors.New("invalid player name")

const maxNameLen = 24

type Config struct {
	MaxPlayers int
	Blackjack  blackjack.Rules
	// Retries bounds how often a write that lost a version race is
	// re-read and re-applied.
	Retries int
}

// Service is the only writer of rooms. Changes to one room are serialized
// in-process and committed with a version check, so concurrent writers
// in other processes are detected and retried.
type Service struct {
	store Store
	pub   Publisher
	log   *slog.Logger
	cfg   Config
	locks keyedMutex

	now   func() time.Time
	newID func() string
}

func NewService(store Store, pub Publisher, logger *slog.Logger, cfg Config) *Service {
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = game.MaxPlayers
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if pub == nil {
		pub = nopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store: store,
		pub:   pub,
		log:   logger,
		cfg:   cfg,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) {}

func (s *Service) Get(ctx context.Context, g Game, code string) (*Room, error) {
	code, err := checkKey(g, code)
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, g, code)
}

// Join seats a new player under a fresh id, creating the room with that
// player as host if it does not exist yet. Vändtia tables show names in
// capitals.
func (s *Service) Join(ctx context.Context, g Game, code, name string) (*Room, string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLen {
		return nil, "", fmt.Errorf("%w: must be 1 to %d characters", ErrInvalidName, maxNameLen)
	}
	if g == Vandtia {
		name = strings.ToUpper(name)
	}
	id := s.newID()
	r, err := s.update(ctx, g, code, true, func(r *Room) error {
		return r.join(id, name)
	})
	if err != nil {
		return nil, "", err
	}
	s.log.Info("player joined", "game", g, "code", r.Code, "player", id, "name", name)
	return r, id, nil
}

// Leave unseats a player. The returned room is nil when the last player
// left and the room was deleted.
func (s *Service) Leave(ctx context.Context, g Game, code, player string) (*Room, error) {
	return s.update(ctx, g, code, false, func(r *Room) error {
		return r.leave(player)
	})
}

// Start deals a new round. Only the host may start one.
func (s *Service) Start(ctx context.Context, g Game, code, player string) (*Room, error) {
	return s.update(ctx, g, code, false, func(r *Room) error {
		return r.start(player)
	})
}

// Act applies a move. When a blackjack move hands the turn to the dealer,
// the bank is played out in the same commit.
func (s *Service) Act(ctx context.Context, g Game, code, player string, a Action) (*Room, error) {
	return s.update(ctx, g, code, false, func(r *Room) error {
		return r.apply(player, a)
	})
}

func checkKey(g Game, code string) (string, error) {
	if _, err := ParseGame(string(g)); err != nil {
		return "", err
	}
	return NormalizeCode(code)
}

// update runs fn against a private copy of the current room and commits
// the result. A lost version race re-reads and re-applies fn.
func (s *Service) update(ctx context.Context, g Game, code string, create bool, fn func(*Room) error) (*Room, error) {
	code, err := checkKey(g, code)
	if err != nil {
		return nil, err
	}
	defer s.locks.Lock(Key(g, code))()

	for attempt := 1; ; attempt++ {
		cur, err := s.store.Get(ctx, g, code)
		fresh := false
		if errors.Is(err, ErrNotFound) && create {
			cur, fresh, err = s.newRoom(g, code), true, nil
		}
		if err != nil {
			return nil, err
		}

		next := cur.Clone()
		if err := fn(next); err != nil {
			return nil, err
		}
		committed, err := s.commit(ctx, cur, next, fresh)
		if !errors.Is(err, ErrVersionConflict) && !errors.Is(err, ErrExists) {
			return committed, err
		}
		if attempt > s.cfg.Retries {
			s.log.Error("giving up on contended room", "game", g, "code", code, "attempts", attempt)
			return nil, fmt.Errorf("%w: gave up after %d attempts", ErrVersionConflict, attempt)
		}
		s.log.Warn("room changed underneath, retrying", "game", g, "code", code, "attempt", attempt)
	}
}

func (s *Service) commit(ctx context.Context, prev, next *Room, fresh bool) (*Room, error) {
	now := s.now().UTC()
	next.UpdatedAt = now

	if len(next.PlayerIDs()) == 0 {
		if err := s.store.Delete(ctx, next.Game, next.Code, prev.Version); err != nil {
			return nil, fmt.Errorf("deleting room %s: %w", next.Code, err)
		}
		s.log.Info("room deleted", "game", next.Game, "code", next.Code)
		s.pub.Publish(ctx, Event{Type: EventDelete, Game: next.Game, Code: next.Code})
		return nil, nil
	}

	if err := next.Validate(); err != nil {
		s.log.Error("refusing to commit invalid room", "game", next.Game, "code", next.Code, "err", err)
		return nil, err
	}
	if fresh {
		next.Version = 1
		next.CreatedAt = now
		if err := s.store.Create(ctx, next); err != nil {
			return nil, fmt.Errorf("creating room %s: %w", next.Code, err)
		}
	} else {
		next.Version = prev.Version + 1
		if err := s.store.Update(ctx, next, prev.Version); err != nil {
			return nil, fmt.Errorf("updating room %s: %w", next.Code, err)
		}
	}
	s.log.Debug("room committed", "game", next.Game, "code", next.Code, "version", next.Version)
	s.pub.Publish(ctx, Event{Type: EventUpdate, Game: next.Game, Code: next.Code, Room: next})
	return next, nil
}

func (s *Service) newRoom(g Game, code string) *Room {
	r := &Room{Game: g, Code: code}
	switch g {
	case Blackjack:
		rules := s.cfg.Blackjack
		rules.MaxPlayers = s.cfg.MaxPlayers
		r.Blackjack = blackjack.New(rules)
	case Vandtia:
		r.Shedding = shedding.New(shedding.Rules{MaxPlayers: s.cfg.MaxPlayers})
	}
	return r
}
