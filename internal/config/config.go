package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/playperu/arcaderooms/internal/game"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// StoreDriver is libsql, postgres or memory.
	StoreDriver string `env:"STORE_DRIVER" envDefault:"libsql"`
	DBPath      string `env:"DB_PATH" envDefault:"data/rooms.db"`
	DatabaseURL string `env:"DATABASE_URL"`
	// RedisURL enables the cross-instance feed when set.
	RedisURL string `env:"REDIS_URL"`

	SeatSecret string        `env:"SEAT_SECRET,required"`
	SeatTTL    time.Duration `env:"SEAT_TTL" envDefault:"24h"`

	MaxPlayers         int    `env:"MAX_PLAYERS" envDefault:"5"`
	BlackjackDecks     int    `env:"BLACKJACK_DECKS" envDefault:"1"`
	BlackjackReshuffle string `env:"BLACKJACK_RESHUFFLE" envDefault:"refill"`
	DealerStandsOn     int    `env:"DEALER_STANDS_ON" envDefault:"17"`
	RoomUpdateRetries  int    `env:"ROOM_UPDATE_RETRIES" envDefault:"5"`
}

// Load reads the environment, after loading .env from the working
// directory if there is one. Variables already set take precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case "libsql", "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be libsql, postgres or memory, got %q", c.StoreDriver)
	}
	switch c.BlackjackReshuffle {
	case "refill", "exhaust":
	default:
		return fmt.Errorf("BLACKJACK_RESHUFFLE must be refill or exhaust, got %q", c.BlackjackReshuffle)
	}
	if c.MaxPlayers < 1 || c.MaxPlayers > game.MaxPlayers {
		return fmt.Errorf("MAX_PLAYERS must be between 1 and %d, got %d", game.MaxPlayers, c.MaxPlayers)
	}
	if c.RoomUpdateRetries < 0 {
		return fmt.Errorf("ROOM_UPDATE_RETRIES must not be negative, got %d", c.RoomUpdateRetries)
	}
	return nil
}
