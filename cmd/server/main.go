package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/arcaderooms/internal/config"
	"github.com/playperu/arcaderooms/internal/database"
	"github.com/playperu/arcaderooms/internal/feed"
	"github.com/playperu/arcaderooms/internal/game/blackjack"
	"github.com/playperu/arcaderooms/internal/handler/health"
	"github.com/playperu/arcaderooms/internal/migrations"
	"github.com/playperu/arcaderooms/internal/room"
	"github.com/playperu/arcaderooms/internal/server"
	"github.com/playperu/arcaderooms/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	checks := map[string]health.Checker{}

	// --- Store ---
	var rooms room.Store
	switch cfg.StoreDriver {
	case "memory":
		rooms = store.NewMemory()
		logger.Warn("using in-memory room store; rooms are lost on restart")
	default:
		driver, dsn := database.SQLite, cfg.DBPath
		if cfg.StoreDriver == "postgres" {
			driver, dsn = database.Postgres, cfg.DatabaseURL
		}
		db, err := database.Open(ctx, driver, dsn)
		if err != nil {
			return fmt.Errorf("connecting to %s: %w", driver, err)
		}
		defer db.Close()

		if err := migrations.Run(db, driver.GooseDialect()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		logger.Info("connected to database", "driver", driver)
		rooms = store.NewSQL(db, driver)
		checks[string(driver)] = health.DB(db)
	}

	// --- Feed ---
	broker := feed.NewBroker()
	var publisher room.Publisher = broker
	var relay *feed.Relay
	if cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		logger.Info("connected to redis")

		relay = feed.NewRelay(rdb, broker, logger)
		publisher = relay
		checks["redis"] = health.Redis(rdb)
	}

	// --- Rooms ---
	svc := room.NewService(rooms, publisher, logger, room.Config{
		MaxPlayers: cfg.MaxPlayers,
		Blackjack: blackjack.Rules{
			Decks:          cfg.BlackjackDecks,
			Reshuffle:      blackjack.ReshufflePolicy(cfg.BlackjackReshuffle),
			DealerStandsOn: cfg.DealerStandsOn,
			MaxPlayers:     cfg.MaxPlayers,
		},
		Retries: cfg.RoomUpdateRetries,
	})

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Rooms:  svc,
		Broker: broker,
		Seats:  server.NewSeats(cfg.SeatSecret, cfg.SeatTTL),
	}, func(r chi.Router) {
		r.Mount("/healthz", health.NewHandler(logger, checks).Routes())
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	if relay != nil {
		g.Go(func() error {
			return relay.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}
