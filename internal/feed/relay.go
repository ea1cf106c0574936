package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/playperu/arcaderooms/internal/room"
)

const channelPrefix = "rooms:"

// envelope is the Redis wire form of an event. Origin lets an instance
// skip its own events when they come back.
type envelope struct {
	Origin string     `json:"origin"`
	Event  room.Event `json:"event"`
}

// Relay publishes events locally and to Redis, and replays events from
// other instances into the local broker.
type Relay struct {
	rdb    *redis.Client
	local  *Broker
	origin string
	logger *slog.Logger
}

func NewRelay(rdb *redis.Client, local *Broker, logger *slog.Logger) *Relay {
	return &Relay{rdb: rdb, local: local, origin: uuid.NewString(), logger: logger}
}

func channel(ev room.Event) string {
	return channelPrefix + string(ev.Game) + ":" + ev.Code
}

func (r *Relay) Publish(ctx context.Context, ev room.Event) {
	r.local.Publish(ctx, ev)

	data, err := json.Marshal(envelope{Origin: r.origin, Event: ev})
	if err != nil {
		r.logger.Error("encoding relayed event", "key", ev.Key(), "error", err)
		return
	}
	if err := r.rdb.Publish(ctx, channel(ev), data).Err(); err != nil {
		r.logger.Warn("relaying event to redis", "key", ev.Key(), "error", err)
	}
}

// Run forwards events published by other instances until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	// Wait for the subscription to be confirmed before reporting ready.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribing to redis: %w", err)
	}
	r.logger.Info("relaying room events", "origin", r.origin)

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("redis subscription closed")
			}
			if err := r.deliver(ctx, []byte(msg.Payload)); err != nil {
				r.logger.Warn("dropping relayed event", "channel", msg.Channel, "error", err)
			}
		}
	}
}

func (r *Relay) deliver(ctx context.Context, payload []byte) error {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return err
	}
	if env.Origin == r.origin {
		return nil
	}
	if env.Event.Type == room.EventUpdate && env.Event.Room == nil {
		return errors.New("update without room")
	}
	r.local.Publish(ctx, env.Event)
	return nil
}
