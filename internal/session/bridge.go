package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EventsChannel is the Redis pub/sub channel carrying auth changes.
const EventsChannel = "auth:events"

type envelope struct {
	Origin string `json:"origin"`
	Change Change `json:"change"`
}

// RedisBridge relays auth changes between instances. Local subscribers are
// notified immediately on Publish; Run delivers changes published by other
// instances.
type RedisBridge struct {
	redis  *redis.Client
	local  *Broker
	origin string
	log    *zap.Logger
}

func NewRedisBridge(client *redis.Client, local *Broker, log *zap.Logger) *RedisBridge {
	return &RedisBridge{
		redis:  client,
		local:  local,
		origin: uuid.NewString(),
		log:    log,
	}
}

// Publish notifies local subscribers, then forwards the change to Redis.
func (r *RedisBridge) Publish(ctx context.Context, c Change) error {
	r.local.deliver(c)

	data, err := json.Marshal(envelope{Origin: r.origin, Change: c})
	if err != nil {
		return fmt.Errorf("failed to marshal auth change: %w", err)
	}
	if err := r.redis.Publish(ctx, EventsChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish auth change: %w", err)
	}
	return nil
}

// Run relays remote changes until ctx is cancelled.
func (r *RedisBridge) Run(ctx context.Context) error {
	pubsub := r.redis.Subscribe(ctx, EventsChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to subscribe to %s: %w", EventsChannel, err)
	}

	msgs := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				r.log.Warn("discarding malformed auth change", zap.Error(err))
				continue
			}
			if env.Origin == r.origin {
				continue
			}
			r.local.deliver(env.Change)
		}
	}
}
