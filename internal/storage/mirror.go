package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"welcomewindow/backend/internal/config"
	"welcomewindow/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis. It returns nil when no address is configured.
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect Redis at %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// EventMirror republishes every delivered real-time event on a Redis channel
// so that out-of-process tools can follow the room.
type EventMirror struct {
	rdb     *redis.Client
	channel string
	queue   chan models.Event
}

// NewEventMirror Constructor. A non-positive buffer uses the default size.
func NewEventMirror(rdb *redis.Client, channel string, buffer int) *EventMirror {
	if buffer <= 0 {
		buffer = 256
	}
	return &EventMirror{
		rdb:     rdb,
		channel: channel,
		queue:   make(chan models.Event, buffer),
	}
}

// Mirror queues ev for publishing. It never blocks; when the queue is full the
// event is dropped.
func (m *EventMirror) Mirror(ev models.Event) {
	select {
	case m.queue <- ev:
	default:
		log.Printf("WARN: [Mirror] queue full, dropping %s #%d", ev.Type, ev.Seq)
	}
}

// Run publishes queued events until ctx is cancelled.
func (m *EventMirror) Run(ctx context.Context) {
	for {
		select {
		case ev := <-m.queue:
			payload, err := json.Marshal(ev)
			if err != nil {
				log.Printf("ERROR: [Mirror] failed to encode %s: %v", ev.Type, err)
				continue
			}
			if err := m.rdb.Publish(ctx, m.channel, payload).Err(); err != nil {
				log.Printf("ERROR: [Mirror] failed to publish %s: %v", ev.Type, err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Subscribe streams mirrored events from the channel until ctx is cancelled.
// Messages that cannot be decoded are skipped.
func Subscribe(ctx context.Context, rdb *redis.Client, channel string, fn func(models.Event)) error {
	sub := rdb.Subscribe(ctx, channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev models.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("WARN: [Mirror] skipping malformed message: %v", err)
				continue
			}
			fn(ev)
		case <-ctx.Done():
			return nil
		}
	}
}
