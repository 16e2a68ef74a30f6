package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/opsboard/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// Envelope is the wire form of a forwarded event
type Envelope struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// Encode wraps ev in an Envelope and marshals it
func Encode(ev shared.DomainEvent) ([]byte, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", ev.EventType(), err)
	}
	return json.Marshal(Envelope{
		ID:            ev.EventID().String(),
		Type:          ev.EventType(),
		AggregateID:   ev.AggregateID(),
		AggregateType: ev.AggregateType(),
		OccurredAt:    ev.OccurredAt(),
		Payload:       payload,
	})
}

// Publisher is the part of a Redis client the forwarder needs
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisForwarder republishes events on a Redis pub/sub channel for other
// consumers
type RedisForwarder struct {
	client  Publisher
	channel string
	types   []string
}

// NewRedisForwarder forwards eventTypes (all events when empty) to channel
func NewRedisForwarder(client Publisher, channel string, eventTypes ...string) *RedisForwarder {
	return &RedisForwarder{client: client, channel: channel, types: eventTypes}
}

// EventTypes returns the forwarded types
func (f *RedisForwarder) EventTypes() []string {
	return f.types
}

// Handle publishes the encoded event
func (f *RedisForwarder) Handle(ctx context.Context, ev shared.DomainEvent) error {
	data, err := Encode(ev)
	if err != nil {
		return err
	}
	if err := f.client.Publish(ctx, f.channel, data).Err(); err != nil {
		return fmt.Errorf("publish %s to %s: %w", ev.EventType(), f.channel, err)
	}
	return nil
}

var _ shared.EventHandler = (*RedisForwarder)(nil)
