package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher forwards events as JSON on a Redis pub/sub channel.
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
}

// NewRedisPublisher builds a publisher for the channel.
func NewRedisPublisher(client redis.UniversalClient, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

// Handle publishes the event. It has the EventHandler signature so it can be
// subscribed to a Dispatcher.
func (p *RedisPublisher) Handle(ctx context.Context, event Event) error {
	if p == nil || p.client == nil {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.ID, err)
	}
	if err := p.client.Publish(ctx, p.channel, body).Err(); err != nil {
		return fmt.Errorf("publish event %s: %w", event.ID, err)
	}
	return nil
}

// Attach subscribes the publisher to every assignment event type.
func (p *RedisPublisher) Attach(dispatcher Dispatcher) {
	for _, eventType := range []EventType{
		EventAssignmentCreated,
		EventAssignmentStatusChanged,
		EventAssignmentEvaluated,
	} {
		dispatcher.Subscribe(eventType, p.Handle)
	}
}
