package realtime

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBroker relays topics over Redis pub/sub so every API instance sees every message.
type RedisBroker struct {
	client *redis.Client
	prefix string
	buffer int
	logger *zap.Logger
}

// NewRedisBroker wraps a Redis client. Topics are namespaced with prefix.
func NewRedisBroker(client *redis.Client, prefix string, logger *zap.Logger) *RedisBroker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBroker{client: client, prefix: strings.TrimSuffix(prefix, ":"), buffer: 64, logger: logger}
}

// Publish sends payload to the Redis channel backing topic.
func (b *RedisBroker) Publish(ctx context.Context, topic string, payload []byte) error {
	if b == nil || b.client == nil {
		return ErrClosed
	}
	if err := b.client.Publish(ctx, b.channel(topic), payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe opens a Redis subscription and forwards its messages until ctx ends or Close.
func (b *RedisBroker) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	if b == nil || b.client == nil {
		return nil, ErrClosed
	}
	channel := b.channel(topic)
	pubsub := b.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	out := make(chan Message, b.buffer)
	stop := make(chan struct{})
	source := pubsub.Channel()

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case msg, ok := <-source:
				if !ok {
					return
				}
				forwarded := Message{Topic: topic, Payload: []byte(msg.Payload), ReceivedAt: time.Now().UTC()}
				select {
				case out <- forwarded:
				default:
					b.logger.Warn("dropping realtime message for slow subscriber", zap.String("topic", topic))
				}
			}
		}
	}()

	subscription := newSubscription(out, func() error {
		close(stop)
		return pubsub.Close()
	})
	go func() {
		select {
		case <-ctx.Done():
			_ = subscription.Close()
		case <-stop:
		}
	}()
	return subscription, nil
}

// Close is a no-op; the Redis client is owned by the caller.
func (b *RedisBroker) Close() error {
	return nil
}

func (b *RedisBroker) channel(topic string) string {
	if b.prefix == "" {
		return topic
	}
	return b.prefix + ":" + topic
}
