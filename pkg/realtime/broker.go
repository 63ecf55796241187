// Package realtime fans out live chat and score updates to SSE subscribers.
package realtime

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned when publishing or subscribing on a closed broker.
var ErrClosed = errors.New("realtime broker closed")

// Message is a single payload delivered on a topic.
type Message struct {
	Topic      string    `json:"topic"`
	Payload    []byte    `json:"payload"`
	ReceivedAt time.Time `json:"received_at"`
}

// Broker publishes payloads to topics and hands out subscriptions.
type Broker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string) (*Subscription, error)
	Close() error
}

// Subscription delivers messages on C until Close is called or the
// subscribing context ends. C is closed once the subscription is released.
type Subscription struct {
	C <-chan Message

	once    sync.Once
	release func() error
	err     error
}

func newSubscription(c <-chan Message, release func() error) *Subscription {
	return &Subscription{C: c, release: release}
}

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() error {
	s.once.Do(func() {
		if s.release != nil {
			s.err = s.release()
		}
	})
	return s.err
}
