package realtime

import (
	"context"
	"sync"
	"time"
)

// MemoryBroker is an in-process Broker for single-instance deployments and tests.
// Slow subscribers drop messages rather than block publishers.
type MemoryBroker struct {
	mu     sync.RWMutex
	subs   map[string]map[*memorySub]struct{}
	buffer int
	closed bool
}

type memorySub struct {
	ch   chan Message
	done chan struct{}
}

// NewMemoryBroker creates a broker whose subscribers buffer up to buffer messages.
func NewMemoryBroker(buffer int) *MemoryBroker {
	if buffer <= 0 {
		buffer = 32
	}
	return &MemoryBroker{subs: make(map[string]map[*memorySub]struct{}), buffer: buffer}
}

// Publish delivers payload to every current subscriber of topic.
func (b *MemoryBroker) Publish(_ context.Context, topic string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	msg := Message{Topic: topic, Payload: payload, ReceivedAt: time.Now().UTC()}
	for sub := range b.subs[topic] {
		select {
		case sub.ch <- msg:
		default:
		}
	}
	return nil
}

// Subscribe registers a subscriber on topic until ctx ends or Close is called.
func (b *MemoryBroker) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	sub := &memorySub{ch: make(chan Message, b.buffer), done: make(chan struct{})}
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[*memorySub]struct{})
	}
	b.subs[topic][sub] = struct{}{}
	b.mu.Unlock()

	subscription := newSubscription(sub.ch, func() error {
		b.remove(topic, sub)
		return nil
	})
	go func() {
		select {
		case <-ctx.Done():
			_ = subscription.Close()
		case <-sub.done:
		}
	}()
	return subscription, nil
}

// Subscribers returns the number of live subscribers on topic.
func (b *MemoryBroker) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// Close releases every subscription.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for topic, subs := range b.subs {
		for sub := range subs {
			close(sub.done)
			close(sub.ch)
		}
		delete(b.subs, topic)
	}
	return nil
}

func (b *MemoryBroker) remove(topic string, sub *memorySub) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.subs[topic]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(b.subs, topic)
	}
	close(sub.done)
	close(sub.ch)
}
