package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBrokerDeliversToSubscribers(t *testing.T) {
	broker := NewMemoryBroker(4)
	defer broker.Close()

	sub, err := broker.Subscribe(context.Background(), "stream:1:chat")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, broker.Publish(context.Background(), "stream:1:chat", []byte(`{"body":"try!"}`)))
	require.NoError(t, broker.Publish(context.Background(), "stream:2:chat", []byte(`ignored`)))

	select {
	case msg := <-sub.C:
		assert.Equal(t, "stream:1:chat", msg.Topic)
		assert.JSONEq(t, `{"body":"try!"}`, string(msg.Payload))
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
	select {
	case msg := <-sub.C:
		t.Fatalf("unexpected message %s", msg.Payload)
	default:
	}
}

func TestMemoryBrokerUnsubscribesOnContextEnd(t *testing.T) {
	broker := NewMemoryBroker(1)
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := broker.Subscribe(ctx, "match:9:score")
	require.NoError(t, err)
	require.Equal(t, 1, broker.Subscribers("match:9:score"))

	cancel()

	assert.Eventually(t, func() bool { return broker.Subscribers("match:9:score") == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-sub.C
	assert.False(t, open)
	assert.NoError(t, sub.Close())
}

func TestMemoryBrokerClose(t *testing.T) {
	broker := NewMemoryBroker(1)
	sub, err := broker.Subscribe(context.Background(), "t")
	require.NoError(t, err)

	require.NoError(t, broker.Close())

	_, open := <-sub.C
	assert.False(t, open)
	assert.ErrorIs(t, broker.Publish(context.Background(), "t", nil), ErrClosed)
	_, err = broker.Subscribe(context.Background(), "t")
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, sub.Close())
}
