package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisherWritesTopicPerType(t *testing.T) {
	writer := &recordingWriter{}
	pub := newKafkaPublisher(writer, KafkaConfig{TopicPrefix: "rugby."}, nil)
	occurred := time.Date(2024, 5, 4, 15, 0, 0, 0, time.UTC)

	err := pub.Publish(context.Background(), Event{
		Type:       MatchScoreUpdated,
		Key:        "match-1",
		Payload:    map[string]int{"home": 21, "away": 17},
		OccurredAt: occurred,
	})
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "rugby.match.score.updated", msg.Topic)
	assert.Equal(t, "match-1", string(msg.Key))
	assert.Equal(t, occurred, msg.Time)

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, MatchScoreUpdated, decoded.Type)

	require.NoError(t, pub.Close())
	assert.True(t, writer.closed)
}

func TestKafkaPublisherWrapsWriteErrors(t *testing.T) {
	pub := newKafkaPublisher(&recordingWriter{err: errors.New("broker down")}, KafkaConfig{}, nil)

	err := pub.Publish(context.Background(), Event{Type: ActivityCreated, Key: "a1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.Equal(t, ActivityCreated, pub.Topic(ActivityCreated))
}

func TestNewKafkaPublisherRequiresBrokers(t *testing.T) {
	_, err := NewKafkaPublisher(KafkaConfig{}, nil)
	assert.Error(t, err)
}
