package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"example.com/exercisetracker/internal/domain"
)

type stubWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (s *stubWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, msgs...)
	return nil
}

func (s *stubWriter) Close() error {
	s.closed = true
	return nil
}

func TestPublisherWritesKeyedEvent(t *testing.T) {
	writer := &stubWriter{}
	publisher := NewPublisher(writer, time.Second)

	user := domain.User{ID: "u-1", Username: "alice"}
	exercise := domain.Exercise{
		ID:          "e-1",
		UserID:      "u-1",
		Description: "run",
		Duration:    30,
		Date:        time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC),
		CreatedAt:   time.Date(2024, time.January, 2, 9, 0, 0, 0, time.UTC),
	}

	require.NoError(t, publisher.ExerciseRecorded(context.Background(), user, exercise))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	require.Equal(t, []byte("u-1"), msg.Key)
	require.Equal(t, []kafka.Header{{Key: "event_type", Value: []byte(TypeExerciseRecorded)}}, msg.Headers)

	var payload ExerciseRecorded
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	require.Equal(t, ExerciseRecorded{
		ExerciseID:  "e-1",
		UserID:      "u-1",
		Username:    "alice",
		Description: "run",
		Duration:    30,
		Date:        "2024-01-01",
		RecordedAt:  exercise.CreatedAt,
	}, payload)

	require.NoError(t, publisher.Close())
	require.True(t, writer.closed)
}

func TestPublisherWrapsWriteError(t *testing.T) {
	writer := &stubWriter{err: errors.New("broker unavailable")}
	publisher := NewPublisher(writer, 0)

	err := publisher.ExerciseRecorded(context.Background(), domain.User{ID: "u-1"}, domain.Exercise{ID: "e-1"})
	require.ErrorContains(t, err, "publish exercise.recorded")
	require.ErrorContains(t, err, "broker unavailable")
}

func TestNoopPublisher(t *testing.T) {
	var p domain.EventPublisher = Noop{}
	require.NoError(t, p.ExerciseRecorded(context.Background(), domain.User{}, domain.Exercise{}))
}
