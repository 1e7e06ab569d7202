package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"example.com/exercisetracker/internal/dates"
	"example.com/exercisetracker/internal/domain"
)

// MessageWriter is the subset of *kafka.Writer used by Publisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher announces recorded exercises on a single topic.
type Publisher struct {
	writer  MessageWriter
	timeout time.Duration
	now     func() time.Time
}

var _ domain.EventPublisher = (*Publisher)(nil)

// NewKafkaPublisher builds a Publisher writing synchronously to topic.
// Messages are keyed by user id so one user's events stay ordered.
func NewKafkaPublisher(brokers []string, topic string, timeout time.Duration) *Publisher {
	return NewPublisher(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Snappy,
		AllowAutoTopicCreation: true,
		WriteTimeout:           timeout,
	}, timeout)
}

// NewPublisher wraps an existing writer.
func NewPublisher(writer MessageWriter, timeout time.Duration) *Publisher {
	return &Publisher{writer: writer, timeout: timeout, now: time.Now}
}

// ExerciseRecorded implements domain.EventPublisher.
func (p *Publisher) ExerciseRecorded(ctx context.Context, user domain.User, exercise domain.Exercise) error {
	body, err := json.Marshal(ExerciseRecorded{
		ExerciseID:  exercise.ID,
		UserID:      user.ID,
		Username:    user.Username,
		Description: exercise.Description,
		Duration:    exercise.Duration,
		Date:        dates.FormatCalendarDate(exercise.Date),
		RecordedAt:  exercise.CreatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode %s: %w", TypeExerciseRecorded, err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	msg := kafka.Message{
		Key:   []byte(user.ID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(TypeExerciseRecorded)},
		},
		Time: p.now().UTC(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", TypeExerciseRecorded, err)
	}
	return nil
}

// Close flushes and releases the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Noop discards every event. It is used when no brokers are configured.
type Noop struct{}

// ExerciseRecorded implements domain.EventPublisher.
func (Noop) ExerciseRecorded(context.Context, domain.User, domain.Exercise) error { return nil }

// Close implements io.Closer.
func (Noop) Close() error { return nil }
