package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"

	kafka_config "roombook/pkg/kafka/config"
	"roombook/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_RetryCount(t *testing.T) {
	msg := NewMessage().WithKey("R1").WithRawValue([]byte("{}")).Build()
	assert.Equal(t, 0, msg.GetRetryCount())

	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	assert.Equal(t, 12, msg.GetRetryCount())
	assert.Equal(t, "12", msg.Headers[HeaderRetryCount])

	msg.Headers[HeaderRetryCount] = "garbage"
	assert.Equal(t, 0, msg.GetRetryCount())
}

func TestMessage_BuildFillsEventIDAndTimestamp(t *testing.T) {
	msg := NewMessage().WithKey("R1").Build()
	assert.NotEmpty(t, msg.GetEventID())
	assert.NotEmpty(t, msg.Headers[HeaderTimestamp])

	fixed := NewMessage().WithEventID("evt-1").Build()
	assert.Equal(t, "evt-1", fixed.GetEventID())
}

func TestMessage_KafkaRoundTripKeepsHeaders(t *testing.T) {
	msg := NewMessage().WithKey("R1").WithRawValue([]byte(`{"a":1}`)).WithEventType("booking.confirmed").Build()

	back := fromKafka(msg.toKafka(msg.Timestamp))
	assert.Equal(t, msg.Key, back.Key)
	assert.Equal(t, msg.Value, back.Value)
	assert.Equal(t, msg.Headers, back.Headers)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"explicit transient", NewTransientError("x", nil), ErrorTypeTransient},
		{"wrapped permanent", fmt.Errorf("outer: %w", NewPermanentError("x", nil)), ErrorTypePermanent},
		{"deadline", context.DeadlineExceeded, ErrorTypeTransient},
		{"network text", errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{"anything else", errors.New("bad json"), ErrorTypePermanent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestShouldRetry(t *testing.T) {
	transient := NewTransientError("x", nil)
	assert.True(t, ShouldRetry(transient, 0, 3))
	assert.False(t, ShouldRetry(transient, 3, 3))
	assert.False(t, ShouldRetry(NewPermanentError("x", nil), 0, 3))
	assert.False(t, ShouldRetry(nil, 0, 3))
}

func newTestConsumer(maxRetries int, handler MessageHandler) *Consumer {
	return &Consumer{
		topic:      "room-bookings",
		maxRetries: maxRetries,
		handler:    handler,
		log:        logger.Discard(),
	}
}

func TestConsumer_RetriesTransientFailures(t *testing.T) {
	calls := 0
	c := newTestConsumer(3, func(context.Context, Message) error {
		calls++
		if calls < 3 {
			return NewTransientError("smtp busy", nil)
		}
		return nil
	})

	err := c.processMessage(context.Background(), NewMessage().WithKey("R1").Build())
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestConsumer_GivesUpOnPermanentFailure(t *testing.T) {
	calls := 0
	c := newTestConsumer(3, func(context.Context, Message) error {
		calls++
		return NewPermanentError("deserialization failed", nil)
	})

	err := c.processMessage(context.Background(), NewMessage().WithKey("R1").Build())
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

type stubDLQWriter struct {
	err     error
	written []kafka.Message
}

func (w *stubDLQWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *stubDLQWriter) Close() error { return nil }

func TestConsumer_DeadLettersPermanentFailure(t *testing.T) {
	handlerErr := NewPermanentError("deserialization failed", nil)
	dlq := &stubDLQWriter{}
	c := newTestConsumer(3, func(context.Context, Message) error { return handlerErr })
	c.groupID = "notifications"
	c.dlqTopic = "room-bookings-dlq"
	c.dlqWriter = dlq

	err := c.processMessage(context.Background(), NewMessage().WithKey("R1").WithRawValue([]byte("{")).Build())
	require.ErrorIs(t, err, handlerErr)
	assert.NotErrorIs(t, err, ErrDLQWriteFailed)

	require.Len(t, dlq.written, 1)
	headers := map[string]string{}
	for _, h := range dlq.written[0].Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "room-bookings", headers[HeaderOriginalTopic])
	assert.Equal(t, "permanent", headers[HeaderDLQErrorType])
	assert.Equal(t, "notifications", headers[HeaderDLQConsumerGroup])
}

func TestConsumer_FailedDLQWriteIsReported(t *testing.T) {
	handlerErr := NewPermanentError("deserialization failed", nil)
	brokerErr := errors.New("leader not available")
	c := newTestConsumer(0, func(context.Context, Message) error { return handlerErr })
	c.dlqTopic = "room-bookings-dlq"
	c.dlqWriter = &stubDLQWriter{err: brokerErr}

	err := c.processMessage(context.Background(), NewMessage().WithKey("R1").Build())
	assert.ErrorIs(t, err, ErrDLQWriteFailed)
	assert.ErrorIs(t, err, brokerErr)
	assert.ErrorIs(t, err, handlerErr)
}

func TestConsumer_MiddlewareWrapsInOrder(t *testing.T) {
	var order []string
	c := newTestConsumer(0, func(context.Context, Message) error {
		order = append(order, "handler")
		return nil
	})
	for _, name := range []string{"outer", "inner"} {
		c.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
			order = append(order, name)
			return next(ctx, msg)
		})
	}

	require.NoError(t, c.processMessage(context.Background(), NewMessage().Build()))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestNewProducer_Validation(t *testing.T) {
	_, err := NewProducer(nil, "t", "", nil)
	assert.Error(t, err)

	_, err = NewProducer(&kafka_config.Config{}, "t", "", nil)
	assert.Error(t, err)

	_, err = NewProducer(&kafka_config.Config{Brokers: []string{"localhost:9092"}}, "", "", nil)
	assert.Error(t, err)
}

func TestProducer_RejectsEmptyKeyAndValue(t *testing.T) {
	p, err := NewProducer(&kafka_config.Config{Brokers: []string{"localhost:9092"}, ProducerMaxAttempts: 1}, "room-bookings", "", nil)
	require.NoError(t, err)
	defer p.Close()

	assert.ErrorIs(t, p.Publish(context.Background(), NewMessage().WithRawValue([]byte("{}")).Build()), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), NewMessage().WithKey("R1").Build()), ErrEmptyValue)

	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Publish(context.Background(), NewMessage().WithKey("R1").WithRawValue([]byte("{}")).Build()), ErrProducerClosed)
}
