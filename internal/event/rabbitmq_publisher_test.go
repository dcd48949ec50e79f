package event

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"loan-origination/internal/domain/loan"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeChannel struct {
	exchange   string
	routingKey string
	msg        amqp.Publishing
	publishErr error
	closed     bool
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.exchange = exchange
	c.routingKey = key
	c.msg = msg
	return c.publishErr
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func approvedEvent() loan.ApplicationEvent {
	score := 0.72
	return loan.ApplicationEvent{
		Type:       loan.EventApplicationEvaluated,
		OccurredAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Application: loan.LoanApplication{
			ID: 5, CustomerID: 2, AmountRequested: 100_000, TenureMonths: 12, InterestRate: 12,
			Status: loan.StatusApproved, EligibilityScore: &score,
		},
	}
}

func TestNewApplicationEventMessage(t *testing.T) {
	msg := NewApplicationEventMessage(approvedEvent())

	_, err := uuid.Parse(msg.EventID)
	assert.NoError(t, err)
	assert.Equal(t, loan.EventApplicationEvaluated, msg.EventType)
	assert.Equal(t, int64(5), msg.Payload.ApplicationID)
	assert.Equal(t, "APPROVED", msg.Payload.Status)
	assert.InDelta(t, 8884.88, msg.Payload.MonthlyInstallment, 1e-9)
	assert.Nil(t, msg.Payload.RejectionReason)
}

func TestPublishApplicationEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("should publish a persistent JSON message routed by event type", func(t *testing.T) {
		ch := &fakeChannel{}
		pub := newPublisher(func() (amqpChannel, error) { return ch, nil }, "loan-origination", testLogger)

		require.NoError(t, pub.PublishApplicationEvent(ctx, approvedEvent()))

		assert.Equal(t, "loan-origination", ch.exchange)
		assert.Equal(t, loan.EventApplicationEvaluated, ch.routingKey)
		assert.Equal(t, "application/json", ch.msg.ContentType)
		assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
		assert.Equal(t, publisherAppID, ch.msg.AppId)
		assert.NotEmpty(t, ch.msg.MessageId)
		assert.True(t, ch.closed)

		var decoded ApplicationEventMessage
		require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
		assert.Equal(t, ch.msg.MessageId, decoded.EventID)
		assert.Equal(t, int64(2), decoded.Payload.CustomerID)
	})

	t.Run("should return channel errors", func(t *testing.T) {
		pub := newPublisher(func() (amqpChannel, error) { return nil, errors.New("connection closed") }, "x", testLogger)
		err := pub.PublishApplicationEvent(ctx, approvedEvent())
		assert.ErrorContains(t, err, "failed to open channel")
	})

	t.Run("should return publish errors", func(t *testing.T) {
		ch := &fakeChannel{publishErr: errors.New("flow control")}
		pub := newPublisher(func() (amqpChannel, error) { return ch, nil }, "x", testLogger)
		err := pub.PublishApplicationEvent(ctx, approvedEvent())
		assert.ErrorContains(t, err, "failed to publish message")
		assert.True(t, ch.closed)
	})
}

func TestNewRabbitMQEventPublisherValidation(t *testing.T) {
	_, err := NewRabbitMQEventPublisher(nil, "x", testLogger)
	assert.Error(t, err)
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, NewNoopPublisher(testLogger).PublishApplicationEvent(context.Background(), approvedEvent()))
}
