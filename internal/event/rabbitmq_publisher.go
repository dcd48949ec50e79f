package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"loan-origination/internal/domain/loan"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publisherAppID = "loan-origination"

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type RabbitMQEventPublisher struct {
	openChannel  func() (amqpChannel, error)
	exchangeName string
	logger       *slog.Logger
}

var _ loan.EventPublisher = (*RabbitMQEventPublisher)(nil)

func NewRabbitMQEventPublisher(conn *amqp.Connection, exchangeName string, logger *slog.Logger) (*RabbitMQEventPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("RabbitMQ connection cannot be nil")
	}
	if exchangeName == "" {
		return nil, fmt.Errorf("RabbitMQ exchange name cannot be empty")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	tempCh, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open temporary channel for exchange declaration: %w", err)
	}
	defer tempCh.Close()

	err = tempCh.ExchangeDeclare(
		exchangeName,
		amqp.ExchangeTopic,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchangeName, err)
	}
	logger.Info("Ensured RabbitMQ exchange exists", "exchange", exchangeName, "type", amqp.ExchangeTopic)

	return newPublisher(func() (amqpChannel, error) { return conn.Channel() }, exchangeName, logger), nil
}

func newPublisher(open func() (amqpChannel, error), exchangeName string, logger *slog.Logger) *RabbitMQEventPublisher {
	return &RabbitMQEventPublisher{
		openChannel:  open,
		exchangeName: exchangeName,
		logger:       logger.With("component", "RabbitMQEventPublisher", "exchange", exchangeName),
	}
}

// PublishApplicationEvent routes the event by its type, e.g. application.evaluated.
func (p *RabbitMQEventPublisher) PublishApplicationEvent(ctx context.Context, evt loan.ApplicationEvent) error {
	msg := NewApplicationEventMessage(evt)
	return p.publish(ctx, evt.Type, msg.EventID, msg)
}

func (p *RabbitMQEventPublisher) publish(ctx context.Context, routingKey, messageID string, payload interface{}) error {
	logCtx := p.logger.With(slog.String("routingKey", routingKey))

	channel, err := p.openChannel()
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to open RabbitMQ channel", slog.Any("error", err))
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer channel.Close()

	body, err := json.Marshal(payload)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to marshal event payload to JSON", slog.Any("error", err))
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	logCtx.DebugContext(ctx, "Publishing message", "bodySize", len(body))

	err = channel.PublishWithContext(
		ctx,
		p.exchangeName,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			MessageId:    messageID,
			Type:         routingKey,
			Body:         body,
			AppId:        publisherAppID,
		},
	)

	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to publish message to RabbitMQ", slog.Any("error", err))
		return fmt.Errorf("failed to publish message: %w", err)
	}

	logCtx.InfoContext(ctx, "Successfully published message", "messageId", messageID)
	return nil
}

// NoopPublisher drops events. Used when no broker is configured.
type NoopPublisher struct {
	logger *slog.Logger
}

func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger.With("component", "NoopPublisher")}
}

func (p *NoopPublisher) PublishApplicationEvent(ctx context.Context, evt loan.ApplicationEvent) error {
	p.logger.DebugContext(ctx, "Dropping application event, no broker configured", "eventType", evt.Type, "loanID", evt.Application.ID)
	return nil
}
