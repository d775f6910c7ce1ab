package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/RubachokBoss/submission-report/internal/models"
)

type Notifier interface {
	PublishReportExported(ctx context.Context, event *models.ReportExportedEvent) error
	Close() error
}

type rabbitMQNotifier struct {
	conn       *amqp091.Connection
	channel    *amqp091.Channel
	exchange   string
	routingKey string
	logger     zerolog.Logger
}

// NewRabbitMQNotifier connects to the broker and declares a durable direct
// exchange. Consumers bind their own queues.
func NewRabbitMQNotifier(url, exchange, routingKey string, logger zerolog.Logger) (Notifier, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Info().
		Str("exchange", exchange).
		Str("routing_key", routingKey).
		Msg("Connected to RabbitMQ")

	return &rabbitMQNotifier{
		conn:       conn,
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger,
	}, nil
}

func (n *rabbitMQNotifier) PublishReportExported(ctx context.Context, event *models.ReportExportedEvent) error {
	msg, err := exportedMessage(event)
	if err != nil {
		return err
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := n.channel.PublishWithContext(publishCtx, n.exchange, n.routingKey, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	n.logger.Info().
		Str("run_id", event.RunID).
		Str("location", event.Location).
		Msg("Report exported event published")

	return nil
}

func (n *rabbitMQNotifier) Close() error {
	if n.channel != nil {
		if err := n.channel.Close(); err != nil {
			n.logger.Error().Err(err).Msg("Failed to close RabbitMQ channel")
		}
	}
	if n.conn != nil {
		if err := n.conn.Close(); err != nil {
			n.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}
	return nil
}

func exportedMessage(event *models.ReportExportedEvent) (amqp091.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp091.Publishing{}, fmt.Errorf("failed to marshal event: %w", err)
	}
	return amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		MessageId:    event.RunID,
		Type:         "report.exported",
		Timestamp:    time.Unix(event.Timestamp, 0),
	}, nil
}
