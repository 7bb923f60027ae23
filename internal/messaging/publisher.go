package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

// Publisher publishes a payload to a named topic on the event bus. Delivery
// is at-least-once and unordered; consumers must be idempotent.
type Publisher interface {
	Publish(ctx context.Context, topic string, body []byte) error
}

type rabbitPublisher struct {
	channel  *amqp091.Channel
	exchange string
}

// NewRabbitPublisher opens a channel on the given connection and declares the
// durable topic exchange lifecycle events are routed through.
func NewRabbitPublisher(conn *amqp091.Connection, exchange string) (Publisher, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &rabbitPublisher{channel: channel, exchange: exchange}, nil
}

func (p *rabbitPublisher) Publish(ctx context.Context, topic string, body []byte) error {
	return p.channel.PublishWithContext(ctx, p.exchange, topic, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}
