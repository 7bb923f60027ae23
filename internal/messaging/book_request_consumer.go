package messaging

import (
	"context"
	"fmt"
	"sync"

	"github.com/Abhishek-Anvekar/healthcare/internal/domain/entity"
	domainRepo "github.com/Abhishek-Anvekar/healthcare/internal/domain/repository"
	"github.com/Abhishek-Anvekar/healthcare/internal/usecase"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// BookRequestConsumer consumes book-request events produced by the booking
// intake service and drives them through the booking operation. The intake
// pre-validates against a cached slot view, so every request is treated as
// untrusted and re-validated here.
type BookRequestConsumer struct {
	log         *logrus.Logger
	appointment usecase.AppointmentUsecase
	parked      domainRepo.ParkedMessageRepository
	dedup       Deduper
	channel     *amqp091.Channel
	exchange    string
	topic       string

	wg sync.WaitGroup
}

func NewBookRequestConsumer(
	log *logrus.Logger,
	conn *amqp091.Connection,
	appointment usecase.AppointmentUsecase,
	parked domainRepo.ParkedMessageRepository,
	dedup Deduper,
	exchange, topic string,
) (*BookRequestConsumer, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &BookRequestConsumer{
		log:         log,
		appointment: appointment,
		parked:      parked,
		dedup:       dedup,
		channel:     channel,
		exchange:    exchange,
		topic:       topic,
	}, nil
}

// Start binds the consumer queue and processes deliveries until ctx is done.
func (c *BookRequestConsumer) Start(ctx context.Context) error {
	queueName := fmt.Sprintf("appointment-service.%s", c.topic)

	queue, err := c.channel.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", queueName, err)
	}
	if err := c.channel.QueueBind(queue.Name, c.topic, c.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", queue.Name, err)
	}

	deliveries, err := c.channel.Consume(queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume queue %s: %w", queue.Name, err)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-deliveries:
				if !ok {
					return
				}
				c.handle(ctx, delivery)
			}
		}
	}()

	c.log.Infof("Consuming book requests from queue %s", queue.Name)
	return nil
}

// Stop waits for the in-flight delivery loop to finish.
func (c *BookRequestConsumer) Stop() {
	c.wg.Wait()
}

// handle acks every delivery exactly once: redelivery of a processed message
// id is skipped, undecodable payloads are parked, and business failures are
// logged and dropped.
func (c *BookRequestConsumer) handle(ctx context.Context, delivery amqp091.Delivery) {
	defer func() {
		if err := delivery.Ack(false); err != nil {
			c.log.Warnf("Failed to ack book request: %+v", err)
		}
	}()

	if delivery.MessageId != "" && c.dedup.Seen(ctx, delivery.MessageId) {
		c.log.Debugf("Skipping already processed book request %s", delivery.MessageId)
		return
	}

	req, ref, err := DecodeBookRequest(delivery.Body)
	if err != nil {
		c.park(ctx, delivery, ref, err)
		return
	}

	if _, err := c.appointment.Book(ctx, req); err != nil {
		c.log.Warnf("Book request %s failed: %+v", ref, err)
		return
	}

	c.log.Infof("Book request %s processed", ref)
}

func (c *BookRequestConsumer) park(ctx context.Context, delivery amqp091.Delivery, ref string, cause error) {
	c.log.Warnf("Parking undecodable book request %s: %+v", ref, cause)

	messageID := delivery.MessageId
	if messageID == "" {
		messageID = ref
	}
	msg := &entity.ParkedMessage{
		Topic:     c.topic,
		MessageID: messageID,
		Body:      delivery.Body,
		Reason:    cause.Error(),
	}
	if err := c.parked.Park(ctx, msg); err != nil {
		c.log.Errorf("Failed to park book request %s: %+v", ref, err)
	}
}
