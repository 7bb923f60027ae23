package messaging

import (
	"fmt"

	"github.com/Abhishek-Anvekar/healthcare/config"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

func NewRabbitMQConnection(cfg config.RabbitMQConfig) (*amqp091.Connection, error) {
	connectionString := fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port,
	)

	conn, err := amqp091.Dial(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	logrus.Info("Successfully connected to RabbitMQ")

	return conn, nil
}
