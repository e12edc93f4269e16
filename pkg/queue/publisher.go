package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends JSON messages to a single durable queue.
type Publisher struct {
	mu        sync.Mutex
	conn      *amqp.Connection
	ch        *amqp.Channel
	queueName string
}

func NewPublisher(uri, queueName string) (*Publisher, error) {
	conn, ch, err := ConnectRabbitMQ(uri)
	if err != nil {
		return nil, err
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &Publisher{conn: conn, ch: ch, queueName: queueName}, nil
}

// Publish marshals payload and sends it as a persistent message. correlationID
// is carried in the AMQP correlation-id property when non-empty.
func (p *Publisher) Publish(ctx context.Context, payload interface{}, correlationID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PublishMessage(ctx, p.ch, p.queueName, payload, correlationID)
}

func (p *Publisher) Close() error {
	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

func PublishMessage(ctx context.Context, ch *amqp.Channel, queueName string, payload interface{}, correlationID string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = ch.PublishWithContext(ctx,
		"",
		queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			CorrelationId: correlationID,
			Body:          body,
			Timestamp:     time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}
