// Package events forwards domain events to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "studio.events"

	publishTimeout = 5 * time.Second
)

// Event is the message body sent to the exchange.
type Event struct {
	Type       string            `json:"type"`
	Entity     string            `json:"entity,omitempty"`
	Action     string            `json:"action,omitempty"`
	ID         string            `json:"id,omitempty"`
	UserID     string            `json:"user_id,omitempty"`
	Parents    map[string]string `json:"parents,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Publisher sends events with a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event Event) error
	Close()
}

// AMQPPublisher publishes to a durable topic exchange. A single channel is
// shared, so publishes are serialized.
type AMQPPublisher struct {
	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// NewAMQPPublisher connects to url and declares the exchange.
func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &AMQPPublisher{conn: conn, channel: ch}, nil
}

// IsConnected reports whether the underlying connection is still open.
func (p *AMQPPublisher) IsConnected() bool {
	return p.conn != nil && p.channel != nil && !p.conn.IsClosed()
}

func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel.PublishWithContext(ctx,
		ExchangeName,
		routingKey,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    event.OccurredAt,
		},
	)
}

func (p *AMQPPublisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Event) error { return nil }
func (NopPublisher) Close()                                       {}

// RoutingKey builds "<kind>.<name>.<action>" keys, e.g. "entity.invoice.update".
func RoutingKey(kind, name, action string) string {
	if action == "" {
		return kind + "." + name
	}
	return kind + "." + name + "." + action
}
