// Package rabbitmq publishes order events to a RabbitMQ topic exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"menuflow/pkg/order"
)

// RoutingKeyOrderPlaced is the routing key of order.placed events.
const RoutingKeyOrderPlaced = "order.placed"

// Publisher sends order events. It implements order.Notifier.
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// Dial connects to url and declares a durable topic exchange.
func Dial(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// Close closes the channel and connection.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// OrderPlaced publishes o as a persistent JSON message.
func (p *Publisher) OrderPlaced(ctx context.Context, o order.Order) error {
	msg, err := Encode(o)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.ch.PublishWithContext(ctx, p.exchange, RoutingKeyOrderPlaced, false, false, msg)
}

// Encode builds the AMQP message for an order.placed event.
func Encode(o order.Order) (amqp.Publishing, error) {
	body, err := json.Marshal(o)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal order %s: %w", o.ID, err)
	}
	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    o.ID,
		Timestamp:    time.Now().UTC(),
		Type:         RoutingKeyOrderPlaced,
		Headers:      amqp.Table{"x-source": "menuflow"},
		Body:         body,
	}, nil
}
