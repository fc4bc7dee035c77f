// Package mq publishes and consumes JSON events over RabbitMQ.
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/metrics"
)

// Publisher sends messages to one durable exchange.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewPublisher(url, exchange, exchangeType string) (*Publisher, error) {
	conn, channel, err := open(url, exchange, exchangeType)
	if err != nil {
		return nil, err
	}

	logger.Info("mq publisher ready", map[string]interface{}{
		"exchange": exchange,
		"type":     exchangeType,
	})

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
	}, nil
}

func open(url, exchange, exchangeType string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange,
		exchangeType,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return conn, channel, nil
}

// Exchange returns the exchange name messages are published to.
func (p *Publisher) Exchange() string {
	return p.exchange
}

// Publish marshals message as JSON and sends it persistently.
func (p *Publisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	msg, err := encode(message, time.Now())
	if err != nil {
		return err
	}

	labels := map[string]string{"exchange": p.exchange, "routing_key": routingKey}
	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg)
	if err != nil {
		labels["result"] = "error"
		metrics.IncCounterVec(metrics.MessagesPublishedTotal, labels)
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	labels["result"] = "ok"
	metrics.IncCounterVec(metrics.MessagesPublishedTotal, labels)
	logger.FromContext(ctx).Debug().
		Str("exchange", p.exchange).
		Str("routing_key", routingKey).
		Int("bytes", len(msg.Body)).
		Msg("message published")
	return nil
}

func encode(message interface{}, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(message)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal message: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    now,
	}, nil
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Message is a received delivery as handlers see it.
type Message struct {
	RoutingKey string
	Body       []byte
	Timestamp  time.Time
}

// Handler processes one message. A non-nil error nacks it.
type Handler func(ctx context.Context, msg Message) error

// Consumer reads one durable queue bound to an exchange.
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// NewConsumer declares queue and binds it with every routing key
// (topic wildcards allowed). An empty queue name declares an exclusive,
// auto-deleted queue named by the server.
func NewConsumer(url, exchange, exchangeType, queue string, routingKeys []string) (*Consumer, error) {
	conn, channel, err := open(url, exchange, exchangeType)
	if err != nil {
		return nil, err
	}

	durable := queue != ""
	q, err := channel.QueueDeclare(
		queue,
		durable,
		!durable, // autoDelete
		!durable, // exclusive
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}

	for _, key := range routingKeys {
		if err := channel.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("bind queue %s to %s: %w", q.Name, key, err)
		}
	}

	logger.Info("mq consumer ready", map[string]interface{}{
		"queue":        q.Name,
		"routing_keys": routingKeys,
	})

	return &Consumer{
		conn:    conn,
		channel: channel,
		queue:   q.Name,
	}, nil
}

// Consume blocks until ctx is done or the broker closes the channel.
func (c *Consumer) Consume(ctx context.Context, handler Handler) error {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag, generated
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	logger.FromContext(ctx).Info().Str("queue", c.queue).Msg("consuming")
	return c.loop(ctx, deliveries, handler)
}

func (c *Consumer) loop(ctx context.Context, deliveries <-chan amqp.Delivery, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed for %s", c.queue)
			}
			handle(ctx, c.queue, d, handler)
		}
	}
}

// handle acks on success. A failed message is requeued once, then dropped.
func handle(ctx context.Context, queue string, d amqp.Delivery, handler Handler) {
	start := time.Now()
	err := handler(ctx, Message{RoutingKey: d.RoutingKey, Body: d.Body, Timestamp: d.Timestamp})
	metrics.ObserveHistogram(metrics.MessageProcessingDuration, time.Since(start).Seconds())

	log := logger.FromContext(ctx)
	if err != nil {
		requeue := !d.Redelivered
		log.Warn().Err(err).
			Str("queue", queue).
			Str("routing_key", d.RoutingKey).
			Bool("requeue", requeue).
			Msg("message handling failed")
		if nackErr := d.Nack(false, requeue); nackErr != nil {
			log.Error().Err(nackErr).Msg("nack failed")
		}
		metrics.IncCounterVec(metrics.MessagesConsumedTotal, map[string]string{"queue": queue, "result": "error"})
		return
	}

	if ackErr := d.Ack(false); ackErr != nil {
		log.Error().Err(ackErr).Msg("ack failed")
	}
	metrics.IncCounterVec(metrics.MessagesConsumedTotal, map[string]string{"queue": queue, "result": "ok"})
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
