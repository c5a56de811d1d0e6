package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/ErlanBelekov/rich-pastebin/internal/metrics"
)

const consumerPrefetch = 10

// Dial connects to the broker, retrying a few times while it starts up.
func Dial(url string, retries int, delay time.Duration) (*amqp.Connection, error) {
	var err error
	for range retries {
		var conn *amqp.Connection
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("dial amqp: %w", err)
}

func declareExchange(ch *amqp.Channel, exchange string) error {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return nil
}

// AMQPPublisher publishes events as persistent JSON messages on a topic exchange.
type AMQPPublisher struct {
	mu       sync.Mutex // amqp.Channel is not safe for concurrent publishes
	ch       *amqp.Channel
	exchange string
}

func NewAMQPPublisher(conn *amqp.Connection, exchange string) (*AMQPPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareExchange(ch, exchange); err != nil {
		_ = ch.Close()
		return nil, err
	}
	return &AMQPPublisher{ch: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) Publish(_ context.Context, event domain.SocialEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	err = p.ch.Publish(p.exchange, routingKey(event.Type), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Body:         body,
	})
	p.mu.Unlock()

	if err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(string(event.Type), "error").Inc()
		return fmt.Errorf("publish event: %w", err)
	}
	metrics.EventsPublishedTotal.WithLabelValues(string(event.Type), "ok").Inc()
	return nil
}

func (p *AMQPPublisher) Close() error {
	return p.ch.Close()
}

// Consumer binds a durable queue to every social routing key and feeds
// deliveries to a Handler. Malformed messages are dropped; handler errors
// are requeued once, then dropped.
type Consumer struct {
	conn     *amqp.Connection
	exchange string
	queue    string
	handler  Handler
	logger   *slog.Logger
}

func NewConsumer(conn *amqp.Connection, exchange, queue string, handler Handler, logger *slog.Logger) *Consumer {
	return &Consumer{
		conn:     conn,
		exchange: exchange,
		queue:    queue,
		handler:  handler,
		logger:   logger.With("component", "event_consumer"),
	}
}

// Start consumes until ctx is cancelled or the channel closes.
func (c *Consumer) Start(ctx context.Context) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(consumerPrefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	if err := declareExchange(ch, c.exchange); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", c.queue, err)
	}
	if err := ch.QueueBind(c.queue, "social.*", c.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", c.queue, err)
	}

	deliveries, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	c.logger.Info("consumer started", "queue", c.queue)
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer stopped")
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var event domain.SocialEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		c.logger.Error("malformed event, dropping", "error", err)
		_ = d.Nack(false, false)
		return
	}

	if err := c.handler(ctx, event); err != nil {
		c.logger.Error("handle event", "type", event.Type, "redelivered", d.Redelivered, "error", err)
		_ = d.Nack(false, !d.Redelivered)
		return
	}

	if err := d.Ack(false); err != nil {
		c.logger.Error("ack event", "error", err)
	}
}
