package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"no-lights-schedule/internal/logger"
)

// Exchange and queue/routing key constants.
const (
	ExchangeName = "nls"

	RoutingScheduleUpdated = "schedule.updated"
	RoutingRenderRequest   = "schedule.render"
	RoutingViewsReady      = "schedule.views"

	QueueRenderRequest = "nls.render_request"
	QueueViewsReady    = "nls.views_ready"
)

var log = logger.New("mq")

// ── Message types ────────────────────────────────────────────────────

// ScheduleUpdatedMsg is published when a region's dataset changes.
type ScheduleUpdatedMsg struct {
	Region      string    `json:"region"`
	ContentHash string    `json:"content_hash"`
	Update      string    `json:"update"`
	Groups      []string  `json:"groups"`
	When        time.Time `json:"when"`
}

// RenderRequestMsg asks a worker to build views for one group of a region.
type RenderRequestMsg struct {
	Region     string   `json:"region"`
	Mode       string   `json:"mode"`
	Day        string   `json:"day,omitempty"`
	Group      string   `json:"group,omitempty"`
	Containers []string `json:"containers,omitempty"`
}

// ViewsReadyMsg carries the outcome of a render request. Exactly one of
// Views and Error is set.
type ViewsReadyMsg struct {
	Region      string          `json:"region"`
	ContentHash string          `json:"content_hash,omitempty"`
	Mode        string          `json:"mode"`
	Day         string          `json:"day,omitempty"`
	Group       string          `json:"group,omitempty"`
	Views       json.RawMessage `json:"views,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// ── Topology setup ───────────────────────────────────────────────────

// queueDecl holds the QueueDeclare arguments of one queue.
type queueDecl struct {
	Name       string
	Key        string
	Durable    bool
	AutoDelete bool
	Exclusive  bool
}

// sharedQueues are durable work queues; their consumers compete for
// messages. schedule.updated is broadcast and has no shared queue.
var sharedQueues = []queueDecl{
	{Name: QueueRenderRequest, Key: RoutingRenderRequest, Durable: true},
	{Name: QueueViewsReady, Key: RoutingViewsReady, Durable: true},
}

// subscriptionQueue declares a server-named queue private to one consumer
// that disappears with its connection.
func subscriptionQueue(key string) queueDecl {
	return queueDecl{Key: key, AutoDelete: true, Exclusive: true}
}

func declare(ch *amqp.Channel, q queueDecl) (string, error) {
	got, err := ch.QueueDeclare(q.Name, q.Durable, q.AutoDelete, q.Exclusive, false, nil)
	if err != nil {
		return "", fmt.Errorf("declare queue for %s: %w", q.Key, err)
	}
	if err := ch.QueueBind(got.Name, q.Key, ExchangeName, false, nil); err != nil {
		return "", fmt.Errorf("bind queue %s: %w", got.Name, err)
	}
	return got.Name, nil
}

// SetupTopology declares the exchange, the shared queues, and bindings.
// Safe to call multiple times (all declarations are idempotent).
func SetupTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	for _, q := range sharedQueues {
		if _, err := declare(ch, q); err != nil {
			return err
		}
	}
	return nil
}

// ── Publisher ────────────────────────────────────────────────────────

// Sender is the publishing side used by the fetcher hook and the worker.
type Sender interface {
	Publish(ctx context.Context, routingKey string, msg any) error
	PublishReply(ctx context.Context, routingKey, correlationID string, msg any) error
}

// Publisher publishes messages to the RabbitMQ exchange.
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher connects to RabbitMQ, sets up topology, and returns a Publisher.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := dialWithRetry(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := SetupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch}, nil
}

// Publish serializes msg to JSON and publishes it with the given routing key.
func (p *Publisher) Publish(ctx context.Context, routingKey string, msg any) error {
	return p.PublishReply(ctx, routingKey, "", msg)
}

// PublishReply is Publish with a correlation id linking the message to the
// request it answers.
func (p *Publisher) PublishReply(ctx context.Context, routingKey, correlationID string, msg any) error {
	pub, err := newPublishing(msg, correlationID, time.Now())
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, ExchangeName, routingKey, false, false, pub)
}

func newPublishing(msg any, correlationID string, now time.Time) (amqp.Publishing, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal message: %w", err)
	}
	return amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     uuid.NewString(),
		CorrelationId: correlationID,
		Timestamp:     now,
		Body:          data,
	}, nil
}

// Close closes the channel and connection.
func (p *Publisher) Close() {
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// ── Consumer ─────────────────────────────────────────────────────────

// Consumer consumes messages from RabbitMQ queues.
type Consumer struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewConsumer connects to RabbitMQ, sets up topology, and returns a Consumer.
func NewConsumer(url string) (*Consumer, error) {
	conn, err := dialWithRetry(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := SetupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	// Process one message at a time per consumer.
	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}
	return &Consumer{conn: conn, ch: ch}, nil
}

// Consume starts consuming from the given queue and returns a delivery channel.
func (c *Consumer) Consume(queue string) (<-chan amqp.Delivery, error) {
	return c.ch.Consume(queue, "", false, false, false, false, nil)
}

// Subscribe binds a queue of this consumer's own to routingKey, so every
// subscriber receives each message, and starts consuming from it.
func (c *Consumer) Subscribe(routingKey string) (<-chan amqp.Delivery, error) {
	name, err := declare(c.ch, subscriptionQueue(routingKey))
	if err != nil {
		return nil, err
	}
	return c.Consume(name)
}

// Close closes the channel and connection.
func (c *Consumer) Close() {
	if c.ch != nil {
		c.ch.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}

// ── Helpers ──────────────────────────────────────────────────────────

// dialWithRetry attempts to connect to RabbitMQ with exponential backoff.
func dialWithRetry(url string) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	for i := range 5 {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		wait := time.Duration(1<<uint(i)) * time.Second
		log.Warnf("connection attempt %d failed: %v, retrying in %s", i+1, err, wait)
		time.Sleep(wait)
	}
	return nil, fmt.Errorf("connect to rabbitmq after 5 attempts: %w", err)
}
