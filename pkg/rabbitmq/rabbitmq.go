package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"basketstore/pkg/logger"
)

// Connection manages a RabbitMQ connection
type Connection struct {
	url       string
	conn      *amqp.Connection
	channel   *amqp.Channel
	log       *logger.Logger
	mu        sync.RWMutex
	closeChan chan struct{}
}

// NewConnection creates a new RabbitMQ connection
func NewConnection(url string, log *logger.Logger) (*Connection, error) {
	c := &Connection{
		url:       url,
		log:       log,
		closeChan: make(chan struct{}),
	}

	if err := c.connect(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Connection) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	c.conn = conn
	c.channel = ch

	c.log.Info("connected to RabbitMQ")
	return nil
}

// Channel returns the current channel
func (c *Connection) Channel() *amqp.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel
}

// Close closes the connection
func (c *Connection) Close() error {
	close(c.closeChan)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Publisher publishes messages to a topic exchange
type Publisher struct {
	conn     *Connection
	exchange string
	log      *logger.Logger
}

// NewPublisher creates a new publisher bound to an exchange. The
// exchange and its dead-letter pair are declared up front so consumers
// and publishers can start in any order.
func NewPublisher(conn *Connection, exchange string, log *logger.Logger) (*Publisher, error) {
	ch := conn.Channel()

	err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	if err := declareDeadLetter(ch, exchange); err != nil {
		return nil, err
	}

	return &Publisher{
		conn:     conn,
		exchange: exchange,
		log:      log,
	}, nil
}

// Publish publishes a message with the given routing key
func (p *Publisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	traceID := logger.GetTraceID(ctx)

	err = p.conn.Channel().PublishWithContext(
		ctx,
		p.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			Body:          body,
			DeliveryMode:  amqp.Persistent,
			Timestamp:     time.Now(),
			CorrelationId: traceID,
			Headers: amqp.Table{
				"x-trace-id": traceID,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	p.log.WithContext(ctx).Debug("message published",
		zap.String("exchange", p.exchange),
		zap.String("routing_key", routingKey),
	)

	return nil
}

// RetryPolicy controls consumer-side redelivery. After MaxAttempts the
// message is rejected into the dead-letter queue, never discarded.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	Multiplier      float64
}

// DefaultRetryPolicy matches the documented consumer contract.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: 3 * time.Second,
		Multiplier:      2.0,
	}
}

// Backoff returns the wait before the given retry attempt (1-based).
func (rp RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	factor := math.Pow(rp.Multiplier, float64(attempt-1))
	return time.Duration(float64(rp.InitialInterval) * factor)
}

// Consumer consumes messages from a queue with retry and dead-letter
// semantics.
type Consumer struct {
	conn        *Connection
	queue       string
	exchange    string
	routingKeys []string
	retry       RetryPolicy
	log         *logger.Logger
}

// NewConsumer creates a new consumer. The queue is declared with a
// dead-letter exchange; the DLX and DLQ themselves are declared too so
// exhausted messages always have somewhere to land.
func NewConsumer(conn *Connection, queue, exchange string, routingKeys []string, retry RetryPolicy, log *logger.Logger) (*Consumer, error) {
	ch := conn.Channel()

	if err := declareDeadLetter(ch, exchange); err != nil {
		return nil, err
	}

	_, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		amqp.Table{
			"x-dead-letter-exchange":    exchange + ".dlx",
			"x-dead-letter-routing-key": exchange + ".dlq",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	// Bind queue to exchange for each routing key
	for _, key := range routingKeys {
		err = ch.QueueBind(queue, key, exchange, false, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to bind queue: %w", err)
		}
	}

	return &Consumer{
		conn:        conn,
		queue:       queue,
		exchange:    exchange,
		routingKeys: routingKeys,
		retry:       retry,
		log:         log,
	}, nil
}

// declareDeadLetter declares <exchange>.dlx and binds <exchange>.dlq to it.
func declareDeadLetter(ch *amqp.Channel, exchange string) error {
	dlx := exchange + ".dlx"
	dlq := exchange + ".dlq"

	if err := ch.ExchangeDeclare(dlx, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead-letter exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead-letter queue: %w", err)
	}
	if err := ch.QueueBind(dlq, dlq, dlx, false, nil); err != nil {
		return fmt.Errorf("failed to bind dead-letter queue: %w", err)
	}
	return nil
}

// MessageHandler is a function that handles a message
type MessageHandler func(ctx context.Context, body []byte) error

// Consume starts consuming messages. A failed handler call is retried
// with exponential backoff by republishing the message to the same
// queue with an incremented attempt header; once attempts are exhausted
// the message is rejected into the dead-letter queue for manual replay.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	msgs, err := c.conn.Channel().Consume(
		c.queue, // queue
		"",      // consumer
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				c.handleDelivery(ctx, msg, handler)
			}
		}
	}()

	c.log.Info("consumer started",
		zap.String("queue", c.queue),
		zap.Strings("routing_keys", c.routingKeys),
	)

	return nil
}

func (c *Consumer) handleDelivery(ctx context.Context, msg amqp.Delivery, handler MessageHandler) {
	traceID := ""
	if tid, ok := msg.Headers["x-trace-id"].(string); ok {
		traceID = tid
	}
	msgCtx := logger.WithTraceIDContext(ctx, traceID)

	attempt := attemptFrom(msg.Headers)

	if err := handler(msgCtx, msg.Body); err != nil {
		if attempt >= c.retry.MaxAttempts {
			c.log.WithContext(msgCtx).Error("message exhausted retries, sending to dead-letter queue",
				zap.Error(err),
				zap.String("queue", c.queue),
				zap.Int("attempts", attempt),
			)
			// Queue has a dead-letter exchange; reject without requeue
			// routes the message there.
			msg.Nack(false, false)
			return
		}

		backoff := c.retry.Backoff(attempt)
		c.log.WithContext(msgCtx).Warn("message handling failed, retrying",
			zap.Error(err),
			zap.String("queue", c.queue),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
		)

		time.Sleep(backoff)
		if err := c.republish(msgCtx, msg, attempt+1); err != nil {
			c.log.WithContext(msgCtx).Error("failed to republish for retry, requeueing",
				zap.Error(err),
				zap.String("queue", c.queue),
			)
			msg.Nack(false, true)
			return
		}
		msg.Ack(false)
		return
	}

	msg.Ack(false)
}

// republish sends the message back to the queue via the default
// exchange with the attempt counter bumped.
func (c *Consumer) republish(ctx context.Context, msg amqp.Delivery, attempt int) error {
	headers := amqp.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers["x-attempts"] = int32(attempt)

	return c.conn.Channel().PublishWithContext(
		ctx,
		"",      // default exchange
		c.queue, // routed directly to the queue
		false,
		false,
		amqp.Publishing{
			ContentType:   msg.ContentType,
			Body:          msg.Body,
			DeliveryMode:  amqp.Persistent,
			Timestamp:     time.Now(),
			CorrelationId: msg.CorrelationId,
			Headers:       headers,
		},
	)
}

func attemptFrom(headers amqp.Table) int {
	switch v := headers["x-attempts"].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 1
	}
}
