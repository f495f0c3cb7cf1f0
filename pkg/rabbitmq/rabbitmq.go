package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// DefaultQueue receives gift events when Config.Queue is empty.
const DefaultQueue = "gift_events"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	log     *zap.Logger

	// amqp channels are not safe for concurrent publishing.
	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// Handler processes one delivery. A nil return acks the message, an error
// nacks it with requeue.
type Handler func(msg amqp.Delivery) error

// NewClient connects to RabbitMQ, opens a channel and declares the durable
// event queue.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareQueue(ch, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Info("rabbitmq connected", zap.String("queue", cfg.Queue))
	return &Client{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
		log:     log,
	}, nil
}

func declareQueue(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", name, err)
	}
	return nil
}

// Queue returns the name of the event queue.
func (c *Client) Queue() string {
	return c.queue
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// newPublishing encodes payload as a persistent JSON message. The event type
// travels in the AMQP type property.
func newPublishing(eventType string, payload any, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		Type:         eventType,
		MessageId:    uuid.New().String(),
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    now,
	}, nil
}

// Publish sends payload to the event queue through the default exchange.
func (c *Client) Publish(ctx context.Context, eventType string, payload any) error {
	if c.channel == nil {
		return errors.New("RabbitMQ channel is not available")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := newPublishing(eventType, payload, time.Now())
	if err != nil {
		return err
	}

	c.mu.Lock()
	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key is the queue name
		false,   // mandatory
		false,   // immediate
		msg,
	)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}

// Consume delivers queued events to handler until ctx is cancelled or the
// broker closes the channel.
func (c *Client) Consume(ctx context.Context, handler Handler) error {
	if c.channel == nil {
		return errors.New("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.Info("waiting for gift events", zap.String("queue", c.queue))
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed by broker")
			}
			c.dispatch(msg, handler)
		}
	}
}

func (c *Client) dispatch(msg amqp.Delivery, handler Handler) {
	if err := handler(msg); err != nil {
		c.log.Error("failed to process event",
			zap.Uint64("delivery_tag", msg.DeliveryTag),
			zap.String("type", msg.Type),
			zap.Error(err),
		)
		if nackErr := msg.Nack(false, true); nackErr != nil {
			c.log.Error("failed to nack event", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(nackErr))
		}
		return
	}
	if ackErr := msg.Ack(false); ackErr != nil {
		c.log.Error("failed to ack event", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(ackErr))
	}
}

// LogHandler returns a Handler that writes every event to log. Messages
// whose body is not valid JSON are logged and dropped so they never loop
// through requeue.
func LogHandler(log *zap.Logger) Handler {
	return func(msg amqp.Delivery) error {
		if !json.Valid(msg.Body) {
			log.Warn("dropping event with non-JSON body", zap.String("message_id", msg.MessageId))
			return nil
		}
		log.Info("gift event",
			zap.String("type", msg.Type),
			zap.String("message_id", msg.MessageId),
			zap.Time("timestamp", msg.Timestamp),
			zap.ByteString("body", msg.Body),
		)
		return nil
	}
}
