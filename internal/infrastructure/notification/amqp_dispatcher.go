package notification

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	appbilling "github.com/rentdesk/backend/internal/application/billing"
	"github.com/rentdesk/backend/internal/domain/billing"
	"go.uber.org/zap"
)

// amqpChannel is the subset of *amqp.Channel the dispatcher uses
type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

var _ appbilling.NotificationDispatcher = (*AMQPDispatcher)(nil)

// AMQPDispatcher publishes notifications to a durable RabbitMQ queue
type AMQPDispatcher struct {
	conn   *amqp.Connection
	ch     amqpChannel
	queue  string
	logger *zap.Logger
}

// DialAMQP connects to the broker, opens a channel and declares the queue
func DialAMQP(url, queue string, logger *zap.Logger) (*AMQPDispatcher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to amqp broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open amqp channel: %w", err)
	}
	d, err := newAMQPDispatcher(ch, queue, logger)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	d.conn = conn
	return d, nil
}

func newAMQPDispatcher(ch amqpChannel, queue string, logger *zap.Logger) (*AMQPDispatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	return &AMQPDispatcher{ch: ch, queue: queue, logger: logger}, nil
}

// Dispatch publishes the notification as a persistent JSON message
func (d *AMQPDispatcher) Dispatch(ctx context.Context, n appbilling.BillNotification) error {
	body, err := encode(n)
	if err != nil {
		return err
	}
	err = d.ch.PublishWithContext(ctx, "", d.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    n.BillID.String(),
		Timestamp:    n.EnqueuedAt,
		Type:         n.Template,
		Body:         body,
	})
	if err != nil {
		return billing.ErrNotificationEnqueue.WithCause(err)
	}
	d.logger.Debug("Notification published",
		zap.String("queue", d.queue),
		zap.String("bill_id", n.BillID.String()),
	)
	return nil
}

// Driver returns the driver name
func (d *AMQPDispatcher) Driver() string {
	return DriverAMQP
}

// Close closes the channel and the connection
func (d *AMQPDispatcher) Close() error {
	if err := d.ch.Close(); err != nil {
		return err
	}
	if d.conn != nil {
		return d.conn.Close()
	}
	return nil
}
