package notification

import (
	"context"

	"github.com/redis/go-redis/v9"
	appbilling "github.com/rentdesk/backend/internal/application/billing"
	"github.com/rentdesk/backend/internal/domain/billing"
	"go.uber.org/zap"
)

// listPusher is the subset of the redis client the dispatcher uses
type listPusher interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

var _ appbilling.NotificationDispatcher = (*RedisDispatcher)(nil)

// RedisDispatcher appends notifications to a redis list consumed by a worker
type RedisDispatcher struct {
	client listPusher
	key    string
	logger *zap.Logger
}

// NewRedisDispatcher creates a RedisDispatcher pushing to key
func NewRedisDispatcher(client listPusher, key string, logger *zap.Logger) *RedisDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisDispatcher{client: client, key: key, logger: logger}
}

// Dispatch pushes the JSON-encoded notification onto the list tail
func (d *RedisDispatcher) Dispatch(ctx context.Context, n appbilling.BillNotification) error {
	body, err := encode(n)
	if err != nil {
		return err
	}
	length, err := d.client.RPush(ctx, d.key, body).Result()
	if err != nil {
		return billing.ErrNotificationEnqueue.WithCause(err)
	}
	d.logger.Debug("Notification queued",
		zap.String("key", d.key),
		zap.String("bill_id", n.BillID.String()),
		zap.Int64("queue_length", length),
	)
	return nil
}

// Driver returns the driver name
func (d *RedisDispatcher) Driver() string {
	return DriverRedis
}
