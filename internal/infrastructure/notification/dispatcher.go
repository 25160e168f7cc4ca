// Package notification hands tenant bill notifications to an asynchronous queue.
// Dispatchers only enqueue; delivery happens in a separate consumer.
package notification

import (
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	appbilling "github.com/rentdesk/backend/internal/application/billing"
	"github.com/rentdesk/backend/internal/domain/billing"
	infraconfig "github.com/rentdesk/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Supported dispatcher drivers
const (
	DriverAMQP  = "amqp"
	DriverRedis = "redis"
	DriverLog   = "log"
)

// Closer is implemented by dispatchers that hold a connection
type Closer interface {
	Close() error
}

// New creates the dispatcher selected by cfg.Driver.
// redisClient is only used by the redis driver and may be nil otherwise.
func New(cfg *infraconfig.NotificationConfig, redisClient *redis.Client, logger *zap.Logger) (appbilling.NotificationDispatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Driver {
	case DriverAMQP:
		return DialAMQP(cfg.AMQPURL, cfg.Queue, logger)
	case DriverRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis notification driver requires a redis client")
		}
		return NewRedisDispatcher(redisClient, cfg.RedisKey, logger), nil
	case DriverLog, "":
		return NewLogDispatcher(logger), nil
	default:
		return nil, fmt.Errorf("unsupported notification driver: %s", cfg.Driver)
	}
}

func encode(n appbilling.BillNotification) ([]byte, error) {
	if n.Recipient == "" {
		return nil, billing.ErrNotificationEnqueue.WithMessage("notification recipient is empty")
	}
	body, err := json.Marshal(n)
	if err != nil {
		return nil, billing.ErrNotificationEnqueue.WithCause(err)
	}
	return body, nil
}
