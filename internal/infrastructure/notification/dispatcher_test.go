package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	appbilling "github.com/rentdesk/backend/internal/application/billing"
	"github.com/rentdesk/backend/internal/domain/billing"
	infraconfig "github.com/rentdesk/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func sampleNotification() appbilling.BillNotification {
	url := "http://localhost:8080/storage/qrs/a.png"
	return appbilling.BillNotification{
		Template:    appbilling.TemplateTenantBill,
		Recipient:   "asha@example.com",
		BillID:      uuid.MustParse("6f1c2a80-5d3e-4c8b-9a0f-1b2c3d4e5f60"),
		PeriodLabel: "Aug 2025",
		Data: appbilling.BillTemplateData{
			TenantName:  "Asha",
			TotalAmount: decimal.RequireFromString("5600"),
			ArtifactURL: &url,
		},
		EnqueuedAt: time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC),
	}
}

type fakeChannel struct {
	declared   []string
	published  []amqp.Publishing
	keys       []string
	declareErr error
	publishErr error
	closed     bool
}

func (f *fakeChannel) QueueDeclare(name string, durable, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	if f.declareErr != nil {
		return amqp.Queue{}, f.declareErr
	}
	if durable {
		f.declared = append(f.declared, name)
	}
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPDispatcher_Dispatch(t *testing.T) {
	ch := &fakeChannel{}
	d, err := newAMQPDispatcher(ch, "tenant_bill_notifications", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"tenant_bill_notifications"}, ch.declared)

	require.NoError(t, d.Dispatch(context.Background(), sampleNotification()))
	require.Len(t, ch.published, 1)

	msg := ch.published[0]
	assert.Equal(t, "tenant_bill_notifications", ch.keys[0])
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "application/json", msg.ContentType)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, "tenant_bill", decoded["template"])
	assert.Equal(t, "asha@example.com", decoded["recipient"])
	data := decoded["data"].(map[string]any)
	assert.Equal(t, "5600", data["total_amount"])
	assert.Equal(t, "http://localhost:8080/storage/qrs/a.png", data["artifact_url"])

	require.NoError(t, d.Close())
	assert.True(t, ch.closed)
}

func TestAMQPDispatcher_PublishFailure(t *testing.T) {
	ch := &fakeChannel{publishErr: amqp.ErrClosed}
	d, err := newAMQPDispatcher(ch, "q", nil)
	require.NoError(t, err)

	err = d.Dispatch(context.Background(), sampleNotification())
	assert.True(t, errors.Is(err, billing.ErrNotificationEnqueue))
	assert.True(t, errors.Is(err, amqp.ErrClosed))
}

func TestAMQPDispatcher_DeclareFailure(t *testing.T) {
	_, err := newAMQPDispatcher(&fakeChannel{declareErr: errors.New("access refused")}, "q", nil)
	assert.Error(t, err)
}

type fakeList struct {
	pushed map[string][]string
	err    error
}

func (f *fakeList) RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	if f.pushed == nil {
		f.pushed = map[string][]string{}
	}
	for _, v := range values {
		f.pushed[key] = append(f.pushed[key], string(v.([]byte)))
	}
	return redis.NewIntResult(int64(len(f.pushed[key])), nil)
}

func TestRedisDispatcher_Dispatch(t *testing.T) {
	list := &fakeList{}
	d := NewRedisDispatcher(list, "rentdesk:notifications:tenant_bill", nil)

	require.NoError(t, d.Dispatch(context.Background(), sampleNotification()))
	require.Len(t, list.pushed["rentdesk:notifications:tenant_bill"], 1)

	var decoded appbilling.BillNotification
	require.NoError(t, json.Unmarshal([]byte(list.pushed["rentdesk:notifications:tenant_bill"][0]), &decoded))
	assert.Equal(t, "Aug 2025", decoded.PeriodLabel)
	assert.True(t, decoded.Data.TotalAmount.Equal(decimal.RequireFromString("5600")))
	assert.Equal(t, DriverRedis, d.Driver())
}

func TestRedisDispatcher_Failure(t *testing.T) {
	d := NewRedisDispatcher(&fakeList{err: redis.ErrClosed}, "k", nil)
	err := d.Dispatch(context.Background(), sampleNotification())
	assert.True(t, errors.Is(err, billing.ErrNotificationEnqueue))
}

func TestLogDispatcher_Dispatch(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	d := NewLogDispatcher(zap.New(core))

	require.NoError(t, d.Dispatch(context.Background(), sampleNotification()))
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "asha@example.com", fields["recipient"])
	assert.Equal(t, "5600.00", fields["total_amount"])
}

func TestDispatch_EmptyRecipient(t *testing.T) {
	n := sampleNotification()
	n.Recipient = ""

	err := NewLogDispatcher(zap.NewNop()).Dispatch(context.Background(), n)
	assert.True(t, errors.Is(err, billing.ErrNotificationEnqueue))
}

func TestNew(t *testing.T) {
	d, err := New(&infraconfig.NotificationConfig{Driver: DriverLog}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DriverLog, d.Driver())

	_, err = New(&infraconfig.NotificationConfig{Driver: DriverRedis}, nil, nil)
	assert.Error(t, err)

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()
	d, err = New(&infraconfig.NotificationConfig{Driver: DriverRedis, RedisKey: "k"}, client, nil)
	require.NoError(t, err)
	assert.Equal(t, DriverRedis, d.Driver())

	_, err = New(&infraconfig.NotificationConfig{Driver: "smtp"}, nil, nil)
	assert.Error(t, err)
}
