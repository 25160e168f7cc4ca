package notification

import (
	"context"

	appbilling "github.com/rentdesk/backend/internal/application/billing"
	"go.uber.org/zap"
)

var _ appbilling.NotificationDispatcher = (*LogDispatcher)(nil)

// LogDispatcher writes notifications to the log instead of a queue.
// Used in development and when no broker is configured.
type LogDispatcher struct {
	logger *zap.Logger
}

// NewLogDispatcher creates a LogDispatcher
func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

// Dispatch logs the notification
func (d *LogDispatcher) Dispatch(_ context.Context, n appbilling.BillNotification) error {
	if _, err := encode(n); err != nil {
		return err
	}
	d.logger.Info("Tenant bill notification",
		zap.String("template", n.Template),
		zap.String("recipient", n.Recipient),
		zap.String("bill_id", n.BillID.String()),
		zap.String("period", n.PeriodLabel),
		zap.String("total_amount", n.Data.TotalAmount.StringFixed(2)),
	)
	return nil
}

// Driver returns the driver name
func (d *LogDispatcher) Driver() string {
	return DriverLog
}
