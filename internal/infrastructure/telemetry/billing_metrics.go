package telemetry

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when BillingMetrics is built without a meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// AttrDriver labels notification failures by queue driver
const AttrDriver = attribute.Key("driver")

// BillingMetrics counts bill generation and its follow-up steps.
type BillingMetrics struct {
	billsGenerated       metric.Int64Counter
	billedAmount         metric.Float64Counter
	artifactFailures     metric.Int64Counter
	notificationFailures metric.Int64Counter
	billsPaid            metric.Int64Counter
}

// NewBillingMetrics registers the billing instruments on meter.
func NewBillingMetrics(meter metric.Meter) (*BillingMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var (
		bm  BillingMetrics
		err error
	)
	if bm.billsGenerated, err = meter.Int64Counter("rentdesk_bill_generated_total",
		metric.WithDescription("Total number of bills generated"),
		metric.WithUnit("{bills}")); err != nil {
		return nil, err
	}
	if bm.billedAmount, err = meter.Float64Counter("rentdesk_bill_amount_total",
		metric.WithDescription("Sum of generated bill totals in major currency units"),
		metric.WithUnit("{currency}")); err != nil {
		return nil, err
	}
	if bm.artifactFailures, err = meter.Int64Counter("rentdesk_artifact_failures_total",
		metric.WithDescription("Payment artifact generations that failed"),
		metric.WithUnit("{failures}")); err != nil {
		return nil, err
	}
	if bm.notificationFailures, err = meter.Int64Counter("rentdesk_notification_failures_total",
		metric.WithDescription("Tenant notifications that could not be enqueued"),
		metric.WithUnit("{failures}")); err != nil {
		return nil, err
	}
	if bm.billsPaid, err = meter.Int64Counter("rentdesk_bill_paid_total",
		metric.WithDescription("Bills marked as paid"),
		metric.WithUnit("{bills}")); err != nil {
		return nil, err
	}
	return &bm, nil
}

// RecordBillGenerated counts a persisted bill and its total
func (m *BillingMetrics) RecordBillGenerated(ctx context.Context, total decimal.Decimal) {
	if m == nil {
		return
	}
	m.billsGenerated.Add(ctx, 1)
	m.billedAmount.Add(ctx, total.InexactFloat64())
}

// RecordArtifactFailure counts a failed payment artifact attempt
func (m *BillingMetrics) RecordArtifactFailure(ctx context.Context) {
	if m == nil {
		return
	}
	m.artifactFailures.Add(ctx, 1)
}

// RecordNotificationFailure counts a failed enqueue on the given driver
func (m *BillingMetrics) RecordNotificationFailure(ctx context.Context, driver string) {
	if m == nil {
		return
	}
	m.notificationFailures.Add(ctx, 1, metric.WithAttributes(AttrDriver.String(driver)))
}

// RecordBillPaid counts a recorded payment
func (m *BillingMetrics) RecordBillPaid(ctx context.Context) {
	if m == nil {
		return
	}
	m.billsPaid.Add(ctx, 1)
}
