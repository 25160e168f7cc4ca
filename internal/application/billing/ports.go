package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ArtifactRequest carries what a payment artifact encodes. It knows nothing about bills.
type ArtifactRequest struct {
	PayeeHandle string
	PayeeName   string
	Amount      decimal.Decimal
	Note        string
}

// Artifact is a stored payment artifact: its storage-relative path and the raw intent it encodes.
type Artifact struct {
	Intent string
	Path   string
}

// ArtifactGenerator renders a payment intent into a stored image.
// Failures are reported as billing.ErrArtifactWrite.
type ArtifactGenerator interface {
	Generate(ctx context.Context, req ArtifactRequest) (*Artifact, error)
	// Discard removes a stored artifact that never got recorded on a bill
	Discard(ctx context.Context, path string) error
}

// TemplateTenantBill names the tenant bill notification template
const TemplateTenantBill = "tenant_bill"

// BillTemplateData is the data rendered into the tenant bill message
type BillTemplateData struct {
	TenantName  string          `json:"tenant_name"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ArtifactURL *string         `json:"artifact_url"`
}

// BillNotification is one queued message to a tenant
type BillNotification struct {
	Template    string           `json:"template"`
	Recipient   string           `json:"recipient"`
	BillID      uuid.UUID        `json:"bill_id"`
	PeriodLabel string           `json:"period_label"`
	Data        BillTemplateData `json:"data"`
	EnqueuedAt  time.Time        `json:"enqueued_at"`
}

// NotificationDispatcher hands a notification to an asynchronous queue.
// It returns once the message is enqueued and never waits for delivery.
// Failures are reported as billing.ErrNotificationEnqueue.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, n BillNotification) error
	Driver() string
}
