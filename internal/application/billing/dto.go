package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/infrastructure/storage"
	"github.com/shopspring/decimal"
)

// GenerateBillRequest asks for the next bill of a tenancy.
// PeriodLabel and BillDate override the automatically resolved period.
type GenerateBillRequest struct {
	TenancyID    uuid.UUID
	PresentUnits decimal.Decimal
	PeriodLabel  string
	BillDate     *time.Time
	OtherAmount  *decimal.Decimal
}

// GenerateBillResult is a created bill plus the non-fatal errors of its follow-up steps
type GenerateBillResult struct {
	Bill     *BillResponse
	Warnings []*shared.DomainError
}

// MarkPaidRequest records a payment. PaidAt defaults to today in the billing timezone.
type MarkPaidRequest struct {
	PaidAt     *time.Time
	PaymentRef string
}

// BillListFilter narrows a bill listing
type BillListFilter struct {
	TenancyID          *uuid.UUID
	Paid               *bool
	ArtifactStatus     string
	NotificationStatus string
	Page               int
	PageSize           int
}

// BillLineItemResponse is one row of a bill breakdown
type BillLineItemResponse struct {
	Label    string          `json:"label"`
	Amount   decimal.Decimal `json:"amount"`
	Position int             `json:"position"`
}

// BillResponse represents a bill in API responses
type BillResponse struct {
	ID                  uuid.UUID              `json:"id"`
	TenancyID           uuid.UUID              `json:"tenancy_id"`
	BillDate            string                 `json:"bill_date"`
	PeriodLabel         string                 `json:"period_label"`
	PreviousUnits       decimal.Decimal        `json:"previous_units"`
	PresentUnits        decimal.Decimal        `json:"present_units"`
	UnitsConsumed       decimal.Decimal        `json:"units_consumed"`
	ElectricityAmount   decimal.Decimal        `json:"electricity_amount"`
	WaterAmount         decimal.Decimal        `json:"water_amount"`
	RentAmount          decimal.Decimal        `json:"rent_amount"`
	OtherAmount         decimal.Decimal        `json:"other_amount"`
	TotalAmount         decimal.Decimal        `json:"total_amount"`
	PaymentArtifactPath *string                `json:"payment_artifact_path"`
	PaymentArtifactURL  *string                `json:"payment_artifact_url"`
	PaymentIntent       *string                `json:"payment_intent"`
	ArtifactStatus      string                 `json:"artifact_status"`
	ArtifactError       *string                `json:"artifact_error,omitempty"`
	NotificationStatus  string                 `json:"notification_status"`
	NotificationError   *string                `json:"notification_error,omitempty"`
	NotifiedAt          *time.Time             `json:"notified_at"`
	PaidAt              *time.Time             `json:"paid_at"`
	PaymentRef          *string                `json:"payment_ref"`
	Items               []BillLineItemResponse `json:"items"`
	Version             int                    `json:"version"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

const billDateLayout = "2006-01-02"

// ToBillResponse converts a bill to its response form.
// publicURL prefixes the artifact path to build a downloadable URL.
func ToBillResponse(b *billing.Bill, publicURL string) BillResponse {
	items := make([]BillLineItemResponse, 0, len(b.Items))
	for _, item := range b.Items {
		items = append(items, BillLineItemResponse{
			Label:    item.Label,
			Amount:   item.Amount,
			Position: item.Position,
		})
	}

	return BillResponse{
		ID:                  b.ID,
		TenancyID:           b.TenancyID,
		BillDate:            b.BillDate.Format(billDateLayout),
		PeriodLabel:         b.PeriodLabel,
		PreviousUnits:       b.PreviousUnits,
		PresentUnits:        b.PresentUnits,
		UnitsConsumed:       b.UnitsConsumed,
		ElectricityAmount:   b.ElectricityAmount,
		WaterAmount:         b.WaterAmount,
		RentAmount:          b.RentAmount,
		OtherAmount:         b.OtherAmount,
		TotalAmount:         b.TotalAmount,
		PaymentArtifactPath: b.ArtifactPath,
		PaymentArtifactURL:  artifactURL(b, publicURL),
		PaymentIntent:       b.PaymentIntent,
		ArtifactStatus:      b.ArtifactStatus.String(),
		ArtifactError:       b.ArtifactError,
		NotificationStatus:  b.NotificationStatus.String(),
		NotificationError:   b.NotificationError,
		NotifiedAt:          b.NotifiedAt,
		PaidAt:              b.PaidAt,
		PaymentRef:          b.PaymentRef,
		Items:               items,
		Version:             b.Version,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}
}

func artifactURL(b *billing.Bill, publicURL string) *string {
	if !b.HasArtifact() {
		return nil
	}
	url := storage.PublicURL(publicURL, *b.ArtifactPath)
	return &url
}
