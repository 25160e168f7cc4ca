package billing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ArtifactStatus tracks the payment artifact step of a bill
type ArtifactStatus string

const (
	ArtifactStatusPending   ArtifactStatus = "PENDING"
	ArtifactStatusGenerated ArtifactStatus = "GENERATED"
	ArtifactStatusFailed    ArtifactStatus = "FAILED"
)

// IsValid checks if the artifact status is valid
func (s ArtifactStatus) IsValid() bool {
	switch s {
	case ArtifactStatusPending, ArtifactStatusGenerated, ArtifactStatusFailed:
		return true
	}
	return false
}

// String returns the string representation
func (s ArtifactStatus) String() string {
	return string(s)
}

// NotificationStatus tracks the tenant notification step of a bill
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusQueued  NotificationStatus = "QUEUED"
	NotificationStatusFailed  NotificationStatus = "FAILED"
)

// IsValid checks if the notification status is valid
func (s NotificationStatus) IsValid() bool {
	switch s {
	case NotificationStatusPending, NotificationStatusQueued, NotificationStatusFailed:
		return true
	}
	return false
}

// String returns the string representation
func (s NotificationStatus) String() string {
	return string(s)
}

// Standard line item labels, in display order.
const (
	LineItemRent        = "Monthly Rent"
	LineItemWater       = "Water Charge"
	LineItemElectricity = "Electricity"
)

// MaxPaymentRefLength bounds the free-text payment reference
const MaxPaymentRefLength = 100

// BillLineItem is one display row of a bill's breakdown. It is never used for recomputation.
type BillLineItem struct {
	ID       uuid.UUID
	BillID   uuid.UUID
	Label    string
	Amount   decimal.Decimal
	Position int
}

// Bill is one billing period's charge record for a tenancy.
// Amounts are a frozen snapshot of the rates at generation time. After creation
// only the artifact, the step statuses and the payment fields change.
type Bill struct {
	shared.BaseAggregateRoot
	TenancyID          uuid.UUID
	BillDate           time.Time
	PeriodLabel        string
	PreviousUnits      decimal.Decimal
	PresentUnits       decimal.Decimal
	UnitsConsumed      decimal.Decimal
	ElectricityAmount  decimal.Decimal
	WaterAmount        decimal.Decimal
	RentAmount         decimal.Decimal
	OtherAmount        decimal.Decimal
	TotalAmount        decimal.Decimal
	ArtifactPath       *string
	PaymentIntent      *string
	ArtifactStatus     ArtifactStatus
	ArtifactError      *string
	NotificationStatus NotificationStatus
	NotificationError  *string
	NotifiedAt         *time.Time
	PaidAt             *time.Time
	PaymentRef         *string
	Items              []BillLineItem
}

// NewBill creates a bill for a period from its readings and priced breakdown.
// It fails with ErrInvalidReading when the present reading is below the previous one.
func NewBill(tenancyID uuid.UUID, period Period, previousUnits, presentUnits decimal.Decimal, breakdown Breakdown) (*Bill, error) {
	if tenancyID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("Tenancy ID cannot be empty")
	}
	if strings.TrimSpace(period.Label) == "" {
		return nil, shared.ErrInvalidInput.WithMessage("Period label cannot be empty")
	}
	if period.BillDate.IsZero() {
		return nil, shared.ErrInvalidInput.WithMessage("Bill date cannot be empty")
	}
	if previousUnits.IsNegative() || presentUnits.IsNegative() {
		return nil, shared.ErrInvalidInput.WithMessage("Meter readings cannot be negative")
	}
	if presentUnits.LessThan(previousUnits) {
		return nil, ErrInvalidReading
	}

	bill := &Bill{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		TenancyID:          tenancyID,
		BillDate:           period.BillDate,
		PeriodLabel:        period.Label,
		PreviousUnits:      previousUnits,
		PresentUnits:       presentUnits,
		UnitsConsumed:      breakdown.UnitsConsumed,
		ElectricityAmount:  breakdown.ElectricityAmount(),
		WaterAmount:        roundAmount(breakdown.Water),
		RentAmount:         roundAmount(breakdown.Rent),
		OtherAmount:        roundAmount(breakdown.Other),
		TotalAmount:        breakdown.Total,
		ArtifactStatus:     ArtifactStatusPending,
		NotificationStatus: NotificationStatusPending,
	}

	labels := []struct {
		label  string
		amount decimal.Decimal
	}{
		{LineItemRent, bill.RentAmount},
		{LineItemWater, bill.WaterAmount},
		{LineItemElectricity, bill.ElectricityAmount},
	}
	bill.Items = make([]BillLineItem, 0, len(labels))
	for i, l := range labels {
		bill.Items = append(bill.Items, BillLineItem{
			ID:       uuid.New(),
			BillID:   bill.ID,
			Label:    l.label,
			Amount:   l.amount,
			Position: i + 1,
		})
	}

	return bill, nil
}

// HasArtifact reports whether a payment artifact is attached
func (b *Bill) HasArtifact() bool {
	return b.ArtifactPath != nil && *b.ArtifactPath != ""
}

// IsPaid reports whether a payment has been recorded
func (b *Bill) IsPaid() bool {
	return b.PaidAt != nil
}

// AttachArtifact records the stored payment artifact. An artifact is attached at most once.
func (b *Bill) AttachArtifact(path, intent string) error {
	if b.HasArtifact() {
		return shared.ErrInvalidState.WithMessage("Payment artifact is already attached")
	}
	if path == "" || intent == "" {
		return shared.ErrInvalidInput.WithMessage("Artifact path and intent are required")
	}
	b.ArtifactPath = &path
	b.PaymentIntent = &intent
	b.ArtifactStatus = ArtifactStatusGenerated
	b.ArtifactError = nil
	b.Touch()
	return nil
}

// RecordArtifactFailure marks the artifact step failed so it can be retried
func (b *Bill) RecordArtifactFailure(reason string) {
	b.ArtifactStatus = ArtifactStatusFailed
	b.ArtifactError = &reason
	b.Touch()
}

// DetachArtifact drops an artifact that could not be recorded and marks the
// step failed so it can be retried
func (b *Bill) DetachArtifact(reason string) {
	b.ArtifactPath = nil
	b.PaymentIntent = nil
	b.RecordArtifactFailure(reason)
}

// RecordNotificationQueued marks the tenant notification as handed to the queue
func (b *Bill) RecordNotificationQueued(at time.Time) {
	b.NotificationStatus = NotificationStatusQueued
	b.NotificationError = nil
	b.NotifiedAt = &at
	b.Touch()
}

// RecordNotificationFailure marks the notification step failed so it can be resent
func (b *Bill) RecordNotificationFailure(reason string) {
	b.NotificationStatus = NotificationStatusFailed
	b.NotificationError = &reason
	b.Touch()
}

// MarkPaid records a payment against the bill
func (b *Bill) MarkPaid(paidAt time.Time, paymentRef string) error {
	if b.IsPaid() {
		return shared.ErrInvalidState.WithMessage("Bill is already marked as paid")
	}
	if paidAt.IsZero() {
		return shared.ErrInvalidInput.WithMessage("Payment date is required")
	}
	paymentRef = strings.TrimSpace(paymentRef)
	if len(paymentRef) > MaxPaymentRefLength {
		return shared.ErrInvalidInput.WithMessage("Payment reference cannot exceed 100 characters")
	}
	b.PaidAt = &paidAt
	if paymentRef != "" {
		b.PaymentRef = &paymentRef
	} else {
		b.PaymentRef = nil
	}
	b.Touch()
	return nil
}
