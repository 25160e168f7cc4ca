package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// BillModel is the persistence model for the Bill aggregate.
// (tenancy_id, period_label) is unique; that index is the authority on duplicate periods.
type BillModel struct {
	AggregateModel
	TenancyID           uuid.UUID                  `gorm:"type:uuid;not null;uniqueIndex:uq_bills_tenancy_period,priority:1;index:idx_bills_tenancy_date,priority:1"`
	BillDate            time.Time                  `gorm:"type:date;not null;index:idx_bills_tenancy_date,priority:2"`
	PeriodLabel         string                     `gorm:"type:varchar(20);not null;uniqueIndex:uq_bills_tenancy_period,priority:2"`
	PreviousUnits       decimal.Decimal            `gorm:"type:decimal(12,2);not null"`
	PresentUnits        decimal.Decimal            `gorm:"type:decimal(12,2);not null"`
	UnitsConsumed       decimal.Decimal            `gorm:"type:decimal(12,2);not null"`
	ElectricityAmount   decimal.Decimal            `gorm:"type:decimal(12,2);not null"`
	WaterAmount         decimal.Decimal            `gorm:"type:decimal(12,2);not null"`
	RentAmount          decimal.Decimal            `gorm:"type:decimal(12,2);not null"`
	OtherAmount         decimal.Decimal            `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount         decimal.Decimal            `gorm:"type:decimal(12,2);not null"`
	PaymentArtifactPath *string                    `gorm:"type:varchar(255)"`
	PaymentIntent       *string                    `gorm:"type:text"`
	ArtifactStatus      billing.ArtifactStatus     `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ArtifactError       *string                    `gorm:"type:text"`
	NotificationStatus  billing.NotificationStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	NotificationError   *string                    `gorm:"type:text"`
	NotifiedAt          *time.Time                 `gorm:"column:notified_at"`
	PaidAt              *time.Time                 `gorm:"type:date"`
	PaymentRef          *string                    `gorm:"type:varchar(100)"`
	Items               []BillLineItemModel        `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (BillModel) TableName() string {
	return "bills"
}

// BillLineItemModel is one display row of a bill
type BillLineItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BillID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Label     string          `gorm:"type:varchar(100);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Position  int             `gorm:"not null"`
	CreatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BillLineItemModel) TableName() string {
	return "bill_line_items"
}

// BillModelFromDomain creates a persistence model from a domain Bill
func BillModelFromDomain(b *billing.Bill) *BillModel {
	m := &BillModel{
		TenancyID:           b.TenancyID,
		BillDate:            CalendarDate(b.BillDate),
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
		PaymentIntent:       b.PaymentIntent,
		ArtifactStatus:      b.ArtifactStatus,
		ArtifactError:       b.ArtifactError,
		NotificationStatus:  b.NotificationStatus,
		NotificationError:   b.NotificationError,
		NotifiedAt:          b.NotifiedAt,
		PaidAt:              calendarDatePtr(b.PaidAt),
		PaymentRef:          b.PaymentRef,
	}
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)

	m.Items = make([]BillLineItemModel, 0, len(b.Items))
	for _, item := range b.Items {
		m.Items = append(m.Items, BillLineItemModel{
			ID:        item.ID,
			BillID:    b.ID,
			Label:     item.Label,
			Amount:    item.Amount,
			Position:  item.Position,
			CreatedAt: b.CreatedAt,
		})
	}
	return m
}

// ToDomain converts the model to a domain Bill
func (m *BillModel) ToDomain() *billing.Bill {
	b := &billing.Bill{
		BaseAggregateRoot:  m.ToDomainAggregateRoot(),
		TenancyID:          m.TenancyID,
		BillDate:           CalendarDate(m.BillDate),
		PeriodLabel:        m.PeriodLabel,
		PreviousUnits:      m.PreviousUnits,
		PresentUnits:       m.PresentUnits,
		UnitsConsumed:      m.UnitsConsumed,
		ElectricityAmount:  m.ElectricityAmount,
		WaterAmount:        m.WaterAmount,
		RentAmount:         m.RentAmount,
		OtherAmount:        m.OtherAmount,
		TotalAmount:        m.TotalAmount,
		ArtifactPath:       m.PaymentArtifactPath,
		PaymentIntent:      m.PaymentIntent,
		ArtifactStatus:     m.ArtifactStatus,
		ArtifactError:      m.ArtifactError,
		NotificationStatus: m.NotificationStatus,
		NotificationError:  m.NotificationError,
		NotifiedAt:         m.NotifiedAt,
		PaidAt:             calendarDatePtr(m.PaidAt),
		PaymentRef:         m.PaymentRef,
	}

	b.Items = make([]billing.BillLineItem, 0, len(m.Items))
	for _, item := range m.Items {
		b.Items = append(b.Items, billing.BillLineItem{
			ID:       item.ID,
			BillID:   item.BillID,
			Label:    item.Label,
			Amount:   item.Amount,
			Position: item.Position,
		})
	}
	return b
}

// UpdateColumns returns the columns that may change after a bill is created.
// Amounts and readings are never rewritten.
func (m *BillModel) UpdateColumns() map[string]any {
	return map[string]any{
		"payment_artifact_path": m.PaymentArtifactPath,
		"payment_intent":        m.PaymentIntent,
		"artifact_status":       m.ArtifactStatus,
		"artifact_error":        m.ArtifactError,
		"notification_status":   m.NotificationStatus,
		"notification_error":    m.NotificationError,
		"notified_at":           m.NotifiedAt,
		"paid_at":               m.PaidAt,
		"payment_ref":           m.PaymentRef,
		"updated_at":            m.UpdatedAt,
	}
}
