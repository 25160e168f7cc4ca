package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// PartyModel is a landlord or tenant known to the property store
type PartyModel struct {
	BaseModel
	Name  string `gorm:"type:varchar(200);not null"`
	Email string `gorm:"type:varchar(200);not null;uniqueIndex:uq_parties_email"`
}

// TableName returns the table name for GORM
func (PartyModel) TableName() string {
	return "parties"
}

// ToDomain converts the model to a domain Party
func (m *PartyModel) ToDomain() billing.Party {
	return billing.Party{ID: m.ID, Name: m.Name, Email: m.Email}
}

// PropertyModel is a rented property with its current charge configuration
type PropertyModel struct {
	BaseModel
	LandlordID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Landlord        PartyModel      `gorm:"foreignKey:LandlordID"`
	Name            string          `gorm:"type:varchar(200);not null"`
	WaterCharge     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ElectricityRate decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	MonthlyRent     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	AdvancePayment  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SecurityDeposit decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PayeeHandle     string          `gorm:"column:upi_vpa;type:varchar(100);not null;default:''"`
}

// TableName returns the table name for GORM
func (PropertyModel) TableName() string {
	return "properties"
}

// ToDomain converts the model to a domain Property. The landlord must be preloaded.
func (m *PropertyModel) ToDomain() billing.Property {
	return billing.Property{
		ID:              m.ID,
		Name:            m.Name,
		WaterCharge:     m.WaterCharge,
		ElectricityRate: m.ElectricityRate,
		MonthlyRent:     m.MonthlyRent,
		AdvancePayment:  m.AdvancePayment,
		SecurityDeposit: m.SecurityDeposit,
		PayeeHandle:     m.PayeeHandle,
		Landlord:        m.Landlord.ToDomain(),
	}
}

// TenancyModel links one tenant to one property
type TenancyModel struct {
	BaseModel
	PropertyID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uq_tenancies_property_tenant,priority:1"`
	Property     PropertyModel   `gorm:"foreignKey:PropertyID"`
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uq_tenancies_property_tenant,priority:2"`
	Tenant       PartyModel      `gorm:"foreignKey:TenantID"`
	InitialUnits decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	StartDate    *time.Time      `gorm:"type:date"`
	EndDate      *time.Time      `gorm:"type:date"`
	Active       bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (TenancyModel) TableName() string {
	return "tenancies"
}

// ToDomain converts the model to a domain Tenancy. Property, landlord and tenant must be preloaded.
func (m *TenancyModel) ToDomain() *billing.Tenancy {
	return &billing.Tenancy{
		ID:           m.ID,
		InitialUnits: m.InitialUnits,
		StartDate:    calendarDatePtr(m.StartDate),
		EndDate:      calendarDatePtr(m.EndDate),
		Active:       m.Active,
		Property:     m.Property.ToDomain(),
		Tenant:       m.Tenant.ToDomain(),
	}
}
