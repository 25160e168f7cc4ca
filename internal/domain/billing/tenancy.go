package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Party is a person known to the property store, either a landlord or a tenant.
type Party struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// Property is the read model of a rented property and its current charge configuration.
// AdvancePayment and SecurityDeposit are one-time charges and never enter a monthly bill.
type Property struct {
	ID              uuid.UUID
	Name            string
	WaterCharge     decimal.Decimal
	ElectricityRate decimal.Decimal
	MonthlyRent     decimal.Decimal
	AdvancePayment  decimal.Decimal
	SecurityDeposit decimal.Decimal
	PayeeHandle     string
	Landlord        Party
}

// RateSnapshot is the charge configuration of a property as read at generation time.
type RateSnapshot struct {
	WaterCharge     decimal.Decimal
	ElectricityRate decimal.Decimal
	MonthlyRent     decimal.Decimal
}

// Rates returns the property's current rate snapshot
func (p Property) Rates() RateSnapshot {
	return RateSnapshot{
		WaterCharge:     p.WaterCharge,
		ElectricityRate: p.ElectricityRate,
		MonthlyRent:     p.MonthlyRent,
	}
}

// Tenancy is a tenant's occupancy of one property. The billing core only reads it.
type Tenancy struct {
	ID           uuid.UUID
	InitialUnits decimal.Decimal
	StartDate    *time.Time
	EndDate      *time.Time
	Active       bool
	Property     Property
	Tenant       Party
}

// PaymentNote returns the transaction note carried in the payment intent for a period
func (t Tenancy) PaymentNote(periodLabel string) string {
	return periodLabel + " - " + t.Property.Name
}
