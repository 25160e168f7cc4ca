package billing

import "github.com/shopspring/decimal"

// AmountPlaces is the number of decimal places kept for stored currency amounts.
const AmountPlaces = 2

// ChargeInput carries the readings and rates needed to price one period.
type ChargeInput struct {
	Rates         RateSnapshot
	PreviousUnits decimal.Decimal
	PresentUnits  decimal.Decimal
	OtherAmount   decimal.Decimal
}

// Breakdown is the result of pricing one period.
// Electricity is kept unrounded here; ElectricityAmount returns the stored value.
type Breakdown struct {
	UnitsConsumed decimal.Decimal
	Electricity   decimal.Decimal
	Water         decimal.Decimal
	Rent          decimal.Decimal
	Other         decimal.Decimal
	Total         decimal.Decimal
}

// ElectricityAmount returns the electricity charge rounded for storage
func (b Breakdown) ElectricityAmount() decimal.Decimal {
	return roundAmount(b.Electricity)
}

// Calculator prices a billing period from meter readings and a rate snapshot.
// It performs no I/O and never fails.
type Calculator struct{}

// NewCalculator creates a Calculator
func NewCalculator() Calculator {
	return Calculator{}
}

// Calculate returns the charge breakdown for the input.
//
// Consumption is max(0, present - previous); a reading that went backwards is
// priced as zero consumption rather than rejected. Callers that must reject
// such readings validate before calling. The total is rounded exactly once,
// half away from zero, to two places.
func (Calculator) Calculate(in ChargeInput) Breakdown {
	consumed := decimal.Max(decimal.Zero, in.PresentUnits.Sub(in.PreviousUnits))
	electricity := consumed.Mul(nonNegative(in.Rates.ElectricityRate))
	water := nonNegative(in.Rates.WaterCharge)
	rent := nonNegative(in.Rates.MonthlyRent)
	other := nonNegative(in.OtherAmount)

	return Breakdown{
		UnitsConsumed: consumed,
		Electricity:   electricity,
		Water:         water,
		Rent:          rent,
		Other:         other,
		Total:         roundAmount(rent.Add(water).Add(electricity).Add(other)),
	}
}

// CalculateTotal is the scalar form of Calculate with no other amount.
func (c Calculator) CalculateTotal(waterCharge, electricityRate, previousUnits, presentUnits, monthlyRent decimal.Decimal) decimal.Decimal {
	return c.Calculate(ChargeInput{
		Rates: RateSnapshot{
			WaterCharge:     waterCharge,
			ElectricityRate: electricityRate,
			MonthlyRent:     monthlyRent,
		},
		PreviousUnits: previousUnits,
		PresentUnits:  presentUnits,
	}).Total
}

// HasStoredPrecision reports whether d survives storage in a two-place column unchanged.
func HasStoredPrecision(d decimal.Decimal) bool {
	return d.Equal(d.Round(AmountPlaces))
}

func roundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(AmountPlaces)
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
