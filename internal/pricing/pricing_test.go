package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-garage/internal/parking"
)

func at(t time.Time) parking.Clock {
	return parking.ClockFunc(func() time.Time { return t })
}

// 2024-03-04 is a Monday.
var monday = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func TestSelect(t *testing.T) {
	cases := []struct {
		name string
		when time.Time
		want Schedule
	}{
		{"weekday early morning", monday.Add(7*time.Hour + 59*time.Minute), OffPeak},
		{"weekday peak start", monday.Add(8 * time.Hour), Peak},
		{"weekday late peak", monday.Add(17*time.Hour + 59*time.Minute), Peak},
		{"weekday peak end", monday.Add(18 * time.Hour), OffPeak},
		{"saturday noon", monday.AddDate(0, 0, 5).Add(12 * time.Hour), Weekend},
		{"sunday night", monday.AddDate(0, 0, 6).Add(23 * time.Hour), Weekend},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Select(tc.when))
		})
	}
}

func TestScheduleFee(t *testing.T) {
	assert.True(t, decimal.RequireFromString("15.00").Equal(Standard.Fee(parking.Car, 3)))
	assert.True(t, decimal.RequireFromString("36.00").Equal(Peak.Fee(parking.Truck, 3)))
	assert.True(t, decimal.RequireFromString("2.00").Equal(OffPeak.Fee(parking.Motorcycle, 1)))
	assert.True(t, decimal.RequireFromString("12.00").Equal(Weekend.Fee(parking.Bus, 0)))
}

func TestHourlyRateFallsBackToCarRate(t *testing.T) {
	assert.True(t, decimal.RequireFromString("7.50").Equal(Peak.HourlyRate(parking.Category(99))))
}

func TestCalculatorUsesClock(t *testing.T) {
	calc := NewCalculator(at(monday.Add(9 * time.Hour)))

	fee, plan := calc.ComputeFee(parking.Car, 2)
	assert.Equal(t, "Peak Hour Pricing", plan)
	assert.True(t, decimal.RequireFromString("15.00").Equal(fee), "got %s", fee)
	assert.Equal(t, "Peak Hour Pricing", calc.ActivePlan())

	calc = NewCalculator(at(monday.AddDate(0, 0, 5)))
	fee, plan = calc.ComputeFee(parking.Motorcycle, 4)
	assert.Equal(t, "Weekend Pricing", plan)
	assert.True(t, decimal.RequireFromString("14.00").Equal(fee), "got %s", fee)
}

func TestCalculatorSatisfiesGarage(t *testing.T) {
	var _ parking.FeeStrategy = (*Calculator)(nil)
	var _ parking.PlanNamer = (*Calculator)(nil)
}

func TestRates(t *testing.T) {
	cards := Rates()
	require.Len(t, cards, 4)

	assert.Equal(t, "Standard Pricing", cards[0].Plan)
	assert.Equal(t, "10.00", cards[0].Rates["Bus"])
	assert.Equal(t, "Off-Peak Pricing", cards[2].Plan)
	assert.Equal(t, "5.50", cards[2].Rates["Truck"])
}
