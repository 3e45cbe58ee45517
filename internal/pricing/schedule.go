// Package pricing holds the hourly rate tables and picks the one in force
// from the time of week.
package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"parking-garage/internal/parking"
)

type Schedule int

const (
	Standard Schedule = iota
	Peak
	OffPeak
	Weekend
)

const (
	peakStartHour = 8
	peakEndHour   = 18
)

type rateTable struct {
	label    string
	fallback decimal.Decimal
	hourly   map[parking.Category]decimal.Decimal
}

func rates(car, motorcycle, truck, bus string) map[parking.Category]decimal.Decimal {
	return map[parking.Category]decimal.Decimal{
		parking.Car:        decimal.RequireFromString(car),
		parking.Motorcycle: decimal.RequireFromString(motorcycle),
		parking.Truck:      decimal.RequireFromString(truck),
		parking.Bus:        decimal.RequireFromString(bus),
	}
}

var tables = map[Schedule]rateTable{
	Standard: {label: "Standard Pricing", fallback: decimal.RequireFromString("5.00"), hourly: rates("5.00", "3.00", "8.00", "10.00")},
	Peak:     {label: "Peak Hour Pricing", fallback: decimal.RequireFromString("7.50"), hourly: rates("7.50", "4.50", "12.00", "15.00")},
	OffPeak:  {label: "Off-Peak Pricing", fallback: decimal.RequireFromString("3.50"), hourly: rates("3.50", "2.00", "5.50", "7.00")},
	Weekend:  {label: "Weekend Pricing", fallback: decimal.RequireFromString("6.00"), hourly: rates("6.00", "3.50", "9.00", "12.00")},
}

// Schedules lists every schedule in display order.
func Schedules() []Schedule {
	return []Schedule{Standard, Peak, OffPeak, Weekend}
}

func (s Schedule) String() string {
	if t, ok := tables[s]; ok {
		return t.label
	}
	return fmt.Sprintf("Schedule(%d)", int(s))
}

// HourlyRate is the per-hour charge. Categories without an entry pay the
// schedule's car rate.
func (s Schedule) HourlyRate(c parking.Category) decimal.Decimal {
	t := tables[s]
	if r, ok := t.hourly[c]; ok {
		return r
	}
	return t.fallback
}

// Fee charges whole billable hours; anything under one hour bills as one.
func (s Schedule) Fee(c parking.Category, billableHours int) decimal.Decimal {
	if billableHours < 1 {
		billableHours = 1
	}
	return s.HourlyRate(c).Mul(decimal.NewFromInt(int64(billableHours)))
}

// Select picks the schedule for t: weekends all day, peak on weekdays from
// 08:00 until 18:00, off-peak otherwise. Standard is never selected by time.
func Select(t time.Time) Schedule {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return Weekend
	}
	if h := t.Hour(); h >= peakStartHour && h < peakEndHour {
		return Peak
	}
	return OffPeak
}
