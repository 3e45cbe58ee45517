package pricing

import (
	"github.com/shopspring/decimal"

	"parking-garage/internal/parking"
)

// Calculator is the garage's fee strategy. The schedule is chosen from the
// clock at call time.
type Calculator struct {
	clock parking.Clock
}

func NewCalculator(clock parking.Clock) *Calculator {
	if clock == nil {
		clock = parking.SystemClock
	}
	return &Calculator{clock: clock}
}

func (c *Calculator) ComputeFee(category parking.Category, billableHours int) (decimal.Decimal, string) {
	s := Select(c.clock.Now())
	return s.Fee(category, billableHours), s.String()
}

func (c *Calculator) ActivePlan() string {
	return Select(c.clock.Now()).String()
}

type RateCard struct {
	Plan  string            `json:"plan"`
	Rates map[string]string `json:"rates"`
}

// Rates describes every schedule for display.
func Rates() []RateCard {
	cards := make([]RateCard, 0, len(tables))
	for _, s := range Schedules() {
		card := RateCard{Plan: s.String(), Rates: make(map[string]string)}
		for _, c := range parking.Categories() {
			card.Rates[c.String()] = s.HourlyRate(c).StringFixed(2)
		}
		cards = append(cards, card)
	}
	return cards
}
