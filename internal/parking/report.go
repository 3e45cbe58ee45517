package parking

import (
	"time"

	"github.com/shopspring/decimal"
)

type DailySummary struct {
	Date          string          `json:"date"`
	Entries       int             `json:"entries"`
	Exits         int             `json:"exits"`
	Active        int             `json:"active"`
	Free          int             `json:"free"`
	Occupied      int             `json:"occupied"`
	Revenue       decimal.Decimal `json:"revenue"`
	MonthlyPasses int             `json:"monthly_passes"`
	SingleEntries int             `json:"single_entry_passes"`
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DailySummary tallies traffic and revenue for the calendar day containing
// day, in day's location. Revenue counts settled tickets that left that day.
func (g *Garage) DailySummary(day time.Time) DailySummary {
	g.mu.Lock()
	defer g.mu.Unlock()

	loc := day.Location()
	summary := DailySummary{
		Date:    day.Format("2006-01-02"),
		Active:  len(g.active),
		Revenue: decimal.Zero,
	}

	for _, t := range g.history {
		if sameDay(t.CheckIn.In(loc), day) {
			summary.Entries++
		}
		if t.CheckOut != nil && sameDay(t.CheckOut.In(loc), day) {
			summary.Exits++
			summary.Revenue = summary.Revenue.Add(t.Fee)
		}
	}
	for _, t := range g.active {
		if sameDay(t.CheckIn.In(loc), day) {
			summary.Entries++
		}
	}

	status := g.registry.Status()
	summary.Free = status.Free
	summary.Occupied = status.Occupied

	now := g.clock.Now()
	summary.MonthlyPasses = g.passes.CountValid(MonthlyPass, now)
	summary.SingleEntries = g.passes.CountValid(SingleEntryPass, now)

	return summary
}
