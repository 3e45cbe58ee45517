package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"parking-garage/internal/parking"
)

// NewMetricsRegistry exposes live garage gauges, read on every scrape,
// alongside the Go runtime collectors.
func NewMetricsRegistry(garage *parking.InstrumentedGarage) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"garage": garage.Name()}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "parking_garage_capacity_slots",
			Help:        "Total number of slots in the garage.",
			ConstLabels: labels,
		}, func() float64 {
			return float64(garage.Capacity())
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "parking_garage_free_slots",
			Help:        "Slots currently free.",
			ConstLabels: labels,
		}, func() float64 {
			return float64(garage.Garage.Status().Free)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "parking_garage_occupied_slots",
			Help:        "Slots currently held by a ticket.",
			ConstLabels: labels,
		}, func() float64 {
			return float64(garage.Garage.Status().Occupied)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "parking_garage_active_tickets",
			Help:        "Tickets not yet settled.",
			ConstLabels: labels,
		}, func() float64 {
			return float64(len(garage.ActiveTickets()))
		}),
	)

	return reg
}
