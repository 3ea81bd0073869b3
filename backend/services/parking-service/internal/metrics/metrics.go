package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Entry results.
const (
	ResultEntered       = "entered"
	ResultLotFull       = "lot_full"
	ResultAlreadyParked = "already_parked"
	ResultError         = "error"
)

// Metrics holds the parking collectors.
type Metrics struct {
	EntriesTotal   *prometheus.CounterVec
	ExitsTotal     prometheus.Counter
	FeeAmount      prometheus.Histogram
	StayHours      prometheus.Histogram
	OccupiedSpaces prometheus.Gauge
	CapacitySpaces prometheus.Gauge
	CostChecks     prometheus.Counter

	gatherer prometheus.Gatherer
}

// New creates collectors and registers them on reg. A nil reg uses a fresh
// private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		EntriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parking_entries_total",
				Help: "Entry attempts by result",
			},
			[]string{"result"},
		),
		ExitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "parking_exits_total",
				Help: "Completed parking sessions",
			},
		),
		FeeAmount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "parking_fee_amount",
				Help:    "Amount charged at exit",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
			},
		),
		StayHours: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "parking_stay_hours",
				Help:    "Length of completed stays in hours",
				Buckets: []float64{.5, 1, 2, 4, 8, 12, 24, 48, 168},
			},
		),
		OccupiedSpaces: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "parking_occupied_spaces",
				Help: "Vehicles currently inside the lot",
			},
		),
		CapacitySpaces: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "parking_capacity_spaces",
				Help: "Total spaces in the lot",
			},
		),
		CostChecks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "parking_cost_checks_total",
				Help: "Cost checks for parked vehicles",
			},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.EntriesTotal,
		m.ExitsTotal,
		m.FeeAmount,
		m.StayHours,
		m.OccupiedSpaces,
		m.CapacitySpaces,
		m.CostChecks,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
