package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeAbsent  = "absent"
	OutcomeError   = "error"
)

// InventoryMetrics records purchase and catalog lookup activity.
type InventoryMetrics struct {
	purchases     *prometheus.CounterVec
	unitsSold     prometheus.Counter
	lookupLatency *prometheus.HistogramVec
}

// NewInventoryMetrics registers the inventory metrics on the provided registerer.
// A nil registerer yields a recorder whose methods are no-ops.
func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	purchases := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_purchases_total",
		Help: "Purchase attempts by outcome.",
	}, []string{"outcome"})
	unitsSold := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_units_sold_total",
		Help: "Units removed from stock by successful purchases.",
	})
	lookupLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inventory_catalog_lookup_duration_seconds",
		Help:    "Duration of product catalog lookups in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	reg.MustRegister(purchases, unitsSold, lookupLatency)
	return &InventoryMetrics{
		purchases:     purchases,
		unitsSold:     unitsSold,
		lookupLatency: lookupLatency,
	}
}

// ObservePurchase counts a purchase attempt. Successful attempts also add
// quantity to the units sold counter.
func (m *InventoryMetrics) ObservePurchase(outcome string, quantity int) {
	if m == nil || m.purchases == nil {
		return
	}
	outcome = normalizeLabel(outcome)
	m.purchases.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess && quantity > 0 {
		m.unitsSold.Add(float64(quantity))
	}
}

// ObserveLookup records the duration of one catalog lookup.
func (m *InventoryMetrics) ObserveLookup(outcome string, duration time.Duration) {
	if m == nil || m.lookupLatency == nil {
		return
	}
	m.lookupLatency.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "unknown"
	}
	return value
}
