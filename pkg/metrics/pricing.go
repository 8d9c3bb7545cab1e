package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PricingMetrics records discount resolution outcomes.
type PricingMetrics struct {
	resolutions *prometheus.CounterVec
	failures    *prometheus.CounterVec
	batchSize   prometheus.Histogram
}

// NewPricingMetrics registers the pricing metrics on the provided registerer.
func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_resolutions_total",
		Help: "Resolved product prices by account type and discount source.",
	}, []string{"account_type", "source"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_resolution_failures_total",
		Help: "Price resolutions that failed, by account type.",
	}, []string{"account_type"})
	batchSize := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pricing_batch_size",
		Help:    "Number of products per batch resolution.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})
	reg.MustRegister(resolutions, failures, batchSize)
	return &PricingMetrics{
		resolutions: resolutions,
		failures:    failures,
		batchSize:   batchSize,
	}
}

// ObserveResolution counts a successful resolution.
func (p *PricingMetrics) ObserveResolution(accountType, source string) {
	if p == nil || p.resolutions == nil {
		return
	}
	p.resolutions.WithLabelValues(normalizeLabel(accountType), normalizeLabel(source)).Inc()
}

// ObserveFailure counts a failed resolution.
func (p *PricingMetrics) ObserveFailure(accountType string) {
	if p == nil || p.failures == nil {
		return
	}
	p.failures.WithLabelValues(normalizeLabel(accountType)).Inc()
}

// ObserveBatch records the size of a batch request.
func (p *PricingMetrics) ObserveBatch(size int) {
	if p == nil || p.batchSize == nil {
		return
	}
	p.batchSize.Observe(float64(size))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
