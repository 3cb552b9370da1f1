package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	capabilityTotal *prometheus.CounterVec
	capabilityMs    *prometheus.HistogramVec
}

func New() *Metrics {
	r := prometheus.NewRegistry()
	m := &Metrics{
		registry: r,
		capabilityTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "goaly_ai_capability_calls_total",
			Help: "Total number of AI capability invocations.",
		}, []string{"capability", "outcome"}),
		capabilityMs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "goaly_ai_capability_latency_ms",
			Help:    "AI capability latency in milliseconds, network call included.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000},
		}, []string{"capability", "outcome"}),
	}
	r.MustRegister(m.capabilityTotal, m.capabilityMs)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveCapability 记录一次能力调用；outcome 取 ok / error / fallback。
func (m *Metrics) ObserveCapability(capability, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.capabilityTotal.WithLabelValues(capability, outcome).Inc()
	m.capabilityMs.WithLabelValues(capability, outcome).Observe(float64(dur.Milliseconds()))
}
