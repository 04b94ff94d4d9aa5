package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds document generation metrics
type Metrics struct {
	DocumentsGenerated *prometheus.CounterVec
	RenderLatency      *prometheus.HistogramVec
	DocumentSize       *prometheus.HistogramVec
	LoginFailures      prometheus.Counter
	RendererUp         prometheus.Gauge
}

// New creates document metrics and registers them with reg. A nil registerer
// leaves them unregistered.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DocumentsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_generated_total",
			Help:      "Total number of document generation attempts",
		}, []string{"kind", "status"}),
		RenderLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_render_duration_seconds",
			Help:      "Time spent assembling and rendering documents",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"kind"}),
		DocumentSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_size_bytes",
			Help:      "Size of generated documents before encoding",
			Buckets:   prometheus.ExponentialBuckets(1024, 2, 12),
		}, []string{"kind"}),
		LoginFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_failures_total",
			Help:      "Total number of rejected login attempts",
		}),
		RendererUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "renderer_up",
			Help:      "Whether the last rendering engine probe succeeded",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.DocumentsGenerated, m.RenderLatency, m.DocumentSize, m.LoginFailures, m.RendererUp)
	}
	return m
}
