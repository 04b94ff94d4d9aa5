package worker

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// HealthChecker reports whether the rendering pipeline is usable.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// HealthCheckFunc adapts a function to HealthChecker.
type HealthCheckFunc func(ctx context.Context) error

func (f HealthCheckFunc) Check(ctx context.Context) error { return f(ctx) }

// EngineProbeWorker periodically checks the renderer and exports the result
// as a 0/1 gauge.
type EngineProbeWorker struct {
	checker  HealthChecker
	interval time.Duration
	up       prometheus.Gauge
	logger   zerolog.Logger
}

func NewEngineProbeWorker(checker HealthChecker, interval time.Duration, up prometheus.Gauge, logger zerolog.Logger) *EngineProbeWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &EngineProbeWorker{
		checker:  checker,
		interval: interval,
		up:       up,
		logger:   logger.With().Str("component", "engine_probe").Logger(),
	}
}

// Start probes once immediately and then on every tick until ctx is done.
func (w *EngineProbeWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.probe(ctx)
		}
	}
}

func (w *EngineProbeWorker) probe(ctx context.Context) {
	if err := w.checker.Check(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		w.up.Set(0)
		w.logger.Warn().Err(err).Msg("rendering engine probe failed")
		return
	}
	w.up.Set(1)
}
