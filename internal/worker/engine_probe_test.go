package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestEngineProbeWorker(t *testing.T) {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "renderer_up"})

	var calls atomic.Int32
	checker := HealthCheckFunc(func(context.Context) error {
		if calls.Add(1) == 1 {
			return nil
		}
		return errors.New("engine down")
	})

	w := NewEngineProbeWorker(checker, 10*time.Millisecond, gauge, zerolog.Nop())

	w.probe(context.Background())
	assert.Equal(t, 1.0, testutil.ToFloat64(gauge))

	w.probe(context.Background())
	assert.Equal(t, 0.0, testutil.ToFloat64(gauge))
}

func TestEngineProbeWorker_StopsOnCancel(t *testing.T) {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "renderer_up"})
	var calls atomic.Int32
	checker := HealthCheckFunc(func(context.Context) error {
		calls.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewEngineProbeWorker(checker, 5*time.Millisecond, gauge, zerolog.Nop()).Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(gauge))
}
