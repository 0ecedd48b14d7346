package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors fed by engine lifecycle hooks.
type Metrics struct {
	Turns         *prometheus.CounterVec
	MemoryPushes  prometheus.Counter
	MemoryRecalls prometheus.Counter
	MemoryDepth   prometheus.Histogram

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg uses a fresh private registry.
func NewMetrics(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		Turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parley_turns_total",
				Help: "Total number of answered utterances by response source and keyword",
			},
			[]string{"source", "keyword"},
		),
		MemoryPushes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parley_memory_pushes_total",
			Help: "Statements queued for later recall",
		}),
		MemoryRecalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parley_memory_recalls_total",
			Help: "Turns answered from the memory queue",
		}),
		MemoryDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "parley_memory_depth",
			Help:    "Memory queue length after each push or recall",
			Buckets: prometheus.LinearBuckets(0, 1, 11),
		}),
		gatherer: reg,
	}

	for _, c := range []prometheus.Collector{m.Turns, m.MemoryPushes, m.MemoryRecalls, m.MemoryDepth} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurn: func(ctx context.Context, e *domain.TurnEvent) {
			m.Turns.WithLabelValues(string(e.Source), e.Keyword).Inc()
		},
		OnMemoryPush: func(ctx context.Context, e *domain.MemoryEvent) {
			m.MemoryPushes.Inc()
			m.MemoryDepth.Observe(float64(e.Depth))
		},
		OnMemoryRecall: func(ctx context.Context, e *domain.MemoryEvent) {
			m.MemoryRecalls.Inc()
			m.MemoryDepth.Observe(float64(e.Depth))
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
