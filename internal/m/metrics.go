// Package m contains the prometheus instrumentation of expectation chains.
package m

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "streamexpect"

// Metrics groups the collectors updated by expectation chains. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	slotOutcomes   *prometheus.CounterVec
	valuesRecorded prometheus.Counter
	waitDuration   prometheus.Histogram
	activeChains   prometheus.Gauge
}

// register adds the collector to the registerer; when an equivalent collector
// was registered before (e.g. by another chain) the existing one is returned.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// New registers the expectation chain collectors on the given registerer.
// Chains sharing a registerer share the collectors.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		slotOutcomes: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "slot_outcomes_total",
				Help:      "Number of resolved expectation slots by kind and status.",
			},
			[]string{"kind", "status"},
		)),
		valuesRecorded: register(reg, prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "values_recorded_total",
				Help:      "Number of stream values recorded by expectation chains.",
			},
		)),
		waitDuration: register(reg, prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "wait_duration_seconds",
				Help:      "Time spent blocked waiting for expectations to resolve.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
			},
		)),
		activeChains: register(reg, prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_chains",
				Help:      "Number of expectation chains holding a live subscription.",
			},
		)),
	}
}

// SlotResolved counts a slot outcome
func (mt *Metrics) SlotResolved(kind, status string) {
	if mt == nil {
		return
	}
	mt.slotOutcomes.WithLabelValues(kind, status).Inc()
}

// ValueRecorded counts a stream value
func (mt *Metrics) ValueRecorded() {
	if mt == nil {
		return
	}
	mt.valuesRecorded.Inc()
}

// WaitFinished observes the duration of a wait
func (mt *Metrics) WaitFinished(d time.Duration) {
	if mt == nil {
		return
	}
	mt.waitDuration.Observe(d.Seconds())
}

// ChainSubscribed increments the active chains gauge
func (mt *Metrics) ChainSubscribed() {
	if mt == nil {
		return
	}
	mt.activeChains.Inc()
}

// ChainCancelled decrements the active chains gauge
func (mt *Metrics) ChainCancelled() {
	if mt == nil {
		return
	}
	mt.activeChains.Dec()
}
