// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ModKit Contributors

package eventbus

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// Dispatches counts event dispatches by event id and outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var Dispatches = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "modkit_event_dispatches_total",
		Help: "Total number of event dispatches by outcome",
	},
	[]string{"event", "outcome"},
)

// DispatchDuration is the histogram for dispatch chain duration.
// Use RegisterMetrics to register this with a Prometheus registry.
var DispatchDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "modkit_event_dispatch_duration_seconds",
		Help:    "Event dispatch chain duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"event"},
)

// ListenersRegistered counts successful listener registrations.
// Use RegisterMetrics to register this with a Prometheus registry.
var ListenersRegistered = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "modkit_event_listeners_registered_total",
		Help: "Total number of successful listener registrations",
	},
	[]string{"event"},
)

// OverridesApplied counts override slots applied at dispatch conclusion.
// Use RegisterMetrics to register this with a Prometheus registry.
var OverridesApplied = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "modkit_event_overrides_applied_total",
		Help: "Total number of payload overrides applied by dispatch",
	},
	[]string{"event"},
)

// RegisterMetrics registers event bus metrics with the given Prometheus
// registry. Call once at startup to make metrics available on /metrics.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Dispatches)
	reg.MustRegister(DispatchDuration)
	reg.MustRegister(ListenersRegistered)
	reg.MustRegister(OverridesApplied)
}

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// newDispatchID generates a ULID correlating the log lines of one
// dispatch chain.
func newDispatchID() string {
	entropyLock.Lock()
	defer entropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
