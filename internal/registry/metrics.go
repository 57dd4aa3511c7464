// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ModKit Contributors

package registry

import "github.com/prometheus/client_golang/prometheus"

// Registrations counts registry operations by handle kind and operation.
// Use RegisterMetrics to register this with a Prometheus registry.
var Registrations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "modkit_registry_operations_total",
		Help: "Total number of successful registry operations",
	},
	[]string{"kind", "operation"},
)

// RegisterMetrics registers registry metrics with the given Prometheus
// registry. Call once at startup to make metrics available on /metrics.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Registrations)
}

func recordRegistration(kind, operation string) {
	Registrations.WithLabelValues(kind, operation).Inc()
}
