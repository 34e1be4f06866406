/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package metrics provides Prometheus metrics for the LarkMQ metadata
// service, exposed at /metrics in Prometheus text format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "larkmq"

// Metrics holds the metadata service's instrumentation. All metric families
// live in a private registry so tests can create isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	// AdminOperations counts administrative operations by name and outcome.
	// Labels: operation (create_topic, add_partitions, delete_topic,
	// change_config, fetch_metadata, list_topics), outcome (ok, error).
	AdminOperations *prometheus.CounterVec

	// AdminOperationDuration observes administrative operation latency.
	// Labels: operation.
	AdminOperationDuration *prometheus.HistogramVec

	// ConfigChanges counts appended config-change notifications.
	// Labels: entity_type (topic, client).
	ConfigChanges *prometheus.CounterVec

	// NotifyEvents counts change events delivered to subscribers.
	NotifyEvents prometheus.Counter

	// StoreErrors counts failed coordination-store operations as seen by
	// the admin surface.
	StoreErrors prometheus.Counter

	// WatchStreams tracks currently connected notification stream clients.
	WatchStreams prometheus.Gauge
}

// New creates a Metrics instance with its own registry, including the
// standard Go runtime and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		AdminOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admin",
			Name:      "operations_total",
			Help:      "Administrative operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		AdminOperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "admin",
			Name:      "operation_duration_seconds",
			Help:      "Administrative operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		ConfigChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "config",
			Name:      "changes_total",
			Help:      "Config-change notifications appended, by entity type.",
		}, []string{"entity_type"}),
		NotifyEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "events_delivered_total",
			Help:      "Change events delivered to subscribers.",
		}),
		StoreErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "Failed coordination-store operations.",
		}),
		WatchStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "watch_streams",
			Help:      "Currently connected notification stream clients.",
		}),
	}

	registry.MustRegister(
		m.AdminOperations,
		m.AdminOperationDuration,
		m.ConfigChanges,
		m.NotifyEvents,
		m.StoreErrors,
		m.WatchStreams,
	)
	return m
}

// ObserveOperation records one administrative operation's outcome and
// duration.
func (m *Metrics) ObserveOperation(operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.AdminOperations.WithLabelValues(operation, outcome).Inc()
	m.AdminOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, used by tests to gather metric
// families.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
