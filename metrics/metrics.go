/*
	Copyright 2023 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

// Package metrics defines the Prometheus metrics exported by the netviz
// service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "netviz"

// Metrics holds the service's collectors.  A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	BatchesStored  prometheus.Counter
	BatchesEvicted prometheus.Counter
	// DataRequests counts HTTP requests by path and status code.
	DataRequests *prometheus.CounterVec
	// RequestDurationMs observes HTTP request latency by path.
	RequestDurationMs *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New returns a Metrics whose collectors are registered in reg.  If reg is
// nil, a new registry is used.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		BatchesStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_stored_total",
			Help:      "Total number of result batches stored",
		}),
		BatchesEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_evicted_total",
			Help:      "Total number of result batches evicted from the cache",
		}),
		DataRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"path", "code"}),
		RequestDurationMs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_ms",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
		}, []string{"path"}),
		gatherer: reg,
	}
	reg.MustRegister(m.BatchesStored, m.BatchesEvicted, m.DataRequests, m.RequestDurationMs)
	return m
}

// BatchStored records a stored batch.
func (m *Metrics) BatchStored() {
	if m != nil {
		m.BatchesStored.Inc()
	}
}

// BatchEvicted records an evicted batch.
func (m *Metrics) BatchEvicted() {
	if m != nil {
		m.BatchesEvicted.Inc()
	}
}

// Request records an HTTP request to path, answered with code after
// durationMs milliseconds.
func (m *Metrics) Request(path, code string, durationMs float64) {
	if m == nil {
		return
	}
	m.DataRequests.WithLabelValues(path, code).Inc()
	m.RequestDurationMs.WithLabelValues(path).Observe(durationMs)
}

// Handler returns an HTTP handler exposing the receiver's metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
