/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package metrics wraps prometheus/client_golang behind the small
// collaborator contract the connection loop, rate limiter, pool and
// WebSocket registry call into, and exposes a promhttp handler for scraping.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

// Metrics is the collaborator contract core components depend on, so the
// connection loop doesn't need to import prometheus directly.
type Metrics interface {
	IncrementCounter(name string, labels map[string]string)
	RecordHistogram(name string, value float64, labels map[string]string)
	SetGauge(name string, value float64, labels map[string]string)
}

type registry struct {
	reg        *prometheus.Registry
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
	gauges     map[string]*prometheus.GaugeVec
}

// New builds a Metrics backed by a fresh prometheus.Registry pre-populated
// with the engine's core series: request counters/duration by status and
// method, pool acquire/exhaustion counters, rate-limiter rejections, and a
// WebSocket active-connection gauge.
func New() Metrics {
	reg := prometheus.NewRegistry()

	r := &registry{
		reg:        reg,
		counters:   map[string]*prometheus.CounterVec{},
		histograms: map[string]*prometheus.HistogramVec{},
		gauges:     map[string]*prometheus.GaugeVec{},
	}

	r.declareCounter("http_requests_total", "method", "path", "status")
	r.declareCounter("pool_acquire_total", "host")
	r.declareCounter("pool_exhausted_total", "host")
	r.declareCounter("ratelimit_rejected_total", "client")
	r.declareHistogram("http_request_duration_seconds", "method", "path")
	r.declareGauge("ws_active_connections", "path")
	r.declareGauge("active_connections")

	return r
}

func (r *registry) declareCounter(name string, labels ...string) {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name}, labels)
	r.reg.MustRegister(c)
	r.counters[name] = c
}

func (r *registry) declareHistogram(name string, labels ...string) {
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name}, labels)
	r.reg.MustRegister(h)
	r.histograms[name] = h
}

func (r *registry) declareGauge(name string, labels ...string) {
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name}, labels)
	r.reg.MustRegister(g)
	r.gauges[name] = g
}

func (r *registry) IncrementCounter(name string, labels map[string]string) {
	c, ok := r.counters[name]
	if !ok {
		return
	}
	c.With(labels).Inc()
}

func (r *registry) RecordHistogram(name string, value float64, labels map[string]string) {
	h, ok := r.histograms[name]
	if !ok {
		return
	}
	h.With(labels).Observe(value)
}

func (r *registry) SetGauge(name string, value float64, labels map[string]string) {
	g, ok := r.gauges[name]
	if !ok {
		return
	}
	g.With(labels).Set(value)
}

// Handler exposes the registry's series for scraping, e.g. mounted at
// /metrics.
func (r *registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Handler is a package-level helper for callers holding the Metrics
// interface, which doesn't itself expose Handler.
func Handler(m Metrics) http.Handler {
	if r, ok := m.(*registry); ok {
		return r.Handler()
	}
	return promhttp.Handler()
}
