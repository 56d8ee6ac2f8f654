// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package metrics exposes Prometheus metrics of the sync server and the
// client agent.
//
// A *Metrics owns its own registry, so several instances can live in one
// process (tests). Every Observe method is safe on a nil *Metrics, which
// turns metrics off.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MKhiriev/go-kitchen-sync/internal/service"
)

const namespace = "kitchensync"

// Sync pass and cycle results used as the "result" label.
const (
	ResultOK              = "ok"
	ResultNetwork         = "network"
	ResultTransaction     = "transaction"
	ResultInvalidSnapshot = "invalid_snapshot"
	ResultUnauthorized    = "unauthorized"
	ResultCancelled       = "cancelled"
	ResultError           = "error"
)

var _ service.SyncObserver = (*Metrics)(nil)

type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	grpcRequests *prometheus.CounterVec
	grpcDuration *prometheus.HistogramVec
	rateLimited  *prometheus.CounterVec

	syncPasses   *prometheus.CounterVec
	syncDuration *prometheus.HistogramVec
	syncEntities *prometheus.CounterVec
	syncCycles   *prometheus.CounterVec
	syncAttempts prometheus.Histogram
}

// New creates the metrics and registers them together with the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served, by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency, by route pattern and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		grpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "grpc",
			Name:      "requests_total",
			Help:      "gRPC calls served, by full method and status code.",
		}, []string{"method", "code"}),
		grpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "grpc",
			Name:      "request_duration_seconds",
			Help:      "gRPC call latency, by full method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-user rate limit, by transport.",
		}, []string{"transport"}),

		syncPasses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "passes_total",
			Help:      "Collection sync passes, by collection and result.",
		}, []string{"collection", "result"}),
		syncDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "pass_duration_seconds",
			Help:      "Duration of a collection sync pass.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"collection"}),
		syncEntities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "entities_total",
			Help:      "Entities pushed or changed locally by sync passes, by collection and action.",
		}, []string{"collection", "action"}),
		syncCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "cycles_total",
			Help:      "Sync cycles over all collections, by result.",
		}, []string{"result"}),
		syncAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "cycle_attempts",
			Help:      "Attempts needed by a sync cycle, retries included.",
			Buckets:   []float64{1, 2, 3, 5, 8},
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration,
		m.grpcRequests, m.grpcDuration,
		m.rateLimited,
		m.syncPasses, m.syncDuration, m.syncEntities,
		m.syncCycles, m.syncAttempts,
	)

	return m
}

// Registry returns the registry the metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveHTTPRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

func (m *Metrics) ObserveGRPCRequest(method, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.grpcRequests.WithLabelValues(method, code).Inc()
	m.grpcDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) ObserveRateLimited(transport string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(transport).Inc()
}

// ObserveSyncPass implements service.SyncObserver.
func (m *Metrics) ObserveSyncPass(report service.SyncReport, err error) {
	if m == nil {
		return
	}
	collection := report.Collection.String()

	m.syncPasses.WithLabelValues(collection, Result(err)).Inc()
	m.syncDuration.WithLabelValues(collection).Observe(report.Duration.Seconds())

	for action, n := range map[string]int{
		"pushed":    report.Accepted,
		"inserted":  report.Reconciled.Inserted,
		"deleted":   report.Reconciled.Deleted,
		"updated":   report.Reconciled.Updated,
		"protected": report.Reconciled.Protected,
	} {
		if n > 0 {
			m.syncEntities.WithLabelValues(collection, action).Add(float64(n))
		}
	}
}

// ObserveSyncCycle implements service.SyncObserver.
func (m *Metrics) ObserveSyncCycle(attempts int, err error) {
	if m == nil {
		return
	}
	m.syncCycles.WithLabelValues(Result(err)).Inc()
	m.syncAttempts.Observe(float64(attempts))
}

// Result names the outcome of a sync pass or cycle. An invalid snapshot wins
// over the retryable errors joined with it.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, service.ErrInvalidSnapshot):
		return ResultInvalidSnapshot
	case errors.Is(err, context.Canceled):
		return ResultCancelled
	case errors.Is(err, service.ErrUnauthorized):
		return ResultUnauthorized
	case errors.Is(err, service.ErrNetwork):
		return ResultNetwork
	case errors.Is(err, service.ErrTransaction):
		return ResultTransaction
	default:
		return ResultError
	}
}
