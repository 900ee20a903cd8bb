// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package httpapi

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
)

// Metrics holds the request-level Prometheus collectors.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	authAttempts    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhive_http_requests_total",
			Help: "Total number of HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskhive_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhive_auth_attempts_total",
			Help: "Authentication attempts by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}

	for _, c := range []prometheus.Collector{m.requestsTotal, m.requestDuration, m.authAttempts} {
		if err := reg.Register(c); err != nil {
			return nil, oops.Code("METRICS_REGISTER_FAILED").Wrap(err)
		}
	}
	return m, nil
}

// ObserveAuthAttempt records an authentication attempt outcome.
func (m *Metrics) ObserveAuthAttempt(operation string, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.authAttempts.WithLabelValues(operation, outcome).Inc()
}

// Middleware records request counts and latencies. Routes are labeled by
// the matched template, not the raw path, to keep cardinality bounded.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestsTotal.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).
			Observe(time.Since(start).Seconds())
	}
}
