// Copyright (c) 2026 GenrA. All rights reserved.

// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts finished requests by route pattern and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genra_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration observes request latency by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "genra_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// AuthEventsTotal counts sign-ins, sign-ups, refreshes and suspensions.
	AuthEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genra_auth_events_total",
			Help: "Authentication events by type",
		},
		[]string{"event"},
	)

	// BookViewsTotal counts view-count increments.
	BookViewsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "genra_book_views_total",
			Help: "Total number of recorded book views",
		},
	)
)

// Auth event labels.
const (
	EventSignUp    = "sign_up"
	EventSignIn    = "sign_in"
	EventOAuth     = "oauth"
	EventRefresh   = "refresh"
	EventSuspended = "suspended"
	EventReset     = "password_reset"
)

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
