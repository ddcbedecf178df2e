// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultApplied = "applied"
	ResultNoop    = "noop"
	ResultError   = "error"
)

// Short link resolution outcomes.
const (
	LinkResolved  = "resolved"
	LinkUndecoded = "undecodable"
	LinkMissing   = "missing"
	LinkFailed    = "error"
)

var (
	// RelationToggles counts add/remove calls on relation edges.
	// Labels:
	//   - kind: favorite, shopping_cart, subscription
	//   - op: add, remove
	//   - result: applied, noop, error
	RelationToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_relation_toggles_total",
			Help: "Total number of relation toggle operations",
		},
		[]string{"kind", "op", "result"},
	)

	ShoppingListExports = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_shopping_list_exports_total",
			Help: "Total number of aggregated shopping lists produced",
		},
	)

	// ShortLinkResolutions counts /r/{code} lookups by outcome (recipe, fallback).
	ShortLinkResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_short_link_resolutions_total",
			Help: "Total number of short link resolutions",
		},
		[]string{"outcome"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// RecordRelationToggle records one toggle outcome. err takes precedence over applied.
func RecordRelationToggle(kind, op string, applied bool, err error) {
	result := ResultNoop
	switch {
	case err != nil:
		result = ResultError
	case applied:
		result = ResultApplied
	}
	RelationToggles.WithLabelValues(kind, op, result).Inc()
}

func RecordShoppingListExport() {
	ShoppingListExports.Inc()
}

func RecordShortLinkResolution(outcome string) {
	ShortLinkResolutions.WithLabelValues(outcome).Inc()
}

func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}
