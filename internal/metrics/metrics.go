// Package metrics trzyma liczniki Prometheusa wystawiane pod /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spicedash_refresh_total",
		Help: "Liczba odświeżeń zamówień wg wyniku (ok, error).",
	}, []string{"result"})

	RefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spicedash_refresh_duration_seconds",
		Help:    "Czas pełnego odświeżenia (pobranie + agregacja).",
		Buckets: prometheus.DefBuckets,
	})

	Orders = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "spicedash_orders",
		Help: "Zamówienia w ostatnim snapshocie wg uzgodnionego statusu.",
	}, []string{"status"})

	Overrides = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "spicedash_status_overrides",
		Help: "Liczba lokalnych override'ów statusu.",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spicedash_http_requests_total",
		Help: "Żądania lokalnego API.",
	}, []string{"method", "route", "code"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "spicedash_http_request_duration_seconds",
		Help:    "Czas obsługi żądań lokalnego API.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// ObserveOrders ustawia gauge per status.
func ObserveOrders(pending, inProgress, complete int) {
	Orders.WithLabelValues("pending").Set(float64(pending))
	Orders.WithLabelValues("in_progress").Set(float64(inProgress))
	Orders.WithLabelValues("complete").Set(float64(complete))
}
