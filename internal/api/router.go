// Package api wystawia lokalne API dashboardu (JSON + eksporty + /metrics).
package api

import (
	"context"
	"net/http"

	"github.com/bartek5186/spicedash/internal/syncer"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Service to część syncera, której potrzebuje API.
type Service interface {
	Snapshot() *syncer.Snapshot
	Refresh(ctx context.Context) *syncer.Snapshot
	CompleteOrder(ctx context.Context, orderID string) (*syncer.Snapshot, error)
	ClearOverride(ctx context.Context, orderID string) (*syncer.Snapshot, error)
}

type Handler struct {
	log zerolog.Logger
	svc Service
}

// NewRouter buduje router z CORS i middleware metryk.
func NewRouter(log zerolog.Logger, svc Service, corsOrigins []string) http.Handler {
	h := &Handler{log: log, svc: svc}

	r := mux.NewRouter()
	r.Use(metricsMiddleware)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/stats", h.GetStats).Methods("GET")
	api.HandleFunc("/orders", h.ListOrders).Methods("GET")
	api.HandleFunc("/refresh", h.Refresh).Methods("POST")
	api.HandleFunc("/orders/{id}/complete", h.CompleteOrder).Methods("PATCH")
	api.HandleFunc("/orders/{id}/override", h.ClearOverride).Methods("DELETE")
	api.HandleFunc("/export/items.csv", h.ExportItemsCSV).Methods("GET")
	api.HandleFunc("/export/orders.csv", h.ExportOrdersCSV).Methods("GET")
	api.HandleFunc("/export/report.xlsx", h.ExportXLSX).Methods("GET")

	r.HandleFunc("/healthz", h.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         300,
	})
	return c.Handler(r)
}
