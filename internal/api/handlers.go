package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bartek5186/spicedash/internal/export"
	"github.com/bartek5186/spicedash/internal/orders"
	"github.com/bartek5186/spicedash/internal/syncer"
	"github.com/gorilla/mux"
)

type snapshotMeta struct {
	Source      string    `json:"source"`
	RefreshedAt time.Time `json:"refreshed_at"`
	FetchError  string    `json:"fetch_error,omitempty"`
	Seq         uint64    `json:"seq"`
}

type statsResponse struct {
	Stats orders.DashboardStats `json:"stats"`
	Meta  snapshotMeta          `json:"meta"`
}

type ordersResponse struct {
	Orders []orders.Order `json:"orders"`
	Meta   snapshotMeta   `json:"meta"`
}

type completeResponse struct {
	statsResponse
	Warning string `json:"warning,omitempty"`
}

func metaOf(s *syncer.Snapshot) snapshotMeta {
	return snapshotMeta{Source: s.Source, RefreshedAt: s.RefreshedAt, FetchError: s.FetchError, Seq: s.Seq}
}

// GetStats handles GET /api/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	s := h.svc.Snapshot()
	writeJSON(w, http.StatusOK, statsResponse{Stats: s.Stats, Meta: metaOf(s)})
}

// ListOrders handles GET /api/orders
// Query params: status=pending|in_progress|complete
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	s := h.svc.Snapshot()
	list := s.Orders
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, ok := orders.ParseStatus(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("nieznany status %q", raw))
			return
		}
		list = orders.FilterByStatus(list, st)
	}
	if list == nil {
		list = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, ordersResponse{Orders: list, Meta: metaOf(s)})
}

// Refresh handles POST /api/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	s := h.svc.Refresh(r.Context())
	writeJSON(w, http.StatusOK, statsResponse{Stats: s.Stats, Meta: metaOf(s)})
}

// CompleteOrder handles PATCH /api/orders/{id}/complete
func (h *Handler) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s, err := h.svc.CompleteOrder(r.Context(), id)

	var srcErr *syncer.SourceError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, completeResponse{statsResponse: statsResponse{Stats: s.Stats, Meta: metaOf(s)}})
	case errors.As(err, &srcErr) && s != nil:
		// override zapisany, tylko backend nie przyjął zgłoszenia
		h.log.Warn().Err(err).Str("order_id", id).Msg("api: zakończenie tylko lokalne")
		writeJSON(w, http.StatusAccepted, completeResponse{
			statsResponse: statsResponse{Stats: s.Stats, Meta: metaOf(s)},
			Warning:       err.Error(),
		})
	default:
		h.log.Error().Err(err).Str("order_id", id).Msg("api: complete nieudane")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// ClearOverride handles DELETE /api/orders/{id}/override
func (h *Handler) ClearOverride(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s, err := h.svc.ClearOverride(r.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Str("order_id", id).Msg("api: usunięcie override'u nieudane")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Stats: s.Stats, Meta: metaOf(s)})
}

// ExportItemsCSV handles GET /api/export/items.csv
func (h *Handler) ExportItemsCSV(w http.ResponseWriter, r *http.Request) {
	s := h.svc.Snapshot()
	h.sendFile(w, "text/csv; charset=utf-8", export.FileName("items", "csv", time.Now()), func(out io.Writer) error {
		return export.WriteItemsCSV(out, s.Stats)
	})
}

// ExportOrdersCSV handles GET /api/export/orders.csv
func (h *Handler) ExportOrdersCSV(w http.ResponseWriter, r *http.Request) {
	s := h.svc.Snapshot()
	h.sendFile(w, "text/csv; charset=utf-8", export.FileName("orders", "csv", time.Now()), func(out io.Writer) error {
		return export.WriteOrdersCSV(out, s.Orders)
	})
}

// ExportXLSX handles GET /api/export/report.xlsx
func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	s := h.svc.Snapshot()
	now := time.Now()
	h.sendFile(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", export.FileName("report", "xlsx", now), func(out io.Writer) error {
		return export.WriteXLSX(out, export.Report{Stats: s.Stats, Orders: s.Orders, GeneratedAt: now})
	})
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	s := h.svc.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "seq": s.Seq})
}

// sendFile buforuje całość, żeby błąd zapisu dał 500 zamiast uciętego pliku.
func (h *Handler) sendFile(w http.ResponseWriter, contentType, filename string, write func(io.Writer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		h.log.Error().Err(err).Str("file", filename).Msg("api: eksport nieudany")
		writeError(w, http.StatusInternalServerError, "eksport nieudany")
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
