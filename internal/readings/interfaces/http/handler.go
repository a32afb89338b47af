package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"hatchery-monitor/internal/audit"
	"hatchery-monitor/internal/readings/application"
	readings "hatchery-monitor/internal/readings/domain"
)

// Refresher triggers an out-of-schedule tick.
type Refresher interface {
	RunOnce(ctx context.Context) error
}

// Handler serves the dashboard read API.
type Handler struct {
	dashboard *application.Dashboard
	refresher Refresher
	audit     audit.Logger
	logger    *log.Logger
}

// NewHandler constructs a handler. refresher may be nil, disabling POST /api/v1/refresh.
func NewHandler(dashboard *application.Dashboard, refresher Refresher, auditLog audit.Logger, logger *log.Logger) (*Handler, error) {
	if dashboard == nil {
		return nil, errors.New("readings handler: nil dashboard")
	}
	return &Handler{dashboard: dashboard, refresher: refresher, audit: auditLog, logger: logger}, nil
}

// Snapshot handles GET /api/v1/snapshot. It answers 200 even before the first tick so
// clients can show the diagnostic placeholder.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dashboard.Status())
}

// Readings handles GET /api/v1/readings.
func (h *Handler) Readings(w http.ResponseWriter, r *http.Request) {
	query, err := parseReadingsQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	view, err := h.dashboard.Readings(query)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Trend handles GET /api/v1/trend.
func (h *Handler) Trend(w http.ResponseWriter, r *http.Request) {
	view, err := h.dashboard.Trend(resolveField(r.URL.Query().Get("field")))
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// View handles GET /api/v1/view?page=Data Table|Data Trend.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	page := strings.TrimSpace(r.URL.Query().Get("page"))
	switch page {
	case "", application.PageDataTable:
		query, err := parseReadingsQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		view, err := h.dashboard.Table(query)
		if err != nil {
			h.respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	case application.PageDataTrend:
		h.Trend(w, r)
	default:
		http.Error(w, "page must be Data Table or Data Trend", http.StatusBadRequest)
	}
}

// Refresh handles POST /api/v1/refresh.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.refresher == nil {
		http.Error(w, "refresh disabled", http.StatusNotImplemented)
		return
	}
	err := h.refresher.RunOnce(r.Context())
	if err != nil && h.logger != nil {
		h.logger.Printf("readings refresh failed: err=%v", err)
	}
	status := h.dashboard.Status()
	recordAudit(r, h.audit, h.logger, "refresh", status.SnapshotID, map[string]any{"ok": err == nil})
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, application.ErrNotReady):
		writeJSON(w, http.StatusServiceUnavailable, h.dashboard.Status())
	case errors.Is(err, readings.ErrInvalidTimeOfDay),
		errors.Is(err, readings.ErrUnknownTrendField),
		errors.Is(err, readings.ErrInvalidDate):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		if h.logger != nil {
			h.logger.Printf("readings handler error: err=%v", err)
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func parseReadingsQuery(r *http.Request) (application.ReadingsQuery, error) {
	values := r.URL.Query()
	var query application.ReadingsQuery
	if raw := strings.TrimSpace(values.Get("start")); raw != "" {
		start, err := readings.ParseDate(raw)
		if err != nil {
			return query, errors.New("start must be YYYY-MM-DD")
		}
		query.Start = start
	}
	if raw := strings.TrimSpace(values.Get("end")); raw != "" {
		end, err := readings.ParseDate(raw)
		if err != nil {
			return query, errors.New("end must be YYYY-MM-DD")
		}
		query.End = end
	}
	query.TimeOfDay = strings.TrimSpace(values.Get("time_of_day"))
	if query.TimeOfDay != "" && !readings.IsValidTimeOfDay(query.TimeOfDay) {
		return query, errors.New("time_of_day must be one of " + strings.Join(readings.TimeOfDayOptions, ", "))
	}
	return query, nil
}

func resolveField(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "temperature", "temperature_c":
		return readings.ColumnTemperature
	case "ph":
		return readings.ColumnPH
	default:
		return value
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
