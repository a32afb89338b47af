package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hatchery-monitor/internal/audit"
	"hatchery-monitor/internal/auth"
	"hatchery-monitor/internal/readings/application"
)

// RouterOptions wires the dashboard API.
type RouterOptions struct {
	Dashboard      *application.Dashboard
	Refresher      Refresher
	Broker         *SSEBroker
	Auth           *auth.Middleware
	Audit          audit.Logger
	AllowedOrigins []string
	Logger         *log.Logger
}

// NewRouter builds the HTTP routes: the /api/v1 dashboard API plus /healthz and /metrics.
func NewRouter(opts RouterOptions) (http.Handler, error) {
	if opts.Dashboard == nil {
		return nil, errors.New("readings router: nil dashboard")
	}
	handler, err := NewHandler(opts.Dashboard, opts.Refresher, opts.Audit, opts.Logger)
	if err != nil {
		return nil, err
	}
	exports := make(map[string]http.Handler, 3)
	for _, format := range []string{FormatCSV, FormatXLSX, FormatPDF} {
		export, err := NewExportHandler(opts.Dashboard, format, opts.Audit, opts.Logger)
		if err != nil {
			return nil, err
		}
		exports[format] = export
	}

	r := chi.NewRouter()
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	if opts.Auth != nil {
		r.Use(opts.Auth.Wrap)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/snapshot", handler.Snapshot)
		api.Get("/readings", handler.Readings)
		api.Get("/trend", handler.Trend)
		api.Get("/view", handler.View)
		api.Post("/refresh", handler.Refresh)
		api.Method(http.MethodGet, "/exports/readings.csv", exports[FormatCSV])
		api.Method(http.MethodGet, "/exports/readings.xlsx", exports[FormatXLSX])
		api.Method(http.MethodGet, "/exports/readings.pdf", exports[FormatPDF])
		if opts.Broker != nil {
			api.Method(http.MethodGet, "/stream", NewStreamHandler(opts.Broker, opts.Dashboard))
		}
	})
	return r, nil
}
