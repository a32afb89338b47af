package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"hatchery-monitor/internal/audit"
	"hatchery-monitor/internal/auth"
	"hatchery-monitor/internal/observability/metrics"
	"hatchery-monitor/internal/readings/application"
	"hatchery-monitor/internal/readings/infrastructure/sheetfeed"
	readingshttp "hatchery-monitor/internal/readings/interfaces/http"
	"hatchery-monitor/internal/readings/notify"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("dotenv load error: %v", err)
	}
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	monitorCfg, err := application.LoadConfig()
	if err != nil {
		logger.Fatalf("monitor config error: %v", err)
	}
	metrics.Init(logger)

	client, err := sheetfeed.NewClient(monitorCfg.FeedURL, sheetfeed.WithTimeout(monitorCfg.FetchTimeout))
	if err != nil {
		logger.Fatalf("feed client error: %v", err)
	}

	store := application.NewSnapshotStore()
	dashboard, err := application.NewDashboard(store, monitorCfg)
	if err != nil {
		logger.Fatalf("dashboard error: %v", err)
	}

	broker := readingshttp.NewSSEBroker()
	observers := []application.TickObserver{broker}
	if monitorCfg.Alerts.WebhookURL != "" {
		alerter, err := buildFeedAlerter(monitorCfg, logger)
		if err != nil {
			logger.Fatalf("feed alerter error: %v", err)
		}
		observers = append(observers, alerter)
	}

	monitor, err := application.NewMonitor(client, store, monitorCfg, logger, application.WithObservers(observers...))
	if err != nil {
		logger.Fatalf("monitor error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Printf("monitor start: feed=%s interval=%s window=%d", client.URL(), monitorCfg.PollInterval, monitorCfg.RecentWindow)
	go monitor.Run(ctx)

	var authMiddleware *auth.Middleware
	if cfg.JWTSecret != "" {
		policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
		authMiddleware = auth.NewMiddleware([]byte(cfg.JWTSecret), policy, logger)
	} else {
		logger.Printf("auth disabled: AUTH_JWT_SECRET is empty")
	}

	router, err := readingshttp.NewRouter(readingshttp.RouterOptions{
		Dashboard:      dashboard,
		Refresher:      monitor,
		Broker:         broker,
		Auth:           authMiddleware,
		Audit:          audit.NewLogWriter(logger),
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})
	if err != nil {
		logger.Fatalf("router error: %v", err)
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           loggingMiddleware(router, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Printf("http shutdown error: %v", err)
		}
	}()

	logger.Printf("http listening on %s", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal(err)
	}
	logger.Printf("http stopped")
}

type config struct {
	HTTPAddr        string
	JWTSecret       string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

func loadConfig() config {
	return config{
		HTTPAddr:        getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:       getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		AllowedOrigins:  splitList(getenvDefault("CORS_ALLOWED_ORIGINS", "")),
		ShutdownTimeout: getenvDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func buildFeedAlerter(cfg application.Config, logger *log.Logger) (*notify.FeedAlerter, error) {
	channel, err := notify.NewWebhookChannel(cfg.Alerts.WebhookURL)
	if err != nil {
		return nil, err
	}
	template, err := notify.NewTemplate(cfg.Alerts.Template)
	if err != nil {
		return nil, err
	}
	return notify.NewFeedAlerter(channel, template, cfg.FeedURL, logger, notify.WithAfterFailures(cfg.Alerts.AfterFailures))
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Flush keeps the SSE stream working behind the logging middleware.
func (w *statusWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
