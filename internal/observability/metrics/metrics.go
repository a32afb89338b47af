package metrics

import (
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "hatchery_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	fetchTotal   *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec

	tickTotal *prometheus.CounterVec

	datasetRows         prometheus.Gauge
	lastSuccessUnix     prometheus.Gauge
	consecutiveFailures prometheus.Gauge
	coercionNulls       *prometheus.CounterVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	alertTotal *prometheus.CounterVec
)

// Init registers monitor metrics on the default registry.
func Init(logger *log.Logger) {
	registerOnce.Do(func() {
		fetchTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "feed_fetch_total",
				Help: "Total feed fetches by result",
			},
			[]string{"result"},
		)
		fetchLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "feed_fetch_latency_seconds",
				Help:    "Feed fetch latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		tickTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "tick_total",
				Help: "Total monitor ticks by result (success or error kind)",
			},
			[]string{"result"},
		)

		datasetRows = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "dataset_rows",
			Help: "Rows in the latest successfully parsed dataset",
		})
		lastSuccessUnix = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "last_success_timestamp_seconds",
			Help: "Unix time of the last successful tick",
		})
		consecutiveFailures = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "consecutive_fetch_failures",
			Help: "Current run of consecutive failed ticks",
		})
		coercionNulls = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "coercion_nulls_total",
				Help: "Cells that failed coercion and became null, by column",
			},
			[]string{"column"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total dataset exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Dataset export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		alertTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "feed_alerts_total",
				Help: "Feed alerts sent by type and result",
			},
			[]string{"type", "result"},
		)

		prometheus.MustRegister(
			fetchTotal,
			fetchLatency,
			tickTotal,
			datasetRows,
			lastSuccessUnix,
			consecutiveFailures,
			coercionNulls,
			exportTotal,
			exportLatency,
			alertTotal,
		)
		if logger != nil {
			logger.Printf("metrics registered")
		}
	})
}

// ObserveFetch records feed fetch duration and result.
func ObserveFetch(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if fetchTotal != nil {
		fetchTotal.WithLabelValues(result).Inc()
	}
	if fetchLatency != nil {
		fetchLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncTick counts a finished tick. result is "success" or an error kind.
func IncTick(result string) {
	if result == "" {
		result = resultSuccess
	}
	if tickTotal != nil {
		tickTotal.WithLabelValues(result).Inc()
	}
}

// SetDataset records the size and time of the latest good dataset.
func SetDataset(rows int, at time.Time) {
	if datasetRows != nil {
		datasetRows.Set(float64(rows))
	}
	if lastSuccessUnix != nil && !at.IsZero() {
		lastSuccessUnix.Set(float64(at.Unix()))
	}
}

// SetConsecutiveFailures records the current failure streak.
func SetConsecutiveFailures(count int) {
	if count < 0 {
		count = 0
	}
	if consecutiveFailures != nil {
		consecutiveFailures.Set(float64(count))
	}
}

// AddCoercionNulls adds null cells for a column.
func AddCoercionNulls(column string, count int) {
	if count <= 0 {
		return
	}
	if column == "" {
		column = "unknown"
	}
	if coercionNulls != nil {
		coercionNulls.WithLabelValues(column).Add(float64(count))
	}
}

// ObserveExport records export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncAlert counts a feed alert delivery attempt.
func IncAlert(alertType, result string) {
	if alertType == "" {
		alertType = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if alertTotal != nil {
		alertTotal.WithLabelValues(alertType, result).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
