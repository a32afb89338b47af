package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func valueOf(t *testing.T, collector prometheus.Metric) float64 {
	t.Helper()
	var m dto.Metric
	if err := collector.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if m.Counter != nil {
		return m.GetCounter().GetValue()
	}
	return m.GetGauge().GetValue()
}

func TestHelpersRecordAfterInit(t *testing.T) {
	Init(nil)

	before := valueOf(t, fetchTotal.WithLabelValues(ResultError))
	ObserveFetch(ResultError, 20*time.Millisecond)
	if got := valueOf(t, fetchTotal.WithLabelValues(ResultError)); got != before+1 {
		t.Fatalf("expected fetch counter %v, got %v", before+1, got)
	}

	SetDataset(42, time.Unix(1700000000, 0))
	if got := valueOf(t, datasetRows); got != 42 {
		t.Fatalf("unexpected dataset rows %v", got)
	}
	if got := valueOf(t, lastSuccessUnix); got != 1700000000 {
		t.Fatalf("unexpected last success %v", got)
	}

	SetConsecutiveFailures(-3)
	if got := valueOf(t, consecutiveFailures); got != 0 {
		t.Fatalf("expected clamped failures, got %v", got)
	}

	AddCoercionNulls("pH", 0)
	AddCoercionNulls("pH", 2)
	if got := valueOf(t, coercionNulls.WithLabelValues("pH")); got != 2 {
		t.Fatalf("unexpected coercion nulls %v", got)
	}

	IncAlert("", "")
	if got := valueOf(t, alertTotal.WithLabelValues("unknown", ResultSuccess)); got != 1 {
		t.Fatalf("unexpected alert count %v", got)
	}
}
