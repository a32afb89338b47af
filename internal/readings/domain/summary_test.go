package readings

import (
	"testing"
	"time"
)

func datasetOf(n int) Dataset {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	ds := make(Dataset, 0, n)
	for i := 0; i < n; i++ {
		ts := base.Add(-time.Duration(i) * time.Hour)
		temp := float64(20 + i)
		ds = append(ds, Reading{Timestamp: &ts, TemperatureC: &temp, WaterDetected: "No"})
	}
	return ds
}

func TestSummarize_WindowSize(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 11, 25} {
		summary := Summarize(datasetOf(n), DefaultWindowSize)
		want := n
		if want > DefaultWindowSize {
			want = DefaultWindowSize
		}
		if summary.WindowSize != want {
			t.Fatalf("n=%d: expected window %d, got %d", n, want, summary.WindowSize)
		}
		if summary.RowCount != n {
			t.Fatalf("n=%d: expected row count %d, got %d", n, n, summary.RowCount)
		}
	}
}

func TestSummarize_StatsOverRecentWindowOnly(t *testing.T) {
	summary := Summarize(datasetOf(15), DefaultWindowSize)
	// window holds temperatures 20..29
	if *summary.Temperature.Min != 20 || *summary.Temperature.Max != 29 {
		t.Fatalf("unexpected min/max: %v/%v", *summary.Temperature.Min, *summary.Temperature.Max)
	}
	if *summary.Temperature.Mean != 24.5 {
		t.Fatalf("expected mean 24.5, got %v", *summary.Temperature.Mean)
	}
	if summary.Temperature.Count != 10 {
		t.Fatalf("expected count 10, got %d", summary.Temperature.Count)
	}
}

func TestSummarize_AllNullWindow(t *testing.T) {
	ds := datasetOf(3)
	for i := range ds {
		ds[i].TemperatureC = nil
	}
	summary := Summarize(ds, DefaultWindowSize)
	if summary.Temperature.Defined() {
		t.Fatalf("expected undefined temperature stats, got %+v", summary.Temperature)
	}
	if summary.Temperature.Mean != nil || summary.Temperature.Min != nil || summary.Temperature.Max != nil {
		t.Fatalf("expected nil aggregates, got %+v", summary.Temperature)
	}
	if summary.PH.Defined() {
		t.Fatalf("expected undefined pH stats")
	}
}

func TestSummarize_NullsSkipped(t *testing.T) {
	ds := datasetOf(4)
	ds[1].TemperatureC = nil
	summary := Summarize(ds, DefaultWindowSize)
	// 20, 22, 23
	if summary.Temperature.Count != 3 || *summary.Temperature.Mean != 21.67 {
		t.Fatalf("unexpected stats: %+v mean=%v", summary.Temperature, *summary.Temperature.Mean)
	}
}

func TestSummarize_WaterCountExactMatch(t *testing.T) {
	ds := datasetOf(15)
	flags := []string{"Yes", "yes", "YES ", " Yes", "Yes", "No", "", "Y", "YES", "Yes"}
	for i, flag := range flags {
		ds[i].WaterDetected = flag
	}
	// the count spans the whole dataset, not the window
	ds[14].WaterDetected = "Yes"
	summary := Summarize(ds, DefaultWindowSize)
	if summary.WaterDetectedCount != 4 {
		t.Fatalf("expected 4 detections, got %d", summary.WaterDetectedCount)
	}
}

func TestComputeFieldStats_Rounding(t *testing.T) {
	got := ComputeFieldStats([]float64{7.123, 7.456, 7.001})
	if *got.Mean != 7.19 || *got.Min != 7 || *got.Max != 7.46 {
		t.Fatalf("unexpected rounding: mean=%v min=%v max=%v", *got.Mean, *got.Min, *got.Max)
	}
}

func TestSummaryStatsFor(t *testing.T) {
	summary := Summarize(datasetOf(2), DefaultWindowSize)
	if _, err := summary.StatsFor(ColumnTemperature); err != nil {
		t.Fatalf("temperature: %v", err)
	}
	if _, err := summary.StatsFor("Salinity"); err != ErrUnknownTrendField {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}
