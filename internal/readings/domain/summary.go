package readings

import (
	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

// FieldStats holds rounded aggregates over the non-null values of one field.
// Mean, Min and Max are nil when Count is zero.
type FieldStats struct {
	Mean  *float64 `json:"mean"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
	Count int      `json:"count"`
}

// Defined reports whether the aggregates were computed over at least one value.
func (s FieldStats) Defined() bool {
	return s.Count > 0
}

// Summary is the per-tick aggregate view of a dataset.
type Summary struct {
	Latest             *Reading   `json:"latest"`
	RowCount           int        `json:"row_count"`
	WindowSize         int        `json:"window_size"`
	WaterDetectedCount int        `json:"water_detected_count"`
	Temperature        FieldStats `json:"temperature"`
	PH                 FieldStats `json:"ph"`
}

// Summarize computes recent-window statistics and the dataset-wide water count.
func Summarize(d Dataset, window int) Summary {
	recent := d.Recent(window)
	summary := Summary{
		RowCount:           len(d),
		WindowSize:         len(recent),
		WaterDetectedCount: d.WaterDetectedCount(),
		Temperature:        ComputeFieldStats(values(recent, temperatureOf)),
		PH:                 ComputeFieldStats(values(recent, phOf)),
	}
	if latest, ok := d.Latest(); ok {
		summary.Latest = &latest
	}
	return summary
}

// StatsFor returns the aggregates for a trend field name.
func (s Summary) StatsFor(field string) (FieldStats, error) {
	switch field {
	case ColumnTemperature:
		return s.Temperature, nil
	case ColumnPH:
		return s.PH, nil
	default:
		return FieldStats{}, ErrUnknownTrendField
	}
}

// ComputeFieldStats aggregates data, rounding to two decimals.
func ComputeFieldStats(data []float64) FieldStats {
	if len(data) == 0 {
		return FieldStats{}
	}
	input := stats.Float64Data(data)
	mean, err := input.Mean()
	if err != nil {
		return FieldStats{}
	}
	minimum, err := input.Min()
	if err != nil {
		return FieldStats{}
	}
	maximum, err := input.Max()
	if err != nil {
		return FieldStats{}
	}
	return FieldStats{
		Mean:  round2(mean),
		Min:   round2(minimum),
		Max:   round2(maximum),
		Count: len(data),
	}
}

func round2(value float64) *float64 {
	rounded, _ := decimal.NewFromFloat(value).RoundBank(2).Float64()
	return &rounded
}

func temperatureOf(r Reading) *float64 { return r.TemperatureC }

func phOf(r Reading) *float64 { return r.PH }

func values(d Dataset, field func(Reading) *float64) []float64 {
	out := make([]float64, 0, len(d))
	for _, r := range d {
		if v := field(r); v != nil {
			out = append(out, *v)
		}
	}
	return out
}
