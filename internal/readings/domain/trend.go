package readings

import (
	"sort"
	"time"
)

// TrendFields are the field names accepted by Trend.
var TrendFields = []string{ColumnTemperature, ColumnPH}

// TrendPoint is one charted value. Value is nil where the cell failed to parse.
type TrendPoint struct {
	At    time.Time `json:"at"`
	Value *float64  `json:"value"`
}

// TrendSeries is a field's values in ascending time order.
type TrendSeries struct {
	Field  string       `json:"field"`
	Points []TrendPoint `json:"points"`
}

// Trend builds the chart series for field over the whole dataset.
// Readings without a timestamp are skipped.
func Trend(d Dataset, field string) (TrendSeries, error) {
	var pick func(Reading) *float64
	switch field {
	case ColumnTemperature:
		pick = temperatureOf
	case ColumnPH:
		pick = phOf
	default:
		return TrendSeries{}, ErrUnknownTrendField
	}

	points := make([]TrendPoint, 0, len(d))
	for _, r := range d {
		if r.Timestamp == nil {
			continue
		}
		points = append(points, TrendPoint{At: *r.Timestamp, Value: pick(r)})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].At.Before(points[j].At)
	})
	return TrendSeries{Field: field, Points: points}, nil
}
