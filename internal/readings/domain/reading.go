package readings

import "time"

// Feed column headers.
const (
	ColumnTimestamp     = "Timestamp"
	ColumnTemperature   = "Temperature (°C)"
	ColumnPH            = "pH"
	ColumnWaterDetected = "Water Detected"
	ColumnTimeOfDay     = "Time of Day"
)

// RequiredColumns lists the header names every feed must carry.
var RequiredColumns = []string{
	ColumnTimestamp,
	ColumnTemperature,
	ColumnPH,
	ColumnWaterDetected,
	ColumnTimeOfDay,
}

// WaterDetectedYes is the only value counted as a water detection.
const WaterDetectedYes = "Yes"

// Time-of-day buckets as written by the sensor sheet.
const (
	TimeOfDayAll       = "All"
	TimeOfDayMorning   = "Morning"
	TimeOfDayAfternoon = "Afternoon"
	TimeOfDayEvening   = "Evening"
	TimeOfDayNight     = "Night"
)

// TimeOfDayOptions are the selector values accepted by Filter callers.
var TimeOfDayOptions = []string{
	TimeOfDayAll,
	TimeOfDayMorning,
	TimeOfDayAfternoon,
	TimeOfDayEvening,
	TimeOfDayNight,
}

// DefaultWindowSize is the number of most recent readings summarized.
const DefaultWindowSize = 10

// Reading is one cleaned row of the feed.
type Reading struct {
	Timestamp     *time.Time `json:"timestamp"`
	TemperatureC  *float64   `json:"temperature_c"`
	PH            *float64   `json:"ph"`
	WaterDetected string     `json:"water_detected"`
	TimeOfDay     string     `json:"time_of_day"`
}

// HasWater reports whether the reading flags water presence.
// The comparison is exact: "yes" or "Yes " do not count.
func (r Reading) HasWater() bool {
	return r.WaterDetected == WaterDetectedYes
}

// Dataset is a sequence of readings, latest first.
type Dataset []Reading

// Latest returns the newest reading, or false when the dataset is empty.
func (d Dataset) Latest() (Reading, bool) {
	if len(d) == 0 {
		return Reading{}, false
	}
	return d[0], true
}

// Recent returns the first n readings. It never returns more rows than the dataset holds.
func (d Dataset) Recent(n int) Dataset {
	if n <= 0 {
		return Dataset{}
	}
	if n > len(d) {
		n = len(d)
	}
	return d[:n:n]
}

// WaterDetectedCount counts readings whose water flag is exactly "Yes".
func (d Dataset) WaterDetectedCount() int {
	count := 0
	for _, r := range d {
		if r.HasWater() {
			count++
		}
	}
	return count
}

// IsValidTimeOfDay reports whether value is an accepted selector value.
func IsValidTimeOfDay(value string) bool {
	for _, option := range TimeOfDayOptions {
		if value == option {
			return true
		}
	}
	return false
}
