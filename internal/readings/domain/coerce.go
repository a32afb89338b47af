package readings

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultTimestampLayouts are tried in order when parsing the Timestamp column.
var DefaultTimestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"2006-01-02",
	"1/2/2006",
}

var groupedNumber = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+$`)

// ParseNumber coerces dirty spreadsheet text into a float.
// Commas are thousands separators when the text also has a decimal point
// or is grouped in threes; a single other comma is a decimal comma.
// Unparsable input returns nil.
func ParseNumber(raw string) *float64 {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}
	switch {
	case strings.Contains(text, "."):
		text = strings.ReplaceAll(text, ",", "")
	case groupedNumber.MatchString(text):
		text = strings.ReplaceAll(text, ",", "")
	case strings.Count(text, ",") == 1:
		text = strings.Replace(text, ",", ".", 1)
	default:
		text = strings.ReplaceAll(text, ",", "")
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}
	return &value
}

// ParseTimestamp parses raw against layouts in loc. Unparsable input returns nil.
func ParseTimestamp(raw string, layouts []string, loc *time.Location) *time.Time {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}
	if len(layouts) == 0 {
		layouts = DefaultTimestampLayouts
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range layouts {
		ts, err := time.ParseInLocation(layout, text, loc)
		if err == nil {
			return &ts
		}
	}
	return nil
}
