package readings

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// ParseOptions controls timestamp interpretation.
type ParseOptions struct {
	TimestampLayouts []string
	Location         *time.Location
}

// ParseReport summarizes cell-level coercion failures for one parse.
type ParseReport struct {
	Rows              int `json:"rows"`
	NullTimestamps    int `json:"null_timestamps"`
	NullTemperatures  int `json:"null_temperatures"`
	NullPH            int `json:"null_ph"`
	IgnoredExtraCells int `json:"ignored_extra_cells"`
}

const utf8BOM = "\ufeff"

// ParseFeed parses raw CSV into a dataset sorted latest first.
// Cell coercion failures become nil values; a missing required column fails the whole parse.
func ParseFeed(raw []byte, opts ParseOptions) (Dataset, ParseReport, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ParseReport{}, ErrEmptyFeed
	}
	if err != nil {
		return nil, ParseReport{}, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, ParseReport{}, err
	}

	var (
		report  ParseReport
		dataset Dataset
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, ParseReport{}, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
		}
		if isBlankRecord(record) {
			continue
		}
		if len(record) > len(header) {
			report.IgnoredExtraCells += len(record) - len(header)
		}
		cell := func(column string) string {
			pos := index[column]
			if pos >= len(record) {
				return ""
			}
			return record[pos]
		}

		reading := Reading{
			Timestamp:     ParseTimestamp(cell(ColumnTimestamp), opts.TimestampLayouts, opts.Location),
			TemperatureC:  ParseNumber(cell(ColumnTemperature)),
			PH:            ParseNumber(cell(ColumnPH)),
			WaterDetected: cell(ColumnWaterDetected),
			TimeOfDay:     cell(ColumnTimeOfDay),
		}
		if reading.Timestamp == nil {
			report.NullTimestamps++
		}
		if reading.TemperatureC == nil {
			report.NullTemperatures++
		}
		if reading.PH == nil {
			report.NullPH++
		}
		dataset = append(dataset, reading)
	}
	report.Rows = len(dataset)

	SortLatestFirst(dataset)
	return dataset, report, nil
}

// SortLatestFirst orders readings by timestamp descending.
// Readings without a timestamp go last and keep their relative order.
func SortLatestFirst(d Dataset) {
	sort.SliceStable(d, func(i, j int) bool {
		a, b := d[i].Timestamp, d[j].Timestamp
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, utf8BOM))
		if _, seen := index[name]; seen {
			continue
		}
		index[name] = i
	}
	var missing []string
	for _, column := range RequiredColumns {
		if _, ok := index[column]; !ok {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}
	return index, nil
}

func isBlankRecord(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
