package readings

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const sampleFeed = `"Timestamp","Temperature (°C)","pH","Water Detected","Time of Day"
"2024-01-01 08:00:00","20,5","7.0","Yes","Morning"
"2024-01-02 14:00:00","21.0","7,2","No","Afternoon"
`

func TestParseFeed_EndToEndScenario(t *testing.T) {
	ds, report, err := ParseFeed([]byte(sampleFeed), ParseOptions{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ds) != 2 || report.Rows != 2 {
		t.Fatalf("expected 2 rows, got %d (report %d)", len(ds), report.Rows)
	}
	want := time.Date(2024, 1, 2, 14, 0, 0, 0, time.UTC)
	if ds[0].Timestamp == nil || !ds[0].Timestamp.Equal(want) {
		t.Fatalf("expected latest row at %s, got %v", want, ds[0].Timestamp)
	}
	if ds[1].TemperatureC == nil || *ds[1].TemperatureC != 20.5 {
		t.Fatalf("expected 20.5, got %v", ds[1].TemperatureC)
	}
	if ds[0].PH == nil || *ds[0].PH != 7.2 {
		t.Fatalf("expected pH 7.2, got %v", ds[0].PH)
	}

	summary := Summarize(ds, DefaultWindowSize)
	if summary.WaterDetectedCount != 1 {
		t.Fatalf("expected water count 1, got %d", summary.WaterDetectedCount)
	}
	if summary.Temperature.Mean == nil || *summary.Temperature.Mean != 20.75 {
		t.Fatalf("expected mean temp 20.75, got %v", summary.Temperature.Mean)
	}
	if summary.Latest == nil || summary.Latest.TimeOfDay != TimeOfDayAfternoon {
		t.Fatalf("expected afternoon latest, got %+v", summary.Latest)
	}
}

func TestParseFeed_SortedDescending(t *testing.T) {
	raw := "Time of Day,Timestamp,pH,Water Detected,Temperature (°C),Extra\n" +
		"Night,2024-03-01 22:00:00,7.1,No,19,x\n" +
		"Morning,not-a-date,7.0,No,18,x\n" +
		"Morning,2024-03-03 07:00:00,7.3,Yes,20,x\n" +
		"Evening,2024-03-02 19:30:00,7.2,No,21,x\n" +
		"Afternoon,,7.4,No,22,x\n"
	ds, report, err := ParseFeed([]byte(raw), ParseOptions{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if report.NullTimestamps != 2 {
		t.Fatalf("expected 2 null timestamps, got %d", report.NullTimestamps)
	}
	for i := 1; i < len(ds); i++ {
		prev, cur := ds[i-1].Timestamp, ds[i].Timestamp
		if cur == nil {
			continue
		}
		if prev == nil {
			t.Fatalf("row %d: timestamped row after null timestamp", i)
		}
		if cur.After(*prev) {
			t.Fatalf("row %d: %s after %s", i, cur, prev)
		}
	}
	// null timestamps keep feed order at the tail
	if ds[3].TimeOfDay != TimeOfDayMorning || ds[4].TimeOfDay != TimeOfDayAfternoon {
		t.Fatalf("unexpected null tail order: %q, %q", ds[3].TimeOfDay, ds[4].TimeOfDay)
	}
}

func TestParseFeed_MissingColumns(t *testing.T) {
	raw := "Timestamp,Temperature (°C),Water Detected\n2024-01-01 08:00:00,20,Yes\n"
	_, _, err := ParseFeed([]byte(raw), ParseOptions{})
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected schema error, got %v", err)
	}
	if len(schemaErr.Missing) != 2 || schemaErr.Missing[0] != ColumnPH || schemaErr.Missing[1] != ColumnTimeOfDay {
		t.Fatalf("unexpected missing columns: %v", schemaErr.Missing)
	}
	if ErrorKind(err) != KindSchema {
		t.Fatalf("expected schema kind, got %s", ErrorKind(err))
	}
}

func TestParseFeed_EmptyBody(t *testing.T) {
	_, _, err := ParseFeed(nil, ParseOptions{})
	if !errors.Is(err, ErrEmptyFeed) {
		t.Fatalf("expected empty feed error, got %v", err)
	}
}

func TestParseFeed_HeaderOnly(t *testing.T) {
	raw := "\ufeffTimestamp , Temperature (°C),pH,Water Detected,Time of Day\n"
	ds, _, err := ParseFeed([]byte(raw), ParseOptions{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ds) != 0 {
		t.Fatalf("expected empty dataset, got %d", len(ds))
	}
	summary := Summarize(ds, DefaultWindowSize)
	if summary.Latest != nil || summary.Temperature.Defined() || summary.PH.Defined() {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
}

func TestParseFeed_ShortRowsArePadded(t *testing.T) {
	raw := "Timestamp,Temperature (°C),pH,Water Detected,Time of Day\n2024-01-01 08:00:00,20\n"
	ds, report, err := ParseFeed([]byte(raw), ParseOptions{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ds) != 1 || ds[0].PH != nil || ds[0].WaterDetected != "" {
		t.Fatalf("unexpected row: %+v", ds)
	}
	if report.NullPH != 1 {
		t.Fatalf("expected 1 null pH, got %d", report.NullPH)
	}
}

func TestParseFeed_Location(t *testing.T) {
	loc := time.FixedZone("MYT", 8*3600)
	raw := strings.Replace(sampleFeed, "2024-01-02 14:00:00", "1/2/2024 14:00:00", 1)
	ds, _, err := ParseFeed([]byte(raw), ParseOptions{Location: loc})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2024, 1, 2, 14, 0, 0, 0, loc)
	if ds[0].Timestamp == nil || !ds[0].Timestamp.Equal(want) {
		t.Fatalf("expected %s, got %v", want, ds[0].Timestamp)
	}
}
