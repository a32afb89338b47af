package readings

import (
	"errors"
	"testing"
	"time"
)

func reading(ts time.Time, tod string) Reading {
	return Reading{Timestamp: &ts, TimeOfDay: tod, WaterDetected: "No"}
}

func filterFixture() Dataset {
	ds := Dataset{
		reading(time.Date(2024, 1, 3, 20, 0, 0, 0, time.UTC), TimeOfDayEvening),
		reading(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), TimeOfDayNight),
		reading(time.Date(2024, 1, 2, 14, 0, 0, 0, time.UTC), TimeOfDayAfternoon),
		reading(time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC), TimeOfDayMorning),
		reading(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), TimeOfDayMorning),
		{TimeOfDay: TimeOfDayMorning},
	}
	return ds
}

func day(y int, m time.Month, d int) Date { return Date{Year: y, Month: m, Day: d} }

func TestFilter_EndBoundIsMidnight(t *testing.T) {
	ds := filterFixture()
	got := Filter(ds, FilterQuery{Start: day(2024, 1, 2), End: day(2024, 1, 3), TimeOfDay: TimeOfDayAll})
	// 2024-01-03 00:00 matches, 2024-01-03 20:00 does not
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	if !got[0].Timestamp.Equal(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected midnight row first, got %s", got[0].Timestamp)
	}

	sameDay := Filter(ds, FilterQuery{Start: day(2024, 1, 2), End: day(2024, 1, 2)})
	if len(sameDay) != 0 {
		t.Fatalf("expected no rows for a same-day range, got %d", len(sameDay))
	}
}

func TestFilter_InclusiveEndDay(t *testing.T) {
	ds := filterFixture()
	got := Filter(ds, FilterQuery{Start: day(2024, 1, 2), End: day(2024, 1, 2), InclusiveEndDay: true})
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	all := Filter(ds, FilterQuery{Start: day(2024, 1, 1), End: day(2024, 1, 3), InclusiveEndDay: true})
	if len(all) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(all))
	}
}

func TestFilter_AllMatchesDateOnly(t *testing.T) {
	ds := filterFixture()
	base := FilterQuery{Start: day(2024, 1, 1), End: day(2024, 1, 3)}
	dateOnly := Filter(ds, base)
	base.TimeOfDay = TimeOfDayAll
	all := Filter(ds, base)
	if len(all) != len(dateOnly) {
		t.Fatalf("expected %d rows with All, got %d", len(dateOnly), len(all))
	}
}

func TestFilter_TimeOfDayExact(t *testing.T) {
	ds := filterFixture()
	ds[3].TimeOfDay = "morning"
	got := Filter(ds, FilterQuery{Start: day(2024, 1, 1), End: day(2024, 1, 3), TimeOfDay: TimeOfDayMorning})
	if len(got) != 1 {
		t.Fatalf("expected 1 morning row, got %d", len(got))
	}
}

func TestFilter_StartAfterEnd(t *testing.T) {
	got := Filter(filterFixture(), FilterQuery{Start: day(2024, 1, 3), End: day(2024, 1, 1)})
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil dataset, got %v", got)
	}
}

func TestFilter_Location(t *testing.T) {
	loc := time.FixedZone("MYT", 8*3600)
	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, loc)
	ds := Dataset{reading(ts, TimeOfDayNight)}
	got := Filter(ds, FilterQuery{Start: day(2024, 1, 2), End: day(2024, 1, 2), Location: loc})
	if len(got) != 1 {
		t.Fatalf("expected midnight row in location, got %d", len(got))
	}
}

func TestDateBounds(t *testing.T) {
	start, end, ok := DateBounds(filterFixture(), time.UTC)
	if !ok {
		t.Fatal("expected bounds")
	}
	if start != day(2024, 1, 1) || end != day(2024, 1, 3) {
		t.Fatalf("unexpected bounds %s..%s", start, end)
	}
	if _, _, ok := DateBounds(Dataset{{}}, time.UTC); ok {
		t.Fatal("expected no bounds for untimed dataset")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil || d != day(2024, 2, 29) {
		t.Fatalf("unexpected %v %v", d, err)
	}
	if _, err := ParseDate("29/02/2024"); err == nil {
		t.Fatal("expected error")
	}
}

func TestTrend(t *testing.T) {
	ds := filterFixture()
	temp := 20.0
	ds[0].TemperatureC = &temp
	series, err := Trend(ds, ColumnTemperature)
	if err != nil {
		t.Fatalf("trend: %v", err)
	}
	if len(series.Points) != 5 {
		t.Fatalf("expected 5 points, got %d", len(series.Points))
	}
	for i := 1; i < len(series.Points); i++ {
		if series.Points[i].At.Before(series.Points[i-1].At) {
			t.Fatalf("points not ascending at %d", i)
		}
	}
	last := series.Points[len(series.Points)-1]
	if last.Value == nil || *last.Value != 20 {
		t.Fatalf("expected latest point 20, got %v", last.Value)
	}
	if _, err := Trend(ds, "Salinity"); err != ErrUnknownTrendField {
		t.Fatalf("expected unknown field, got %v", err)
	}
}

func TestDateText(t *testing.T) {
	var zero Date
	text, err := zero.MarshalText()
	if err != nil || len(text) != 0 {
		t.Fatalf("expected empty text for zero date, got %q %v", text, err)
	}
	var parsed Date
	if err := parsed.UnmarshalText([]byte("2024-02-29")); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed != (Date{Year: 2024, Month: time.February, Day: 29}) {
		t.Fatalf("unexpected date %+v", parsed)
	}
	if err := parsed.UnmarshalText([]byte("2023-02-29")); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected invalid date, got %v", err)
	}
}
