package application

import (
	"time"

	readings "hatchery-monitor/internal/readings/domain"
)

// Dashboard page names.
const (
	PageDataTable = "Data Table"
	PageDataTrend = "Data Trend"
)

// LatestTimestampLayout is the display format of the latest reading (DD-MM-YYYY HH:MM).
const LatestTimestampLayout = "02-01-2006 15:04"

// ReadingsQuery is the user's filter input. Zero dates default to the dataset bounds,
// an empty TimeOfDay means All.
type ReadingsQuery struct {
	Start     readings.Date
	End       readings.Date
	TimeOfDay string
}

// LatestView is the newest reading with its display timestamp.
type LatestView struct {
	readings.Reading
	FormattedTimestamp string `json:"formatted_timestamp,omitempty"`
}

// ReadingsView is the filtered table for one query.
type ReadingsView struct {
	SnapshotID string               `json:"snapshot_id"`
	FetchedAt  time.Time            `json:"fetched_at"`
	Filter     readings.FilterQuery `json:"filter"`
	RowCount   int                  `json:"row_count"`
	Rows       readings.Dataset     `json:"rows"`
}

// TableView is the "Data Table" page result.
type TableView struct {
	Page               string       `json:"page"`
	Status             Status       `json:"status"`
	Latest             *LatestView  `json:"latest"`
	WaterDetectedCount int          `json:"water_detected_count"`
	Readings           ReadingsView `json:"readings"`
}

// TrendView is the "Data Trend" page result.
type TrendView struct {
	Page   string               `json:"page"`
	Status Status               `json:"status"`
	Field  string               `json:"field"`
	Stats  readings.FieldStats  `json:"stats"`
	Series readings.TrendSeries `json:"series"`
}

// Dashboard answers presentation queries against the last good snapshot.
type Dashboard struct {
	store           *SnapshotStore
	inclusiveEndDay bool
}

// NewDashboard constructs a Dashboard.
func NewDashboard(store *SnapshotStore, cfg Config) (*Dashboard, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	return &Dashboard{store: store, inclusiveEndDay: cfg.Filter.InclusiveEndDay}, nil
}

// Status returns the monitor status, available before the first snapshot.
func (d *Dashboard) Status() Status {
	return d.store.Status()
}

// Readings filters the current dataset.
func (d *Dashboard) Readings(q ReadingsQuery) (ReadingsView, error) {
	snapshot, ok := d.store.Current()
	if !ok {
		return ReadingsView{}, ErrNotReady
	}
	return d.readings(snapshot, q)
}

// Table builds the "Data Table" page.
func (d *Dashboard) Table(q ReadingsQuery) (TableView, error) {
	snapshot, ok := d.store.Current()
	if !ok {
		return TableView{}, ErrNotReady
	}
	rows, err := d.readings(snapshot, q)
	if err != nil {
		return TableView{}, err
	}
	return TableView{
		Page:               PageDataTable,
		Status:             d.store.Status(),
		Latest:             latestView(snapshot.Summary.Latest, snapshot.Location),
		WaterDetectedCount: snapshot.Summary.WaterDetectedCount,
		Readings:           rows,
	}, nil
}

// Trend builds the "Data Trend" page for field.
func (d *Dashboard) Trend(field string) (TrendView, error) {
	snapshot, ok := d.store.Current()
	if !ok {
		return TrendView{}, ErrNotReady
	}
	series, err := readings.Trend(snapshot.Dataset, field)
	if err != nil {
		return TrendView{}, err
	}
	stats, err := snapshot.Summary.StatsFor(field)
	if err != nil {
		return TrendView{}, err
	}
	return TrendView{
		Page:   PageDataTrend,
		Status: d.store.Status(),
		Field:  field,
		Stats:  stats,
		Series: series,
	}, nil
}

func (d *Dashboard) readings(snapshot Snapshot, q ReadingsQuery) (ReadingsView, error) {
	if q.TimeOfDay == "" {
		q.TimeOfDay = readings.TimeOfDayAll
	}
	if !readings.IsValidTimeOfDay(q.TimeOfDay) {
		return ReadingsView{}, readings.ErrInvalidTimeOfDay
	}
	if q.Start.IsZero() || q.End.IsZero() {
		start, end, ok := readings.DateBounds(snapshot.Dataset, snapshot.Location)
		if ok {
			if q.Start.IsZero() {
				q.Start = start
			}
			if q.End.IsZero() {
				q.End = end
			}
		}
	}
	filter := readings.FilterQuery{
		Start:           q.Start,
		End:             q.End,
		TimeOfDay:       q.TimeOfDay,
		InclusiveEndDay: d.inclusiveEndDay,
		Location:        snapshot.Location,
	}
	rows := readings.Filter(snapshot.Dataset, filter)
	return ReadingsView{
		SnapshotID: snapshot.ID,
		FetchedAt:  snapshot.FetchedAt,
		Filter:     filter,
		RowCount:   len(rows),
		Rows:       rows,
	}, nil
}

func latestView(latest *readings.Reading, loc *time.Location) *LatestView {
	if latest == nil {
		return nil
	}
	view := &LatestView{Reading: *latest}
	if latest.Timestamp != nil {
		ts := *latest.Timestamp
		if loc != nil {
			ts = ts.In(loc)
		}
		view.FormattedTimestamp = ts.Format(LatestTimestampLayout)
	}
	return view
}
