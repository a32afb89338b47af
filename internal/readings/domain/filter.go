package readings

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for filter dates.
const DateLayout = "2006-01-02"

// Date is a calendar day without a time component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD value.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return DateOf(t), nil
}

// Midnight returns the start of the day in loc.
func (d Date) Midnight(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// After reports whether d is a later day than other.
func (d Date) After(other Date) bool {
	return d.Midnight(time.UTC).After(other.Midnight(time.UTC))
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

func (d Date) String() string {
	return d.Midnight(time.UTC).Format(DateLayout)
}

// MarshalText implements encoding.TextMarshaler. The zero date marshals empty.
func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return []byte{}, nil
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// FilterQuery selects readings by date range and time-of-day bucket.
//
// Start is inclusive from midnight. End is compared as midnight of the end
// day, so only readings stamped exactly 00:00 on End match that day; set
// InclusiveEndDay to take the whole end day instead.
type FilterQuery struct {
	Start           Date           `json:"start"`
	End             Date           `json:"end"`
	TimeOfDay       string         `json:"time_of_day"`
	InclusiveEndDay bool           `json:"inclusive_end_day"`
	Location        *time.Location `json:"-"`
}

// Filter returns the readings matching q, preserving dataset order.
// A Start after End yields an empty dataset.
func Filter(d Dataset, q FilterQuery) Dataset {
	out := Dataset{}
	if q.Start.After(q.End) {
		return out
	}
	lower := q.Start.Midnight(q.Location)
	upper := q.End.Midnight(q.Location)
	for _, r := range d {
		if r.Timestamp == nil {
			continue
		}
		ts := *r.Timestamp
		if ts.Before(lower) {
			continue
		}
		if q.InclusiveEndDay {
			if !ts.Before(upper.AddDate(0, 0, 1)) {
				continue
			}
		} else if ts.After(upper) {
			continue
		}
		if q.TimeOfDay != "" && q.TimeOfDay != TimeOfDayAll && r.TimeOfDay != q.TimeOfDay {
			continue
		}
		out = append(out, r)
	}
	return out
}

// DateBounds returns the earliest and latest reading days, used as default filter range.
// ok is false when no reading has a timestamp.
func DateBounds(d Dataset, loc *time.Location) (start, end Date, ok bool) {
	var minTS, maxTS time.Time
	for _, r := range d {
		if r.Timestamp == nil {
			continue
		}
		ts := *r.Timestamp
		if loc != nil {
			ts = ts.In(loc)
		}
		if !ok || ts.Before(minTS) {
			minTS = ts
		}
		if !ok || ts.After(maxTS) {
			maxTS = ts
		}
		ok = true
	}
	if !ok {
		return Date{}, Date{}, false
	}
	return DateOf(minTS), DateOf(maxTS), true
}
