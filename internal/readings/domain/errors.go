package readings

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyFeed is returned when the feed body has no header row.
	ErrEmptyFeed = errors.New("readings: empty feed")
	// ErrMalformedFeed is returned when the feed is not parseable CSV.
	ErrMalformedFeed = errors.New("readings: malformed feed")
	// ErrUnknownTrendField is returned for an unsupported trend field.
	ErrUnknownTrendField = errors.New("readings: unknown trend field")
	// ErrInvalidTimeOfDay is returned when a time-of-day selector is not one of the known buckets.
	ErrInvalidTimeOfDay = errors.New("readings: invalid time of day")
	// ErrInvalidDate is returned when a date parameter cannot be parsed.
	ErrInvalidDate = errors.New("readings: invalid date")
)

// Error kinds reported by ErrorKind.
const (
	KindFetch     = "fetch"
	KindSchema    = "schema"
	KindMalformed = "malformed"
	KindPanic     = "panic"
	KindUnknown   = "unknown"
)

// FetchError reports a network or HTTP failure while retrieving the feed.
type FetchError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		if e.Body != "" {
			return fmt.Sprintf("readings: feed returned %d: %s", e.StatusCode, e.Body)
		}
		return fmt.Sprintf("readings: feed returned %d", e.StatusCode)
	}
	if e.Err != nil {
		return "readings: fetch feed: " + e.Err.Error()
	}
	return "readings: fetch feed failed"
}

func (e *FetchError) Unwrap() error { return e.Err }

// SchemaError reports required columns missing from the feed header.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return "readings: missing columns: " + strings.Join(e.Missing, ", ")
}

// PanicError wraps a recovered panic raised during a tick.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("readings: tick panic: %v", e.Value)
}

// ErrorKind classifies an error for logging, metrics and API output.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return KindFetch
	}
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) || errors.Is(err, ErrEmptyFeed) {
		return KindSchema
	}
	if errors.Is(err, ErrMalformedFeed) {
		return KindMalformed
	}
	var panicErr *PanicError
	if errors.As(err, &panicErr) {
		return KindPanic
	}
	return KindUnknown
}
