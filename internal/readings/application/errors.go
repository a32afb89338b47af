package application

import "errors"

var (
	// ErrNotReady is returned by queries before the first successful tick.
	ErrNotReady = errors.New("readings: no data yet")
	// ErrNilFetcher is returned when the monitor has no feed source.
	ErrNilFetcher = errors.New("readings: nil fetcher")
	// ErrNilStore is returned when a component has no snapshot store.
	ErrNilStore = errors.New("readings: nil snapshot store")
)
