package application

import (
	"sync"
	"time"

	readings "hatchery-monitor/internal/readings/domain"
)

// Snapshot is the immutable result of one successful tick.
type Snapshot struct {
	ID        string
	FetchedAt time.Time
	Dataset   readings.Dataset
	Summary   readings.Summary
	Report    readings.ParseReport
	Location  *time.Location
}

// Status describes the monitor's current state for presentation.
type Status struct {
	Ready               bool                 `json:"ready"`
	SnapshotID          string               `json:"snapshot_id,omitempty"`
	FetchedAt           *time.Time           `json:"fetched_at,omitempty"`
	LastAttemptAt       *time.Time           `json:"last_attempt_at,omitempty"`
	Stale               bool                 `json:"stale"`
	LastErrorKind       string               `json:"last_error_kind,omitempty"`
	LastError           string               `json:"last_error,omitempty"`
	ConsecutiveFailures int                  `json:"consecutive_failures"`
	Summary             readings.Summary     `json:"summary"`
	Parse               readings.ParseReport `json:"parse"`
}

// SnapshotStore holds the last good snapshot and the outcome of the latest tick.
type SnapshotStore struct {
	mu          sync.RWMutex
	current     *Snapshot
	lastErr     error
	lastAttempt time.Time
	failures    int
}

// NewSnapshotStore constructs an empty store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Publish replaces the current snapshot and clears the failure streak.
func (s *SnapshotStore) Publish(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &snapshot
	s.lastErr = nil
	s.lastAttempt = snapshot.FetchedAt
	s.failures = 0
}

// Fail records a failed tick, keeping the previous snapshot. It returns the failure streak.
func (s *SnapshotStore) Fail(err error, at time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	s.lastAttempt = at
	s.failures++
	return s.failures
}

// Current returns the last good snapshot.
func (s *SnapshotStore) Current() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Snapshot{}, false
	}
	return *s.current, true
}

// LastError returns the error of the latest tick, nil after a success.
func (s *SnapshotStore) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Status builds the presentation status.
func (s *SnapshotStore) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := Status{
		Stale:               s.lastErr != nil,
		ConsecutiveFailures: s.failures,
	}
	if !s.lastAttempt.IsZero() {
		at := s.lastAttempt
		status.LastAttemptAt = &at
	}
	if s.lastErr != nil {
		status.LastErrorKind = readings.ErrorKind(s.lastErr)
		status.LastError = s.lastErr.Error()
	}
	if s.current != nil {
		fetched := s.current.FetchedAt
		status.Ready = true
		status.SnapshotID = s.current.ID
		status.FetchedAt = &fetched
		status.Summary = s.current.Summary
		status.Parse = s.current.Report
	}
	return status
}
