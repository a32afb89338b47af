package application

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"hatchery-monitor/internal/observability/metrics"
	readings "hatchery-monitor/internal/readings/domain"
)

// Fetcher retrieves the raw feed body.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// TickEvent is published after every tick, successful or not.
type TickEvent struct {
	OK     bool   `json:"ok"`
	Status Status `json:"status"`
}

// TickObserver receives tick events.
type TickObserver interface {
	ObserveTick(ctx context.Context, event TickEvent)
}

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Monitor polls the feed and publishes snapshots.
type Monitor struct {
	fetcher     Fetcher
	store       *SnapshotStore
	parseOpts   readings.ParseOptions
	window      int
	interval    time.Duration
	backoffMax  time.Duration
	logger      *log.Logger
	clock       Clock
	observers   []TickObserver

	mu          sync.Mutex
	fetchStreak int
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithObservers registers tick observers.
func WithObservers(observers ...TickObserver) MonitorOption {
	return func(m *Monitor) {
		for _, observer := range observers {
			if observer != nil {
				m.observers = append(m.observers, observer)
			}
		}
	}
}

// WithClock overrides the time source.
func WithClock(clock Clock) MonitorOption {
	return func(m *Monitor) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// NewMonitor constructs a Monitor from cfg.
func NewMonitor(fetcher Fetcher, store *SnapshotStore, cfg Config, logger *log.Logger, opts ...MonitorOption) (*Monitor, error) {
	if fetcher == nil {
		return nil, ErrNilFetcher
	}
	if store == nil {
		return nil, ErrNilStore
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Monitor{
		fetcher:    fetcher,
		store:      store,
		parseOpts:  cfg.ParseOptions(),
		window:     cfg.RecentWindow,
		interval:   cfg.PollInterval,
		backoffMax: cfg.BackoffMax,
		logger:     logger,
		clock:      systemClock{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Run ticks until ctx is cancelled. Tick failures never stop the loop.
func (m *Monitor) Run(ctx context.Context) {
	if m == nil {
		return
	}
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		err := m.RunOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		timer.Reset(m.nextDelay(err))
	}
}

// RunOnce performs one tick, records its outcome and notifies observers.
// Concurrent calls are serialized.
func (m *Monitor) RunOnce(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.Tick(ctx)
	now := m.clock.Now()

	if err != nil {
		kind := readings.ErrorKind(err)
		failures := m.store.Fail(err, now)
		if kind == readings.KindFetch {
			m.fetchStreak++
		} else {
			m.fetchStreak = 0
		}
		metrics.IncTick(kind)
		metrics.SetConsecutiveFailures(failures)
		m.logf("monitor tick skipped: kind=%s failures=%d err=%v", kind, failures, err)
	} else {
		m.fetchStreak = 0
		metrics.IncTick(metrics.ResultSuccess)
		metrics.SetConsecutiveFailures(0)
	}

	event := TickEvent{OK: err == nil, Status: m.store.Status()}
	for _, observer := range m.observers {
		m.notify(ctx, observer, event)
	}
	return err
}

// Tick fetches, parses and summarizes the feed, publishing a new snapshot on success.
// The previous snapshot is left in place on any failure.
func (m *Monitor) Tick(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &readings.PanicError{Value: r}
		}
	}()

	start := time.Now()
	raw, err := m.fetcher.Fetch(ctx)
	if err != nil {
		metrics.ObserveFetch(metrics.ResultError, time.Since(start))
		return err
	}
	metrics.ObserveFetch(metrics.ResultSuccess, time.Since(start))

	dataset, report, err := readings.ParseFeed(raw, m.parseOpts)
	if err != nil {
		return err
	}
	metrics.AddCoercionNulls(readings.ColumnTimestamp, report.NullTimestamps)
	metrics.AddCoercionNulls(readings.ColumnTemperature, report.NullTemperatures)
	metrics.AddCoercionNulls(readings.ColumnPH, report.NullPH)

	snapshot := Snapshot{
		ID:        uuid.NewString(),
		FetchedAt: m.clock.Now(),
		Dataset:   dataset,
		Summary:   readings.Summarize(dataset, m.window),
		Report:    report,
		Location:  m.parseOpts.Location,
	}
	m.store.Publish(snapshot)
	metrics.SetDataset(len(dataset), snapshot.FetchedAt)
	if report.NullTimestamps > 0 || report.NullTemperatures > 0 || report.NullPH > 0 {
		m.logf("monitor tick: rows=%d null_timestamp=%d null_temperature=%d null_ph=%d",
			report.Rows, report.NullTimestamps, report.NullTemperatures, report.NullPH)
	}
	return nil
}

func (m *Monitor) nextDelay(err error) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil || m.fetchStreak == 0 {
		return m.interval
	}
	return Backoff(m.interval, m.backoffMax, m.fetchStreak)
}

// Backoff returns interval doubled per consecutive failure beyond the first, capped at max.
func Backoff(interval, limit time.Duration, failures int) time.Duration {
	if failures <= 1 {
		return interval
	}
	delay := interval
	for i := 1; i < failures; i++ {
		delay *= 2
		if delay >= limit || delay <= 0 {
			return limit
		}
	}
	return delay
}

func (m *Monitor) notify(ctx context.Context, observer TickObserver, event TickEvent) {
	defer func() {
		if r := recover(); r != nil {
			m.logf("monitor observer panic: %v", r)
		}
	}()
	observer.ObserveTick(ctx, event)
}

func (m *Monitor) logf(format string, args ...any) {
	if m.logger != nil {
		m.logger.Printf(format, args...)
	}
}
