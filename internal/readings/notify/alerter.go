package notify

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"hatchery-monitor/internal/observability/metrics"
	"hatchery-monitor/internal/readings/application"
)

const (
	EventFeedDown      = "feed_down"
	EventFeedRecovered = "feed_recovered"
)

// FeedAlerter sends one alert when the feed keeps failing and one when it recovers.
type FeedAlerter struct {
	channel       Channel
	template      *Template
	feedURL       string
	afterFailures int
	timeout       time.Duration
	logger        *log.Logger

	mu    sync.Mutex
	alert bool
}

// AlerterOption configures a FeedAlerter.
type AlerterOption func(*FeedAlerter)

// WithAfterFailures sets the failure streak that triggers an alert.
func WithAfterFailures(count int) AlerterOption {
	return func(a *FeedAlerter) {
		if count > 0 {
			a.afterFailures = count
		}
	}
}

// WithSendTimeout bounds each webhook delivery.
func WithSendTimeout(timeout time.Duration) AlerterOption {
	return func(a *FeedAlerter) {
		if timeout > 0 {
			a.timeout = timeout
		}
	}
}

// NewFeedAlerter constructs an alerter.
func NewFeedAlerter(channel Channel, template *Template, feedURL string, logger *log.Logger, opts ...AlerterOption) (*FeedAlerter, error) {
	if channel == nil {
		return nil, errors.New("feed alerter: nil channel")
	}
	if template == nil {
		defaultTemplate, err := NewTemplate("")
		if err != nil {
			return nil, err
		}
		template = defaultTemplate
	}
	a := &FeedAlerter{
		channel:       channel,
		template:      template,
		feedURL:       feedURL,
		afterFailures: 3,
		timeout:       10 * time.Second,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// ObserveTick implements application.TickObserver.
func (a *FeedAlerter) ObserveTick(ctx context.Context, event application.TickEvent) {
	if a == nil {
		return
	}
	a.mu.Lock()
	var eventType string
	switch {
	case !event.OK && !a.alert && event.Status.ConsecutiveFailures >= a.afterFailures:
		a.alert = true
		eventType = EventFeedDown
	case event.OK && a.alert:
		a.alert = false
		eventType = EventFeedRecovered
	}
	a.mu.Unlock()
	if eventType == "" {
		return
	}
	a.dispatch(ctx, eventType, event.Status)
}

func (a *FeedAlerter) dispatch(ctx context.Context, eventType string, status application.Status) {
	content, err := a.template.Render(buildTemplateData(eventType, a.feedURL, status))
	if err != nil {
		a.logf("feed alert render error: event=%s err=%v", eventType, err)
		metrics.IncAlert(eventType, metrics.ResultError)
		return
	}
	sendCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	if err := a.channel.Send(sendCtx, content); err != nil {
		a.logf("feed alert send error: event=%s err=%v", eventType, err)
		metrics.IncAlert(eventType, metrics.ResultError)
		return
	}
	metrics.IncAlert(eventType, metrics.ResultSuccess)
}

func buildTemplateData(eventType, feedURL string, status application.Status) TemplateData {
	data := TemplateData{
		Event:      eventType,
		EventLabel: eventLabel(eventType),
		FeedURL:    feedURL,
		Failures:   status.ConsecutiveFailures,
		ErrorKind:  status.LastErrorKind,
		Error:      status.LastError,
		At:         time.Now().UTC().Format(time.RFC3339),
	}
	if status.LastAttemptAt != nil {
		data.At = status.LastAttemptAt.UTC().Format(time.RFC3339)
	}
	if status.FetchedAt != nil {
		data.LastSuccess = status.FetchedAt.UTC().Format(time.RFC3339)
	}
	return data
}

func eventLabel(event string) string {
	switch event {
	case EventFeedDown:
		return "Down"
	case EventFeedRecovered:
		return "Recovered"
	default:
		return event
	}
}

func (a *FeedAlerter) logf(format string, args ...any) {
	if a.logger != nil {
		a.logger.Printf(format, args...)
	}
}
