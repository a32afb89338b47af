package application

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	readings "hatchery-monitor/internal/readings/domain"
)

// DefaultFeedURL is the hatchery's published sensor sheet.
const DefaultFeedURL = "https://docs.google.com/spreadsheets/d/1pb55kAq3twA4VUZRVxeEy-MVlHtsiSCP9sdhaTyXE3s/gviz/tq?tqx=out:csv"

// FilterConfig controls date-range semantics.
type FilterConfig struct {
	InclusiveEndDay bool `yaml:"inclusive_end_day"`
}

// AlertConfig controls feed-failure webhooks.
type AlertConfig struct {
	WebhookURL    string `yaml:"webhook_url"`
	AfterFailures int    `yaml:"after_failures"`
	Template      string `yaml:"template"`
}

// Config defines monitor configuration.
type Config struct {
	FeedURL          string        `yaml:"feed_url"`
	PollInterval     time.Duration `yaml:"poll_interval"`
	FetchTimeout     time.Duration `yaml:"fetch_timeout"`
	BackoffMax       time.Duration `yaml:"backoff_max"`
	RecentWindow     int           `yaml:"recent_window"`
	Timezone         string        `yaml:"timezone"`
	TimestampLayouts []string      `yaml:"timestamp_layouts"`
	Filter           FilterConfig  `yaml:"filter"`
	Alerts           AlertConfig   `yaml:"alerts"`
}

// LoadConfig loads config from env, then overlays the YAML file named by HATCHERY_CONFIG.
func LoadConfig() (Config, error) {
	cfg := Config{
		FeedURL:      getenvDefault("FEED_URL", DefaultFeedURL),
		PollInterval: getenvDuration("POLL_INTERVAL", 10*time.Second),
		FetchTimeout: getenvDuration("FETCH_TIMEOUT", 15*time.Second),
		BackoffMax:   getenvDuration("BACKOFF_MAX", 5*time.Minute),
		RecentWindow: getenvIntDefault("RECENT_WINDOW", readings.DefaultWindowSize),
		Timezone:     getenvDefault("FEED_TIMEZONE", "UTC"),
		Filter: FilterConfig{
			InclusiveEndDay: getenvBool("FILTER_INCLUSIVE_END_DAY", false),
		},
		Alerts: AlertConfig{
			WebhookURL:    os.Getenv("ALERT_WEBHOOK_URL"),
			AfterFailures: getenvIntDefault("ALERT_AFTER_FAILURES", 3),
		},
	}

	if path := os.Getenv("HATCHERY_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if len(cfg.TimestampLayouts) == 0 {
		cfg.TimestampLayouts = readings.DefaultTimestampLayouts
	}
	return cfg, cfg.Validate()
}

// Validate checks that the config can drive a monitor.
func (c Config) Validate() error {
	if strings.TrimSpace(c.FeedURL) == "" {
		return errors.New("config: feed url required")
	}
	if c.PollInterval <= 0 {
		return errors.New("config: poll interval must be positive")
	}
	if c.FetchTimeout <= 0 {
		return errors.New("config: fetch timeout must be positive")
	}
	if c.BackoffMax < c.PollInterval {
		return errors.New("config: backoff max must be at least the poll interval")
	}
	if c.RecentWindow <= 0 {
		return errors.New("config: recent window must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the feed timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ParseOptions returns the domain parse options for this config.
func (c Config) ParseOptions() readings.ParseOptions {
	loc, err := c.Location()
	if err != nil {
		loc = time.UTC
	}
	return readings.ParseOptions{TimestampLayouts: c.TimestampLayouts, Location: loc}
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
