package application

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("HATCHERY_CONFIG", "")
	t.Setenv("FEED_URL", "")
	t.Setenv("POLL_INTERVAL", "")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.FeedURL != DefaultFeedURL {
		t.Fatalf("unexpected feed url %q", cfg.FeedURL)
	}
	if cfg.PollInterval != 10*time.Second || cfg.RecentWindow != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Filter.InclusiveEndDay {
		t.Fatal("expected midnight end bound by default")
	}
}

func TestLoadConfigYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hatchery.yaml")
	content := `feed_url: http://sheets.test/feed.csv
poll_interval: 30s
backoff_max: 10m
recent_window: 5
timezone: Asia/Kuala_Lumpur
timestamp_layouts:
  - "02/01/2006 15:04:05"
filter:
  inclusive_end_day: true
alerts:
  webhook_url: http://hooks.test/alert
  after_failures: 5
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("HATCHERY_CONFIG", path)
	t.Setenv("POLL_INTERVAL", "5s")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.FeedURL != "http://sheets.test/feed.csv" || cfg.PollInterval != 30*time.Second {
		t.Fatalf("yaml not applied: %+v", cfg)
	}
	if cfg.RecentWindow != 5 || !cfg.Filter.InclusiveEndDay || cfg.Alerts.AfterFailures != 5 {
		t.Fatalf("yaml not applied: %+v", cfg)
	}
	if len(cfg.TimestampLayouts) != 1 {
		t.Fatalf("expected custom layouts, got %v", cfg.TimestampLayouts)
	}
	opts := cfg.ParseOptions()
	if opts.Location.String() != "Asia/Kuala_Lumpur" {
		t.Fatalf("unexpected location %s", opts.Location)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := testConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config: %v", err)
	}
	cfg.BackoffMax = time.Second
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected backoff error")
	}
	cfg = testConfig()
	cfg.Timezone = "Mars/Olympus"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected timezone error")
	}
}
