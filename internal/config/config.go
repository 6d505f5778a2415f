// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) initializer to build a Config with defaults.
// - All functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinels.
package config

import (
	"context"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile mirrors logs to a rotating file when set.
	LogFile string `koanf:"log_file"`

	// LogMaxSizeMB is the rotation threshold for LogFile.
	LogMaxSizeMB int `koanf:"log_max_size_mb"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataServiceURL is the base URL of the activity data service.
	DataServiceURL string `koanf:"data_service_url"`

	// FetchTimeoutMS bounds a single data service request.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// Units is the initial unit system: metric or imperial.
	Units string `koanf:"units"`

	// Smoothing is the initial server-side smoothing level.
	Smoothing int `koanf:"smoothing"`

	// CompactPoints is the target point count of calendar mini-charts.
	CompactPoints int `koanf:"compact_points"`

	// WarmupSamples is how many leading heart-rate samples the
	// threshold lines ignore.
	WarmupSamples int `koanf:"warmup_samples"`

	// ChartTheme is the go-echarts theme name.
	ChartTheme string `koanf:"chart_theme"`

	// QueueSize bounds the UI event queue.
	QueueSize int `koanf:"queue_size"`

	// OpenBrowser opens the UI in the default browser on start.
	OpenBrowser bool `koanf:"open_browser"`

	// FakeSeed and FakeSessions drive cmd/fakeservice.
	FakeSeed     int64 `koanf:"fake_seed"`
	FakeSessions int   `koanf:"fake_sessions"`
}

// New creates a Config with defaults. Context is accepted first to
// satisfy the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:       "info",
		LogMaxSizeMB:   50,
		Addr:           ":9080",
		DataServiceURL: "http://localhost:5000",
		FetchTimeoutMS: 10_000,
		Units:          "metric",
		Smoothing:      5,
		CompactPoints:  50,
		WarmupSamples:  9,
		ChartTheme:     "macarons",
		QueueSize:      1024,
		FakeSeed:       42,
		FakeSessions:   120,
	}
}
