// Package config loads lazyscope settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kpumuk/lazyscope/internal/graph"
	"github.com/kpumuk/lazyscope/internal/selection"
	"github.com/kpumuk/lazyscope/internal/source"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the root of config.toml.
type Config struct {
	Source    SourceConfig    `toml:"source"`
	Graph     GraphConfig     `toml:"graph"`
	Zoom      ZoomConfig      `toml:"zoom"`
	Selection SelectionConfig `toml:"selection"`
	Render    RenderConfig    `toml:"render"`
	Log       LogConfig       `toml:"log"`
}

// SourceConfig selects and parameterises the data source.
type SourceConfig struct {
	Kind string `toml:"kind"`
	// Interval between generated samples; zero keeps each source's own default.
	Interval Duration `toml:"interval"`

	Channels  int     `toml:"channels"`
	Frequency float64 `toml:"frequency"`
	Amplitude float64 `toml:"amplitude"`
	Noise     float64 `toml:"noise"`

	Redis     RedisConfig     `toml:"redis"`
	WebSocket WebSocketConfig `toml:"websocket"`
	CSV       CSVConfig       `toml:"csv"`
}

// RedisConfig configures the Redis stream source.
type RedisConfig struct {
	URL       string   `toml:"url"`
	Stream    string   `toml:"stream"`
	FromStart bool     `toml:"from_start"`
	Block     Duration `toml:"block"`
	Count     int64    `toml:"count"`
}

// WebSocketConfig configures the OmnAIScope live source.
type WebSocketConfig struct {
	URL        string `toml:"url"`
	SkipFrames int    `toml:"skip_frames"`
}

// CSVConfig lists files for the import source.
type CSVConfig struct {
	Files []string `toml:"files"`
}

// GraphConfig controls domain resolution.
type GraphConfig struct {
	Padding          float64    `toml:"padding"`
	DefaultTimeSpan  Duration   `toml:"default_time_span"`
	DefaultValueSpan [2]float64 `toml:"default_value_span"`
}

// ZoomConfig controls the zoom behaviour.
type ZoomConfig struct {
	MinScale float64 `toml:"min_scale"`
	MaxScale float64 `toml:"max_scale"`
	Mode     string  `toml:"mode"`
	// Step is the ratio applied per wheel notch or +/- key.
	Step float64 `toml:"step"`
}

// SelectionConfig controls region selection.
type SelectionConfig struct {
	Threshold float64 `toml:"threshold"`
}

// RenderConfig controls path generation.
type RenderConfig struct {
	Worker bool `toml:"worker"`
	// RelativeTime starts the UI with the relative x axis format.
	RelativeTime bool `toml:"relative_time"`
}

// LogConfig controls the log file.
type LogConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Kind:      string(source.KindRandom),
			Channels:  3,
			Frequency: 0.5,
			Amplitude: 1,
			Redis: RedisConfig{
				URL:    "redis://127.0.0.1:6379/0",
				Stream: source.DefaultStream,
				Block:  Duration{time.Second},
				Count:  512,
			},
			WebSocket: WebSocketConfig{
				URL:        "http://127.0.0.1:8080",
				SkipFrames: source.DefaultSkipFrames,
			},
		},
		Graph: GraphConfig{
			Padding:          graph.DefaultPadding,
			DefaultTimeSpan:  Duration{graph.DefaultTimeSpan},
			DefaultValueSpan: graph.DefaultValueDomain,
		},
		Zoom: ZoomConfig{
			MinScale: graph.DefaultMinScale,
			MaxScale: graph.DefaultMaxScale,
			Mode:     graph.ZoomBoth.String(),
			Step:     1.25,
		},
		Selection: SelectionConfig{
			Threshold: selection.DefaultThreshold,
		},
		Render: RenderConfig{
			Worker: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if _, err := c.SourceKind(); err != nil {
		return err
	}
	if c.Graph.Padding < 0 {
		return fmt.Errorf("%w: graph.padding must not be negative", ErrInvalid)
	}
	if c.Graph.DefaultTimeSpan.Duration <= 0 {
		return fmt.Errorf("%w: graph.default_time_span must be positive", ErrInvalid)
	}
	if c.Graph.DefaultValueSpan[0] >= c.Graph.DefaultValueSpan[1] {
		return fmt.Errorf("%w: graph.default_value_span must be increasing", ErrInvalid)
	}
	if c.Zoom.MinScale <= 0 || c.Zoom.MinScale > 1 || c.Zoom.MaxScale < 1 {
		return fmt.Errorf("%w: zoom extent [%g, %g] must contain 1", ErrInvalid, c.Zoom.MinScale, c.Zoom.MaxScale)
	}
	if _, ok := graph.ParseMode(c.Zoom.Mode); !ok {
		return fmt.Errorf("%w: zoom.mode %q (want xy, x or y)", ErrInvalid, c.Zoom.Mode)
	}
	if c.Zoom.Step <= 1 {
		return fmt.Errorf("%w: zoom.step must be greater than 1", ErrInvalid)
	}
	if c.Selection.Threshold < 0 {
		return fmt.Errorf("%w: selection.threshold must not be negative", ErrInvalid)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// SourceKind returns the configured source kind.
func (c *Config) SourceKind() (source.Kind, error) {
	kind := source.Kind(strings.ToLower(strings.TrimSpace(c.Source.Kind)))
	for _, k := range source.Kinds() {
		if k == kind {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: source.kind %q", ErrInvalid, c.Source.Kind)
}

// LogLevel parses log.level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	return level, nil
}

// ResolverOptions returns the domain resolver settings.
func (c *Config) ResolverOptions() []graph.Option {
	return []graph.Option{
		graph.WithPadding(c.Graph.Padding),
		graph.WithDefaultTimeSpan(c.Graph.DefaultTimeSpan.Duration),
		graph.WithDefaultValueDomain(c.Graph.DefaultValueSpan[0], c.Graph.DefaultValueSpan[1]),
	}
}

// ZoomOptions returns the zoom settings.
func (c *Config) ZoomOptions() []graph.ZoomOption {
	mode, _ := graph.ParseMode(c.Zoom.Mode)
	return []graph.ZoomOption{
		graph.WithScaleExtent(c.Zoom.MinScale, c.Zoom.MaxScale),
		graph.WithMode(mode),
	}
}

// SourceOptions returns the source settings. Logger and tracker are
// filled in by the caller.
func (c *Config) SourceOptions() source.Options {
	return source.Options{
		Interval:   c.Source.Interval.Duration,
		Channels:   c.Source.Channels,
		Frequency:  c.Source.Frequency,
		Amplitude:  c.Source.Amplitude,
		Noise:      c.Source.Noise,
		RedisURL:   c.Source.Redis.URL,
		Stream:     c.Source.Redis.Stream,
		FromStart:  c.Source.Redis.FromStart,
		ReadBlock:  c.Source.Redis.Block.Duration,
		ReadCount:  c.Source.Redis.Count,
		URL:        c.Source.WebSocket.URL,
		SkipFrames: c.Source.WebSocket.SkipFrames,
		Files:      c.Source.CSV.Files,
	}
}
