package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	defaults "github.com/xtxerr/solarplot/config"
	"github.com/xtxerr/solarplot/internal/errors"
)

// Config represents the complete pipeline configuration.
type Config struct {
	// InputDir is the directory scanned for *.log.xz files.
	InputDir string `yaml:"input_dir"`

	// Ingestion configures the worker pool.
	Ingestion IngestionConfig `yaml:"ingestion"`

	// Averaging configures the windowed averager.
	Averaging AveragingConfig `yaml:"averaging"`

	// Calendar configures day assignment.
	Calendar CalendarConfig `yaml:"calendar"`

	// Chart configures per-day chart rendering.
	Chart ChartConfig `yaml:"chart"`

	// Export configures Parquet export of the averaged buckets.
	Export ExportConfig `yaml:"export"`

	// Summary configures per-day statistics and the DuckDB summary.
	Summary SummaryConfig `yaml:"summary"`

	// Watch reruns the pipeline when log files change.
	Watch WatchConfig `yaml:"watch"`

	// Logging configures diagnostics.
	Logging LoggingConfig `yaml:"logging"`
}

// IngestionConfig configures the worker pool.
type IngestionConfig struct {
	// Workers is the number of concurrent ingestion workers.
	Workers int `yaml:"workers"`

	// OnCorrupt is the corrupt archive policy: abort, skip.
	OnCorrupt string `yaml:"on_corrupt"`
}

// AveragingConfig configures the windowed averager.
type AveragingConfig struct {
	// Window is the averaging window length.
	// Format: "30s", "5m", "1h"
	Window time.Duration `yaml:"window"`
}

// CalendarConfig configures day assignment.
type CalendarConfig struct {
	// UTCOffsetSec is the fixed offset applied before computing calendar days.
	UTCOffsetSec int `yaml:"utc_offset_sec"`
}

// ChartConfig configures per-day chart rendering.
type ChartConfig struct {
	// Enabled enables chart rendering.
	Enabled bool `yaml:"enabled"`

	// Output is the path prefix for chart files.
	Output string `yaml:"output"`

	// Format is the image format: png, svg.
	Format string `yaml:"format"`

	// Width is the image width in pixels.
	Width int `yaml:"width"`

	// Height is the image height in pixels.
	Height int `yaml:"height"`
}

// ExportConfig configures Parquet export.
type ExportConfig struct {
	// Enabled enables export.
	Enabled bool `yaml:"enabled"`

	// Dir is the export directory.
	Dir string `yaml:"dir"`

	// Compression is the codec: zstd, snappy, lz4, gzip, none.
	Compression string `yaml:"compression"`

	// RetentionDays prunes day files older than this many days before the
	// newest exported day. 0 keeps everything.
	RetentionDays int `yaml:"retention_days"`

	// DryRun reports the day files retention would delete and keeps them.
	DryRun bool `yaml:"dry_run"`
}

// SummaryConfig configures daily statistics.
type SummaryConfig struct {
	// Enabled runs the DuckDB daily summary over the export directory.
	Enabled bool `yaml:"enabled"`

	// PercentileAccuracy is the DDSketch relative accuracy (0.01 = 1% error).
	PercentileAccuracy float64 `yaml:"percentile_accuracy"`

	// MemoryLimit is the DuckDB memory limit.
	// Format: "512MB", "2GB"
	MemoryLimit string `yaml:"memory_limit"`

	// Query is an optional SQL statement run after the daily summary.
	// The export is available to it as the view "buckets".
	Query string `yaml:"query"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	// Enabled keeps the process running and reruns on new or changed logs.
	Enabled bool `yaml:"enabled"`

	// Debounce is the quiet period before a rerun.
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig configures diagnostics.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is one of auto, text, json.
	Format string `yaml:"format"`
}

// Load loads configuration from a YAML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfig, fmt.Sprintf("read config file: %v", err))
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfig, fmt.Sprintf("parse config file: %v", err))
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Ingestion: IngestionConfig{
			Workers:   defaults.DefaultWorkers,
			OnCorrupt: defaults.DefaultOnCorrupt,
		},
		Averaging: AveragingConfig{
			Window: defaults.DefaultWindow,
		},
		Calendar: CalendarConfig{
			UTCOffsetSec: defaults.DefaultUTCOffsetSec,
		},
		Chart: ChartConfig{
			Enabled: true,
			Output:  defaults.DefaultChartOutput,
			Format:  defaults.DefaultChartFormat,
			Width:   defaults.DefaultChartWidth,
			Height:  defaults.DefaultChartHeight,
		},
		Export: ExportConfig{
			Enabled:       false,
			Dir:           defaults.DefaultExportDir,
			Compression:   defaults.DefaultExportCompression,
			RetentionDays: defaults.DefaultExportRetentionDays,
		},
		Summary: SummaryConfig{
			Enabled:            false,
			PercentileAccuracy: defaults.DefaultPercentileAccuracy,
			MemoryLimit:        defaults.DefaultQueryMemoryLimit,
		},
		Watch: WatchConfig{
			Debounce: defaults.DefaultWatchDebounce,
		},
		Logging: LoggingConfig{
			Level:  defaults.DefaultLogLevel,
			Format: defaults.DefaultLogFormat,
		},
	}
}

// WindowMs returns the averaging window in milliseconds.
func (c *Config) WindowMs() int64 {
	return c.Averaging.Window.Milliseconds()
}
