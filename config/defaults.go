// Package config provides configuration defaults
// for the solarplot application.
//
// This package defines all configurable constants with documented defaults.
// Users can override these values via a YAML config file or command-line flags.
package config

import "time"

// =============================================================================
// Ingestion Defaults
// =============================================================================

const (
	// DefaultWorkers is the number of concurrent ingestion workers.
	// Each worker decompresses and parses one file at a time.
	// Override via config: ingestion.workers, flag: -workers
	DefaultWorkers = 1

	// DefaultOnCorrupt is the policy for an archive that fails to decompress.
	// "abort" stops the run, "skip" drops the file and continues.
	// Override via config: ingestion.on_corrupt, flag: -on-corrupt
	DefaultOnCorrupt = "abort"
)

// =============================================================================
// Averaging Defaults
// =============================================================================

const (
	// DefaultWindow is the averaging window length.
	// Must be at least one second.
	// Override via config: averaging.window, flag: -avg (seconds)
	DefaultWindow = 300 * time.Second

	// MinWindow is the smallest accepted averaging window.
	MinWindow = time.Second
)

// =============================================================================
// Calendar Defaults
// =============================================================================

const (
	// DefaultUTCOffsetSec shifts timestamps before assigning calendar days.
	// Range: -50400..50400
	// Override via config: calendar.utc_offset_sec, flag: -utc-offset
	DefaultUTCOffsetSec = 0
)

// =============================================================================
// Chart Defaults
// =============================================================================

const (
	// DefaultChartOutput is the output path prefix. Each day is written to
	// <output>-<YYYY-MM-DD>.<format>.
	// Override via config: chart.output, flag: -o
	DefaultChartOutput = "out"

	// DefaultChartFormat is the image format: png or svg.
	// Override via config: chart.format
	DefaultChartFormat = "png"

	// DefaultChartWidth and DefaultChartHeight are the image size in pixels.
	// Override via config: chart.width, chart.height
	DefaultChartWidth  = 1200
	DefaultChartHeight = 600

	// MinChartSize is the smallest accepted width or height.
	MinChartSize = 100
)

// =============================================================================
// Export Defaults
// =============================================================================

const (
	// DefaultExportDir receives one Parquet file per day when export is enabled.
	// Override via config: export.dir, flag: -export
	DefaultExportDir = "parquet"

	// DefaultExportCompression is the Parquet codec.
	// Options: zstd, snappy, lz4, gzip, none
	// Override via config: export.compression
	DefaultExportCompression = "zstd"

	// DefaultExportRetentionDays keeps every exported day.
	// A positive value keeps only that many days up to the newest one.
	// Override via config: export.retention_days
	DefaultExportRetentionDays = 0
)

// =============================================================================
// Summary Defaults
// =============================================================================

const (
	// DefaultPercentileAccuracy is the DDSketch relative accuracy (0.01 = 1%).
	// Override via config: summary.percentile_accuracy
	DefaultPercentileAccuracy = 0.01

	// DefaultQueryMemoryLimit caps DuckDB memory for the daily summary.
	// Override via config: summary.memory_limit
	DefaultQueryMemoryLimit = "512MB"
)

// =============================================================================
// Watch Defaults
// =============================================================================

const (
	// DefaultWatchDebounce is the quiet period after the last log file change
	// before the pipeline runs again.
	// Override via config: watch.debounce
	DefaultWatchDebounce = 2 * time.Second

	// MinWatchDebounce is the smallest accepted debounce.
	MinWatchDebounce = 10 * time.Millisecond
)

// =============================================================================
// Logging Defaults
// =============================================================================

const (
	// DefaultLogLevel is one of debug, info, warn, error.
	// Override via config: logging.level, flag: -log-level
	DefaultLogLevel = "info"

	// DefaultLogFormat is one of auto, text, json. auto selects text when
	// stderr is a terminal.
	// Override via config: logging.format, flag: -log-format
	DefaultLogFormat = "auto"
)
