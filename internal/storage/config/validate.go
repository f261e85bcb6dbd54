package config

import (
	"fmt"
	"os"
	"strings"

	defaults "github.com/xtxerr/solarplot/config"
	"github.com/xtxerr/solarplot/internal/calendar"
	"github.com/xtxerr/solarplot/internal/constants"
	"github.com/xtxerr/solarplot/internal/errors"
	"github.com/xtxerr/solarplot/internal/logging"
)

// Validate checks the configuration for errors.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	// Ingestion
	if err := c.Ingestion.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("ingestion: %w", err))
	}

	// Averaging
	if err := c.Averaging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("averaging: %w", err))
	}

	// Calendar
	if err := c.Calendar.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("calendar: %w", err))
	}

	// Chart
	if err := c.Chart.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("chart: %w", err))
	}

	// Export
	if err := c.Export.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("export: %w", err))
	}

	// Summary
	if err := c.Summary.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("summary: %w", err))
	}
	if c.Summary.Enabled && !c.Export.Enabled {
		errs = append(errs, errors.NewValidation("summary.enabled", "requires export.enabled"))
	}
	if c.Summary.Query != "" && !c.Summary.Enabled {
		errs = append(errs, errors.NewValidation("summary.query", "requires summary.enabled"))
	}

	// Watch
	if err := c.Watch.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("watch: %w", err))
	}

	// Logging
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ValidateInput checks that the input directory is set and readable.
// It is separate from Validate because the directory usually comes from
// the command line after the file has been loaded.
func (c *Config) ValidateInput() error {
	if c.InputDir == "" {
		return errors.NewMissingField("input_dir")
	}
	info, err := os.Stat(c.InputDir)
	if err != nil {
		return errors.Wrapf(errors.ErrInputDir, "%s: %v", c.InputDir, err)
	}
	if !info.IsDir() {
		return errors.Wrapf(errors.ErrInputDir, "%s: not a directory", c.InputDir)
	}
	return nil
}

// Validate checks the ingestion configuration.
func (c *IngestionConfig) Validate() error {
	v := errors.NewValidationErrors()

	if c.Workers < 1 {
		v.AddInvalid("workers", c.Workers, "must be at least 1")
	}

	if !constants.IsValidCorruptPolicy(c.OnCorrupt) {
		v.AddInvalid("on_corrupt", c.OnCorrupt,
			"must be one of: "+strings.Join(constants.ValidCorruptPolicies, ", "))
	}

	return v.Err()
}

// Validate checks the averaging configuration.
func (c *AveragingConfig) Validate() error {
	v := errors.NewValidationErrors()

	if c.Window < defaults.MinWindow {
		v.AddInvalid("window", c.Window, fmt.Sprintf("must be at least %v", defaults.MinWindow))
	}

	return v.Err()
}

// Validate checks the calendar configuration.
func (c *CalendarConfig) Validate() error {
	v := errors.NewValidationErrors()

	if c.UTCOffsetSec < -calendar.MaxOffsetSec || c.UTCOffsetSec > calendar.MaxOffsetSec {
		v.AddInvalid("utc_offset_sec", c.UTCOffsetSec,
			fmt.Sprintf("must be within ±%d", calendar.MaxOffsetSec))
	}

	return v.Err()
}

// Validate checks the chart configuration.
func (c *ChartConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	v := errors.NewValidationErrors()

	if c.Output == "" {
		v.AddMissing("output")
	}

	if !constants.IsValidChartFormat(c.Format) {
		v.AddInvalid("format", c.Format,
			"must be one of: "+strings.Join(constants.ValidChartFormats, ", "))
	}

	if c.Width < defaults.MinChartSize {
		v.AddInvalid("width", c.Width, fmt.Sprintf("must be at least %d", defaults.MinChartSize))
	}
	if c.Height < defaults.MinChartSize {
		v.AddInvalid("height", c.Height, fmt.Sprintf("must be at least %d", defaults.MinChartSize))
	}

	return v.Err()
}

// Validate checks the export configuration.
func (c *ExportConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	v := errors.NewValidationErrors()

	if c.Dir == "" {
		v.AddMissing("dir")
	}

	validCompressions := map[string]bool{
		"zstd":   true,
		"snappy": true,
		"lz4":    true,
		"gzip":   true,
		"none":   true,
	}
	if !validCompressions[c.Compression] {
		v.AddInvalid("compression", c.Compression, "must be one of: zstd, snappy, lz4, gzip, none")
	}

	if c.RetentionDays < 0 {
		v.AddInvalid("retention_days", c.RetentionDays, "must not be negative")
	}

	return v.Err()
}

// Validate checks the summary configuration.
func (c *SummaryConfig) Validate() error {
	v := errors.NewValidationErrors()

	if c.PercentileAccuracy <= 0 || c.PercentileAccuracy >= 1 {
		v.AddInvalid("percentile_accuracy", c.PercentileAccuracy, "must be between 0 and 1")
	}

	if c.MemoryLimit != "" {
		if _, err := ParseSize(c.MemoryLimit); err != nil {
			v.AddInvalid("memory_limit", c.MemoryLimit, err.Error())
		}
	}

	return v.Err()
}

// Validate checks the watch configuration.
func (c *WatchConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	v := errors.NewValidationErrors()

	if c.Debounce < defaults.MinWatchDebounce {
		v.AddInvalid("debounce", c.Debounce, fmt.Sprintf("must be at least %s", defaults.MinWatchDebounce))
	}

	return v.Err()
}

// Validate checks the logging configuration.
func (c *LoggingConfig) Validate() error {
	v := errors.NewValidationErrors()

	if _, err := logging.ParseLevel(c.Level); err != nil {
		v.AddInvalid("level", c.Level, "must be one of: debug, info, warn, error")
	}

	if !logging.IsValidFormat(c.Format) {
		v.AddInvalid("format", c.Format, "must be one of: auto, text, json")
	}

	return v.Err()
}
