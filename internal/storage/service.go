package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/xtxerr/solarplot/internal/chart"
	"github.com/xtxerr/solarplot/internal/errors"
	"github.com/xtxerr/solarplot/internal/logging"
	"github.com/xtxerr/solarplot/internal/storage/aggregate"
	"github.com/xtxerr/solarplot/internal/storage/config"
	"github.com/xtxerr/solarplot/internal/storage/ingestion"
	"github.com/xtxerr/solarplot/internal/storage/parquet"
	"github.com/xtxerr/solarplot/internal/storage/query"
	"github.com/xtxerr/solarplot/internal/storage/retention"
	"github.com/xtxerr/solarplot/internal/storage/segment"
	"github.com/xtxerr/solarplot/internal/storage/source"
	"github.com/xtxerr/solarplot/internal/storage/types"
)

// Service is the pipeline that orchestrates all components.
type Service struct {
	mu sync.Mutex

	config *config.Config
	source source.Source

	// Components. ingestion is rebuilt per run so its stats cover one run.
	ingestion *ingestion.Service
	renderer  *chart.Renderer
	retention *retention.Manager
	query     *query.Service
}

// Result is the outcome of one run.
type Result struct {
	Files    int
	Records  int
	Buckets  int
	Segments []types.DaySegment

	// Summaries[i] belongs to Segments[i].
	Summaries []aggregate.DaySummary

	Charts  []string
	Exports []string
	Daily   []query.DailyRow

	// Pruned lists the deleted day files, or with export.dry_run the
	// files that would have been deleted.
	Pruned      []string
	PruneDryRun bool

	// Query holds the result of summary.query, if set.
	Query *query.Rows

	Ingestion ingestion.ServiceStats
	Duration  time.Duration
}

// New creates a pipeline reading xz archives.
func New(cfg *config.Config) (*Service, error) {
	return NewWithSource(cfg, source.NewXZ())
}

// NewWithSource creates a pipeline reading through src.
func NewWithSource(cfg *config.Config, src source.Source) (*Service, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Service{
		config:    cfg,
		source:    src,
		ingestion: ingestion.New(cfg, src),
		retention: retention.New(cfg),
	}

	if cfg.Chart.Enabled {
		s.renderer = chart.New(chart.Options{
			Output: cfg.Chart.Output,
			Format: cfg.Chart.Format,
			Width:  cfg.Chart.Width,
			Height: cfg.Chart.Height,
		})
	}

	return s, nil
}

// Run executes the pipeline once: discover, ingest, merge, average, segment,
// then summarize, render and export each day.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logging.Component("pipeline")
	start := time.Now()

	if err := s.config.ValidateInput(); err != nil {
		return nil, err
	}

	files, err := source.Discover(s.config.InputDir)
	if err != nil {
		return nil, err
	}
	log.Info("input discovered",
		"dir", s.config.InputDir,
		"files", len(files),
		"size", config.FormatBytes(inputSize(files)))

	s.ingestion = ingestion.New(s.config, s.source)
	records, err := s.ingestion.Run(ctx, files)
	if err != nil {
		return nil, err
	}

	// All workers have stopped; from here on the pipeline is single-threaded.
	aggregate.Sort(records)
	buckets := aggregate.Average(records, s.config.WindowMs())
	segments := segment.Segment(buckets, s.config.Calendar.UTCOffsetSec)

	log.Info("series reduced",
		"records", len(records),
		"window", s.config.Averaging.Window,
		"buckets", len(buckets),
		"days", len(segments))
	if len(buckets) > 0 {
		log.Debug("series span",
			"first", buckets[0].StartTime(),
			"last", buckets[len(buckets)-1].StartTime())
	}

	result := &Result{
		Files:    len(files),
		Records:  len(records),
		Buckets:  len(buckets),
		Segments: segments,
	}

	if err := s.emit(ctx, result, s.config.Export.Enabled); err != nil {
		return nil, err
	}

	if s.config.Export.Enabled && len(segments) > 0 {
		s.prune(result)
	}

	if s.config.Summary.Enabled && len(result.Exports) > 0 {
		if err := s.summarize(ctx, result); err != nil {
			return nil, err
		}
	}

	result.Ingestion = s.ingestion.Stats()
	result.Duration = time.Since(start)

	log.Info("run completed",
		"days", len(segments),
		"charts", len(result.Charts),
		"exports", len(result.Exports),
		"duration", result.Duration)

	return result, nil
}

// emit computes day statistics and writes the per-day artifacts.
func (s *Service) emit(ctx context.Context, result *Result, export bool) error {
	log := logging.Component("pipeline")

	exportOpts := parquet.DefaultOptions()
	exportOpts.Compression = parquet.ParseCompressionType(s.config.Export.Compression)

	for _, seg := range result.Segments {
		if err := ctx.Err(); err != nil {
			return err
		}

		sum := aggregate.Summarize(seg, s.config.Summary.PercentileAccuracy)
		result.Summaries = append(result.Summaries, sum)

		log.Debug("day summarized",
			"date", seg.Label(),
			"buckets", sum.Buckets,
			"energy_wh", sum.EnergyWh,
			"peak_w", sum.PeakW,
			"p50_w", sum.P50,
			"p90_w", sum.P90)

		if s.renderer != nil {
			path, err := s.renderer.Render(seg, sum)
			if err != nil {
				return err
			}
			result.Charts = append(result.Charts, path)
		}

		if export {
			path, rows, err := parquet.ExportDay(s.config.Export.Dir, seg, exportOpts)
			if err != nil {
				return errors.Wrapf(errors.ErrExport, "%s: %v", seg.Label(), err)
			}
			log.Debug("day exported", "date", seg.Label(), "path", path, "rows", rows)
			result.Exports = append(result.Exports, path)
		}
	}

	return nil
}

// Replot rebuilds the charts and day statistics from the Parquet day files
// in the export directory instead of reading logs. Days are re-derived with
// the configured UTC offset. Nothing is exported or pruned.
func (s *Service) Replot(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logging.Component("pipeline")
	start := time.Now()

	dir := s.config.Export.Dir
	files, err := filepath.Glob(filepath.Join(dir, "*.parquet"))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInputDir, "%s: %v", dir, err)
	}
	if len(files) == 0 {
		return nil, errors.Wrapf(errors.ErrNoInputFiles, "no .parquet files in %s", dir)
	}
	sort.Strings(files)

	var buckets []types.Bucket
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		day, err := readDay(path)
		if err != nil {
			return nil, errors.NewCorrupt(path, err)
		}
		buckets = append(buckets, day...)
	}

	segments := segment.Segment(buckets, s.config.Calendar.UTCOffsetSec)
	result := &Result{
		Files:    len(files),
		Buckets:  len(buckets),
		Segments: segments,
	}
	for i := range segments {
		result.Records += int(segments[i].Records())
	}

	log.Info("export loaded",
		"dir", dir,
		"files", len(files),
		"buckets", len(buckets),
		"days", len(segments))

	if err := s.emit(ctx, result, false); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	log.Info("replot completed",
		"days", len(segments),
		"charts", len(result.Charts),
		"duration", result.Duration)

	return result, nil
}

func readDay(path string) ([]types.Bucket, error) {
	r, err := parquet.NewBucketReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	logging.Component("pipeline").Debug("reading day file", "path", r.Path(), "rows", r.NumRows())
	return r.ReadAll()
}

// prune applies export retention relative to the newest day of this run.
func (s *Service) prune(result *Result) {
	log := logging.Component("retention")

	newest := result.Segments[len(result.Segments)-1].Date

	if s.config.Export.DryRun {
		cleanup := s.retention.DryRun(newest)
		result.Pruned = cleanup.Deleted
		result.PruneDryRun = true
		if len(cleanup.Deleted) > 0 {
			log.Info("exports would be pruned",
				"cutoff", cleanup.Cutoff.String(),
				"files", len(cleanup.Deleted),
				"bytes", config.FormatBytes(cleanup.BytesFreed))
		}
		return
	}

	cleanup := s.retention.RunCleanup(newest)
	for _, err := range cleanup.Errors {
		log.Warn("prune failed", "error", err)
	}
	if len(cleanup.Deleted) == 0 {
		return
	}

	deleted := make(map[string]bool, len(cleanup.Deleted))
	for _, p := range cleanup.Deleted {
		deleted[p] = true
	}
	kept := result.Exports[:0]
	for _, p := range result.Exports {
		if !deleted[p] {
			kept = append(kept, p)
		}
	}
	result.Exports = kept
	result.Pruned = cleanup.Deleted

	log.Info("exports pruned",
		"cutoff", cleanup.Cutoff.String(),
		"files", len(cleanup.Deleted),
		"freed", config.FormatBytes(cleanup.BytesFreed),
		"usage", s.retention.FormatDiskUsage())
}

// summarize runs the DuckDB daily summary over the export directory.
func (s *Service) summarize(ctx context.Context, result *Result) error {
	if s.query == nil {
		qry, err := query.New(s.config)
		if err != nil {
			return err
		}
		s.query = qry
	}

	daily, err := s.query.DailySummary(ctx, s.config.Export.Dir)
	if err != nil {
		return err
	}
	result.Daily = daily

	if s.config.Summary.Query == "" {
		return nil
	}
	rows, err := s.query.ExecuteSQL(ctx, s.config.Export.Dir, s.config.Summary.Query)
	if err != nil {
		return err
	}
	result.Query = rows
	return nil
}

// Close releases the query engine.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.query != nil {
		err := s.query.Close()
		s.query = nil
		if err != nil {
			return fmt.Errorf("close query: %w", err)
		}
	}
	return nil
}

// Config returns the current configuration.
func (s *Service) Config() *config.Config {
	return s.config
}

// Stats returns combined statistics. Ingestion covers the last run only.
func (s *Service) Stats() ServiceStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := ServiceStats{
		Ingestion: s.ingestion.Stats(),
		Retention: s.retention.Stats(),
	}
	if s.query != nil {
		stats.Query = s.query.Stats()
	}
	return stats
}

// ServiceStats holds combined statistics.
type ServiceStats struct {
	Ingestion ingestion.ServiceStats
	Retention retention.ManagerStats
	Query     query.ServiceStats
}

func inputSize(files []string) int64 {
	var total int64
	for _, f := range files {
		if info, err := os.Stat(f); err == nil {
			total += info.Size()
		}
	}
	return total
}
