package ingestion

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xtxerr/solarplot/internal/constants"
	"github.com/xtxerr/solarplot/internal/errors"
	"github.com/xtxerr/solarplot/internal/logging"
	"github.com/xtxerr/solarplot/internal/storage/config"
	"github.com/xtxerr/solarplot/internal/storage/parser"
	"github.com/xtxerr/solarplot/internal/storage/source"
	"github.com/xtxerr/solarplot/internal/storage/types"
)

// Service runs the ingestion worker pool.
// It manages the flow: files → Dispatcher → workers (open, decompress, parse) → accumulator
type Service struct {
	config *config.Config
	source source.Source

	// Statistics
	stats Stats
}

// Stats holds ingestion statistics.
type Stats struct {
	FilesProcessed  atomic.Int64
	FilesFailed     atomic.Int64
	LinesRead       atomic.Int64
	RecordsAccepted atomic.Int64
	RecordsRejected atomic.Int64
	Batches         atomic.Int64
}

// New creates a new ingestion service.
func New(cfg *config.Config, src source.Source) *Service {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if src == nil {
		src = source.NewXZ()
	}

	return &Service{
		config: cfg,
		source: src,
	}
}

// workerCount returns the configured worker count, at least one.
func (s *Service) workerCount() int {
	if s.config.Ingestion.Workers < 1 {
		return 1
	}
	return s.config.Ingestion.Workers
}

// Run ingests files with the configured number of workers and returns every
// accepted record in unspecified order. It returns only after all workers
// have stopped.
//
// Under the abort policy the first unreadable archive cancels the run and
// Run returns an error wrapping ErrCorruptArchive. Under the skip policy the
// file is logged and dropped.
func (s *Service) Run(ctx context.Context, files []string) ([]types.Record, error) {
	log := logging.Component("ingestion")

	if len(files) == 0 {
		return nil, errors.ErrNoInputFiles
	}

	workers := s.workerCount()
	d := NewDispatcher(files)

	log.Info("ingestion started",
		"files", len(files),
		"workers", workers,
		"on_corrupt", s.config.Ingestion.OnCorrupt)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		id := i
		g.Go(func() error {
			return s.worker(gctx, id, d)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("ingestion aborted",
			"error", err,
			"files_delivered", d.Delivered(),
			"files_total", d.Total())
		return nil, err
	}

	records := d.Records()
	log.Info("ingestion completed",
		"files", s.stats.FilesProcessed.Load(),
		"failed", s.stats.FilesFailed.Load(),
		"batches", d.Submitted(),
		"records", len(records),
		"rejected", s.stats.RecordsRejected.Load(),
		"duration", time.Since(start))

	return records, nil
}

// worker pulls jobs until the dispatcher is exhausted.
func (s *Service) worker(ctx context.Context, id int, d *Dispatcher) error {
	log := logging.Component("ingestion").With("worker", id)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		path, ok := d.NextJob()
		if !ok {
			return nil
		}

		batch, err := s.ingestFile(path)
		if err != nil {
			s.stats.FilesFailed.Add(1)
			if s.config.Ingestion.OnCorrupt == constants.CorruptPolicySkip {
				log.Error("skipping unreadable archive", "file", path, "error", err)
				continue
			}
			return err
		}

		d.Submit(batch.Records)
		s.stats.FilesProcessed.Add(1)
		s.stats.Batches.Add(1)
		log.Debug("file ingested", "file", path, "records", batch.Len())
	}
}

// ingestFile opens, decompresses and parses one file outside the
// dispatcher lock.
func (s *Service) ingestFile(path string) (*types.RecordBatch, error) {
	rc, err := s.source.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	batch, stats, err := parser.Parse(path, rc)

	s.stats.LinesRead.Add(stats.Lines)
	s.stats.RecordsRejected.Add(stats.Rejected)

	if err != nil {
		return nil, err
	}
	s.stats.RecordsAccepted.Add(stats.Accepted)
	return batch, nil
}

// Stats returns current statistics.
func (s *Service) Stats() ServiceStats {
	return ServiceStats{
		Workers:         s.workerCount(),
		FilesProcessed:  s.stats.FilesProcessed.Load(),
		FilesFailed:     s.stats.FilesFailed.Load(),
		LinesRead:       s.stats.LinesRead.Load(),
		RecordsAccepted: s.stats.RecordsAccepted.Load(),
		RecordsRejected: s.stats.RecordsRejected.Load(),
		Batches:         s.stats.Batches.Load(),
	}
}

// ServiceStats is a snapshot of ingestion statistics.
type ServiceStats struct {
	Workers         int
	FilesProcessed  int64
	FilesFailed     int64
	LinesRead       int64
	RecordsAccepted int64
	RecordsRejected int64
	Batches         int64
}
