package query

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/xtxerr/solarplot/internal/errors"
	"github.com/xtxerr/solarplot/internal/storage/config"
)

// Service provides query capabilities over exported Parquet files.
// It uses an in-memory DuckDB database that reads the files in place.
type Service struct {
	mu sync.RWMutex

	config *config.Config
	db     *sql.DB

	// Statistics
	stats Stats
}

// Stats holds query statistics.
type Stats struct {
	QueriesExecuted int64
	RowsReturned    int64
	Errors          int64
}

// DailyRow is one day of the summary computed over the export directory.
type DailyRow struct {
	Date       string
	Buckets    int64
	Records    int64
	EnergyWh   float64
	PeakW      float64
	AvgVoltage float64
}

// New creates a new query service.
func New(cfg *config.Config) (*Service, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	// Open in-memory DuckDB database
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", errors.Join(errors.ErrQuery, err))
	}

	// Configure DuckDB
	if cfg.Summary.MemoryLimit != "" {
		_, err = db.Exec(fmt.Sprintf("SET memory_limit='%s'", quote(cfg.Summary.MemoryLimit)))
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("set memory limit: %w", errors.Join(errors.ErrQuery, err))
		}
	}

	return &Service{
		config: cfg,
		db:     db,
	}, nil
}

// Close closes the query service.
func (s *Service) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// quote escapes s for use inside a single-quoted SQL literal.
func quote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// DailySummary aggregates every *.parquet file in dir into one row per day,
// ordered by date.
func (s *Service) DailySummary(ctx context.Context, dir string) ([]DailyRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pattern := filepath.Join(dir, "*.parquet")

	// read_parquet does not accept a bound parameter for the file list
	query := fmt.Sprintf(`
		SELECT
			date,
			COUNT(*)                                   AS buckets,
			CAST(SUM(count) AS BIGINT)                 AS records,
			SUM(power * window_ms) / 3600000.0         AS energy_wh,
			MAX(power)                                 AS peak_w,
			AVG(voltage)                               AS avg_voltage
		FROM read_parquet('%s')
		GROUP BY date
		ORDER BY date
	`, quote(pattern))

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.stats.Errors++
		return nil, fmt.Errorf("daily summary over %s: %w", dir, errors.Join(errors.ErrQuery, err))
	}
	defer rows.Close()

	var results []DailyRow
	for rows.Next() {
		var r DailyRow
		if err := rows.Scan(&r.Date, &r.Buckets, &r.Records, &r.EnergyWh, &r.PeakW, &r.AvgVoltage); err != nil {
			s.stats.Errors++
			return nil, fmt.Errorf("scan row: %w", errors.Join(errors.ErrQuery, err))
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		s.stats.Errors++
		return nil, fmt.Errorf("daily summary: %w", errors.Join(errors.ErrQuery, err))
	}

	s.stats.QueriesExecuted++
	s.stats.RowsReturned += int64(len(results))

	return results, nil
}

// Stats returns query statistics.
func (s *Service) Stats() ServiceStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return ServiceStats{
		QueriesExecuted: s.stats.QueriesExecuted,
		RowsReturned:    s.stats.RowsReturned,
		Errors:          s.stats.Errors,
	}
}

// ServiceStats holds service statistics.
type ServiceStats struct {
	QueriesExecuted int64
	RowsReturned    int64
	Errors          int64
}

// BucketsView is the view name under which ExecuteSQL exposes the export.
const BucketsView = "buckets"

// Rows is the tabular result of an ad-hoc query.
type Rows struct {
	Columns []string
	Values  [][]any
}

// ExecuteSQL runs an ad-hoc query over the export directory dir. The day
// files are visible to query as the view "buckets".
func (s *Service) ExecuteSQL(ctx context.Context, dir, query string) (*Rows, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// the view lives on one connection, so the query must use the same one
	conn, err := s.db.Conn(ctx)
	if err != nil {
		s.stats.Errors++
		return nil, fmt.Errorf("acquire connection: %w", errors.Join(errors.ErrQuery, err))
	}
	defer conn.Close()

	view := fmt.Sprintf("CREATE OR REPLACE TEMP VIEW %s AS SELECT * FROM read_parquet('%s')",
		BucketsView, quote(filepath.Join(dir, "*.parquet")))
	if _, err := conn.ExecContext(ctx, view); err != nil {
		s.stats.Errors++
		return nil, fmt.Errorf("create view over %s: %w", dir, errors.Join(errors.ErrQuery, err))
	}

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		s.stats.Errors++
		return nil, fmt.Errorf("query: %w", errors.Join(errors.ErrQuery, err))
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		s.stats.Errors++
		return nil, fmt.Errorf("columns: %w", errors.Join(errors.ErrQuery, err))
	}

	result := &Rows{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			s.stats.Errors++
			return nil, fmt.Errorf("scan row: %w", errors.Join(errors.ErrQuery, err))
		}
		result.Values = append(result.Values, values)
	}
	if err := rows.Err(); err != nil {
		s.stats.Errors++
		return nil, fmt.Errorf("query: %w", errors.Join(errors.ErrQuery, err))
	}

	s.stats.QueriesExecuted++
	s.stats.RowsReturned += int64(len(result.Values))

	return result, nil
}
