package parquet

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"

	"github.com/xtxerr/solarplot/internal/storage/types"
)

// Options configures the Parquet writer.
type Options struct {
	// Compression algorithm
	Compression CompressionType

	// PageBufferSize is the target page size in bytes
	PageBufferSize int
}

// CompressionType represents a Parquet compression algorithm.
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionSnappy
	CompressionZstd
	CompressionLZ4
	CompressionGzip
)

// String returns the configuration name of the compression type.
func (c CompressionType) String() string {
	switch c {
	case CompressionSnappy:
		return "snappy"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	case CompressionGzip:
		return "gzip"
	default:
		return "none"
	}
}

// DefaultOptions returns default Parquet options.
func DefaultOptions() Options {
	return Options{
		Compression:    CompressionZstd,
		PageBufferSize: 256 * 1024,
	}
}

// ParseCompressionType parses a compression type string.
func ParseCompressionType(s string) CompressionType {
	switch s {
	case "snappy":
		return CompressionSnappy
	case "zstd":
		return CompressionZstd
	case "lz4":
		return CompressionLZ4
	case "gzip":
		return CompressionGzip
	case "none", "":
		return CompressionNone
	default:
		return CompressionZstd
	}
}

// getCompression returns the parquet-go compression codec.
func getCompression(ct CompressionType) compress.Codec {
	switch ct {
	case CompressionSnappy:
		return &parquet.Snappy
	case CompressionZstd:
		return &parquet.Zstd
	case CompressionLZ4:
		return &parquet.Lz4Raw
	case CompressionGzip:
		return &parquet.Gzip
	default:
		return &parquet.Uncompressed
	}
}

// BucketRow represents an averaged bucket in Parquet format.
type BucketRow struct {
	Date        string  `parquet:"date,dict"`
	TimestampMs int64   `parquet:"timestamp_ms"`
	LastTs      int64   `parquet:"last_ts"`
	WindowMs    int64   `parquet:"window_ms"`
	Count       int64   `parquet:"count"`
	Current     float32 `parquet:"current"`
	Voltage     float32 `parquet:"voltage"`
	Power       float64 `parquet:"power"`
	PowerMin    float64 `parquet:"power_min"`
	PowerMax    float64 `parquet:"power_max"`
}

// BucketToRow converts a Bucket to a BucketRow.
func BucketToRow(date string, b *types.Bucket) BucketRow {
	return BucketRow{
		Date:        date,
		TimestampMs: b.TimestampMs,
		LastTs:      b.LastTs,
		WindowMs:    b.WindowMs,
		Count:       b.Count,
		Current:     b.Current,
		Voltage:     b.Voltage,
		Power:       b.Power(),
		PowerMin:    b.PowerMin,
		PowerMax:    b.PowerMax,
	}
}

// RowToBucket converts a BucketRow to a Bucket. Power is derived, so the
// stored column is not read back.
func RowToBucket(r *BucketRow) types.Bucket {
	return types.Bucket{
		Record: types.Record{
			TimestampMs: r.TimestampMs,
			Current:     r.Current,
			Voltage:     r.Voltage,
		},
		Count:    r.Count,
		LastTs:   r.LastTs,
		WindowMs: r.WindowMs,
		PowerMin: r.PowerMin,
		PowerMax: r.PowerMax,
	}
}

// BucketWriter writes buckets to a Parquet file.
type BucketWriter struct {
	mu       sync.Mutex
	path     string
	file     *os.File
	writer   *parquet.GenericWriter[BucketRow]
	rowCount int64
	closed   bool
}

// NewBucketWriter creates a new bucket Parquet writer.
func NewBucketWriter(path string, opts Options) (*BucketWriter, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}

	writerOpts := []parquet.WriterOption{
		parquet.Compression(getCompression(opts.Compression)),
	}
	if opts.PageBufferSize > 0 {
		writerOpts = append(writerOpts, parquet.PageBufferSize(opts.PageBufferSize))
	}

	writer := parquet.NewGenericWriter[BucketRow](f, writerOpts...)

	return &BucketWriter{
		path:   path,
		file:   f,
		writer: writer,
	}, nil
}

// Write writes buckets of one day to the Parquet file.
func (w *BucketWriter) Write(date string, buckets []types.Bucket) error {
	if len(buckets) == 0 {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWriterClosed
	}

	rows := make([]BucketRow, len(buckets))
	for i := range buckets {
		rows[i] = BucketToRow(date, &buckets[i])
	}

	n, err := w.writer.Write(rows)
	if err != nil {
		return fmt.Errorf("write rows: %w", err)
	}

	w.rowCount += int64(n)
	return nil
}

// Close closes the writer.
func (w *BucketWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("close writer %s: %w", w.path, err)
	}

	return w.file.Close()
}

// RowCount returns the number of rows written.
func (w *BucketWriter) RowCount() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rowCount
}

// ErrWriterClosed is returned when writing to a closed writer.
var ErrWriterClosed = fmt.Errorf("parquet writer is closed")

// DayPath returns the export file of a day.
func DayPath(dir, label string) string {
	return filepath.Join(dir, label+".parquet")
}

// ExportDay writes seg to DayPath(dir, seg.Label()), replacing any
// previous export of the same day.
func ExportDay(dir string, seg types.DaySegment, opts Options) (string, int64, error) {
	path := DayPath(dir, seg.Label())

	w, err := NewBucketWriter(path, opts)
	if err != nil {
		return "", 0, err
	}

	if err := w.Write(seg.Label(), seg.Buckets); err != nil {
		w.Close()
		return "", 0, err
	}

	if err := w.Close(); err != nil {
		return "", 0, err
	}

	// read the footer back so a truncated file is caught here, not later
	info, err := GetFileInfo(path)
	if err != nil {
		return "", 0, fmt.Errorf("verify %s: %w", path, err)
	}
	if info.NumRows != w.RowCount() {
		return "", 0, fmt.Errorf("verify %s: %d rows on disk, %d written", path, info.NumRows, w.RowCount())
	}

	return path, w.RowCount(), nil
}
