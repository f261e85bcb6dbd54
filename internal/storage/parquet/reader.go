package parquet

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/xtxerr/solarplot/internal/errors"
	"github.com/xtxerr/solarplot/internal/storage/types"
)

const readBatchSize = 4096

// BucketReader reads buckets from a Parquet file.
type BucketReader struct {
	file   *os.File
	reader *parquet.GenericReader[BucketRow]
	path   string
}

// NewBucketReader creates a new bucket Parquet reader.
func NewBucketReader(path string) (*BucketReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	reader := parquet.NewGenericReader[BucketRow](f)

	return &BucketReader{
		file:   f,
		reader: reader,
		path:   path,
	}, nil
}

// Read reads up to n rows from the file. It returns io.EOF once the file
// is exhausted.
func (r *BucketReader) Read(n int) ([]BucketRow, error) {
	rows := make([]BucketRow, n)
	count, err := r.reader.Read(rows)
	if count == 0 && err != nil {
		return nil, err
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return rows[:count], nil
}

// ReadAll reads all remaining buckets from the file.
func (r *BucketReader) ReadAll() ([]types.Bucket, error) {
	buckets := make([]types.Bucket, 0, r.reader.NumRows())
	for {
		rows, err := r.Read(readBatchSize)
		if errors.Is(err, io.EOF) {
			return buckets, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", r.path, err)
		}
		if len(rows) == 0 {
			return buckets, nil
		}
		for i := range rows {
			buckets = append(buckets, RowToBucket(&rows[i]))
		}
	}
}

// NumRows returns the total number of rows in the file.
func (r *BucketReader) NumRows() int64 {
	return r.reader.NumRows()
}

// Close closes the reader.
func (r *BucketReader) Close() error {
	if err := r.reader.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

// Path returns the file path.
func (r *BucketReader) Path() string {
	return r.path
}

// FileInfo holds information about a Parquet file.
type FileInfo struct {
	Path    string
	Size    int64
	NumRows int64
	NumCols int
}

// GetFileInfo returns information about a bucket Parquet file.
func GetFileInfo(path string) (*FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}

	return &FileInfo{
		Path:    path,
		Size:    stat.Size(),
		NumRows: pf.NumRows(),
		NumCols: len(pf.Schema().Fields()),
	}, nil
}
