// Package parquet implements Parquet file reading and writing for averaged buckets.
//
// The package provides:
//   - BucketWriter/BucketReader for one file of buckets
//   - ExportDay, writing one DaySegment to <dir>/<YYYY-MM-DD>.parquet
//   - Support for multiple compression algorithms (snappy, zstd, lz4, gzip)
//   - Type conversion between pipeline types and Parquet rows
package parquet
