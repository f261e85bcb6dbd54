// Package storage implements the solar log processing pipeline.
//
// Architecture:
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Source    │────▶│  Ingestion  │────▶│  Aggregate  │────▶│   Segment   │
//	│ (xz files)  │     │  (workers)  │     │ (sort+avg)  │     │   (days)    │
//	└─────────────┘     └─────────────┘     └─────────────┘     └──────┬──────┘
//	                                                                   │
//	                           ┌───────────────┬───────────────────────┤
//	                           ▼               ▼                       ▼
//	                    ┌─────────────┐ ┌─────────────┐         ┌─────────────┐
//	                    │    Chart    │ │   Parquet   │────────▶│    Query    │
//	                    │  (png/svg)  │ │   Export    │         │  (DuckDB)   │
//	                    └─────────────┘ └─────────────┘         └─────────────┘
//
// The pipeline provides:
//   - Concurrent ingestion of *.log.xz files with a fixed worker pool
//   - A single chronological merge after all workers have finished
//   - Fixed-size window averaging with a tail guard
//   - Grouping of the averaged series by calendar day under a fixed UTC offset
//   - Per-day charts, Parquet export and DDSketch power percentiles
//   - A DuckDB daily-energy summary over the exported files
package storage
