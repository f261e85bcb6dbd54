// Package types defines the core data types used throughout the pipeline.
//
// Key types:
//   - Record: A single validated log sample (timestamp, current, voltage)
//   - Bucket: The averaged result of one fixed-size window
//   - DaySegment: A contiguous run of buckets sharing one calendar day
package types
