package types

import "time"

// Record represents a single validated line from a log file.
// This is the primary data unit flowing through ingestion.
type Record struct {
	TimestampMs int64   // Unix timestamp in milliseconds
	Current     float32 // Amperes, negative while discharging
	Voltage     float32 // Volts
}

// Power returns the instantaneous power in watts.
func (r Record) Power() float64 {
	return float64(r.Current) * float64(r.Voltage)
}

// Time returns the timestamp as a UTC time.Time.
func (r Record) Time() time.Time {
	return time.UnixMilli(r.TimestampMs).UTC()
}

// RecordBatch is a worker-private collection of records from one file.
type RecordBatch struct {
	Records []Record
}

// NewRecordBatch creates a new batch with the given capacity.
func NewRecordBatch(capacity int) *RecordBatch {
	return &RecordBatch{
		Records: make([]Record, 0, capacity),
	}
}

// Add appends a record to the batch.
func (b *RecordBatch) Add(r Record) {
	b.Records = append(b.Records, r)
}

// Len returns the number of records in the batch.
func (b *RecordBatch) Len() int {
	return len(b.Records)
}
