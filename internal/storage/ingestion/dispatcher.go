package ingestion

import (
	"sync"

	"github.com/xtxerr/solarplot/internal/storage/types"
)

// Dispatcher hands out input files to workers and collects their records.
//
// The job cursor and the record accumulator share one mutex. The lock is
// held only to advance the cursor or append a finished batch, never while
// a file is decompressed or parsed.
type Dispatcher struct {
	mu        sync.Mutex
	files     []string
	next      int
	records   []types.Record
	submitted int
}

// NewDispatcher creates a dispatcher over a copy of files.
func NewDispatcher(files []string) *Dispatcher {
	owned := make([]string, len(files))
	copy(owned, files)
	return &Dispatcher{files: owned}
}

// NextJob returns the next undelivered file. The second result is false
// once every file has been handed out. Each file is returned exactly once
// across all callers.
func (d *Dispatcher) NextJob() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.next >= len(d.files) {
		return "", false
	}
	path := d.files[d.next]
	d.next++
	return path, true
}

// Submit appends a finished batch to the accumulator.
func (d *Dispatcher) Submit(records []types.Record) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.records = append(d.records, records...)
	d.submitted++
}

// Records returns the accumulated records. It must only be called after all
// workers have finished.
func (d *Dispatcher) Records() []types.Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.records
}

// Len returns the number of accumulated records.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.records)
}

// Delivered returns how many files have been handed out.
func (d *Dispatcher) Delivered() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.next
}

// Submitted returns how many batches have been appended.
func (d *Dispatcher) Submitted() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.submitted
}

// Total returns the number of files the dispatcher was created with.
func (d *Dispatcher) Total() int {
	return len(d.files)
}
