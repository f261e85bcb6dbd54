package types

import "time"

// Bucket is the average of one window of consecutive records.
// The embedded Record carries the window start timestamp and the mean
// current and voltage, so a Bucket can be used wherever a Record is.
type Bucket struct {
	Record

	Count    int64   // Number of records consumed by this window
	LastTs   int64   // Timestamp of the last consumed record
	WindowMs int64   // Configured window length
	PowerMin float64 // Smallest instantaneous power in the window
	PowerMax float64 // Largest instantaneous power in the window
}

// StartTime returns the window start as a time.Time.
func (b *Bucket) StartTime() time.Time {
	return b.Record.Time()
}

// EnergyWh returns the energy of the window in watt-hours, assuming the
// mean power held for the whole window.
func (b *Bucket) EnergyWh() float64 {
	return b.Power() * float64(b.WindowMs) / 3_600_000.0
}
