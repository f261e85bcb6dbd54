package aggregate

import (
	"math"

	"github.com/DataDog/sketches-go/ddsketch"

	"github.com/xtxerr/solarplot/internal/storage/types"
)

// StreamingAggregate maintains running statistics over a sequence of
// records or values. It supports optional percentile calculation using
// DDSketch. It is not safe for concurrent use.
type StreamingAggregate struct {
	// Window
	windowStart int64 // Unix milliseconds of the first record
	windowMs    int64

	// Running statistics
	count      int64
	sumCurrent float64
	sumVoltage float64
	sum        float64 // sum of values (instantaneous power for records)
	min        float64
	max        float64
	lastTs     int64

	// DDSketch for percentiles (nil if disabled)
	sketch   *ddsketch.DDSketch
	accuracy float64
}

// ValueStats summarizes the values added to an aggregate.
type ValueStats struct {
	Count int64
	Sum   float64
	Min   float64
	Max   float64
	Mean  float64

	// Percentiles, zero unless the aggregate was created with an accuracy.
	P50 float64
	P90 float64
	P99 float64
}

// New creates a StreamingAggregate for windows of windowMs without
// percentile tracking.
func New(windowMs int64) *StreamingAggregate {
	return &StreamingAggregate{
		windowMs: windowMs,
		min:      math.MaxFloat64,
		max:      -math.MaxFloat64,
	}
}

// NewWithAccuracy creates a StreamingAggregate that also tracks
// percentiles at the given relative accuracy (0.01 = 1%).
func NewWithAccuracy(windowMs int64, accuracy float64) *StreamingAggregate {
	agg := New(windowMs)
	agg.accuracy = accuracy

	sketch, err := ddsketch.NewDefaultDDSketch(accuracy)
	if err == nil {
		agg.sketch = sketch
	}

	return agg
}

// AddRecord adds a record. Its power is tracked as the value.
func (a *StreamingAggregate) AddRecord(r types.Record) {
	if a.count == 0 {
		a.windowStart = r.TimestampMs
	}
	a.sumCurrent += float64(r.Current)
	a.sumVoltage += float64(r.Voltage)
	a.Add(r.Power(), r.TimestampMs)
}

// Add adds a value observed at timestampMs.
func (a *StreamingAggregate) Add(value float64, timestampMs int64) {
	a.count++
	a.sum += value

	if value < a.min {
		a.min = value
	}
	if value > a.max {
		a.max = value
	}

	if a.count == 1 || timestampMs > a.lastTs {
		a.lastTs = timestampMs
	}

	if a.sketch != nil {
		a.sketch.Add(value)
	}
}

// Result returns the window as a Bucket. Means are zero for an empty window.
func (a *StreamingAggregate) Result() types.Bucket {
	b := types.Bucket{
		Record:   types.Record{TimestampMs: a.windowStart},
		Count:    a.count,
		LastTs:   a.lastTs,
		WindowMs: a.windowMs,
	}

	if a.count > 0 {
		n := float64(a.count)
		b.Current = float32(a.sumCurrent / n)
		b.Voltage = float32(a.sumVoltage / n)
		b.PowerMin = a.min
		b.PowerMax = a.max
	}

	return b
}

// Stats returns the value statistics.
func (a *StreamingAggregate) Stats() ValueStats {
	s := ValueStats{Count: a.count, Sum: a.sum}
	if a.count == 0 {
		return s
	}

	s.Min = a.min
	s.Max = a.max
	s.Mean = a.sum / float64(a.count)

	if a.sketch != nil {
		s.P50, _ = a.sketch.GetValueAtQuantile(0.50)
		s.P90, _ = a.sketch.GetValueAtQuantile(0.90)
		s.P99, _ = a.sketch.GetValueAtQuantile(0.99)
	}

	return s
}

// Reset clears the aggregate for the next window.
func (a *StreamingAggregate) Reset() {
	a.windowStart = 0
	a.count = 0
	a.sumCurrent = 0
	a.sumVoltage = 0
	a.sum = 0
	a.min = math.MaxFloat64
	a.max = -math.MaxFloat64
	a.lastTs = 0

	if a.sketch != nil {
		// DDSketch has no Clear method
		newSketch, err := ddsketch.NewDefaultDDSketch(a.accuracy)
		if err == nil {
			a.sketch = newSketch
		}
	}
}
