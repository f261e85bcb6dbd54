package aggregate

import (
	"math"
	"testing"
	"time"

	"github.com/xtxerr/solarplot/internal/storage/types"
)

func TestStreamingAggregate_Basic(t *testing.T) {
	now := time.Now().UnixMilli()

	agg := New(5 * 60 * 1000)

	if agg.Stats().Count != 0 {
		t.Error("new aggregate should be empty")
	}

	agg.AddRecord(types.Record{TimestampMs: now, Current: 1, Voltage: 10})
	agg.AddRecord(types.Record{TimestampMs: now + 1000, Current: 2, Voltage: 12})
	agg.AddRecord(types.Record{TimestampMs: now + 2000, Current: 3, Voltage: 14})

	if agg.Stats().Count != 3 {
		t.Errorf("expected count=3, got %d", agg.Stats().Count)
	}

	b := agg.Result()

	if b.TimestampMs != now {
		t.Errorf("expected start=%d, got %d", now, b.TimestampMs)
	}

	if b.LastTs != now+2000 {
		t.Errorf("expected last=%d, got %d", now+2000, b.LastTs)
	}

	if b.Current != 2 {
		t.Errorf("expected mean current=2, got %f", b.Current)
	}

	if b.Voltage != 12 {
		t.Errorf("expected mean voltage=12, got %f", b.Voltage)
	}

	if b.PowerMin != 10 {
		t.Errorf("expected power min=10, got %f", b.PowerMin)
	}

	if b.PowerMax != 42 {
		t.Errorf("expected power max=42, got %f", b.PowerMax)
	}

	if b.WindowMs != 5*60*1000 {
		t.Errorf("expected window=300000, got %d", b.WindowMs)
	}
}

func TestStreamingAggregate_Empty(t *testing.T) {
	b := New(1000).Result()

	if b.Count != 0 || b.Current != 0 || b.Voltage != 0 {
		t.Errorf("expected zero bucket, got %+v", b)
	}

	s := New(1000).Stats()
	if s.Count != 0 || s.Mean != 0 {
		t.Errorf("expected zero stats, got %+v", s)
	}
}

func TestStreamingAggregate_WithPercentiles(t *testing.T) {
	now := time.Now().UnixMilli()

	agg := NewWithAccuracy(0, 0.01)

	// Add 100 values: 1, 2, 3, ..., 100
	for i := 1; i <= 100; i++ {
		agg.Add(float64(i), now+int64(i)*100)
	}

	s := agg.Stats()

	// P50 should be around 50
	if math.Abs(s.P50-50.0) > 2.0 {
		t.Errorf("expected P50 near 50, got %f", s.P50)
	}

	// P90 should be around 90
	if math.Abs(s.P90-90.0) > 2.0 {
		t.Errorf("expected P90 near 90, got %f", s.P90)
	}

	// P99 should be around 99
	if math.Abs(s.P99-99.0) > 2.0 {
		t.Errorf("expected P99 near 99, got %f", s.P99)
	}

	if s.Mean != 50.5 {
		t.Errorf("expected mean=50.5, got %f", s.Mean)
	}
}

func TestStreamingAggregate_NegativeValues(t *testing.T) {
	agg := NewWithAccuracy(0, 0.01)

	for i := -50; i <= 50; i++ {
		agg.Add(float64(i), int64(i+100))
	}

	s := agg.Stats()
	if s.Min != -50 || s.Max != 50 {
		t.Errorf("expected range [-50, 50], got [%f, %f]", s.Min, s.Max)
	}
	if math.Abs(s.P50) > 1.0 {
		t.Errorf("expected P50 near 0, got %f", s.P50)
	}
}

func TestStreamingAggregate_Reset(t *testing.T) {
	agg := NewWithAccuracy(1000, 0.01)

	agg.AddRecord(types.Record{TimestampMs: 5000, Current: 1, Voltage: 12})
	agg.AddRecord(types.Record{TimestampMs: 5500, Current: 1, Voltage: 12})

	agg.Reset()

	if agg.Stats().Count != 0 {
		t.Error("aggregate should be empty after reset")
	}

	agg.AddRecord(types.Record{TimestampMs: 9000, Current: 2, Voltage: 13})

	b := agg.Result()
	if b.TimestampMs != 9000 || b.Count != 1 {
		t.Errorf("expected fresh window at 9000 with 1 record, got %+v", b)
	}
	if b.PowerMin != 26 || b.PowerMax != 26 {
		t.Errorf("expected min=max=26, got %f/%f", b.PowerMin, b.PowerMax)
	}
}

func BenchmarkStreamingAggregate_AddRecord(b *testing.B) {
	agg := New(300000)
	r := types.Record{TimestampMs: 1_700_000_000_000, Current: 1.5, Voltage: 12.5}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		agg.AddRecord(r)
	}
}

func BenchmarkStreamingAggregate_AddWithPercentile(b *testing.B) {
	agg := NewWithAccuracy(0, 0.01)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		agg.Add(float64(i%1000), int64(i))
	}
}
