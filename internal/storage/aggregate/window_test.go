package aggregate

import (
	"math/rand"
	"testing"

	"github.com/xtxerr/solarplot/internal/constants"
	"github.com/xtxerr/solarplot/internal/storage/types"
)

func recordsAt(ts ...int64) []types.Record {
	out := make([]types.Record, len(ts))
	for i, t := range ts {
		out[i] = types.Record{TimestampMs: t, Current: 1, Voltage: 12}
	}
	return out
}

// spaced returns n records step ms apart starting at start.
func spaced(start, step int64, n int) []types.Record {
	out := make([]types.Record, n)
	for i := range out {
		out[i] = types.Record{TimestampMs: start + int64(i)*step, Current: 1, Voltage: 12}
	}
	return out
}

func TestAverage_Empty(t *testing.T) {
	if got := Average(nil, 300); len(got) != 0 {
		t.Errorf("expected no buckets, got %d", len(got))
	}
	if got := Average([]types.Record{}, 300); len(got) != 0 {
		t.Errorf("expected no buckets, got %d", len(got))
	}
}

func TestAverage_FirstWindow(t *testing.T) {
	buckets := Average(recordsAt(0, 100, 250, 400), 300)

	if len(buckets) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(buckets))
	}
	b := buckets[0]
	if b.TimestampMs != 0 {
		t.Errorf("expected start=0, got %d", b.TimestampMs)
	}
	if b.Count != 3 {
		t.Errorf("expected 3 records, got %d", b.Count)
	}
	if b.LastTs != 250 {
		t.Errorf("expected last=250, got %d", b.LastTs)
	}
}

func TestAverage_NextWindowStartsAtCursor(t *testing.T) {
	records := append(recordsAt(0, 100, 250), spaced(400, 10, 40)...)

	buckets := Average(records, 300)

	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	if buckets[0].Count != 3 {
		t.Errorf("expected first bucket of 3, got %d", buckets[0].Count)
	}
	if buckets[1].TimestampMs != 400 {
		t.Errorf("expected second bucket at 400, got %d", buckets[1].TimestampMs)
	}
	// 400..690 inclusive
	if buckets[1].Count != 30 {
		t.Errorf("expected second bucket of 30, got %d", buckets[1].Count)
	}
}

func TestAverage_TailGuard(t *testing.T) {
	// One record per window, so the bucket count is exactly predictable.
	tests := []struct {
		n    int
		want int
	}{
		{1, 1},
		{5, 1},
		{constants.TailGuard, 1},
		{constants.TailGuard + 1, 2},
		{constants.TailGuard + 5, 6},
		{100, 100 - constants.TailGuard + 1},
	}

	for _, tt := range tests {
		buckets := Average(spaced(0, 1000, tt.n), 1000)
		if len(buckets) != tt.want {
			t.Errorf("n=%d: expected %d buckets, got %d", tt.n, tt.want, len(buckets))
		}

		consumed := int64(0)
		for _, b := range buckets {
			consumed += b.Count
		}
		if remaining := int64(tt.n) - consumed; tt.n > 1 && remaining >= constants.TailGuard {
			t.Errorf("n=%d: %d records left unconsumed", tt.n, remaining)
		}
	}
}

func TestAverage_Means(t *testing.T) {
	records := []types.Record{
		{TimestampMs: 0, Current: 1, Voltage: 12},
		{TimestampMs: 10, Current: 3, Voltage: 14},
	}

	buckets := Average(records, 100)
	if len(buckets) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(buckets))
	}

	b := buckets[0]
	if b.Current != 2 || b.Voltage != 13 {
		t.Errorf("expected 2A/13V, got %f/%f", b.Current, b.Voltage)
	}
	if b.Power() != 26 {
		t.Errorf("expected 26W, got %f", b.Power())
	}
	if b.PowerMin != 12 || b.PowerMax != 42 {
		t.Errorf("expected power range 12..42, got %f..%f", b.PowerMin, b.PowerMax)
	}
}

func TestAverage_Contiguous(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	records := make([]types.Record, 5000)
	ts := int64(1_700_000_000_000)
	for i := range records {
		ts += int64(rng.Intn(30_000))
		records[i] = types.Record{TimestampMs: ts, Current: float32(rng.Float64() * 5), Voltage: 12}
	}

	const window = 300_000
	buckets := Average(records, window)

	cursor := 0
	for i, b := range buckets {
		if b.TimestampMs != records[cursor].TimestampMs {
			t.Fatalf("bucket %d: starts at %d, expected first unconsumed %d", i, b.TimestampMs, records[cursor].TimestampMs)
		}
		if b.LastTs-b.TimestampMs >= window {
			t.Fatalf("bucket %d: spans %d ms", i, b.LastTs-b.TimestampMs)
		}
		cursor += int(b.Count)
		if cursor < len(records) && records[cursor].TimestampMs-b.TimestampMs < window {
			t.Fatalf("bucket %d: stopped before the window closed", i)
		}
		if i > 0 && b.TimestampMs <= buckets[i-1].LastTs {
			t.Fatalf("bucket %d overlaps its predecessor", i)
		}
	}

	if len(records)-cursor >= constants.TailGuard {
		t.Errorf("%d records left unconsumed", len(records)-cursor)
	}
}

func TestAverage_NonPositiveWindow(t *testing.T) {
	buckets := Average(spaced(0, 1, 30), 0)

	if len(buckets) == 0 {
		t.Fatal("expected buckets")
	}
	for _, b := range buckets {
		if b.Count != 1 {
			t.Errorf("expected single-record windows, got %d", b.Count)
		}
	}
}

func TestSort(t *testing.T) {
	records := spaced(1_700_000_000_000, 1000, 500)
	rng := rand.New(rand.NewSource(7))
	rng.Shuffle(len(records), func(i, j int) { records[i], records[j] = records[j], records[i] })

	Sort(records)

	if !IsSorted(records) {
		t.Fatal("records not sorted")
	}
	for i := range records {
		if records[i].TimestampMs != 1_700_000_000_000+int64(i)*1000 {
			t.Fatalf("record %d: unexpected ts %d", i, records[i].TimestampMs)
		}
	}
}

func TestSort_Duplicates(t *testing.T) {
	records := recordsAt(3, 1, 2, 1, 3)
	Sort(records)

	want := []int64{1, 1, 2, 3, 3}
	for i, ts := range want {
		if records[i].TimestampMs != ts {
			t.Errorf("record %d: expected %d, got %d", i, ts, records[i].TimestampMs)
		}
	}
}

func BenchmarkAverage(b *testing.B) {
	records := spaced(1_700_000_000_000, 1000, 86400)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Average(records, 300_000)
	}
}
