package aggregate

import (
	"github.com/xtxerr/solarplot/internal/constants"
	"github.com/xtxerr/solarplot/internal/storage/types"
)

// Average reduces sorted records to consecutive, non-overlapping windows.
//
// Each window starts at the first unconsumed record t0 and takes every
// following record with timestamp < t0+windowMs. The first window is always
// emitted. After each window, if fewer than constants.TailGuard records
// remain they are dropped and averaging stops.
//
// records must be sorted ascending. Empty input yields nil.
func Average(records []types.Record, windowMs int64) []types.Bucket {
	n := len(records)
	if n == 0 {
		return nil
	}
	if windowMs <= 0 {
		windowMs = 1
	}

	agg := New(windowMs)
	buckets := make([]types.Bucket, 0, estimateBuckets(records, windowMs))

	i := 0
	for {
		t0 := records[i].TimestampMs
		agg.Reset()

		j := i
		for j < n && records[j].TimestampMs-t0 < windowMs {
			agg.AddRecord(records[j])
			j++
		}

		buckets = append(buckets, agg.Result())
		i = j

		if n-i < constants.TailGuard {
			break
		}
	}

	return buckets
}

func estimateBuckets(records []types.Record, windowMs int64) int {
	span := records[len(records)-1].TimestampMs - records[0].TimestampMs
	est := span/windowMs + 1
	if est > int64(len(records)) {
		est = int64(len(records))
	}
	if est < 1 {
		est = 1
	}
	return int(est)
}
