package aggregate

import (
	"github.com/xtxerr/solarplot/internal/calendar"
	"github.com/xtxerr/solarplot/internal/storage/types"
)

// DaySummary holds the statistics of one DaySegment.
type DaySummary struct {
	Date     calendar.Date
	Buckets  int
	Records  int64
	EnergyWh float64
	PeakW    float64
	MeanW    float64

	// Power percentiles over buckets
	P50 float64
	P90 float64
	P99 float64
}

// Summarize computes per-day statistics of bucket power. Percentiles use a
// DDSketch with the given relative accuracy; accuracy <= 0 disables them.
func Summarize(seg types.DaySegment, accuracy float64) DaySummary {
	var agg *StreamingAggregate
	if accuracy > 0 {
		agg = NewWithAccuracy(0, accuracy)
	} else {
		agg = New(0)
	}

	s := DaySummary{Date: seg.Date, Buckets: len(seg.Buckets)}
	for i := range seg.Buckets {
		b := &seg.Buckets[i]
		agg.Add(b.Power(), b.TimestampMs)
		s.EnergyWh += b.EnergyWh()
	}

	s.Records = seg.Records()

	stats := agg.Stats()
	s.PeakW = stats.Max
	s.MeanW = stats.Mean
	s.P50 = stats.P50
	s.P90 = stats.P90
	s.P99 = stats.P99

	return s
}
