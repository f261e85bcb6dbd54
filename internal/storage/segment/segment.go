// Package segment splits a time-ordered bucket series into calendar days.
package segment

import (
	"github.com/xtxerr/solarplot/internal/calendar"
	"github.com/xtxerr/solarplot/internal/storage/types"
)

// Segment groups consecutive buckets that fall on the same calendar day
// under offsetSec. A change of date closes the current segment, so input
// that is not time-ordered can yield several segments for one date.
// Bucket order is preserved.
func Segment(buckets []types.Bucket, offsetSec int) []types.DaySegment {
	var segments []types.DaySegment
	var cur *types.DaySegment

	for i := range buckets {
		civil := calendar.At(floorDiv(buckets[i].TimestampMs, 1000), offsetSec)

		if cur == nil || civil.Date != cur.Date {
			segments = append(segments, types.DaySegment{Date: civil.Date})
			cur = &segments[len(segments)-1]
		}

		cur.Buckets = append(cur.Buckets, buckets[i])
		cur.Hours = append(cur.Hours, civil.HourFraction())
	}

	return segments
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
