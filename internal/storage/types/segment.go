package types

import "github.com/xtxerr/solarplot/internal/calendar"

// Point is one chart sample.
type Point struct {
	Hour   float64 // Hour of day including the minute fraction
	PowerW float64
}

// DaySegment is a maximal run of consecutive buckets whose start times fall
// on the same calendar day.
type DaySegment struct {
	Date    calendar.Date
	Buckets []Bucket

	// Hours[i] is the hour-of-day of Buckets[i] under the run's UTC offset.
	Hours []float64
}

// Label returns the segment date as YYYY-MM-DD.
func (s *DaySegment) Label() string {
	return s.Date.String()
}

// Len returns the number of buckets in the segment.
func (s *DaySegment) Len() int {
	return len(s.Buckets)
}

// Records returns the number of raw records behind the segment.
func (s *DaySegment) Records() int64 {
	var n int64
	for i := range s.Buckets {
		n += s.Buckets[i].Count
	}
	return n
}

// Points returns the (hour, power) projection used for charting.
func (s *DaySegment) Points() []Point {
	points := make([]Point, len(s.Buckets))
	for i := range s.Buckets {
		points[i] = Point{Hour: s.Hours[i], PowerW: s.Buckets[i].Power()}
	}
	return points
}
