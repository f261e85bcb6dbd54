package types

import (
	"testing"
	"time"

	"github.com/xtxerr/solarplot/internal/calendar"
)

func TestRecordPower(t *testing.T) {
	r := Record{Current: 2.5, Voltage: 12}
	if r.Power() != 30 {
		t.Errorf("expected 30W, got %v", r.Power())
	}

	discharge := Record{Current: -1.5, Voltage: 12}
	if discharge.Power() != -18 {
		t.Errorf("expected -18W, got %v", discharge.Power())
	}
}

func TestRecordTime(t *testing.T) {
	now := time.Now().Truncate(time.Millisecond).UTC()
	r := Record{TimestampMs: now.UnixMilli()}

	if !r.Time().Equal(now) {
		t.Errorf("expected %v, got %v", now, r.Time())
	}
	if r.Time().Location() != time.UTC {
		t.Errorf("expected UTC location, got %v", r.Time().Location())
	}
}

func TestRecordBatch(t *testing.T) {
	batch := NewRecordBatch(10)

	if batch.Len() != 0 {
		t.Errorf("expected empty batch")
	}

	batch.Add(Record{TimestampMs: 1})
	batch.Add(Record{TimestampMs: 2})

	if batch.Len() != 2 {
		t.Errorf("expected 2 records, got %d", batch.Len())
	}
}

func TestBucketEnergy(t *testing.T) {
	b := Bucket{
		Record:   Record{Current: 5, Voltage: 12},
		WindowMs: 30 * 60 * 1000,
	}

	if got := b.EnergyWh(); got != 30 {
		t.Errorf("expected 30Wh, got %v", got)
	}
}

func TestBucketStartTime(t *testing.T) {
	b := Bucket{Record: Record{TimestampMs: 1_700_000_000_000}, LastTs: 1_700_000_004_000, Count: 3}

	want := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
	if !b.StartTime().Equal(want) {
		t.Errorf("expected %v, got %v", want, b.StartTime())
	}
}

func TestDaySegment(t *testing.T) {
	seg := DaySegment{
		Date: calendar.Date{Year: 2024, Month: 6, Day: 1},
		Buckets: []Bucket{
			{Record: Record{Current: 1, Voltage: 12}, Count: 10},
			{Record: Record{Current: 2, Voltage: 13}, Count: 15},
		},
		Hours: []float64{6.5, 7},
	}

	if seg.Label() != "2024-06-01" {
		t.Errorf("expected 2024-06-01, got %s", seg.Label())
	}
	if seg.Records() != 25 {
		t.Errorf("expected 25 records, got %d", seg.Records())
	}

	points := seg.Points()
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0] != (Point{Hour: 6.5, PowerW: 12}) {
		t.Errorf("unexpected first point: %+v", points[0])
	}
	if points[1] != (Point{Hour: 7, PowerW: 26}) {
		t.Errorf("unexpected second point: %+v", points[1])
	}
}
