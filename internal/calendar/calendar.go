// Package calendar converts epoch seconds into civil date and time fields
// under a fixed UTC offset.
//
// The offset is constant for the whole run. Daylight saving transitions are
// not modelled.
package calendar

import (
	"fmt"
	"time"
)

// MaxOffsetSec is the largest accepted absolute UTC offset (14 hours).
const MaxOffsetSec = 14 * 3600

// Date is a calendar day.
type Date struct {
	Year  int
	Month int
	Day   int
}

// String returns the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// Civil holds the calendar fields of one instant.
type Civil struct {
	Date
	Hour   int
	Minute int
}

// HourFraction returns Hour + Minute/60.
func (c Civil) HourFraction() float64 {
	return float64(c.Hour) + float64(c.Minute)/60.0
}

// Zone returns the fixed zone for offsetSec.
func Zone(offsetSec int) *time.Location {
	if offsetSec == 0 {
		return time.UTC
	}
	return time.FixedZone(zoneName(offsetSec), offsetSec)
}

// At returns the civil fields of epochSec shifted by offsetSec.
func At(epochSec int64, offsetSec int) Civil {
	t := time.Unix(epochSec, 0).In(Zone(offsetSec))
	return Civil{
		Date:   Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()},
		Hour:   t.Hour(),
		Minute: t.Minute(),
	}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
}

func zoneName(offsetSec int) string {
	sign := '+'
	if offsetSec < 0 {
		sign = '-'
		offsetSec = -offsetSec
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, offsetSec/3600, (offsetSec%3600)/60)
}
