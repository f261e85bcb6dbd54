package aggregate

import (
	"sort"

	"github.com/xtxerr/solarplot/internal/storage/types"
)

// Sort orders records by timestamp, ascending, in place.
// The order of records with equal timestamps is unspecified.
func Sort(records []types.Record) {
	// a single worker over chronologically named files already yields order
	if IsSorted(records) {
		return
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].TimestampMs < records[j].TimestampMs
	})
}

// IsSorted reports whether records are in ascending timestamp order.
func IsSorted(records []types.Record) bool {
	return sort.SliceIsSorted(records, func(i, j int) bool {
		return records[i].TimestampMs < records[j].TimestampMs
	})
}
