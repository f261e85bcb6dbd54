// Package parser turns decompressed log text into validated records.
//
// A log line has the form
//
//	<epoch seconds>;<current A>;<voltage V>
//
// where each field is a decimal number. Lines that do not parse, or whose
// values fall outside the bounds in the constants package, are reported
// and skipped. They never fail the file.
package parser

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xtxerr/solarplot/internal/constants"
	"github.com/xtxerr/solarplot/internal/errors"
	"github.com/xtxerr/solarplot/internal/logging"
	"github.com/xtxerr/solarplot/internal/storage/types"
)

// Rejection reasons attached to ErrMalformedLine.
const (
	ReasonFieldCount = "field count"
	ReasonTimestamp  = "timestamp"
	ReasonCurrent    = "current"
	ReasonVoltage    = "voltage"
	ReasonRange      = "out of range"
	ReasonTooLong    = "line too long"
)

// Stats counts the lines seen while parsing one stream.
type Stats struct {
	Lines    int64
	Accepted int64
	Rejected int64
}

// ParseLine parses one line into a Record.
func ParseLine(line string) (types.Record, error) {
	fields := strings.Split(line, constants.FieldSeparator)
	if len(fields) != constants.FieldCount {
		return types.Record{}, errors.NewMalformed(ReasonFieldCount)
	}

	sec, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return types.Record{}, errors.NewMalformed(ReasonTimestamp)
	}
	current, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return types.Record{}, errors.NewMalformed(ReasonCurrent)
	}
	voltage, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return types.Record{}, errors.NewMalformed(ReasonVoltage)
	}

	// The bounds apply to the truncated millisecond value. ms must fit an
	// int64 before the conversion.
	ms := sec * 1000
	if math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > 1e18 {
		return types.Record{}, errors.NewMalformed(ReasonRange)
	}
	ts := int64(ms)

	// NaN fails every comparison, so it is rejected here as well.
	if ts < constants.MinTimestampMs || ts > constants.MaxTimestampMs ||
		!(current >= constants.MinCurrent && current <= constants.MaxCurrent) ||
		!(voltage >= constants.MinVoltage && voltage <= constants.MaxVoltage) {
		return types.Record{}, errors.NewMalformed(ReasonRange)
	}

	return types.Record{
		TimestampMs: ts,
		Current:     float32(current),
		Voltage:     float32(voltage),
	}, nil
}

// Parse reads r line by line and returns the accepted records.
// name identifies the stream in diagnostics. Malformed lines, including
// lines longer than constants.MaxLineBytes, are logged at warn level and
// counted. A read failure from r is returned as ErrCorruptArchive together
// with the records parsed so far.
func Parse(name string, r io.Reader) (*types.RecordBatch, Stats, error) {
	log := logging.Component("parser")

	batch := types.NewRecordBatch(4096)
	var stats Stats

	reject := func(reason string) {
		stats.Rejected++
		log.Warn("malformed line",
			"file", name,
			"line", stats.Lines,
			"reason", reason)
	}

	br := bufio.NewReaderSize(r, 64*1024)
	line := make([]byte, 0, 256)
	tooLong := false

	for {
		frag, more, err := br.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, errors.ErrCorruptArchive) {
				return batch, stats, err
			}
			return batch, stats, errors.NewCorrupt(name, err)
		}

		// an oversized line is drained fragment by fragment and never buffered
		if !tooLong {
			if len(line)+len(frag) > constants.MaxLineBytes {
				tooLong = true
				line = line[:0]
			} else {
				line = append(line, frag...)
			}
		}
		if more {
			continue
		}

		stats.Lines++
		if tooLong {
			reject(errors.NewMalformed(ReasonTooLong).Error())
		} else if rec, err := ParseLine(string(line)); err != nil {
			reject(err.Error())
		} else {
			stats.Accepted++
			batch.Add(rec)
		}

		line = line[:0]
		tooLong = false
	}

	return batch, stats, nil
}
