// Package constants provides centralized domain-specific constants
// for the entire solarplot application.
//
// The validity bounds and the tail guard are part of the accepted-input
// contract and are exercised directly by tests.
package constants

// =============================================================================
// Input Files
// =============================================================================

const (
	// LogFileSuffix selects input files when listing the log directory.
	// Every other file in the directory is ignored.
	LogFileSuffix = ".log.xz"

	// FieldSeparator separates the fields of one log line.
	FieldSeparator = ";"

	// FieldCount is the exact number of fields required per line:
	// timestamp;current;voltage
	FieldCount = 3

	// MaxLineBytes caps a single line. Longer lines are rejected as malformed.
	MaxLineBytes = 1024 * 1024
)

// =============================================================================
// Record Validity Bounds
// =============================================================================

const (
	// MinTimestampMs is the earliest accepted sample time (2001-09-09 UTC).
	MinTimestampMs int64 = 1_000_000_000_000

	// MaxTimestampMs is the latest accepted sample time (2033-05-18 UTC).
	MaxTimestampMs int64 = 2_000_000_000_000

	// MinCurrent and MaxCurrent bound the current in amperes. Negative
	// values are battery discharge.
	MinCurrent = -15.0
	MaxCurrent = 15.0

	// MinVoltage and MaxVoltage bound the voltage in volts.
	MinVoltage = 5.0
	MaxVoltage = 16.0
)

// =============================================================================
// Averaging
// =============================================================================

const (
	// TailGuard is the minimum number of unconsumed records required to
	// emit another window. A trailing remainder smaller than this is
	// discarded instead of producing an unstable average.
	TailGuard = 20
)

// =============================================================================
// Corrupt Archive Policy
// =============================================================================

const (
	// CorruptPolicyAbort stops the whole run on the first unreadable archive.
	CorruptPolicyAbort = "abort"

	// CorruptPolicySkip logs the unreadable archive, drops it and continues.
	CorruptPolicySkip = "skip"
)

// ValidCorruptPolicies contains all valid corrupt archive policies
var ValidCorruptPolicies = []string{CorruptPolicyAbort, CorruptPolicySkip}

// IsValidCorruptPolicy checks if a policy is valid
func IsValidCorruptPolicy(policy string) bool {
	for _, p := range ValidCorruptPolicies {
		if p == policy {
			return true
		}
	}
	return false
}

// =============================================================================
// Chart Formats
// =============================================================================

const (
	ChartFormatPNG = "png"
	ChartFormatSVG = "svg"
)

// ValidChartFormats contains all valid chart output formats
var ValidChartFormats = []string{ChartFormatPNG, ChartFormatSVG}

// IsValidChartFormat checks if a chart format is valid
func IsValidChartFormat(format string) bool {
	for _, f := range ValidChartFormats {
		if f == format {
			return true
		}
	}
	return false
}
