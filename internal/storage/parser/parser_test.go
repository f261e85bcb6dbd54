package parser

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/xtxerr/solarplot/internal/constants"
	"github.com/xtxerr/solarplot/internal/errors"
	"github.com/xtxerr/solarplot/internal/logging"
	"github.com/xtxerr/solarplot/internal/storage/types"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want types.Record
	}{
		{
			name: "typical",
			line: "1700000000.5;2.25;12.5",
			want: types.Record{TimestampMs: 1700000000500, Current: 2.25, Voltage: 12.5},
		},
		{
			name: "integer seconds",
			line: "1700000000;0;12",
			want: types.Record{TimestampMs: 1700000000000, Current: 0, Voltage: 12},
		},
		{
			name: "discharge",
			line: "1700000000;-3.5;11.75",
			want: types.Record{TimestampMs: 1700000000000, Current: -3.5, Voltage: 11.75},
		},
		{
			name: "surrounding whitespace and CR",
			line: " 1700000000 ; 1.5 ;12.5\r",
			want: types.Record{TimestampMs: 1700000000000, Current: 1.5, Voltage: 12.5},
		},
		{
			name: "sub-millisecond truncated",
			line: "1700000000.0009;1;12",
			want: types.Record{TimestampMs: 1700000000000, Current: 1, Voltage: 12},
		},
		{
			name: "inclusive bounds",
			line: "1000000000;-15;5",
			want: types.Record{TimestampMs: 1_000_000_000_000, Current: -15, Voltage: 5},
		},
		{
			name: "inclusive upper bounds",
			line: "2000000000;15;16",
			want: types.Record{TimestampMs: 2_000_000_000_000, Current: 15, Voltage: 16},
		},
		{
			name: "upper bound after truncation",
			line: "2000000000.0005;1;12",
			want: types.Record{TimestampMs: 2_000_000_000_000, Current: 1, Voltage: 12},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			if err != nil {
				t.Fatalf("ParseLine(%q): %v", tt.line, err)
			}
			if got != tt.want {
				t.Errorf("ParseLine(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseLineRejects(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		reason string
	}{
		{"empty", "", ReasonFieldCount},
		{"two fields", "1700000000;1.0", ReasonFieldCount},
		{"four fields", "1700000000;1.0;12;7", ReasonFieldCount},
		{"bad timestamp", "abc;1.0;12", ReasonTimestamp},
		{"empty timestamp", ";1.0;12", ReasonTimestamp},
		{"bad current", "1700000000;x;12", ReasonCurrent},
		{"bad voltage", "1700000000;1.0;12V", ReasonVoltage},
		{"timestamp too early", "999999999;1.0;12", ReasonRange},
		{"timestamp too late", "2000000000.001;1.0;12", ReasonRange},
		{"timestamp just before lower bound", "999999999.9999;1.0;12", ReasonRange},
		{"timestamp overflows int64", "1e300;1.0;12", ReasonRange},
		{"inf timestamp", "Inf;1.0;12", ReasonRange},
		{"current too high", "1700000000;15.01;12", ReasonRange},
		{"current too low", "1700000000;-15.01;12", ReasonRange},
		{"voltage too high", "1700000000;1.0;16.5", ReasonRange},
		{"voltage too low", "1700000000;1.0;4.9", ReasonRange},
		{"current just over", "1700000000;15.0001;12", ReasonRange},
		{"voltage just under", "1700000000;1;4.999", ReasonRange},
		{"nan current", "1700000000;NaN;12", ReasonRange},
		{"inf voltage", "1700000000;1;+Inf", ReasonRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLine(tt.line)
			if !errors.Is(err, errors.ErrMalformedLine) {
				t.Fatalf("expected ErrMalformedLine, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.reason) {
				t.Errorf("expected reason %q in %q", tt.reason, err.Error())
			}
		})
	}
}

func TestParse(t *testing.T) {
	input := strings.Join([]string{
		"1700000000;1.0;12.0",
		"garbage",
		"1700000001;1.5;12.5",
		"1700000002;99;12.5",
		"",
		"1700000003;2.0;13.0",
	}, "\n")

	batch, stats, err := Parse("test.log.xz", strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if stats.Lines != 6 {
		t.Errorf("expected 6 lines, got %d", stats.Lines)
	}
	if stats.Accepted != 3 {
		t.Errorf("expected 3 accepted, got %d", stats.Accepted)
	}
	if stats.Rejected != 3 {
		t.Errorf("expected 3 rejected, got %d", stats.Rejected)
	}
	if batch.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", batch.Len())
	}

	wantTs := []int64{1700000000000, 1700000001000, 1700000003000}
	for i, ts := range wantTs {
		if batch.Records[i].TimestampMs != ts {
			t.Errorf("record %d: expected ts %d, got %d", i, ts, batch.Records[i].TimestampMs)
		}
	}
}

func TestParseEmpty(t *testing.T) {
	batch, stats, err := Parse("empty", strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if batch.Len() != 0 || stats.Lines != 0 {
		t.Errorf("expected nothing, got %d records over %d lines", batch.Len(), stats.Lines)
	}
}

type failingReader struct {
	data string
	done bool
}

func (f *failingReader) Read(p []byte) (int, error) {
	if f.done {
		return 0, io.ErrUnexpectedEOF
	}
	f.done = true
	return copy(p, f.data), nil
}

func TestParseReadError(t *testing.T) {
	r := &failingReader{data: "1700000000;1.0;12.0\n1700000001;1.0;12.0\n"}

	batch, _, err := Parse("broken.log.xz", r)
	if !errors.Is(err, errors.ErrCorruptArchive) {
		t.Fatalf("expected ErrCorruptArchive, got %v", err)
	}
	if batch.Len() != 2 {
		t.Errorf("expected 2 records before the failure, got %d", batch.Len())
	}
}

func TestParseRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		want := types.Record{
			TimestampMs: constants.MinTimestampMs + rng.Int63n(constants.MaxTimestampMs-constants.MinTimestampMs+1),
			Current:     float32(constants.MinCurrent + rng.Float64()*(constants.MaxCurrent-constants.MinCurrent)),
			Voltage:     float32(constants.MinVoltage + rng.Float64()*(constants.MaxVoltage-constants.MinVoltage)),
		}
		line := fmt.Sprintf("%d.%03d;%s;%s",
			want.TimestampMs/1000, want.TimestampMs%1000,
			strconv.FormatFloat(float64(want.Current), 'g', -1, 32),
			strconv.FormatFloat(float64(want.Voltage), 'g', -1, 32))

		got, err := ParseLine(line)
		if err != nil {
			t.Fatalf("ParseLine(%q): %v", line, err)
		}
		// seconds * 1000 in float64 can land just below the exact millisecond
		if d := want.TimestampMs - got.TimestampMs; d < 0 || d > 1 {
			t.Errorf("ParseLine(%q) ts = %d, want %d", line, got.TimestampMs, want.TimestampMs)
		}
		if math.Abs(float64(got.Current-want.Current)) > 1e-5 {
			t.Errorf("ParseLine(%q) current = %v, want %v", line, got.Current, want.Current)
		}
		if math.Abs(float64(got.Voltage-want.Voltage)) > 1e-5 {
			t.Errorf("ParseLine(%q) voltage = %v, want %v", line, got.Voltage, want.Voltage)
		}
	}
}

func TestParseLongLine(t *testing.T) {
	long := strings.Repeat("x", constants.MaxLineBytes+10)

	tests := []struct {
		name     string
		input    string
		records  int
		lines    int64
		rejected int64
	}{
		{
			name:     "between valid lines",
			input:    "1700000000;1;12\n" + long + "\n1700000001;1;12\n",
			records:  2,
			lines:    3,
			rejected: 1,
		},
		{
			name:     "last line without newline",
			input:    "1700000000;1;12\n" + long,
			records:  1,
			lines:    2,
			rejected: 1,
		},
		{
			name:     "exactly at the limit",
			input:    "1700000000;1;12" + strings.Repeat(" ", constants.MaxLineBytes-15) + "\n",
			records:  1,
			lines:    1,
			rejected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, stats, err := Parse("long.log.xz", strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if batch.Len() != tt.records {
				t.Errorf("expected %d records, got %d", tt.records, batch.Len())
			}
			if stats.Lines != tt.lines || stats.Rejected != tt.rejected {
				t.Errorf("expected %d lines/%d rejected, got %d/%d",
					tt.lines, tt.rejected, stats.Lines, stats.Rejected)
			}
		})
	}
}

func TestParseDiagnostic(t *testing.T) {
	var buf bytes.Buffer
	logging.InitWriter(&buf, slog.LevelInfo, logging.FormatText)
	t.Cleanup(func() { logging.InitWriter(os.Stderr, slog.LevelInfo, logging.FormatText) })

	input := "1700000000;1;12\n1700000001;1;12\n1700000002;1\n"
	if _, _, err := Parse("diag.log.xz", strings.NewReader(input)); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"component=parser", "file=diag.log.xz", "line=3", ReasonFieldCount} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in diagnostic, got %q", want, out)
		}
	}
	if strings.Count(out, "level=WARN") != 1 {
		t.Errorf("expected exactly one diagnostic, got %q", out)
	}
}
