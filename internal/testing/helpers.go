package testing

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/ulikunitz/xz"
)

// =============================================================================
// Log Fixtures
// =============================================================================

// Line formats one log line as written by the logger: seconds;current;voltage.
func Line(epochSec float64, current, voltage float64) string {
	return fmt.Sprintf("%.3f;%.3f;%.3f\n", epochSec, current, voltage)
}

// Series returns n lines starting at startSec, stepSec apart, with constant
// current and voltage.
func Series(startSec, stepSec int64, n int, current, voltage float64) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(Line(float64(startSec+int64(i)*stepSec), current, voltage))
	}
	return b.String()
}

// CompressXZ returns content as an xz stream.
func CompressXZ(t *testing.T, content string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatalf("xz writer: %v", err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatalf("xz write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("xz close: %v", err)
	}
	return buf.Bytes()
}

// WriteXZLog writes content to path as an xz-compressed file.
func WriteXZLog(t *testing.T, path, content string) {
	t.Helper()

	if err := os.WriteFile(path, CompressXZ(t, content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteCorruptXZ writes an xz file that opens but fails while decompressing:
// a valid stream with its tail cut off.
func WriteCorruptXZ(t *testing.T, path string) {
	t.Helper()

	data := CompressXZ(t, Series(1_700_000_000, 1, 500, 1.5, 12.5))
	cut := data[:len(data)*2/3]
	if err := os.WriteFile(path, cut, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
