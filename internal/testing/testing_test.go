package testing

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ulikunitz/xz"
)

func TestGoroutineTestBasic(t *testing.T) {
	gt := NewGoroutineTest(t)
	defer gt.Wait()

	var n atomic.Int32
	for i := 0; i < 5; i++ {
		gt.Go(func() error {
			n.Add(1)
			if i < 0 {
				return fmt.Errorf("unexpected negative index: %d", i)
			}
			return nil
		})
	}
}

func TestGoroutineTestContextExpires(t *testing.T) {
	gt := NewGoroutineTestWithTimeout(t, 20*time.Millisecond)
	defer gt.Wait()

	ctx := gt.Context()
	gt.Go(func() error {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(5 * time.Second):
			return fmt.Errorf("context did not expire")
		}
	})
}

func TestSeries(t *testing.T) {
	s := Series(1_700_000_000, 60, 3, 1.5, 12)
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[1] != "1700000060.000;1.500;12.000" {
		t.Errorf("unexpected line: %q", lines[1])
	}
}

func TestWriteXZLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.log.xz")
	WriteXZLog(t, path, "hello\n")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("xz reader: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "hello\n" {
		t.Errorf("expected %q, got %q", "hello\n", got)
	}
}

func TestWriteCorruptXZ(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.log.xz")
	WriteCorruptXZ(t, path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	r, err := xz.NewReader(bytes.NewReader(data))
	if err == nil {
		_, err = io.ReadAll(r)
	}
	if err == nil {
		t.Error("expected decompression error")
	}
}
