package source

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/xtxerr/solarplot/internal/errors"
	testutil "github.com/xtxerr/solarplot/internal/testing"
)

func TestDiscover(t *testing.T) {
	dir := t.TempDir()

	testutil.WriteXZLog(t, filepath.Join(dir, "b.log.xz"), "1700000000;1;12\n")
	testutil.WriteXZLog(t, filepath.Join(dir, "a.log.xz"), "1700000000;1;12\n")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "c.log"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "d.log.xz"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	want := []string{filepath.Join(dir, "a.log.xz"), filepath.Join(dir, "b.log.xz")}
	if len(files) != len(want) {
		t.Fatalf("expected %d files, got %v", len(want), files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %s, want %s", i, files[i], want[i])
		}
	}
}

func TestDiscoverEmpty(t *testing.T) {
	_, err := Discover(t.TempDir())
	if !errors.Is(err, errors.ErrNoInputFiles) {
		t.Errorf("expected ErrNoInputFiles, got %v", err)
	}
}

func TestDiscoverMissingDir(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, errors.ErrInputDir) {
		t.Errorf("expected ErrInputDir, got %v", err)
	}
}

func TestXZOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "day.log.xz")
	content := "1700000000;1.5;12.5\n1700000001;1.6;12.4\n"
	testutil.WriteXZLog(t, path, content)

	rc, err := NewXZ().Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != content {
		t.Errorf("expected %q, got %q", content, got)
	}
}

func TestXZOpenCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.log.xz")
	testutil.WriteCorruptXZ(t, path)

	rc, err := NewXZ().Open(path)
	if err == nil {
		_, err = io.ReadAll(rc)
		rc.Close()
	}
	if !errors.Is(err, errors.ErrCorruptArchive) {
		t.Errorf("expected ErrCorruptArchive, got %v", err)
	}
}

func TestXZOpenNotXZ(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.log.xz")
	if err := os.WriteFile(path, []byte("1700000000;1;12\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewXZ().Open(path)
	if !errors.Is(err, errors.ErrCorruptArchive) {
		t.Errorf("expected ErrCorruptArchive, got %v", err)
	}
}
