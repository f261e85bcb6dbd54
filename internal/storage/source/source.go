// Package source discovers log archives and opens them as decompressed
// byte streams.
package source

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/xtxerr/solarplot/internal/constants"
	"github.com/xtxerr/solarplot/internal/errors"
)

// Source opens one input file as a stream of plain text.
type Source interface {
	Open(path string) (io.ReadCloser, error)
}

// Discover lists dir and returns the regular files whose name ends in
// constants.LogFileSuffix, sorted by name. All other entries are ignored.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInputDir, "%s: %v", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if !strings.HasSuffix(e.Name(), constants.LogFileSuffix) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}

	if len(files) == 0 {
		return nil, errors.Wrapf(errors.ErrNoInputFiles, "no %s files in %s", constants.LogFileSuffix, dir)
	}

	sort.Strings(files)
	return files, nil
}

// XZ opens xz-compressed files.
type XZ struct {
	// BufferSize is the read buffer in front of the compressed file.
	// Zero uses the bufio default.
	BufferSize int
}

// NewXZ creates an xz source.
func NewXZ() *XZ {
	return &XZ{BufferSize: 64 * 1024}
}

// Open opens path and returns a reader over the decompressed contents.
// An invalid stream header is reported as ErrCorruptArchive; corruption
// further into the stream surfaces from Read.
func (x *XZ) Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewCorrupt(path, err)
	}

	var br *bufio.Reader
	if x.BufferSize > 0 {
		br = bufio.NewReaderSize(f, x.BufferSize)
	} else {
		br = bufio.NewReader(f)
	}

	zr, err := xz.NewReader(br)
	if err != nil {
		f.Close()
		return nil, errors.NewCorrupt(path, err)
	}

	return &xzReadCloser{r: zr, f: f, path: path}, nil
}

type xzReadCloser struct {
	r    *xz.Reader
	f    *os.File
	path string
}

func (z *xzReadCloser) Read(p []byte) (int, error) {
	n, err := z.r.Read(p)
	if err != nil && err != io.EOF {
		return n, errors.NewCorrupt(z.path, err)
	}
	return n, err
}

func (z *xzReadCloser) Close() error {
	return z.f.Close()
}
