package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/xtxerr/solarplot/internal/constants"
	"github.com/xtxerr/solarplot/internal/errors"
	"github.com/xtxerr/solarplot/internal/logging"
)

// Watcher reports changes to the log files of one directory.
type Watcher struct {
	dir      string
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// NewWatcher starts watching dir. Bursts of events closer together than
// debounce are reported once.
func NewWatcher(dir string, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, errors.Wrapf(errors.ErrInputDir, "watch %s: %v", dir, err)
	}

	return &Watcher{
		dir:      dir,
		debounce: debounce,
		watcher:  fw,
	}, nil
}

// Run calls fn after each settled change to a log file until ctx is done.
// A failing fn is logged and watching continues, since a file that is still
// being written can look corrupt.
func (w *Watcher) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	log := logging.Component("watch")
	log.Info("watching for new logs", "dir", w.dir, "debounce", w.debounce)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(evt) {
				continue
			}
			log.Debug("log changed", "file", evt.Name, "op", evt.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "error", err)

		case <-timer.C:
			if err := fn(ctx); err != nil {
				log.Error("rerun failed", "error", err)
			}
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func relevant(evt fsnotify.Event) bool {
	if !strings.HasSuffix(filepath.Base(evt.Name), constants.LogFileSuffix) {
		return false
	}
	return evt.Has(fsnotify.Create) || evt.Has(fsnotify.Write) || evt.Has(fsnotify.Rename)
}
