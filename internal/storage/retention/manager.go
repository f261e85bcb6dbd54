// Package retention prunes old per-day Parquet exports.
package retention

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xtxerr/solarplot/internal/calendar"
	"github.com/xtxerr/solarplot/internal/storage/config"
)

// Manager deletes exported day files that fall outside the retention window.
type Manager struct {
	mu     sync.RWMutex
	config *config.Config
	stats  Stats
}

// Stats holds retention statistics.
type Stats struct {
	LastRunTime  time.Time
	FilesDeleted int64
	BytesFreed   int64
	FilesSkipped int64
	Errors       int64
}

// CleanupResult holds the result of a cleanup operation.
type CleanupResult struct {
	Cutoff       calendar.Date
	Deleted      []string
	BytesFreed   int64
	FilesSkipped int
	Errors       []error
}

// New creates a new retention manager.
func New(cfg *config.Config) *Manager {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	return &Manager{
		config: cfg,
	}
}

// RunCleanup deletes day files dated on or before newest minus the
// configured number of days. The window is anchored at the newest data so
// that re-processing an old archive is reproducible.
func (m *Manager) RunCleanup(newest calendar.Date) CleanupResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.LastRunTime = time.Now()

	result := m.cleanup(newest, false)

	m.stats.FilesDeleted += int64(len(result.Deleted))
	m.stats.BytesFreed += result.BytesFreed
	m.stats.FilesSkipped += int64(result.FilesSkipped)
	m.stats.Errors += int64(len(result.Errors))

	return result
}

// DryRun simulates cleanup without deleting files.
func (m *Manager) DryRun(newest calendar.Date) CleanupResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.cleanup(newest, true)
}

func (m *Manager) cleanup(newest calendar.Date, dryRun bool) CleanupResult {
	days := m.config.Export.RetentionDays
	cutoff := newest.Time().AddDate(0, 0, -days)
	result := CleanupResult{Cutoff: dateOf(cutoff)}

	if days <= 0 {
		return result
	}

	files, err := m.listFiles(m.config.Export.Dir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, fmt.Errorf("list files: %w", err))
		}
		return result
	}

	for _, file := range files {
		day, err := parseFileDate(file.name)
		if err != nil {
			result.FilesSkipped++
			continue
		}

		if day.Time().After(cutoff) {
			result.FilesSkipped++
			continue
		}

		if !dryRun {
			if err := os.Remove(file.path); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("delete %s: %w", file.path, err))
				continue
			}
		}

		result.Deleted = append(result.Deleted, file.path)
		result.BytesFreed += file.size
	}

	return result
}

// fileInfo holds information about a file.
type fileInfo struct {
	name string
	path string
	size int64
}

// listFiles lists all Parquet files in a directory, oldest first.
func (m *Manager) listFiles(dir string) ([]fileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []fileInfo

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if filepath.Ext(name) != ".parquet" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, fileInfo{
			name: name,
			path: filepath.Join(dir, name),
			size: info.Size(),
		})
	}

	// YYYY-MM-DD names sort chronologically
	sort.Slice(files, func(i, j int) bool {
		return files[i].name < files[j].name
	})

	return files, nil
}

// parseFileDate extracts the day from a <YYYY-MM-DD>.parquet name.
func parseFileDate(name string) (calendar.Date, error) {
	return calendar.ParseDate(strings.TrimSuffix(name, filepath.Ext(name)))
}

func dateOf(t time.Time) calendar.Date {
	return calendar.Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// Stats returns current statistics.
func (m *Manager) Stats() ManagerStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return ManagerStats{
		LastRunTime:  m.stats.LastRunTime,
		FilesDeleted: m.stats.FilesDeleted,
		BytesFreed:   m.stats.BytesFreed,
		FilesSkipped: m.stats.FilesSkipped,
		Errors:       m.stats.Errors,
	}
}

// ManagerStats holds manager statistics.
type ManagerStats struct {
	LastRunTime  time.Time
	FilesDeleted int64
	BytesFreed   int64
	FilesSkipped int64
	Errors       int64
}

// DiskUsage holds disk usage information.
type DiskUsage struct {
	FileCount int
	TotalSize int64
}

// GetDiskUsage returns the size of the export directory.
func (m *Manager) GetDiskUsage() DiskUsage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files, err := m.listFiles(m.config.Export.Dir)
	if err != nil {
		return DiskUsage{}
	}

	var usage DiskUsage
	for _, f := range files {
		usage.FileCount++
		usage.TotalSize += f.size
	}
	return usage
}

// FormatDiskUsage returns a formatted string of disk usage.
func (m *Manager) FormatDiskUsage() string {
	u := m.GetDiskUsage()
	return fmt.Sprintf("%s: %d files, %s", m.config.Export.Dir, u.FileCount, config.FormatBytes(u.TotalSize))
}
