package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSize parses a byte size such as "512MB", "2GB" or "1024".
// Units are binary (1KB = 1024 bytes).
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}

	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, fmt.Errorf("size %q has no number", s)
	}

	value, err := strconv.ParseInt(s[:i], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("size %q: %w", s, err)
	}

	switch strings.ToUpper(strings.TrimSpace(s[i:])) {
	case "B", "":
		return value, nil
	case "KB", "K", "KIB":
		return value * 1024, nil
	case "MB", "M", "MIB":
		return value * 1024 * 1024, nil
	case "GB", "G", "GIB":
		return value * 1024 * 1024 * 1024, nil
	case "TB", "T", "TIB":
		return value * 1024 * 1024 * 1024 * 1024, nil
	default:
		return 0, fmt.Errorf("size %q has unknown unit", s)
	}
}

// FormatBytes formats bytes as a human-readable string.
func FormatBytes(b int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
		TB = 1024 * GB
	)

	switch {
	case b >= TB:
		return fmt.Sprintf("%.2f TB", float64(b)/float64(TB))
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
