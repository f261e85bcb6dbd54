package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestComponentJSON(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, slog.LevelInfo, FormatJSON)

	Component("parser").Warn("malformed line", "line", 7)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if entry["component"] != "parser" || entry["msg"] != "malformed line" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, slog.LevelWarn, FormatText)

	Info("hidden")
	Error("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestIsValidFormat(t *testing.T) {
	for _, f := range []string{FormatAuto, FormatText, FormatJSON} {
		if !IsValidFormat(f) {
			t.Errorf("IsValidFormat(%q) = false", f)
		}
	}
	if IsValidFormat("xml") {
		t.Error("IsValidFormat(xml) = true")
	}
}
