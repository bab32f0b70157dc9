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
		name  string
		level string
		want  slog.Level
	}{
		{name: "debug", level: "debug", want: slog.LevelDebug},
		{name: "大文字", level: "WARN", want: slog.LevelWarn},
		{name: "warning", level: "warning", want: slog.LevelWarn},
		{name: "error", level: " error ", want: slog.LevelError},
		{name: "空文字はinfo", level: "", want: slog.LevelInfo},
		{name: "不明な値はinfo", level: "verbose", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.level); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", FormatJSON)

	logger.Debug("hidden")
	logger.Info("analysis completed", "cached", true)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var record map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if record["msg"] != "analysis completed" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["cached"] != true {
		t.Errorf("cached = %v", record["cached"])
	}
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "debug", "text")

	logger.Debug("cache lookup", "key", "idea")

	out := buf.String()
	if !strings.Contains(out, "level=DEBUG") || !strings.Contains(out, "key=idea") {
		t.Errorf("unexpected text output: %q", out)
	}
}
