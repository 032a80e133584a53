package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_JSONIncludesServiceAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf, Service: "bookings"})

	log.Info("room booked", "room_id", "R1")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry[SERVICE] != "bookings" {
		t.Errorf("expected service attr, got %v", entry[SERVICE])
	}
	if entry["room_id"] != "R1" {
		t.Errorf("expected room_id attr, got %v", entry["room_id"])
	}
	if entry["msg"] != "room booked" {
		t.Errorf("unexpected msg %v", entry["msg"])
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf, Level: WARN, Format: TEXT})

	log.Info("dropped")
	log.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info line should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestNew_ZapBackend(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf, Backend: BackendZap, Service: "bookings"})

	log.Warn("notification failed", "booking_id", "b1")

	out := buf.String()
	if !strings.Contains(out, "notification failed") || !strings.Contains(out, "b1") {
		t.Errorf("zap backend did not write the entry: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		DEBUG:     slog.LevelDebug,
		INFO:      slog.LevelInfo,
		WARN:      slog.LevelWarn,
		ERROR:     slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
