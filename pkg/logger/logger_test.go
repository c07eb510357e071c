package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := GetLevel()
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(prev)
	})
	return &buf
}

func TestInfoCF_WritesComponentAndFields(t *testing.T) {
	buf := captureOutput(t)
	SetLevel(INFO)

	InfoCF("bridge", "Forwarded message", map[string]any{"chat_id": "G1"})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["component"] != "bridge" {
		t.Errorf("component: got %v, want %q", entry["component"], "bridge")
	}
	if entry["chat_id"] != "G1" {
		t.Errorf("chat_id: got %v, want %q", entry["chat_id"], "G1")
	}
	if entry["message"] != "Forwarded message" {
		t.Errorf("message: got %v", entry["message"])
	}
	if entry["level"] != "info" {
		t.Errorf("level: got %v, want info", entry["level"])
	}
}

func TestSetLevel_FiltersBelowThreshold(t *testing.T) {
	buf := captureOutput(t)
	SetLevel(WARN)

	DebugC("bridge", "hidden")
	InfoC("bridge", "hidden")
	WarnC("bridge", "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected debug/info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("expected warn entry, got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   DEBUG,
		"INFO":    INFO,
		"warning": WARN,
		"error":   ERROR,
		"":        INFO,
		"bogus":   INFO,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
