package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestModuleAttribute(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithHandler(slog.NewJSONHandler(&buf, nil))

	l.Module("batches").Info("batch finalized", "sequence", 7)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["module"] != "batches" {
		t.Fatalf("expected module attribute, got %v", entry["module"])
	}
	if entry["msg"] != "batch finalized" || entry["sequence"] != float64(7) {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithHandler(slog.NewJSONHandler(&buf, nil)).With("chain", "l2seq")

	l.Warn("paused")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["chain"] != "l2seq" || entry["level"] != "WARN" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestSetDefault(t *testing.T) {
	old := Default()
	defer SetDefault(old)

	var buf bytes.Buffer
	SetDefault(NewWithHandler(slog.NewJSONHandler(&buf, nil)))
	Info("hello")

	if buf.Len() == 0 {
		t.Fatal("default logger did not write")
	}
	SetDefault(nil)
	if Default() == nil {
		t.Fatal("SetDefault(nil) must keep the previous logger")
	}
}
