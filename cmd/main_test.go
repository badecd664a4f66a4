package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLoggerWritesJSONBeforeLevelIsSet(t *testing.T) {
	var buf bytes.Buffer
	log, _ := newLogger(&buf)

	log.Error("Failed to load config", "error", "bad env")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON record, got %q: %v", buf.String(), err)
	}

	if record["msg"] != "Failed to load config" || record["error"] != "bad env" {
		t.Fatalf("unexpected record: %v", record)
	}
}

func TestNewLoggerLevelCanBeChanged(t *testing.T) {
	var buf bytes.Buffer
	log, level := newLogger(&buf)

	log.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug to be dropped at default level, got %q", buf.String())
	}

	level.Set(slog.LevelDebug)
	log.Debug("shown")

	if !strings.Contains(buf.String(), `"msg":"shown"`) {
		t.Fatalf("expected debug record after level change, got %q", buf.String())
	}
}
