package infra

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewLoggerProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("production", &buf)
	logger.Debug().Msg("hidden")
	logger.Info().Str("tool", "compression").Msg("visible")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "visible" {
		t.Fatalf("message = %v, want visible", entry["message"])
	}
	if entry["service"] != "lockday" {
		t.Fatalf("service = %v, want lockday", entry["service"])
	}
	if entry["tool"] != "compression" {
		t.Fatalf("tool = %v, want compression", entry["tool"])
	}
}

func TestNewLoggerDevelopmentEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("development", &buf)
	logger.Debug().Msg("debug line")
	if !bytes.Contains(buf.Bytes(), []byte("debug line")) {
		t.Fatalf("expected debug output, got %q", buf.String())
	}
}
