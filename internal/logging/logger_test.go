package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "embassy.log")

	l, err := New(Options{Mode: "production", Level: "debug", File: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	l.Info("catalog loaded", "resources", 5)
	l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "catalog loaded") {
		t.Errorf("log file missing message, got %q", string(data))
	}
}

func TestWith_CarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).With("session_id", "s-1")

	l.Warn("archival failed", "action", "log_workflow")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["session_id"] != "s-1" || fields["action"] != "log_workflow" {
		t.Errorf("unexpected fields: %v", fields)
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
	l := Nop()
	if OrNop(l) != l {
		t.Error("OrNop should return the given logger")
	}
	// Must not panic.
	Nop().Error("discarded")
}
