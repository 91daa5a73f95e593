package obslog

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestJSONConsoleSinkFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(Options{Level: "warn", Format: "json", Console: true, Out: &buf})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.Info("sync_board_applied")
	logger.Warn("query_degraded", zap.String("kind", "carried"))
	closeFn()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry["msg"] != "query_degraded" || entry["kind"] != "carried" || entry["level"] != "warn" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestFileSinkCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "client.log")
	logger, closeFn, err := New(Options{Level: "debug", Format: "legacy", File: path})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.Debug("transport_fallback")
	closeFn()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), "transport_fallback") || !strings.Contains(string(b), " | ") {
		t.Fatalf("unexpected file contents %q", b)
	}
}

func TestNoSinksIsNop(t *testing.T) {
	logger, closeFn, err := New(Options{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer closeFn()
	if logger.Core().Enabled(zap.ErrorLevel) {
		t.Fatalf("expected a no-op logger")
	}
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FILE", "off")
	t.Setenv("LOG_TO_CONSOLE", "true")
	o := OptionsFromEnv()
	if o.Level != "debug" || o.File != "" || !o.Console || o.Format != "legacy" {
		t.Fatalf("unexpected options %+v", o)
	}
}
