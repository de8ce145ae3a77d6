package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vnkey/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		hasError bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"invalid", LevelInfo, true},
		{"", LevelInfo, true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			level, err := ParseLevel(test.input)
			if test.hasError && err == nil {
				t.Error("expected error, got nil")
			}
			if !test.hasError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !test.hasError && level != test.expected {
				t.Errorf("expected %v, got %v", test.expected, level)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	for _, name := range []string{"debug", "info", "warn", "error"} {
		level, err := ParseLevel(name)
		if err != nil {
			t.Fatal(err)
		}
		if got := LevelString(level); got != name {
			t.Errorf("expected %q, got %q", name, got)
		}
	}
}

func newBufferLogger(t *testing.T, typed bool) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Format = FormatJSON
	cfg.Writer = &buf
	cfg.TypedText = typed
	l, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return l, &buf
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestTypedTextRedacted(t *testing.T) {
	l, buf := newBufferLogger(t, false)
	l.Info("word restored", "word", "thesis", "raw", "theis", "step", "english-dictionary")

	entry := decode(t, buf)
	if entry["word"] != Redacted || entry["raw"] != Redacted {
		t.Errorf("typed text leaked: %v", entry)
	}
	if entry["step"] != "english-dictionary" {
		t.Errorf("expected step to be kept, got %v", entry["step"])
	}
	if entry["component"] != "vnkey" {
		t.Errorf("expected component vnkey, got %v", entry["component"])
	}
}

func TestTypedTextInClear(t *testing.T) {
	l, buf := newBufferLogger(t, true)
	if !l.TypedText() {
		t.Fatal("TypedText should be on")
	}
	l.Info("word restored", "word", "thesis")

	if entry := decode(t, buf); entry["word"] != "thesis" {
		t.Errorf("expected word in clear, got %v", entry["word"])
	}
}

func TestWithSession(t *testing.T) {
	l, buf := newBufferLogger(t, false)
	id := NewSessionID()
	if len(id) != 36 {
		t.Fatalf("unexpected session id %q", id)
	}

	ctx := ContextWithSessionID(context.Background(), id)
	l.WithContext(ctx).WithComponent("engine").Info("started")

	entry := decode(t, buf)
	if entry["session"] != id {
		t.Errorf("expected session %s, got %v", id, entry["session"])
	}
	if entry["component"] != "engine" {
		t.Errorf("expected component engine, got %v", entry["component"])
	}
}

func TestSessionIDFromContext(t *testing.T) {
	if got := SessionIDFromContext(nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
	if got := SessionIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Level = LevelWarn
	cfg.Writer = &buf
	l, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	l.Info("hidden")
	l.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "vnkey.log")
	cfg := DefaultConfig()
	cfg.Output = path

	l, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	l.Info("dictionary loaded", "words", 42)
	if err := l.Sync(); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "words=42") {
		t.Errorf("log file missing entry: %q", data)
	}
}

func TestFromConfig(t *testing.T) {
	cfg, err := FromConfig(config.LoggingConfig{Level: "debug", Format: "json", Output: "stdout", TypedText: true})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Level != LevelDebug || cfg.Format != FormatJSON || cfg.Output != "stdout" || !cfg.TypedText {
		t.Errorf("unexpected config: %+v", cfg)
	}

	if _, err := FromConfig(config.LoggingConfig{Level: "loud"}); err == nil {
		t.Error("expected error for bad level")
	}
}

func TestDefaultLogger(t *testing.T) {
	l, _ := newBufferLogger(t, false)
	SetDefault(l)
	if Default() != l {
		t.Error("SetDefault did not replace the default logger")
	}
}
