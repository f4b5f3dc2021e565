package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLoggerWithOptions(Options{Level: "warn", Output: &buf})
	if err != nil {
		t.Fatalf("NewLoggerWithOptions: %v", err)
	}

	l.Info("hidden %d", 1)
	l.Warn("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden 1") {
		t.Fatalf("info message must be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown 2") {
		t.Fatalf("warn message missing: %q", out)
	}
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLoggerWithOptions(Options{Level: "verbose", Output: &buf})
	if err != nil {
		t.Fatalf("NewLoggerWithOptions: %v", err)
	}
	if got := l.Level(); got != LevelInfo {
		t.Fatalf("level = %s, want %s", got, LevelInfo)
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	l, _ := NewLoggerWithOptions(Options{Level: "debug", Output: &buf})

	l.WithFields(Fields{"chat_id": int64(42)}).Info("delivered")

	if !strings.Contains(buf.String(), "chat_id=42") {
		t.Fatalf("field missing: %q", buf.String())
	}
}

func TestFileOutput(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "bot.log")

	l, err := NewLoggerWithOptions(Options{Path: path, Level: "info", Output: &buf})
	if err != nil {
		t.Fatalf("NewLoggerWithOptions: %v", err)
	}
	l.Info("written to file")
	l.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Fatalf("file content = %q", data)
	}
}

func TestGlobalFatalExits(t *testing.T) {
	var buf bytes.Buffer
	l, _ := NewLoggerWithOptions(Options{Level: "info", Output: &buf})
	code := -1
	l.base.ExitFunc = func(c int) { code = c }

	globalMu.Lock()
	prev := globalLogger
	globalLogger = l
	globalMu.Unlock()
	defer func() {
		globalMu.Lock()
		globalLogger = prev
		globalMu.Unlock()
	}()

	Fatal("missing %s", "BOT_TOKEN")

	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(buf.String(), "missing BOT_TOKEN") {
		t.Fatalf("message missing: %q", buf.String())
	}
}
