package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"webdl/pkg/config"
)

func TestNewRejectsInvalidLevel(t *testing.T) {
	_, err := New(&config.LoggingConfig{Level: "shouting"})
	if err == nil {
		t.Error("Expected error for invalid log level")
	}
}

func TestNewAcceptsKnownLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "warning", "error", "fatal", "disabled", ""} {
		if _, err := New(&config.LoggingConfig{Level: level}); err != nil {
			t.Errorf("New with level %q returned error: %v", level, err)
		}
	}
}

func TestFileOutput(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "logs", "webdl.log")

	log, err := New(&config.LoggingConfig{Level: "info", File: logFile})
	if err != nil {
		t.Fatalf("Failed to create file logger: %v", err)
	}

	log.InfoWithFields("element saved", map[string]interface{}{
		"filename": "pic.png",
		"size":     1234,
	})

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	content := string(data)
	for _, want := range []string{"element saved", "pic.png", "1234", `"app":"webdl"`} {
		if !strings.Contains(content, want) {
			t.Errorf("Log file missing %q, content: %s", want, content)
		}
	}
}

func TestWithFieldAndError(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "webdl.log")

	log, err := New(&config.LoggingConfig{Level: "debug", File: logFile})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	log.WithField("url", "https://example.com/a.png").Warn("element skipped")

	data, _ := os.ReadFile(logFile)
	if !strings.Contains(string(data), "https://example.com/a.png") {
		t.Errorf("Expected field in output, got: %s", data)
	}

	// WithError(nil) must be a no-op passthrough
	if log.WithError(nil) != log {
		t.Error("WithError(nil) should return the same logger")
	}
}

func TestGetLoggerReturnsDefault(t *testing.T) {
	globalLogger = nil
	if GetLogger() == nil {
		t.Error("GetLogger should build a default logger")
	}
}
