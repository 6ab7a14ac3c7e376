package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidresolve/internal/config"
	"vidresolve/internal/logging"
	"vidresolve/internal/services"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestNewFromConfigWritesToConfiguredFile(t *testing.T) {
	cfg := config.Default()
	logPath := filepath.Join(t.TempDir(), "logs", "vidresolve.log")
	cfg.Logging.Output = []string{logPath}
	cfg.Logging.Level = "debug"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Debug("debug message")

	if !strings.Contains(readLog(t, logPath), "debug message") {
		t.Fatal("expected debug message in log file")
	}
}

func TestConsoleLoggerFormatsComponentAndAttrs(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	component := logging.NewComponentLogger(logger, "extractor")
	component.Info("strategy finished", logging.String("strategy", "script"), logging.String("note", "two words"))
	component.Debug("hidden")

	content := readLog(t, logPath)
	if !strings.Contains(content, "INFO extractor: strategy finished") {
		t.Fatalf("unexpected console line: %q", content)
	}
	if !strings.Contains(content, "strategy=script") || !strings.Contains(content, `note="two words"`) {
		t.Fatalf("expected attrs in console line, got %q", content)
	}
	if strings.Contains(content, "hidden") {
		t.Fatal("debug record should be filtered at info level")
	}
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
	if strings.Contains(content, "\x1b[") {
		t.Fatal("file output should not be colorized")
	}
}

func TestJSONLoggerUsesLowercaseLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "strategy failed", "strategy_failed", logging.Error(errors.New("boom")))

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, logPath))), &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if entry["level"] != "warn" {
		t.Fatalf("expected lowercase level, got %v", entry["level"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatal("expected ts key")
	}
	if entry[logging.FieldEventType] != "strategy_failed" {
		t.Fatalf("expected event_type, got %v", entry[logging.FieldEventType])
	}
	if entry[logging.FieldImpact] == nil || entry[logging.FieldErrorHint] == nil {
		t.Fatalf("expected default impact and hint, got %v", entry)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsRequestFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ctx.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRequestID(context.Background(), "req-1")
	ctx = services.WithVideoID(ctx, "dQw4w9WgXcQ")
	logging.WithContext(ctx, logger).Info("resolving")

	content := readLog(t, logPath)
	if !strings.Contains(content, "request_id=req-1") || !strings.Contains(content, "video_id=dQw4w9WgXcQ") {
		t.Fatalf("expected context fields, got %q", content)
	}
}

func TestWithMinLevelDropsLowerRecords(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "quiet.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	quiet := logging.WithMinLevel(logger, "warn")
	quiet.Info("suppressed")
	quiet.Warn("kept")

	content := readLog(t, logPath)
	if strings.Contains(content, "suppressed") || !strings.Contains(content, "kept") {
		t.Fatalf("unexpected output: %q", content)
	}
}
