package logging

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLogFilePath(t *testing.T) {
	start := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	got := LogFilePath("logs", "tacmap", start)
	want := filepath.Join("logs", "tacmap.20260314_150926.log")
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"Warn":    slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"garbage": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q): expected %v, got %v", in, want, got)
		}
	}
}

func TestSlogManager_WritesToFile(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", nil)

	m.Logger().Info("marker placed", "plan", "alpha")

	out := buf.String()
	if !strings.Contains(out, "marker placed") {
		t.Errorf("expected log output to contain message, got %q", out)
	}
	if !strings.Contains(out, "plan=alpha") {
		t.Errorf("expected log output to contain attribute, got %q", out)
	}
}

func TestSlogManager_LevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "warn", nil)

	m.Logger().Debug("should not appear")
	if strings.Contains(buf.String(), "should not appear") {
		t.Error("debug record leaked through warn-level handler")
	}
}

func TestSlogManager_LoggerBeforeSetup(t *testing.T) {
	m := NewSlogManager()
	if m.Logger() == nil {
		t.Fatal("expected default logger before Setup")
	}
}

func TestSlogManager_FlushWithoutProvider(t *testing.T) {
	m := NewSlogManager()
	if err := m.Flush(context.Background()); err != nil {
		t.Errorf("expected nil flushing without provider, got %v", err)
	}
}

type recordingHandler struct {
	records []slog.Record
	level   slog.Level
}

func (h *recordingHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func TestFanout_FansOut(t *testing.T) {
	a := &recordingHandler{}
	b := &recordingHandler{}
	logger := slog.New(Fanout(a, b))

	logger.Info("hello")

	if len(a.records) != 1 || len(b.records) != 1 {
		t.Errorf("expected both handlers to receive the record, got %d and %d", len(a.records), len(b.records))
	}
}

func TestFanout_SkipsDisabledHandlers(t *testing.T) {
	quiet := &recordingHandler{level: slog.LevelError}
	loud := &recordingHandler{level: slog.LevelDebug}
	logger := slog.New(Fanout(quiet, loud))

	logger.Info("hello")

	if len(quiet.records) != 0 {
		t.Errorf("expected error-level handler to skip info record, got %d", len(quiet.records))
	}
	if len(loud.records) != 1 {
		t.Errorf("expected debug-level handler to receive record, got %d", len(loud.records))
	}
}

func TestFanout_FiltersNilHandlers(t *testing.T) {
	h := &recordingHandler{}
	logger := slog.New(Fanout(nil, h, nil))

	logger.Info("hello")

	if len(h.records) != 1 {
		t.Errorf("expected surviving handler to receive record, got %d", len(h.records))
	}
}
