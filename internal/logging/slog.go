// Package logging builds the process-wide slog pipeline: console and
// file always, plus optional OTel and Graylog sinks.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// SlogManager owns the configured logger and the OTel provider it may
// need to flush on shutdown.
type SlogManager struct {
	logger      *slog.Logger
	logProvider *sdklog.LoggerProvider
}

// NewSlogManager creates an unconfigured manager; call Setup before use.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel maps a config string onto a slog.Level, defaulting to info.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// rfc3339Times rewrites record timestamps to UTC RFC3339 so file and
// console output sort lexically.
func rfc3339Times(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
		}
	}
	return a
}

// Setup wires the sinks: stdout, the session log file, the OTel bridge
// when a provider is given, and any extra handlers (GELF). Nil sinks are
// skipped.
func (m *SlogManager) Setup(file io.Writer, level string, provider *sdklog.LoggerProvider, extra ...slog.Handler) {
	m.logProvider = provider

	opts := &slog.HandlerOptions{
		Level:       parseLevel(level),
		ReplaceAttr: rfc3339Times,
	}

	sinks := []slog.Handler{slog.NewTextHandler(os.Stdout, opts)}
	if file != nil {
		sinks = append(sinks, slog.NewTextHandler(file, opts))
	}
	if provider != nil {
		sinks = append(sinks, otelslog.NewHandler("tacmap",
			otelslog.WithLoggerProvider(provider)))
	}
	sinks = append(sinks, extra...)

	m.logger = slog.New(Fanout(sinks...))
	m.logger.Info("Logging initialized", "level", level)
}

// Logger returns the configured logger, or slog.Default before Setup.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Flush pushes pending OTel log records out.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider == nil {
		return nil
	}
	return m.logProvider.ForceFlush(ctx)
}
