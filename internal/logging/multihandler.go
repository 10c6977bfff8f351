package logging

import (
	"context"
	"errors"
	"log/slog"
)

// fanout duplicates every record to a set of sinks. One sink failing
// never blocks the others; errors are joined and reported once.
type fanout struct {
	sinks []slog.Handler
}

// Fanout builds a handler writing to every non-nil sink.
func Fanout(sinks ...slog.Handler) slog.Handler {
	f := &fanout{sinks: make([]slog.Handler, 0, len(sinks))}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

func (f *fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, s := range f.sinks {
		if s.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, s := range f.sinks {
		if !s.Enabled(ctx, r.Level) {
			continue
		}
		if err := s.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &fanout{sinks: make([]slog.Handler, len(f.sinks))}
	for i, s := range f.sinks {
		next.sinks[i] = s.WithAttrs(attrs)
	}
	return next
}

func (f *fanout) WithGroup(name string) slog.Handler {
	if name == "" {
		return f
	}
	next := &fanout{sinks: make([]slog.Handler, len(f.sinks))}
	for i, s := range f.sinks {
		next.sinks[i] = s.WithGroup(name)
	}
	return next
}
