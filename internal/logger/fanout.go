package logger

import (
	"context"
	"errors"
	"log/slog"
)

// Fanout duplicates log records to multiple slog handlers, so one logger can
// write to stdout and a file at different levels simultaneously.
type Fanout struct {
	handlers []slog.Handler
}

func NewFanout(handlers ...slog.Handler) *Fanout {
	return &Fanout{handlers: handlers}
}

func (f *Fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *Fanout) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range f.handlers {
		if h.Enabled(ctx, record.Level) {
			if err := h.Handle(ctx, record.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return NewFanout(handlers...)
}

func (f *Fanout) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return NewFanout(handlers...)
}
