// Package log builds the configured slog.Logger for the worlder CLI.
//
// Without a log file, records below Error go to stdout and Error and above
// go to stderr, so generated-code listings and diagnostics stay separable
// when the tool runs under go:generate.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// LevelTrace sits below Debug for per-file scanner output.
const LevelTrace slog.Level = -8

// ParseLevel maps a --log.level flag value to a slog level. Unknown values
// fall back to Info.
func ParseLevel(s string) slog.Level {
	switch s {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// fanout replicates records to every wrapped handler.
type fanout struct{ hs []slog.Handler }

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range f.hs {
		_ = h.Handle(ctx, r)
	}
	return nil
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(f.hs))
	for i, h := range f.hs {
		out[i] = h.WithAttrs(attrs)
	}
	return fanout{hs: out}
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(f.hs))
	for i, h := range f.hs {
		out[i] = h.WithGroup(name)
	}
	return fanout{hs: out}
}

// levelRange forwards only records the predicate accepts.
type levelRange struct {
	pass func(slog.Level) bool
	h    slog.Handler
}

func (l levelRange) Enabled(ctx context.Context, level slog.Level) bool {
	if !l.pass(level) {
		return false
	}
	return l.h.Enabled(ctx, level)
}

func (l levelRange) Handle(ctx context.Context, r slog.Record) error {
	if !l.pass(r.Level) {
		return nil
	}
	return l.h.Handle(ctx, r)
}

func (l levelRange) WithAttrs(attrs []slog.Attr) slog.Handler {
	return levelRange{pass: l.pass, h: l.h.WithAttrs(attrs)}
}

func (l levelRange) WithGroup(name string) slog.Handler {
	return levelRange{pass: l.pass, h: l.h.WithGroup(name)}
}

// Setup builds the process logger. The returned close function flushes and
// closes the log file, if one was opened.
func Setup(level, file string) (*slog.Logger, func(), error) {
	min := ParseLevel(level)
	var handlers []slog.Handler

	if file == "" {
		stdout := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: min})
		handlers = append(handlers, levelRange{pass: func(l slog.Level) bool { return l < slog.LevelError }, h: stdout})

		stderr := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})
		handlers = append(handlers, levelRange{pass: func(l slog.Level) bool { return l >= slog.LevelError }, h: stderr})
	} else {
		handlers = append(handlers, slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: min}))
	}

	var closers []io.Closer
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, f)
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: min}))
	}

	logger := slog.New(fanout{hs: handlers})
	closeAll := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}
	return logger, closeAll, nil
}
