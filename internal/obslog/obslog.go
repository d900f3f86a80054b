// SPDX-License-Identifier: BSD-3-Clause

// Package obslog builds the single structured logger shared by both
// executables. It reproduces the upstream BMC framework's zerolog-backed
// slog bridge (pkg/log) without the OpenTelemetry log exporter: there is no
// collector in this system for an otel handler to talk to, so the fan-out
// that pairs a zerolog handler with an otel handler collapses to the
// zerolog handler alone.
package obslog

import (
	"io"
	"log/slog"
	"os"

	"github.com/rs/zerolog"
	slogzerolog "github.com/samber/slog-zerolog/v2"
)

// Option configures logger construction.
type Option func(*options)

type options struct {
	level  slog.Level
	writer io.Writer
	pretty bool
}

// WithLevel sets the minimum slog level that reaches the sink.
func WithLevel(level slog.Level) Option {
	return func(o *options) { o.level = level }
}

// WithWriter overrides the destination writer (tests redirect this away
// from stderr).
func WithWriter(w io.Writer) Option {
	return func(o *options) { o.writer = w }
}

// WithPretty forces the console (human-readable, colorized) writer instead
// of line-delimited JSON. Defaults to on when stderr is a terminal.
func WithPretty(pretty bool) Option {
	return func(o *options) { o.pretty = pretty }
}

// New builds a *slog.Logger backed by zerolog, matching the field names
// and timestamp handling of the upstream framework's default logger.
func New(opts ...Option) *slog.Logger {
	o := &options{
		level:  slog.LevelInfo,
		writer: os.Stderr,
		pretty: isTerminal(os.Stderr),
	}
	for _, opt := range opts {
		opt(o)
	}

	var w io.Writer = o.writer
	if o.pretty {
		w = zerolog.ConsoleWriter{Out: o.writer, TimeFormat: "15:04:05"}
	}

	zl := zerolog.New(w).With().Timestamp().Logger()

	handler := slogzerolog.Option{
		Level:  o.level,
		Logger: &zl,
	}.NewZerologHandler()

	return slog.New(handler)
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
