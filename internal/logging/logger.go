// Package logging configures zerolog for the service and CLI and exposes
// request scoped loggers carrying chi's request id.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Setup builds the root logger. format is "json" or "console"; anything else
// falls back to console output.
func Setup(level, format string) zerolog.Logger {
	return New(os.Stdout, level, format)
}

// New is Setup with an explicit writer.
func New(w io.Writer, level, format string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	out := w
	if strings.ToLower(format) != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(out).Level(parseLevel(level)).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return logger
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// FromContext returns the logger attached to ctx, enriched with the chi
// request id when one is present.
func FromContext(ctx context.Context) *zerolog.Logger {
	logger := zerolog.Ctx(ctx)
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		l := logger.With().Str("request_id", reqID).Logger()
		return &l
	}
	return logger
}
