// Package logging configures the process logger and carries request-scoped
// log entries through a context.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

var base = logrus.New()

func init() {
	base.SetOutput(os.Stderr)
}

// Setup sets the level ("debug", "info", "warn", "error") and format
// ("text" or "json") of the process logger.
func Setup(level, format string) error {
	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	base.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", "text":
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		base.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("invalid log format %q (want text or json)", format)
	}
	return nil
}

// SetOutput redirects the process logger.
func SetOutput(w io.Writer) {
	base.SetOutput(w)
}

// Logger returns the process logger.
func Logger() *logrus.Logger {
	return base
}

// IntoContext returns a copy of ctx carrying entry.
func IntoContext(ctx context.Context, entry logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, ctxKey{}, entry)
}

// WithContext returns the entry stored in ctx, or the process logger.
func WithContext(ctx context.Context) logrus.FieldLogger {
	if ctx != nil {
		if e, ok := ctx.Value(ctxKey{}).(logrus.FieldLogger); ok {
			return e
		}
	}
	return base
}
