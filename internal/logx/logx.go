// Package logx builds the process logger. The terminal belongs to the UI,
// so logs always go to a file or an explicit writer.
package logx

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/pslog"
)

// ParseLevel maps a config level name onto a pslog level. Unknown names
// fall back to info and report false.
func ParseLevel(name string) (pslog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return pslog.TraceLevel, true
	case "debug":
		return pslog.DebugLevel, true
	case "info", "":
		return pslog.InfoLevel, true
	case "warn", "warning":
		return pslog.WarnLevel, true
	case "error":
		return pslog.ErrorLevel, true
	}
	return pslog.InfoLevel, false
}

// New returns a structured logger writing to w. Environment settings
// understood by pslog take precedence over level.
func New(w io.Writer, level string) pslog.Logger {
	lvl, _ := ParseLevel(level)
	return pslog.LoggerFromEnv(
		pslog.WithEnvWriter(w),
		pslog.WithEnvOptions(pslog.Options{
			Mode:     pslog.ModeStructured,
			NoColor:  true,
			MinLevel: lvl,
		}),
	)
}

// OpenFile opens (appending) the log file at path and returns a logger on
// it. The caller closes the returned file.
func OpenFile(path, level string) (pslog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("creating log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return New(f, level), f, nil
}

// WithComponent annotates the context logger with a component name.
func WithComponent(ctx context.Context, component string) pslog.Logger {
	log := pslog.Ctx(ctx)
	if component != "" {
		log = log.With("component", component)
	}
	return log
}
