// Package logger provides slog-based structured logging helpers shared by all
// packages, plus a file logger for HTTP request lines.
package logger

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/fx"
)

// Module provides the application logger and the HTTP request logger
var Module = fx.Module("logger",
	fx.Provide(
		NewLogger,
		NewHTTPLogger,
	),
)

// NewLogger creates the application logger. The level is taken from the
// LOG_LEVEL environment variable (debug, info, warn, error; default info).
// JSON output is used when GO_ENV=production, text otherwise.
func NewLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if os.Getenv("GO_ENV") == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}

// Scope returns a "scope" attribute used to tag log lines with the emitting
// component (e.g. "chat.svc", "zep.client").
func Scope(scope string) slog.Attr {
	return slog.String("scope", scope)
}

// Error returns an "error" attribute carrying the error value.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

// HTTPLogger appends one line per HTTP request to a log file. When no file is
// configured (HTTP_LOG_FILE unset) it is a no-op.
type HTTPLogger struct {
	mu   sync.Mutex
	file *os.File
}

// NewHTTPLogger opens the HTTP request log file named by HTTP_LOG_FILE.
// A missing or unopenable file disables request file logging; the request
// logger middleware still logs through slog.
func NewHTTPLogger(log *slog.Logger) *HTTPLogger {
	path := os.Getenv("HTTP_LOG_FILE")
	if path == "" {
		return &HTTPLogger{}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Warn("cannot create HTTP log directory", Error(err))
			return &HTTPLogger{}
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Warn("cannot open HTTP log file", slog.String("path", path), Error(err))
		return &HTTPLogger{}
	}
	return &HTTPLogger{file: f}
}

// LogRequest writes one request line in a combined-log-like format.
func (l *HTTPLogger) LogRequest(ip, method, uri string, status int, latency time.Duration, userAgent, requestID string) {
	if l == nil || l.file == nil {
		return
	}
	line := fmt.Sprintf("%s %s \"%s %s\" %d %s %q %s\n",
		time.Now().UTC().Format(time.RFC3339), ip, method, uri, status, latency, userAgent, requestID)

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.file.WriteString(line)
}

// Close closes the underlying log file, if any.
func (l *HTTPLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
