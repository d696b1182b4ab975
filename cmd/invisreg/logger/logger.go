// Package logger holds the process-wide slog logger of the invisreg CLI.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// L is the global logger instance. It's initialized to discard all output by default.
// Call Init() to enable logging.
var L *slog.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

const (
	logPrefix     = "invisreg-"
	logSuffix     = ".log"
	retentionDays = 30
)

// Options configures the logger initialization.
type Options struct {
	Verbose bool       // Debug records as text on Stderr
	LogDir  string     // Directory for daily JSON log files; empty disables the file
	Level   slog.Level // Minimum level for the log file. Default: LevelInfo
	Stderr  io.Writer  // Default: os.Stderr
}

// closer releases the current log file, if any.
var closer io.Closer

// Init configures logging. Call before any log calls. With neither Verbose
// nor LogDir set all output is discarded.
func Init(opts Options) error {
	Close()

	var handlers []slog.Handler
	if opts.Verbose {
		w := opts.Stderr
		if w == nil {
			w = os.Stderr
		}
		handlers = append(handlers, slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	if opts.LogDir != "" {
		if err := os.MkdirAll(opts.LogDir, 0o755); err != nil {
			return err
		}

		// Clean up old logs (best-effort, ignore errors)
		cleanOldLogs(opts.LogDir, time.Now())

		filename := filepath.Join(opts.LogDir, logPrefix+time.Now().Format("2006-01-02")+logSuffix)
		f, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		closer = f

		level := opts.Level
		if level == 0 {
			level = slog.LevelInfo
		}
		if opts.Verbose {
			level = slog.LevelDebug
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	}

	switch len(handlers) {
	case 0:
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
	case 1:
		L = slog.New(handlers[0])
	default:
		L = slog.New(fanout(handlers))
	}
	return nil
}

// Close flushes and closes the log file opened by Init.
func Close() {
	if closer != nil {
		closer.Close()
		closer = nil
	}
	L = slog.New(slog.NewTextHandler(io.Discard, nil))
}

// cleanOldLogs removes log files older than retentionDays.
func cleanOldLogs(logDir string, now time.Time) {
	cutoff := now.AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, logPrefix) || !strings.HasSuffix(name, logSuffix) {
			continue
		}

		// Parse date from filename: invisreg-2024-01-05.log
		dateStr := strings.TrimPrefix(strings.TrimSuffix(name, logSuffix), logPrefix)
		logDate, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}

		if logDate.Before(cutoff) {
			os.Remove(filepath.Join(logDir, name))
		}
	}
}
