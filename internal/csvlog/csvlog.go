// Package csvlog appends probe results to a CSV file.
package csvlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"pingwatch/internal/models"
)

// Header is written once when the file is created.
var Header = []string{"timestamp", "target", "rtt_ms", "status"}

// TimestampFormat is ISO-8601 with microseconds.
const TimestampFormat = "2006-01-02T15:04:05.000000"

// Logger appends one row per result. It is safe for concurrent use.
type Logger struct {
	path string
	log  *slog.Logger
	mu   sync.Mutex
}

// Open prepares path for appending, writing the header if the file does not
// exist yet.
func Open(path string, logger *slog.Logger) (*Logger, error) {
	if logger == nil {
		logger = slog.Default()
	}

	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := writeRows(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, Header); err != nil && !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("create %s: %w", path, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	return &Logger{path: path, log: logger}, nil
}

// Path returns the log file.
func (l *Logger) Path() string { return l.path }

// Log appends result.
func (l *Logger) Log(result models.ProbeResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := writeRows(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, Row(result)); err != nil {
		return fmt.Errorf("append to %s: %w", l.path, err)
	}
	return nil
}

// OnResult implements models.Observer. Write failures are logged.
func (l *Logger) OnResult(result models.ProbeResult) {
	if err := l.Log(result); err != nil {
		l.log.Error("failed to write probe log", "target", result.Target, "error", err)
	}
}

// Row renders result as a CSV record. A missing RTT is an empty field.
func Row(result models.ProbeResult) []string {
	rtt := ""
	if v, ok := result.RTTValue(); ok {
		rtt = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return []string{
		result.Timestamp.Format(TimestampFormat),
		result.Target,
		rtt,
		string(result.Status),
	}
}

// ParseTime reads a timestamp written by Row.
func ParseTime(s string) (time.Time, error) {
	return time.ParseInLocation(TimestampFormat, s, time.Local)
}

func writeRows(path string, flag int, rows ...[]string) error {
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
