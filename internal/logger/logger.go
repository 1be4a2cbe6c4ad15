package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const maxErrorEntries = 100

// Logger writes the launcher's own diagnostics as JSON lines to a per-process
// file in the temp directory. Evaluator output never goes here except for
// truncated stderr mirrors at debug level.
type Logger struct {
	path string
	file *os.File

	mu       sync.Mutex
	zl       zerolog.Logger
	errors   []string
	closeErr error
	closed   sync.Once
}

// NewLogger creates $TMPDIR/leaderboard-launcher-<pid>.log.
func NewLogger() (*Logger, error) {
	return NewLoggerWithSuffix("")
}

// NewLoggerWithSuffix creates $TMPDIR/leaderboard-launcher-<pid>-<suffix>.log.
// The suffix is sanitized to a file-name-safe form.
func NewLoggerWithSuffix(suffix string) (*Logger, error) {
	name := fmt.Sprintf("%s-%d", ToolName, os.Getpid())
	if s := SanitizeLogSuffix(suffix); s != "" {
		name += "-" + s
	}
	path := filepath.Join(os.TempDir(), name+".log")

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	l := &Logger{path: path, file: f}
	l.zl = newZerolog(f)
	return l, nil
}

func newZerolog(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.SyncWriter(w)).
		Level(zerolog.DebugLevel).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger()
}

// Path returns the log file location.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// SetRunID tags every subsequent entry with run_id.
func (l *Logger) SetRunID(id string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.zl = l.zl.With().Str("run_id", id).Logger()
	l.mu.Unlock()
}

func (l *Logger) Debug(msg string) { l.write(zerolog.DebugLevel, msg) }

func (l *Logger) Info(msg string) { l.write(zerolog.InfoLevel, msg) }

func (l *Logger) Warn(msg string) { l.write(zerolog.WarnLevel, msg) }

func (l *Logger) Error(msg string) { l.write(zerolog.ErrorLevel, msg) }

func (l *Logger) write(level zerolog.Level, msg string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.zl.WithLevel(level).Msg(msg)
	if level >= zerolog.WarnLevel {
		entry := fmt.Sprintf("[%s] %s %s", time.Now().Format("15:04:05"), strings.ToUpper(level.String()), msg)
		l.errors = append(l.errors, entry)
		if len(l.errors) > maxErrorEntries {
			l.errors = l.errors[len(l.errors)-maxErrorEntries:]
		}
	}
}

// ExtractRecentErrors returns up to n of the most recent warn/error entries,
// oldest first.
func (l *Logger) ExtractRecentErrors(n int) []string {
	if l == nil || n <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.errors) == 0 {
		return nil
	}
	start := len(l.errors) - n
	if start < 0 {
		start = 0
	}
	return append([]string(nil), l.errors[start:]...)
}

// Flush commits buffered data to disk.
func (l *Logger) Flush() {
	if l == nil || l.file == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.file.Sync()
}

// Close flushes and closes the file. The file itself is kept for debugging.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.closed.Do(func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		_ = l.file.Sync()
		l.closeErr = l.file.Close()
	})
	return l.closeErr
}

// RemoveLogFile deletes the log file. Close should be called first.
func (l *Logger) RemoveLogFile() error {
	if l == nil || l.path == "" {
		return nil
	}
	if err := removeLogFileFn(l.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SanitizeLogSuffix maps raw to [A-Za-z0-9._-], collapsing runs of other
// characters into a single "-" and trimming separators at either end.
func SanitizeLogSuffix(raw string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-._")
}
