package logger

import "sync/atomic"

var loggerPtr atomic.Pointer[Logger]

// SetLogger installs l as the process-wide logger used by the Log* helpers.
func SetLogger(l *Logger) { loggerPtr.Store(l) }

// CloseLogger detaches and closes the process-wide logger.
func CloseLogger() error {
	l := loggerPtr.Swap(nil)
	if l == nil {
		return nil
	}
	return l.Close()
}

func ActiveLogger() *Logger { return loggerPtr.Load() }

// The Log* helpers are no-ops until SetLogger is called.

func LogDebug(msg string) { ActiveLogger().Debug(msg) }

func LogInfo(msg string) { ActiveLogger().Info(msg) }

func LogWarn(msg string) { ActiveLogger().Warn(msg) }

func LogError(msg string) { ActiveLogger().Error(msg) }
