package executor

import (
	"bytes"

	ilogger "leaderboard-launcher/internal/logger"
	utils "leaderboard-launcher/internal/utils"
)

const (
	mirrorLineLimit = 1000
	stderrTailLimit = 4096
)

// logWriter mirrors complete lines into the diagnostic log at debug level,
// capping each line at maxLen bytes.
type logWriter struct {
	prefix  string
	maxLen  int
	buf     bytes.Buffer
	dropped bool
}

func newLogWriter(prefix string, maxLen int) *logWriter {
	if maxLen <= 0 {
		maxLen = mirrorLineLimit
	}
	return &logWriter{prefix: prefix, maxLen: maxLen}
}

func (lw *logWriter) Write(p []byte) (int, error) {
	if lw == nil {
		return len(p), nil
	}
	total := len(p)
	for len(p) > 0 {
		idx := bytes.IndexByte(p, '\n')
		if idx < 0 {
			lw.writeLimited(p)
			break
		}
		lw.writeLimited(p[:idx])
		lw.emit()
		p = p[idx+1:]
	}
	return total, nil
}

// Flush emits a trailing partial line, if any.
func (lw *logWriter) Flush() {
	if lw == nil || lw.buf.Len() == 0 {
		return
	}
	lw.emit()
}

func (lw *logWriter) emit() {
	line := utils.SanitizeOutput(lw.buf.String())
	if lw.dropped {
		line += "..."
	}
	lw.buf.Reset()
	lw.dropped = false
	if line == "" {
		return
	}
	ilogger.LogDebug(lw.prefix + line)
}

func (lw *logWriter) writeLimited(p []byte) {
	if len(p) == 0 {
		return
	}
	remaining := lw.maxLen - lw.buf.Len()
	if remaining <= 0 {
		lw.dropped = true
		return
	}
	if len(p) > remaining {
		p = p[:remaining]
		lw.dropped = true
	}
	lw.buf.Write(p)
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	limit int
	data  []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	if b.limit <= 0 {
		return len(p), nil
	}

	if len(p) >= b.limit {
		b.data = append(b.data[:0], p[len(p)-b.limit:]...)
		return len(p), nil
	}

	total := len(b.data) + len(p)
	if total <= b.limit {
		b.data = append(b.data, p...)
		return len(p), nil
	}

	overflow := total - b.limit
	b.data = append(b.data[overflow:], p...)
	return len(p), nil
}

func (b *tailBuffer) String() string {
	return string(b.data)
}
