package executor

import (
	"errors"
	"fmt"
	"io"
)

// teeWriter fans every chunk out to all destinations in order. A destination
// that fails is dropped and its error remembered, so the remaining ones keep
// receiving the stream (a closed terminal must not stop the log file).
type teeWriter struct {
	dests []*teeDest
}

type teeDest struct {
	name string
	w    io.Writer
	err  error
}

func newTeeWriter() *teeWriter { return &teeWriter{} }

// add registers w under name. Nil writers are ignored.
func (t *teeWriter) add(name string, w io.Writer) *teeWriter {
	if w != nil {
		t.dests = append(t.dests, &teeDest{name: name, w: w})
	}
	return t
}

func (t *teeWriter) Write(p []byte) (int, error) {
	for _, d := range t.dests {
		if d.err != nil {
			continue
		}
		n, err := d.w.Write(p)
		if err == nil && n < len(p) {
			err = io.ErrShortWrite
		}
		if err != nil {
			d.err = err
		}
	}
	return len(p), nil
}

// Err reports every destination that failed.
func (t *teeWriter) Err() error {
	var errs []error
	for _, d := range t.dests {
		if d.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.name, d.err))
		}
	}
	return errors.Join(errs...)
}
