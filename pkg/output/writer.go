// Package output appends reformatted pages to the run's text file.
package output

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrClosed is returned by WriteEntry after Close.
var ErrClosed = errors.New("output writer is closed")

// Writer holds one append-mode handle for the whole run. The file is opened
// on the first entry, so a run that writes nothing leaves no file behind.
// Every entry is flushed as soon as it is written.
type Writer struct {
	path   string
	open   func(path string) (io.WriteCloser, error)
	dst    io.WriteCloser
	buf    *bufio.Writer
	closed bool
}

// Open prepares dir/filename for appending, creating dir if needed. An
// empty dir means the working directory. Existing content is kept.
func Open(dir, filename string) (*Writer, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &Writer{path: filepath.Join(dir, filename), open: openAppend}, nil
}

func openAppend(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

// Path returns the file being written.
func (w *Writer) Path() string {
	return w.path
}

// WriteEntry appends one delimited block and returns the bytes written. A
// failed entry does not poison later ones.
func (w *Writer) WriteEntry(pageURL, markdown string) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}
	if w.dst == nil {
		f, err := w.open(w.path)
		if err != nil {
			return 0, fmt.Errorf("open %s: %w", w.path, err)
		}
		w.dst = f
		w.buf = bufio.NewWriter(f)
	}

	n, err := fmt.Fprintf(w.buf, "\n\n--- Content from: %s ---\n\n%s\n\n", pageURL, markdown)
	if err == nil {
		err = w.buf.Flush()
	}
	if err != nil {
		// bufio.Writer keeps its first error forever.
		w.buf.Reset(w.dst)
		return n, fmt.Errorf("write entry for %s: %w", pageURL, err)
	}
	return n, nil
}

// Close flushes and releases the file. Safe to call more than once.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.dst == nil {
		return nil
	}
	flushErr := w.buf.Flush()
	closeErr := w.dst.Close()
	if flushErr != nil {
		return fmt.Errorf("flush %s: %w", w.path, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", w.path, closeErr)
	}
	return nil
}
