// Package output renders the combined document and the optional run manifest.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// BannerWidth is the number of separator characters in a banner line.
const BannerWidth = 80

var banner = strings.Repeat("=", BannerWidth)

// Writer appends banner-delimited file sections to a single stream.
type Writer struct {
	w      *bufio.Writer
	closer io.Closer
	files  int
}

// NewWriter wraps w. Close flushes but only closes w when it is an io.Closer
// handed over by Create.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Create truncates or creates the file at path and returns a Writer over it.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output %s: %w", path, err)
	}
	w := NewWriter(f)
	w.closer = f
	return w, nil
}

// Append writes one file section: two newlines, a banner, the FILE line,
// another banner, a blank line, then content verbatim.
func (w *Writer) Append(path, content string) error {
	if _, err := fmt.Fprintf(w.w, "\n\n%s\nFILE: %s\n%s\n\n", banner, path, banner); err != nil {
		return fmt.Errorf("write header for %s: %w", path, err)
	}
	if _, err := w.w.WriteString(content); err != nil {
		return fmt.Errorf("write content for %s: %w", path, err)
	}
	w.files++
	return nil
}

// Files returns the number of sections appended so far.
func (w *Writer) Files() int { return w.files }

// Close flushes buffered output and closes the underlying file, if owned.
func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		if w.closer != nil {
			_ = w.closer.Close() //nolint:errcheck // flush error takes precedence
		}
		return fmt.Errorf("flush output: %w", err)
	}
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}
