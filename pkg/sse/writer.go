package sse

import (
	"fmt"
	"io"
)

// Writer frames payloads as SSE "data:" events on an underlying stream.
// It is typically backed by an io.Pipe connected to the HTTP response body,
// so each write blocks until the bytes reach the client and write errors
// surface when the client disconnects.
type Writer struct {
	dest io.Writer
}

// NewWriter returns a Writer that frames events onto dest.
func NewWriter(dest io.Writer) *Writer {
	return &Writer{dest: dest}
}

// WriteData emits a single data event carrying payload. The payload must
// not contain newlines; completion chunks are single-line JSON.
func (w *Writer) WriteData(payload []byte) error {
	if _, err := fmt.Fprintf(w.dest, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("failed to write sse event: %w", err)
	}
	return nil
}

// WriteDone emits the stream-terminating sentinel event.
func (w *Writer) WriteDone() error {
	if _, err := fmt.Fprintf(w.dest, "data: %s\n\n", DoneData); err != nil {
		return fmt.Errorf("failed to write sse done event: %w", err)
	}
	return nil
}
