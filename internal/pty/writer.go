package pty

import (
	"fmt"
	"io"

	"github.com/pleimann/pushbutton/internal/action"
)

// Writer turns key presses into terminal bytes on an io.Writer, usually a
// Manager
type Writer struct {
	w io.Writer
}

var _ action.KeyWriter = (*Writer)(nil)

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteKey writes a single key press
func (w *Writer) WriteKey(key action.KeyPress) error {
	data := key.ToBytes()
	if data == nil {
		return fmt.Errorf("key %s has no terminal encoding", key)
	}

	if _, err := w.w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// WriteString writes text as typed
func (w *Writer) WriteString(s string) error {
	_, err := io.WriteString(w.w, s)
	return err
}
