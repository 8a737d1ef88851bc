// Package ipc frames newline-delimited JSON messages on a byte stream.
package ipc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

// readChunk is the size of each read from the input stream.
const readChunk = 32 * 1024

// Buffer accumulates input and splits it into lines. The trailing
// incomplete segment stays buffered until a later Feed completes it.
type Buffer struct {
	pending []byte
}

// Feed appends p and returns every line it completes, without the
// terminator. A trailing \r is stripped. Blank lines are dropped.
func (b *Buffer) Feed(p []byte) [][]byte {
	b.pending = append(b.pending, p...)
	var lines [][]byte
	for {
		i := bytes.IndexByte(b.pending, '\n')
		if i < 0 {
			break
		}
		line := bytes.TrimRight(b.pending[:i], "\r")
		if len(bytes.TrimSpace(line)) > 0 {
			lines = append(lines, bytes.Clone(line))
		}
		b.pending = b.pending[i+1:]
	}
	if len(b.pending) == 0 {
		b.pending = nil
	}
	return lines
}

// Pending returns the number of buffered bytes not yet terminated.
func (b *Buffer) Pending() int { return len(b.pending) }

// Flush returns the buffered remainder as a final line, if non-blank,
// and empties the buffer.
func (b *Buffer) Flush() []byte {
	line := bytes.TrimRight(b.pending, "\r")
	b.pending = nil
	if len(bytes.TrimSpace(line)) == 0 {
		return nil
	}
	return bytes.Clone(line)
}

// ReadLines reads r until EOF and calls fn for each complete line in
// arrival order. An unterminated final segment is delivered at EOF.
// It returns nil at EOF, ctx.Err() if ctx ends between reads, or the
// first error from r or fn.
func ReadLines(ctx context.Context, r io.Reader, fn func(line []byte) error) error {
	var buf Buffer
	chunk := make([]byte, readChunk)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(chunk)
		if n > 0 {
			for _, line := range buf.Feed(chunk[:n]) {
				if ferr := fn(line); ferr != nil {
					return ferr
				}
			}
		}
		if errors.Is(err, io.EOF) {
			if line := buf.Flush(); line != nil {
				return fn(line)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
	}
}

// Writer emits newline-terminated messages. It is safe for concurrent
// use; each message is written whole.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteLine writes p followed by a single \n. p must not contain a
// newline.
func (lw *Writer) WriteLine(p []byte) error {
	if bytes.IndexByte(p, '\n') >= 0 {
		return errors.New("write line: message contains a newline")
	}
	msg := make([]byte, 0, len(p)+1)
	msg = append(append(msg, p...), '\n')
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if _, err := lw.w.Write(msg); err != nil {
		return fmt.Errorf("write line: %w", err)
	}
	return nil
}

// WriteJSON encodes v compactly and writes it as one line.
func (lw *Writer) WriteJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return lw.WriteLine(data)
}
