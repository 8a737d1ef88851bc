package ipc

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
)

func TestBufferFeed(t *testing.T) {
	tests := []struct {
		name    string
		chunks  []string
		want    []string
		pending int
	}{
		{"single line", []string{"{\"a\":1}\n"}, []string{`{"a":1}`}, 0},
		{"two lines one chunk", []string{"one\ntwo\n"}, []string{"one", "two"}, 0},
		{"split across chunks", []string{"{\"jsonrpc\":", "\"2.0\"}\n"}, []string{`{"jsonrpc":"2.0"}`}, 0},
		{"partial remainder", []string{"one\ntw"}, []string{"one"}, 2},
		{"crlf", []string{"one\r\n"}, []string{"one"}, 0},
		{"blank lines dropped", []string{"\n  \none\n\n"}, []string{"one"}, 0},
		{"no newline", []string{"abc"}, nil, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Buffer
			var got []string
			for _, c := range tt.chunks {
				for _, l := range b.Feed([]byte(c)) {
					got = append(got, string(l))
				}
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("lines = %q, want %q", got, tt.want)
			}
			if b.Pending() != tt.pending {
				t.Errorf("pending = %d, want %d", b.Pending(), tt.pending)
			}
		})
	}
}

func TestBufferFlush(t *testing.T) {
	var b Buffer
	b.Feed([]byte("one\ntail\r"))
	if got := string(b.Flush()); got != "tail" {
		t.Errorf("Flush = %q, want tail", got)
	}
	if b.Pending() != 0 || b.Flush() != nil {
		t.Error("buffer not empty after Flush")
	}
}

// trickleReader returns one byte per Read.
type trickleReader struct{ r io.Reader }

func (t trickleReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return t.r.Read(p[:1])
}

func TestReadLines(t *testing.T) {
	input := "first\nsecond\nthird"
	var got []string
	err := ReadLines(context.Background(), trickleReader{strings.NewReader(input)}, func(line []byte) error {
		got = append(got, string(line))
		return nil
	})
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if strings.Join(got, ",") != "first,second,third" {
		t.Errorf("lines = %q", got)
	}
}

func TestReadLinesStopsOnCallbackError(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	err := ReadLines(context.Background(), strings.NewReader("a\nb\nc\n"), func([]byte) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Errorf("err = %v, calls = %d", err, calls)
	}
}

func TestReadLinesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ReadLines(ctx, strings.NewReader("a\n"), func([]byte) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteJSON(map[string]any{"id": 1}); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteLine([]byte("plain")); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "{\"id\":1}\nplain\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if err := w.WriteLine([]byte("a\nb")); err == nil {
		t.Error("embedded newline accepted")
	}
}

func TestWriterConcurrent(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	msg := strings.Repeat("x", 4096)
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.WriteLine([]byte(msg))
		}()
	}
	wg.Wait()
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 16 {
		t.Fatalf("got %d lines, want 16", len(lines))
	}
	for i, l := range lines {
		if l != msg {
			t.Errorf("line %d interleaved (len %d)", i, len(l))
		}
	}
}
