package proc

import (
	"io"
	"strings"
	"testing"
	"time"
)

type closableReader struct {
	io.Reader
	closed bool
}

func (c *closableReader) Close() error {
	c.closed = true
	return nil
}

func TestReadLinesPreservesOrder(t *testing.T) {
	src := &closableReader{Reader: strings.NewReader("one\ntwo\nthree\n")}
	q := NewLineQueue()
	r := ReadLines(src, q, testLogger())

	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for reader")
	}

	lines := q.Drain()
	want := []string{"one", "two", "three"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(lines), len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("lines[%d] = %q, want %q", i, lines[i], want[i])
		}
	}
	if !src.closed {
		t.Error("source stream not closed after exhaustion")
	}
}

func TestDrainEmptiesQueue(t *testing.T) {
	q := NewLineQueue()
	q.Push("a")
	q.Push("b")

	if got := len(q.Drain()); got != 2 {
		t.Fatalf("first drain returned %d lines, want 2", got)
	}
	if got := q.Drain(); got != nil {
		t.Errorf("second drain returned %v, want nil", got)
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d after drain", q.Len())
	}
}

func TestQueueKeepsEmptyLines(t *testing.T) {
	src := &closableReader{Reader: strings.NewReader("a\n\nb\n")}
	q := NewLineQueue()
	r := ReadLines(src, q, testLogger())
	<-r.Done()

	if got := len(q.Drain()); got != 3 {
		t.Errorf("got %d lines, want 3 (empty line preserved)", got)
	}
}
