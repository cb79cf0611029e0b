package proc

import (
	"bufio"
	"io"
	"log/slog"
	"sync"
)

// LineQueue is a thread-safe unbounded queue of output lines. Readers push,
// the event loop drains. Lines come out in arrival order.
type LineQueue struct {
	mu    sync.Mutex
	lines []string
}

// NewLineQueue creates an empty queue.
func NewLineQueue() *LineQueue {
	return &LineQueue{}
}

// Push appends a line.
func (q *LineQueue) Push(line string) {
	q.mu.Lock()
	q.lines = append(q.lines, line)
	q.mu.Unlock()
}

// Drain removes and returns all currently queued lines.
func (q *LineQueue) Drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.lines) == 0 {
		return nil
	}
	out := q.lines
	q.lines = nil
	return out
}

// Len returns the number of queued lines.
func (q *LineQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.lines)
}

// Reader drains a process output stream line by line into a queue from a
// background goroutine. It is a pure producer: it never touches supervisor
// state. The stream is closed when the source is exhausted.
type Reader struct {
	done chan struct{}
}

// ReadLines starts a background reader over r pushing into q.
func ReadLines(r io.ReadCloser, q *LineQueue, logger *slog.Logger) *Reader {
	reader := &Reader{done: make(chan struct{})}
	go func() {
		defer close(reader.done)
		defer r.Close()

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			q.Push(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			logger.Debug("Output stream closed with error", "error", err)
		}
	}()
	return reader
}

// Done is closed when the stream has been fully drained.
func (r *Reader) Done() <-chan struct{} { return r.done }
