package sched

import (
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSubmitRunsSerially(t *testing.T) {
	l := NewLoop(testLogger())
	l.Start()
	defer l.Stop()

	var order []int
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		i := i
		l.Submit(func() { order = append(order, i) })
	}
	l.Submit(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for tasks")
	}

	for i, v := range order {
		if v != i {
			t.Fatalf("tasks ran out of order: %v", order)
		}
	}
}

func TestRunBlocksUntilExecuted(t *testing.T) {
	l := NewLoop(testLogger())
	l.Start()
	defer l.Stop()

	ran := false
	if !l.Run(func() { ran = true }) {
		t.Fatal("Run returned false on live loop")
	}
	if !ran {
		t.Error("Run returned before task executed")
	}
}

func TestSubmitAfterStop(t *testing.T) {
	l := NewLoop(testLogger())
	l.Start()
	l.Stop()

	if l.Submit(func() {}) {
		t.Error("Submit succeeded after Stop")
	}
}

func TestEveryFiresAndStops(t *testing.T) {
	l := NewLoop(testLogger())
	l.Start()
	defer l.Stop()

	var count atomic.Int32
	ticker := l.Every(10*time.Millisecond, func() { count.Add(1) })

	deadline := time.After(time.Second)
	for count.Load() < 3 {
		select {
		case <-deadline:
			t.Fatal("ticker never fired")
		case <-time.After(5 * time.Millisecond):
		}
	}

	// Stop from the loop itself, like supervisors do during teardown.
	l.Run(func() { ticker.Stop() })
	after := count.Load()
	time.Sleep(50 * time.Millisecond)
	if got := count.Load(); got != after {
		t.Errorf("ticker fired %d times after Stop", got-after)
	}
	if !ticker.Stopped() {
		t.Error("Stopped() = false after Stop")
	}
}

func TestTickerStopIdempotent(t *testing.T) {
	l := NewLoop(testLogger())
	l.Start()
	defer l.Stop()

	ticker := l.Every(time.Hour, func() {})
	ticker.Stop()
	ticker.Stop()
}
