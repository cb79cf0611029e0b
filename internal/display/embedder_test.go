package display

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/droidcast/droidcast/internal/sched"
)

// fakeWindowSystem records operations and serves canned geometry.
type fakeWindowSystem struct {
	mu         sync.Mutex
	windows    map[string]WindowID
	clientRect map[WindowID]Rect
	moves      []Rect
	reparented [][2]WindowID
	stripped   []WindowID
	moveErr    error
}

func newFakeWindowSystem() *fakeWindowSystem {
	return &fakeWindowSystem{
		windows:    map[string]WindowID{},
		clientRect: map[WindowID]Rect{},
	}
}

func (f *fakeWindowSystem) FindWindow(title string) (WindowID, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.windows[title]
	return id, ok
}

func (f *fakeWindowSystem) StripDecorations(id WindowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stripped = append(f.stripped, id)
	return nil
}

func (f *fakeWindowSystem) Reparent(child, parent WindowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reparented = append(f.reparented, [2]WindowID{child, parent})
	return nil
}

func (f *fakeWindowSystem) RefreshStyle(WindowID) error { return nil }

func (f *fakeWindowSystem) MoveResize(id WindowID, r Rect) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.moveErr != nil {
		return f.moveErr
	}
	f.moves = append(f.moves, r)
	return nil
}

func (f *fakeWindowSystem) ClientRect(id WindowID) (Rect, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.clientRect[id]
	return r, ok
}

func (f *fakeWindowSystem) setClientRect(id WindowID, r Rect) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clientRect[id] = r
}

func (f *fakeWindowSystem) moveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.moves)
}

func (f *fakeWindowSystem) lastMove() (Rect, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.moves) == 0 {
		return Rect{}, false
	}
	return f.moves[len(f.moves)-1], true
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startLoop(t *testing.T) *sched.Loop {
	t.Helper()
	l := sched.NewLoop(testLogger())
	l.Start()
	t.Cleanup(l.Stop)
	return l
}

func TestEmbedReparentsAndFits(t *testing.T) {
	loop := startLoop(t)
	win := newFakeWindowSystem()
	win.windows["Viewport"] = 100
	win.setClientRect(100, Rect{Width: 800, Height: 800})

	e := NewEmbedder(win, loop, "Viewport", time.Hour, testLogger(), nil)
	loop.Run(func() { e.Embed(42, 0.45) })
	defer loop.Run(e.Release)

	win.mu.Lock()
	if len(win.reparented) != 1 || win.reparented[0] != [2]WindowID{42, 100} {
		t.Errorf("reparented = %v, want [[42 100]]", win.reparented)
	}
	if len(win.stripped) != 1 || win.stripped[0] != 42 {
		t.Errorf("stripped = %v, want [42]", win.stripped)
	}
	win.mu.Unlock()

	got, ok := win.lastMove()
	want := Rect{X: 220, Y: 0, Width: 360, Height: 800}
	if !ok || got != want {
		t.Errorf("surface geometry = %+v, want %+v", got, want)
	}
	if !e.Embedded() {
		t.Error("Embedded() = false after Embed")
	}
}

func TestFitSkipsUnchangedGeometry(t *testing.T) {
	loop := startLoop(t)
	win := newFakeWindowSystem()
	win.windows["Viewport"] = 100
	win.setClientRect(100, Rect{Width: 800, Height: 800})

	e := NewEmbedder(win, loop, "Viewport", time.Hour, testLogger(), nil)
	loop.Run(func() { e.Embed(42, 0.45) })
	defer loop.Run(e.Release)

	before := win.moveCount()
	loop.Run(e.Fit)
	loop.Run(e.Fit)
	if got := win.moveCount(); got != before {
		t.Errorf("move count grew from %d to %d on unchanged viewport", before, got)
	}

	// Viewport resize triggers exactly one new placement.
	win.setClientRect(100, Rect{Width: 400, Height: 800})
	loop.Run(e.Fit)
	if got := win.moveCount(); got != before+1 {
		t.Errorf("move count = %d after resize, want %d", got, before+1)
	}
	got, _ := win.lastMove()
	want := Rect{X: 20, Y: 0, Width: 360, Height: 800}
	if got != want {
		t.Errorf("geometry after resize = %+v, want %+v", got, want)
	}
}

func TestFitRetriesAfterMoveError(t *testing.T) {
	loop := startLoop(t)
	win := newFakeWindowSystem()
	win.windows["Viewport"] = 100
	win.setClientRect(100, Rect{Width: 800, Height: 800})
	win.moveErr = errors.New("window vanished")

	e := NewEmbedder(win, loop, "Viewport", time.Hour, testLogger(), nil)
	loop.Run(func() { e.Embed(42, 0.45) })
	defer loop.Run(e.Release)

	if got := win.moveCount(); got != 0 {
		t.Fatalf("move count = %d despite error, want 0", got)
	}

	win.mu.Lock()
	win.moveErr = nil
	win.mu.Unlock()
	loop.Run(e.Fit)
	if got := win.moveCount(); got != 1 {
		t.Errorf("move count = %d after error cleared, want 1", got)
	}
}

func TestReleaseStopsRefit(t *testing.T) {
	loop := startLoop(t)
	win := newFakeWindowSystem()
	win.windows["Viewport"] = 100
	win.setClientRect(100, Rect{Width: 800, Height: 800})

	e := NewEmbedder(win, loop, "Viewport", 5*time.Millisecond, testLogger(), nil)
	loop.Run(func() { e.Embed(42, 0.45) })
	loop.Run(e.Release)

	if e.Embedded() {
		t.Error("Embedded() = true after Release")
	}

	count := win.moveCount()
	win.setClientRect(100, Rect{Width: 500, Height: 500})
	time.Sleep(30 * time.Millisecond)
	if got := win.moveCount(); got != count {
		t.Errorf("surface moved after Release: %d -> %d", count, got)
	}
}

func TestEmbedWithoutViewportUsesSurfaceAspect(t *testing.T) {
	loop := startLoop(t)
	win := newFakeWindowSystem()
	// No viewport window registered; surface stays top level and the
	// embedder has no viewport geometry, so no move happens.
	e := NewEmbedder(win, loop, "Viewport", time.Hour, testLogger(), nil)
	loop.Run(func() { e.Embed(42, 0.45) })
	defer loop.Run(e.Release)

	if got := win.moveCount(); got != 0 {
		t.Errorf("move count = %d without viewport, want 0", got)
	}
}
