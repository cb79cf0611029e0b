// Package display embeds the mirror surface window inside a host
// viewport window and keeps its geometry aspect-correct.
package display

// WindowID identifies a native window.
type WindowID uint64

// Rect is a window geometry in pixels, origin at the top-left of the
// parent's client area.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// WindowSystem abstracts the native windowing operations the embedder
// needs. Implementations must tolerate windows disappearing at any
// moment; the mirror process owns the surface window's lifetime.
type WindowSystem interface {
	// FindWindow locates a top-level window by exact title.
	FindWindow(title string) (WindowID, bool)

	// StripDecorations removes the window's border and title bar.
	StripDecorations(id WindowID) error

	// Reparent moves child into parent's client area.
	Reparent(child, parent WindowID) error

	// RefreshStyle forces the window system to re-apply the window's
	// style without moving, resizing or reordering it.
	RefreshStyle(id WindowID) error

	// MoveResize places the window at the given geometry.
	MoveResize(id WindowID, r Rect) error

	// ClientRect reports the window's current client-area geometry.
	ClientRect(id WindowID) (Rect, bool)
}
