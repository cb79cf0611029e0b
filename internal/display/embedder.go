package display

import (
	"log/slog"
	"time"

	"github.com/droidcast/droidcast/internal/metrics"
	"github.com/droidcast/droidcast/internal/sched"
)

const defaultFitInterval = time.Second

// Embedder reparents the mirror surface into the host viewport and
// periodically re-fits its geometry. All methods must be called from
// the scheduler loop.
type Embedder struct {
	win     WindowSystem
	loop    *sched.Loop
	logger  *slog.Logger
	metrics *metrics.Session

	viewportTitle string
	fitInterval   time.Duration

	parent  WindowID
	surface WindowID
	aspect  float64
	last    Rect
	tick    *sched.Ticker
}

// NewEmbedder creates an embedder that hosts surfaces inside the window
// titled viewportTitle. A zero fitInterval selects the default of one
// second.
func NewEmbedder(win WindowSystem, loop *sched.Loop, viewportTitle string, fitInterval time.Duration, logger *slog.Logger, m *metrics.Session) *Embedder {
	if fitInterval <= 0 {
		fitInterval = defaultFitInterval
	}
	return &Embedder{
		win:           win,
		loop:          loop,
		logger:        logger,
		metrics:       m,
		viewportTitle: viewportTitle,
		fitInterval:   fitInterval,
	}
}

// Embed adopts the surface window: strips its decorations, reparents it
// under the viewport, applies an initial fit and starts the periodic
// re-fit tick. The aspect ratio may be zero when the device resolution
// is unknown.
func (e *Embedder) Embed(surface WindowID, aspect float64) {
	e.Release()

	e.surface = surface
	e.aspect = aspect
	e.last = Rect{}

	if e.viewportTitle != "" {
		if parent, ok := e.win.FindWindow(e.viewportTitle); ok {
			e.parent = parent
		} else {
			e.logger.Warn("Viewport window not found, surface stays top level", "title", e.viewportTitle)
		}
	}

	if err := e.win.StripDecorations(surface); err != nil {
		e.logger.Warn("Unable to strip surface decorations", "error", err)
	}
	if e.parent != 0 {
		if err := e.win.Reparent(surface, e.parent); err != nil {
			e.logger.Warn("Unable to reparent surface", "error", err)
			e.parent = 0
		}
	}
	if err := e.win.RefreshStyle(surface); err != nil {
		e.logger.Debug("Style refresh failed", "error", err)
	}

	e.Fit()
	e.tick = e.loop.Every(e.fitInterval, e.Fit)
}

// Fit recomputes the surface geometry from the current viewport size
// and applies it when it changed. Harmless when nothing is embedded.
func (e *Embedder) Fit() {
	if e.surface == 0 {
		return
	}

	var viewport Rect
	if e.parent != 0 {
		r, ok := e.win.ClientRect(e.parent)
		if !ok {
			return
		}
		viewport = r
	}
	if viewport.Width <= 0 || viewport.Height <= 0 {
		return
	}

	aspect := e.aspect
	if aspect <= 0 {
		// Fall back to the surface's own proportions.
		if r, ok := e.win.ClientRect(e.surface); ok && r.Height > 0 {
			aspect = float64(r.Width) / float64(r.Height)
		}
	}

	target := FitRect(viewport.Width, viewport.Height, aspect)
	if target == e.last {
		return
	}
	if err := e.win.MoveResize(e.surface, target); err != nil {
		e.logger.Debug("Unable to apply surface geometry", "error", err)
		return
	}
	e.last = target
	e.metrics.WindowFit()
}

// Release stops the re-fit tick and forgets the embedded surface. The
// surface window itself is owned by the mirror process and is not
// touched.
func (e *Embedder) Release() {
	if e.tick != nil {
		e.tick.Stop()
		e.tick = nil
	}
	e.surface = 0
	e.parent = 0
	e.aspect = 0
	e.last = Rect{}
}

// Embedded reports whether a surface is currently adopted.
func (e *Embedder) Embedded() bool { return e.surface != 0 }
