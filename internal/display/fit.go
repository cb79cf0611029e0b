package display

import "math"

// FitRect computes the largest centered rectangle with the given
// width/height aspect ratio that fits inside a viewport. When the
// aspect ratio is unknown (zero or negative) the surface fills the
// viewport.
func FitRect(viewportWidth, viewportHeight int, aspect float64) Rect {
	if viewportWidth <= 0 || viewportHeight <= 0 {
		return Rect{}
	}
	if aspect <= 0 {
		return Rect{Width: viewportWidth, Height: viewportHeight}
	}

	available := float64(viewportWidth) / float64(viewportHeight)
	var targetWidth, targetHeight int
	if available > aspect {
		// Viewport is wider than the surface, height constrains.
		targetHeight = viewportHeight
		targetWidth = int(math.Round(float64(targetHeight) * aspect))
	} else {
		targetWidth = viewportWidth
		targetHeight = int(math.Round(float64(targetWidth) / aspect))
	}
	if targetWidth < 1 {
		targetWidth = 1
	}
	if targetHeight < 1 {
		targetHeight = 1
	}

	return Rect{
		X:      (viewportWidth - targetWidth) / 2,
		Y:      (viewportHeight - targetHeight) / 2,
		Width:  targetWidth,
		Height: targetHeight,
	}
}
