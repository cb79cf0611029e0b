package display

import "testing"

func TestFitRect(t *testing.T) {
	tests := []struct {
		name           string
		width, height  int
		aspect         float64
		want           Rect
	}{
		{
			name:   "portrait device in square viewport",
			width:  800,
			height: 800,
			aspect: 0.45,
			want:   Rect{X: 220, Y: 0, Width: 360, Height: 800},
		},
		{
			name:   "wide viewport is height constrained",
			width:  1920,
			height: 1080,
			aspect: 0.45,
			want:   Rect{X: 717, Y: 0, Width: 486, Height: 1080},
		},
		{
			name:   "narrow viewport is width constrained",
			width:  300,
			height: 1000,
			aspect: 0.45,
			want:   Rect{X: 0, Y: 166, Width: 300, Height: 667},
		},
		{
			name:   "exact aspect fills viewport",
			width:  450,
			height: 1000,
			aspect: 0.45,
			want:   Rect{X: 0, Y: 0, Width: 450, Height: 1000},
		},
		{
			name:   "unknown aspect fills viewport",
			width:  640,
			height: 480,
			aspect: 0,
			want:   Rect{X: 0, Y: 0, Width: 640, Height: 480},
		},
		{
			name:   "degenerate viewport",
			width:  0,
			height: 480,
			aspect: 0.45,
			want:   Rect{},
		},
		{
			name:   "tiny viewport clamps to one pixel",
			width:  1,
			height: 1000,
			aspect: 0.0001,
			want:   Rect{X: 0, Y: 0, Width: 1, Height: 1000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FitRect(tt.width, tt.height, tt.aspect); got != tt.want {
				t.Errorf("FitRect(%d, %d, %v) = %+v, want %+v",
					tt.width, tt.height, tt.aspect, got, tt.want)
			}
		})
	}
}
