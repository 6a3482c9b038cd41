package renderer

import (
	"image/color"
	"testing"
)

func TestTrailPixels(t *testing.T) {
	searching := []float32{0, 10, 0, 50, -1}
	found := []float32{0, 0, 5, 50, 0}
	dst := make([]color.RGBA, len(searching))

	trailPixels(dst, searching, found, 10)

	tests := []struct {
		name string
		i    int
		want color.RGBA
	}{
		{"empty", 0, color.RGBA{}},
		{"searching saturated", 1, color.RGBA{G: 90, B: 255, A: 220}},
		{"found half", 2, color.RGBA{R: 127, G: 70, A: 110}},
		{"both saturated", 3, color.RGBA{R: 255, G: 230, B: 255, A: 220}},
		{"negative ignored", 4, color.RGBA{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if dst[tt.i] != tt.want {
				t.Errorf("pixel %d = %+v, want %+v", tt.i, dst[tt.i], tt.want)
			}
		})
	}
}

func TestTrailPixelsHiddenField(t *testing.T) {
	found := []float32{20, 20}
	dst := make([]color.RGBA, 2)

	trailPixels(dst, nil, found, 10)
	for i, p := range dst {
		if p.B != 0 {
			t.Errorf("pixel %d has searching color with field hidden: %+v", i, p)
		}
		if p.R != 255 {
			t.Errorf("pixel %d missing found color: %+v", i, p)
		}
	}
}
