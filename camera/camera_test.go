package camera

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.01
}

func TestNewFitsWorld(t *testing.T) {
	cam := New(1200, 800, 2400, 800)

	if cam.X != 1200 || cam.Y != 400 {
		t.Errorf("expected camera at (1200, 400), got (%f, %f)", cam.X, cam.Y)
	}
	// Width is the limiting axis: 1200/2400
	if !near(cam.Zoom, 0.5) {
		t.Errorf("expected zoom 0.5, got %f", cam.Zoom)
	}

	minX, minY, maxX, maxY := cam.VisibleWorldBounds()
	if !near(minX, 0) || !near(maxX, 2400) {
		t.Errorf("world width not fully visible: [%f, %f]", minX, maxX)
	}
	if minY > 0 || maxY < 800 {
		t.Errorf("world height not fully visible: [%f, %f]", minY, maxY)
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(1280, 720, 1280, 720)

	// Camera center should map to screen center
	sx, sy := cam.WorldToScreen(640, 360)
	if !near(sx, 640) || !near(sy, 360) {
		t.Errorf("expected screen center (640, 360), got (%f, %f)", sx, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(1.7)
	cam.Pan(-200, 50)

	testCases := []struct{ sx, sy float32 }{
		{640, 360},  // center
		{100, 100},  // top-left
		{1200, 600}, // near bottom-right
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if !near(sx, tc.sx) || !near(sy, tc.sy) {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestPanStaysInWorld(t *testing.T) {
	cam := New(800, 600, 800, 600)

	cam.Pan(-10000, 10000)
	if cam.X != 0 || cam.Y != 600 {
		t.Errorf("expected camera clamped to (0, 600), got (%f, %f)", cam.X, cam.Y)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(800, 600, 800, 600)

	cam.ZoomBy(100)
	if cam.Zoom != cam.MaxZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MaxZoom, cam.Zoom)
	}
	cam.ZoomBy(0.0001)
	if cam.Zoom != cam.MinZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MinZoom, cam.Zoom)
	}
}

func TestZoomAtKeepsPointFixed(t *testing.T) {
	cam := New(800, 600, 800, 600)

	wx, wy := cam.ScreenToWorld(300, 200)
	cam.ZoomAt(300, 200, 2)
	sx, sy := cam.WorldToScreen(wx, wy)
	if !near(sx, 300) || !near(sy, 200) {
		t.Errorf("point under cursor moved to (%f, %f)", sx, sy)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(800, 600, 1600, 1200)
	cam.SetZoom(2) // visible area is 400x300 around (800, 600)

	tests := []struct {
		name   string
		x, y   float32
		radius float32
		want   bool
	}{
		{"center", 800, 600, 0, true},
		{"far corner", 0, 0, 0, false},
		{"just outside", 1001, 600, 0, false},
		{"radius overlaps", 1001, 600, 5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cam.IsVisible(tt.x, tt.y, tt.radius); got != tt.want {
				t.Errorf("IsVisible(%v, %v, %v) = %v, want %v", tt.x, tt.y, tt.radius, got, tt.want)
			}
		})
	}
}

func TestResize(t *testing.T) {
	cam := New(800, 600, 800, 600)
	cam.SetZoom(cam.MinZoom)

	cam.Resize(1600, 1200)
	if !near(cam.MinZoom, 1) {
		t.Errorf("expected min zoom 1 after resize, got %f", cam.MinZoom)
	}
	if cam.Zoom < cam.MinZoom {
		t.Errorf("zoom %f below new minimum %f", cam.Zoom, cam.MinZoom)
	}
}
