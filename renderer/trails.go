// Package renderer draws the colony with raylib. It only reads snapshots.
package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/trail/camera"
)

// TrailRenderer draws both trail fields as one texture stretched over the
// world: searching trails in blue, found trails in orange.
type TrailRenderer struct {
	tex        rl.Texture2D
	texW, texH int
	pixels     []color.RGBA

	initialized bool
}

// NewTrailRenderer creates a trail renderer. The texture is created on the
// first update, after the window exists.
func NewTrailRenderer() *TrailRenderer {
	return &TrailRenderer{}
}

// init creates the texture (must be called after raylib window is created).
func (r *TrailRenderer) init(w, h int) {
	if r.initialized && w == r.texW && h == r.texH {
		return
	}
	if r.initialized {
		rl.UnloadTexture(r.tex)
	}

	r.texW = w
	r.texH = h
	r.pixels = make([]color.RGBA, w*h)

	img := rl.GenImageColor(w, h, rl.Blank)
	r.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(r.tex, rl.FilterBilinear)
	rl.UnloadImage(img)

	r.initialized = true
}

// Update uploads new field values. Concentrations at or above saturation are
// drawn at full intensity.
func (r *TrailRenderer) Update(searching, found []float32, w, h int, saturation float32, showSearching, showFound bool) {
	if len(searching) != w*h || len(found) != w*h {
		return
	}
	r.init(w, h)

	if !showSearching {
		searching = nil
	}
	if !showFound {
		found = nil
	}
	trailPixels(r.pixels, searching, found, saturation)
	rl.UpdateTexture(r.tex, r.pixels)
}

// trailPixels maps field values to colors. A nil field contributes nothing.
func trailPixels(dst []color.RGBA, searching, found []float32, saturation float32) {
	if saturation <= 0 {
		saturation = 1
	}
	for i := range dst {
		var s, f float32
		if searching != nil {
			s = intensity(searching[i], saturation)
		}
		if found != nil {
			f = intensity(found[i], saturation)
		}
		a := max(s, f)
		dst[i] = color.RGBA{
			R: uint8(255 * f),
			G: uint8(140*f + 90*s),
			B: uint8(255 * s),
			A: uint8(220 * a),
		}
	}
}

// intensity normalizes v to [0, 1].
func intensity(v, saturation float32) float32 {
	v /= saturation
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Draw renders the trail texture over the world area seen by cam.
func (r *TrailRenderer) Draw(cam *camera.Camera) {
	if !r.initialized {
		return
	}
	x0, y0 := cam.WorldToScreen(0, 0)
	x1, y1 := cam.WorldToScreen(cam.WorldW, cam.WorldH)

	src := rl.Rectangle{X: 0, Y: 0, Width: float32(r.texW), Height: float32(r.texH)}
	dst := rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
	rl.DrawTexturePro(r.tex, src, dst, rl.Vector2{}, 0, rl.White)
}

// Unload frees GPU resources.
func (r *TrailRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadTexture(r.tex)
	r.initialized = false
}
