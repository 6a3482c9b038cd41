package renderer

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/trail/camera"
	"github.com/pthm-cable/trail/components"
	"github.com/pthm-cable/trail/game"
	"github.com/pthm-cable/trail/telemetry"
	"github.com/pthm-cable/trail/ui"
)

const (
	panelWidth   = 230
	agentSize    = 4
	maxStepsView = 20
)

var (
	colorBackground = rl.Color{R: 18, G: 16, B: 14, A: 255}
	colorSearching  = rl.Color{R: 200, G: 220, B: 255, A: 255}
	colorReturning  = rl.Color{R: 255, G: 170, B: 60, A: 255}
	colorFood       = rl.Color{R: 90, G: 200, B: 90, A: 255}
	colorNest       = rl.Color{R: 160, G: 110, B: 70, A: 255}
	colorMemory     = rl.Color{R: 255, G: 255, B: 255, A: 40}
)

// Viewer draws snapshots and handles interactive controls.
type Viewer struct {
	cam    *camera.Camera
	trails *TrailRenderer
	hud    *ui.HUD
	perf   *ui.PerfPanel
	panel  *ui.Renderer

	Paused         bool
	StepsPerUpdate int

	showSearching bool
	showFound     bool
	showMemory    bool
	saturation    float32
	foodPeak      int

	screenW, screenH float32
}

// NewViewer creates a viewer for a world of the given size.
// Must be called after the raylib window is created.
func NewViewer(screenW, screenH int, worldW, worldH float64, stepsPerUpdate int) *Viewer {
	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}
	return &Viewer{
		cam:            camera.New(float32(screenW), float32(screenH), float32(worldW), float32(worldH)),
		trails:         NewTrailRenderer(),
		hud:            ui.NewHUD(),
		perf:           ui.NewPerfPanel(),
		panel:          ui.NewRenderer(),
		StepsPerUpdate: stepsPerUpdate,
		showSearching:  true,
		showFound:      true,
		saturation:     50,
		screenW:        float32(screenW),
		screenH:        float32(screenH),
	}
}

// HandleInput processes keyboard and mouse input.
func (v *Viewer) HandleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		v.Paused = !v.Paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && v.StepsPerUpdate > 1 {
		v.StepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && v.StepsPerUpdate < maxStepsView {
		v.StepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyS) {
		v.showSearching = !v.showSearching
	}
	if rl.IsKeyPressed(rl.KeyF) {
		v.showFound = !v.showFound
	}
	if rl.IsKeyPressed(rl.KeyM) {
		v.showMemory = !v.showMemory
	}

	v.handleCameraInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	v.screenW, v.screenH = w, h
	v.cam.Resize(w, h)
}

// handleCameraInput processes camera pan/zoom controls.
func (v *Viewer) handleCameraInput() {
	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0) / v.cam.Zoom

	if rl.IsKeyDown(rl.KeyRight) {
		v.cam.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.cam.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.cam.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.cam.Pan(0, -panSpeed)
	}

	// Zoom toward the cursor
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		mouse := rl.GetMousePosition()
		v.cam.ZoomAt(mouse.X, mouse.Y, 1+wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.cam.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.cam.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		v.cam.Reset()
	}
}

// Draw renders one frame from snap.
func (v *Viewer) Draw(snap *game.Snapshot, perf telemetry.PerfStats) {
	searching, found := snap.Fields.Searching, snap.Fields.Found
	v.trails.Update(searching.Values, found.Values, searching.Cols, searching.Rows, v.saturation, v.showSearching, v.showFound)

	rl.BeginDrawing()
	rl.ClearBackground(colorBackground)

	v.trails.Draw(v.cam)
	v.drawWorldBorder()
	v.drawNest(snap.Nest)
	v.drawFood(snap.Food)
	v.drawAgents(snap.Agents)
	v.drawPanel(snap, perf)

	rl.EndDrawing()
}

func (v *Viewer) drawWorldBorder() {
	x0, y0 := v.cam.WorldToScreen(0, 0)
	x1, y1 := v.cam.WorldToScreen(v.cam.WorldW, v.cam.WorldH)
	rl.DrawRectangleLinesEx(rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, 1, rl.DarkGray)
}

func (v *Viewer) drawNest(n components.Nest) {
	sx, sy := v.cam.WorldToScreen(float32(n.X), float32(n.Y))
	r := max(float32(n.Radius)*v.cam.Zoom, 2)
	rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, r, rl.Fade(colorNest, 0.35))
	rl.DrawCircleLines(int32(sx), int32(sy), r, colorNest)
}

func (v *Viewer) drawFood(food []game.FoodView) {
	for _, f := range food {
		wx, wy := float32(f.Position.X), float32(f.Position.Y)
		if !v.cam.IsVisible(wx, wy, float32(f.Radius)) {
			continue
		}
		sx, sy := v.cam.WorldToScreen(wx, wy)
		r := max(float32(f.Radius)*v.cam.Zoom, 2)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, r, rl.Fade(colorFood, 0.6))
		if v.cam.Zoom >= 1 {
			label := fmt.Sprintf("%d", f.Quantity)
			rl.DrawText(label, int32(sx)-rl.MeasureText(label, 10)/2, int32(sy)-5, 10, rl.White)
		}
	}
}

func (v *Viewer) drawAgents(agents []game.AgentView) {
	size := max(agentSize*v.cam.Zoom, 2)
	for _, a := range agents {
		wx, wy := float32(a.Position.X), float32(a.Position.Y)
		if !v.cam.IsVisible(wx, wy, agentSize) {
			continue
		}

		if v.showMemory {
			for i := 1; i < len(a.Trail); i++ {
				p0, p1 := a.Trail[i-1], a.Trail[i]
				x0, y0 := v.cam.WorldToScreen(float32(p0.X), float32(p0.Y))
				x1, y1 := v.cam.WorldToScreen(float32(p1.X), float32(p1.Y))
				rl.DrawLineV(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1, Y: y1}, colorMemory)
			}
		}

		c := colorSearching
		if a.State == components.Returning {
			c = colorReturning
		}

		// Triangle pointing along the heading
		sx, sy := v.cam.WorldToScreen(wx, wy)
		cos, sin := float32(math.Cos(a.Heading)), float32(math.Sin(a.Heading))
		tip := rl.Vector2{X: sx + cos*size, Y: sy + sin*size}
		left := rl.Vector2{X: sx - cos*size*0.6 + sin*size*0.5, Y: sy - sin*size*0.6 - cos*size*0.5}
		right := rl.Vector2{X: sx - cos*size*0.6 - sin*size*0.5, Y: sy - sin*size*0.6 + cos*size*0.5}
		rl.DrawTriangle(tip, left, right, c)
	}
}

// drawPanel renders the status panel and its controls.
func (v *Viewer) drawPanel(snap *game.Snapshot, perf telemetry.PerfStats) {
	x := v.screenW - panelWidth
	v.panel.DrawPanel(int32(x)-10, 0, panelWidth+10, int32(v.screenH))

	data := ui.HUDData{
		Tick:        snap.Tick,
		Agents:      len(snap.Agents),
		Delivered:   snap.Delivered,
		FoodSources: len(snap.Food),
		Speed:       v.StepsPerUpdate,
		FPS:         int32(perf.FPS),
		Paused:      v.Paused,
	}
	for _, a := range snap.Agents {
		if a.State == components.Returning {
			data.Returning++
			data.Carried += a.Carried
		}
	}
	for _, f := range snap.Food {
		data.FoodRemaining += f.Quantity
	}
	v.foodPeak = max(v.foodPeak, data.FoodRemaining)
	data.FoodInitial = v.foodPeak

	y := float32(v.hud.Draw(int32(x), 10, panelWidth-10, data))
	y = float32(v.perf.Draw(int32(x), int32(y)+6, perf)) + 10

	rl.DrawText("Trail saturation", int32(x), int32(y), 12, rl.Gray)
	y += 16
	v.saturation = gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: panelWidth - 60, Height: 16}, "", fmt.Sprintf("%.0f", v.saturation), v.saturation, 1, 200)
	y += 28

	rl.DrawText("Steps per frame", int32(x), int32(y), 12, rl.Gray)
	y += 16
	v.StepsPerUpdate = int(gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: panelWidth - 60, Height: 16}, "", fmt.Sprintf("%d", v.StepsPerUpdate), float32(v.StepsPerUpdate), 1, maxStepsView))
	y += 28

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 105, Height: 24}, toggleText(v.Paused, "Resume", "Pause")) {
		v.Paused = !v.Paused
	}
	if gui.Button(rl.Rectangle{X: x + 115, Y: y, Width: 105, Height: 24}, "Reset view") {
		v.cam.Reset()
	}
	y += 32
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 105, Height: 24}, toggleText(v.showSearching, "Hide search", "Show search")) {
		v.showSearching = !v.showSearching
	}
	if gui.Button(rl.Rectangle{X: x + 115, Y: y, Width: 105, Height: 24}, toggleText(v.showFound, "Hide found", "Show found")) {
		v.showFound = !v.showFound
	}
	y += 32
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 220, Height: 24}, toggleText(v.showMemory, "Hide memory", "Show memory")) {
		v.showMemory = !v.showMemory
	}

	v.hud.DrawControls(int32(v.screenH), "SPACE pause  ,/. speed  S/F/M layers  HOME view")
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}

// Unload frees GPU resources.
func (v *Viewer) Unload() {
	v.trails.Unload()
}
