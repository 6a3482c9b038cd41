package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/trail/telemetry"
)

// HUDData holds all the data needed to render the colony panel.
type HUDData struct {
	Tick          int32
	Agents        int
	Returning     int
	Carried       int
	Delivered     int
	FoodSources   int
	FoodRemaining int
	FoodInitial   int // for the remaining-food bar
	Speed         int
	FPS           int32
	Paused        bool
}

// HUD renders the colony status section.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the colony section at (x, y) and returns the next Y.
func (h *HUD) Draw(x, y, width int32, data HUDData) int32 {
	r := h.renderer
	y = r.DrawSectionHeader(x, y, "Colony")

	status := "Running"
	if data.Paused {
		status = "PAUSED"
	}
	y = r.DrawText(x, y, fmt.Sprintf("Tick %d (%s)", data.Tick, status), rl.Yellow)

	for _, row := range colonyRows(data) {
		y = r.DrawLabelValue(x, y, row[0], row[1])
	}
	y = r.DrawRatioBar(x, y, "Food left", data.FoodRemaining, data.FoodInitial, width)
	return y + 4
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-20, 12, rl.Gray)
}

// colonyRows returns the label/value pairs of the colony section.
func colonyRows(d HUDData) [][2]string {
	return [][2]string{
		{"Speed", fmt.Sprintf("%dx | %d fps", d.Speed, d.FPS)},
		{"Agents", fmt.Sprintf("%d (%d returning)", d.Agents, d.Returning)},
		{"Delivered", fmt.Sprintf("%d (+%d carried)", d.Delivered, d.Carried)},
		{"Food", fmt.Sprintf("%d in %d sources", d.FoodRemaining, d.FoodSources)},
	}
}

// PerfPanel renders the per-phase tick timings.
type PerfPanel struct {
	renderer *Renderer
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel() *PerfPanel {
	return &PerfPanel{renderer: NewRenderer()}
}

// perfRow is one phase line of the panel.
type perfRow struct {
	Name string
	Avg  time.Duration
	Pct  float64
}

// perfRows lists phases in tick order, skipping phases with no samples.
func perfRows(stats telemetry.PerfStats) []perfRow {
	var rows []perfRow
	for _, phase := range telemetry.Phases() {
		avg, ok := stats.PhaseAvg[phase]
		if !ok {
			continue
		}
		rows = append(rows, perfRow{Name: phase, Avg: avg, Pct: stats.PhasePct[phase]})
	}
	return rows
}

// Draw renders the performance section at (x, y) and returns the next Y.
func (p *PerfPanel) Draw(x, y int32, stats telemetry.PerfStats) int32 {
	r := p.renderer
	y = r.DrawSectionHeader(x, y, "Performance")
	y = r.DrawText(x, y, fmt.Sprintf("Tick %s | %d tps",
		stats.AvgTickDuration.Round(time.Microsecond), int(stats.TicksPerSecond)), rl.LightGray)

	for _, row := range perfRows(stats) {
		color := r.Theme.ValueColor
		if row.Pct > 50 {
			color = r.Theme.HotColor
		} else if row.Pct > 25 {
			color = r.Theme.WarnColor
		}
		y = r.DrawText(x, y, fmt.Sprintf("%-12s %8s %5.1f%%", row.Name, row.Avg.Round(time.Microsecond), row.Pct), color)
	}
	return y + 4
}
