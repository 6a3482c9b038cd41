package ui

import (
	"testing"
	"time"

	"github.com/pthm-cable/trail/telemetry"
)

func TestBarRatio(t *testing.T) {
	tests := []struct {
		name           string
		current, total int
		want           float32
	}{
		{"half", 5, 10, 0.5},
		{"full", 10, 10, 1},
		{"over", 12, 10, 1},
		{"zero total", 3, 0, 0},
		{"empty", 0, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := barRatio(tt.current, tt.total); got != tt.want {
				t.Errorf("barRatio(%d, %d) = %v, want %v", tt.current, tt.total, got, tt.want)
			}
		})
	}
}

func TestColonyRows(t *testing.T) {
	rows := colonyRows(HUDData{Agents: 10, Returning: 3, Delivered: 7, Carried: 3, FoodRemaining: 20, FoodSources: 2, Speed: 4, FPS: 60})

	want := map[string]string{
		"Speed":     "4x | 60 fps",
		"Agents":    "10 (3 returning)",
		"Delivered": "7 (+3 carried)",
		"Food":      "20 in 2 sources",
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for _, row := range rows {
		if want[row[0]] != row[1] {
			t.Errorf("%s = %q, want %q", row[0], row[1], want[row[0]])
		}
	}
}

func TestPerfRowsOrder(t *testing.T) {
	stats := telemetry.PerfStats{
		PhaseAvg: map[string]time.Duration{
			telemetry.PhaseTelemetry: time.Microsecond,
			telemetry.PhaseAgents:    3 * time.Microsecond,
			telemetry.PhaseDecay:     2 * time.Microsecond,
		},
		PhasePct: map[string]float64{
			telemetry.PhaseAgents: 50,
		},
	}

	rows := perfRows(stats)
	wantOrder := []string{telemetry.PhaseAgents, telemetry.PhaseDecay, telemetry.PhaseTelemetry}
	if len(rows) != len(wantOrder) {
		t.Fatalf("got %d rows, want %d", len(rows), len(wantOrder))
	}
	for i, name := range wantOrder {
		if rows[i].Name != name {
			t.Errorf("row %d = %s, want %s", i, rows[i].Name, name)
		}
	}
	if rows[0].Pct != 50 {
		t.Errorf("agents pct = %v, want 50", rows[0].Pct)
	}
}

func TestPerfRowsEmpty(t *testing.T) {
	if rows := perfRows(telemetry.PerfStats{}); len(rows) != 0 {
		t.Errorf("got %d rows from empty stats, want 0", len(rows))
	}
}
