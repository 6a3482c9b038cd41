package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/trail/config"
	"github.com/pthm-cable/trail/telemetry"
)

func TestNormalizeRoundtrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()

	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("%s: roundtrip %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestDefaultsMatchConfig(t *testing.T) {
	pv := NewParamVector()
	got := pv.ExtractFromConfig(config.Defaults())
	for i, spec := range pv.Specs {
		if got[i] != spec.Default {
			t.Errorf("%s: default %v, config has %v", spec.Path, spec.Default, got[i])
		}
	}
}

func TestApplyToConfigClamps(t *testing.T) {
	pv := NewParamVector()
	values := make([]float64, pv.Dim())
	for i := range values {
		values[i] = 1e6
	}

	cfg := config.Defaults()
	pv.ApplyToConfig(cfg, values)

	got := pv.ExtractFromConfig(cfg)
	for i, spec := range pv.Specs {
		if got[i] != spec.Max {
			t.Errorf("%s = %v, want clamped to %v", spec.Path, got[i], spec.Max)
		}
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("upper bounds produce an invalid config: %v", err)
	}
}

func TestScoreWindows(t *testing.T) {
	steady := []telemetry.WindowStats{
		{DeliveryRate: 0}, {DeliveryRate: 0.5}, // warmup
		{DeliveryRate: 2}, {DeliveryRate: 2}, {DeliveryRate: 2},
	}
	rate, quality := scoreWindows(steady)
	if rate != 2 || quality != 1 {
		t.Errorf("steady: rate=%v quality=%v, want 2 and 1", rate, quality)
	}

	rate, quality = scoreWindows(steady[:2])
	if rate != 0 || quality != 0 {
		t.Errorf("warmup only: rate=%v quality=%v, want 0 and 0", rate, quality)
	}

	bursty := []telemetry.WindowStats{
		{}, {},
		{DeliveryRate: 0}, {DeliveryRate: 4},
	}
	rate, quality = scoreWindows(bursty)
	if rate != 2 {
		t.Errorf("bursty: rate=%v, want 2", rate)
	}
	if quality != 0 {
		t.Errorf("bursty: quality=%v, want 0", quality)
	}
}
