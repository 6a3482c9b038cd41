package telemetry

import (
	"slices"
	"testing"
)

func TestLifetimeTrackerTrips(t *testing.T) {
	lt := NewLifetimeTracker()
	lt.Register(1, 0)
	lt.Register(2, 0)

	if _, ok := lt.RecordDelivery(1, 5); ok {
		t.Error("delivery without a pickup must not count as a trip")
	}

	lt.RecordPickup(1, 10)
	trip, ok := lt.RecordDelivery(1, 25)
	if !ok || trip != 15 {
		t.Errorf("RecordDelivery = %d, %v; want 15, true", trip, ok)
	}

	lt.RecordPickup(1, 40)
	lt.RecordDelivery(1, 45)

	s := lt.Get(1)
	if s.Pickups != 2 || s.Deliveries != 2 {
		t.Errorf("unexpected counters: %+v", s)
	}
	if s.MeanReturnTicks() != 10 {
		t.Errorf("MeanReturnTicks = %v, want 10", s.MeanReturnTicks())
	}
	if lt.Get(2).MeanReturnTicks() != 0 {
		t.Error("forager without deliveries should have zero mean")
	}
}

func TestLifetimeTrackerTopDeliverers(t *testing.T) {
	lt := NewLifetimeTracker()
	for id := uint32(1); id <= 4; id++ {
		lt.Register(id, 0)
	}
	for i := 0; i < 3; i++ {
		lt.RecordPickup(3, int32(i))
		lt.RecordDelivery(3, int32(i)+1)
	}
	lt.RecordPickup(2, 0)
	lt.RecordDelivery(2, 1)
	lt.RecordPickup(4, 0)
	lt.RecordDelivery(4, 1)

	got := lt.TopDeliverers(3)
	want := []uint32{3, 2, 4}
	if !slices.Equal(got, want) {
		t.Errorf("TopDeliverers = %v, want %v", got, want)
	}
	if lt.Count() != 4 {
		t.Errorf("Count = %d, want 4", lt.Count())
	}
}
