package telemetry

import (
	"cmp"
	"slices"
)

// LifetimeStats tracks per-forager statistics over a run.
type LifetimeStats struct {
	SpawnTick int32

	Pickups    int
	Deliveries int

	// Tick of the pickup that started the current return trip, -1 if searching
	LastPickupTick int32

	// Sum of return-trip lengths in ticks
	ReturnTicks int64
}

// MeanReturnTicks returns the average pickup-to-delivery time.
func (s *LifetimeStats) MeanReturnTicks() float64 {
	if s.Deliveries == 0 {
		return 0
	}
	return float64(s.ReturnTicks) / float64(s.Deliveries)
}

// LifetimeTracker manages per-forager lifetime statistics.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new forager.
func (lt *LifetimeTracker) Register(id uint32, spawnTick int32) {
	lt.stats[id] = &LifetimeStats{SpawnTick: spawnTick, LastPickupTick: -1}
}

// Get returns the lifetime stats for a forager, or nil if not found.
func (lt *LifetimeTracker) Get(id uint32) *LifetimeStats {
	return lt.stats[id]
}

// RecordPickup marks the start of a return trip.
func (lt *LifetimeTracker) RecordPickup(id uint32, tick int32) {
	if s := lt.stats[id]; s != nil {
		s.Pickups++
		s.LastPickupTick = tick
	}
}

// RecordDelivery closes the current return trip and returns its length in
// ticks. ok is false if no pickup was recorded for the forager.
func (lt *LifetimeTracker) RecordDelivery(id uint32, tick int32) (trip int32, ok bool) {
	s := lt.stats[id]
	if s == nil || s.LastPickupTick < 0 {
		return 0, false
	}
	trip = tick - s.LastPickupTick
	s.Deliveries++
	s.ReturnTicks += int64(trip)
	s.LastPickupTick = -1
	return trip, true
}

// Count returns the number of tracked foragers.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}

// TopDeliverers returns up to n forager IDs ordered by deliveries, then ID.
func (lt *LifetimeTracker) TopDeliverers(n int) []uint32 {
	ids := make([]uint32, 0, len(lt.stats))
	for id := range lt.stats {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uint32) int {
		if c := cmp.Compare(lt.stats[b].Deliveries, lt.stats[a].Deliveries); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	if n < len(ids) {
		ids = ids[:n]
	}
	return ids
}
