// Package components defines ECS components for the simulation.
package components

import "math/rand/v2"

// State is a forager's behavioral mode.
type State uint8

const (
	Searching State = iota // Wandering away from the nest looking for food
	Returning              // Carrying food back to the nest
)

func (s State) String() string {
	switch s {
	case Searching:
		return "searching"
	case Returning:
		return "returning"
	default:
		return "unknown"
	}
}

// Position represents an entity's world position.
type Position struct {
	X, Y float64
}

// Rotation holds a forager's heading in radians, wrapped to [-pi, pi].
type Rotation struct {
	Heading float64
}

// Forager holds per-ant state.
type Forager struct {
	ID        uint32
	State     State
	Speed     float64    // world units per tick
	Carried   int        // food units being carried home
	Delivered int        // lifetime food units delivered
	Trail     []Position // recent positions, oldest first; cleared on every state change
	Rng       *rand.Rand // per-ant stream so parallel updates stay deterministic
}

// RememberPosition appends p to the trail, dropping the oldest entry past limit.
func (f *Forager) RememberPosition(p Position, limit int) {
	if limit <= 0 {
		return
	}
	if len(f.Trail) >= limit {
		copy(f.Trail, f.Trail[1:])
		f.Trail = f.Trail[:limit-1]
	}
	f.Trail = append(f.Trail, p)
}

// ClearTrail forgets the remembered positions, keeping capacity.
func (f *Forager) ClearTrail() {
	f.Trail = f.Trail[:0]
}

// Food is a depletable food source.
type Food struct {
	Quantity int     // remaining units, never negative
	Initial  int     // quantity at creation
	Radius   float64 // pickup radius around the source position
	Seq      uint64  // creation order, used to break distance ties
}

// Nest is the colony's home. It never moves.
type Nest struct {
	Position
	Radius float64
}

// Contains reports whether (x, y) lies within the acceptance radius.
func (n Nest) Contains(x, y float64) bool {
	dx := x - n.X
	dy := y - n.Y
	return dx*dx+dy*dy <= n.Radius*n.Radius
}
