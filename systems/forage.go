package systems

import (
	"cmp"
	"math"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/trail/components"
	"github.com/pthm-cable/trail/config"
)

// FieldKind names one of the two trail fields.
type FieldKind uint8

const (
	FieldSearching FieldKind = iota // laid by searching ants
	FieldFound                      // laid by ants carrying food
)

// ForageParams holds the per-run constants of forager behavior.
type ForageParams struct {
	WorldW, WorldH float64

	ExploreProb   float64
	Wander        float64
	MaxTurn       float64
	SensingRadius float64
	SampleRadius  int

	NestWeight  float64
	TrailWeight float64
	ReturnTrail FieldKind

	DepositSearching float32
	DepositFound     float32
}

// ForageParamsFromConfig extracts forager constants from cfg.
func ForageParamsFromConfig(cfg *config.Config) ForageParams {
	returnTrail := FieldFound
	if cfg.Agent.ReturnTrail == config.TrailSearching {
		returnTrail = FieldSearching
	}
	return ForageParams{
		WorldW:           cfg.World.Width,
		WorldH:           cfg.World.Height,
		ExploreProb:      cfg.Agent.ExploreProb,
		Wander:           cfg.Agent.Wander,
		MaxTurn:          cfg.Agent.MaxTurn,
		SensingRadius:    cfg.Agent.SensingRadius,
		SampleRadius:     cfg.Agent.SampleRadius,
		NestWeight:       cfg.Agent.NestWeight,
		TrailWeight:      cfg.Agent.TrailWeight,
		ReturnTrail:      returnTrail,
		DepositSearching: float32(cfg.Deposit.Searching),
		DepositFound:     float32(cfg.Deposit.Found),
	}
}

// FoodSite is a food source as seen by a sensing forager.
type FoodSite struct {
	Handle   ecs.Entity
	X, Y     float64
	Radius   float64
	Quantity int
	Seq      uint64
	distSq   float64
}

// Senses bundles the shared state a forager reads during a tick.
// Fields are read-only while foragers are being updated.
type Senses struct {
	Searching *ScalarField
	Found     *ScalarField
	Nest      components.Nest
}

func (s *Senses) field(k FieldKind) *ScalarField {
	if k == FieldSearching {
		return s.Searching
	}
	return s.Found
}

// Intent is the outcome of one forager update, applied after every forager
// has been updated.
type Intent struct {
	X, Y    float64
	Heading float64
	WallHit bool

	DepositField  FieldKind
	DepositAmount float32

	// Pickup is set for a searching forager with food in range; Candidates
	// holds the reachable sources, nearest first, ties by creation order.
	Pickup     bool
	Candidates []FoodSite

	// Deliver is set for a returning forager inside the nest.
	Deliver bool
}

// UpdateForager computes one tick for a forager without mutating shared state.
// nearby lists food sources returned by the spatial index around the forager;
// it is filtered and sorted in place and becomes Intent.Candidates. Only the
// forager's RNG advances.
func UpdateForager(pos components.Position, rot components.Rotation, f *components.Forager, nearby []FoodSite, s *Senses, p *ForageParams) Intent {
	rng := f.Rng
	var in Intent

	heading := rot.Heading
	if math.IsNaN(heading) || math.IsInf(heading, 0) {
		heading = RandomHeading(rng)
	}

	// Sense at the current position
	switch f.State {
	case components.Searching:
		in.Candidates = reachableFood(nearby, pos.X, pos.Y, p.SensingRadius)
		in.Pickup = len(in.Candidates) > 0
	case components.Returning:
		in.Deliver = s.Nest.Contains(pos.X, pos.Y)
	}

	// Decide heading
	explore := rng.Float64() < p.ExploreProb
	switch {
	case explore:
		heading = wander(heading, p.Wander, f)
	case f.State == components.Searching:
		heading = searchHeading(heading, pos, f, s, p)
	default:
		heading = returnHeading(heading, pos, f, s, p)
	}
	if math.IsNaN(heading) {
		heading = RandomHeading(rng)
	}

	// Move and clamp
	x := pos.X + f.Speed*math.Cos(heading)
	y := pos.Y + f.Speed*math.Sin(heading)
	x, hitX := clampAxis(x, p.WorldW)
	y, hitY := clampAxis(y, p.WorldH)
	if hitX || hitY {
		in.WallHit = true
		heading = RandomHeading(rng)
	}

	in.X, in.Y, in.Heading = x, y, heading

	// Deposit at the new position
	if f.State == components.Searching {
		in.DepositField = FieldSearching
		in.DepositAmount = p.DepositSearching
	} else {
		in.DepositField = FieldFound
		in.DepositAmount = p.DepositFound
	}

	return in
}

// wander applies a bounded random perturbation.
func wander(heading, amount float64, f *components.Forager) float64 {
	if amount <= 0 {
		return heading
	}
	return normalizeAngle(heading + (f.Rng.Float64()*2-1)*amount)
}

// searchHeading follows the found-food trail, or wanders when none is sensed.
func searchHeading(heading float64, pos components.Position, f *components.Forager, s *Senses, p *ForageParams) float64 {
	dx, dy, _, ok := s.Found.SampleNeighborhood(pos.X, pos.Y, p.SampleRadius, f.Rng)
	if !ok {
		return wander(heading, p.Wander, f)
	}
	return steer(heading, math.Atan2(dy, dx), p.MaxTurn)
}

// returnHeading blends the direct nest vector with the return trail.
func returnHeading(heading float64, pos components.Position, f *components.Forager, s *Senses, p *ForageParams) float64 {
	var tx, ty float64
	if nx, ny, ok := unit(s.Nest.X-pos.X, s.Nest.Y-pos.Y); ok {
		tx = nx * p.NestWeight
		ty = ny * p.NestWeight
	}
	if dx, dy, _, ok := s.field(p.ReturnTrail).SampleNeighborhood(pos.X, pos.Y, p.SampleRadius, f.Rng); ok {
		tx += dx * p.TrailWeight
		ty += dy * p.TrailWeight
	}

	ux, uy, ok := unit(tx, ty)
	if !ok {
		// Zero-length target: standing on the nest center with no trail
		return RandomHeading(f.Rng)
	}
	return steer(heading, math.Atan2(uy, ux), p.MaxTurn)
}

// reachableFood keeps sources with quantity left whose pickup disk lies within
// sensing range of (x, y), ordered nearest first with ties by Seq.
func reachableFood(sites []FoodSite, x, y, sensing float64) []FoodSite {
	out := sites[:0]
	for _, s := range sites {
		if s.Quantity <= 0 {
			continue
		}
		reach := sensing + s.Radius
		d := distanceSq(x, y, s.X, s.Y)
		if d > reach*reach {
			continue
		}
		s.distSq = d
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b FoodSite) int {
		if c := cmp.Compare(a.distSq, b.distSq); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
	return out
}

// clampAxis clamps v into [0, limit). hit reports whether clamping occurred.
func clampAxis(v, limit float64) (float64, bool) {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0, true
	case v >= limit:
		return upperBound(limit), true
	}
	return v, false
}
