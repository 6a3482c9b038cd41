package game

import (
	"log/slog"
	"math/rand/v2"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/trail/components"
	"github.com/pthm-cable/trail/config"
	"github.com/pthm-cable/trail/systems"
)

// Environment owns the nest and the food sources.
// Food entities live in the ark world; the index is rebuilt only when the set
// of live sources changes.
type Environment struct {
	world *ecs.World

	foodMapper *ecs.Map2[components.Position, components.Food]
	foodFilter *ecs.Filter2[components.Position, components.Food]
	foodMap    *ecs.Map1[components.Food]

	index  *systems.FoodIndex
	nest   components.Nest
	placer *systems.FoodPlacer
	logger *slog.Logger

	worldW, worldH float64

	// Respawn policy
	policy       string
	respawnDelay int32
	targetCount  int
	quantity     int
	radius       float64
	pending      []int32 // ticks at which replacements are due

	nextSeq uint64
	live    int
	dirty   bool

	// Scratch
	depleted []ecs.Entity
}

// newEnvironment creates the nest and the initial food sources.
func newEnvironment(world *ecs.World, cfg *config.Config, rng *rand.Rand, logger *slog.Logger) *Environment {
	nest := components.Nest{
		Position: components.Position{X: cfg.Derived.NestX, Y: cfg.Derived.NestY},
		Radius:   cfg.Nest.Radius,
	}
	bounds := systems.Rect{MaxX: cfg.World.Width, MaxY: cfg.World.Height}

	env := &Environment{
		world:        world,
		foodMapper:   ecs.NewMap2[components.Position, components.Food](world),
		foodFilter:   ecs.NewFilter2[components.Position, components.Food](world),
		foodMap:      ecs.NewMap1[components.Food](world),
		index:        systems.NewFoodIndex(world, bounds, cfg.Index.MaxItems, cfg.Index.MaxDepth),
		nest:         nest,
		placer:       systems.NewFoodPlacer(cfg, nest, rng),
		logger:       logger,
		worldW:       cfg.World.Width,
		worldH:       cfg.World.Height,
		policy:       cfg.Food.Respawn,
		respawnDelay: int32(cfg.Food.RespawnDelay),
		targetCount:  cfg.Food.Count,
		quantity:     cfg.Food.Quantity,
		radius:       cfg.Food.Radius,
	}

	for i := 0; i < cfg.Food.Count; i++ {
		env.AddFood(env.placer.Place(), cfg.Food.Quantity, cfg.Food.Radius)
	}
	env.rebuildIndex()

	return env
}

// Nest returns the colony's nest.
func (e *Environment) Nest() components.Nest { return e.nest }

// Index returns the spatial index over live food.
func (e *Environment) Index() *systems.FoodIndex { return e.index }

// AddFood creates a food source. The index is refreshed during the next
// bookkeeping pass.
func (e *Environment) AddFood(pos components.Position, quantity int, radius float64) ecs.Entity {
	food := &components.Food{
		Quantity: quantity,
		Initial:  quantity,
		Radius:   radius,
		Seq:      e.nextSeq,
	}
	e.nextSeq++
	e.live++
	e.dirty = true
	return e.foodMapper.NewEntity(&pos, food)
}

// Take removes up to want units from the food source h. It returns the
// amount taken, 0 if the source is gone or already empty.
func (e *Environment) Take(h ecs.Entity, want int) int {
	if want <= 0 || !e.world.Alive(h) {
		return 0
	}
	food := e.foodMap.Get(h)
	if food == nil || food.Quantity <= 0 {
		return 0
	}
	took := min(want, food.Quantity)
	food.Quantity -= took
	if food.Quantity == 0 {
		e.dirty = true
	}
	return took
}

// Update removes depleted sources, applies the respawn policy and rebuilds
// the index if anything changed.
func (e *Environment) Update(tick int32) (depleted, respawned int) {
	e.depleted = e.depleted[:0]
	if e.dirty {
		// Collect first, the world is locked while a query is open
		query := e.foodFilter.Query()
		for query.Next() {
			_, food := query.Get()
			if food.Quantity <= 0 {
				e.depleted = append(e.depleted, query.Entity())
			}
		}
	}

	for _, ent := range e.depleted {
		pos, _ := e.foodMapper.Get(ent)
		e.logger.Debug("food depleted", "tick", tick, "x", pos.X, "y", pos.Y)
		e.world.RemoveEntity(ent)
		e.live--
		if e.policy != config.RespawnNone {
			e.pending = append(e.pending, tick+e.respawnDelay)
		}
	}
	depleted = len(e.depleted)

	respawned = e.respawnDue(tick)

	if e.dirty {
		e.rebuildIndex()
	}
	return depleted, respawned
}

// respawnDue places replacements whose delay has elapsed.
func (e *Environment) respawnDue(tick int32) int {
	n := 0
	kept := e.pending[:0]
	for _, due := range e.pending {
		if due > tick || e.live >= e.targetCount {
			kept = append(kept, due)
			continue
		}
		pos := e.placer.Place()
		e.AddFood(pos, e.quantity, e.radius)
		e.logger.Debug("food respawned", "tick", tick, "x", pos.X, "y", pos.Y, "policy", e.policy)
		n++
	}
	e.pending = kept
	return n
}

func (e *Environment) rebuildIndex() {
	e.index.Rebuild(e.foodFilter)
	e.dirty = false
}

// Sources returns the number of live food sources.
func (e *Environment) Sources() int { return e.live }

// Remaining returns the total quantity left across all sources.
func (e *Environment) Remaining() int {
	total := 0
	query := e.foodFilter.Query()
	for query.Next() {
		_, food := query.Get()
		total += food.Quantity
	}
	return total
}

// Quantities appends each live source's remaining quantity to dst.
func (e *Environment) Quantities(dst []float64) []float64 {
	query := e.foodFilter.Query()
	for query.Next() {
		_, food := query.Get()
		dst = append(dst, float64(food.Quantity))
	}
	return dst
}

// PendingRespawns returns the number of scheduled replacements.
func (e *Environment) PendingRespawns() int { return len(e.pending) }

// contains reports whether p lies inside the world.
func (e *Environment) contains(p components.Position) bool {
	return p.X >= 0 && p.X < e.worldW && p.Y >= 0 && p.Y < e.worldH
}
