// Package systems provides the simulation core: trail fields, the food
// index and forager behavior.
package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/trail/components"
)

// FoodIndex answers "which food sources are near (x, y)" using a quadtree
// over food entities. It is rebuilt whenever sources are added or removed.
type FoodIndex struct {
	tree    *QuadTree[ecs.Entity]
	posMap  *ecs.Map1[components.Position]
	foodMap *ecs.Map1[components.Food]
}

// NewFoodIndex creates an empty index covering bounds.
func NewFoodIndex(world *ecs.World, bounds Rect, maxItems, maxDepth int) *FoodIndex {
	return &FoodIndex{
		tree:    NewQuadTree[ecs.Entity](bounds, maxItems, maxDepth),
		posMap:  ecs.NewMap1[components.Position](world),
		foodMap: ecs.NewMap1[components.Food](world),
	}
}

// Rebuild reinserts every food entity with quantity left. Depleted sources
// are skipped so they can never be returned by a query.
func (fi *FoodIndex) Rebuild(filter *ecs.Filter2[components.Position, components.Food]) {
	fi.tree.Clear()
	query := filter.Query()
	for query.Next() {
		pos, food := query.Get()
		if food.Quantity <= 0 {
			continue
		}
		fi.tree.Insert(query.Entity(), RectAround(pos.X, pos.Y, food.Radius))
	}
}

// Len returns the number of indexed sources.
func (fi *FoodIndex) Len() int { return fi.tree.Len() }

// QueryInto appends the food sources whose pickup disk bounding box meets the
// square of half-side radius around (x, y). handles is scratch space; both
// slices are returned for reuse. Safe for concurrent use while no entity is
// being modified.
func (fi *FoodIndex) QueryInto(dst []FoodSite, handles []ecs.Entity, x, y, radius float64) ([]FoodSite, []ecs.Entity) {
	handles = fi.tree.QueryInto(handles[:0], RectAround(x, y, radius))
	for _, e := range handles {
		pos := fi.posMap.Get(e)
		food := fi.foodMap.Get(e)
		if pos == nil || food == nil {
			continue
		}
		dst = append(dst, FoodSite{
			Handle:   e,
			X:        pos.X,
			Y:        pos.Y,
			Radius:   food.Radius,
			Quantity: food.Quantity,
			Seq:      food.Seq,
		})
	}
	return dst, handles
}
