package game

import (
	"cmp"
	"slices"

	"github.com/pthm-cable/trail/components"
	"github.com/pthm-cable/trail/systems"
)

// AgentView is a read-only copy of one agent.
type AgentView struct {
	ID       uint32
	Position components.Position
	Heading  float64
	State    components.State
	Carried  int
	Trail    []components.Position
}

// FoodView is a read-only copy of one food source.
type FoodView struct {
	Position components.Position
	Quantity int
	Radius   float64
}

// FieldView is a copy of a trail field's cell values, row-major.
type FieldView struct {
	Cols, Rows int
	CellSize   float64
	Values     []float32
}

// At returns the value of cell (col, row), 0 outside the grid.
func (v FieldView) At(col, row int) float32 {
	if col < 0 || col >= v.Cols || row < 0 || row >= v.Rows {
		return 0
	}
	return v.Values[row*v.Cols+col]
}

// Snapshot is a consistent view of the world between ticks. It shares no
// memory with the simulation.
type Snapshot struct {
	Tick      int32
	Delivered int

	Agents []AgentView // ordered by ID
	Food   []FoodView
	Nest   components.Nest

	Fields struct {
		Searching FieldView
		Found     FieldView
	}
}

// Snapshot copies the current state for drawing or inspection.
func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:      s.tick,
		Delivered: s.delivered,
		Agents:    make([]AgentView, 0, s.agentCount),
		Food:      make([]FoodView, 0, s.env.Sources()),
		Nest:      s.env.Nest(),
	}

	query := s.agentFilter.Query()
	for query.Next() {
		pos, rot, f := query.Get()
		snap.Agents = append(snap.Agents, AgentView{
			ID:       f.ID,
			Position: *pos,
			Heading:  rot.Heading,
			State:    f.State,
			Carried:  f.Carried,
			Trail:    slices.Clone(f.Trail),
		})
	}
	slices.SortFunc(snap.Agents, func(a, b AgentView) int {
		return cmp.Compare(a.ID, b.ID)
	})

	fq := s.env.foodFilter.Query()
	for fq.Next() {
		pos, food := fq.Get()
		snap.Food = append(snap.Food, FoodView{
			Position: *pos,
			Quantity: food.Quantity,
			Radius:   food.Radius,
		})
	}

	snap.Fields.Searching = fieldView(s.searching)
	snap.Fields.Found = fieldView(s.found)

	return snap
}

func fieldView(f *systems.ScalarField) FieldView {
	cols, rows := f.GridSize()
	return FieldView{
		Cols:     cols,
		Rows:     rows,
		CellSize: f.CellSize(),
		Values:   f.Data(),
	}
}
