package systems

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/pthm-cable/trail/config"
)

func newTestField(t *testing.T) *ScalarField {
	t.Helper()
	f, err := NewScalarField(100, 100, 10, 0.9, 0.01)
	if err != nil {
		t.Fatalf("NewScalarField: %v", err)
	}
	return f
}

func TestScalarFieldCreation(t *testing.T) {
	f, err := NewScalarField(105, 99, 10, 0.95, 0.1)
	if err != nil {
		t.Fatalf("NewScalarField: %v", err)
	}

	w, h := f.GridSize()
	if w != 11 || h != 10 {
		t.Errorf("expected grid size 11x10, got %dx%d", w, h)
	}
	if f.CellSize() != 10 {
		t.Errorf("expected cell size 10, got %v", f.CellSize())
	}
	if f.Total() != 0 {
		t.Errorf("expected empty field, total=%v", f.Total())
	}
}

func TestScalarFieldInvalidParams(t *testing.T) {
	tests := []struct {
		name                 string
		w, h, cell, ret, eps float64
	}{
		{"zero width", 0, 100, 10, 0.9, 0},
		{"nan height", 100, math.NaN(), 10, 0.9, 0},
		{"zero cell", 100, 100, 0, 0.9, 0},
		{"retention one", 100, 100, 10, 1, 0},
		{"retention zero", 100, 100, 10, 0, 0},
		{"retention rounds to one", 100, 100, 10, 0.99999999, 0},
		{"retention underflows to zero", 100, 100, 10, 1e-50, 0},
		{"negative epsilon", 100, 100, 10, 0.9, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScalarField(tt.w, tt.h, tt.cell, tt.ret, tt.eps)
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestScalarFieldDepositAndSample(t *testing.T) {
	f := newTestField(t)

	f.Deposit(15, 25, 3)
	f.Deposit(19.9, 29.9, 2)

	if got := f.Sample(12, 21); got != 5 {
		t.Errorf("expected 5 in cell (1,2), got %v", got)
	}
	v, err := f.Cell(1, 2)
	if err != nil || v != 5 {
		t.Errorf("Cell(1,2) = %v, %v; want 5, nil", v, err)
	}
	if got := f.Sample(50, 50); got != 0 {
		t.Errorf("expected untouched cell to be 0, got %v", got)
	}
}

func TestScalarFieldDepositClamps(t *testing.T) {
	f := newTestField(t)

	f.Deposit(-5, -5, 1)
	f.Deposit(100, 100, 1)
	f.Deposit(1e9, 50, 1)

	if v, _ := f.Cell(0, 0); v != 1 {
		t.Errorf("expected clamp to (0,0), got %v", v)
	}
	if v, _ := f.Cell(9, 9); v != 1 {
		t.Errorf("expected clamp to (9,9), got %v", v)
	}
	if v, _ := f.Cell(9, 5); v != 1 {
		t.Errorf("expected clamp to (9,5), got %v", v)
	}
}

func TestScalarFieldDepositIgnoresInvalid(t *testing.T) {
	f := newTestField(t)

	f.Deposit(50, 50, -1)
	f.Deposit(50, 50, 0)
	f.Deposit(50, 50, float32(math.NaN()))
	f.Deposit(50, 50, float32(math.Inf(1)))

	if f.Total() != 0 {
		t.Errorf("expected field to stay empty, total=%v", f.Total())
	}
}

func TestScalarFieldOutOfBounds(t *testing.T) {
	f := newTestField(t)

	if _, err := f.Cell(10, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Cell(10,0): expected ErrOutOfBounds, got %v", err)
	}
	if _, err := f.Cell(-1, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Cell(-1,0): expected ErrOutOfBounds, got %v", err)
	}
	if _, _, err := f.CellOf(100, 5); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("CellOf(100,5): expected ErrOutOfBounds, got %v", err)
	}

	col, row, err := f.CellOf(99.99, 0)
	if err != nil || col != 9 || row != 0 {
		t.Errorf("CellOf(99.99,0) = %d,%d,%v; want 9,0,nil", col, row, err)
	}
}

func TestScalarFieldDecay(t *testing.T) {
	f := newTestField(t)
	f.Deposit(55, 55, 10)

	prev := f.Sample(55, 55)
	for i := 0; i < 20; i++ {
		f.Decay()
		v := f.Sample(55, 55)
		if v > prev {
			t.Fatalf("tick %d: decay increased value %v -> %v", i, prev, v)
		}
		prev = v
	}

	want := float32(10 * math.Pow(0.9, 20))
	if math.Abs(float64(prev-want)) > 1e-4 {
		t.Errorf("expected %v after 20 decays, got %v", want, prev)
	}
}

func TestScalarFieldDecaySnapsToZero(t *testing.T) {
	f := newTestField(t)
	f.Deposit(5, 5, 0.0105)

	f.Decay() // 0.00945 < 0.01
	if v := f.Sample(5, 5); v != 0 {
		t.Errorf("expected value below epsilon to snap to 0, got %v", v)
	}
}

func TestScalarFieldNonNegative(t *testing.T) {
	f := newTestField(t)
	rng := rand.New(rand.NewPCG(1, 2))

	for tick := 0; tick < 200; tick++ {
		for i := 0; i < 10; i++ {
			x := rng.Float64()*140 - 20
			y := rng.Float64()*140 - 20
			f.Deposit(x, y, float32(rng.Float64()*10-2))
		}
		f.Decay()
		if tick%3 == 0 {
			f.Diffuse(0.2)
		}
		for i, v := range f.Val {
			if v < 0 || math.IsNaN(float64(v)) {
				t.Fatalf("tick %d: cell %d = %v", tick, i, v)
			}
		}
	}
}

func TestScalarFieldDiffuseConservesMass(t *testing.T) {
	f := newTestField(t)
	f.Deposit(55, 55, 100)

	before := f.Total()
	f.Diffuse(0.2)
	after := f.Total()

	if math.Abs(before-after) > 1e-3 {
		t.Errorf("diffusion changed mass: %v -> %v", before, after)
	}
	if f.Sample(55, 55) >= 100 {
		t.Error("expected center to spread out")
	}
	if f.Sample(65, 55) <= 0 {
		t.Error("expected neighbor to receive mass")
	}
}

func TestSampleNeighborhoodEmpty(t *testing.T) {
	f := newTestField(t)
	rng := rand.New(rand.NewPCG(1, 1))

	// Only the center cell holds pheromone, which is excluded.
	f.Deposit(55, 55, 5)
	if _, _, _, ok := f.SampleNeighborhood(55, 55, 1, rng); ok {
		t.Error("expected no neighbor with only the center cell set")
	}
}

func TestSampleNeighborhoodDirection(t *testing.T) {
	f := newTestField(t)
	rng := rand.New(rand.NewPCG(1, 1))

	f.Deposit(65, 55, 1) // east
	f.Deposit(55, 45, 4) // north (row - 1)
	f.Deposit(45, 65, 2) // south-west

	dx, dy, best, ok := f.SampleNeighborhood(55, 55, 1, rng)
	if !ok {
		t.Fatal("expected a neighbor")
	}
	if best != 4 {
		t.Errorf("expected best 4, got %v", best)
	}
	if math.Abs(dx) > 1e-9 || math.Abs(dy+1) > 1e-9 {
		t.Errorf("expected direction (0,-1), got (%v,%v)", dx, dy)
	}
}

func TestSampleNeighborhoodEdge(t *testing.T) {
	f := newTestField(t)
	rng := rand.New(rand.NewPCG(1, 1))

	f.Deposit(15, 15, 1)
	dx, dy, _, ok := f.SampleNeighborhood(0, 0, 1, rng)
	if !ok {
		t.Fatal("expected a neighbor from the corner")
	}
	want := 1 / math.Sqrt2
	if math.Abs(dx-want) > 1e-9 || math.Abs(dy-want) > 1e-9 {
		t.Errorf("expected diagonal direction, got (%v,%v)", dx, dy)
	}
}

func TestSampleNeighborhoodTiesUniform(t *testing.T) {
	f := newTestField(t)
	rng := rand.New(rand.NewPCG(7, 11))

	// Four equal maxima around the center cell
	f.Deposit(65, 55, 3)
	f.Deposit(45, 55, 3)
	f.Deposit(55, 65, 3)
	f.Deposit(55, 45, 3)

	counts := map[[2]int]int{}
	const n = 4000
	for i := 0; i < n; i++ {
		dx, dy, _, ok := f.SampleNeighborhood(55, 55, 1, rng)
		if !ok {
			t.Fatal("expected a neighbor")
		}
		counts[[2]int{int(math.Round(dx)), int(math.Round(dy))}]++
	}

	if len(counts) != 4 {
		t.Fatalf("expected 4 distinct choices, got %v", counts)
	}
	for dir, c := range counts {
		if c < n/4-200 || c > n/4+200 {
			t.Errorf("direction %v chosen %d times, expected about %d", dir, c, n/4)
		}
	}
}

func TestScalarFieldDataIsCopy(t *testing.T) {
	f := newTestField(t)
	f.Deposit(5, 5, 1)

	data := f.Data()
	data[0] = 99
	if f.Sample(5, 5) != 1 {
		t.Error("Data must return a copy")
	}

	f.Reset()
	if f.Total() != 0 || f.Max() != 0 {
		t.Error("expected Reset to zero the field")
	}
}
