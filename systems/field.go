package systems

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/pthm-cable/trail/config"
)

// ErrOutOfBounds is returned by raw field accessors given a cell or position
// outside the grid. Position-based accessors clamp and never return it.
var ErrOutOfBounds = errors.New("field: out of bounds")

// ScalarField is a dense pheromone grid with geometric decay.
// Every cell value is >= 0 at all times.
type ScalarField struct {
	W, H int // grid dimensions in cells

	// Current concentration, row-major
	Val []float32

	cellSize       float64
	worldW, worldH float64

	// Parameters
	Retention float32 // per-tick multiplier in (0,1)
	Epsilon   float32 // values below this snap to 0 after decay

	// Scratch buffer for diffusion
	tmp []float32
}

// NewScalarField creates an empty field covering worldW x worldH.
// Grid dimensions are ceil(world/cellSize).
func NewScalarField(worldW, worldH, cellSize, retention, epsilon float64) (*ScalarField, error) {
	if !(worldW > 0) || !(worldH > 0) || math.IsInf(worldW, 0) || math.IsInf(worldH, 0) {
		return nil, &config.ConfigError{Field: "world", Reason: fmt.Sprintf("invalid dimensions %vx%v", worldW, worldH)}
	}
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		return nil, &config.ConfigError{Field: "field.cell_size", Reason: fmt.Sprintf("must be > 0, got %v", cellSize)}
	}
	if k := float32(retention); !(retention > 0 && k > 0 && k < 1) {
		return nil, &config.ConfigError{Field: "field.retention", Reason: fmt.Sprintf("must be in (0,1), got %v", retention)}
	}
	if !(epsilon >= 0) {
		return nil, &config.ConfigError{Field: "field.epsilon", Reason: fmt.Sprintf("must be >= 0, got %v", epsilon)}
	}

	w := int(math.Ceil(worldW / cellSize))
	h := int(math.Ceil(worldH / cellSize))

	return &ScalarField{
		W: w, H: h,
		Val:       make([]float32, w*h),
		tmp:       make([]float32, w*h),
		cellSize:  cellSize,
		worldW:    worldW,
		worldH:    worldH,
		Retention: float32(retention),
		Epsilon:   float32(epsilon),
	}, nil
}

// NewScalarFieldFromConfig creates a field from the field section of cfg.
func NewScalarFieldFromConfig(cfg *config.Config) (*ScalarField, error) {
	return NewScalarField(cfg.World.Width, cfg.World.Height, cfg.Field.CellSize, cfg.Field.Retention, cfg.Field.Epsilon)
}

// CellSize returns the side length of one cell in world units.
func (f *ScalarField) CellSize() float64 { return f.cellSize }

// GridSize returns the grid dimensions.
func (f *ScalarField) GridSize() (int, int) { return f.W, f.H }

// CellOf maps a world position to its cell without clamping.
func (f *ScalarField) CellOf(x, y float64) (col, row int, err error) {
	if !(x >= 0 && x < f.worldW && y >= 0 && y < f.worldH) {
		return 0, 0, fmt.Errorf("position (%v,%v): %w", x, y, ErrOutOfBounds)
	}
	col = int(x / f.cellSize)
	row = int(y / f.cellSize)
	// Guard rounding at the far edge
	if col >= f.W {
		col = f.W - 1
	}
	if row >= f.H {
		row = f.H - 1
	}
	return col, row, nil
}

// clampedCell maps a world position to the nearest valid cell.
func (f *ScalarField) clampedCell(x, y float64) (col, row int) {
	if math.IsNaN(x) {
		x = 0
	}
	if math.IsNaN(y) {
		y = 0
	}
	col = int(math.Floor(x / f.cellSize))
	row = int(math.Floor(y / f.cellSize))

	if col < 0 {
		col = 0
	} else if col >= f.W {
		col = f.W - 1
	}
	if row < 0 {
		row = 0
	} else if row >= f.H {
		row = f.H - 1
	}
	return col, row
}

// Cell returns the raw value at (col, row).
func (f *ScalarField) Cell(col, row int) (float32, error) {
	if col < 0 || col >= f.W || row < 0 || row >= f.H {
		return 0, fmt.Errorf("cell (%d,%d) in %dx%d grid: %w", col, row, f.W, f.H, ErrOutOfBounds)
	}
	return f.Val[row*f.W+col], nil
}

// Deposit adds amount to the cell containing (x, y). Positions outside the
// world are clamped to the nearest edge cell. Negative or NaN amounts are ignored.
func (f *ScalarField) Deposit(x, y float64, amount float32) {
	if !(amount > 0) || math.IsInf(float64(amount), 0) {
		return
	}
	col, row := f.clampedCell(x, y)
	f.Val[row*f.W+col] += amount
}

// Sample returns the concentration of the cell containing (x, y), clamped.
func (f *ScalarField) Sample(x, y float64) float32 {
	col, row := f.clampedCell(x, y)
	return f.Val[row*f.W+col]
}

// SampleNeighborhood scans every cell within radius cells of the cell
// containing (x, y), excluding that cell, and returns the unit direction
// toward the strongest one. Equal maxima are chosen uniformly at random.
// ok is false when no neighbor holds a positive value.
func (f *ScalarField) SampleNeighborhood(x, y float64, radius int, rng *rand.Rand) (dx, dy float64, best float32, ok bool) {
	if radius < 1 {
		radius = 1
	}
	cc, cr := f.clampedCell(x, y)

	var bestC, bestR, ties int
	for r := cr - radius; r <= cr+radius; r++ {
		if r < 0 || r >= f.H {
			continue
		}
		for c := cc - radius; c <= cc+radius; c++ {
			if c < 0 || c >= f.W || (c == cc && r == cr) {
				continue
			}
			v := f.Val[r*f.W+c]
			if v <= 0 {
				continue
			}
			switch {
			case v > best:
				best = v
				bestC, bestR = c, r
				ties = 1
			case v == best:
				// Reservoir sampling keeps each tied cell with probability 1/ties
				ties++
				if rng.IntN(ties) == 0 {
					bestC, bestR = c, r
				}
			}
		}
	}

	if ties == 0 {
		return 0, 0, 0, false
	}
	dx, dy, _ = unit(float64(bestC-cc), float64(bestR-cr))
	return dx, dy, best, true
}

// Decay multiplies every cell by the retention factor, snapping values
// below epsilon to zero.
func (f *ScalarField) Decay() {
	k := f.Retention
	eps := f.Epsilon
	for i, v := range f.Val {
		if v == 0 {
			continue
		}
		v *= k
		if v < eps || v < 0 {
			v = 0
		}
		f.Val[i] = v
	}
}

// Diffuse applies 5-point stencil diffusion with reflecting edges.
// rate is clamped to 0.25 for stability; values stay >= 0.
func (f *ScalarField) Diffuse(rate float32) {
	if rate <= 0 {
		return
	}
	if rate > 0.25 {
		rate = 0.25
	}

	w, h := f.W, f.H
	src := f.Val
	dst := f.tmp

	for y := 0; y < h; y++ {
		yN := max(y-1, 0)
		yS := min(y+1, h-1)
		for x := 0; x < w; x++ {
			xW := max(x-1, 0)
			xE := min(x+1, w-1)

			i := y*w + x
			c := src[i]
			n := src[yN*w+x]
			s := src[yS*w+x]
			e := src[y*w+xE]
			wv := src[y*w+xW]

			v := c + rate*(n+s+e+wv-4*c)
			if v < 0 {
				v = 0
			}
			dst[i] = v
		}
	}

	f.Val, f.tmp = dst, src
}

// Total returns the sum of all cells.
func (f *ScalarField) Total() float64 {
	var sum float64
	for _, v := range f.Val {
		sum += float64(v)
	}
	return sum
}

// Max returns the largest cell value.
func (f *ScalarField) Max() float32 {
	var m float32
	for _, v := range f.Val {
		if v > m {
			m = v
		}
	}
	return m
}

// Data returns a copy of the grid, row-major.
func (f *ScalarField) Data() []float32 {
	out := make([]float32, len(f.Val))
	copy(out, f.Val)
	return out
}

// Reset zeroes every cell.
func (f *ScalarField) Reset() {
	clear(f.Val)
}
