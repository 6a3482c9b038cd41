package systems

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func TestQuadTreeInsertOutside(t *testing.T) {
	q := NewQuadTree[int](Rect{0, 0, 100, 100}, 4, 4)

	if q.Insert(1, Rect{200, 200, 210, 210}) {
		t.Error("expected insert outside bounds to fail")
	}
	if !q.Insert(2, Rect{95, 95, 105, 105}) {
		t.Error("expected insert overlapping bounds to succeed")
	}
	if q.Len() != 1 {
		t.Errorf("expected Len 1, got %d", q.Len())
	}
}

func TestQuadTreeQueryEdges(t *testing.T) {
	q := NewQuadTree[int](Rect{0, 0, 100, 100}, 1, 4)
	q.Insert(1, Rect{10, 10, 20, 20})
	q.Insert(2, Rect{50, 50, 50, 50}) // point on the split lines
	q.Insert(3, Rect{80, 80, 90, 90})

	tests := []struct {
		name  string
		query Rect
		want  []int
	}{
		{"touching edge", Rect{20, 20, 30, 30}, []int{1}},
		{"point item", Rect{40, 40, 50, 50}, []int{2}},
		{"whole world", Rect{0, 0, 100, 100}, []int{1, 2, 3}},
		{"empty region", Rect{60, 10, 70, 20}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := q.Query(tt.query)
			slices.Sort(got)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Query(%v) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestQuadTreeNoDuplicates(t *testing.T) {
	q := NewQuadTree[int](Rect{0, 0, 100, 100}, 1, 6)
	// Straddles all four top-level quadrants
	q.Insert(7, Rect{40, 40, 60, 60})
	for i := 0; i < 10; i++ {
		q.Insert(i+100, Rect{float64(i), float64(i), float64(i) + 1, float64(i) + 1})
	}

	got := q.Query(Rect{0, 0, 100, 100})
	count := 0
	for _, h := range got {
		if h == 7 {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected straddling item once, got %d times", count)
	}
	if len(got) != 11 {
		t.Errorf("expected 11 results, got %d", len(got))
	}
}

// Results must match a brute-force scan for random items and queries.
func TestQuadTreeMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	bounds := Rect{0, 0, 500, 300}

	for _, cfg := range []struct{ items, depth int }{{1, 0}, {2, 3}, {4, 6}, {8, 8}} {
		q := NewQuadTree[int](bounds, cfg.items, cfg.depth)
		var rects []Rect
		for i := 0; i < 300; i++ {
			x := rng.Float64() * 500
			y := rng.Float64() * 300
			r := rng.Float64() * 20
			if i%10 == 0 {
				// Duplicate coordinates
				x, y = 250, 150
			}
			rect := RectAround(x, y, r)
			rects = append(rects, rect)
			q.Insert(i, rect)
		}

		var buf []int
		for k := 0; k < 200; k++ {
			query := RectAround(rng.Float64()*500, rng.Float64()*300, rng.Float64()*60)
			// Keep queries inside the tree bounds
			query.MinX = max(query.MinX, bounds.MinX)
			query.MinY = max(query.MinY, bounds.MinY)
			query.MaxX = min(query.MaxX, bounds.MaxX)
			query.MaxY = min(query.MaxY, bounds.MaxY)

			var want []int
			for i, r := range rects {
				if r.Intersects(query) {
					want = append(want, i)
				}
			}

			buf = q.QueryInto(buf[:0], query)
			got := slices.Clone(buf)
			slices.Sort(got)
			if !slices.Equal(got, want) {
				t.Fatalf("items=%d depth=%d query %v: got %v, want %v", cfg.items, cfg.depth, query, got, want)
			}
		}
	}
}

func TestQuadTreeClear(t *testing.T) {
	q := NewQuadTree[int](Rect{0, 0, 10, 10}, 1, 3)
	for i := 0; i < 5; i++ {
		q.Insert(i, Rect{1, 1, 2, 2})
	}
	q.Clear()

	if q.Len() != 0 {
		t.Errorf("expected Len 0 after Clear, got %d", q.Len())
	}
	if got := q.Query(q.Bounds()); len(got) != 0 {
		t.Errorf("expected empty query after Clear, got %v", got)
	}
}
