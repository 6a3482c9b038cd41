package systems

// Rect is an axis-aligned rectangle with inclusive edges.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// RectAround returns the square of half-side r centered on (x, y).
func RectAround(x, y, r float64) Rect {
	return Rect{MinX: x - r, MinY: y - r, MaxX: x + r, MaxY: y + r}
}

// Intersects reports whether two rectangles overlap, touching edges included.
func (r Rect) Intersects(o Rect) bool {
	return r.MinX <= o.MaxX && o.MinX <= r.MaxX && r.MinY <= o.MaxY && o.MinY <= r.MaxY
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

type quadItem[H comparable] struct {
	handle H
	rect   Rect
}

// QuadTree indexes static rectangles for range queries. Items straddling a
// quadrant boundary are stored in every overlapping child; Query removes the
// duplicates before returning.
type QuadTree[H comparable] struct {
	bounds   Rect
	maxItems int
	maxDepth int
	count    int

	items    []quadItem[H]
	children *[4]QuadTree[H]
}

// NewQuadTree creates an empty tree. A leaf splits once it holds more than
// maxItems and maxDepth > 0.
func NewQuadTree[H comparable](bounds Rect, maxItems, maxDepth int) *QuadTree[H] {
	if maxItems < 1 {
		maxItems = 1
	}
	if maxDepth < 0 {
		maxDepth = 0
	}
	return &QuadTree[H]{bounds: bounds, maxItems: maxItems, maxDepth: maxDepth}
}

// Bounds returns the region covered by the tree.
func (q *QuadTree[H]) Bounds() Rect { return q.bounds }

// Len returns the number of successful inserts since the last Clear.
func (q *QuadTree[H]) Len() int { return q.count }

// Clear removes all items and collapses subdivisions.
func (q *QuadTree[H]) Clear() {
	q.items = q.items[:0]
	q.children = nil
	q.count = 0
}

// Insert adds handle with bounding rect. It returns false if rect does not
// intersect the tree bounds.
func (q *QuadTree[H]) Insert(h H, rect Rect) bool {
	if !q.insert(quadItem[H]{handle: h, rect: rect}) {
		return false
	}
	q.count++
	return true
}

func (q *QuadTree[H]) insert(it quadItem[H]) bool {
	if !q.bounds.Intersects(it.rect) {
		return false
	}

	if q.children == nil {
		q.items = append(q.items, it)
		if len(q.items) > q.maxItems && q.maxDepth > 0 {
			q.subdivide()
		}
		return true
	}

	inserted := false
	for i := range q.children {
		if q.children[i].insert(it) {
			inserted = true
		}
	}
	return inserted
}

// subdivide splits this leaf into four quadrants and pushes items down.
func (q *QuadTree[H]) subdivide() {
	b := q.bounds
	midX := b.MinX + b.Width()/2
	midY := b.MinY + b.Height()/2
	depth := q.maxDepth - 1

	q.children = &[4]QuadTree[H]{
		{bounds: Rect{b.MinX, b.MinY, midX, midY}, maxItems: q.maxItems, maxDepth: depth},
		{bounds: Rect{midX, b.MinY, b.MaxX, midY}, maxItems: q.maxItems, maxDepth: depth},
		{bounds: Rect{b.MinX, midY, midX, b.MaxY}, maxItems: q.maxItems, maxDepth: depth},
		{bounds: Rect{midX, midY, b.MaxX, b.MaxY}, maxItems: q.maxItems, maxDepth: depth},
	}

	items := q.items
	q.items = nil
	for _, it := range items {
		for i := range q.children {
			q.children[i].insert(it)
		}
	}
}

// Query returns every handle whose rect intersects rect, without duplicates.
func (q *QuadTree[H]) Query(rect Rect) []H {
	return q.QueryInto(nil, rect)
}

// QueryInto appends matches to dst and returns the extended slice.
// Reuse dst across calls to avoid allocations.
func (q *QuadTree[H]) QueryInto(dst []H, rect Rect) []H {
	start := len(dst)
	dst = q.collect(dst, rect)

	// Straddling items are reported once per overlapping leaf
	out := dst[:start]
	for _, h := range dst[start:] {
		seen := false
		for _, o := range out[start:] {
			if o == h {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, h)
		}
	}
	return out
}

func (q *QuadTree[H]) collect(dst []H, rect Rect) []H {
	if !q.bounds.Intersects(rect) {
		return dst
	}
	for _, it := range q.items {
		if it.rect.Intersects(rect) {
			dst = append(dst, it.handle)
		}
	}
	if q.children != nil {
		for i := range q.children {
			dst = q.children[i].collect(dst, rect)
		}
	}
	return dst
}
