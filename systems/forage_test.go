package systems

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/pthm-cable/trail/components"
	"github.com/pthm-cable/trail/config"
)

func testForageSetup(t *testing.T) (*Senses, ForageParams) {
	t.Helper()
	cfg := config.Defaults()
	cfg.World.Width, cfg.World.Height = 200, 100
	cfg.Recompute()

	searching, err := NewScalarFieldFromConfig(cfg)
	if err != nil {
		t.Fatalf("searching field: %v", err)
	}
	found, err := NewScalarFieldFromConfig(cfg)
	if err != nil {
		t.Fatalf("found field: %v", err)
	}

	s := &Senses{
		Searching: searching,
		Found:     found,
		Nest: components.Nest{
			Position: components.Position{X: cfg.Derived.NestX, Y: cfg.Derived.NestY},
			Radius:   cfg.Nest.Radius,
		},
	}
	p := ForageParamsFromConfig(cfg)
	p.ExploreProb = 0
	return s, p
}

func testForager(state components.State, seed uint64) *components.Forager {
	return &components.Forager{
		State: state,
		Speed: 2,
		Rng:   rand.New(rand.NewPCG(seed, seed+1)),
	}
}

func TestUpdateForagerStaysInBounds(t *testing.T) {
	s, p := testForageSetup(t)
	p.ExploreProb = 0.5
	rng := rand.New(rand.NewPCG(9, 9))

	for i := 0; i < 50; i++ {
		f := testForager(components.State(i%2), uint64(i))
		f.Speed = 0.5 + rng.Float64()*5
		pos := components.Position{X: rng.Float64() * p.WorldW, Y: rng.Float64() * p.WorldH}
		rot := components.Rotation{Heading: RandomHeading(rng)}

		for tick := 0; tick < 500; tick++ {
			in := UpdateForager(pos, rot, f, nil, s, &p)
			if !(in.X >= 0 && in.X < p.WorldW && in.Y >= 0 && in.Y < p.WorldH) {
				t.Fatalf("agent %d tick %d: position (%v,%v) out of bounds", i, tick, in.X, in.Y)
			}
			if math.IsNaN(in.Heading) {
				t.Fatalf("agent %d tick %d: NaN heading", i, tick)
			}
			pos = components.Position{X: in.X, Y: in.Y}
			rot.Heading = in.Heading
		}
	}
}

func TestUpdateForagerExploreChangesHeading(t *testing.T) {
	s, p := testForageSetup(t)
	p.ExploreProb = 1
	f := testForager(components.Searching, 1)

	pos := components.Position{X: 100, Y: 50}
	rot := components.Rotation{Heading: 0}
	for tick := 0; tick < 10; tick++ {
		in := UpdateForager(pos, rot, f, nil, s, &p)
		pos = components.Position{X: in.X, Y: in.Y}
		rot.Heading = in.Heading
	}

	if rot.Heading == 0 {
		t.Error("expected heading to change under full exploration")
	}
}

func TestUpdateForagerNaNHeading(t *testing.T) {
	s, p := testForageSetup(t)
	f := testForager(components.Searching, 2)

	in := UpdateForager(components.Position{X: 100, Y: 50}, components.Rotation{Heading: math.NaN()}, f, nil, s, &p)
	if math.IsNaN(in.Heading) || math.IsNaN(in.X) || math.IsNaN(in.Y) {
		t.Errorf("expected finite result, got heading=%v pos=(%v,%v)", in.Heading, in.X, in.Y)
	}
}

func TestUpdateForagerWallHit(t *testing.T) {
	s, p := testForageSetup(t)
	p.Wander = 0
	f := testForager(components.Searching, 3)

	in := UpdateForager(components.Position{X: 199.5, Y: 50}, components.Rotation{Heading: 0}, f, nil, s, &p)
	if !in.WallHit {
		t.Error("expected wall hit")
	}
	if in.X >= p.WorldW {
		t.Errorf("expected x clamped below %v, got %v", p.WorldW, in.X)
	}
}

func TestUpdateForagerFollowsFoundTrail(t *testing.T) {
	s, p := testForageSetup(t)
	f := testForager(components.Searching, 4)

	// Trail to the east of (55, 55)
	s.Found.Deposit(65, 55, 10)

	in := UpdateForager(components.Position{X: 55, Y: 55}, components.Rotation{Heading: math.Pi / 2}, f, nil, s, &p)
	want := math.Pi/2 - p.MaxTurn
	if math.Abs(in.Heading-want) > 1e-9 {
		t.Errorf("expected heading %v, got %v", want, in.Heading)
	}
}

func TestUpdateForagerReturnsTowardNest(t *testing.T) {
	s, p := testForageSetup(t)
	f := testForager(components.Returning, 5)

	// Nest is straight north (negative y)
	pos := components.Position{X: s.Nest.X, Y: s.Nest.Y + 45}
	in := UpdateForager(pos, components.Rotation{Heading: 0}, f, nil, s, &p)

	if math.Abs(in.Heading+p.MaxTurn) > 1e-9 {
		t.Errorf("expected heading %v, got %v", -p.MaxTurn, in.Heading)
	}
	if in.Deliver {
		t.Error("expected no delivery outside the nest")
	}
	if in.DepositField != FieldFound || in.DepositAmount != p.DepositFound {
		t.Errorf("expected found deposit, got field=%v amount=%v", in.DepositField, in.DepositAmount)
	}
}

func TestUpdateForagerNestCenterDegenerate(t *testing.T) {
	s, p := testForageSetup(t)
	f := testForager(components.Returning, 6)

	pos := components.Position{X: s.Nest.X, Y: s.Nest.Y}
	in := UpdateForager(pos, components.Rotation{Heading: 1}, f, nil, s, &p)

	if !in.Deliver {
		t.Error("expected delivery at the nest center")
	}
	if math.IsNaN(in.Heading) {
		t.Error("expected a finite heading at the nest center")
	}
}

func TestUpdateForagerPickupCandidates(t *testing.T) {
	s, p := testForageSetup(t)
	f := testForager(components.Searching, 7)
	pos := components.Position{X: 50, Y: 50}

	nearby := []FoodSite{
		{Seq: 1, X: 60, Y: 50, Radius: 5, Quantity: 3},  // dist 10
		{Seq: 2, X: 50, Y: 55, Radius: 5, Quantity: 1},  // dist 5
		{Seq: 0, X: 40, Y: 50, Radius: 5, Quantity: 2},  // dist 10, earlier seq
		{Seq: 3, X: 51, Y: 50, Radius: 5, Quantity: 0},  // depleted
		{Seq: 4, X: 95, Y: 50, Radius: 5, Quantity: 10}, // out of reach
	}

	in := UpdateForager(pos, components.Rotation{}, f, nearby, s, &p)
	if !in.Pickup {
		t.Fatal("expected pickup intent")
	}

	wantSeq := []uint64{2, 0, 1}
	if len(in.Candidates) != len(wantSeq) {
		t.Fatalf("expected %d candidates, got %d", len(wantSeq), len(in.Candidates))
	}
	for i, c := range in.Candidates {
		if c.Seq != wantSeq[i] {
			t.Errorf("candidate %d: seq %d, want %d", i, c.Seq, wantSeq[i])
		}
	}
	if in.DepositField != FieldSearching || in.DepositAmount != p.DepositSearching {
		t.Errorf("expected searching deposit, got field=%v amount=%v", in.DepositField, in.DepositAmount)
	}
}

func TestUpdateForagerReturningIgnoresFood(t *testing.T) {
	s, p := testForageSetup(t)
	f := testForager(components.Returning, 8)

	nearby := []FoodSite{{X: 50, Y: 50, Radius: 5, Quantity: 3}}
	in := UpdateForager(components.Position{X: 50, Y: 50}, components.Rotation{}, f, nearby, s, &p)
	if in.Pickup || len(in.Candidates) != 0 {
		t.Error("returning forager must not pick up food")
	}
}

func TestUpdateForagerDeterministic(t *testing.T) {
	s, p := testForageSetup(t)
	p.ExploreProb = 0.3
	s.Found.Deposit(80, 40, 3)

	run := func() []float64 {
		f := testForager(components.Searching, 42)
		pos := components.Position{X: 70, Y: 40}
		rot := components.Rotation{}
		var out []float64
		for i := 0; i < 100; i++ {
			in := UpdateForager(pos, rot, f, nil, s, &p)
			pos = components.Position{X: in.X, Y: in.Y}
			rot.Heading = in.Heading
			out = append(out, in.X, in.Y, in.Heading)
		}
		return out
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("runs diverged at %d: %v vs %v", i, a[i], b[i])
		}
	}
}
