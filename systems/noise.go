package systems

import (
	"math/rand/v2"

	"github.com/aquilax/go-perlin"

	"github.com/pthm-cable/trail/components"
	"github.com/pthm-cable/trail/config"
)

// Perlin parameters for food placement
const (
	perlinAlpha  = 2.0
	perlinBeta   = 2.0
	perlinOctave = 3

	// Attempts to find a spot clear of the nest before giving up.
	placementTries = 32
)

// FoodPlacer picks positions for new food sources. With noise enabled the
// best of several random candidates under a Perlin field wins, so food
// clusters in fertile regions across respawns.
type FoodPlacer struct {
	rng   *rand.Rand
	noise *perlin.Perlin

	minX, minY, maxX, maxY float64

	nest       components.Nest
	foodRadius float64
	scale      float64
	candidates int
}

// NewFoodPlacer creates a placer for cfg. rng drives every choice, so the
// sequence of positions is reproducible for a given seed.
func NewFoodPlacer(cfg *config.Config, nest components.Nest, rng *rand.Rand) *FoodPlacer {
	p := &FoodPlacer{
		rng:        rng,
		minX:       cfg.Food.Margin,
		minY:       cfg.Food.Margin,
		maxX:       cfg.World.Width - cfg.Food.Margin,
		maxY:       cfg.World.Height - cfg.Food.Margin,
		nest:       nest,
		foodRadius: cfg.Food.Radius,
		scale:      cfg.Food.NoiseScale,
		candidates: cfg.Food.NoiseCandidates,
	}
	if cfg.Food.Respawn == config.RespawnNoise {
		p.noise = perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctave, rng.Int64())
	}
	return p
}

// Place returns the position for the next food source.
func (p *FoodPlacer) Place() components.Position {
	if p.noise == nil || p.candidates <= 1 {
		return p.random()
	}

	best := p.random()
	bestVal := p.fertility(best)
	for i := 1; i < p.candidates; i++ {
		c := p.random()
		if v := p.fertility(c); v > bestVal {
			best, bestVal = c, v
		}
	}
	return best
}

// fertility returns the noise value at pos, or 0 without noise.
func (p *FoodPlacer) fertility(pos components.Position) float64 {
	if p.noise == nil {
		return 0
	}
	return p.noise.Noise2D(pos.X*p.scale, pos.Y*p.scale)
}

// random draws a uniform position inside the margin, avoiding the nest.
func (p *FoodPlacer) random() components.Position {
	gap := p.nest.Radius + p.foodRadius
	var pos components.Position
	for range placementTries {
		pos = components.Position{
			X: p.minX + p.rng.Float64()*(p.maxX-p.minX),
			Y: p.minY + p.rng.Float64()*(p.maxY-p.minY),
		}
		if distanceSq(pos.X, pos.Y, p.nest.X, p.nest.Y) > gap*gap {
			return pos
		}
	}
	return pos
}
