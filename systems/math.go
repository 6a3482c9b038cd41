package systems

import (
	"math"
	"math/rand/v2"
)

// Angle normalization functions

// normalizeAngle wraps an angle to [-Pi, Pi].
// Non-finite input yields NaN so callers can detect it.
func normalizeAngle(angle float64) float64 {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return math.NaN()
	}
	angle = math.Mod(angle, 2*math.Pi)
	if angle > math.Pi {
		angle -= 2 * math.Pi
	} else if angle < -math.Pi {
		angle += 2 * math.Pi
	}
	return angle
}

// NormalizeAngle wraps an angle to [-Pi, Pi].
func NormalizeAngle(angle float64) float64 {
	return normalizeAngle(angle)
}

// RandomHeading returns a uniformly distributed heading in [-Pi, Pi).
func RandomHeading(rng *rand.Rand) float64 {
	return rng.Float64()*2*math.Pi - math.Pi
}

// clampFloat clamps v between minVal and maxVal.
func clampFloat(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// Distance functions

// distanceSq returns the squared distance between two points.
func distanceSq(x1, y1, x2, y2 float64) float64 {
	dx := x1 - x2
	dy := y1 - y2
	return dx*dx + dy*dy
}

// unit normalizes (x, y). ok is false for zero-length or non-finite vectors.
func unit(x, y float64) (ux, uy float64, ok bool) {
	l := math.Hypot(x, y)
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return 0, 0, false
	}
	return x / l, y / l, true
}

// steer turns heading toward target by at most maxTurn radians.
func steer(heading, target, maxTurn float64) float64 {
	delta := normalizeAngle(target - heading)
	delta = clampFloat(delta, -maxTurn, maxTurn)
	return normalizeAngle(heading + delta)
}

// upperBound returns the largest float64 strictly below limit.
func upperBound(limit float64) float64 {
	return math.Nextafter(limit, math.Inf(-1))
}
