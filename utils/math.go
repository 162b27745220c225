package utils

import (
	"math"
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// NormalizeAngle wraps an angle in radians into (-pi, pi].
func NormalizeAngle(rad float64) float64 {
	wrapped := math.Mod(rad+math.Pi, 2*math.Pi)
	if wrapped <= 0 {
		wrapped += 2 * math.Pi
	}
	return wrapped - math.Pi
}

// Square returns n*n. Math.pow( x, 2 ) is slow, this is faster.
func Square(n float64) float64 {
	return n * n
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// IsFinite reports whether none of the values is NaN or infinite.
func IsFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// RateLimit moves from prev towards target by at most maxDelta. A non-positive maxDelta disables
// the limit.
func RateLimit(prev, target, maxDelta float64) float64 {
	if maxDelta <= 0 {
		return target
	}
	return Clamp(target, prev-maxDelta, prev+maxDelta)
}
