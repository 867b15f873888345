package common

import "math"

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Distance returns the euclidean distance between two points.
func Distance(x0, y0, x1, y1 float64) float64 {
	return math.Hypot(x1-x0, y1-y0)
}

// Normalize returns the unit vector of (x, y), or ok=false for a zero
// vector.
func Normalize(x, y float64) (nx, ny float64, ok bool) {
	l := math.Hypot(x, y)
	if l <= 1e-9 {
		return 0, 0, false
	}
	return x / l, y / l, true
}

// WrapAngle maps an angle in radians to (-Pi, Pi].
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// LerpAngle interpolates from a towards b along the shorter arc. t is
// clamped to [0, 1]; the result is wrapped to (-Pi, Pi].
func LerpAngle(a, b, t float64) float64 {
	diff := WrapAngle(b - a)
	return WrapAngle(a + diff*Clamp01(t))
}
