package mouse

import "math"

// Rect is an element's bounding box in client (pixel) coordinates.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Contains reports whether the client point lies inside the rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x < r.Left+r.Width &&
		y >= r.Top && y < r.Top+r.Height
}

// Clamp limits v to [-1, 1]. NaN maps to 0.
func Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(math.Max(v, -1), 1)
}

// Normalize maps an absolute coordinate onto [-1, 1] across an element that
// starts at origin and spans extent.
func Normalize(abs, origin, extent float64) float64 {
	return Clamp((abs-origin)/extent*2 - 1)
}

// Smooth amplifies a per-event delta by half of itself.
func Smooth(delta float64) float64 {
	return delta + delta/2
}

// WheelSign returns -1, 0 or +1 following the sign of a wheel delta.
func WheelSign(delta float64) float64 {
	switch {
	case delta > 0:
		return 1
	case delta < 0:
		return -1
	default:
		return 0
	}
}
