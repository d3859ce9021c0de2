package util

import (
	"golang.org/x/exp/constraints"
)

// Coerce returns a value that is at least min and at most max
func Coerce[T constraints.Integer | constraints.Float](value T, min T, max T) T {
	if value > max {
		return max
	}
	if value < min {
		return min
	}
	return value
}

// InterpolateLinear returns the y value at x on the line through (x0, y0) and (x1, y1),
// truncated towards zero. x1 must differ from x0.
// Multiplication happens before the division, so integral results are always exact.
func InterpolateLinear(x, x0, x1, y0, y1 int) int {
	return y0 + (x-x0)*(y1-y0)/(x1-x0)
}
