package profiler

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// linearInterpolant is a piecewise-linear fit that, unlike
// interp.PiecewiseLinear, extends the first and last segments past the ends
// of the data instead of clamping.
type linearInterpolant struct {
	pl     interp.PiecewiseLinear
	xs, ys []float64
}

// fitLinear fits xs→ys. xs must be strictly increasing with at least two points.
func fitLinear(xs, ys []float64) (*linearInterpolant, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d positions for %d doses", ErrInvalidProfileShape, len(xs), len(ys))
	}
	if len(xs) < 2 {
		return nil, fmt.Errorf("%w: %d samples, need at least 2", ErrInvalidProfileShape, len(xs))
	}
	// interp.PiecewiseLinear panics on unordered input.
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return nil, fmt.Errorf("%w: positions not strictly increasing at sample %d", ErrInvalidProfileShape, i)
		}
	}
	li := &linearInterpolant{xs: xs, ys: ys}
	if err := li.pl.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfileShape, err)
	}
	return li, nil
}

// At evaluates the interpolant, extrapolating linearly outside [xs[0], xs[n-1]].
func (li *linearInterpolant) At(x float64) float64 {
	n := len(li.xs)
	switch {
	case x < li.xs[0]:
		slope := (li.ys[1] - li.ys[0]) / (li.xs[1] - li.xs[0])
		return li.ys[0] + slope*(x-li.xs[0])
	case x > li.xs[n-1]:
		slope := (li.ys[n-1] - li.ys[n-2]) / (li.xs[n-1] - li.xs[n-2])
		return li.ys[n-1] + slope*(x-li.xs[n-1])
	default:
		return li.pl.Predict(x)
	}
}
