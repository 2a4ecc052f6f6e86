package profiler

import (
	"fmt"
	"math"
)

// CAXDoseLevel is the normalised dose, in percent, at which each penumbra is
// located when estimating the central axis.
const CAXDoseLevel = 25.0

// CAXShift estimates how far the beam's central axis sits from the detector
// origin. The profile is split at len/2; each half is inverted dose→position
// at CAXDoseLevel and the shift is the mean of the two crossing positions.
func CAXShift(positions, doses []float64) (float64, error) {
	if len(positions) != len(doses) {
		return 0, fmt.Errorf("%w: %d positions for %d doses", ErrInvalidProfileShape, len(positions), len(doses))
	}
	mid := len(positions) / 2
	left, err := invertAt(positions[:mid], doses[:mid], CAXDoseLevel)
	if err != nil {
		return 0, fmt.Errorf("left half: %w", err)
	}
	right, err := invertAt(positions[mid:], doses[mid:], CAXDoseLevel)
	if err != nil {
		return 0, fmt.Errorf("right half: %w", err)
	}
	return (left + right) / 2, nil
}

// CAXCorrect re-centres a profile on its central axis. The positions are
// shifted by CAXShift and the doses are resampled from the shifted grid back
// onto the original one, extrapolating linearly at the edges. The result has
// the same length and order as doses.
func CAXCorrect(positions, doses []float64) ([]float64, error) {
	shift, err := CAXShift(positions, doses)
	if err != nil {
		return nil, err
	}

	shifted := make([]float64, len(positions))
	for i, x := range positions {
		shifted[i] = x - shift
	}
	f, err := fitLinear(shifted, doses)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(positions))
	for i, x := range positions {
		out[i] = f.At(x)
	}
	return out, nil
}

// invertAt returns the position at which a half-profile passes through level.
// The inversion is only defined when the half crosses the level exactly once;
// a half that never reaches it, or that re-crosses it because of noise, is
// rejected rather than guessed at.
func invertAt(positions, doses []float64, level float64) (float64, error) {
	if len(doses) < 2 {
		return 0, fmt.Errorf("%w: half-profile has %d samples", ErrInvalidProfileShape, len(doses))
	}

	crossing := -1
	for i := 0; i+1 < len(doses); i++ {
		if math.IsNaN(doses[i]) || math.IsNaN(doses[i+1]) {
			return 0, fmt.Errorf("%w: NaN dose at detector %d", ErrInvalidProfileShape, i)
		}
		if (doses[i] < level) != (doses[i+1] < level) {
			if crossing >= 0 {
				return 0, fmt.Errorf("%w: dose crosses %.0f%% more than once (detectors %d and %d)",
					ErrInvalidProfileShape, level, crossing, i)
			}
			crossing = i
		}
	}
	if crossing < 0 {
		return 0, fmt.Errorf("%w: dose never crosses %.0f%%", ErrInvalidProfileShape, level)
	}

	d0, d1 := doses[crossing], doses[crossing+1]
	x0, x1 := positions[crossing], positions[crossing+1]
	if d0 > d1 {
		d0, d1 = d1, d0
		x0, x1 = x1, x0
	}
	f, err := fitLinear([]float64{d0, d1}, []float64{x0, x1})
	if err != nil {
		return 0, err
	}
	return f.At(level), nil
}
