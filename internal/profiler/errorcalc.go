package profiler

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrorResult holds the percentage deviation of a candidate from a reference
// over the modality's analysis windows.
type ErrorResult struct {
	AverageAB float64
	AverageGT float64
	MaxAB     float64
	MaxGT     float64
}

// ComputeError compares candidate doses with reference doses detector by
// detector. The sequences must share index alignment; nothing is resampled
// here. A zero reference dose inside a window aborts with ErrDivisionByZero.
func ComputeError(candAB, candGT, refAB, refGT []float64, m Modality) (ErrorResult, error) {
	abWin, gtWin, err := m.Windows()
	if err != nil {
		return ErrorResult{}, err
	}

	avgAB, maxAB, err := windowError(AxisAB, candAB, refAB, abWin)
	if err != nil {
		return ErrorResult{}, err
	}
	avgGT, maxGT, err := windowError(AxisGT, candGT, refGT, gtWin)
	if err != nil {
		return ErrorResult{}, err
	}
	return ErrorResult{AverageAB: avgAB, AverageGT: avgGT, MaxAB: maxAB, MaxGT: maxGT}, nil
}

// PercentDeviations returns 100*|c-r|/r for every index of w.
func PercentDeviations(axis Axis, cand, ref []float64, w Window) ([]float64, error) {
	if len(cand) < w.Stop || len(ref) < w.Stop {
		return nil, fmt.Errorf("%w: %s needs %d detectors, candidate has %d and reference %d",
			ErrInvalidProfileShape, axis, w.Stop, len(cand), len(ref))
	}
	out := make([]float64, 0, w.Len())
	for i := w.Start; i < w.Stop; i++ {
		if ref[i] == 0 {
			return nil, fmt.Errorf("%w: %s detector %d", ErrDivisionByZero, axis, i)
		}
		d := 100 * math.Abs(cand[i]-ref[i]) / ref[i]
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return nil, fmt.Errorf("%w: %s detector %d gives non-finite deviation", ErrDivisionByZero, axis, i)
		}
		out = append(out, d)
	}
	return out, nil
}

func windowError(axis Axis, cand, ref []float64, w Window) (avg, max float64, err error) {
	devs, err := PercentDeviations(axis, cand, ref, w)
	if err != nil {
		return 0, 0, err
	}
	if len(devs) == 0 {
		return 0, 0, nil
	}
	// The running maximum starts at zero.
	return floats.Sum(devs) / float64(len(devs)), math.Max(0, floats.Max(devs)), nil
}
