package profiler

import (
	"fmt"

	"github.com/banshee-data/profiler.report/internal/fsutil"
)

// StaticResult is the outcome of comparing one profile snapshot with a
// reference. The symmetry and flatness values are the candidate's own.
type StaticResult struct {
	ABMetrics AxisMetrics
	GTMetrics AxisMetrics
	Error     ErrorResult
}

// Values returns the result in the order the QA host expects:
// symmetry and flatness per axis, then maxima, then averages.
func (r StaticResult) Values() []float64 {
	return []float64{
		r.ABMetrics.Symmetry, r.ABMetrics.Flatness,
		r.GTMetrics.Symmetry, r.GTMetrics.Flatness,
		r.Error.MaxAB, r.Error.MaxGT,
		r.Error.AverageAB, r.Error.AverageGT,
	}
}

// CompareStatic compares an already loaded candidate with a reference.
func CompareStatic(cand, ref *ReferenceProfile, m Modality) (*StaticResult, error) {
	res, err := ComputeError(cand.AB.Doses, cand.GT.Doses, ref.AB.Doses, ref.GT.Doses, m)
	if err != nil {
		return nil, err
	}
	return &StaticResult{
		ABMetrics: cand.ABMetrics,
		GTMetrics: cand.GTMetrics,
		Error:     res,
	}, nil
}

// AnalyzeStatic loads a candidate snapshot and a reference, both CAX
// corrected, and compares them once.
func AnalyzeStatic(fsys fsutil.FileSystem, path, refPath string, m Modality) (*StaticResult, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w (got %s)", ErrInvalidModality, m)
	}
	ref, err := LoadReference(fsys, refPath)
	if err != nil {
		return nil, fmt.Errorf("load reference: %w", err)
	}
	cand, err := LoadReference(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return CompareStatic(cand, ref, m)
}
