// Package qatrack maps analysis results onto the result keys used by the
// QATrack+ composite tests that consume them.
package qatrack

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/banshee-data/profiler.report/internal/profiler"
)

// Results is a flat key/value result set.
type Results map[string]float64

// Static result keys, in the order of profiler.StaticResult.Values.
var StaticKeys = []string{"symAB", "homAB", "symGT", "homGT", "maxAB", "maxGT", "meanAB", "meanGT"}

// Arc result keys, in the order of profiler.ArcSummary.Values.
var ArcKeys = []string{
	"overallAvgAB", "overallAvgGT",
	"overallAB_avg_maximum", "angleABavg_max",
	"overallGT_avg_maximum", "angleGTavg_max",
	"numSkippedFrames",
}

// StaticMetrics maps a static comparison onto StaticKeys.
func StaticMetrics(r *profiler.StaticResult) Results {
	return zip(StaticKeys, r.Values())
}

// ArcMetrics maps an arc summary onto ArcKeys.
func ArcMetrics(s *profiler.ArcSummary) Results {
	return zip(ArcKeys, s.Values())
}

func zip(keys []string, vals []float64) Results {
	out := make(Results, len(keys))
	for i, k := range keys {
		out[k] = vals[i]
	}
	return out
}

// AngleSuffix renders a gantry angle the way per-angle test names spell it:
// -180 becomes "neg180", 90 stays "90".
func AngleSuffix(angle int) string {
	if angle < 0 {
		return "neg" + strconv.Itoa(-angle)
	}
	return strconv.Itoa(angle)
}

// StaticAtAngle maps a static comparison taken at a fixed gantry angle onto
// the per-angle keys (averageABError_<angle>, ABmax_<angle> and the GT pair).
func StaticAtAngle(r *profiler.StaticResult, angle int) Results {
	sfx := "_" + AngleSuffix(angle)
	return Results{
		"averageABError" + sfx: r.Error.AverageAB,
		"averageGTError" + sfx: r.Error.AverageGT,
		"ABmax" + sfx:          r.Error.MaxAB,
		"GTmax" + sfx:          r.Error.MaxGT,
	}
}

// Merge copies every key of other into r, overwriting duplicates.
func (r Results) Merge(other Results) Results {
	for k, v := range other {
		r[k] = v
	}
	return r
}

// Keys returns the result names sorted.
func (r Results) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WriteJSON writes r as an indented JSON object.
func (r Results) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}
