package qatrack

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/profiler.report/internal/profiler"
)

func TestStaticMetrics(t *testing.T) {
	r := &profiler.StaticResult{
		ABMetrics: profiler.AxisMetrics{Symmetry: 100.4, Flatness: 101.2},
		GTMetrics: profiler.AxisMetrics{Symmetry: 100.7, Flatness: 101.6},
		Error:     profiler.ErrorResult{AverageAB: 0.3, AverageGT: 0.4, MaxAB: 1.1, MaxGT: 1.3},
	}
	want := Results{
		"symAB": 100.4, "homAB": 101.2,
		"symGT": 100.7, "homGT": 101.6,
		"maxAB": 1.1, "maxGT": 1.3,
		"meanAB": 0.3, "meanGT": 0.4,
	}
	if diff := cmp.Diff(want, StaticMetrics(r)); diff != "" {
		t.Errorf("StaticMetrics mismatch (-want +got):\n%s", diff)
	}
}

func TestArcMetrics(t *testing.T) {
	s := &profiler.ArcSummary{
		OverallAvgAB: 0.5, OverallAvgGT: 0.6,
		MaxAB: 1.5, MaxABAngle: 84,
		MaxGT: 1.7, MaxGTAngle: -96,
		SkippedFrames: 2,
	}
	want := Results{
		"overallAvgAB":          0.5,
		"overallAvgGT":          0.6,
		"overallAB_avg_maximum": 1.5,
		"angleABavg_max":        84,
		"overallGT_avg_maximum": 1.7,
		"angleGTavg_max":        -96,
		"numSkippedFrames":      2,
	}
	if diff := cmp.Diff(want, ArcMetrics(s)); diff != "" {
		t.Errorf("ArcMetrics mismatch (-want +got):\n%s", diff)
	}
}

func TestAngleSuffix(t *testing.T) {
	tests := map[int]string{-180: "neg180", -90: "neg90", 0: "0", 90: "90", 180: "180"}
	for angle, want := range tests {
		if got := AngleSuffix(angle); got != want {
			t.Errorf("AngleSuffix(%d) = %q, want %q", angle, got, want)
		}
	}
}

func TestStaticAtAngle_Merge(t *testing.T) {
	at := func(avgAB float64) *profiler.StaticResult {
		return &profiler.StaticResult{Error: profiler.ErrorResult{AverageAB: avgAB, AverageGT: 2, MaxAB: 3, MaxGT: 4}}
	}
	got := StaticAtAngle(at(1), -180).Merge(StaticAtAngle(at(9), 90))

	want := []string{
		"ABmax_90", "ABmax_neg180",
		"GTmax_90", "GTmax_neg180",
		"averageABError_90", "averageABError_neg180",
		"averageGTError_90", "averageGTError_neg180",
	}
	if diff := cmp.Diff(want, got.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if got["averageABError_neg180"] != 1 || got["averageABError_90"] != 9 {
		t.Errorf("unexpected values: %v", got)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := (Results{"maxAB": 1.25}).WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	var back map[string]float64
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if back["maxAB"] != 1.25 {
		t.Errorf("maxAB = %v", back["maxAB"])
	}
}
