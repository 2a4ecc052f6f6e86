package profiler

import (
	"errors"
	"math"
	"testing"

	"github.com/banshee-data/profiler.report/internal/testutil"
)

func TestCAXShift(t *testing.T) {
	field := testutil.StandardField()
	tests := []struct {
		name  string
		n     int
		shift float64
	}{
		{"AB centred", testutil.ABDetectors, 0},
		{"AB shifted right", testutil.ABDetectors, 0.3},
		{"AB shifted left", testutil.ABDetectors, -0.45},
		{"GT centred", testutil.GTDetectors, 0},
		{"GT shifted", testutil.GTDetectors, 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := testutil.Positions(tt.n, testutil.Spacing)
			doses := testutil.Sample(pos, field, tt.shift)

			got, err := CAXShift(pos, doses)
			if err != nil {
				t.Fatal(err)
			}
			testutil.AssertNear(t, "shift", got, tt.shift, 1e-9)
		})
	}
}

func TestCAXCorrect_RecentresProfile(t *testing.T) {
	field := testutil.StandardField()
	pos := testutil.Positions(testutil.ABDetectors, testutil.Spacing)
	doses := testutil.Sample(pos, field, 0.5)

	got, err := CAXCorrect(pos, doses)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(doses) {
		t.Fatalf("len = %d, want %d", len(got), len(doses))
	}

	// A whole-detector shift maps samples exactly onto the centred field,
	// including the extrapolated edge.
	want := testutil.Sample(pos, field, 0)
	for i := range want {
		testutil.AssertNear(t, "dose", got[i], want[i], 1e-9)
	}
}

func TestCAXCorrect_Idempotent(t *testing.T) {
	field := testutil.StandardField()
	pos := testutil.Positions(testutil.GTDetectors, testutil.Spacing)
	doses := testutil.Sample(pos, field, 0.3)

	once, err := CAXCorrect(pos, doses)
	if err != nil {
		t.Fatal(err)
	}
	shift, err := CAXShift(pos, once)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertNear(t, "residual shift", shift, 0, 1e-9)

	twice, err := CAXCorrect(pos, once)
	if err != nil {
		t.Fatal(err)
	}
	for i := range once {
		testutil.AssertNear(t, "dose", twice[i], once[i], 1e-9)
	}
}

func TestCAXCorrect_ExtrapolatesLinearly(t *testing.T) {
	// Straight ramps on each side; shifting by 1 must continue the outer
	// slope past the last sample instead of clamping.
	pos := []float64{-3, -2, -1, 0, 1, 2, 3, 4}
	doses := []float64{10, 20, 30, 40, 50, 40, 30, 20}
	// Left crossing at -1.5, right crossing at 3.5 → shift 1.
	shift, err := CAXShift(pos, doses)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertNear(t, "shift", shift, 1, 1e-12)

	got, err := CAXCorrect(pos, doses)
	if err != nil {
		t.Fatal(err)
	}
	// Value at x comes from the original at x+1.
	testutil.AssertNear(t, "first", got[0], 20, 1e-12)
	testutil.AssertNear(t, "last", got[7], 10, 1e-12)
}

func TestCAXShift_InvalidShape(t *testing.T) {
	pos := testutil.Positions(testutil.ABDetectors, testutil.Spacing)
	field := testutil.StandardField()

	noisy := testutil.Sample(pos, field, 0)
	// A dip back below 25% in the left penumbra re-crosses the level.
	noisy[5] = 30
	noisy[6] = 20

	flat := make([]float64, len(pos))
	for i := range flat {
		flat[i] = 80
	}

	tests := []struct {
		name      string
		pos, dose []float64
	}{
		{"non-monotonic half", pos, noisy},
		{"never reaches level", pos, flat},
		{"length mismatch", pos, noisy[:10]},
		{"too short", []float64{0, 1}, []float64{10, 50}},
		{"NaN dose", []float64{0, 1, 2, 3}, []float64{10, math.NaN(), 50, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CAXShift(tt.pos, tt.dose)
			if !errors.Is(err, ErrInvalidProfileShape) {
				t.Fatalf("error = %v, want ErrInvalidProfileShape", err)
			}
			if _, err := CAXCorrect(tt.pos, tt.dose); !errors.Is(err, ErrInvalidProfileShape) {
				t.Fatalf("CAXCorrect error = %v, want ErrInvalidProfileShape", err)
			}
		})
	}
}

func TestCAXCorrect_RequiresIncreasingPositions(t *testing.T) {
	pos := []float64{0, 1, 1, 3}
	doses := []float64{10, 50, 50, 10}
	if _, err := CAXCorrect(pos, doses); !errors.Is(err, ErrInvalidProfileShape) {
		t.Fatalf("error = %v, want ErrInvalidProfileShape", err)
	}
}
