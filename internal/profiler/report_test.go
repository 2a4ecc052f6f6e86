package profiler

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/profiler.report/internal/fsutil"
	"github.com/banshee-data/profiler.report/internal/testutil"
)

func TestParseReference(t *testing.T) {
	exp := testutil.NewProfileExport(0)

	ref, err := ParseReference(strings.NewReader(exp.Render()))
	require.NoError(t, err)

	assert.Equal(t, ABDetectors, ref.AB.Len())
	assert.Equal(t, GTDetectors, ref.GT.Len())
	assert.InDelta(t, 101.2, ref.ABMetrics.Flatness, 1e-12)
	assert.InDelta(t, 100.4, ref.ABMetrics.Symmetry, 1e-12)
	assert.InDelta(t, 101.6, ref.GTMetrics.Flatness, 1e-12)
	assert.InDelta(t, 100.7, ref.GTMetrics.Symmetry, 1e-12)

	// A centred field is left unchanged by CAX correction.
	for i := range exp.ABDoses {
		assert.InDelta(t, exp.ABDoses[i], ref.AB.Doses[i], 1e-9, "AB detector %d", i)
		assert.InDelta(t, exp.ABPositions[i], ref.AB.Positions[i], 1e-12)
	}
	for i := range exp.GTDoses {
		assert.InDelta(t, exp.GTDoses[i], ref.GT.Doses[i], 1e-9, "GT detector %d", i)
	}
}

func TestParseReference_ToleratesFormattingDrift(t *testing.T) {
	text := testutil.NewProfileExport(0).Render()
	text = strings.Replace(text, "X Axis Analysis", "x axis  ANALYSIS", 1)
	text = strings.Replace(text, "Detector ID Y Axis", "DetectorID  y Axis", 1)

	ref, err := ParseReference(strings.NewReader(text))
	require.NoError(t, err)
	assert.InDelta(t, 101.2, ref.ABMetrics.Flatness, 1e-12)
	assert.Equal(t, GTDetectors, ref.GT.Len())
}

func TestParseProfileReport_KeepsRawDoses(t *testing.T) {
	exp := testutil.NewProfileExport(0.5)
	doc, err := Tokenize(strings.NewReader(exp.Render()))
	require.NoError(t, err)

	rep, err := ParseProfileReport(doc)
	require.NoError(t, err)
	assert.Equal(t, exp.ABDoses, rep.AB.Doses)
	assert.Equal(t, exp.GTPositions, rep.GT.Positions)
}

func TestParseReference_Malformed(t *testing.T) {
	good := testutil.NewProfileExport(0).Render()

	tests := []struct {
		name   string
		mutate func(string) string
	}{
		{"missing AB analysis", func(s string) string {
			return strings.Replace(s, "X Axis Analysis", "Something Else", 1)
		}},
		{"missing GT analysis", func(s string) string {
			return strings.Replace(s, "Y Axis Analysis", "Something Else", 1)
		}},
		{"missing AB table", func(s string) string {
			return strings.Replace(s, "Detector ID X Axis", "Detector List", 1)
		}},
		{"missing GT table", func(s string) string {
			return strings.Replace(s, "Detector ID Y Axis", "Detector List", 1)
		}},
		{"no perc token", func(s string) string {
			return strings.Replace(s, "Flatness\tperc", "Flatness\t%", 1)
		}},
		{"bad metric value", func(s string) string {
			return strings.Replace(s, "perc\t101,2", "perc\tn/a", 1)
		}},
		{"short table row", func(s string) string {
			return strings.Replace(s, "-15,5\t", "-15,5\n", 1)
		}},
		{"bad dose", func(s string) string {
			lines := strings.Split(s, "\n")
			for i, l := range lines {
				if strings.HasPrefix(l, "Detector ID Y Axis") {
					lines[i+3] = "-15\tbad"
				}
			}
			return strings.Join(lines, "\n")
		}},
		{"truncated GT table", func(s string) string {
			lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
			return strings.Join(lines[:len(lines)-5], "\n")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReference(strings.NewReader(tt.mutate(good)))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedReferenceFile), "error = %v", err)
		})
	}
}

func TestLoadReference(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	mfs.AddFile("/refs/VERSA_ref6MV.txt", []byte(testutil.NewProfileExport(0).Render()))
	mfs.AddFile("/refs/broken.txt", []byte("not a profiler export\n"))

	ref, err := LoadReference(mfs, "/refs/VERSA_ref6MV.txt")
	require.NoError(t, err)
	assert.Equal(t, ABDetectors, ref.AB.Len())

	_, err = LoadReference(mfs, "/refs/missing.txt")
	assert.True(t, errors.Is(err, ErrFileNotFound), "error = %v", err)
	assert.False(t, errors.Is(err, ErrMalformedReferenceFile))

	_, err = LoadReference(mfs, "/refs/broken.txt")
	assert.True(t, errors.Is(err, ErrMalformedReferenceFile), "error = %v", err)
	assert.False(t, errors.Is(err, ErrFileNotFound))
	assert.Contains(t, err.Error(), "/refs/broken.txt")
}

func TestLoadReference_InvalidShape(t *testing.T) {
	exp := testutil.NewProfileExport(0)
	// A flat AB profile never reaches the 25% level on either side.
	for i := range exp.ABDoses {
		exp.ABDoses[i] = 100
	}
	mfs := fsutil.NewMemoryFileSystem()
	mfs.AddFile("/flat.txt", []byte(exp.Render()))

	_, err := LoadReference(mfs, "/flat.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidProfileShape), "error = %v", err)
	assert.Contains(t, err.Error(), "AB axis")
}
