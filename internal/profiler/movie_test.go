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

func standardDoses() (ab, gt []float64) {
	field := testutil.StandardField()
	ab = testutil.Sample(testutil.Positions(ABDetectors, testutil.Spacing), field, 0)
	gt = testutil.Sample(testutil.Positions(GTDetectors, testutil.Spacing), field, 0)
	return ab, gt
}

func TestMovie_NumFrames(t *testing.T) {
	ab, gt := standardDoses()
	for _, n := range []int{1, 5, 30, 120} {
		exp := testutil.NewMovieExport(n, ab, gt)
		m, err := ParseMovie(strings.NewReader(exp.Render()))
		require.NoError(t, err)

		total := len(strings.Split(strings.TrimSuffix(exp.Render(), "\n"), "\n"))
		assert.Equal(t, exp.MarkerLine(), m.MarkerLine())
		assert.Equal(t, total-exp.MarkerLine()-2, m.NumFrames(), "frames=%d", n)
		assert.Equal(t, n, m.NumFrames())
	}
}

func TestMovie_NumFramesMinimal(t *testing.T) {
	// Marker on line 1 of 4: T - L - 2 = 4 - 1 - 2 = 1.
	text := "header\nFrames:\ncolumns\n1\t100\t250\n"
	m, err := ParseMovie(strings.NewReader(text))
	require.NoError(t, err)
	assert.Equal(t, 1, m.MarkerLine())
	assert.Equal(t, 1, m.NumFrames())

	// A marker on the last line leaves a negative count.
	m, err = ParseMovie(strings.NewReader("header\nFrames:\n"))
	require.NoError(t, err)
	assert.Equal(t, -1, m.NumFrames())
}

func TestMovie_FirstMarkerWins(t *testing.T) {
	text := "Frames: 12\nnotes\nFrames:\ncolumns\n"
	m, err := ParseMovie(strings.NewReader(text))
	require.NoError(t, err)
	assert.Equal(t, 0, m.MarkerLine())
}

func TestMovie_Frame(t *testing.T) {
	ab, gt := standardDoses()
	exp := testutil.NewMovieExport(10, ab, gt)
	exp.Frames[6] = testutil.MovieFrame{AB: testutil.Scale(ab, 1.05), GT: testutil.Scale(gt, 0.95)}

	m, err := ParseMovie(strings.NewReader(exp.Render()))
	require.NoError(t, err)

	f, err := m.Frame(1)
	require.NoError(t, err)
	assert.Equal(t, 1, f.Index)
	assert.Equal(t, ab, f.AB)
	assert.Equal(t, gt, f.GT)

	f, err = m.Frame(7)
	require.NoError(t, err)
	require.Len(t, f.AB, ABDetectors)
	require.Len(t, f.GT, GTDetectors)
	assert.Equal(t, testutil.Scale(ab, 1.05), f.AB)
	assert.Equal(t, testutil.Scale(gt, 0.95), f.GT)

	f, err = m.Frame(10)
	require.NoError(t, err)
	assert.Equal(t, 10, f.Index)
}

func TestMovie_FrameOutOfRange(t *testing.T) {
	ab, gt := standardDoses()
	m, err := ParseMovie(strings.NewReader(testutil.NewMovieExport(10, ab, gt).Render()))
	require.NoError(t, err)

	for _, n := range []int{-1, 0, 11, 500} {
		_, err := m.Frame(n)
		assert.True(t, errors.Is(err, ErrFrameIndexOutOfRange), "frame %d: %v", n, err)
	}
}

func TestMovie_Malformed(t *testing.T) {
	ab, gt := standardDoses()

	t.Run("no marker", func(t *testing.T) {
		_, err := ParseMovie(strings.NewReader("Version:\t1\nFrame\tTime\n1\t2\t3\n"))
		assert.True(t, errors.Is(err, ErrMalformedMovieFile), "error = %v", err)
	})

	t.Run("short row", func(t *testing.T) {
		exp := testutil.NewMovieExport(3, ab, gt)
		exp.Frames[1] = testutil.MovieFrame{AB: ab, GT: gt[:10]}
		m, err := ParseMovie(strings.NewReader(exp.Render()))
		require.NoError(t, err)

		_, err = m.Frame(1)
		require.NoError(t, err)
		_, err = m.Frame(2)
		assert.True(t, errors.Is(err, ErrMalformedMovieFile), "error = %v", err)
		assert.False(t, errors.Is(err, ErrFrameIndexOutOfRange))
	})

	t.Run("bad number", func(t *testing.T) {
		text := strings.Replace(testutil.NewMovieExport(2, ab, gt).Render(), "\t12,5\t", "\tx\t", 1)
		m, err := ParseMovie(strings.NewReader(text))
		require.NoError(t, err)
		_, err = m.Frame(1)
		assert.True(t, errors.Is(err, ErrMalformedMovieFile), "error = %v", err)
	})
}

func TestGetNumFramesAndExtractFrame(t *testing.T) {
	ab, gt := standardDoses()
	mfs := fsutil.NewMemoryFileSystem()
	mfs.AddFile("/movies/arc.txt", []byte(testutil.NewMovieExport(30, ab, gt).Render()))

	n, err := GetNumFrames(mfs, "/movies/arc.txt")
	require.NoError(t, err)
	assert.Equal(t, 30, n)

	f, err := ExtractFrame(mfs, "/movies/arc.txt", 30)
	require.NoError(t, err)
	assert.Equal(t, ab, f.AB)

	_, err = ExtractFrame(mfs, "/movies/arc.txt", 31)
	assert.True(t, errors.Is(err, ErrFrameIndexOutOfRange), "error = %v", err)

	_, err = GetNumFrames(mfs, "/movies/missing.txt")
	assert.True(t, errors.Is(err, ErrFileNotFound), "error = %v", err)
	_, err = ExtractFrame(mfs, "/movies/missing.txt", 1)
	assert.True(t, errors.Is(err, ErrFileNotFound), "error = %v", err)
}
