package profiler

import (
	"fmt"
	"io"

	"github.com/banshee-data/profiler.report/internal/fsutil"
)

// Frame table layout of a movie export.
const (
	markerFrames = "Frames:"

	// Columns of a frame row, 0-based with exclusive upper bounds.
	abFirstColumn = 3
	abLastColumn  = abFirstColumn + ABDetectors // 66
	gtFirstColumn = abLastColumn
	gtLastColumn  = gtFirstColumn + GTDetectors // 131

	// frameTableHeaderLines are the marker line and the column header
	// below it; every later line is a frame row.
	frameTableHeaderLines = 2
)

// Frame is one time step of a movie: raw AB and GT doses, not CAX corrected.
type Frame struct {
	Index int
	AB    []float64
	GT    []float64
}

// Movie is a tokenized movie export positioned on its frame table.
type Movie struct {
	doc    *Document
	marker int
}

// ParseMovie tokenizes a movie export and locates the frame table.
func ParseMovie(r io.Reader) (*Movie, error) {
	doc, err := Tokenize(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMovieFile, err)
	}
	return NewMovie(doc)
}

// NewMovie wraps an already tokenized movie export.
func NewMovie(doc *Document) (*Movie, error) {
	idx, ok := doc.Find(markerFrames)
	if !ok {
		return nil, fmt.Errorf("%w: %q marker not found", ErrMalformedMovieFile, markerFrames)
	}
	return &Movie{doc: doc, marker: idx}, nil
}

// LoadMovie reads a movie export from fsys.
func LoadMovie(fsys fsutil.FileSystem, path string) (*Movie, error) {
	f, err := openExport(fsys, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := ParseMovie(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// MarkerLine returns the 0-based index of the frame table marker.
func (m *Movie) MarkerLine() int { return m.marker }

// NumFrames is the total line count minus the marker index minus two. The
// offset encodes the export's header convention and is kept exact; it may be
// negative for a truncated file.
func (m *Movie) NumFrames() int {
	return m.doc.Len() - m.marker - frameTableHeaderLines
}

// Frame returns frame n (1-based), found on line marker+1+n.
func (m *Movie) Frame(n int) (*Frame, error) {
	row := m.marker + 1 + n
	line, ok := m.doc.Line(row)
	if n < 1 || !ok {
		return nil, fmt.Errorf("%w: frame %d (movie has %d frames)", ErrFrameIndexOutOfRange, n, m.NumFrames())
	}
	ab, err := parseColumns(line.Fields, abFirstColumn, abLastColumn)
	if err != nil {
		return nil, fmt.Errorf("%w: frame %d AB (line %d): %v", ErrMalformedMovieFile, n, row+1, err)
	}
	gt, err := parseColumns(line.Fields, gtFirstColumn, gtLastColumn)
	if err != nil {
		return nil, fmt.Errorf("%w: frame %d GT (line %d): %v", ErrMalformedMovieFile, n, row+1, err)
	}
	return &Frame{Index: n, AB: ab, GT: gt}, nil
}

// GetNumFrames loads a movie and returns its frame count.
func GetNumFrames(fsys fsutil.FileSystem, path string) (int, error) {
	m, err := LoadMovie(fsys, path)
	if err != nil {
		return 0, err
	}
	return m.NumFrames(), nil
}

// ExtractFrame loads a movie and returns one frame of it.
func ExtractFrame(fsys fsutil.FileSystem, path string, n int) (*Frame, error) {
	m, err := LoadMovie(fsys, path)
	if err != nil {
		return nil, err
	}
	return m.Frame(n)
}
