package profiler

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/banshee-data/profiler.report/internal/fsutil"
)

// Detector counts and section layout of a profile export.
const (
	ABDetectors = 63
	GTDetectors = 65

	// flatnessOffset and symmetryOffset are the line offsets, relative to an
	// axis-analysis marker, of the lines carrying the firmware's values.
	flatnessOffset = 7
	symmetryOffset = 8

	// metricToken precedes the value on the flatness and symmetry lines.
	metricToken = "perc"
)

// Section markers, matched against normalised line keys.
const (
	markerABAnalysis = "X Axis Analysis"
	markerGTAnalysis = "Y Axis Analysis"
	markerABTable    = "Detector ID X Axis"
	markerGTTable    = "Detector ID Y Axis"
)

// Axis identifies one of the detector array's two measurement axes.
type Axis string

const (
	AxisAB Axis = "AB"
	AxisGT Axis = "GT"
)

// AxisProfile is one axis of a profile: detector positions and doses.
type AxisProfile struct {
	Positions []float64
	Doses     []float64
}

// Len returns the number of detectors in the profile.
func (p AxisProfile) Len() int { return len(p.Doses) }

// AxisMetrics carries the firmware-computed beam-quality values for one axis.
// They are passed through unchanged.
type AxisMetrics struct {
	Flatness float64
	Symmetry float64
}

// ProfileReport is the structured content of a profile export, before CAX
// correction.
type ProfileReport struct {
	AB        AxisProfile
	GT        AxisProfile
	ABMetrics AxisMetrics
	GTMetrics AxisMetrics
}

// ReferenceProfile is a CAX-corrected profile plus its summary metrics. It is
// loaded once per analysis run and never mutated afterwards.
type ReferenceProfile struct {
	AB        AxisProfile
	GT        AxisProfile
	ABMetrics AxisMetrics
	GTMetrics AxisMetrics
}

// ParseProfileReport extracts the axis-analysis and detector-table sections
// from a tokenized export.
func ParseProfileReport(doc *Document) (*ProfileReport, error) {
	abMetrics, err := parseAxisMetrics(doc, markerABAnalysis)
	if err != nil {
		return nil, err
	}
	gtMetrics, err := parseAxisMetrics(doc, markerGTAnalysis)
	if err != nil {
		return nil, err
	}
	ab, err := parseDetectorTable(doc, markerABTable, ABDetectors)
	if err != nil {
		return nil, err
	}
	gt, err := parseDetectorTable(doc, markerGTTable, GTDetectors)
	if err != nil {
		return nil, err
	}
	return &ProfileReport{AB: ab, GT: gt, ABMetrics: abMetrics, GTMetrics: gtMetrics}, nil
}

func parseAxisMetrics(doc *Document, marker string) (AxisMetrics, error) {
	idx, ok := doc.Find(marker)
	if !ok {
		return AxisMetrics{}, fmt.Errorf("%w: section %q not found", ErrMalformedReferenceFile, marker)
	}
	flatness, err := percValue(doc, idx+flatnessOffset)
	if err != nil {
		return AxisMetrics{}, fmt.Errorf("%w: %s flatness: %v", ErrMalformedReferenceFile, marker, err)
	}
	symmetry, err := percValue(doc, idx+symmetryOffset)
	if err != nil {
		return AxisMetrics{}, fmt.Errorf("%w: %s symmetry: %v", ErrMalformedReferenceFile, marker, err)
	}
	return AxisMetrics{Flatness: flatness, Symmetry: symmetry}, nil
}

func percValue(doc *Document, idx int) (float64, error) {
	line, ok := doc.Line(idx)
	if !ok {
		return 0, fmt.Errorf("line %d missing", idx+1)
	}
	_, after, found := strings.Cut(line.Raw, metricToken)
	if !found {
		return 0, fmt.Errorf("line %d has no %q token", idx+1, metricToken)
	}
	v, err := parseLocaleFloat(after)
	if err != nil {
		return 0, fmt.Errorf("line %d: %v", idx+1, err)
	}
	return v, nil
}

func parseDetectorTable(doc *Document, marker string, rows int) (AxisProfile, error) {
	idx, ok := doc.Find(marker)
	if !ok {
		return AxisProfile{}, fmt.Errorf("%w: section %q not found", ErrMalformedReferenceFile, marker)
	}
	p := AxisProfile{
		Positions: make([]float64, 0, rows),
		Doses:     make([]float64, 0, rows),
	}
	for k := 1; k <= rows; k++ {
		line, ok := doc.Line(idx + k)
		if !ok {
			return AxisProfile{}, fmt.Errorf("%w: %s: expected %d rows, file ends after %d", ErrMalformedReferenceFile, marker, rows, k-1)
		}
		vals, err := parseColumns(line.Fields, 0, 2)
		if err != nil {
			return AxisProfile{}, fmt.Errorf("%w: %s line %d: %v", ErrMalformedReferenceFile, marker, line.Index+1, err)
		}
		p.Positions = append(p.Positions, vals[0])
		p.Doses = append(p.Doses, vals[1])
	}
	return p, nil
}

// NewReferenceProfile CAX-corrects both axes of a parsed report.
func NewReferenceProfile(rep *ProfileReport) (*ReferenceProfile, error) {
	ab, err := CAXCorrect(rep.AB.Positions, rep.AB.Doses)
	if err != nil {
		return nil, fmt.Errorf("AB axis: %w", err)
	}
	gt, err := CAXCorrect(rep.GT.Positions, rep.GT.Doses)
	if err != nil {
		return nil, fmt.Errorf("GT axis: %w", err)
	}
	return &ReferenceProfile{
		AB:        AxisProfile{Positions: cloneFloats(rep.AB.Positions), Doses: ab},
		GT:        AxisProfile{Positions: cloneFloats(rep.GT.Positions), Doses: gt},
		ABMetrics: rep.ABMetrics,
		GTMetrics: rep.GTMetrics,
	}, nil
}

// ParseReference tokenizes, parses and CAX-corrects a profile export.
func ParseReference(r io.Reader) (*ReferenceProfile, error) {
	doc, err := Tokenize(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReferenceFile, err)
	}
	rep, err := ParseProfileReport(doc)
	if err != nil {
		return nil, err
	}
	return NewReferenceProfile(rep)
}

// LoadReference reads a profile export from fsys. The same loader serves
// reference files and static candidate snapshots.
func LoadReference(fsys fsutil.FileSystem, path string) (*ReferenceProfile, error) {
	f, err := openExport(fsys, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ref, err := ParseReference(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ref, nil
}

func openExport(fsys fsutil.FileSystem, path string) (io.ReadCloser, error) {
	f, err := fsutil.OpenExport(fsys, path)
	if err != nil {
		if errors.Is(err, fsutil.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}
	return f, nil
}

func cloneFloats(in []float64) []float64 {
	out := make([]float64, len(in))
	copy(out, in)
	return out
}
