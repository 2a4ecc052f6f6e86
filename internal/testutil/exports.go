package testutil

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Detector layout of the synthetic exports.
const (
	ABDetectors = 63
	GTDetectors = 65
	Spacing     = 0.5 // cm between detectors
)

// Positions returns n detector positions centred on zero.
func Positions(n int, spacing float64) []float64 {
	out := make([]float64, n)
	offset := float64(n-1) / 2
	for i := range out {
		out[i] = (float64(i) - offset) * spacing
	}
	return out
}

// Trapezoid returns a normalised field shape: 100 for |x| <= flat, falling
// linearly to floor at |x| = edge and staying at floor beyond it. Linear
// penumbrae make CAX interpolation exact on a grid.
func Trapezoid(flat, edge, floor float64) func(x float64) float64 {
	return func(x float64) float64 {
		ax := math.Abs(x)
		switch {
		case ax <= flat:
			return 100
		case ax >= edge:
			return floor
		default:
			d := 100 * (edge - ax) / (edge - flat)
			return math.Max(d, floor)
		}
	}
}

// StandardField is the 20 cm test field used across tests: flat to ±8 cm,
// crossing 25% at ±11 cm.
func StandardField() func(float64) float64 {
	return Trapezoid(8, 12, 1)
}

// Sample evaluates shape at every position, displaced by shift (a beam whose
// axis sits at +shift).
func Sample(positions []float64, shape func(float64) float64, shift float64) []float64 {
	out := make([]float64, len(positions))
	for i, x := range positions {
		out[i] = shape(x - shift)
	}
	return out
}

// Scale multiplies every value by factor.
func Scale(vals []float64, factor float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = v * factor
	}
	return out
}

// FormatComma renders v with a comma decimal separator.
func FormatComma(v float64) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', -1, 64), ".", ",", 1)
}

// ProfileExport describes a profile snapshot export.
type ProfileExport struct {
	ABPositions []float64
	ABDoses     []float64
	GTPositions []float64
	GTDoses     []float64

	ABFlatness float64
	ABSymmetry float64
	GTFlatness float64
	GTSymmetry float64
}

// NewProfileExport returns the standard field on both axes, beam axis
// displaced by shift, with plausible firmware metrics.
func NewProfileExport(shift float64) ProfileExport {
	abPos := Positions(ABDetectors, Spacing)
	gtPos := Positions(GTDetectors, Spacing)
	field := StandardField()
	return ProfileExport{
		ABPositions: abPos,
		ABDoses:     Sample(abPos, field, shift),
		GTPositions: gtPos,
		GTDoses:     Sample(gtPos, field, shift),
		ABFlatness:  101.2,
		ABSymmetry:  100.4,
		GTFlatness:  101.6,
		GTSymmetry:  100.7,
	}
}

// Render produces the export text.
func (p ProfileExport) Render() string {
	var b strings.Builder
	b.WriteString("Version:\t32.1\n")
	b.WriteString("Filename:\tsynthetic.prm\n")
	b.WriteString("Device Model:\tIC PROFILER\n")
	b.WriteString("\n")
	writeAxisAnalysis(&b, "X Axis Analysis", p.ABFlatness, p.ABSymmetry)
	b.WriteString("\n")
	writeAxisAnalysis(&b, "Y Axis Analysis", p.GTFlatness, p.GTSymmetry)
	b.WriteString("\n")
	writeDetectorTable(&b, "Detector ID X Axis Position(cm)\tDose", p.ABPositions, p.ABDoses)
	b.WriteString("\n")
	writeDetectorTable(&b, "Detector ID Y Axis Position(cm)\tDose", p.GTPositions, p.GTDoses)
	return b.String()
}

func writeAxisAnalysis(b *strings.Builder, title string, flatness, symmetry float64) {
	b.WriteString(title + "\n")
	b.WriteString("\tField Size\t20,00\tcm\n")
	b.WriteString("\tLeft Edge\t-10,00\tcm\n")
	b.WriteString("\tRight Edge\t10,00\tcm\n")
	b.WriteString("\tCentre\t0,00\tcm\n")
	b.WriteString("\tPenumbra Left\t0,45\tcm\n")
	b.WriteString("\tPenumbra Right\t0,46\tcm\n")
	fmt.Fprintf(b, "\tFlatness\tperc\t%s\n", FormatComma(flatness))
	fmt.Fprintf(b, "\tSymmetry\tperc\t%s\n", FormatComma(symmetry))
}

func writeDetectorTable(b *strings.Builder, header string, positions, doses []float64) {
	b.WriteString(header + "\n")
	for i := range positions {
		fmt.Fprintf(b, "%s\t%s\n", FormatComma(positions[i]), FormatComma(doses[i]))
	}
}

// MovieFrame is one row of a movie export.
type MovieFrame struct {
	AB []float64
	GT []float64
}

// MovieExport describes an arc movie export.
type MovieExport struct {
	// Preamble lines written before the frame table marker.
	Preamble []string
	Frames   []MovieFrame
}

// NewMovieExport returns n frames all equal to the given profile doses.
func NewMovieExport(n int, ab, gt []float64) MovieExport {
	m := MovieExport{
		Preamble: []string{"Version:\t32.1", "Device Model:\tIC PROFILER", "Movie:\tGantry arc"},
	}
	for i := 0; i < n; i++ {
		m.Frames = append(m.Frames, MovieFrame{AB: ab, GT: gt})
	}
	return m
}

// MarkerLine is the 0-based index of the "Frames:" line in Render's output.
func (m MovieExport) MarkerLine() int { return len(m.Preamble) }

// Render produces the export text. Each frame row carries frame number,
// time and pulse count ahead of the AB and GT columns.
func (m MovieExport) Render() string {
	var b strings.Builder
	for _, line := range m.Preamble {
		b.WriteString(line + "\n")
	}
	b.WriteString("Frames:\n")
	b.WriteString("Frame\tTime(ms)\tPulses")
	for i := 1; i <= ABDetectors; i++ {
		fmt.Fprintf(&b, "\tX%d", i)
	}
	for i := 1; i <= GTDetectors; i++ {
		fmt.Fprintf(&b, "\tY%d", i)
	}
	b.WriteString("\n")
	for i, f := range m.Frames {
		fmt.Fprintf(&b, "%d\t%d\t%d", i+1, (i+1)*100, 250)
		for _, v := range f.AB {
			b.WriteString("\t" + FormatComma(v))
		}
		for _, v := range f.GT {
			b.WriteString("\t" + FormatComma(v))
		}
		b.WriteString("\n")
	}
	return b.String()
}
